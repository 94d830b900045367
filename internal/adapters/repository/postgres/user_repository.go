package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/vncsmyrnk/tasks/internal/core/domain"
	"github.com/vncsmyrnk/tasks/internal/core/ports"
)

const uniqueViolation = "23505"

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) ports.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `
		SELECT id, email, password_hash, refresh_token_hash, created_at, updated_at
		FROM users
		WHERE email = $1
	`
	return r.scanUser(r.db.QueryRowContext(ctx, query, email))
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return nil, nil
	}

	query := `
		SELECT id, email, password_hash, refresh_token_hash, created_at, updated_at
		FROM users
		WHERE id = $1
	`
	return r.scanUser(r.db.QueryRowContext(ctx, query, userID))
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	query := `INSERT INTO users (email, password_hash) VALUES ($1, $2) RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, user.Email, user.PasswordHash).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return domain.ErrEmailInUse
		}
		return err
	}
	return nil
}

// SetRefreshTokenHash overwrites the single refresh-token slot. It is one
// UPDATE statement, so concurrent writers resolve as last-write-wins.
func (r *userRepository) SetRefreshTokenHash(ctx context.Context, id string, hash *string) error {
	userID, err := uuid.Parse(id)
	if err != nil {
		return nil
	}

	var value any
	if hash != nil {
		value = *hash
	}

	query := `UPDATE users SET refresh_token_hash = $2, updated_at = NOW() WHERE id = $1`
	_, err = r.db.ExecContext(ctx, query, userID, value)
	return err
}

func (r *userRepository) scanUser(row *sql.Row) (*domain.User, error) {
	user := &domain.User{}
	var refreshTokenHash sql.NullString
	err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &refreshTokenHash, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if refreshTokenHash.Valid {
		user.RefreshTokenHash = &refreshTokenHash.String
	}
	return user, nil
}
