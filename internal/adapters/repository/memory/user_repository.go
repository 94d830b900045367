package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/tasks/internal/core/domain"
	"github.com/vncsmyrnk/tasks/internal/core/ports"
)

type UserRepository struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]*domain.User
	byEmail map[string]uuid.UUID
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:    make(map[uuid.UUID]*domain.User),
		byEmail: make(map[string]uuid.UUID),
	}
}

var _ ports.UserRepository = (*UserRepository)(nil)

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, nil
	}
	return copyUser(r.byID[id]), nil
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return nil, nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byID[userID]
	if !ok {
		return nil, nil
	}
	return copyUser(user), nil
}

func (r *UserRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[user.Email]; exists {
		return domain.ErrEmailInUse
	}

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	r.byID[user.ID] = copyUser(user)
	r.byEmail[user.Email] = user.ID
	return nil
}

func (r *UserRepository) SetRefreshTokenHash(_ context.Context, id string, hash *string) error {
	userID, err := uuid.Parse(id)
	if err != nil {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byID[userID]
	if !ok {
		return nil
	}

	if hash == nil {
		user.RefreshTokenHash = nil
	} else {
		h := *hash
		user.RefreshTokenHash = &h
	}
	user.UpdatedAt = time.Now().UTC()
	return nil
}

func copyUser(u *domain.User) *domain.User {
	c := *u
	if u.RefreshTokenHash != nil {
		h := *u.RefreshTokenHash
		c.RefreshTokenHash = &h
	}
	return &c
}
