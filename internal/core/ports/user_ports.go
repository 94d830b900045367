package ports

import (
	"context"

	"github.com/vncsmyrnk/tasks/internal/core/domain"
)

// UserRepository is the Credential Store. Lookups return (nil, nil) when the
// user does not exist; Create returns domain.ErrEmailInUse on a duplicate email.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
	SetRefreshTokenHash(ctx context.Context, id string, hash *string) error
}
