package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/tasks/internal/core/domain"
)

// TaskRepository persists tasks. Every mutation is scoped by owner: a task that
// exists but belongs to someone else is reported as domain.ErrTaskNotFound.
type TaskRepository interface {
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Task, error)
	Create(ctx context.Context, task *domain.Task) error
	Update(ctx context.Context, ownerID, id uuid.UUID, patch domain.TaskPatch) (*domain.Task, error)
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
}

type CreateTaskInput struct {
	Title       string
	Description *string
	Status      *domain.TaskStatus
	DueDate     *time.Time
}

type UpdateTaskInput struct {
	Title        *string
	Description  *string
	Status       *domain.TaskStatus
	DueDate      *time.Time
	ClearDueDate bool
}

type TaskService interface {
	ListForUser(ctx context.Context, userID string) ([]*domain.Task, error)
	CreateForUser(ctx context.Context, userID string, input CreateTaskInput) (*domain.Task, error)
	UpdateForUser(ctx context.Context, userID, id string, input UpdateTaskInput) (*domain.Task, error)
	DeleteForUser(ctx context.Context, userID, id string) error
}
