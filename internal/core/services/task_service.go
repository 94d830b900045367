package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/tasks/internal/core/domain"
	"github.com/vncsmyrnk/tasks/internal/core/ports"
)

type taskService struct {
	repo ports.TaskRepository
	now  func() time.Time
}

func NewTaskService(repo ports.TaskRepository) ports.TaskService {
	return &taskService{
		repo: repo,
		now:  time.Now,
	}
}

func (s *taskService) ListForUser(ctx context.Context, userID string) ([]*domain.Task, error) {
	ownerID, err := parseID(userID, domain.ErrInvalidUserID)
	if err != nil {
		return nil, err
	}

	return s.repo.ListByOwner(ctx, ownerID)
}

func (s *taskService) CreateForUser(ctx context.Context, userID string, input ports.CreateTaskInput) (*domain.Task, error) {
	ownerID, err := parseID(userID, domain.ErrInvalidUserID)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, domain.ErrEmptyTaskTitle
	}

	status := domain.TaskStatusTodo
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, domain.ErrInvalidTaskStatus
		}
		status = *input.Status
	}

	now := s.now().UTC()
	task := &domain.Task{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Title:       title,
		Description: trimmed(input.Description),
		Status:      status,
		DueDate:     input.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, task); err != nil {
		return nil, err
	}

	return task, nil
}

func (s *taskService) UpdateForUser(ctx context.Context, userID, id string, input ports.UpdateTaskInput) (*domain.Task, error) {
	taskID, err := parseID(id, domain.ErrInvalidTaskID)
	if err != nil {
		return nil, err
	}
	ownerID, err := parseID(userID, domain.ErrInvalidUserID)
	if err != nil {
		return nil, err
	}

	patch := domain.TaskPatch{
		Title:        trimmed(input.Title),
		Description:  trimmed(input.Description),
		Status:       input.Status,
		DueDate:      input.DueDate,
		ClearDueDate: input.ClearDueDate,
	}
	if patch.Title != nil && *patch.Title == "" {
		return nil, domain.ErrEmptyTaskTitle
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return nil, domain.ErrInvalidTaskStatus
	}

	return s.repo.Update(ctx, ownerID, taskID, patch)
}

func (s *taskService) DeleteForUser(ctx context.Context, userID, id string) error {
	taskID, err := parseID(id, domain.ErrInvalidTaskID)
	if err != nil {
		return err
	}
	ownerID, err := parseID(userID, domain.ErrInvalidUserID)
	if err != nil {
		return err
	}

	return s.repo.Delete(ctx, ownerID, taskID)
}

func parseID(id string, invalid error) (uuid.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, invalid
	}
	return parsed, nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}
