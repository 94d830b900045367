package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/tasks/internal/core/domain"
	"github.com/vncsmyrnk/tasks/internal/core/ports"
)

type TaskRepository struct {
	mu    sync.RWMutex
	tasks map[uuid.UUID]*domain.Task
}

func NewTaskRepository() *TaskRepository {
	return &TaskRepository{tasks: make(map[uuid.UUID]*domain.Task)}
}

var _ ports.TaskRepository = (*TaskRepository)(nil)

func (r *TaskRepository) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]*domain.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tasks := make([]*domain.Task, 0)
	for _, t := range r.tasks {
		if t.OwnerID == ownerID {
			tasks = append(tasks, copyTask(t))
		}
	}

	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})
	return tasks, nil
}

func (r *TaskRepository) Create(_ context.Context, task *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	r.tasks[task.ID] = copyTask(task)
	return nil
}

func (r *TaskRepository) Update(_ context.Context, ownerID, id uuid.UUID, patch domain.TaskPatch) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[id]
	if !ok || task.OwnerID != ownerID {
		return nil, domain.ErrTaskNotFound
	}

	patch.Apply(task)
	task.UpdatedAt = time.Now().UTC()
	return copyTask(task), nil
}

func (r *TaskRepository) Delete(_ context.Context, ownerID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[id]
	if !ok || task.OwnerID != ownerID {
		return domain.ErrTaskNotFound
	}

	delete(r.tasks, id)
	return nil
}

func copyTask(t *domain.Task) *domain.Task {
	c := *t
	if t.Description != nil {
		d := *t.Description
		c.Description = &d
	}
	if t.DueDate != nil {
		d := *t.DueDate
		c.DueDate = &d
	}
	return &c
}
