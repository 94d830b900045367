package domain

import (
	"time"

	"github.com/google/uuid"
)

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusDone       TaskStatus = "done"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return true
	}
	return false
}

type Task struct {
	ID          uuid.UUID  `json:"id"`
	OwnerID     uuid.UUID  `json:"ownerId"`
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	Status      TaskStatus `json:"status"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// TaskPatch describes a partial update. Nil fields are left untouched;
// ClearDueDate removes the due date regardless of DueDate.
type TaskPatch struct {
	Title        *string
	Description  *string
	Status       *TaskStatus
	DueDate      *time.Time
	ClearDueDate bool
}

// Apply mutates t in place with the non-nil fields of p.
func (p TaskPatch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		d := *p.Description
		t.Description = &d
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	switch {
	case p.ClearDueDate:
		t.DueDate = nil
	case p.DueDate != nil:
		d := *p.DueDate
		t.DueDate = &d
	}
}
