package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/tasks/internal/core/domain"
	"github.com/vncsmyrnk/tasks/internal/core/ports"
)

type taskRepository struct {
	db *sql.DB
}

func NewTaskRepository(db *sql.DB) ports.TaskRepository {
	return &taskRepository{db: db}
}

const taskColumns = `id, owner_id, title, description, status, due_date, created_at, updated_at`

func (r *taskRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE owner_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]*domain.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tasks: %w", err)
	}

	return tasks, nil
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) error {
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}

	query := `
		INSERT INTO tasks (id, owner_id, title, description, status, due_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		task.ID, task.OwnerID, task.Title, nullable(task.Description), string(task.Status),
		nullable(task.DueDate), task.CreatedAt, task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}
	return nil
}

// Update applies the patch in one statement; NULL parameters keep the stored
// value, so only the fields present in the patch change.
func (r *taskRepository) Update(ctx context.Context, ownerID, id uuid.UUID, patch domain.TaskPatch) (*domain.Task, error) {
	var status any
	if patch.Status != nil {
		status = string(*patch.Status)
	}

	query := `
		UPDATE tasks SET
			title       = COALESCE($3, title),
			description = COALESCE($4, description),
			status      = COALESCE($5, status),
			due_date    = CASE WHEN $6::boolean THEN NULL ELSE COALESCE($7::timestamptz, due_date) END,
			updated_at  = NOW()
		WHERE id = $1 AND owner_id = $2
		RETURNING ` + taskColumns

	row := r.db.QueryRowContext(ctx, query,
		id, ownerID, nullable(patch.Title), nullable(patch.Description), status,
		patch.ClearDueDate, nullable(patch.DueDate),
	)

	task, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return task, nil
}

func (r *taskRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted rows: %w", err)
	}
	if affected == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var (
		task        domain.Task
		description sql.NullString
		dueDate     sql.NullTime
		status      string
	)
	err := row.Scan(&task.ID, &task.OwnerID, &task.Title, &description, &status, &dueDate, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		return nil, err
	}

	task.Status = domain.TaskStatus(status)
	if description.Valid {
		task.Description = &description.String
	}
	if dueDate.Valid {
		d := dueDate.Time.UTC()
		task.DueDate = &d
	}
	task.CreatedAt = task.CreatedAt.UTC()
	task.UpdatedAt = task.UpdatedAt.UTC()
	return &task, nil
}

func nullable[T any](v *T) any {
	if v == nil {
		return nil
	}
	return *v
}
