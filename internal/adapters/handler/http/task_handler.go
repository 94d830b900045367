package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/vncsmyrnk/tasks/internal/core/domain"
	"github.com/vncsmyrnk/tasks/internal/core/ports"
)

type TaskHandler struct {
	service   ports.TaskService
	validator *requestValidator
}

func NewTaskHandler(service ports.TaskService) *TaskHandler {
	return &TaskHandler{
		service:   service,
		validator: newRequestValidator(),
	}
}

type createTaskRequest struct {
	Title       string             `json:"title" validate:"required,max=200"`
	Description *string            `json:"description" validate:"omitempty,max=1000"`
	Status      *domain.TaskStatus `json:"status" validate:"omitempty,oneof=todo in_progress done"`
	DueDate     *string            `json:"dueDate"`
}

type updateTaskRequest struct {
	Title       *string            `json:"title" validate:"omitempty,max=200"`
	Description *string            `json:"description" validate:"omitempty,max=1000"`
	Status      *domain.TaskStatus `json:"status" validate:"omitempty,oneof=todo in_progress done"`
	DueDate     *string            `json:"dueDate"`
}

type taskResponse struct {
	Task *domain.Task `json:"task"`
}

type taskListResponse struct {
	Tasks []*domain.Task `json:"tasks"`
}

var errInvalidDueDate = domain.NewError(domain.ErrInvalidInput, "dueDate must be a valid ISO 8601 date string")

// ListTasks godoc
// @Summary      Lists the caller's tasks
// @Description  Newest first.
// @Tags         tasks
// @Produce      json
// @Success      200  {object}  taskListResponse
// @Failure      401  {object}  errorResponse
// @Router       /tasks [get]
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r.Context())
	if !ok {
		writeDomainError(w, r, domain.ErrMissingAccessToken)
		return
	}

	tasks, err := h.service.ListForUser(r.Context(), userID.String())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, taskListResponse{Tasks: tasks})
}

// CreateTask godoc
// @Summary      Creates a task owned by the caller
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        body  body      createTaskRequest  true  "Task"
// @Success      201   {object}  taskResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /tasks [post]
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r.Context())
	if !ok {
		writeDomainError(w, r, domain.ErrMissingAccessToken)
		return
	}

	var req createTaskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeDomainError(w, r, err)
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Description = trimPtr(req.Description)
	if err := h.validator.Validate(req); err != nil {
		writeDomainError(w, r, err)
		return
	}

	dueDate, _, err := parseDueDate(req.DueDate)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	task, err := h.service.CreateForUser(r.Context(), userID.String(), ports.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		DueDate:     dueDate,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, taskResponse{Task: task})
}

// UpdateTask godoc
// @Summary      Updates a task owned by the caller
// @Description  Only the fields present are changed. An empty dueDate removes the due date.
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        id    path      string             true  "Task ID"
// @Param        body  body      updateTaskRequest  true  "Changes"
// @Success      200   {object}  taskResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /tasks/{id} [put]
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r.Context())
	if !ok {
		writeDomainError(w, r, domain.ErrMissingAccessToken)
		return
	}

	var req updateTaskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeDomainError(w, r, err)
		return
	}
	req.Title = trimPtr(req.Title)
	req.Description = trimPtr(req.Description)
	if err := h.validator.Validate(req); err != nil {
		writeDomainError(w, r, err)
		return
	}

	dueDate, clearDueDate, err := parseDueDate(req.DueDate)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	task, err := h.service.UpdateForUser(r.Context(), userID.String(), chi.URLParam(r, "id"), ports.UpdateTaskInput{
		Title:        req.Title,
		Description:  req.Description,
		Status:       req.Status,
		DueDate:      dueDate,
		ClearDueDate: clearDueDate,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, taskResponse{Task: task})
}

// DeleteTask godoc
// @Summary      Deletes a task owned by the caller
// @Tags         tasks
// @Produce      json
// @Param        id   path      string  true  "Task ID"
// @Success      200  {object}  messageResponse
// @Failure      400  {object}  errorResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /tasks/{id} [delete]
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r.Context())
	if !ok {
		writeDomainError(w, r, domain.ErrMissingAccessToken)
		return
	}

	if err := h.service.DeleteForUser(r.Context(), userID.String(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "Task deleted"})
}

// parseDueDate accepts RFC 3339 timestamps and plain dates. An empty string
// asks for the due date to be removed.
func parseDueDate(raw *string) (*time.Time, bool, error) {
	if raw == nil {
		return nil, false, nil
	}

	value := strings.TrimSpace(*raw)
	if value == "" {
		return nil, true, nil
	}

	for _, layout := range []string{time.RFC3339Nano, time.DateOnly} {
		if t, err := time.Parse(layout, value); err == nil {
			t = t.UTC()
			return &t, false, nil
		}
	}
	return nil, false, errInvalidDueDate
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}
