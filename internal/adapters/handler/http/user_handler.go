package http

import (
	"net/http"

	"github.com/vncsmyrnk/tasks/internal/core/domain"
	"github.com/vncsmyrnk/tasks/internal/core/ports"
)

type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{
		service: service,
	}
}

// GetMe godoc
// @Summary      Returns the authenticated user
// @Tags         users
// @Produce      json
// @Success      200  {object}  userResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /users/me [get]
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r.Context())
	if !ok {
		writeDomainError(w, r, domain.ErrMissingAccessToken)
		return
	}

	user, err := h.service.GetByID(r.Context(), userID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if user == nil {
		writeDomainError(w, r, domain.ErrUserNotFound)
		return
	}

	writeJSON(w, http.StatusOK, userResponse{User: user.Public()})
}
