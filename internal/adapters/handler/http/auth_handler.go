package http

import (
	"net/http"
	"strings"

	"github.com/vncsmyrnk/tasks/internal/core/domain"
	"github.com/vncsmyrnk/tasks/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
	validator   *requestValidator
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validator:   newRequestValidator(),
	}
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,max=128"`
}

func (req *registerRequest) normalize() {
	req.Email = domain.NormalizeEmail(req.Email)
	req.Password = strings.TrimSpace(req.Password)
}

func (req *loginRequest) normalize() {
	req.Email = domain.NormalizeEmail(req.Email)
	req.Password = strings.TrimSpace(req.Password)
}

// Register godoc
// @Summary      Registers a new user
// @Description  Creates an account. Does not start a session.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Credentials"
// @Success      201   {object}  userResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeDomainError(w, r, err)
		return
	}
	req.normalize()
	if err := h.validator.Validate(req); err != nil {
		writeDomainError(w, r, err)
		return
	}

	user, err := h.authService.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, userResponse{User: user})
}

// Login godoc
// @Summary      Logs a user in
// @Description  Verifies credentials and sets the access_token and refresh_token cookies.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  userResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeDomainError(w, r, err)
		return
	}
	req.normalize()
	if err := h.validator.Validate(req); err != nil {
		writeDomainError(w, r, err)
		return
	}

	user, err := h.authService.Login(r.Context(), req.Email, req.Password, responseCookieWriter{w: w})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, userResponse{User: user})
}

// Refresh godoc
// @Summary      Rotates the session
// @Description  Exchanges the refresh_token cookie for a new pair of cookies. The old refresh token stops working.
// @Tags         auth
// @Produce      json
// @Success      200  {object}  userResponse
// @Failure      401  {object}  errorResponse
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	user, err := h.authService.Refresh(r.Context(), refreshTokenFrom(r), responseCookieWriter{w: w})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, userResponse{User: user})
}

// Logout godoc
// @Summary      Logs the authenticated user out
// @Description  Ends the stored session if the refresh token names one and clears both cookies. Always succeeds.
// @Tags         auth
// @Produce      json
// @Success      200  {object}  messageResponse
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	message := h.authService.Logout(r.Context(), refreshTokenFrom(r), responseCookieWriter{w: w})
	writeJSON(w, http.StatusOK, messageResponse{Message: message})
}

func refreshTokenFrom(r *http.Request) string {
	cookie, err := r.Cookie(domain.RefreshTokenCookie)
	if err != nil {
		return ""
	}
	return cookie.Value
}
