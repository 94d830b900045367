package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/vncsmyrnk/tasks/internal/core/domain"
	"github.com/vncsmyrnk/tasks/internal/core/ports"
)

type contextKey string

const (
	UserIDKey    contextKey = "user_id"
	UserEmailKey contextKey = "user_email"
	loggerKey    contextKey = "logger"
)

const requestIDHeader = "X-Request-ID"

// HTTPMetrics records one observation per served request.
type HTTPMetrics interface {
	ObserveHTTP(method, route string, status int, elapsed time.Duration)
}

func loggerFrom(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}

// requestLogger attaches a request-scoped logger to the context and logs the
// outcome of every request.
func requestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			reqID := r.Header.Get(requestIDHeader)
			if reqID == "" {
				reqID = ulid.Make().String()
			}
			w.Header().Set(requestIDHeader, reqID)

			logger := base.With(
				"req_id", reqID,
				"method", r.Method,
				"path", r.URL.Path,
				"remote_addr", r.RemoteAddr,
			)
			r = r.WithContext(context.WithValue(r.Context(), loggerKey, logger))

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			logger.InfoContext(r.Context(), "http_request",
				"status", status,
				"duration_ms", time.Since(start).Milliseconds(),
				"user_agent", r.UserAgent(),
			)
		})
	}
}

func metricsMiddleware(metrics HTTPMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					route = pattern
				}
			}

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			metrics.ObserveHTTP(r.Method, route, status, time.Since(start))
		})
	}
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Cross-Origin-Opener-Policy", "same-origin")
		h.Set("Cross-Origin-Resource-Policy", "same-origin")
		next.ServeHTTP(w, r)
	})
}

// RequireAuth admits requests carrying a valid access token cookie. It only
// checks the token; the user is not looked up.
func RequireAuth(tokens ports.TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(domain.AccessTokenCookie)
			if err != nil || cookie.Value == "" {
				writeDomainError(w, r, domain.ErrMissingAccessToken)
				return
			}

			payload, err := tokens.VerifyAccessToken(cookie.Value)
			if err != nil {
				writeDomainError(w, r, domain.ErrInvalidToken)
				return
			}

			userID, err := uuid.Parse(payload.Subject)
			if err != nil {
				writeDomainError(w, r, domain.ErrInvalidToken)
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			ctx = context.WithValue(ctx, UserEmailKey, payload.Email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func userIDFrom(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDKey).(uuid.UUID)
	return userID, ok
}
