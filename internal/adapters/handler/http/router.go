package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
	_ "github.com/vncsmyrnk/tasks/docs"
	"github.com/vncsmyrnk/tasks/internal/core/ports"
)

type RouterOptions struct {
	AllowedOrigins []string
	Logger         *slog.Logger
	Metrics        HTTPMetrics
	MetricsHandler http.Handler
	// Requests per minute per client IP; zero disables the limit.
	GlobalRateLimit int
	LoginRateLimit  int
	// TrustProxy takes the client address from X-Forwarded-For or X-Real-IP.
	// Leave it off unless a reverse proxy overwrites those headers.
	TrustProxy bool
}

// @title        Tasks API
// @version      1.0
// @description  Cookie-session auth and per-user task management.
// @BasePath     /api/v1
func NewHandler(authHandler *AuthHandler, userHandler *UserHandler, taskHandler *TaskHandler, tokens ports.TokenService, opts RouterOptions) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	if opts.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)
	if opts.Metrics != nil {
		r.Use(metricsMiddleware(opts.Metrics))
	}
	r.Use(securityHeaders)

	if len(opts.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   opts.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", requestIDHeader},
			ExposedHeaders:   []string{requestIDHeader},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if opts.MetricsHandler != nil {
		r.Handle("/metrics", opts.MetricsHandler)
	}
	r.Get("/swagger/*", httpSwagger.Handler())

	r.Group(func(r chi.Router) {
		r.Use(rateLimitPerMinute(opts.GlobalRateLimit))

		r.Route("/api/v1", func(r chi.Router) {
			r.Route("/auth", func(r chi.Router) {
				r.Post("/register", authHandler.Register)
				r.With(rateLimitPerMinute(opts.LoginRateLimit)).Post("/login", authHandler.Login)
				r.Post("/refresh", authHandler.Refresh)
				r.Post("/logout", authHandler.Logout)
			})

			r.Group(func(r chi.Router) {
				r.Use(RequireAuth(tokens))

				r.Get("/users/me", userHandler.GetMe)

				r.Route("/tasks", func(r chi.Router) {
					r.Get("/", taskHandler.ListTasks)
					r.Post("/", taskHandler.CreateTask)
					r.Put("/{id}", taskHandler.UpdateTask)
					r.Delete("/{id}", taskHandler.DeleteTask)
				})
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "Cannot "+r.Method+" "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusMethodNotAllowed, "Method not allowed")
	})

	return r
}
