package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	bcrypthasher "github.com/vncsmyrnk/tasks/internal/adapters/hashing/bcrypt"
	"github.com/vncsmyrnk/tasks/internal/adapters/handler/http"
	"github.com/vncsmyrnk/tasks/internal/adapters/metrics/prometheus"
	"github.com/vncsmyrnk/tasks/internal/adapters/repository/memory"
	"github.com/vncsmyrnk/tasks/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/tasks/internal/config"
	"github.com/vncsmyrnk/tasks/internal/core/ports"
	"github.com/vncsmyrnk/tasks/internal/core/services"
)

func main() {
	cfg := config.Load()
	logger := config.NewLogger(cfg.Log, os.Stdout)
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if missing := cfg.MissingSecrets(); len(missing) > 0 {
		logger.Warn("JWT secrets are not configured, every token operation will fail", "missing", missing)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	userRepo, taskRepo, db, err := openStores(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open storage", "driver", cfg.Database.Driver, "error", err)
		os.Exit(1)
	}
	if db != nil {
		defer db.Close()
	}

	recorder := prometheus.NewRecorder()
	tokens := services.NewTokenService(services.TokenConfig{
		AccessSecret:  cfg.JWT.AccessSecret,
		RefreshSecret: cfg.JWT.RefreshSecret,
		AccessTTL:     cfg.JWT.AccessTokenTTL,
		RefreshTTL:    cfg.JWT.RefreshTokenTTL,
	})
	authService := services.NewAuthService(userRepo, tokens, bcrypthasher.NewHasher(cfg.BcryptCost), cfg.Cookies.Secure,
		services.WithAuthLogger(logger),
		services.WithAuthMetrics(recorder),
	)

	handler := http.NewHandler(
		http.NewAuthHandler(authService),
		http.NewUserHandler(services.NewUserService(userRepo)),
		http.NewTaskHandler(services.NewTaskService(taskRepo)),
		tokens,
		http.RouterOptions{
			AllowedOrigins:  cfg.Server.CORSOrigins,
			Logger:          logger,
			Metrics:         recorder,
			MetricsHandler:  recorder.Handler(),
			GlobalRateLimit: cfg.RateLimit.GlobalPerMinute,
			LoginRateLimit:  cfg.RateLimit.LoginPerMinute,
			TrustProxy:      cfg.Server.TrustProxy,
		},
	)

	server := &stdhttp.Server{
		Addr:              "0.0.0.0:" + cfg.Server.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", server.Addr, "storage", cfg.Database.Driver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("gracefully shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
		os.Exit(1)
	}
}

func openStores(ctx context.Context, cfg *config.Config, logger *slog.Logger) (ports.UserRepository, ports.TaskRepository, *sql.DB, error) {
	if cfg.Database.Driver == config.StorageDriverMemory {
		logger.Warn("using in-memory storage, data is lost on restart")
		return memory.NewUserRepository(), memory.NewTaskRepository(), nil, nil
	}

	db, err := postgres.Open(ctx, cfg.Database.DSN())
	if err != nil {
		return nil, nil, nil, err
	}

	if err := postgres.ApplyMigrations(ctx, db); err != nil {
		db.Close()
		return nil, nil, nil, err
	}

	return postgres.NewUserRepository(db), postgres.NewTaskRepository(db), db, nil
}
