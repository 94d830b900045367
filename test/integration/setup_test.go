package integration

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/crypto/bcrypt"

	bcrypthasher "github.com/vncsmyrnk/tasks/internal/adapters/hashing/bcrypt"
	handler "github.com/vncsmyrnk/tasks/internal/adapters/handler/http"
	repo "github.com/vncsmyrnk/tasks/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/tasks/internal/core/services"
)

const (
	accessSecret  = "test-access-secret"
	refreshSecret = "test-refresh-secret"
)

type TestApp struct {
	DB          *sql.DB
	Server      *httptest.Server
	DBContainer testcontainers.Container
}

func setupPostgresContainer(ctx context.Context) (testcontainers.Container, string, error) {
	pgContainer, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, "", fmt.Errorf("failed to start postgres container: %w", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, "", err
	}

	return pgContainer, connStr, nil
}

func setupTestApp(t *testing.T) *TestApp {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	dbContainer, dbURL, err := setupPostgresContainer(ctx)
	require.NoError(t, err)

	db, err := repo.Open(ctx, dbURL)
	require.NoError(t, err)
	require.NoError(t, repo.ApplyMigrations(ctx, db))

	userRepo := repo.NewUserRepository(db)
	taskRepo := repo.NewTaskRepository(db)

	tokens := services.NewTokenService(services.TokenConfig{AccessSecret: accessSecret, RefreshSecret: refreshSecret})
	authSvc := services.NewAuthService(userRepo, tokens, bcrypthasher.NewHasher(bcrypt.MinCost), false)

	router := handler.NewHandler(
		handler.NewAuthHandler(authSvc),
		handler.NewUserHandler(services.NewUserService(userRepo)),
		handler.NewTaskHandler(services.NewTaskService(taskRepo)),
		tokens,
		handler.RouterOptions{},
	)

	app := &TestApp{
		DB:          db,
		Server:      httptest.NewServer(router),
		DBContainer: dbContainer,
	}
	t.Cleanup(func() { app.Teardown(t) })
	return app
}

func (app *TestApp) Teardown(t *testing.T) {
	app.Server.Close()
	app.DB.Close()
	if err := app.DBContainer.Terminate(context.Background()); err != nil {
		t.Logf("failed to terminate container: %v", err)
	}
}

func (app *TestApp) newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func (app *TestApp) do(t *testing.T, client *http.Client, method, path string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, app.Server.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

// createUserAndToken inserts a user row directly and signs an access token for
// it, skipping the register and login endpoints.
func createUserAndToken(t *testing.T, db *sql.DB) (uuid.UUID, string) {
	t.Helper()

	userID := uuid.New()
	email := fmt.Sprintf("user-%s@example.com", userID)
	_, err := db.Exec("INSERT INTO users (id, email, password_hash) VALUES ($1, $2, $3)", userID, email, "unused")
	require.NoError(t, err)

	claims := jwt.MapClaims{
		"sub":   userID.String(),
		"email": email,
		"exp":   time.Now().Add(15 * time.Minute).Unix(),
		"iat":   time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(accessSecret))
	require.NoError(t, err)
	return userID, signedToken
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}
