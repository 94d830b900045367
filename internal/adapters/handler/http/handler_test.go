package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	bcrypthasher "github.com/vncsmyrnk/tasks/internal/adapters/hashing/bcrypt"
	handler "github.com/vncsmyrnk/tasks/internal/adapters/handler/http"
	"github.com/vncsmyrnk/tasks/internal/adapters/repository/memory"
	"github.com/vncsmyrnk/tasks/internal/core/services"
	"golang.org/x/crypto/bcrypt"
)

type testApp struct {
	Server *httptest.Server
	Users  *memory.UserRepository
}

func newTestApp(t *testing.T, opts handler.RouterOptions) *testApp {
	t.Helper()

	users := memory.NewUserRepository()
	tasks := memory.NewTaskRepository()
	tokens := services.NewTokenService(services.TokenConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
	})
	authSvc := services.NewAuthService(users, tokens, bcrypthasher.NewHasher(bcrypt.MinCost), false)

	router := handler.NewHandler(
		handler.NewAuthHandler(authSvc),
		handler.NewUserHandler(services.NewUserService(users)),
		handler.NewTaskHandler(services.NewTaskService(tasks)),
		tokens,
		opts,
	)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &testApp{Server: server, Users: users}
}

// newClient returns a client with its own cookie jar, i.e. one browser.
func (app *testApp) newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func (app *testApp) do(t *testing.T, client *http.Client, method, path string, body any) *http.Response {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, app.Server.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

// signIn registers email and logs in, leaving the session cookies in the
// client's jar.
func (app *testApp) signIn(t *testing.T, email string) *http.Client {
	t.Helper()
	client := app.newClient(t)

	creds := map[string]string{"email": email, "password": "password123"}
	resp := app.do(t, client, http.MethodPost, "/api/v1/auth/register", creds)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = app.do(t, client, http.MethodPost, "/api/v1/auth/login", creds)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return client
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

type errorBody struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Timestamp  string `json:"timestamp"`
	Path       string `json:"path"`
}

type userBody struct {
	User map[string]any `json:"user"`
}

func cookieNamed(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}
