package http_test

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	handler "github.com/vncsmyrnk/tasks/internal/adapters/handler/http"
)

func TestAuth_RegisterLoginRefreshLogout(t *testing.T) {
	app := newTestApp(t, handler.RouterOptions{})
	client := app.newClient(t)

	// Register normalizes the email and never exposes the hash.
	resp := app.do(t, client, http.MethodPost, "/api/v1/auth/register", map[string]string{
		"email": "  Alice@Example.com ", "password": "password123",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	registered := decodeBody[userBody](t, resp)
	assert.Equal(t, "alice@example.com", registered.User["email"])
	assert.NotEmpty(t, registered.User["id"])
	assert.NotContains(t, registered.User, "passwordHash")
	assert.Empty(t, resp.Cookies(), "register must not start a session")

	// Login sets both cookies.
	resp = app.do(t, client, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email": "alice@example.com", "password": "password123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	access := cookieNamed(resp.Cookies(), "access_token")
	refresh := cookieNamed(resp.Cookies(), "refresh_token")
	require.NotNil(t, access)
	require.NotNil(t, refresh)
	assert.True(t, access.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, access.SameSite)
	assert.Equal(t, "/", access.Path)
	assert.Equal(t, 15*60, access.MaxAge)
	assert.Equal(t, 7*24*60*60, refresh.MaxAge)

	resp = app.do(t, client, http.MethodGet, "/api/v1/users/me", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	me := decodeBody[userBody](t, resp)
	assert.Equal(t, registered.User["id"], me.User["id"])

	// Refresh rotates the refresh token.
	resp = app.do(t, client, http.MethodPost, "/api/v1/auth/refresh", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	rotated := cookieNamed(resp.Cookies(), "refresh_token")
	require.NotNil(t, rotated)
	assert.NotEqual(t, refresh.Value, rotated.Value)

	// Logout clears the cookies and ends the stored session.
	resp = app.do(t, client, http.MethodPost, "/api/v1/auth/logout", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Logged out", decodeBody[map[string]string](t, resp)["message"])
	cleared := cookieNamed(resp.Cookies(), "refresh_token")
	require.NotNil(t, cleared)
	assert.Equal(t, -1, cleared.MaxAge)

	stored, err := app.Users.GetByEmail(t.Context(), "alice@example.com")
	require.NoError(t, err)
	assert.Nil(t, stored.RefreshTokenHash)

	resp = app.do(t, client, http.MethodGet, "/api/v1/users/me", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuth_RegisterConflict(t *testing.T) {
	app := newTestApp(t, handler.RouterOptions{})
	client := app.newClient(t)

	creds := map[string]string{"email": "bob@example.com", "password": "password123"}
	resp := app.do(t, client, http.MethodPost, "/api/v1/auth/register", creds)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = app.do(t, client, http.MethodPost, "/api/v1/auth/register", map[string]string{
		"email": "BOB@example.com", "password": "different123",
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	body := decodeBody[errorBody](t, resp)
	assert.Equal(t, http.StatusConflict, body.StatusCode)
	assert.Equal(t, "Email already in use", body.Message)
	assert.Equal(t, "/api/v1/auth/register", body.Path)
	assert.NotEmpty(t, body.Timestamp)
}

func TestAuth_LoginFailuresLookTheSame(t *testing.T) {
	app := newTestApp(t, handler.RouterOptions{})
	app.signIn(t, "carol@example.com")
	client := app.newClient(t)

	wrongPassword := app.do(t, client, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email": "carol@example.com", "password": "not-the-password",
	})
	unknownEmail := app.do(t, client, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email": "nobody@example.com", "password": "password123",
	})

	require.Equal(t, http.StatusUnauthorized, wrongPassword.StatusCode)
	require.Equal(t, http.StatusUnauthorized, unknownEmail.StatusCode)
	assert.Equal(t, "Invalid credentials", decodeBody[errorBody](t, wrongPassword).Message)
	assert.Equal(t, "Invalid credentials", decodeBody[errorBody](t, unknownEmail).Message)
	assert.Nil(t, cookieNamed(wrongPassword.Cookies(), "access_token"))
}

func TestAuth_RefreshTokenReuseEndsSession(t *testing.T) {
	app := newTestApp(t, handler.RouterOptions{})
	client := app.signIn(t, "dave@example.com")

	serverURL, err := url.Parse(app.Server.URL)
	require.NoError(t, err)
	original := cookieNamed(client.Jar.Cookies(serverURL), "refresh_token")
	require.NotNil(t, original)

	resp := app.do(t, client, http.MethodPost, "/api/v1/auth/refresh", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// An attacker replays the token that was just rotated away.
	req, err := http.NewRequest(http.MethodPost, app.Server.URL+"/api/v1/auth/refresh", nil)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: "refresh_token", Value: original.Value})
	replay, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer replay.Body.Close()

	require.Equal(t, http.StatusUnauthorized, replay.StatusCode)
	assert.Equal(t, "Invalid refresh token", decodeBody[errorBody](t, replay).Message)
	cleared := cookieNamed(replay.Cookies(), "access_token")
	require.NotNil(t, cleared)
	assert.Equal(t, -1, cleared.MaxAge)

	// The legitimate holder's current token no longer works either.
	resp = app.do(t, client, http.MethodPost, "/api/v1/auth/refresh", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuth_RefreshWithoutCookie(t *testing.T) {
	app := newTestApp(t, handler.RouterOptions{})

	resp := app.do(t, app.newClient(t), http.MethodPost, "/api/v1/auth/refresh", nil)

	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Missing refresh token", decodeBody[errorBody](t, resp).Message)
	assert.Empty(t, resp.Cookies())
}

func TestAuth_RefreshWithForgedToken(t *testing.T) {
	app := newTestApp(t, handler.RouterOptions{})

	req, err := http.NewRequest(http.MethodPost, app.Server.URL+"/api/v1/auth/refresh", nil)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: "refresh_token", Value: "not.a.jwt"})
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid refresh token", decodeBody[errorBody](t, resp).Message)
	assert.NotNil(t, cookieNamed(resp.Cookies(), "refresh_token"))
}

func TestAuth_LogoutWithoutSession(t *testing.T) {
	app := newTestApp(t, handler.RouterOptions{})

	resp := app.do(t, app.newClient(t), http.MethodPost, "/api/v1/auth/logout", nil)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Logged out", decodeBody[map[string]string](t, resp)["message"])
}

func TestAuth_RequestValidation(t *testing.T) {
	app := newTestApp(t, handler.RouterOptions{})
	client := app.newClient(t)

	tests := []struct {
		name    string
		body    any
		message string
	}{
		{"invalid email", map[string]string{"email": "not-an-email", "password": "password123"}, "email must be an email"},
		{"short password", map[string]string{"email": "e@example.com", "password": "  short  "}, "password must be longer than or equal to 8 characters"},
		{"unknown field", map[string]string{"email": "e@example.com", "password": "password123", "role": "admin"}, `json: unknown field "role"`},
		{"malformed json", `{"email":`, "Request body contains malformed JSON"},
		{"empty body", nil, "Request body must not be empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := app.do(t, client, http.MethodPost, "/api/v1/auth/register", tt.body)
			require.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, tt.message, decodeBody[errorBody](t, resp).Message)
		})
	}
}

func TestAuth_MeRequiresAccessToken(t *testing.T) {
	app := newTestApp(t, handler.RouterOptions{})

	resp := app.do(t, app.newClient(t), http.MethodGet, "/api/v1/users/me", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body := decodeBody[errorBody](t, resp)
	assert.Equal(t, http.StatusUnauthorized, body.StatusCode)
	assert.Equal(t, "/api/v1/users/me", body.Path)

	req, err := http.NewRequest(http.MethodGet, app.Server.URL+"/api/v1/users/me", nil)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: "garbage"})
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
