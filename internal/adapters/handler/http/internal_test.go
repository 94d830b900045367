package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/tasks/internal/core/ports"
)

func TestParseDueDate(t *testing.T) {
	str := func(s string) *string { return &s }

	tests := []struct {
		name      string
		raw       *string
		want      *time.Time
		wantClear bool
		wantErr   bool
	}{
		{name: "absent", raw: nil},
		{name: "empty clears", raw: str(""), wantClear: true},
		{name: "date only", raw: str("2030-02-01"), want: ptr(time.Date(2030, 2, 1, 0, 0, 0, 0, time.UTC))},
		{name: "rfc3339 with offset", raw: str("2030-02-01T10:00:00+02:00"), want: ptr(time.Date(2030, 2, 1, 8, 0, 0, 0, time.UTC))},
		{name: "fractional seconds", raw: str("2030-02-01T10:00:00.123Z"), want: ptr(time.Date(2030, 2, 1, 10, 0, 0, 123000000, time.UTC))},
		{name: "garbage", raw: str("next week"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, clear, err := parseDueDate(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, errInvalidDueDate)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantClear, clear)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.True(t, tt.want.Equal(*got))
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func ptr[T any](v T) *T { return &v }

func TestResponseCookieWriter(t *testing.T) {
	rec := httptest.NewRecorder()
	cw := responseCookieWriter{w: rec}
	opts := ports.CookieOptions{HTTPOnly: true, Secure: true, SameSite: ports.SameSiteLax, Path: "/"}

	withAge := opts
	withAge.MaxAge = 90 * time.Second
	cw.SetCookie("access_token", "a", withAge)
	cw.SetCookie("session_only", "b", opts)
	cw.ClearCookie("refresh_token", opts)

	cookies := map[string]*http.Cookie{}
	for _, c := range rec.Result().Cookies() {
		cookies[c.Name] = c
	}

	require.Contains(t, cookies, "access_token")
	assert.Equal(t, 90, cookies["access_token"].MaxAge)
	assert.True(t, cookies["access_token"].HttpOnly)
	assert.True(t, cookies["access_token"].Secure)
	assert.Equal(t, http.SameSiteLaxMode, cookies["access_token"].SameSite)

	require.Contains(t, cookies, "session_only")
	assert.Zero(t, cookies["session_only"].MaxAge)
	assert.True(t, cookies["session_only"].Expires.IsZero())

	require.Contains(t, cookies, "refresh_token")
	assert.Equal(t, -1, cookies["refresh_token"].MaxAge)
	assert.Empty(t, cookies["refresh_token"].Value)
}

func TestRateLimiterSeparatesClients(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	h := rateLimitPerMinute(1)(ok)

	call := func(addr string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusNoContent, call("10.0.0.1:1000"))
	assert.Equal(t, http.StatusTooManyRequests, call("10.0.0.1:2000"))
	assert.Equal(t, http.StatusNoContent, call("10.0.0.2:1000"))
}

func TestRateLimitDisabled(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	h := rateLimitPerMinute(0)(ok)

	for range 10 {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusNoContent, rec.Code)
	}
}
