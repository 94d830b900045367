package ports

import (
	"context"
	"time"

	"github.com/vncsmyrnk/tasks/internal/core/domain"
)

type TokenService interface {
	IssueAccessToken(payload domain.TokenPayload) (string, error)
	IssueRefreshToken(payload domain.TokenPayload) (string, error)
	VerifyAccessToken(token string) (domain.TokenPayload, error)
	VerifyRefreshToken(token string) (domain.TokenPayload, error)
	HasRefreshSecret() bool
	AccessCookieMaxAge() time.Duration  // zero means a session cookie
	RefreshCookieMaxAge() time.Duration // zero means a session cookie
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	// Compare reports whether password matches hash. A malformed hash is an error.
	Compare(hash, password string) (bool, error)
}

type SameSite string

const (
	SameSiteLax    SameSite = "lax"
	SameSiteStrict SameSite = "strict"
	SameSiteNone   SameSite = "none"
)

type CookieOptions struct {
	HTTPOnly bool
	Secure   bool
	SameSite SameSite
	Path     string
	MaxAge   time.Duration // zero produces a session cookie
}

// CookieWriter is the transport side of a session: the Session Manager tells it
// which cookies to set or clear, the boundary layer decides how.
type CookieWriter interface {
	SetCookie(name, value string, opts CookieOptions)
	ClearCookie(name string, opts CookieOptions)
}

type AuthMetrics interface {
	ObserveAuth(operation, outcome string)
}

type AuthService interface {
	Register(ctx context.Context, email, password string) (domain.PublicUser, error)
	Login(ctx context.Context, email, password string, cookies CookieWriter) (domain.PublicUser, error)
	Refresh(ctx context.Context, refreshToken string, cookies CookieWriter) (domain.PublicUser, error)
	Logout(ctx context.Context, refreshToken string, cookies CookieWriter) string
}
