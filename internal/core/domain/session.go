package domain

const (
	AccessTokenCookie  = "access_token"
	RefreshTokenCookie = "refresh_token"
)

// TokenPayload is the body shared by access and refresh tokens.
type TokenPayload struct {
	Subject string
	Email   string
}

// SessionPair is a freshly issued access/refresh token pair. It is never persisted.
type SessionPair struct {
	AccessToken  string
	RefreshToken string
}
