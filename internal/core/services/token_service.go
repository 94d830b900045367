package services

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/vncsmyrnk/tasks/internal/core/domain"
)

const (
	DefaultAccessTokenTTL  = "15m"
	DefaultRefreshTokenTTL = "7d"
)

type TokenConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     string
	RefreshTTL    string
}

type tokenClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies HS256 access and refresh tokens. The two
// kinds share a payload but are signed with distinct secrets, so a refresh
// token never verifies as an access token and vice versa.
type TokenService struct {
	cfg TokenConfig
	now func() time.Time
}

func NewTokenService(cfg TokenConfig) *TokenService {
	if cfg.AccessTTL == "" {
		cfg.AccessTTL = DefaultAccessTokenTTL
	}
	if cfg.RefreshTTL == "" {
		cfg.RefreshTTL = DefaultRefreshTokenTTL
	}
	return &TokenService{cfg: cfg, now: time.Now}
}

func (s *TokenService) IssueAccessToken(payload domain.TokenPayload) (string, error) {
	return s.sign(payload, s.cfg.AccessSecret, s.cfg.AccessTTL)
}

func (s *TokenService) IssueRefreshToken(payload domain.TokenPayload) (string, error) {
	return s.sign(payload, s.cfg.RefreshSecret, s.cfg.RefreshTTL)
}

func (s *TokenService) VerifyAccessToken(token string) (domain.TokenPayload, error) {
	return s.verify(token, s.cfg.AccessSecret)
}

func (s *TokenService) VerifyRefreshToken(token string) (domain.TokenPayload, error) {
	return s.verify(token, s.cfg.RefreshSecret)
}

func (s *TokenService) HasRefreshSecret() bool {
	return s.cfg.RefreshSecret != ""
}

func (s *TokenService) AccessCookieMaxAge() time.Duration {
	return cookieMaxAge(s.cfg.AccessTTL)
}

func (s *TokenService) RefreshCookieMaxAge() time.Duration {
	return cookieMaxAge(s.cfg.RefreshTTL)
}

func (s *TokenService) sign(payload domain.TokenPayload, secret, ttl string) (string, error) {
	if secret == "" {
		return "", domain.ErrTokenSecretsMissing
	}

	lifetime, err := ParseTTL(ttl)
	if err != nil || lifetime <= 0 {
		return "", domain.ErrTokenTTLInvalid
	}

	now := s.now()
	claims := tokenClaims{
		Email: payload.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   payload.Subject,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(lifetime)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func (s *TokenService) verify(token, secret string) (domain.TokenPayload, error) {
	if secret == "" {
		return domain.TokenPayload{}, domain.ErrTokenSecretsMissing
	}

	claims := &tokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return domain.TokenPayload{}, domain.ErrInvalidToken
	}

	return domain.TokenPayload{Subject: claims.Subject, Email: claims.Email}, nil
}
