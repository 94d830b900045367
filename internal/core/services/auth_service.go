package services

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vncsmyrnk/tasks/internal/core/domain"
	"github.com/vncsmyrnk/tasks/internal/core/ports"
)

const (
	opRegister = "register"
	opLogin    = "login"
	opRefresh  = "refresh"
	opLogout   = "logout"
)

// AuthService is the Session Manager. It keeps no state between calls: a
// session is the user's stored refresh-token hash plus the tokens the caller
// holds in cookies. Only one refresh token is valid per user at a time, so a
// login or refresh on one device ends the session on every other device.
type AuthService struct {
	userRepo     ports.UserRepository
	tokens       ports.TokenService
	hasher       ports.PasswordHasher
	cookieSecure bool
	metrics      ports.AuthMetrics
	logger       *slog.Logger
}

type AuthOption func(*AuthService)

func WithAuthLogger(logger *slog.Logger) AuthOption {
	return func(s *AuthService) { s.logger = logger }
}

func WithAuthMetrics(metrics ports.AuthMetrics) AuthOption {
	return func(s *AuthService) { s.metrics = metrics }
}

func NewAuthService(userRepo ports.UserRepository, tokens ports.TokenService, hasher ports.PasswordHasher, cookieSecure bool, opts ...AuthOption) *AuthService {
	s := &AuthService{
		userRepo:     userRepo,
		tokens:       tokens,
		hasher:       hasher,
		cookieSecure: cookieSecure,
		metrics:      noopAuthMetrics{},
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *AuthService) Register(ctx context.Context, email, password string) (domain.PublicUser, error) {
	email = domain.NormalizeEmail(email)

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		s.metrics.ObserveAuth(opRegister, "error")
		return domain.PublicUser{}, fmt.Errorf("failed to get user: %w", err)
	}
	if existing != nil {
		s.metrics.ObserveAuth(opRegister, "conflict")
		return domain.PublicUser{}, domain.ErrEmailInUse
	}

	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		s.metrics.ObserveAuth(opRegister, "error")
		return domain.PublicUser{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{Email: email, PasswordHash: passwordHash}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// Another registration for the same email won the race after our lookup.
		if errors.Is(err, domain.ErrEmailInUse) {
			s.metrics.ObserveAuth(opRegister, "conflict")
			return domain.PublicUser{}, domain.ErrEmailInUse
		}
		s.metrics.ObserveAuth(opRegister, "error")
		return domain.PublicUser{}, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.InfoContext(ctx, "user registered", "user_id", user.ID.String())
	s.metrics.ObserveAuth(opRegister, "success")
	return user.Public(), nil
}

func (s *AuthService) Login(ctx context.Context, email, password string, cookies ports.CookieWriter) (domain.PublicUser, error) {
	email = domain.NormalizeEmail(email)

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		s.metrics.ObserveAuth(opLogin, "error")
		return domain.PublicUser{}, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		s.metrics.ObserveAuth(opLogin, "invalid_credentials")
		return domain.PublicUser{}, domain.ErrInvalidCredentials
	}

	ok, err := s.hasher.Compare(user.PasswordHash, password)
	if err != nil {
		s.logger.ErrorContext(ctx, "stored password hash is unusable", "user_id", user.ID.String(), "error", err)
	}
	if !ok {
		s.metrics.ObserveAuth(opLogin, "invalid_credentials")
		return domain.PublicUser{}, domain.ErrInvalidCredentials
	}

	pair, err := s.startSession(ctx, user)
	if err != nil {
		s.metrics.ObserveAuth(opLogin, outcomeOf(err))
		return domain.PublicUser{}, err
	}

	s.setSessionCookies(cookies, pair)
	s.logger.InfoContext(ctx, "user logged in", "user_id", user.ID.String())
	s.metrics.ObserveAuth(opLogin, "success")
	return user.Public(), nil
}

// Refresh rotates the session. A refresh token that verifies but does not
// match the stored hash was already rotated away or stolen; the stored session
// is dropped so neither holder can continue.
//
// Concurrent refreshes with the same token are not serialized. The request
// that loses the race sees a mismatch and drops the session, so the winner's
// freshly rotated token stops working too and the user has to log in again.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string, cookies ports.CookieWriter) (domain.PublicUser, error) {
	if refreshToken == "" {
		s.metrics.ObserveAuth(opRefresh, "missing_token")
		return domain.PublicUser{}, domain.ErrMissingRefreshToken
	}
	if !s.tokens.HasRefreshSecret() {
		s.logger.ErrorContext(ctx, "refresh secret is not configured")
		s.metrics.ObserveAuth(opRefresh, "misconfigured")
		return domain.PublicUser{}, domain.ErrRefreshSecretMissing
	}

	payload, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		s.clearSessionCookies(cookies)
		s.metrics.ObserveAuth(opRefresh, "invalid_token")
		return domain.PublicUser{}, domain.ErrInvalidRefreshToken
	}

	user, err := s.userRepo.GetByID(ctx, payload.Subject)
	if err != nil {
		s.metrics.ObserveAuth(opRefresh, "error")
		return domain.PublicUser{}, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil || !user.HasActiveSession() {
		s.clearSessionCookies(cookies)
		s.metrics.ObserveAuth(opRefresh, "no_session")
		return domain.PublicUser{}, domain.ErrInvalidRefreshToken
	}

	if !matchesTokenHash(*user.RefreshTokenHash, refreshToken) {
		s.logger.WarnContext(ctx, "refresh token reuse detected, ending session", "user_id", user.ID.String())
		if err := s.userRepo.SetRefreshTokenHash(ctx, user.ID.String(), nil); err != nil {
			s.logger.ErrorContext(ctx, "failed to end session after reuse", "user_id", user.ID.String(), "error", err)
		}
		s.clearSessionCookies(cookies)
		s.metrics.ObserveAuth(opRefresh, "reuse_detected")
		return domain.PublicUser{}, domain.ErrInvalidRefreshToken
	}

	pair, err := s.startSession(ctx, user)
	if err != nil {
		s.metrics.ObserveAuth(opRefresh, outcomeOf(err))
		return domain.PublicUser{}, err
	}

	s.setSessionCookies(cookies, pair)
	s.metrics.ObserveAuth(opRefresh, "success")
	return user.Public(), nil
}

// Logout never fails. Ending the stored session is best-effort: the token only
// needs to name a subject, it does not have to match the stored hash.
func (s *AuthService) Logout(ctx context.Context, refreshToken string, cookies ports.CookieWriter) string {
	if refreshToken != "" {
		if payload, err := s.tokens.VerifyRefreshToken(refreshToken); err == nil {
			if err := s.userRepo.SetRefreshTokenHash(ctx, payload.Subject, nil); err != nil {
				s.logger.WarnContext(ctx, "failed to end session on logout", "user_id", payload.Subject, "error", err)
			}
		}
	}

	s.clearSessionCookies(cookies)
	s.metrics.ObserveAuth(opLogout, "success")
	return "Logged out"
}

// startSession issues a new token pair and binds its refresh token to the user,
// replacing whatever session was stored before.
func (s *AuthService) startSession(ctx context.Context, user *domain.User) (domain.SessionPair, error) {
	pair, err := s.issueTokens(user)
	if err != nil {
		return domain.SessionPair{}, err
	}

	refreshTokenHash := hashToken(pair.RefreshToken)
	if err := s.userRepo.SetRefreshTokenHash(ctx, user.ID.String(), &refreshTokenHash); err != nil {
		return domain.SessionPair{}, fmt.Errorf("failed to store refresh token: %w", err)
	}
	user.RefreshTokenHash = &refreshTokenHash

	return pair, nil
}

func (s *AuthService) issueTokens(user *domain.User) (domain.SessionPair, error) {
	payload := domain.TokenPayload{Subject: user.ID.String(), Email: user.Email}

	accessToken, err := s.tokens.IssueAccessToken(payload)
	if err != nil {
		return domain.SessionPair{}, asAuthError(err)
	}

	refreshToken, err := s.tokens.IssueRefreshToken(payload)
	if err != nil {
		return domain.SessionPair{}, asAuthError(err)
	}

	return domain.SessionPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func (s *AuthService) setSessionCookies(cookies ports.CookieWriter, pair domain.SessionPair) {
	access := s.baseCookieOptions()
	access.MaxAge = s.tokens.AccessCookieMaxAge()
	cookies.SetCookie(domain.AccessTokenCookie, pair.AccessToken, access)

	refresh := s.baseCookieOptions()
	refresh.MaxAge = s.tokens.RefreshCookieMaxAge()
	cookies.SetCookie(domain.RefreshTokenCookie, pair.RefreshToken, refresh)
}

func (s *AuthService) clearSessionCookies(cookies ports.CookieWriter) {
	opts := s.baseCookieOptions()
	cookies.ClearCookie(domain.AccessTokenCookie, opts)
	cookies.ClearCookie(domain.RefreshTokenCookie, opts)
}

func (s *AuthService) baseCookieOptions() ports.CookieOptions {
	return ports.CookieOptions{
		HTTPOnly: true,
		SameSite: ports.SameSiteLax,
		Secure:   s.cookieSecure,
		Path:     "/",
	}
}

// asAuthError keeps misconfiguration errors typed and turns anything else from
// the signer into a generic failure.
func asAuthError(err error) error {
	if errors.Is(err, domain.ErrUnauthorized) {
		return err
	}
	return fmt.Errorf("failed to issue tokens: %w", err)
}

func outcomeOf(err error) string {
	if errors.Is(err, domain.ErrUnauthorized) {
		return "misconfigured"
	}
	return "error"
}

func hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

func matchesTokenHash(storedHash, token string) bool {
	return subtle.ConstantTimeCompare([]byte(storedHash), []byte(hashToken(token))) == 1
}

type noopAuthMetrics struct{}

func (noopAuthMetrics) ObserveAuth(string, string) {}
