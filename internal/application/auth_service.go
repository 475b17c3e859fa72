package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/irfit-gateway/internal/access"
)

// IdentityProvider checks credentials against the account backend.
type IdentityProvider interface {
	Login(ctx context.Context, email, password string) (Identity, error)
}

// SessionRepository captures the persistence interactions for issued sessions.
type SessionRepository interface {
	CreateSession(ctx context.Context, session Session) (Session, error)
	GetSessionByDigest(ctx context.Context, digest string) (Session, error)
	TouchSession(ctx context.Context, id string, at time.Time) error
	RevokeSession(ctx context.Context, digest string, revokedAt time.Time) (Session, error)
	DeleteExpiredSessions(ctx context.Context, reference time.Time) (int64, error)
}

// touchInterval limits how often session activity is written back.
const touchInterval = time.Minute

// AuthService signs viewers in and resolves them from session tokens.
type AuthService struct {
	identities     IdentityProvider
	sessions       SessionRepository
	digester       *TokenDigester
	tokenGenerator func() string
	now            func() time.Time
	sessionTTL     time.Duration
	logger         *slog.Logger
}

// NewAuthService constructs an AuthService with the provided dependencies.
func NewAuthService(identities IdentityProvider, sessions SessionRepository, digester *TokenDigester, tokenGenerator func() string, now func() time.Time, sessionTTL time.Duration) *AuthService {
	return NewAuthServiceWithLogger(identities, sessions, digester, tokenGenerator, now, sessionTTL, nil)
}

// NewAuthServiceWithLogger constructs an AuthService with a specified logger.
func NewAuthServiceWithLogger(identities IdentityProvider, sessions SessionRepository, digester *TokenDigester, tokenGenerator func() string, now func() time.Time, sessionTTL time.Duration, logger *slog.Logger) *AuthService {
	if tokenGenerator == nil {
		tokenGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	if sessionTTL <= 0 {
		sessionTTL = 7 * 24 * time.Hour
	}
	return &AuthService{
		identities:     identities,
		sessions:       sessions,
		digester:       digester,
		tokenGenerator: tokenGenerator,
		now:            now,
		sessionTTL:     sessionTTL,
		logger:         defaultLogger(logger),
	}
}

func (s *AuthService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AuthService", operation, attrs...)
}

func (s *AuthService) ready() error {
	if s == nil {
		return fmt.Errorf("AuthService is nil")
	}
	if s.sessions == nil {
		return fmt.Errorf("session repository not configured")
	}
	if s.digester == nil {
		return fmt.Errorf("token digester not configured")
	}
	return nil
}

// Authenticate checks credentials with the backend and issues a session.
func (s *AuthService) Authenticate(ctx context.Context, params AuthenticateParams) (result AuthenticateResult, err error) {
	if err = s.ready(); err != nil {
		return
	}
	if s.identities == nil {
		err = fmt.Errorf("identity provider not configured")
		return
	}

	email := strings.TrimSpace(strings.ToLower(params.Email))
	logger := s.loggerWith(ctx, "Authenticate", "email", email)
	defer func() {
		if err != nil {
			logger.WarnContext(ctx, "authentication failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With(
			"user_id", result.Session.UserID.String(),
			"role", string(result.Session.Role),
			"session_id", result.Session.ID,
		).InfoContext(ctx, "authentication succeeded")
	}()

	if email == "" || params.Password == "" {
		err = ErrInvalidCredentials
		return
	}

	var identity Identity
	identity, err = s.identities.Login(ctx, email, params.Password)
	if err != nil {
		return
	}

	role := access.ParseRole(identity.Role)
	if !role.Valid() || identity.ID.IsZero() {
		err = ErrInvalidCredentials
		return
	}

	now := s.now().UTC()
	id := s.tokenGenerator()
	token := s.tokenGenerator()
	if id == "" || token == "" {
		err = fmt.Errorf("token generator returned an empty value")
		return
	}

	name := strings.TrimSpace(identity.Name)
	if name == "" {
		name = email
	}

	session := Session{
		ID:          id,
		TokenDigest: s.digester.Digest(token),
		UserID:      identity.ID,
		Role:        role,
		Name:        name,
		ExpiresAt:   now.Add(s.sessionTTL),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	session, err = s.sessions.CreateSession(ctx, session)
	if err != nil {
		return
	}

	result = AuthenticateResult{Token: token, Session: session, Viewer: session.Viewer()}
	return
}

// ValidateSession resolves the viewer behind a bearer token.
func (s *AuthService) ValidateSession(ctx context.Context, token string) (viewer *access.Viewer, err error) {
	if err = s.ready(); err != nil {
		return
	}

	trimmed := strings.TrimSpace(token)
	logger := s.loggerWith(ctx, "ValidateSession", "token_provided", trimmed != "")
	defer func() {
		if err != nil {
			logger.DebugContext(ctx, "session validation failed", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	if trimmed == "" {
		err = ErrInvalidCredentials
		return
	}

	var session Session
	session, err = s.sessions.GetSessionByDigest(ctx, s.digester.Digest(trimmed))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			err = ErrInvalidCredentials
		}
		return
	}

	now := s.now().UTC()
	if session.RevokedAt != nil {
		err = ErrSessionRevoked
		return
	}
	if !session.ExpiresAt.After(now) {
		err = ErrSessionExpired
		return
	}
	if !session.Role.Valid() {
		err = ErrInvalidCredentials
		return
	}

	if now.Sub(session.UpdatedAt) >= touchInterval {
		if touchErr := s.sessions.TouchSession(ctx, session.ID, now); touchErr != nil {
			logger.WarnContext(ctx, "failed to record session activity", "error", touchErr, "session_id", session.ID)
		}
	}

	viewer = session.Viewer()
	return
}

// RevokeSession invalidates the session behind token.
func (s *AuthService) RevokeSession(ctx context.Context, token string) error {
	if err := s.ready(); err != nil {
		return err
	}

	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return ErrInvalidCredentials
	}

	logger := s.loggerWith(ctx, "RevokeSession")

	session, err := s.sessions.RevokeSession(ctx, s.digester.Digest(trimmed), s.now().UTC())
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			logger.WarnContext(ctx, "failed to revoke session", "error", ErrInvalidCredentials, "error_kind", ErrorKind(ErrInvalidCredentials))
			return ErrInvalidCredentials
		}
		logger.ErrorContext(ctx, "failed to revoke session", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.InfoContext(ctx, "session revoked", "session_id", session.ID)
	return nil
}

// PruneExpiredSessions deletes sessions that are past their expiry.
func (s *AuthService) PruneExpiredSessions(ctx context.Context) (int64, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}

	logger := s.loggerWith(ctx, "PruneExpiredSessions")
	removed, err := s.sessions.DeleteExpiredSessions(ctx, s.now().UTC())
	if err != nil {
		logger.ErrorContext(ctx, "failed to prune expired sessions", "error", err, "error_kind", ErrorKind(err))
		return 0, err
	}
	logger.InfoContext(ctx, "expired sessions pruned", "removed", removed)
	return removed, nil
}
