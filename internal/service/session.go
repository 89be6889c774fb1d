package service

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/orgdesk/orgdesk-server/internal/apierrors"
	"github.com/orgdesk/orgdesk-server/internal/logger"
	"github.com/orgdesk/orgdesk-server/internal/model"
)

// LoginLimiter guards the login endpoint against brute-force attempts.
type LoginLimiter interface {
	Allowed(sourceIP string) (bool, time.Duration)
	RecordFailure(sourceIP string)
	Clear(sourceIP string)
}

// SessionConfig carries the tunables of the session lifecycle. The
// refresh secret is separate from the access-token signing key on
// purpose; compromise of one does not compromise the other.
type SessionConfig struct {
	RefreshSecret string
	RefreshTTL    time.Duration
	BcryptCost    int
}

// SessionResult is what a successful login or refresh produces. The
// refresh token is the raw value destined for the cookie; it is never
// persisted or logged.
type SessionResult struct {
	AccessToken  string
	RefreshToken string
	User         model.User
}

// Session orchestrates login, refresh, logout and password changes on
// top of the token manager and the refresh-token store.
type Session struct {
	users   model.UserStore
	tokens  model.RefreshTokenStore
	manager model.TokenManager
	limiter LoginLimiter
	audit   model.AuditRecorder
	clock   model.Clock
	logger  *logger.Logger
	cfg     SessionConfig
}

func NewSession(
	users model.UserStore,
	tokens model.RefreshTokenStore,
	manager model.TokenManager,
	limiter LoginLimiter,
	audit model.AuditRecorder,
	clock model.Clock,
	logger *logger.Logger,
	cfg SessionConfig,
) *Session {
	return &Session{
		users:   users,
		tokens:  tokens,
		manager: manager,
		limiter: limiter,
		audit:   audit,
		clock:   clock,
		logger:  logger,
		cfg:     cfg,
	}
}

// Register creates a new account with a bcrypt-hashed password.
func (s *Session) Register(ctx context.Context, email, password, name string) (model.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") {
		return model.User{}, apierrors.NewBadRequest("valid email required")
	}
	if len(password) < 8 {
		return model.User{}, apierrors.NewBadRequest("password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.users.Create(ctx, model.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Role:         model.RoleMember,
	})
	if err != nil {
		if errors.Is(err, model.ErrEmailTaken) {
			s.logger.Info("Session service: registration with taken email")
			return model.User{}, apierrors.NewEmailTaken()
		}
		s.logger.Error("Session service: failed to create user", "error", err.Error())
		return model.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("Session service: user registered", "user_id", user.ID)
	return user, nil
}

// Login verifies credentials and issues an access/refresh token pair.
// The failure message is identical whether the email exists or the
// password is wrong.
func (s *Session) Login(ctx context.Context, email, password, sourceIP, fingerprint string) (SessionResult, error) {
	if allowed, retryAfter := s.limiter.Allowed(sourceIP); !allowed {
		s.logger.Warn("Session service: login blocked by limiter", "ip", sourceIP)
		s.audit.Record(ctx, model.AuditEntry{
			Action: model.AuditLoginLocked,
			IP:     sourceIP,
		})
		return SessionResult{}, apierrors.NewTooManyAttempts(retryAfter)
	}

	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		if !errors.Is(err, model.ErrNotFound) {
			s.logger.Error("Session service: failed to get user by email", "error", err.Error())
			return SessionResult{}, fmt.Errorf("failed to get user by email: %w", err)
		}
		s.limiter.RecordFailure(sourceIP)
		return SessionResult{}, apierrors.NewInvalidCredentials()
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		s.limiter.RecordFailure(sourceIP)
		return SessionResult{}, apierrors.NewInvalidCredentials()
	}

	s.limiter.Clear(sourceIP)

	result, err := s.issuePair(ctx, user, fingerprint)
	if err != nil {
		return SessionResult{}, err
	}

	s.audit.Record(ctx, model.AuditEntry{
		ActorID: &user.ID,
		Action:  model.AuditLogin,
		IP:      sourceIP,
	})
	s.logger.Info("Session service: login completed", "user_id", user.ID)

	return result, nil
}

// Refresh rotates the presented refresh token and issues a fresh access
// token. Presenting an already-rotated token is a replay signature: every
// session of that user is revoked, while the caller sees an ordinary
// session-expired failure.
func (s *Session) Refresh(ctx context.Context, rawRefresh, fingerprint, sourceIP string) (SessionResult, error) {
	if rawRefresh == "" {
		return SessionResult{}, apierrors.NewSessionExpired()
	}

	rt, err := s.tokens.GetByHash(ctx, s.hashRefresh(rawRefresh))
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return SessionResult{}, apierrors.NewSessionExpired()
		}
		s.logger.Error("Session service: failed to look up refresh token", "error", err.Error())
		return SessionResult{}, fmt.Errorf("failed to look up refresh token: %w", err)
	}

	now := s.clock.Now()
	if rt.RevokedAt != nil {
		return SessionResult{}, s.handleReplay(ctx, rt, sourceIP)
	}
	if !now.Before(rt.ExpiresAt) {
		return SessionResult{}, apierrors.NewSessionExpired()
	}

	user, err := s.users.GetByID(ctx, rt.UserID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return SessionResult{}, apierrors.NewSessionExpired()
		}
		s.logger.Error("Session service: failed to get user for refresh", "error", err.Error())
		return SessionResult{}, fmt.Errorf("failed to get user: %w", err)
	}

	newRaw, err := generateRefreshToken()
	if err != nil {
		return SessionResult{}, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	replacement := model.RefreshToken{
		ID:          uuid.New(),
		UserID:      user.ID,
		TokenHash:   s.hashRefresh(newRaw),
		Fingerprint: fingerprint,
		IssuedAt:    now,
		ExpiresAt:   now.Add(s.cfg.RefreshTTL),
	}

	if err := s.tokens.Rotate(ctx, rt.ID, replacement); err != nil {
		if errors.Is(err, model.ErrTokenRevoked) {
			// Lost a rotation race with a concurrent refresh of the
			// same token. Exactly one caller wins; the rest re-login.
			s.logger.Warn("Session service: concurrent rotation lost", "user_id", user.ID)
			return SessionResult{}, apierrors.NewSessionExpired()
		}
		s.logger.Error("Session service: failed to rotate refresh token", "error", err.Error())
		return SessionResult{}, fmt.Errorf("failed to rotate refresh token: %w", err)
	}

	access, err := s.manager.GenerateAccessToken(user.ID, user.Role)
	if err != nil {
		return SessionResult{}, fmt.Errorf("failed to issue access token: %w", err)
	}

	s.logger.Debug("Session service: refresh completed", "user_id", user.ID)
	return SessionResult{AccessToken: access, RefreshToken: newRaw, User: user}, nil
}

// Logout revokes the session bound to the presented refresh token. It is
// idempotent from the client's perspective: an unknown or already-revoked
// token is not an error, the cookies get cleared either way.
func (s *Session) Logout(ctx context.Context, rawRefresh, sourceIP string) error {
	if rawRefresh == "" {
		return nil
	}

	rt, err := s.tokens.GetByHash(ctx, s.hashRefresh(rawRefresh))
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to look up refresh token: %w", err)
	}

	if err := s.tokens.RevokeByID(ctx, rt.ID); err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}

	s.audit.Record(ctx, model.AuditEntry{
		ActorID: &rt.UserID,
		Action:  model.AuditLogout,
		IP:      sourceIP,
	})
	return nil
}

// LogoutAll revokes every active session of the user.
func (s *Session) LogoutAll(ctx context.Context, userID uuid.UUID, sourceIP string) error {
	if err := s.tokens.RevokeAllByUser(ctx, userID); err != nil {
		return fmt.Errorf("failed to revoke sessions: %w", err)
	}

	s.audit.Record(ctx, model.AuditEntry{
		ActorID: &userID,
		Action:  model.AuditLogoutAll,
		IP:      sourceIP,
	})
	s.logger.Info("Session service: all sessions revoked", "user_id", userID)
	return nil
}

// ChangePassword verifies the current password, stores the new hash and
// revokes all sessions; a changed password invalidates every device.
func (s *Session) ChangePassword(ctx context.Context, userID uuid.UUID, current, next, sourceIP string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(current)); err != nil {
		return apierrors.NewInvalidCredentials()
	}
	if len(next) < 8 {
		return apierrors.NewBadRequest("password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), s.cfg.BcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.users.UpdatePasswordHash(ctx, userID, hash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if err := s.tokens.RevokeAllByUser(ctx, userID); err != nil {
		return fmt.Errorf("failed to revoke sessions: %w", err)
	}

	s.audit.Record(ctx, model.AuditEntry{
		ActorID: &userID,
		Action:  model.AuditPasswordChanged,
		IP:      sourceIP,
	})
	s.logger.Info("Session service: password changed", "user_id", userID)
	return nil
}

func (s *Session) issuePair(ctx context.Context, user model.User, fingerprint string) (SessionResult, error) {
	access, err := s.manager.GenerateAccessToken(user.ID, user.Role)
	if err != nil {
		return SessionResult{}, fmt.Errorf("failed to issue access token: %w", err)
	}

	raw, err := generateRefreshToken()
	if err != nil {
		return SessionResult{}, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	now := s.clock.Now()
	rt := model.RefreshToken{
		ID:          uuid.New(),
		UserID:      user.ID,
		TokenHash:   s.hashRefresh(raw),
		Fingerprint: fingerprint,
		IssuedAt:    now,
		ExpiresAt:   now.Add(s.cfg.RefreshTTL),
	}
	if err := s.tokens.Create(ctx, rt); err != nil {
		return SessionResult{}, fmt.Errorf("failed to persist refresh token: %w", err)
	}

	return SessionResult{AccessToken: access, RefreshToken: raw, User: user}, nil
}

// handleReplay is the containment path for a rotated token showing up
// again: revoke everything the user has and record a security event.
func (s *Session) handleReplay(ctx context.Context, rt model.RefreshToken, sourceIP string) error {
	s.logger.Warn("Session service: revoked refresh token presented, revoking all sessions",
		"user_id", rt.UserID,
		"record_id", rt.ID)

	if err := s.tokens.RevokeAllByUser(ctx, rt.UserID); err != nil {
		s.logger.Error("Session service: failed to revoke sessions after replay",
			"user_id", rt.UserID,
			"error", err.Error())
	}

	s.audit.Record(ctx, model.AuditEntry{
		ActorID:    &rt.UserID,
		Action:     model.AuditTokenReplay,
		EntityType: "refresh_token",
		EntityID:   rt.ID.String(),
		IP:         sourceIP,
	})

	// The caller sees the same outcome as an ordinary expiry.
	return apierrors.NewSessionExpired()
}

// hashRefresh computes the stored lookup hash of a raw refresh token.
// Keyed with the refresh secret so a database leak alone is not enough
// to forge lookups offline.
func (s *Session) hashRefresh(raw string) []byte {
	mac := hmac.New(sha256.New, []byte(s.cfg.RefreshSecret))
	mac.Write([]byte(raw))
	return mac.Sum(nil)
}

func generateRefreshToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
