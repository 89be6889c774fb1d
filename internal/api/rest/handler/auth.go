package handler

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/orgdesk/orgdesk-server/internal/api/rest/cookies"
	"github.com/orgdesk/orgdesk-server/internal/api/rest/identity"
	"github.com/orgdesk/orgdesk-server/internal/logger"
	"github.com/orgdesk/orgdesk-server/internal/model"
	"github.com/orgdesk/orgdesk-server/internal/service"
)

// SessionService defines the session lifecycle operations.
type SessionService interface {
	Register(ctx context.Context, email, password, name string) (model.User, error)
	Login(ctx context.Context, email, password, sourceIP, fingerprint string) (service.SessionResult, error)
	Refresh(ctx context.Context, rawRefresh, fingerprint, sourceIP string) (service.SessionResult, error)
	Logout(ctx context.Context, rawRefresh, sourceIP string) error
	LogoutAll(ctx context.Context, userID uuid.UUID, sourceIP string) error
	ChangePassword(ctx context.Context, userID uuid.UUID, current, next, sourceIP string) error
}

// Auth handles the authentication endpoints.
type Auth struct {
	sessions   SessionService
	cookies    *cookies.Manager
	accessTTL  time.Duration
	refreshTTL time.Duration
	logger     *logger.Logger
}

func NewAuth(
	sessions SessionService,
	cookieManager *cookies.Manager,
	accessTTL, refreshTTL time.Duration,
	logger *logger.Logger,
) *Auth {
	return &Auth{
		sessions:   sessions,
		cookies:    cookieManager,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		logger:     logger,
	}
}

// fingerprint derives an informational client fingerprint from the
// user agent and source address. It is stored with the session for
// audit purposes, not used as an authentication factor.
func fingerprint(c *gin.Context) string {
	sum := sha256.Sum256([]byte(c.Request.UserAgent() + "|" + c.ClientIP()))
	return hex.EncodeToString(sum[:])
}

// Register creates an account.
func (h *Auth) Register(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
		Name     string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, envelope{Error: "email and password required"})
		return
	}

	user, err := h.sessions.Register(c.Request.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondData(c, http.StatusCreated, toUserResponse(user))
}

// Login verifies credentials and establishes the session cookie pair.
func (h *Auth) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, envelope{Error: "email and password required"})
		return
	}

	result, err := h.sessions.Login(c.Request.Context(), req.Email, req.Password, c.ClientIP(), fingerprint(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.cookies.SetPair(c, result.AccessToken, result.RefreshToken, h.accessTTL, h.refreshTTL)
	respondData(c, http.StatusOK, toSessionResponse(result))
}

// Refresh rotates the refresh token and reissues the cookie pair. On
// failure the cookies are cleared so the client falls back to login.
func (h *Auth) Refresh(c *gin.Context) {
	raw := cookies.ReadRefresh(c)

	result, err := h.sessions.Refresh(c.Request.Context(), raw, fingerprint(c), c.ClientIP())
	if err != nil {
		h.cookies.Clear(c)
		respondError(c, h.logger, err)
		return
	}

	h.cookies.SetPair(c, result.AccessToken, result.RefreshToken, h.accessTTL, h.refreshTTL)
	respondData(c, http.StatusOK, toSessionResponse(result))
}

// Logout revokes the presented session and clears the cookies. The
// client always ends up logged out: a failed revocation is logged
// server-side but the cookies are cleared and the response is 200, so
// the browser never keeps a session the user asked to end.
func (h *Auth) Logout(c *gin.Context) {
	raw := cookies.ReadRefresh(c)

	if err := h.sessions.Logout(c.Request.Context(), raw, c.ClientIP()); err != nil {
		h.logger.Error("Auth handler: failed to revoke session on logout", "error", err.Error())
	}

	h.cookies.Clear(c)
	respondOK(c)
}

// LogoutAll revokes every session of the authenticated user.
func (h *Auth) LogoutAll(c *gin.Context) {
	id, ok := identity.From(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, envelope{Error: "authentication required"})
		return
	}

	if err := h.sessions.LogoutAll(c.Request.Context(), id.UserID, c.ClientIP()); err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.cookies.Clear(c)
	respondOK(c)
}

// ChangePassword verifies the current password and sets a new one. All
// sessions are revoked, this one included.
func (h *Auth) ChangePassword(c *gin.Context) {
	id, ok := identity.From(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, envelope{Error: "authentication required"})
		return
	}

	var req struct {
		CurrentPassword string `json:"currentPassword" binding:"required"`
		NewPassword     string `json:"newPassword" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, envelope{Error: "currentPassword and newPassword required"})
		return
	}

	if err := h.sessions.ChangePassword(c.Request.Context(), id.UserID, req.CurrentPassword, req.NewPassword, c.ClientIP()); err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.cookies.Clear(c)
	respondOK(c)
}
