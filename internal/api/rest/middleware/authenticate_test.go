package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orgdesk/orgdesk-server/internal/api/rest/cookies"
	"github.com/orgdesk/orgdesk-server/internal/api/rest/identity"
	"github.com/orgdesk/orgdesk-server/internal/mocks"
	"github.com/orgdesk/orgdesk-server/internal/model"
	"github.com/orgdesk/orgdesk-server/internal/testutil"
)

func newAuthedEngine(manager model.TokenManager, protected gin.HandlerFunc, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	authenticate := NewAuthenticate(manager, testutil.MakeNoopLogger())

	handlers := append([]gin.HandlerFunc{authenticate.Handle}, extra...)
	handlers = append(handlers, protected)
	engine.GET("/protected", handlers...)
	return engine
}

func okHandler(c *gin.Context) {
	id, _ := identity.From(c)
	c.JSON(http.StatusOK, gin.H{"user_id": id.UserID.String()})
}

func TestAuthenticate_MissingToken(t *testing.T) {
	manager := &mocks.TokenManager{}
	engine := newAuthedEngine(manager, okHandler)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	manager.AssertNotCalled(t, "ParseAccessToken", "")
}

func TestAuthenticate_InvalidToken(t *testing.T) {
	manager := &mocks.TokenManager{}
	manager.On("ParseAccessToken", "garbage").Return(model.Identity{}, model.ErrTokenInvalid).Once()

	engine := newAuthedEngine(manager, okHandler)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: cookies.SessionCookie, Value: "garbage"})
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	// Same body as a missing token; no detail leaks.
	assert.Contains(t, w.Body.String(), "authentication required")
}

func TestAuthenticate_ExpiredToken(t *testing.T) {
	manager := &mocks.TokenManager{}
	manager.On("ParseAccessToken", "expired").Return(model.Identity{}, model.ErrTokenExpired).Once()

	engine := newAuthedEngine(manager, okHandler)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: cookies.SessionCookie, Value: "expired"})
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticate_ValidToken_SetsIdentity(t *testing.T) {
	userID := uuid.New()
	manager := &mocks.TokenManager{}
	manager.On("ParseAccessToken", "valid-token").
		Return(model.Identity{UserID: userID, Role: model.RoleMember}, nil).Once()

	engine := newAuthedEngine(manager, okHandler)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: cookies.SessionCookie, Value: "valid-token"})
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), userID.String())
}

func TestAuthenticate_BearerHeader(t *testing.T) {
	userID := uuid.New()
	manager := &mocks.TokenManager{}
	manager.On("ParseAccessToken", "header-token").
		Return(model.Identity{UserID: userID, Role: model.RoleMember}, nil).Once()

	engine := newAuthedEngine(manager, okHandler)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer header-token")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireRole_InsufficientRole(t *testing.T) {
	manager := &mocks.TokenManager{}
	manager.On("ParseAccessToken", "member-token").
		Return(model.Identity{UserID: uuid.New(), Role: model.RoleMember}, nil).Once()

	engine := newAuthedEngine(manager, okHandler, RequireRole(model.RoleAdmin))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: cookies.SessionCookie, Value: "member-token"})
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireRole_SufficientRole(t *testing.T) {
	manager := &mocks.TokenManager{}
	manager.On("ParseAccessToken", "owner-token").
		Return(model.Identity{UserID: uuid.New(), Role: model.RoleOwner}, nil).Once()

	engine := newAuthedEngine(manager, okHandler, RequireRole(model.RoleAdmin))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: cookies.SessionCookie, Value: "owner-token"})
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireRole_UnknownRoleDenied(t *testing.T) {
	manager := &mocks.TokenManager{}
	manager.On("ParseAccessToken", "odd-token").
		Return(model.Identity{UserID: uuid.New(), Role: model.Role(42)}, nil).Once()

	engine := newAuthedEngine(manager, okHandler, RequireRole(model.RoleMember))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: cookies.SessionCookie, Value: "odd-token"})
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}
