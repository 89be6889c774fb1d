package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/orgdesk/orgdesk-server/internal/api/rest/identity"
	"github.com/orgdesk/orgdesk-server/internal/apierrors"
	"github.com/orgdesk/orgdesk-server/internal/model"
	"github.com/orgdesk/orgdesk-server/internal/service"
	"github.com/orgdesk/orgdesk-server/internal/testutil"
)

type organizationServiceMock struct {
	mock.Mock
}

func (m *organizationServiceMock) Create(ctx context.Context, callerID uuid.UUID, name, description, sourceIP string) (model.Organization, error) {
	args := m.Called(ctx, callerID, name, description, sourceIP)
	return args.Get(0).(model.Organization), args.Error(1)
}

func (m *organizationServiceMock) ListForUser(ctx context.Context, callerID uuid.UUID) ([]model.Organization, error) {
	args := m.Called(ctx, callerID)
	return args.Get(0).([]model.Organization), args.Error(1)
}

func (m *organizationServiceMock) Get(ctx context.Context, orgID, callerID uuid.UUID) (model.Organization, error) {
	args := m.Called(ctx, orgID, callerID)
	return args.Get(0).(model.Organization), args.Error(1)
}

func (m *organizationServiceMock) Update(ctx context.Context, orgID, callerID uuid.UUID, name, description, sourceIP string) (model.Organization, error) {
	args := m.Called(ctx, orgID, callerID, name, description, sourceIP)
	return args.Get(0).(model.Organization), args.Error(1)
}

func (m *organizationServiceMock) Delete(ctx context.Context, orgID, callerID uuid.UUID, sourceIP string) error {
	args := m.Called(ctx, orgID, callerID, sourceIP)
	return args.Error(0)
}

func (m *organizationServiceMock) ListMembers(ctx context.Context, orgID, callerID uuid.UUID) ([]service.Member, error) {
	args := m.Called(ctx, orgID, callerID)
	return args.Get(0).([]service.Member), args.Error(1)
}

func (m *organizationServiceMock) ChangeMemberRole(ctx context.Context, orgID, callerID, userID uuid.UUID, role model.Role, sourceIP string) (model.Membership, error) {
	args := m.Called(ctx, orgID, callerID, userID, role, sourceIP)
	return args.Get(0).(model.Membership), args.Error(1)
}

func (m *organizationServiceMock) RemoveMember(ctx context.Context, orgID, callerID, userID uuid.UUID, sourceIP string) error {
	args := m.Called(ctx, orgID, callerID, userID, sourceIP)
	return args.Error(0)
}

func newOrgEngine(orgs OrganizationService, id model.Identity) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewOrganization(orgs, testutil.MakeNoopLogger())

	engine := gin.New()
	engine.Use(func(c *gin.Context) {
		identity.Set(c, id)
		c.Next()
	})
	engine.POST("/api/orgs", h.Create)
	engine.GET("/api/orgs", h.List)
	engine.GET("/api/orgs/:orgID", h.Get)
	engine.DELETE("/api/orgs/:orgID", h.Delete)
	engine.PATCH("/api/orgs/:orgID/members/:userID", h.ChangeMemberRole)
	return engine
}

func TestOrganizationHandler_Create(t *testing.T) {
	callerID := uuid.New()
	orgs := &organizationServiceMock{}
	orgs.On("Create", mock.Anything, callerID, "Acme", "widgets", mock.Anything).
		Return(model.Organization{ID: uuid.New(), Name: "Acme", Description: "widgets"}, nil).Once()

	engine := newOrgEngine(orgs, model.Identity{UserID: callerID, Role: model.RoleMember})

	body := bytes.NewBufferString(`{"name":"Acme","description":"widgets"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/orgs", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "Acme")
	orgs.AssertExpectations(t)
}

func TestOrganizationHandler_Get_BadID(t *testing.T) {
	engine := newOrgEngine(&organizationServiceMock{}, model.Identity{UserID: uuid.New(), Role: model.RoleMember})

	req := httptest.NewRequest(http.MethodGet, "/api/orgs/not-a-uuid", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOrganizationHandler_Get_Forbidden(t *testing.T) {
	callerID := uuid.New()
	orgID := uuid.New()

	orgs := &organizationServiceMock{}
	orgs.On("Get", mock.Anything, orgID, callerID).
		Return(model.Organization{}, apierrors.NewForbidden()).Once()

	engine := newOrgEngine(orgs, model.Identity{UserID: callerID, Role: model.RoleMember})

	req := httptest.NewRequest(http.MethodGet, "/api/orgs/"+orgID.String(), nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "forbidden")
}

func TestOrganizationHandler_Delete_LastOwnerConflict(t *testing.T) {
	callerID := uuid.New()
	orgID := uuid.New()
	userID := uuid.New()

	orgs := &organizationServiceMock{}
	orgs.On("ChangeMemberRole", mock.Anything, orgID, callerID, userID, model.RoleMember, mock.Anything).
		Return(model.Membership{}, model.ErrLastOwner).Once()

	engine := newOrgEngine(orgs, model.Identity{UserID: callerID, Role: model.RoleMember})

	body := bytes.NewBufferString(`{"role":"member"}`)
	req := httptest.NewRequest(http.MethodPatch, "/api/orgs/"+orgID.String()+"/members/"+userID.String(), body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestOrganizationHandler_ChangeMemberRole_UnknownRole(t *testing.T) {
	callerID := uuid.New()
	engine := newOrgEngine(&organizationServiceMock{}, model.Identity{UserID: callerID, Role: model.RoleMember})

	body := bytes.NewBufferString(`{"role":"superuser"}`)
	req := httptest.NewRequest(http.MethodPatch, "/api/orgs/"+uuid.NewString()+"/members/"+uuid.NewString(), body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "unknown role")
}

func TestOrganizationHandler_List(t *testing.T) {
	callerID := uuid.New()
	orgs := &organizationServiceMock{}
	orgs.On("ListForUser", mock.Anything, callerID).
		Return([]model.Organization{{ID: uuid.New(), Name: "One"}, {ID: uuid.New(), Name: "Two"}}, nil).Once()

	engine := newOrgEngine(orgs, model.Identity{UserID: callerID, Role: model.RoleMember})

	req := httptest.NewRequest(http.MethodGet, "/api/orgs", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "One")
	assert.Contains(t, w.Body.String(), "Two")
}
