package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/orgdesk/orgdesk-server/internal/mocks"
	"github.com/orgdesk/orgdesk-server/internal/model"
	"github.com/orgdesk/orgdesk-server/internal/testutil"
)

func TestAudit_Record_SwallowsErrors(t *testing.T) {
	ctx := context.Background()

	store := &mocks.AuditStore{}
	store.On("Append", ctx, mock.Anything).Return(errors.New("db down")).Once()

	svc := NewAudit(store, &mocks.MembershipStore{}, testutil.MakeNoopLogger())

	// Must not panic or surface the failure.
	svc.Record(ctx, model.AuditEntry{Action: model.AuditLogin})
	store.AssertExpectations(t)
}

func TestAudit_ListByOrg_AdminSucceeds(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()
	callerID := uuid.New()

	store := &mocks.AuditStore{}
	members := &mocks.MembershipStore{}

	members.On("Get", ctx, orgID, callerID).
		Return(model.Membership{OrgID: orgID, UserID: callerID, Role: model.RoleAdmin}, nil).Once()
	store.On("ListByOrg", ctx, orgID, 50, 0).
		Return([]model.AuditEntry{{Action: model.AuditOrgCreated}}, nil).Once()

	svc := NewAudit(store, members, testutil.MakeNoopLogger())

	entries, err := svc.ListByOrg(ctx, orgID, callerID, 0, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, model.AuditOrgCreated, entries[0].Action)
}

func TestAudit_ListByOrg_MemberForbidden(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()
	callerID := uuid.New()

	store := &mocks.AuditStore{}
	members := &mocks.MembershipStore{}

	members.On("Get", ctx, orgID, callerID).
		Return(model.Membership{OrgID: orgID, UserID: callerID, Role: model.RoleMember}, nil).Once()

	svc := NewAudit(store, members, testutil.MakeNoopLogger())

	_, err := svc.ListByOrg(ctx, orgID, callerID, 0, 0)
	require.Error(t, err)
	store.AssertNotCalled(t, "ListByOrg", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAudit_ListByOrg_ClampsLimit(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()
	callerID := uuid.New()

	store := &mocks.AuditStore{}
	members := &mocks.MembershipStore{}

	members.On("Get", ctx, orgID, callerID).
		Return(model.Membership{OrgID: orgID, UserID: callerID, Role: model.RoleOwner}, nil).Once()
	store.On("ListByOrg", ctx, orgID, 200, 0).Return([]model.AuditEntry{}, nil).Once()

	svc := NewAudit(store, members, testutil.MakeNoopLogger())

	_, err := svc.ListByOrg(ctx, orgID, callerID, 9999, -5)
	require.NoError(t, err)
	store.AssertExpectations(t)
}
