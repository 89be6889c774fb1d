// Package mocks provides testify mocks for the interfaces in
// internal/model, used across service and API tests.
package mocks

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/orgdesk/orgdesk-server/internal/model"
)

type TokenManager struct {
	mock.Mock
}

func (m *TokenManager) GenerateAccessToken(userID uuid.UUID, role model.Role) (string, error) {
	args := m.Called(userID, role)
	return args.String(0), args.Error(1)
}

func (m *TokenManager) ParseAccessToken(token string) (model.Identity, error) {
	args := m.Called(token)
	return args.Get(0).(model.Identity), args.Error(1)
}

type RefreshTokenStore struct {
	mock.Mock
}

func (m *RefreshTokenStore) Create(ctx context.Context, token model.RefreshToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *RefreshTokenStore) GetByHash(ctx context.Context, hash []byte) (model.RefreshToken, error) {
	args := m.Called(ctx, hash)
	return args.Get(0).(model.RefreshToken), args.Error(1)
}

func (m *RefreshTokenStore) Rotate(ctx context.Context, oldID uuid.UUID, replacement model.RefreshToken) error {
	args := m.Called(ctx, oldID, replacement)
	return args.Error(0)
}

func (m *RefreshTokenStore) RevokeByID(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *RefreshTokenStore) RevokeAllByUser(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *RefreshTokenStore) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

type UserStore struct {
	mock.Mock
}

func (m *UserStore) GetByEmail(ctx context.Context, email string) (model.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *UserStore) GetByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *UserStore) Create(ctx context.Context, user model.User) (model.User, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *UserStore) Update(ctx context.Context, user model.User) (model.User, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *UserStore) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash []byte) error {
	args := m.Called(ctx, id, hash)
	return args.Error(0)
}

type OrganizationStore struct {
	mock.Mock
}

func (m *OrganizationStore) Create(ctx context.Context, org model.Organization) (model.Organization, error) {
	args := m.Called(ctx, org)
	return args.Get(0).(model.Organization), args.Error(1)
}

func (m *OrganizationStore) GetByID(ctx context.Context, id uuid.UUID) (model.Organization, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Organization), args.Error(1)
}

func (m *OrganizationStore) GetByMember(ctx context.Context, userID uuid.UUID) ([]model.Organization, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]model.Organization), args.Error(1)
}

func (m *OrganizationStore) Update(ctx context.Context, org model.Organization) (model.Organization, error) {
	args := m.Called(ctx, org)
	return args.Get(0).(model.Organization), args.Error(1)
}

func (m *OrganizationStore) SoftDelete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MembershipStore struct {
	mock.Mock
}

func (m *MembershipStore) Create(ctx context.Context, membership model.Membership) (model.Membership, error) {
	args := m.Called(ctx, membership)
	return args.Get(0).(model.Membership), args.Error(1)
}

func (m *MembershipStore) Get(ctx context.Context, orgID, userID uuid.UUID) (model.Membership, error) {
	args := m.Called(ctx, orgID, userID)
	return args.Get(0).(model.Membership), args.Error(1)
}

func (m *MembershipStore) ListByOrg(ctx context.Context, orgID uuid.UUID) ([]model.Membership, error) {
	args := m.Called(ctx, orgID)
	return args.Get(0).([]model.Membership), args.Error(1)
}

func (m *MembershipStore) UpdateRole(ctx context.Context, orgID, userID uuid.UUID, role model.Role) (model.Membership, error) {
	args := m.Called(ctx, orgID, userID, role)
	return args.Get(0).(model.Membership), args.Error(1)
}

func (m *MembershipStore) Delete(ctx context.Context, orgID, userID uuid.UUID) error {
	args := m.Called(ctx, orgID, userID)
	return args.Error(0)
}

func (m *MembershipStore) CountByRole(ctx context.Context, orgID uuid.UUID, role model.Role) (int, error) {
	args := m.Called(ctx, orgID, role)
	return args.Int(0), args.Error(1)
}

type InvitationStore struct {
	mock.Mock
}

func (m *InvitationStore) Create(ctx context.Context, inv model.Invitation) (model.Invitation, error) {
	args := m.Called(ctx, inv)
	return args.Get(0).(model.Invitation), args.Error(1)
}

func (m *InvitationStore) GetByHash(ctx context.Context, hash []byte) (model.Invitation, error) {
	args := m.Called(ctx, hash)
	return args.Get(0).(model.Invitation), args.Error(1)
}

func (m *InvitationStore) ListByOrg(ctx context.Context, orgID uuid.UUID) ([]model.Invitation, error) {
	args := m.Called(ctx, orgID)
	return args.Get(0).([]model.Invitation), args.Error(1)
}

func (m *InvitationStore) Consume(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *InvitationStore) Revoke(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *InvitationStore) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

type AuditStore struct {
	mock.Mock
}

func (m *AuditStore) Append(ctx context.Context, entry model.AuditEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *AuditStore) ListByOrg(ctx context.Context, orgID uuid.UUID, limit, offset int) ([]model.AuditEntry, error) {
	args := m.Called(ctx, orgID, limit, offset)
	return args.Get(0).([]model.AuditEntry), args.Error(1)
}

type AuditRecorder struct {
	mock.Mock
}

func (m *AuditRecorder) Record(ctx context.Context, entry model.AuditEntry) {
	m.Called(ctx, entry)
}

type Storage struct {
	mock.Mock
}

func (m *Storage) Upload(ctx context.Context, key, contentType string, reader io.Reader, size int64) error {
	args := m.Called(ctx, key, contentType, reader, size)
	return args.Error(0)
}

func (m *Storage) Download(ctx context.Context, key string) (io.ReadCloser, string, error) {
	args := m.Called(ctx, key)
	var rc io.ReadCloser
	if v := args.Get(0); v != nil {
		rc = v.(io.ReadCloser)
	}
	return rc, args.String(1), args.Error(2)
}

func (m *Storage) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *Storage) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

type LoginLimiter struct {
	mock.Mock
}

func (m *LoginLimiter) Allowed(sourceIP string) (bool, time.Duration) {
	args := m.Called(sourceIP)
	return args.Bool(0), args.Get(1).(time.Duration)
}

func (m *LoginLimiter) RecordFailure(sourceIP string) {
	m.Called(sourceIP)
}

func (m *LoginLimiter) Clear(sourceIP string) {
	m.Called(sourceIP)
}
