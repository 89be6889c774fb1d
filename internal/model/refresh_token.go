package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RefreshTokenStore persists hashed refresh-token records. The raw token
// value never reaches the store; lookups go through its hash.
type RefreshTokenStore interface {
	Create(ctx context.Context, token RefreshToken) error
	GetByHash(ctx context.Context, hash []byte) (RefreshToken, error)
	// Rotate marks the old record revoked and creates the replacement in
	// one transaction. The revocation is conditional on the record still
	// being active; if another rotation won the race, ErrTokenRevoked is
	// returned and the replacement is not created.
	Rotate(ctx context.Context, oldID uuid.UUID, replacement RefreshToken) error
	RevokeByID(ctx context.Context, id uuid.UUID) error
	RevokeAllByUser(ctx context.Context, userID uuid.UUID) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// RefreshToken is a persisted refresh-token record.
type RefreshToken struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	TokenHash   []byte
	Fingerprint string
	IssuedAt    time.Time
	ExpiresAt   time.Time
	RevokedAt   *time.Time
	ReplacedBy  *uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Active reports whether the record is usable at the given instant.
func (t RefreshToken) Active(now time.Time) bool {
	return t.RevokedAt == nil && now.Before(t.ExpiresAt)
}
