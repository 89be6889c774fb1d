package model

import "github.com/google/uuid"

// Identity is the verified result of parsing an access token.
type Identity struct {
	UserID uuid.UUID
	Role   Role
}

// TokenManager signs and verifies access tokens. Implementations are
// stateless; refresh-token persistence lives behind RefreshTokenStore.
type TokenManager interface {
	GenerateAccessToken(userID uuid.UUID, role Role) (string, error)
	// ParseAccessToken fails with ErrTokenExpired for lapsed tokens and
	// ErrTokenInvalid for everything else, so callers can decide whether
	// a refresh attempt makes sense.
	ParseAccessToken(token string) (Identity, error)
}
