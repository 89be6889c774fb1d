package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/orgdesk/orgdesk-server/internal/model"
)

// Claims represents JWT claims carried by access tokens.
type Claims struct {
	jwt.RegisteredClaims
	UserID uuid.UUID `json:"user_id"`
	Role   string    `json:"role"`
}

// JWT implements model.TokenManager backed by symmetric HMAC. The signing
// key is dedicated to access tokens; refresh tokens are opaque values that
// never pass through here.
type JWT struct {
	secretKey string
	accessTTL time.Duration
	clock     model.Clock
}

// NewJWT creates a new JWT token manager with the provided secret key and
// access-token lifetime.
func NewJWT(secretKey string, accessTTL time.Duration, clock model.Clock) model.TokenManager {
	return &JWT{secretKey: secretKey, accessTTL: accessTTL, clock: clock}
}

// GenerateAccessToken creates a short-lived access token embedding the
// subject user ID and role.
func (j *JWT) GenerateAccessToken(userID uuid.UUID, role model.Role) (string, error) {
	if !role.Valid() {
		return "", fmt.Errorf("refusing to sign token with role %s", role)
	}

	now := j.clock.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.accessTTL)),
		},
		UserID: userID,
		Role:   role.String(),
	})

	tokenString, err := token.SignedString([]byte(j.secretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}

	return tokenString, nil
}

// ParseAccessToken validates the token and extracts the identity. Expiry
// maps to model.ErrTokenExpired; any other failure maps to
// model.ErrTokenInvalid so callers never see parser internals.
func (j *JWT) ParseAccessToken(tokenString string) (model.Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("wrong signing method %v", t.Header["alg"])
		}
		return []byte(j.secretKey), nil
	}, jwt.WithTimeFunc(j.clock.Now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return model.Identity{}, model.ErrTokenExpired
		}
		return model.Identity{}, model.ErrTokenInvalid
	}
	if !token.Valid {
		return model.Identity{}, model.ErrTokenInvalid
	}

	role, err := model.ParseRole(claims.Role)
	if err != nil {
		return model.Identity{}, model.ErrTokenInvalid
	}
	if claims.UserID == uuid.Nil {
		return model.Identity{}, model.ErrTokenInvalid
	}

	return model.Identity{UserID: claims.UserID, Role: role}, nil
}
