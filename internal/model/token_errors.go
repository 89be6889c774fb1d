package model

import "errors"

var (
	// ErrTokenInvalid covers bad signatures, malformed tokens and
	// hash-lookup misses. Callers must not leak which one it was.
	ErrTokenInvalid = errors.New("token invalid")
	// ErrTokenExpired is distinguishable from ErrTokenInvalid so the
	// client knows a refresh attempt is worthwhile.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenRevoked means the refresh token was found but already
	// rotated or revoked. During refresh this is a replay signature.
	ErrTokenRevoked = errors.New("refresh token revoked")
)
