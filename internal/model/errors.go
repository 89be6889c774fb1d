package model

import "errors"

var (
	// ErrNotFound is returned by stores when no row matches the query.
	ErrNotFound = errors.New("not found")

	// ErrEmailTaken is returned on registration with an existing email.
	ErrEmailTaken = errors.New("email already taken")

	// ErrLastOwner is returned when an operation would leave an
	// organization without any owner.
	ErrLastOwner = errors.New("organization must keep at least one owner")

	// ErrInvitationConsumed is returned when an invitation token was
	// already accepted or revoked.
	ErrInvitationConsumed = errors.New("invitation no longer valid")
)
