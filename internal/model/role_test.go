package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRole_AtLeast(t *testing.T) {
	tests := []struct {
		name string
		role Role
		want Role
		ok   bool
	}{
		{"owner grants owner", RoleOwner, RoleOwner, true},
		{"owner grants admin", RoleOwner, RoleAdmin, true},
		{"owner grants member", RoleOwner, RoleMember, true},
		{"admin denied owner", RoleAdmin, RoleOwner, false},
		{"admin grants admin", RoleAdmin, RoleAdmin, true},
		{"admin grants member", RoleAdmin, RoleMember, true},
		{"member denied admin", RoleMember, RoleAdmin, false},
		{"member grants member", RoleMember, RoleMember, true},
		{"zero role denied", Role(0), RoleMember, false},
		{"unknown role denied", Role(42), RoleMember, false},
		{"unknown wanted role denied", RoleOwner, Role(42), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.ok, tt.role.AtLeast(tt.want))
		})
	}
}

func TestParseRole(t *testing.T) {
	role, err := ParseRole("admin")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, role)

	_, err = ParseRole("superuser")
	require.Error(t, err)
}

func TestRole_RoundTrip(t *testing.T) {
	for _, role := range []Role{RoleOwner, RoleAdmin, RoleMember} {
		parsed, err := ParseRole(role.String())
		require.NoError(t, err)
		assert.Equal(t, role, parsed)
	}
}
