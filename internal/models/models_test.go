package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		claim  string
		want   Role
		wantOK bool
	}{
		{claim: "ROLE_OPERATIONS_MANAGER", want: RoleOperationsManager, wantOK: true},
		{claim: "AIRCRAFT_OPERATOR", want: RoleAircraftOperator, wantOK: true},
		{claim: " ROLE_AIRCRAFT_OPERATOR ", want: RoleAircraftOperator, wantOK: true},
		{claim: "ROLE_ADMIN"},
		{claim: "role_aircraft_operator"},
		{claim: ""},
	}

	for _, tt := range tests {
		t.Run(tt.claim, func(t *testing.T) {
			role, ok := ParseRole(tt.claim)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, role)
		})
	}
}

func TestNormalizeRoles(t *testing.T) {
	roles := NormalizeRoles([]string{"ROLE_OPERATIONS_MANAGER", "ROLE_USER", "OPERATIONS_MANAGER", "ROLE_AIRCRAFT_OPERATOR"})

	assert.Equal(t, []Role{RoleOperationsManager, RoleAircraftOperator}, roles)
	assert.Empty(t, NormalizeRoles(nil))
}

func TestSession(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	expiry := now.Add(time.Minute)

	var missing *Session
	assert.False(t, missing.IsValid(now))
	assert.False(t, missing.HasAnyRole(RoleAircraftOperator))
	assert.Equal(t, LandingLogin, missing.LandingPage())

	session := &Session{Roles: []Role{RoleAircraftOperator}, Expiry: &expiry}
	assert.True(t, session.IsValid(now))
	assert.False(t, session.IsValid(expiry))
	assert.True(t, session.HasAnyRole(RoleOperationsManager, RoleAircraftOperator))
	assert.False(t, session.HasAnyRole(RoleOperationsManager))
	assert.False(t, session.HasAnyRole())
	assert.Equal(t, LandingOperator, session.LandingPage())

	both := &Session{Roles: []Role{RoleAircraftOperator, RoleOperationsManager}}
	assert.True(t, both.IsValid(now))
	assert.Equal(t, LandingManager, both.LandingPage())
}

func TestOrderStatusNext(t *testing.T) {
	next, ok := StatusPending.Next()
	assert.True(t, ok)
	assert.Equal(t, StatusConfirmed, next)

	next, ok = StatusConfirmed.Next()
	assert.True(t, ok)
	assert.Equal(t, StatusCompleted, next)

	_, ok = StatusCompleted.Next()
	assert.False(t, ok)

	_, ok = StatusCancelled.Next()
	assert.False(t, ok)

	assert.True(t, StatusCancelled.IsTerminal())
	assert.False(t, StatusPending.IsTerminal())
}

func TestParseOrderStatus(t *testing.T) {
	status, err := ParseOrderStatus(" confirmed ")
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, status)

	_, err = ParseOrderStatus("LOST")
	assert.Error(t, err)
}
