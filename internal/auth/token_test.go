package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/servicenest/helpdesk/internal/domain"
)

func TestTokenRoundTrip(t *testing.T) {
	orgID := "ORG-AAAA0001"
	user := &domain.User{ID: "USR-AAAA0001", Role: domain.RoleAgent, OrganizationID: &orgID}
	manager := NewTokenManager("secret", 30)

	token, expiresAt, err := manager.GenerateToken(user)
	require.NoError(t, err)
	assert.False(t, expiresAt.IsZero())

	claims, err := manager.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, domain.RoleAgent, claims.Role)
	require.NotNil(t, claims.OrganizationID)
	assert.Equal(t, orgID, *claims.OrganizationID)
}

func TestTokenRejectsWrongSecret(t *testing.T) {
	user := &domain.User{ID: "USR-AAAA0001", Role: domain.RoleUser}
	token, _, err := NewTokenManager("secret", 30).GenerateToken(user)
	require.NoError(t, err)

	_, err = NewTokenManager("other-secret", 30).ParseToken(token)
	assert.Error(t, err)
}

func TestTokenRejectsGarbage(t *testing.T) {
	_, err := NewTokenManager("secret", 30).ParseToken("not.a.token")
	assert.Error(t, err)
}

func TestCapabilitiesForRole(t *testing.T) {
	tests := []struct {
		role domain.UserRole
		want Capabilities
	}{
		{domain.RoleAdmin, Capabilities{CanEdit: true, CanMerge: true, CanViewInternal: true}},
		{domain.RoleAgent, Capabilities{CanEdit: true, CanMerge: true, CanViewInternal: true}},
		{domain.RoleUser, Capabilities{}},
		{domain.UserRole("unknown"), Capabilities{}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CapabilitiesForRole(tt.role), "role %s", tt.role)
	}
}

func TestPasswordHashAndCompare(t *testing.T) {
	hashed, err := HashPassword("hunter22", 4)
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", hashed)

	require.NoError(t, ComparePassword(hashed, "hunter22"))
	assert.Error(t, ComparePassword(hashed, "wrong"))
}
