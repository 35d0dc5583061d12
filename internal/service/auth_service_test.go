package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/servicenest/helpdesk/internal/auth"
	"github.com/servicenest/helpdesk/internal/config"
	"github.com/servicenest/helpdesk/internal/domain"
	apperrors "github.com/servicenest/helpdesk/pkg/util"
)

func newAuthFixture(t *testing.T) (*AuthService, *fakeUserRepo) {
	t.Helper()
	users := newFakeUserRepo()
	tokens := auth.NewTokenManager("test-secret", 30)
	cfg := config.AuthConfig{JWTSecret: "test-secret", AccessTokenTTLMinutes: 30, BcryptCost: 4}
	return NewAuthService(cfg, users, tokens), users
}

func TestRegisterHashesPasswordAndDefaultsRole(t *testing.T) {
	svc, users := newAuthFixture(t)

	user, err := svc.Register(context.Background(), RegisterInput{
		FirstName: "Avery",
		Email:     "Avery@Example.com",
		Password:  "hunter22",
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(user.ID, "USR-"))
	assert.Equal(t, "avery@example.com", user.Email)
	assert.Equal(t, domain.RoleUser, user.Role)
	assert.Equal(t, domain.UserStatusActive, user.Status)
	assert.NotEqual(t, "hunter22", user.PasswordHash)
	require.NoError(t, auth.ComparePassword(user.PasswordHash, "hunter22"))

	stored, err := users.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, stored.Email)
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	svc, _ := newAuthFixture(t)
	_, err := svc.Register(context.Background(), RegisterInput{
		FirstName: "Avery", Email: "avery@example.com", Password: "hunter22",
	})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), RegisterInput{
		FirstName: "Impostor", Email: "avery@example.com", Password: "hunter33",
	})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeConflict))
}

func TestRegisterRejectsUnknownRole(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.Register(context.Background(), RegisterInput{
		FirstName: "Avery", Email: "avery@example.com", Password: "hunter22", Role: "superuser",
	})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
}

func TestLoginIssuesToken(t *testing.T) {
	svc, _ := newAuthFixture(t)
	_, err := svc.Register(context.Background(), RegisterInput{
		FirstName: "Avery", Email: "avery@example.com", Password: "hunter22", Role: domain.RoleAgent,
	})
	require.NoError(t, err)

	result, err := svc.Login(context.Background(), "avery@example.com", "hunter22")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, domain.RoleAgent, result.User.Role)

	claims, err := auth.NewTokenManager("test-secret", 30).ParseToken(result.Token)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, claims.UserID)
	assert.Equal(t, domain.RoleAgent, claims.Role)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, _ := newAuthFixture(t)
	_, err := svc.Register(context.Background(), RegisterInput{
		FirstName: "Avery", Email: "avery@example.com", Password: "hunter22",
	})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "avery@example.com", "wrong")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeUnauthorized))

	_, err = svc.Login(context.Background(), "nobody@example.com", "hunter22")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeUnauthorized))
}

func TestLoginRejectsSuspendedAccount(t *testing.T) {
	svc, users := newAuthFixture(t)
	user, err := svc.Register(context.Background(), RegisterInput{
		FirstName: "Avery", Email: "avery@example.com", Password: "hunter22",
	})
	require.NoError(t, err)
	users.users[user.ID].Status = domain.UserStatusSuspended

	_, err = svc.Login(context.Background(), "avery@example.com", "hunter22")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeUnauthorized))
}
