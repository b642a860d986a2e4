package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	s := New("test-secret", time.Hour)

	token, err := s.GenerateToken(7, RoleFrontDesk)
	require.NoError(t, err)

	claims, err := s.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.StaffID)
	assert.Equal(t, RoleFrontDesk, claims.Role)
}

func TestGenerateToken_RejectsUnknownRole(t *testing.T) {
	s := New("test-secret", time.Hour)

	_, err := s.GenerateToken(7, "guest")
	assert.Error(t, err)
}

func TestValidateToken_RejectsWrongSecret(t *testing.T) {
	issuer := New("test-secret", time.Hour)
	verifier := New("other-secret", time.Hour)

	token, err := issuer.GenerateToken(7, RoleManager)
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateToken_RejectsExpired(t *testing.T) {
	s := New("test-secret", -time.Minute)

	token, err := s.GenerateToken(7, RoleAdmin)
	require.NoError(t, err)

	_, err = s.ValidateToken(token)
	assert.Error(t, err)
}
