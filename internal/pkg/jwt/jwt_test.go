package jwt

import (
	"testing"

	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	svc, err := NewJWTService("test-secret", "1h")
	require.NoError(t, err)
	return svc
}

func TestGenerateAccessToken(t *testing.T) {
	svc := newTestService(t)

	token, exp, err := svc.GenerateAccessToken("emp-1", "tl")
	require.NoError(t, err)
	assert.NotZero(t, exp)

	decoded, err := jwtauth.VerifyToken(svc.JWTAuth(), token)
	require.NoError(t, err)
	claims, err := decoded.AsMap(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "emp-1", claims["employee_id"])
	assert.Equal(t, TokenTypeAccess, claims["type"])
}

func TestSSEToken(t *testing.T) {
	svc := newTestService(t)

	token, expiresIn, err := svc.GenerateSSEToken("emp-1")
	require.NoError(t, err)
	assert.Equal(t, 300, expiresIn)

	id, err := svc.ValidateSSEToken(token)
	require.NoError(t, err)
	assert.Equal(t, "emp-1", id)

	access, _, err := svc.GenerateAccessToken("emp-1", "tl")
	require.NoError(t, err)
	_, err = svc.ValidateSSEToken(access)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.ValidateSSEToken("garbage")
	assert.Error(t, err)
}

func TestNewJWTService_BadExpiration(t *testing.T) {
	_, err := NewJWTService("s", "soon")
	assert.Error(t, err)
}
