package auth

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOpaqueToken(t *testing.T) {
	a, err := NewOpaqueToken()
	require.NoError(t, err)
	b, err := NewOpaqueToken()
	require.NoError(t, err)

	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b, "tokens must be unique")
}

func TestVerifyToken(t *testing.T) {
	plaintext, err := NewOpaqueToken()
	require.NoError(t, err)
	stored := HashToken(plaintext)

	assert.True(t, VerifyToken(plaintext, stored))
	assert.False(t, VerifyToken(plaintext+"x", stored))
	assert.False(t, VerifyToken("", stored))
	assert.False(t, VerifyToken(plaintext, ""), "empty stored hash never verifies")
}

func TestHashTokenDeterministic(t *testing.T) {
	assert.Equal(t, HashToken("abc"), HashToken("abc"))
	assert.NotEqual(t, HashToken("abc"), HashToken("abd"))
	assert.Len(t, HashToken("abc"), 64)
}

func TestGenerateToken(t *testing.T) {
	const secret = "test-secret"

	signed, err := GenerateToken(42, secret)
	require.NoError(t, err)

	parsed, err := jwt.Parse(signed, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	sub, err := parsed.Claims.GetSubject()
	require.NoError(t, err)
	assert.Equal(t, "42", sub)
}

func TestGenerateTokenRejectsWrongSecret(t *testing.T) {
	signed, err := GenerateToken(1, "right-secret")
	require.NoError(t, err)

	_, err = jwt.Parse(signed, func(token *jwt.Token) (interface{}, error) {
		return []byte("wrong-secret"), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	assert.Error(t, err)
}
