package server

import (
	"context"
	"net/http"
	"testing"
	"time"

	"chirp/internal/auth"
	"chirp/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestPasswordResetUniformResponse(t *testing.T) {
	s, _ := newTestServer(t)
	app := newTestApp(s)
	createServerTestUser(t, s, "alice")

	for _, email := range []string{"alice@example.com", "nobody@example.com"} {
		resp := doJSON(t, app, http.MethodPost, "/api/auth/password/reset", 0, map[string]string{
			"email": email,
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		body := decodeBody[map[string]string](t, resp)
		assert.Equal(t, service.ResetRequestedMessage, body["message"])
	}
}

func TestConfirmPasswordResetFlow(t *testing.T) {
	s, _ := newTestServer(t)
	app := newTestApp(s)
	user := createServerTestUser(t, s, "alice")

	// Plant a known reset token the way the service stores it.
	token, err := auth.NewOpaqueToken()
	require.NoError(t, err)
	profile, err := s.userRepo.GetProfile(context.Background(), user.ID)
	require.NoError(t, err)
	profile.ResetToken = auth.HashToken(token)
	expires := time.Now().Add(service.ResetTokenTTL)
	profile.ResetTokenExpires = &expires
	require.NoError(t, s.userRepo.SaveProfile(context.Background(), profile))

	resp := doJSON(t, app, http.MethodPost, "/api/auth/password/reset/confirm", 0, map[string]string{
		"email":        "alice@example.com",
		"token":        "not-the-token",
		"new_password": testPassword,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPost, "/api/auth/password/reset/confirm", 0, map[string]string{
		"email":        "alice@example.com",
		"token":        token,
		"new_password": "N3w!StrongPassword",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// The new password works for login.
	resp = doJSON(t, app, http.MethodPost, "/api/auth/login", 0, map[string]string{
		"email":    "alice@example.com",
		"password": "N3w!StrongPassword",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// The token is single use.
	resp = doJSON(t, app, http.MethodPost, "/api/auth/password/reset/confirm", 0, map[string]string{
		"email":        "alice@example.com",
		"token":        token,
		"new_password": "An0ther!Password",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestVerifyEmailFlow(t *testing.T) {
	s, _ := newTestServer(t)
	app := newTestApp(s)

	resp := doJSON(t, app, http.MethodPost, "/api/auth/register", 0, map[string]string{
		"username": "alice",
		"email":    "alice@example.com",
		"password": testPassword,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	registered := decodeBody[service.AuthResult](t, resp)

	// Registration stores a hashed key, so plant a fresh one we know.
	key, err := auth.NewOpaqueToken()
	require.NoError(t, err)
	profile, err := s.userRepo.GetProfile(context.Background(), registered.User.ID)
	require.NoError(t, err)
	profile.EmailVerificationKey = auth.HashToken(key)
	require.NoError(t, s.userRepo.SaveProfile(context.Background(), profile))

	resp = doJSON(t, app, http.MethodPost, "/api/auth/verify-email", 0, map[string]string{
		"email": "alice@example.com",
		"key":   key,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	profile, err = s.userRepo.GetProfile(context.Background(), registered.User.ID)
	require.NoError(t, err)
	assert.True(t, profile.IsVerified)
	assert.NotNil(t, profile.EmailVerifiedAt)
}
