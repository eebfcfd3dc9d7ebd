// Package auth provides opaque-token generation and hashing for
// password-reset and email-verification flows.
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
)

// NewOpaqueToken returns a cryptographically random token as 64 hex chars.
// The plaintext is emailed to the user; only its hash is persisted.
func NewOpaqueToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// HashToken returns the SHA-256 hex digest of a plaintext token.
func HashToken(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}

// VerifyToken reports whether plaintext hashes to storedHash using a
// constant-time comparison.
func VerifyToken(plaintext, storedHash string) bool {
	if storedHash == "" {
		return false
	}
	digest := HashToken(plaintext)
	return subtle.ConstantTimeCompare([]byte(digest), []byte(storedHash)) == 1
}
