package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
)

// SessionTokenBytes is the entropy of a session token (64 hex chars).
const SessionTokenBytes = 32

var (
	// ErrInvalidTokenFormat indicates the token is not a well-formed session token.
	ErrInvalidTokenFormat = errors.New("invalid session token format")

	tokenFormatRegex = regexp.MustCompile(`^[a-f0-9]{64}$`)
)

// GenerateSessionToken creates a random opaque session token.
// The plaintext goes to the client; only QuickHash(token) is stored.
func GenerateSessionToken() (string, error) {
	b := make([]byte, SessionTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// ValidateTokenFormat checks if the token looks like one we issued.
func ValidateTokenFormat(token string) bool {
	return tokenFormatRegex.MatchString(token)
}

// SessionKey derives the storage key for a token.
func SessionKey(token string) (string, error) {
	if !ValidateTokenFormat(token) {
		return "", ErrInvalidTokenFormat
	}
	return QuickHash(token), nil
}
