package auth

import (
	"errors"
	"testing"
)

func TestGenerateSessionToken(t *testing.T) {
	t.Parallel()

	tok1, err := GenerateSessionToken()
	if err != nil {
		t.Fatalf("GenerateSessionToken failed: %v", err)
	}
	tok2, err := GenerateSessionToken()
	if err != nil {
		t.Fatalf("GenerateSessionToken failed: %v", err)
	}

	if len(tok1) != SessionTokenBytes*2 {
		t.Errorf("token length = %d, want %d", len(tok1), SessionTokenBytes*2)
	}
	if tok1 == tok2 {
		t.Error("tokens should be unique")
	}
	if !ValidateTokenFormat(tok1) {
		t.Errorf("generated token %q should pass format validation", tok1)
	}
}

func TestSessionKey(t *testing.T) {
	t.Parallel()

	tok, err := GenerateSessionToken()
	if err != nil {
		t.Fatalf("GenerateSessionToken failed: %v", err)
	}

	key, err := SessionKey(tok)
	if err != nil {
		t.Fatalf("SessionKey failed: %v", err)
	}
	if key == tok {
		t.Error("storage key must not equal the plaintext token")
	}
	if key != QuickHash(tok) {
		t.Error("storage key should be QuickHash(token)")
	}

	invalid := []string{"", "short", "ZZ" + tok[2:], tok + "00"}
	for _, in := range invalid {
		if _, err := SessionKey(in); !errors.Is(err, ErrInvalidTokenFormat) {
			t.Errorf("SessionKey(%q) error = %v, want ErrInvalidTokenFormat", in, err)
		}
	}
}
