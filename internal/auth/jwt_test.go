package auth

import (
	"testing"
	"time"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	token, err := m.GenerateSessionToken("user-1", "dana@example.com", "Dana", "admin")

	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := m.VerifySessionToken(token)

	if err != nil {
		t.Fatalf("verify: %v", err)
	}

	if claims.UserID != "user-1" || claims.Email != "dana@example.com" || claims.Role != "admin" {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestVerifySessionToken_WrongSecret(t *testing.T) {
	token, err := NewManager("secret-a", time.Hour).GenerateSessionToken("user-1", "a@b.c", "A", "user")

	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := NewManager("secret-b", time.Hour).VerifySessionToken(token); err == nil {
		t.Fatalf("expected verification failure across secrets")
	}
}

func TestVerifySessionToken_Expired(t *testing.T) {
	m := NewManager("test-secret", -time.Minute)

	token, err := m.GenerateSessionToken("user-1", "a@b.c", "A", "user")

	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := m.VerifySessionToken(token); err == nil {
		t.Fatalf("expected expiry failure")
	}
}

func TestVerifySessionToken_Garbage(t *testing.T) {
	if _, err := NewManager("test-secret", time.Hour).VerifySessionToken("not-a-jwt"); err == nil {
		t.Fatalf("expected parse failure")
	}
}
