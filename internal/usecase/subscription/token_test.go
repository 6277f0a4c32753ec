package subscription

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestTokenRoundTrip(t *testing.T) {
	manager := NewTokenManager([]byte("test-secret"), time.Hour)

	token, err := manager.Generate("reader@example.com")
	if err != nil {
		t.Fatalf("Generate err=%v", err)
	}

	email, err := manager.Verify(token)
	if err != nil {
		t.Fatalf("Verify err=%v", err)
	}
	if email != "reader@example.com" {
		t.Errorf("expected reader@example.com, got %q", email)
	}
}

func TestTokenWrongSecret(t *testing.T) {
	manager := NewTokenManager([]byte("test-secret"), time.Hour)
	other := NewTokenManager([]byte("other-secret"), time.Hour)

	token, err := manager.Generate("reader@example.com")
	if err != nil {
		t.Fatalf("Generate err=%v", err)
	}

	if _, err := other.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestTokenExpired(t *testing.T) {
	manager := NewTokenManager([]byte("test-secret"), -time.Minute)

	token, err := manager.Generate("reader@example.com")
	if err != nil {
		t.Fatalf("Generate err=%v", err)
	}

	if _, err := manager.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestTokenWrongScope(t *testing.T) {
	secret := []byte("test-secret")
	manager := NewTokenManager(secret, time.Hour)

	// A token signed with the right secret but a different scope must
	// not pass as an unsubscribe credential.
	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   "reader@example.com",
		"scope": "session",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	signed, err := foreign.SignedString(secret)
	if err != nil {
		t.Fatalf("sign err=%v", err)
	}

	if _, err := manager.Verify(signed); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for wrong scope, got %v", err)
	}
}

func TestTokenGarbage(t *testing.T) {
	manager := NewTokenManager([]byte("test-secret"), time.Hour)

	if _, err := manager.Verify("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}
