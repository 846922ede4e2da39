package auth

import (
	"errors"
	"testing"
	"time"
)

func TestSignAndVerifyRoundTrip(t *testing.T) {
	secret := []byte("test-secret")
	token, err := SignJWT(secret, "user-1", "u@example.com", time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	claims, err := VerifyJWT(secret, token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.UserID != "user-1" || claims.Email != "u@example.com" {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	token, err := SignJWT([]byte("secret-a"), "user-1", "", time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := VerifyJWT([]byte("secret-b"), token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	secret := []byte("test-secret")
	token, err := SignJWT(secret, "user-1", "", -time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := VerifyJWT(secret, token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	if _, err := VerifyJWT([]byte("secret"), "not.a.token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestSignRequiresUserID(t *testing.T) {
	if _, err := SignJWT([]byte("secret"), "", "", time.Hour); err == nil {
		t.Fatalf("expected error for empty userId")
	}
}
