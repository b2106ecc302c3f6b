package services

import (
	"errors"
	"testing"

	"main/utils"
)

func setupTokenConfig(t *testing.T) {
	t.Helper()
	utils.JWTSecretKey = "test_secret_key"
	utils.JWTExpirationTime = 3600
}

func TestTokenRoundTrip(t *testing.T) {
	setupTokenConfig(t)

	token, err := GenerateToken("user-1", "session-1")
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	claims, err := VerifyToken(token)
	if err != nil {
		t.Fatalf("VerifyToken() error = %v", err)
	}
	if claims.UserID != "user-1" || claims.SessionID != "session-1" {
		t.Errorf("claims = %+v, want user-1/session-1", claims)
	}
	if claims.IssuedAt.IsZero() {
		t.Error("expected issued-at to be populated")
	}
}

func TestTokenWithoutSession(t *testing.T) {
	setupTokenConfig(t)

	token, _ := GenerateToken("user-1", "")
	claims, err := VerifyToken(token)
	if err != nil {
		t.Fatalf("VerifyToken() error = %v", err)
	}
	if claims.SessionID != "" {
		t.Errorf("expected empty session id, got %q", claims.SessionID)
	}
}

func TestExpiredToken(t *testing.T) {
	setupTokenConfig(t)
	utils.JWTExpirationTime = -10 // already expired at issue time

	token, err := GenerateToken("user-1", "session-1")
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	_, err = VerifyToken(token)
	if !errors.Is(err, ErrTokenExpired) {
		t.Errorf("expected ErrTokenExpired, got %v", err)
	}
}

func TestTamperedToken(t *testing.T) {
	setupTokenConfig(t)

	token, _ := GenerateToken("user-1", "session-1")

	tampered := token[:len(token)-2] + "xx"
	if _, err := VerifyToken(tampered); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for tampered signature, got %v", err)
	}

	if _, err := VerifyToken("not-a-jwt"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for garbage, got %v", err)
	}
}

func TestWrongSecret(t *testing.T) {
	setupTokenConfig(t)

	token, _ := GenerateToken("user-1", "session-1")

	utils.JWTSecretKey = "a_different_secret"
	if _, err := VerifyToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken under a different secret, got %v", err)
	}
}
