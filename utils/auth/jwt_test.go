package auth

import (
	"errors"
	"testing"
	"time"
)

func testManager() *JWTManager {
	return NewJWTManager(JWTConfig{
		Secret:        "test-secret",
		Expiry:        time.Hour,
		RefreshExpiry: 24 * time.Hour,
		Issuer:        "portal-test",
	})
}

func TestGenerateAndValidateAccessToken(t *testing.T) {
	m := testManager()

	token, jti, err := m.GenerateAccessToken(42, "user@test.local", "student", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if jti == "" {
		t.Fatal("expected a non-empty JTI")
	}

	claims, err := m.ValidateToken(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("expected user id 42, got %d", claims.UserID)
	}
	if claims.Role != "student" {
		t.Errorf("expected role student, got %s", claims.Role)
	}
	if claims.TokenType != "access" {
		t.Errorf("expected access token, got %s", claims.TokenType)
	}
	if claims.TokenVersion != 3 {
		t.Errorf("expected token version 3, got %d", claims.TokenVersion)
	}
	if claims.ID != jti {
		t.Errorf("claims JTI %s does not match returned JTI %s", claims.ID, jti)
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	m := testManager()
	other := NewJWTManager(JWTConfig{Secret: "other-secret", Expiry: time.Hour, RefreshExpiry: time.Hour, Issuer: "portal-test"})

	token, _, err := m.GenerateAccessToken(1, "user@test.local", "student", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := other.ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestValidateExpiredToken(t *testing.T) {
	m := NewJWTManager(JWTConfig{
		Secret:        "test-secret",
		Expiry:        -time.Minute,
		RefreshExpiry: -time.Minute,
		Issuer:        "portal-test",
	})

	token, _, err := m.GenerateAccessToken(1, "user@test.local", "student", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := m.ValidateToken(token); !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}
}

func TestRefreshAccessToken(t *testing.T) {
	m := testManager()

	refresh, _, err := m.GenerateRefreshToken(7, "user@test.local", "tutor", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	access, _, err := m.RefreshAccessToken(refresh, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims, err := m.ValidateToken(access)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.TokenType != "access" {
		t.Errorf("expected access token, got %s", claims.TokenType)
	}
	if claims.TokenVersion != 2 {
		t.Errorf("expected refreshed token version 2, got %d", claims.TokenVersion)
	}
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	m := testManager()

	access, _, err := m.GenerateAccessToken(7, "user@test.local", "tutor", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, _, err := m.RefreshAccessToken(access, 1); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestGetTokenExpiry(t *testing.T) {
	m := testManager()

	token, _, err := m.GenerateAccessToken(1, "user@test.local", "student", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expiry, err := m.GetTokenExpiry(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	until := time.Until(expiry)
	if until < 55*time.Minute || until > 65*time.Minute {
		t.Errorf("expected expiry about an hour out, got %v", until)
	}
}
