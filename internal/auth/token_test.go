package auth

import (
	"testing"
	"time"

	"github.com/voltmart/storefront/internal/domain"
)

func TestTokenIssuer(t *testing.T) {
	issuer := NewTokenIssuer([]byte("test-secret"), time.Hour)
	user := &domain.User{ID: "user-1", Role: domain.RoleAdmin}

	t.Run("round trip preserves claims", func(t *testing.T) {
		token, err := issuer.Issue(user)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		claims, err := issuer.Verify(token)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if claims.UserID != "user-1" {
			t.Errorf("expected user-1, got %s", claims.UserID)
		}
		if claims.Role != domain.RoleAdmin {
			t.Errorf("expected admin role, got %s", claims.Role)
		}
	})

	t.Run("rejects token signed with a different secret", func(t *testing.T) {
		other := NewTokenIssuer([]byte("other-secret"), time.Hour)
		token, err := other.Issue(user)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if _, err := issuer.Verify(token); err != ErrInvalidToken {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("rejects expired token", func(t *testing.T) {
		expired := NewTokenIssuer([]byte("test-secret"), -time.Minute)
		token, err := expired.Issue(user)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if _, err := issuer.Verify(token); err != ErrInvalidToken {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("rejects garbage", func(t *testing.T) {
		if _, err := issuer.Verify("not.a.token"); err != ErrInvalidToken {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter22")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hash == "hunter22" {
		t.Fatal("hash must not equal the plaintext")
	}
	if !CheckPassword(hash, "hunter22") {
		t.Error("expected correct password to verify")
	}
	if CheckPassword(hash, "hunter23") {
		t.Error("expected wrong password to fail")
	}
}
