package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/velstore/storefront-gateway/internal/core/domain"
)

func TestSessionService_MintVerify_RoundTrip(t *testing.T) {
	svc := NewSessionService("secret", time.Hour)

	token, err := svc.Mint(&domain.Session{
		UserID:      "u1",
		Name:        "Alice",
		Role:        domain.RoleCustomer,
		AccessToken: "backend-token",
	})
	if err != nil {
		t.Fatalf("Mint returned error: %v", err)
	}

	sess, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if sess.UserID != "u1" {
		t.Fatalf("unexpected subject: %s", sess.UserID)
	}
	if sess.Role != domain.RoleCustomer {
		t.Fatalf("unexpected role: %s", sess.Role)
	}
	if sess.AccessToken != "backend-token" {
		t.Fatalf("access token not carried through claims")
	}
	if !sess.IsCustomer() {
		t.Fatalf("expected customer session")
	}
	if sess.ExpiresAt.IsZero() {
		t.Fatalf("expected expiry to be populated")
	}
}

func TestSessionService_Verify_Empty(t *testing.T) {
	svc := NewSessionService("secret", time.Hour)
	if _, err := svc.Verify(""); err != domain.ErrInvalidSession {
		t.Fatalf("expected ErrInvalidSession, got %v", err)
	}
}

func TestSessionService_Verify_WrongSecret(t *testing.T) {
	minter := NewSessionService("secret-a", time.Hour)
	verifier := NewSessionService("secret-b", time.Hour)

	token, err := minter.Mint(&domain.Session{UserID: "u1", Role: domain.RoleCustomer})
	if err != nil {
		t.Fatalf("Mint returned error: %v", err)
	}

	if _, err := verifier.Verify(token); err != domain.ErrInvalidSession {
		t.Fatalf("expected ErrInvalidSession, got %v", err)
	}
}

func TestSessionService_Verify_Expired(t *testing.T) {
	svc := NewSessionService("secret", time.Hour)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "u1",
		"role": domain.RoleCustomer,
		"exp":  time.Now().Add(-time.Minute).Unix(),
	})
	token, err := expired.SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	if _, err := svc.Verify(token); err != domain.ErrInvalidSession {
		t.Fatalf("expected ErrInvalidSession for expired token, got %v", err)
	}
}

func TestSessionService_Verify_RejectsUnexpectedAlg(t *testing.T) {
	svc := NewSessionService("secret", time.Hour)

	// alg=none tokens must never verify, regardless of claims.
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub":  "u1",
		"role": domain.RoleCustomer,
	})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	if _, err := svc.Verify(token); err != domain.ErrInvalidSession {
		t.Fatalf("expected ErrInvalidSession for alg=none token, got %v", err)
	}
}

func TestSessionService_Verify_MissingRole(t *testing.T) {
	svc := NewSessionService("secret", time.Hour)

	bare := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	token, err := bare.SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	if _, err := svc.Verify(token); err != domain.ErrInvalidSession {
		t.Fatalf("expected ErrInvalidSession for missing role claim, got %v", err)
	}
}
