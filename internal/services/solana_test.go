package services_test

import (
	"bytes"
	"testing"

	"arcade-pot-backend/internal/services"
)

func TestEscrowKeypairRoundTrip(t *testing.T) {
	secret, pubkey := services.GenerateEscrowKeypair()
	if len(secret) != 64 {
		t.Fatalf("Secret key length = %d, want 64", len(secret))
	}
	if pubkey == "" {
		t.Fatal("Empty public key")
	}

	derived, err := services.DerivePublicKey(secret)
	if err != nil {
		t.Fatalf("DerivePublicKey: %v", err)
	}
	if derived != pubkey {
		t.Errorf("Derived %s, want %s", derived, pubkey)
	}
}

func TestEscrowKeypairsAreUnique(t *testing.T) {
	secretA, pubkeyA := services.GenerateEscrowKeypair()
	secretB, pubkeyB := services.GenerateEscrowKeypair()
	if pubkeyA == pubkeyB || bytes.Equal(secretA, secretB) {
		t.Fatal("Two escrow keypairs must never collide")
	}
}

func TestDerivePublicKeyRejectsBadSecret(t *testing.T) {
	if _, err := services.DerivePublicKey([]byte("short")); err == nil {
		t.Error("Truncated secret must be rejected")
	}
	if _, err := services.DerivePublicKey(nil); err == nil {
		t.Error("Nil secret must be rejected")
	}
}
