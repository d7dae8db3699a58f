package auth

import (
	"strings"
	"testing"
)

// testCost keeps bcrypt fast in tests. Cost 4 is the minimum bcrypt allows.
const testCost = 4

func TestHashAndVerify(t *testing.T) {
	ps := NewPasswordServiceForTest(testCost)

	hash, err := ps.Hash("correct horse battery staple")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	// The stored value must never equal the raw password.
	if hash == "correct horse battery staple" {
		t.Fatal("Hash() returned the plaintext unchanged")
	}
	if !strings.HasPrefix(hash, "$2a$") {
		t.Errorf("Hash() = %q, want a bcrypt hash", hash)
	}

	if err := ps.Verify(hash, "correct horse battery staple"); err != nil {
		t.Errorf("Verify() with correct password: %v", err)
	}
	if err := ps.Verify(hash, "wrong password"); err == nil {
		t.Error("Verify() with wrong password should fail")
	}
}

func TestHashSamePasswordTwiceDiffers(t *testing.T) {
	// bcrypt salts each hash, so identical passwords produce distinct hashes.
	ps := NewPasswordServiceForTest(testCost)

	h1, err := ps.Hash("samepassword")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	h2, err := ps.Hash("samepassword")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	if h1 == h2 {
		t.Error("two hashes of the same password should differ (random salt)")
	}
}

func TestHashRejectsEmptyPassword(t *testing.T) {
	ps := NewPasswordServiceForTest(testCost)

	if _, err := ps.Hash(""); err == nil {
		t.Error("Hash(\"\") should be rejected")
	}
}

func TestHashRejectsOverlongPassword(t *testing.T) {
	// bcrypt silently truncates past 72 bytes; we refuse instead.
	ps := NewPasswordServiceForTest(testCost)

	if _, err := ps.Hash(strings.Repeat("a", 73)); err == nil {
		t.Error("Hash() should reject passwords over 72 bytes")
	}
}

func TestVerifyGarbageHash(t *testing.T) {
	ps := NewPasswordServiceForTest(testCost)

	if err := ps.Verify("not-a-bcrypt-hash", "anything"); err == nil {
		t.Error("Verify() against a malformed hash should fail")
	}
}

func TestVerifyEmptyHash(t *testing.T) {
	// GitHub OAuth accounts store an empty hash — password login must never
	// succeed for them.
	ps := NewPasswordServiceForTest(testCost)

	if err := ps.Verify("", "anything"); err == nil {
		t.Error("Verify() against an empty hash should fail")
	}
}
