package utils

import "testing"

func TestHashAndVerify_Roundtrip(t *testing.T) {
	t.Parallel()

	h := NewPasswordHasher(4) // minimum bcrypt cost keeps the test fast

	hash, err := h.Hash("TestPassword123")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if hash == "TestPassword123" {
		t.Fatalf("hash must not equal the plaintext")
	}
	if !h.Verify(hash, "TestPassword123") {
		t.Fatalf("Verify should accept the original password")
	}
	if h.Verify(hash, "testpassword123") {
		t.Fatalf("Verify should reject a different password")
	}
}

func TestHash_SaltedPerCall(t *testing.T) {
	t.Parallel()

	h := NewPasswordHasher(4)

	h1, err := h.Hash("Some Password 1")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	h2, err := h.Hash("Some Password 1")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if h1 == h2 {
		t.Fatalf("two hashes of the same password should differ (random salt)")
	}
	if !h.Verify(h1, "Some Password 1") || !h.Verify(h2, "Some Password 1") {
		t.Fatalf("both hashes must verify the original password")
	}
}

func TestVerify_PrintableASCII(t *testing.T) {
	t.Parallel()

	h := NewPasswordHasher(4)
	for _, p := range []string{"a", " ", "~!@#$%^&*()_+", "pass word", "1234567890"} {
		hash, err := h.Hash(p)
		if err != nil {
			t.Fatalf("Hash(%q) error: %v", p, err)
		}
		if !h.Verify(hash, p) {
			t.Fatalf("Verify(%q) should be true against its own hash", p)
		}
		if h.Verify(hash, p+"x") {
			t.Fatalf("Verify should reject %q against hash of %q", p+"x", p)
		}
	}
}
