package auth

import "testing"

func TestHashAndCheckPassword(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("s3cret-pass")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if hash == "s3cret-pass" {
		t.Fatalf("hash must not equal the plain password")
	}

	if !CheckPassword(hash, "s3cret-pass") {
		t.Fatalf("correct password rejected")
	}
	if CheckPassword(hash, "wrong-pass") {
		t.Fatalf("wrong password accepted")
	}
}

func TestHashPassword_Empty(t *testing.T) {
	t.Parallel()

	if _, err := HashPassword(""); err == nil {
		t.Fatalf("expected error for empty password")
	}
}

func TestHashPassword_DistinctSalts(t *testing.T) {
	t.Parallel()

	a, err := HashPassword("same")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	b, err := HashPassword("same")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if a == b {
		t.Fatalf("two hashes of the same password should differ (random salt)")
	}
}
