package security

import "testing"

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct-horse")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if hash == "correct-horse" {
		t.Fatal("hash equals the plaintext password")
	}

	if !CheckPassword("correct-horse", hash) {
		t.Error("CheckPassword() = false for the right password")
	}
	if CheckPassword("wrong-horse", hash) {
		t.Error("CheckPassword() = true for the wrong password")
	}
	if CheckPassword("correct-horse", "not-a-bcrypt-hash") {
		t.Error("CheckPassword() = true for a malformed hash")
	}
}

func TestHashPasswordProducesUniqueHashes(t *testing.T) {
	first, err := HashPassword("correct-horse")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	second, err := HashPassword("correct-horse")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if first == second {
		t.Error("two hashes of the same password are identical, salt missing")
	}
}
