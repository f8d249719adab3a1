package accounts

import "testing"

func TestHashPasswordIsSalted(t *testing.T) {
	// Known vector: md5("abcdsecret1").
	if got := hashPassword("secret1", "abcd"); got != "d7d8c7f48a97b76b69a4e9adb84eff36" {
		t.Fatalf("hashPassword = %q", got)
	}
	if hashPassword("secret1", "abcd") == hashPassword("secret1", "ef01") {
		t.Fatal("different salts must produce different hashes")
	}
	if hashPassword("secret1", "abcd") == hashPassword("secret2", "abcd") {
		t.Fatal("different passwords must produce different hashes")
	}
}

func TestRandomSalt(t *testing.T) {
	salt, err := randomSalt()
	if err != nil {
		t.Fatalf("randomSalt failed: %v", err)
	}
	if len(salt) != saltLength {
		t.Fatalf("salt length = %d, want %d", len(salt), saltLength)
	}
	for _, c := range salt {
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f') {
			t.Fatalf("salt %q is not lowercase hex", salt)
		}
	}
}
