package auth

import "testing"

func TestCipherRoundTrip(t *testing.T) {
	cipher, err := NewCipher("test-secret")
	if err != nil {
		t.Fatal(err)
	}

	encrypted, err := cipher.EncryptToken("my-api-token")
	if err != nil {
		t.Fatal(err)
	}
	if encrypted == "my-api-token" {
		t.Fatal("token stored in plaintext")
	}

	decrypted, err := cipher.DecryptToken(encrypted)
	if err != nil {
		t.Fatal(err)
	}
	if decrypted != "my-api-token" {
		t.Fatalf("decrypted=%q", decrypted)
	}
}

func TestCipherWrongKey(t *testing.T) {
	a, err := NewCipher("secret-a")
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewCipher("secret-b")
	if err != nil {
		t.Fatal(err)
	}

	encrypted, err := a.EncryptToken("token")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := b.DecryptToken(encrypted); err == nil {
		t.Fatal("wrong key must not decrypt")
	}
}

func TestCipherRequiresSecret(t *testing.T) {
	if _, err := NewCipher("  "); err == nil {
		t.Fatal("expected error for empty secret")
	}
}

func TestGenerateToken(t *testing.T) {
	a, err := GenerateToken()
	if err != nil {
		t.Fatal(err)
	}
	b, err := GenerateToken()
	if err != nil {
		t.Fatal(err)
	}
	if len(a) != 48 {
		t.Fatalf("len=%d", len(a))
	}
	if a == b {
		t.Fatal("tokens must be random")
	}
}
