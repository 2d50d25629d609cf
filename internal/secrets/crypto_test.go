package secrets

import "testing"

func TestEncryptDecryptRoundTrip(t *testing.T) {
	key := DeriveKey("hunter2-passphrase", []byte("fixed-salt-for-test"))

	blob, err := Encrypt(key, "binance-secret-key-value")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	plain, err := Decrypt(key, blob)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if plain != "binance-secret-key-value" {
		t.Errorf("expected round-trip to preserve plaintext, got %q", plain)
	}
}

func TestDecryptWrongKeyFails(t *testing.T) {
	key := DeriveKey("correct-passphrase", []byte("salt"))
	wrongKey := DeriveKey("wrong-passphrase", []byte("salt"))

	blob, err := Encrypt(key, "secret")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if _, err := Decrypt(wrongKey, blob); err == nil {
		t.Error("expected decryption with the wrong key to fail")
	}
}

func TestDecryptTruncatedCiphertextFails(t *testing.T) {
	key := DeriveKey("passphrase", []byte("salt"))
	if _, err := Decrypt(key, []byte("short")); err == nil {
		t.Error("expected a too-short ciphertext to fail")
	}
}

func TestDeriveKeyIsDeterministic(t *testing.T) {
	a := DeriveKey("same-passphrase", []byte("same-salt"))
	b := DeriveKey("same-passphrase", []byte("same-salt"))
	if string(a) != string(b) {
		t.Error("expected identical passphrase+salt to derive identical keys")
	}
	if len(a) != aesKeyLen {
		t.Errorf("expected a %d-byte key, got %d", aesKeyLen, len(a))
	}
}
