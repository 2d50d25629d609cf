// Package secrets manages exchange API credentials: a HashiCorp Vault
// client for the primary store, and a passphrase-derived AES-256-GCM
// cipher (DeriveKey, Encrypt, Decrypt) for sealing credential values; no
// other package in this module calls the cipher. Grounded on the teacher repo's internal/vault.Client
// (enabled/disabled toggle, in-memory cache) and internal/apikeys.Service's
// decryptKey (AES-256-GCM, nonce-prefixed ciphertext), with the teacher's
// naive env-var pad/truncate key replaced by a proper
// golang.org/x/crypto/pbkdf2 key derivation.
package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

const (
	pbkdf2Iterations = 100_000
	aesKeyLen        = 32
)

// DeriveKey stretches a passphrase and salt into a 32-byte AES-256 key via
// PBKDF2-HMAC-SHA256. Callers persist salt alongside the ciphertext; it is
// not secret.
func DeriveKey(passphrase string, salt []byte) []byte {
	return pbkdf2.Key([]byte(passphrase), salt, pbkdf2Iterations, aesKeyLen, sha256.New)
}

// Encrypt seals plaintext under key with AES-256-GCM, returning
// nonce||ciphertext.
func Encrypt(key []byte, plaintext string) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create GCM: %w", err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	return gcm.Seal(nonce, nonce, []byte(plaintext), nil), nil
}

// Decrypt opens a nonce||ciphertext blob produced by Encrypt.
func Decrypt(key []byte, blob []byte) (string, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("create GCM: %w", err)
	}

	nonceSize := gcm.NonceSize()
	if len(blob) < nonceSize {
		return "", fmt.Errorf("ciphertext too short")
	}
	nonce, ciphertext := blob[:nonceSize], blob[nonceSize:]

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("decrypt: %w", err)
	}
	return string(plaintext), nil
}
