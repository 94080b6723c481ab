package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/awnumar/memguard"
)

// EncryptGCM encrypts plaintext with AES-256-GCM under the key held in the
// enclave. The returned ciphertext has the 16-byte authentication tag
// appended, which is the convention Seal uses and Open expects.
func EncryptGCM(keyEnclave *memguard.Enclave, iv, plaintext []byte) ([]byte, error) {
	aead, keyBuffer, err := newGCM(keyEnclave)
	if err != nil {
		return nil, err
	}
	defer keyBuffer.Destroy()

	if len(iv) != aead.NonceSize() {
		return nil, fmt.Errorf("invalid IV length: expected %d bytes, got %d", aead.NonceSize(), len(iv))
	}

	return aead.Seal(nil, iv, plaintext, nil), nil
}

// DecryptGCM decrypts ciphertext produced by EncryptGCM. It fails if the
// ciphertext or its embedded tag has been tampered with.
func DecryptGCM(keyEnclave *memguard.Enclave, iv, ciphertext []byte) ([]byte, error) {
	aead, keyBuffer, err := newGCM(keyEnclave)
	if err != nil {
		return nil, err
	}
	defer keyBuffer.Destroy()

	if len(iv) != aead.NonceSize() {
		return nil, fmt.Errorf("invalid IV length: expected %d bytes, got %d", aead.NonceSize(), len(iv))
	}
	if len(ciphertext) < aead.Overhead() {
		return nil, errors.New("ciphertext too short")
	}

	plaintext, err := aead.Open(nil, iv, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("authentication failed: %w", err)
	}

	return plaintext, nil
}

func newGCM(keyEnclave *memguard.Enclave) (cipher.AEAD, *memguard.LockedBuffer, error) {
	keyBuffer, err := keyEnclave.Open()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to access key: %w", err)
	}

	block, err := aes.NewCipher(keyBuffer.Bytes())
	if err != nil {
		keyBuffer.Destroy()
		return nil, nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		keyBuffer.Destroy()
		return nil, nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	return aead, keyBuffer, nil
}

// ComputeMAC computes an HMAC-SHA-256 over the exact concatenation of the
// given parts using the key held in the enclave.
func ComputeMAC(keyEnclave *memguard.Enclave, parts ...[]byte) ([]byte, error) {
	keyBuffer, err := keyEnclave.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to access key: %w", err)
	}
	defer keyBuffer.Destroy()

	mac := hmac.New(sha256.New, keyBuffer.Bytes())
	for _, part := range parts {
		mac.Write(part)
	}
	return mac.Sum(nil), nil
}

// VerifyMAC compares two MACs in constant time. Unequal lengths fail
// immediately; equal lengths are compared without short-circuiting on the
// first differing byte.
func VerifyMAC(computed, received []byte) bool {
	if len(computed) != len(received) {
		return false
	}
	return hmac.Equal(computed, received)
}
