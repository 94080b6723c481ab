package crypto

import (
	"errors"
	"fmt"

	"github.com/awnumar/memguard"
	"golang.org/x/crypto/argon2"

	"github.com/sinugotshifhiwa4/pw-automation-framework-codebase/internal/misc"
)

// Params holds the Argon2id cost parameters used for key derivation.
type Params struct {
	Time    uint32
	Memory  uint32 // in KiB
	Threads uint8
	KeyLen  uint32
}

// DefaultParams returns the production derivation parameters.
func DefaultParams() Params {
	return Params{
		Time:    misc.ArgonTime,
		Memory:  misc.ArgonMemory,
		Threads: misc.ArgonThreads,
		KeyLen:  misc.ArgonKeyLen,
	}
}

// KeySet holds the two keys derived from a secret and salt. The cipher key
// encrypts with AES-256-GCM, the MAC key signs with HMAC-SHA-256. Both live
// in memguard enclaves and are only opened for the duration of a single
// cipher or MAC call.
type KeySet struct {
	cipherKey *memguard.Enclave
	macKey    *memguard.Enclave
}

// DeriveKeySet derives a cipher key and a MAC key from secret and salt using
// Argon2id. The derivation is deterministic: the same (secret, salt) pair
// always yields the same keys, which is what allows decryption to re-derive
// them from the salt embedded in the envelope.
func DeriveKeySet(secret, salt []byte, p Params) (*KeySet, error) {
	if len(secret) == 0 {
		return nil, errors.New("empty secret")
	}
	if len(salt) == 0 {
		return nil, errors.New("empty salt")
	}
	if p.KeyLen != 64 {
		return nil, fmt.Errorf("derivation output must be 64 bytes, got %d", p.KeyLen)
	}

	// Derive the combined key material
	derived := argon2.IDKey(secret, salt, p.Time, p.Memory, p.Threads, p.KeyLen)

	// Split into the two independent 256-bit keys
	cipherKey := make([]byte, 32)
	macKey := make([]byte, 32)
	copy(cipherKey, derived[:32])
	copy(macKey, derived[32:])

	ks := &KeySet{
		cipherKey: memguard.NewEnclave(cipherKey),
		macKey:    memguard.NewEnclave(macKey),
	}

	// Wipe the unprotected copies
	memguard.WipeBytes(derived)
	memguard.WipeBytes(cipherKey)
	memguard.WipeBytes(macKey)

	return ks, nil
}

// CipherKey returns the enclave holding the AES-256-GCM key.
func (ks *KeySet) CipherKey() *memguard.Enclave { return ks.cipherKey }

// MACKey returns the enclave holding the HMAC-SHA-256 key.
func (ks *KeySet) MACKey() *memguard.Enclave { return ks.macKey }
