package envcrypt

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"github.com/awnumar/memguard"

	"github.com/sinugotshifhiwa4/pw-automation-framework-codebase/internal/misc"
)

// Purpose selects a default length for generated random material.
type Purpose string

const (
	PurposeSalt      Purpose = "salt"       // 32 bytes
	PurposeCipherKey Purpose = "cipher-key" // 32 bytes
	PurposeIV        Purpose = "iv"         // 12 bytes (GCM); pass 16 explicitly for CBC-style callers
	PurposeGeneric   Purpose = "random"     // 32 bytes
)

// Requested lengths outside these bounds are rejected.
const (
	minRandomLength = 8
	maxRandomLength = 4096
)

// DefaultLength returns the byte length generated for a purpose when no
// explicit length is given.
func DefaultLength(purpose Purpose) int {
	switch purpose {
	case PurposeIV:
		return misc.IVSize
	case PurposeCipherKey:
		return misc.GeneratedKeySize
	default:
		return misc.SaltSize
	}
}

// GenerateRandom returns length cryptographically secure random bytes for
// the given purpose, using the platform CSPRNG exclusively. Lengths outside
// [8, 4096] are rejected with a validation error before any entropy is
// consumed.
func GenerateRandom(purpose Purpose, length int) ([]byte, error) {
	if length < minRandomLength || length > maxRandomLength {
		return nil, validationErrorf("random length for %s must be between %d and %d bytes, got %d",
			purpose, minRandomLength, maxRandomLength, length)
	}

	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return nil, ioError(fmt.Sprintf("failed to generate %s", purpose), err)
	}
	return buf, nil
}

// Generate returns random bytes of the purpose's default length.
func Generate(purpose Purpose) ([]byte, error) {
	return GenerateRandom(purpose, DefaultLength(purpose))
}

// GenerateBase64 returns the generated bytes base64-encoded.
func GenerateBase64(purpose Purpose) (string, error) {
	buf, err := Generate(purpose)
	if err != nil {
		return "", err
	}
	defer SecureWipe(buf)
	return base64.StdEncoding.EncodeToString(buf), nil
}

// GenerateHex returns the generated bytes hex-encoded.
func GenerateHex(purpose Purpose) (string, error) {
	buf, err := Generate(purpose)
	if err != nil {
		return "", err
	}
	defer SecureWipe(buf)
	return hex.EncodeToString(buf), nil
}

// SecureWipe overwrites buf with random bytes and then zeroes it. Best
// effort only: the runtime may have already copied the data elsewhere.
func SecureWipe(buf []byte) {
	if len(buf) == 0 {
		return
	}
	_, _ = rand.Read(buf)
	memguard.WipeBytes(buf)
}
