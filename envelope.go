package envcrypt

import (
	"encoding/base64"
	"regexp"
	"strings"

	"github.com/sinugotshifhiwa4/pw-automation-framework-codebase/internal/misc"
)

// Wire format of an encrypted value:
//
//	ENC2:v1:<salt-b64>:<iv-b64>:<ciphertext-b64>:<mac-b64>
//
// All four trailing fields are standard base64 with padding. The salt decodes
// to 32 bytes, the IV to 12 bytes and the MAC to 32 bytes. Only version v1
// is accepted.
const (
	EnvelopePrefix    = "ENC2"
	EnvelopeVersion   = "v1"
	envelopeSeparator = ":"

	// version token + salt + iv + ciphertext + mac
	envelopeTokenCount = 5
)

var base64Pattern = regexp.MustCompile(`^[A-Za-z0-9+/]*={0,2}$`)

// Envelope holds the decoded fields of an encrypted value. Envelopes are
// immutable once produced; String re-encodes them without mutation.
type Envelope struct {
	Salt       []byte
	IV         []byte
	Ciphertext []byte
	MAC        []byte
}

// String renders the envelope in its wire format.
func (e *Envelope) String() string {
	enc := base64.StdEncoding
	return strings.Join([]string{
		EnvelopePrefix,
		EnvelopeVersion,
		enc.EncodeToString(e.Salt),
		enc.EncodeToString(e.IV),
		enc.EncodeToString(e.Ciphertext),
		enc.EncodeToString(e.MAC),
	}, envelopeSeparator)
}

// IsValidBase64 reports whether s is well-formed standard base64: matching
// the base64 alphabet with at most two padding characters, a length that is
// a multiple of four, and actually decodable.
func IsValidBase64(s string) bool {
	if len(s)%4 != 0 || !base64Pattern.MatchString(s) {
		return false
	}
	_, err := base64.StdEncoding.DecodeString(s)
	return err == nil
}

// IsWellFormedEnvelope reports whether s is structurally a valid envelope:
// correct prefix, supported version, exactly the expected token count, and
// four non-empty valid base64 fields. It performs no cryptographic work.
func IsWellFormedEnvelope(s string) bool {
	return structuralError(s) == nil
}

func structuralError(s string) *Error {
	if !strings.HasPrefix(s, EnvelopePrefix+envelopeSeparator) {
		return validationErrorf("invalid envelope: missing %s prefix", EnvelopePrefix)
	}

	tokens := strings.Split(s[len(EnvelopePrefix)+1:], envelopeSeparator)
	if len(tokens) != envelopeTokenCount {
		return validationErrorf("invalid envelope: expected %d fields, got %d", envelopeTokenCount, len(tokens))
	}

	if tokens[0] != EnvelopeVersion {
		return validationErrorf("unsupported envelope version %q", tokens[0])
	}

	for _, field := range tokens[1:] {
		if field == "" || !IsValidBase64(field) {
			return validationErrorf("invalid envelope: field is not valid base64")
		}
	}

	return nil
}

// ParseEnvelope validates s structurally and decodes its fields, enforcing
// the fixed salt, IV and MAC lengths. All failures are validation errors so
// malformed input is rejected before any key derivation happens.
func ParseEnvelope(s string) (*Envelope, error) {
	if err := structuralError(s); err != nil {
		return nil, err
	}

	tokens := strings.Split(s[len(EnvelopePrefix)+1:], envelopeSeparator)
	enc := base64.StdEncoding

	salt, _ := enc.DecodeString(tokens[1])
	iv, _ := enc.DecodeString(tokens[2])
	ciphertext, _ := enc.DecodeString(tokens[3])
	mac, _ := enc.DecodeString(tokens[4])

	if len(salt) != misc.SaltSize {
		return nil, validationErrorf("invalid envelope: salt must decode to %d bytes, got %d", misc.SaltSize, len(salt))
	}
	if len(iv) != misc.IVSize {
		return nil, validationErrorf("invalid envelope: iv must decode to %d bytes, got %d", misc.IVSize, len(iv))
	}
	if len(mac) != misc.MACSize {
		return nil, validationErrorf("invalid envelope: mac must decode to %d bytes, got %d", misc.MACSize, len(mac))
	}
	if len(ciphertext) == 0 {
		return nil, validationErrorf("invalid envelope: empty ciphertext")
	}

	return &Envelope{Salt: salt, IV: iv, Ciphertext: ciphertext, MAC: mac}, nil
}

// ValidateSecretStrength rejects secrets that are empty or shorter than the
// minimum length.
func ValidateSecretStrength(secret string) error {
	if secret == "" {
		return validationErrorf("secret key must not be empty")
	}
	if len(secret) < misc.MinSecretLength {
		return validationErrorf("secret key must be at least %d characters", misc.MinSecretLength)
	}
	return nil
}
