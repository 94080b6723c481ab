package envcrypt

import (
	icrypto "github.com/sinugotshifhiwa4/pw-automation-framework-codebase/internal/crypto"
)

// encryptWithSecret runs the encryption pipeline: validate, generate fresh
// salt and IV, derive keys, AEAD-encrypt, MAC, format. The salt and IV are
// generated fresh on every call, so encrypting the same plaintext twice
// under the same secret yields two different envelopes.
func (s *Service) encryptWithSecret(secret, plaintext string) (string, error) {
	// Validation happens before any expensive work
	if err := ValidateSecretStrength(secret); err != nil {
		return "", err
	}
	if plaintext == "" {
		return "", validationErrorf("plaintext must not be empty")
	}

	salt, err := Generate(PurposeSalt)
	if err != nil {
		return "", err
	}
	iv, err := Generate(PurposeIV)
	if err != nil {
		return "", err
	}

	keySet, err := s.kdf([]byte(secret), salt)
	if err != nil {
		return "", ioError("key derivation failed", err)
	}

	ciphertext, err := icrypto.EncryptGCM(keySet.CipherKey(), iv, []byte(plaintext))
	if err != nil {
		return "", ioError("encryption failed", err)
	}

	// MAC covers the raw salt, IV and ciphertext bytes, in that order
	mac, err := icrypto.ComputeMAC(keySet.MACKey(), salt, iv, ciphertext)
	if err != nil {
		return "", ioError("mac computation failed", err)
	}

	envelope := &Envelope{Salt: salt, IV: iv, Ciphertext: ciphertext, MAC: mac}
	return envelope.String(), nil
}

// decryptWithSecret runs the decryption pipeline: structural validation,
// key re-derivation from the embedded salt, explicit MAC verification, then
// AEAD decryption. The MAC check runs before the AEAD open so tampered or
// truncated envelopes are rejected without the decrypt attempt, and both
// integrity failures surface as the same generic authentication error.
func (s *Service) decryptWithSecret(secret, envelopeText string) (string, error) {
	if err := ValidateSecretStrength(secret); err != nil {
		return "", err
	}

	// Structural validation precedes key derivation, so malformed input can
	// never trigger the memory-hard KDF
	envelope, err := ParseEnvelope(envelopeText)
	if err != nil {
		return "", err
	}

	keySet, err := s.kdf([]byte(secret), envelope.Salt)
	if err != nil {
		return "", ioError("key derivation failed", err)
	}

	computed, err := icrypto.ComputeMAC(keySet.MACKey(), envelope.Salt, envelope.IV, envelope.Ciphertext)
	if err != nil {
		return "", ioError("mac computation failed", err)
	}
	if !icrypto.VerifyMAC(computed, envelope.MAC) {
		return "", authenticationError()
	}

	plaintext, err := icrypto.DecryptGCM(keySet.CipherKey(), envelope.IV, envelope.Ciphertext)
	if err != nil {
		// Tag verification failure gets the same generic error as a MAC
		// mismatch
		return "", authenticationError()
	}

	return string(plaintext), nil
}
