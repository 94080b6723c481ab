// Package envcrypt protects plaintext credentials persisted in
// per-environment secret files. Values are encrypted with AES-256-GCM under
// keys derived from a shared secret with Argon2id, carried in a versioned
// text envelope with an explicit HMAC integrity layer, and the shared secret
// itself lives in a KEY=VALUE secret file behind a serialized store.
package envcrypt

import (
	"encoding/base64"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/sinugotshifhiwa4/pw-automation-framework-codebase/audit"
	icrypto "github.com/sinugotshifhiwa4/pw-automation-framework-codebase/internal/crypto"
	"github.com/sinugotshifhiwa4/pw-automation-framework-codebase/internal/debug"
	"github.com/sinugotshifhiwa4/pw-automation-framework-codebase/internal/mem"
	"github.com/sinugotshifhiwa4/pw-automation-framework-codebase/internal/misc"
	"github.com/sinugotshifhiwa4/pw-automation-framework-codebase/secretstore"
)

// StageResolver supplies the per-environment secret-key variable name and
// secret-file path. envstage.Resolver is the default implementation.
type StageResolver interface {
	SecretKeyVariable() string
	SecretFilePath() string
}

type kdfFunc func(secret, salt []byte) (*icrypto.KeySet, error)

// Service is the public facade of the credential-encryption subsystem. It
// resolves the shared secret through the SecretStore, runs the encrypt and
// decrypt pipelines, and audits every operation. A Service is safe for
// concurrent use.
type Service struct {
	opts     Options
	params   icrypto.Params
	store    secretstore.Store
	resolver StageResolver
	audit    audit.Logger

	// kdf is the key-derivation hook. Production uses Argon2id via
	// internal/crypto; tests substitute a counting double to assert that
	// malformed input never reaches derivation.
	kdf kdfFunc

	mu     sync.RWMutex
	closed bool
}

// New creates a Service. The store must not be nil. When resolver is nil the
// secret location is taken from Options.SecretFilePath and
// Options.SecretKeyVariable instead. A nil audit config disables auditing.
func New(opts Options, store secretstore.Store, resolver StageResolver) (*Service, error) {
	if store == nil {
		return nil, configurationErrorf("secret store is required")
	}
	if resolver == nil && (opts.SecretFilePath == "" || opts.SecretKeyVariable == "") {
		return nil, configurationErrorf("either a stage resolver or secret_file_path and secret_key_variable must be set")
	}

	auditLogger, err := audit.NewLogger(opts.Audit)
	if err != nil {
		return nil, configurationErrorf("invalid audit configuration: %v", err)
	}

	if opts.EnableMemoryLock {
		level, err := mem.Lock()
		if err != nil {
			debug.Print("memory lock failed: %v\n", err)
		} else if level != mem.ProtectionFull {
			debug.Print("memory lock partial: level %d\n", level)
		}
	}

	params := opts.derivationParams()

	return &Service{
		opts:     opts,
		params:   params,
		store:    store,
		resolver: resolver,
		audit:    auditLogger,
		kdf: func(secret, salt []byte) (*icrypto.KeySet, error) {
			return icrypto.DeriveKeySet(secret, salt, params)
		},
	}, nil
}

// Encrypt encrypts plaintext under the shared secret stored in the secret
// file, returning the wire envelope
//
//	ENC2:v1:<salt-b64>:<iv-b64>:<ciphertext-b64>:<mac-b64>
//
// A fresh 32-byte salt and 12-byte IV are generated per call, so repeated
// encryptions of the same plaintext produce different envelopes. The secret
// is looked up under secretKeyName; pass "" to use the stage's default
// variable. Validation failures (empty plaintext, weak secret) surface as
// validation errors before any cryptographic work, and a missing or empty
// secret as a configuration error.
func (s *Service) Encrypt(plaintext, secretKeyName string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return "", configurationErrorf("service is closed")
	}

	keyName := s.keyName(secretKeyName)
	secret, err := s.resolveSecret(keyName)
	if err != nil {
		s.logAudit("encrypt", false, map[string]interface{}{"key_name": keyName, "error": err.Error()})
		return "", err
	}

	envelope, err := s.encryptWithSecret(secret, plaintext)
	if err != nil {
		s.logAudit("encrypt", false, map[string]interface{}{"key_name": keyName, "error": err.Error()})
		return "", err
	}

	s.logAudit("encrypt", true, map[string]interface{}{
		"key_name":      keyName,
		"envelope_size": len(envelope),
	})
	return envelope, nil
}

// Decrypt reverses Encrypt. Malformed envelopes are rejected with a
// validation error before key derivation runs; a MAC mismatch or AEAD tag
// failure yields a generic authentication error that does not reveal which
// check failed. Retrying a failed decryption with identical inputs will fail
// identically, so callers must not auto-retry authentication errors.
func (s *Service) Decrypt(envelopeText, secretKeyName string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return "", configurationErrorf("service is closed")
	}

	keyName := s.keyName(secretKeyName)
	secret, err := s.resolveSecret(keyName)
	if err != nil {
		s.logAudit("decrypt", false, map[string]interface{}{"key_name": keyName, "error": err.Error()})
		return "", err
	}

	plaintext, err := s.decryptWithSecret(secret, envelopeText)
	if err != nil {
		s.logAudit("decrypt", false, map[string]interface{}{"key_name": keyName, "error": err.Error()})
		return "", err
	}

	s.logAudit("decrypt", true, map[string]interface{}{"key_name": keyName})
	return plaintext, nil
}

// EncryptMultiple encrypts each plaintext concurrently and returns the
// envelopes in input order. A single failure fails the whole batch; there is
// no partial-success mode.
func (s *Service) EncryptMultiple(plaintexts []string, secretKeyName string) ([]string, error) {
	return s.fanOut(plaintexts, secretKeyName, s.Encrypt)
}

// DecryptMultiple decrypts each envelope concurrently and returns the
// plaintexts in input order. A single failure fails the whole batch.
func (s *Service) DecryptMultiple(envelopes []string, secretKeyName string) ([]string, error) {
	return s.fanOut(envelopes, secretKeyName, s.Decrypt)
}

func (s *Service) fanOut(inputs []string, secretKeyName string, op func(string, string) (string, error)) ([]string, error) {
	results := make([]string, len(inputs))

	var g errgroup.Group
	for i, input := range inputs {
		i, input := i, input
		g.Go(func() error {
			out, err := op(input, secretKeyName)
			if err != nil {
				return fmt.Errorf("item %d: %w", i, err)
			}
			results[i] = out
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// GenerateAndStoreSecretKey generates a 32-byte secret key, base64-encodes
// it and stores it under the stage's secret-key variable, skipping the write
// when a key is already present so an existing secret is never clobbered.
// It returns the stored key, which is the pre-existing one when the write
// was skipped.
func (s *Service) GenerateAndStoreSecretKey() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return "", configurationErrorf("service is closed")
	}

	keyName := s.keyName("")
	path := s.secretPath()

	raw, err := Generate(PurposeCipherKey)
	if err != nil {
		return "", err
	}
	defer SecureWipe(raw)

	if icrypto.IsWeakKey(raw) {
		// Practically unreachable with a healthy CSPRNG
		return "", ioError("generated key failed strength screening", nil)
	}

	encoded := base64.StdEncoding.EncodeToString(raw)

	if err := s.store.EnsureFileExists(path); err != nil {
		s.logAudit("generate_secret_key", false, map[string]interface{}{"key_name": keyName, "error": err.Error()})
		return "", ioError("failed to prepare secret file", err)
	}

	written, err := s.store.StoreValue(path, keyName, encoded, secretstore.StoreOptions{SkipIfExists: true})
	if err != nil {
		s.logAudit("generate_secret_key", false, map[string]interface{}{"key_name": keyName, "error": err.Error()})
		return "", ioError("failed to store secret key", err)
	}

	if !written {
		existing, found, err := s.store.GetValue(path, keyName)
		if err != nil {
			return "", ioError("failed to read existing secret key", err)
		}
		if !found {
			return "", configurationErrorf("secret key %s disappeared during generation", keyName)
		}
		s.logAudit("generate_secret_key", true, map[string]interface{}{"key_name": keyName, "kept_existing": true})
		return existing, nil
	}

	s.logAudit("generate_secret_key", true, map[string]interface{}{"key_name": keyName})
	return encoded, nil
}

// Close releases the audit sink and marks the service unusable. Further
// calls fail with a configuration error.
func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	if s.opts.EnableMemoryLock {
		if err := mem.Unlock(); err != nil {
			debug.Print("memory unlock failed: %v\n", err)
		}
	}

	return s.audit.Close()
}

func (s *Service) keyName(override string) string {
	if override != "" {
		return override
	}
	if s.resolver != nil {
		return s.resolver.SecretKeyVariable()
	}
	return s.opts.SecretKeyVariable
}

func (s *Service) secretPath() string {
	if s.resolver != nil {
		return s.resolver.SecretFilePath()
	}
	return s.opts.SecretFilePath
}

// resolveSecret fetches the shared secret from the store. The secret itself
// never appears in errors or audit metadata, only the variable name does.
func (s *Service) resolveSecret(keyName string) (string, error) {
	if !misc.IsValidKeyName(keyName) {
		return "", validationErrorf("invalid secret key name %q", keyName)
	}

	value, found, err := s.store.GetValue(s.secretPath(), keyName)
	if err != nil {
		return "", ioError(fmt.Sprintf("failed to read secret %s", keyName), err)
	}
	if !found || value == "" {
		return "", configurationErrorf("secret key %s is not set in %s", keyName, s.secretPath())
	}
	return value, nil
}

func (s *Service) logAudit(action string, success bool, metadata map[string]interface{}) {
	if err := s.audit.Log(action, success, metadata); err != nil {
		debug.Print("audit log failed: %v\n", err)
	}
}
