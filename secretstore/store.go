// Package secretstore provides key/value storage for secret material in
// line-oriented KEY=VALUE files, with per-path serialized access for
// concurrent in-process callers. Serialization is in-process only: writers
// in separate OS processes can still race, which is a documented limitation.
package secretstore

import (
	"errors"
	"fmt"
)

// ErrInvalidKey is returned when a key does not match the accepted
// variable-name pattern.
var ErrInvalidKey = errors.New("invalid key name")

// StoreOptions controls StoreValue behaviour.
type StoreOptions struct {
	// SkipIfExists leaves an existing non-empty value untouched, so a
	// previously provisioned secret is never clobbered.
	SkipIfExists bool
}

// Store defines the interface for persisting secret material. All values are
// plain text as far as the store is concerned; encryption happens above it.
type Store interface {
	// GetValue returns the value stored under key in the file at path. It
	// waits for any in-flight write on the same path to finish first, so
	// reads observe writes issued earlier in this process. The second return
	// is false when the file or key is absent.
	GetValue(path, key string) (string, bool, error)

	// StoreValue sets key to value in the file at path, creating the file or
	// appending the key as needed. It returns true when the file was
	// written, false when SkipIfExists applied.
	StoreValue(path, key, value string, opts StoreOptions) (bool, error)

	// EnsureFileExists creates an empty secret file at path if missing.
	EnsureFileExists(path string) error

	// Ping tests connectivity for remote backends.
	Ping() error

	// Close releases any resources the store holds.
	Close() error
}

// StoreType identifies the storage backend
type StoreType string

const (
	FileStoreType StoreType = "file"
	S3StoreType   StoreType = "s3"
)

// StoreConfig contains backend-specific configuration
type StoreConfig struct {
	Type   StoreType              `json:"type" yaml:"type"`
	Config map[string]interface{} `json:"config" yaml:"config"`
}

// S3Config holds the settings for the S3/MinIO backend.
type S3Config struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
	Region          string
	Bucket          string
	KeyPrefix       string
}

func stringOption(config map[string]interface{}, key string) (string, error) {
	v, ok := config[key].(string)
	if !ok || v == "" {
		return "", fmt.Errorf("%s is required", key)
	}
	return v, nil
}
