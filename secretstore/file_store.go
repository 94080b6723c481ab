package secretstore

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sinugotshifhiwa4/pw-automation-framework-codebase/internal/debug"
	"github.com/sinugotshifhiwa4/pw-automation-framework-codebase/internal/misc"
)

const (
	FilePermissions os.FileMode = 0600
	DirPermissions  os.FileMode = 0700
)

// FileStore implements Store on the local filesystem. Concurrent operations
// against the same file are serialized through an in-process lock table;
// operations on different paths run fully concurrently.
type FileStore struct {
	locks *lockTable
}

// NewFileStore returns a FileStore with its own lock registry. Separate
// instances do not serialize against each other, so use one instance per
// process for files that are shared.
func NewFileStore() *FileStore {
	return &FileStore{locks: newLockTable()}
}

// GetValue implements Store. An absent file or key is not an error.
func (fs *FileStore) GetValue(path, key string) (string, bool, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve path %s: %w", path, err)
	}

	release := fs.locks.acquire(absPath)
	defer release()

	content, err := os.ReadFile(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read secret file %s: %w", absPath, err)
	}

	value, found := lookupValue(parseEnvFile(string(content)), key)
	return value, found, nil
}

// StoreValue implements Store. The key must match the accepted variable-name
// pattern; comments, blank lines and line order in the file are preserved.
func (fs *FileStore) StoreValue(path, key, value string, opts StoreOptions) (bool, error) {
	if !misc.IsValidKeyName(key) {
		return false, fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return false, fmt.Errorf("failed to resolve path %s: %w", path, err)
	}

	release := fs.locks.acquire(absPath)
	defer release()

	var content string
	if data, err := os.ReadFile(absPath); err == nil {
		content = string(data)
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("failed to read secret file %s: %w", absPath, err)
	}

	lines := parseEnvFile(content)

	if opts.SkipIfExists {
		if existing, found := lookupValue(lines, key); found && existing != "" {
			debug.Print("secret %s already present in %s, skipping\n", key, absPath)
			return false, nil
		}
	}

	lines = upsertValue(lines, key, value)

	if err := writeSecureFile(absPath, []byte(renderEnvFile(lines)), FilePermissions); err != nil {
		return false, fmt.Errorf("failed to write secret file %s: %w", absPath, err)
	}
	return true, nil
}

// EnsureFileExists implements Store.
func (fs *FileStore) EnsureFileExists(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve path %s: %w", path, err)
	}

	release := fs.locks.acquire(absPath)
	defer release()

	if _, err := os.Stat(absPath); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat secret file %s: %w", absPath, err)
	}

	return writeSecureFile(absPath, nil, FilePermissions)
}

// Ping implements Store. The local filesystem is always reachable.
func (fs *FileStore) Ping() error { return nil }

// Close implements Store.
func (fs *FileStore) Close() error { return nil }

// writeSecureFile writes data atomically: to a temp file in the target
// directory first, then renamed over the destination, so a concurrent reader
// never observes a partial write.
func writeSecureFile(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, DirPermissions); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".secret-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	cleanup := func() {
		tmp.Close()
		os.Remove(tmpName)
	}

	if err := tmp.Chmod(perm); err != nil {
		cleanup()
		return fmt.Errorf("failed to set file permissions: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
