//go:build windows

package mem

func lockMemoryPlatform() (ProtectionLevel, error) {
	// On Windows, VirtualLock exists but has per-process quota limitations.
	// For simplicity, rely on memory clearing only.
	return ProtectionPartial, nil
}

func unlockMemoryPlatform() error {
	// Nothing to unlock
	return nil
}
