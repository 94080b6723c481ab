package crypto

// IsWeakKey reports whether raw key material is degenerate: too short,
// constant, or with too little byte variety to have come from a CSPRNG.
func IsWeakKey(key []byte) bool {
	if len(key) < 32 {
		return true
	}

	// Check for all same byte (covers all zeros)
	firstByte := key[0]
	allSame := true
	for _, b := range key[1:] {
		if b != firstByte {
			allSame = false
			break
		}
	}
	if allSame {
		return true
	}

	// Basic entropy check - count unique bytes
	uniqueBytes := make(map[byte]bool)
	for _, b := range key {
		uniqueBytes[b] = true
	}

	// Should have reasonable variety (at least 16 different byte values)
	return len(uniqueBytes) < 16
}
