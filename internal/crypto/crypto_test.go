package crypto

import (
	"bytes"
	"crypto/rand"
	"testing"
)

// Low-cost parameters so the suite stays fast; KeyLen stays at the
// production value because the key split depends on it.
func testParams() Params {
	return Params{Time: 1, Memory: 8 * 1024, Threads: 2, KeyLen: 64}
}

func randomBytes(t *testing.T, n int) []byte {
	t.Helper()
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		t.Fatalf("failed to generate random bytes: %v", err)
	}
	return buf
}

func TestDeriveKeySetDeterministic(t *testing.T) {
	secret := []byte("a sufficiently long secret")
	salt := randomBytes(t, 32)

	ks1, err := DeriveKeySet(secret, salt, testParams())
	if err != nil {
		t.Fatalf("first derivation failed: %v", err)
	}
	ks2, err := DeriveKeySet(secret, salt, testParams())
	if err != nil {
		t.Fatalf("second derivation failed: %v", err)
	}

	// Same inputs must yield interchangeable keys: encrypt with one set,
	// decrypt with the other
	iv := randomBytes(t, 12)
	plaintext := []byte("interchangeable keys")

	ciphertext, err := EncryptGCM(ks1.CipherKey(), iv, plaintext)
	if err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}
	decrypted, err := DecryptGCM(ks2.CipherKey(), iv, ciphertext)
	if err != nil {
		t.Fatalf("decrypt with re-derived key failed: %v", err)
	}
	if !bytes.Equal(decrypted, plaintext) {
		t.Error("plaintext mismatch across re-derived keys")
	}

	// And the MAC keys must agree too
	mac1, err := ComputeMAC(ks1.MACKey(), salt, iv, ciphertext)
	if err != nil {
		t.Fatalf("mac failed: %v", err)
	}
	mac2, err := ComputeMAC(ks2.MACKey(), salt, iv, ciphertext)
	if err != nil {
		t.Fatalf("mac failed: %v", err)
	}
	if !VerifyMAC(mac1, mac2) {
		t.Error("MAC keys differ across re-derivation")
	}
}

func TestDeriveKeySetSaltSensitivity(t *testing.T) {
	secret := []byte("a sufficiently long secret")
	data := []byte("same data")

	ks1, err := DeriveKeySet(secret, randomBytes(t, 32), testParams())
	if err != nil {
		t.Fatalf("derivation failed: %v", err)
	}
	ks2, err := DeriveKeySet(secret, randomBytes(t, 32), testParams())
	if err != nil {
		t.Fatalf("derivation failed: %v", err)
	}

	mac1, err := ComputeMAC(ks1.MACKey(), data)
	if err != nil {
		t.Fatalf("mac failed: %v", err)
	}
	mac2, err := ComputeMAC(ks2.MACKey(), data)
	if err != nil {
		t.Fatalf("mac failed: %v", err)
	}
	if VerifyMAC(mac1, mac2) {
		t.Error("different salts produced identical MAC keys")
	}
}

func TestDeriveKeySetValidation(t *testing.T) {
	if _, err := DeriveKeySet(nil, randomBytes(t, 32), testParams()); err == nil {
		t.Error("expected error for empty secret")
	}
	if _, err := DeriveKeySet([]byte("secret"), nil, testParams()); err == nil {
		t.Error("expected error for empty salt")
	}

	p := testParams()
	p.KeyLen = 32
	if _, err := DeriveKeySet([]byte("secret"), randomBytes(t, 32), p); err == nil {
		t.Error("expected error for non-64-byte output length")
	}
}

func TestGCMRoundTripAndTamper(t *testing.T) {
	ks, err := DeriveKeySet([]byte("gcm test secret"), randomBytes(t, 32), testParams())
	if err != nil {
		t.Fatalf("derivation failed: %v", err)
	}

	iv := randomBytes(t, 12)
	plaintext := []byte("authenticated payload")

	ciphertext, err := EncryptGCM(ks.CipherKey(), iv, plaintext)
	if err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}
	if len(ciphertext) != len(plaintext)+16 {
		t.Errorf("expected 16-byte tag overhead, got %d extra bytes", len(ciphertext)-len(plaintext))
	}

	decrypted, err := DecryptGCM(ks.CipherKey(), iv, ciphertext)
	if err != nil {
		t.Fatalf("decrypt failed: %v", err)
	}
	if !bytes.Equal(decrypted, plaintext) {
		t.Error("round trip mismatch")
	}

	// Flipping any byte must fail tag verification
	tampered := make([]byte, len(ciphertext))
	copy(tampered, ciphertext)
	tampered[3] ^= 0x01
	if _, err := DecryptGCM(ks.CipherKey(), iv, tampered); err == nil {
		t.Error("tampered ciphertext decrypted successfully")
	}

	// Wrong IV length is rejected up front
	if _, err := EncryptGCM(ks.CipherKey(), randomBytes(t, 16), plaintext); err == nil {
		t.Error("expected error for 16-byte IV with GCM")
	}
}

func TestVerifyMAC(t *testing.T) {
	a := randomBytes(t, 32)
	b := make([]byte, 32)
	copy(b, a)

	if !VerifyMAC(a, b) {
		t.Error("identical MACs did not verify")
	}

	b[31] ^= 0xFF
	if VerifyMAC(a, b) {
		t.Error("differing MACs verified")
	}

	if VerifyMAC(a, a[:16]) {
		t.Error("length mismatch verified")
	}
}

func TestIsWeakKey(t *testing.T) {
	if !IsWeakKey(make([]byte, 32)) {
		t.Error("all-zero key should be weak")
	}
	if !IsWeakKey(bytes.Repeat([]byte{0xAB}, 32)) {
		t.Error("constant key should be weak")
	}
	if !IsWeakKey(randomBytes(t, 16)) {
		t.Error("short key should be weak")
	}
	if !IsWeakKey(bytes.Repeat([]byte{1, 2, 3, 4}, 8)) {
		t.Error("low-variety key should be weak")
	}
	if IsWeakKey(randomBytes(t, 32)) {
		t.Error("random 32-byte key flagged as weak")
	}
}
