package envcrypt

import (
	"bytes"
	"encoding/base64"
	"errors"
	"testing"
)

func TestGenerateDefaultLengths(t *testing.T) {
	cases := []struct {
		purpose Purpose
		want    int
	}{
		{PurposeSalt, 32},
		{PurposeCipherKey, 32},
		{PurposeIV, 12},
		{PurposeGeneric, 32},
	}

	for _, tc := range cases {
		buf, err := Generate(tc.purpose)
		if err != nil {
			t.Fatalf("Generate(%s) failed: %v", tc.purpose, err)
		}
		if len(buf) != tc.want {
			t.Errorf("Generate(%s) = %d bytes, want %d", tc.purpose, len(buf), tc.want)
		}
	}
}

func TestGenerateRandomBounds(t *testing.T) {
	for _, n := range []int{7, 0, -1, 4097} {
		if _, err := GenerateRandom(PurposeGeneric, n); !errors.Is(err, ErrValidation) {
			t.Errorf("length %d: expected validation error, got %v", n, err)
		}
	}

	for _, n := range []int{8, 16, 4096} {
		buf, err := GenerateRandom(PurposeGeneric, n)
		if err != nil {
			t.Errorf("length %d: unexpected error %v", n, err)
		}
		if len(buf) != n {
			t.Errorf("length %d: got %d bytes", n, len(buf))
		}
	}
}

func TestGenerateIsNotRepeating(t *testing.T) {
	a, err := Generate(PurposeSalt)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	b, err := Generate(PurposeSalt)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if bytes.Equal(a, b) {
		t.Error("two generated salts are identical")
	}
}

func TestGenerateBase64(t *testing.T) {
	s, err := GenerateBase64(PurposeCipherKey)
	if err != nil {
		t.Fatalf("GenerateBase64 failed: %v", err)
	}
	decoded, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		t.Fatalf("output is not valid base64: %v", err)
	}
	if len(decoded) != 32 {
		t.Errorf("decoded length = %d, want 32", len(decoded))
	}
}

func TestSecureWipe(t *testing.T) {
	buf := []byte("sensitive key material here!")
	SecureWipe(buf)
	for i, b := range buf {
		if b != 0 {
			t.Fatalf("byte %d not zeroed after wipe", i)
		}
	}

	// Must not panic on degenerate input
	SecureWipe(nil)
	SecureWipe([]byte{})
}
