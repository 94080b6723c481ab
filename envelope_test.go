package envcrypt

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"
)

func sampleEnvelope() *Envelope {
	return &Envelope{
		Salt:       make([]byte, 32),
		IV:         make([]byte, 12),
		Ciphertext: []byte("some ciphertext bytes"),
		MAC:        make([]byte, 32),
	}
}

func TestEnvelopeRoundTrip(t *testing.T) {
	env := sampleEnvelope()
	text := env.String()

	if !strings.HasPrefix(text, "ENC2:v1:") {
		t.Fatalf("envelope missing prefix: %s", text)
	}

	parsed, err := ParseEnvelope(text)
	if err != nil {
		t.Fatalf("failed to parse rendered envelope: %v", err)
	}

	if string(parsed.Ciphertext) != string(env.Ciphertext) {
		t.Errorf("ciphertext changed across round trip")
	}
	if len(parsed.Salt) != 32 || len(parsed.IV) != 12 || len(parsed.MAC) != 32 {
		t.Errorf("field lengths changed across round trip")
	}
}

func TestIsValidBase64(t *testing.T) {
	valid := []string{
		"",
		"aGVsbG8=",
		"aGVsbG8gd29ybGQ=",
		base64.StdEncoding.EncodeToString([]byte{0, 1, 2, 255}),
	}
	for _, s := range valid {
		if !IsValidBase64(s) {
			t.Errorf("expected %q to be valid base64", s)
		}
	}

	invalid := []string{
		"aGVsbG8",     // length not a multiple of 4
		"aGVs bG8=",   // whitespace
		"aGVsbG8===",  // too much padding
		"aGVsbG8!",    // bad character
		"-_12abcd",    // url alphabet
	}
	for _, s := range invalid {
		if IsValidBase64(s) {
			t.Errorf("expected %q to be invalid base64", s)
		}
	}
}

func TestIsWellFormedEnvelope(t *testing.T) {
	good := sampleEnvelope().String()
	if !IsWellFormedEnvelope(good) {
		t.Fatalf("expected well-formed: %s", good)
	}

	tokens := strings.Split(good, ":")

	cases := map[string]string{
		"wrong prefix":    "ENC1:" + strings.Join(tokens[1:], ":"),
		"wrong version":   tokens[0] + ":v2:" + strings.Join(tokens[2:], ":"),
		"missing field":   strings.Join(tokens[:5], ":"),
		"extra field":     good + ":AAAA",
		"non-base64":      strings.Join(append(append([]string{}, tokens[:2]...), "not-base64!", tokens[3], tokens[4], tokens[5]), ":"),
		"empty field":     strings.Join([]string{tokens[0], tokens[1], "", tokens[3], tokens[4], tokens[5]}, ":"),
		"empty string":    "",
		"plain text":      "hello world",
	}

	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			if IsWellFormedEnvelope(input) {
				t.Errorf("expected malformed: %s", input)
			}
			if _, err := ParseEnvelope(input); !errors.Is(err, ErrValidation) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestParseEnvelopeFieldLengths(t *testing.T) {
	env := sampleEnvelope()

	short := *env
	short.Salt = make([]byte, 16)
	if _, err := ParseEnvelope(short.String()); !errors.Is(err, ErrValidation) {
		t.Errorf("expected validation error for short salt, got %v", err)
	}

	badIV := *env
	badIV.IV = make([]byte, 16)
	if _, err := ParseEnvelope(badIV.String()); !errors.Is(err, ErrValidation) {
		t.Errorf("expected validation error for 16-byte iv, got %v", err)
	}

	badMAC := *env
	badMAC.MAC = make([]byte, 20)
	if _, err := ParseEnvelope(badMAC.String()); !errors.Is(err, ErrValidation) {
		t.Errorf("expected validation error for short mac, got %v", err)
	}
}

func TestValidateSecretStrength(t *testing.T) {
	if err := ValidateSecretStrength("0123456789abcdef"); err != nil {
		t.Errorf("16-char secret should pass: %v", err)
	}
	if err := ValidateSecretStrength(""); !errors.Is(err, ErrValidation) {
		t.Errorf("empty secret should fail validation, got %v", err)
	}
	if err := ValidateSecretStrength("short"); !errors.Is(err, ErrValidation) {
		t.Errorf("short secret should fail validation, got %v", err)
	}
}
