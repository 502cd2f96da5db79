package totp

import (
	"errors"
	"testing"
	"time"

	"github.com/apognu/knox/codec"
	"github.com/apognu/knox/errs"
)

// These fixed-time vectors are RFC 6238 Appendix B's reference values.
func TestGenerateRFC6238Vectors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		secret string
		hash   codec.Hash
		want   string
	}{
		{"sha1", "12345678901234567890", codec.SHA1, "94287082"},
		{"sha256", "12345678901234567890123456789012", codec.SHA256, "46119246"},
		{"sha512", "1234567890123456789012345678901234567890123456789012345678901234", codec.SHA512, "90693936"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := codec.TotpConfig{
				Secret:   []byte(tt.secret),
				Interval: 30,
				Length:   8,
				Hash:     tt.hash,
			}

			code, expiresAt, err := Generate(cfg, time.Unix(59, 0).UTC())
			if err != nil {
				t.Fatalf("could not generate code: %v", err)
			}
			if code != tt.want {
				t.Fatalf("got code %q, want %q", code, tt.want)
			}
			if want := time.Unix(60, 0); !expiresAt.Equal(want) {
				t.Fatalf("got expiry %v, want %v", expiresAt, want)
			}
		})
	}
}

func TestGenerateSameWindowSameCode(t *testing.T) {
	t.Parallel()

	cfg := codec.TotpConfig{
		Secret:   []byte("acbdefghijklmnopqrst"),
		Interval: 30,
		Length:   6,
		Hash:     codec.SHA1,
	}

	codeA, _, err := Generate(cfg, time.Unix(1415664000, 0).UTC())
	if err != nil {
		t.Fatalf("could not generate code: %v", err)
	}
	codeB, _, err := Generate(cfg, time.Unix(1415664029, 0).UTC())
	if err != nil {
		t.Fatalf("could not generate code: %v", err)
	}
	if codeA != codeB {
		t.Fatalf("codes in the same 30s window differed: %q vs %q", codeA, codeB)
	}

	codeC, _, err := Generate(cfg, time.Unix(1415664030, 0).UTC())
	if err != nil {
		t.Fatalf("could not generate code: %v", err)
	}
	if codeA == codeC {
		t.Fatalf("codes in different windows unexpectedly matched")
	}
}

func TestGenerateDefaults(t *testing.T) {
	t.Parallel()

	cfg := codec.TotpConfig{Secret: []byte("12345678901234567890")}
	code, _, err := Generate(cfg, time.Unix(0, 0).UTC())
	if err != nil {
		t.Fatalf("could not generate code: %v", err)
	}
	if len(code) != 6 {
		t.Fatalf("expected default length 6, got %d (%q)", len(code), code)
	}
}

func TestGenerateUnknownHash(t *testing.T) {
	t.Parallel()

	cfg := codec.TotpConfig{Secret: []byte("12345678901234567890"), Hash: codec.Hash(99)}
	if _, _, err := Generate(cfg, time.Now()); !errors.Is(err, errs.ErrInput) {
		t.Fatalf("expected ErrInput, got %v", err)
	}
}
