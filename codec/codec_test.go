package codec

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestVaultRoundTrip(t *testing.T) {
	t.Parallel()

	v := Vault{
		Identities: []string{"alice@example.com", "bob@example.com"},
		Index: map[string]string{
			"personal/email": "6a25fcf213c7779ad26dc50706cb643b42e7cd3e",
			"work/vpn":       "a1b2c3",
		},
	}

	encoded := EncodeVault(v)
	decoded, err := DecodeVault(encoded)
	if err != nil {
		t.Fatalf("could not decode vault: %v", err)
	}

	if diff := cmp.Diff(v, decoded); diff != "" {
		t.Fatalf("round-trip mismatch (-want +got):\n%s", diff)
	}
}

func TestVaultEncodeIsDeterministic(t *testing.T) {
	t.Parallel()

	v := Vault{
		Identities: []string{"a", "b"},
		Index:      map[string]string{"z": "1", "a": "2", "m": "3"},
	}

	first := EncodeVault(v)
	second := EncodeVault(v)
	if string(first) != string(second) {
		t.Fatalf("re-encoding an unchanged vault produced different bytes")
	}
}

func TestEntryRoundTrip(t *testing.T) {
	t.Parallel()

	e := Entry{
		Attributes: map[string]Attribute{
			"user": {Value: "bob"},
			"pass": {Value: "s3cret", Confidential: true},
			"cert": {BytesValue: []byte{0, 159, 146, 150}, File: true},
		},
		Totp: &TotpConfig{
			Secret:   []byte("acbdefghijklmnopqrst"),
			Interval: 30,
			Length:   6,
			Hash:     SHA1,
		},
	}

	encoded := EncodeEntry(e)
	decoded, err := DecodeEntry(encoded)
	if err != nil {
		t.Fatalf("could not decode entry: %v", err)
	}

	if diff := cmp.Diff(e, decoded); diff != "" {
		t.Fatalf("round-trip mismatch (-want +got):\n%s", diff)
	}
}

func TestEntryWithoutTotp(t *testing.T) {
	t.Parallel()

	e := Entry{Attributes: map[string]Attribute{"k": {Value: "v"}}}

	decoded, err := DecodeEntry(EncodeEntry(e))
	if err != nil {
		t.Fatalf("could not decode entry: %v", err)
	}
	if decoded.Totp != nil {
		t.Fatalf("expected no totp config, got %+v", decoded.Totp)
	}
}

func TestDecodeVaultTruncated(t *testing.T) {
	t.Parallel()

	v := Vault{Identities: []string{"alice@example.com"}}
	encoded := EncodeVault(v)

	if _, err := DecodeVault(encoded[:len(encoded)-1]); err == nil {
		t.Fatalf("expected an error decoding a truncated vault")
	}
}

func TestUnknownFieldsRoundTrip(t *testing.T) {
	t.Parallel()

	v := Vault{Identities: []string{"alice@example.com"}}
	encoded := EncodeVault(v)

	// Simulate a future field (number 99, varint) appended by a newer
	// writer; this implementation must preserve it through a decode/encode
	// cycle even though it does not understand it.
	encoded = append(encoded, 0x98, 0x06, 0x01) // tag (field 99, varint) + value 1

	decoded, err := DecodeVault(encoded)
	if err != nil {
		t.Fatalf("could not decode vault with unknown field: %v", err)
	}

	reencoded := EncodeVault(decoded)
	if string(reencoded) != string(encoded) {
		t.Fatalf("unknown field was not preserved on round-trip")
	}
}
