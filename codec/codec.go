// Package codec implements the stable, length-delimited binary schema used
// to persist Vault and Entry records. It is a hand-rolled reader/
// writer over the protobuf wire format (google.golang.org/protobuf/encoding/
// protowire) rather than .proto-generated code: no protoc toolchain is
// assumed to be available to producers of this package, but the wire bytes
// are standard tag/length/value protobuf, so any protobuf-aware tool can
// still inspect a vault file.
//
// Field numbers (fixed, never renumbered):
//
//	Vault       { identities = 1 (repeated string); index = 2 (map<string,string>) }
//	Entry       { attributes = 1 (map<string,Attribute>); totp = 2 (message) }
//	Attribute   { value = 1 (string); bytes_value = 2 (bytes); confidential = 3 (bool); file = 4 (bool) }
//	TotpConfig  { secret = 1 (bytes); interval = 2 (uint64); length = 3 (uint32); hash = 4 (enum) }
package codec

import (
	"fmt"
	"sort"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/apognu/knox/errs"
)

// Hash identifies the HMAC hash family backing a TOTP generator.
type Hash int

const (
	SHA1 Hash = iota
	SHA256
	SHA512
)

// Vault is the root metadata record of a store: the ordered recipient
// identities, plus the virtual-path-to-salt index.
type Vault struct {
	Identities []string
	Index      map[string]string

	// Unknown preserves field bytes this codec version did not recognize,
	// so that re-encoding an unchanged-but-newer record round-trips them.
	Unknown []byte
}

// Entry is the decrypted content of a single secret.
type Entry struct {
	Attributes map[string]Attribute
	Totp       *TotpConfig

	Unknown []byte
}

// Attribute is a single named field within an Entry. File attributes hold
// their content in BytesValue; all others use Value.
type Attribute struct {
	Value        string
	BytesValue   []byte
	Confidential bool
	File         bool
}

// TotpConfig describes an RFC 6238 generator.
type TotpConfig struct {
	Secret   []byte
	Interval uint64
	Length   uint32
	Hash     Hash
}

const (
	fieldVaultIdentities = 1
	fieldVaultIndex      = 2

	fieldEntryAttributes = 1
	fieldEntryTotp       = 2

	fieldAttrValue        = 1
	fieldAttrBytesValue   = 2
	fieldAttrConfidential = 3
	fieldAttrFile         = 4

	fieldTotpSecret   = 1
	fieldTotpInterval = 2
	fieldTotpLength   = 3
	fieldTotpHash     = 4

	fieldMapKey   = 1
	fieldMapValue = 2
)

// EncodeVault serializes a Vault. Re-encoding an unchanged Vault always
// produces the same bytes: map keys are sorted before encoding.
func EncodeVault(v Vault) []byte {
	var b []byte
	for _, id := range v.Identities {
		b = protowire.AppendTag(b, fieldVaultIdentities, protowire.BytesType)
		b = protowire.AppendString(b, id)
	}

	keys := sortedKeys(v.Index)
	for _, k := range keys {
		entry := appendMapEntryString(k, v.Index[k])
		b = protowire.AppendTag(b, fieldVaultIndex, protowire.BytesType)
		b = protowire.AppendBytes(b, entry)
	}

	b = append(b, v.Unknown...)
	return b
}

// DecodeVault parses a Vault previously produced by EncodeVault.
func DecodeVault(data []byte) (Vault, error) {
	v := Vault{Index: map[string]string{}}

	i := 0
	for i < len(data) {
		tagStart := i
		num, typ, n := protowire.ConsumeTag(data[i:])
		if n < 0 {
			return Vault{}, fmt.Errorf("vault: truncated tag: %w", errs.ErrCodec)
		}
		i += n

		valStart := i
		valEnd, err := consumeValue(data, i, typ)
		if err != nil {
			return Vault{}, fmt.Errorf("vault: %w", err)
		}
		i = valEnd

		switch num {
		case fieldVaultIdentities:
			s, _ := protowire.ConsumeString(data[valStart:valEnd])
			v.Identities = append(v.Identities, s)
		case fieldVaultIndex:
			entry, _ := protowire.ConsumeBytes(data[valStart:valEnd])
			k, val, err := consumeMapEntryString(entry)
			if err != nil {
				return Vault{}, fmt.Errorf("vault: index entry: %w", err)
			}
			v.Index[k] = val
		default:
			v.Unknown = append(v.Unknown, data[tagStart:valEnd]...)
		}
	}
	return v, nil
}

// EncodeEntry serializes an Entry deterministically.
func EncodeEntry(e Entry) []byte {
	var b []byte

	keys := sortedAttrKeys(e.Attributes)
	for _, k := range keys {
		entry := appendMapEntryAttribute(k, e.Attributes[k])
		b = protowire.AppendTag(b, fieldEntryAttributes, protowire.BytesType)
		b = protowire.AppendBytes(b, entry)
	}

	if e.Totp != nil {
		b = protowire.AppendTag(b, fieldEntryTotp, protowire.BytesType)
		b = protowire.AppendBytes(b, encodeTotpConfig(*e.Totp))
	}

	b = append(b, e.Unknown...)
	return b
}

// DecodeEntry parses an Entry previously produced by EncodeEntry.
func DecodeEntry(data []byte) (Entry, error) {
	e := Entry{Attributes: map[string]Attribute{}}

	i := 0
	for i < len(data) {
		tagStart := i
		num, typ, n := protowire.ConsumeTag(data[i:])
		if n < 0 {
			return Entry{}, fmt.Errorf("entry: truncated tag: %w", errs.ErrCodec)
		}
		i += n

		valStart := i
		valEnd, err := consumeValue(data, i, typ)
		if err != nil {
			return Entry{}, fmt.Errorf("entry: %w", err)
		}
		i = valEnd

		switch num {
		case fieldEntryAttributes:
			raw, _ := protowire.ConsumeBytes(data[valStart:valEnd])
			k, attr, err := consumeMapEntryAttribute(raw)
			if err != nil {
				return Entry{}, fmt.Errorf("entry: attribute entry: %w", err)
			}
			e.Attributes[k] = attr
		case fieldEntryTotp:
			raw, _ := protowire.ConsumeBytes(data[valStart:valEnd])
			totp, err := decodeTotpConfig(raw)
			if err != nil {
				return Entry{}, fmt.Errorf("entry: totp: %w", err)
			}
			e.Totp = &totp
		default:
			e.Unknown = append(e.Unknown, data[tagStart:valEnd]...)
		}
	}
	return e, nil
}

func encodeAttribute(a Attribute) []byte {
	var b []byte
	if a.Value != "" {
		b = protowire.AppendTag(b, fieldAttrValue, protowire.BytesType)
		b = protowire.AppendString(b, a.Value)
	}
	if len(a.BytesValue) > 0 {
		b = protowire.AppendTag(b, fieldAttrBytesValue, protowire.BytesType)
		b = protowire.AppendBytes(b, a.BytesValue)
	}
	if a.Confidential {
		b = protowire.AppendTag(b, fieldAttrConfidential, protowire.VarintType)
		b = protowire.AppendVarint(b, 1)
	}
	if a.File {
		b = protowire.AppendTag(b, fieldAttrFile, protowire.VarintType)
		b = protowire.AppendVarint(b, 1)
	}
	return b
}

func decodeAttribute(data []byte) (Attribute, error) {
	var a Attribute
	i := 0
	for i < len(data) {
		num, typ, n := protowire.ConsumeTag(data[i:])
		if n < 0 {
			return Attribute{}, fmt.Errorf("truncated tag: %w", errs.ErrCodec)
		}
		i += n

		valStart := i
		valEnd, err := consumeValue(data, i, typ)
		if err != nil {
			return Attribute{}, err
		}
		i = valEnd

		switch num {
		case fieldAttrValue:
			a.Value, _ = protowire.ConsumeString(data[valStart:valEnd])
		case fieldAttrBytesValue:
			raw, _ := protowire.ConsumeBytes(data[valStart:valEnd])
			a.BytesValue = append([]byte(nil), raw...)
		case fieldAttrConfidential:
			v, _ := protowire.ConsumeVarint(data[valStart:valEnd])
			a.Confidential = v != 0
		case fieldAttrFile:
			v, _ := protowire.ConsumeVarint(data[valStart:valEnd])
			a.File = v != 0
		}
		// Unknown attribute fields are ignored: only top-level records
		// guarantee unknown-field round-trip.
	}
	return a, nil
}

func encodeTotpConfig(t TotpConfig) []byte {
	var b []byte
	if len(t.Secret) > 0 {
		b = protowire.AppendTag(b, fieldTotpSecret, protowire.BytesType)
		b = protowire.AppendBytes(b, t.Secret)
	}
	if t.Interval != 0 {
		b = protowire.AppendTag(b, fieldTotpInterval, protowire.VarintType)
		b = protowire.AppendVarint(b, t.Interval)
	}
	if t.Length != 0 {
		b = protowire.AppendTag(b, fieldTotpLength, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(t.Length))
	}
	b = protowire.AppendTag(b, fieldTotpHash, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(t.Hash))
	return b
}

func decodeTotpConfig(data []byte) (TotpConfig, error) {
	t := TotpConfig{Interval: 30, Length: 6, Hash: SHA1}
	i := 0
	for i < len(data) {
		num, typ, n := protowire.ConsumeTag(data[i:])
		if n < 0 {
			return TotpConfig{}, fmt.Errorf("truncated tag: %w", errs.ErrCodec)
		}
		i += n

		valStart := i
		valEnd, err := consumeValue(data, i, typ)
		if err != nil {
			return TotpConfig{}, err
		}
		i = valEnd

		switch num {
		case fieldTotpSecret:
			raw, _ := protowire.ConsumeBytes(data[valStart:valEnd])
			t.Secret = append([]byte(nil), raw...)
		case fieldTotpInterval:
			v, _ := protowire.ConsumeVarint(data[valStart:valEnd])
			t.Interval = v
		case fieldTotpLength:
			v, _ := protowire.ConsumeVarint(data[valStart:valEnd])
			t.Length = uint32(v)
		case fieldTotpHash:
			v, _ := protowire.ConsumeVarint(data[valStart:valEnd])
			t.Hash = Hash(v)
		}
	}
	return t, nil
}

func appendMapEntryString(k, v string) []byte {
	var b []byte
	b = protowire.AppendTag(b, fieldMapKey, protowire.BytesType)
	b = protowire.AppendString(b, k)
	b = protowire.AppendTag(b, fieldMapValue, protowire.BytesType)
	b = protowire.AppendString(b, v)
	return b
}

func consumeMapEntryString(data []byte) (string, string, error) {
	var k, v string
	i := 0
	for i < len(data) {
		num, typ, n := protowire.ConsumeTag(data[i:])
		if n < 0 {
			return "", "", fmt.Errorf("truncated map entry: %w", errs.ErrCodec)
		}
		i += n
		valStart := i
		valEnd, err := consumeValue(data, i, typ)
		if err != nil {
			return "", "", err
		}
		i = valEnd
		switch num {
		case fieldMapKey:
			k, _ = protowire.ConsumeString(data[valStart:valEnd])
		case fieldMapValue:
			v, _ = protowire.ConsumeString(data[valStart:valEnd])
		}
	}
	return k, v, nil
}

func appendMapEntryAttribute(k string, a Attribute) []byte {
	var b []byte
	b = protowire.AppendTag(b, fieldMapKey, protowire.BytesType)
	b = protowire.AppendString(b, k)
	b = protowire.AppendTag(b, fieldMapValue, protowire.BytesType)
	b = protowire.AppendBytes(b, encodeAttribute(a))
	return b
}

func consumeMapEntryAttribute(data []byte) (string, Attribute, error) {
	var k string
	var a Attribute
	i := 0
	for i < len(data) {
		num, typ, n := protowire.ConsumeTag(data[i:])
		if n < 0 {
			return "", Attribute{}, fmt.Errorf("truncated map entry: %w", errs.ErrCodec)
		}
		i += n
		valStart := i
		valEnd, err := consumeValue(data, i, typ)
		if err != nil {
			return "", Attribute{}, err
		}
		i = valEnd
		switch num {
		case fieldMapKey:
			k, _ = protowire.ConsumeString(data[valStart:valEnd])
		case fieldMapValue:
			raw, _ := protowire.ConsumeBytes(data[valStart:valEnd])
			a, err = decodeAttribute(raw)
			if err != nil {
				return "", Attribute{}, err
			}
		}
	}
	return k, a, nil
}

// consumeValue returns the index immediately following the value for a
// field of the given wire type starting at data[i:], or an error if the
// value is truncated or of an unsupported wire type (start/end group).
func consumeValue(data []byte, i int, typ protowire.Type) (int, error) {
	switch typ {
	case protowire.VarintType:
		_, n := protowire.ConsumeVarint(data[i:])
		if n < 0 {
			return 0, errs.ErrCodec
		}
		return i + n, nil
	case protowire.Fixed32Type:
		_, n := protowire.ConsumeFixed32(data[i:])
		if n < 0 {
			return 0, errs.ErrCodec
		}
		return i + n, nil
	case protowire.Fixed64Type:
		_, n := protowire.ConsumeFixed64(data[i:])
		if n < 0 {
			return 0, errs.ErrCodec
		}
		return i + n, nil
	case protowire.BytesType:
		_, n := protowire.ConsumeBytes(data[i:])
		if n < 0 {
			return 0, errs.ErrCodec
		}
		return i + n, nil
	default:
		return 0, fmt.Errorf("unsupported wire type %d: %w", typ, errs.ErrCodec)
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedAttrKeys(m map[string]Attribute) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
