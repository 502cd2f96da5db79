package pgpkeyring

import (
	"errors"
	"testing"

	"golang.org/x/crypto/openpgp"

	"github.com/apognu/knox/errs"
	"github.com/apognu/knox/keyring"
)

func newTestEntity(t *testing.T, name, email string) *openpgp.Entity {
	t.Helper()
	entity, err := openpgp.NewEntity(name, "", email, nil)
	if err != nil {
		t.Fatalf("could not create entity: %v", err)
	}
	return entity
}

func TestFindKeysByEmail(t *testing.T) {
	t.Parallel()

	entity := newTestEntity(t, "alice", "alice@example.com")
	adapter := New(openpgp.EntityList{entity}, nil)

	keys, err := adapter.FindKeys([]string{"alice@example.com"})
	if err != nil {
		t.Fatalf("could not find keys: %v", err)
	}
	if len(keys) != 1 {
		t.Fatalf("expected 1 key, got %d", len(keys))
	}
}

func TestFindKeysFailsWhenEmpty(t *testing.T) {
	t.Parallel()

	adapter := New(nil, nil)
	if _, err := adapter.FindKeys([]string{"nobody@example.com"}); !errors.Is(err, errs.ErrCryptography) {
		t.Fatalf("expected ErrCryptography, got %v", err)
	}
}

func TestEncryptAndDecrypt(t *testing.T) {
	t.Parallel()

	entity := newTestEntity(t, "bob", "bob@example.com")
	adapter := New(openpgp.EntityList{entity}, openpgp.EntityList{entity})

	keys, err := adapter.FindKeys([]string{"bob@example.com"})
	if err != nil {
		t.Fatalf("could not find keys: %v", err)
	}

	plaintext := []byte("foobarhelloworld")
	ciphertext, err := adapter.Encrypt(keys, plaintext)
	if err != nil {
		t.Fatalf("could not encrypt: %v", err)
	}

	decrypted, err := adapter.Decrypt(ciphertext)
	if err != nil {
		t.Fatalf("could not decrypt: %v", err)
	}
	if string(decrypted) != string(plaintext) {
		t.Fatalf("got %q, want %q", decrypted, plaintext)
	}
}

func TestEncryptRejectsForeignKey(t *testing.T) {
	t.Parallel()

	adapter := New(nil, nil)
	if _, err := adapter.Encrypt([]keyring.Key{fakeKey{}}, []byte("x")); err == nil {
		t.Fatalf("expected an error encrypting to a foreign key type")
	}
}

type fakeKey struct{}

func (fakeKey) Identifier() string { return "fake" }
