// Package pgpkeyring is the default keyring.Adapter, backed by
// golang.org/x/crypto/openpgp. It holds a public keyring (used for
// FindKeys/Encrypt) and a secret keyring of already passphrase-unlocked
// entities (used for Decrypt), standing in for the host's OpenPGP agent.
package pgpkeyring

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/openpgp"
	"golang.org/x/crypto/openpgp/armor"
	_ "golang.org/x/crypto/ripemd160" // registers RIPEMD160 for openpgp self-signature hashing

	"github.com/apognu/knox/errs"
	"github.com/apognu/knox/keyring"
)

// Adapter implements keyring.Adapter using in-process OpenPGP entity lists.
type Adapter struct {
	public openpgp.EntityList
	secret openpgp.EntityList
}

// New constructs an Adapter from a public keyring (used to find recipients
// and encrypt) and a secret keyring of already-unlocked entities (used to
// decrypt). Either may be empty.
func New(public, secret openpgp.EntityList) *Adapter {
	return &Adapter{public: public, secret: secret}
}

// NewFromReaders reads ASCII-armoured public and secret keyrings.
func NewFromReaders(publicKeyring, secretKeyring io.Reader) (*Adapter, error) {
	pub, err := openpgp.ReadArmoredKeyRing(publicKeyring)
	if err != nil {
		return nil, fmt.Errorf("could not read public keyring: %w", errs.ErrCryptography)
	}

	var sec openpgp.EntityList
	if secretKeyring != nil {
		sec, err = openpgp.ReadArmoredKeyRing(secretKeyring)
		if err != nil {
			return nil, fmt.Errorf("could not read secret keyring: %w", errs.ErrCryptography)
		}
	}

	return New(pub, sec), nil
}

// entityKey adapts an *openpgp.Entity to keyring.Key.
type entityKey struct {
	entity *openpgp.Entity
}

func (k entityKey) Identifier() string {
	for _, ident := range k.entity.Identities {
		return ident.Name
	}
	return fmt.Sprintf("%X", k.entity.PrimaryKey.Fingerprint)
}

// FindKeys implements keyring.Adapter.
func (a *Adapter) FindKeys(identifiers []string) ([]keyring.Key, error) {
	var found []keyring.Key
	for _, entity := range a.public {
		if !matchesAny(entity, identifiers) {
			continue
		}
		if !canEncrypt(entity) {
			continue
		}
		found = append(found, entityKey{entity: entity})
	}

	if len(found) == 0 {
		return nil, fmt.Errorf("no public key was found for the provided identities: %w", errs.ErrCryptography)
	}
	return found, nil
}

// Encrypt implements keyring.Adapter.
func (a *Adapter) Encrypt(recipients []keyring.Key, plaintext []byte) ([]byte, error) {
	entities := make([]*openpgp.Entity, 0, len(recipients))
	for _, r := range recipients {
		ek, ok := r.(entityKey)
		if !ok {
			return nil, fmt.Errorf("recipient key is not a pgpkeyring key: %w", errs.ErrCryptography)
		}
		entities = append(entities, ek.entity)
	}

	var buf bytes.Buffer
	armorWriter, err := armor.Encode(&buf, "PGP MESSAGE", nil)
	if err != nil {
		return nil, fmt.Errorf("could not open armor encoder: %w", errs.ErrCryptography)
	}

	pgpWriter, err := openpgp.Encrypt(armorWriter, entities, nil, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("could not start encrypting: %w", errs.ErrCryptography)
	}
	if _, err := io.Copy(pgpWriter, bytes.NewReader(plaintext)); err != nil {
		return nil, fmt.Errorf("could not write plaintext: %w", errs.ErrCryptography)
	}
	if err := pgpWriter.Close(); err != nil {
		return nil, fmt.Errorf("could not finish encrypting: %w", errs.ErrCryptography)
	}
	if err := armorWriter.Close(); err != nil {
		return nil, fmt.Errorf("could not finish armoring: %w", errs.ErrCryptography)
	}

	return buf.Bytes(), nil
}

// Decrypt implements keyring.Adapter.
func (a *Adapter) Decrypt(ciphertext []byte) ([]byte, error) {
	block, err := armor.Decode(bytes.NewReader(ciphertext))
	if err != nil {
		return nil, fmt.Errorf("could not decode armor: %w", errs.ErrCryptography)
	}

	md, err := openpgp.ReadMessage(block.Body, a.secret, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("could not decrypt message: %w", errs.ErrCryptography)
	}

	plaintext, err := io.ReadAll(md.UnverifiedBody)
	if err != nil {
		return nil, fmt.Errorf("could not read decrypted message: %w", errs.ErrCryptography)
	}
	if md.SignatureError != nil {
		return nil, fmt.Errorf("message verification error: %v: %w", md.SignatureError, errs.ErrCryptography)
	}

	return plaintext, nil
}

func matchesAny(entity *openpgp.Entity, identifiers []string) bool {
	fingerprint := fmt.Sprintf("%X", entity.PrimaryKey.Fingerprint)
	for _, id := range identifiers {
		if strings.EqualFold(fingerprint, id) {
			return true
		}
		for _, ident := range entity.Identities {
			if ident.UserId.Email == id || ident.Name == id {
				return true
			}
		}
	}
	return false
}

func canEncrypt(entity *openpgp.Entity) bool {
	for _, subkey := range entity.Subkeys {
		if subkey.PublicKey != nil && subkey.PublicKey.PubKeyAlgo.CanEncrypt() {
			return true
		}
	}
	return entity.PrimaryKey != nil && entity.PrimaryKey.PubKeyAlgo.CanEncrypt()
}
