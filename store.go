// Package knox implements the vault engine: on-disk layout, metadata/index
// management, entry encryption, re-encryption sweeps, and the optional
// version-control integration. There is no separate unlock step; opening or
// creating a vault returns the store directly, and every read or write goes
// through the keyring adapter it was opened with.
package knox

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/apognu/knox/codec"
	"github.com/apognu/knox/errs"
	"github.com/apognu/knox/keyring"
	"github.com/apognu/knox/pathmap"
	"github.com/apognu/knox/vcs"
)

// Store is an open vault: an in-memory Vault record plus the crypto
// adapter and base directory needed to read and write its entries.
type Store struct {
	basePath string
	adapter  keyring.Adapter
	vault    codec.Vault

	// Repo, if non-nil, receives a Commit call after every successful
	// mutation. A nil Repo disables commits; so does a Repo whose directory
	// is not a git repository, since its Commit is then a no-op.
	Repo *vcs.Repo
}

// Create initialises a new, empty vault at base with the given recipient
// identities. It validates the identities by resolving encryption keys but
// does not write anything to disk until Write is called.
func Create(base string, identities []string, adapter keyring.Adapter) (*Store, error) {
	metaPath := filepath.Join(base, pathmap.MetadataFile)
	if _, err := os.Stat(metaPath); err == nil {
		return nil, fmt.Errorf("a vault already exists at %q: %w", base, errs.ErrAlreadyExists)
	}

	if entries, err := os.ReadDir(base); err == nil && len(entries) > 0 {
		return nil, fmt.Errorf("%q is a non-empty directory: %w", base, errs.ErrAlreadyExists)
	}

	store := &Store{
		basePath: base,
		adapter:  adapter,
		vault: codec.Vault{
			Identities: append([]string(nil), identities...),
			Index:      map[string]string{},
		},
	}

	if _, err := store.recipients(); err != nil {
		return nil, err
	}

	return store, nil
}

// Open reads and decodes the metadata file at base, returning a handle to
// the vault. It fails if no metadata file is present.
func Open(base string, adapter keyring.Adapter) (*Store, error) {
	metaPath := filepath.Join(base, pathmap.MetadataFile)

	ciphertext, err := os.ReadFile(metaPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no vault metadata at %q: %w", metaPath, errs.ErrNotInitialised)
		}
		return nil, fmt.Errorf("could not read vault metadata: %w", err)
	}

	plaintext, err := adapter.Decrypt(ciphertext)
	if err != nil {
		return nil, err
	}

	vault, err := codec.DecodeVault(plaintext)
	if err != nil {
		return nil, err
	}

	return &Store{basePath: base, adapter: adapter, vault: vault}, nil
}

// Identities returns the vault's current recipient identities.
func (s *Store) Identities() []string {
	return append([]string(nil), s.vault.Identities...)
}

// EntryCount returns the number of entries currently indexed.
func (s *Store) EntryCount() int {
	return len(s.vault.Index)
}

// BasePath returns the vault's base directory.
func (s *Store) BasePath() string {
	return s.basePath
}

// Index returns a copy of the vault's virtual-path-to-salt mapping, for
// consumers (hierarchy view, pwned check) that only need to read it.
func (s *Store) Index() map[string]string {
	index := make(map[string]string, len(s.vault.Index))
	for k, v := range s.vault.Index {
		index[k] = v
	}
	return index
}

// Write persists the vault metadata, creating the base directory if
// necessary.
func (s *Store) Write() error {
	if err := os.MkdirAll(s.basePath, 0o700); err != nil {
		return fmt.Errorf("could not create vault directory: %w", err)
	}

	recipients, err := s.recipients()
	if err != nil {
		return err
	}

	plaintext := codec.EncodeVault(s.vault)
	ciphertext, err := s.adapter.Encrypt(recipients, plaintext)
	if err != nil {
		return err
	}

	return writeFileAtomic(filepath.Join(s.basePath, pathmap.MetadataFile), ciphertext)
}

// ReadEntry decrypts and decodes the entry stored at virtualPath.
func (s *Store) ReadEntry(virtualPath string) (codec.Entry, error) {
	salt, ok := s.vault.Index[virtualPath]
	if !ok {
		return codec.Entry{}, fmt.Errorf("no entry at %q: %w", virtualPath, errs.ErrNotFound)
	}

	ciphertext, err := os.ReadFile(filepath.Join(s.basePath, pathmap.ShardPath(salt)))
	if err != nil {
		return codec.Entry{}, fmt.Errorf("could not read entry file: %w", err)
	}

	plaintext, err := s.adapter.Decrypt(ciphertext)
	if err != nil {
		return codec.Entry{}, err
	}

	return codec.DecodeEntry(plaintext)
}

// WriteEntry encrypts and writes entry at virtualPath, minting a fresh salt
// for a new path or reusing the existing one, then persists the index and
// metadata. A VCS commit follows if a repository is attached.
func (s *Store) WriteEntry(virtualPath string, entry codec.Entry) error {
	existing, hasExisting := s.vault.Index[virtualPath]
	var salt *string
	if hasExisting {
		salt = &existing
	}

	shardPath, err := pathmap.HashPath(salt)
	if err != nil {
		return err
	}
	newSalt := pathmap.Salt(shardPath)

	recipients, err := s.recipients()
	if err != nil {
		return err
	}

	plaintext := codec.EncodeEntry(entry)
	ciphertext, err := s.adapter.Encrypt(recipients, plaintext)
	if err != nil {
		return err
	}

	fullPath := filepath.Join(s.basePath, shardPath)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o700); err != nil {
		return fmt.Errorf("could not create shard directory: %w", err)
	}
	if err := writeFileAtomic(fullPath, ciphertext); err != nil {
		return err
	}

	if s.vault.Index == nil {
		s.vault.Index = map[string]string{}
	}
	s.vault.Index[virtualPath] = newSalt

	if err := s.Write(); err != nil {
		return err
	}

	if hasExisting {
		s.commit("Edited entry.")
	} else {
		s.commit("Added entry.")
	}
	return nil
}

// DeleteEntry removes the entry at virtualPath: its file, any now-empty
// ancestor shard directories, and its index key. Metadata is re-written
// after the file is removed, so a persisted index never references a
// missing file.
func (s *Store) DeleteEntry(virtualPath string) error {
	salt, ok := s.vault.Index[virtualPath]
	if !ok {
		return fmt.Errorf("no entry at %q: %w", virtualPath, errs.ErrNotFound)
	}

	fullPath := filepath.Join(s.basePath, pathmap.ShardPath(salt))
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("could not delete entry file: %w", err)
	}
	pruneEmptyAncestors(filepath.Dir(fullPath), s.basePath)

	delete(s.vault.Index, virtualPath)

	if err := s.Write(); err != nil {
		return err
	}

	s.commit("Removed entry.")
	return nil
}

// Rename moves the index entry at src to dst without touching the
// underlying file. The salt stays with the entry for its whole life.
func (s *Store) Rename(src, dst string) error {
	salt, ok := s.vault.Index[src]
	if !ok {
		return fmt.Errorf("no entry at %q: %w", src, errs.ErrNotFound)
	}
	if _, exists := s.vault.Index[dst]; exists {
		return fmt.Errorf("an entry already exists at %q: %w", dst, errs.ErrAlreadyExists)
	}

	delete(s.vault.Index, src)
	s.vault.Index[dst] = salt

	if err := s.Write(); err != nil {
		return err
	}

	s.commit("Renamed entry.")
	return nil
}

// AddIdentity appends identity to the recipient set. Per the expanded
// add-without-force semantics, adding an already-present identity without
// force fails; force or a true addition always re-writes metadata and
// triggers a re-encryption sweep.
func (s *Store) AddIdentity(identity string, force bool) error {
	present := contains(s.vault.Identities, identity)
	if present && !force {
		return fmt.Errorf("identity %q is already present: %w", identity, errs.ErrAlreadyExists)
	}

	if !present {
		s.vault.Identities = append(s.vault.Identities, identity)
	}

	if err := s.ReencryptAll(); err != nil {
		if !present {
			s.vault.Identities = filterOut(s.vault.Identities, identity)
		}
		return err
	}
	if err := s.Write(); err != nil {
		return err
	}

	s.commit("Added identity.")
	return nil
}

// RemoveIdentity removes identity from the recipient set and sweeps every
// entry to re-encrypt it to the remaining recipients.
func (s *Store) RemoveIdentity(identity string) error {
	s.vault.Identities = filterOut(s.vault.Identities, identity)

	if err := s.ReencryptAll(); err != nil {
		return err
	}
	if err := s.Write(); err != nil {
		return err
	}

	s.commit("Removed identity.")
	return nil
}

// ReencryptAll rewrites every indexed entry file under the vault's current
// recipient set. It is idempotent: re-running after a partial failure
// completes the remaining migrations, as long as the caller can still
// decrypt with both the old and new key sets during the transition.
func (s *Store) ReencryptAll() error {
	recipients, err := s.recipients()
	if err != nil {
		return err
	}

	for virtualPath, salt := range s.vault.Index {
		fullPath := filepath.Join(s.basePath, pathmap.ShardPath(salt))

		ciphertext, err := os.ReadFile(fullPath)
		if err != nil {
			return fmt.Errorf("could not read entry %q: %w", virtualPath, err)
		}

		plaintext, err := s.adapter.Decrypt(ciphertext)
		if err != nil {
			return err
		}

		reencrypted, err := s.adapter.Encrypt(recipients, plaintext)
		if err != nil {
			return err
		}

		if err := writeFileAtomic(fullPath, reencrypted); err != nil {
			return err
		}
	}

	return nil
}

// recipients resolves the vault's identities to encryption keys, refusing
// to proceed if fewer keys resolve than identities were requested: writing
// a file readable by only part of the recipient set would silently lock
// some recipients out.
func (s *Store) recipients() ([]keyring.Key, error) {
	keys, err := s.adapter.FindKeys(s.vault.Identities)
	if err != nil {
		return nil, err
	}
	if len(keys) < len(s.vault.Identities) {
		return nil, fmt.Errorf("only %d of %d identities resolved to encryption keys: %w", len(keys), len(s.vault.Identities), errs.ErrCryptography)
	}
	return keys, nil
}

// commit invokes the attached repository's Commit, if any, ignoring
// failures: the store mutation is the source of truth, and a failed commit
// must not roll it back.
func (s *Store) commit(message string) {
	if s.Repo == nil {
		return
	}
	_ = s.Repo.Commit(message)
}

func contains(items []string, item string) bool {
	for _, i := range items {
		if i == item {
			return true
		}
	}
	return false
}

func filterOut(items []string, item string) []string {
	out := make([]string, 0, len(items))
	for _, i := range items {
		if i != item {
			out = append(out, i)
		}
	}
	return out
}

// pruneEmptyAncestors removes dir, and each of its ancestors up to (but
// excluding) base, as long as each is empty. Best-effort: any error aborts
// the walk without being reported.
func pruneEmptyAncestors(dir, base string) {
	base = filepath.Clean(base)
	for dir = filepath.Clean(dir); strings.HasPrefix(dir, base) && dir != base; dir = filepath.Dir(dir) {
		if !dirIsEmpty(dir) {
			return
		}
		if err := os.Remove(dir); err != nil {
			return
		}
	}
}

func dirIsEmpty(dir string) bool {
	f, err := os.Open(dir)
	if err != nil {
		return false
	}
	defer f.Close()

	_, err = f.Readdirnames(1)
	return err == io.EOF
}

// writeFileAtomic writes data to path via a sibling temp file followed by a
// rename, so a crashed write never leaves a truncated file behind.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, ".knox_tmp_"+uuid.NewString())
	if err != nil {
		return fmt.Errorf("could not create temporary file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("could not write temporary file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("could not close temporary file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("could not rename into place: %w", err)
	}
	return nil
}
