// Package errs defines the sentinel error kinds shared across the vault
// engine. Call sites wrap these with fmt.Errorf("...: %w", ...) so that
// callers can still recover the kind with errors.Is.
package errs

import "errors"

var (
	// ErrNotInitialised is returned when a vault is opened but no metadata
	// file exists at its base directory.
	ErrNotInitialised = errors.New("vault is not initialised")

	// ErrAlreadyExists is returned when a vault or entry creation collides
	// with something already present.
	ErrAlreadyExists = errors.New("already exists")

	// ErrNotFound is returned when a virtual path is absent from the index.
	ErrNotFound = errors.New("not found")

	// ErrCryptography is returned for key-lookup, encryption, or decryption
	// failures.
	ErrCryptography = errors.New("cryptography error")

	// ErrCodec is returned when a binary record is truncated or malformed.
	ErrCodec = errors.New("malformed record")

	// ErrVersionControl is returned for repository-absent, push-rejected,
	// or author-unresolved conditions.
	ErrVersionControl = errors.New("version control error")

	// ErrInput is returned when user-supplied data fails a syntactic check.
	ErrInput = errors.New("invalid input")
)
