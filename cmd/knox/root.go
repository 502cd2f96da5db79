package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/apognu/knox"
	"github.com/apognu/knox/errs"
	"github.com/apognu/knox/keyring"
	"github.com/apognu/knox/pgpkeyring"
	"github.com/apognu/knox/vcs"
)

var rootCmd = &cobra.Command{
	Use:   "knox",
	Short: "knox manages a GPG-encrypted secret vault",
	Long: `knox keeps structured secrets -- passwords, API keys, TOTP seeds, file
blobs -- organized by virtual path, with all on-disk content encrypted to
one or more OpenPGP recipients.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command, translating engine errors to a single-line
// message and a non-zero exit status.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "knox: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps an engine error kind to a process exit status.
func exitCode(err error) int {
	switch {
	case errors.Is(err, errs.ErrNotInitialised):
		return 10
	case errors.Is(err, errs.ErrAlreadyExists):
		return 11
	case errors.Is(err, errs.ErrNotFound):
		return 12
	case errors.Is(err, errs.ErrCryptography):
		return 13
	case errors.Is(err, errs.ErrCodec):
		return 14
	case errors.Is(err, errs.ErrVersionControl):
		return 15
	case errors.Is(err, errs.ErrInput):
		return 16
	default:
		return 1
	}
}

// vaultPath resolves KNOX_PATH, defaulting to $HOME/.knox.
func vaultPath() (string, error) {
	if p := os.Getenv("KNOX_PATH"); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory and KNOX_PATH is unset: %w", errs.ErrInput)
	}
	return filepath.Join(home, ".knox"), nil
}

// openAdapter builds the default keyring.Adapter from ASCII-armoured
// keyring files named by KNOX_PUBLIC_KEYRING / KNOX_SECRET_KEYRING,
// falling back to $GNUPGHOME/pubring.gpg and secring.gpg. This is the CLI's
// binding of the abstract crypto adapter to a concrete OpenPGP keyring;
// the engine packages themselves know nothing about these paths.
func openAdapter() (keyring.Adapter, error) {
	pubPath := os.Getenv("KNOX_PUBLIC_KEYRING")
	secPath := os.Getenv("KNOX_SECRET_KEYRING")

	if pubPath == "" || secPath == "" {
		gnupgHome := os.Getenv("GNUPGHOME")
		if gnupgHome == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, fmt.Errorf("could not determine GnuPG home: %w", errs.ErrCryptography)
			}
			gnupgHome = filepath.Join(home, ".gnupg")
		}
		if pubPath == "" {
			pubPath = filepath.Join(gnupgHome, "pubring.gpg")
		}
		if secPath == "" {
			secPath = filepath.Join(gnupgHome, "secring.gpg")
		}
	}

	pub, err := os.Open(pubPath)
	if err != nil {
		return nil, fmt.Errorf("could not open public keyring %q: %w", pubPath, errs.ErrCryptography)
	}
	defer pub.Close()

	if secPath != "" {
		if sec, err := os.Open(secPath); err == nil {
			defer sec.Close()
			return pgpkeyring.NewFromReaders(pub, sec)
		}
	}
	return pgpkeyring.NewFromReaders(pub, nil)
}

// openStore opens the vault at KNOX_PATH and attaches a VCS repo handle
// (commits are no-ops if the directory isn't a repository).
func openStore() (*knox.Store, error) {
	base, err := vaultPath()
	if err != nil {
		return nil, err
	}
	adapter, err := openAdapter()
	if err != nil {
		return nil, err
	}
	store, err := knox.Open(base, adapter)
	if err != nil {
		return nil, err
	}
	store.Repo = vcs.Open(base)
	return store, nil
}
