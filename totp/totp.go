// Package totp derives RFC 6238 codes from a stored TotpConfig: given a
// config and a reference time, it returns the current code and the epoch at
// which that code's window expires.
package totp

import (
	"encoding/base32"
	"fmt"
	"time"

	"github.com/pquerna/otp"
	pqotp "github.com/pquerna/otp/totp"

	"github.com/apognu/knox/codec"
	"github.com/apognu/knox/errs"
)

// ErrNotConfigured reports that an entry has no TOTP configuration. Generate
// never returns it (it takes a config, not an entry); the command layer
// returns it before calling Generate.
var ErrNotConfigured = fmt.Errorf("TOTP generation was not configured for this entry")

// Generate computes the RFC 6238 code for cfg at reference time t, along
// with the epoch at which the current window expires. cfg.Secret holds raw
// bytes (already Base32-decoded by the command layer); this
// package re-encodes them to Base32 internally since that is the form
// github.com/pquerna/otp's API expects.
func Generate(cfg codec.TotpConfig, t time.Time) (code string, expiresAt time.Time, err error) {
	interval := cfg.Interval
	if interval == 0 {
		interval = 30
	}
	length := cfg.Length
	if length == 0 {
		length = 6
	}

	algo, err := algorithm(cfg.Hash)
	if err != nil {
		return "", time.Time{}, err
	}

	secret := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(cfg.Secret)

	code, err = pqotp.GenerateCodeCustom(secret, t, pqotp.ValidateOpts{
		Period:    uint(interval),
		Digits:    otp.Digits(length),
		Algorithm: algo,
	})
	if err != nil {
		return "", time.Time{}, fmt.Errorf("could not generate code: %w", errs.ErrCryptography)
	}

	window := t.Unix() / int64(interval)
	expiresAt = time.Unix((window+1)*int64(interval), 0)

	return code, expiresAt, nil
}

func algorithm(h codec.Hash) (otp.Algorithm, error) {
	switch h {
	case codec.SHA1:
		return otp.AlgorithmSHA1, nil
	case codec.SHA256:
		return otp.AlgorithmSHA256, nil
	case codec.SHA512:
		return otp.AlgorithmSHA512, nil
	default:
		return 0, fmt.Errorf("unknown hash algorithm %d: %w", h, errs.ErrInput)
	}
}
