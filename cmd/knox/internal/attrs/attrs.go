// Package attrs parses the attribute-value syntax accepted by the add and
// edit commands: each argument is a "key=value" pair where value's shape
// selects a storage mode -- a literal string, a randomly generated secret
// ("-"), a silently prompted secret (empty), or a file's contents
// ("@path").
package attrs

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/apognu/knox/codec"
	"github.com/apognu/knox/errs"
	"github.com/apognu/knox/random"
)

const randomCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
const symbolCharset = randomCharset + ")(*&^%$#@!~"

// Options controls how "-" (random) values are generated.
type Options struct {
	RandomLength  int
	RandomSymbols bool

	// Prompt reads a secret without echoing it, overridable in tests.
	Prompt func(key string) (string, error)
}

// DefaultOptions returns the CLI's default random-length and terminal-backed
// prompt behaviour.
func DefaultOptions() Options {
	return Options{
		RandomLength: 16,
		Prompt:       promptSecret,
	}
}

// Build parses a list of "key=value"-shaped arguments into attributes.
func Build(args []string, opts Options) (map[string]codec.Attribute, error) {
	if opts.Prompt == nil {
		opts.Prompt = promptSecret
	}
	if opts.RandomLength <= 0 {
		opts.RandomLength = 16
	}

	attributes := make(map[string]codec.Attribute, len(args))

	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, fmt.Errorf("could not parse attribute %q, expected key=value: %w", arg, errs.ErrInput)
		}
		if key == "" {
			return nil, fmt.Errorf("attribute name cannot be empty in %q: %w", arg, errs.ErrInput)
		}

		attribute, err := buildOne(key, value, opts)
		if err != nil {
			return nil, err
		}
		attributes[key] = attribute
	}

	return attributes, nil
}

func buildOne(key, value string, opts Options) (codec.Attribute, error) {
	switch {
	case value == "-":
		charset := randomCharset
		if opts.RandomSymbols {
			charset = symbolCharset
		}
		secret, err := random.String(opts.RandomLength, charset)
		if err != nil {
			return codec.Attribute{}, fmt.Errorf("could not generate random value for %q: %w", key, errs.ErrCryptography)
		}
		return codec.Attribute{Value: secret, Confidential: true}, nil

	case value == "":
		secret, err := opts.Prompt(key)
		if err != nil {
			return codec.Attribute{}, fmt.Errorf("could not read value for %q: %w", key, errs.ErrInput)
		}
		return codec.Attribute{Value: secret, Confidential: true}, nil

	case strings.HasPrefix(value, "@"):
		path := value[1:]
		content, err := os.ReadFile(path)
		if err != nil {
			return codec.Attribute{}, fmt.Errorf("could not read file %q for %q: %w", path, key, errs.ErrInput)
		}
		return codec.Attribute{BytesValue: content, File: true}, nil

	default:
		return codec.Attribute{Value: value}, nil
	}
}

func promptSecret(key string) (string, error) {
	fmt.Fprintf(os.Stderr, "Enter value for '%s': ", key)
	secret, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(secret), nil
}

// Deletions parses the -d/--delete flag's repeated key list, rejecting
// empty names.
func Deletions(keys []string) ([]string, error) {
	for _, k := range keys {
		if k == "" {
			return nil, fmt.Errorf("attribute name to delete cannot be empty: %w", errs.ErrInput)
		}
	}
	return keys, nil
}
