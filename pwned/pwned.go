// Package pwned implements a k-anonymised breach check: hash a confidential
// attribute's value with SHA-1, send only the first five hex characters to
// the public range API, and search the response body for the matching
// suffix. The check is purely advisory: it never mutates the vault, and
// network failures always resolve to Error, never Pwned.
package pwned

import (
	"context"
	"crypto/sha1" //nolint:gosec // mandated by the k-anonymity API's protocol, not used for any security property here
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/apognu/knox/codec"
)

// Outcome is the per-attribute result of a breach check.
type Outcome int

const (
	Clear Outcome = iota
	Pwned
	Error
)

func (o Outcome) String() string {
	switch o {
	case Clear:
		return "CLEAR"
	case Pwned:
		return "PWNED"
	default:
		return "ERROR"
	}
}

const defaultRangeEndpoint = "https://api.pwnedpasswords.com/range/"

// Checker queries the HIBP-compatible range API.
type Checker struct {
	Client *http.Client

	// rangeEndpoint is overridden by tests to point at a local server.
	rangeEndpoint string
}

// NewChecker returns a Checker using a default HTTP client.
func NewChecker() *Checker {
	return &Checker{Client: http.DefaultClient}
}

// Check returns the breach outcome for a single plaintext value.
func (c *Checker) Check(ctx context.Context, value string) Outcome {
	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}
	endpoint := c.rangeEndpoint
	if endpoint == "" {
		endpoint = defaultRangeEndpoint
	}

	sum := sha1.Sum([]byte(value)) //nolint:gosec
	hash := fmt.Sprintf("%X", sum)
	prefix := hash[:5]

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+prefix, nil)
	if err != nil {
		return Error
	}
	req.Header.Set("User-Agent", "knox (https://github.com/apognu/knox)")

	resp, err := client.Do(req)
	if err != nil {
		return Error
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Error
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Error
	}

	for _, line := range strings.Split(string(body), "\n") {
		line = strings.TrimSpace(line)
		tokens := strings.SplitN(line, ":", 2)
		if len(tokens) != 2 {
			continue
		}
		if strings.EqualFold(prefix+tokens[0], hash) {
			return Pwned
		}
	}

	return Clear
}

// CheckAttributes checks every confidential, non-file attribute in attrs and
// returns the outcome keyed by attribute name. Plain and file attributes are
// skipped.
func (c *Checker) CheckAttributes(ctx context.Context, attrs map[string]codec.Attribute) map[string]Outcome {
	results := make(map[string]Outcome)
	for name, attr := range attrs {
		if !attr.Confidential || attr.File {
			continue
		}
		results[name] = c.Check(ctx, attr.Value)
	}
	return results
}
