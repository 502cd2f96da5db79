// Package random generates cryptographically-strong random secret values.
package random

import (
	"crypto/rand"
	"fmt"
	"strings"
)

// String returns a random string of length n sampled uniformly from
// charset. The charset must be non-empty and at most 256 characters;
// characters present more than once are correspondingly more likely.
func String(n int, charset string) (string, error) {
	if len(charset) == 0 || len(charset) > 256 {
		return "", fmt.Errorf("charset must contain between 1 and 256 characters, got %d", len(charset))
	}

	// Sample one byte per output character, rejecting values in the
	// trailing partial band [limit, 256) so every charset index is
	// equally likely.
	limit := 256 - 256%len(charset)

	var sb strings.Builder
	sb.Grow(n)

	buf := make([]byte, 64)
	for sb.Len() < n {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("could not read randomness: %v", err)
		}
		for _, b := range buf {
			if sb.Len() == n {
				break
			}
			if int(b) >= limit {
				continue
			}
			sb.WriteByte(charset[int(b)%len(charset)])
		}
	}

	return sb.String(), nil
}
