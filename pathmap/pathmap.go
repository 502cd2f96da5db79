// Package pathmap translates virtual secret paths into anonymized on-disk
// shard paths. It owns no filesystem state itself: callers compose
// the returned relative path against a vault base directory.
package pathmap

import (
	"fmt"

	"github.com/google/uuid"
)

// MetadataFile is the name of the vault's metadata file, stored unsalted at
// the vault root.
const MetadataFile = "_knox.meta"

// HashPath returns the on-disk shard path for an entry. If salt is nil, a
// fresh UUIDv4 salt is minted; otherwise the existing salt's shard path is
// returned unchanged (a rename never mints a new salt).
func HashPath(salt *string) (string, error) {
	if salt == nil {
		id, err := uuid.NewRandom()
		if err != nil {
			return "", fmt.Errorf("could not generate salt: %w", err)
		}
		s := id.String()
		return ShardPath(s), nil
	}
	return ShardPath(*salt), nil
}

// ShardPath returns the "<xx>/<salt>" path for a given salt, where xx is the
// salt's first two hex characters.
func ShardPath(salt string) string {
	if len(salt) < 2 {
		return salt
	}
	return salt[:2] + "/" + salt
}

// Salt extracts the salt component from a shard path of the form
// "<xx>/<salt>".
func Salt(shardPath string) string {
	for i := len(shardPath) - 1; i >= 0; i-- {
		if shardPath[i] == '/' {
			return shardPath[i+1:]
		}
	}
	return shardPath
}
