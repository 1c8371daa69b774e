// Package snapstore persists registry snapshots so that a set of
// schemas does not have to be fetched and ingested on every run.
package snapstore // import "github.com/CognitoIQ/xsdtypes/internal/snapstore"

import (
	"context"
	"encoding/hex"
	"errors"
	"slices"
	"strings"

	"github.com/zeebo/blake3"

	"github.com/CognitoIQ/xsdtypes/xsd"
)

// ErrNotFound is returned by Load when no snapshot is stored under a key.
var ErrNotFound = errors.New("snapshot not found")

// A Store saves and loads snapshots by key.
type Store interface {
	Load(ctx context.Context, key string) (*xsd.Snapshot, error)
	Save(ctx context.Context, key string, snap *xsd.Snapshot) error
}

// KeyFor returns the cache key for a set of schema locations. The
// order of locations does not matter.
func KeyFor(locations ...string) string {
	sorted := slices.Clone(locations)
	slices.Sort(sorted)
	sum := blake3.Sum256([]byte(strings.Join(sorted, "\x00")))
	return hex.EncodeToString(sum[:])
}
