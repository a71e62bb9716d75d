package hash

import (
	"strings"

	"github.com/cespare/xxhash/v2"
)

// NameKey computes the lookup key of a package name. Names compare
// case-insensitively, so the key is the xxHash64 of the lower-cased form.
func NameKey(name string) uint64 {
	return xxhash.Sum64String(strings.ToLower(name))
}
