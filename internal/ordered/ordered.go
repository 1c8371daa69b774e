// Package ordered provides ordered, deterministic traversal of maps.
package ordered // import "github.com/CognitoIQ/xsdtypes/internal/ordered"

import (
	"cmp"
	"slices"
)

// Keys returns the keys of m in sorted order.
func Keys[K cmp.Ordered, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Range calls fn on each key and value in m, in key order.
func Range[K cmp.Ordered, V any](m map[K]V, fn func(K, V)) {
	for _, k := range Keys(m) {
		fn(k, m[k])
	}
}
