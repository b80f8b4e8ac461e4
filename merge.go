// File: lakefield/mergeconf/merge.go
package mergeconf

import (
	"sort"
	"strconv"
)

// Merge combines two configuration trees and returns the result. Neither
// input is modified.
//
// For each key of incoming, in index-then-name order:
//   - ReplaceWith(v) sets the key to v outright, even when both sides are
//     trees.
//   - Remove deletes the key from the result; removing an absent key does
//     nothing.
//   - An index key ("0", "1", ...) that is already taken appends its value
//     under the next free index instead of overwriting. Base entries keep
//     their positions and gaps stay gaps.
//   - Two trees merge recursively.
//   - Anything else overwrites the base value.
//
// Keys absent from base are inserted as-is.
func Merge(base, incoming Tree) Tree {
	out := copyTree(base)
	mergeInto(out, incoming)
	return out
}

// mergeInto folds incoming into dst. dst must be owned by the caller;
// incoming is only read.
func mergeInto(dst, incoming Tree) {
	for _, k := range mergeOrder(incoming) {
		v := incoming[k]
		key := canonicalKey(k)

		switch d := v.(type) {
		case replaceDirective:
			dst[key] = copyValue(d.value)
			continue
		case removeDirective:
			delete(dst, key)
			continue
		}

		if base, taken := dst[key]; taken {
			if _, isIndex := indexKey(key); isIndex {
				dst[strconv.FormatUint(nextIndex(dst), 10)] = copyValue(v)
				continue
			}
			if baseTree, ok := base.(Tree); ok {
				if incTree, ok := asTree(v); ok {
					mergeInto(baseTree, incTree)
					continue
				}
			}
		}

		dst[key] = copyValue(v)
	}
}

// mergeOrder returns incoming's keys with index keys first in ascending
// numeric order, then name keys sorted. Index order is the only observable
// one (it fixes append positions); sorting names keeps merges reproducible.
func mergeOrder(t Tree) []string {
	indices := make([]string, 0, len(t))
	names := make([]string, 0, len(t))
	for k := range t {
		if _, ok := indexKey(k); ok {
			indices = append(indices, k)
		} else {
			names = append(names, k)
		}
	}

	sort.Slice(indices, func(i, j int) bool {
		a, _ := indexKey(indices[i])
		b, _ := indexKey(indices[j])
		return a < b
	})
	sort.Strings(names)

	return append(indices, names...)
}
