// File: lakefield/mergeconf/tree.go
package mergeconf

import (
	"encoding/json"
	"reflect"
	"strconv"
	"strings"
)

// Tree is a nested configuration mapping. Values are scalars, nested Trees,
// or, on the incoming side of a merge, directive-wrapped values built with
// ReplaceWith and Remove.
//
// Keys made of decimal digits ("0", "1", ...) are list indices: Merge
// appends on index collision instead of overwriting, and indices are
// matched by numeric value, so "07" and "7" name the same entry.
type Tree = map[string]any

// replaceDirective forces its payload over whatever the base tree holds.
type replaceDirective struct {
	value any
}

// removeDirective marks a key for deletion.
type removeDirective struct{}

// ReplaceWith wraps v so a merge sets the target key to v outright,
// skipping the recursive merge even when both sides are trees.
func ReplaceWith(v any) any {
	return replaceDirective{value: v}
}

// Remove marks a key for deletion during merge. Removing an absent key is
// a no-op; no tombstone is created.
var Remove any = removeDirective{}

// indexKey parses k as a list index. Only plain decimal digits qualify;
// signs, hex prefixes, and empty strings do not.
func indexKey(k string) (uint64, bool) {
	if k == "" {
		return 0, false
	}
	n, err := strconv.ParseUint(k, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// canonicalKey collapses numerically equal index keys ("07" -> "7") so
// index lookups reduce to plain map access.
func canonicalKey(k string) string {
	if n, ok := indexKey(k); ok {
		return strconv.FormatUint(n, 10)
	}
	return k
}

// nextIndex returns one past the highest index key in t.
func nextIndex(t Tree) uint64 {
	var next uint64
	for k := range t {
		if n, ok := indexKey(k); ok && n+1 > next {
			next = n + 1
		}
	}
	return next
}

// copyTree deep-copies t, canonicalizing index keys and consuming any
// directives found in the copied values: ReplaceWith unwraps to its payload
// and Remove entries are dropped. A copied tree never carries directives.
func copyTree(t Tree) Tree {
	out := make(Tree, len(t))
	for k, v := range t {
		if _, ok := v.(removeDirective); ok {
			continue
		}
		out[canonicalKey(k)] = copyValue(v)
	}
	return out
}

// copyValue deep-copies and normalizes a single value: integers widen to
// int64, float32 to float64, typed slices flatten to []any, and
// string-keyed maps become Trees. A normalized value survives a TOML round
// trip unchanged.
func copyValue(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case replaceDirective:
		return copyValue(x.value)
	case Tree:
		return copyTree(x)
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = copyValue(e)
		}
		return out
	case bool, string, int64, float64:
		return x
	case int:
		return int64(x)
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case uint:
		return int64(x)
	case uint8:
		return int64(x)
	case uint16:
		return int64(x)
	case uint32:
		return int64(x)
	case uint64:
		return int64(x)
	case float32:
		return float64(x)
	case []byte:
		return string(x)
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i
		}
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String {
			out := make(Tree, rv.Len())
			iter := rv.MapRange()
			for iter.Next() {
				out[canonicalKey(iter.Key().String())] = copyValue(iter.Value().Interface())
			}
			return out
		}
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out[i] = copyValue(rv.Index(i).Interface())
		}
		return out
	}

	return v
}

// asTree reports whether v is tree-shaped and returns it as a Tree. Typed
// string-keyed maps convert; everything else fails the tree-shape contract.
func asTree(v any) (Tree, bool) {
	if t, ok := v.(Tree); ok {
		return t, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String {
		out := make(Tree, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = iter.Value().Interface()
		}
		return out, true
	}
	return nil, false
}

// truthy reports whether v enables a feature flag. Booleans and numbers
// follow their value; strings are true unless empty, "0", or "false"; any
// other non-nil value counts as set.
func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		s := strings.ToLower(strings.TrimSpace(x))
		return s != "" && s != "0" && s != "false"
	case int:
		return x != 0
	case int64:
		return x != 0
	case uint64:
		return x != 0
	case float64:
		return x != 0
	}
	return true
}

// lookupPath walks a dot-separated path ("server.port") through nested
// trees. Index segments are matched numerically.
func lookupPath(t Tree, path string) (any, bool) {
	path = strings.TrimSuffix(path, ".")
	if path == "" {
		return t, true
	}

	current := any(t)
	for _, segment := range strings.Split(path, ".") {
		m, ok := current.(Tree)
		if !ok {
			return nil, false
		}
		v, exists := m[canonicalKey(segment)]
		if !exists {
			return nil, false
		}
		current = v
	}

	return current, true
}

// setNestedValue sets a value in a tree using a dot-notation path, creating
// intermediate trees as needed. A non-tree segment on the way is replaced
// by a new tree.
func setNestedValue(t Tree, path string, value any) {
	segments := strings.Split(path, ".")
	current := t

	for i := 0; i < len(segments)-1; i++ {
		segment := segments[i]

		next, exists := current[segment]
		if !exists {
			newTree := make(Tree)
			current[segment] = newTree
			current = newTree
			continue
		}

		if nextTree, isTree := next.(Tree); isTree {
			current = nextTree
		} else {
			newTree := make(Tree)
			current[segment] = newTree
			current = newTree
		}
	}

	current[segments[len(segments)-1]] = value
}
