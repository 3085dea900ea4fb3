package treediff

import (
	"reflect"
	"sort"
)

// Mapping is implemented by ordered, string-keyed containers. Keys defines
// the order children are visited in.
type Mapping interface {
	Keys() []string
	Get(key string) (any, bool)
}

// Sequence is implemented by index-addressed containers.
type Sequence interface {
	Len() int
	Index(i int) any
}

type nodeKind uint8

const (
	kindLeaf nodeKind = iota
	kindMapping
	kindSequence
)

var byteSliceType = reflect.TypeOf([]byte(nil))

// kindOf decides container vs leaf by capability: anything that exposes
// keyed or indexed children is a container, everything else is a leaf.
// The common decoded shapes are matched without reflection.
func kindOf(v any) nodeKind {
	switch v.(type) {
	case nil, string, bool, int, int64, float64:
		return kindLeaf
	case map[string]any, Mapping:
		return kindMapping
	case []any, Sequence:
		return kindSequence
	case []byte:
		return kindLeaf
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		// one level of indirection, so *map[string]T and *[]T are walkable
		if rv.IsNil() {
			return kindLeaf
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String {
			return kindMapping
		}
	case reflect.Slice, reflect.Array:
		if rv.Type() != byteSliceType {
			return kindSequence
		}
	}
	return kindLeaf
}

// IsContainer reports whether v has addressable children.
func IsContainer(v any) bool {
	return kindOf(v) != kindLeaf
}

// IsMapping reports whether v is a string-keyed container.
func IsMapping(v any) bool {
	return kindOf(v) == kindMapping
}

// IsSequence reports whether v is an index-addressed container.
func IsSequence(v any) bool {
	return kindOf(v) == kindSequence
}

// ChildKeys returns the keys of a container in walk order (string keys for
// mappings, int indices for sequences), or nil for a leaf.
func ChildKeys(v any) []any {
	return childKeys(v)
}

// childKeys lists the keys of a container in visiting order: mapping order
// for [Mapping], sorted keys for plain Go maps, ascending indices for
// sequences. Leaves have no keys.
func childKeys(v any) []any {
	switch tv := v.(type) {
	case Mapping:
		keys := tv.Keys()
		out := make([]any, len(keys))
		for i, k := range keys {
			out[i] = k
		}
		return out
	case map[string]any:
		return sortedKeys(tv)
	case Sequence:
		return indices(tv.Len())
	case []any:
		return indices(len(tv))
	}

	rv := reflect.ValueOf(v)
	switch kindOf(v) {
	case kindMapping:
		rv = reflect.Indirect(rv)
		keys := make([]string, 0, rv.Len())
		for _, k := range rv.MapKeys() {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		out := make([]any, len(keys))
		for i, k := range keys {
			out[i] = k
		}
		return out
	case kindSequence:
		return indices(reflect.Indirect(rv).Len())
	}
	return nil
}

// child looks up a single step. It reports false when [container] is a
// leaf, when the key type does not match the container kind, or when the
// key is missing.
func child(container any, key any) (any, bool) {
	switch k := key.(type) {
	case string:
		switch tv := container.(type) {
		case Mapping:
			return tv.Get(k)
		case map[string]any:
			value, ok := tv[k]
			return value, ok
		}
		if kindOf(container) != kindMapping {
			return nil, false
		}
		rv := reflect.Indirect(reflect.ValueOf(container))
		mv := rv.MapIndex(reflect.ValueOf(k).Convert(rv.Type().Key()))
		if !mv.IsValid() {
			return nil, false
		}
		return mv.Interface(), true

	case int:
		if k < 0 {
			return nil, false
		}
		switch tv := container.(type) {
		case Sequence:
			if k >= tv.Len() {
				return nil, false
			}
			return tv.Index(k), true
		case []any:
			if k >= len(tv) {
				return nil, false
			}
			return tv[k], true
		}
		if kindOf(container) != kindSequence {
			return nil, false
		}
		rv := reflect.Indirect(reflect.ValueOf(container))
		if k >= rv.Len() {
			return nil, false
		}
		return rv.Index(k).Interface(), true
	}
	return nil, false
}

func sortedKeys(m map[string]any) []any {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]any, len(keys))
	for i, k := range keys {
		out[i] = k
	}
	return out
}

func indices(n int) []any {
	out := make([]any, n)
	for i := range out {
		out[i] = i
	}
	return out
}
