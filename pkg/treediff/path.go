package treediff

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// Path addresses a value inside a tree. Each element is either a string
// (mapping key) or an int (sequence index). The empty path is the root.
type Path []any

// Append returns a new path with [key] appended. The receiver is never
// modified and the result never shares its backing array with it, so
// sibling branches of a walk cannot overwrite each other's paths.
func (p Path) Append(key any) Path {
	out := make(Path, len(p)+1)
	copy(out, p)
	out[len(p)] = key
	return out
}

// Len returns the number of steps, i.e. the depth of the addressed value.
func (p Path) Len() int {
	return len(p)
}

// Last returns the final key of the path, or nil for the root.
func (p Path) Last() any {
	if len(p) == 0 {
		return nil
	}
	return p[len(p)-1]
}

// Equal reports whether both paths address the same location.
func (p Path) Equal(other Path) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if !keyEqual(p[i], other[i]) {
			return false
		}
	}
	return true
}

// HasPrefix reports whether [prefix] is an ancestor of (or equal to) p.
func (p Path) HasPrefix(prefix Path) bool {
	if len(prefix) > len(p) {
		return false
	}
	return p[:len(prefix)].Equal(prefix)
}

// String renders the path in dotted notation, e.g. `spec.containers[0].name`.
// Mapping keys that contain dots or brackets are quoted.
func (p Path) String() string {
	var sb strings.Builder
	for i, key := range p {
		switch k := key.(type) {
		case int:
			sb.WriteByte('[')
			sb.WriteString(strconv.Itoa(k))
			sb.WriteByte(']')
		case string:
			if strings.ContainsAny(k, ".[]\"") || k == "" {
				sb.WriteByte('[')
				sb.WriteString(strconv.Quote(k))
				sb.WriteByte(']')
				continue
			}
			if i > 0 {
				sb.WriteByte('.')
			}
			sb.WriteString(k)
		}
	}
	return sb.String()
}

// Pointer renders the path as an RFC 6901 JSON pointer, e.g. `/spec/containers/0`.
// The root renders as the empty string.
func (p Path) Pointer() string {
	var sb strings.Builder
	for _, key := range p {
		sb.WriteByte('/')
		switch k := key.(type) {
		case int:
			sb.WriteString(strconv.Itoa(k))
		case string:
			sb.WriteString(pointerEscaper.Replace(k))
		}
	}
	return sb.String()
}

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

func keyEqual(a, b any) bool {
	switch ka := a.(type) {
	case string:
		kb, ok := b.(string)
		return ok && ka == kb
	case int:
		kb, ok := b.(int)
		return ok && ka == kb
	}
	return false
}

// normalizeKey turns decoded keys back into string / int. Decoders hand out
// float64 (JSON) or int64/uint64 (msgpack) for indices.
func normalizeKey(key any) (any, error) {
	switch k := key.(type) {
	case string:
		return k, nil
	case int:
		return k, nil
	case int64:
		return int(k), nil
	case uint64:
		if k > math.MaxInt {
			return nil, fmt.Errorf("path index %d out of range", k)
		}
		return int(k), nil
	case float64:
		if k != math.Trunc(k) || k < 0 {
			return nil, fmt.Errorf("path index %v is not a valid sequence index", k)
		}
		return int(k), nil
	}
	return nil, fmt.Errorf("unsupported path key type %T", key)
}

func (p *Path) UnmarshalJSON(data []byte) error {
	var raw []any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	return p.fromRaw(raw)
}

func (p *Path) DecodeMsgpack(dec *msgpack.Decoder) error {
	n, err := dec.DecodeArrayLen()
	if err != nil {
		return err
	}
	if n < 0 {
		*p = nil
		return nil
	}
	raw := make([]any, n)
	for i := range raw {
		if raw[i], err = dec.DecodeInterfaceLoose(); err != nil {
			return err
		}
	}
	return p.fromRaw(raw)
}

func (p *Path) fromRaw(raw []any) error {
	if raw == nil {
		*p = nil
		return nil
	}
	out := make(Path, len(raw))
	for i, key := range raw {
		k, err := normalizeKey(key)
		if err != nil {
			return fmt.Errorf("treediff: %w", err)
		}
		out[i] = k
	}
	*p = out
	return nil
}
