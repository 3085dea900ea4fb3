package treediff

import (
	"bytes"
	"encoding/json"

	"github.com/vmihailenco/msgpack/v5"
)

// Map is a string-keyed mapping that remembers insertion order. Decoders
// that care about document order (see internal/loader) produce *Map values
// so that the walk, and therefore the diff, follows the source order.
type Map struct {
	keys   []string
	values map[string]any
}

var _ Mapping = (*Map)(nil)

// NewMap returns an empty map with room for [size] entries.
func NewMap(size int) *Map {
	return &Map{
		keys:   make([]string, 0, size),
		values: make(map[string]any, size),
	}
}

// MapOf builds a map from alternating key/value arguments. It panics on an
// odd argument count or a non-string key; it is meant for literals.
func MapOf(keysAndValues ...any) *Map {
	if len(keysAndValues)%2 != 0 {
		panic("treediff.MapOf: keys and values must be in pairs")
	}
	m := NewMap(len(keysAndValues) / 2)
	for i := 0; i < len(keysAndValues); i += 2 {
		m.Set(keysAndValues[i].(string), keysAndValues[i+1])
	}
	return m
}

// Set inserts or replaces [key]. Replacing keeps the original position.
func (m *Map) Set(key string, value any) {
	if m.values == nil {
		m.values = make(map[string]any)
	}
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

func (m *Map) Get(key string) (any, bool) {
	if m == nil {
		return nil, false
	}
	value, ok := m.values[key]
	return value, ok
}

func (m *Map) Delete(key string) {
	if m == nil {
		return
	}
	if _, exists := m.values[key]; !exists {
		return
	}
	delete(m.values, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i:i], m.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order. The slice is a copy.
func (m *Map) Keys() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// MarshalJSON encodes the map as a JSON object in insertion order.
func (m *Map) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		value, err := json.Marshal(m.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

var (
	_ msgpack.CustomEncoder = (*Map)(nil)
	_ msgpack.CustomDecoder = (*Map)(nil)
)

// EncodeMsgpack writes the map as a msgpack map in insertion order.
func (m *Map) EncodeMsgpack(enc *msgpack.Encoder) error {
	if err := enc.EncodeMapLen(m.Len()); err != nil {
		return err
	}
	for _, k := range m.keys {
		if err := enc.EncodeString(k); err != nil {
			return err
		}
		if err := enc.Encode(m.values[k]); err != nil {
			return err
		}
	}
	return nil
}

func (m *Map) DecodeMsgpack(dec *msgpack.Decoder) error {
	n, err := dec.DecodeMapLen()
	if err != nil {
		return err
	}
	m.keys = make([]string, 0, max(n, 0))
	m.values = make(map[string]any, max(n, 0))
	for i := 0; i < n; i++ {
		key, err := dec.DecodeString()
		if err != nil {
			return err
		}
		value, err := dec.DecodeInterfaceLoose()
		if err != nil {
			return err
		}
		m.Set(key, value)
	}
	return nil
}

// DecodeMsgpackMap can be installed with [msgpack.Decoder.SetMapDecoder] so
// that every nested msgpack map decodes into an ordered *Map.
func DecodeMsgpackMap(dec *msgpack.Decoder) (any, error) {
	m := new(Map)
	if err := m.DecodeMsgpack(dec); err != nil {
		return nil, err
	}
	return m, nil
}
