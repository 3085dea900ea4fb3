package store

import (
	"bytes"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/loog-project/treediff/pkg/treediff"
)

// Codec is an interface for encoding and decoding data.
// It is used to abstract away the underlying serialization format.
// This allows for flexibility in choosing the serialization format without changing the implementation of the store.
// The default codec is MessagePack, but other codecs can be implemented as needed. :)
type Codec interface {
	// Marshal encodes the given value into a byte slice.
	Marshal(v any) ([]byte, error)
	// Unmarshal decodes the given byte slice into the provided value.
	Unmarshal(data []byte, v any) error
}

// DefaultCodec is MessagePack.
var DefaultCodec Codec = msgpackCodec{}

// msgpackCodec writes plain Go maps with sorted keys and decodes every map
// into an ordered *treediff.Map, so a stored tree walks in the same order
// after a round trip. Numbers come back as int64/uint64/float64.
type msgpackCodec struct{}

func (msgpackCodec) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (msgpackCodec) Unmarshal(b []byte, v any) error {
	dec := msgpack.NewDecoder(bytes.NewReader(b))
	dec.SetMapDecoder(treediff.DecodeMsgpackMap)
	dec.UseLooseInterfaceDecoding(true)
	return dec.Decode(v)
}
