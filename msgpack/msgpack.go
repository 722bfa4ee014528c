// Package msgpack provides the MessagePack codec for configuration documents.
package msgpack

import (
	"bytes"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/zoobzio/headinject"
)

// Extensions lists the file extensions handled by this codec.
var Extensions = []string{".msgpack", ".mp"}

// msgpackCodec implements headinject.Codec for MessagePack.
type msgpackCodec struct{}

// New returns a MessagePack codec.
func New() headinject.Codec {
	return &msgpackCodec{}
}

// ContentType returns the MIME type for MessagePack.
func (c *msgpackCodec) ContentType() string {
	return "application/msgpack"
}

// Marshal encodes v as MessagePack. Map keys are sorted so equal settings
// produce equal bytes.
func (c *msgpackCodec) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes MessagePack data into v. Nested maps decoded into
// interface values use string keys.
func (c *msgpackCodec) Unmarshal(data []byte, v any) error {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.SetMapDecoder(func(d *msgpack.Decoder) (interface{}, error) {
		return d.DecodeMap()
	})
	return dec.Decode(v)
}
