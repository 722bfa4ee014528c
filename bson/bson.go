// Package bson provides the BSON codec for configuration documents, for hosts
// that keep their settings in MongoDB.
package bson

import (
	"github.com/zoobzio/headinject"
	"go.mongodb.org/mongo-driver/bson"
)

// Extensions lists the file extensions handled by this codec.
var Extensions = []string{".bson"}

// bsonCodec implements headinject.Codec for BSON.
type bsonCodec struct{}

// New returns a BSON codec.
func New() headinject.Codec {
	return &bsonCodec{}
}

// ContentType returns the MIME type for BSON.
func (c *bsonCodec) ContentType() string {
	return "application/bson"
}

// Marshal encodes v as a BSON document. v must be a map or a struct.
func (c *bsonCodec) Marshal(v any) ([]byte, error) {
	return bson.Marshal(v)
}

// Unmarshal decodes a BSON document into v. Embedded documents decoded into
// interface values become bson.M.
func (c *bsonCodec) Unmarshal(data []byte, v any) error {
	if m, ok := v.(*map[string]any); ok {
		var doc bson.M
		if err := bson.Unmarshal(data, &doc); err != nil {
			return err
		}
		*m = toPlain(doc)
		return nil
	}
	return bson.Unmarshal(data, v)
}

// toPlain converts a decoded document into plain Go maps and slices.
func toPlain(doc bson.M) map[string]any {
	out := make(map[string]any, len(doc))
	for k, v := range doc {
		out[k] = plainValue(v)
	}
	return out
}

func plainValue(v any) any {
	switch val := v.(type) {
	case bson.M:
		return toPlain(val)
	case bson.D:
		return toPlain(val.Map())
	case bson.A:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = plainValue(e)
		}
		return out
	}
	return v
}
