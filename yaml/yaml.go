// Package yaml provides the YAML codec for configuration documents.
package yaml

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/zoobzio/headinject"
	"gopkg.in/yaml.v3"
)

// Extensions lists the file extensions handled by this codec.
var Extensions = []string{".yaml", ".yml"}

// yamlCodec implements headinject.Codec for YAML.
type yamlCodec struct{}

// New returns a YAML codec.
func New() headinject.Codec {
	return &yamlCodec{}
}

// ContentType returns the MIME type for YAML.
func (c *yamlCodec) ContentType() string {
	return "application/yaml"
}

// Marshal encodes v as YAML with two-space indentation.
func (c *yamlCodec) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a single YAML document into v. Streams holding several
// documents are rejected.
func (c *yamlCodec) Unmarshal(data []byte, v any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	var extra yaml.Node
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return fmt.Errorf("expected a single YAML document")
	}
	return nil
}
