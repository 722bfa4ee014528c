package main

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/zoobzio/headinject"
	"github.com/zoobzio/headinject/bson"
	"github.com/zoobzio/headinject/json"
	"github.com/zoobzio/headinject/msgpack"
	"github.com/zoobzio/headinject/yaml"
)

// formats lists the configuration codecs by name.
var formats = []struct {
	name       string
	extensions []string
	codec      func() headinject.Codec
}{
	{"json", json.Extensions, json.New},
	{"yaml", yaml.Extensions, yaml.New},
	{"msgpack", msgpack.Extensions, msgpack.New},
	{"bson", bson.Extensions, bson.New},
}

// codecFor selects a codec by format name, or by file extension when format
// is empty. Files with an unknown extension are read as JSON.
func codecFor(path, format string) (headinject.Codec, error) {
	if format != "" {
		for _, f := range formats {
			if f.name == format {
				return f.codec(), nil
			}
		}
		return nil, fmt.Errorf("unknown format %q", format)
	}

	ext := strings.ToLower(filepath.Ext(path))
	for _, f := range formats {
		if slices.Contains(f.extensions, ext) {
			return f.codec(), nil
		}
	}
	return json.New(), nil
}

// loadSnippet reads the configuration file at path and renders its snippet.
func (c *cli) loadSnippet(path, format string) (*headinject.Snippet, error) {
	codec, err := codecFor(path, format)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading configuration: %w", err)
	}
	c.log.WithFields(logrus.Fields{
		"path":         path,
		"content_type": codec.ContentType(),
		"size":         len(data),
	}).Debug("Loaded configuration")

	snippet, err := headinject.NewSnippet(codec, data)
	if err != nil {
		return nil, err
	}
	c.log.WithFields(logrus.Fields{
		"length":      snippet.Length(),
		"fingerprint": snippet.Fingerprint(),
	}).Debug("Generated snippet")
	return snippet, nil
}
