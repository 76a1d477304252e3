package openapi

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Parse decodes a JSON or YAML OpenAPI document, normalizes it and returns the
// typed model. JSON input is accepted because JSON is valid YAML.
func Parse(data []byte) (*Document, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "openapi: decode document")
	}
	root, ok := stringKeys(raw).(map[string]any)
	if !ok {
		return nil, errors.New("openapi: document root is not an object")
	}
	if _, ok := root["openapi"]; !ok {
		return nil, errors.New("openapi: missing openapi version field")
	}
	if _, ok := root["paths"]; !ok {
		return nil, errors.New("openapi: missing paths")
	}

	Normalize(root)

	normalized, err := yaml.Marshal(root)
	if err != nil {
		return nil, errors.Wrap(err, "openapi: re-encode normalized document")
	}
	var doc Document
	if err := yaml.Unmarshal(normalized, &doc); err != nil {
		return nil, errors.Wrap(err, "openapi: decode normalized document")
	}
	return &doc, nil
}

// Load reads and parses the document at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "openapi: read %s", path)
	}
	return Parse(data)
}
