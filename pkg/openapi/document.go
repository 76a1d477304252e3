// Package openapi loads the trading API's OpenAPI document into a typed model
// suitable for code generation.
package openapi

import (
	"strings"

	"github.com/pkg/errors"
)

// Document is the subset of an OpenAPI 3.0 document the generator consumes.
type Document struct {
	OpenAPI    string               `yaml:"openapi"`
	Info       Info                 `yaml:"info"`
	Servers    []Server             `yaml:"servers"`
	Paths      map[string]*PathItem `yaml:"paths"`
	Components Components           `yaml:"components"`
}

type Info struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Version     string `yaml:"version"`
}

type Server struct {
	URL         string `yaml:"url"`
	Description string `yaml:"description"`
}

type Components struct {
	Schemas map[string]*Schema `yaml:"schemas"`
}

// PathItem holds the operations declared for one path.
type PathItem struct {
	Get        *Operation   `yaml:"get"`
	Put        *Operation   `yaml:"put"`
	Post       *Operation   `yaml:"post"`
	Delete     *Operation   `yaml:"delete"`
	Options    *Operation   `yaml:"options"`
	Head       *Operation   `yaml:"head"`
	Patch      *Operation   `yaml:"patch"`
	Parameters []*Parameter `yaml:"parameters"`
}

type Operation struct {
	OperationID string               `yaml:"operationId"`
	Summary     string               `yaml:"summary"`
	Description string               `yaml:"description"`
	Tags        []string             `yaml:"tags"`
	Parameters  []*Parameter         `yaml:"parameters"`
	RequestBody *RequestBody         `yaml:"requestBody"`
	Responses   map[string]*Response `yaml:"responses"`
}

type Parameter struct {
	Name        string  `yaml:"name"`
	In          string  `yaml:"in"`
	Description string  `yaml:"description"`
	Required    bool    `yaml:"required"`
	Schema      *Schema `yaml:"schema"`
}

type RequestBody struct {
	Description string                `yaml:"description"`
	Required    bool                  `yaml:"required"`
	Content     map[string]*MediaType `yaml:"content"`
}

type Response struct {
	Description string                `yaml:"description"`
	Content     map[string]*MediaType `yaml:"content"`
}

type MediaType struct {
	Schema *Schema `yaml:"schema"`
}

// Schema is a JSON schema after 3.1 to 3.0 normalization, so Type is always a
// single name and nullability is carried by Nullable.
type Schema struct {
	Ref         string             `yaml:"$ref"`
	Type        string             `yaml:"type"`
	Format      string             `yaml:"format"`
	Title       string             `yaml:"title"`
	Description string             `yaml:"description"`
	Nullable    bool               `yaml:"nullable"`
	Enum        []string           `yaml:"enum"`
	Items       *Schema            `yaml:"items"`
	Properties  map[string]*Schema `yaml:"properties"`
	Required    []string           `yaml:"required"`
	OneOf       []*Schema          `yaml:"oneOf"`
	AllOf       []*Schema          `yaml:"allOf"`
}

// IsRequired reports whether the named property is listed as required.
func (s *Schema) IsRequired(name string) bool {
	for _, r := range s.Required {
		if r == name {
			return true
		}
	}
	return false
}

const schemaRefPrefix = "#/components/schemas/"

// RefName returns the component name a $ref points at, or "" for inline schemas.
func (s *Schema) RefName() string {
	if s == nil || !strings.HasPrefix(s.Ref, schemaRefPrefix) {
		return ""
	}
	return strings.TrimPrefix(s.Ref, schemaRefPrefix)
}

// Resolve follows $ref chains through components.schemas.
func (d *Document) Resolve(s *Schema) (*Schema, error) {
	for depth := 0; s != nil && s.Ref != ""; depth++ {
		if depth > 32 {
			return nil, errors.Errorf("openapi: $ref cycle at %s", s.Ref)
		}
		name := s.RefName()
		if name == "" {
			return nil, errors.Errorf("openapi: unsupported $ref %q", s.Ref)
		}
		target, ok := d.Components.Schemas[name]
		if !ok {
			return nil, errors.Errorf("openapi: unknown schema %q", name)
		}
		s = target
	}
	return s, nil
}

// Version returns info.version, which identifies the API revision the document describes.
func (d *Document) Version() string {
	return d.Info.Version
}
