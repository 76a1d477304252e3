package api

import (
	_ "embed"
	"sync"

	"github.com/bullet-xyz/bullet-go-sdk/pkg/openapi"
)

// SpecJSON is the cached OpenAPI document the client was generated from.
//
//go:embed openapi.json
var SpecJSON []byte

var (
	specOnce sync.Once
	specDoc  *openapi.Document
	specErr  error
)

// Spec returns the parsed, normalized form of SpecJSON.
func Spec() (*openapi.Document, error) {
	specOnce.Do(func() {
		specDoc, specErr = openapi.Parse(SpecJSON)
	})
	return specDoc, specErr
}
