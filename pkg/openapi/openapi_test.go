package openapi

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDoc = `{
  "openapi": "3.1.0",
  "info": {"title": "Trading API", "version": "1.4.2"},
  "paths": {
    "/fapi/v1/time": {
      "get": {
        "responses": {
          "200": {"description": "ok", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/ServerTime"}}}}
        }
      }
    },
    "/fapi/v1/depth": {
      "parameters": [{"name": "symbol", "in": "query", "required": true, "schema": {"type": "string"}}],
      "get": {
        "operationId": "order_book",
        "parameters": [{"name": "limit", "in": "query", "schema": {"type": ["integer", "null"], "format": "int32"}}],
        "responses": {
          "200": {"description": "ok", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/OrderBook"}}}},
          "400": {"description": "bad", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/ErrorResponse"}}}}
        }
      }
    }
  },
  "components": {
    "schemas": {
      "ServerTime": {"type": "object", "required": ["serverTime"], "properties": {"serverTime": {"type": "integer", "format": "int64"}}},
      "OrderBook": {
        "type": "object",
        "properties": {
          "bids": {"type": "array", "items": {"type": "array", "items": false, "prefixItems": [{"type": "string"}, {"type": "string"}]}},
          "liquidationPrice": {"oneOf": [{"type": "string", "format": "decimal"}, {"type": "null"}]},
          "minNotional": {"type": ["string", "null"], "format": "decimal"}
        }
      },
      "ErrorResponse": {"type": "object", "properties": {"code": {"type": "integer"}, "msg": {"type": "string"}}},
      "Alias": {"$ref": "#/components/schemas/ServerTime"}
    }
  }
}`

func TestNormalize(t *testing.T) {
	doc := map[string]any{
		"openapi": "3.1.0",
		"paths": map[string]any{
			"/x": map[string]any{
				"get": map[string]any{
					"responses": map[string]any{
						"200": map[string]any{"description": "ok"},
						"404": map[string]any{"description": "missing"},
						"500": map[string]any{"description": "boom"},
					},
				},
			},
		},
		"components": map[string]any{
			"schemas": map[string]any{
				"A": map[string]any{"type": []any{"string", "null"}},
				"B": map[string]any{"oneOf": []any{map[string]any{"type": "null"}, map[string]any{"type": "integer"}}},
				"C": map[string]any{"items": false, "prefixItems": []any{map[string]any{"type": "string"}}},
				"D": map[string]any{"type": []any{"integer"}},
				"E": map[string]any{"items": true},
			},
		},
	}

	Normalize(doc)

	assert.Equal(t, "3.0.0", doc["openapi"])
	responses := doc["paths"].(map[string]any)["/x"].(map[string]any)["get"].(map[string]any)["responses"].(map[string]any)
	assert.Len(t, responses, 1)
	assert.Contains(t, responses, "200")

	schemas := doc["components"].(map[string]any)["schemas"].(map[string]any)
	assert.Equal(t, map[string]any{"type": "string", "nullable": true}, schemas["A"])
	assert.Equal(t, map[string]any{"oneOf": []any{map[string]any{"type": "integer"}}, "nullable": true}, schemas["B"])
	assert.Equal(t, map[string]any{"items": map[string]any{"type": "string"}}, schemas["C"])
	assert.Equal(t, map[string]any{"type": "integer"}, schemas["D"])
	assert.Equal(t, map[string]any{}, schemas["E"])
}

func TestParse(t *testing.T) {
	doc, err := Parse([]byte(sampleDoc))
	require.NoError(t, err)

	assert.Equal(t, "3.0.0", doc.OpenAPI)
	assert.Equal(t, "1.4.2", doc.Version())

	book := doc.Components.Schemas["OrderBook"]
	require.NotNil(t, book)
	assert.Equal(t, "array", book.Properties["bids"].Type)
	assert.Equal(t, "string", book.Properties["bids"].Items.Items.Type)
	assert.True(t, book.Properties["minNotional"].Nullable)
	assert.Equal(t, "string", book.Properties["minNotional"].Type)
	assert.True(t, book.Properties["liquidationPrice"].Nullable)
	require.Len(t, book.Properties["liquidationPrice"].OneOf, 1)
	assert.Equal(t, "decimal", book.Properties["liquidationPrice"].OneOf[0].Format)

	resolved, err := doc.Resolve(doc.Components.Schemas["Alias"])
	require.NoError(t, err)
	assert.True(t, resolved.IsRequired("serverTime"))
}

func TestParseYAML(t *testing.T) {
	doc, err := Parse([]byte(`
openapi: 3.1.0
info:
  title: t
  version: "2"
paths:
  /health:
    get:
      operationId: health
      responses:
        200:
          description: ok
        503:
          description: down
`))
	require.NoError(t, err)
	ops := doc.Operations()
	require.Len(t, ops, 1)
	assert.Len(t, ops[0].Responses, 1)
	assert.Contains(t, ops[0].Responses, "200")
}

func TestParseErrors(t *testing.T) {
	cases := map[string]string{
		"garbage":       "{not json",
		"not an object": "[1, 2]",
		"no version":    `{"paths": {}}`,
		"no paths":      `{"openapi": "3.1.0"}`,
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(input))
			assert.Error(t, err)
		})
	}
}

func TestOperations(t *testing.T) {
	doc, err := Parse([]byte(sampleDoc))
	require.NoError(t, err)

	ops := doc.Operations()
	require.Len(t, ops, 2)

	assert.Equal(t, "order_book", ops[0].ID)
	assert.Equal(t, "/fapi/v1/depth", ops[0].Path)
	require.Len(t, ops[0].Params, 2)
	assert.Equal(t, "symbol", ops[0].Params[0].Name)
	assert.Equal(t, "limit", ops[0].Params[1].Name)
	assert.True(t, ops[0].Params[1].Schema.Nullable)
	assert.Len(t, ops[0].Responses, 1)
	assert.Equal(t, "OrderBook", ops[0].SuccessSchema().RefName())

	assert.Equal(t, "get_fapi_v1_time", ops[1].ID)
	assert.Equal(t, []string{"order_book", "get_fapi_v1_time"}, doc.OperationIDs())
}

func TestResolveErrors(t *testing.T) {
	doc := &Document{Components: Components{Schemas: map[string]*Schema{
		"Loop": {Ref: "#/components/schemas/Loop"},
	}}}

	_, err := doc.Resolve(&Schema{Ref: "#/components/schemas/Missing"})
	assert.Error(t, err)

	_, err = doc.Resolve(&Schema{Ref: "other.json#/Thing"})
	assert.Error(t, err)

	_, err = doc.Resolve(&Schema{Ref: "#/components/schemas/Loop"})
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "openapi.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleDoc), 0o644))

	doc, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, doc.Paths, 2)

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
