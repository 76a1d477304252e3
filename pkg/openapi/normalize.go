package openapi

import "fmt"

// Normalize rewrites a raw OpenAPI 3.1 document in place into the 3.0 shape the
// typed model expects:
//
//   - openapi is set to 3.0.0
//   - type: [X, "null"] becomes type: X with nullable: true
//   - a oneOf branch of type null is dropped and nullable: true is set
//   - tuple arrays (items: false with prefixItems) become arrays of strings
//   - only "200" responses are kept
func Normalize(doc map[string]any) {
	doc["openapi"] = "3.0.0"
	convertNullableTypes(doc)
	fixTupleSchemas(doc)
	dropBooleanItems(doc)
	filterResponses(doc)
}

func convertNullableTypes(v any) {
	switch node := v.(type) {
	case map[string]any:
		if types, ok := node["type"].([]any); ok {
			var actual any
			hasNull := false
			for _, t := range types {
				if t == "null" {
					hasNull = true
				} else if actual == nil {
					actual = t
				}
			}
			if actual != nil {
				node["type"] = actual
			}
			if hasNull {
				node["nullable"] = true
			}
		}
		if branches, ok := node["oneOf"].([]any); ok {
			kept := branches[:0:0]
			hasNull := false
			for _, b := range branches {
				if m, ok := b.(map[string]any); ok && m["type"] == "null" {
					hasNull = true
					continue
				}
				kept = append(kept, b)
			}
			if hasNull {
				node["oneOf"] = kept
				node["nullable"] = true
			}
		}
		for _, child := range node {
			convertNullableTypes(child)
		}
	case []any:
		for _, child := range node {
			convertNullableTypes(child)
		}
	}
}

func fixTupleSchemas(v any) {
	switch node := v.(type) {
	case map[string]any:
		if items, ok := node["items"].(bool); ok && !items {
			if _, ok := node["prefixItems"]; ok {
				delete(node, "prefixItems")
				node["items"] = map[string]any{"type": "string"}
			}
		}
		for _, child := range node {
			fixTupleSchemas(child)
		}
	case []any:
		for _, child := range node {
			fixTupleSchemas(child)
		}
	}
}

// dropBooleanItems removes any boolean items left after tuple rewriting, since
// 3.0 only accepts a schema there.
func dropBooleanItems(v any) {
	switch node := v.(type) {
	case map[string]any:
		if _, ok := node["items"].(bool); ok {
			delete(node, "items")
		}
		for _, child := range node {
			dropBooleanItems(child)
		}
	case []any:
		for _, child := range node {
			dropBooleanItems(child)
		}
	}
}

func filterResponses(doc map[string]any) {
	paths, ok := doc["paths"].(map[string]any)
	if !ok {
		return
	}
	for _, item := range paths {
		pathItem, ok := item.(map[string]any)
		if !ok {
			continue
		}
		for _, op := range pathItem {
			operation, ok := op.(map[string]any)
			if !ok {
				continue
			}
			responses, ok := operation["responses"].(map[string]any)
			if !ok {
				continue
			}
			for code := range responses {
				if code != "200" {
					delete(responses, code)
				}
			}
		}
	}
}

// stringKeys converts the map[any]any nodes YAML produces for non-string keys
// (for example unquoted 200 response codes) into map[string]any.
func stringKeys(v any) any {
	switch node := v.(type) {
	case map[string]any:
		for k, child := range node {
			node[k] = stringKeys(child)
		}
		return node
	case map[any]any:
		out := make(map[string]any, len(node))
		for k, child := range node {
			out[fmt.Sprint(k)] = stringKeys(child)
		}
		return out
	case []any:
		for i, child := range node {
			node[i] = stringKeys(child)
		}
		return node
	default:
		return v
	}
}
