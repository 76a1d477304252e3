package openapi

import (
	"net/http"
	"sort"
	"strings"
	"unicode"
)

// OperationRef is one operation together with where it lives.
type OperationRef struct {
	ID     string
	Method string
	Path   string
	*Operation
	// Params merges path-level and operation-level parameters; operation
	// parameters win on name and location.
	Params []*Parameter
}

var methodOrder = []string{
	http.MethodGet,
	http.MethodPut,
	http.MethodPost,
	http.MethodDelete,
	http.MethodOptions,
	http.MethodHead,
	http.MethodPatch,
}

func (p *PathItem) operation(method string) *Operation {
	switch method {
	case http.MethodGet:
		return p.Get
	case http.MethodPut:
		return p.Put
	case http.MethodPost:
		return p.Post
	case http.MethodDelete:
		return p.Delete
	case http.MethodOptions:
		return p.Options
	case http.MethodHead:
		return p.Head
	case http.MethodPatch:
		return p.Patch
	}
	return nil
}

// Operations lists every operation sorted by path, then by method.
func (d *Document) Operations() []OperationRef {
	paths := make([]string, 0, len(d.Paths))
	for p := range d.Paths {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var ops []OperationRef
	for _, path := range paths {
		item := d.Paths[path]
		if item == nil {
			continue
		}
		for _, method := range methodOrder {
			op := item.operation(method)
			if op == nil {
				continue
			}
			id := op.OperationID
			if id == "" {
				id = fallbackOperationID(method, path)
			}
			ops = append(ops, OperationRef{
				ID:        id,
				Method:    method,
				Path:      path,
				Operation: op,
				Params:    mergeParams(item.Parameters, op.Parameters),
			})
		}
	}
	return ops
}

// OperationIDs returns the ids of Operations in the same order.
func (d *Document) OperationIDs() []string {
	ops := d.Operations()
	ids := make([]string, len(ops))
	for i, op := range ops {
		ids[i] = op.ID
	}
	return ids
}

func mergeParams(shared, own []*Parameter) []*Parameter {
	out := make([]*Parameter, 0, len(shared)+len(own))
	seen := make(map[string]bool, len(own))
	for _, p := range own {
		seen[p.In+":"+p.Name] = true
	}
	for _, p := range shared {
		if !seen[p.In+":"+p.Name] {
			out = append(out, p)
		}
	}
	return append(out, own...)
}

// fallbackOperationID derives an id such as get_fapi_v1_time from method and path.
func fallbackOperationID(method, path string) string {
	var b strings.Builder
	b.WriteString(strings.ToLower(method))
	lastUnderscore := false
	for _, r := range path {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if lastUnderscore || b.Len() == len(method) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			lastUnderscore = false
			continue
		}
		lastUnderscore = true
	}
	return b.String()
}

// SuccessSchema returns the schema of the 200 JSON response, or nil.
func (o *Operation) SuccessSchema() *Schema {
	resp, ok := o.Responses["200"]
	if !ok || resp == nil {
		return nil
	}
	return jsonSchema(resp.Content)
}

// BodySchema returns the JSON request body schema, or nil.
func (o *Operation) BodySchema() *Schema {
	if o.RequestBody == nil {
		return nil
	}
	return jsonSchema(o.RequestBody.Content)
}

func jsonSchema(content map[string]*MediaType) *Schema {
	if mt, ok := content["application/json"]; ok && mt != nil {
		return mt.Schema
	}
	for _, mt := range content {
		if mt != nil && mt.Schema != nil {
			return mt.Schema
		}
	}
	return nil
}
