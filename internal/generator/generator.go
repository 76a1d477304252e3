// Package generator turns a normalized OpenAPI document into a typed Go client.
package generator

import (
	"bytes"
	"go/format"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"text/template"

	"github.com/pkg/errors"

	"github.com/bullet-xyz/bullet-go-sdk/pkg/openapi"
)

const decimalImport = "github.com/shopspring/decimal"

// Config controls the emitted package.
type Config struct {
	Package string
	// Source names the document in the generated header, e.g. "openapi.json".
	Source string
}

// Output holds the formatted Go sources.
type Output struct {
	Types  []byte
	Client []byte
	// OperationIDs are the generated operations in emission order.
	OperationIDs []string
}

type typeDef struct {
	Name       string
	Schema     string
	Doc        string
	Kind       string // struct, enum, named
	Underlying string
	Fields     []fieldDef
	Values     []enumValue
}

type fieldDef struct {
	Name string
	Type string
	Wire string
	Omit bool
	Doc  string
}

type enumValue struct {
	Name  string
	Value string
}

type paramDef struct {
	Name     string
	Wire     string
	In       string
	Type     string
	Pointer  bool
	Slice    bool
	Required bool
	Doc      string
}

type methodDef struct {
	Name          string
	ID            string
	Method        string
	MethodConst   string
	Path          string
	PathExpr      string
	Summary       string
	Params        []paramDef
	QueryParams   []paramDef
	ParamsType    string
	ParamsByValue bool
	BodyType      string
	Result        string
	ResultKind    string // none, value, pointer
}

type builder struct {
	doc       *openapi.Document
	types     map[string]*typeDef
	reserved  map[string]bool // component type names
	consts    map[string]bool
	typeUses  map[string]bool
	paramUses map[string]bool
}

// Generate emits types and client sources for doc.
func Generate(doc *openapi.Document, cfg Config) (*Output, error) {
	if cfg.Package == "" {
		cfg.Package = "api"
	}
	b := &builder{
		doc:       doc,
		types:     map[string]*typeDef{},
		reserved:  map[string]bool{},
		consts:    map[string]bool{},
		typeUses:  map[string]bool{},
		paramUses: map[string]bool{},
	}

	names := make([]string, 0, len(doc.Components.Schemas))
	for name := range doc.Components.Schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		goName := GoName(name)
		if b.reserved[goName] {
			return nil, errors.Errorf("schemas %q and another component both map to type %s", name, goName)
		}
		b.reserved[goName] = true
	}
	for _, name := range names {
		if err := b.defineComponent(name, doc.Components.Schemas[name]); err != nil {
			return nil, err
		}
	}

	var methods []methodDef
	var ids []string
	for _, op := range doc.Operations() {
		m, err := b.method(op)
		if err != nil {
			return nil, errors.Wrapf(err, "operation %s", op.ID)
		}
		methods = append(methods, m)
		ids = append(ids, op.ID)
	}

	header := headerData{Package: cfg.Package, Source: cfg.Source, Version: doc.Version()}

	typesSrc, err := b.renderTypes(header)
	if err != nil {
		return nil, err
	}
	clientSrc, err := b.renderClient(header, methods)
	if err != nil {
		return nil, err
	}
	return &Output{Types: typesSrc, Client: clientSrc, OperationIDs: ids}, nil
}

func (b *builder) defineComponent(name string, s *openapi.Schema) error {
	goName := GoName(name)
	if ref := s.RefName(); ref != "" {
		b.types[goName] = &typeDef{Name: goName, Schema: name, Doc: s.Description, Kind: "named", Underlying: GoName(ref)}
		return nil
	}
	_, err := b.define(goName, name, s)
	return err
}

// unique returns base, or base with the smallest numeric suffix from 2 up
// that taken rejects.
func unique(base string, taken func(string) bool) string {
	if !taken(base) {
		return base
	}
	for i := 2; ; i++ {
		if n := base + strconv.Itoa(i); !taken(n) {
			return n
		}
	}
}

func (b *builder) typeTaken(name string) bool {
	_, ok := b.types[name]
	return ok || b.reserved[name] || b.consts[name]
}

// inline defines s under a fresh name derived from hint.
func (b *builder) inline(hint string, s *openapi.Schema) (string, error) {
	name := unique(hint, b.typeTaken)
	return b.define(name, hint, s)
}

// define registers a named type for s and returns its name.
func (b *builder) define(name, schemaName string, s *openapi.Schema) (string, error) {
	if _, ok := b.types[name]; ok {
		return "", errors.Errorf("type %s defined twice", name)
	}
	td := &typeDef{Name: name, Schema: schemaName, Doc: s.Description}
	b.types[name] = td

	switch {
	case len(s.Enum) > 0 && (s.Type == "string" || s.Type == ""):
		td.Kind = "enum"
		td.Underlying = "string"
		for _, v := range s.Enum {
			c := unique(name+GoName(v), func(n string) bool { return b.consts[n] || b.reserved[n] || b.types[n] != nil })
			b.consts[c] = true
			td.Values = append(td.Values, enumValue{Name: c, Value: v})
		}
	case len(s.Properties) > 0:
		td.Kind = "struct"
		props := make([]string, 0, len(s.Properties))
		for p := range s.Properties {
			props = append(props, p)
		}
		sort.Strings(props)
		fields := map[string]bool{}
		for _, p := range props {
			ps := s.Properties[p]
			required := s.IsRequired(p)
			typ, err := b.typeExpr(ps, name+GoName(p))
			if err != nil {
				return "", errors.Wrapf(err, "%s.%s", schemaName, p)
			}
			optional := !required || ps.Nullable
			if optional && pointerable(typ) {
				typ = "*" + typ
			}
			b.use(typ)
			field := unique(GoName(p), func(n string) bool { return fields[n] })
			fields[field] = true
			td.Fields = append(td.Fields, fieldDef{
				Name: field,
				Type: typ,
				Wire: p,
				Omit: optional,
				Doc:  oneLine(ps.Description),
			})
		}
	default:
		td.Kind = "named"
		typ, err := b.typeExpr(s, name+"Item")
		if err != nil {
			return "", errors.Wrap(err, schemaName)
		}
		if typ == name {
			typ = "map[string]any"
		}
		td.Underlying = typ
		b.use(typ)
	}
	return name, nil
}

// typeExpr returns the Go type for s, defining named types for inline objects
// and enums under hint.
func (b *builder) typeExpr(s *openapi.Schema, hint string) (string, error) {
	if s == nil {
		return "any", nil
	}
	if s.Ref != "" {
		ref := s.RefName()
		if ref == "" {
			return "", errors.Errorf("unsupported $ref %q", s.Ref)
		}
		if _, ok := b.doc.Components.Schemas[ref]; !ok {
			return "", errors.Errorf("unknown schema %q", ref)
		}
		return GoName(ref), nil
	}
	if len(s.OneOf) == 1 {
		return b.typeExpr(s.OneOf[0], hint)
	}
	if len(s.AllOf) == 1 {
		return b.typeExpr(s.AllOf[0], hint)
	}
	if len(s.OneOf) > 1 || len(s.AllOf) > 1 {
		return "any", nil
	}

	switch s.Type {
	case "string":
		if len(s.Enum) > 0 {
			return b.inline(hint, s)
		}
		if s.Format == "decimal" {
			return "decimal.Decimal", nil
		}
		return "string", nil
	case "integer":
		switch s.Format {
		case "int32":
			return "int32", nil
		case "uint32":
			return "uint32", nil
		case "uint64":
			return "uint64", nil
		}
		return "int64", nil
	case "number":
		if s.Format == "decimal" {
			return "decimal.Decimal", nil
		}
		return "float64", nil
	case "boolean":
		return "bool", nil
	case "array":
		item, err := b.typeExpr(s.Items, hint)
		if err != nil {
			return "", err
		}
		return "[]" + item, nil
	case "object", "":
		if len(s.Properties) > 0 {
			return b.inline(hint, s)
		}
		if s.Type == "object" {
			return "map[string]any", nil
		}
	}
	return "any", nil
}

func (b *builder) use(typ string) {
	if strings.Contains(typ, "decimal.") {
		b.typeUses[decimalImport] = true
	}
}

func pointerable(typ string) bool {
	return !strings.HasPrefix(typ, "[]") && !strings.HasPrefix(typ, "map[") && typ != "any"
}

func (b *builder) method(op openapi.OperationRef) (methodDef, error) {
	m := methodDef{
		Name:        GoName(op.ID),
		ID:          op.ID,
		Method:      op.Method,
		MethodConst: methodConst(op.Method),
		Path:        op.Path,
		Summary:     oneLine(op.Summary),
	}

	required := false
	for _, p := range op.Params {
		if p.In != "query" && p.In != "path" {
			continue
		}
		typ, err := b.typeExpr(p.Schema, m.Name+GoName(p.Name))
		if err != nil {
			return m, errors.Wrapf(err, "parameter %s", p.Name)
		}
		isRequired := p.Required || p.In == "path"
		pd := paramDef{
			Name:     GoName(p.Name),
			Wire:     p.Name,
			In:       p.In,
			Type:     typ,
			Slice:    strings.HasPrefix(typ, "[]"),
			Required: isRequired,
			Doc:      oneLine(p.Description),
		}
		if !isRequired && pointerable(typ) {
			pd.Pointer = true
		}
		if strings.Contains(typ, "decimal.") {
			b.paramUses[decimalImport] = true
		}
		m.Params = append(m.Params, pd)
		if p.In == "query" {
			m.QueryParams = append(m.QueryParams, pd)
		}
		required = required || isRequired
	}
	if len(m.Params) > 0 {
		m.ParamsType = m.Name + "Params"
		m.ParamsByValue = required
	}
	m.PathExpr = pathExpr(op.Path, m.Params, m.ParamsByValue)

	if body := op.BodySchema(); body != nil {
		typ, err := b.typeExpr(body, m.Name+"Request")
		if err != nil {
			return m, errors.Wrap(err, "request body")
		}
		m.BodyType = typ
		if strings.Contains(typ, "decimal.") {
			b.paramUses[decimalImport] = true
		}
	}

	result := op.SuccessSchema()
	if result == nil {
		m.ResultKind = "none"
		return m, nil
	}
	typ, err := b.typeExpr(result, m.Name+"Response")
	if err != nil {
		return m, errors.Wrap(err, "response")
	}
	m.Result = typ
	if strings.Contains(typ, "decimal.") {
		b.paramUses[decimalImport] = true
	}
	if pointerable(typ) {
		m.ResultKind = "pointer"
	} else {
		m.ResultKind = "value"
	}
	return m, nil
}

func methodConst(method string) string {
	switch method {
	case http.MethodGet:
		return "http.MethodGet"
	case http.MethodPut:
		return "http.MethodPut"
	case http.MethodPost:
		return "http.MethodPost"
	case http.MethodDelete:
		return "http.MethodDelete"
	case http.MethodOptions:
		return "http.MethodOptions"
	case http.MethodHead:
		return "http.MethodHead"
	case http.MethodPatch:
		return "http.MethodPatch"
	}
	return strconv.Quote(method)
}

// pathExpr renders the request path as a Go expression, escaping path parameters.
func pathExpr(path string, params []paramDef, byValue bool) string {
	byWire := map[string]paramDef{}
	for _, p := range params {
		if p.In == "path" {
			byWire[p.Wire] = p
		}
	}
	if len(byWire) == 0 {
		return strconv.Quote(path)
	}
	var parts []string
	rest := path
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			break
		}
		end := strings.IndexByte(rest[open:], '}')
		if end < 0 {
			break
		}
		end += open
		if open > 0 {
			parts = append(parts, strconv.Quote(rest[:open]))
		}
		name := rest[open+1 : end]
		if p, ok := byWire[name]; ok {
			parts = append(parts, "url.PathEscape(formatParam(params."+p.Name+"))")
		} else {
			parts = append(parts, strconv.Quote(rest[open:end+1]))
		}
		rest = rest[end+1:]
	}
	if rest != "" {
		parts = append(parts, strconv.Quote(rest))
	}
	return strings.Join(parts, " + ")
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

type headerData struct {
	Package string
	Source  string
	Version string
}

func (b *builder) renderTypes(h headerData) ([]byte, error) {
	names := make([]string, 0, len(b.types))
	for name := range b.types {
		names = append(names, name)
	}
	sort.Strings(names)
	types := make([]*typeDef, 0, len(names))
	for _, n := range names {
		types = append(types, b.types[n])
	}
	return render(typesTemplate, struct {
		headerData
		Imports []string
		Types   []*typeDef
	}{h, sortedKeys(b.typeUses), types})
}

func (b *builder) renderClient(h headerData, methods []methodDef) ([]byte, error) {
	imports := map[string]bool{}
	for k := range b.paramUses {
		imports[k] = true
	}
	for _, m := range methods {
		imports["context"] = true
		if strings.HasPrefix(m.MethodConst, "http.") {
			imports["net/http"] = true
		}
		if len(m.QueryParams) > 0 || strings.Contains(m.PathExpr, "url.") {
			imports["net/url"] = true
		}
	}
	return render(clientTemplate, struct {
		headerData
		Imports []string
		Methods []methodDef
	}{h, sortedKeys(imports), methods})
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		// standard library first, like goimports
		si, sj := !strings.Contains(out[i], "."), !strings.Contains(out[j], ".")
		if si != sj {
			return si
		}
		return out[i] < out[j]
	})
	return out
}

var funcs = template.FuncMap{
	"quote": strconv.Quote,
}

func render(tmpl *template.Template, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, errors.Wrapf(err, "render %s", tmpl.Name())
	}
	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, errors.Wrapf(err, "format %s\n%s", tmpl.Name(), buf.String())
	}
	return src, nil
}
