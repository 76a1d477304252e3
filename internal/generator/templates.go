package generator

import (
	"strings"
	"text/template"
)

func commentLines(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i, l := range lines {
		l = strings.TrimRight(l, " \t")
		if l == "" {
			lines[i] = "//"
			continue
		}
		lines[i] = "// " + l
	}
	return strings.Join(lines, "\n")
}

func structTag(wire string, omit bool) string {
	if omit {
		wire += ",omitempty"
	}
	return "`json:\"" + wire + "\"`"
}

func init() {
	funcs["comment"] = commentLines
	funcs["tag"] = structTag
	typesTemplate = template.Must(template.New("types").Funcs(funcs).Parse(typesText))
	clientTemplate = template.Must(template.New("client").Funcs(funcs).Parse(clientText))
}

var typesTemplate, clientTemplate *template.Template

const headerText = `// Code generated by bulletgen from {{.Source}} (API version {{.Version}}). DO NOT EDIT.

package {{.Package}}
{{if .Imports}}
import (
{{range .Imports}}	{{quote .}}
{{end}})
{{end}}`

const typesText = headerText + `
{{- range .Types}}{{$t := .}}
// {{.Name}} defines model for {{.Schema}}.
{{- if .Doc}}
//
{{comment .Doc}}
{{- end}}
{{- if eq .Kind "struct"}}
type {{.Name}} struct {
{{- range .Fields}}
{{- if .Doc}}
	{{comment .Doc}}
{{- end}}
	{{.Name}} {{.Type}} {{tag .Wire .Omit}}
{{- end}}
}
{{else if eq .Kind "enum"}}
type {{.Name}} string

// {{.Name}} values.
const (
{{- range .Values}}
	{{.Name}} {{$t.Name}} = {{quote .Value}}
{{- end}}
)
{{else}}
type {{.Name}} = {{.Underlying}}
{{end}}
{{- end}}`

const clientText = headerText + `
// Operations lists every API operation in path order.
var Operations = []Operation{
{{- range .Methods}}
	{ID: {{quote .ID}}, Method: {{.MethodConst}}, Path: {{quote .Path}}, GoName: {{quote .Name}}},
{{- end}}
}
{{range .Methods}}
{{- if .ParamsType}}
// {{.ParamsType}} holds the parameters of {{.Name}}.
type {{.ParamsType}} struct {
{{- range .Params}}
{{- if .Doc}}
	{{comment .Doc}}
{{- end}}
	{{.Name}} {{if .Pointer}}*{{end}}{{.Type}}
{{- end}}
}
{{end}}
// {{.Name}} calls {{.Method}} {{.Path}}.
{{- if .Summary}}
//
// {{.Summary}}
{{- end}}
func (c *Client) {{.Name}}(ctx context.Context
{{- if .ParamsType}}, params {{if not .ParamsByValue}}*{{end}}{{.ParamsType}}{{end}}
{{- if .BodyType}}, body {{.BodyType}}{{end}})
{{- if eq .ResultKind "none"}} error {{else if eq .ResultKind "pointer"}} (*{{.Result}}, error) {{else}} ({{.Result}}, error) {{end -}}
{
{{- if and .ParamsType (not .ParamsByValue)}}
	if params == nil {
		params = &{{.ParamsType}}{}
	}
{{- end}}
{{- if .QueryParams}}
	query := url.Values{}
{{- range .QueryParams}}{{template "query" .}}{{end}}
{{- end}}
{{- if eq .ResultKind "none"}}
	return {{template "call" .}}, nil)
{{- else}}
	var out {{.Result}}
	if err := {{template "call" .}}, &out); err != nil {
		return nil, err
	}
{{- if eq .ResultKind "pointer"}}
	return &out, nil
{{- else}}
	return out, nil
{{- end}}
{{- end}}
}
{{end}}
{{define "query"}}
{{- if .Slice}}
	for _, v := range params.{{.Name}} {
		query.Add({{quote .Wire}}, formatParam(v))
	}
{{- else if .Pointer}}
	if params.{{.Name}} != nil {
		query.Set({{quote .Wire}}, formatParam(*params.{{.Name}}))
	}
{{- else if .Required}}
	query.Set({{quote .Wire}}, formatParam(params.{{.Name}}))
{{- else}}
	if params.{{.Name}} != nil {
		query.Set({{quote .Wire}}, formatParam(params.{{.Name}}))
	}
{{- end}}
{{- end}}

{{- define "call"}}c.do(ctx, {{.MethodConst}}, {{.PathExpr}}, {{if .QueryParams}}query{{else}}nil{{end}}, {{if .BodyType}}body{{else}}nil{{end}}
{{- end}}`
