package main

import (
	"bytes"
	"fmt"
	"go/format"
	"path"
	"text/template"
)

type genConfig struct {
	Mode    string // "client" or "server"
	Package string
	SimAPI  string // import path of the wire package
	Client  string // import path of the client package, used in server mode
}

type fileView struct {
	Package   string
	SimAPI    string
	Client    string
	ClientPkg string
	UsesJSON  bool
	APIs      []*apiView
}

type apiView struct {
	Name     string
	GoName   string
	Handler  string
	Req      []*fieldView
	Variants []*variantView
}

type variantView struct {
	Name     string
	TypeName string
	ID       int
	Fields   []*fieldView
}

type fieldView struct {
	Name   string
	GoName string
	GoType string
}

// generate renders the Go source for the given api list.
func generate(list *apiList, cfg genConfig) ([]byte, error) {
	var tmpl *template.Template
	switch cfg.Mode {
	case "client":
		tmpl = clientTemplate
	case "server":
		tmpl = serverTemplate
	default:
		return nil, fmt.Errorf("unknown mode %q", cfg.Mode)
	}
	view, err := makeView(list, cfg)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, view); err != nil {
		return nil, err
	}
	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("generated code does not parse: %v", err)
	}
	return src, nil
}

func makeView(list *apiList, cfg genConfig) (*fileView, error) {
	view := &fileView{
		Package:   cfg.Package,
		SimAPI:    cfg.SimAPI,
		Client:    cfg.Client,
		ClientPkg: path.Base(cfg.Client),
	}
	for _, api := range list.APIs {
		av := &apiView{
			Name:    api.Name,
			GoName:  goName(api.Name),
			Handler: lowerName(api.Name),
		}
		req, usesJSON, err := makeFields(api.Req)
		if err != nil {
			return nil, err
		}
		view.UsesJSON = view.UsesJSON || usesJSON
		av.Req = req
		for i, v := range api.Resp {
			fields, usesJSON, err := makeFields(v.Fields)
			if err != nil {
				return nil, err
			}
			view.UsesJSON = view.UsesJSON || usesJSON
			av.Variants = append(av.Variants, &variantView{
				Name:     v.Name,
				TypeName: av.GoName + v.Name,
				ID:       i + 1,
				Fields:   fields,
			})
		}
		view.APIs = append(view.APIs, av)
	}
	return view, nil
}

func makeFields(defs []*fieldDef) ([]*fieldView, bool, error) {
	var (
		fields   []*fieldView
		usesJSON bool
	)
	for _, f := range defs {
		t, err := goType(f.Type)
		if err != nil {
			return nil, false, err
		}
		if t == "json.RawMessage" {
			usesJSON = true
		}
		fields = append(fields, &fieldView{Name: f.Name, GoName: goName(f.Name), GoType: t})
	}
	return fields, usesJSON, nil
}

var clientTemplate = template.Must(template.New("client").Parse(`// Code generated by simapigen. DO NOT EDIT.

package {{.Package}}

import (
	"context"
{{- if .UsesJSON}}
	"encoding/json"
{{- end}}

	"{{.SimAPI}}"
)
{{range $api := .APIs}}
// {{.GoName}}Req is the request body of {{.Name}}.
type {{.GoName}}Req struct {
{{- range .Req}}
	{{.GoName}} {{.GoType}} ` + "`json:\"{{.Name}}\"`" + `
{{- end}}
}

// {{.GoName}}Result is implemented by the outcomes of {{.Name}}.
type {{.GoName}}Result interface {
	simapi.Variant
	is{{.GoName}}Result()
}
{{range .Variants}}
// {{.TypeName}} is the {{.Name}} outcome of {{$api.Name}}.
type {{.TypeName}} struct {
{{- range .Fields}}
	{{.GoName}} {{.GoType}} ` + "`json:\"{{.Name}}\"`" + `
{{- end}}
}

// EnvelopeID implements simapi.Variant.
func (*{{.TypeName}}) EnvelopeID() int { return {{.ID}} }

func (*{{.TypeName}}) is{{$api.GoName}}Result() {}
{{end}}
// {{.GoName}}Resp is the decoded response of {{.Name}}.
type {{.GoName}}Resp struct {
	result {{.GoName}}Result
}

// ID returns the discriminant of the active outcome.
func (r *{{.GoName}}Resp) ID() int {
	if r.result == nil {
		return 0
	}
	return r.result.EnvelopeID()
}

// Result returns the active outcome.
func (r *{{.GoName}}Resp) Result() {{.GoName}}Result { return r.result }
{{range .Variants}}
// {{.Name}} returns the {{.Name}} outcome if it is the active one.
func (r *{{$api.GoName}}Resp) {{.Name}}() (*{{.TypeName}}, bool) {
	v, ok := r.result.(*{{.TypeName}})
	return v, ok
}
{{end}}
// Decode{{.GoName}}Resp decodes a {{.Name}} response envelope.
func Decode{{.GoName}}Resp(data []byte) (*{{.GoName}}Resp, error) {
	env, err := simapi.ParseEnvelope("{{.Name}}", data)
	if err != nil {
		return nil, err
	}
	var result {{.GoName}}Result
	switch env.ID {
{{- range .Variants}}
	case {{.ID}}:
		result, err = simapi.Kernel[{{.TypeName}}]("{{$api.Name}}", env)
{{- end}}
	default:
		return nil, simapi.Unknown("{{.Name}}", env.ID)
	}
	if err != nil {
		return nil, err
	}
	return &{{.GoName}}Resp{result: result}, nil
}

// {{.GoName}} calls {{.Name}} on the simulator.
func (c *Client) {{.GoName}}(ctx context.Context, req *{{.GoName}}Req) (*{{.GoName}}Resp, error) {
	data, err := c.call(ctx, "{{.Name}}", req)
	if err != nil {
		return nil, err
	}
	return Decode{{.GoName}}Resp(data)
}
{{end}}`))

var serverTemplate = template.Must(template.New("server").Parse(`// Code generated by simapigen. DO NOT EDIT.

package {{.Package}}

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"{{.Client}}"
)

// Handler implements the simulator side of the API.
type Handler interface {
{{- range .APIs}}
	{{.GoName}}(ctx context.Context, req *{{$.ClientPkg}}.{{.GoName}}Req) ({{$.ClientPkg}}.{{.GoName}}Result, error)
{{- end}}
}

func (api *simAPI) registerRoutes(router *mux.Router) {
{{- range .APIs}}
	router.HandleFunc("/{{.Name}}", api.{{.Handler}}).Methods("POST")
{{- end}}
}
{{range .APIs}}
func (api *simAPI) {{.Handler}}(w http.ResponseWriter, r *http.Request) {
	var req {{$.ClientPkg}}.{{.GoName}}Req
	if !api.decodeRequest(w, r, "{{.Name}}", &req) {
		return
	}
	res, err := api.handler.{{.GoName}}(r.Context(), &req)
	api.serveResult(w, "{{.Name}}", res, err)
}
{{end}}`))
