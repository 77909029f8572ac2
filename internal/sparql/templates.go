package sparql

import (
	"embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/geoknoesis/rdf-go/rdf"

	"github.com/vliz-be-opsci/rdfstore/graph"
)

//go:embed templates/*.sparql
var templateFS embed.FS

// Template names.
const (
	TmplInsertData    = "insert_data.sparql"
	TmplDropGraph     = "drop_graph.sparql"
	TmplUpdateLastmod = "update_lastmod.sparql"
	TmplForgetGraph   = "forget_graph.sparql"
	TmplLastmod       = "lastmod.sparql"
	TmplNamedGraphs   = "named_graphs.sparql"
)

// InsertData feeds TmplInsertData. Body holds newline separated N-Triples
// statements; an empty Graph targets the default graph.
type InsertData struct {
	Graph string
	Body  string
}

// GraphData feeds TmplDropGraph.
type GraphData struct {
	Graph string
}

// AdminData feeds the admin graph templates. Timestamp is only used by
// TmplUpdateLastmod.
type AdminData struct {
	AdminGraph string
	Predicate  string
	Graph      string
	Timestamp  rdf.Literal
}

// Templates renders request bodies. A Templates value is immutable and safe
// for concurrent use.
type Templates struct {
	t *template.Template
}

// NewTemplates parses the embedded request templates.
func NewTemplates() (*Templates, error) {
	t, err := template.New("sparql").
		Funcs(template.FuncMap{
			"iri":  func(v string) string { return graph.FormatTerm(rdf.IRI{Value: v}) },
			"term": func(t rdf.Term) string { return graph.FormatTerm(t) },
		}).
		Option("missingkey=error").
		ParseFS(templateFS, "templates/*.sparql")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Templates{t: t}, nil
}

// Render executes the named template with data.
func (t *Templates) Render(name string, data any) (string, error) {
	var b strings.Builder
	if err := t.t.ExecuteTemplate(&b, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return b.String(), nil
}

// Names lists the available templates.
func (t *Templates) Names() []string {
	var names []string
	for _, tt := range t.t.Templates() {
		if strings.HasSuffix(tt.Name(), ".sparql") {
			names = append(names, tt.Name())
		}
	}
	return names
}
