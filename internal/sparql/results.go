package sparql

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/geoknoesis/rdf-go/rdf"
)

// Binding maps variable names to the terms bound in one solution.
type Binding map[string]rdf.Term

// Results holds the solutions of a SELECT query, or the answer of an ASK.
type Results struct {
	Vars     []string
	Bindings []Binding
	Boolean  *bool
}

func (r *Results) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Bindings)
}

// Column returns the terms bound to name, skipping unbound solutions.
func (r *Results) Column(name string) []rdf.Term {
	if r == nil {
		return nil
	}
	var out []rdf.Term
	for _, b := range r.Bindings {
		if t, ok := b[name]; ok {
			out = append(out, t)
		}
	}
	return out
}

type jsonResults struct {
	Head struct {
		Vars []string `json:"vars"`
	} `json:"head"`
	Results *struct {
		Bindings []map[string]jsonTerm `json:"bindings"`
	} `json:"results,omitempty"`
	Boolean *bool `json:"boolean,omitempty"`
}

type jsonTerm struct {
	Type     string          `json:"type"`
	Value    json.RawMessage `json:"value"`
	Lang     string          `json:"xml:lang,omitempty"`
	Datatype string          `json:"datatype,omitempty"`
}

type jsonTriple struct {
	Subject   jsonTerm `json:"subject"`
	Predicate jsonTerm `json:"predicate"`
	Object    jsonTerm `json:"object"`
}

// DecodeResults reads a application/sparql-results+json document.
func DecodeResults(r io.Reader) (*Results, error) {
	var doc jsonResults
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode results: %w", err)
	}

	res := &Results{Vars: doc.Head.Vars, Boolean: doc.Boolean}
	if doc.Results == nil {
		return res, nil
	}
	res.Bindings = make([]Binding, 0, len(doc.Results.Bindings))
	for _, row := range doc.Results.Bindings {
		b := make(Binding, len(row))
		for name, jt := range row {
			t, err := jt.term()
			if err != nil {
				return nil, fmt.Errorf("decode results: ?%s: %w", name, err)
			}
			b[name] = t
		}
		res.Bindings = append(res.Bindings, b)
	}
	return res, nil
}

func (jt jsonTerm) term() (rdf.Term, error) {
	if jt.Type == "triple" {
		var tr jsonTriple
		if err := json.Unmarshal(jt.Value, &tr); err != nil {
			return nil, err
		}
		s, err := tr.Subject.term()
		if err != nil {
			return nil, err
		}
		p, err := tr.Predicate.term()
		if err != nil {
			return nil, err
		}
		o, err := tr.Object.term()
		if err != nil {
			return nil, err
		}
		pi, ok := p.(rdf.IRI)
		if !ok {
			return nil, fmt.Errorf("quoted triple predicate is %T", p)
		}
		return rdf.TripleTerm{S: s, P: pi, O: o}, nil
	}

	var value string
	if err := json.Unmarshal(jt.Value, &value); err != nil {
		return nil, err
	}
	switch jt.Type {
	case "uri":
		return rdf.IRI{Value: value}, nil
	case "bnode":
		return rdf.BlankNode{ID: value}, nil
	case "literal", "typed-literal":
		l := rdf.Literal{Lexical: value, Lang: jt.Lang}
		if jt.Datatype != "" {
			l.Datatype = rdf.IRI{Value: jt.Datatype}
		}
		return l, nil
	default:
		return nil, fmt.Errorf("unknown term type %q", jt.Type)
	}
}
