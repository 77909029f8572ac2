package graph

import (
	"strings"

	"github.com/geoknoesis/rdf-go/rdf"
	"github.com/google/uuid"
)

// DefaultSkolemBase is the IRI prefix minted skolem identifiers start with.
const DefaultSkolemBase = "https://rdflib.github.io/.well-known/genid/rdflib/"

func freshID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// blankMapper rewrites blank nodes consistently within one pass: the same
// input label always maps to the same replacement term.
type blankMapper struct {
	seen map[string]rdf.Term
	mint func() rdf.Term
}

func newBlankMapper(mint func() rdf.Term) *blankMapper {
	return &blankMapper{seen: make(map[string]rdf.Term), mint: mint}
}

func (m *blankMapper) term(t rdf.Term) rdf.Term {
	switch v := t.(type) {
	case rdf.BlankNode:
		if r, ok := m.seen[v.ID]; ok {
			return r
		}
		r := m.mint()
		m.seen[v.ID] = r
		return r
	case rdf.TripleTerm:
		return rdf.TripleTerm{S: m.term(v.S), P: v.P, O: m.term(v.O)}
	default:
		return t
	}
}

func (m *blankMapper) triple(t rdf.Triple) rdf.Triple {
	return rdf.Triple{S: m.term(t.S), P: t.P, O: m.term(t.O)}
}

func (m *blankMapper) graph(g *Graph) *Graph {
	out := New()
	for t := range g.All() {
		out.Add(m.triple(t))
	}
	return out
}

// RelabelBlankNodes returns a copy of g whose blank nodes carry fresh,
// globally unique labels. Blank nodes shared between triples of g stay
// shared in the result.
func RelabelBlankNodes(g *Graph) *Graph {
	return newBlankMapper(func() rdf.Term {
		return rdf.BlankNode{ID: "b" + freshID()}
	}).graph(g)
}

// Skolemize returns a copy of g in which every blank node is replaced by a
// fresh IRI under base. Each call mints new identifiers, so skolemising the
// same graph twice never yields overlapping IRIs.
func Skolemize(g *Graph, base string) *Graph {
	if base == "" {
		base = DefaultSkolemBase
	}
	return newBlankMapper(func() rdf.Term {
		return rdf.IRI{Value: base + freshID()}
	}).graph(g)
}

// HasBlankNodes reports whether any triple of g mentions a blank node.
func HasBlankNodes(g *Graph) bool {
	for t := range g.All() {
		if t.S.Kind() == rdf.TermBlankNode || t.O.Kind() == rdf.TermBlankNode {
			return true
		}
	}
	return false
}
