// Package graph provides an in-memory set of RDF triples built on the
// rdf-go term model, together with parsing, N-Triples serialisation and
// blank node handling used by the stores.
package graph

import (
	"iter"
	"maps"
	"slices"

	"github.com/geoknoesis/rdf-go/rdf"
)

// Graph is an unordered set of triples. Equality is structural: two triples
// with the same N-Triples rendering are the same member.
//
// A Graph is not safe for concurrent mutation.
type Graph struct {
	triples   map[string]rdf.Triple
	bySubject map[string]map[string]struct{}
}

// New returns a graph holding the given triples.
func New(triples ...rdf.Triple) *Graph {
	g := &Graph{}
	for _, t := range triples {
		g.Add(t)
	}
	return g
}

// Add inserts t and reports whether it was not already present.
func (g *Graph) Add(t rdf.Triple) bool {
	return g.add(Key(t), t)
}

func (g *Graph) add(k string, t rdf.Triple) bool {
	if g.triples == nil {
		g.triples = make(map[string]rdf.Triple)
		g.bySubject = make(map[string]map[string]struct{})
	}
	if _, ok := g.triples[k]; ok {
		return false
	}
	g.triples[k] = t
	sk := FormatTerm(t.S)
	keys := g.bySubject[sk]
	if keys == nil {
		keys = make(map[string]struct{})
		g.bySubject[sk] = keys
	}
	keys[k] = struct{}{}
	return true
}

// Remove deletes t and reports whether it was present.
func (g *Graph) Remove(t rdf.Triple) bool {
	return g.remove(Key(t))
}

func (g *Graph) remove(k string) bool {
	t, ok := g.triples[k]
	if !ok {
		return false
	}
	delete(g.triples, k)
	sk := FormatTerm(t.S)
	delete(g.bySubject[sk], k)
	if len(g.bySubject[sk]) == 0 {
		delete(g.bySubject, sk)
	}
	return true
}

func (g *Graph) Has(t rdf.Triple) bool {
	if g == nil {
		return false
	}
	_, ok := g.triples[Key(t)]
	return ok
}

func (g *Graph) Len() int {
	if g == nil {
		return 0
	}
	return len(g.triples)
}

// All yields every triple ordered by its N-Triples rendering.
func (g *Graph) All() iter.Seq[rdf.Triple] {
	return func(yield func(rdf.Triple) bool) {
		if g == nil {
			return
		}
		for _, k := range slices.Sorted(maps.Keys(g.triples)) {
			if !yield(g.triples[k]) {
				return
			}
		}
	}
}

// Triples returns the members in the order of All.
func (g *Graph) Triples() []rdf.Triple {
	return slices.Collect(g.All())
}

// Match yields the triples matching the given pattern. A nil subject or
// object and a nil predicate act as wildcards.
func (g *Graph) Match(s rdf.Term, p *rdf.IRI, o rdf.Term) iter.Seq[rdf.Triple] {
	var sk, pk, ok string
	if s != nil {
		sk = FormatTerm(s)
	}
	if p != nil {
		pk = FormatTerm(*p)
	}
	if o != nil {
		ok = FormatTerm(o)
	}
	return func(yield func(rdf.Triple) bool) {
		if g == nil {
			return
		}
		candidates := maps.Keys(g.triples)
		if s != nil {
			candidates = maps.Keys(g.bySubject[sk])
		}
		for k := range candidates {
			t := g.triples[k]
			if p != nil && FormatTerm(t.P) != pk {
				continue
			}
			if o != nil && FormatTerm(t.O) != ok {
				continue
			}
			if !yield(t) {
				return
			}
		}
	}
}

// Clone returns an independent copy of g.
func (g *Graph) Clone() *Graph {
	return New().Merge(g)
}

// Merge adds every triple of other to g and returns g.
func (g *Graph) Merge(other *Graph) *Graph {
	if other == nil {
		return g
	}
	for k, t := range other.triples {
		g.add(k, t)
	}
	return g
}

// Subtract removes every triple of other from g and returns g.
func (g *Graph) Subtract(other *Graph) *Graph {
	if other == nil {
		return g
	}
	for k := range other.triples {
		g.remove(k)
	}
	return g
}

// Subjects returns the distinct subjects of g in rendering order.
func (g *Graph) Subjects() []rdf.Term {
	if g == nil {
		return nil
	}
	out := make([]rdf.Term, 0, len(g.bySubject))
	for _, sk := range slices.Sorted(maps.Keys(g.bySubject)) {
		for k := range g.bySubject[sk] {
			out = append(out, g.triples[k].S)
			break
		}
	}
	return out
}
