package clean

import (
	"errors"
	"fmt"

	"github.com/geoknoesis/rdf-go/rdf"

	"github.com/vliz-be-opsci/rdfstore/graph"
)

var (
	ErrUnknownStep = errors.New("clean: unknown chain step")
	ErrStepFailed  = errors.New("clean: chain step failed")
)

// Level is the granularity a chain step operates on.
type Level int

const (
	LevelURI Level = iota
	LevelNode
	LevelTriple
	LevelGraph
)

func (l Level) String() string {
	switch l {
	case LevelURI:
		return "uri"
	case LevelNode:
		return "node"
	case LevelTriple:
		return "triple"
	case LevelGraph:
		return "graph"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// Step is a member of a clean chain.
type Step interface {
	Level() Level
}

// URIFunc rewrites the string value of IRI terms. It never sees blank nodes
// or literals.
type URIFunc func(string) string

// NodeFunc rewrites a single term. It is called for every subject,
// predicate and object, literals and blank nodes included.
type NodeFunc func(rdf.Term) rdf.Term

// TripleFunc rewrites a whole triple after the node steps ran. Returning
// the zero Triple drops it from the result.
type TripleFunc func(rdf.Triple) rdf.Triple

// GraphFunc rewrites the accumulated graph once.
type GraphFunc func(*graph.Graph) *graph.Graph

func (URIFunc) Level() Level    { return LevelURI }
func (NodeFunc) Level() Level   { return LevelNode }
func (TripleFunc) Level() Level { return LevelTriple }
func (GraphFunc) Level() Level  { return LevelGraph }

type member[F any] struct {
	label string
	fn    F
}

// Chain is a compiled sequence of clean steps.
type Chain struct {
	nodes   []member[NodeFunc]
	triples []member[TripleFunc]
	graphs  []member[GraphFunc]
}

// BuildChain compiles steps into a chain. Builtin names are resolved
// against the registry. Steps of the same level keep their relative order.
func BuildChain(steps ...Step) (*Chain, error) {
	c := &Chain{}
	for i, s := range steps {
		label := fmt.Sprintf("step %d", i)
		if b, ok := s.(Builtin); ok {
			resolved, found := lookup(string(b))
			if !found {
				return nil, fmt.Errorf("%w: %q", ErrUnknownStep, string(b))
			}
			label, s = string(b), resolved
		}

		switch fn := s.(type) {
		case URIFunc:
			c.nodes = append(c.nodes, member[NodeFunc]{label, uriNode(fn)})
		case NodeFunc:
			c.nodes = append(c.nodes, member[NodeFunc]{label, fn})
		case TripleFunc:
			c.triples = append(c.triples, member[TripleFunc]{label, fn})
		case GraphFunc:
			c.graphs = append(c.graphs, member[GraphFunc]{label, fn})
		case nil:
			return nil, fmt.Errorf("%w: %s is nil", ErrUnknownStep, label)
		default:
			return nil, fmt.Errorf("%w: %s has unsupported type %T", ErrUnknownStep, label, s)
		}
	}
	return c, nil
}

func uriNode(fn URIFunc) NodeFunc {
	return func(t rdf.Term) rdf.Term {
		if v, ok := t.(rdf.IRI); ok {
			return rdf.IRI{Value: fn(v.Value)}
		}
		return t
	}
}

// Len returns the number of compiled steps.
func (c *Chain) Len() int {
	return len(c.nodes) + len(c.triples) + len(c.graphs)
}

// Apply runs the chain over g and returns the cleaned graph; g is left
// untouched. Every triple of g is visited exactly once.
//
// A step that panics aborts the whole call: Apply returns a nil graph and
// an error wrapping ErrStepFailed that names the step and the triple.
func (c *Chain) Apply(g *graph.Graph) (*graph.Graph, error) {
	out := graph.New()
	for t := range g.All() {
		cleaned, err := c.cleanTriple(t)
		if err != nil {
			return nil, err
		}
		if cleaned.S == nil {
			continue
		}
		out.Add(cleaned)
	}

	for _, m := range c.graphs {
		var next *graph.Graph
		err := guard(m.label, "graph", func() { next = m.fn(out) })
		if err != nil {
			return nil, err
		}
		if next == nil {
			next = graph.New()
		}
		out = next
	}
	return out, nil
}

func (c *Chain) cleanTriple(t rdf.Triple) (rdf.Triple, error) {
	at := graph.Key(t)
	for _, m := range c.nodes {
		var s, p, o rdf.Term
		err := guard(m.label, at, func() {
			s, p, o = m.fn(t.S), m.fn(t.P), m.fn(t.O)
		})
		if err != nil {
			return t, err
		}
		if s != nil && s.Kind() != rdf.TermLiteral {
			t.S = s
		}
		if iri, ok := p.(rdf.IRI); ok {
			t.P = iri
		}
		if o != nil {
			t.O = o
		}
	}
	for _, m := range c.triples {
		var next rdf.Triple
		if err := guard(m.label, at, func() { next = m.fn(t) }); err != nil {
			return t, err
		}
		if t = next; t.S == nil {
			break
		}
	}
	return t, nil
}

func guard(label, at string, fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %s on %s: %v", ErrStepFailed, label, at, r)
		}
	}()
	fn()
	return nil
}

// CleanGraph builds a chain from steps and applies it to g.
func CleanGraph(g *graph.Graph, steps ...Step) (*graph.Graph, error) {
	c, err := BuildChain(steps...)
	if err != nil {
		return nil, err
	}
	return c.Apply(g)
}
