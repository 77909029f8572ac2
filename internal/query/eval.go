package query

import (
	"context"
	"math/big"
	"slices"
	"strings"

	"github.com/geoknoesis/rdf-go/rdf"

	"github.com/vliz-be-opsci/rdfstore/graph"
	"github.com/vliz-be-opsci/rdfstore/internal/sparql"
)

const xsdDouble = "http://www.w3.org/2001/XMLSchema#double"

type solution map[string]rdf.Term

// Projection returns the variables reported by q, in order.
func (q *Query) Projection() []string {
	if q.Vars != nil {
		return q.Vars
	}
	var out []string
	for _, v := range q.seen {
		if !strings.HasPrefix(v, hiddenPrefix) {
			out = append(out, v)
		}
	}
	return out
}

// Eval runs q against g. Solutions are ordered by their rendered values so
// that repeated evaluation yields the same sequence.
func (q *Query) Eval(ctx context.Context, g *graph.Graph) (*sparql.Results, error) {
	vars := q.Projection()
	var rows []solution
	var err error
	q.join(g, q.patterns, solution{}, func(s solution) bool {
		if err = ctx.Err(); err != nil {
			return false
		}
		if q.accept(s) {
			rows = append(rows, s)
		}
		return true
	})
	if err != nil {
		return nil, err
	}

	keyed := make([]keyedRow, 0, len(rows))
	for _, s := range rows {
		b := make(sparql.Binding, len(vars))
		parts := make([]string, len(vars))
		for i, v := range vars {
			if t, ok := s[v]; ok {
				b[v] = t
				parts[i] = graph.FormatTerm(t)
			}
		}
		keyed = append(keyed, keyedRow{key: strings.Join(parts, "\x00"), b: b})
	}
	slices.SortStableFunc(keyed, func(a, b keyedRow) int { return strings.Compare(a.key, b.key) })
	if q.Distinct {
		keyed = slices.CompactFunc(keyed, func(a, b keyedRow) bool { return a.key == b.key })
	}

	if q.Offset > 0 {
		keyed = keyed[min(q.Offset, len(keyed)):]
	}
	if q.Limit >= 0 && q.Limit < len(keyed) {
		keyed = keyed[:q.Limit]
	}

	res := &sparql.Results{Vars: slices.Clone(vars), Bindings: make([]sparql.Binding, 0, len(keyed))}
	for _, r := range keyed {
		res.Bindings = append(res.Bindings, r.b)
	}
	return res, nil
}

type keyedRow struct {
	key string
	b   sparql.Binding
}

// join extends s with every way of matching the remaining patterns. The
// most constrained pattern goes first.
func (q *Query) join(g *graph.Graph, todo []pattern, s solution, emit func(solution) bool) bool {
	if len(todo) == 0 {
		return emit(s)
	}
	next := 0
	best := -1
	for i, p := range todo {
		if n := bound(p, s); n > best {
			next, best = i, n
		}
	}
	p := todo[next]
	rest := make([]pattern, 0, len(todo)-1)
	rest = append(rest, todo[:next]...)
	rest = append(rest, todo[next+1:]...)

	subj := resolve(p.s, s)
	if _, ok := subj.(rdf.Literal); ok {
		return true
	}
	var pred *rdf.IRI
	if t := resolve(p.p, s); t != nil {
		iri, ok := t.(rdf.IRI)
		if !ok {
			return true
		}
		pred = &iri
	}
	obj := resolve(p.o, s)
	var num *big.Rat
	if !p.o.isVar() {
		if v, ok := numericValue(obj); ok {
			num, obj = v, nil
		}
	}

	for t := range g.Match(subj, pred, obj) {
		if num != nil {
			if v, ok := numericValue(t.O); !ok || v.Cmp(num) != 0 {
				continue
			}
		}
		ext, ok := extend(s, p, t)
		if !ok {
			continue
		}
		if !q.join(g, rest, ext, emit) {
			return false
		}
	}
	return true
}

// numericValue reads integer, decimal and double literals. Numeric
// constants in a pattern match by value so 42, "42"^^xsd:decimal and
// "4.2E1"^^xsd:double meet.
func numericValue(t rdf.Term) (*big.Rat, bool) {
	lit, ok := t.(rdf.Literal)
	if !ok {
		return nil, false
	}
	switch lit.Datatype.Value {
	case graph.XSDInteger, graph.XSDDecimal, xsdDouble:
	default:
		return nil, false
	}
	return new(big.Rat).SetString(strings.TrimSpace(lit.Lexical))
}

func bound(p pattern, s solution) int {
	n := 0
	for _, x := range []node{p.s, p.p, p.o} {
		if resolve(x, s) != nil {
			n++
		}
	}
	return n
}

func resolve(n node, s solution) rdf.Term {
	if !n.isVar() {
		return n.term
	}
	return s[n.v]
}

func extend(s solution, p pattern, t rdf.Triple) (solution, bool) {
	ext := make(solution, len(s)+3)
	for k, v := range s {
		ext[k] = v
	}
	for _, pair := range []struct {
		n node
		t rdf.Term
	}{{p.s, t.S}, {p.p, t.P}, {p.o, t.O}} {
		if !pair.n.isVar() {
			continue
		}
		if prev, ok := ext[pair.n.v]; ok {
			if graph.FormatTerm(prev) != graph.FormatTerm(pair.t) {
				return nil, false
			}
			continue
		}
		ext[pair.n.v] = pair.t
	}
	return ext, true
}

func (q *Query) accept(s solution) bool {
	for _, f := range q.filters {
		t, ok := s[f.v]
		if !ok {
			return false
		}
		var text string
		switch v := t.(type) {
		case rdf.Literal:
			text = v.Lexical
		case rdf.IRI:
			if !f.str {
				return false
			}
			text = v.Value
		default:
			return false
		}
		if !f.re.MatchString(text) {
			return false
		}
	}
	return true
}

// Select parses src and evaluates it against g.
func Select(ctx context.Context, g *graph.Graph, src string) (*sparql.Results, error) {
	q, err := Parse(src)
	if err != nil {
		return nil, err
	}
	return q.Eval(ctx, g)
}
