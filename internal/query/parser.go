// Package query evaluates a practical subset of SPARQL SELECT queries
// against an in-memory graph.
//
// Supported: PREFIX and BASE declarations, SELECT [DISTINCT|REDUCED] with
// a variable list or *, an optional WHERE keyword, basic graph patterns with
// the ';' and ',' abbreviations, 'a', prefixed names, literals, blank node
// labels and [] property lists, sequence paths (p1/p2), FILTER regex and
// LIMIT/OFFSET. Anything else is rejected with ErrUnsupported.
package query

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/geoknoesis/rdf-go/rdf"

	"github.com/vliz-be-opsci/rdfstore/graph"
)

var (
	ErrSyntax      = errors.New("query: syntax error")
	ErrUnsupported = errors.New("query: unsupported construct")
)

// hidden variables carry a prefix no parsed variable name can have.
const hiddenPrefix = "#"

type node struct {
	v    string
	term rdf.Term
}

func (n node) isVar() bool { return n.v != "" }

type pattern struct {
	s, p, o node
}

type filter struct {
	v   string
	str bool
	re  *regexp.Regexp
}

// Query is a parsed SELECT query.
type Query struct {
	Distinct bool
	// Vars lists the projected variables; nil means SELECT *.
	Vars   []string
	Limit  int
	Offset int

	patterns []pattern
	filters  []filter
	seen     []string
}

type parser struct {
	toks     []token
	pos      int
	prefixes map[string]string
	base     string
	hidden   int
	blanks   map[string]string
	q        *Query
}

// Parse compiles a SELECT query.
func Parse(src string) (*Query, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{
		toks:     toks,
		prefixes: map[string]string{},
		blanks:   map[string]string{},
		q:        &Query{Limit: -1},
	}
	if err := p.query(); err != nil {
		return nil, err
	}
	return p.q, nil
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) advance() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) isWord(words ...string) bool {
	t := p.peek()
	if t.kind != tokWord {
		return false
	}
	for _, w := range words {
		if strings.EqualFold(t.text, w) {
			return true
		}
	}
	return false
}

func (p *parser) isPunct(c string) bool {
	t := p.peek()
	return t.kind == tokPunct && t.text == c
}

func (p *parser) expectPunct(c string) error {
	if !p.isPunct(c) {
		return p.unexpected("'" + c + "'")
	}
	p.advance()
	return nil
}

func (p *parser) unexpected(want string) error {
	return fmt.Errorf("%w: expected %s, found %s", ErrSyntax, want, p.peek())
}

func (p *parser) unsupported(what string) error {
	return fmt.Errorf("%w: %s", ErrUnsupported, what)
}

func (p *parser) query() error {
	for {
		switch {
		case p.isWord("PREFIX"):
			p.advance()
			name := p.advance()
			if name.kind != tokPName || !strings.HasSuffix(name.text, ":") {
				return fmt.Errorf("%w: bad prefix name %s", ErrSyntax, name)
			}
			iri := p.advance()
			if iri.kind != tokIRI {
				return fmt.Errorf("%w: bad prefix IRI %s", ErrSyntax, iri)
			}
			p.prefixes[strings.TrimSuffix(name.text, ":")] = p.resolve(iri.text)
			continue
		case p.isWord("BASE"):
			p.advance()
			iri := p.advance()
			if iri.kind != tokIRI {
				return fmt.Errorf("%w: bad base IRI %s", ErrSyntax, iri)
			}
			p.base = iri.text
			continue
		}
		break
	}

	switch {
	case p.isWord("SELECT"):
		p.advance()
	case p.isWord("ASK", "CONSTRUCT", "DESCRIBE"):
		return p.unsupported(strings.ToUpper(p.peek().text) + " queries")
	default:
		return p.unexpected("SELECT")
	}

	if p.isWord("DISTINCT", "REDUCED") {
		p.q.Distinct = true
		p.advance()
	}
	if p.isPunct("*") {
		p.advance()
	} else {
		for p.peek().kind == tokVar {
			p.q.Vars = append(p.q.Vars, p.advance().text)
		}
		if len(p.q.Vars) == 0 {
			if p.isPunct("(") {
				return p.unsupported("projection expressions")
			}
			return p.unexpected("variables or '*'")
		}
	}

	if p.isWord("FROM") {
		return p.unsupported("FROM clauses")
	}
	if p.isWord("WHERE") {
		p.advance()
	}
	if err := p.group(); err != nil {
		return err
	}

	for p.peek().kind != tokEOF {
		switch {
		case p.isWord("LIMIT"):
			p.advance()
			n, err := p.integer()
			if err != nil {
				return err
			}
			p.q.Limit = n
		case p.isWord("OFFSET"):
			p.advance()
			n, err := p.integer()
			if err != nil {
				return err
			}
			p.q.Offset = n
		case p.isWord("ORDER", "GROUP", "HAVING", "VALUES"):
			return p.unsupported(strings.ToUpper(p.peek().text) + " clauses")
		default:
			return p.unexpected("LIMIT, OFFSET or end of query")
		}
	}
	return nil
}

func (p *parser) integer() (int, error) {
	t := p.advance()
	var n int
	if t.kind != tokNumber || strings.ContainsAny(t.text, ".+-") {
		return 0, fmt.Errorf("%w: expected a non-negative integer, found %s", ErrSyntax, t)
	}
	fmt.Sscan(t.text, &n)
	return n, nil
}

func (p *parser) group() error {
	if err := p.expectPunct("{"); err != nil {
		return err
	}
	for {
		switch {
		case p.isPunct("}"):
			p.advance()
			return nil
		case p.isPunct("."):
			p.advance()
		case p.isWord("FILTER"):
			p.advance()
			if err := p.filter(); err != nil {
				return err
			}
		case p.isWord("OPTIONAL", "UNION", "MINUS", "GRAPH", "BIND", "SERVICE", "VALUES"):
			return p.unsupported(strings.ToUpper(p.peek().text))
		case p.isPunct("{"):
			return p.unsupported("nested groups")
		case p.peek().kind == tokEOF:
			return p.unexpected("'}'")
		default:
			if err := p.triples(); err != nil {
				return err
			}
		}
	}
}

func (p *parser) triples() error {
	if p.isPunct("[") {
		p.advance()
		subject := p.freshBlank()
		if !p.isPunct("]") {
			if err := p.propertyList(subject); err != nil {
				return err
			}
		}
		if err := p.expectPunct("]"); err != nil {
			return err
		}
		if p.isPunct(".") || p.isPunct("}") {
			return nil
		}
		return p.propertyList(subject)
	}

	subject, err := p.term(false)
	if err != nil {
		return err
	}
	return p.propertyList(subject)
}

func (p *parser) propertyList(subject node) error {
	for {
		path, err := p.verb()
		if err != nil {
			return err
		}
		for {
			object, err := p.object()
			if err != nil {
				return err
			}
			p.addPath(subject, path, object)
			if !p.isPunct(",") {
				break
			}
			p.advance()
		}
		if !p.isPunct(";") {
			return nil
		}
		for p.isPunct(";") {
			p.advance()
		}
		if p.isPunct(".") || p.isPunct("]") || p.isPunct("}") {
			return nil
		}
	}
}

// verb returns either a single variable or a sequence of IRIs.
func (p *parser) verb() ([]node, error) {
	if p.peek().kind == tokVar {
		return []node{p.variable(p.advance().text)}, nil
	}
	var path []node
	for {
		switch {
		case p.isPunct("^"), p.isPunct("!"), p.isPunct("("):
			return nil, p.unsupported("property path operator " + p.peek().text)
		}
		n, err := p.iri()
		if err != nil {
			return nil, err
		}
		path = append(path, n)
		if p.isPunct("|") {
			return nil, p.unsupported("alternative paths")
		}
		if !p.isPunct("/") {
			return path, nil
		}
		p.advance()
	}
}

func (p *parser) addPath(s node, path []node, o node) {
	for i, step := range path {
		next := o
		if i < len(path)-1 {
			next = p.freshBlank()
		}
		p.q.patterns = append(p.q.patterns, pattern{s: s, p: step, o: next})
		s = next
	}
}

func (p *parser) object() (node, error) {
	if p.isPunct("[") {
		p.advance()
		b := p.freshBlank()
		if !p.isPunct("]") {
			if err := p.propertyList(b); err != nil {
				return node{}, err
			}
		}
		return b, p.expectPunct("]")
	}
	return p.term(true)
}

func (p *parser) term(literals bool) (node, error) {
	t := p.peek()
	switch t.kind {
	case tokVar:
		p.advance()
		return p.variable(t.text), nil
	case tokBlank:
		p.advance()
		name, ok := p.blanks[t.text]
		if !ok {
			name = p.freshBlank().v
			p.blanks[t.text] = name
		}
		return node{v: name}, nil
	case tokIRI, tokPName:
		return p.iri()
	case tokWord:
		if strings.EqualFold(t.text, "a") {
			return p.iri()
		}
	}
	if !literals {
		return node{}, p.unexpected("subject")
	}

	switch t.kind {
	case tokString:
		p.advance()
		lit := rdf.Literal{Lexical: t.text}
		switch p.peek().kind {
		case tokLang:
			lit.Lang = strings.ToLower(p.advance().text)
		case tokDatatype:
			p.advance()
			dt, err := p.iri()
			if err != nil {
				return node{}, err
			}
			lit.Datatype = dt.term.(rdf.IRI)
		}
		return node{term: lit}, nil
	case tokNumber:
		p.advance()
		dt := graph.XSDInteger
		if strings.Contains(t.text, ".") {
			dt = graph.XSDDecimal
		}
		return node{term: rdf.Literal{Lexical: t.text, Datatype: rdf.IRI{Value: dt}}}, nil
	case tokWord:
		if strings.EqualFold(t.text, "true") || strings.EqualFold(t.text, "false") {
			p.advance()
			return node{term: rdf.Literal{
				Lexical:  strings.ToLower(t.text),
				Datatype: rdf.IRI{Value: "http://www.w3.org/2001/XMLSchema#boolean"},
			}}, nil
		}
	}
	return node{}, p.unexpected("term")
}

func (p *parser) iri() (node, error) {
	t := p.advance()
	switch t.kind {
	case tokIRI:
		return node{term: rdf.IRI{Value: p.resolve(t.text)}}, nil
	case tokPName:
		prefix, local, _ := strings.Cut(t.text, ":")
		ns, ok := p.prefixes[prefix]
		if !ok {
			return node{}, fmt.Errorf("%w: undeclared prefix %q", ErrSyntax, prefix)
		}
		return node{term: rdf.IRI{Value: ns + local}}, nil
	case tokWord:
		if strings.EqualFold(t.text, "a") {
			return node{term: rdf.IRI{Value: graph.RDFType}}, nil
		}
	}
	return node{}, fmt.Errorf("%w: expected IRI, found %s", ErrSyntax, t)
}

func (p *parser) resolve(iri string) string {
	if p.base == "" || strings.Contains(iri, ":") {
		return iri
	}
	return p.base + iri
}

func (p *parser) variable(name string) node {
	for _, s := range p.q.seen {
		if s == name {
			return node{v: name}
		}
	}
	p.q.seen = append(p.q.seen, name)
	return node{v: name}
}

func (p *parser) freshBlank() node {
	p.hidden++
	return node{v: fmt.Sprintf("%sb%d", hiddenPrefix, p.hidden)}
}

func (p *parser) filter() error {
	parens := p.isPunct("(")
	if parens {
		p.advance()
	}
	if !p.isWord("regex") {
		return p.unsupported("FILTER expressions other than regex")
	}
	p.advance()
	if err := p.expectPunct("("); err != nil {
		return err
	}

	var f filter
	if p.isWord("str") {
		p.advance()
		if err := p.expectPunct("("); err != nil {
			return err
		}
		f.str = true
	}
	v := p.advance()
	if v.kind != tokVar {
		return fmt.Errorf("%w: regex needs a variable, found %s", ErrSyntax, v)
	}
	f.v = v.text
	if f.str {
		if err := p.expectPunct(")"); err != nil {
			return err
		}
	}

	if err := p.expectPunct(","); err != nil {
		return err
	}
	pat := p.advance()
	if pat.kind != tokString {
		return fmt.Errorf("%w: regex pattern must be a string, found %s", ErrSyntax, pat)
	}
	flags := ""
	if p.isPunct(",") {
		p.advance()
		ft := p.advance()
		if ft.kind != tokString {
			return fmt.Errorf("%w: regex flags must be a string, found %s", ErrSyntax, ft)
		}
		flags = ft.text
	}
	if err := p.expectPunct(")"); err != nil {
		return err
	}
	if parens {
		if err := p.expectPunct(")"); err != nil {
			return err
		}
	}

	expr := pat.text
	if flags != "" {
		if strings.Trim(flags, "ims") != "" {
			return p.unsupported("regex flags " + flags)
		}
		expr = "(?" + flags + ")" + expr
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return fmt.Errorf("%w: regex %q: %v", ErrSyntax, pat.text, err)
	}
	f.re = re
	p.q.filters = append(p.q.filters, f)
	return nil
}
