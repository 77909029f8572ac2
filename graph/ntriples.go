package graph

import (
	"bufio"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/geoknoesis/rdf-go/rdf"
)

const (
	XSDString   = "http://www.w3.org/2001/XMLSchema#string"
	XSDDateTime = "http://www.w3.org/2001/XMLSchema#dateTime"
	XSDInteger  = "http://www.w3.org/2001/XMLSchema#integer"
	XSDDecimal  = "http://www.w3.org/2001/XMLSchema#decimal"
	RDFType     = "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"
	langString  = "http://www.w3.org/1999/02/22-rdf-syntax-ns#langString"
)

// Key returns the canonical N-Triples statement for t, without the
// trailing newline. It is the identity used for set membership.
func Key(t rdf.Triple) string {
	var b strings.Builder
	b.WriteString(FormatTerm(t.S))
	b.WriteByte(' ')
	b.WriteString(FormatTerm(t.P))
	b.WriteByte(' ')
	b.WriteString(FormatTerm(t.O))
	b.WriteString(" .")
	return b.String()
}

// FormatTerm renders a term in N-Triples syntax. The output is also valid
// inside SPARQL INSERT DATA bodies.
func FormatTerm(t rdf.Term) string {
	switch v := t.(type) {
	case nil:
		return ""
	case rdf.IRI:
		return formatIRI(v.Value)
	case rdf.BlankNode:
		return "_:" + v.ID
	case rdf.Literal:
		return formatLiteral(v)
	case rdf.TripleTerm:
		return fmt.Sprintf("<< %s %s %s >>", FormatTerm(v.S), FormatTerm(v.P), FormatTerm(v.O))
	default:
		return t.String()
	}
}

func formatIRI(iri string) string {
	var b strings.Builder
	b.Grow(len(iri) + 2)
	b.WriteByte('<')
	for _, r := range iri {
		switch {
		case r <= 0x20, r == '<', r == '>', r == '"', r == '{', r == '}',
			r == '|', r == '^', r == '`', r == '\\':
			fmt.Fprintf(&b, `\u%04X`, r)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('>')
	return b.String()
}

func formatLiteral(l rdf.Literal) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range l.Lexical {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(&b, `\u%04X`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
	switch {
	case l.Lang != "":
		b.WriteByte('@')
		b.WriteString(strings.ToLower(l.Lang))
	case l.Datatype.Value != "" && l.Datatype.Value != XSDString && l.Datatype.Value != langString:
		b.WriteString("^^")
		b.WriteString(formatIRI(l.Datatype.Value))
	}
	return b.String()
}

// Lines returns the N-Triples statements of g, sorted and without
// trailing newlines.
func (g *Graph) Lines() []string {
	if g == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(g.triples))
}

// WriteNTriples writes g as N-Triples in canonical order.
func (g *Graph) WriteNTriples(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, line := range g.Lines() {
		if _, err := bw.WriteString(line); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Write serialises g in the given format using the rdf-go encoders.
// N-Triples output goes through WriteNTriples so that it matches Lines.
func (g *Graph) Write(w io.Writer, format rdf.Format) error {
	if format == rdf.FormatNTriples {
		return g.WriteNTriples(w)
	}
	enc, err := rdf.NewWriter(w, format)
	if err != nil {
		return fmt.Errorf("create %s writer: %w", format, err)
	}
	for t := range g.All() {
		if err := enc.Write(rdf.Statement{S: t.S, P: t.P, O: t.O}); err != nil {
			enc.Close()
			return fmt.Errorf("write statement: %w", err)
		}
	}
	if err := enc.Flush(); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}
