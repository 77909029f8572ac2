package graph

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/geoknoesis/rdf-go/rdf"

	"github.com/vliz-be-opsci/rdfstore/internal/compression"
)

var ErrUnknownFormat = errors.New("graph: unknown serialisation format")

// ParseOption configures Parse and ParseFile.
type ParseOption func(*parseOptions)

type parseOptions struct {
	baseIRI string
	loader  rdf.DocumentLoader
}

// WithBaseIRI sets the base used to resolve relative IRIs in JSON-LD input.
func WithBaseIRI(iri string) ParseOption {
	return func(o *parseOptions) { o.baseIRI = iri }
}

// WithDocumentLoader sets the loader used to fetch remote JSON-LD contexts.
func WithDocumentLoader(l rdf.DocumentLoader) ParseOption {
	return func(o *parseOptions) { o.loader = l }
}

// Parse reads a serialised document into a new graph. Quads are flattened
// into triples. Blank node labels are replaced by fresh unique labels, so
// two documents parsed separately never share a blank node.
func Parse(ctx context.Context, r io.Reader, format rdf.Format, opts ...ParseOption) (*Graph, error) {
	var o parseOptions
	for _, opt := range opts {
		opt(&o)
	}

	g := New()
	relabel := newBlankMapper(func() rdf.Term {
		return rdf.BlankNode{ID: "b" + freshID()}
	})

	if format == rdf.FormatJSONLD {
		jopts := rdf.JSONLDOptions{Context: ctx, BaseIRI: o.baseIRI}
		if o.loader != nil {
			jopts.DocumentLoader = o.loader
		}
		dec := rdf.NewJSONLDTripleDecoder(r, jopts)
		defer dec.Close()
		for {
			t, err := dec.Next()
			if errors.Is(err, io.EOF) {
				return g, nil
			}
			if err != nil {
				return nil, fmt.Errorf("parse %s: %w", format, err)
			}
			g.Add(relabel.triple(t))
		}
	}

	err := rdf.Parse(ctx, r, format, func(s rdf.Statement) error {
		g.Add(relabel.triple(s.AsTriple()))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", format, err)
	}
	return g, nil
}

// ParseString is Parse over an in-memory document.
func ParseString(ctx context.Context, data string, format rdf.Format, opts ...ParseOption) (*Graph, error) {
	return Parse(ctx, strings.NewReader(data), format, opts...)
}

// FormatForPath infers the serialisation format from a file name, looking
// through a trailing compression extension.
func FormatForPath(path string) (rdf.Format, error) {
	name := strings.TrimSuffix(strings.ToLower(path), compression.Ext)
	ext := strings.TrimPrefix(filepath.Ext(name), ".")
	if format, ok := rdf.ParseFormat(ext); ok {
		return format, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, filepath.Base(path))
}

// ParseFile loads a document from disk. An empty format is inferred from
// the file name. Files ending in .zst are decompressed on the fly.
func ParseFile(ctx context.Context, path string, format rdf.Format, opts ...ParseOption) (*Graph, error) {
	if format == "" {
		var err error
		if format, err = FormatForPath(path); err != nil {
			return nil, err
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var r io.Reader = f
	if compression.IsCompressed(path) {
		zr, err := compression.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		defer zr.Close()
		r = zr
	}

	g, err := Parse(ctx, r, format, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}
