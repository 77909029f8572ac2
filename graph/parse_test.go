package graph

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/geoknoesis/rdf-go/rdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vliz-be-opsci/rdfstore/internal/compression"
)

const sampleTurtle = `@prefix ex: <https://example.org/> .
ex:subject ex:name "subject" ;
    ex:knows [ ex:name "anonymous" ] .
`

const sampleNTriples = `_:p <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <https://schema.org/Person> .
_:p <https://schema.org/name> "Alice" .
`

func TestParseTurtle(t *testing.T) {
	g, err := ParseString(context.Background(), sampleTurtle, rdf.FormatTurtle)
	require.NoError(t, err)
	assert.Equal(t, 3, g.Len())
	assert.True(t, g.Has(rdf.Triple{
		S: iri("https://example.org/subject"),
		P: iri("https://example.org/name"),
		O: lit("subject"),
	}))
	assert.True(t, HasBlankNodes(g))
}

func TestParseKeepsDocumentsApart(t *testing.T) {
	ctx := context.Background()
	first, err := ParseString(ctx, sampleNTriples, rdf.FormatNTriples)
	require.NoError(t, err)
	second, err := ParseString(ctx, sampleNTriples, rdf.FormatNTriples)
	require.NoError(t, err)

	require.Equal(t, 2, first.Len())
	require.Len(t, first.Subjects(), 1)

	merged := first.Clone().Merge(second)
	assert.Equal(t, 4, merged.Len())
	assert.Len(t, merged.Subjects(), 2)

	for _, s := range first.Subjects() {
		assert.NotEqual(t, "_:p", s.String())
	}
}

func TestParseJSONLDInlineContext(t *testing.T) {
	doc := `{
	  "@context": {"name": "https://schema.org/name"},
	  "@id": "https://example.org/alice",
	  "name": "Alice"
	}`
	g, err := ParseString(context.Background(), doc, rdf.FormatJSONLD)
	require.NoError(t, err)
	assert.True(t, g.Has(rdf.Triple{
		S: iri("https://example.org/alice"),
		P: iri("https://schema.org/name"),
		O: lit("Alice"),
	}))
}

func TestParseJSONLDPreloadedContext(t *testing.T) {
	loader := NewCachingLoader(nil)
	loader.Preload("https://example.org/context.jsonld", map[string]any{
		"@context": map[string]any{"name": "https://schema.org/name"},
	})

	doc := `{
	  "@context": "https://example.org/context.jsonld",
	  "@id": "https://example.org/bob",
	  "name": "Bob"
	}`
	g, err := ParseString(context.Background(), doc, rdf.FormatJSONLD, WithDocumentLoader(loader))
	require.NoError(t, err)
	assert.True(t, g.Has(rdf.Triple{
		S: iri("https://example.org/bob"),
		P: iri("https://schema.org/name"),
		O: lit("Bob"),
	}))
}

func TestFormatForPath(t *testing.T) {
	tests := []struct {
		path string
		want rdf.Format
	}{
		{"data.ttl", rdf.FormatTurtle},
		{"DATA.TTL", rdf.FormatTurtle},
		{"dir/data.nt", rdf.FormatNTriples},
		{"data.jsonld", rdf.FormatJSONLD},
		{"data.nt.zst", rdf.FormatNTriples},
		{"data.rdf", rdf.FormatRDFXML},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := FormatForPath(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := FormatForPath("notes.txt")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestParseFileCompressed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "people.nt.zst")

	f, err := os.Create(path)
	require.NoError(t, err)
	zw, err := compression.NewWriter(f, 2)
	require.NoError(t, err)
	_, err = zw.Write([]byte(sampleNTriples))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	g, err := ParseFile(context.Background(), path, "")
	require.NoError(t, err)
	assert.Equal(t, 2, g.Len())
}

func TestParseFileMissing(t *testing.T) {
	_, err := ParseFile(context.Background(), filepath.Join(t.TempDir(), "absent.ttl"), "")
	assert.ErrorIs(t, err, os.ErrNotExist)
}
