package sparql

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/geoknoesis/rdf-go/rdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vliz-be-opsci/rdfstore/graph"
)

const selectJSON = `{
  "head": {"vars": ["s", "label", "n", "b", "q"]},
  "results": {"bindings": [
    {
      "s": {"type": "uri", "value": "https://example.org/a"},
      "label": {"type": "literal", "value": "hallo", "xml:lang": "nl"},
      "n": {"type": "literal", "value": "3", "datatype": "http://www.w3.org/2001/XMLSchema#integer"},
      "b": {"type": "bnode", "value": "x1"},
      "q": {"type": "triple", "value": {
        "subject": {"type": "uri", "value": "urn:s"},
        "predicate": {"type": "uri", "value": "urn:p"},
        "object": {"type": "literal", "value": "o"}
      }}
    },
    {"s": {"type": "uri", "value": "https://example.org/b"}}
  ]}
}`

func TestDecodeResults(t *testing.T) {
	res, err := DecodeResults(strings.NewReader(selectJSON))
	require.NoError(t, err)

	assert.Equal(t, []string{"s", "label", "n", "b", "q"}, res.Vars)
	require.Equal(t, 2, res.Len())

	row := res.Bindings[0]
	assert.Equal(t, rdf.IRI{Value: "https://example.org/a"}, row["s"])
	assert.Equal(t, rdf.Literal{Lexical: "hallo", Lang: "nl"}, row["label"])
	assert.Equal(t, rdf.Literal{Lexical: "3", Datatype: rdf.IRI{Value: graph.XSDInteger}}, row["n"])
	assert.Equal(t, rdf.BlankNode{ID: "x1"}, row["b"])
	assert.Equal(t, rdf.TripleTerm{
		S: rdf.IRI{Value: "urn:s"}, P: rdf.IRI{Value: "urn:p"}, O: rdf.Literal{Lexical: "o"},
	}, row["q"])

	assert.Len(t, res.Column("s"), 2)
	assert.Len(t, res.Column("label"), 1)
}

func TestDecodeAsk(t *testing.T) {
	res, err := DecodeResults(strings.NewReader(`{"head": {}, "boolean": true}`))
	require.NoError(t, err)
	require.NotNil(t, res.Boolean)
	assert.True(t, *res.Boolean)
	assert.Zero(t, res.Len())
}

func TestDecodeRejectsUnknownType(t *testing.T) {
	_, err := DecodeResults(strings.NewReader(`{"head": {"vars": ["x"]}, "results": {"bindings": [{"x": {"type": "weird", "value": "?"}}]}}`))
	assert.Error(t, err)

	_, err = DecodeResults(strings.NewReader(`not json`))
	assert.Error(t, err)
}

func TestTemplates(t *testing.T) {
	tmpl, err := NewTemplates()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		TmplInsertData, TmplDropGraph, TmplUpdateLastmod,
		TmplForgetGraph, TmplLastmod, TmplNamedGraphs,
	}, tmpl.Names())

	body := `<urn:s> <urn:p> "o" .`
	named, err := tmpl.Render(TmplInsertData, InsertData{Graph: "urn:g", Body: body})
	require.NoError(t, err)
	assert.Contains(t, named, "GRAPH <urn:g> {")
	assert.Contains(t, named, body)

	deflt, err := tmpl.Render(TmplInsertData, InsertData{Body: body})
	require.NoError(t, err)
	assert.NotContains(t, deflt, "GRAPH")
	assert.True(t, strings.HasPrefix(deflt, "INSERT DATA {"))

	admin := AdminData{
		AdminGraph: "urn:admin",
		Predicate:  "http://purl.org/dc/terms/modified",
		Graph:      "urn:g",
		Timestamp:  rdf.Literal{Lexical: "2024-01-02T03:04:05Z", Datatype: rdf.IRI{Value: graph.XSDDateTime}},
	}
	upd, err := tmpl.Render(TmplUpdateLastmod, admin)
	require.NoError(t, err)
	assert.Contains(t, upd, `<urn:g> <http://purl.org/dc/terms/modified> "2024-01-02T03:04:05Z"^^<http://www.w3.org/2001/XMLSchema#dateTime>`)
	assert.Equal(t, 1, strings.Count(upd, "DELETE"))

	drop, err := tmpl.Render(TmplDropGraph, GraphData{Graph: "urn:g"})
	require.NoError(t, err)
	assert.Equal(t, "DROP SILENT GRAPH <urn:g>\n", drop)

	_, err = tmpl.Render("missing.sparql", nil)
	assert.Error(t, err)
}

func TestHTTPClientQuery(t *testing.T) {
	var got url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, contentTypeForm, r.Header.Get("Content-Type"))
		assert.Equal(t, contentTypeResults, r.Header.Get("Accept"))
		assert.Equal(t, "rdfstore-test", r.Header.Get("User-Agent"))
		require.NoError(t, r.ParseForm())
		got = r.PostForm
		w.Header().Set("Content-Type", contentTypeResults)
		io.WriteString(w, selectJSON)
	}))
	defer srv.Close()

	c := NewHTTPClient(WithHTTPClient(srv.Client()), WithUserAgent("rdfstore-test"))
	res, err := c.Query(context.Background(), srv.URL, "SELECT * WHERE { ?s ?p ?o }", "urn:g1", "urn:g2")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Len())
	assert.Equal(t, "SELECT * WHERE { ?s ?p ?o }", got.Get("query"))
	assert.Equal(t, []string{"urn:g1", "urn:g2"}, got["default-graph-uri"])
}

func TestHTTPClientUpdate(t *testing.T) {
	var update string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		update = r.PostForm.Get("update")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewHTTPClient(WithHTTPClient(srv.Client()))
	require.NoError(t, c.Update(context.Background(), srv.URL, "DROP SILENT GRAPH <urn:g>"))
	assert.Equal(t, "DROP SILENT GRAPH <urn:g>", update)
}

func TestHTTPClientStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
	}))
	defer srv.Close()

	c := NewHTTPClient(WithHTTPClient(srv.Client()))
	err := c.Update(context.Background(), srv.URL, "INSERT DATA {}")
	require.ErrorIs(t, err, ErrUnexpectedStatus)

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusRequestEntityTooLarge, se.Code)
	assert.Equal(t, "request body too large", se.Body)

	_, err = c.Query(context.Background(), srv.URL, "SELECT * {}")
	assert.ErrorIs(t, err, ErrUnexpectedStatus)
}

func TestHTTPClientContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewHTTPClient(WithHTTPClient(srv.Client())).Query(ctx, srv.URL, "ASK {}")
	assert.ErrorIs(t, err, context.Canceled)
}
