package cmd

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/geoknoesis/rdf-go/rdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vliz-be-opsci/rdfstore/graph"
)

// endpoint serves canned SPARQL JSON results: the configured last-modified
// value for admin lookups and two triples for everything else.
type endpoint struct {
	lastmod string

	mu            sync.Mutex
	defaultGraphs []string
}

func (e *endpoint) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	q := r.PostForm.Get("query")
	w.Header().Set("Content-Type", "application/sparql-results+json")

	if strings.HasPrefix(q, "SELECT ?lastmod") {
		bindings := ""
		if e.lastmod != "" {
			bindings = fmt.Sprintf(`{"lastmod": {"type": "literal", "value": %q, "datatype": "http://www.w3.org/2001/XMLSchema#dateTime"}}`, e.lastmod)
		}
		fmt.Fprintf(w, `{"head": {"vars": ["lastmod"]}, "results": {"bindings": [%s]}}`, bindings)
		return
	}

	e.mu.Lock()
	e.defaultGraphs = append(e.defaultGraphs, r.PostForm["default-graph-uri"]...)
	e.mu.Unlock()
	io.WriteString(w, `{"head": {"vars": ["s", "p", "o"]}, "results": {"bindings": [
		{"s": {"type": "uri", "value": "https://example.org/alice"}, "p": {"type": "uri", "value": "https://schema.org/name"}, "o": {"type": "literal", "value": "Alice", "xml:lang": "en"}},
		{"s": {"type": "uri", "value": "https://example.org/alice"}, "p": {"type": "uri", "value": "https://schema.org/age"}, "o": {"type": "literal", "value": "42", "datatype": "http://www.w3.org/2001/XMLSchema#integer"}}
	]}}`)
}

// execute runs the root command with args and returns what it printed.
// Flags keep their values between runs, so callers pass every flag they
// depend on.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return out.String(), err
}

func TestFreshCommand(t *testing.T) {
	tests := []struct {
		name    string
		lastmod string
		remote  bool
		wantErr bool
	}{
		{name: "recent", lastmod: time.Now().Add(-time.Minute).UTC().Format(time.RFC3339Nano), remote: true},
		{name: "stale", lastmod: time.Now().Add(-48 * time.Hour).UTC().Format(time.RFC3339Nano), remote: true, wantErr: true},
		{name: "untracked", remote: true, wantErr: true},
		{name: "untracked in memory", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			readURI := ""
			if tt.remote {
				srv := httptest.NewServer(&endpoint{lastmod: tt.lastmod})
				defer srv.Close()
				readURI = srv.URL
			}

			out, err := execute(t, "fresh", "urn:g", "--read-uri="+readURI, "--max-age=1h")
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "urn:g is older than 1h0m0s or not tracked")
				assert.Empty(t, out)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "fresh\n", out)
		})
	}
}

func TestDumpCommand(t *testing.T) {
	alice := rdf.IRI{Value: "https://example.org/alice"}
	want := graph.New(
		rdf.Triple{S: alice, P: rdf.IRI{Value: "https://schema.org/name"}, O: rdf.Literal{Lexical: "Alice", Lang: "en"}},
		rdf.Triple{S: alice, P: rdf.IRI{Value: "https://schema.org/age"}, O: rdf.Literal{Lexical: "42", Datatype: rdf.IRI{Value: graph.XSDInteger}}},
	)

	tests := []struct {
		name       string
		file       string
		compressed bool
	}{
		{name: "n-triples", file: "out.nt"},
		{name: "zstd n-triples", file: "out.nt.zst", compressed: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &endpoint{}
			srv := httptest.NewServer(e)
			defer srv.Close()

			path := filepath.Join(t.TempDir(), tt.file)
			_, err := execute(t, "dump", "urn:g", "--read-uri="+srv.URL, "--output="+path, "--level=3")
			require.NoError(t, err)
			assert.Equal(t, []string{"urn:g"}, e.defaultGraphs)

			raw, err := os.ReadFile(path)
			require.NoError(t, err)
			zstdMagic := []byte{0x28, 0xb5, 0x2f, 0xfd}
			assert.Equal(t, tt.compressed, bytes.HasPrefix(raw, zstdMagic))

			got, err := graph.ParseFile(context.Background(), path, "")
			require.NoError(t, err)
			assert.Equal(t, want.Lines(), got.Lines())
		})
	}
}

func TestDumpCommandToStdout(t *testing.T) {
	srv := httptest.NewServer(&endpoint{})
	defer srv.Close()

	out, err := execute(t, "dump", "urn:g", "--read-uri="+srv.URL, "--output=")
	require.NoError(t, err)
	assert.Equal(t,
		"<https://example.org/alice> <https://schema.org/age> \"42\"^^<http://www.w3.org/2001/XMLSchema#integer> .\n"+
			"<https://example.org/alice> <https://schema.org/name> \"Alice\"@en .\n",
		out)
}
