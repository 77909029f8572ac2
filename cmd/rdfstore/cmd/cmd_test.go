package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/geoknoesis/rdf-go/rdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vliz-be-opsci/rdfstore"
)

func TestWriteTSV(t *testing.T) {
	res := &rdfstore.Results{
		Vars: []string{"s", "n"},
		Bindings: []rdfstore.Binding{
			{"s": rdf.IRI{Value: "urn:a"}, "n": rdf.Literal{Lexical: "a\tb"}},
			{"s": rdf.IRI{Value: "urn:b"}},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, writeTSV(&buf, res))
	assert.Equal(t, "s\tn\n<urn:a>\t\"a\\tb\"\n<urn:b>\t\n", buf.String())
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("RDFSTORE_READ_URI=http://env.example/sparql\nRDFSTORE_BATCH_SIZE=100\n"), 0o644))

	t.Setenv("RDFSTORE_BATCH_SIZE", "200")
	os.Unsetenv("RDFSTORE_READ_URI")
	t.Cleanup(func() { os.Unsetenv("RDFSTORE_READ_URI") })

	require.NoError(t, loadEnvFile(path))
	assert.Equal(t, "http://env.example/sparql", os.Getenv("RDFSTORE_READ_URI"))
	assert.Equal(t, "200", os.Getenv("RDFSTORE_BATCH_SIZE"), "the environment wins over the file")

	assert.Error(t, loadEnvFile(filepath.Join(t.TempDir(), "missing.env")))
}
