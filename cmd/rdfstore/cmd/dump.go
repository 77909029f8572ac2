package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/geoknoesis/rdf-go/rdf"
	"github.com/spf13/cobra"

	"github.com/vliz-be-opsci/rdfstore/graph"
	"github.com/vliz-be-opsci/rdfstore/internal/compression"
)

const dumpQuery = `SELECT ?s ?p ?o WHERE { ?s ?p ?o }`

var dumpCmd = &cobra.Command{
	Use:   "dump <graph>",
	Short: "Write the triples of a named graph",
	Long: `Write the triples of a named graph to stdout or to --output.

The output format follows the file extension (N-Triples by default); an
output ending in .zst is compressed.`,
	Args: cobra.ExactArgs(1),
	RunE: runDump,
}

func init() {
	dumpCmd.Flags().StringP("output", "o", "", "output file (default: stdout)")
	dumpCmd.Flags().Int("level", 2, "zstd compression level (1-3)")
	rootCmd.AddCommand(dumpCmd)
}

func runDump(cmd *cobra.Command, args []string) (err error) {
	output, _ := cmd.Flags().GetString("output")
	level, _ := cmd.Flags().GetInt("level")

	s, err := openStore()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	res, err := s.Select(ctx, dumpQuery, args[0])
	if err != nil {
		return err
	}
	g := graph.New()
	for _, b := range res.Bindings {
		p, ok := b["p"].(rdf.IRI)
		if !ok || b["s"] == nil || b["o"] == nil {
			continue
		}
		g.Add(rdf.Triple{S: b["s"], P: p, O: b["o"]})
	}

	if output == "" {
		return g.WriteNTriples(cmd.OutOrStdout())
	}

	format := rdf.FormatNTriples
	if f, ferr := graph.FormatForPath(output); ferr == nil {
		format = f
	}

	f, err := os.Create(output)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	var w io.Writer = f
	if compression.IsCompressed(output) {
		zw, zerr := compression.NewWriter(f, level)
		if zerr != nil {
			return zerr
		}
		defer func() {
			if cerr := zw.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}()
		w = zw
	}

	if err := g.Write(w, format); err != nil {
		return fmt.Errorf("dump failed: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d triples to %s\n", g.Len(), output)
	return nil
}
