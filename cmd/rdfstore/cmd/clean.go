package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/vliz-be-opsci/rdfstore/clean"
	"github.com/vliz-be-opsci/rdfstore/graph"
)

var cleanCmd = &cobra.Command{
	Use:   "clean <file>",
	Short: "Clean an RDF file",
	Long: `Run clean steps over an RDF file and print the result as N-Triples.

Steps come from --clean; without it the default chain (smart_clean) runs.
Available steps: ` + strings.Join(clean.Builtins(), ", ") + ".",
	Args: cobra.ExactArgs(1),
	RunE: runClean,
}

func init() {
	rootCmd.AddCommand(cleanCmd)
}

func runClean(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	chain := clean.Default()
	if steps := viper.GetStringSlice("clean"); len(steps) > 0 {
		var err error
		if chain, err = clean.BuildChain(clean.Parse(steps...)...); err != nil {
			return err
		}
	}

	g, err := graph.ParseFile(ctx, args[0], "")
	if err != nil {
		return err
	}
	cleaned, err := chain.Apply(g)
	if err != nil {
		return fmt.Errorf("clean failed: %w", err)
	}
	logger.Debug("cleaned graph",
		zap.String("path", args[0]),
		zap.Int("steps", chain.Len()),
		zap.Int("in", g.Len()),
		zap.Int("out", cleaned.Len()),
	)
	return cleaned.WriteNTriples(os.Stdout)
}
