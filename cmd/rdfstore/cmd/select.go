package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vliz-be-opsci/rdfstore"
	"github.com/vliz-be-opsci/rdfstore/graph"
)

var selectCmd = &cobra.Command{
	Use:   "select <query>",
	Short: "Run a SELECT query",
	Long:  "Run a SELECT query and print the solutions as tab separated values. Use - to read the query from stdin.",
	Args:  cobra.ExactArgs(1),
	RunE:  runSelect,
}

func init() {
	selectCmd.Flags().String("graph", "", "scope the query to this named graph")
	rootCmd.AddCommand(selectCmd)
}

func runSelect(cmd *cobra.Command, args []string) error {
	q := args[0]
	if q == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return err
		}
		q = string(data)
	}
	graphName, _ := cmd.Flags().GetString("graph")

	s, err := openStore()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	res, err := s.Select(ctx, q, graphName)
	if err != nil {
		return err
	}
	return writeTSV(os.Stdout, res)
}

func writeTSV(w io.Writer, res *rdfstore.Results) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, strings.Join(res.Vars, "\t"))
	for _, b := range res.Bindings {
		row := make([]string, len(res.Vars))
		for i, v := range res.Vars {
			if t, ok := b[v]; ok {
				row[i] = graph.FormatTerm(t)
			}
		}
		fmt.Fprintln(bw, strings.Join(row, "\t"))
	}
	return bw.Flush()
}
