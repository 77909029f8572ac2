package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vliz-be-opsci/rdfstore"
)

var dropCmd = &cobra.Command{
	Use:   "drop <graph>...",
	Short: "Drop named graphs",
	Long:  "Remove the data of named graphs. Their last-modified records are refreshed, not removed.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDrop,
}

var forgetCmd = &cobra.Command{
	Use:   "forget <graph>...",
	Short: "Forget named graphs",
	Long:  "Remove the last-modified records of named graphs, leaving their data in place.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runForget,
}

var graphsCmd = &cobra.Command{
	Use:   "graphs",
	Short: "List tracked named graphs",
	Args:  cobra.NoArgs,
	RunE:  runGraphs,
}

var lastmodCmd = &cobra.Command{
	Use:   "lastmod <graph>",
	Short: "Print the last-modified time of a named graph",
	Args:  cobra.ExactArgs(1),
	RunE:  runLastmod,
}

var freshCmd = &cobra.Command{
	Use:   "fresh <graph>",
	Short: "Check that a named graph was modified recently",
	Long:  "Exit with status 0 when the graph was modified within --max-age and 1 otherwise.",
	Args:  cobra.ExactArgs(1),
	RunE:  runFresh,
}

func init() {
	freshCmd.Flags().Duration("max-age", 24*time.Hour, "maximum age of the graph")
	rootCmd.AddCommand(dropCmd, forgetCmd, graphsCmd, lastmodCmd, freshCmd)
}

func runDrop(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	for _, ng := range args {
		if err := s.DropGraph(ctx, ng); err != nil {
			return fmt.Errorf("drop %s: %w", ng, err)
		}
	}
	return nil
}

func runForget(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	for _, ng := range args {
		if err := s.ForgetGraph(ctx, ng); err != nil {
			return fmt.Errorf("forget %s: %w", ng, err)
		}
	}
	return nil
}

func runGraphs(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	graphs, err := s.NamedGraphs(ctx)
	if err != nil {
		return err
	}
	if len(graphs) == 0 {
		fmt.Println("(no graphs)")
	}
	for _, ng := range graphs {
		fmt.Println(ng)
	}
	return nil
}

func runLastmod(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	ts, ok, err := s.LastModified(ctx, args[0])
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s is not tracked", args[0])
	}
	fmt.Println(ts.Format(time.RFC3339Nano))
	return nil
}

func runFresh(cmd *cobra.Command, args []string) error {
	maxAge, _ := cmd.Flags().GetDuration("max-age")

	s, err := openStore()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	fresh, err := rdfstore.VerifyMaxAge(ctx, s, args[0], maxAge)
	if err != nil {
		return err
	}
	if !fresh {
		return fmt.Errorf("%s is older than %s or not tracked", args[0], maxAge)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "fresh")
	return nil
}
