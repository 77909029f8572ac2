package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/vliz-be-opsci/rdfstore"
	"github.com/vliz-be-opsci/rdfstore/clean"
	"github.com/vliz-be-opsci/rdfstore/internal/batch"
)

var logger = zap.NewNop()

var rootCmd = &cobra.Command{
	Use:   "rdfstore",
	Short: "RDF triple store client",
	Long: `Load, query and track named graphs in a SPARQL triple store.

Without endpoints the commands run against an in-process store, which is
handy to check what a file would insert. Endpoints come from --read-uri and
--write-uri, the config file or RDFSTORE_READ_URI / RDFSTORE_WRITE_URI.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if viper.GetBool("verbose") {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		l, err := config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default: ~/.config/rdfstore/config.yaml)")
	flags.String("env-file", "", "dotenv file with RDFSTORE_* settings")
	flags.String("read-uri", "", "SPARQL query endpoint")
	flags.String("write-uri", "", "SPARQL update endpoint (default: the read endpoint)")
	flags.Bool("read-only", false, "never write, even when a write endpoint is configured")
	flags.Int("batch-size", batch.DefaultMaxSize, "maximum size in bytes of one update request")
	flags.String("admin-graph", rdfstore.DefaultAdminGraph, "named graph holding last-modified records")
	flags.String("lastmod-predicate", rdfstore.DefaultLastModifiedPredicate, "predicate of last-modified records")
	flags.String("skolem-base", "", "IRI prefix for skolemised blank nodes")
	flags.StringSlice("clean", nil, "clean steps applied before inserting, e.g. smart_clean,schema_org_https")
	flags.Duration("timeout", 0, "overall timeout of the command (0 disables it)")
	flags.BoolP("verbose", "v", false, "debug logging")

	for _, name := range []string{
		"read-uri", "write-uri", "read-only", "batch-size", "admin-graph",
		"lastmod-predicate", "skolem-base", "clean", "timeout", "verbose",
	} {
		viper.BindPFlag(strings.ReplaceAll(name, "-", "_"), flags.Lookup(name))
	}
}

func initConfig() {
	if envFile := rootCmd.PersistentFlags().Lookup("env-file").Value.String(); envFile != "" {
		if err := loadEnvFile(envFile); err != nil {
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		}
	}

	if cfg := rootCmd.PersistentFlags().Lookup("config").Value.String(); cfg != "" {
		viper.SetConfigFile(cfg)
	} else {
		viper.AddConfigPath(configDir())
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("RDFSTORE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	viper.ReadInConfig()
}

// loadEnvFile exports the variables of a dotenv file that are not already
// set in the environment.
func loadEnvFile(path string) error {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read env file: %w", err)
	}
	for key, value := range v.AllSettings() {
		name := strings.ToUpper(key)
		if _, ok := os.LookupEnv(name); ok {
			continue
		}
		os.Setenv(name, fmt.Sprint(value))
	}
	return nil
}

func configDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "rdfstore")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", "rdfstore")
	}
	return ".rdfstore"
}

// storeOptions translates the configuration into store options.
func storeOptions() ([]rdfstore.Option, error) {
	opts := []rdfstore.Option{
		rdfstore.WithLogger(logger),
		rdfstore.WithBatchSize(viper.GetInt("batch_size")),
		rdfstore.WithAdminGraph(viper.GetString("admin_graph")),
		rdfstore.WithLastModifiedPredicate(viper.GetString("lastmod_predicate")),
		rdfstore.WithSkolemBase(viper.GetString("skolem_base")),
	}
	if viper.GetBool("read_only") {
		opts = append(opts, rdfstore.WithReadOnly())
	}
	if steps := viper.GetStringSlice("clean"); len(steps) > 0 {
		chain, err := clean.BuildChain(clean.Parse(steps...)...)
		if err != nil {
			return nil, err
		}
		opts = append(opts, rdfstore.WithCleaner(chain))
	}
	return opts, nil
}

func openStore() (rdfstore.Store, error) {
	opts, err := storeOptions()
	if err != nil {
		return nil, err
	}
	var endpoints []string
	read, write := viper.GetString("read_uri"), viper.GetString("write_uri")
	switch {
	case write != "" && write != read:
		endpoints = []string{read, write}
	case read != "":
		endpoints = []string{read}
	}
	s, err := rdfstore.Open(endpoints, opts...)
	if err != nil {
		return nil, err
	}
	return rdfstore.NewLoggingStore(s, logger), nil
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if timeout := viper.GetDuration("timeout"); timeout > 0 {
		return context.WithTimeout(ctx, timeout)
	}
	return context.WithCancel(ctx)
}
