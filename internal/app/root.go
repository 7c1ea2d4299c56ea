package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/blackwell-systems/ruleminer/internal/config"
)

var (
	cfgFile string
	// settings is resolved from flags, env and config file before every command.
	settings config.Settings

	// RootCmd is the root command for ruleminer
	RootCmd = &cobra.Command{
		Use:   "ruleminer",
		Short: "Frequent itemset and association rule mining over boolean tables",
		Long: `ruleminer runs a level-wise (Apriori) search over a boolean item table and
reports frequent itemsets and the association rules they imply.

Each row of the table is one transaction; each column is one item, holding
1/true when the item is present. Tables are read from the SQLite database
(--db) or, when --dsn is set, from PostgreSQL.

Thresholds:
  --support     minimum support (a proportion with --relative, else a row count)
  --confidence  minimum confidence for a rule to be reported

Note: the search reports only the last non-empty level of frequent itemsets.
Use 'ruleminer itemsets --all-levels' to see every level.

Configuration is read from ~/.ruleminer/config.yaml (or --config) and
RULEMINER_* environment variables; flags take precedence.`,
		Example: `  # Frequent itemsets in the baskets table
  ruleminer itemsets --table baskets

  # Rules with at least 80% confidence, saved for later
  ruleminer rules --table baskets --confidence 0.8 --save

  # Support of one itemset
  ruleminer support --table baskets bread milk

  # Past runs
  ruleminer history

  # Re-mine whenever the database changes, exposing metrics
  ruleminer watch --table baskets --metrics-addr :9090`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: loadSettings,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
)

func init() {
	// Global flags
	flags := RootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: ~/.ruleminer/config.yaml)")
	flags.String("db", "", "SQLite database path (default: ~/.ruleminer/ruleminer.db)")
	flags.String("dsn", "", "PostgreSQL DSN; when set, tables are read from PostgreSQL")
	flags.StringP("table", "t", "", "table holding the boolean item columns ([schema.]name)")
	flags.Float64("support", config.DefaultSupport, "minimum support threshold")
	flags.Float64("confidence", config.DefaultConfidence, "minimum confidence threshold")
	flags.Bool("relative", true, "treat support as a proportion of rows instead of a row count")
	flags.Int("workers", 0, "parallel support lookups per level (default: GOMAXPROCS)")
	flags.Int("cache-size", config.DefaultCacheSize, "row-match cache entries (0 disables the cache)")
	flags.String("log-level", config.DefaultLogLevel, "log level (debug, info, warn, error)")
	flags.String("log-format", config.DefaultLogFormat, "log format (text, json)")

	// Enable cobra's built-in suggestion feature for unknown subcommands
	RootCmd.SuggestionsMinimumDistance = 2

	// Register subcommands
	RootCmd.AddCommand(itemsetsCmd)
	RootCmd.AddCommand(rulesCmd)
	RootCmd.AddCommand(supportCmd)
	RootCmd.AddCommand(historyCmd)
	RootCmd.AddCommand(watchCmd)
}

// Execute runs the root command
func Execute() error {
	return RootCmd.Execute()
}

// flagKeys maps global flag names to config keys.
var flagKeys = map[string]string{
	"db":         config.KeyDB,
	"dsn":        config.KeyDSN,
	"table":      config.KeyTable,
	"support":    config.KeySupport,
	"confidence": config.KeyConfidence,
	"relative":   config.KeyRelative,
	"workers":    config.KeyWorkers,
	"cache-size": config.KeyCacheSize,
	"log-level":  config.KeyLogLevel,
	"log-format": config.KeyLogFormat,
}

// loadSettings resolves settings and configures the standard logger.
func loadSettings(cmd *cobra.Command, args []string) error {
	v := viper.New()
	config.SetDefaults(v)

	for name, key := range flagKeys {
		if err := v.BindPFlag(key, cmd.Root().PersistentFlags().Lookup(name)); err != nil {
			return fmt.Errorf("failed to bind --%s: %w", name, err)
		}
	}

	if err := config.Load(v, cfgFile); err != nil {
		return err
	}
	settings = config.Decode(v)

	if err := config.ConfigureLogger(logrus.StandardLogger(), settings.LogLevel, settings.LogFormat); err != nil {
		return err
	}
	logrus.SetOutput(cmd.ErrOrStderr())
	return nil
}

// getDBPath returns the database path, using the resolved setting or default
func getDBPath() (string, error) {
	if settings.DB != "" {
		return settings.DB, nil
	}

	dir, err := config.Dir()
	if err != nil {
		return "", err
	}

	return filepath.Join(dir, "ruleminer.db"), nil
}

// requireDB fails with a friendly message when the SQLite database is absent.
func requireDB(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("database %s does not exist: load a table into it first", path)
	}
	return nil
}
