package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stepvault/stepvault/packages/core/config"
	"github.com/stepvault/stepvault/packages/service"
	"github.com/stepvault/stepvault/packages/store"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

var (
	flagDB        string
	flagConfig    string
	flagExecution string
	flagNoColor   bool
)

var rootCmd = &cobra.Command{
	Use:   "stepvault",
	Short: "Inspect the variables captured by automated test executions.",
	Long: `stepvault inspects the variable store written by multi-step test
executions: list captured variables, resolve values by path, fuzzy-search
names, explore nested properties, and export everything for archival.`,
}

func Execute(v, bt string) {
	version = v
	buildTime = bt
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "path to the variable database (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to a config file")
	rootCmd.PersistentFlags().StringVarP(&flagExecution, "execution", "e", "", "execution id (defaults to the most recent)")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(exploreCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(executionsCmd)
	rootCmd.AddCommand(versionCmd)
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if flagDB != "" {
		cfg.DatabasePath = flagDB
	}
	return cfg, nil
}

func openBackend(cfg *config.Config) (*store.SQLite, error) {
	if _, err := os.Stat(cfg.DatabasePath); err != nil {
		return nil, fmt.Errorf("no database at %s (use --db or a config file)", cfg.DatabasePath)
	}
	return store.OpenSQLite(cfg.DatabasePath)
}

// resolveExecution picks the execution to inspect: the --execution flag, or
// the most recently written execution in the database.
func resolveExecution(backend *store.SQLite) (string, error) {
	if flagExecution != "" {
		return flagExecution, nil
	}
	ids, err := backend.ListExecutions()
	if err != nil {
		return "", err
	}
	if len(ids) == 0 {
		return "", fmt.Errorf("database contains no executions")
	}
	return ids[0], nil
}

func openExecution(cfg *config.Config) (*service.Execution, *store.SQLite, error) {
	backend, err := openBackend(cfg)
	if err != nil {
		return nil, nil, err
	}
	id, err := resolveExecution(backend)
	if err != nil {
		_ = backend.Close()
		return nil, nil, err
	}
	exec, err := service.NewExecution(id, backend, service.Config{
		CacheSize:     cfg.CacheSize,
		SuggestionTTL: cfg.SuggestionTTL(),
	})
	if err != nil {
		_ = backend.Close()
		return nil, nil, err
	}
	return exec, backend, nil
}
