package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/crispterm/internal/config"
	"github.com/abhisek/crispterm/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "crispterm",
	Short: "AI-scored technical screening interviews in the terminal",
	Long:  "CrispTerm — terminal interview assistant that collects a candidate profile, runs a timed AI-generated question round, and publishes scored results.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides CRISP_DB env var)")
	rootCmd.PersistentFlags().String("config", "", "Path to YAML config file (default: XDG config dir)")

	rootCmd.AddCommand(candidatesCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the config file named by --config, falling back to
// the default location.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.Load(path)
}

// resolveDBPath returns the database path using --db flag (highest
// priority), then the config file, then CRISP_DB / the default XDG path.
func resolveDBPath(cmd *cobra.Command, cfg *config.Config) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if cfg != nil && cfg.Storage.Path != "" {
		return cfg.Storage.Path, store.EnsureDir(cfg.Storage.Path)
	}
	return store.DefaultDBPath()
}
