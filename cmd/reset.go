package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/crispterm/internal/store"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Discard the cached in-progress interview",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		dbPath, err := resolveDBPath(cmd, cfg)
		if err != nil {
			return fmt.Errorf("resolve database path: %w", err)
		}

		s, err := store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer s.Close()

		if err := s.SessionCache().Clear(context.Background()); err != nil {
			return fmt.Errorf("clear session cache: %w", err)
		}
		fmt.Println("Cached interview discarded.")
		return nil
	},
}
