// Package cli holds the defectctl admin commands.
package cli

import (
	"context"
	"fmt"
	"log/slog"

	"defecttracker/internal/config"
	"defecttracker/internal/store"
	"defecttracker/pkg/db"

	"github.com/spf13/cobra"
)

// RootCmd wires every defectctl subcommand.
func RootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "defectctl",
		Short:        "Administer the defect tracker database",
		SilenceUsage: true,
	}
	root.AddCommand(MigrateCmd())
	root.AddCommand(SeedCmd())
	root.AddCommand(TokenCmd())
	return root
}

// withStore loads config from the environment, opens the database and hands
// both to run. The connection is closed when run returns.
func withStore(run func(cmd *cobra.Command, args []string, cfg config.Config, st *store.Store) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		gdb, err := db.OpenGorm(db.Config{Driver: cfg.DatabaseDriver, DSN: cfg.DatabaseURL, LogSQL: cfg.LogSQL})
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer func() {
			if sqlDB, err := gdb.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}()
		slog.Debug("database opened", "command", cmd.CommandPath(), "driver", cfg.DatabaseDriver)
		return run(cmd, args, cfg, store.New(gdb))
	}
}

func migrate(ctx context.Context, st *store.Store) error {
	if err := st.AutoMigrate(ctx); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	if err := st.SeedTags(ctx); err != nil {
		return fmt.Errorf("seed tags: %w", err)
	}
	return nil
}
