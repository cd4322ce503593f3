package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"spendwise/internal/backend"
	"spendwise/internal/storage"
)

func newMigrateCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply schema migrations for the configured SQL backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			switch backend.BackendType(opts.cfg.DataBackend) {
			case backend.SQLiteBackend:
				if err := os.MkdirAll(filepath.Dir(opts.cfg.SQLiteDBPath), 0755); err != nil {
					return fmt.Errorf("create db directory: %w", err)
				}
				if err := storage.RunSQLiteMigrations(opts.cfg.SQLiteDBPath); err != nil {
					return err
				}
			case backend.PostgresBackend:
				if err := storage.RunPostgresMigrations(opts.cfg.DatabaseURL); err != nil {
					return err
				}
			default:
				fmt.Fprintf(cmd.OutOrStdout(), "backend %s has no schema, nothing to migrate\n", opts.cfg.DataBackend)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "migrations applied for %s backend\n", opts.cfg.DataBackend)
			return nil
		},
	}
}
