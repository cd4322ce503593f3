package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"spendwise/internal/backend"
	"spendwise/internal/config"
	"spendwise/internal/log"
)

// options carries global flags and the state resolved before any command runs.
type options struct {
	configFile string
	envFile    string

	cfg     *config.Config
	logger  *log.Logger
	factory backend.Factory
}

// NewRootCommand creates the spendwise command tree.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&options{})
}

func newRootCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "spendwise",
		Short:         "Personal expense tracker",
		Long:          "spendwise records expenses, budgets and recurring charges, and exports reports.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := LoadEnvFile(opts.envFile); err != nil {
				return err
			}
			cfg, err := LoadAndValidateConfig(opts.configFile)
			if err != nil {
				return err
			}
			logger, err := SetupLogger(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			opts.cfg = cfg
			opts.logger = logger
			if opts.factory == nil {
				opts.factory = backend.NewFactory(logger)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file (yaml, json or toml); environment variables take precedence")
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file loaded before configuration")

	cmd.AddCommand(newServeCommand(opts))
	cmd.AddCommand(newRecurringCommand(opts))
	cmd.AddCommand(newExportWorkerCommand(opts))
	cmd.AddCommand(newReportCommand(opts))
	cmd.AddCommand(newUserCommand(opts))
	cmd.AddCommand(newMigrateCommand(opts))

	return cmd
}

// Execute runs the command tree and returns the process exit code.
func Execute() int {
	ctx, stop := ShutdownContext(context.Background())
	defer stop()

	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}
