package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"spendwise/internal/log"
)

func newRecurringCommand(opts *options) *cobra.Command {
	var once bool

	cmd := &cobra.Command{
		Use:   "recurring",
		Short: "Materialize due recurring expenses on a fixed interval",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if once {
				n, err := a.processor.ProcessDueExpenses(cmd.Context(), time.Now())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created %d expenses\n", n)
				return nil
			}
			return runScheduler(cmd.Context(), a, opts.cfg.RecurringInterval, time.Now)
		},
	}
	cmd.Flags().BoolVar(&once, "once", false, "process due templates once and exit")
	return cmd
}

// runScheduler processes due templates immediately and then every interval
// until ctx is cancelled. A failed pass is logged and retried on the next tick.
func runScheduler(ctx context.Context, a *app, interval time.Duration, now func() time.Time) error {
	logger := a.logger.WithComponent(log.ComponentRecurring)
	logger.InfoContext(ctx, "Recurring scheduler started", "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := a.processor.ProcessDueExpenses(ctx, now()); err != nil && !errors.Is(err, context.Canceled) {
			logger.ErrorContext(ctx, "Recurring processing failed", log.FieldError, err)
		}
		select {
		case <-ctx.Done():
			logger.Info("Recurring scheduler stopped")
			return nil
		case <-ticker.C:
		}
	}
}
