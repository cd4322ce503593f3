package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"spendwise/internal/amqp"
	"spendwise/internal/backend"
	"spendwise/internal/log"
	"spendwise/internal/worker"
)

func newExportWorkerCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "export-worker",
		Short: "Append expense events from AMQP to Google Sheets",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if opts.cfg.AMQPURL == "" {
				return errors.New("export-worker requires AMQP_URL")
			}
			if !opts.cfg.SheetsEnabled() {
				opts.logger.Warn("SHEETS_SPREADSHEET_ID is not set, events are kept in memory only")
			}
			bcfg, err := backend.FromAppConfig(opts.cfg)
			if err != nil {
				return err
			}
			appender, err := opts.factory.CreateAppender(ctx, bcfg)
			if err != nil {
				return err
			}

			client, err := amqp.NewClient(opts.cfg.AMQPURL, opts.cfg.AMQPExchange, opts.cfg.AMQPQueue)
			if err != nil {
				return err
			}
			defer client.Close()

			w := worker.NewExportWorker(appender, opts.logger)
			err = w.Run(ctx, client)
			stats := w.Stats()
			opts.logger.WithComponent(log.ComponentWorker).Info("Export worker finished",
				"exported", stats.Exported,
				"skipped", stats.Skipped,
				"failed", stats.Failed)
			return err
		},
	}
}
