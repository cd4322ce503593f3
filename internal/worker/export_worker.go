// Package worker holds the background consumers that react to expense events.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"spendwise/internal/amqp"
	"spendwise/internal/core"
	"spendwise/internal/log"
	"spendwise/internal/sheets"
)

// EventSource delivers expense events until ctx is done.
type EventSource interface {
	ConsumeExpenseEvents(ctx context.Context, handler amqp.Handler) error
}

// ExportWorker appends newly created and materialized expenses to a sheet.
type ExportWorker struct {
	appender sheets.ExpenseAppender
	logger   *log.Logger

	exported atomic.Int64
	skipped  atomic.Int64
	failed   atomic.Int64
}

// ExportStats counts what the worker has handled since it started.
type ExportStats struct {
	Exported int64
	Skipped  int64
	Failed   int64
}

func NewExportWorker(appender sheets.ExpenseAppender, logger *log.Logger) *ExportWorker {
	if logger == nil {
		logger = log.FromContext(context.Background())
	}
	return &ExportWorker{appender: appender, logger: logger.WithComponent(log.ComponentWorker)}
}

// HandleEvent exports created and materialized expenses. Other kinds are
// skipped since rows in the sheet are append-only. An error requeues the event.
func (w *ExportWorker) HandleEvent(ctx context.Context, event core.ExpenseEvent) error {
	switch event.Kind {
	case core.EventCreated, core.EventMaterialized:
	default:
		w.skipped.Add(1)
		w.logger.DebugContext(ctx, "Skipping expense event",
			log.FieldEventKind, event.Kind, log.FieldExpenseID, event.Expense.ID)
		return nil
	}

	ref, err := w.appender.Append(ctx, event.UserID, event.Expense)
	if err != nil {
		if core.IsValidation(err) {
			// retrying can never succeed
			w.skipped.Add(1)
			w.logger.WarnContext(ctx, "Dropping invalid expense event",
				log.NewFields().WithUser(event.UserID).WithError(err).WithErrorType(log.ErrorTypeValidation).ToSlice()...)
			return nil
		}
		w.failed.Add(1)
		return fmt.Errorf("append expense %s: %w", event.Expense.ID, err)
	}

	w.exported.Add(1)
	w.logger.InfoContext(ctx, "Exported expense",
		log.NewFields().WithUser(event.UserID).
			WithExpense(event.Expense.ID, event.Expense.Amount.String(), event.Expense.Category).
			WithOperation(log.OpExport).ToSlice()...)
	w.logger.DebugContext(ctx, "Export row reference", "range", ref)
	return nil
}

// Run consumes events from src until ctx is cancelled.
func (w *ExportWorker) Run(ctx context.Context, src EventSource) error {
	w.logger.InfoContext(ctx, "Export worker started")
	err := src.ConsumeExpenseEvents(ctx, w.HandleEvent)
	if errors.Is(err, context.Canceled) {
		w.logger.InfoContext(ctx, "Export worker stopped", "exported", w.exported.Load())
		return nil
	}
	return err
}

// Stats returns the running counters.
func (w *ExportWorker) Stats() ExportStats {
	return ExportStats{
		Exported: w.exported.Load(),
		Skipped:  w.skipped.Load(),
		Failed:   w.failed.Load(),
	}
}
