package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"spendwise/internal/log"
	"spendwise/internal/storage"
)

// RecurringProcessor runs ProcessDue for every user that has templates.
type RecurringProcessor struct {
	store     storage.Store
	recurring *RecurringService
	logger    *log.Logger
}

func NewRecurringProcessor(store storage.Store, recurring *RecurringService) *RecurringProcessor {
	return &RecurringProcessor{
		store:     store,
		recurring: recurring,
		logger:    recurring.logger.WithComponent(log.ComponentWorker),
	}
}

// ProcessDueExpenses materializes due templates for all users. A failure for
// one user is logged and does not stop the others.
func (p *RecurringProcessor) ProcessDueExpenses(ctx context.Context, now time.Time) (int, error) {
	if p.store == nil || p.recurring == nil {
		return 0, fmt.Errorf("processor not properly initialized")
	}

	keys, err := p.store.Keys(ctx, storage.RecurringPrefix)
	if err != nil {
		return 0, fmt.Errorf("list recurring keys: %w", err)
	}

	p.logger.InfoContext(ctx, "Processing recurring templates",
		"users", len(keys),
		"processing_date", now.Format("2006-01-02"))

	total, failed := 0, 0
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		userID := strings.TrimPrefix(key, storage.RecurringPrefix)
		n, err := p.recurring.ProcessDue(ctx, userID, now)
		total += n
		if err != nil {
			failed++
			p.logger.ErrorContext(ctx, "Failed to process recurring templates",
				log.FieldUserID, userID, log.FieldError, err)
		}
	}

	p.logger.InfoContext(ctx, "Recurring processing complete",
		"created", total,
		"users_failed", failed)
	return total, nil
}
