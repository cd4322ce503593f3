package cli

import (
	"context"
	"fmt"

	"spendwise/internal/auth"
	"spendwise/internal/backend"
	"spendwise/internal/cache"
	"spendwise/internal/log"
	"spendwise/internal/services"
	"spendwise/internal/storage"
)

// app is the service graph shared by the commands that touch user data.
type app struct {
	logger    *log.Logger
	result    *backend.BackendResult
	stats     *cache.StatsCache
	expenses  *services.ExpenseService
	budgets   *services.BudgetService
	recurring *services.RecurringService
	processor *services.RecurringProcessor
	auth      *auth.Service
}

func (o *options) openApp(ctx context.Context) (*app, error) {
	bcfg, err := backend.FromAppConfig(o.cfg)
	if err != nil {
		return nil, err
	}
	res, err := o.factory.CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, fmt.Errorf("create backend: %w", err)
	}

	stats := cache.NewStatsCache(o.cfg.CacheSize, o.cfg.CacheTTL)
	expOpts := []services.ExpenseOption{
		services.WithInvalidator(stats),
		services.WithLogger(o.logger),
	}
	// a typed nil client must not become a non-nil interface
	if res.Publisher != nil {
		expOpts = append(expOpts, services.WithPublisher(res.Publisher))
	}
	expenses := services.NewExpenseService(res.Store, expOpts...)
	recurring := services.NewRecurringService(res.Store, expenses)

	return &app{
		logger:    o.logger,
		result:    res,
		stats:     stats,
		expenses:  expenses,
		budgets:   services.NewBudgetService(res.Store, expenses),
		recurring: recurring,
		processor: services.NewRecurringProcessor(res.Store, recurring),
		auth:      auth.NewService(res.Store, auth.WithTTL(o.cfg.SessionTTL), auth.WithLogger(o.logger)),
	}, nil
}

func (a *app) store() storage.Store { return a.result.Store }

// ready probes the store with a cheap key listing.
func (a *app) ready(ctx context.Context) error {
	_, err := a.store().Keys(ctx, storage.UserPrefix)
	return err
}

func (a *app) Close() {
	if err := a.result.Cleanup(); err != nil {
		a.logger.Error("Failed to release backend", log.FieldError, err)
	}
}
