package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"spendwise/internal/auth"
	"spendwise/internal/cache"
	apphttp "spendwise/internal/http"
	"spendwise/internal/log"
)

const shutdownTimeout = 30 * time.Second

func newServeCommand(opts *options) *cobra.Command {
	var withScheduler bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts, withScheduler)
		},
	}
	cmd.Flags().BoolVar(&withScheduler, "with-scheduler", false, "also materialize due recurring expenses in-process")
	return cmd
}

func runServe(ctx context.Context, opts *options, withScheduler bool) error {
	logger := opts.logger.WithComponent(log.ComponentApp)

	a, err := opts.openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	caches := cache.NewManager(logger)
	caches.Register(a.stats)
	caches.Register(a.auth)
	caches.StartCleanup(time.Minute)
	defer caches.Stop()

	srv := apphttp.NewServer(":"+opts.cfg.Port, apphttp.Dependencies{
		Expenses:           a.expenses,
		Budgets:            a.budgets,
		Recurring:          a.recurring,
		Auth:               a.auth,
		Stats:              a.stats,
		Logger:             opts.logger,
		RateLimitPerMinute: opts.cfg.RateLimitPerMinute,
		Ready:              a.ready,
	})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.InfoContext(gctx, "Starting spendwise server",
			"port", opts.cfg.Port,
			"backend", opts.cfg.DataBackend,
			"scheduler", withScheduler)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		watchSessions(gctx, a.auth, logger)
		return nil
	})

	if withScheduler {
		g.Go(func() error {
			return runScheduler(gctx, a, opts.cfg.RecurringInterval, time.Now)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("Server stopped gracefully")
	return nil
}

// watchSessions logs auth state changes until ctx is done.
func watchSessions(ctx context.Context, svc *auth.Service, logger *log.Logger) {
	events, cancel := svc.Subscribe()
	defer cancel()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			logger.Debug("Session state changed",
				log.FieldEventKind, string(ev.Kind),
				log.FieldUserID, ev.Session.UserID)
		}
	}
}
