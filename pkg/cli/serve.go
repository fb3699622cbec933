package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/platinummonkey/apicheck/pkg/api"
	"github.com/platinummonkey/apicheck/pkg/checker"
	"github.com/platinummonkey/apicheck/pkg/observability"
	"github.com/platinummonkey/apicheck/pkg/storage"
)

// Version is reported by the health endpoints. It is set at build time.
var Version = "dev"

func newServeCommand(env *Env) *Command {
	cmd := &Command{
		Name:        "serve",
		Description: "Serve the check API over HTTP",
		Flags:       env.newFlagSet("serve"),
		env:         env,
	}
	addr := cmd.Flags.String("addr", env.Config.Server.Addr(), "Listen address")

	cmd.Run = func(ctx context.Context, args []string) error {
		if err := cmd.Flags.Parse(args); err != nil {
			return err
		}

		srv, shutdown, err := env.newHTTPServer(ctx, *addr)
		if err != nil {
			return err
		}

		serveErr := make(chan error, 1)
		go func() {
			defer observability.RecoverPanic(env.Logger, "http server")
			env.Logger.WithField("addr", srv.Addr).Info("Starting apicheck server")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serveErr <- err
			}
			close(serveErr)
		}()

		select {
		case err := <-serveErr:
			if err != nil {
				shutdown.Shutdown()
				return fmt.Errorf("server failed: %w", err)
			}
			return shutdown.Shutdown()
		case <-ctx.Done():
			return shutdown.Wait(ctx)
		}
	}

	return cmd
}

// newHTTPServer wires storage, metrics, tracing and the API into a server
// and a shutdown manager that tears them down in order.
func (e *Env) newHTTPServer(ctx context.Context, addr string) (*http.Server, *observability.ShutdownManager, error) {
	cfg := e.Config

	providers, err := observability.InitOTel(ctx, cfg.Observability.OTel(), e.Logger)
	if err != nil {
		return nil, nil, err
	}

	var metrics *observability.Metrics
	if cfg.Observability.MetricsEnabled {
		metrics = observability.NewMetrics(nil)
	}

	base, err := storage.NewStore(ctx, cfg.Storage)
	if err != nil {
		observability.ShutdownOTel(ctx, providers, e.Logger)
		return nil, nil, fmt.Errorf("failed to open baseline store: %w", err)
	}
	store := storage.Instrument(base, metrics, e.Logger)

	opts, err := (&policyFlags{
		policyFile:   cfg.Check.PolicyFile,
		acceptedFile: cfg.Check.BaselineFile,
		hide:         cfg.Check.Hide,
		werror:       cfg.Check.Werror,
	}).options()
	if err != nil {
		observability.ShutdownOTel(ctx, providers, e.Logger)
		return nil, nil, err
	}
	c := checker.New(append(opts,
		checker.WithLogger(e.Logger),
		checker.WithMetrics(metrics),
		checker.WithCache(checker.NewModelCache(cfg.Check.CacheSize, cfg.Check.CacheTTL, metrics)),
		checker.WithMaxParallel(cfg.Check.MaxParallel),
	)...)

	handler := api.NewServer(api.ServerOptions{
		Checker:      c,
		Store:        store,
		Metrics:      metrics,
		Health:       observability.NewHealthChecker(Version, store),
		Logger:       e.Logger,
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
	})

	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	shutdown := observability.NewShutdownManager(e.Logger, srv, cfg.Server.ShutdownTimeout)
	shutdown.RegisterShutdownFunc(func(ctx context.Context) error {
		return observability.ShutdownOTel(ctx, providers, e.Logger)
	})
	return srv, shutdown, nil
}
