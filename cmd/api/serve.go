package main

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/congo-pay/quorum_wallet/internal/infra"
	"github.com/congo-pay/quorum_wallet/internal/logging"
	"github.com/congo-pay/quorum_wallet/internal/metrics"
	"github.com/congo-pay/quorum_wallet/internal/notification"
	"github.com/congo-pay/quorum_wallet/internal/routes"
	"github.com/congo-pay/quorum_wallet/internal/server"
)

const relayCursorKey = "quorum_wallet:relay:cursor"

func serveCmd() *cobra.Command {
	var (
		port    string
		migrate bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the event relay",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			e, err := connect(ctx, true)
			if err != nil {
				return err
			}
			defer e.close()
			if port != "" {
				e.cfg.Port = port
			}

			if e.db != nil && (migrate || e.cfg.AutoMigrate) {
				if err := infra.Migrate(e.cfg.DatabaseURL, false, logging.Component(e.logger, "migrate")); err != nil {
					return err
				}
			}

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			deps := routes.Deps{
				Cfg:      e.cfg,
				DB:       e.db,
				Cache:    e.cache,
				Logger:   e.logger,
				Metrics:  metrics.New(reg),
				Gatherer: reg,
			}
			services := routes.NewServices(deps)
			srv, err := server.New(deps, services)
			if err != nil {
				return err
			}

			relay := newRelay(e, services, deps.Metrics)

			group, groupCtx := errgroup.WithContext(ctx)
			group.Go(func() error {
				e.logger.Info("http server listening", "addr", e.cfg.Address())
				return srv.Listen()
			})
			group.Go(func() error {
				return relay.Run(groupCtx)
			})
			group.Go(func() error {
				<-groupCtx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), e.cfg.ShutdownPeriod)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			})

			if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			e.logger.Info("server exited cleanly")
			return nil
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "listen port, overrides PORT")
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply schema migrations before serving")
	return cmd
}

// newRelay delivers to the Redis stream when Redis is configured and to
// the log otherwise. The cursor only outlives the process when the event
// log does, so it lives in Redis only when both stores are configured.
func newRelay(e *env, services *routes.Services, m *metrics.Metrics) *notification.Relay {
	logger := logging.Component(e.logger, "relay")
	notifier, cursor := relayTargets(e, logger)
	interval := e.cfg.RelayInterval
	if interval <= 0 {
		interval = time.Second
	}
	return notification.NewRelay(services.Events, notifier, cursor, e.cfg.RelayBatchSize, interval, logger, m)
}

func relayTargets(e *env, logger *slog.Logger) (notification.Notifier, notification.Cursor) {
	var (
		notifier notification.Notifier = notification.NewLoggerNotifier(logger)
		cursor   notification.Cursor   = &notification.MemoryCursor{}
	)
	if e.cache != nil {
		notifier = notification.NewRedisStreamNotifier(e.cache, e.cfg.EventStream)
		if e.db != nil {
			cursor = notification.NewRedisCursor(e.cache, relayCursorKey)
		}
	}
	return notifier, cursor
}
