package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/congo-pay/quorum_wallet/internal/config"
	"github.com/congo-pay/quorum_wallet/internal/infra"
	"github.com/congo-pay/quorum_wallet/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:           "quorum-wallet",
	Short:         "Quorum approved custodial wallets",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rootCmd.AddCommand(serveCmd(), migrateCmd(), tokenCmd())
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// env is what every subcommand starts from.
type env struct {
	cfg    config.Config
	logger *slog.Logger
	db     *pgxpool.Pool
	cache  *redis.Client
}

// connect loads configuration and opens the backends the configuration
// names. Missing URLs leave the matching field nil.
func connect(ctx context.Context, withRedis bool) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	e := &env{cfg: cfg, logger: logging.New(cfg.LogLevel, cfg.AppName)}

	if cfg.DatabaseURL != "" {
		e.db, err = infra.NewPostgresPool(ctx, cfg.DatabaseURL, logging.Component(e.logger, "postgres"))
		if err != nil {
			return nil, err
		}
	} else {
		e.logger.Warn("DATABASE_URL not set, state is kept in memory")
	}

	if withRedis && cfg.RedisURL != "" {
		e.cache, err = infra.NewRedisClient(ctx, cfg.RedisURL, logging.Component(e.logger, "redis"))
		if err != nil {
			e.close()
			return nil, err
		}
	}
	return e, nil
}

func (e *env) close() {
	if e.cache != nil {
		if err := e.cache.Close(); err != nil {
			e.logger.Warn("close redis", "error", err)
		}
	}
	if e.db != nil {
		e.db.Close()
	}
}
