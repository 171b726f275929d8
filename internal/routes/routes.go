package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/congo-pay/quorum_wallet/internal/auth"
	"github.com/congo-pay/quorum_wallet/internal/config"
	"github.com/congo-pay/quorum_wallet/internal/event"
	"github.com/congo-pay/quorum_wallet/internal/identity"
	"github.com/congo-pay/quorum_wallet/internal/ledger"
	"github.com/congo-pay/quorum_wallet/internal/metrics"
	"github.com/congo-pay/quorum_wallet/internal/middleware"
	"github.com/congo-pay/quorum_wallet/internal/multisig"
	"github.com/congo-pay/quorum_wallet/internal/storage"
	"github.com/congo-pay/quorum_wallet/internal/wallet"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg      config.Config
	DB       *pgxpool.Pool
	Cache    *redis.Client
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
}

// Services are the domain services behind the API, built once per process
// and shared with background workers.
type Services struct {
	Events    event.Log
	Groups    *multisig.Registry
	Wallets   *wallet.Service
	Identity  *identity.Service
	Auth      *auth.Service
	Principal identity.Repository
}

// NewServices picks the Postgres backends when a pool is configured and
// the in-memory ones otherwise.
func NewServices(d Deps) *Services {
	var (
		tx           storage.Transactor
		events       event.Log
		groupRepo    multisig.Repository
		walletRepo   wallet.Repository
		ledgerImpl   ledger.Ledger
		identityRepo identity.Repository
	)
	if d.DB != nil {
		tx = storage.NewPostgresTransactor(d.DB)
		events = event.NewPostgresLog(d.DB)
		groupRepo = multisig.NewPostgresRepository(d.DB)
		walletRepo = wallet.NewPostgresRepository(d.DB)
		ledgerImpl = ledger.NewPostgresLedger(d.DB)
		identityRepo = identity.NewPostgresRepository(d.DB)
	} else {
		tx = storage.NewMemoryTransactor()
		events = event.NewMemoryLog()
		groupRepo = multisig.NewMemoryRepository()
		walletRepo = wallet.NewMemoryRepository()
		ledgerImpl = ledger.NewInMemory()
		identityRepo = identity.NewMemoryRepository()
	}

	groups := multisig.NewRegistry(groupRepo, tx, events, d.Metrics)
	return &Services{
		Events:    events,
		Groups:    groups,
		Wallets:   wallet.NewService(walletRepo, groups, ledgerImpl, tx, events, d.Metrics),
		Identity:  identity.NewService(identityRepo),
		Auth:      auth.NewService(d.Cfg, identityRepo),
		Principal: identityRepo,
	}
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps, s *Services) error {
	// Enforce DB/Redis presence in production, even though main also checks.
	if d.Cfg.IsProduction() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}
	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	if d.Cfg.IsProduction() {
		app.Use(middleware.Audit(d.Logger))
	} else {
		app.Use(logger.New(logger.Config{
			Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
			TimeFormat: "15:04:05",
			TimeZone:   "Local",
		}))
	}
	app.Use(middleware.Metrics(d.Metrics))

	// Health and scraping
	RegisterHealthRoutes(app, d)
	if d.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": middleware.RequestIDFrom(c),
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	// Public routes
	RegisterIdentityRoutes(api, identity.NewHandler(s.Identity))
	RegisterAuthRoutes(api, auth.NewHandler(s.Identity, s.Auth), middleware.LoginRateLimit(d.Cache, d.Cfg.LoginPerMinute))
	RegisterEventRoutes(api, event.NewHandler(s.Events))

	// Protected routes
	protected := api.Group("", middleware.JWTAuth(s.Auth), middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	RegisterMultisigRoutes(protected, multisig.NewHandler(s.Groups))
	RegisterWalletRoutes(protected, wallet.NewHandler(s.Wallets))

	return nil
}
