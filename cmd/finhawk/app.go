package main

import (
	"net/http"
	"time"

	"github.com/carlosvigna/finhawk-bff/internal/config"
	"github.com/carlosvigna/finhawk-bff/internal/domain"
	"github.com/carlosvigna/finhawk-bff/internal/infra/cache"
	"github.com/carlosvigna/finhawk-bff/internal/infra/client"
	"github.com/carlosvigna/finhawk-bff/internal/infra/observability"
	"github.com/carlosvigna/finhawk-bff/internal/infra/resilience"
	"github.com/carlosvigna/finhawk-bff/internal/service"

	"go.uber.org/zap"
)

// app is the wired dependency graph shared by serve and report.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	metrics  *observability.Metrics
	api      *client.API
	cache    *cache.InMemory[[]domain.BillRecord]
	service  *service.DashboardService
	verifier *service.TokenVerifier
}

func loadConfig() (*config.Config, error) {
	// A missing .env file is fine.
	_ = config.LoadDotEnv(envFile)
	return config.Load(configFile)
}

func newApp(cfg *config.Config, logger *zap.Logger) *app {
	metrics := observability.NewMetrics()

	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}
	cb := resilience.NewCircuitBreaker("finhawk-api", logger)
	guard := resilience.NewGuard(cb, resilienceCfg)

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	api := client.NewAPI(httpClient, cfg.FinHawkAPIURL, guard)

	billCache := cache.New[[]domain.BillRecord](cfg.CacheTTL)

	svc := service.NewDashboardService(
		client.NewBillsClient(api, cfg.Location),
		client.NewAccountsClient(api),
		billCache,
		metrics,
		logger,
		service.Options{
			Location:      cfg.Location,
			TimelineDays:  cfg.TimelineDays,
			MonthsBack:    cfg.MonthsBack,
			MonthsForward: cfg.MonthsForward,
			Now:           time.Now,
		},
	)

	return &app{
		cfg:      cfg,
		logger:   logger,
		metrics:  metrics,
		api:      api,
		cache:    billCache,
		service:  svc,
		verifier: service.NewTokenVerifier(cfg.JWTSecret),
	}
}

func (a *app) Close() {
	a.cache.Close()
}
