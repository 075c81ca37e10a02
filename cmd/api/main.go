package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/mlevasseur/batisuivi-backend/api/routes"
	"github.com/mlevasseur/batisuivi-backend/internal/contracts"
	"github.com/mlevasseur/batisuivi-backend/internal/export"
	"github.com/mlevasseur/batisuivi-backend/internal/progress"
	"github.com/mlevasseur/batisuivi-backend/internal/quotes"
	"github.com/mlevasseur/batisuivi-backend/internal/sites"
	"github.com/mlevasseur/batisuivi-backend/pkg/config"
	"github.com/mlevasseur/batisuivi-backend/pkg/db"
	"github.com/mlevasseur/batisuivi-backend/pkg/logger"
	"github.com/mlevasseur/batisuivi-backend/pkg/metrics"
	"github.com/mlevasseur/batisuivi-backend/pkg/migrate"
	"github.com/mlevasseur/batisuivi-backend/pkg/outbox"
	"github.com/mlevasseur/batisuivi-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	engineMetrics := metrics.NewEngineMetrics(registry)

	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	siteService, err := sites.NewService(sites.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create site service", err)
		os.Exit(1)
	}

	contractService, err := contracts.NewService(contracts.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create contract service", err)
		os.Exit(1)
	}

	progressService, err := progress.NewService(
		progress.NewRepository(dbClient.DB()),
		dbClient,
		outboxService,
		engineMetrics,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create progress service", err)
		os.Exit(1)
	}

	quoteService, err := quotes.NewService(
		quotes.NewRepository(dbClient.DB()),
		dbClient,
		progressService,
		outboxService,
		engineMetrics,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create quote service", err)
		os.Exit(1)
	}

	exportService, err := export.NewService(
		progressService,
		contractService,
		siteService,
		export.NewGenerator(cfg.Export.CompanyName, cfg.Export.FooterNote),
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create export service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:   cfg,
			Logger:   logg,
			Redis:    redisClient,
			Registry: registry,
			ReadyProbes: []func() error{
				func() error { return dbClient.Ping(context.Background()) },
				func() error { return redisClient.Ping(context.Background()) },
			},
			SiteService:   siteService,
			ContractSvc:   contractService,
			ProgressSvc:   progressService,
			QuoteService:  quoteService,
			ExportService: exportService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
