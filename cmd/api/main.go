package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"example.com/wellness/internal/api"
	"example.com/wellness/internal/config"
	"example.com/wellness/internal/health"
	"example.com/wellness/internal/ingest"
	"example.com/wellness/internal/insights"
	"example.com/wellness/internal/outbox"
	persistence "example.com/wellness/internal/persistence/postgres"
	httptransport "example.com/wellness/internal/transport/http"
)

func main() {
	if err := run(); err != nil {
		slog.Error("wellness api stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	aliases := ingest.DefaultAliases()
	if cfg.HeaderAliasesPath != "" {
		overlay, err := ingest.LoadAliasOverlay(cfg.HeaderAliasesPath)
		if err != nil {
			return err
		}
		aliases = aliases.Merge(overlay)
	}
	parser := ingest.NewParser(ingest.NewResolver(aliases))

	generator := insights.NewClient(insights.Config{
		APIKey:        cfg.InsightsAPIKey,
		Model:         cfg.InsightsModel,
		BaseURL:       cfg.InsightsBaseURL,
		Timeout:       cfg.InsightsTimeout,
		MaxRetries:    cfg.InsightsMaxRetries,
		RatePerMinute: cfg.InsightsRatePerMinute,
	}, insights.WithLogger(logger))
	if cfg.InsightsAPIKey == "" {
		logger.Warn("INSIGHTS_API_KEY not set; insight requests will fail")
	}

	opts := []health.Option{health.WithInsights(generator), health.WithLogger(logger)}

	var dispatcher *outbox.Dispatcher
	if cfg.DurableStorage() {
		pool, err := pgxpool.New(ctx, cfg.PostgresURL)
		if err != nil {
			return err
		}
		defer pool.Close()

		opts = append(opts, health.WithRecorder(persistence.NewRepository(pool, cfg.SummaryTopic)))

		publisher := outbox.NewPublisher(cfg.KafkaBrokers)
		defer publisher.Close()

		dispatcher = outbox.NewDispatcher(pool, publisher, outbox.NewSchemaRegistryClient(cfg.SchemaRegistryURL),
			cfg.OutboxPollInterval, cfg.OutboxBatchSize, outbox.WithLogger(logger))
	} else {
		logger.Info("POSTGRES_URL not set; summaries are kept in memory only")
	}

	service := health.NewService(parser, opts...)
	if err := service.Restore(ctx); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	if dispatcher != nil {
		g.Go(func() error {
			dispatcher.Start(gctx)
			return nil
		})
	}

	mux := http.NewServeMux()
	api.NewHandler(service, api.WithMaxUploadBytes(cfg.MaxUploadBytes), api.WithLogger(logger)).RegisterRoutes(mux)
	mux.Handle("/metrics", promhttp.Handler())

	handler := httptransport.RequestLogger(logger)(httptransport.CORS(cfg.CORSAllowedOrigin)(mux))
	server := httptransport.NewServer(httptransport.DefaultServerConfig(cfg.HTTPAddress), handler)

	g.Go(func() error {
		logger.Info("wellness api listening", slog.String("address", cfg.HTTPAddress))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
