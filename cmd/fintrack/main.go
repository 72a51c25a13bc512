package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/advice"
	"fintrack/internal/amqp"
	"fintrack/internal/analytics"
	"fintrack/internal/cache"
	"fintrack/internal/cli"
	"fintrack/internal/core"
	apphttp "fintrack/internal/http"
	"fintrack/internal/log"
	"fintrack/internal/services"
)

const categoryCacheEntries = 16

func main() {
	cfg, logger := cli.Bootstrap(log.ComponentApp)
	decimal.MarshalJSONWithoutQuotes = true

	ctx, stop := cli.ShutdownContext()
	defer stop()

	res := cli.MustOpenBackend(ctx, cfg, logger, true)
	defer cli.Close(logger, res)

	advisor, err := advice.New(ctx, advice.Config{
		Provider:        cfg.AdviceProvider,
		Model:           cfg.AdviceModel,
		AnthropicAPIKey: cfg.AnthropicAPIKey,
		GeminiAPIKey:    cfg.GeminiAPIKey,
	})
	if err != nil {
		logger.Error("Failed to initialize advice provider", log.FieldError, err, log.FieldProvider, cfg.AdviceProvider)
		os.Exit(1)
	}

	engine := analytics.New(analytics.Settings{
		TrendMonths:   cfg.TrendMonths,
		AnomalyFactor: cfg.AnomalyFactorDecimal(),
		AdviceTimeout: cfg.AdviceTimeout,
	}, advisor, logger)

	catCache, err := cache.New[[]core.Category](cfg.CacheKind, categoryCacheEntries, cfg.CategoryCacheTTL)
	if err != nil {
		logger.Error("Failed to initialize category cache", log.FieldError, err)
		os.Exit(1)
	}
	if closer, ok := catCache.(interface{ Close() }); ok {
		defer closer.Close()
	}
	cacheManager := cache.NewManager(logger)
	cacheManager.Register(catCache)
	cacheManager.StartCleanup(cfg.CategoryCacheTTL)
	defer cacheManager.Stop()

	// Alert publishing is optional; the API keeps serving without a broker.
	var publisher services.AlertPublisher
	if cfg.AMQPEnabled() {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Warn("AMQP unavailable, anomaly alerts will not be published", log.FieldError, err)
		} else {
			defer client.Close()
			publisher = client
			logger.Info("AMQP publisher initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	insights := services.NewInsightsService(res.Backend, cache.NewCategories(res.Backend, catCache), engine, publisher, logger)
	srv := apphttp.NewServer(":"+cfg.Port, insights, res.Backend, cfg.CORSOrigin, logger)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting fintrack server",
			"port", cfg.Port,
			log.FieldBackend, cfg.DataBackend,
			log.FieldProvider, advisor.Name())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-errCh:
		if err != nil {
			logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
			os.Exit(1)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", log.FieldError, err)
	}
	// in-flight alert publishes finish before the AMQP client closes
	insights.Wait()
	logger.Info("Server stopped gracefully")
}
