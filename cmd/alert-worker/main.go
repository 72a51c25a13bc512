package main

import (
	"context"
	"errors"
	"os"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/cli"
	"fintrack/internal/log"
	"fintrack/internal/worker"
)

const statsInterval = time.Minute

func main() {
	cfg, logger := cli.Bootstrap(log.ComponentWorker)
	if !cfg.AMQPEnabled() {
		logger.Error("AMQP_URL is required for the alert worker")
		os.Exit(1)
	}
	logger.Info("Starting alert-worker")

	ctx, cancel := cli.ShutdownContext()
	defer cancel()

	// The worker only records notifications, demo data is not needed.
	res := cli.MustOpenBackend(ctx, cfg, logger, false)
	defer cli.Close(logger, res)

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer client.Close()

	alerts := worker.NewAlertWorker(res.Backend, worker.NewLogNotifier(logger), logger)

	go func() {
		ticker := time.NewTicker(statsInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				st := alerts.Stats()
				logger.Info("Alert worker stats",
					"notified", st.Notified,
					"duplicates", st.Duplicates,
					"failed", st.Failed)
			}
		}
	}()

	logger.Info("Consuming anomaly alerts", "queue", cfg.AMQPQueue, log.FieldBackend, cfg.DataBackend)
	if err := client.ConsumeAnomalyAlerts(ctx, alerts.HandleAlert); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", log.FieldError, err)
		os.Exit(1)
	}

	st := alerts.Stats()
	logger.Info("Alert worker stopped",
		"notified", st.Notified,
		"duplicates", st.Duplicates,
		"failed", st.Failed)
}
