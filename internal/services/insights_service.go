package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/analytics"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/ports"
)

const publishTimeout = 10 * time.Second

// AlertPublisher fans anomaly alerts out to asynchronous consumers.
type AlertPublisher interface {
	PublishAnomalyAlerts(ctx context.Context, userID int64, alerts []core.AnomalyAlert) error
}

// InsightsService loads a user's data and runs it through the analytics engine.
type InsightsService struct {
	source     ports.DataSource
	categories ports.CategoryLister
	engine     *analytics.Engine
	publisher  AlertPublisher
	logger     *log.Logger
	publishing sync.WaitGroup
}

// NewInsightsService wires the service. categories overrides the source's
// catalogue (typically a cache in front of it) and publisher may be nil.
func NewInsightsService(source ports.DataSource, categories ports.CategoryLister, engine *analytics.Engine, publisher AlertPublisher, logger *log.Logger) *InsightsService {
	if categories == nil {
		categories = source
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &InsightsService{
		source:     source,
		categories: categories,
		engine:     engine,
		publisher:  publisher,
		logger:     logger.WithComponent(log.ComponentInsights),
	}
}

// Dashboard computes the dashboard statistics of userID.
func (s *InsightsService) Dashboard(ctx context.Context, userID int64) (core.DashboardStats, error) {
	if userID <= 0 {
		return core.DashboardStats{}, core.ErrInvalidUser
	}
	start := time.Now()

	var (
		txs   []core.Transaction
		goals []core.Goal
		cats  []core.Category
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		txs, err = s.source.ListTransactions(gctx, userID)
		return wrap("load transactions", err)
	})
	g.Go(func() (err error) {
		goals, err = s.source.ListGoals(gctx, userID)
		return wrap("load goals", err)
	})
	g.Go(func() (err error) {
		cats, err = s.categories.ListCategories(gctx)
		return wrap("load categories", err)
	})
	if err := g.Wait(); err != nil {
		return core.DashboardStats{}, err
	}

	stats := s.engine.ComputeDashboard(txs, goals, cats)
	s.logger.InfoContext(ctx, "dashboard computed",
		log.FieldUserID, userID,
		log.FieldCount, stats.TotalTransactions,
		log.FieldOperation, log.OpDashboard,
		log.FieldDuration, time.Since(start).Milliseconds())
	return stats, nil
}

// Forecast projects the end of the current month for userID and publishes
// any anomalies found in the background. Publishing failures are logged, not
// returned, and never delay the response.
func (s *InsightsService) Forecast(ctx context.Context, userID int64) (core.ForecastResult, error) {
	if userID <= 0 {
		return core.ForecastResult{}, core.ErrInvalidUser
	}
	start := time.Now()

	var (
		txs  []core.Transaction
		cats []core.Category
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		txs, err = s.source.ListTransactions(gctx, userID)
		return wrap("load transactions", err)
	})
	g.Go(func() (err error) {
		cats, err = s.categories.ListCategories(gctx)
		return wrap("load categories", err)
	})
	if err := g.Wait(); err != nil {
		return core.ForecastResult{}, err
	}

	result := s.engine.ComputeForecast(ctx, txs, cats)
	s.publishAnomalies(ctx, userID, result.Anomalies)

	s.logger.InfoContext(ctx, "forecast computed",
		log.FieldUserID, userID,
		"anomalies", len(result.Anomalies),
		"days_remaining", result.DaysRemaining,
		log.FieldOperation, log.OpForecast,
		log.FieldDuration, time.Since(start).Milliseconds())
	return result, nil
}

// Wait blocks until every anomaly publish started by Forecast has finished.
func (s *InsightsService) Wait() {
	s.publishing.Wait()
}

func (s *InsightsService) publishAnomalies(ctx context.Context, userID int64, alerts []core.AnomalyAlert) {
	if len(alerts) == 0 {
		return
	}
	if s.publisher == nil {
		s.logger.DebugContext(ctx, "no alert publisher configured, skipping anomaly fan-out",
			log.FieldUserID, userID,
			log.FieldCount, len(alerts))
		return
	}

	// the request context ends with the response
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	s.publishing.Add(1)
	go func() {
		defer s.publishing.Done()
		defer cancel()
		if err := s.publisher.PublishAnomalyAlerts(ctx, userID, alerts); err != nil {
			s.logger.Failure(ctx, "failed to publish anomaly alerts", err,
				log.FieldUserID, userID,
				log.FieldCount, len(alerts),
				log.FieldOperation, log.OpPublish)
		}
	}()
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}
