package analytics

import (
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/advice"
	"fintrack/internal/core"
	"fintrack/internal/log"
)

// DefaultAdviceTimeout bounds the advice request made by a forecast.
const DefaultAdviceTimeout = 10 * time.Second

// Settings tunes the engine. Zero values fall back to defaults.
type Settings struct {
	TrendMonths       int
	AnomalyFactor     decimal.Decimal
	AnomalyMinSamples int
	AdviceTimeout     time.Duration
}

func DefaultSettings() Settings {
	rule := DefaultAnomalyRule()
	return Settings{
		TrendMonths:       DefaultTrendMonths,
		AnomalyFactor:     rule.Factor,
		AnomalyMinSamples: rule.MinSamples,
		AdviceTimeout:     DefaultAdviceTimeout,
	}
}

func (s Settings) withDefaults() Settings {
	def := DefaultSettings()
	if s.TrendMonths <= 0 {
		s.TrendMonths = def.TrendMonths
	}
	if !s.AnomalyFactor.IsPositive() {
		s.AnomalyFactor = def.AnomalyFactor
	}
	if s.AnomalyMinSamples <= 0 {
		s.AnomalyMinSamples = def.AnomalyMinSamples
	}
	if s.AdviceTimeout <= 0 {
		s.AdviceTimeout = def.AdviceTimeout
	}
	return s
}

// Clock returns the current time; its location decides calendar boundaries.
type Clock func() time.Time

type Option func(*Engine)

// WithClock fixes "today", mostly for tests.
func WithClock(c Clock) Option {
	return func(e *Engine) {
		if c != nil {
			e.now = c
		}
	}
}

// Engine computes dashboards and forecasts for one user's data at a time.
// It holds no per-user state and is safe for concurrent use.
type Engine struct {
	settings Settings
	advisor  advice.Gateway
	now      Clock
	logger   *log.Logger
}

func New(settings Settings, advisor advice.Gateway, logger *log.Logger, opts ...Option) *Engine {
	if advisor == nil {
		advisor = advice.Disabled{}
	}
	if logger == nil {
		logger = log.Discard()
	}
	e := &Engine{
		settings: settings.withDefaults(),
		advisor:  advisor,
		now:      time.Now,
		logger:   logger.WithComponent(log.ComponentAnalytics),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Settings() Settings { return e.settings }

func (e *Engine) anomalyRule() AnomalyRule {
	return AnomalyRule{Factor: e.settings.AnomalyFactor, MinSamples: e.settings.AnomalyMinSamples}
}

// ComputeDashboard summarises the given data. It never fails; empty input
// yields zero totals, empty lists and TrendMonths zero-valued trend points.
func (e *Engine) ComputeDashboard(txs []core.Transaction, goals []core.Goal, categories []core.Category) core.DashboardStats {
	now := e.now()
	idx := core.IndexCategories(categories)
	month := MonthWindow(now.Year(), now.Month(), now.Location())

	all := ComputeTotals(txs, nil)
	monthly := ComputeTotals(txs, &month)

	stats := core.DashboardStats{
		TotalIncome:       all.Income,
		TotalExpenses:     all.Expenses,
		Balance:           all.Balance,
		MonthlyIncome:     monthly.Income,
		MonthlyExpenses:   monthly.Expenses,
		TotalTransactions: len(txs),
		CategoryBreakdown: Breakdown(txs, idx, all.Expenses),
		MonthlyTrends:     Trend(txs, now, e.settings.TrendMonths),
		GoalProgress:      EvaluateGoals(goals, txs, idx),
	}

	e.logger.Debug("dashboard computed",
		log.FieldCount, len(txs),
		"categories", len(stats.CategoryBreakdown),
		"goals", len(stats.GoalProgress))
	return stats
}
