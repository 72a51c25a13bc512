package analytics

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"fintrack/internal/advice"
	"fintrack/internal/core"
	"fintrack/internal/log"
)

func newTestEngine(gw advice.Gateway, settings Settings) *Engine {
	return New(settings, gw, nil, WithClock(fixedClock))
}

func TestProjectScenarioD(t *testing.T) {
	txs := []core.Transaction{
		income("salary", "1000", time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)),
		expense("groceries", "100", time.Date(2025, 6, 5, 8, 0, 0, 0, time.UTC)),
		expense("groceries", "5000", time.Date(2025, 5, 30, 8, 0, 0, 0, time.UTC)),
	}

	p := Project(txs, testNow)
	if p.DaysRemaining != 20 || p.DaysInMonth != 30 {
		t.Fatalf("days = %d/%d", p.DaysRemaining, p.DaysInMonth)
	}
	if !p.AverageDaily.Equal(dec("10.00")) || !p.PredictedMonthly.Equal(dec("300.00")) {
		t.Fatalf("avg/predicted = %s/%s", p.AverageDaily, p.PredictedMonthly)
	}
	if !p.CurrentBalance.Equal(dec("900")) || !p.PredictedEnd.Equal(dec("700")) {
		t.Fatalf("balance/end = %s/%s", p.CurrentBalance, p.PredictedEnd)
	}
	if !p.SafeDailyBudget.Equal(dec("45.00")) {
		t.Fatalf("safe budget = %s", p.SafeDailyBudget)
	}
	if len(p.Predictions) != 20 {
		t.Fatalf("expected 20 predictions, got %d", len(p.Predictions))
	}
	first, last := p.Predictions[0], p.Predictions[19]
	if first.Date != "2025-06-11" || !first.PredictedBalance.Equal(dec("890")) {
		t.Fatalf("first prediction %+v", first)
	}
	if last.Date != "2025-06-30" || !last.PredictedBalance.Equal(p.PredictedEnd) {
		t.Fatalf("last prediction %+v should land on the predicted end balance", last)
	}
}

func TestProjectLastDayOfMonth(t *testing.T) {
	now := time.Date(2025, time.June, 30, 20, 0, 0, 0, time.UTC)
	txs := []core.Transaction{
		income("salary", "1000", time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)),
		expense("groceries", "300", time.Date(2025, 6, 5, 8, 0, 0, 0, time.UTC)),
	}

	p := Project(txs, now)
	if p.DaysRemaining != 0 || len(p.Predictions) != 0 {
		t.Fatalf("expected nothing remaining, got %d days and %d predictions", p.DaysRemaining, len(p.Predictions))
	}
	if !p.SafeDailyBudget.IsZero() {
		t.Fatalf("safe budget = %s, want 0", p.SafeDailyBudget)
	}
	if !p.PredictedEnd.Equal(dec("700")) {
		t.Fatalf("predicted end = %s", p.PredictedEnd)
	}
}

func TestProjectNegativeBalance(t *testing.T) {
	p := Project([]core.Transaction{expense("groceries", "100", daysAgo(1))}, testNow)
	if !p.SafeDailyBudget.IsZero() {
		t.Fatalf("safe budget must not go negative, got %s", p.SafeDailyBudget)
	}
	if !p.PredictedEnd.Equal(dec("-300")) {
		t.Fatalf("predicted end = %s", p.PredictedEnd)
	}
}

func TestProjectRoundsAverageHalfUp(t *testing.T) {
	// 100 / 3 days = 33.333 -> 33.33
	now := time.Date(2025, time.February, 3, 10, 0, 0, 0, time.UTC)
	p := Project([]core.Transaction{expense("groceries", "100", now)}, now)
	if !p.AverageDaily.Equal(dec("33.33")) || !p.PredictedMonthly.Equal(dec("933.24")) {
		t.Fatalf("avg/predicted = %s/%s", p.AverageDaily, p.PredictedMonthly)
	}
	if p.DaysRemaining != 25 {
		t.Fatalf("days remaining = %d", p.DaysRemaining)
	}
}

func TestProjectDaysRemainingBounds(t *testing.T) {
	for day := 1; day <= 31; day++ {
		now := time.Date(2025, time.January, day, 12, 0, 0, 0, time.UTC)
		p := Project(nil, now)
		if p.DaysRemaining < 0 || p.DaysRemaining > p.DaysInMonth-1 {
			t.Fatalf("day %d: days remaining %d out of range", day, p.DaysRemaining)
		}
		if p.SafeDailyBudget.IsNegative() {
			t.Fatalf("day %d: negative safe budget", day)
		}
	}
}

func forecastInput() []core.Transaction {
	return []core.Transaction{
		income("salary", "1000", time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)),
		expense("groceries", "100", time.Date(2025, 6, 5, 8, 0, 0, 0, time.UTC)),
	}
}

func TestComputeForecastUsesAdvice(t *testing.T) {
	var prompt string
	gw := advice.Func(func(_ context.Context, p string) advice.Result {
		prompt = p
		return advice.Result{Text: "Nice work."}
	})

	got := newTestEngine(gw, Settings{}).ComputeForecast(context.Background(), forecastInput(), testCategories)
	if got.Recommendation != "Nice work." {
		t.Fatalf("recommendation = %q", got.Recommendation)
	}
	want := "Monthly income: 1000.00, Monthly expenses so far: 100.00, Days remaining: 20, " +
		"Average daily spending: 10.00, Predicted end-of-month balance: 700.00. " +
		"Number of anomalous transactions: 0. Give brief budget advice."
	if prompt != want {
		t.Fatalf("prompt = %q\nwant     %q", prompt, want)
	}
	if got.DaysRemaining != 20 || len(got.Predictions) != 20 || got.Anomalies == nil {
		t.Fatalf("unexpected forecast %+v", got)
	}
}

func TestComputeForecastScenarioE(t *testing.T) {
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })

	failing := map[string]advice.Gateway{
		"error": advice.Func(func(context.Context, string) advice.Result {
			return advice.Result{Err: errors.New("503")}
		}),
		"empty text": advice.Func(func(context.Context, string) advice.Result {
			return advice.Result{Text: "   "}
		}),
		"ignores context": advice.Func(func(context.Context, string) advice.Result {
			<-release
			return advice.Result{Text: "too late"}
		}),
		"respects context": advice.Func(func(ctx context.Context, _ string) advice.Result {
			<-ctx.Done()
			return advice.Result{Err: ctx.Err()}
		}),
		"panics": advice.Func(func(context.Context, string) advice.Result {
			panic("provider bug")
		}),
		"disabled": advice.Disabled{},
	}

	for name, gw := range failing {
		t.Run(name, func(t *testing.T) {
			e := newTestEngine(gw, Settings{AdviceTimeout: 20 * time.Millisecond})

			positive := e.ComputeForecast(context.Background(), forecastInput(), testCategories)
			wantPositive := "✅ You're on track! Keep your daily spending around 45.00 to maintain a positive balance."
			if positive.Recommendation != wantPositive {
				t.Fatalf("positive fallback = %q", positive.Recommendation)
			}

			overspent := []core.Transaction{expense("groceries", "100", daysAgo(1))}
			negative := e.ComputeForecast(context.Background(), overspent, testCategories)
			if !strings.HasPrefix(negative.Recommendation, "⚠️ Warning: At your current spending rate") ||
				!strings.Contains(negative.Recommendation, "limit daily spending to 0.00 or less") {
				t.Fatalf("negative fallback = %q", negative.Recommendation)
			}
		})
	}
}

func TestComputeForecastLogsProviderFailure(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(log.Config{Format: "json", Output: &buf})
	gw := advice.Func(func(context.Context, string) advice.Result {
		return advice.Result{Err: errors.New("quota exceeded")}
	})
	New(Settings{}, gw, logger, WithClock(fixedClock)).ComputeForecast(context.Background(), forecastInput(), testCategories)

	for _, want := range []string{
		`"component":"advice"`,
		`"operation":"advise"`,
		`"error_type":"provider_error"`,
		`"error":"quota exceeded"`,
	} {
		if !strings.Contains(buf.String(), want) {
			t.Fatalf("fallback log missing %s: %s", want, buf.String())
		}
	}
}

func TestComputeForecastCallerCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gw := advice.Func(func(ctx context.Context, _ string) advice.Result {
		<-ctx.Done()
		return advice.Result{Err: ctx.Err()}
	})
	got := newTestEngine(gw, Settings{}).ComputeForecast(ctx, forecastInput(), testCategories)
	if !strings.HasPrefix(got.Recommendation, "✅") {
		t.Fatalf("expected fallback, got %q", got.Recommendation)
	}
}

func TestComputeForecastReportsAnomalies(t *testing.T) {
	txs := []core.Transaction{
		expense("transport", "50", daysAgo(40)),
		expense("transport", "50", daysAgo(35)),
		expense("transport", "50", daysAgo(2)),
		expense("transport", "200", daysAgo(1)),
	}
	var prompt string
	gw := advice.Func(func(_ context.Context, p string) advice.Result {
		prompt = p
		return advice.Result{Text: "ok"}
	})

	got := newTestEngine(gw, Settings{}).ComputeForecast(context.Background(), txs, testCategories)
	if len(got.Anomalies) != 1 {
		t.Fatalf("expected one anomaly over the full history, got %+v", got.Anomalies)
	}
	if !strings.Contains(prompt, "Number of anomalous transactions: 1.") {
		t.Fatalf("prompt does not report anomalies: %q", prompt)
	}
}

func TestFallbackRecommendation(t *testing.T) {
	if got := FallbackRecommendation(dec("0"), dec("12.5")); !strings.Contains(got, "around 12.50") {
		t.Fatalf("zero balance should be on track, got %q", got)
	}
	if got := FallbackRecommendation(dec("-0.01"), dec("0")); !strings.HasPrefix(got, "⚠️ Warning") {
		t.Fatalf("negative balance should warn, got %q", got)
	}
}
