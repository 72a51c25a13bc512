package analytics

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

func TestComputeDashboard(t *testing.T) {
	txs := []core.Transaction{
		income("salary", "3500", daysAgo(30)),
		expense("groceries", "150", daysAgo(25)),
		expense("transport", "50", daysAgo(20)),
		expense("groceries", "60", daysAgo(3)),
		income("salary", "200", daysAgo(1)),
		expense("", "10", time.Time{}),
	}
	goals := []core.Goal{juneGoal("g1", "groceries", "500")}

	got := newTestEngine(nil, Settings{}).ComputeDashboard(txs, goals, testCategories)

	if !got.TotalIncome.Equal(dec("3700")) || !got.TotalExpenses.Equal(dec("270")) || !got.Balance.Equal(dec("3430")) {
		t.Fatalf("totals %s/%s/%s", got.TotalIncome, got.TotalExpenses, got.Balance)
	}
	if !got.MonthlyIncome.Equal(dec("200")) || !got.MonthlyExpenses.Equal(dec("60")) {
		t.Fatalf("monthly %s/%s", got.MonthlyIncome, got.MonthlyExpenses)
	}
	if got.TotalTransactions != 6 {
		t.Fatalf("transactions = %d", got.TotalTransactions)
	}
	if len(got.CategoryBreakdown) != 2 || got.CategoryBreakdown[0].CategoryName != "Groceries" {
		t.Fatalf("breakdown %+v", got.CategoryBreakdown)
	}
	if len(got.MonthlyTrends) != DefaultTrendMonths || got.MonthlyTrends[5].Month != "Jun 2025" {
		t.Fatalf("trends %+v", got.MonthlyTrends)
	}
	if len(got.GoalProgress) != 1 || !got.GoalProgress[0].CurrentSpent.Equal(dec("60")) {
		t.Fatalf("goals %+v", got.GoalProgress)
	}
}

func TestComputeDashboardEmptyInput(t *testing.T) {
	got := newTestEngine(nil, Settings{TrendMonths: 3}).ComputeDashboard(nil, nil, nil)

	if !got.TotalIncome.IsZero() || !got.Balance.IsZero() || got.TotalTransactions != 0 {
		t.Fatalf("expected zero aggregates, got %+v", got)
	}
	if len(got.MonthlyTrends) != 3 {
		t.Fatalf("expected configured trend length, got %d", len(got.MonthlyTrends))
	}

	raw, err := json.Marshal(got)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"categoryBreakdown", "goalProgress"} {
		if list, ok := decoded[key].([]any); !ok || len(list) != 0 {
			t.Fatalf("%s should serialise as an empty list, got %v", key, decoded[key])
		}
	}
}

func TestSettingsDefaults(t *testing.T) {
	s := newTestEngine(nil, Settings{}).Settings()
	if s.TrendMonths != 6 || !s.AnomalyFactor.Equal(decimal.RequireFromString("1.2")) ||
		s.AnomalyMinSamples != 2 || s.AdviceTimeout != DefaultAdviceTimeout {
		t.Fatalf("unexpected defaults %+v", s)
	}
}

func TestEngineConcurrentUse(t *testing.T) {
	e := newTestEngine(nil, Settings{})
	txs := forecastInput()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			stats := e.ComputeDashboard(txs, nil, testCategories)
			if !stats.Balance.Equal(dec("900")) {
				t.Errorf("balance = %s", stats.Balance)
			}
		}()
	}
	wg.Wait()
}
