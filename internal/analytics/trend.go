package analytics

import (
	"time"

	"fintrack/internal/core"
)

// DefaultTrendMonths is how many months the dashboard trend covers.
const DefaultTrendMonths = 6

const trendLabelLayout = "Jan 2006"

// Trend returns per-month income and expenses for the months months ending
// with now's month, oldest first. Months with no activity are zero.
func Trend(txs []core.Transaction, now time.Time, months int) []core.MonthlyTrend {
	if months <= 0 {
		months = DefaultTrendMonths
	}
	current := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	out := make([]core.MonthlyTrend, 0, months)
	for i := months - 1; i >= 0; i-- {
		month := current.AddDate(0, -i, 0)
		w := MonthWindow(month.Year(), month.Month(), now.Location())
		out = append(out, core.MonthlyTrend{
			Month:    month.Format(trendLabelLayout),
			Income:   Sum(txs, core.Income, &w),
			Expenses: Sum(txs, core.Expense, &w),
		})
	}
	return out
}
