// Package analytics turns a user's transactions, goals and categories into
// dashboard statistics and an end-of-month forecast.
//
// Everything here is a pure function of its inputs and the injected clock,
// except the single advice request made while forecasting.
package analytics

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// Window is an inclusive time range.
type Window struct {
	Start time.Time
	End   time.Time
}

// DayWindow spans from the start of start's day to the last instant of end's day.
func DayWindow(start, end time.Time) Window {
	return Window{Start: startOfDay(start), End: endOfDay(end)}
}

// MonthWindow covers one calendar month in loc.
func MonthWindow(year int, month time.Month, loc *time.Location) Window {
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	return DayWindow(first, first.AddDate(0, 1, -1))
}

// Contains reports whether t falls inside the window. A zero t never does.
func (w Window) Contains(t time.Time) bool {
	if t.IsZero() {
		return false
	}
	return !t.Before(w.Start) && !t.After(w.End)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

// Sum adds up the amounts of transactions with the given sign.
// A nil window sums everything, dated or not; otherwise undated transactions are skipped.
func Sum(txs []core.Transaction, sign core.Sign, w *Window) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		if tx.Sign != sign {
			continue
		}
		if w != nil && !w.Contains(tx.Timestamp) {
			continue
		}
		total = total.Add(tx.Amount)
	}
	return total
}

// Totals is income, expenses and their difference over a window.
type Totals struct {
	Income   decimal.Decimal
	Expenses decimal.Decimal
	Balance  decimal.Decimal
}

func ComputeTotals(txs []core.Transaction, w *Window) Totals {
	income := Sum(txs, core.Income, w)
	expenses := Sum(txs, core.Expense, w)
	return Totals{Income: income, Expenses: expenses, Balance: income.Sub(expenses)}
}

// Breakdown groups expenses by category, largest first. Uncategorised
// expenses get no group but still count towards totalExpenses, so the
// percentages may add up to less than 100.
func Breakdown(txs []core.Transaction, categories core.CategoryIndex, totalExpenses decimal.Decimal) []core.CategoryBreakdown {
	totals := make(map[string]decimal.Decimal)
	for _, tx := range txs {
		if !tx.IsExpense() || !tx.HasCategory() {
			continue
		}
		totals[tx.CategoryID] = totals[tx.CategoryID].Add(tx.Amount)
	}

	out := make([]core.CategoryBreakdown, 0, len(totals))
	for id, total := range totals {
		name, color := categories.NameAndColor(id)
		out = append(out, core.CategoryBreakdown{
			CategoryID:   id,
			CategoryName: name,
			Color:        color,
			Total:        total,
			Percentage:   core.Float(core.Percentage(total, totalExpenses)),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Total.Cmp(out[j].Total); c != 0 {
			return c > 0
		}
		return out[i].CategoryID < out[j].CategoryID
	})
	return out
}
