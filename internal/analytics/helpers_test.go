package analytics

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// testNow is June 10th, so the month has 30 days and 20 remain.
var testNow = time.Date(2025, time.June, 10, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func daysAgo(n int) time.Time { return testNow.AddDate(0, 0, -n) }

var txSeq int

func tx(sign core.Sign, category, amount string, at time.Time) core.Transaction {
	txSeq++
	return core.Transaction{
		ID:         fmt.Sprintf("tx-%d", txSeq),
		UserID:     1,
		Amount:     dec(amount),
		Sign:       sign,
		Timestamp:  at,
		CategoryID: category,
	}
}

func expense(category, amount string, at time.Time) core.Transaction {
	return tx(core.Expense, category, amount, at)
}

func income(category, amount string, at time.Time) core.Transaction {
	return tx(core.Income, category, amount, at)
}

var testCategories = []core.Category{
	{ID: "salary", Name: "Salary", Color: "#4CAF50"},
	{ID: "groceries", Name: "Groceries", Color: "#4CAF50"},
	{ID: "transport", Name: "Transport", Color: "#2196F3"},
	{ID: "fun", Name: "Entertainment", Color: "#FF9800"},
}

func testIndex() core.CategoryIndex { return core.IndexCategories(testCategories) }
