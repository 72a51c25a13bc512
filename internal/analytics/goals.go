package analytics

import (
	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

var exceededAt = decimal.NewFromInt(100)

// EvaluateGoals reports how much of each goal's budget has been spent.
//
// Only expenses whose category equals the goal's category count, so a goal
// without a category always shows zero spend. Transactions are matched on
// their calendar date against the goal's inclusive [StartDate, EndDate];
// a goal missing either bound has spent nothing.
func EvaluateGoals(goals []core.Goal, txs []core.Transaction, categories core.CategoryIndex) []core.GoalProgress {
	out := make([]core.GoalProgress, 0, len(goals))
	for _, g := range goals {
		spent := goalSpend(g, txs)
		pct := core.Percentage(spent, g.MaxAmount)

		out = append(out, core.GoalProgress{
			GoalID:       g.ID,
			CategoryName: goalCategoryName(g, categories),
			MaxAmount:    g.MaxAmount,
			CurrentSpent: spent,
			Percentage:   core.Float(pct),
			Type:         g.Type,
			Exceeded:     pct.GreaterThan(exceededAt),
		})
	}
	return out
}

func goalSpend(g core.Goal, txs []core.Transaction) decimal.Decimal {
	spent := decimal.Zero
	if g.CategoryID == "" {
		return spent
	}
	for _, tx := range txs {
		if !tx.IsExpense() || tx.CategoryID != g.CategoryID {
			continue
		}
		if g.StartDate.Contains(g.EndDate, tx.Timestamp) {
			spent = spent.Add(tx.Amount)
		}
	}
	return spent
}

func goalCategoryName(g core.Goal, categories core.CategoryIndex) string {
	if c, ok := categories[g.CategoryID]; ok && g.CategoryID != "" {
		return c.Name
	}
	return core.DefaultCategoryName
}
