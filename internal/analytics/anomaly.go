package analytics

import (
	"fmt"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

const (
	// DefaultAnomalyFactor flags expenses more than 20% above their category mean.
	DefaultAnomalyFactor = "1.20"
	// DefaultAnomalyMinSamples is the smallest category worth averaging.
	DefaultAnomalyMinSamples = 2
)

const isoDate = "2006-01-02"

// AnomalyRule decides which expenses are unusually large.
type AnomalyRule struct {
	Factor     decimal.Decimal
	MinSamples int
}

func DefaultAnomalyRule() AnomalyRule {
	return AnomalyRule{
		Factor:     decimal.RequireFromString(DefaultAnomalyFactor),
		MinSamples: DefaultAnomalyMinSamples,
	}
}

type categoryGroup struct {
	id  string
	txs []core.Transaction
}

// DetectAnomalies flags categorised expenses strictly greater than
// rule.Factor times their category mean. The mean is rounded half-up to
// two places before the threshold is applied. Alerts come out grouped by
// category in order of first appearance, then in input order.
func DetectAnomalies(txs []core.Transaction, categories core.CategoryIndex, rule AnomalyRule) []core.AnomalyAlert {
	if rule.MinSamples < 1 {
		rule.MinSamples = DefaultAnomalyMinSamples
	}

	var groups []*categoryGroup
	byID := make(map[string]*categoryGroup)
	for _, tx := range txs {
		if !tx.IsExpense() || !tx.HasCategory() {
			continue
		}
		g, ok := byID[tx.CategoryID]
		if !ok {
			g = &categoryGroup{id: tx.CategoryID}
			byID[tx.CategoryID] = g
			groups = append(groups, g)
		}
		g.txs = append(g.txs, tx)
	}

	alerts := []core.AnomalyAlert{}
	for _, g := range groups {
		if len(g.txs) < rule.MinSamples {
			continue
		}
		total := decimal.Zero
		for _, tx := range g.txs {
			total = total.Add(tx.Amount)
		}
		mean := core.DivMoney(total, decimal.NewFromInt(int64(len(g.txs))))
		if mean.IsZero() {
			continue
		}
		threshold := mean.Mul(rule.Factor)
		name, _ := categories.NameAndColor(g.id)

		for _, tx := range g.txs {
			if !tx.Amount.GreaterThan(threshold) {
				continue
			}
			alerts = append(alerts, newAlert(tx, name, mean))
		}
	}
	return alerts
}

func newAlert(tx core.Transaction, categoryName string, mean decimal.Decimal) core.AnomalyAlert {
	deviation := core.Percentage(tx.Amount.Sub(mean), mean)
	date := ""
	if !tx.Timestamp.IsZero() {
		date = tx.Timestamp.Format(isoDate)
	}
	return core.AnomalyAlert{
		TransactionID:       tx.ID,
		Amount:              tx.Amount,
		CategoryName:        categoryName,
		Date:                date,
		CategoryAverage:     mean,
		DeviationPercentage: core.Float(deviation),
		Message: fmt.Sprintf("⚠️ This %s expense of %s is %s%% above the category average of %s",
			categoryName, core.FormatMoney(tx.Amount), deviation.StringFixed(0), core.FormatMoney(mean)),
	}
}
