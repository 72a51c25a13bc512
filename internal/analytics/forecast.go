package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/advice"
	"fintrack/internal/core"
	"fintrack/internal/log"
)

// Projection is the arithmetic part of a forecast, before anomalies and advice.
type Projection struct {
	DaysInMonth      int
	DaysRemaining    int
	MonthIncome      decimal.Decimal
	MonthExpenses    decimal.Decimal
	CurrentBalance   decimal.Decimal
	AverageDaily     decimal.Decimal
	PredictedMonthly decimal.Decimal
	PredictedEnd     decimal.Decimal
	SafeDailyBudget  decimal.Decimal
	Predictions      []core.DailyPrediction
}

// Project extrapolates this month's spending rate to the end of the month.
// Today counts as an elapsed day, so on the last day nothing remains.
func Project(txs []core.Transaction, now time.Time) Projection {
	year, month, day := now.Date()
	daysInMonth := time.Date(year, month+1, 0, 0, 0, 0, 0, now.Location()).Day()
	w := MonthWindow(year, month, now.Location())
	totals := ComputeTotals(txs, &w)

	p := Projection{
		DaysInMonth:     daysInMonth,
		DaysRemaining:   daysInMonth - day,
		MonthIncome:     totals.Income,
		MonthExpenses:   totals.Expenses,
		CurrentBalance:  totals.Balance,
		AverageDaily:    core.DivMoney(totals.Expenses, decimal.NewFromInt(int64(day))),
		SafeDailyBudget: decimal.Zero,
	}
	remaining := decimal.NewFromInt(int64(p.DaysRemaining))
	p.PredictedMonthly = p.AverageDaily.Mul(decimal.NewFromInt(int64(daysInMonth)))
	p.PredictedEnd = p.CurrentBalance.Sub(p.AverageDaily.Mul(remaining))
	if p.DaysRemaining > 0 && p.CurrentBalance.IsPositive() {
		p.SafeDailyBudget = core.DivMoney(p.CurrentBalance, remaining)
	}

	p.Predictions = make([]core.DailyPrediction, 0, p.DaysRemaining)
	running := p.CurrentBalance
	for i := 1; i <= p.DaysRemaining; i++ {
		running = running.Sub(p.AverageDaily)
		p.Predictions = append(p.Predictions, core.DailyPrediction{
			Date:             now.AddDate(0, 0, i).Format(isoDate),
			PredictedBalance: running,
		})
	}
	return p
}

// AdvicePrompt describes the month for the advice provider.
func AdvicePrompt(p Projection, anomalies int) string {
	return fmt.Sprintf("Monthly income: %s, Monthly expenses so far: %s, Days remaining: %d, "+
		"Average daily spending: %s, Predicted end-of-month balance: %s. "+
		"Number of anomalous transactions: %d. Give brief budget advice.",
		core.FormatMoney(p.MonthIncome), core.FormatMoney(p.MonthExpenses), p.DaysRemaining,
		core.FormatMoney(p.AverageDaily), core.FormatMoney(p.PredictedEnd), anomalies)
}

// FallbackRecommendation is used whenever the advice provider cannot answer.
func FallbackRecommendation(predictedEnd, safeDailyBudget decimal.Decimal) string {
	if predictedEnd.IsNegative() {
		return fmt.Sprintf("⚠️ Warning: At your current spending rate, you may overspend this month. "+
			"Try to limit daily spending to %s or less.", core.FormatMoney(safeDailyBudget))
	}
	return fmt.Sprintf("✅ You're on track! Keep your daily spending around %s to maintain a positive balance.",
		core.FormatMoney(safeDailyBudget))
}

// ComputeForecast projects the current month and asks for advice. It never
// fails: a missing, slow or broken advice provider yields the fallback text.
func (e *Engine) ComputeForecast(ctx context.Context, txs []core.Transaction, categories []core.Category) core.ForecastResult {
	now := e.now()
	p := Project(txs, now)
	anomalies := DetectAnomalies(txs, core.IndexCategories(categories), e.anomalyRule())

	e.logger.WithComponent(log.ComponentForecast).DebugContext(ctx, "month projected",
		log.FieldCount, len(txs),
		"anomalies", len(anomalies),
		"days_remaining", p.DaysRemaining)

	res := e.ask(ctx, AdvicePrompt(p, len(anomalies)))
	recommendation := res.Text
	if !res.Ok() {
		e.logger.WithComponent(log.ComponentAdvice).WarnContext(ctx, "advice unavailable, using fallback",
			log.FieldProvider, e.advisor.Name(),
			log.FieldOperation, log.OpAdvise,
			log.FieldErrorType, log.ErrorTypeProvider,
			log.FieldError, res.Err)
		recommendation = FallbackRecommendation(p.PredictedEnd, p.SafeDailyBudget)
	}

	return core.ForecastResult{
		PredictedEndOfMonthBalance: p.PredictedEnd,
		PredictedMonthlyExpenses:   p.PredictedMonthly,
		AverageDailySpending:       p.AverageDaily,
		DaysRemaining:              p.DaysRemaining,
		SafeDailyBudget:            p.SafeDailyBudget,
		Recommendation:             recommendation,
		Predictions:                p.Predictions,
		Anomalies:                  anomalies,
	}
}

// ask makes the single advice request, bounded by the advice timeout even
// if the provider ignores its context.
func (e *Engine) ask(ctx context.Context, prompt string) advice.Result {
	ctx, cancel := context.WithTimeout(ctx, e.settings.AdviceTimeout)
	defer cancel()

	done := make(chan advice.Result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- advice.Result{Err: fmt.Errorf("%w: panic: %v", advice.ErrProvider, r)}
			}
		}()
		done <- e.advisor.Recommend(ctx, prompt)
	}()

	select {
	case res := <-done:
		return res
	case <-ctx.Done():
		return advice.Result{Err: fmt.Errorf("%w: %v", advice.ErrProvider, ctx.Err())}
	}
}
