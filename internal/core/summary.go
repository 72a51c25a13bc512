package core

import "github.com/shopspring/decimal"

// CategoryBreakdown is the expense total of one category.
type CategoryBreakdown struct {
	CategoryID   string          `json:"categoryId"`
	CategoryName string          `json:"categoryName"`
	Color        string          `json:"color"`
	Total        decimal.Decimal `json:"total"`
	Percentage   float64         `json:"percentage"`
}

// MonthlyTrend holds income and expenses of one calendar month.
type MonthlyTrend struct {
	Month    string          `json:"month"`
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
}

// GoalProgress is a goal evaluated against the transactions in its window.
type GoalProgress struct {
	GoalID       string          `json:"goalId"`
	CategoryName string          `json:"categoryName"`
	MaxAmount    decimal.Decimal `json:"maxAmount"`
	CurrentSpent decimal.Decimal `json:"currentSpent"`
	Percentage   float64         `json:"percentage"`
	Type         RepetitionTypes `json:"type"`
	Exceeded     bool            `json:"exceeded"`
}

// DashboardStats is the read-only summary shown on the dashboard.
type DashboardStats struct {
	TotalIncome       decimal.Decimal     `json:"totalIncome"`
	TotalExpenses     decimal.Decimal     `json:"totalExpenses"`
	Balance           decimal.Decimal     `json:"balance"`
	MonthlyIncome     decimal.Decimal     `json:"monthlyIncome"`
	MonthlyExpenses   decimal.Decimal     `json:"monthlyExpenses"`
	TotalTransactions int                 `json:"totalTransactions"`
	CategoryBreakdown []CategoryBreakdown `json:"categoryBreakdown"`
	MonthlyTrends     []MonthlyTrend      `json:"monthlyTrends"`
	GoalProgress      []GoalProgress      `json:"goalProgress"`
}

// DailyPrediction is the projected balance at the end of one future day.
type DailyPrediction struct {
	Date             string          `json:"date"`
	PredictedBalance decimal.Decimal `json:"predictedBalance"`
}

// AnomalyAlert flags an expense well above its category's average.
type AnomalyAlert struct {
	TransactionID       string          `json:"transactionId"`
	Amount              decimal.Decimal `json:"amount"`
	CategoryName        string          `json:"categoryName"`
	Date                string          `json:"date"`
	CategoryAverage     decimal.Decimal `json:"categoryAverage"`
	DeviationPercentage float64         `json:"deviationPercentage"`
	Message             string          `json:"message"`
}

// ForecastResult is the end-of-month projection for the current month.
type ForecastResult struct {
	PredictedEndOfMonthBalance decimal.Decimal   `json:"predictedEndOfMonthBalance"`
	PredictedMonthlyExpenses   decimal.Decimal   `json:"predictedMonthlyExpenses"`
	AverageDailySpending       decimal.Decimal   `json:"averageDailySpending"`
	DaysRemaining              int               `json:"daysRemaining"`
	SafeDailyBudget            decimal.Decimal   `json:"safeDailyBudget"`
	Recommendation             string            `json:"recommendation"`
	Predictions                []DailyPrediction `json:"predictions"`
	Anomalies                  []AnomalyAlert    `json:"anomalies"`
}
