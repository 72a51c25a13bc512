// Package ports declares the read side the analytics service depends on.
// Backends (memory, sqlite, postgres, sheets) implement these.
package ports

import (
	"context"

	"fintrack/internal/core"
)

type (
	// TransactionLister returns every transaction of a user, in no particular order.
	TransactionLister interface {
		ListTransactions(ctx context.Context, userID int64) ([]core.Transaction, error)
	}

	GoalLister interface {
		ListGoals(ctx context.Context, userID int64) ([]core.Goal, error)
	}

	// CategoryLister returns the shared category catalogue.
	CategoryLister interface {
		ListCategories(ctx context.Context) ([]core.Category, error)
	}

	// DataSource is everything a dashboard or forecast needs.
	DataSource interface {
		TransactionLister
		GoalLister
		CategoryLister
	}

	// Seeder writes reference and demo data. Only writable backends have it.
	Seeder interface {
		SaveUser(ctx context.Context, u core.User) error
		SaveCategory(ctx context.Context, c core.Category) error
		SaveItem(ctx context.Context, i core.Item) error
		SaveTransaction(ctx context.Context, t core.Transaction) error
		SaveGoal(ctx context.Context, g core.Goal) error
	}

	// AlertStore remembers which anomaly alerts were already delivered.
	AlertStore interface {
		// MarkNotified records the alert and reports whether it was new.
		MarkNotified(ctx context.Context, userID int64, transactionID string) (bool, error)
	}
)
