// Package seed builds the demo dataset and writes it to a backend.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/ports"
)

// Dataset is a complete set of reference and user data.
type Dataset struct {
	Users        []core.User
	Categories   []core.Category
	Items        []core.Item
	Transactions []core.Transaction
	Goals        []core.Goal
}

func category(name, color, icon string) core.Category {
	return core.Category{ID: uuid.NewString(), Name: name, Color: color, Icon: icon}
}

// Demo returns two users with a month of activity relative to now.
// Goals cover now's month and year.
func Demo(now time.Time) Dataset {
	groceries := category("Groceries", "#4CAF50", "shopping_cart")
	transport := category("Transport", "#2196F3", "directions_car")
	entertainment := category("Entertainment", "#FF9800", "movie")
	utilities := category("Utilities", "#9C27B0", "home")
	salary := category("Salary", "#4CAF50", "attach_money")
	restaurant := category("Restaurant", "#E91E63", "restaurant")
	shopping := category("Shopping", "#00BCD4", "shopping_bag")
	health := category("Health", "#F44336", "local_hospital")
	education := category("Education", "#3F51B5", "school")

	item := func(name, cost string, c core.Category) core.Item {
		return core.Item{ID: uuid.NewString(), Name: name, Cost: decimal.RequireFromString(cost), CategoryID: c.ID}
	}
	fuel := item("Gas/Fuel", "50.00", transport)
	ticket := item("Movie Ticket", "12.00", entertainment)
	electricity := item("Electricity Bill", "80.00", utilities)
	items := []core.Item{
		item("Milk", "3.50", groceries),
		item("Bread", "2.00", groceries),
		fuel, ticket, electricity,
	}

	tx := func(user int64, amount string, sign core.Sign, daysAgo int, c core.Category, it string) core.Transaction {
		return core.Transaction{
			ID:         uuid.NewString(),
			UserID:     user,
			Amount:     decimal.RequireFromString(amount),
			Sign:       sign,
			Timestamp:  now.AddDate(0, 0, -daysAgo),
			CategoryID: c.ID,
			ItemID:     it,
		}
	}
	txs := []core.Transaction{
		tx(1, "3500.00", core.Income, 30, salary, ""),
		tx(1, "150.00", core.Expense, 25, groceries, ""),
		tx(1, "50.00", core.Expense, 20, transport, fuel.ID),
		tx(1, "80.00", core.Expense, 15, utilities, electricity.ID),
		tx(2, "4000.00", core.Income, 28, salary, ""),
		tx(2, "24.00", core.Expense, 10, entertainment, ticket.ID),
		tx(1, "35.00", core.Expense, 18, restaurant, ""),
		tx(1, "120.00", core.Expense, 12, shopping, ""),
		tx(1, "45.00", core.Expense, 8, health, ""),
		tx(1, "200.00", core.Expense, 5, education, ""),
		tx(1, "60.00", core.Expense, 3, groceries, ""),
		tx(1, "15.00", core.Expense, 1, transport, ""),
	}

	monthStart := core.NewDate(now.Year(), int(now.Month()), 1)
	monthEnd := core.Date{Time: monthStart.AddDate(0, 1, -1)}
	yearStart := core.NewDate(now.Year(), 1, 1)
	yearEnd := core.NewDate(now.Year(), 12, 31)
	goal := func(user int64, c core.Category, max string, kind core.RepetitionTypes, start, end core.Date) core.Goal {
		return core.Goal{
			ID:         uuid.NewString(),
			UserID:     user,
			CategoryID: c.ID,
			MaxAmount:  decimal.RequireFromString(max),
			Type:       kind,
			StartDate:  start,
			EndDate:    end,
		}
	}

	return Dataset{
		Users: []core.User{
			{ID: 1, Name: "John Doe", Email: "john.doe@example.com", Currency: "TND"},
			{ID: 2, Name: "Jane Smith", Email: "jane.smith@example.com", Currency: "EUR"},
		},
		Categories: []core.Category{
			groceries, transport, entertainment, utilities, salary,
			restaurant, shopping, health, education,
		},
		Items:        items,
		Transactions: txs,
		Goals: []core.Goal{
			goal(1, groceries, "500.00", core.Monthly, monthStart, monthEnd),
			goal(1, transport, "3000.00", core.Yearly, yearStart, yearEnd),
			goal(2, entertainment, "200.00", core.Monthly, monthStart, monthEnd),
		},
	}
}

// Load writes d into s, reference data first.
func Load(ctx context.Context, s ports.Seeder, d Dataset) error {
	for _, u := range d.Users {
		if err := s.SaveUser(ctx, u); err != nil {
			return fmt.Errorf("save user %d: %w", u.ID, err)
		}
	}
	for _, c := range d.Categories {
		if err := s.SaveCategory(ctx, c); err != nil {
			return fmt.Errorf("save category %s: %w", c.Name, err)
		}
	}
	for _, i := range d.Items {
		if err := s.SaveItem(ctx, i); err != nil {
			return fmt.Errorf("save item %s: %w", i.Name, err)
		}
	}
	for _, t := range d.Transactions {
		if err := s.SaveTransaction(ctx, t); err != nil {
			return fmt.Errorf("save transaction %s: %w", t.ID, err)
		}
	}
	for _, g := range d.Goals {
		if err := s.SaveGoal(ctx, g); err != nil {
			return fmt.Errorf("save goal %s: %w", g.ID, err)
		}
	}
	return nil
}
