// Package postgres is the PostgreSQL backend, built on a pgx connection pool.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

type Repository struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

// Open connects, migrates and returns a ready repository.
func Open(ctx context.Context, dsn string, logger *log.Logger) (*Repository, error) {
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentStorage)

	version, err := RunMigrations(dsn)
	if err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	logger.Info("postgres database ready", "schema_version", version, log.FieldOperation, log.OpMigrate)
	return &Repository{pool: pool, logger: logger}, nil
}

func (r *Repository) Close() error {
	r.pool.Close()
	return nil
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *Repository) ListTransactions(ctx context.Context, userID int64) ([]core.Transaction, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, amount::text, sign, transaction_date,
		       COALESCE(category_id, ''), COALESCE(item_id, '')
		FROM transactions
		WHERE user_id = $1
		ORDER BY transaction_date NULLS FIRST, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	out := []core.Transaction{}
	for rows.Next() {
		var (
			t            core.Transaction
			amount, sign string
			date         *time.Time
		)
		if err := rows.Scan(&t.ID, &t.UserID, &amount, &sign, &date, &t.CategoryID, &t.ItemID); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		if t.Amount, err = core.ParseAmount(amount); err != nil {
			return nil, fmt.Errorf("transaction %s amount %q: %w", t.ID, amount, err)
		}
		if t.Sign, err = core.ParseSign(sign); err != nil {
			return nil, fmt.Errorf("transaction %s: %w", t.ID, err)
		}
		if date != nil {
			t.Timestamp = core.LocalWallClock(*date)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}

	r.logger.DebugContext(ctx, "transactions loaded",
		log.FieldUserID, userID,
		log.FieldCount, len(out),
		log.FieldOperation, log.OpList)
	return out, nil
}

func (r *Repository) ListGoals(ctx context.Context, userID int64) ([]core.Goal, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, COALESCE(category_id, ''), max_amount::text, type, start_date, end_date
		FROM goals
		WHERE user_id = $1
		ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("query goals: %w", err)
	}
	defer rows.Close()

	out := []core.Goal{}
	for rows.Next() {
		var (
			g               core.Goal
			maxAmount, kind string
			start, end      *time.Time
		)
		if err := rows.Scan(&g.ID, &g.UserID, &g.CategoryID, &maxAmount, &kind, &start, &end); err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		if g.MaxAmount, err = core.ParseAmount(maxAmount); err != nil {
			return nil, fmt.Errorf("goal %s max amount %q: %w", g.ID, maxAmount, err)
		}
		if g.Type, err = core.ParseRepetitionType(kind); err != nil {
			return nil, fmt.Errorf("goal %s: %w", g.ID, err)
		}
		g.StartDate = dateFrom(start)
		g.EndDate = dateFrom(end)
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate goals: %w", err)
	}
	return out, nil
}

func (r *Repository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, color, icon FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	cats, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (core.Category, error) {
		var c core.Category
		err := row.Scan(&c.ID, &c.Name, &c.Color, &c.Icon)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("collect categories: %w", err)
	}
	return cats, nil
}

func (r *Repository) SaveUser(ctx context.Context, u core.User) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (id, name, email, currency) VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, email = EXCLUDED.email, currency = EXCLUDED.currency`,
		u.ID, u.Name, u.Email, u.Currency)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *Repository) SaveCategory(ctx context.Context, c core.Category) error {
	if err := c.Validate(); err != nil {
		return err
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO categories (id, name, color, icon) VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, color = EXCLUDED.color, icon = EXCLUDED.icon`,
		c.ID, c.Name, c.Color, c.Icon)
	if err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

func (r *Repository) SaveItem(ctx context.Context, i core.Item) error {
	if err := i.Validate(); err != nil {
		return err
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO items (id, name, cost, category_id) VALUES ($1, $2, $3::numeric, $4)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, cost = EXCLUDED.cost, category_id = EXCLUDED.category_id`,
		i.ID, i.Name, i.Cost.String(), nullable(i.CategoryID))
	if err != nil {
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

func (r *Repository) SaveTransaction(ctx context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("invalid transaction %s: %w", t.ID, err)
	}
	var date *time.Time
	if !t.Timestamp.IsZero() {
		date = &t.Timestamp
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO transactions (id, user_id, amount, sign, transaction_date, category_id, item_id)
		VALUES ($1, $2, $3::numeric, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			amount = EXCLUDED.amount, sign = EXCLUDED.sign, transaction_date = EXCLUDED.transaction_date,
			category_id = EXCLUDED.category_id, item_id = EXCLUDED.item_id`,
		t.ID, t.UserID, t.Amount.String(), string(t.Sign), date, nullable(t.CategoryID), nullable(t.ItemID))
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func (r *Repository) SaveGoal(ctx context.Context, g core.Goal) error {
	if err := g.Validate(); err != nil {
		return fmt.Errorf("invalid goal %s: %w", g.ID, err)
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO goals (id, user_id, category_id, max_amount, type, start_date, end_date)
		VALUES ($1, $2, $3, $4::numeric, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			category_id = EXCLUDED.category_id, max_amount = EXCLUDED.max_amount, type = EXCLUDED.type,
			start_date = EXCLUDED.start_date, end_date = EXCLUDED.end_date`,
		g.ID, g.UserID, nullable(g.CategoryID), g.MaxAmount.String(), string(g.Type),
		dateArg(g.StartDate), dateArg(g.EndDate))
	if err != nil {
		return fmt.Errorf("insert goal: %w", err)
	}
	return nil
}

// MarkNotified implements ports.AlertStore.
func (r *Repository) MarkNotified(ctx context.Context, userID int64, transactionID string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		INSERT INTO notified_anomalies (user_id, transaction_id) VALUES ($1, $2)
		ON CONFLICT DO NOTHING`, userID, transactionID)
	if err != nil {
		return false, fmt.Errorf("insert notified anomaly: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func dateArg(d core.Date) any {
	if d.IsEmpty() {
		return nil
	}
	return d.Time
}

func dateFrom(t *time.Time) core.Date {
	if t == nil {
		return core.Date{}
	}
	return core.DateOf(*t)
}
