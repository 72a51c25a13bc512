// Package storage is the SQLite backend.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/log"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db     *sql.DB
	logger *log.Logger
}

func NewSQLiteRepository(dbPath string, logger *log.Logger) (*SQLiteRepository, error) {
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentStorage)

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	version, err := RunMigrations(dbPath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("sqlite database ready", "path", dbPath, "schema_version", version, log.FieldOperation, log.OpMigrate)

	return &SQLiteRepository{db: db, logger: logger}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context, userID int64) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, amount, sign, transaction_date, category_id, item_id
		FROM transactions
		WHERE user_id = ?
		ORDER BY transaction_date, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	out := []core.Transaction{}
	for rows.Next() {
		var (
			t                 core.Transaction
			amount, sign      string
			date, cat, itemID sql.NullString
		)
		if err := rows.Scan(&t.ID, &t.UserID, &amount, &sign, &date, &cat, &itemID); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		if t.Amount, err = core.ParseAmount(amount); err != nil {
			return nil, fmt.Errorf("transaction %s amount %q: %w", t.ID, amount, err)
		}
		if t.Sign, err = core.ParseSign(sign); err != nil {
			return nil, fmt.Errorf("transaction %s: %w", t.ID, err)
		}
		if t.Timestamp, err = parseTimestamp(date); err != nil {
			return nil, fmt.Errorf("transaction %s date: %w", t.ID, err)
		}
		t.CategoryID = cat.String
		t.ItemID = itemID.String
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

func (r *SQLiteRepository) ListGoals(ctx context.Context, userID int64) ([]core.Goal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, category_id, max_amount, type, start_date, end_date
		FROM goals
		WHERE user_id = ?
		ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("query goals: %w", err)
	}
	defer rows.Close()

	out := []core.Goal{}
	for rows.Next() {
		var (
			g               core.Goal
			cat, start, end sql.NullString
			maxAmount, kind string
		)
		if err := rows.Scan(&g.ID, &g.UserID, &cat, &maxAmount, &kind, &start, &end); err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		if g.MaxAmount, err = core.ParseAmount(maxAmount); err != nil {
			return nil, fmt.Errorf("goal %s max amount %q: %w", g.ID, maxAmount, err)
		}
		if g.Type, err = core.ParseRepetitionType(kind); err != nil {
			return nil, fmt.Errorf("goal %s: %w", g.ID, err)
		}
		if g.StartDate, err = core.ParseDate(start.String); err != nil {
			return nil, fmt.Errorf("goal %s start date: %w", g.ID, err)
		}
		if g.EndDate, err = core.ParseDate(end.String); err != nil {
			return nil, fmt.Errorf("goal %s end date: %w", g.ID, err)
		}
		g.CategoryID = cat.String
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate goals: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, color, icon FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	out := []core.Category{}
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Color, &c.Icon); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) SaveUser(ctx context.Context, u core.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, name, email, currency) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, email = excluded.email, currency = excluded.currency`,
		u.ID, u.Name, u.Email, u.Currency)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) SaveCategory(ctx context.Context, c core.Category) error {
	if err := c.Validate(); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, `INSERT OR REPLACE INTO categories (id, name, color, icon) VALUES (?, ?, ?, ?)`,
		c.ID, c.Name, c.Color, c.Icon)
	if err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) SaveItem(ctx context.Context, i core.Item) error {
	if err := i.Validate(); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, `INSERT OR REPLACE INTO items (id, name, cost, category_id) VALUES (?, ?, ?, ?)`,
		i.ID, i.Name, i.Cost.String(), nullable(i.CategoryID))
	if err != nil {
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) SaveTransaction(ctx context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("invalid transaction %s: %w", t.ID, err)
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO transactions (id, user_id, amount, sign, transaction_date, category_id, item_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, t.Amount.String(), string(t.Sign), formatTimestamp(t.Timestamp),
		nullable(t.CategoryID), nullable(t.ItemID))
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) SaveGoal(ctx context.Context, g core.Goal) error {
	if err := g.Validate(); err != nil {
		return fmt.Errorf("invalid goal %s: %w", g.ID, err)
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO goals (id, user_id, category_id, max_amount, type, start_date, end_date)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.UserID, nullable(g.CategoryID), g.MaxAmount.String(), string(g.Type),
		nullable(g.StartDate.String()), nullable(g.EndDate.String()))
	if err != nil {
		return fmt.Errorf("insert goal: %w", err)
	}
	return nil
}

// MarkNotified implements ports.AlertStore.
func (r *SQLiteRepository) MarkNotified(ctx context.Context, userID int64, transactionID string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO notified_anomalies (user_id, transaction_id, notified_at) VALUES (?, ?, ?)`,
		userID, transactionID, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return false, fmt.Errorf("insert notified anomaly: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n == 1, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// wallClockLayout stores the transaction's local date and time without a zone.
const wallClockLayout = "2006-01-02T15:04:05.999999999"

func formatTimestamp(t time.Time) sql.NullString {
	if t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: t.Format(wallClockLayout), Valid: true}
}

func parseTimestamp(s sql.NullString) (time.Time, error) {
	if !s.Valid || s.String == "" {
		return time.Time{}, nil
	}
	if t, err := time.ParseInLocation(wallClockLayout, s.String, time.Local); err == nil {
		return t, nil
	}
	// rows written before wall-clock storage carry a UTC offset
	t, err := time.Parse(time.RFC3339Nano, s.String)
	if err != nil {
		return time.Time{}, err
	}
	return t.In(time.Local), nil
}
