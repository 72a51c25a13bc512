package backend

import (
	"context"
	"path/filepath"
	"testing"

	"fintrack/internal/config"
)

func TestCreateBackend(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		cfg       Config
		wantErr   bool
		wantTxs   int
		hasSeeder bool
	}{
		{name: "seeded memory", cfg: Config{Type: MemoryBackend, SeedDemo: true}, wantTxs: 10, hasSeeder: true},
		{name: "empty memory", cfg: Config{Type: MemoryBackend}, wantTxs: 0, hasSeeder: true},
		{name: "sqlite", cfg: Config{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(t.TempDir(), "f.db")}, wantTxs: 0, hasSeeder: true},
		{name: "unknown type", cfg: Config{Type: "mongo"}, wantErr: true},
		{name: "sqlite without path", cfg: Config{Type: SQLiteBackend}, wantErr: true},
		{name: "postgres without dsn", cfg: Config{Type: PostgresBackend}, wantErr: true},
		{name: "sheets without spreadsheet", cfg: Config{Type: SheetsBackend}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := NewFactory(nil).CreateBackend(ctx, tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("CreateBackend: %v", err)
			}
			defer res.Cleanup()

			if err := res.Backend.Ping(ctx); err != nil {
				t.Fatalf("Ping: %v", err)
			}
			txs, err := res.Backend.ListTransactions(ctx, 1)
			if err != nil || len(txs) != tt.wantTxs {
				t.Fatalf("transactions: %d %v", len(txs), err)
			}
			if (res.Seeder != nil) != tt.hasSeeder {
				t.Fatalf("seeder presence = %v", res.Seeder != nil)
			}
		})
	}
}

func TestSheetsBackendDelegatesAlerts(t *testing.T) {
	seen := map[string]bool{}
	b := sheetsBackend{alerts: alertFunc(func(txID string) bool {
		fresh := !seen[txID]
		seen[txID] = true
		return fresh
	})}

	first, _ := b.MarkNotified(context.Background(), 1, "t1")
	again, _ := b.MarkNotified(context.Background(), 1, "t1")
	if !first || again {
		t.Fatalf("first=%v again=%v", first, again)
	}
}

type alertFunc func(txID string) bool

func (f alertFunc) MarkNotified(_ context.Context, _ int64, txID string) (bool, error) {
	return f(txID), nil
}

func TestFromAppConfig(t *testing.T) {
	app := &config.Config{DataBackend: "postgres", PostgresDSN: "postgres://localhost/db"}
	cfg, err := FromAppConfig(app)
	if err != nil {
		t.Fatalf("FromAppConfig: %v", err)
	}
	if cfg.Type != PostgresBackend || cfg.PostgresDSN != app.PostgresDSN || !cfg.SeedDemo {
		t.Fatalf("unexpected %+v", cfg)
	}

	if _, err := FromAppConfig(&config.Config{DataBackend: "csv"}); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatalf("expected error for nil config")
	}
}
