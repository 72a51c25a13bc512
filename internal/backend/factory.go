package backend

import (
	"context"
	"fmt"
	"time"

	"fintrack/internal/config"
	"fintrack/internal/log"
	"fintrack/internal/memory"
	"fintrack/internal/ports"
	"fintrack/internal/seed"
	gsheet "fintrack/internal/sheets/google"
	"fintrack/internal/storage"
	"fintrack/internal/storage/postgres"
)

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	backendType := BackendType(appConfig.DataBackend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.DataBackend)
	}

	return Config{
		Type:                     backendType,
		SQLiteDBPath:             appConfig.SQLiteDBPath,
		PostgresDSN:              appConfig.PostgresDSN,
		GoogleSpreadsheetID:      appConfig.GoogleSpreadsheetID,
		GoogleServiceAccountJSON: appConfig.GoogleServiceAccountJSON,
		GoogleServiceAccountFile: appConfig.GoogleServiceAccountFile,
		GoogleTransactionsSheet:  appConfig.GoogleTransactionsSheet,
		GoogleGoalsSheet:         appConfig.GoogleGoalsSheet,
		GoogleCategoriesSheet:    appConfig.GoogleCategoriesSheet,
		SeedDemo:                 true,
	}, nil
}

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
	now    func() time.Time
}

func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Discard()
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
		now:    time.Now,
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, cfg Config) (*BackendResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Type {
	case MemoryBackend:
		return f.createMemoryBackend(ctx, cfg)
	case SQLiteBackend:
		return f.createSQLiteBackend(cfg)
	case PostgresBackend:
		return f.createPostgresBackend(ctx, cfg)
	case SheetsBackend:
		return f.createSheetsBackend(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", cfg.Type)
	}
}

func (f *DefaultFactory) createMemoryBackend(ctx context.Context, cfg Config) (*BackendResult, error) {
	store := memory.New()
	if cfg.SeedDemo {
		demo := seed.Demo(f.now())
		if err := seed.Load(ctx, store, demo); err != nil {
			return nil, fmt.Errorf("seed memory backend: %w", err)
		}
		f.logger.Info("initialized memory backend with demo data",
			"users", len(demo.Users),
			"transactions", len(demo.Transactions))
	} else {
		f.logger.Info("initialized empty memory backend")
	}

	return &BackendResult{Backend: store, Seeder: store, Cleanup: store.Close}, nil
}

func (f *DefaultFactory) createSQLiteBackend(cfg Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.Info("initialized SQLite backend", "db_path", cfg.SQLiteDBPath)
	return &BackendResult{Backend: repo, Seeder: repo, Cleanup: repo.Close}, nil
}

func (f *DefaultFactory) createPostgresBackend(ctx context.Context, cfg Config) (*BackendResult, error) {
	repo, err := postgres.Open(ctx, cfg.PostgresDSN, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Postgres repository: %w", err)
	}

	f.logger.Info("initialized Postgres backend")
	return &BackendResult{Backend: repo, Seeder: repo, Cleanup: repo.Close}, nil
}

func (f *DefaultFactory) createSheetsBackend(ctx context.Context, cfg Config) (*BackendResult, error) {
	cli, err := gsheet.New(ctx, gsheet.Config{
		SpreadsheetID:     cfg.GoogleSpreadsheetID,
		CredentialsJSON:   cfg.GoogleServiceAccountJSON,
		CredentialsFile:   cfg.GoogleServiceAccountFile,
		TransactionsSheet: cfg.GoogleTransactionsSheet,
		GoalsSheet:        cfg.GoogleGoalsSheet,
		CategoriesSheet:   cfg.GoogleCategoriesSheet,
	}, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}

	f.logger.Info("initialized Google Sheets backend", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	return &BackendResult{
		Backend: sheetsBackend{Client: cli, alerts: memory.New()},
		Cleanup: cli.Close,
	}, nil
}

// sheetsBackend pairs the read-only spreadsheet with a process-local alert log.
type sheetsBackend struct {
	*gsheet.Client
	alerts ports.AlertStore
}

func (b sheetsBackend) MarkNotified(ctx context.Context, userID int64, transactionID string) (bool, error) {
	return b.alerts.MarkNotified(ctx, userID, transactionID)
}
