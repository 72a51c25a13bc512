// Package google reads transactions, goals and categories from a Google
// Sheets spreadsheet. The source is read-only; each tab starts with a header
// row and columns are located by header name.
package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/ports"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

const (
	DefaultTransactionsSheet = "Transactions"
	DefaultGoalsSheet        = "Goals"
	DefaultCategoriesSheet   = "Categories"
)

// Config selects the spreadsheet and how to authenticate against it.
// With neither credential set, Application Default Credentials are used.
type Config struct {
	SpreadsheetID   string
	CredentialsJSON string
	CredentialsFile string

	TransactionsSheet string
	GoalsSheet        string
	CategoriesSheet   string
}

// valueReader is the slice of the Sheets API the client needs.
type valueReader interface {
	Values(ctx context.Context, spreadsheetID, rng string) ([][]interface{}, error)
}

type serviceReader struct {
	svc *gsheet.Service
}

func (r serviceReader) Values(ctx context.Context, spreadsheetID, rng string) ([][]interface{}, error) {
	resp, err := r.svc.Spreadsheets.Values.Get(spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return resp.Values, nil
}

type Client struct {
	reader            valueReader
	spreadsheetID     string
	transactionsSheet string
	goalsSheet        string
	categoriesSheet   string
	logger            *log.Logger
}

var _ ports.DataSource = (*Client)(nil)

// New creates a Sheets client with read-only scope.
func New(ctx context.Context, cfg Config, logger *log.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	svc, err := newSheetsService(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return newClient(serviceReader{svc: svc}, cfg, logger), nil
}

func newClient(reader valueReader, cfg Config, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.Discard()
	}
	return &Client{
		reader:            reader,
		spreadsheetID:     strings.TrimSpace(cfg.SpreadsheetID),
		transactionsSheet: orDefault(cfg.TransactionsSheet, DefaultTransactionsSheet),
		goalsSheet:        orDefault(cfg.GoalsSheet, DefaultGoalsSheet),
		categoriesSheet:   orDefault(cfg.CategoriesSheet, DefaultCategoriesSheet),
		logger:            logger.WithComponent(log.ComponentSheets),
	}
}

func newSheetsService(ctx context.Context, cfg Config) (*gsheet.Service, error) {
	opts := []goption.ClientOption{goption.WithScopes(gsheet.SpreadsheetsReadonlyScope)}

	switch {
	case strings.TrimSpace(cfg.CredentialsJSON) != "":
		opts = append(opts, goption.WithCredentialsJSON([]byte(cfg.CredentialsJSON)))
	case strings.TrimSpace(cfg.CredentialsFile) != "":
		data, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		opts = append(opts, goption.WithCredentialsJSON(data))
	}

	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return svc, nil
}

func (c *Client) ListTransactions(ctx context.Context, userID int64) ([]core.Transaction, error) {
	values, err := c.read(ctx, c.transactionsSheet)
	if err != nil {
		return nil, err
	}
	txs, skipped, err := parseTransactions(values, userID)
	if err != nil {
		return nil, fmt.Errorf("sheet %s: %w", c.transactionsSheet, err)
	}
	c.logSkipped(ctx, c.transactionsSheet, skipped)
	return txs, nil
}

func (c *Client) ListGoals(ctx context.Context, userID int64) ([]core.Goal, error) {
	values, err := c.read(ctx, c.goalsSheet)
	if err != nil {
		return nil, err
	}
	goals, skipped, err := parseGoals(values, userID)
	if err != nil {
		return nil, fmt.Errorf("sheet %s: %w", c.goalsSheet, err)
	}
	c.logSkipped(ctx, c.goalsSheet, skipped)
	return goals, nil
}

func (c *Client) ListCategories(ctx context.Context) ([]core.Category, error) {
	values, err := c.read(ctx, c.categoriesSheet)
	if err != nil {
		return nil, err
	}
	cats, err := parseCategories(values)
	if err != nil {
		return nil, fmt.Errorf("sheet %s: %w", c.categoriesSheet, err)
	}
	return cats, nil
}

// Ping reads the categories header to check access to the spreadsheet.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.reader.Values(ctx, c.spreadsheetID, c.categoriesSheet+"!1:1")
	return err
}

func (c *Client) Close() error { return nil }

func (c *Client) read(ctx context.Context, sheet string) ([][]interface{}, error) {
	rng := sheet + "!A:H"
	values, err := c.reader.Values(ctx, c.spreadsheetID, rng)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	return values, nil
}

func (c *Client) logSkipped(ctx context.Context, sheet string, skipped int) {
	if skipped == 0 {
		return
	}
	c.logger.WarnContext(ctx, "skipped malformed sheet rows",
		"sheet", sheet,
		log.FieldCount, skipped)
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s != "" {
		return s
	}
	return def
}
