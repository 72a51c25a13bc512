package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Income  Sign = "income"
	Expense Sign = "expense"
)

const (
	Monthly RepetitionTypes = "monthly"
	Yearly  RepetitionTypes = "yearly"
)

const (
	// DefaultCategoryName labels a goal without a resolvable category.
	DefaultCategoryName = "General"
	// UnknownCategoryName and UnknownCategoryColor label unresolvable expense categories.
	UnknownCategoryName  = "Unknown"
	UnknownCategoryColor = "#ccc"
)

type (
	// Sign tells whether a transaction adds to or subtracts from the balance.
	Sign string

	// RepetitionTypes is the recurrence kind of a goal.
	RepetitionTypes string

	Date struct {
		time.Time
	}

	User struct {
		ID       int64
		Name     string
		Email    string
		Currency string
	}

	Category struct {
		ID    string
		Name  string
		Color string
		Icon  string
	}

	Item struct {
		ID         string
		Name       string
		Cost       decimal.Decimal
		CategoryID string
	}

	// Transaction is a single money movement. Amount is always a magnitude,
	// the direction lives in Sign. A zero Timestamp means the date is unknown.
	Transaction struct {
		ID         string
		UserID     int64
		Amount     decimal.Decimal
		Sign       Sign
		Timestamp  time.Time
		CategoryID string
		ItemID     string
	}

	// Goal caps spending in one category over an inclusive date window.
	Goal struct {
		ID         string
		UserID     int64
		CategoryID string
		MaxAmount  decimal.Decimal
		Type       RepetitionTypes
		StartDate  Date
		EndDate    Date
	}
)

var (
	ErrInvalidDay       = errors.New("invalid day")
	ErrInvalidMonth     = errors.New("invalid month")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidSign      = errors.New("invalid sign")
	ErrInvalidGoalType  = errors.New("invalid goal type")
	ErrInvalidUser      = errors.New("invalid user id")
	ErrEmptyName        = errors.New("empty name")
	ErrInvalidDateRange = errors.New("end date must not be before start date")
)

// ParseSign accepts the lowercase names as well as the POSITIVE/NEGATIVE
// spelling and the +/- shorthand.
func ParseSign(s string) (Sign, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "income", "positive", "+":
		return Income, nil
	case "expense", "negative", "-":
		return Expense, nil
	}
	return "", ErrInvalidSign
}

func (s Sign) Validate() error {
	if s != Income && s != Expense {
		return ErrInvalidSign
	}
	return nil
}

func ParseRepetitionType(s string) (RepetitionTypes, error) {
	switch RepetitionTypes(strings.ToLower(strings.TrimSpace(s))) {
	case Monthly:
		return Monthly, nil
	case Yearly:
		return Yearly, nil
	}
	return "", ErrInvalidGoalType
}

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	_, month, day := d.Date()
	if day < 1 || day > 31 {
		return ErrInvalidDay
	}
	if month < 1 || month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf drops the time of day of t, keeping the calendar date in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// LocalWallClock places t's wall-clock reading in time.Local. Stores without a
// zone use it so a transaction keeps the calendar date it was recorded on.
func LocalWallClock(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.Local)
}

// ParseDate parses an ISO date (2006-01-02). The empty string yields an empty Date.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

// IsEmpty returns true if the date is absent.
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

// String formats the date as ISO, or "" when absent.
func (d Date) String() string {
	if d.IsEmpty() {
		return ""
	}
	return d.Format("2006-01-02")
}

// Contains reports whether t's calendar date lies within [d, end].
func (d Date) Contains(end Date, t time.Time) bool {
	if d.IsEmpty() || end.IsEmpty() || t.IsZero() {
		return false
	}
	day := DateOf(t)
	return !day.Before(d.Time) && !day.After(end.Time)
}

func (t Transaction) Validate() error {
	if t.UserID <= 0 {
		return ErrInvalidUser
	}
	if t.Amount.IsNegative() {
		return ErrInvalidAmount
	}
	return t.Sign.Validate()
}

// IsExpense reports whether the transaction reduces the balance.
func (t Transaction) IsExpense() bool {
	return t.Sign == Expense
}

func (t Transaction) HasCategory() bool {
	return t.CategoryID != ""
}

func (g Goal) Validate() error {
	if g.UserID <= 0 {
		return ErrInvalidUser
	}
	if g.MaxAmount.IsNegative() {
		return ErrInvalidAmount
	}
	if g.Type != Monthly && g.Type != Yearly {
		return ErrInvalidGoalType
	}
	if !g.StartDate.IsEmpty() && !g.EndDate.IsEmpty() && g.EndDate.Before(g.StartDate.Time) {
		return ErrInvalidDateRange
	}
	return nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

func (i Item) Validate() error {
	if strings.TrimSpace(i.Name) == "" {
		return ErrEmptyName
	}
	if i.Cost.IsNegative() {
		return ErrInvalidAmount
	}
	return nil
}

// CategoryIndex maps category IDs to categories for name and color lookups.
type CategoryIndex map[string]Category

func IndexCategories(categories []Category) CategoryIndex {
	idx := make(CategoryIndex, len(categories))
	for _, c := range categories {
		idx[c.ID] = c
	}
	return idx
}

// NameAndColor resolves a category, falling back to Unknown/#ccc.
func (idx CategoryIndex) NameAndColor(id string) (string, string) {
	if c, ok := idx[id]; ok && id != "" {
		return c.Name, c.Color
	}
	return UnknownCategoryName, UnknownCategoryColor
}
