// Package memory is an in-process backend. It is the default for local runs
// and the fake behind most service and HTTP tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"fintrack/internal/core"
)

type Store struct {
	mu           sync.RWMutex
	users        map[int64]core.User
	categories   map[string]core.Category
	items        map[string]core.Item
	transactions []core.Transaction
	goals        []core.Goal
	notified     map[string]time.Time
}

func New() *Store {
	return &Store{
		users:      make(map[int64]core.User),
		categories: make(map[string]core.Category),
		items:      make(map[string]core.Item),
		notified:   make(map[string]time.Time),
	}
}

func (s *Store) SaveUser(_ context.Context, u core.User) error {
	if u.ID <= 0 {
		return core.ErrInvalidUser
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
	return nil
}

func (s *Store) SaveCategory(_ context.Context, c core.Category) error {
	if err := c.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories[c.ID] = c
	return nil
}

func (s *Store) SaveItem(_ context.Context, i core.Item) error {
	if err := i.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[i.ID] = i
	return nil
}

func (s *Store) SaveTransaction(_ context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("invalid transaction %s: %w", t.ID, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions = append(s.transactions, t)
	return nil
}

func (s *Store) SaveGoal(_ context.Context, g core.Goal) error {
	if err := g.Validate(); err != nil {
		return fmt.Errorf("invalid goal %s: %w", g.ID, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.goals = append(s.goals, g)
	return nil
}

// ListTransactions returns a copy of the user's transactions in insertion order.
func (s *Store) ListTransactions(_ context.Context, userID int64) ([]core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []core.Transaction{}
	for _, t := range s.transactions {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *Store) ListGoals(_ context.Context, userID int64) ([]core.Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []core.Goal{}
	for _, g := range s.goals {
		if g.UserID == userID {
			out = append(out, g)
		}
	}
	return out, nil
}

// ListCategories returns categories sorted by name.
func (s *Store) ListCategories(_ context.Context) ([]core.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Category, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) MarkNotified(_ context.Context, userID int64, transactionID string) (bool, error) {
	key := fmt.Sprintf("%d/%s", userID, transactionID)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, seen := s.notified[key]; seen {
		return false, nil
	}
	s.notified[key] = time.Now()
	return true, nil
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() error { return nil }
