// Package memory is an in-process store.Store, used for development and tests.
package memory

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"contas/internal/core"
)

type Store struct {
	mu          sync.RWMutex
	obligations map[string]core.RecurringObligation
	order       []string
	paid        map[string]core.PaidMarker
	categories  map[string]core.Category
	cards       map[string]core.CreditCard
	reminders   map[string]time.Time
}

// New returns an empty store.
func New() *Store {
	return &Store{
		obligations: map[string]core.RecurringObligation{},
		paid:        map[string]core.PaidMarker{},
		categories:  map[string]core.Category{},
		cards:       map[string]core.CreditCard{},
		reminders:   map[string]time.Time{},
	}
}

// NewFromFiles seeds the demo data. Category names listed one per line in
// base/seed_categories.txt replace the default categories.
func NewFromFiles(base string) *Store {
	s := NewDemo()
	names := readLines(filepath.Join(base, "seed_categories.txt"))
	if len(names) == 0 {
		return s
	}
	s.categories = map[string]core.Category{}
	for i, name := range names {
		id := strconv.Itoa(i + 1)
		s.categories[id] = core.Category{ID: id, Name: name, Color: "#6B7280", IsActive: true}
	}
	return s
}

// NewDemo returns a store with a few categories, two cards and four monthly bills.
func NewDemo() *Store {
	s := New()
	for _, c := range demoCategories {
		s.categories[c.ID] = c
	}
	for _, c := range demoCards {
		s.cards[c.ID] = c
	}
	for _, o := range demoObligations {
		s.obligations[o.ID] = o
		s.order = append(s.order, o.ID)
	}
	return s
}

func (s *Store) ListObligations(_ context.Context) ([]core.RecurringObligation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.RecurringObligation, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.obligations[id])
	}
	return out, nil
}

func (s *Store) GetObligation(_ context.Context, id string) (core.RecurringObligation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.obligations[id]
	if !ok {
		return core.RecurringObligation{}, fmt.Errorf("obligation %s: %w", id, core.ErrNotFound)
	}
	return o, nil
}

func (s *Store) CreateObligation(_ context.Context, o core.RecurringObligation) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if _, exists := s.obligations[o.ID]; exists {
		return "", fmt.Errorf("obligation %s already exists", o.ID)
	}
	s.obligations[o.ID] = o
	s.order = append(s.order, o.ID)
	return o.ID, nil
}

func (s *Store) UpdateObligation(_ context.Context, o core.RecurringObligation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.obligations[o.ID]; !ok {
		return fmt.Errorf("obligation %s: %w", o.ID, core.ErrNotFound)
	}
	s.obligations[o.ID] = o
	return nil
}

func (s *Store) DeactivateObligation(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.obligations[id]
	if !ok {
		return fmt.Errorf("obligation %s: %w", id, core.ErrNotFound)
	}
	o.IsActive = false
	s.obligations[id] = o
	return nil
}

func (s *Store) PaidKeys(_ context.Context, from, to core.Date) (core.PaidSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	set := core.PaidSet{}
	for key, m := range s.paid {
		if m.DueDate.Before(from) || m.DueDate.After(to) {
			continue
		}
		set[key] = struct{}{}
	}
	return set, nil
}

func (s *Store) PaidMarker(_ context.Context, instanceKey string) (core.PaidMarker, error) {
	m, ok := s.Marker(instanceKey)
	if !ok {
		return core.PaidMarker{}, fmt.Errorf("paid marker %s: %w", instanceKey, core.ErrNotFound)
	}
	return m, nil
}

func (s *Store) MarkPaid(_ context.Context, m core.PaidMarker) error {
	if err := m.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paid[m.InstanceKey] = m
	return nil
}

func (s *Store) MarkUnpaid(_ context.Context, instanceKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.paid, instanceKey)
	return nil
}

// Marker returns the stored paid marker for key.
func (s *Store) Marker(key string) (core.PaidMarker, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.paid[key]
	return m, ok
}

func (s *Store) ListCategories(_ context.Context) ([]core.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Category, 0, len(s.categories))
	for _, c := range s.categories {
		if c.IsActive {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) ListCreditCards(_ context.Context) ([]core.CreditCard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.CreditCard, 0, len(s.cards))
	for _, c := range s.cards {
		if c.IsActive {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) UpsertCategory(_ context.Context, c core.Category) (string, error) {
	if err := c.Validate(); err != nil {
		return "", err
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories[c.ID] = c
	return c.ID, nil
}

func (s *Store) UpsertCreditCard(_ context.Context, c core.CreditCard) (string, error) {
	if err := c.Validate(); err != nil {
		return "", err
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cards[c.ID] = c
	return c.ID, nil
}

func (s *Store) ReminderSent(_ context.Context, instanceKey, kind string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.reminders[instanceKey+"|"+kind]
	return ok, nil
}

func (s *Store) RecordReminder(_ context.Context, instanceKey, kind string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reminders[instanceKey+"|"+kind] = at
	return nil
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() error { return nil }

func readLines(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out []string
	seen := map[string]struct{}{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if _, dup := seen[line]; dup {
			continue
		}
		seen[line] = struct{}{}
		out = append(out, line)
	}
	return out
}
