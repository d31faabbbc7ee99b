// Package memory is an in-process ledger store, used for demos and tests.
//
// Rows are kept in their stored text form (description encoded as a JSON
// array) so reads exercise the same decoding path as the SQL stores.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/JonMunkholm/ledger/internal/core"
)

type row struct {
	id, name, description, amount, date string
}

// Store keeps each relation as a map keyed by invoice id.
type Store struct {
	mu        sync.RWMutex
	relations map[string]map[string]row
}

// New returns a store in which the given relations already exist.
func New(relations ...string) *Store {
	s := &Store{relations: make(map[string]map[string]row)}
	for _, rel := range relations {
		s.relations[rel] = make(map[string]row)
	}
	return s
}

var _ core.Store = (*Store)(nil)

func toRow(rec core.InvoiceRecord) row {
	return row{
		id:          rec.ID,
		name:        rec.CustomerName,
		description: core.EncodeDescriptions(rec.Descriptions),
		amount:      rec.Amount,
		date:        rec.Date,
	}
}

func (r row) record() core.InvoiceRecord {
	return core.InvoiceRecord{
		ID:           r.id,
		CustomerName: r.name,
		Descriptions: core.DecodeDescriptions(r.description),
		Amount:       r.amount,
		Date:         r.date,
	}
}

// table returns the named relation; callers hold s.mu.
func (s *Store) table(relation string) (map[string]row, error) {
	t, ok := s.relations[relation]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrRelationNotFound, relation)
	}
	return t, nil
}

// sorted returns the rows of t ordered by id.
func sorted(t map[string]row, keep func(row) bool) []core.InvoiceRecord {
	ids := make([]string, 0, len(t))
	for id, r := range t {
		if keep == nil || keep(r) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	out := make([]core.InvoiceRecord, 0, len(ids))
	for _, id := range ids {
		out = append(out, t[id].record())
	}
	return out
}

func (s *Store) EnsureRelation(_ context.Context, relation string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.relations[relation]; !ok {
		s.relations[relation] = make(map[string]row)
	}
	return nil
}

func (s *Store) Insert(_ context.Context, relation string, rec core.InvoiceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.table(relation)
	if err != nil {
		return err
	}
	if _, exists := t[rec.ID]; exists {
		return fmt.Errorf("%w: %s", core.ErrDuplicateID, rec.ID)
	}
	t[rec.ID] = toRow(rec)
	return nil
}

func (s *Store) Update(_ context.Context, relation string, rec core.InvoiceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.table(relation)
	if err != nil {
		return err
	}
	if _, exists := t[rec.ID]; !exists {
		return fmt.Errorf("%w: %s", core.ErrNotFound, rec.ID)
	}
	t[rec.ID] = toRow(rec)
	return nil
}

func (s *Store) Delete(_ context.Context, relation, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.table(relation)
	if err != nil {
		return err
	}
	if _, exists := t[id]; !exists {
		return fmt.Errorf("%w: %s", core.ErrNotFound, id)
	}
	delete(t, id)
	return nil
}

func (s *Store) Get(_ context.Context, relation, id string) (core.InvoiceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, err := s.table(relation)
	if err != nil {
		return core.InvoiceRecord{}, err
	}
	r, ok := t[id]
	if !ok {
		return core.InvoiceRecord{}, fmt.Errorf("%w: %s", core.ErrNotFound, id)
	}
	return r.record(), nil
}

func (s *Store) SelectAll(_ context.Context, relation string) ([]core.InvoiceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, err := s.table(relation)
	if err != nil {
		return nil, err
	}
	return sorted(t, nil), nil
}

func (s *Store) SelectByName(_ context.Context, relation, name string) ([]core.InvoiceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, err := s.table(relation)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(name)
	return sorted(t, func(r row) bool {
		return strings.Contains(strings.ToLower(r.name), needle)
	}), nil
}

func (s *Store) DistinctNames(_ context.Context, relation string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, err := s.table(relation)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var names []string
	for _, r := range t {
		if r.name != "" && !seen[r.name] {
			seen[r.name] = true
			names = append(names, r.name)
		}
	}
	sort.Strings(names)
	return names, nil
}

func (s *Store) DistinctDescriptions(_ context.Context, relation string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, err := s.table(relation)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var items []string
	for _, r := range t {
		for _, item := range core.DecodeDescriptions(r.description) {
			if !seen[item] {
				seen[item] = true
				items = append(items, item)
			}
		}
	}
	sort.Strings(items)
	return items, nil
}

// ReplaceAll builds the new table aside and swaps it in under the write lock,
// so readers see either the old rows or the new ones.
func (s *Store) ReplaceAll(_ context.Context, relation string, recs []core.InvoiceRecord) error {
	next := make(map[string]row, len(recs))
	for _, rec := range recs {
		if _, exists := next[rec.ID]; exists {
			return fmt.Errorf("%w: %s", core.ErrDuplicateID, rec.ID)
		}
		next[rec.ID] = toRow(rec)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.table(relation); err != nil {
		return err
	}
	s.relations[relation] = next
	return nil
}
