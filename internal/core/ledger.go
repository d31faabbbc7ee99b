package core

// ledger.go is the query facade over a Store.
//
// The ledger table has been renamed at least once, so deployed databases may
// hold it under the current name or the legacy one. Every operation tries the
// primary identity first and retries on the fallback only when the store
// reports that the relation does not exist. Any other error is returned as is.

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// DefaultTopCustomers is the length of the ranked customer list.
const DefaultTopCustomers = 8

// Ledger runs ledger operations against whichever relation holds the data.
type Ledger struct {
	store     Store
	relations Relations
	topN      int
}

// LedgerOption configures a Ledger.
type LedgerOption func(*Ledger)

// WithTopCustomers sets the length of the ranked customer list in summaries.
func WithTopCustomers(n int) LedgerOption {
	return func(l *Ledger) {
		if n > 0 {
			l.topN = n
		}
	}
}

// NewLedger returns a facade over store. Empty relation names fall back to
// DefaultRelations.
func NewLedger(store Store, relations Relations, opts ...LedgerOption) *Ledger {
	if relations.Primary == "" {
		relations.Primary = DefaultRelations.Primary
	}
	if relations.Fallback == "" {
		relations.Fallback = DefaultRelations.Fallback
	}
	l := &Ledger{store: store, relations: relations, topN: DefaultTopCustomers}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Relations returns the configured table identities.
func (l *Ledger) Relations() Relations {
	return l.relations
}

// resolve runs fn against each relation identity in turn, moving on only
// when fn reports an unknown relation. It returns the identity that served
// the call.
func (l *Ledger) resolve(ctx context.Context, fn func(relation string) error) (string, error) {
	var tried []string
	for _, rel := range l.relations.candidates() {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		err := fn(rel)
		if err == nil {
			return rel, nil
		}
		if !IsRelationNotFound(err) {
			return rel, err
		}
		tried = append(tried, rel)
	}
	return "", &RelationNotFoundError{Relations: tried}
}

// EnsureSchema brings the relation that holds the ledger up to date. The
// primary relation is created only when neither identity exists, so a
// legacy table keeps serving reads after a migration. It returns the
// relation migrated.
func (l *Ledger) EnsureSchema(ctx context.Context) (string, error) {
	return l.ensure(ctx)
}

// ensure migrates the relation resolve picks and returns it. A row lookup
// serves as the existence check; its outcome is irrelevant unless the
// relation is unknown.
func (l *Ledger) ensure(ctx context.Context) (string, error) {
	rel, err := l.resolve(ctx, func(rel string) error {
		_, err := l.store.Get(ctx, rel, "")
		return err
	})
	if IsRelationNotFound(err) {
		rel = l.relations.Primary
	} else if ctxErr := ctx.Err(); ctxErr != nil {
		return "", ctxErr
	}
	if err := l.store.EnsureRelation(ctx, rel); err != nil {
		return "", fmt.Errorf("ensure relation %s: %w", rel, err)
	}
	return rel, nil
}

// Records returns every record in store order.
func (l *Ledger) Records(ctx context.Context) ([]InvoiceRecord, error) {
	var recs []InvoiceRecord
	_, err := l.resolve(ctx, func(rel string) error {
		var err error
		recs, err = l.store.SelectAll(ctx, rel)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("select all: %w", err)
	}
	return recs, nil
}

// SumAmounts returns the sum of every record's coerced amount.
func (l *Ledger) SumAmounts(ctx context.Context) (float64, error) {
	recs, err := l.Records(ctx)
	if err != nil {
		return 0, err
	}
	return Summarize(recs, l.topN).TotalSales, nil
}

// TopCustomers returns up to n customers ranked by total coerced amount.
// n <= 0 uses the configured default.
func (l *Ledger) TopCustomers(ctx context.Context, n int) ([]CustomerTotal, error) {
	if n <= 0 {
		n = l.topN
	}
	recs, err := l.Records(ctx)
	if err != nil {
		return nil, err
	}
	return Summarize(recs, n).TopCustomers, nil
}

// MostExpensive returns the record with the highest coerced amount, or nil
// when the ledger is empty.
func (l *Ledger) MostExpensive(ctx context.Context) (*InvoiceRecord, error) {
	recs, err := l.Records(ctx)
	if err != nil {
		return nil, err
	}
	return Summarize(recs, l.topN).MostExpensive, nil
}

// Summarize computes the reporting summary from a single read of the ledger.
func (l *Ledger) Summarize(ctx context.Context) (Summary, error) {
	recs, err := l.Records(ctx)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(recs, l.topN), nil
}

// Get returns the record with the given id.
func (l *Ledger) Get(ctx context.Context, id string) (InvoiceRecord, error) {
	var rec InvoiceRecord
	_, err := l.resolve(ctx, func(rel string) error {
		var err error
		rec, err = l.store.Get(ctx, rel, id)
		return err
	})
	if err != nil {
		return InvoiceRecord{}, fmt.Errorf("get %q: %w", id, err)
	}
	return rec, nil
}

// Insert adds a new record. An existing id yields *DuplicateIdentifierError.
func (l *Ledger) Insert(ctx context.Context, rec InvoiceRecord) error {
	if err := validateRecord(rec, 0); err != nil {
		return err
	}
	_, err := l.resolve(ctx, func(rel string) error {
		return l.store.Insert(ctx, rel, rec)
	})
	if err != nil {
		return duplicateOr(err, rec.ID, "insert")
	}
	return nil
}

// Update replaces the stored fields of an existing record.
func (l *Ledger) Update(ctx context.Context, rec InvoiceRecord) error {
	if err := validateRecord(rec, 0); err != nil {
		return err
	}
	_, err := l.resolve(ctx, func(rel string) error {
		return l.store.Update(ctx, rel, rec)
	})
	if err != nil {
		return fmt.Errorf("update %q: %w", rec.ID, err)
	}
	return nil
}

// Delete removes the record with the given id.
func (l *Ledger) Delete(ctx context.Context, id string) error {
	_, err := l.resolve(ctx, func(rel string) error {
		return l.store.Delete(ctx, rel, id)
	})
	if err != nil {
		return fmt.Errorf("delete %q: %w", id, err)
	}
	return nil
}

// SearchByName returns records whose customer name contains name,
// case-insensitively.
func (l *Ledger) SearchByName(ctx context.Context, name string) ([]InvoiceRecord, error) {
	var recs []InvoiceRecord
	_, err := l.resolve(ctx, func(rel string) error {
		var err error
		recs, err = l.store.SelectByName(ctx, rel, strings.TrimSpace(name))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", name, err)
	}
	return recs, nil
}

// DistinctNames returns every non-empty customer name once.
func (l *Ledger) DistinctNames(ctx context.Context) ([]string, error) {
	var names []string
	_, err := l.resolve(ctx, func(rel string) error {
		var err error
		names, err = l.store.DistinctNames(ctx, rel)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("distinct names: %w", err)
	}
	return names, nil
}

// DistinctDescriptions returns every line item used so far, once each.
func (l *Ledger) DistinctDescriptions(ctx context.Context) ([]string, error) {
	var items []string
	_, err := l.resolve(ctx, func(rel string) error {
		var err error
		items, err = l.store.DistinctDescriptions(ctx, rel)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("distinct descriptions: %w", err)
	}
	return items, nil
}

// ReplaceAll atomically swaps the ledger contents for recs and returns the
// relation written. The relation is migrated first; when neither identity
// exists the primary is created.
func (l *Ledger) ReplaceAll(ctx context.Context, recs []InvoiceRecord) (string, error) {
	rel, err := l.ensure(ctx)
	if err != nil {
		return "", err
	}
	if err := l.store.ReplaceAll(ctx, rel, recs); err != nil {
		return "", duplicateOr(err, "", "replace")
	}
	return rel, nil
}

func validateRecord(rec InvoiceRecord, row int) error {
	if strings.TrimSpace(rec.ID) == "" {
		return &ValidationError{Row: row, Field: "id", Reason: "must not be empty"}
	}
	return nil
}

// duplicateOr converts a store-level primary-key violation into a
// *DuplicateIdentifierError and wraps everything else with op.
func duplicateOr(err error, id, op string) error {
	var dup *DuplicateIdentifierError
	if errors.As(err, &dup) {
		return dup
	}
	if errors.Is(err, ErrDuplicateID) {
		return &DuplicateIdentifierError{ID: id}
	}
	return fmt.Errorf("%s: %w", op, err)
}
