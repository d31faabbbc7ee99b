// Package postgres stores the ledger in PostgreSQL through a pgx pool.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/JonMunkholm/ledger/internal/core"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgreSQL error codes the store translates.
const (
	codeUndefinedTable  = "42P01"
	codeUniqueViolation = "23505"
)

// DBTX is the interface for database operations.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Store is a core.Store on a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
}

var _ core.Store = (*Store)(nil)

// New wraps pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

var columns = []string{"id", "name", "description", "amount", "date"}

func ident(relation string) string {
	return pgx.Identifier{relation}.Sanitize()
}

// classify maps PostgreSQL errors onto the core sentinels.
func classify(err error, relation string) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUndefinedTable:
			return fmt.Errorf("%w: %s", core.ErrRelationNotFound, relation)
		case codeUniqueViolation:
			return fmt.Errorf("%w: %s", core.ErrDuplicateID, pgErr.Detail)
		}
	}
	return err
}

// EnsureRelation creates the table, and adds the date column to tables
// created before it existed.
func (s *Store) EnsureRelation(ctx context.Context, relation string) error {
	t := ident(relation)
	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			name TEXT,
			description TEXT,
			amount TEXT,
			date TEXT
		)`, t),
		fmt.Sprintf(`ALTER TABLE %s ADD COLUMN IF NOT EXISTS date TEXT`, t),
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure %s: %w", relation, err)
		}
	}
	return nil
}

func (s *Store) Insert(ctx context.Context, relation string, rec core.InvoiceRecord) error {
	return insert(ctx, s.pool, relation, rec)
}

func insert(ctx context.Context, db DBTX, relation string, rec core.InvoiceRecord) error {
	q := fmt.Sprintf("INSERT INTO %s (id, name, description, amount, date) VALUES ($1, $2, $3, $4, $5)", ident(relation))
	_, err := db.Exec(ctx, q, rowValues(rec)...)
	return classify(err, relation)
}

func (s *Store) Update(ctx context.Context, relation string, rec core.InvoiceRecord) error {
	q := fmt.Sprintf("UPDATE %s SET name = $2, description = $3, amount = $4, date = $5 WHERE id = $1", ident(relation))
	tag, err := s.pool.Exec(ctx, q, rowValues(rec)...)
	if err != nil {
		return classify(err, relation)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", core.ErrNotFound, rec.ID)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, relation, id string) error {
	tag, err := s.pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = $1", ident(relation)), id)
	if err != nil {
		return classify(err, relation)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", core.ErrNotFound, id)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, relation, id string) (core.InvoiceRecord, error) {
	recs, err := query(ctx, s.pool, relation, "WHERE id = $1", id)
	if err != nil {
		return core.InvoiceRecord{}, err
	}
	if len(recs) == 0 {
		return core.InvoiceRecord{}, fmt.Errorf("%w: %s", core.ErrNotFound, id)
	}
	return recs[0], nil
}

func (s *Store) SelectAll(ctx context.Context, relation string) ([]core.InvoiceRecord, error) {
	return query(ctx, s.pool, relation, "")
}

func (s *Store) SelectByName(ctx context.Context, relation, name string) ([]core.InvoiceRecord, error) {
	return query(ctx, s.pool, relation, `WHERE name ILIKE $1`, "%"+escapeLike(name)+"%")
}

func query(ctx context.Context, db DBTX, relation, where string, args ...any) ([]core.InvoiceRecord, error) {
	q := fmt.Sprintf("SELECT id, name, description, amount, date FROM %s %s ORDER BY id", ident(relation), where)
	rows, err := db.Query(ctx, q, args...)
	if err != nil {
		return nil, classify(err, relation)
	}

	recs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (core.InvoiceRecord, error) {
		var id, name, desc, amount, date *string
		if err := row.Scan(&id, &name, &desc, &amount, &date); err != nil {
			return core.InvoiceRecord{}, err
		}
		return core.InvoiceRecord{
			ID:           deref(id),
			CustomerName: deref(name),
			Descriptions: core.DecodeDescriptions(deref(desc)),
			Amount:       deref(amount),
			Date:         deref(date),
		}, nil
	})
	if err != nil {
		return nil, classify(err, relation)
	}
	if recs == nil {
		recs = []core.InvoiceRecord{}
	}
	return recs, nil
}

func (s *Store) DistinctNames(ctx context.Context, relation string) ([]string, error) {
	q := fmt.Sprintf("SELECT DISTINCT name FROM %s WHERE name IS NOT NULL AND name <> '' ORDER BY name", ident(relation))
	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, classify(err, relation)
	}
	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	return names, classify(err, relation)
}

func (s *Store) DistinctDescriptions(ctx context.Context, relation string) ([]string, error) {
	q := fmt.Sprintf("SELECT DISTINCT description FROM %s WHERE description IS NOT NULL", ident(relation))
	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, classify(err, relation)
	}
	stored, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, classify(err, relation)
	}
	return mergeDescriptions(stored), nil
}

// mergeDescriptions decodes every stored list and returns the sorted set of
// items.
func mergeDescriptions(stored []string) []string {
	seen := make(map[string]bool)
	var items []string
	for _, raw := range stored {
		for _, item := range core.DecodeDescriptions(raw) {
			if !seen[item] {
				seen[item] = true
				items = append(items, item)
			}
		}
	}
	sort.Strings(items)
	return items
}

// ReplaceAll swaps the table contents in one transaction, streaming the new
// rows with COPY.
func (s *Store) ReplaceAll(ctx context.Context, relation string, recs []core.InvoiceRecord) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	if _, err := tx.Exec(ctx, "DELETE FROM "+ident(relation)); err != nil {
		return classify(err, relation)
	}

	if len(recs) > 0 {
		src := pgx.CopyFromSlice(len(recs), func(i int) ([]any, error) {
			return rowValues(recs[i]), nil
		})
		if _, err := tx.CopyFrom(ctx, pgx.Identifier{relation}, columns, src); err != nil {
			return classify(err, relation)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func rowValues(rec core.InvoiceRecord) []any {
	return []any{rec.ID, rec.CustomerName, core.EncodeDescriptions(rec.Descriptions), rec.Amount, rec.Date}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// escapeLike escapes ILIKE wildcards using the default backslash escape.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
