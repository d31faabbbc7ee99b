// Package sqlite stores the ledger in a SQLite database file.
//
// This is the storage the shop has always used: a single file holding the
// "timologia" table (or "invoices" after the rename) with five TEXT columns.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/JonMunkholm/ledger/internal/core"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Store is a core.Store backed by database/sql and the pure-Go SQLite driver.
type Store struct {
	db *sql.DB
}

var _ core.Store = (*Store)(nil)

// Open opens (creating if needed) the database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// One connection serializes writers and keeps ":memory:" databases shared.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite %s: %w", path, err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("configure sqlite: %w", err)
	}
	return &Store{db: db}, nil
}

// New wraps an already-open database.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// quoteIdent quotes a table name for use in SQL.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// classify maps driver errors onto the core sentinels.
func classify(err error, relation string) error {
	if err == nil {
		return nil
	}
	var serr *sqlite.Error
	if errors.As(err, &serr) {
		switch serr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
			return fmt.Errorf("%w: %v", core.ErrDuplicateID, err)
		}
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "no such table"):
		return fmt.Errorf("%w: %s", core.ErrRelationNotFound, relation)
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return fmt.Errorf("%w: %v", core.ErrDuplicateID, err)
	}
	return err
}

// EnsureRelation creates the table and adds the date column to tables from
// before it existed.
func (s *Store) EnsureRelation(ctx context.Context, relation string) error {
	t := quoteIdent(relation)
	create := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id TEXT PRIMARY KEY,
		name TEXT,
		description TEXT,
		amount TEXT,
		date TEXT
	)`, t)
	if _, err := s.db.ExecContext(ctx, create); err != nil {
		return fmt.Errorf("create %s: %w", relation, err)
	}

	cols, err := s.columns(ctx, relation)
	if err != nil {
		return err
	}
	if !cols["date"] {
		if _, err := s.db.ExecContext(ctx, fmt.Sprintf("ALTER TABLE %s ADD COLUMN date TEXT", t)); err != nil {
			return fmt.Errorf("add date column to %s: %w", relation, err)
		}
	}
	return nil
}

func (s *Store) columns(ctx context.Context, relation string) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", quoteIdent(relation)))
	if err != nil {
		return nil, fmt.Errorf("table info %s: %w", relation, err)
	}
	defer rows.Close()

	cols := make(map[string]bool)
	for rows.Next() {
		var (
			cid     int
			name    string
			ctype   string
			notnull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return nil, err
		}
		cols[strings.ToLower(name)] = true
	}
	return cols, rows.Err()
}

func (s *Store) Insert(ctx context.Context, relation string, rec core.InvoiceRecord) error {
	q := fmt.Sprintf("INSERT INTO %s (id, name, description, amount, date) VALUES (?, ?, ?, ?, ?)", quoteIdent(relation))
	_, err := s.db.ExecContext(ctx, q, insertArgs(rec)...)
	return classify(err, relation)
}

func (s *Store) Update(ctx context.Context, relation string, rec core.InvoiceRecord) error {
	q := fmt.Sprintf("UPDATE %s SET name = ?, description = ?, amount = ?, date = ? WHERE id = ?", quoteIdent(relation))
	res, err := s.db.ExecContext(ctx, q,
		rec.CustomerName, core.EncodeDescriptions(rec.Descriptions), rec.Amount, rec.Date, rec.ID)
	if err != nil {
		return classify(err, relation)
	}
	return requireAffected(res, rec.ID)
}

func (s *Store) Delete(ctx context.Context, relation, id string) error {
	res, err := s.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = ?", quoteIdent(relation)), id)
	if err != nil {
		return classify(err, relation)
	}
	return requireAffected(res, id)
}

func requireAffected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", core.ErrNotFound, id)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, relation, id string) (core.InvoiceRecord, error) {
	recs, err := s.query(ctx, relation, "WHERE id = ?", id)
	if err != nil {
		return core.InvoiceRecord{}, err
	}
	if len(recs) == 0 {
		return core.InvoiceRecord{}, fmt.Errorf("%w: %s", core.ErrNotFound, id)
	}
	return recs[0], nil
}

func (s *Store) SelectAll(ctx context.Context, relation string) ([]core.InvoiceRecord, error) {
	return s.query(ctx, relation, "")
}

func (s *Store) SelectByName(ctx context.Context, relation, name string) ([]core.InvoiceRecord, error) {
	return s.query(ctx, relation, `WHERE name LIKE ? ESCAPE '\'`, "%"+escapeLike(name)+"%")
}

func (s *Store) query(ctx context.Context, relation, where string, args ...any) ([]core.InvoiceRecord, error) {
	q := fmt.Sprintf("SELECT id, name, description, amount, date FROM %s %s ORDER BY id", quoteIdent(relation), where)
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil && strings.Contains(err.Error(), "no such column: date") {
		// Legacy tables predate the date column.
		q = fmt.Sprintf("SELECT id, name, description, amount, NULL FROM %s %s ORDER BY id", quoteIdent(relation), where)
		rows, err = s.db.QueryContext(ctx, q, args...)
	}
	if err != nil {
		return nil, classify(err, relation)
	}
	defer rows.Close()

	recs := []core.InvoiceRecord{}
	for rows.Next() {
		var id, name, desc, amount, date sql.NullString
		if err := rows.Scan(&id, &name, &desc, &amount, &date); err != nil {
			return nil, fmt.Errorf("scan %s: %w", relation, err)
		}
		recs = append(recs, core.InvoiceRecord{
			ID:           id.String,
			CustomerName: name.String,
			Descriptions: core.DecodeDescriptions(desc.String),
			Amount:       amount.String,
			Date:         date.String,
		})
	}
	return recs, classify(rows.Err(), relation)
}

func (s *Store) DistinctNames(ctx context.Context, relation string) ([]string, error) {
	q := fmt.Sprintf("SELECT DISTINCT name FROM %s WHERE name IS NOT NULL AND name <> '' ORDER BY name", quoteIdent(relation))
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, classify(err, relation)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *Store) DistinctDescriptions(ctx context.Context, relation string) ([]string, error) {
	q := fmt.Sprintf("SELECT DISTINCT description FROM %s WHERE description IS NOT NULL", quoteIdent(relation))
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, classify(err, relation)
	}
	defer rows.Close()

	seen := make(map[string]bool)
	var items []string
	for rows.Next() {
		var stored string
		if err := rows.Scan(&stored); err != nil {
			return nil, err
		}
		for _, item := range core.DecodeDescriptions(stored) {
			if !seen[item] {
				seen[item] = true
				items = append(items, item)
			}
		}
	}
	sort.Strings(items)
	return items, rows.Err()
}

// ReplaceAll deletes every row and inserts recs inside one transaction.
func (s *Store) ReplaceAll(ctx context.Context, relation string, recs []core.InvoiceRecord) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	t := quoteIdent(relation)
	if _, err = tx.ExecContext(ctx, "DELETE FROM "+t); err != nil {
		return classify(err, relation)
	}

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s (id, name, description, amount, date) VALUES (?, ?, ?, ?, ?)", t))
	if err != nil {
		return classify(err, relation)
	}
	defer stmt.Close()

	for _, rec := range recs {
		if _, err = stmt.ExecContext(ctx, insertArgs(rec)...); err != nil {
			return classify(err, relation)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func insertArgs(rec core.InvoiceRecord) []any {
	return []any{rec.ID, rec.CustomerName, core.EncodeDescriptions(rec.Descriptions), rec.Amount, rec.Date}
}

// escapeLike escapes LIKE wildcards so name matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
