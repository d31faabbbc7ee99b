package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/JonMunkholm/ledger/internal/core"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStoreRelationNotFound(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name string
		call func() error
	}{
		{"select all", func() error { _, err := s.SelectAll(ctx, "invoices"); return err }},
		{"get", func() error { _, err := s.Get(ctx, "invoices", "1"); return err }},
		{"insert", func() error { return s.Insert(ctx, "invoices", core.InvoiceRecord{ID: "1"}) }},
		{"distinct names", func() error { _, err := s.DistinctNames(ctx, "invoices"); return err }},
		{"replace all", func() error { return s.ReplaceAll(ctx, "invoices", nil) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); !errors.Is(err, core.ErrRelationNotFound) {
				t.Errorf("error = %v, want ErrRelationNotFound", err)
			}
		})
	}
}

func TestStoreCRUD(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	if err := s.EnsureRelation(ctx, "invoices"); err != nil {
		t.Fatalf("EnsureRelation() error = %v", err)
	}

	rec := core.InvoiceRecord{ID: "7", CustomerName: "Acme", Descriptions: []string{"flyers", "πόστερ"}, Amount: "12,50", Date: "03-04-24"}
	if err := s.Insert(ctx, "invoices", rec); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if err := s.Insert(ctx, "invoices", rec); !errors.Is(err, core.ErrDuplicateID) {
		t.Errorf("duplicate Insert() error = %v, want ErrDuplicateID", err)
	}

	got, err := s.Get(ctx, "invoices", "7")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !reflect.DeepEqual(got, rec) {
		t.Errorf("Get() = %+v, want %+v", got, rec)
	}

	rec.Amount = "15"
	if err := s.Update(ctx, "invoices", rec); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if got, _ := s.Get(ctx, "invoices", "7"); got.Amount != "15" {
		t.Errorf("Amount after Update = %q, want 15", got.Amount)
	}
	if err := s.Update(ctx, "invoices", core.InvoiceRecord{ID: "nope"}); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Update(missing) error = %v, want ErrNotFound", err)
	}

	if err := s.Delete(ctx, "invoices", "7"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := s.Delete(ctx, "invoices", "7"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}

func TestStoreReplaceAllIsAtomic(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	if err := s.EnsureRelation(ctx, "timologia"); err != nil {
		t.Fatal(err)
	}
	if err := s.Insert(ctx, "timologia", core.InvoiceRecord{ID: "old", CustomerName: "Keep"}); err != nil {
		t.Fatal(err)
	}

	err := s.ReplaceAll(ctx, "timologia", []core.InvoiceRecord{{ID: "a"}, {ID: "a"}})
	if !errors.Is(err, core.ErrDuplicateID) {
		t.Fatalf("ReplaceAll() error = %v, want ErrDuplicateID", err)
	}

	all, err := s.SelectAll(ctx, "timologia")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 || all[0].ID != "old" {
		t.Errorf("rows after failed replace = %+v, want only old", all)
	}

	if err := s.ReplaceAll(ctx, "timologia", []core.InvoiceRecord{{ID: "b", CustomerName: "New"}, {ID: "a"}}); err != nil {
		t.Fatalf("ReplaceAll() error = %v", err)
	}
	all, _ = s.SelectAll(ctx, "timologia")
	if len(all) != 2 || all[0].ID != "a" || all[1].ID != "b" {
		t.Errorf("rows after replace = %+v", all)
	}
}

func TestStoreSearchAndDistinct(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	if err := s.EnsureRelation(ctx, "invoices"); err != nil {
		t.Fatal(err)
	}
	recs := []core.InvoiceRecord{
		{ID: "1", CustomerName: "Acme", Descriptions: []string{"flyers"}},
		{ID: "2", CustomerName: "ACME Labs", Descriptions: []string{"cards", "flyers"}},
		{ID: "3", CustomerName: "100%_Print", Descriptions: []string{}},
	}
	if err := s.ReplaceAll(ctx, "invoices", recs); err != nil {
		t.Fatal(err)
	}

	found, err := s.SelectByName(ctx, "invoices", "acme")
	if err != nil {
		t.Fatal(err)
	}
	if len(found) != 2 {
		t.Errorf("SelectByName(acme) = %d rows, want 2", len(found))
	}

	found, _ = s.SelectByName(ctx, "invoices", "%_")
	if len(found) != 1 || found[0].ID != "3" {
		t.Errorf("SelectByName(%%_) = %+v, want only id 3", found)
	}

	names, _ := s.DistinctNames(ctx, "invoices")
	if want := []string{"100%_Print", "ACME Labs", "Acme"}; !reflect.DeepEqual(names, want) {
		t.Errorf("DistinctNames() = %q, want %q", names, want)
	}

	items, _ := s.DistinctDescriptions(ctx, "invoices")
	if want := []string{"cards", "flyers"}; !reflect.DeepEqual(items, want) {
		t.Errorf("DistinctDescriptions() = %q, want %q", items, want)
	}
}

func TestEnsureRelationAddsDateColumn(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.db.ExecContext(ctx, `CREATE TABLE timologia (id TEXT PRIMARY KEY, name TEXT, description TEXT, amount TEXT)`); err != nil {
		t.Fatal(err)
	}
	if _, err := s.db.ExecContext(ctx, `INSERT INTO timologia VALUES ('1', 'Acme', NULL, '10')`); err != nil {
		t.Fatal(err)
	}

	all, err := s.SelectAll(ctx, "timologia")
	if err != nil {
		t.Fatalf("SelectAll() on legacy table error = %v", err)
	}
	if len(all) != 1 || all[0].Date != "" || len(all[0].Descriptions) != 0 {
		t.Errorf("legacy row = %+v", all)
	}

	if err := s.EnsureRelation(ctx, "timologia"); err != nil {
		t.Fatalf("EnsureRelation() error = %v", err)
	}
	cols, err := s.columns(ctx, "timologia")
	if err != nil {
		t.Fatal(err)
	}
	if !cols["date"] {
		t.Error("date column not added")
	}
}

func createLegacyTable(t *testing.T, s *Store) {
	t.Helper()
	ctx := context.Background()
	if _, err := s.db.ExecContext(ctx, `CREATE TABLE timologia (id TEXT PRIMARY KEY, name TEXT, description TEXT, amount TEXT)`); err != nil {
		t.Fatal(err)
	}
	if _, err := s.db.ExecContext(ctx, `INSERT INTO timologia VALUES ('1', 'Acme', '["flyers"]', '100')`); err != nil {
		t.Fatal(err)
	}
}

func TestLedgerMigratesLegacyTable(t *testing.T) {
	s := openTestStore(t)
	createLegacyTable(t, s)
	ctx := context.Background()
	l := core.NewLedger(s, core.DefaultRelations)

	rel, err := l.EnsureSchema(ctx)
	if err != nil {
		t.Fatalf("EnsureSchema() error = %v", err)
	}
	if rel != "timologia" {
		t.Errorf("EnsureSchema() relation = %q, want timologia", rel)
	}

	summary, err := l.Summarize(ctx)
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if summary.TotalSales != 100 {
		t.Errorf("TotalSales = %v, want 100", summary.TotalSales)
	}

	cols, err := s.columns(ctx, "timologia")
	if err != nil {
		t.Fatal(err)
	}
	if !cols["date"] {
		t.Error("date column not added to the legacy table")
	}
	if _, err := s.SelectAll(ctx, "invoices"); !core.IsRelationNotFound(err) {
		t.Errorf("SelectAll(invoices) error = %v, want relation not found", err)
	}
}

func TestReconcileIntoLegacyTableWithoutDate(t *testing.T) {
	s := openTestStore(t)
	createLegacyTable(t, s)
	ctx := context.Background()
	l := core.NewLedger(s, core.DefaultRelations)

	rows := [][]string{
		{"Issue Number", "Name", "Amount", "Date"},
		{"7", "Beta", "12,50", "01-03-24"},
	}
	result, err := core.NewReconciler(l, nil).Reconcile(ctx, rows)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	if result.Relation != "timologia" || result.Imported != 1 {
		t.Errorf("result = %+v, want 1 row into timologia", result)
	}

	rec, err := l.Get(ctx, "7")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if rec.Date != "01-03-24" {
		t.Errorf("Date = %q, want 01-03-24", rec.Date)
	}
}
