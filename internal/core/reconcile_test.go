package core_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/JonMunkholm/ledger/internal/core"
	"github.com/JonMunkholm/ledger/internal/store/memory"
)

func newReconciler(store core.Store) (*core.Reconciler, *core.Ledger) {
	l := core.NewLedger(store, core.DefaultRelations)
	return core.NewReconciler(l, nil), l
}

func TestReconcileReplacesLedger(t *testing.T) {
	store := memory.New("invoices")
	seed(t, store, "invoices", core.InvoiceRecord{ID: "old", CustomerName: "Gone"})
	r, l := newReconciler(store)
	ctx := context.Background()

	rows := [][]string{
		{" ID ", "Name", "Description", "Amount", "Date"},
		{"1", " Acme ", "flyers | cards", "12,50", "01-02-24"},
		{"2", "Beta", "poster", "7", ""},
		{"", "", "", "", ""},
	}

	result, err := r.Reconcile(ctx, rows)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	if result.Imported != 2 || result.Skipped != 1 {
		t.Errorf("Imported/Skipped = %d/%d, want 2/1", result.Imported, result.Skipped)
	}
	if result.Relation != "invoices" {
		t.Errorf("Relation = %q, want invoices", result.Relation)
	}
	if result.ImportID == "" {
		t.Error("ImportID is empty")
	}
	if result.Columns.Index(core.RoleDate) != 4 {
		t.Errorf("date column = %d, want 4", result.Columns.Index(core.RoleDate))
	}

	recs, err := l.Records(ctx)
	if err != nil {
		t.Fatal(err)
	}
	want := []core.InvoiceRecord{
		{ID: "1", CustomerName: "Acme", Descriptions: []string{"flyers", "cards"}, Amount: "12,50", Date: "01-02-24"},
		{ID: "2", CustomerName: "Beta", Descriptions: []string{"poster"}, Amount: "7", Date: ""},
	}
	if !reflect.DeepEqual(recs, want) {
		t.Errorf("ledger = %+v\nwant %+v", recs, want)
	}
}

func TestReconcileHeaderOnlyEmptiesLedger(t *testing.T) {
	store := memory.New("invoices")
	r, l := newReconciler(store)
	ctx := context.Background()

	if _, err := r.Reconcile(ctx, [][]string{{"ID", "Name", "Amount"}, {"1", "A", "5"}}); err != nil {
		t.Fatal(err)
	}
	result, err := r.Reconcile(ctx, [][]string{{"issue_number", "name"}})
	if err != nil {
		t.Fatalf("Reconcile(header only) error = %v", err)
	}
	if result.Imported != 0 {
		t.Errorf("Imported = %d, want 0", result.Imported)
	}
	if recs, _ := l.Records(ctx); len(recs) != 0 {
		t.Errorf("ledger has %d rows, want 0", len(recs))
	}
}

func TestReconcileRejectsWithoutWriting(t *testing.T) {
	original := core.InvoiceRecord{ID: "keep", CustomerName: "Keep", Descriptions: []string{}, Amount: "1"}

	tests := []struct {
		name  string
		rows  [][]string
		check func(t *testing.T, err error)
	}{
		{
			name: "no rows",
			rows: nil,
			check: func(t *testing.T, err error) {
				var e *core.EmptyInputError
				if !errors.As(err, &e) {
					t.Errorf("error = %v, want *EmptyInputError", err)
				}
			},
		},
		{
			name: "missing customer column",
			rows: [][]string{{"id", "amount"}, {"1", "5"}},
			check: func(t *testing.T, err error) {
				var e *core.SchemaError
				if !errors.As(err, &e) {
					t.Fatalf("error = %v, want *SchemaError", err)
				}
				if want := []core.Role{core.RoleCustomer}; !reflect.DeepEqual(e.Missing, want) {
					t.Errorf("Missing = %v, want %v", e.Missing, want)
				}
			},
		},
		{
			name: "missing both required columns",
			rows: [][]string{{"amount", "date"}},
			check: func(t *testing.T, err error) {
				var e *core.SchemaError
				if !errors.As(err, &e) || len(e.Missing) != 2 {
					t.Errorf("error = %v, want *SchemaError listing 2 roles", err)
				}
			},
		},
		{
			name: "duplicate id in file",
			rows: [][]string{{"id", "name"}, {"1", "A"}, {"2", "B"}, {"1", "C"}},
			check: func(t *testing.T, err error) {
				var e *core.DuplicateIdentifierError
				if !errors.As(err, &e) {
					t.Fatalf("error = %v, want *DuplicateIdentifierError", err)
				}
				if e.ID != "1" || e.Row != 3 {
					t.Errorf("duplicate = %q at row %d, want 1 at row 3", e.ID, e.Row)
				}
			},
		},
		{
			name: "empty id",
			rows: [][]string{{"id", "name"}, {"1", "A"}, {"", "B"}},
			check: func(t *testing.T, err error) {
				var e *core.ValidationError
				if !errors.As(err, &e) || e.Row != 2 || e.Field != "id" {
					t.Errorf("error = %v, want *ValidationError on id at row 2", err)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.New("invoices")
			seed(t, store, "invoices", original)
			r, l := newReconciler(store)

			_, err := r.Reconcile(context.Background(), tt.rows)
			tt.check(t, err)

			recs, _ := l.Records(context.Background())
			if !reflect.DeepEqual(recs, []core.InvoiceRecord{original}) {
				t.Errorf("ledger changed to %+v", recs)
			}
		})
	}
}

func TestBuildRecordsRaggedRows(t *testing.T) {
	r := core.NewReconciler(nil, nil)

	rows := [][]string{
		{"issue-number", "name", "details", "euro", "date"},
		{"10", "Acme"},
		{"11", "Beta", "a\nb", "3", "02-02-24", "extra"},
	}
	recs, cols, skipped, err := r.BuildRecords(rows)
	if err != nil {
		t.Fatalf("BuildRecords() error = %v", err)
	}
	if skipped != 0 {
		t.Errorf("skipped = %d, want 0", skipped)
	}
	if cols.Index(core.RoleAmount) != 3 {
		t.Errorf("amount column = %d, want 3", cols.Index(core.RoleAmount))
	}

	want := []core.InvoiceRecord{
		{ID: "10", CustomerName: "Acme", Descriptions: []string{}, Amount: "", Date: ""},
		{ID: "11", CustomerName: "Beta", Descriptions: []string{"a", "b"}, Amount: "3", Date: "02-02-24"},
	}
	if !reflect.DeepEqual(recs, want) {
		t.Errorf("records = %+v\nwant %+v", recs, want)
	}
}

func TestBuildRecordsCustomSynonyms(t *testing.T) {
	resolver := core.NewHeaderResolver(map[core.Role][]string{
		core.RoleCustomer: {"client"},
		core.RoleAmount:   {"total"},
	})
	r := core.NewReconciler(nil, resolver)

	recs, _, _, err := r.BuildRecords([][]string{{"Id", "Client", "Total"}, {"1", "Acme", "9"}})
	if err != nil {
		t.Fatalf("BuildRecords() error = %v", err)
	}
	if recs[0].CustomerName != "Acme" || recs[0].Amount != "9" {
		t.Errorf("record = %+v", recs[0])
	}
}
