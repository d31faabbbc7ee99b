package memory

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/JonMunkholm/ledger/internal/core"
)

func TestStoreRelationNotFound(t *testing.T) {
	s := New("timologia")
	ctx := context.Background()

	_, err := s.SelectAll(ctx, "invoices")
	if !errors.Is(err, core.ErrRelationNotFound) {
		t.Errorf("SelectAll(invoices) error = %v, want ErrRelationNotFound", err)
	}
	if _, err := s.SelectAll(ctx, "timologia"); err != nil {
		t.Errorf("SelectAll(timologia) error = %v", err)
	}

	if err := s.EnsureRelation(ctx, "invoices"); err != nil {
		t.Fatalf("EnsureRelation() error = %v", err)
	}
	if _, err := s.SelectAll(ctx, "invoices"); err != nil {
		t.Errorf("SelectAll after EnsureRelation error = %v", err)
	}
}

func TestStoreCRUD(t *testing.T) {
	s := New("invoices")
	ctx := context.Background()
	rec := core.InvoiceRecord{ID: "1", CustomerName: "Acme", Descriptions: []string{"flyers"}, Amount: "10", Date: "01-02-24"}

	if err := s.Insert(ctx, "invoices", rec); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if err := s.Insert(ctx, "invoices", rec); !errors.Is(err, core.ErrDuplicateID) {
		t.Errorf("second Insert() error = %v, want ErrDuplicateID", err)
	}

	got, err := s.Get(ctx, "invoices", "1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !reflect.DeepEqual(got, rec) {
		t.Errorf("Get() = %+v, want %+v", got, rec)
	}

	rec.Amount = "12"
	if err := s.Update(ctx, "invoices", rec); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if err := s.Update(ctx, "invoices", core.InvoiceRecord{ID: "9"}); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Update(missing) error = %v, want ErrNotFound", err)
	}

	if err := s.Delete(ctx, "invoices", "1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := s.Get(ctx, "invoices", "1"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Get after Delete error = %v, want ErrNotFound", err)
	}
}

func TestStoreQueries(t *testing.T) {
	s := New("invoices")
	ctx := context.Background()
	recs := []core.InvoiceRecord{
		{ID: "3", CustomerName: "Beta Print", Descriptions: []string{"cards", "flyers"}},
		{ID: "1", CustomerName: "Acme", Descriptions: []string{"flyers"}},
		{ID: "2", CustomerName: "acme labs", Descriptions: []string{}},
	}
	if err := s.ReplaceAll(ctx, "invoices", recs); err != nil {
		t.Fatalf("ReplaceAll() error = %v", err)
	}

	all, _ := s.SelectAll(ctx, "invoices")
	if len(all) != 3 || all[0].ID != "1" || all[2].ID != "3" {
		t.Errorf("SelectAll() not ordered by id: %+v", all)
	}

	found, _ := s.SelectByName(ctx, "invoices", "ACME")
	if len(found) != 2 {
		t.Errorf("SelectByName(ACME) = %d rows, want 2", len(found))
	}

	names, _ := s.DistinctNames(ctx, "invoices")
	if want := []string{"Acme", "Beta Print", "acme labs"}; !reflect.DeepEqual(names, want) {
		t.Errorf("DistinctNames() = %q, want %q", names, want)
	}

	items, _ := s.DistinctDescriptions(ctx, "invoices")
	if want := []string{"cards", "flyers"}; !reflect.DeepEqual(items, want) {
		t.Errorf("DistinctDescriptions() = %q, want %q", items, want)
	}
}

func TestStoreReplaceAllDuplicateKeepsOldRows(t *testing.T) {
	s := New("invoices")
	ctx := context.Background()
	_ = s.Insert(ctx, "invoices", core.InvoiceRecord{ID: "old"})

	err := s.ReplaceAll(ctx, "invoices", []core.InvoiceRecord{{ID: "a"}, {ID: "a"}})
	if !errors.Is(err, core.ErrDuplicateID) {
		t.Fatalf("ReplaceAll() error = %v, want ErrDuplicateID", err)
	}
	all, _ := s.SelectAll(ctx, "invoices")
	if len(all) != 1 || all[0].ID != "old" {
		t.Errorf("ledger changed after failed replace: %+v", all)
	}
}
