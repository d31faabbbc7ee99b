package postgres

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/JonMunkholm/ledger/internal/core"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestClassify(t *testing.T) {
	plain := errors.New("connection reset")

	tests := []struct {
		name    string
		err     error
		wantIs  error
		wantRaw bool
	}{
		{"undefined table", &pgconn.PgError{Code: "42P01", Message: `relation "invoices" does not exist`}, core.ErrRelationNotFound, false},
		{"wrapped undefined table", fmt.Errorf("select: %w", &pgconn.PgError{Code: "42P01"}), core.ErrRelationNotFound, false},
		{"unique violation", &pgconn.PgError{Code: "23505", Detail: "Key (id)=(7) already exists."}, core.ErrDuplicateID, false},
		{"other pg error", &pgconn.PgError{Code: "42601"}, nil, true},
		{"plain error", plain, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify(tt.err, "invoices")
			if tt.wantRaw {
				if got != tt.err {
					t.Errorf("classify() = %v, want unchanged %v", got, tt.err)
				}
				return
			}
			if !errors.Is(got, tt.wantIs) {
				t.Errorf("classify() = %v, want wrapping %v", got, tt.wantIs)
			}
		})
	}

	if classify(nil, "invoices") != nil {
		t.Error("classify(nil) should be nil")
	}
}

func TestIdent(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"invoices", `"invoices"`},
		{"timologia", `"timologia"`},
		{`bad"name`, `"bad""name"`},
	}
	for _, tt := range tests {
		if got := ident(tt.in); got != tt.want {
			t.Errorf("ident(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestMergeDescriptions(t *testing.T) {
	stored := []string{`["flyers","cards"]`, `["cards"]`, `not json`, `[]`}
	want := []string{"cards", "flyers"}
	if got := mergeDescriptions(stored); !reflect.DeepEqual(got, want) {
		t.Errorf("mergeDescriptions() = %q, want %q", got, want)
	}
}

func TestRowValues(t *testing.T) {
	rec := core.InvoiceRecord{ID: "1", CustomerName: "Acme", Descriptions: []string{"flyers"}, Amount: "10", Date: "01-02-24"}
	want := []any{"1", "Acme", `["flyers"]`, "10", "01-02-24"}
	if got := rowValues(rec); !reflect.DeepEqual(got, want) {
		t.Errorf("rowValues() = %v, want %v", got, want)
	}
}

func TestEscapeLike(t *testing.T) {
	if got := escapeLike(`50%_off\`); got != `50\%\_off\\` {
		t.Errorf("escapeLike() = %q", got)
	}
}
