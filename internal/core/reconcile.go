package core

// reconcile.go replaces the ledger with the contents of a spreadsheet export.
//
// The input is already split into rows and cells; row 0 is the header. Header
// names are matched loosely (see HeaderResolver), short rows are padded, and
// the description cell is split into line items. Structural problems abort
// the import before anything is written, and the write itself is a single
// ReplaceAll, so readers see either the old ledger or the new one.

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/JonMunkholm/ledger/internal/logging"
	"github.com/google/uuid"
)

// Reconciler imports parsed CSV rows into a Ledger.
type Reconciler struct {
	ledger   *Ledger
	resolver *HeaderResolver
}

// NewReconciler returns a Reconciler writing to ledger. A nil resolver uses
// the default synonyms.
func NewReconciler(ledger *Ledger, resolver *HeaderResolver) *Reconciler {
	if resolver == nil {
		resolver = NewHeaderResolver(nil)
	}
	return &Reconciler{ledger: ledger, resolver: resolver}
}

// BuildRecords turns parsed rows into ledger records without touching the
// store. It returns the records, the resolved columns and the number of
// blank rows skipped.
func (r *Reconciler) BuildRecords(rows [][]string) ([]InvoiceRecord, ColumnMap, int, error) {
	if len(rows) == 0 {
		return nil, nil, 0, &EmptyInputError{}
	}

	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.TrimSpace(h)
	}

	cols, err := r.resolver.ResolveAll(header)
	if err != nil {
		return nil, nil, 0, err
	}

	recs := make([]InvoiceRecord, 0, len(rows)-1)
	seen := make(map[string]int, len(rows)-1)
	skipped := 0

	for i, raw := range rows[1:] {
		rowNum := i + 1
		cells := padRow(raw, len(header))
		if isBlankRow(cells) {
			skipped++
			continue
		}

		rec := InvoiceRecord{
			ID:           cell(cells, cols, RoleIdentifier),
			CustomerName: cell(cells, cols, RoleCustomer),
			Descriptions: NormalizeDescription(cell(cells, cols, RoleDescription)),
			Amount:       cell(cells, cols, RoleAmount),
			Date:         cell(cells, cols, RoleDate),
		}

		if err := validateRecord(rec, rowNum); err != nil {
			return nil, nil, 0, err
		}
		if _, dup := seen[rec.ID]; dup {
			return nil, nil, 0, &DuplicateIdentifierError{ID: rec.ID, Row: rowNum}
		}
		seen[rec.ID] = rowNum

		recs = append(recs, rec)
	}

	return recs, cols, skipped, nil
}

// Reconcile validates rows and replaces the ledger with them. On error the
// ledger is left as it was.
func (r *Reconciler) Reconcile(ctx context.Context, rows [][]string) (ReconciliationResult, error) {
	start := time.Now()
	importID := uuid.NewString()
	logger := logging.WithFields(ctx, "import_id", importID)

	recs, cols, skipped, err := r.BuildRecords(rows)
	if err != nil {
		logger.Warn("import rejected", "error", err)
		return ReconciliationResult{}, err
	}

	rel, err := r.ledger.ReplaceAll(ctx, recs)
	if err != nil {
		logger.Error("ledger replace failed", "rows", len(recs), "error", err)
		return ReconciliationResult{}, fmt.Errorf("reconcile: %w", err)
	}

	result := ReconciliationResult{
		ImportID: importID,
		Imported: len(recs),
		Skipped:  skipped,
		Relation: rel,
		Columns:  cols,
		Duration: time.Since(start),
	}
	logger.Info("ledger replaced",
		"relation", rel,
		"rows", result.Imported,
		"skipped", skipped,
		"duration_ms", result.Duration.Milliseconds(),
	)
	return result, nil
}

// padRow returns row extended with empty cells to width, every cell trimmed.
func padRow(row []string, width int) []string {
	n := width
	if len(row) > n {
		n = len(row)
	}
	out := make([]string, n)
	for i := range row {
		out[i] = strings.TrimSpace(row[i])
	}
	return out
}

func isBlankRow(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return false
		}
	}
	return true
}

func cell(cells []string, cols ColumnMap, role Role) string {
	i := cols.Index(role)
	if i < 0 || i >= len(cells) {
		return ""
	}
	return cells[i]
}
