package core

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/JonMunkholm/ledger/internal/config"
	"github.com/JonMunkholm/ledger/internal/logging"
	"github.com/google/uuid"
)

// Archiver stores ledger snapshots somewhere outside the database.
type Archiver interface {
	Archive(ctx context.Context, name string, r io.Reader) (location string, err error)
}

// Service is the entry point used by the web server and the CLI. It owns no
// connection; the Store it is given is used for every call.
type Service struct {
	ledger        *Ledger
	reconciler    *Reconciler
	limiter       *ImportLimiter
	archiver      Archiver
	importTimeout time.Duration
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithArchiver archives a snapshot of the ledger before every replacement.
func WithArchiver(a Archiver) ServiceOption {
	return func(s *Service) {
		s.archiver = a
	}
}

// NewService builds a Service over store using cfg's ledger and import
// settings.
func NewService(store Store, cfg *config.Config, opts ...ServiceOption) *Service {
	relations := Relations{
		Primary:  cfg.Ledger.PrimaryTable,
		Fallback: cfg.Ledger.FallbackTable,
	}
	ledger := NewLedger(store, relations, WithTopCustomers(cfg.Ledger.TopCustomers))
	resolver := NewHeaderResolver(rolesFromConfig(cfg.Ledger.Synonyms))

	s := &Service{
		ledger:        ledger,
		reconciler:    NewReconciler(ledger, resolver),
		limiter:       NewImportLimiter(cfg.Import.MaxConcurrent, cfg.Import.MaxWaitTime),
		importTimeout: cfg.Import.Timeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func rolesFromConfig(syn map[string][]string) map[Role][]string {
	if len(syn) == 0 {
		return nil
	}
	out := make(map[Role][]string, len(syn))
	for role, names := range syn {
		out[Role(strings.ToLower(strings.TrimSpace(role)))] = names
	}
	return out
}

// Ledger exposes the underlying query facade.
func (s *Service) Ledger() *Ledger {
	return s.ledger
}

// Migrate creates the primary ledger relation, or upgrades whichever
// relation already holds the ledger. It returns the relation migrated.
func (s *Service) Migrate(ctx context.Context) (string, error) {
	return s.ledger.EnsureSchema(ctx)
}

// ============================================================================
// Invoice CRUD
// ============================================================================

// AddInvoice stores a new invoice. An existing id yields
// *DuplicateIdentifierError.
func (s *Service) AddInvoice(ctx context.Context, rec InvoiceRecord) (InvoiceRecord, error) {
	rec = normalizeRecord(rec)
	if err := s.ledger.Insert(ctx, rec); err != nil {
		return InvoiceRecord{}, err
	}
	LogAudit(ctx, AuditEntry{Action: ActionInvoiceAdd, InvoiceID: rec.ID, RowsAffected: 1})
	return rec, nil
}

// EditInvoice overwrites the invoice with rec.ID.
func (s *Service) EditInvoice(ctx context.Context, rec InvoiceRecord) (InvoiceRecord, error) {
	rec = normalizeRecord(rec)
	if err := s.ledger.Update(ctx, rec); err != nil {
		return InvoiceRecord{}, err
	}
	LogAudit(ctx, AuditEntry{Action: ActionInvoiceEdit, InvoiceID: rec.ID, RowsAffected: 1})
	return rec, nil
}

// DeleteInvoice removes the invoice with id.
func (s *Service) DeleteInvoice(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if err := s.ledger.Delete(ctx, id); err != nil {
		return err
	}
	LogAudit(ctx, AuditEntry{Action: ActionInvoiceDelete, InvoiceID: id, RowsAffected: 1})
	return nil
}

// GetInvoice returns the invoice with id.
func (s *Service) GetInvoice(ctx context.Context, id string) (InvoiceRecord, error) {
	return s.ledger.Get(ctx, strings.TrimSpace(id))
}

// SearchInvoices returns invoices whose customer name contains name. An
// empty name lists the whole ledger.
func (s *Service) SearchInvoices(ctx context.Context, name string) ([]InvoiceRecord, error) {
	if strings.TrimSpace(name) == "" {
		return s.ledger.Records(ctx)
	}
	return s.ledger.SearchByName(ctx, name)
}

// CustomerNames lists known customers for autocompletion.
func (s *Service) CustomerNames(ctx context.Context) ([]string, error) {
	return s.ledger.DistinctNames(ctx)
}

// DescriptionSuggestions lists line items used before, for autocompletion.
func (s *Service) DescriptionSuggestions(ctx context.Context) ([]string, error) {
	return s.ledger.DistinctDescriptions(ctx)
}

// Summary computes the reporting summary.
func (s *Service) Summary(ctx context.Context) (Summary, error) {
	return s.ledger.Summarize(ctx)
}

// normalizeRecord trims every field and drops blank line items.
func normalizeRecord(rec InvoiceRecord) InvoiceRecord {
	items := make([]string, 0, len(rec.Descriptions))
	for _, d := range rec.Descriptions {
		if d = strings.TrimSpace(d); d != "" {
			items = append(items, d)
		}
	}
	return InvoiceRecord{
		ID:           strings.TrimSpace(rec.ID),
		CustomerName: strings.TrimSpace(rec.CustomerName),
		Descriptions: items,
		Amount:       strings.TrimSpace(rec.Amount),
		Date:         strings.TrimSpace(rec.Date),
	}
}

// ============================================================================
// Import / export
// ============================================================================

// ImportCSV parses a CSV export and replaces the ledger with it. source
// names the file in logs and errors.
func (s *Service) ImportCSV(ctx context.Context, source string, r io.Reader) (ReconciliationResult, error) {
	counter := NewCountingReader(r)
	rows, err := ReadCSV(counter)
	if err != nil {
		return ReconciliationResult{}, err
	}
	logging.FromContext(ctx).Debug("csv parsed", "source", source, "bytes", counter.BytesRead(), "rows", len(rows))
	return s.ImportRows(ctx, source, rows)
}

// ImportRows replaces the ledger with already-parsed rows. Only one import
// runs at a time; the current ledger is archived first when an Archiver is
// configured, and a failed snapshot aborts the import.
func (s *Service) ImportRows(ctx context.Context, source string, rows [][]string) (ReconciliationResult, error) {
	if len(rows) == 0 {
		return ReconciliationResult{}, &EmptyInputError{Source: source}
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return ReconciliationResult{}, err
	}
	defer s.limiter.Release()

	if s.importTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.importTimeout)
		defer cancel()
	}

	// Reject bad input before spending a snapshot on it.
	if _, _, _, err := s.reconciler.BuildRecords(rows); err != nil {
		return ReconciliationResult{}, err
	}

	var location string
	if s.archiver != nil {
		loc, err := s.Snapshot(ctx, "pre-import")
		if err != nil {
			return ReconciliationResult{}, fmt.Errorf("snapshot before replace: %w", err)
		}
		location = loc
	}

	result, err := s.reconciler.Reconcile(ctx, rows)
	if err != nil {
		return ReconciliationResult{}, err
	}
	result.Snapshot = location

	LogAudit(ctx, AuditEntry{
		Action:       ActionLedgerReplace,
		Relation:     result.Relation,
		RowsAffected: result.Imported,
		ImportID:     result.ImportID,
		Source:       source,
		Location:     location,
	})
	return result, nil
}

// ExportFunc renders records to w in some file format.
type ExportFunc func(w io.Writer, recs []InvoiceRecord) error

// ExportCSV writes the whole ledger as CSV and returns the number of rows.
func (s *Service) ExportCSV(ctx context.Context, w io.Writer) (int, error) {
	return s.Export(ctx, w, WriteCSV)
}

// Export writes the whole ledger with render and returns the number of rows.
func (s *Service) Export(ctx context.Context, w io.Writer, render ExportFunc) (int, error) {
	recs, err := s.ledger.Records(ctx)
	if err != nil {
		return 0, err
	}
	if err := render(w, recs); err != nil {
		return 0, err
	}
	LogAudit(ctx, AuditEntry{Action: ActionLedgerExport, RowsAffected: len(recs)})
	return len(recs), nil
}

// Snapshot archives the current ledger as CSV and returns where it went.
// An empty or missing ledger produces no snapshot and an empty location.
func (s *Service) Snapshot(ctx context.Context, reason string) (string, error) {
	if s.archiver == nil {
		return "", nil
	}

	recs, err := s.ledger.Records(ctx)
	if errors.Is(err, ErrRelationNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if len(recs) == 0 {
		return "", nil
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, recs); err != nil {
		return "", err
	}

	name := fmt.Sprintf("ledger-%s-%s-%s.csv",
		time.Now().UTC().Format("20060102T150405Z"), reason, uuid.NewString()[:8])
	location, err := s.archiver.Archive(ctx, name, &buf)
	if err != nil {
		return "", fmt.Errorf("archive %s: %w", name, err)
	}

	LogAudit(ctx, AuditEntry{Action: ActionSnapshot, RowsAffected: len(recs), Location: location})
	return location, nil
}

// ImportStatus reports import concurrency for monitoring.
func (s *Service) ImportStatus() ImportLimiterStatus {
	return s.limiter.Status()
}

// WaitForImports blocks until running imports finish or ctx is done.
func (s *Service) WaitForImports(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}
