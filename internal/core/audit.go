package core

import (
	"context"
	"log/slog"

	"github.com/JonMunkholm/ledger/internal/logging"
)

// AuditAction represents the type of action being audited.
type AuditAction string

const (
	ActionInvoiceAdd    AuditAction = "invoice.add"
	ActionInvoiceEdit   AuditAction = "invoice.edit"
	ActionInvoiceDelete AuditAction = "invoice.delete"
	ActionLedgerReplace AuditAction = "ledger.replace"
	ActionLedgerExport  AuditAction = "ledger.export"
	ActionSnapshot      AuditAction = "ledger.snapshot"
)

// AuditSeverity represents the severity level of an audit entry.
type AuditSeverity string

const (
	SeverityLow      AuditSeverity = "low"
	SeverityMedium   AuditSeverity = "medium"
	SeverityHigh     AuditSeverity = "high"
	SeverityCritical AuditSeverity = "critical"
)

// AuditEntry describes one change to the ledger.
type AuditEntry struct {
	Action       AuditAction
	InvoiceID    string
	Relation     string
	RowsAffected int
	ImportID     string
	Source       string
	Location     string
}

// determineSeverity returns the appropriate severity for an action.
func determineSeverity(action AuditAction) AuditSeverity {
	switch action {
	case ActionLedgerReplace:
		return SeverityCritical
	case ActionInvoiceDelete:
		return SeverityHigh
	case ActionLedgerExport, ActionSnapshot:
		return SeverityLow
	default:
		return SeverityMedium
	}
}

// LogAudit writes entry as a structured "audit" log record, tagged with the
// client address and user agent carried by ctx.
func LogAudit(ctx context.Context, entry AuditEntry) {
	attrs := []any{
		slog.String("action", string(entry.Action)),
		slog.String("severity", string(determineSeverity(entry.Action))),
	}
	if entry.InvoiceID != "" {
		attrs = append(attrs, slog.String("invoice_id", entry.InvoiceID))
	}
	if entry.Relation != "" {
		attrs = append(attrs, slog.String("relation", entry.Relation))
	}
	if entry.RowsAffected > 0 {
		attrs = append(attrs, slog.Int("rows_affected", entry.RowsAffected))
	}
	if entry.ImportID != "" {
		attrs = append(attrs, slog.String("import_id", entry.ImportID))
	}
	if entry.Source != "" {
		attrs = append(attrs, slog.String("source", entry.Source))
	}
	if entry.Location != "" {
		attrs = append(attrs, slog.String("location", entry.Location))
	}
	if ip := GetIPAddressFromContext(ctx); ip != "" {
		attrs = append(attrs, slog.String("ip", ip))
	}
	if ua := GetUserAgentFromContext(ctx); ua != "" {
		attrs = append(attrs, slog.String("user_agent", ua))
	}

	logging.FromContext(ctx).Info("audit", attrs...)
}
