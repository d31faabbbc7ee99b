package core

import (
	"context"
	"time"
)

// InvoiceRecord is the ledger's unit of storage.
//
// Amount is kept as text exactly as it was entered or imported; read it
// through CoerceAmount / CoerceDecimal. Date follows the shop's DD-MM-YY
// convention but is never parsed here.
type InvoiceRecord struct {
	ID           string   `json:"id"`
	CustomerName string   `json:"name"`
	Descriptions []string `json:"descriptions"`
	Amount       string   `json:"amount"`
	Date         string   `json:"date"`
}

// AmountValue returns the coerced numeric amount of the record.
func (r InvoiceRecord) AmountValue() float64 {
	return CoerceAmount(r.Amount)
}

// DatePlaceholder is the date format hint shown to people entering invoices.
const DatePlaceholder = "DD-MM-YY"

// Role is a canonical ledger field that CSV columns are mapped onto.
type Role string

const (
	RoleIdentifier  Role = "identifier"
	RoleCustomer    Role = "customer"
	RoleDescription Role = "description"
	RoleAmount      Role = "amount"
	RoleDate        Role = "date"
)

// AllRoles lists every role in resolution order.
var AllRoles = []Role{RoleIdentifier, RoleCustomer, RoleDescription, RoleAmount, RoleDate}

// RequiredRoles must resolve for an import to proceed.
var RequiredRoles = []Role{RoleIdentifier, RoleCustomer}

// Relations names the primary table identity and its legacy fallback.
type Relations struct {
	Primary  string
	Fallback string
}

// DefaultRelations matches the current schema and the legacy one.
var DefaultRelations = Relations{Primary: "invoices", Fallback: "timologia"}

// candidates returns the identities to try, in order, without duplicates.
func (r Relations) candidates() []string {
	out := make([]string, 0, 2)
	if r.Primary != "" {
		out = append(out, r.Primary)
	}
	if r.Fallback != "" && r.Fallback != r.Primary {
		out = append(out, r.Fallback)
	}
	return out
}

// Store is the ledger storage interface consumed by the core.
//
// Every method takes the relation (table identity) to operate on and must
// report an unknown relation with an error wrapping ErrRelationNotFound so
// the Ledger can fall back to another identity. Primary-key violations wrap
// ErrDuplicateID, missing keyed rows wrap ErrNotFound.
//
// SelectAll returns rows ordered by id.
type Store interface {
	EnsureRelation(ctx context.Context, relation string) error
	Insert(ctx context.Context, relation string, rec InvoiceRecord) error
	Update(ctx context.Context, relation string, rec InvoiceRecord) error
	Delete(ctx context.Context, relation, id string) error
	Get(ctx context.Context, relation, id string) (InvoiceRecord, error)
	SelectAll(ctx context.Context, relation string) ([]InvoiceRecord, error)
	SelectByName(ctx context.Context, relation, name string) ([]InvoiceRecord, error)
	DistinctNames(ctx context.Context, relation string) ([]string, error)
	DistinctDescriptions(ctx context.Context, relation string) ([]string, error)
	ReplaceAll(ctx context.Context, relation string, recs []InvoiceRecord) error
}

// CustomerTotal is a customer's cumulative coerced amount.
type CustomerTotal struct {
	Name  string  `json:"name"`
	Total float64 `json:"total"`
}

// Summary is the reporting payload. Field names are shared by the JSON API,
// the dashboard and the CLI.
type Summary struct {
	TotalSales    float64         `json:"total_sales"`
	TopCustomer   *CustomerTotal  `json:"top_customer"`
	MostExpensive *InvoiceRecord  `json:"most_expensive"`
	TopCustomers  []CustomerTotal `json:"top_customers"`
}

// ColumnMap holds the resolved column index per role; -1 means absent.
type ColumnMap map[Role]int

// Index returns the column for role, or -1.
func (m ColumnMap) Index(role Role) int {
	if i, ok := m[role]; ok {
		return i
	}
	return -1
}

// ReconciliationResult describes a completed ledger replacement.
type ReconciliationResult struct {
	ImportID string        `json:"import_id"`
	Imported int           `json:"imported"`
	Skipped  int           `json:"skipped"`
	Relation string        `json:"relation"`
	Columns  ColumnMap     `json:"columns"`
	Snapshot string        `json:"snapshot,omitempty"`
	Duration time.Duration `json:"duration"`
}
