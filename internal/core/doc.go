// Package core holds the invoice ledger's business logic.
//
// It is independent of any transport: the web server, the ledgerctl CLI and
// the tests all drive it through [Service] or directly through [Ledger].
//
// # Ledger
//
// A [Ledger] wraps a [Store] and the two table identities the data may live
// under (see [Relations]). Reads and writes try the primary identity and fall
// back to the legacy one only when the store reports the relation missing.
//
// # Reconciliation
//
// A [Reconciler] turns a parsed spreadsheet export into [InvoiceRecord]
// values and swaps them in with a single [Store.ReplaceAll]:
//
//  1. the header row is matched against role synonyms by [HeaderResolver]
//  2. short rows are padded and every cell trimmed
//  3. description cells are split into line items by [NormalizeDescription]
//  4. empty or repeated ids abort the import before anything is written
//
// [Service.PreviewImport] runs the same steps without writing and diffs the
// result against the current ledger.
//
// # Reporting
//
// [Summarize] computes total sales, the top customer, the most expensive sale
// and a ranked customer list from one snapshot. Amounts are text at rest and
// read through [CoerceAmount], which never fails.
//
// # Error Handling
//
// Import failures are typed ([EmptyInputError], [SchemaError],
// [ValidationError], [DuplicateIdentifierError]); [MapError] turns any error
// into a coded message for display.
package core
