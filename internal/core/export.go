package core

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// ExportHeader is the column order of every ledger export.
var ExportHeader = []string{"id", "name", "description", "amount", "date"}

// DescriptionSeparator joins line items in exports. It is also the first
// separator the importer splits on, so an export can be imported again.
const DescriptionSeparator = " | "

// ExportRow renders rec in ExportHeader order.
func ExportRow(rec InvoiceRecord) []string {
	return []string{
		rec.ID,
		rec.CustomerName,
		strings.Join(rec.Descriptions, DescriptionSeparator),
		rec.Amount,
		rec.Date,
	}
}

// WriteCSV writes a header and one row per record.
func WriteCSV(w io.Writer, recs []InvoiceRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ExportHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, rec := range recs {
		if err := cw.Write(ExportRow(rec)); err != nil {
			return fmt.Errorf("write csv row %q: %w", rec.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
