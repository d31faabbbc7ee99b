// Package spreadsheet reads and writes ledgers as Excel workbooks.
//
// Imports take the first sheet of the workbook and hand its rows to the
// same reconciler as CSV files, so header synonyms and row rules are shared.
package spreadsheet

import (
	"fmt"
	"io"

	"github.com/JonMunkholm/ledger/internal/core"
	"github.com/xuri/excelize/v2"
)

// SheetName is the sheet exports are written to.
const SheetName = "Ledger"

// ContentType is the MIME type of an .xlsx file.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReadRows returns every row of the workbook's first sheet. Trailing empty
// cells are dropped by excelize, so rows may be ragged.
func ReadRows(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("open workbook: no sheets")
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return rows, nil
}

// WriteLedger writes recs to w as a workbook with one sheet, using the same
// columns as the CSV export.
func WriteLedger(w io.Writer, recs []core.InvoiceRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	if err := setRow(f, 1, core.ExportHeader); err != nil {
		return err
	}
	for i, rec := range recs {
		if err := setRow(f, i+2, core.ExportRow(rec)); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	vals := make([]any, len(values))
	for i, v := range values {
		vals[i] = v
	}
	if err := f.SetSheetRow(SheetName, cell, &vals); err != nil {
		return fmt.Errorf("write row %d: %w", row, err)
	}
	return nil
}
