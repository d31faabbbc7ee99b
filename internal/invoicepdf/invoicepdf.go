// Package invoicepdf renders a single invoice as a printable PDF.
package invoicepdf

import (
	"fmt"
	"io"
	"strings"

	"github.com/JonMunkholm/ledger/internal/core"
	"github.com/jung-kurt/gofpdf"
)

// ContentType is the MIME type of rendered invoices.
const ContentType = "application/pdf"

const utf8Family = "ledger"

// Renderer draws invoices. The zero value uses the built-in Helvetica font.
type Renderer struct {
	// FontFile is a UTF-8 TrueType font. Leave empty for Helvetica, which
	// only covers Windows-1252.
	FontFile string

	// Title is printed at the top of every invoice (default "Invoice").
	Title string
}

// FileName returns the download name for rec.
func FileName(rec core.InvoiceRecord) string {
	id := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, rec.ID)
	return "invoice-" + id + ".pdf"
}

// Render writes rec to w as a one-page PDF.
func (r Renderer) Render(w io.Writer, rec core.InvoiceRecord) error {
	pdf := gofpdf.New("P", "mm", "A4", "")

	family, bold := "Helvetica", "B"
	tr := func(s string) string { return s }
	if r.FontFile != "" {
		pdf.AddUTF8Font(utf8Family, "", r.FontFile)
		family, bold = utf8Family, ""
	} else {
		tr = pdf.UnicodeTranslatorFromDescriptor("")
	}

	title := r.Title
	if title == "" {
		title = "Invoice"
	}
	pdf.SetTitle(title+" "+rec.ID, true)
	pdf.AddPage()

	pdf.SetFont(family, bold, 18)
	pdf.CellFormat(0, 10, tr(title), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont(family, "", 11)
	field := func(label, value string) {
		pdf.SetFont(family, bold, 11)
		pdf.CellFormat(40, 7, tr(label), "", 0, "L", false, 0, "")
		pdf.SetFont(family, "", 11)
		pdf.CellFormat(0, 7, tr(value), "", 1, "L", false, 0, "")
	}
	field("Invoice no.", rec.ID)
	field("Date", rec.Date)
	field("Customer", rec.CustomerName)
	pdf.Ln(6)

	pdf.SetFillColor(230, 230, 230)
	pdf.SetFont(family, bold, 11)
	pdf.CellFormat(10, 8, "#", "1", 0, "C", true, 0, "")
	pdf.CellFormat(0, 8, tr("Description"), "1", 1, "L", true, 0, "")

	pdf.SetFont(family, "", 11)
	if len(rec.Descriptions) == 0 {
		pdf.CellFormat(10, 8, "", "1", 0, "C", false, 0, "")
		pdf.CellFormat(0, 8, "-", "1", 1, "L", false, 0, "")
	}
	for i, item := range rec.Descriptions {
		pdf.CellFormat(10, 8, fmt.Sprint(i+1), "1", 0, "C", false, 0, "")
		pdf.MultiCell(0, 8, tr(item), "1", "L", false)
	}
	pdf.Ln(4)

	pdf.SetFont(family, bold, 12)
	pdf.CellFormat(0, 9, tr("Total: "+FormatAmount(rec.Amount)), "", 1, "R", false, 0, "")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render invoice %s: %w", rec.ID, err)
	}
	return nil
}

// FormatAmount renders a stored amount with two decimals.
func FormatAmount(raw string) string {
	return core.CoerceDecimal(raw).StringFixed(2)
}
