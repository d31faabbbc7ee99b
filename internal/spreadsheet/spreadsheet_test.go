package spreadsheet

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"github.com/JonMunkholm/ledger/internal/core"
	"github.com/xuri/excelize/v2"
)

func TestWriteThenReadRows(t *testing.T) {
	recs := []core.InvoiceRecord{
		{ID: "1", CustomerName: "Acme", Descriptions: []string{"flyers", "cards"}, Amount: "30", Date: "01-02-24"},
		{ID: "2", CustomerName: "Beta", Descriptions: []string{}, Amount: "12,50", Date: "05-06-24"},
	}

	var buf bytes.Buffer
	if err := WriteLedger(&buf, recs); err != nil {
		t.Fatalf("WriteLedger() error = %v", err)
	}

	rows, err := ReadRows(&buf)
	if err != nil {
		t.Fatalf("ReadRows() error = %v", err)
	}

	want := [][]string{
		{"id", "name", "description", "amount", "date"},
		{"1", "Acme", "flyers | cards", "30", "01-02-24"},
		{"2", "Beta", "", "12,50", "05-06-24"},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("ReadRows() = %q, want %q", rows, want)
	}
}

func TestReadRowsUsesFirstSheet(t *testing.T) {
	f := excelize.NewFile()
	if _, err := f.NewSheet("Other"); err != nil {
		t.Fatal(err)
	}
	if err := f.SetCellValue("Sheet1", "A1", "ID"); err != nil {
		t.Fatal(err)
	}
	if err := f.SetCellValue("Other", "A1", "ignored"); err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatal(err)
	}

	rows, err := ReadRows(&buf)
	if err != nil {
		t.Fatalf("ReadRows() error = %v", err)
	}
	if len(rows) != 1 || rows[0][0] != "ID" {
		t.Errorf("ReadRows() = %q, want first sheet", rows)
	}
}

func TestReadRowsRejectsNonWorkbook(t *testing.T) {
	_, err := ReadRows(strings.NewReader("id,name\n1,Acme\n"))
	if err == nil {
		t.Fatal("ReadRows() expected error for CSV input")
	}
	if !strings.Contains(err.Error(), "open workbook") {
		t.Errorf("error = %v, want open workbook", err)
	}
}
