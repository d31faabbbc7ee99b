package core

import (
	"testing"
)

func TestCoerceAmount(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  float64
	}{
		{"plain integer", "100", 100},
		{"plain decimal", "12.50", 12.5},
		{"decimal comma", "12,50", 12.5},
		{"euro with grouping", "€ 1.234,00", 1234},
		{"euro suffix", "45,90€", 45.9},
		{"surrounding spaces", "  7 ", 7},
		{"negative", "-15.5", -15.5},
		{"letters only", "abc", 0},
		{"empty", "", 0},
		{"whitespace only", "   ", 0},
		{"lone minus", "-", 0},
		{"minus in the middle", "1-2", 0},
		{"exponent", "1e3", 1000},
		{"currency word", "EUR 30", 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CoerceAmount(tt.input)
			if got != tt.want {
				t.Errorf("CoerceAmount(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestCoerceDecimalExactSum(t *testing.T) {
	total := CoerceDecimal("0.1").Add(CoerceDecimal("0,2"))
	if got := total.String(); got != "0.3" {
		t.Errorf("0.1 + 0,2 = %s, want 0.3", got)
	}
}

func TestInvoiceRecordAmountValue(t *testing.T) {
	rec := InvoiceRecord{ID: "7", Amount: "19,99"}
	if got := rec.AmountValue(); got != 19.99 {
		t.Errorf("AmountValue() = %v, want 19.99", got)
	}
}
