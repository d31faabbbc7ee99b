package core

import (
	"reflect"
	"testing"
)

func TestSummarize(t *testing.T) {
	tests := []struct {
		name        string
		recs        []InvoiceRecord
		topN        int
		wantTotal   float64
		wantTop     *CustomerTotal
		wantMostID  string
		wantRanking []CustomerTotal
	}{
		{
			name:        "empty ledger",
			recs:        nil,
			wantTotal:   0,
			wantRanking: []CustomerTotal{},
		},
		{
			name: "sums per customer",
			recs: []InvoiceRecord{
				{ID: "1", CustomerName: "A", Amount: "30"},
				{ID: "2", CustomerName: "B", Amount: "50"},
				{ID: "3", CustomerName: "B", Amount: "20"},
			},
			wantTotal:   100,
			wantTop:     &CustomerTotal{Name: "B", Total: 70},
			wantMostID:  "2",
			wantRanking: []CustomerTotal{{Name: "B", Total: 70}, {Name: "A", Total: 30}},
		},
		{
			name: "ties keep first seen order",
			recs: []InvoiceRecord{
				{ID: "1", CustomerName: "Zeta", Amount: "10"},
				{ID: "2", CustomerName: "Alpha", Amount: "10"},
				{ID: "3", CustomerName: "Mid", Amount: "5"},
			},
			wantTotal:   25,
			wantTop:     &CustomerTotal{Name: "Zeta", Total: 10},
			wantMostID:  "1",
			wantRanking: []CustomerTotal{{Name: "Zeta", Total: 10}, {Name: "Alpha", Total: 10}, {Name: "Mid", Total: 5}},
		},
		{
			name: "messy amounts coerce",
			recs: []InvoiceRecord{
				{ID: "1", CustomerName: "A", Amount: "12,50"},
				{ID: "2", CustomerName: "A", Amount: "abc"},
				{ID: "3", CustomerName: "B", Amount: "€ 7"},
			},
			wantTotal:   19.5,
			wantTop:     &CustomerTotal{Name: "A", Total: 12.5},
			wantMostID:  "1",
			wantRanking: []CustomerTotal{{Name: "A", Total: 12.5}, {Name: "B", Total: 7}},
		},
		{
			name: "ranking truncated to top n",
			recs: []InvoiceRecord{
				{ID: "1", CustomerName: "A", Amount: "1"},
				{ID: "2", CustomerName: "B", Amount: "2"},
				{ID: "3", CustomerName: "C", Amount: "3"},
			},
			topN:        2,
			wantTotal:   6,
			wantTop:     &CustomerTotal{Name: "C", Total: 3},
			wantMostID:  "3",
			wantRanking: []CustomerTotal{{Name: "C", Total: 3}, {Name: "B", Total: 2}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Summarize(tt.recs, tt.topN)

			if got.TotalSales != tt.wantTotal {
				t.Errorf("TotalSales = %v, want %v", got.TotalSales, tt.wantTotal)
			}
			if !reflect.DeepEqual(got.TopCustomer, tt.wantTop) {
				t.Errorf("TopCustomer = %+v, want %+v", got.TopCustomer, tt.wantTop)
			}
			if !reflect.DeepEqual(got.TopCustomers, tt.wantRanking) {
				t.Errorf("TopCustomers = %+v, want %+v", got.TopCustomers, tt.wantRanking)
			}
			switch {
			case tt.wantMostID == "" && got.MostExpensive != nil:
				t.Errorf("MostExpensive = %+v, want nil", got.MostExpensive)
			case tt.wantMostID != "" && (got.MostExpensive == nil || got.MostExpensive.ID != tt.wantMostID):
				t.Errorf("MostExpensive = %+v, want id %s", got.MostExpensive, tt.wantMostID)
			}
		})
	}
}

func TestSummarizeDefaultTopN(t *testing.T) {
	var recs []InvoiceRecord
	for i := 0; i < 12; i++ {
		recs = append(recs, InvoiceRecord{ID: string(rune('a' + i)), CustomerName: string(rune('A' + i)), Amount: "1"})
	}
	if got := Summarize(recs, 0); len(got.TopCustomers) != DefaultTopCustomers {
		t.Errorf("len(TopCustomers) = %d, want %d", len(got.TopCustomers), DefaultTopCustomers)
	}
}
