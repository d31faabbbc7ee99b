package core

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Summarize computes totals over recs, which must be one snapshot of the
// ledger in store order. Customers with equal totals keep the order in which
// they first appear; among equally expensive records the first one wins.
func Summarize(recs []InvoiceRecord, topN int) Summary {
	if topN <= 0 {
		topN = DefaultTopCustomers
	}

	total := decimal.Zero
	totals := make(map[string]decimal.Decimal)
	var order []string

	var mostExpensive *InvoiceRecord
	var maxAmount decimal.Decimal

	for i := range recs {
		amount := CoerceDecimal(recs[i].Amount)
		total = total.Add(amount)

		name := recs[i].CustomerName
		if _, seen := totals[name]; !seen {
			order = append(order, name)
		}
		totals[name] = totals[name].Add(amount)

		if mostExpensive == nil || amount.GreaterThan(maxAmount) {
			rec := recs[i]
			mostExpensive = &rec
			maxAmount = amount
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return totals[order[i]].GreaterThan(totals[order[j]])
	})

	ranked := make([]CustomerTotal, 0, min(topN, len(order)))
	for _, name := range order {
		if len(ranked) == topN {
			break
		}
		ranked = append(ranked, CustomerTotal{Name: name, Total: totals[name].InexactFloat64()})
	}

	s := Summary{
		TotalSales:    total.InexactFloat64(),
		MostExpensive: mostExpensive,
		TopCustomers:  ranked,
	}
	if len(ranked) > 0 {
		top := ranked[0]
		s.TopCustomer = &top
	}
	return s
}
