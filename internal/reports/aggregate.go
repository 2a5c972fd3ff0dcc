// Package reports turns aggregated query rows into the analytics views.
package reports

import (
	"time"

	"github.com/shopspring/decimal"

	"expenses/internal/core"
)

var hundred = decimal.NewFromInt(100)

// MonthlyBreakdown expands sparse per-month totals into exactly twelve
// entries, January to December. Months without expenses total zero and
// totals for out-of-range months are ignored.
func MonthlyBreakdown(totals map[time.Month]core.Money) []core.MonthTotal {
	out := make([]core.MonthTotal, 12)
	for i := range out {
		m := time.Month(i + 1)
		out[i] = core.MonthTotal{Month: m, Total: totals[m]}
	}
	return out
}

// CategoryBreakdown computes each category's share of the grand total.
// A zero grand total yields a zero percentage for every category.
func CategoryBreakdown(start, end core.Date, totals []core.CategoryTotal) core.CategoryBreakdown {
	var grand int64
	for _, t := range totals {
		grand += t.Total.Cents
	}

	b := core.CategoryBreakdown{
		Start:      start,
		End:        end,
		GrandTotal: core.Money{Cents: grand},
		Shares:     make([]core.CategoryShare, 0, len(totals)),
	}
	for _, t := range totals {
		pct := decimal.Zero
		if grand != 0 {
			pct = t.Total.Decimal().Div(b.GrandTotal.Decimal()).Mul(hundred)
		}
		b.Shares = append(b.Shares, core.CategoryShare{
			Category:   t.Category,
			Total:      t.Total,
			Percentage: pct,
		})
	}
	return b
}
