package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// MonthTotal is the amount spent in one calendar month.
type MonthTotal struct {
	Month time.Month
	Total Money
}

// Name returns the English month name, e.g. "August".
func (m MonthTotal) Name() string {
	return m.Month.String()
}

// CategoryTotal is an amount aggregated by category.
type CategoryTotal struct {
	Category Category
	Total    Money
}

// CategoryShare is a category total together with its share of the grand total.
type CategoryShare struct {
	Category   Category
	Total      Money
	Percentage decimal.Decimal
}

// CategoryBreakdown is the percentage-of-total report for a date range.
type CategoryBreakdown struct {
	Start      Date
	End        Date
	GrandTotal Money
	Shares     []CategoryShare
}
