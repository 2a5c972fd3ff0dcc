package query

import (
	"strings"

	"expenses/internal/core"
)

const (
	table          = "expenses"
	expenseColumns = "expense_date, amount_cents, category, notes"
)

// Statement is a complete SQL statement with its bound arguments.
type Statement struct {
	SQL  string
	Args []any
}

func build(head string, where Predicate, tail ...string) Statement {
	var b strings.Builder
	b.WriteString(head)
	if !where.IsEmpty() {
		b.WriteString(" WHERE ")
		b.WriteString(where.sql)
	}
	for _, t := range tail {
		b.WriteString(" ")
		b.WriteString(t)
	}
	return Statement{SQL: b.String(), Args: where.Args()}
}

func selectExpenses(where Predicate, order string) Statement {
	return build("SELECT "+expenseColumns+" FROM "+table, where, "ORDER BY "+order)
}

// CategoryPredicate matches the categories selected by f. The wildcard
// filter yields the empty predicate.
func CategoryPredicate(f core.CategoryFilter) Predicate {
	if f.All() {
		return Predicate{}
	}
	keys := f.Keys()
	if len(keys) == 0 {
		return Predicate{sql: "1 = 0"}
	}
	ps := make([]Predicate, len(keys))
	for i, k := range keys {
		ps[i] = EqFold(ColCategory, k)
	}
	return Or(ps...)
}

// PeriodPredicate matches rows whose date falls on a day of p.
func PeriodPredicate(p core.Period) Predicate {
	days := p.Days()
	switch p.Kind() {
	case core.PeriodWeekday:
		return Between(ColWeekday, int(days[0]), int(days[len(days)-1]))
	case core.PeriodDay:
		return Eq(ColWeekday, int(days[0]))
	}
	nums := make([]int, len(days))
	for i, d := range days {
		nums[i] = int(d)
	}
	return In(ColWeekday, nums...)
}

// TuplePredicate matches the value-tuple of e.
func TuplePredicate(e core.Expense) Predicate {
	return And(
		Eq(ColDate, e.Date.String()),
		Eq(ColAmount, e.Amount.Cents),
		EqFold(ColCategory, e.Category.Key()),
		EqFold(ColNotes, e.Notes),
	)
}

func ExpensesForDate(d core.Date) Statement {
	return selectExpenses(Eq(ColDate, d.String()), "id")
}

func ExpensesForCategoryDate(f core.CategoryFilter, d core.Date) Statement {
	return selectExpenses(And(Eq(ColDate, d.String()), CategoryPredicate(f)), "id")
}

// ExpensesForNote searches notes in the given months of one year, newest first.
func ExpensesForNote(term string, year int, months []int) Statement {
	return selectExpenses(And(
		Contains(ColNotes, term),
		Eq(ColYear, year),
		In(ColMonth, months...),
	), "expense_date DESC, id DESC")
}

func ExpensesForCategoryPeriod(f core.CategoryFilter, p core.Period) Statement {
	return selectExpenses(And(CategoryPredicate(f), PeriodPredicate(p)), "expense_date DESC, id DESC")
}

// MonthlyTotals returns (month, total_cents) rows for the months of year
// that have at least one matching expense.
func MonthlyTotals(year int, f core.CategoryFilter) Statement {
	return build(
		"SELECT "+string(ColMonth)+" AS month, SUM(amount_cents) AS total_cents FROM "+table,
		And(Eq(ColYear, year), CategoryPredicate(f)),
		"GROUP BY month", "ORDER BY month",
	)
}

// CategoryTotals returns (category, total_cents) rows for start..end inclusive.
func CategoryTotals(start, end core.Date) Statement {
	return build(
		"SELECT category, SUM(amount_cents) AS total_cents FROM "+table,
		Between(ColDate, start.String(), end.String()),
		"GROUP BY category", "ORDER BY category",
	)
}

// InsertExpense stores e with its category in display case.
func InsertExpense(e core.Expense) Statement {
	return Statement{
		SQL: "INSERT INTO " + table + " (" + expenseColumns + ") VALUES (?, ?, ?, ?)",
		Args: []any{
			e.Date.String(),
			e.Amount.Cents,
			string(e.Category.Canonical()),
			e.Notes,
		},
	}
}

func DeleteExpensesForDate(d core.Date) Statement {
	return build("DELETE FROM "+table, Eq(ColDate, d.String()))
}

// DeleteExpense removes every row sharing the value-tuple of e.
func DeleteExpense(e core.Expense) Statement {
	return build("DELETE FROM "+table, TuplePredicate(e))
}

// DuplicateExists yields a row when another record shares the value-tuple
// of e. Rows matching exclude are ignored.
func DuplicateExists(e core.Expense, exclude *core.Expense) Statement {
	where := TuplePredicate(e)
	if exclude != nil {
		where = And(where, Not(TuplePredicate(*exclude)))
	}
	return build("SELECT 1 AS found FROM "+table, where, "LIMIT 1")
}
