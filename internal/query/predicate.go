// Package query builds the parameterized SQL used by the expense ledger.
//
// Statement shape is assembled from Predicates. A predicate pairs a SQL
// fragment built only from package constants with the values bound to its
// placeholders, so caller input never reaches the query text.
package query

import "strings"

// Column is a column or column expression of the expenses table.
type Column string

const (
	ColID       Column = "id"
	ColDate     Column = "expense_date"
	ColAmount   Column = "amount_cents"
	ColCategory Column = "category"
	ColNotes    Column = "notes"

	// Derived from expense_date.
	ColYear    Column = "CAST(strftime('%Y', expense_date) AS INTEGER)"
	ColMonth   Column = "CAST(strftime('%m', expense_date) AS INTEGER)"
	ColWeekday Column = "CAST(strftime('%w', expense_date) AS INTEGER)" // 0 = Sunday
)

// FoldFunc is the SQL scalar that lower-cases text for case-insensitive
// comparison. It folds the full Unicode range the way strings.ToLower does;
// storage registers it with the driver.
const FoldFunc = "ulower"

func fold(expr string) string {
	return FoldFunc + "(" + expr + ")"
}

// Predicate is a boolean SQL fragment with its bound arguments.
// The zero value is the empty predicate, which matches every row.
type Predicate struct {
	sql  string
	args []any
}

// SQL returns the fragment text.
func (p Predicate) SQL() string { return p.sql }

// Args returns the values bound to the fragment placeholders.
func (p Predicate) Args() []any { return append([]any(nil), p.args...) }

// IsEmpty reports whether the predicate imposes no condition.
func (p Predicate) IsEmpty() bool { return p.sql == "" }

// Eq matches col = v.
func Eq(col Column, v any) Predicate {
	return Predicate{sql: string(col) + " = ?", args: []any{v}}
}

// EqFold matches col and s case-insensitively.
func EqFold(col Column, s string) Predicate {
	return Predicate{sql: fold(string(col)) + " = " + fold("?"), args: []any{s}}
}

// Contains matches rows whose col contains term as a case-insensitive
// substring. LIKE wildcards in term are matched literally.
func Contains(col Column, term string) Predicate {
	pattern := "%" + escapeLike(term) + "%"
	return Predicate{sql: fold(string(col)) + " LIKE " + fold("?") + " ESCAPE '\\'", args: []any{pattern}}
}

// Between matches lo <= col <= hi.
func Between(col Column, lo, hi any) Predicate {
	return Predicate{sql: string(col) + " BETWEEN ? AND ?", args: []any{lo, hi}}
}

// In matches col against a list of values. An empty list matches nothing.
func In[T any](col Column, values ...T) Predicate {
	if len(values) == 0 {
		return Predicate{sql: "1 = 0"}
	}
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(values)), ", ")
	return Predicate{sql: string(col) + " IN (" + marks + ")", args: args}
}

// And joins predicates with AND, skipping empty ones.
func And(ps ...Predicate) Predicate {
	return join(" AND ", ps)
}

// Or joins predicates with OR, skipping empty ones.
func Or(ps ...Predicate) Predicate {
	return join(" OR ", ps)
}

// Not negates p. The negation of the empty predicate is empty.
func Not(p Predicate) Predicate {
	if p.IsEmpty() {
		return p
	}
	return Predicate{sql: "NOT (" + p.sql + ")", args: p.args}
}

func join(sep string, ps []Predicate) Predicate {
	var parts []string
	var args []any
	for _, p := range ps {
		if p.IsEmpty() {
			continue
		}
		parts = append(parts, p.sql)
		args = append(args, p.args...)
	}
	switch len(parts) {
	case 0:
		return Predicate{}
	case 1:
		return Predicate{sql: parts[0], args: args}
	}
	return Predicate{sql: "(" + strings.Join(parts, sep) + ")", args: args}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
