package storage

import (
	"database/sql/driver"
	"strings"

	"modernc.org/sqlite"

	"expenses/internal/query"
)

// SQLite's built-in LOWER folds ASCII only. query.FoldFunc is registered
// for every connection the driver opens, migrations included.
func init() {
	if err := sqlite.RegisterDeterministicScalarFunction(query.FoldFunc, 1, foldCase); err != nil {
		panic("register " + query.FoldFunc + ": " + err.Error())
	}
}

func foldCase(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		// NULL and numbers pass through unchanged.
		return v, nil
	}
}
