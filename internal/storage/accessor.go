// Package storage is the only package that talks to the database.
package storage

import (
	"context"
	"fmt"

	"expenses/internal/core"
)

// Row is one result row keyed by column name.
type Row map[string]any

// String returns the column as a string, or "" when absent or NULL.
func (r Row) String(col string) string {
	switch v := r[col].(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// Int64 returns the column as an integer, or 0 when absent or NULL.
func (r Row) Int64(col string) int64 {
	switch v := r[col].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	}
	return 0
}

// Cursor runs statements inside one storage session.
type Cursor interface {
	Query(ctx context.Context, q string, args ...any) ([]Row, error)
	Exec(ctx context.Context, q string, args ...any) (int64, error)
}

// Accessor hands out short-lived storage sessions. Each call acquires a
// connection, runs inside a transaction and releases the connection.
// Writes persist only when commit is true.
type Accessor interface {
	Query(ctx context.Context, q string, args ...any) ([]Row, error)
	Exec(ctx context.Context, commit bool, q string, args ...any) (int64, error)
	WithCursor(ctx context.Context, commit bool, fn func(Cursor) error) error
	Ping(ctx context.Context) error
	Close() error
}

// Error is a failure of the storage engine itself.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	return target == core.ErrStorageUnavailable
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}
