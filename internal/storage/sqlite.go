package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// SQLite is an Accessor over a SQLite database file.
type SQLite struct {
	db      *sql.DB
	version uint
}

var _ Accessor = (*SQLite)(nil)

func dsn(path string) string {
	return "file:" + path + "?_pragma=busy_timeout(5000)"
}

// OpenSQLite opens the database at path, creating its directory, and
// applies pending migrations.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, wrap("open", err)
	}
	// Every call takes a fresh connection; nothing is kept idle.
	db.SetMaxIdleConns(0)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, wrap("ping", err)
	}

	version, err := RunMigrations(path)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLite{db: db, version: version}, nil
}

// SchemaVersion is the migration version the database was left at on open.
func (s *SQLite) SchemaVersion() uint {
	return s.version
}

func (s *SQLite) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLite) Ping(ctx context.Context) error {
	return wrap("ping", s.db.PingContext(ctx))
}

func (s *SQLite) Query(ctx context.Context, q string, args ...any) ([]Row, error) {
	var rows []Row
	err := s.WithCursor(ctx, false, func(c Cursor) error {
		var err error
		rows, err = c.Query(ctx, q, args...)
		return err
	})
	return rows, err
}

func (s *SQLite) Exec(ctx context.Context, commit bool, q string, args ...any) (int64, error) {
	var n int64
	err := s.WithCursor(ctx, commit, func(c Cursor) error {
		var err error
		n, err = c.Exec(ctx, q, args...)
		return err
	})
	return n, err
}

// WithCursor runs fn in a transaction on a dedicated connection. The
// transaction is rolled back when fn fails or commit is false.
func (s *SQLite) WithCursor(ctx context.Context, commit bool, fn func(Cursor) error) error {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return wrap("acquire connection", err)
	}
	defer conn.Close()

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return wrap("begin", err)
	}

	if err := fn(txCursor{tx: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return errors.Join(err, wrap("rollback", rbErr))
		}
		return err
	}

	if !commit {
		return wrap("rollback", tx.Rollback())
	}
	return wrap("commit", tx.Commit())
}

type txCursor struct {
	tx *sql.Tx
}

func (c txCursor) Query(ctx context.Context, q string, args ...any) ([]Row, error) {
	rows, err := c.tx.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, wrap("query", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, wrap("columns", err)
	}

	var out []Row
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, wrap("scan", err)
		}
		row := make(Row, len(cols))
		for i, col := range cols {
			if b, ok := vals[i].([]byte); ok {
				row[col] = string(b)
				continue
			}
			row[col] = vals[i]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("iterate", err)
	}
	return out, nil
}

func (c txCursor) Exec(ctx context.Context, q string, args ...any) (int64, error) {
	res, err := c.tx.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, wrap("exec", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, wrap("rows affected", err)
	}
	return n, nil
}
