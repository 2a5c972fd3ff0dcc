// Package services implements the ledger operations on top of storage.
package services

import (
	"context"
	"fmt"
	"time"

	"expenses/internal/amqp"
	"expenses/internal/core"
	"expenses/internal/log"
	"expenses/internal/query"
	"expenses/internal/reports"
	"expenses/internal/storage"
)

// ChangePublisher announces committed ledger changes.
type ChangePublisher interface {
	Publish(ctx context.Context, msg *amqp.ExpenseChangeMessage) error
}

// ExpenseService validates requests, runs them against storage and
// announces successful writes.
type ExpenseService struct {
	store     storage.Accessor
	publisher ChangePublisher
	logger    *log.Logger
}

type Option func(*ExpenseService)

// WithPublisher sets where change messages go. Without one nothing is published.
func WithPublisher(p ChangePublisher) Option {
	return func(s *ExpenseService) { s.publisher = p }
}

func WithLogger(l *log.Logger) Option {
	return func(s *ExpenseService) { s.logger = l }
}

func NewExpenseService(store storage.Accessor, opts ...Option) *ExpenseService {
	s := &ExpenseService{store: store}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.Discard()
	}
	s.logger = s.logger.WithComponent(log.ComponentExpense)
	return s
}

// Ping checks that storage is reachable.
func (s *ExpenseService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func (s *ExpenseService) FetchExpensesForDate(ctx context.Context, d core.Date) ([]core.Expense, error) {
	s.loggerFor(ctx).LogCall(ctx, "FetchExpensesForDate", log.FieldDate, d.String())
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return s.queryExpenses(ctx, query.ExpensesForDate(d))
}

// FetchMonthlyExpenses returns twelve month totals for year, January first.
func (s *ExpenseService) FetchMonthlyExpenses(ctx context.Context, year int, category string) ([]core.MonthTotal, error) {
	s.loggerFor(ctx).LogCall(ctx, "FetchMonthlyExpenses", "year", year, log.FieldCategory, category)
	filter, err := core.ParseCategoryFilter(category)
	if err != nil {
		return nil, err
	}

	st := query.MonthlyTotals(year, filter)
	rows, err := s.store.Query(ctx, st.SQL, st.Args...)
	if err != nil {
		return nil, fmt.Errorf("fetch monthly expenses: %w", err)
	}
	totals := make(map[time.Month]core.Money, len(rows))
	for _, r := range rows {
		totals[time.Month(r.Int64("month"))] = core.Money{Cents: r.Int64("total_cents")}
	}
	return reports.MonthlyBreakdown(totals), nil
}

// InsertExpense stores e without checking for duplicates.
func (s *ExpenseService) InsertExpense(ctx context.Context, e core.Expense) error {
	s.loggerFor(ctx).LogCall(ctx, "InsertExpense", expenseArgs(e)...)
	if err := e.Validate(); err != nil {
		return err
	}
	st := query.InsertExpense(e)
	if _, err := s.store.Exec(ctx, true, st.SQL, st.Args...); err != nil {
		return fmt.Errorf("insert expense: %w", err)
	}
	s.publish(ctx, amqp.NewExpenseAdded(e))
	return nil
}

// DeleteExpensesForDate removes every row of d and returns how many went.
func (s *ExpenseService) DeleteExpensesForDate(ctx context.Context, d core.Date) (int64, error) {
	s.loggerFor(ctx).LogCall(ctx, "DeleteExpensesForDate", log.FieldDate, d.String())
	if err := d.Validate(); err != nil {
		return 0, err
	}
	st := query.DeleteExpensesForDate(d)
	n, err := s.store.Exec(ctx, true, st.SQL, st.Args...)
	if err != nil {
		return 0, fmt.Errorf("delete expenses for %s: %w", d, err)
	}
	if n > 0 {
		s.publish(ctx, amqp.NewDayCleared(d))
	}
	return n, nil
}

// FetchExpenseSummary totals expenses per category for start..end inclusive.
func (s *ExpenseService) FetchExpenseSummary(ctx context.Context, start, end core.Date) ([]core.CategoryTotal, error) {
	s.loggerFor(ctx).LogCall(ctx, "FetchExpenseSummary", "start", start.String(), "end", end.String())
	if err := start.Validate(); err != nil {
		return nil, err
	}
	if err := end.Validate(); err != nil {
		return nil, err
	}

	st := query.CategoryTotals(start, end)
	rows, err := s.store.Query(ctx, st.SQL, st.Args...)
	if err != nil {
		return nil, fmt.Errorf("fetch expense summary: %w", err)
	}
	totals := make([]core.CategoryTotal, len(rows))
	for i, r := range rows {
		totals[i] = core.CategoryTotal{
			Category: core.Category(r.String("category")).Canonical(),
			Total:    core.Money{Cents: r.Int64("total_cents")},
		}
	}
	return totals, nil
}

// FetchCategoryBreakdown is FetchExpenseSummary with each category's share
// of the grand total.
func (s *ExpenseService) FetchCategoryBreakdown(ctx context.Context, start, end core.Date) (core.CategoryBreakdown, error) {
	s.loggerFor(ctx).LogCall(ctx, "FetchCategoryBreakdown", "start", start.String(), "end", end.String())
	totals, err := s.FetchExpenseSummary(ctx, start, end)
	if err != nil {
		return core.CategoryBreakdown{}, err
	}
	return reports.CategoryBreakdown(start, end, totals), nil
}

func (s *ExpenseService) FetchExpensesForCategoryDate(ctx context.Context, category string, d core.Date) ([]core.Expense, error) {
	s.loggerFor(ctx).LogCall(ctx, "FetchExpensesForCategoryDate", log.FieldCategory, category, log.FieldDate, d.String())
	filter, err := core.ParseCategoryFilter(category)
	if err != nil {
		return nil, err
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return s.queryExpenses(ctx, query.ExpensesForCategoryDate(filter, d))
}

// FetchExpensesForNote finds expenses whose notes contain term, limited to
// the given months of year. An empty month list matches nothing.
func (s *ExpenseService) FetchExpensesForNote(ctx context.Context, term string, year int, months []int) ([]core.Expense, error) {
	s.loggerFor(ctx).LogCall(ctx, "FetchExpensesForNote", "term", term, "year", year, "months", months)
	if err := core.ValidateMonths(months); err != nil {
		return nil, err
	}
	return s.queryExpenses(ctx, query.ExpensesForNote(term, year, months))
}

func (s *ExpenseService) FetchExpensesByCategoryAndPeriod(ctx context.Context, category, period string) ([]core.Expense, error) {
	s.loggerFor(ctx).LogCall(ctx, "FetchExpensesByCategoryAndPeriod", log.FieldCategory, category, "period", period)
	filter, err := core.ParseCategoryFilter(category)
	if err != nil {
		return nil, err
	}
	p, err := core.ParsePeriod(period)
	if err != nil {
		return nil, err
	}
	return s.queryExpenses(ctx, query.ExpensesForCategoryPeriod(filter, p))
}

// DeleteExpense removes the rows sharing e's value-tuple.
func (s *ExpenseService) DeleteExpense(ctx context.Context, e core.Expense) (int64, error) {
	s.loggerFor(ctx).LogCall(ctx, "DeleteExpense", expenseArgs(e)...)
	if err := e.Validate(); err != nil {
		return 0, err
	}
	var n int64
	err := s.store.WithCursor(ctx, true, func(c storage.Cursor) error {
		var err error
		n, err = deleteExpense(ctx, c, e)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("delete expense: %w", err)
	}
	if n > 0 {
		s.publish(ctx, amqp.NewExpenseRemoved(e))
	}
	return n, nil
}

// AddExpense stores e. With checkDuplicate set, an existing row with the
// same value-tuple fails the call with ErrDuplicateExpense.
func (s *ExpenseService) AddExpense(ctx context.Context, e core.Expense, checkDuplicate bool) error {
	s.loggerFor(ctx).LogCall(ctx, "AddExpense", append(expenseArgs(e), "check_duplicate", checkDuplicate)...)
	if err := e.Validate(); err != nil {
		return err
	}
	err := s.store.WithCursor(ctx, true, func(c storage.Cursor) error {
		if checkDuplicate {
			dup, err := duplicateExists(ctx, c, e, nil)
			if err != nil {
				return err
			}
			if dup {
				return &core.DuplicateExpenseError{Expense: e}
			}
		}
		return insertExpense(ctx, c, e)
	})
	if err != nil {
		return wrapWrite("add expense", err)
	}
	s.publish(ctx, amqp.NewExpenseAdded(e))
	return nil
}

// CheckDuplicate reports whether a row with e's value-tuple exists,
// ignoring rows that match exclude.
func (s *ExpenseService) CheckDuplicate(ctx context.Context, e core.Expense, exclude *core.Expense) (bool, error) {
	args := expenseArgs(e)
	if exclude != nil {
		args = append(args, "exclude", fmt.Sprintf("%s %s %s %q", exclude.Date, exclude.Amount, exclude.Category, exclude.Notes))
	}
	s.loggerFor(ctx).LogCall(ctx, "CheckDuplicate", args...)
	if err := e.Validate(); err != nil {
		return false, err
	}

	var dup bool
	err := s.store.WithCursor(ctx, false, func(c storage.Cursor) error {
		var err error
		dup, err = duplicateExists(ctx, c, e, exclude)
		return err
	})
	if err != nil {
		return false, fmt.Errorf("check duplicate: %w", err)
	}
	return dup, nil
}

// UpdateExpense replaces the row matching old with updated in one storage
// session. If another row already holds updated's value-tuple nothing
// changes and ErrDuplicateExpense is returned. Replacing a row with itself
// is allowed.
func (s *ExpenseService) UpdateExpense(ctx context.Context, old, updated core.Expense) error {
	s.loggerFor(ctx).LogCall(ctx, "UpdateExpense",
		"old", fmt.Sprintf("%s %s %s %q", old.Date, old.Amount, old.Category, old.Notes),
		"new", fmt.Sprintf("%s %s %s %q", updated.Date, updated.Amount, updated.Category, updated.Notes))
	if err := (core.ModifyEdit{Old: old, New: updated}).Validate(); err != nil {
		return err
	}

	var removed int64
	err := s.store.WithCursor(ctx, true, func(c storage.Cursor) error {
		dup, err := duplicateExists(ctx, c, updated, &old)
		if err != nil {
			return err
		}
		if dup {
			return &core.DuplicateExpenseError{Expense: updated}
		}
		if removed, err = deleteExpense(ctx, c, old); err != nil {
			return err
		}
		return insertExpense(ctx, c, updated)
	})
	if err != nil {
		return wrapWrite("update expense", err)
	}
	if removed > 0 {
		s.publish(ctx, amqp.NewExpenseRemoved(old))
	}
	s.publish(ctx, amqp.NewExpenseAdded(updated))
	return nil
}

// loggerFor scopes the service logger to the request carried by ctx.
func (s *ExpenseService) loggerFor(ctx context.Context) *log.Logger {
	return s.logger.WithRequest(ctx)
}

func (s *ExpenseService) queryExpenses(ctx context.Context, st query.Statement) ([]core.Expense, error) {
	rows, err := s.store.Query(ctx, st.SQL, st.Args...)
	if err != nil {
		return nil, fmt.Errorf("fetch expenses: %w", err)
	}
	out := make([]core.Expense, 0, len(rows))
	for _, r := range rows {
		e, err := expenseFromRow(r)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// publish never fails the caller: the change is already committed.
func (s *ExpenseService) publish(ctx context.Context, msg *amqp.ExpenseChangeMessage) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, msg); err != nil {
		s.loggerFor(ctx).WarnContext(ctx, "Failed to publish change message",
			log.FieldMessageID, msg.ID,
			log.FieldChangeOp, string(msg.Op),
			log.FieldError, err)
	}
}

func expenseFromRow(r storage.Row) (core.Expense, error) {
	d, err := core.ParseDate(r.String("expense_date"))
	if err != nil {
		return core.Expense{}, fmt.Errorf("decode stored expense: %w", err)
	}
	return core.Expense{
		Date:     d,
		Amount:   core.Money{Cents: r.Int64("amount_cents")},
		Category: core.Category(r.String("category")).Canonical(),
		Notes:    r.String("notes"),
	}, nil
}

func expenseArgs(e core.Expense) []any {
	return log.NewFields().
		WithExpense(e.Date.String(), e.Amount.Cents, string(e.Category), e.Notes).
		ToSlice()
}

func duplicateExists(ctx context.Context, c storage.Cursor, e core.Expense, exclude *core.Expense) (bool, error) {
	st := query.DuplicateExists(e, exclude)
	rows, err := c.Query(ctx, st.SQL, st.Args...)
	if err != nil {
		return false, err
	}
	return len(rows) > 0, nil
}

func insertExpense(ctx context.Context, c storage.Cursor, e core.Expense) error {
	st := query.InsertExpense(e)
	_, err := c.Exec(ctx, st.SQL, st.Args...)
	return err
}

func deleteExpense(ctx context.Context, c storage.Cursor, e core.Expense) (int64, error) {
	st := query.DeleteExpense(e)
	return c.Exec(ctx, st.SQL, st.Args...)
}

// wrapWrite leaves domain errors untouched so callers can report them as is.
func wrapWrite(op string, err error) error {
	if core.IsValidation(err) {
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}
