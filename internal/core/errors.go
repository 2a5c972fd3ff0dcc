package core

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the ledger. Callers match them with errors.Is.
var (
	ErrInvalidCategory    = errors.New("invalid category")
	ErrInvalidPeriod      = errors.New("invalid period")
	ErrDuplicateExpense   = errors.New("duplicate expense entry")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// InvalidCategoryError names the offending token and the allowed set.
type InvalidCategoryError struct {
	Token         string
	AllowWildcard bool
}

func (e *InvalidCategoryError) Error() string {
	msg := fmt.Sprintf("invalid category: '%s'. Must be one of: %s", e.Token, categoryDisplayList())
	if e.AllowWildcard {
		msg += " or 'all'"
	}
	return msg
}

func (e *InvalidCategoryError) Is(target error) bool {
	return target == ErrInvalidCategory
}

// InvalidPeriodError names the offending period-of-week token.
type InvalidPeriodError struct {
	Token string
}

func (e *InvalidPeriodError) Error() string {
	return fmt.Sprintf("invalid period: '%s'. Must be either: 'weekend', 'weekday', or a day name (e.g. 'Monday')", e.Token)
}

func (e *InvalidPeriodError) Is(target error) bool {
	return target == ErrInvalidPeriod
}

// DuplicateExpenseError carries the value-tuple that collided.
type DuplicateExpenseError struct {
	Expense Expense
}

func (e *DuplicateExpenseError) Error() string {
	return fmt.Sprintf("duplicate expense entry: %s %s %s %q",
		e.Expense.Date, e.Expense.Amount, e.Expense.Category, e.Expense.Notes)
}

func (e *DuplicateExpenseError) Is(target error) bool {
	return target == ErrDuplicateExpense
}

// IsValidation reports whether err is caused by caller input rather than storage.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidCategory) ||
		errors.Is(err, ErrInvalidPeriod) ||
		errors.Is(err, ErrDuplicateExpense) ||
		errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrInvalidMonth) ||
		errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrNotesTooLong) ||
		errors.Is(err, ErrInvalidEdit)
}
