package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire and storage format of an expense date.
const DateLayout = "2006-01-02"

// MaxNotesLength bounds the notes column.
const MaxNotesLength = 255

type (
	// Date is a calendar date without a time component, always in UTC.
	Date struct {
		time.Time
	}

	// Expense is the only entity of the ledger. Its four fields form the
	// value-tuple used to address a record; the storage id is never exposed.
	Expense struct {
		Date     Date
		Amount   Money
		Category Category
		Notes    string
	}
)

var (
	ErrInvalidDate  = errors.New("invalid date")
	ErrInvalidMonth = errors.New("invalid month")
	ErrNotesTooLong = fmt.Errorf("notes too long (max %d characters)", MaxNotesLength)
)

// NewDate creates a new Date from year, month, day
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q: use YYYY-MM-DD", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.Format(DateLayout)
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalJSON and UnmarshalJSON replace the RFC 3339 forms promoted from
// time.Time, so JSON carries the same YYYY-MM-DD text as MarshalText.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("%w: %s: use a \"YYYY-MM-DD\" string", ErrInvalidDate, b)
	}
	return d.UnmarshalText([]byte(s))
}

func (d Date) Validate() error {
	if d.IsZero() {
		return fmt.Errorf("%w: date cannot be zero", ErrInvalidDate)
	}
	return nil
}

// Validate checks the write-time invariants of an expense.
func (e Expense) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if !e.Category.Valid() {
		return &InvalidCategoryError{Token: string(e.Category)}
	}
	if len(e.Notes) > MaxNotesLength {
		return ErrNotesTooLong
	}
	return nil
}

// Matches reports whether both expenses share the same value-tuple:
// date, amount, category and notes compared in lower case, the same
// folding storage applies.
func (e Expense) Matches(o Expense) bool {
	return e.Date.Equal(o.Date.Time) &&
		e.Amount == o.Amount &&
		e.Category.Key() == o.Category.Key() &&
		strings.ToLower(e.Notes) == strings.ToLower(o.Notes)
}

// ValidateMonths checks that every entry is a month number between 1 and 12.
// An empty list is valid and simply matches nothing.
func ValidateMonths(months []int) error {
	for _, m := range months {
		if m < 1 || m > 12 {
			return fmt.Errorf("%w: %d", ErrInvalidMonth, m)
		}
	}
	return nil
}
