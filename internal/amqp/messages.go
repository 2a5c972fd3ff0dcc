package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"expenses/internal/core"
)

// ChangeOp names the kind of ledger change carried by a message.
type ChangeOp string

const (
	OpAdded      ChangeOp = "added"
	OpRemoved    ChangeOp = "removed"
	OpDayCleared ChangeOp = "day_cleared"
)

// ExpenseRecord is the wire form of an expense value-tuple.
type ExpenseRecord struct {
	Date        string `json:"expense_date"`
	AmountCents int64  `json:"amount_cents"`
	Category    string `json:"category"`
	Notes       string `json:"notes"`
}

func RecordFromExpense(e core.Expense) ExpenseRecord {
	return ExpenseRecord{
		Date:        e.Date.String(),
		AmountCents: e.Amount.Cents,
		Category:    string(e.Category.Canonical()),
		Notes:       e.Notes,
	}
}

// Expense parses and validates the record.
func (r ExpenseRecord) Expense() (core.Expense, error) {
	d, err := core.ParseDate(r.Date)
	if err != nil {
		return core.Expense{}, err
	}
	cat, err := core.ParseCategory(r.Category)
	if err != nil {
		return core.Expense{}, err
	}
	e := core.Expense{Date: d, Amount: core.Money{Cents: r.AmountCents}, Category: cat, Notes: r.Notes}
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	return e, nil
}

// ExpenseChangeMessage announces a committed change to the ledger.
// Expense is set for added and removed, Date for day_cleared.
type ExpenseChangeMessage struct {
	ID        string         `json:"id"`
	Op        ChangeOp       `json:"op"`
	Expense   *ExpenseRecord `json:"expense,omitempty"`
	Date      string         `json:"date,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

func newMessage(op ChangeOp) *ExpenseChangeMessage {
	return &ExpenseChangeMessage{
		ID:        uuid.NewString(),
		Op:        op,
		Timestamp: time.Now().UTC(),
	}
}

// NewExpenseAdded reports an inserted row.
func NewExpenseAdded(e core.Expense) *ExpenseChangeMessage {
	m := newMessage(OpAdded)
	rec := RecordFromExpense(e)
	m.Expense = &rec
	return m
}

// NewExpenseRemoved reports that rows matching e were deleted.
func NewExpenseRemoved(e core.Expense) *ExpenseChangeMessage {
	m := newMessage(OpRemoved)
	rec := RecordFromExpense(e)
	m.Expense = &rec
	return m
}

// NewDayCleared reports that every row of a date was deleted.
func NewDayCleared(d core.Date) *ExpenseChangeMessage {
	m := newMessage(OpDayCleared)
	m.Date = d.String()
	return m
}

// ToJSON converts the message to JSON bytes
func (m *ExpenseChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// Validate checks that the payload matches the operation.
func (m *ExpenseChangeMessage) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("message id is required")
	}
	switch m.Op {
	case OpAdded, OpRemoved:
		if m.Expense == nil {
			return fmt.Errorf("%s message without expense", m.Op)
		}
	case OpDayCleared:
		if m.Date == "" {
			return fmt.Errorf("%s message without date", m.Op)
		}
	default:
		return fmt.Errorf("unknown change op %q", m.Op)
	}
	return nil
}

// ExpenseChangeMessageFromJSON decodes and validates a message.
func ExpenseChangeMessageFromJSON(data []byte) (*ExpenseChangeMessage, error) {
	var msg ExpenseChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}
