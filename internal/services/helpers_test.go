package services

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"expenses/internal/amqp"
	"expenses/internal/core"
	"expenses/internal/storage"
)

type recordingPublisher struct {
	mu   sync.Mutex
	msgs []*amqp.ExpenseChangeMessage
	err  error
}

func (p *recordingPublisher) Publish(_ context.Context, msg *amqp.ExpenseChangeMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.msgs = append(p.msgs, msg)
	return nil
}

func (p *recordingPublisher) ops() []amqp.ChangeOp {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]amqp.ChangeOp, len(p.msgs))
	for i, m := range p.msgs {
		out[i] = m.Op
	}
	return out
}

var errBrokerDown = errors.New("broker down")

func date(y int, m time.Month, d int) core.Date {
	return core.NewDate(y, m, d)
}

func expense(d core.Date, cents int64, cat core.Category, notes string) core.Expense {
	return core.Expense{Date: d, Amount: core.Money{Cents: cents}, Category: cat, Notes: notes}
}

// seed rows; weekdays noted for the period tests.
var fixtures = []core.Expense{
	expense(date(2024, time.August, 1), 1200, core.Food, "Lunch with team"),     // Thursday
	expense(date(2024, time.August, 1), 3000, core.Transportation, "Taxi"),      // Thursday
	expense(date(2024, time.August, 3), 10000, core.Entertainment, "Concert"),   // Saturday
	expense(date(2024, time.August, 4), 2000, core.Food, "Brunch"),              // Sunday
	expense(date(2024, time.August, 5), 60000, core.Housing, "Rent"),            // Monday
	expense(date(2024, time.September, 10), 4000, core.Food, "lunch"),           // Tuesday
	expense(date(2023, time.August, 1), 1000, core.Food, "Lunch 50% off_promo"), // Tuesday
}

type testEnv struct {
	svc   *ExpenseService
	store *storage.SQLite
	pub   *recordingPublisher
}

func newTestEnv(t *testing.T, seed bool) *testEnv {
	t.Helper()
	ctx := context.Background()
	store, err := storage.OpenSQLite(ctx, filepath.Join(t.TempDir(), "expenses.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	if seed {
		plain := NewExpenseService(store)
		for _, e := range fixtures {
			require.NoError(t, plain.InsertExpense(ctx, e))
		}
	}

	pub := &recordingPublisher{}
	return &testEnv{svc: NewExpenseService(store, WithPublisher(pub)), store: store, pub: pub}
}

func (e *testEnv) count(t *testing.T) int64 {
	t.Helper()
	rows, err := e.store.Query(context.Background(), "SELECT COUNT(*) AS n FROM expenses")
	require.NoError(t, err)
	return rows[0].Int64("n")
}

func notesOf(es []core.Expense) []string {
	out := make([]string, len(es))
	for i, e := range es {
		out[i] = e.Notes
	}
	return out
}
