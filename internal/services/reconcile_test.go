package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expenses/internal/core"
)

func TestReconcilerPhaseOrder(t *testing.T) {
	env := newTestEnv(t, true)
	ctx := context.Background()
	r := NewReconciler(env.svc)

	existing := fixtures[0]
	// The add is listed first but runs after the delete frees the tuple.
	res, err := r.Apply(ctx, core.Batch{
		core.AddEdit{Expense: existing},
		core.DeleteEdit{Target: existing},
	})
	require.NoError(t, err)
	assert.Equal(t, ReconcileResult{Deleted: 1, Added: 1}, res)
	assert.EqualValues(t, len(fixtures), env.count(t))
}

func TestReconcilerMixedBatch(t *testing.T) {
	env := newTestEnv(t, true)
	ctx := context.Background()
	r := NewReconciler(env.svc)

	newRow := expense(date(2024, time.August, 2), 800, core.Shopping, "Socks")
	res, err := r.Apply(ctx, core.Batch{
		core.ModifyEdit{Old: fixtures[1], New: expense(fixtures[1].Date, 3500, core.Transportation, "Taxi home")},
		core.DeleteEdit{Target: fixtures[2]},
		core.AddEdit{Expense: newRow},
	})
	require.NoError(t, err)
	assert.Equal(t, ReconcileResult{Deleted: 1, Modified: 1, Added: 1}, res)
	assert.Equal(t, 3, res.Total())

	got, err := env.svc.FetchExpensesForDate(ctx, fixtures[1].Date)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Lunch with team", "Taxi home"}, notesOf(got))

	got, err = env.svc.FetchExpensesForDate(ctx, fixtures[2].Date)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReconcilerStopsAtFirstFailure(t *testing.T) {
	env := newTestEnv(t, true)
	ctx := context.Background()
	r := NewReconciler(env.svc)

	res, err := r.Apply(ctx, core.Batch{
		core.DeleteEdit{Target: fixtures[2]},
		core.ModifyEdit{Old: fixtures[0], New: fixtures[1]},
		core.AddEdit{Expense: expense(date(2024, time.August, 2), 800, core.Shopping, "Socks")},
	})
	require.ErrorIs(t, err, core.ErrDuplicateExpense)

	var perr *PhaseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, core.EditModify, perr.Phase)
	assert.Equal(t, 1, perr.Index)
	assert.Equal(t, ReconcileResult{Deleted: 1}, res)

	// The delete stays applied; the add never ran.
	assert.EqualValues(t, len(fixtures)-1, env.count(t))
	got, err := env.svc.FetchExpensesForDate(ctx, date(2024, time.August, 2))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReconcilerDuplicateAdd(t *testing.T) {
	env := newTestEnv(t, true)
	r := NewReconciler(env.svc)

	res, err := r.Apply(context.Background(), core.Batch{
		core.AddEdit{Expense: expense(date(2024, time.August, 2), 800, core.Shopping, "Socks")},
		core.AddEdit{Expense: expense(date(2024, time.August, 2), 800, core.Shopping, "socks")},
	})
	require.ErrorIs(t, err, core.ErrDuplicateExpense)
	assert.Equal(t, ReconcileResult{Added: 1}, res)
	assert.EqualValues(t, len(fixtures)+1, env.count(t))
}

func TestReconcilerValidatesWholeBatchFirst(t *testing.T) {
	env := newTestEnv(t, true)
	r := NewReconciler(env.svc)

	res, err := r.Apply(context.Background(), core.Batch{
		core.DeleteEdit{Target: fixtures[0]},
		core.AddEdit{Expense: expense(date(2024, time.August, 2), 800, "toys", "Lego")},
	})
	require.ErrorIs(t, err, core.ErrInvalidCategory)
	assert.Zero(t, res.Total())
	assert.EqualValues(t, len(fixtures), env.count(t))

	_, err = r.Apply(context.Background(), core.Batch{nil})
	assert.ErrorIs(t, err, core.ErrInvalidEdit)
}

func TestReconcilerEmptyBatch(t *testing.T) {
	env := newTestEnv(t, false)
	res, err := NewReconciler(env.svc).Apply(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, res.Total())
}
