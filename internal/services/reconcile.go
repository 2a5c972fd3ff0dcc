package services

import (
	"context"
	"fmt"

	"expenses/internal/core"
	"expenses/internal/log"
)

// ReconcileResult counts the edits applied in each phase.
type ReconcileResult struct {
	Deleted  int
	Modified int
	Added    int
}

func (r ReconcileResult) Total() int {
	return r.Deleted + r.Modified + r.Added
}

// PhaseError reports the edit that stopped a batch.
type PhaseError struct {
	Phase core.EditKind
	Index int // position in the submitted batch
	Err   error
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("%s edit %d: %v", e.Phase, e.Index, e.Err)
}

func (e *PhaseError) Unwrap() error { return e.Err }

// Reconciler applies edit batches in three phases: every deletion, then
// every modification, then every addition. Each edit sees the table as left
// by the ones before it. The first failure stops the batch and earlier
// edits stay applied.
type Reconciler struct {
	svc *ExpenseService
}

func NewReconciler(svc *ExpenseService) *Reconciler {
	return &Reconciler{svc: svc}
}

var phases = []core.EditKind{core.EditDelete, core.EditModify, core.EditAdd}

func (r *Reconciler) Apply(ctx context.Context, batch core.Batch) (ReconcileResult, error) {
	r.svc.loggerFor(ctx).LogCall(ctx, "ApplyBatch",
		"deletes", len(batch.Phase(core.EditDelete)),
		"modifies", len(batch.Phase(core.EditModify)),
		"adds", len(batch.Phase(core.EditAdd)))

	var res ReconcileResult
	if err := batch.Validate(); err != nil {
		return res, err
	}

	for _, kind := range phases {
		for i, edit := range batch {
			if edit.Kind() != kind {
				continue
			}
			if err := r.apply(ctx, edit); err != nil {
				r.svc.loggerFor(ctx).LogError(ctx, "Batch stopped", err, "ApplyBatch", log.NewFields().
					With("phase", kind.String()).
					With("index", i))
				return res, &PhaseError{Phase: kind, Index: i, Err: err}
			}
			switch kind {
			case core.EditDelete:
				res.Deleted++
			case core.EditModify:
				res.Modified++
			case core.EditAdd:
				res.Added++
			}
		}
	}
	return res, nil
}

func (r *Reconciler) apply(ctx context.Context, edit core.Edit) error {
	switch e := edit.(type) {
	case core.DeleteEdit:
		_, err := r.svc.DeleteExpense(ctx, e.Target)
		return err
	case core.ModifyEdit:
		return r.svc.UpdateExpense(ctx, e.Old, e.New)
	case core.AddEdit:
		return r.svc.AddExpense(ctx, e.Expense, true)
	}
	return fmt.Errorf("%w: unsupported edit %T", core.ErrInvalidEdit, edit)
}
