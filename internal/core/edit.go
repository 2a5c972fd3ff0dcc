package core

import (
	"errors"
	"fmt"
)

// EditKind tags the variants of a batch edit.
type EditKind int

const (
	EditDelete EditKind = iota + 1
	EditModify
	EditAdd
)

func (k EditKind) String() string {
	switch k {
	case EditDelete:
		return "delete"
	case EditModify:
		return "modify"
	case EditAdd:
		return "add"
	}
	return fmt.Sprintf("EditKind(%d)", int(k))
}

var ErrInvalidEdit = errors.New("invalid edit")

// Edit is one operation of a reconciliation batch. The set of
// implementations is closed: DeleteEdit, ModifyEdit and AddEdit.
type Edit interface {
	Kind() EditKind
	Validate() error
	edit()
}

type (
	// DeleteEdit removes the rows matching Target's value-tuple.
	DeleteEdit struct {
		Target Expense
	}

	// ModifyEdit replaces the row matching Old with New.
	ModifyEdit struct {
		Old Expense
		New Expense
	}

	// AddEdit inserts a new row.
	AddEdit struct {
		Expense Expense
	}
)

func (DeleteEdit) Kind() EditKind { return EditDelete }
func (ModifyEdit) Kind() EditKind { return EditModify }
func (AddEdit) Kind() EditKind    { return EditAdd }

func (DeleteEdit) edit() {}
func (ModifyEdit) edit() {}
func (AddEdit) edit()    {}

func (e DeleteEdit) Validate() error {
	return e.Target.Validate()
}

func (e ModifyEdit) Validate() error {
	if err := e.Old.Validate(); err != nil {
		return fmt.Errorf("old values: %w", err)
	}
	if err := e.New.Validate(); err != nil {
		return fmt.Errorf("new values: %w", err)
	}
	return nil
}

func (e AddEdit) Validate() error {
	return e.Expense.Validate()
}

// Batch is an ordered list of edits.
type Batch []Edit

// Validate checks every edit, reporting the first invalid one by position.
func (b Batch) Validate() error {
	for i, e := range b {
		if e == nil {
			return fmt.Errorf("%w: edit %d is nil", ErrInvalidEdit, i)
		}
		if err := e.Validate(); err != nil {
			return fmt.Errorf("%s edit %d: %w", e.Kind(), i, err)
		}
	}
	return nil
}

// Phase returns the edits of one kind, keeping their relative order.
func (b Batch) Phase(kind EditKind) []Edit {
	var out []Edit
	for _, e := range b {
		if e != nil && e.Kind() == kind {
			out = append(out, e)
		}
	}
	return out
}
