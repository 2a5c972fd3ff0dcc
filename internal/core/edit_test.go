package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchPhase(t *testing.T) {
	e := Expense{Date: NewDate(2024, 8, 1), Amount: Money{Cents: 100}, Category: Food, Notes: "x"}
	b := Batch{
		AddEdit{Expense: e},
		DeleteEdit{Target: e},
		ModifyEdit{Old: e, New: e},
		DeleteEdit{Target: e},
	}
	assert.Len(t, b.Phase(EditDelete), 2)
	assert.Len(t, b.Phase(EditModify), 1)
	assert.Len(t, b.Phase(EditAdd), 1)
	require.NoError(t, b.Validate())
}

func TestBatchValidate(t *testing.T) {
	good := Expense{Date: NewDate(2024, 8, 1), Amount: Money{Cents: 100}, Category: Food}
	bad := good
	bad.Category = "Sports"

	err := Batch{AddEdit{Expense: good}, ModifyEdit{Old: good, New: bad}}.Validate()
	require.ErrorIs(t, err, ErrInvalidCategory)
	assert.Contains(t, err.Error(), "modify edit 1")
	assert.Contains(t, err.Error(), "new values")

	err = Batch{nil}.Validate()
	assert.ErrorIs(t, err, ErrInvalidEdit)
	assert.True(t, IsValidation(err))
}

func TestEditKindString(t *testing.T) {
	assert.Equal(t, "delete", EditDelete.String())
	assert.Equal(t, "modify", EditModify.String())
	assert.Equal(t, "add", EditAdd.String())
}
