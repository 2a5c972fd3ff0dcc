package http

import (
	"github.com/shopspring/decimal"

	"expenses/internal/core"
)

// Request and response bodies. Field names follow the dashboard client.

type expenseJSON struct {
	Date     core.Date       `json:"expense_date"`
	Amount   decimal.Decimal `json:"amount"`
	Category string          `json:"category"`
	Notes    string          `json:"notes"`
}

func (e expenseJSON) toExpense() (core.Expense, error) {
	amount, err := core.MoneyFromDecimal(e.Amount)
	if err != nil {
		return core.Expense{}, err
	}
	return core.Expense{Date: e.Date, Amount: amount, Category: core.Category(e.Category), Notes: e.Notes}, nil
}

type expenseView struct {
	Date     string  `json:"expense_date"`
	Amount   float64 `json:"amount"`
	Category string  `json:"category"`
	Notes    string  `json:"notes"`
}

func viewsOf(es []core.Expense) []expenseView {
	out := make([]expenseView, len(es))
	for i, e := range es {
		out[i] = expenseView{
			Date:     e.Date.String(),
			Amount:   e.Amount.Float64(),
			Category: string(e.Category),
			Notes:    e.Notes,
		}
	}
	return out
}

type monthlyRequest struct {
	Year     int    `json:"year"`
	Category string `json:"category"`
}

type monthTotalView struct {
	Month       string  `json:"month"`
	TotalAmount float64 `json:"total_amount"`
}

type noteRequest struct {
	Note   string `json:"wildcard_note"`
	Year   int    `json:"year"`
	Months []int  `json:"months"`
}

type dateRangeRequest struct {
	Start core.Date `json:"start_date"`
	End   core.Date `json:"end_date"`
}

type categoryShareView struct {
	Total      float64 `json:"Total"`
	Percentage float64 `json:"Percentage"`
}

type categoryDateRequest struct {
	Category string    `json:"category"`
	Date     core.Date `json:"expense_date"`
}

type categoryPeriodRequest struct {
	Category string `json:"category"`
	Period   string `json:"period_of_week"`
}

// updateRequest is the dashboard's batch format. An update whose new amount
// is zero asks for the old row to be deleted.
type updateRequest struct {
	Updates   []expenseUpdate `json:"updates"`
	Additions []expenseJSON   `json:"additions"`
}

type expenseUpdate struct {
	OldDate     core.Date       `json:"old_expense_date"`
	OldAmount   decimal.Decimal `json:"old_amount"`
	OldCategory string          `json:"old_category"`
	OldNotes    string          `json:"old_notes"`
	NewDate     core.Date       `json:"new_expense_date"`
	NewAmount   decimal.Decimal `json:"new_amount"`
	NewCategory string          `json:"new_category"`
	NewNotes    string          `json:"new_notes"`
}

func (u expenseUpdate) old() expenseJSON {
	return expenseJSON{Date: u.OldDate, Amount: u.OldAmount, Category: u.OldCategory, Notes: u.OldNotes}
}

func (u expenseUpdate) updated() expenseJSON {
	return expenseJSON{Date: u.NewDate, Amount: u.NewAmount, Category: u.NewCategory, Notes: u.NewNotes}
}

// Batch converts the request into tagged edits: updates first, in order,
// then additions. The reconciler reorders them into phases.
func (r updateRequest) Batch() (core.Batch, error) {
	batch := make(core.Batch, 0, len(r.Updates)+len(r.Additions))
	for _, u := range r.Updates {
		old, err := u.old().toExpense()
		if err != nil {
			return nil, err
		}
		if u.NewAmount.IsZero() {
			batch = append(batch, core.DeleteEdit{Target: old})
			continue
		}
		updated, err := u.updated().toExpense()
		if err != nil {
			return nil, err
		}
		batch = append(batch, core.ModifyEdit{Old: old, New: updated})
	}
	for _, a := range r.Additions {
		e, err := a.toExpense()
		if err != nil {
			return nil, err
		}
		batch = append(batch, core.AddEdit{Expense: e})
	}
	return batch, nil
}

type messageResponse struct {
	Message string `json:"message"`
}

type deleteResponse struct {
	Message string `json:"message"`
	Deleted int64  `json:"deleted"`
}

type updateResponse struct {
	Message  string `json:"message"`
	Deleted  int    `json:"deleted"`
	Modified int    `json:"modified"`
	Added    int    `json:"added"`
}

type statusResponse struct {
	Status string `json:"status"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}
