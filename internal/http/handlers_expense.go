package http

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"expenses/internal/core"
)

func dateParam(r *http.Request) (core.Date, error) {
	d, err := core.ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		return core.Date{}, err
	}
	return d, nil
}

func (s *Server) handleExpensesForDate(w http.ResponseWriter, r *http.Request) {
	d, err := dateParam(r)
	if err != nil {
		writeError(w, r, "fetch expenses", err)
		return
	}
	es, err := s.ledger.FetchExpensesForDate(r.Context(), d)
	if err != nil {
		writeError(w, r, "fetch expenses", err)
		return
	}
	writeJSON(w, http.StatusOK, viewsOf(es))
}

func (s *Server) handleDeleteExpensesForDate(w http.ResponseWriter, r *http.Request) {
	d, err := dateParam(r)
	if err != nil {
		writeError(w, r, "delete expenses", err)
		return
	}
	n, err := s.ledger.DeleteExpensesForDate(r.Context(), d)
	if err != nil {
		writeError(w, r, "delete expenses", err)
		return
	}
	writeJSON(w, http.StatusOK, deleteResponse{Message: "Expenses deleted successfully", Deleted: n})
}

// handleAddExpenses inserts every posted expense without a duplicate check.
// Entries are validated up front so a bad one inserts nothing.
func (s *Server) handleAddExpenses(w http.ResponseWriter, r *http.Request) {
	var body []expenseJSON
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, r, "add expenses", err)
		return
	}
	es := make([]core.Expense, len(body))
	for i, b := range body {
		e, err := b.toExpense()
		if err == nil {
			err = e.Validate()
		}
		if err != nil {
			writeError(w, r, "add expenses", fmt.Errorf("expense %d: %w", i, err))
			return
		}
		es[i] = e
	}
	for _, e := range es {
		if err := s.ledger.InsertExpense(r.Context(), e); err != nil {
			writeError(w, r, "add expenses", err)
			return
		}
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Expenses updated successfully"})
}

func (s *Server) handleExpensesByNote(w http.ResponseWriter, r *http.Request) {
	var req noteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, "fetch expenses by note", err)
		return
	}
	es, err := s.ledger.FetchExpensesForNote(r.Context(), req.Note, req.Year, req.Months)
	if err != nil {
		writeError(w, r, "fetch expenses by note", err)
		return
	}
	writeJSON(w, http.StatusOK, viewsOf(es))
}

func (s *Server) handleExpensesByCategoryDate(w http.ResponseWriter, r *http.Request) {
	var req categoryDateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, "fetch expenses by category", err)
		return
	}
	es, err := s.ledger.FetchExpensesForCategoryDate(r.Context(), req.Category, req.Date)
	if err != nil {
		writeError(w, r, "fetch expenses by category", err)
		return
	}
	writeJSON(w, http.StatusOK, viewsOf(es))
}

func (s *Server) handleExpensesByCategoryPeriod(w http.ResponseWriter, r *http.Request) {
	var req categoryPeriodRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, "fetch expenses by period", err)
		return
	}
	es, err := s.ledger.FetchExpensesByCategoryAndPeriod(r.Context(), req.Category, req.Period)
	if err != nil {
		writeError(w, r, "fetch expenses by period", err)
		return
	}
	writeJSON(w, http.StatusOK, viewsOf(es))
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, "update expenses", err)
		return
	}
	batch, err := req.Batch()
	if err != nil {
		writeError(w, r, "update expenses", err)
		return
	}
	res, err := s.batches.Apply(r.Context(), batch)
	if err != nil {
		writeError(w, r, "update expenses", err)
		return
	}
	writeJSON(w, http.StatusOK, updateResponse{
		Message:  "Operation completed successfully",
		Deleted:  res.Deleted,
		Modified: res.Modified,
		Added:    res.Added,
	})
}
