package http

import "net/http"

func (s *Server) handleMonthlyExpenses(w http.ResponseWriter, r *http.Request) {
	var req monthlyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, "fetch monthly expenses", err)
		return
	}
	totals, err := s.ledger.FetchMonthlyExpenses(r.Context(), req.Year, req.Category)
	if err != nil {
		writeError(w, r, "fetch monthly expenses", err)
		return
	}
	out := make([]monthTotalView, len(totals))
	for i, t := range totals {
		out[i] = monthTotalView{Month: t.Name(), TotalAmount: t.Total.Float64()}
	}
	writeJSON(w, http.StatusOK, out)
}

// handleCategoryBreakdown answers with an object keyed by category.
func (s *Server) handleCategoryBreakdown(w http.ResponseWriter, r *http.Request) {
	var req dateRangeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, "fetch expense summary", err)
		return
	}
	b, err := s.ledger.FetchCategoryBreakdown(r.Context(), req.Start, req.End)
	if err != nil {
		writeError(w, r, "fetch expense summary", err)
		return
	}
	out := make(map[string]categoryShareView, len(b.Shares))
	for _, sh := range b.Shares {
		out[string(sh.Category)] = categoryShareView{
			Total:      sh.Total.Float64(),
			Percentage: sh.Percentage.InexactFloat64(),
		}
	}
	writeJSON(w, http.StatusOK, out)
}
