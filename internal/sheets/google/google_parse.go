package google

import (
	"fmt"
	"sort"
	"strings"

	gsheet "google.golang.org/api/sheets/v4"

	"expenses/internal/core"
)

// formatRow lays out e as Date, Amount, Category, Notes.
func formatRow(e core.Expense) []any {
	return []any{e.Date.String(), e.Amount.String(), string(e.Category.Canonical()), e.Notes}
}

// parseRow reads a sheet row back into an expense. Header, blank and
// malformed rows report false.
func parseRow(row []any) (core.Expense, bool) {
	cols := toStrings(row)
	if len(cols) < 3 {
		return core.Expense{}, false
	}
	d, err := core.ParseDate(cols[0])
	if err != nil {
		return core.Expense{}, false
	}
	amount, err := core.ParseMoney(strings.TrimPrefix(cols[1], "€"))
	if err != nil {
		return core.Expense{}, false
	}
	cat, err := core.ParseCategory(cols[2])
	if err != nil {
		return core.Expense{}, false
	}
	notes := ""
	if len(cols) > 3 {
		notes = cols[3]
	}
	return core.Expense{Date: d, Amount: amount, Category: cat, Notes: notes}, true
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

// matchingRows returns the zero-based indexes of rows accepted by match.
func matchingRows(values [][]any, match func(core.Expense) bool) []int {
	var out []int
	for i, row := range values {
		if e, ok := parseRow(row); ok && match(e) {
			out = append(out, i)
		}
	}
	return out
}

// deleteRequests builds one DeleteDimension per row, bottom first so the
// remaining indexes stay valid while the batch applies.
func deleteRequests(sheetID int64, rows []int) []*gsheet.Request {
	sorted := append([]int(nil), rows...)
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))

	reqs := make([]*gsheet.Request, 0, len(sorted))
	for _, r := range sorted {
		reqs = append(reqs, &gsheet.Request{
			DeleteDimension: &gsheet.DeleteDimensionRequest{
				Range: &gsheet.DimensionRange{
					SheetId:         sheetID,
					Dimension:       "ROWS",
					StartIndex:      int64(r),
					EndIndex:        int64(r + 1),
					ForceSendFields: []string{"SheetId", "StartIndex"},
				},
			},
		})
	}
	return reqs
}
