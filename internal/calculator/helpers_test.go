package calculator

import (
	"testing"

	"github.com/stretchr/testify/require"

	"pajak-engine/internal/model"
)

func findRow(t *testing.T, rows []model.BreakdownRow, id model.RowID) model.BreakdownRow {
	t.Helper()
	for _, r := range rows {
		if r.ID == id {
			return r
		}
	}
	require.Failf(t, "row not found", "no row %q", id)
	return model.BreakdownRow{}
}

func rowsWithID(rows []model.BreakdownRow, id model.RowID) []model.BreakdownRow {
	var out []model.BreakdownRow
	for _, r := range rows {
		if r.ID == id {
			out = append(out, r)
		}
	}
	return out
}

func amountOf(t *testing.T, rows []model.BreakdownRow, id model.RowID) model.Amount {
	t.Helper()
	r := findRow(t, rows, id)
	require.NotNil(t, r.Amount, "row %q has no amount", id)
	return *r.Amount
}

func hasRow(rows []model.BreakdownRow, id model.RowID) bool {
	return len(rowsWithID(rows, id)) > 0
}
