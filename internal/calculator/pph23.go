package calculator

import (
	"pajak-engine/internal/model"
	"pajak-engine/internal/rates"
	"pajak-engine/internal/taxmath"
)

const (
	rowPPh23Gross       model.RowID  = "pph23.gross"
	rowPPh23Amount      model.RowID  = "pph23.gross_amount"
	rowPPh23Rate        model.RowID  = "pph23.rate"
	rowPPh23Tax         model.RowID  = "pph23.tax"
	notePPh23Final      model.NoteID = "pph23.final"
	notePPh23Creditable model.NoteID = "pph23.creditable"
)

// PPh23 withholds the service-type rate on gross income. IsFinal only changes
// the note on the total row.
func PPh23(in model.PPh23Input) model.TaxResult {
	rate, ok := rates.Default.PPh23Rate(in.ServiceType)
	if !ok {
		return emptyResult()
	}
	dpp := taxmath.NonNegative(in.GrossAmount)
	tax := taxmath.ApplyRate(dpp, rate, taxmath.Nearest)
	note := notePPh23Creditable
	if in.IsFinal {
		note = notePPh23Final
	}

	return model.TaxResult{TotalTax: tax, Breakdown: []model.BreakdownRow{
		sectionRow(rowPPh23Gross),
		amountRow(rowPPh23Amount, dpp),
		rateRow(rowPPh23Rate, rate),
		amountRow(rowPPh23Tax, tax, asTotal, withNote(note)),
	}}
}
