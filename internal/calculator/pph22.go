package calculator

import (
	"pajak-engine/internal/model"
	"pajak-engine/internal/rates"
	"pajak-engine/internal/taxmath"
)

const (
	rowBase             model.RowID  = "base"
	rowPPh22Transaction model.RowID  = "pph22.transaction_value"
	rowPPh22OtherCosts  model.RowID  = "pph22.other_costs"
	rowPPh22Deduction   model.RowID  = "pph22.deduction"
	rowPPh22DPP         model.RowID  = "pph22.dpp"
	rowTaxDue           model.RowID  = "tax_due"
	rowPPh22Rate        model.RowID  = "pph22.rate"
	rowPPh22Tax         model.RowID  = "pph22.tax"
	notePPh22OtherCosts model.NoteID = "pph22.other_costs"
	notePPh22Deduction  model.NoteID = "pph22.deduction"
)

// PPh22 computes the collection on a transaction:
// DPP = max(0, value + other costs - deduction), tax = DPP × type rate.
// An unknown transaction type yields a zero result.
func PPh22(in model.PPh22Input) model.TaxResult {
	rate, ok := rates.Default.PPh22Rate(in.TransactionType)
	if !ok {
		return emptyResult()
	}
	value := taxmath.NonNegative(in.TransactionValue)
	other := taxmath.NonNegative(in.OtherCosts)
	deduction := taxmath.NonNegative(in.Deduction)
	dpp := max(0, taxmath.Add(value, other, -deduction))
	tax := taxmath.ApplyRate(dpp, rate, taxmath.Nearest)

	return model.TaxResult{TotalTax: tax, Breakdown: []model.BreakdownRow{
		sectionRow(rowBase),
		amountRow(rowPPh22Transaction, value),
		amountRow(rowPPh22OtherCosts, other, withNote(notePPh22OtherCosts)),
		amountRow(rowPPh22Deduction, deduction, withNote(notePPh22Deduction)),
		amountRow(rowPPh22DPP, dpp, asSubtotal),
		sectionRow(rowTaxDue),
		rateRow(rowPPh22Rate, rate),
		amountRow(rowPPh22Tax, tax, asTotal),
	}}
}
