package calculator

import (
	"pajak-engine/internal/model"
	"pajak-engine/internal/rates"
	"pajak-engine/internal/taxmath"
)

const (
	rowPPNDPP        model.RowID  = "ppn.dpp"
	rowPPNCalc       model.RowID  = "ppn.calculation"
	rowPPNRate       model.RowID  = "ppn.rate"
	rowPPNTax        model.RowID  = "ppn.tax"
	rowPPNTotal      model.RowID  = "ppn.total_billed"
	notePPNInclusive model.NoteID = "ppn.inclusive"
	notePPNExclusive model.NoteID = "ppn.exclusive"
)

// PPNRate resolves the VAT rate: a positive custom percentage wins, otherwise
// the tax year's rate, otherwise the baseline year's.
func PPNRate(in model.PPNInput) model.Rate {
	if in.CustomRate.Valid && in.CustomRate.Decimal.IsPositive() {
		return taxmath.PercentToRate(in.CustomRate.Decimal)
	}
	return rates.Default.PPNRate(in.TaxYear)
}

// PPN computes VAT. In inclusive mode the price already contains VAT and the
// base is backed out of it; total billed is always DPP + VAT.
func PPN(in model.PPNInput) model.TaxResult {
	rate := PPNRate(in)
	gross := max(0, taxmath.Add(
		taxmath.NonNegative(in.BasePrice), -taxmath.NonNegative(in.Discount), taxmath.NonNegative(in.OtherCosts)))

	var dpp, vat model.Amount
	note := notePPNExclusive
	if in.IncludePPN {
		dpp = taxmath.InclusiveBase(gross, rate)
		vat = gross - dpp
		note = notePPNInclusive
	} else {
		dpp = gross
		vat = taxmath.ApplyRate(dpp, rate, taxmath.Nearest)
	}

	return model.TaxResult{TotalTax: vat, Breakdown: []model.BreakdownRow{
		sectionRow(rowBase),
		amountRow(rowPPNDPP, dpp, asSubtotal, withNote(note)),
		sectionRow(rowPPNCalc),
		rateRow(rowPPNRate, rate),
		amountRow(rowPPNTax, vat),
		amountRow(rowPPNTotal, taxmath.Add(dpp, vat), asTotal),
	}}
}
