package calculator

import (
	"pajak-engine/internal/model"
	"pajak-engine/internal/rates"
	"pajak-engine/internal/taxmath"
)

const (
	rowPPNBMBase model.RowID = "ppnbm.dpp"
	rowPPNBMRate model.RowID = "ppnbm.rate"
	rowPPNBMTax  model.RowID = "ppnbm.tax"
)

// PPNBM applies the luxury-goods rate to a VAT base supplied by the caller.
// A positive custom percentage overrides the goods type; with neither, the
// result is zero.
func PPNBM(in model.PPNBMInput) model.TaxResult {
	rate, ok := rates.Default.PPNBMRate(in.GoodsType)
	if in.CustomRate.Valid && in.CustomRate.Decimal.IsPositive() {
		rate, ok = taxmath.PercentToRate(in.CustomRate.Decimal), true
	}
	if !ok {
		return emptyResult()
	}
	dpp := taxmath.NonNegative(in.DPPPPN)
	tax := taxmath.ApplyRate(dpp, rate, taxmath.Nearest)

	return model.TaxResult{TotalTax: tax, Breakdown: []model.BreakdownRow{
		sectionRow(rowBase),
		amountRow(rowPPNBMBase, dpp),
		rateRow(rowPPNBMRate, rate),
		amountRow(rowPPNBMTax, tax, asTotal),
	}}
}
