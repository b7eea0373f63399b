package calculator

import (
	"pajak-engine/internal/model"
	"pajak-engine/internal/rates"
	"pajak-engine/internal/taxmath"
)

const (
	rowPPh42Object model.RowID = "pph4_2.object_value"
	rowPPh42Rate   model.RowID = "pph4_2.rate"
	rowPPh42Tax    model.RowID = "pph4_2.tax"
)

func PPh42(in model.PPh42Input) model.TaxResult {
	rate, ok := rates.Default.PPh42Rate(in.ObjectType)
	if !ok {
		return emptyResult()
	}
	dpp := taxmath.NonNegative(in.GrossAmount)
	tax := taxmath.ApplyRate(dpp, rate, taxmath.Nearest)

	return model.TaxResult{TotalTax: tax, Breakdown: []model.BreakdownRow{
		sectionRow(rowBase),
		amountRow(rowPPh42Object, dpp),
		rateRow(rowPPh42Rate, rate),
		amountRow(rowPPh42Tax, tax, asTotal),
	}}
}
