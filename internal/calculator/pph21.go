package calculator

import (
	"github.com/samber/lo"

	"pajak-engine/internal/model"
	"pajak-engine/internal/rates"
	"pajak-engine/internal/taxmath"
)

const (
	rowPPh21Income          model.RowID = "pph21.income"
	rowPPh21GrossAnnual     model.RowID = "pph21.gross_annual"
	rowPPh21Deductions      model.RowID = "pph21.deductions"
	rowPPh21PositionCost    model.RowID = "pph21.position_cost"
	rowPPh21PensionCost     model.RowID = "pph21.pension_cost"
	rowPPh21PensionAnnual   model.RowID = "pph21.pension_annual"
	rowPPh21Zakat           model.RowID = "pph21.zakat"
	rowPPh21NetAnnual       model.RowID = "pph21.net_annual"
	rowPPh21AnnualCalc      model.RowID = "pph21.annual_calculation"
	rowPPh21PTKP            model.RowID = "pph21.ptkp"
	rowPPh21PKP             model.RowID = "pph21.pkp_rounded"
	rowPPh21Tier            model.RowID = "pph21.tier"
	rowPPh21AnnualTax       model.RowID = "pph21.annual_tax"
	rowPPh21PeriodTax       model.RowID = "pph21.period_tax"
	rowPPh21TaxPerPeriod    model.RowID = "pph21.tax_per_period"
	rowPPh21TakeHome        model.RowID = "pph21.take_home"
	rowPPh21TERIncome       model.RowID = "pph21.ter.income"
	rowPPh21GrossPerPeriod  model.RowID = "pph21.gross_per_period"
	rowPPh21TERRate         model.RowID = "pph21.ter.rate"
	rowPPh21TERAccumulated  model.RowID = "pph21.ter.accumulated"
	rowPPh21TERBonusTax     model.RowID = "pph21.ter.bonus_tax"
	rowPPh21TERTotal        model.RowID = "pph21.ter.total"
	rowPPh21DailyIncome     model.RowID = "pph21.daily.income"
	rowPPh21DailyWage       model.RowID = "pph21.daily.wage"
	rowPPh21DailyRate       model.RowID = "pph21.daily.rate"
	rowPPh21DailyTax        model.RowID = "pph21.daily.tax_per_day"
	rowPPh21PeriodTotal     model.RowID = "pph21.period_total"
	rowPPh21GrossMonthly    model.RowID = "pph21.gross_monthly"
	rowPPh21DeemedBase      model.RowID = "pph21.deemed_base"
	rowPPh21Gross           model.RowID = "pph21.gross"
	rowPPh21Base            model.RowID = "pph21.base"
	rowPPh21FinalTax        model.RowID = "pph21.final_tax"
	rowPPh21FinalTotal      model.RowID = "pph21.total"
	rowPPh21ActivityHeading model.RowID = "pph21.activity_participant"
	rowPPh21PensionHeading  model.RowID = "pph21.pension_withdrawal"
	rowPPh21FormerHeading   model.RowID = "pph21.former_employee"

	rowWaterfallGross      model.RowID = "pph21.waterfall.gross"
	rowWaterfallSalary     model.RowID = "pph21.waterfall.salary_annual"
	rowWaterfallAllowance  model.RowID = "pph21.waterfall.allowance_annual"
	rowWaterfallTotalGross model.RowID = "pph21.waterfall.total_gross"
	rowWaterfallDeductions model.RowID = "pph21.waterfall.deductions"
	rowWaterfallTotalDeduc model.RowID = "pph21.waterfall.total_deductions"
	rowWaterfallBasis      model.RowID = "pph21.waterfall.basis"
	rowWaterfallNet        model.RowID = "pph21.waterfall.net_income"
	rowWaterfallTaxDue     model.RowID = "pph21.waterfall.tax_due"
	rowWaterfallTaxYear    model.RowID = "pph21.waterfall.total_tax_year"
	rowWaterfallSettlement model.RowID = "pph21.waterfall.settlement"
	rowWaterfallTERPaid    model.RowID = "pph21.waterfall.ter_paid"
	rowWaterfallOverpaid   model.RowID = "pph21.waterfall.overpaid"
	rowWaterfallTakeHome   model.RowID = "pph21.waterfall.take_home"

	rowPPh26Gross     model.RowID = "pph26.gross"
	rowPPh26Salary    model.RowID = "pph26.salary_annual"
	rowPPh26Allowance model.RowID = "pph26.allowance"
	rowPPh26Total     model.RowID = "pph26.total_gross"
	rowPPh26RateGroup model.RowID = "pph26.rate_group"
	rowPPh26Rate      model.RowID = "pph26.rate"
	rowPPh26TaxGroup  model.RowID = "pph26.tax_group"
	rowPPh26Tax       model.RowID = "pph26.tax"
)

const (
	notePeriods          model.NoteID = "periods"
	noteTierLayer        model.NoteID = "pph21.tier_layer"
	notePositionCost     model.NoteID = "pph21.position_cost"
	notePensionCost      model.NoteID = "pph21.pension_cost"
	notePension          model.NoteID = "pph21.pension"
	noteZakat            model.NoteID = "pph21.zakat"
	noteSalaryEstimate   model.NoteID = "pph21.salary_estimate"
	noteAllowance        model.NoteID = "pph21.allowance"
	noteTotalGross       model.NoteID = "pph21.total_gross"
	noteNetIncome        model.NoteID = "pph21.net_income"
	notePTKP             model.NoteID = "pph21.ptkp"
	noteTaxYear          model.NoteID = "pph21.total_tax_year"
	noteTERPerPeriod     model.NoteID = "pph21.ter_per_period"
	noteTERPaid          model.NoteID = "pph21.ter_paid"
	noteOverpaid         model.NoteID = "pph21.overpaid"
	noteDecember         model.NoteID = "pph21.december_adjustment"
	noteTakeHomeAnnual   model.NoteID = "pph21.take_home_annual"
	notePPh26Additional  model.NoteID = "pph26.additional"
	notePPh26Treaty      model.NoteID = "pph26.treaty"
	notePPh26WithholdTag model.NoteID = "pph26.withholding_slip"
)

const fullYear = 12

// annualBasis is the shared annual derivation of the permanent-employee and
// pensioner paths.
type annualBasis struct {
	months        int
	salaryAnnual  model.Amount
	brutoAnnual   model.Amount
	pensionAnnual model.Amount
	costDeduction model.Amount
	net           model.Amount
	ptkp          model.Amount
	pkp           model.Amount
	annualTax     model.Amount
	layers        []taxmath.Layer
}

// PPh21 computes PPh 21 (or PPh 26 for foreign taxpayers) for one subject.
// Months are clamped to [1,12] and negative amounts count as zero. An unknown
// subject type yields a zero result with no rows.
func PPh21(in model.PPh21Input) model.TaxResult {
	in = normalizePPh21(in)
	switch in.SubjectType {
	case model.SubjectPermanentEmployee:
		return permanentEmployee(in)
	case model.SubjectPensioner:
		return pensioner(in)
	case model.SubjectNonPermanentEmployee:
		return nonPermanentEmployee(in)
	case model.SubjectNonEmployee:
		return nonEmployee(in)
	case model.SubjectActivityParticipant:
		return flatPasal17(in, rowPPh21ActivityHeading)
	case model.SubjectPensionWithdrawal:
		return flatPasal17(in, rowPPh21PensionHeading)
	case model.SubjectFormerEmployee:
		return flatPasal17(in, rowPPh21FormerHeading)
	case model.SubjectForeignTaxpayer:
		return pph26(in)
	default:
		return emptyResult()
	}
}

// PPh21ReceiptType reports whether a PPh 21 input is filed as PPh 26.
func PPh21ReceiptType(in model.PPh21Input) model.TaxType {
	if in.SubjectType == model.SubjectForeignTaxpayer {
		return model.TaxPPh26
	}
	return model.TaxPPh21
}

func normalizePPh21(in model.PPh21Input) model.PPh21Input {
	in.MonthsPaid = lo.Clamp(in.MonthsPaid, 1, fullYear)
	in.BrutoMonthly = taxmath.NonNegative(in.BrutoMonthly)
	in.PensionContribution = taxmath.NonNegative(in.PensionContribution)
	in.ZakatOrDonation = taxmath.NonNegative(in.ZakatOrDonation)
	in.BonusAnnual = taxmath.NonNegative(in.BonusAnnual)
	return in
}

func deriveAnnual(in model.PPh21Input, costRate model.Rate, costCap model.Amount, withPension bool) annualBasis {
	b := annualBasis{months: in.MonthsPaid}
	b.salaryAnnual = taxmath.Mul(in.BrutoMonthly, int64(b.months))
	b.brutoAnnual = taxmath.Add(b.salaryAnnual, in.BonusAnnual)
	if withPension {
		b.pensionAnnual = taxmath.Mul(in.PensionContribution, int64(b.months))
	}
	b.costDeduction = min(taxmath.ApplyRate(b.brutoAnnual, costRate, taxmath.Nearest), costCap)
	b.net = taxmath.Add(b.brutoAnnual, -b.costDeduction, -b.pensionAnnual, -in.ZakatOrDonation)
	b.ptkp = rates.Default.PTKP(in.PTKPStatus)
	b.pkp = taxmath.RoundDownToThousand(max(0, b.net-b.ptkp))
	b.annualTax, b.layers = taxmath.ProgressiveTax(b.pkp, rates.Default.Brackets())
	return b
}

func permanentEmployee(in model.PPh21Input) model.TaxResult {
	c := rates.Default.PPh21
	b := deriveAnnual(in, c.PositionCostRate, c.PositionCostCap, true)
	if in.Scheme == model.SchemeTER {
		if b.months < fullYear {
			return terPartialYear(in, b)
		}
		return terFullYear(in, b)
	}
	return oldScheme(in, b)
}

func oldScheme(in model.PPh21Input, b annualBasis) model.TaxResult {
	total := taxmath.Prorate(b.annualTax, int64(b.months), fullYear)
	takeHome := b.brutoAnnual - total

	rows := []model.BreakdownRow{
		sectionRow(rowPPh21Income),
		amountRow(rowPPh21GrossAnnual, b.brutoAnnual),
		sectionRow(rowPPh21Deductions),
		amountRow(rowPPh21PositionCost, b.costDeduction, withNote(notePositionCost)),
		amountRow(rowPPh21PensionAnnual, b.pensionAnnual),
		amountRow(rowPPh21Zakat, in.ZakatOrDonation),
		amountRow(rowPPh21NetAnnual, b.net, asSubtotal),
		sectionRow(rowPPh21AnnualCalc),
		amountRow(rowPPh21PTKP, b.ptkp),
		amountRow(rowPPh21PKP, b.pkp),
	}
	rows = append(rows, tierRows(b.layers)...)
	rows = append(rows,
		amountRow(rowPPh21AnnualTax, b.annualTax),
		amountRow(rowPPh21PeriodTax, total, asTotal, withArgs(countArg("months", b.months))),
	)
	rows = append(rows, takeHomeRows(sectionRow(rowPPh21TakeHome), takeHome, b.months, "")...)
	return model.TaxResult{TotalTax: total, Breakdown: rows}
}

// terPartialYear estimates withholding for fewer than twelve periods. No annual
// reconciliation happens before the December period.
func terPartialYear(in model.PPh21Input, b annualBasis) model.TaxResult {
	terRate := taxmath.LookupThresholdRate(in.BrutoMonthly, rates.Default.TERMonthly(in.TERCategory))
	periodTax := taxmath.ApplyRate(in.BrutoMonthly, terRate, taxmath.Nearest)
	terMonths := min(fullYear-1, b.months)
	terPaid := taxmath.Mul(periodTax, int64(terMonths))
	bonusTax := taxmath.ApplyRate(in.BonusAnnual, terRate, taxmath.Nearest)
	total := taxmath.Add(terPaid, bonusTax)
	takeHome := b.brutoAnnual - total
	months := countArg("months", b.months)

	rows := []model.BreakdownRow{
		sectionRow(rowPPh21TERIncome),
		amountRow(rowPPh21GrossPerPeriod, in.BrutoMonthly),
		rateRow(rowPPh21TERRate, terRate),
		amountRow(model.RowTERPerPeriod, periodTax, withNote(notePeriods), withArgs(months)),
		amountRow(rowPPh21TERAccumulated, terPaid, asSubtotal, withArgs(months)),
		sectionRow(rowPPh21Deductions),
		amountRow(rowPPh21PositionCost, b.costDeduction, withNote(notePositionCost)),
		amountRow(rowPPh21PensionAnnual, b.pensionAnnual),
		amountRow(rowPPh21Zakat, in.ZakatOrDonation),
		amountRow(rowPPh21NetAnnual, b.net, asSubtotal),
	}
	if in.BonusAnnual > 0 {
		rows = append(rows, amountRow(rowPPh21TERBonusTax, bonusTax))
	}
	rows = append(rows, amountRow(rowPPh21TERTotal, total, asTotal))
	rows = append(rows, takeHomeRows(sectionRow(rowPPh21TakeHome), takeHome, b.months, "")...)
	return model.TaxResult{TotalTax: total, Breakdown: rows}
}

// terFullYear closes out December: the Pasal 17 liability is compared with the
// TER withheld over the first eleven periods. A shortfall is added to the
// total; an overpayment is only reported.
func terFullYear(in model.PPh21Input, b annualBasis) model.TaxResult {
	terRate := taxmath.LookupThresholdRate(in.BrutoMonthly, rates.Default.TERMonthly(in.TERCategory))
	periodTax := taxmath.ApplyRate(in.BrutoMonthly, terRate, taxmath.Nearest)
	terMonths := min(fullYear-1, b.months)
	terPaid := taxmath.Mul(periodTax, int64(terMonths))

	difference := b.annualTax - terPaid
	adjustment := max(0, difference)
	overpaid := max(0, -difference)
	total := taxmath.Add(terPaid, adjustment)
	takeHome := b.brutoAnnual - total
	totalDeductions := taxmath.Add(b.costDeduction, b.pensionAnnual, in.ZakatOrDonation)

	rows := []model.BreakdownRow{
		groupRow(rowWaterfallGross),
		amountRow(rowWaterfallSalary, b.salaryAnnual, withNote(noteSalaryEstimate), withArgs(countArg("months", b.months))),
		amountRow(rowWaterfallAllowance, in.BonusAnnual, withNote(noteAllowance)),
		amountRow(rowWaterfallTotalGross, b.brutoAnnual, asSubtotal, withNote(noteTotalGross)),
		spacerRow(),

		groupRow(rowWaterfallDeductions),
		amountRow(rowPPh21PositionCost, -b.costDeduction, withNote(notePositionCost)),
		amountRow(rowPPh21PensionAnnual, -b.pensionAnnual, withNote(notePension)),
	}
	if in.ZakatOrDonation > 0 {
		rows = append(rows, amountRow(rowPPh21Zakat, -in.ZakatOrDonation, withNote(noteZakat)))
	}
	rows = append(rows,
		amountRow(rowWaterfallTotalDeduc, -totalDeductions, asSubtotal),
		spacerRow(),

		groupRow(rowWaterfallBasis),
		amountRow(rowWaterfallNet, b.net, withNote(noteNetIncome)),
		amountRow(rowPPh21PTKP, -b.ptkp, withNote(notePTKP)),
		amountRow(rowPPh21PKP, b.pkp, asSubtotal),
		spacerRow(),

		groupRow(rowWaterfallTaxDue),
	)
	rows = append(rows, tierRows(b.layers)...)
	rows = append(rows,
		amountRow(rowWaterfallTaxYear, b.annualTax, asSubtotal, withNote(noteTaxYear)),
		spacerRow(),

		groupRow(rowWaterfallSettlement),
		amountRow(model.RowTERPerPeriod, periodTax, withNote(noteTERPerPeriod), withArgs(rateArg("rate", terRate))),
		amountRow(rowWaterfallTERPaid, -terPaid, withNote(noteTERPaid),
			withArgs(rateArg("rate", terRate), countArg("months", terMonths))),
	)
	if overpaid > 0 {
		rows = append(rows, amountRow(rowWaterfallOverpaid, overpaid, withNote(noteOverpaid)))
	}
	rows = append(rows,
		amountRow(model.RowDecemberAdjustment, adjustment, asTotal, withNote(noteDecember)),
		spacerRow(),
	)
	rows = append(rows, takeHomeRows(groupRow(rowWaterfallTakeHome), takeHome, b.months, noteTakeHomeAnnual)...)
	return model.TaxResult{TotalTax: total, Breakdown: rows}
}

func pensioner(in model.PPh21Input) model.TaxResult {
	c := rates.Default.PPh21
	b := deriveAnnual(in, c.PensionCostRate, c.PensionCostCap, false)
	total := taxmath.Prorate(b.annualTax, int64(b.months), fullYear)
	takeHome := b.brutoAnnual - total

	rows := []model.BreakdownRow{
		sectionRow(rowPPh21Income),
		amountRow(rowPPh21GrossAnnual, b.brutoAnnual),
		sectionRow(rowPPh21Deductions),
		amountRow(rowPPh21PensionCost, b.costDeduction, withNote(notePensionCost)),
	}
	if in.ZakatOrDonation > 0 {
		rows = append(rows, amountRow(rowPPh21Zakat, in.ZakatOrDonation))
	}
	rows = append(rows,
		amountRow(rowPPh21NetAnnual, b.net, asSubtotal),
		sectionRow(rowPPh21AnnualCalc),
		amountRow(rowPPh21PTKP, b.ptkp),
		amountRow(rowPPh21PKP, b.pkp),
	)
	rows = append(rows, tierRows(b.layers)...)
	rows = append(rows,
		amountRow(rowPPh21AnnualTax, b.annualTax),
		amountRow(rowPPh21PeriodTax, total, asTotal, withArgs(countArg("months", b.months))),
	)
	rows = append(rows, takeHomeRows(sectionRow(rowPPh21TakeHome), takeHome, b.months, "")...)
	return model.TaxResult{TotalTax: total, Breakdown: rows}
}

// nonPermanentEmployee picks daily TER for daily workers, monthly TER up to the
// low-income ceiling, and otherwise Pasal 17 on a 50% deemed base per period.
func nonPermanentEmployee(in model.PPh21Input) model.TaxResult {
	c := rates.Default.PPh21
	months := int64(in.MonthsPaid)

	if in.IsDailyWorker {
		rate := taxmath.LookupThresholdRate(in.BrutoMonthly, rates.Default.TERDaily(in.TERCategory))
		perDay := taxmath.ApplyRate(in.BrutoMonthly, rate, taxmath.Nearest)
		total := taxmath.Mul(perDay, months)
		return model.TaxResult{TotalTax: total, Breakdown: []model.BreakdownRow{
			sectionRow(rowPPh21DailyIncome),
			amountRow(rowPPh21DailyWage, in.BrutoMonthly),
			rateRow(rowPPh21DailyRate, rate),
			amountRow(rowPPh21DailyTax, perDay),
			amountRow(rowPPh21PeriodTotal, total, asTotal),
		}}
	}

	if in.BrutoMonthly <= c.NonPermanentTERCeiling {
		rate := taxmath.LookupThresholdRate(in.BrutoMonthly, rates.Default.TERMonthly(in.TERCategory))
		periodTax := taxmath.ApplyRate(in.BrutoMonthly, rate, taxmath.Nearest)
		total := taxmath.Mul(periodTax, months)
		return model.TaxResult{TotalTax: total, Breakdown: []model.BreakdownRow{
			sectionRow(rowPPh21Income),
			amountRow(rowPPh21GrossMonthly, in.BrutoMonthly),
			rateRow(rowPPh21TERRate, rate),
			amountRow(model.RowTERPerPeriod, periodTax),
			amountRow(rowPPh21PeriodTotal, total, asTotal),
		}}
	}

	dpp := taxmath.ApplyRate(in.BrutoMonthly, c.DeemedProfitRate, taxmath.Nearest)
	periodTax, layers := taxmath.ProgressiveTax(dpp, rates.Default.Brackets())
	total := taxmath.Mul(periodTax, months)
	rows := []model.BreakdownRow{
		sectionRow(rowPPh21Income),
		amountRow(rowPPh21GrossMonthly, in.BrutoMonthly),
		amountRow(rowPPh21DeemedBase, dpp),
	}
	rows = append(rows, tierRows(layers)...)
	rows = append(rows,
		amountRow(rowPPh21TaxPerPeriod, periodTax),
		amountRow(rowPPh21FinalTotal, total, asTotal, withArgs(countArg("months", in.MonthsPaid))),
	)
	return model.TaxResult{TotalTax: total, Breakdown: rows}
}

func nonEmployee(in model.PPh21Input) model.TaxResult {
	bruto := taxmath.Add(taxmath.Mul(in.BrutoMonthly, int64(in.MonthsPaid)), in.BonusAnnual)
	dpp := taxmath.ApplyRate(bruto, rates.Default.PPh21.DeemedProfitRate, taxmath.Nearest)
	tax, layers := taxmath.ProgressiveTax(dpp, rates.Default.Brackets())
	rows := []model.BreakdownRow{
		sectionRow(rowPPh21Income),
		amountRow(rowPPh21Gross, bruto),
		amountRow(rowPPh21DeemedBase, dpp),
	}
	rows = append(rows, tierRows(layers)...)
	rows = append(rows, amountRow(rowPPh21FinalTax, tax, asTotal))
	return model.TaxResult{TotalTax: tax, Breakdown: rows}
}

func flatPasal17(in model.PPh21Input, heading model.RowID) model.TaxResult {
	bruto := taxmath.Add(taxmath.Mul(in.BrutoMonthly, int64(in.MonthsPaid)), in.BonusAnnual)
	tax, layers := taxmath.ProgressiveTax(bruto, rates.Default.Brackets())
	rows := []model.BreakdownRow{
		sectionRow(heading),
		amountRow(rowPPh21Gross, bruto),
		amountRow(rowPPh21Base, bruto),
	}
	rows = append(rows, tierRows(layers)...)
	rows = append(rows, amountRow(rowPPh21FinalTax, tax, asTotal))
	return model.TaxResult{TotalTax: tax, Breakdown: rows}
}

// PPh26 is PPh21 with the subject forced to a foreign taxpayer.
func PPh26(in model.PPh21Input) model.TaxResult {
	in.SubjectType = model.SubjectForeignTaxpayer
	return PPh21(in)
}

// pph26 withholds a flat treaty rate on gross income. Without an explicit rate
// the statutory default applies.
func pph26(in model.PPh21Input) model.TaxResult {
	salary := taxmath.Mul(in.BrutoMonthly, int64(in.MonthsPaid))
	bruto := taxmath.Add(salary, in.BonusAnnual)
	rate := rates.Default.PPh21.ForeignDefaultRate
	if in.ForeignTaxRate.Valid {
		rate = taxmath.PercentToRate(in.ForeignTaxRate.Decimal)
	}
	tax := taxmath.ApplyRate(bruto, rate, taxmath.Nearest)

	return model.TaxResult{TotalTax: tax, Breakdown: []model.BreakdownRow{
		groupRow(rowPPh26Gross),
		amountRow(rowPPh26Salary, salary, withNote(notePeriods), withArgs(countArg("months", in.MonthsPaid))),
		amountRow(rowPPh26Allowance, in.BonusAnnual, withNote(notePPh26Additional)),
		amountRow(rowPPh26Total, bruto, asSubtotal),
		spacerRow(),
		groupRow(rowPPh26RateGroup),
		rateRow(rowPPh26Rate, rate, withNote(notePPh26Treaty)),
		spacerRow(),
		groupRow(rowPPh26TaxGroup),
		amountRow(rowPPh26Tax, tax, asTotal, withNote(notePPh26WithholdTag)),
	}}
}

// tierRows renders one row per consumed Pasal 17 layer.
func tierRows(layers []taxmath.Layer) []model.BreakdownRow {
	return lo.Map(layers, func(l taxmath.Layer, _ int) model.BreakdownRow {
		return amountRow(rowPPh21Tier, l.Tax,
			withNote(noteTierLayer),
			withArgs(
				countArg("tier", l.Index+1),
				rateArg("rate", l.Rate),
				amountArg("taxable", l.Taxable),
				amountArg("lower", l.Lower),
				amountArg("upper", l.Upper),
			))
	})
}

func takeHomeRows(heading model.BreakdownRow, annual model.Amount, months int, annualNote model.NoteID) []model.BreakdownRow {
	return []model.BreakdownRow{
		heading,
		amountRow(model.RowTakeHomeAnnual, annual, withNote(annualNote)),
		amountRow(model.RowTakeHomePeriod, taxmath.DivRound(annual, int64(months)),
			withNote(notePeriods), withArgs(countArg("months", months))),
	}
}
