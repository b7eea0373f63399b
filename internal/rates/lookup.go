package rates

import "pajak-engine/internal/model"

// PTKP returns the annual allowance for a status code. Unknown codes read the
// default status (TK/0).
func (t *Table) PTKP(status string) model.Amount {
	if v, ok := t.Allowances.Table[status]; ok {
		return v
	}
	return t.Allowances.Table[t.Allowances.Default]
}

// Brackets returns the Pasal 17 schedule.
func (t *Table) Brackets() []model.Bracket {
	return t.Pasal17
}

// TERMonthly returns the monthly TER table for a category, falling back to the
// default category.
func (t *Table) TERMonthly(cat model.TERCategory) []model.Threshold {
	return terTable(t.TER.Monthly, cat, t.TER.DefaultCategory)
}

// TERDaily returns the daily TER table for a category, falling back to the
// default category.
func (t *Table) TERDaily(cat model.TERCategory) []model.Threshold {
	return terTable(t.TER.Daily, cat, t.TER.DefaultCategory)
}

func terTable(tables map[model.TERCategory][]model.Threshold, cat, def model.TERCategory) []model.Threshold {
	if rows, ok := tables[cat]; ok {
		return rows
	}
	return tables[def]
}

func (t *Table) PPh22Rate(kind model.PPh22TransactionType) (model.Rate, bool) {
	r, ok := t.PPh22[kind]
	return r, ok
}

func (t *Table) PPh23Rate(kind model.PPh23ServiceType) (model.Rate, bool) {
	r, ok := t.PPh23[kind]
	return r, ok
}

func (t *Table) PPh42Rate(kind model.PPh42ObjectType) (model.Rate, bool) {
	r, ok := t.PPh42[kind]
	return r, ok
}

// PPNRate returns the VAT rate for a tax year, or the baseline year's rate.
func (t *Table) PPNRate(year string) model.Rate {
	if r, ok := t.PPN.ByYear[year]; ok {
		return r
	}
	return t.PPN.ByYear[t.PPN.BaselineYear]
}

func (t *Table) PPNBMRate(kind model.PPNBMGoodsType) (model.Rate, bool) {
	r, ok := t.PPNBM[kind]
	return r, ok
}

// GetPTKP reads the default table.
func GetPTKP(status string) model.Amount {
	return Default.PTKP(status)
}
