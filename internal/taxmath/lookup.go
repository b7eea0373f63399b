package taxmath

import "pajak-engine/internal/model"

// Layer is the share of a taxable amount that fell into one bracket.
type Layer struct {
	Index   int
	Lower   model.Amount
	Upper   model.Amount
	Taxable model.Amount
	Rate    model.Rate
	Tax     model.Amount
}

// ProgressiveTax runs the bracket waterfall over pkp and returns the total tax
// together with every layer that received income. The unbounded final bracket
// absorbs whatever remains.
func ProgressiveTax(pkp model.Amount, brackets []model.Bracket) (model.Amount, []Layer) {
	remaining := NonNegative(pkp)
	var (
		total  model.Amount
		lower  model.Amount
		layers []Layer
	)
	for i, b := range brackets {
		if remaining <= 0 {
			break
		}
		taxable := remaining
		if !b.Unbounded() {
			taxable = min(remaining, b.Width)
		}
		tax := ApplyRate(taxable, b.Rate, Nearest)
		layers = append(layers, Layer{
			Index:   i,
			Lower:   lower,
			Upper:   Add(lower, taxable),
			Taxable: taxable,
			Rate:    b.Rate,
			Tax:     tax,
		})
		total += tax
		remaining -= taxable
		lower += b.Width
	}
	return total, layers
}

// LookupProgressiveTax is ProgressiveTax without the layer detail.
func LookupProgressiveTax(pkp model.Amount, brackets []model.Bracket) model.Amount {
	total, _ := ProgressiveTax(pkp, brackets)
	return total
}

// LookupThresholdRate returns the rate of the first row whose ceiling is at
// least amount. When no row matches, the last row's rate applies.
func LookupThresholdRate(amount model.Amount, table []model.Threshold) model.Rate {
	if len(table) == 0 {
		return 0
	}
	for _, row := range table {
		if row.Open() || amount <= row.Ceiling {
			return row.Rate
		}
	}
	return table[len(table)-1].Rate
}
