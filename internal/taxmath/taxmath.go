// Package taxmath derives every tax amount from a base and a basis-point rate.
//
// Products of rupiah amounts and rates can exceed the exact range of a float64,
// so multiplication and division run on arbitrary-precision decimals and are
// rounded explicitly.
package taxmath

import (
	"math"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"pajak-engine/internal/model"
)

// Rounding selects how a fractional rupiah result is resolved.
type Rounding int

const (
	// Nearest rounds half up.
	Nearest Rounding = iota
	// Floor truncates.
	Floor
)

var scale = decimal.NewFromInt(int64(model.RateScale))

// ApplyRate returns amount × rate / RateScale. Negative amounts and rates count
// as zero.
func ApplyRate(amount model.Amount, rate model.Rate, rounding Rounding) model.Amount {
	amount = NonNegative(amount)
	rate = ClampRate(rate)
	product := decimal.NewFromInt(amount).Mul(decimal.NewFromInt(int64(rate)))
	if rounding == Floor {
		q, _ := product.QuoRem(scale, 0)
		return q.IntPart()
	}
	return product.DivRound(scale, 0).IntPart()
}

// InclusiveBase splits a tax-inclusive total and returns the pre-tax base,
// gross × RateScale / (RateScale + rate), rounded half up.
func InclusiveBase(gross model.Amount, rate model.Rate) model.Amount {
	gross = NonNegative(gross)
	rate = ClampRate(rate)
	num := decimal.NewFromInt(gross).Mul(scale)
	den := scale.Add(decimal.NewFromInt(int64(rate)))
	return num.DivRound(den, 0).IntPart()
}

// DivRound divides n by d rounding half away from zero. A non-positive d yields n.
// Callers only pass non-negative n, where half away from zero and half up agree.
func DivRound(n model.Amount, d int64) model.Amount {
	if d <= 0 {
		return n
	}
	return decimal.NewFromInt(n).DivRound(decimal.NewFromInt(d), 0).IntPart()
}

// RateToDecimal converts a scaled rate to a fraction (1100 -> 0.11).
func RateToDecimal(rate model.Rate) decimal.Decimal {
	return decimal.NewFromInt(int64(rate)).Div(scale)
}

// PercentToRate converts a percentage such as 11.5 to basis points, rounding
// half up and clamping to [0, RateScale].
func PercentToRate(percent decimal.Decimal) model.Rate {
	bps := percent.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	return ClampRate(model.Rate(bps))
}

// RoundDownToThousand floors to a multiple of 1000, never below zero.
func RoundDownToThousand(amount model.Amount) model.Amount {
	if amount <= 0 {
		return 0
	}
	return amount / 1000 * 1000
}

// NonNegative clamps a negative amount to zero.
func NonNegative(amount model.Amount) model.Amount {
	return max(0, amount)
}

// ClampRate bounds a rate to [0, RateScale].
func ClampRate(rate model.Rate) model.Rate {
	return lo.Clamp(rate, 0, model.RateScale)
}

// Add sums amounts, saturating at the int64 bounds instead of wrapping.
func Add(amounts ...model.Amount) model.Amount {
	var sum model.Amount
	for _, a := range amounts {
		switch {
		case a > 0 && sum > math.MaxInt64-a:
			sum = math.MaxInt64
		case a < 0 && sum < math.MinInt64-a:
			sum = math.MinInt64
		default:
			sum += a
		}
	}
	return sum
}

// Mul returns amount × n, saturating at the int64 bounds instead of wrapping.
func Mul(amount model.Amount, n int64) model.Amount {
	if amount == 0 || n == 0 {
		return 0
	}
	p := amount * n
	if p/n == amount && !(amount == -1 && n == math.MinInt64) && !(n == -1 && amount == math.MinInt64) {
		return p
	}
	if (amount < 0) != (n < 0) {
		return math.MinInt64
	}
	return math.MaxInt64
}

// Prorate returns amount × num / den rounded half up, computed without an
// intermediate overflow. A non-positive den yields amount.
func Prorate(amount model.Amount, num, den int64) model.Amount {
	if den <= 0 {
		return amount
	}
	q := decimal.NewFromInt(amount).Mul(decimal.NewFromInt(num)).DivRound(decimal.NewFromInt(den), 0)
	switch {
	case q.GreaterThan(decimal.NewFromInt(math.MaxInt64)):
		return math.MaxInt64
	case q.LessThan(decimal.NewFromInt(math.MinInt64)):
		return math.MinInt64
	}
	return q.IntPart()
}
