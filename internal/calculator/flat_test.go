package calculator

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pajak-engine/internal/model"
	"pajak-engine/internal/taxmath"
)

func TestPPh22(t *testing.T) {
	res := PPh22(model.PPh22Input{TransactionType: model.PPh22Import, TransactionValue: 500_000_000})
	assert.Equal(t, model.Amount(12_500_000), res.TotalTax)
	assert.Equal(t, model.Amount(500_000_000), amountOf(t, res.Breakdown, rowPPh22DPP))
	assert.Equal(t, model.Rate(250), *findRow(t, res.Breakdown, rowPPh22Rate).Rate)

	adjusted := PPh22(model.PPh22Input{
		TransactionType:  model.PPh22StateEnterprise,
		TransactionValue: 100_000_000,
		OtherCosts:       10_000_000,
		Deduction:        20_000_000,
	})
	assert.Equal(t, model.Amount(90_000_000), amountOf(t, adjusted.Breakdown, rowPPh22DPP))
	assert.Equal(t, model.Amount(1_350_000), adjusted.TotalTax)

	clamped := PPh22(model.PPh22Input{TransactionType: model.PPh22Other, TransactionValue: 1_000, Deduction: 5_000})
	assert.Equal(t, model.Amount(0), amountOf(t, clamped.Breakdown, rowPPh22DPP))
	assert.Equal(t, model.Amount(0), clamped.TotalTax)

	unknown := PPh22(model.PPh22Input{TransactionType: "barter", TransactionValue: 1_000_000})
	assert.Equal(t, model.Amount(0), unknown.TotalTax)
	assert.Empty(t, unknown.Breakdown)
}

func TestPPh23(t *testing.T) {
	final := PPh23(model.PPh23Input{ServiceType: model.PPh23Dividend, GrossAmount: 10_000_000, IsFinal: true})
	assert.Equal(t, model.Amount(1_500_000), final.TotalTax)
	assert.Equal(t, notePPh23Final, findRow(t, final.Breakdown, rowPPh23Tax).Note)

	creditable := PPh23(model.PPh23Input{ServiceType: model.PPh23Dividend, GrossAmount: 10_000_000})
	assert.Equal(t, final.TotalTax, creditable.TotalTax)
	assert.Equal(t, notePPh23Creditable, findRow(t, creditable.Breakdown, rowPPh23Tax).Note)

	assert.Equal(t, model.Amount(40_000), PPh23(model.PPh23Input{ServiceType: model.PPh23Consulting, GrossAmount: 1_000_000}).TotalTax)
	assert.Equal(t, model.Amount(0), PPh23(model.PPh23Input{ServiceType: model.PPh23Interest, GrossAmount: -1_000_000}).TotalTax)
	assert.Empty(t, PPh23(model.PPh23Input{ServiceType: "royalti", GrossAmount: 1}).Breakdown)
}

func TestPPh42(t *testing.T) {
	tests := []struct {
		object model.PPh42ObjectType
		gross  model.Amount
		want   model.Amount
	}{
		{model.PPh42LandBuildingRental, 120_000_000, 12_000_000},
		{model.PPh42Construction, 100_000_000, 3_500_000},
		{model.PPh42Restaurant, 8_000_000, 400_000},
		{model.PPh42SmallBusinessFinal, 35_000_000, 175_000},
		{model.PPh42SmallBusinessFinal, 333, 2},
	}
	for _, tt := range tests {
		t.Run(string(tt.object), func(t *testing.T) {
			res := PPh42(model.PPh42Input{ObjectType: tt.object, GrossAmount: tt.gross})
			assert.Equal(t, tt.want, res.TotalTax)
			require.Len(t, res.Breakdown, 4)
			assert.Equal(t, model.RowTotal, res.Breakdown[3].Kind)
		})
	}
}

func TestPPNExclusive(t *testing.T) {
	res := PPN(model.PPNInput{TaxYear: "2024", BasePrice: 110_000_000})
	assert.Equal(t, model.Amount(12_100_000), res.TotalTax)
	assert.Equal(t, model.Amount(110_000_000), amountOf(t, res.Breakdown, rowPPNDPP))
	assert.Equal(t, model.Amount(122_100_000), amountOf(t, res.Breakdown, rowPPNTotal))
	assert.Equal(t, notePPNExclusive, findRow(t, res.Breakdown, rowPPNDPP).Note)

	discounted := PPN(model.PPNInput{TaxYear: "2025", BasePrice: 100_000_000, Discount: 10_000_000, OtherCosts: 5_000_000})
	assert.Equal(t, model.Amount(95_000_000), amountOf(t, discounted.Breakdown, rowPPNDPP))
	assert.Equal(t, model.Amount(11_400_000), discounted.TotalTax)
}

func TestPPNInclusive(t *testing.T) {
	res := PPN(model.PPNInput{TaxYear: "2024", BasePrice: 111_000_000, IncludePPN: true})
	assert.Equal(t, model.Amount(100_000_000), amountOf(t, res.Breakdown, rowPPNDPP))
	assert.Equal(t, model.Amount(11_000_000), res.TotalTax)
	assert.Equal(t, model.Amount(111_000_000), amountOf(t, res.Breakdown, rowPPNTotal))
	assert.Equal(t, notePPNInclusive, findRow(t, res.Breakdown, rowPPNDPP).Note)
}

func TestPPNRoundTrip(t *testing.T) {
	for _, year := range []string{"2024", "2025"} {
		for _, d := range []model.Amount{1, 7, 100, 99_999, 123_456_789, 9_876_543_210_123} {
			exclusive := PPN(model.PPNInput{TaxYear: year, BasePrice: d})
			rate := PPNRate(model.PPNInput{TaxYear: year})
			g := d + taxmath.ApplyRate(d, rate, taxmath.Nearest)
			assert.Equal(t, g, amountOf(t, exclusive.Breakdown, rowPPNTotal))

			inclusive := PPN(model.PPNInput{TaxYear: year, BasePrice: g, IncludePPN: true})
			got := amountOf(t, inclusive.Breakdown, rowPPNDPP)
			assert.InDelta(t, float64(d), float64(got), 1, "year %s base %d", year, d)
			assert.InDelta(t, float64(exclusive.TotalTax), float64(inclusive.TotalTax), 1)
		}
	}
}

func TestPPNRateSelection(t *testing.T) {
	assert.Equal(t, model.Rate(1100), PPNRate(model.PPNInput{TaxYear: "2023"}))
	assert.Equal(t, model.Rate(1200), PPNRate(model.PPNInput{TaxYear: "2025"}))
	assert.Equal(t, model.Rate(1100), PPNRate(model.PPNInput{TaxYear: "2031"}))
	assert.Equal(t, model.Rate(1150), PPNRate(model.PPNInput{TaxYear: "2025", CustomRate: decimal.NewNullDecimal(decimal.RequireFromString("11.5"))}))
	assert.Equal(t, model.Rate(1200), PPNRate(model.PPNInput{TaxYear: "2025", CustomRate: decimal.NewNullDecimal(decimal.Zero)}))
	assert.Equal(t, model.Rate(1200), PPNRate(model.PPNInput{TaxYear: "2025", CustomRate: decimal.NewNullDecimal(decimal.NewFromInt(-5))}))
}

func TestPPNBM(t *testing.T) {
	assert.Equal(t, model.Amount(20_000_000), PPNBM(model.PPNBMInput{GoodsType: model.PPNBMLuxuryVehicle, DPPPPN: 100_000_000}).TotalTax)
	assert.Equal(t, model.Amount(75_000_000), PPNBM(model.PPNBMInput{GoodsType: model.PPNBMPleasureCraft, DPPPPN: 100_000_000}).TotalTax)

	custom := PPNBM(model.PPNBMInput{GoodsType: model.PPNBMJewelry, DPPPPN: 100_000_000, CustomRate: decimal.NewNullDecimal(decimal.NewFromInt(40))})
	assert.Equal(t, model.Amount(40_000_000), custom.TotalTax)
	assert.Equal(t, model.Rate(4000), *findRow(t, custom.Breakdown, rowPPNBMRate).Rate)

	unknown := PPNBM(model.PPNBMInput{GoodsType: "yacht-club", DPPPPN: 100_000_000})
	assert.Equal(t, model.Amount(0), unknown.TotalTax)
	assert.Empty(t, unknown.Breakdown)

	unknownWithRate := PPNBM(model.PPNBMInput{GoodsType: "yacht-club", DPPPPN: 100_000_000, CustomRate: decimal.NewNullDecimal(decimal.NewFromInt(10))})
	assert.Equal(t, model.Amount(10_000_000), unknownWithRate.TotalTax)
}

func TestRegistry(t *testing.T) {
	c, ok := Get(model.TaxPPh23)
	require.True(t, ok)
	in, err := c.Decode([]byte(`{"service_type":"dividen","gross_amount":10000000,"is_final":true}`))
	require.NoError(t, err)
	assert.Equal(t, model.Amount(1_500_000), c.Calculate(in).TotalTax)
	assert.Equal(t, model.TaxPPh23, c.ReceiptType(in))

	c, ok = Get(model.TaxPPh21)
	require.True(t, ok)
	in, err = c.Decode([]byte(`{"subject_type":"wpln","bruto_monthly":1000000,"months_paid":1,"foreign_tax_rate":"15"}`))
	require.NoError(t, err)
	assert.Equal(t, model.Amount(150_000), c.Calculate(in).TotalTax)
	assert.Equal(t, model.TaxPPh26, c.ReceiptType(in))

	c, ok = Get(model.TaxPPh26)
	require.True(t, ok)
	in, err = c.Decode([]byte(`{"subject_type":"pegawai_tetap","bruto_monthly":1000000,"months_paid":1}`))
	require.NoError(t, err)
	assert.Equal(t, model.Amount(200_000), c.Calculate(in).TotalTax)
	assert.Equal(t, model.TaxPPh26, c.ReceiptType(in))

	c, _ = Get(model.TaxPPN)
	in, err = c.Decode(nil)
	require.NoError(t, err)
	assert.Equal(t, model.Amount(0), c.Calculate(in).TotalTax)

	_, err = c.Decode([]byte(`{"base_price":"lots"}`))
	assert.Error(t, err)

	assert.Empty(t, c.Calculate("not an input").Breakdown)

	_, ok = Get("pph99")
	assert.False(t, ok)
}

func TestHugeTransactionSaturates(t *testing.T) {
	imported := PPh22(model.PPh22Input{TransactionType: model.PPh22Import, TransactionValue: 9e18, OtherCosts: 9e18})
	assert.Equal(t, model.Amount(math.MaxInt64), amountOf(t, imported.Breakdown, rowPPh22DPP))
	assert.Positive(t, imported.TotalTax)

	vat := PPN(model.PPNInput{TaxYear: "2024", BasePrice: 9e18, OtherCosts: 9e18})
	assert.Equal(t, model.Amount(math.MaxInt64), amountOf(t, vat.Breakdown, rowPPNDPP))
	assert.Equal(t, model.Amount(math.MaxInt64), amountOf(t, vat.Breakdown, rowPPNTotal))
	assert.Positive(t, vat.TotalTax)
}
