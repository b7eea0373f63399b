// Package calculator holds the six tax calculators. Each is a pure function of
// its input and the static rate tables.
package calculator

import (
	json "github.com/goccy/go-json"

	"pajak-engine/internal/model"
)

// Calculator is the registry contract: decode an input document, then compute.
type Calculator interface {
	Decode(raw []byte) (any, error)
	Calculate(input any) model.TaxResult
	ReceiptType(input any) model.TaxType
}

type typed[T any] struct {
	tax     model.TaxType
	fn      func(T) model.TaxResult
	receipt func(T) model.TaxType
}

func (c typed[T]) Decode(raw []byte) (any, error) {
	in := new(T)
	if len(raw) == 0 {
		return in, nil
	}
	if err := json.Unmarshal(raw, in); err != nil {
		return nil, err
	}
	return in, nil
}

func (c typed[T]) Calculate(input any) model.TaxResult {
	in, ok := input.(*T)
	if !ok || in == nil {
		return emptyResult()
	}
	return c.fn(*in)
}

func (c typed[T]) ReceiptType(input any) model.TaxType {
	if in, ok := input.(*T); ok && in != nil && c.receipt != nil {
		return c.receipt(*in)
	}
	return c.tax
}

var registry = map[model.TaxType]Calculator{
	model.TaxPPh21: typed[model.PPh21Input]{tax: model.TaxPPh21, fn: PPh21, receipt: PPh21ReceiptType},
	model.TaxPPh26: typed[model.PPh21Input]{tax: model.TaxPPh26, fn: PPh26},
	model.TaxPPh22: typed[model.PPh22Input]{tax: model.TaxPPh22, fn: PPh22},
	model.TaxPPh23: typed[model.PPh23Input]{tax: model.TaxPPh23, fn: PPh23},
	model.TaxPPh42: typed[model.PPh42Input]{tax: model.TaxPPh42, fn: PPh42},
	model.TaxPPN:   typed[model.PPNInput]{tax: model.TaxPPN, fn: PPN},
	model.TaxPPNBM: typed[model.PPNBMInput]{tax: model.TaxPPNBM, fn: PPNBM},
}

func Get(tax model.TaxType) (Calculator, bool) {
	c, ok := registry[tax]
	return c, ok
}
