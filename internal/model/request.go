package model

import "encoding/json"

// TaxType names a calculator.
type TaxType string

const (
	TaxPPh21 TaxType = "pph21"
	TaxPPh26 TaxType = "pph26"
	TaxPPh22 TaxType = "pph22"
	TaxPPh23 TaxType = "pph23"
	TaxPPh42 TaxType = "pph4_2"
	TaxPPN   TaxType = "ppn"
	TaxPPNBM TaxType = "ppnbm"
)

type CalculationRequest struct {
	TenantID     string        `json:"tenant_id"`
	Calculations []Calculation `json:"calculations" validate:"required,min=1,dive"`
}

type Calculation struct {
	CalculationID string          `json:"calculation_id" validate:"required"`
	TaxType       TaxType         `json:"tax_type" validate:"required"`
	Input         json.RawMessage `json:"input"`
}
