package model

import (
	"encoding/json"
	"time"

	"pajak-engine/internal/jsonpatch"
)

type ReceiptSource string

const (
	SourceManual ReceiptSource = "manual"
	SourceBulk   ReceiptSource = "bulk"
)

// BatchTypeMixed marks a batch whose receipts have different tax types.
const BatchTypeMixed = "mixed"

// Receipt is a stored calculation: the inputs it was computed from and the
// resulting breakdown.
type Receipt struct {
	ID           string         `json:"id"`
	Type         TaxType        `json:"type" validate:"required,oneof=pph21 pph26 pph22 pph23 pph4_2 ppn ppnbm"`
	SubjectType  string         `json:"subject_type,omitempty"`
	Title        string         `json:"title" validate:"required,max=200"`
	Identifier   string         `json:"identifier,omitempty"`
	GroupID      string         `json:"group_id,omitempty"`
	GroupName    string         `json:"group_name,omitempty"`
	BatchID      string         `json:"batch_id,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	Source       ReceiptSource  `json:"source" validate:"required,oneof=manual bulk"`
	Locale       string         `json:"locale" validate:"omitempty,oneof=id en"`
	FormSnapshot map[string]any `json:"form_snapshot"`
	Summary      Summary        `json:"summary"`
	Breakdown    []BreakdownRow `json:"breakdown"`
}

type Batch struct {
	ID              string    `json:"id"`
	Label           string    `json:"label" validate:"required,max=200"`
	Type            string    `json:"type"`
	CreatedAt       time.Time `json:"created_at"`
	RecordIDs       []string  `json:"record_ids" validate:"required,min=1,dive,required"`
	FileName        string    `json:"file_name,omitempty"`
	TemplateVersion string    `json:"template_version"`
}

// ReceiptRequest asks the service to calculate and store one receipt.
type ReceiptRequest struct {
	ID         string          `json:"id,omitempty"`
	Title      string          `json:"title" validate:"required,max=200"`
	Identifier string          `json:"identifier,omitempty"`
	GroupID    string          `json:"group_id,omitempty"`
	GroupName  string          `json:"group_name,omitempty"`
	BatchID    string          `json:"batch_id,omitempty"`
	Source     ReceiptSource   `json:"source" validate:"omitempty,oneof=manual bulk"`
	Locale     string          `json:"locale" validate:"omitempty,oneof=id en"`
	TaxType    TaxType         `json:"tax_type" validate:"required"`
	Input      json.RawMessage `json:"input" validate:"required"`
}

// ReceiptDiff holds the patches between two receipts' summary and breakdown.
type ReceiptDiff struct {
	From    string                `json:"from"`
	To      string                `json:"to"`
	Forward []jsonpatch.Operation `json:"forward"`
	Reverse []jsonpatch.Operation `json:"reverse"`
}
