package receipt

import (
	json "github.com/goccy/go-json"
	"github.com/samber/lo"

	"pajak-engine/internal/model"
)

// FromCalculation turns a receipt request and its processed calculation into
// a draft ready for Add.
func FromCalculation(req model.ReceiptRequest, pc model.ProcessedCalculation) model.Receipt {
	r := model.Receipt{
		ID:           req.ID,
		Type:         lo.Ternary(pc.ReceiptType == "", req.TaxType, pc.ReceiptType),
		SubjectType:  subjectType(req.Input),
		Title:        req.Title,
		Identifier:   req.Identifier,
		GroupID:      req.GroupID,
		GroupName:    req.GroupName,
		BatchID:      req.BatchID,
		Source:       lo.Ternary(req.Source == "", model.SourceManual, req.Source),
		Locale:       req.Locale,
		FormSnapshot: snapshot(req.Input),
	}
	if pc.Result != nil {
		r.Breakdown = pc.Result.Breakdown
	}
	if pc.Summary != nil {
		r.Summary = *pc.Summary
	}
	return r
}

// snapshot keeps the submitted form as a flat document. Inputs that are not
// JSON objects are dropped.
func snapshot(raw []byte) map[string]any {
	form := map[string]any{}
	if len(raw) == 0 {
		return form
	}
	if err := json.Unmarshal(raw, &form); err != nil {
		return map[string]any{}
	}
	return form
}

func subjectType(raw []byte) string {
	var subject struct {
		SubjectType string `json:"subject_type"`
	}
	if len(raw) == 0 || json.Unmarshal(raw, &subject) != nil {
		return ""
	}
	return subject.SubjectType
}
