package model

type CalculationMessage struct {
	ID      int    `json:"id"`
	Level   string `json:"level"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

const (
	LevelCritical = "CRITICAL"
	LevelWarning  = "WARNING"
)

const (
	CodeUnknownTaxType   = "UNKNOWN_TAX_TYPE"
	CodeInvalidInput     = "INVALID_INPUT"
	CodeUnknownSubject   = "UNKNOWN_SUBJECT_TYPE"
	CodeUnknownCategory  = "UNKNOWN_CATEGORY"
	CodeTreatyRateFailed = "TREATY_RATE_FALLBACK"
)
