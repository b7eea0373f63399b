package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sourcegraph/conc/iter"

	"pajak-engine/internal/calculator"
	"pajak-engine/internal/logger"
	"pajak-engine/internal/metrics"
	"pajak-engine/internal/model"
)

// TreatyResolver supplies PPh 26 treaty rates by country code. Countries it
// could not resolve are returned in fallbacks with the default rate.
type TreatyResolver interface {
	Rates(ctx context.Context, countries []string) (rates map[string]model.Rate, fallbacks []string)
}

type Engine struct {
	treaties TreatyResolver
	metrics  *metrics.Metrics
	log      *logger.Logger
}

// New builds an engine. Any collaborator may be nil.
func New(treaties TreatyResolver, m *metrics.Metrics, log *logger.Logger) *Engine {
	if log == nil {
		log = logger.NewNop()
	}
	return &Engine{treaties: treaties, metrics: m, log: log}
}

// entry is one calculation moving through the pipeline.
type entry struct {
	calc     model.Calculation
	handler  calculator.Calculator
	input    any
	messages []model.CalculationMessage
	failed   bool

	receipt model.TaxType
	result  *model.TaxResult
	summary *model.Summary
}

func (e *Engine) Process(ctx context.Context, req *model.CalculationRequest) *model.CalculationResponse {
	start := time.Now()

	entries := make([]*entry, len(req.Calculations))
	for i, calc := range req.Calculations {
		entries[i] = e.decode(calc)
	}

	e.resolveTreaties(ctx, entries)

	iter.ForEach(entries, func(en **entry) {
		e.calculate(*en)
	})

	var allMessages []model.CalculationMessage
	processed := make([]model.ProcessedCalculation, 0, len(entries))
	outcome := model.OutcomeSuccess
	for _, en := range entries {
		var msgIndexes []int
		for _, m := range en.messages {
			m.ID = len(allMessages)
			allMessages = append(allMessages, m)
			msgIndexes = append(msgIndexes, m.ID)
		}
		if en.failed {
			outcome = model.OutcomeFailure
		}
		processed = append(processed, model.ProcessedCalculation{
			Calculation:               en.calc,
			ReceiptType:               en.receipt,
			Result:                    en.result,
			Summary:                   en.summary,
			CalculationMessageIndexes: msgIndexes,
		})
	}

	elapsed := time.Since(start)
	now := time.Now().UTC()

	if allMessages == nil {
		allMessages = []model.CalculationMessage{}
	}

	resp := &model.CalculationResponse{
		CalculationMetadata: model.CalculationMetadata{
			CalculationID:          uuid.New().String(),
			TenantID:               req.TenantID,
			CalculationStartedAt:   now.Add(-elapsed).Format(time.RFC3339),
			CalculationCompletedAt: now.Format(time.RFC3339),
			CalculationDurationMs:  elapsed.Milliseconds(),
			CalculationOutcome:     outcome,
		},
		CalculationResult: model.CalculationResult{
			Messages:     allMessages,
			Calculations: processed,
		},
	}

	e.log.Debugw("calculation batch processed",
		"calculation_id", resp.CalculationMetadata.CalculationID,
		"tenant_id", req.TenantID,
		"entries", len(entries),
		"outcome", outcome,
		"duration_ms", elapsed.Milliseconds(),
	)
	return resp
}

func (e *Engine) decode(calc model.Calculation) *entry {
	en := &entry{calc: calc}
	handler, ok := calculator.Get(calc.TaxType)
	if !ok {
		en.fail(model.CodeUnknownTaxType, fmt.Sprintf("Unknown tax type: %s", calc.TaxType))
		return en
	}
	input, err := handler.Decode(calc.Input)
	if err != nil {
		en.fail(model.CodeInvalidInput, fmt.Sprintf("Invalid input for %s: %v", calc.TaxType, err))
		return en
	}
	en.handler = handler
	en.input = input
	return en
}

// resolveTreaties fills the foreign rate of PPh 26 inputs that name a treaty
// country but carry no explicit rate. One registry round-trip serves the batch.
func (e *Engine) resolveTreaties(ctx context.Context, entries []*entry) {
	if e.treaties == nil {
		return
	}

	pending := make(map[*entry]string)
	var countries []string
	for _, en := range entries {
		in, ok := en.input.(*model.PPh21Input)
		if !ok || in.ForeignTaxRate.Valid || in.TreatyCountry == "" {
			continue
		}
		if en.calc.TaxType != model.TaxPPh26 && in.SubjectType != model.SubjectForeignTaxpayer {
			continue
		}
		pending[en] = in.TreatyCountry
		countries = append(countries, in.TreatyCountry)
	}
	if len(countries) == 0 {
		return
	}

	resolved, fallbacks := e.treaties.Rates(ctx, countries)
	fellBack := make(map[string]bool, len(fallbacks))
	for _, c := range fallbacks {
		fellBack[c] = true
	}

	for _, en := range entries {
		country, ok := pending[en]
		if !ok {
			continue
		}
		code := normalizeCountry(country)
		rate, ok := resolved[code]
		if !ok {
			continue
		}
		in := en.input.(*model.PPh21Input)
		in.ForeignTaxRate = decimal.NewNullDecimal(decimal.New(int64(rate), -2))
		if fellBack[code] {
			en.messages = append(en.messages, model.CalculationMessage{
				Level:   model.LevelWarning,
				Code:    model.CodeTreatyRateFailed,
				Message: fmt.Sprintf("No treaty rate for %s, default rate applied", code),
			})
		}
	}
}

func (e *Engine) calculate(en *entry) {
	if en.failed {
		e.metrics.ObserveCalculation(string(en.calc.TaxType), model.OutcomeFailure, 0, 0)
		return
	}

	start := time.Now()
	result := en.handler.Calculate(en.input)
	summary := result.Summarize()
	en.receipt = en.handler.ReceiptType(en.input)
	en.result = &result
	en.summary = &summary

	if len(result.Breakdown) == 0 {
		en.messages = append(en.messages, unrecognisedCategory(en.input))
	}
	e.metrics.ObserveCalculation(string(en.receipt), model.OutcomeSuccess, time.Since(start).Seconds(), int64(result.TotalTax))
}

// unrecognisedCategory explains an empty result: the input named a subject or
// category with no rate.
func unrecognisedCategory(input any) model.CalculationMessage {
	msg := model.CalculationMessage{Level: model.LevelWarning, Code: model.CodeUnknownCategory}
	switch in := input.(type) {
	case *model.PPh21Input:
		msg.Code = model.CodeUnknownSubject
		msg.Message = fmt.Sprintf("Unknown subject type: %s", in.SubjectType)
	case *model.PPh22Input:
		msg.Message = fmt.Sprintf("Unknown transaction type: %s", in.TransactionType)
	case *model.PPh23Input:
		msg.Message = fmt.Sprintf("Unknown service type: %s", in.ServiceType)
	case *model.PPh42Input:
		msg.Message = fmt.Sprintf("Unknown object type: %s", in.ObjectType)
	case *model.PPNBMInput:
		msg.Message = fmt.Sprintf("Unknown goods type: %s", in.GoodsType)
	default:
		msg.Message = "No rate applies to this input"
	}
	return msg
}

func (en *entry) fail(code, message string) {
	en.failed = true
	en.messages = append(en.messages, model.CalculationMessage{
		Level:   model.LevelCritical,
		Code:    code,
		Message: message,
	})
}

func normalizeCountry(country string) string {
	return strings.ToUpper(strings.TrimSpace(country))
}
