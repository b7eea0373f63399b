package engine

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"pajak-engine/internal/model"
)

type stubTreaties struct {
	rates     map[string]model.Rate
	fallbacks []string
	calls     int
	countries []string
}

func (s *stubTreaties) Rates(_ context.Context, countries []string) (map[string]model.Rate, []string) {
	s.calls++
	s.countries = append(s.countries, countries...)
	out := make(map[string]model.Rate)
	for _, c := range countries {
		code := strings.ToUpper(c)
		if r, ok := s.rates[code]; ok {
			out[code] = r
		} else {
			out[code] = 2000
		}
	}
	return out, s.fallbacks
}

func calc(id string, tax model.TaxType, input string) model.Calculation {
	return model.Calculation{CalculationID: id, TaxType: tax, Input: json.RawMessage(input)}
}

func TestProcessMixedBatch(t *testing.T) {
	req := &model.CalculationRequest{
		TenantID: "test-tenant",
		Calculations: []model.Calculation{
			calc("c1", model.TaxPPh21, `{
				"subject_type": "pegawai_tetap",
				"bruto_monthly": 15000000,
				"months_paid": 12,
				"pension_contribution": 200000,
				"ptkp_status": "K/0",
				"scheme": "lama"
			}`),
			calc("c2", model.TaxPPh23, `{"service_type":"dividen","gross_amount":10000000,"is_final":true}`),
			calc("c3", model.TaxPPN, `{"tax_year":"2025","base_price":10000000}`),
		},
	}

	resp := New(nil, nil, nil).Process(context.Background(), req)

	if resp.CalculationMetadata.CalculationOutcome != model.OutcomeSuccess {
		t.Fatalf("expected SUCCESS, got %s", resp.CalculationMetadata.CalculationOutcome)
	}
	if resp.CalculationMetadata.TenantID != "test-tenant" {
		t.Fatalf("expected tenant_id test-tenant, got %s", resp.CalculationMetadata.TenantID)
	}
	if resp.CalculationMetadata.CalculationID == "" {
		t.Fatal("expected a calculation id")
	}
	if len(resp.CalculationResult.Messages) != 0 {
		t.Fatalf("expected 0 messages, got %d", len(resp.CalculationResult.Messages))
	}

	got := resp.CalculationResult.Calculations
	if len(got) != 3 {
		t.Fatalf("expected 3 calculations, got %d", len(got))
	}

	want := []struct {
		id      string
		receipt model.TaxType
		total   model.Amount
	}{
		{"c1", model.TaxPPh21, 10_965_000},
		{"c2", model.TaxPPh23, 1_500_000},
		{"c3", model.TaxPPN, 1_200_000},
	}
	for i, w := range want {
		pc := got[i]
		if pc.Calculation.CalculationID != w.id {
			t.Fatalf("position %d: expected %s, got %s", i, w.id, pc.Calculation.CalculationID)
		}
		if pc.ReceiptType != w.receipt {
			t.Fatalf("%s: expected receipt type %s, got %s", w.id, w.receipt, pc.ReceiptType)
		}
		if pc.Result == nil || pc.Result.TotalTax != w.total {
			t.Fatalf("%s: expected total %d, got %+v", w.id, w.total, pc.Result)
		}
		if pc.Summary == nil || pc.Summary.TotalTax != w.total {
			t.Fatalf("%s: summary total mismatch", w.id)
		}
	}

	if got[0].Summary.TakeHomeAnnual == nil || *got[0].Summary.TakeHomeAnnual != 169_035_000 {
		t.Fatalf("expected take-home 169,035,000 in summary, got %v", got[0].Summary.TakeHomeAnnual)
	}
}

func TestProcessUnknownTaxTypeContinuesBatch(t *testing.T) {
	req := &model.CalculationRequest{
		TenantID: "test-tenant",
		Calculations: []model.Calculation{
			calc("c1", "pph99", `{}`),
			calc("c2", model.TaxPPh22, `{"transaction_type":"impor","transaction_value":500000000}`),
		},
	}

	resp := New(nil, nil, nil).Process(context.Background(), req)

	if resp.CalculationMetadata.CalculationOutcome != model.OutcomeFailure {
		t.Fatalf("expected FAILURE, got %s", resp.CalculationMetadata.CalculationOutcome)
	}
	if len(resp.CalculationResult.Messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(resp.CalculationResult.Messages))
	}
	msg := resp.CalculationResult.Messages[0]
	if msg.Code != model.CodeUnknownTaxType || msg.Level != model.LevelCritical {
		t.Fatalf("expected CRITICAL UNKNOWN_TAX_TYPE, got %s %s", msg.Level, msg.Code)
	}

	first := resp.CalculationResult.Calculations[0]
	if first.Result != nil {
		t.Fatal("failed entry should carry no result")
	}
	if len(first.CalculationMessageIndexes) != 1 || first.CalculationMessageIndexes[0] != 0 {
		t.Fatalf("unexpected message indexes %v", first.CalculationMessageIndexes)
	}

	second := resp.CalculationResult.Calculations[1]
	if second.Result == nil || second.Result.TotalTax != 12_500_000 {
		t.Fatalf("expected PPh 22 of 12,500,000 after a failed entry, got %+v", second.Result)
	}
}

func TestProcessInvalidInput(t *testing.T) {
	req := &model.CalculationRequest{
		Calculations: []model.Calculation{
			calc("c1", model.TaxPPN, `{"base_price":"lots"}`),
		},
	}

	resp := New(nil, nil, nil).Process(context.Background(), req)

	if resp.CalculationMetadata.CalculationOutcome != model.OutcomeFailure {
		t.Fatalf("expected FAILURE, got %s", resp.CalculationMetadata.CalculationOutcome)
	}
	if resp.CalculationResult.Messages[0].Code != model.CodeInvalidInput {
		t.Fatalf("expected INVALID_INPUT, got %s", resp.CalculationResult.Messages[0].Code)
	}
}

func TestProcessUnknownCategoryWarns(t *testing.T) {
	req := &model.CalculationRequest{
		Calculations: []model.Calculation{
			calc("c1", model.TaxPPh21, `{"subject_type":"astronaut","bruto_monthly":1000000}`),
			calc("c2", model.TaxPPh42, `{"object_type":"bitcoin","gross_amount":1000000}`),
		},
	}

	resp := New(nil, nil, nil).Process(context.Background(), req)

	if resp.CalculationMetadata.CalculationOutcome != model.OutcomeSuccess {
		t.Fatalf("warnings must not fail the batch, got %s", resp.CalculationMetadata.CalculationOutcome)
	}
	msgs := resp.CalculationResult.Messages
	if len(msgs) != 2 {
		t.Fatalf("expected 2 warnings, got %d", len(msgs))
	}
	if msgs[0].Code != model.CodeUnknownSubject || msgs[1].Code != model.CodeUnknownCategory {
		t.Fatalf("unexpected codes %s, %s", msgs[0].Code, msgs[1].Code)
	}
	for _, pc := range resp.CalculationResult.Calculations {
		if pc.Result == nil || pc.Result.TotalTax != 0 || pc.Result.Breakdown == nil {
			t.Fatalf("%s: expected an empty zero result", pc.Calculation.CalculationID)
		}
	}
}

func TestProcessResolvesTreatyRates(t *testing.T) {
	treaties := &stubTreaties{rates: map[string]model.Rate{"SG": 1000}, fallbacks: []string{"ZZ"}}
	req := &model.CalculationRequest{
		Calculations: []model.Calculation{
			calc("sg", model.TaxPPh21, `{"subject_type":"wpln","bruto_monthly":10000000,"months_paid":1,"treaty_country":"sg"}`),
			calc("zz", model.TaxPPh26, `{"bruto_monthly":10000000,"months_paid":1,"treaty_country":"ZZ"}`),
			calc("explicit", model.TaxPPh21, `{"subject_type":"wpln","bruto_monthly":10000000,"months_paid":1,"foreign_tax_rate":"0","treaty_country":"SG"}`),
		},
	}

	resp := New(treaties, nil, nil).Process(context.Background(), req)

	if treaties.calls != 1 {
		t.Fatalf("expected one registry round-trip, got %d", treaties.calls)
	}
	if len(treaties.countries) != 2 {
		t.Fatalf("explicit rates must not be looked up, asked for %v", treaties.countries)
	}

	got := resp.CalculationResult.Calculations
	if got[0].Result.TotalTax != 1_000_000 {
		t.Fatalf("expected treaty tax 1,000,000, got %d", got[0].Result.TotalTax)
	}
	if got[0].ReceiptType != model.TaxPPh26 {
		t.Fatalf("expected pph26 receipt, got %s", got[0].ReceiptType)
	}
	if got[1].Result.TotalTax != 2_000_000 {
		t.Fatalf("expected default tax 2,000,000, got %d", got[1].Result.TotalTax)
	}
	if got[2].Result.TotalTax != 0 {
		t.Fatalf("explicit zero rate must win, got %d", got[2].Result.TotalTax)
	}

	msgs := resp.CalculationResult.Messages
	if len(msgs) != 1 || msgs[0].Code != model.CodeTreatyRateFailed {
		t.Fatalf("expected one treaty fallback warning, got %+v", msgs)
	}
	if len(got[1].CalculationMessageIndexes) != 1 {
		t.Fatalf("fallback warning should attach to the ZZ entry")
	}
}
