package receipt

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ierr "pajak-engine/internal/errors"
	"pajak-engine/internal/jsonpatch"
	"pajak-engine/internal/model"
)

func newTestStore() *Store {
	base := time.Date(2025, 1, 31, 8, 0, 0, 0, time.UTC)
	tick, ids := 0, 0
	return NewStore("id", "v1",
		WithClock(func() time.Time {
			tick++
			return base.Add(time.Duration(tick) * time.Minute)
		}),
		WithIDGenerator(func() string {
			ids++
			return fmt.Sprintf("rcpt-%d", ids)
		}),
	)
}

func amount(v model.Amount) *model.Amount { return &v }

func draft(title string, tax model.TaxType, total model.Amount) model.Receipt {
	return model.Receipt{
		Type:    tax,
		Title:   title,
		Source:  model.SourceManual,
		Summary: model.Summary{TotalTax: total},
		Breakdown: []model.BreakdownRow{
			{ID: "ppn.tax", Kind: model.RowTotal, ValueKind: model.ValueCurrency, Amount: amount(total)},
		},
	}
}

func TestAddFillsDefaults(t *testing.T) {
	s := newTestStore()

	r, err := s.Add(draft("Invoice 1", model.TaxPPN, 1_100_000))
	require.NoError(t, err)

	assert.Equal(t, "rcpt-1", r.ID)
	assert.Equal(t, "id", r.Locale)
	assert.Equal(t, time.Date(2025, 1, 31, 8, 1, 0, 0, time.UTC), r.CreatedAt)

	got, err := s.Get("rcpt-1")
	require.NoError(t, err)
	assert.Equal(t, r, got)
	assert.Equal(t, 1, s.Len())
}

func TestAddKeepsGivenValues(t *testing.T) {
	s := newTestStore()
	d := draft("Invoice", model.TaxPPN, 1)
	d.ID = "mine"
	d.Locale = "en"
	d.CreatedAt = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	r, err := s.Add(d)
	require.NoError(t, err)
	assert.Equal(t, "mine", r.ID)
	assert.Equal(t, "en", r.Locale)
	assert.Equal(t, d.CreatedAt, r.CreatedAt)
}

func TestAddReplacesSameID(t *testing.T) {
	s := newTestStore()
	first := draft("Old", model.TaxPPN, 1)
	first.ID = "x"
	_, err := s.Add(first)
	require.NoError(t, err)

	second := draft("New", model.TaxPPN, 2)
	second.ID = "x"
	_, err = s.Add(second)
	require.NoError(t, err)

	all := s.List()
	require.Len(t, all, 1)
	assert.Equal(t, "New", all[0].Title)
}

func TestAddValidation(t *testing.T) {
	s := newTestStore()

	tests := []struct {
		name   string
		mutate func(*model.Receipt)
	}{
		{"missing title", func(r *model.Receipt) { r.Title = "" }},
		{"unknown type", func(r *model.Receipt) { r.Type = "pph99" }},
		{"unknown source", func(r *model.Receipt) { r.Source = "fax" }},
		{"unknown locale", func(r *model.Receipt) { r.Locale = "fr" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := draft("Invoice", model.TaxPPN, 1)
			tt.mutate(&d)
			_, err := s.Add(d)
			require.Error(t, err)
			assert.True(t, ierr.IsValidation(err))
		})
	}
	assert.Zero(t, s.Len())
}

func TestListOrderAndRemove(t *testing.T) {
	s := newTestStore()
	for _, title := range []string{"a", "b", "c"} {
		_, err := s.Add(draft(title, model.TaxPPN, 1))
		require.NoError(t, err)
	}

	titles := func() []string {
		var out []string
		for _, r := range s.List() {
			out = append(out, r.Title)
		}
		return out
	}
	assert.Equal(t, []string{"a", "b", "c"}, titles())

	require.NoError(t, s.Remove("rcpt-2"))
	assert.Equal(t, []string{"a", "c"}, titles())

	err := s.Remove("rcpt-2")
	assert.True(t, ierr.IsNotFound(err))
	_, err = s.Get("rcpt-2")
	assert.True(t, ierr.IsNotFound(err))
}

func TestBatches(t *testing.T) {
	s := newTestStore()
	a, err := s.Add(draft("a", model.TaxPPh21, 1))
	require.NoError(t, err)
	b, err := s.Add(draft("b", model.TaxPPh21, 2))
	require.NoError(t, err)
	c, err := s.Add(draft("c", model.TaxPPh26, 3))
	require.NoError(t, err)

	same, err := s.AddBatch(model.Batch{Label: "January", RecordIDs: []string{a.ID, b.ID}})
	require.NoError(t, err)
	assert.Equal(t, "pph21", same.Type)
	assert.Equal(t, "v1", same.TemplateVersion)
	assert.NotEmpty(t, same.ID)

	mixed, err := s.AddBatch(model.Batch{Label: "All", RecordIDs: []string{c.ID, a.ID}})
	require.NoError(t, err)
	assert.Equal(t, model.BatchTypeMixed, mixed.Type)

	got, members, err := s.BatchReceipts(mixed.ID)
	require.NoError(t, err)
	assert.Equal(t, mixed, got)
	require.Len(t, members, 2)
	assert.Equal(t, "c", members[0].Title)

	_, err = s.AddBatch(model.Batch{Label: "Broken", RecordIDs: []string{"nope"}})
	assert.True(t, ierr.IsNotFound(err))

	_, err = s.AddBatch(model.Batch{Label: "Empty"})
	assert.True(t, ierr.IsValidation(err))

	_, err = s.GetBatch("nope")
	assert.True(t, ierr.IsNotFound(err))
}

func TestDiff(t *testing.T) {
	s := newTestStore()
	a, err := s.Add(draft("a", model.TaxPPN, 1_100_000))
	require.NoError(t, err)
	b, err := s.Add(draft("b", model.TaxPPN, 1_200_000))
	require.NoError(t, err)

	diff, err := s.Diff(a.ID, b.ID)
	require.NoError(t, err)

	paths := func(ops []jsonpatch.Operation) []string {
		var out []string
		for _, op := range ops {
			out = append(out, op.Path)
		}
		return out
	}
	assert.Equal(t, []string{"/breakdown/0/amount", "/summary/total_tax"}, paths(diff.Forward))
	assert.Equal(t, paths(diff.Forward), paths(diff.Reverse))

	same, err := s.Diff(a.ID, a.ID)
	require.NoError(t, err)
	assert.Empty(t, same.Forward)
	assert.NotNil(t, same.Forward)

	_, err = s.Diff(a.ID, "missing")
	assert.True(t, ierr.IsNotFound(err))
}

func TestFromCalculation(t *testing.T) {
	total := model.Amount(24_000_000)
	pc := model.ProcessedCalculation{
		ReceiptType: model.TaxPPh26,
		Result:      &model.TaxResult{TotalTax: total, Breakdown: []model.BreakdownRow{{ID: "pph26.tax"}}},
		Summary:     &model.Summary{TotalTax: total},
	}
	req := model.ReceiptRequest{
		Title:   "Consultant",
		TaxType: model.TaxPPh21,
		Input:   []byte(`{"subject_type":"wpln","bruto_monthly":10000000,"months_paid":12}`),
	}

	r := FromCalculation(req, pc)

	assert.Equal(t, model.TaxPPh26, r.Type)
	assert.Equal(t, "wpln", r.SubjectType)
	assert.Equal(t, model.SourceManual, r.Source)
	assert.Equal(t, total, r.Summary.TotalTax)
	assert.Len(t, r.Breakdown, 1)
	assert.Equal(t, "wpln", r.FormSnapshot["subject_type"])
	assert.Contains(t, r.FormSnapshot, "bruto_monthly")

	req.Input = []byte(`[1,2]`)
	assert.Empty(t, FromCalculation(req, pc).FormSnapshot)
}
