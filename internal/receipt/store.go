// Package receipt keeps calculated receipts and the batches that group them.
package receipt

import (
	"sort"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"github.com/samber/lo"

	ierr "pajak-engine/internal/errors"
	"pajak-engine/internal/jsonpatch"
	"pajak-engine/internal/model"
)

type Store struct {
	receipts *gocache.Cache
	batches  *gocache.Cache
	validate *validator.Validate

	mu  sync.Mutex
	seq uint64

	now             func() time.Time
	newID           func() string
	defaultLocale   string
	templateVersion string
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// stored pairs a record with its insertion sequence, which breaks created-at
// ties in List.
type stored[T any] struct {
	record T
	seq    uint64
}

func NewStore(defaultLocale, templateVersion string, opts ...Option) *Store {
	s := &Store{
		receipts:        gocache.New(gocache.NoExpiration, 0),
		batches:         gocache.New(gocache.NoExpiration, 0),
		validate:        validator.New(),
		now:             func() time.Time { return time.Now().UTC() },
		newID:           func() string { return uuid.New().String() },
		defaultLocale:   lo.Ternary(defaultLocale == "", "id", defaultLocale),
		templateVersion: lo.Ternary(templateVersion == "", "v1", templateVersion),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Add stores a receipt, filling id, creation time and locale when absent. A
// receipt with an existing id replaces the old one.
func (s *Store) Add(draft model.Receipt) (model.Receipt, error) {
	if err := s.validate.Struct(draft); err != nil {
		return model.Receipt{}, ierr.Wrap(err, ierr.ErrValidation, "receipt.Add", err.Error())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r := draft
	if r.ID == "" {
		r.ID = s.newID()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = s.now()
	}
	if r.Locale == "" {
		r.Locale = s.defaultLocale
	}
	if r.Breakdown == nil {
		r.Breakdown = []model.BreakdownRow{}
	}

	s.seq++
	s.receipts.Set(r.ID, stored[model.Receipt]{record: r, seq: s.seq}, gocache.NoExpiration)
	return r, nil
}

func (s *Store) Get(id string) (model.Receipt, error) {
	v, ok := s.receipts.Get(id)
	if !ok {
		return model.Receipt{}, ierr.Newf(ierr.ErrNotFound, "receipt.Get", "receipt %s not found", id)
	}
	return v.(stored[model.Receipt]).record, nil
}

// List returns every receipt in creation order.
func (s *Store) List() []model.Receipt {
	items := s.receipts.Items()
	entries := make([]stored[model.Receipt], 0, len(items))
	for _, item := range items {
		entries = append(entries, item.Object.(stored[model.Receipt]))
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.record.CreatedAt.Equal(b.record.CreatedAt) {
			return a.record.CreatedAt.Before(b.record.CreatedAt)
		}
		return a.seq < b.seq
	})
	return lo.Map(entries, func(e stored[model.Receipt], _ int) model.Receipt {
		return e.record
	})
}

func (s *Store) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.receipts.Get(id); !ok {
		return ierr.Newf(ierr.ErrNotFound, "receipt.Remove", "receipt %s not found", id)
	}
	s.receipts.Delete(id)
	return nil
}

func (s *Store) Len() int {
	return s.receipts.ItemCount()
}

// AddBatch stores a batch over existing receipts. The batch type is derived
// from its receipts when not given.
func (s *Store) AddBatch(draft model.Batch) (model.Batch, error) {
	if err := s.validate.Struct(draft); err != nil {
		return model.Batch{}, ierr.Wrap(err, ierr.ErrValidation, "receipt.AddBatch", err.Error())
	}

	members, err := s.receiptsByID(draft.RecordIDs)
	if err != nil {
		return model.Batch{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	b := draft
	if b.ID == "" {
		b.ID = s.newID()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = s.now()
	}
	if b.TemplateVersion == "" {
		b.TemplateVersion = s.templateVersion
	}
	if b.Type == "" {
		b.Type = batchType(members)
	}

	s.seq++
	s.batches.Set(b.ID, stored[model.Batch]{record: b, seq: s.seq}, gocache.NoExpiration)
	return b, nil
}

func (s *Store) GetBatch(id string) (model.Batch, error) {
	v, ok := s.batches.Get(id)
	if !ok {
		return model.Batch{}, ierr.Newf(ierr.ErrNotFound, "receipt.GetBatch", "batch %s not found", id)
	}
	return v.(stored[model.Batch]).record, nil
}

// BatchReceipts returns a batch and its receipts in record order.
func (s *Store) BatchReceipts(id string) (model.Batch, []model.Receipt, error) {
	b, err := s.GetBatch(id)
	if err != nil {
		return model.Batch{}, nil, err
	}
	members, err := s.receiptsByID(b.RecordIDs)
	if err != nil {
		return model.Batch{}, nil, err
	}
	return b, members, nil
}

// Diff patches receipt a's summary and breakdown into receipt b's.
func (s *Store) Diff(a, b string) (model.ReceiptDiff, error) {
	from, err := s.Get(a)
	if err != nil {
		return model.ReceiptDiff{}, err
	}
	to, err := s.Get(b)
	if err != nil {
		return model.ReceiptDiff{}, err
	}

	fwd, bwd, err := jsonpatch.DiffDocuments(diffViewOf(from), diffViewOf(to))
	if err != nil {
		return model.ReceiptDiff{}, ierr.Wrap(err, ierr.ErrSystem, "receipt.Diff", "could not compare receipts")
	}
	return model.ReceiptDiff{
		From:    a,
		To:      b,
		Forward: lo.Ternary(fwd == nil, []jsonpatch.Operation{}, fwd),
		Reverse: lo.Ternary(bwd == nil, []jsonpatch.Operation{}, bwd),
	}, nil
}

type diffView struct {
	Summary   model.Summary        `json:"summary"`
	Breakdown []model.BreakdownRow `json:"breakdown"`
}

func diffViewOf(r model.Receipt) diffView {
	return diffView{Summary: r.Summary, Breakdown: r.Breakdown}
}

func (s *Store) receiptsByID(ids []string) ([]model.Receipt, error) {
	out := make([]model.Receipt, 0, len(ids))
	for _, id := range ids {
		r, err := s.Get(id)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func batchType(members []model.Receipt) string {
	types := lo.Uniq(lo.Map(members, func(r model.Receipt, _ int) model.TaxType { return r.Type }))
	if len(types) == 1 {
		return string(types[0])
	}
	return model.BatchTypeMixed
}
