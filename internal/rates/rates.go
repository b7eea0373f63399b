// Package rates holds the statutory tables: PTKP allowances, the Pasal 17
// schedule, TER withholding tables and the flat rates of every tax type.
// Tables are read-only after init and safe for concurrent use.
package rates

import (
	_ "embed"

	"gopkg.in/yaml.v3"

	ierr "pajak-engine/internal/errors"
	"pajak-engine/internal/model"
)

//go:embed rates.yaml
var defaultDocument []byte

type Table struct {
	Version    int `yaml:"version"`
	Allowances struct {
		Default string                  `yaml:"default"`
		Table   map[string]model.Amount `yaml:"table"`
	} `yaml:"ptkp"`
	Pasal17 []model.Bracket `yaml:"pasal17"`
	TER     struct {
		DefaultCategory model.TERCategory                       `yaml:"default_category"`
		Monthly         map[model.TERCategory][]model.Threshold `yaml:"monthly"`
		Daily           map[model.TERCategory][]model.Threshold `yaml:"daily"`
	} `yaml:"ter"`
	PPh21 PPh21Constants                            `yaml:"pph21"`
	PPh22 map[model.PPh22TransactionType]model.Rate `yaml:"pph22"`
	PPh23 map[model.PPh23ServiceType]model.Rate     `yaml:"pph23"`
	PPh42 map[model.PPh42ObjectType]model.Rate      `yaml:"pph4_2"`
	PPN   struct {
		BaselineYear string                `yaml:"baseline_year"`
		ByYear       map[string]model.Rate `yaml:"by_year"`
	} `yaml:"ppn"`
	PPNBM map[model.PPNBMGoodsType]model.Rate `yaml:"ppnbm"`
}

// PPh21Constants are the statutory figures used by the PPh 21/26 calculator.
type PPh21Constants struct {
	PositionCostRate       model.Rate   `yaml:"position_cost_rate"`
	PositionCostCap        model.Amount `yaml:"position_cost_cap"`
	PensionCostRate        model.Rate   `yaml:"pension_cost_rate"`
	PensionCostCap         model.Amount `yaml:"pension_cost_cap"`
	DeemedProfitRate       model.Rate   `yaml:"deemed_profit_rate"`
	NonPermanentTERCeiling model.Amount `yaml:"non_permanent_ter_ceiling"`
	ForeignDefaultRate     model.Rate   `yaml:"foreign_default_rate"`
}

// Default is the table set shipped with the binary.
var Default = MustLoad(defaultDocument)

// Parse decodes and validates a rate document.
func Parse(b []byte) (*Table, error) {
	var t Table
	if err := yaml.Unmarshal(b, &t); err != nil {
		return nil, ierr.Wrap(err, ierr.ErrValidation, "rates.Parse", "malformed rate document")
	}
	if t.Version != 1 {
		return nil, ierr.Newf(ierr.ErrValidation, "rates.Parse", "unsupported version %d", t.Version)
	}
	if err := t.validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// MustLoad is Parse for documents compiled into the binary.
func MustLoad(b []byte) *Table {
	t, err := Parse(b)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Table) validate() error {
	if _, ok := t.Allowances.Table[t.Allowances.Default]; !ok {
		return ierr.Newf(ierr.ErrValidation, "rates.validate", "ptkp default %q not in table", t.Allowances.Default)
	}
	if err := validateBrackets(t.Pasal17); err != nil {
		return ierr.Wrap(err, ierr.ErrValidation, "rates.validate", "pasal17 schedule invalid")
	}
	for name, tables := range map[string]map[model.TERCategory][]model.Threshold{
		"monthly": t.TER.Monthly,
		"daily":   t.TER.Daily,
	} {
		if _, ok := tables[t.TER.DefaultCategory]; !ok {
			return ierr.Newf(ierr.ErrValidation, "rates.validate", "ter %s missing default category %q", name, t.TER.DefaultCategory)
		}
		for cat, rows := range tables {
			if err := validateThresholds(rows); err != nil {
				return ierr.Wrap(err, ierr.ErrValidation, "rates.validate", "ter "+name+" "+string(cat)+" invalid")
			}
		}
	}
	if _, ok := t.PPN.ByYear[t.PPN.BaselineYear]; !ok {
		return ierr.Newf(ierr.ErrValidation, "rates.validate", "ppn baseline year %q not in table", t.PPN.BaselineYear)
	}
	flat := []model.Rate{
		t.PPh21.PositionCostRate, t.PPh21.PensionCostRate,
		t.PPh21.DeemedProfitRate, t.PPh21.ForeignDefaultRate,
	}
	for _, r := range t.PPh22 {
		flat = append(flat, r)
	}
	for _, r := range t.PPh23 {
		flat = append(flat, r)
	}
	for _, r := range t.PPh42 {
		flat = append(flat, r)
	}
	for _, r := range t.PPN.ByYear {
		flat = append(flat, r)
	}
	for _, r := range t.PPNBM {
		flat = append(flat, r)
	}
	for _, r := range flat {
		if err := validateRate(r); err != nil {
			return err
		}
	}
	return nil
}

func validateRate(r model.Rate) error {
	if r < 0 || r > model.RateScale {
		return ierr.Newf(ierr.ErrValidation, "rates.validateRate", "rate %d outside [0, %d]", r, model.RateScale)
	}
	return nil
}

func validateBrackets(layers []model.Bracket) error {
	if len(layers) == 0 {
		return ierr.Newf(ierr.ErrValidation, "rates.validateBrackets", "no layers")
	}
	for i, l := range layers {
		if err := validateRate(l.Rate); err != nil {
			return err
		}
		last := i == len(layers)-1
		if l.Unbounded() != last {
			return ierr.Newf(ierr.ErrValidation, "rates.validateBrackets", "layer %d: only the final layer may be unbounded, and it must be", i)
		}
	}
	return nil
}

func validateThresholds(rows []model.Threshold) error {
	if len(rows) == 0 {
		return ierr.Newf(ierr.ErrValidation, "rates.validateThresholds", "no rows")
	}
	for _, r := range rows {
		if err := validateRate(r.Rate); err != nil {
			return err
		}
	}
	return nil
}
