package model

type RowKind string

const (
	RowPlain    RowKind = "plain"
	RowSection  RowKind = "section"
	RowGroup    RowKind = "group"
	RowSubtotal RowKind = "subtotal"
	RowTotal    RowKind = "total"
	RowSpacer   RowKind = "spacer"
)

type ValueKind string

const (
	ValueNone     ValueKind = ""
	ValueCurrency ValueKind = "currency"
	ValuePercent  ValueKind = "percent"
	ValueText     ValueKind = "text"
)

// RowID names a breakdown row independently of any display language.
type RowID string

// NoteID names the explanatory note attached to a row.
type NoteID string

// Arg is a typed interpolation argument for a row label or note.
type Arg struct {
	Name  string    `json:"name"`
	Kind  ValueKind `json:"kind"`
	Value int64     `json:"value"`
}

// BreakdownRow is one line of a derivation. Kind drives presentation only.
type BreakdownRow struct {
	ID        RowID     `json:"id"`
	Kind      RowKind   `json:"kind"`
	ValueKind ValueKind `json:"value_kind,omitempty"`
	Amount    *Amount   `json:"amount,omitempty"`
	Rate      *Rate     `json:"rate,omitempty"`
	Text      string    `json:"text,omitempty"`
	Note      NoteID    `json:"note,omitempty"`
	Args      []Arg     `json:"args,omitempty"`
}

// HasValue reports whether the row carries a value cell.
func (r BreakdownRow) HasValue() bool {
	switch r.ValueKind {
	case ValueCurrency:
		return r.Amount != nil
	case ValuePercent:
		return r.Rate != nil
	case ValueText:
		return r.Text != ""
	}
	return false
}

// Arg returns the named argument, if present.
func (r BreakdownRow) Arg(name string) (Arg, bool) {
	for _, a := range r.Args {
		if a.Name == name {
			return a, true
		}
	}
	return Arg{}, false
}

// TaxResult is the output of every calculator.
type TaxResult struct {
	TotalTax  Amount         `json:"total_tax"`
	Breakdown []BreakdownRow `json:"breakdown"`
}

// Summary picks the headline figures out of a breakdown by well-known row ids.
type Summary struct {
	TotalTax           Amount  `json:"total_tax"`
	TakeHomeAnnual     *Amount `json:"take_home_annual,omitempty"`
	TakeHomePerPeriod  *Amount `json:"take_home_per_period,omitempty"`
	TERPerPeriod       *Amount `json:"ter_per_period,omitempty"`
	DecemberAdjustment *Amount `json:"december_adjustment,omitempty"`
}

const (
	RowTakeHomeAnnual     RowID = "take_home_annual"
	RowTakeHomePeriod     RowID = "take_home_period"
	RowTERPerPeriod       RowID = "ter_per_period"
	RowDecemberAdjustment RowID = "december_adjustment"
)

// Summarize derives a Summary from the result's rows.
func (r TaxResult) Summarize() Summary {
	s := Summary{TotalTax: r.TotalTax}
	for _, row := range r.Breakdown {
		if row.Amount == nil {
			continue
		}
		v := *row.Amount
		switch row.ID {
		case RowTakeHomeAnnual:
			s.TakeHomeAnnual = &v
		case RowTakeHomePeriod:
			s.TakeHomePerPeriod = &v
		case RowTERPerPeriod:
			s.TERPerPeriod = &v
		case RowDecemberAdjustment:
			s.DecemberAdjustment = &v
		}
	}
	return s
}
