package model

// Amount is an integer rupiah value. The domain has no fractional subunits.
type Amount = int64

// Rate is a percentage in basis points: Rate(1100) is 11%.
type Rate int64

// RateScale is the Rate value for 100%.
const RateScale Rate = 10_000

// Bracket is one layer of a progressive schedule. A non-positive Width marks the
// unbounded final layer.
type Bracket struct {
	Width Amount `yaml:"width" json:"width"`
	Rate  Rate   `yaml:"rate" json:"rate"`
}

func (b Bracket) Unbounded() bool {
	return b.Width <= 0
}

// Threshold is one row of a flat tiered table: amounts up to Ceiling use Rate.
// A non-positive Ceiling matches everything.
type Threshold struct {
	Ceiling Amount `yaml:"ceiling" json:"ceiling"`
	Rate    Rate   `yaml:"rate" json:"rate"`
}

func (t Threshold) Open() bool {
	return t.Ceiling <= 0
}
