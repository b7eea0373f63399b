package calculator

import "pajak-engine/internal/model"

type rowOpt func(*model.BreakdownRow)

var (
	asSubtotal rowOpt = func(r *model.BreakdownRow) { r.Kind = model.RowSubtotal }
	asTotal    rowOpt = func(r *model.BreakdownRow) { r.Kind = model.RowTotal }
)

func withNote(id model.NoteID) rowOpt {
	return func(r *model.BreakdownRow) { r.Note = id }
}

func withArgs(args ...model.Arg) rowOpt {
	return func(r *model.BreakdownRow) { r.Args = append(r.Args, args...) }
}

func sectionRow(id model.RowID) model.BreakdownRow {
	return model.BreakdownRow{ID: id, Kind: model.RowSection}
}

func groupRow(id model.RowID) model.BreakdownRow {
	return model.BreakdownRow{ID: id, Kind: model.RowGroup}
}

func spacerRow() model.BreakdownRow {
	return model.BreakdownRow{ID: "spacer", Kind: model.RowSpacer}
}

func amountRow(id model.RowID, v model.Amount, opts ...rowOpt) model.BreakdownRow {
	r := model.BreakdownRow{ID: id, Kind: model.RowPlain, ValueKind: model.ValueCurrency, Amount: &v}
	for _, o := range opts {
		o(&r)
	}
	return r
}

func rateRow(id model.RowID, v model.Rate, opts ...rowOpt) model.BreakdownRow {
	r := model.BreakdownRow{ID: id, Kind: model.RowPlain, ValueKind: model.ValuePercent, Rate: &v}
	for _, o := range opts {
		o(&r)
	}
	return r
}

func countArg(name string, n int) model.Arg {
	return model.Arg{Name: name, Kind: model.ValueText, Value: int64(n)}
}

func amountArg(name string, v model.Amount) model.Arg {
	return model.Arg{Name: name, Kind: model.ValueCurrency, Value: v}
}

func rateArg(name string, r model.Rate) model.Arg {
	return model.Arg{Name: name, Kind: model.ValuePercent, Value: int64(r)}
}

func emptyResult() model.TaxResult {
	return model.TaxResult{Breakdown: []model.BreakdownRow{}}
}
