package export

import (
	"bytes"
	"embed"
	"html/template"

	"github.com/samber/lo"

	"pajak-engine/internal/model"
)

//go:embed templates/receipt.html.tmpl
var templateFS embed.FS

var receiptPage = template.Must(template.ParseFS(templateFS, "templates/receipt.html.tmpl"))

type printCell struct {
	Label string
	Value string
}

type printRow struct {
	Kind  model.RowKind
	Label string
	Value string
	Note  string
}

type printPage struct {
	Locale          string
	Heading         string
	Title           string
	TaxName         string
	Identifier      string
	IdentifierLabel string
	CreatedLabel    string
	CreatedAt       string
	Summary         []printCell
	Columns         struct{ Component, Value, Note string }
	Rows            []printRow
}

// PrintHTML renders a receipt as a standalone printable page.
func (e *Exporter) PrintHTML(locale string, r model.Receipt) (File, error) {
	locale = e.catalog.Resolve(lo.Ternary(locale == "", r.Locale, locale))
	cat := e.catalog

	page := printPage{
		Locale:          locale,
		Heading:         cat.Text(locale, "print_heading"),
		Title:           r.Title,
		TaxName:         cat.TaxName(locale, string(r.Type)),
		Identifier:      r.Identifier,
		IdentifierLabel: cat.Text(locale, "identifier"),
		CreatedLabel:    cat.Text(locale, "created_at"),
		CreatedAt:       r.CreatedAt.UTC().Format("2006-01-02 15:04 UTC"),
		Summary:         e.summaryCells(locale, r.Summary),
	}
	page.Columns.Component = cat.Text(locale, "component")
	page.Columns.Value = cat.Text(locale, "value")
	page.Columns.Note = cat.Text(locale, "note")
	page.Rows = lo.Map(r.Breakdown, func(row model.BreakdownRow, _ int) printRow {
		return printRow{
			Kind:  row.Kind,
			Label: cat.Label(locale, row),
			Value: cat.Value(locale, row),
			Note:  cat.Note(locale, row),
		}
	})

	var buf bytes.Buffer
	if err := receiptPage.Execute(&buf, page); err != nil {
		return File{}, err
	}
	return File{Name: SanitizeFilename(r.Title) + ".html", ContentType: ContentTypeHTML, Body: buf.Bytes()}, nil
}

func (e *Exporter) summaryCells(locale string, s model.Summary) []printCell {
	cells := []printCell{{Label: e.catalog.Text(locale, "total_tax"), Value: e.catalog.Currency(locale, s.TotalTax)}}
	optional := []struct {
		key   string
		value *model.Amount
	}{
		{"summary.ter_per_period", s.TERPerPeriod},
		{"summary.december_adjustment", s.DecemberAdjustment},
		{"summary.take_home_annual", s.TakeHomeAnnual},
		{"summary.take_home_period", s.TakeHomePerPeriod},
	}
	for _, o := range optional {
		if o.value != nil {
			cells = append(cells, printCell{Label: e.catalog.Text(locale, o.key), Value: e.catalog.Currency(locale, *o.value)})
		}
	}
	return cells
}
