// Package export renders stored receipts as spreadsheets and printable pages.
package export

import (
	"bytes"
	"encoding/xml"
	"regexp"
	"strings"

	"github.com/samber/lo"

	"pajak-engine/internal/i18n"
	"pajak-engine/internal/model"
)

const (
	ContentTypeXLS  = "application/vnd.ms-excel"
	ContentTypeHTML = "text/html; charset=utf-8"

	defaultFilename = "open-pajak"
	maxFilenameLen  = 80
)

// File is a rendered export ready to be served as a download.
type File struct {
	Name        string
	ContentType string
	Body        []byte
}

type Exporter struct {
	catalog *i18n.Catalog
}

func New(catalog *i18n.Catalog) *Exporter {
	if catalog == nil {
		catalog = i18n.Default
	}
	return &Exporter{catalog: catalog}
}

// SpreadsheetML 2003 document model. Attribute names carry their prefixes
// literally; Excel expects exactly these spellings.
type xmlWorkbook struct {
	XMLName xml.Name       `xml:"Workbook"`
	Xmlns   string         `xml:"xmlns,attr"`
	XmlnsO  string         `xml:"xmlns:o,attr"`
	XmlnsX  string         `xml:"xmlns:x,attr"`
	XmlnsSS string         `xml:"xmlns:ss,attr"`
	Sheets  []xmlWorksheet `xml:"Worksheet"`
}

type xmlWorksheet struct {
	Name string   `xml:"ss:Name,attr"`
	Rows []xmlRow `xml:"Table>Row"`
}

type xmlRow struct {
	Cells []xmlCell `xml:"Cell"`
}

type xmlCell struct {
	Data xmlData `xml:"Data"`
}

type xmlData struct {
	Type  string `xml:"ss:Type,attr"`
	Value string `xml:",chardata"`
}

const spreadsheetNS = "urn:schemas-microsoft-com:office:spreadsheet"

func encodeWorkbook(sheets ...xmlWorksheet) ([]byte, error) {
	wb := xmlWorkbook{
		Xmlns:   spreadsheetNS,
		XmlnsO:  "urn:schemas-microsoft-com:office:office",
		XmlnsX:  "urn:schemas-microsoft-com:office:excel",
		XmlnsSS: spreadsheetNS,
		Sheets:  sheets,
	}
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	buf.WriteString(`<?mso-application progid="Excel.Sheet"?>` + "\n")
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(wb); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func stringRow(cells ...string) xmlRow {
	return xmlRow{Cells: lo.Map(cells, func(c string, _ int) xmlCell {
		return xmlCell{Data: xmlData{Type: "String", Value: c}}
	})}
}

func sheetName(name string) string {
	return lo.Ternary(name == "", "Sheet1", name)
}

// Workbook renders one receipt as a component/value/note sheet. An empty
// locale uses the receipt's own.
func (e *Exporter) Workbook(locale string, r model.Receipt) (File, error) {
	locale = e.catalog.Resolve(lo.Ternary(locale == "", r.Locale, locale))
	cat := e.catalog

	rows := []xmlRow{stringRow(cat.Text(locale, "component"), cat.Text(locale, "value"), cat.Text(locale, "note"))}
	for _, row := range r.Breakdown {
		rows = append(rows, stringRow(cat.Label(locale, row), cat.Value(locale, row), cat.Note(locale, row)))
	}

	body, err := encodeWorkbook(xmlWorksheet{Name: sheetName(cat.Text(locale, "receipt")), Rows: rows})
	if err != nil {
		return File{}, err
	}
	return File{Name: SanitizeFilename(r.Title) + ".xls", ContentType: ContentTypeXLS, Body: body}, nil
}

// BatchWorkbook renders every receipt of a batch into a single sheet.
func (e *Exporter) BatchWorkbook(locale string, b model.Batch, receipts []model.Receipt) (File, error) {
	locale = e.catalog.Resolve(locale)
	cat := e.catalog

	rows := []xmlRow{stringRow(
		cat.Text(locale, "batch"),
		cat.Text(locale, "receipt"),
		cat.Text(locale, "component"),
		cat.Text(locale, "value"),
		cat.Text(locale, "note"),
	)}
	for _, r := range receipts {
		for _, row := range r.Breakdown {
			rows = append(rows, stringRow(b.Label, r.Title, cat.Label(locale, row), cat.Value(locale, row), cat.Note(locale, row)))
		}
	}

	body, err := encodeWorkbook(xmlWorksheet{Name: sheetName(cat.Text(locale, "batch")), Rows: rows})
	if err != nil {
		return File{}, err
	}
	name := lo.Ternary(b.FileName != "", strings.TrimSuffix(b.FileName, ".xls"), b.Label)
	return File{Name: SanitizeFilename(name) + ".xls", ContentType: ContentTypeXLS, Body: body}, nil
}

var (
	reservedChars = regexp.MustCompile(`[\\/:*?"<>|]`)
	whitespace    = regexp.MustCompile(`\s+`)
	dashRuns      = regexp.MustCompile(`-+`)
)

// SanitizeFilename makes a title safe for a download name.
func SanitizeFilename(name string) string {
	name = reservedChars.ReplaceAllString(name, "-")
	name = whitespace.ReplaceAllString(name, "-")
	name = dashRuns.ReplaceAllString(name, "-")
	if runes := []rune(name); len(runes) > maxFilenameLen {
		name = string(runes[:maxFilenameLen])
	}
	return lo.Ternary(name == "", defaultFilename, name)
}
