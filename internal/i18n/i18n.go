// Package i18n resolves breakdown row and note IDs to localized text.
package i18n

import (
	"embed"
	"fmt"
	"path"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"

	ierr "pajak-engine/internal/errors"
	"pajak-engine/internal/model"
)

const (
	Indonesian = "id"
	English    = "en"

	DefaultLocale = Indonesian
)

//go:embed catalogs/*.yaml
var catalogFS embed.FS

type bundle struct {
	Locale string            `yaml:"locale"`
	UI     map[string]string `yaml:"ui"`
	Rows   map[string]string `yaml:"rows"`
	Notes  map[string]string `yaml:"notes"`

	printer *message.Printer
}

type Catalog struct {
	bundles map[string]*bundle
	matcher language.Matcher
	tags    []string
}

var Default = MustLoad()

// Load reads every embedded catalog. The default locale must be present.
func Load() (*Catalog, error) {
	entries, err := catalogFS.ReadDir("catalogs")
	if err != nil {
		return nil, ierr.Wrap(err, ierr.ErrSystem, "i18n.Load", "catalogs unreadable")
	}

	c := &Catalog{bundles: make(map[string]*bundle)}
	var supported []language.Tag
	for _, e := range entries {
		raw, err := catalogFS.ReadFile(path.Join("catalogs", e.Name()))
		if err != nil {
			return nil, ierr.Wrap(err, ierr.ErrSystem, "i18n.Load", "catalog unreadable "+e.Name())
		}
		var b bundle
		if err := yaml.Unmarshal(raw, &b); err != nil {
			return nil, ierr.Wrap(err, ierr.ErrSystem, "i18n.Load", "malformed catalog "+e.Name())
		}
		tag, err := language.Parse(b.Locale)
		if err != nil {
			return nil, ierr.Wrap(err, ierr.ErrSystem, "i18n.Load", "bad locale in catalog "+e.Name())
		}
		b.printer = message.NewPrinter(tag)
		c.bundles[b.Locale] = &b
		supported = append(supported, tag)
	}

	def, ok := c.bundles[DefaultLocale]
	if !ok {
		return nil, ierr.Newf(ierr.ErrSystem, "i18n.Load", "default locale %q missing", DefaultLocale)
	}
	// The matcher falls back to its first tag.
	ordered := []language.Tag{language.MustParse(def.Locale)}
	for _, t := range supported {
		if t != ordered[0] {
			ordered = append(ordered, t)
		}
	}
	c.matcher = language.NewMatcher(ordered)
	for _, t := range ordered {
		c.tags = append(c.tags, t.String())
	}
	return c, nil
}

func MustLoad() *Catalog {
	c, err := Load()
	if err != nil {
		panic(err)
	}
	return c
}

// Resolve maps any locale string ("en-US", "id", "") to a supported locale.
func (c *Catalog) Resolve(locale string) string {
	if _, ok := c.bundles[locale]; ok {
		return locale
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return DefaultLocale
	}
	_, idx, conf := c.matcher.Match(tag)
	if conf == language.No {
		return DefaultLocale
	}
	return c.tags[idx]
}

func (c *Catalog) bundle(locale string) *bundle {
	return c.bundles[c.Resolve(locale)]
}

// Label renders a row's label. Unknown IDs render as the ID itself.
func (c *Catalog) Label(locale string, row model.BreakdownRow) string {
	b := c.bundle(locale)
	tmpl, ok := b.Rows[string(row.ID)]
	if !ok {
		return string(row.ID)
	}
	return b.interpolate(tmpl, row.Args)
}

// Note renders a row's note, or "" when it has none.
func (c *Catalog) Note(locale string, row model.BreakdownRow) string {
	if row.Note == "" {
		return ""
	}
	b := c.bundle(locale)
	tmpl, ok := b.Notes[string(row.Note)]
	if !ok {
		return string(row.Note)
	}
	return b.interpolate(tmpl, row.Args)
}

// Text renders a fixed UI string such as a column header.
func (c *Catalog) Text(locale, key string) string {
	if s, ok := c.bundle(locale).UI[key]; ok {
		return s
	}
	return key
}

// TaxName renders the display name of a receipt or batch type.
func (c *Catalog) TaxName(locale, taxType string) string {
	return c.Text(locale, "tax."+taxType)
}

// Value renders a row's value cell.
func (c *Catalog) Value(locale string, row model.BreakdownRow) string {
	if !row.HasValue() {
		return ""
	}
	switch row.ValueKind {
	case model.ValueCurrency:
		return c.Currency(locale, *row.Amount)
	case model.ValuePercent:
		return Percent(*row.Rate)
	default:
		return row.Text
	}
}

// Currency formats whole rupiah: Rp1.234.567 in Indonesian, IDR 1,234,567 in
// English.
func (c *Catalog) Currency(locale string, amount model.Amount) string {
	b := c.bundle(locale)
	return b.currency(amount)
}

func (b *bundle) currency(amount model.Amount) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	digits := b.printer.Sprintf("%d", amount)
	if b.Locale == English {
		return sign + "IDR " + digits
	}
	return sign + "Rp" + digits
}

// Percent formats basis points: whole percentages without decimals, others
// with two.
func Percent(rate model.Rate) string {
	if rate%100 == 0 {
		return strconv.FormatInt(int64(rate/100), 10) + "%"
	}
	sign := ""
	if rate < 0 {
		sign = "-"
		rate = -rate
	}
	return fmt.Sprintf("%s%d.%02d%%", sign, rate/100, rate%100)
}

func (b *bundle) interpolate(tmpl string, args []model.Arg) string {
	if len(args) == 0 || !strings.Contains(tmpl, "{") {
		return tmpl
	}
	pairs := make([]string, 0, len(args)*2)
	for _, a := range args {
		pairs = append(pairs, "{"+a.Name+"}", b.formatArg(a))
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

func (b *bundle) formatArg(a model.Arg) string {
	switch a.Kind {
	case model.ValueCurrency:
		return b.currency(a.Value)
	case model.ValuePercent:
		return Percent(model.Rate(a.Value))
	default:
		return b.printer.Sprintf("%d", a.Value)
	}
}
