package reconcile

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/de-tools/invoice-reconciler/pkg/models/domain"
)

const dateOutputLayout = "2006-01-02"

// Always tried first, whatever the date order.
var isoLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006-1-2",
	"2006/1/2",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2-Jan-2006",
	"2 Jan 2006",
	"2 January 2006",
	"Jan 2, 2006",
	"January 2, 2006",
}

var dayFirstLayouts = []string{
	"2-1-2006",
	"2/1/2006",
	"2.1.2006",
	"2-1-2006 15:04:05",
	"2/1/2006 15:04:05",
	"2/1/2006 15:04",
	"2-1-06",
	"2/1/06",
}

var monthFirstLayouts = []string{
	"1-2-2006",
	"1/2/2006",
	"1.2.2006",
	"1-2-2006 15:04:05",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1-2-06",
	"1/2/06",
}

// NormalizedRow is one data row keyed by canonical column name, with the
// schema's amount and date columns already coerced.
type NormalizedRow struct {
	Line    int
	Text    map[string]string
	Amounts map[string]decimal.Decimal
	Dates   map[string]*time.Time
}

// CanonicalHeader trims a raw header, collapses inner whitespace and
// title-cases it, so "  member ID" becomes "Member Id".
func CanonicalHeader(raw string) string {
	h := strings.TrimPrefix(raw, "\ufeff")
	h = strings.Join(strings.Fields(h), " ")
	return cases.Title(language.Und).String(h)
}

// Normalize validates the table against the schema and coerces its cells.
// Missing required columns fail the whole table with a *SchemaError;
// unparseable cells degrade to zero or no date and are returned as coercion
// defaults.
func Normalize(table domain.Table, schema Schema) ([]NormalizedRow, []domain.CoercionDefault, error) {
	index := make(map[string]int, len(table.Header))
	for i, raw := range table.Header {
		name := CanonicalHeader(raw)
		if _, seen := index[name]; !seen {
			index[name] = i
		}
	}

	var missing []string
	for _, col := range schema.Required {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, nil, &SchemaError{Dataset: schema.Dataset, Missing: missing}
	}

	rows := make([]NormalizedRow, 0, len(table.Records))
	var coercions []domain.CoercionDefault

	for i, record := range table.Records {
		line := table.Line(i)
		row := NormalizedRow{
			Line:    line,
			Text:    make(map[string]string, len(index)),
			Amounts: make(map[string]decimal.Decimal, len(schema.Amounts)),
			Dates:   make(map[string]*time.Time, len(schema.Dates)),
		}
		for name, pos := range index {
			if pos < len(record) {
				row.Text[name] = strings.TrimSpace(record[pos])
			}
		}

		for _, col := range schema.Amounts {
			value := row.Text[col]
			amount, ok := ParseAmount(value)
			if !ok {
				coercions = append(coercions, domain.CoercionDefault{
					Dataset: schema.Dataset, Row: line, Column: col, Value: value, Kind: domain.CoercionAmount,
				})
			}
			row.Amounts[col] = amount
		}

		for _, dc := range schema.Dates {
			value, present := row.Text[dc.Column]
			if !present || value == "" {
				row.Dates[dc.Column] = nil
				continue
			}
			date, ok := ParseDate(value, dc.DayFirst)
			if !ok {
				coercions = append(coercions, domain.CoercionDefault{
					Dataset: schema.Dataset, Row: line, Column: dc.Column, Value: value, Kind: domain.CoercionDate,
				})
			}
			row.Dates[dc.Column] = date
		}

		rows = append(rows, row)
	}

	return rows, coercions, nil
}

// maxAmountExponent bounds the decimal exponent of a parsed amount, so
// inputs like "1e20000000" are rejected instead of expanded.
const maxAmountExponent = 18

// ParseAmount parses a decimal amount. On failure it returns zero and false.
func ParseAmount(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	if exp := d.Exponent(); exp > maxAmountExponent || exp < -maxAmountExponent {
		return decimal.Zero, false
	}
	return d, true
}

// ParseDate parses a calendar date. ISO and month-name forms are accepted
// as-is; numeric forms are read in the preferred order first and in the
// other order as a fallback. The result is midnight UTC, or nil when the
// value is not a date.
func ParseDate(s string, dayFirst bool) (*time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, false
	}

	preferred, fallback := dayFirstLayouts, monthFirstLayouts
	if !dayFirst {
		preferred, fallback = monthFirstLayouts, dayFirstLayouts
	}

	for _, layouts := range [][]string{isoLayouts, preferred, fallback} {
		for _, layout := range layouts {
			t, err := time.Parse(layout, s)
			if err != nil {
				continue
			}
			d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return &d, true
		}
	}
	return nil, false
}

// FormatDate renders a date as YYYY-MM-DD, or an empty string for no date.
func FormatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateOutputLayout)
}

// FormatAmount renders an amount at currency precision.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}
