// Package export renders transaction lists as spreadsheet-friendly CSV.
package export

import (
	"errors"
	"strings"
	"time"

	"ledger/internal/core"
)

// ErrNothingToExport is advisory: callers show a notice and produce no file.
var ErrNothingToExport = errors.New("no transactions to export")

const (
	bom        = "\uFEFF"
	dateLayout = "2006/1/2"
)

var header = []string{"日期", "類型", "類別", "金額", "備註", "起", "迄"}

// CSV renders txs with a UTF-8 byte order mark and one header row. The note
// column is always quoted so free text cannot break the row. Dates are shown
// in loc; a nil loc keeps each transaction's own location.
func CSV(txs []core.Transaction, loc *time.Location) ([]byte, error) {
	if len(txs) == 0 {
		return nil, ErrNothingToExport
	}

	var b strings.Builder
	b.WriteString(bom)
	b.WriteString(strings.Join(header, ","))
	for _, t := range txs {
		date := t.Date
		if loc != nil {
			date = date.In(loc)
		}
		row := []string{
			date.Format(dateLayout),
			core.TypeLabel(t.Type),
			core.LookupCategory(t.Category).Label,
			t.Amount.String(),
			quote(t.Note),
			periodBound(t.PeriodStart),
			periodBound(t.PeriodEnd),
		}
		b.WriteByte('\n')
		b.WriteString(strings.Join(row, ","))
	}
	return []byte(b.String()), nil
}

// Filename is "<label>_<YYYY-MM-DD>.csv" for the day of now.
func Filename(label string, now time.Time) string {
	if label == "" {
		label = "Ledger"
	}
	return label + "_" + now.Format("2006-01-02") + ".csv"
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func periodBound(d *core.Date) string {
	if d == nil {
		return ""
	}
	return d.String()
}
