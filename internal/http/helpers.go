package http

import (
	"strconv"
	"strings"
	"time"

	"ledger/internal/core"
)

var weekdayLabels = [...]string{"日", "一", "二", "三", "四", "五", "六"}

// formatCurrency renders an amount the way zh-TW formats TWD: "$1,880",
// "-$12.5". Decimals are shown only when present.
func formatCurrency(m core.Money) string {
	if m.Cents < 0 {
		return "-$" + formatNum(core.Money{Cents: -m.Cents})
	}
	return "$" + formatNum(m)
}

// formatNum renders an amount with thousands separators and no symbol.
func formatNum(m core.Money) string {
	cents := m.Cents
	neg := cents < 0
	if neg {
		cents = -cents
	}
	s := groupThousands(strconv.FormatInt(cents/100, 10))
	if rem := cents % 100; rem != 0 {
		frac := strings.TrimRight(strconv.FormatInt(100+rem, 10)[1:], "0")
		s += "." + frac
	}
	if neg {
		return "-" + s
	}
	return s
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// signedAmount prefixes income with "+" and expense with "-"; memo and
// credit card entries carry no sign.
func signedAmount(t core.Transaction) string {
	switch t.Type {
	case core.Income:
		return "+" + formatNum(t.Amount)
	case core.Expense:
		return "-" + formatNum(t.Amount)
	default:
		return formatNum(t.Amount)
	}
}

// dayLabel renders "10/15 (四)".
func dayLabel(d core.Date) string {
	return d.Format("1/2") + " (" + weekdayLabels[d.Weekday()] + ")"
}

// barWidth clamps a percentage to [0, 100] for CSS widths.
func barWidth(p float64) int {
	switch {
	case p <= 0:
		return 0
	case p >= 100:
		return 100
	case p < 2:
		return 2
	default:
		return int(p + 0.5)
	}
}

// sanitizeInput removes control characters except tab and newlines and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s)
}

// timeOnDay combines day with the wall clock of now, both in loc.
func timeOnDay(day core.Date, now time.Time, loc *time.Location) time.Time {
	now = now.In(loc)
	y, m, d := day.Date()
	return time.Date(y, m, d, now.Hour(), now.Minute(), now.Second(), now.Nanosecond(), loc)
}
