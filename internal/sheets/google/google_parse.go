package google

import (
	"fmt"
	"strings"
	"time"

	"ledger/internal/core"
)

const settledLayout = "2006-01-02 15:04"

// settlementRow is the summary row written for a settlement:
// ID, settled at, label, income, expense, remaining, transaction count.
func settlementRow(s core.Settlement, loc *time.Location) []interface{} {
	settled := s.SettledDate
	if loc != nil {
		settled = settled.In(loc)
	}
	return []interface{}{
		s.ID,
		settled.Format(settledLayout),
		s.Label(),
		s.TotalIncome.String(),
		s.TotalExpense.String(),
		s.Remaining.String(),
		len(s.Transactions),
	}
}

func firstColumn(values [][]interface{}) []string {
	out := make([]string, 0, len(values))
	for _, row := range values {
		out = append(out, strings.TrimSpace(safeGet(toStrings(row), 0)))
	}
	return out
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = fmt.Sprint(v)
	}
	return out
}

func indexOf(arr []string, target string) int {
	for i, v := range arr {
		if v == target {
			return i
		}
	}
	return -1
}

func safeGet(arr []string, idx int) string {
	if idx >= 0 && idx < len(arr) {
		return arr[idx]
	}
	return ""
}
