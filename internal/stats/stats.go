// Package stats filters the active ledger to a date range and derives the
// figures shown on the dashboard. Nothing here is persisted.
package stats

import (
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"ledger/internal/core"
)

// Status is the three-tier budget classification.
type Status string

const (
	OnTrack      Status = "on-track"
	TrendingFast Status = "trending-fast"
	OverBudget   Status = "over-budget"
)

const (
	periodDays          = 7
	overBudgetPercent   = 90
	trendingFastPercent = 60
)

var statusMessages = map[Status]string{
	OnTrack:      "預算控制良好",
	TrendingFast: "花費速度偏快",
	OverBudget:   "已超出預算",
}

type Stats struct {
	Income             core.Money
	Expense            core.Money
	Remaining          core.Money
	UsagePercent       float64
	DaysLeft           int
	DailyAllowance     core.Money
	DaysPassed         int
	AvgSpendPerDay     core.Money
	ProjectedRemaining core.Money
	Status             Status
	StatusMsg          string
}

// UsageRounded is the usage percentage rounded to a whole number for display.
func (s Stats) UsageRounded() int {
	return int(math.Round(s.UsagePercent))
}

// Filter keeps transactions dated within rng (both ends inclusive) and sorts
// them newest first. Ties keep their stored order. The input is not modified.
func Filter(txs []core.Transaction, rng core.DateRange) []core.Transaction {
	out := make([]core.Transaction, 0, len(txs))
	for _, t := range txs {
		if rng.Contains(t.Date) {
			out = append(out, t.Clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out
}

// Compute aggregates an already filtered set. Memo and credit card amounts
// enter neither sum.
func Compute(filtered []core.Transaction, rng core.DateRange, now time.Time) Stats {
	var st Stats
	for _, t := range filtered {
		switch t.Type {
		case core.Income:
			st.Income = st.Income.Add(t.Amount)
		case core.Expense:
			st.Expense = st.Expense.Add(t.Amount)
		}
	}
	st.Remaining = st.Income.Sub(st.Expense)

	income, expense := st.Income.Decimal(), st.Expense.Decimal()
	switch {
	case st.Income.Cents > 0:
		st.UsagePercent = expense.Div(income).Mul(decimal.NewFromInt(100)).InexactFloat64()
	case st.Expense.Cents > 0:
		st.UsagePercent = 100
	}

	st.DaysLeft = int(math.Ceil(float64(rng.End.Sub(now)) / float64(24*time.Hour)))
	if st.DaysLeft < 1 {
		st.DaysLeft = 1
	}

	if st.Remaining.Cents > 0 {
		allowance := st.Remaining.Decimal().Div(decimal.NewFromInt(int64(st.DaysLeft))).Floor()
		st.DailyAllowance = core.MoneyFromDecimal(allowance)
	}

	st.DaysPassed = max(1, periodDays-st.DaysLeft)
	avg := expense.Div(decimal.NewFromInt(int64(st.DaysPassed)))
	st.AvgSpendPerDay = core.MoneyFromDecimal(avg)
	st.ProjectedRemaining = core.MoneyFromDecimal(income.Sub(avg.Mul(decimal.NewFromInt(periodDays))))

	st.Status = classify(st.UsagePercent, st.ProjectedRemaining)
	st.StatusMsg = statusMessages[st.Status]
	return st
}

func classify(usage float64, projected core.Money) Status {
	switch {
	case usage > overBudgetPercent || projected.Cents < 0:
		return OverBudget
	case usage > trendingFastPercent:
		return TrendingFast
	default:
		return OnTrack
	}
}
