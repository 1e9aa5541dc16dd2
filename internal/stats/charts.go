package stats

import (
	"sort"
	"time"

	"ledger/internal/core"
)

// DayGroup is one calendar day of the transaction list.
type DayGroup struct {
	Day          core.Date
	Transactions []core.Transaction
	// Total is income minus expense for the day.
	Total core.Money
}

type CategoryTotal struct {
	Category core.CategoryInfo
	Amount   core.Money
	Percent  float64
}

type DayTotal struct {
	Day     core.Date
	Expense core.Money
}

func dayIn(t time.Time, loc *time.Location) core.Date {
	if loc == nil {
		loc = t.Location()
	}
	return core.DateOf(t.In(loc))
}

// GroupByDay buckets a filtered list by calendar day in loc, newest day
// first. Transactions keep their order within a day.
func GroupByDay(filtered []core.Transaction, loc *time.Location) []DayGroup {
	index := make(map[core.Date]int)
	var groups []DayGroup
	for _, t := range filtered {
		day := dayIn(t.Date, loc)
		i, ok := index[day]
		if !ok {
			i = len(groups)
			index[day] = i
			groups = append(groups, DayGroup{Day: day})
		}
		g := &groups[i]
		g.Transactions = append(g.Transactions, t.Clone())
		switch t.Type {
		case core.Income:
			g.Total = g.Total.Add(t.Amount)
		case core.Expense:
			g.Total = g.Total.Sub(t.Amount)
		}
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Day.After(groups[j].Day.Time)
	})
	return groups
}

// CategoryBreakdown sums expenses per category, largest first. Percent is
// the share of total expense.
func CategoryBreakdown(filtered []core.Transaction) []CategoryTotal {
	sums := make(map[core.Category]core.Money)
	var total core.Money
	for _, t := range filtered {
		if t.Type != core.Expense {
			continue
		}
		sums[t.Category] = sums[t.Category].Add(t.Amount)
		total = total.Add(t.Amount)
	}

	out := make([]CategoryTotal, 0, len(sums))
	for _, info := range core.Categories() {
		amount, ok := sums[info.Value]
		if !ok {
			continue
		}
		ct := CategoryTotal{Category: info, Amount: amount}
		if total.Cents > 0 {
			ct.Percent = float64(amount.Cents) * 100 / float64(total.Cents)
		}
		out = append(out, ct)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Amount.Cents > out[j].Amount.Cents
	})
	return out
}

// DailyTrend returns expense per day for the n days ending on the day of now,
// oldest first. Days without expenses are present with a zero amount.
func DailyTrend(filtered []core.Transaction, n int, now time.Time) []DayTotal {
	if n <= 0 {
		return nil
	}
	loc := now.Location()
	sums := make(map[core.Date]core.Money)
	for _, t := range filtered {
		if t.Type == core.Expense {
			day := dayIn(t.Date, loc)
			sums[day] = sums[day].Add(t.Amount)
		}
	}

	today := core.DateOf(now)
	out := make([]DayTotal, n)
	for i := 0; i < n; i++ {
		day := core.Date{Time: today.AddDate(0, 0, i-n+1)}
		out[i] = DayTotal{Day: day, Expense: sums[day]}
	}
	return out
}
