package services

import (
	"testing"
	"time"

	"ledger/internal/core"
	"ledger/internal/stats"
)

func TestSettleNothingToSettle(t *testing.T) {
	if _, ok := Settle(nil, stats.Stats{}, time.Now()); ok {
		t.Fatal("empty ledger without income must not settle")
	}
}

func TestSettleCopiesDisplayedTotals(t *testing.T) {
	now := time.Date(2026, 10, 18, 21, 0, 0, 0, time.UTC)
	start := core.NewDate(2026, 10, 12)
	active := []core.Transaction{
		{ID: "a", Type: core.Expense, Category: core.Food, Amount: core.Money{Cents: 12000}, Date: now},
		{ID: "b", Type: core.Income, Category: core.Deposit, Amount: core.Money{Cents: 200000}, Date: now, PeriodStart: &start},
	}
	// Totals deliberately differ from a recomputation over active.
	st := stats.Stats{
		Income:    core.Money{Cents: 150000},
		Expense:   core.Money{Cents: 10000},
		Remaining: core.Money{Cents: 140000},
	}

	s, ok := Settle(active, st, now)
	if !ok {
		t.Fatal("expected a settlement")
	}
	if s.ID == "" || !s.SettledDate.Equal(now) {
		t.Fatalf("id=%q settled=%v", s.ID, s.SettledDate)
	}
	if s.TotalIncome != st.Income || s.TotalExpense != st.Expense || s.Remaining != st.Remaining {
		t.Fatalf("totals not taken from stats: %+v", s)
	}
	if len(s.Transactions) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(s.Transactions))
	}

	// The snapshot shares nothing with the active slice.
	active[0].Note = "edited"
	active[1].PeriodStart.Time = active[1].PeriodStart.AddDate(0, 1, 0)
	if s.Transactions[0].Note != "" || !s.Transactions[1].PeriodStart.Equal(core.NewDate(2026, 10, 12).Time) {
		t.Fatalf("snapshot aliased the active transactions: %+v", s.Transactions)
	}
}

func TestSettleIncomeOnly(t *testing.T) {
	st := stats.Stats{Income: core.Money{Cents: 100}}
	if _, ok := Settle(nil, st, time.Now()); !ok {
		t.Fatal("income alone is something to settle")
	}
}
