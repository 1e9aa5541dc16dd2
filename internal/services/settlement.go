package services

import (
	"time"

	"ledger/internal/core"
	"ledger/internal/stats"
)

// Settle snapshots the transactions of the settled range together with the
// totals already shown to the user for it. The totals come from st and are not recomputed.
// It reports false when there is nothing to settle: no transactions and no
// income.
func Settle(active []core.Transaction, st stats.Stats, now time.Time) (core.Settlement, bool) {
	if len(active) == 0 && st.Income.Cents == 0 {
		return core.Settlement{}, false
	}
	return core.Settlement{
		ID:           core.NewID(),
		SettledDate:  now,
		TotalIncome:  st.Income,
		TotalExpense: st.Expense,
		Remaining:    st.Remaining,
		Transactions: core.CloneAll(active),
	}, true
}
