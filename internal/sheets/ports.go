package sheets

import (
	"context"

	"ledger/internal/core"
)

// Ports for outbound adapters.
type (
	// SettlementWriter records the summary of a settled period.
	// Writing the same settlement twice must not produce a second row.
	SettlementWriter interface {
		AppendSettlement(ctx context.Context, s core.Settlement) (rowRef string, err error)
	}

	SettlementLister interface {
		ListSettlementIDs(ctx context.Context) ([]string, error)
	}
)
