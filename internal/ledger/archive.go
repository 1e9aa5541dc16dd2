package ledger

import (
	"context"
	"errors"

	"ledger/internal/core"
	applog "ledger/internal/log"
	"ledger/internal/storage"
)

var ErrSettlementNotFound = errors.New("settlement not found")

// SettlementArchive is the append-only list of settled periods, most recent
// first. Settlements are never edited or removed.
type SettlementArchive struct {
	kv          storage.KV
	logger      *applog.Logger
	settlements []core.Settlement
}

func NewSettlementArchive(kv storage.KV, logger *applog.Logger) *SettlementArchive {
	if logger == nil {
		logger = applog.Default(applog.ComponentSettlement)
	}
	return &SettlementArchive{kv: kv, logger: logger}
}

func (a *SettlementArchive) Load(ctx context.Context) error {
	settlements, err := loadBlob[core.Settlement](ctx, a.kv, storage.SettlementsKey, a.logger)
	if err != nil {
		return err
	}
	a.settlements = settlements
	a.logger.DebugContext(ctx, "settlements loaded", applog.FieldCount, len(settlements))
	return nil
}

// Prepend stores s as the newest settlement.
func (a *SettlementArchive) Prepend(ctx context.Context, s core.Settlement) error {
	next := make([]core.Settlement, 0, len(a.settlements)+1)
	next = append(next, s.Clone())
	next = append(next, a.settlements...)
	if err := storeBlob(ctx, a.kv, storage.SettlementsKey, next); err != nil {
		return err
	}
	a.settlements = next
	return nil
}

func (a *SettlementArchive) All() []core.Settlement {
	out := make([]core.Settlement, len(a.settlements))
	for i, s := range a.settlements {
		out[i] = s.Clone()
	}
	return out
}

func (a *SettlementArchive) Get(id string) (core.Settlement, error) {
	for _, s := range a.settlements {
		if s.ID == id {
			return s.Clone(), nil
		}
	}
	return core.Settlement{}, ErrSettlementNotFound
}

func (a *SettlementArchive) Len() int {
	return len(a.settlements)
}
