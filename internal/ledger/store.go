// Package ledger holds the durable collections of the app: the active
// transaction set and the settlement archive. Both are stored as one JSON
// blob per key and always written back as a whole.
//
// The types here are not safe for concurrent use; services.LedgerService
// serializes every call.
package ledger

import (
	"context"
	"encoding/json"
	"fmt"

	"ledger/internal/core"
	applog "ledger/internal/log"
	"ledger/internal/storage"
)

// TransactionStore is the active, not yet settled, transaction collection.
// Order is insertion order with the newest entry first.
type TransactionStore struct {
	kv     storage.KV
	logger *applog.Logger
	txs    []core.Transaction
	newID  func() string
}

func NewTransactionStore(kv storage.KV, logger *applog.Logger) *TransactionStore {
	if logger == nil {
		logger = applog.Default(applog.ComponentLedger)
	}
	return &TransactionStore{kv: kv, logger: logger, newID: core.NewID}
}

// Load hydrates the store from the backend. A missing key yields an empty
// collection and so does a blob that fails to decode.
func (s *TransactionStore) Load(ctx context.Context) error {
	txs, err := loadBlob[core.Transaction](ctx, s.kv, storage.TransactionsKey, s.logger)
	if err != nil {
		return err
	}
	s.txs = txs
	s.logger.DebugContext(ctx, "transactions loaded", applog.FieldCount, len(txs))
	return nil
}

// Add assigns a fresh ID to tx, prepends it and persists the collection.
func (s *TransactionStore) Add(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	tx = tx.Clone()
	tx.ID = s.newID()

	next := make([]core.Transaction, 0, len(s.txs)+1)
	next = append(next, tx)
	next = append(next, s.txs...)
	if err := s.persist(ctx, next); err != nil {
		return core.Transaction{}, err
	}
	s.txs = next
	return tx.Clone(), nil
}

// Remove deletes the transaction with the given ID. Unknown IDs are a no-op
// and report false without touching the backend.
func (s *TransactionStore) Remove(ctx context.Context, id string) (bool, error) {
	idx := -1
	for i, t := range s.txs {
		if t.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false, nil
	}

	next := make([]core.Transaction, 0, len(s.txs)-1)
	next = append(next, s.txs[:idx]...)
	next = append(next, s.txs[idx+1:]...)
	if err := s.persist(ctx, next); err != nil {
		return false, err
	}
	s.txs = next
	return true, nil
}

// Retain keeps only the transactions for which keep reports true, in their
// current order. Only settlement calls it.
func (s *TransactionStore) Retain(ctx context.Context, keep func(core.Transaction) bool) error {
	next := make([]core.Transaction, 0, len(s.txs))
	for _, t := range s.txs {
		if keep(t) {
			next = append(next, t)
		}
	}
	if err := s.persist(ctx, next); err != nil {
		return err
	}
	s.txs = next
	return nil
}

// Replace overwrites the collection with txs, e.g. to undo a Retain whose
// settlement could not be archived.
func (s *TransactionStore) Replace(ctx context.Context, txs []core.Transaction) error {
	next := core.CloneAll(txs)
	if err := s.persist(ctx, next); err != nil {
		return err
	}
	s.txs = next
	return nil
}

// All returns a deep copy of the collection.
func (s *TransactionStore) All() []core.Transaction {
	return core.CloneAll(s.txs)
}

func (s *TransactionStore) Len() int {
	return len(s.txs)
}

func (s *TransactionStore) persist(ctx context.Context, txs []core.Transaction) error {
	return storeBlob(ctx, s.kv, storage.TransactionsKey, txs)
}

func loadBlob[T any](ctx context.Context, kv storage.KV, key string, logger *applog.Logger) ([]T, error) {
	data, found, err := kv.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	if !found || len(data) == 0 {
		return nil, nil
	}
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		logger.WarnContext(ctx, "Stored data is corrupt, starting empty",
			applog.FieldKey, key,
			applog.FieldError, err,
			"error_type", applog.ErrorTypeCorruptData)
		return nil, nil
	}
	return items, nil
}

func storeBlob[T any](ctx context.Context, kv storage.KV, key string, items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := kv.Set(ctx, key, data); err != nil {
		return fmt.Errorf("persist %s: %w", key, err)
	}
	return nil
}
