package ledger

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"ledger/internal/core"
	"ledger/internal/storage"
)

var now = time.Date(2026, 10, 15, 14, 30, 0, 0, time.UTC)

type failingKV struct {
	storage.KV
	setErr error
	getErr error
}

func (f failingKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if f.getErr != nil {
		return nil, false, f.getErr
	}
	return f.KV.Get(ctx, key)
}

func (f failingKV) Set(ctx context.Context, key string, value []byte) error {
	if f.setErr != nil {
		return f.setErr
	}
	return f.KV.Set(ctx, key, value)
}

func mustTx(t *testing.T, in core.TransactionInput) core.Transaction {
	t.Helper()
	tx, err := core.NewTransaction(in, now)
	if err != nil {
		t.Fatalf("NewTransaction: %v", err)
	}
	return tx
}

func sampleTransactions(t *testing.T) []core.Transaction {
	return []core.Transaction{
		mustTx(t, core.TransactionInput{Amount: core.Money{Cents: 12000}, Type: core.Expense, Category: core.Food, Note: `lunch "bento"`, Date: now}),
		mustTx(t, core.TransactionInput{
			Amount:      core.Money{Cents: 200000},
			Type:        core.Income,
			Note:        "salary",
			PeriodStart: core.NewDate(2026, 10, 15),
			PeriodEnd:   core.NewDate(2026, 10, 21),
		}),
		mustTx(t, core.TransactionInput{Amount: core.Money{Cents: 550}, Type: core.Memo, Category: core.Other, Date: now.AddDate(0, 0, -1)}),
	}
}

func TestTransactionStoreAddPrependsAndAssignsIDs(t *testing.T) {
	ctx := context.Background()
	store := NewTransactionStore(storage.NewMemoryKV(), nil)
	if err := store.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}

	var ids []string
	for _, tx := range sampleTransactions(t) {
		added, err := store.Add(ctx, tx)
		if err != nil {
			t.Fatalf("add: %v", err)
		}
		if added.ID == "" {
			t.Fatalf("expected assigned id")
		}
		ids = append(ids, added.ID)
	}

	all := store.All()
	if len(all) != 3 {
		t.Fatalf("expected 3 transactions, got %d", len(all))
	}
	// newest first
	if all[0].ID != ids[2] || all[2].ID != ids[0] {
		t.Fatalf("unexpected order: %v", []string{all[0].ID, all[1].ID, all[2].ID})
	}
	if ids[0] == ids[1] || ids[1] == ids[2] {
		t.Fatalf("ids must be unique: %v", ids)
	}
}

func TestTransactionStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryKV()
	store := NewTransactionStore(kv, nil)
	for _, tx := range sampleTransactions(t) {
		if _, err := store.Add(ctx, tx); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	reloaded := NewTransactionStore(kv, nil)
	if err := reloaded.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(store.All(), reloaded.All()) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", reloaded.All(), store.All())
	}
}

func TestTransactionStoreLoad(t *testing.T) {
	tests := []struct {
		name string
		blob string
	}{
		{"corrupt json", `{not json`},
		{"wrong shape", `{"id":"x"}`},
		{"empty blob", ``},
		{"empty array", `[]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			kv := storage.NewMemoryKV()
			_ = kv.Set(ctx, storage.TransactionsKey, []byte(tt.blob))

			store := NewTransactionStore(kv, nil)
			if err := store.Load(ctx); err != nil {
				t.Fatalf("load should not fail: %v", err)
			}
			if store.Len() != 0 {
				t.Fatalf("expected empty store, got %d", store.Len())
			}
		})
	}
}

func TestTransactionStoreLoadBackendError(t *testing.T) {
	boom := errors.New("disk gone")
	store := NewTransactionStore(failingKV{KV: storage.NewMemoryKV(), getErr: boom}, nil)
	if err := store.Load(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected backend error, got %v", err)
	}
}

func TestTransactionStoreRemove(t *testing.T) {
	ctx := context.Background()
	store := NewTransactionStore(storage.NewMemoryKV(), nil)
	var ids []string
	for _, tx := range sampleTransactions(t) {
		added, _ := store.Add(ctx, tx)
		ids = append(ids, added.ID)
	}
	before := store.All()

	removed, err := store.Remove(ctx, "does-not-exist")
	if err != nil || removed {
		t.Fatalf("unknown id: removed=%v err=%v", removed, err)
	}
	if !reflect.DeepEqual(before, store.All()) {
		t.Fatalf("unknown id must leave the store unchanged")
	}

	removed, err = store.Remove(ctx, ids[1])
	if err != nil || !removed {
		t.Fatalf("remove: removed=%v err=%v", removed, err)
	}
	for _, tx := range store.All() {
		if tx.ID == ids[1] {
			t.Fatalf("transaction %s still present", ids[1])
		}
	}
	if store.Len() != 2 {
		t.Fatalf("expected 2 left, got %d", store.Len())
	}
}

func TestTransactionStoreFailedPersistKeepsState(t *testing.T) {
	ctx := context.Background()
	kv := &failingKV{KV: storage.NewMemoryKV()}
	store := NewTransactionStore(kv, nil)
	first, err := store.Add(ctx, sampleTransactions(t)[0])
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	kv.setErr = errors.New("quota exceeded")
	if _, err := store.Add(ctx, sampleTransactions(t)[1]); err == nil {
		t.Fatalf("expected persist error")
	}
	if removed, err := store.Remove(ctx, first.ID); err == nil || removed {
		t.Fatalf("expected persist error on remove, removed=%v", removed)
	}
	if store.Len() != 1 {
		t.Fatalf("in-memory state must not change on failed persist, got %d", store.Len())
	}
}

func TestTransactionStoreRetainAndReplace(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryKV()
	store := NewTransactionStore(kv, nil)
	for _, tx := range sampleTransactions(t) {
		_, _ = store.Add(ctx, tx)
	}
	before := store.All()

	if err := store.Retain(ctx, func(core.Transaction) bool { return false }); err != nil {
		t.Fatalf("retain: %v", err)
	}
	data, _, _ := kv.Get(ctx, storage.TransactionsKey)
	if string(data) != "[]" {
		t.Fatalf("expected empty array persisted, got %q", data)
	}

	if err := store.Replace(ctx, before); err != nil {
		t.Fatalf("replace: %v", err)
	}
	reloaded := NewTransactionStore(kv, nil)
	if err := reloaded.Load(ctx); err != nil {
		t.Fatal(err)
	}
	got := reloaded.All()
	if len(got) != len(before) || got[0].ID != before[0].ID {
		t.Fatalf("replace did not restore the collection: %+v", got)
	}

	keepID := before[len(before)-1].ID
	if err := store.Retain(ctx, func(tx core.Transaction) bool { return tx.ID == keepID }); err != nil {
		t.Fatalf("retain: %v", err)
	}
	if all := store.All(); len(all) != 1 || all[0].ID != keepID {
		t.Fatalf("retain kept %+v, want only %s", all, keepID)
	}
}

func TestTransactionStoreAllIsCopy(t *testing.T) {
	ctx := context.Background()
	store := NewTransactionStore(storage.NewMemoryKV(), nil)
	_, _ = store.Add(ctx, sampleTransactions(t)[1])

	all := store.All()
	all[0].Note = "changed"
	all[0].PeriodStart.Time = all[0].PeriodStart.AddDate(1, 0, 0)
	again := store.All()
	if again[0].Note != "salary" || !again[0].PeriodStart.Equal(core.NewDate(2026, 10, 15).Time) {
		t.Fatalf("All must return a deep copy, got %+v", again[0])
	}
}

func TestSettlementArchive(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryKV()
	archive := NewSettlementArchive(kv, nil)
	if err := archive.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}

	for i := 0; i < 2; i++ {
		s := core.Settlement{
			ID:           fmt.Sprintf("s%d", i),
			SettledDate:  now.AddDate(0, 0, 7*i),
			TotalIncome:  core.Money{Cents: 200000},
			TotalExpense: core.Money{Cents: 12000},
			Remaining:    core.Money{Cents: 188000},
			Transactions: sampleTransactions(t),
		}
		if err := archive.Prepend(ctx, s); err != nil {
			t.Fatalf("prepend: %v", err)
		}
	}

	reloaded := NewSettlementArchive(kv, nil)
	if err := reloaded.Load(ctx); err != nil {
		t.Fatalf("reload: %v", err)
	}
	all := reloaded.All()
	if len(all) != 2 || all[0].ID != "s1" || all[1].ID != "s0" {
		t.Fatalf("expected most recent first, got %+v", all)
	}
	if !reflect.DeepEqual(archive.All(), all) {
		t.Fatalf("round trip mismatch")
	}

	got, err := reloaded.Get("s0")
	if err != nil || got.Remaining.Cents != 188000 || len(got.Transactions) != 3 {
		t.Fatalf("get: %+v err=%v", got, err)
	}
	if _, err := reloaded.Get("missing"); !errors.Is(err, ErrSettlementNotFound) {
		t.Fatalf("expected ErrSettlementNotFound, got %v", err)
	}
}

func TestSettlementArchiveCorruptBlob(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryKV()
	_ = kv.Set(ctx, storage.SettlementsKey, []byte(`[{"id":`))
	archive := NewSettlementArchive(kv, nil)
	if err := archive.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	if archive.Len() != 0 {
		t.Fatalf("expected empty archive")
	}
}
