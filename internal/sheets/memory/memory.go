// Package memory is an in-process settlement sink for development and tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"ledger/internal/core"
	ports "ledger/internal/sheets"
)

type Store struct {
	mu    sync.Mutex
	rows  []core.Settlement
	index map[string]int
}

var (
	_ ports.SettlementWriter = (*Store)(nil)
	_ ports.SettlementLister = (*Store)(nil)
)

func New() *Store {
	return &Store{index: make(map[string]int)}
}

// AppendSettlement stores s once and returns a synthetic row reference.
func (s *Store) AppendSettlement(_ context.Context, st core.Settlement) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i, ok := s.index[st.ID]; ok {
		return fmt.Sprintf("mem:%d", i+1), nil
	}
	s.rows = append(s.rows, st.Clone())
	s.index[st.ID] = len(s.rows) - 1
	return fmt.Sprintf("mem:%d", len(s.rows)), nil
}

func (s *Store) ListSettlementIDs(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, len(s.rows))
	for i, r := range s.rows {
		ids[i] = r.ID
	}
	return ids, nil
}
