package memory

import (
	"context"
	"reflect"
	"testing"

	"ledger/internal/core"
)

func TestStoreAppendIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := New()

	ref1, err := s.AppendSettlement(ctx, core.Settlement{ID: "a"})
	if err != nil || ref1 != "mem:1" {
		t.Fatalf("first append = %q, %v", ref1, err)
	}
	ref2, _ := s.AppendSettlement(ctx, core.Settlement{ID: "b"})
	again, _ := s.AppendSettlement(ctx, core.Settlement{ID: "a"})
	if ref2 != "mem:2" || again != "mem:1" {
		t.Fatalf("refs = %q %q", ref2, again)
	}

	ids, _ := s.ListSettlementIDs(ctx)
	if !reflect.DeepEqual(ids, []string{"a", "b"}) {
		t.Fatalf("ids = %v", ids)
	}
}
