package giftid

import (
	"context"
	"testing"
)

func TestSQLiteLedgerRecordsAndCounts(t *testing.T) {
	ledger, err := NewSQLiteLedger(":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteLedger() error = %v", err)
	}
	defer ledger.Close()

	gen, err := New(11)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		id, err := gen.Generate()
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		if err := ledger.Record(ctx, id, gen.WorkshopID(), GiftClassToy); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	count, err := ledger.CountByWorkshop(ctx, 11)
	if err != nil {
		t.Fatalf("CountByWorkshop() error = %v", err)
	}
	if count != 5 {
		t.Errorf("CountByWorkshop() = %d, want 5", count)
	}
}

func TestNoopLedgerDiscardsEverything(t *testing.T) {
	var ledger NoopLedger
	if err := ledger.Record(context.Background(), ID(1), 1, GiftClassToy); err != nil {
		t.Errorf("Record() error = %v", err)
	}
	if err := ledger.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
