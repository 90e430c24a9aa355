package memory

import (
	"context"
	"testing"

	"excel-interview-service/internal/domain"
)

func TestReportStoreUpsertIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewReportStore()

	if err := store.Upsert(ctx, domain.Report{SessionID: "s1", FinalScore: 3.0}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := store.Upsert(ctx, domain.Report{SessionID: "s1", FinalScore: 4.5}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	if store.Len() != 1 {
		t.Fatalf("expected one row, got %d", store.Len())
	}
	report, ok := store.Get("s1")
	if !ok || report.FinalScore != 4.5 {
		t.Fatalf("expected the second write's value, got ok=%v report=%+v", ok, report)
	}
}
