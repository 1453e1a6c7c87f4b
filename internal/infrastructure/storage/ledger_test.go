package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"NewsDigest/internal/domain"
)

func openLedger(t *testing.T) *Ledger {
	t.Helper()
	l, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("open ledger: %v", err)
	}
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func TestAcquireClaimsFreshDate(t *testing.T) {
	t.Parallel()

	l := openLedger(t)
	ctx := context.Background()

	ok, err := l.Acquire(ctx, "2026-08-31", "run-1")
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if !ok {
		t.Fatal("fresh date must be claimable")
	}

	status, err := l.Status(ctx, "2026-08-31")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status != domain.RunCollecting {
		t.Errorf("status = %q, want %q", status, domain.RunCollecting)
	}
}

func TestAcquireRefusesClaimedDate(t *testing.T) {
	t.Parallel()

	l := openLedger(t)
	ctx := context.Background()

	if ok, _ := l.Acquire(ctx, "2026-08-31", "run-1"); !ok {
		t.Fatal("first claim failed")
	}

	ok, err := l.Acquire(ctx, "2026-08-31", "run-2")
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if ok {
		t.Fatal("in-flight date must not be claimable a second time")
	}
}

func TestAcquireRefusesCompletedDate(t *testing.T) {
	t.Parallel()

	l := openLedger(t)
	ctx := context.Background()

	if ok, _ := l.Acquire(ctx, "2026-08-31", "run-1"); !ok {
		t.Fatal("first claim failed")
	}
	if err := l.Record(ctx, domain.RunRecord{
		ID:     "run-1",
		Date:   "2026-08-31",
		Status: domain.RunCompleted,
	}); err != nil {
		t.Fatalf("record: %v", err)
	}

	ok, err := l.Acquire(ctx, "2026-08-31", "run-2")
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if ok {
		t.Fatal("completed date must not be claimable")
	}
}

func TestAcquireRetakesAbortedDate(t *testing.T) {
	t.Parallel()

	l := openLedger(t)
	ctx := context.Background()

	if ok, _ := l.Acquire(ctx, "2026-08-31", "run-1"); !ok {
		t.Fatal("first claim failed")
	}
	if err := l.Record(ctx, domain.RunRecord{
		ID:     "run-1",
		Date:   "2026-08-31",
		Status: domain.RunAborted,
		Note:   "all sources empty or failed",
	}); err != nil {
		t.Fatalf("record: %v", err)
	}

	ok, err := l.Acquire(ctx, "2026-08-31", "run-2")
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if !ok {
		t.Fatal("aborted date must be retakable")
	}

	status, err := l.Status(ctx, "2026-08-31")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status != domain.RunCollecting {
		t.Errorf("retake must reset status, got %q", status)
	}
}

func TestRecordStoresTerminalState(t *testing.T) {
	t.Parallel()

	l := openLedger(t)
	ctx := context.Background()

	if ok, _ := l.Acquire(ctx, "2026-08-31", "run-1"); !ok {
		t.Fatal("claim failed")
	}

	rec := domain.RunRecord{
		ID:               "run-1",
		Date:             "2026-08-31",
		Status:           domain.RunCompleted,
		DegradedSections: 2,
		DeliveryFailed:   true,
		StartedAt:        time.Now().UTC(),
		FinishedAt:       time.Now().UTC(),
	}
	if err := l.Record(ctx, rec); err != nil {
		t.Fatalf("record: %v", err)
	}

	status, err := l.Status(ctx, "2026-08-31")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status != domain.RunCompleted {
		t.Errorf("status = %q", status)
	}
}

func TestStatusEmptyForUnknownDate(t *testing.T) {
	t.Parallel()

	l := openLedger(t)

	status, err := l.Status(context.Background(), "1999-01-01")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status != "" {
		t.Errorf("status = %q, want empty", status)
	}
}

func TestDatesAreIndependent(t *testing.T) {
	t.Parallel()

	l := openLedger(t)
	ctx := context.Background()

	if ok, _ := l.Acquire(ctx, "2026-08-31", "run-1"); !ok {
		t.Fatal("claim failed")
	}
	ok, err := l.Acquire(ctx, "2026-09-01", "run-2")
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if !ok {
		t.Fatal("a different date must be claimable")
	}
}
