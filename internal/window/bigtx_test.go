package window

import (
	"testing"
	"time"

	"solanalysis/internal/domain"
)

func bigTx(sig string, amount float64, seen time.Time) domain.BigTransaction {
	return domain.BigTransaction{
		Signature: sig,
		Amount:    amount,
		Type:      domain.LabelTransfer,
		Timestamp: seen.UnixMilli(),
	}
}

func TestBigTxTracker_SortsDescending(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	tr := NewBigTxTracker(DefaultBigTxTTL, DefaultBigTxLimit)
	tr.Add(bigTx("a", 5, now))
	tr.Add(bigTx("b", 50, now))
	tr.Add(bigTx("c", 20, now))

	tr.Refresh(now)
	top := tr.Top()
	want := []float64{50, 20, 5}
	if len(top) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(top))
	}
	for i, w := range want {
		if top[i].Amount != w {
			t.Errorf("entry %d: expected %v, got %v", i, w, top[i].Amount)
		}
	}
}

func TestBigTxTracker_EvictsAfterTTL(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	tr := NewBigTxTracker(DefaultBigTxTTL, DefaultBigTxLimit)
	tr.Add(bigTx("a", 5, now))
	tr.Add(bigTx("b", 50, now))
	tr.Add(bigTx("c", 20, now))

	if dropped := tr.Refresh(now.Add(3599 * time.Second)); dropped != 0 {
		t.Fatalf("expected nothing dropped before the hour, got %d", dropped)
	}
	if dropped := tr.Refresh(now.Add(3600 * time.Second)); dropped != 3 {
		t.Errorf("expected 3 dropped, got %d", dropped)
	}
	if tr.Len() != 0 || len(tr.Top()) != 0 {
		t.Error("expected empty tracker")
	}
}

func TestBigTxTracker_NoDuplicates(t *testing.T) {
	now := time.Now()
	tr := NewBigTxTracker(time.Hour, 5)
	if !tr.Add(bigTx("a", 11, now)) {
		t.Fatal("first add should succeed")
	}
	if tr.Add(bigTx("a", 11, now)) {
		t.Error("duplicate signature accepted")
	}
	if tr.Len() != 1 {
		t.Errorf("expected 1 entry, got %d", tr.Len())
	}
}

func TestBigTxTracker_TopLimit(t *testing.T) {
	now := time.Now()
	tr := NewBigTxTracker(time.Hour, 5)
	for i := 0; i < 8; i++ {
		tr.Add(bigTx(string(rune('a'+i)), float64(11+i), now))
	}
	tr.Refresh(now)

	top := tr.Top()
	if len(top) != 5 {
		t.Fatalf("expected 5 entries, got %d", len(top))
	}
	if top[0].Amount != 18 || top[4].Amount != 14 {
		t.Errorf("unexpected order: first=%v last=%v", top[0].Amount, top[4].Amount)
	}
	if tr.Len() != 8 {
		t.Errorf("tracker should keep entries beyond the display limit, got %d", tr.Len())
	}
}

func TestBigTxTracker_ReAddAfterEviction(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	tr := NewBigTxTracker(time.Hour, 5)
	tr.Add(bigTx("a", 12, now))
	tr.Refresh(now.Add(2 * time.Hour))
	if !tr.Add(bigTx("a", 12, now.Add(2*time.Hour))) {
		t.Error("evicted signature should be accepted again")
	}
}
