package telemetry

import (
	"path/filepath"
	"testing"
)

func openTestLedger(t *testing.T) *Ledger {
	t.Helper()
	l, err := OpenLedger(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("OpenLedger failed: %v", err)
	}
	t.Cleanup(func() { l.Close() })
	return l
}

func TestLedgerRequiresRun(t *testing.T) {
	l := openTestLedger(t)
	if err := l.RecordWindow(WindowStats{}); err == nil {
		t.Error("expected error recording a window before StartRun")
	}
	if err := l.RecordBookmark(Bookmark{}); err == nil {
		t.Error("expected error recording a bookmark before StartRun")
	}
}

func TestLedgerRoundtrip(t *testing.T) {
	l := openTestLedger(t)

	id, err := l.StartRun(42, "colony:\n  num_ants: 10\n")
	if err != nil {
		t.Fatalf("StartRun failed: %v", err)
	}
	if id == "" || l.RunID() != id {
		t.Fatalf("expected run id to be set, got %q / %q", id, l.RunID())
	}

	for i := 1; i <= 3; i++ {
		s := WindowStats{
			WindowStartTick: int32((i - 1) * 600),
			WindowEndTick:   int32(i * 600),
			SimTimeSec:      float64(i * 10),
			Deliveries:      i * 2,
			TripMean:        12.5,
			CacheHitRate:    0.8,
		}
		if err := l.RecordWindow(s); err != nil {
			t.Fatalf("RecordWindow failed: %v", err)
		}
	}
	if err := l.RecordBookmark(Bookmark{Type: BookmarkFirstDelivery, Tick: 600, Description: "first"}); err != nil {
		t.Fatalf("RecordBookmark failed: %v", err)
	}
	if err := l.FinishRun(1800); err != nil {
		t.Fatalf("FinishRun failed: %v", err)
	}

	runs, err := l.Runs()
	if err != nil {
		t.Fatalf("Runs failed: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != id || runs[0].Seed != 42 || runs[0].EndTick != 1800 {
		t.Errorf("unexpected runs %+v", runs)
	}

	windows, err := l.Windows(id)
	if err != nil {
		t.Fatalf("Windows failed: %v", err)
	}
	if len(windows) != 3 {
		t.Fatalf("expected 3 windows, got %d", len(windows))
	}
	if windows[2].WindowStartTick != 1200 || windows[2].Deliveries != 6 || windows[2].TripMean != 12.5 {
		t.Errorf("unexpected last window %+v", windows[2])
	}

	bms, err := l.Bookmarks(id)
	if err != nil {
		t.Fatalf("Bookmarks failed: %v", err)
	}
	if len(bms) != 1 || bms[0].Type != BookmarkFirstDelivery {
		t.Errorf("unexpected bookmarks %+v", bms)
	}
}
