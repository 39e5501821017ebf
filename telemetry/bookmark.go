package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkFirstDelivery     BookmarkType = "first_delivery"
	BookmarkTrailBreakthrough BookmarkType = "trail_breakthrough"
	BookmarkTrailCollapse     BookmarkType = "trail_collapse"
)

// Thresholds for bookmark detection.
const (
	breakthroughFactor    = 2.0 // deliveries over rolling average
	breakthroughMinCount  = 5
	collapseMinProductive = 5 // deliveries in the previous window
	minHistoryForAverages = 3
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type" db:"type"`
	Tick        int32        `csv:"tick" db:"tick"`
	Description string       `csv:"description" db:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"description", b.Description,
	)
}

// BookmarkDetector detects interesting moments in the simulation.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	delivered bool // a delivery has been seen
	last      WindowStats
	hasLast   bool
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < minHistoryForAverages {
		historySize = minHistoryForAverages
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	if b := bd.checkFirstDelivery(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkTrailBreakthrough(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkTrailCollapse(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	bd.addToHistory(stats)
	bd.last = stats
	bd.hasLast = true

	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) getHistory() []WindowStats {
	if bd.historyFull {
		return bd.history
	}
	return bd.history[:bd.historyIdx]
}

func (bd *BookmarkDetector) checkFirstDelivery(stats WindowStats) *Bookmark {
	if bd.delivered || stats.Deliveries == 0 {
		return nil
	}
	bd.delivered = true
	return &Bookmark{
		Type:        BookmarkFirstDelivery,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("First food delivered at %.1fs (%d this window)", stats.SimTimeSec, stats.Deliveries),
	}
}

func (bd *BookmarkDetector) checkTrailBreakthrough(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < minHistoryForAverages {
		return nil
	}

	var total int
	for _, h := range history {
		total += h.Deliveries
	}
	avg := float64(total) / float64(len(history))
	if avg == 0 {
		return nil
	}

	if float64(stats.Deliveries) > avg*breakthroughFactor && stats.Deliveries >= breakthroughMinCount {
		return &Bookmark{
			Type:        BookmarkTrailBreakthrough,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Deliveries %d are %.1fx average (%.1f)", stats.Deliveries, float64(stats.Deliveries)/avg, avg),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkTrailCollapse(stats WindowStats) *Bookmark {
	if !bd.hasLast || bd.last.Deliveries < collapseMinProductive || stats.Deliveries > 0 {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkTrailCollapse,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("Deliveries fell from %d to 0", bd.last.Deliveries),
	}
}
