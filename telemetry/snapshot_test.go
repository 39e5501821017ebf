package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/trails/components"
	"github.com/pthm-cable/trails/field"
)

func TestSnapshotSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()

	snapshot := &Snapshot{
		Version:     SnapshotVersion,
		RNGSeed:     42,
		WorldWidth:  1920,
		WorldHeight: 1080,
		Home:        [2]float64{759, -350},
		Food:        [2]float64{-750, 400},
		Tick:        1000,
		Agents: NewAgentStates([]components.AgentSnapshot{
			{ID: 7, X: 10, Y: -4, Heading: 1.5, Goal: components.SeekingHome},
		}),
		Channels: []ChannelState{NewChannelState(field.ChannelSnapshot{
			Channel:  field.ToFood,
			CellSize: 5,
			Cells:    map[field.Cell]float64{{X: 2, Y: 1}: 3, {X: 1, Y: 1}: 4, {X: 9, Y: 0}: 5},
		})},
		Bookmark: &Bookmark{
			Type:        BookmarkFirstDelivery,
			Tick:        1000,
			Description: "Test bookmark",
		},
	}

	path, err := SaveSnapshot(snapshot, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}
	if !strings.HasSuffix(path, "snapshot_1000_first_delivery.json") {
		t.Errorf("unexpected snapshot path %s", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("snapshot file not created: %v", err)
	}

	loaded, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}
	if loaded.Tick != 1000 || loaded.RNGSeed != 42 || loaded.Food != snapshot.Food {
		t.Errorf("header mismatch: %+v", loaded)
	}
	if len(loaded.Agents) != 1 || loaded.Agents[0].Goal != "seeking_home" {
		t.Errorf("unexpected agents %+v", loaded.Agents)
	}
	if loaded.Bookmark == nil || loaded.Bookmark.Type != BookmarkFirstDelivery {
		t.Errorf("bookmark not preserved: %+v", loaded.Bookmark)
	}

	cells := loaded.Channels[0].Cells
	if loaded.Channels[0].Name != "to_food" || len(cells) != 3 {
		t.Fatalf("unexpected channel %+v", loaded.Channels[0])
	}
	// Row-major order
	if cells[0].X != 9 || cells[1].X != 1 || cells[2].X != 2 {
		t.Errorf("cells not sorted: %+v", cells)
	}
}

func TestLoadSnapshotMissing(t *testing.T) {
	if _, err := LoadSnapshot(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing snapshot")
	}
}
