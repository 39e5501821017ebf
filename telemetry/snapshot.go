package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pthm-cable/trails/components"
	"github.com/pthm-cable/trails/field"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot holds the colony state at one tick.
type Snapshot struct {
	Version int   `json:"version"`
	RNGSeed int64 `json:"rng_seed"`

	WorldWidth  float64    `json:"world_width"`
	WorldHeight float64    `json:"world_height"`
	Home        [2]float64 `json:"home"`
	Food        [2]float64 `json:"food"`

	Tick int32 `json:"tick"`

	Agents   []AgentState   `json:"agents"`
	Channels []ChannelState `json:"channels"`

	Bookmark *Bookmark `json:"bookmark,omitempty"`
}

// AgentState holds one agent's state.
type AgentState struct {
	ID      uint32  `json:"id"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Heading float64 `json:"heading"`
	Goal    string  `json:"goal"`
}

// ChannelState holds the live cells of one pheromone channel.
type ChannelState struct {
	Name     string      `json:"name"`
	CellSize float64     `json:"cell_size"`
	Cells    []CellState `json:"cells"`
}

// CellState is one signal cell and its strength.
type CellState struct {
	X        int32   `json:"x"`
	Y        int32   `json:"y"`
	Strength float64 `json:"s"`
}

// NewAgentStates converts renderer snapshots to their JSON form.
func NewAgentStates(agents []components.AgentSnapshot) []AgentState {
	out := make([]AgentState, len(agents))
	for i, a := range agents {
		out[i] = AgentState{ID: a.ID, X: a.X, Y: a.Y, Heading: a.Heading, Goal: a.Goal.String()}
	}
	return out
}

// NewChannelState converts a channel snapshot to its JSON form, with cells
// in row-major order so output is stable.
func NewChannelState(s field.ChannelSnapshot) ChannelState {
	cells := make([]CellState, 0, len(s.Cells))
	for c, v := range s.Cells {
		cells = append(cells, CellState{X: c.X, Y: c.Y, Strength: v})
	}
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].Y != cells[j].Y {
			return cells[i].Y < cells[j].Y
		}
		return cells[i].X < cells[j].X
	})
	return ChannelState{Name: s.Channel.String(), CellSize: s.CellSize, Cells: cells}
}

// SaveSnapshot writes a snapshot to disk.
// Returns the filepath where it was saved.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	name := fmt.Sprintf("snapshot_%d", snapshot.Tick)
	if snapshot.Bookmark != nil {
		sanitized := strings.ReplaceAll(string(snapshot.Bookmark.Type), " ", "_")
		name = fmt.Sprintf("snapshot_%d_%s", snapshot.Tick, sanitized)
	}
	path := filepath.Join(dir, name+".json")

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	return path, nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return &snapshot, nil
}
