package telemetry

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Ledger records runs, their window stats and bookmarks in SQLite so
// experiments can be compared after the fact.
type Ledger struct {
	conn  *sqlx.DB
	runID string
}

// RunRecord is one row of the runs table.
type RunRecord struct {
	ID        string `db:"id"`
	Seed      int64  `db:"seed"`
	StartedAt string `db:"started_at"`
	EndTick   int32  `db:"end_tick"`
	Config    string `db:"config_yaml"`
}

var windowColumns = []string{
	"window_start", "window_end", "sim_time",
	"seeking_food", "seeking_home", "pickups", "deliveries",
	"trip_mean", "trip_p50", "trip_p90",
	"to_food_cells", "to_home_cells", "to_food_mean_strength", "to_home_mean_strength",
	"cache_hit_rate", "pruned_cells",
	"explore_steps", "dropped_steps", "wall_corrections",
}

// OpenLedger opens or creates a ledger database at path.
func OpenLedger(path string) (*Ledger, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}

	l := &Ledger{conn: conn}
	if err := l.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate ledger: %w", err)
	}
	return l, nil
}

// Close closes the database connection.
func (l *Ledger) Close() error {
	return l.conn.Close()
}

func (l *Ledger) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		seed INTEGER NOT NULL,
		started_at TEXT NOT NULL,
		end_tick INTEGER NOT NULL DEFAULT 0,
		config_yaml TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS windows (
		run_id TEXT NOT NULL REFERENCES runs(id),
		window_start INTEGER NOT NULL,
		window_end INTEGER NOT NULL,
		sim_time REAL NOT NULL,
		seeking_food INTEGER NOT NULL,
		seeking_home INTEGER NOT NULL,
		pickups INTEGER NOT NULL,
		deliveries INTEGER NOT NULL,
		trip_mean REAL NOT NULL,
		trip_p50 REAL NOT NULL,
		trip_p90 REAL NOT NULL,
		to_food_cells INTEGER NOT NULL,
		to_home_cells INTEGER NOT NULL,
		to_food_mean_strength REAL NOT NULL,
		to_home_mean_strength REAL NOT NULL,
		cache_hit_rate REAL NOT NULL,
		pruned_cells INTEGER NOT NULL,
		explore_steps INTEGER NOT NULL,
		dropped_steps INTEGER NOT NULL,
		wall_corrections INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS bookmarks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES runs(id),
		type TEXT NOT NULL,
		tick INTEGER NOT NULL,
		description TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_windows_run ON windows(run_id, window_end);
	CREATE INDEX IF NOT EXISTS idx_bookmarks_run ON bookmarks(run_id);
	`
	_, err := l.conn.Exec(schema)
	return err
}

// StartRun registers a new run and makes it the target of later writes.
// It returns the generated run ID.
func (l *Ledger) StartRun(seed int64, configYAML string) (string, error) {
	id := uuid.New().String()
	_, err := l.conn.Exec(
		"INSERT INTO runs (id, seed, started_at, config_yaml) VALUES (?, ?, ?, ?)",
		id, seed, time.Now().UTC().Format(time.RFC3339), configYAML,
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	l.runID = id
	return id, nil
}

// RunID returns the current run, or "" before StartRun.
func (l *Ledger) RunID() string {
	return l.runID
}

type windowRow struct {
	RunID string `db:"run_id"`
	WindowStats
}

// RecordWindow appends window stats to the current run.
func (l *Ledger) RecordWindow(stats WindowStats) error {
	if l.runID == "" {
		return fmt.Errorf("record window: no run started")
	}
	query := fmt.Sprintf("INSERT INTO windows (run_id, %s) VALUES (:run_id, :%s)",
		strings.Join(windowColumns, ", "), strings.Join(windowColumns, ", :"))
	if _, err := l.conn.NamedExec(query, windowRow{RunID: l.runID, WindowStats: stats}); err != nil {
		return fmt.Errorf("insert window: %w", err)
	}
	return nil
}

// RecordBookmark appends a bookmark to the current run.
func (l *Ledger) RecordBookmark(b Bookmark) error {
	if l.runID == "" {
		return fmt.Errorf("record bookmark: no run started")
	}
	_, err := l.conn.Exec(
		"INSERT INTO bookmarks (run_id, type, tick, description) VALUES (?, ?, ?, ?)",
		l.runID, string(b.Type), b.Tick, b.Description,
	)
	if err != nil {
		return fmt.Errorf("insert bookmark: %w", err)
	}
	return nil
}

// FinishRun stores the final tick of the current run.
func (l *Ledger) FinishRun(endTick int32) error {
	if l.runID == "" {
		return nil
	}
	if _, err := l.conn.Exec("UPDATE runs SET end_tick = ? WHERE id = ?", endTick, l.runID); err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// Runs lists every recorded run, oldest first.
func (l *Ledger) Runs() ([]RunRecord, error) {
	var runs []RunRecord
	err := l.conn.Select(&runs, "SELECT id, seed, started_at, end_tick, config_yaml FROM runs ORDER BY started_at, rowid")
	return runs, err
}

// Windows returns the window stats of a run in tick order.
func (l *Ledger) Windows(runID string) ([]WindowStats, error) {
	var windows []WindowStats
	query := fmt.Sprintf("SELECT %s FROM windows WHERE run_id = ? ORDER BY window_end", strings.Join(windowColumns, ", "))
	err := l.conn.Select(&windows, query, runID)
	return windows, err
}

// Bookmarks returns the bookmarks of a run in tick order.
func (l *Ledger) Bookmarks(runID string) ([]Bookmark, error) {
	var bms []Bookmark
	err := l.conn.Select(&bms, "SELECT type, tick, description FROM bookmarks WHERE run_id = ? ORDER BY tick, id", runID)
	return bms, err
}
