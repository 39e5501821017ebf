package main

import (
	"flag"
	"log/slog"
	"os"
	"strings"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/trails/config"
	"github.com/pthm-cable/trails/game"
	"github.com/pthm-cable/trails/renderer"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	statsWindow := flag.Float64("stats-window", 0, "Stats window size in seconds (0 = use config)")
	snapshotDir := flag.String("snapshot-dir", "", "Directory for bookmark snapshot files")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	ledgerPath := flag.String("ledger", "", "SQLite run ledger path (empty = disabled)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	stepsPerUpdate := flag.Int("steps-per-update", 1, "Simulation ticks per update call (higher = faster headless runs)")
	workers := flag.Int("workers", 0, "Agent update workers (0 = GOMAXPROCS, 1 = serial and reproducible)")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(*logLevel)}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	opts := game.Options{
		Seed:           rngSeed,
		LogStats:       *logStats,
		StatsWindowSec: *statsWindow,
		SnapshotDir:    *snapshotDir,
		OutputDir:      *outputDir,
		LedgerPath:     *ledgerPath,
		Headless:       *headless,
		StepsPerUpdate: *stepsPerUpdate,
		Workers:        *workers,
	}

	if *headless {
		os.Exit(runHeadless(cfg, opts, *maxTicks))
	}
	os.Exit(runWindow(cfg, opts, *maxTicks))
}

// runHeadless steps the colony on the CPU only, with no raylib calls.
func runHeadless(cfg *config.Config, opts game.Options, maxTicks int) int {
	g, err := game.NewGame(cfg, opts)
	if err != nil {
		slog.Error("failed to create game", "error", err)
		return 1
	}
	defer closeGame(g)

	slog.Info("starting headless simulation",
		"seed", opts.Seed,
		"stats_window", opts.StatsWindowSec,
		"max_ticks", maxTicks,
		"steps_per_update", opts.StepsPerUpdate,
	)

	for {
		g.UpdateHeadless()

		if maxTicks > 0 && int(g.Tick()) >= maxTicks {
			slog.Info("max ticks reached", "tick", g.Tick(), "deliveries", g.Deliveries())
			return 0
		}
	}
}

// runWindow opens a raylib window and draws the colony every frame.
func runWindow(cfg *config.Config, opts game.Options, maxTicks int) int {
	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Trails")
	defer rl.CloseWindow()

	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	g, err := game.NewGame(cfg, opts)
	if err != nil {
		slog.Error("failed to create game", "error", err)
		return 1
	}
	defer closeGame(g)

	v := renderer.NewViewer(cfg)
	defer v.Unload()

	for !rl.WindowShouldClose() {
		v.HandleInput(g)
		g.Update()

		rl.BeginDrawing()
		v.Draw(g, g)
		rl.EndDrawing()

		if maxTicks > 0 && int(g.Tick()) >= maxTicks {
			break
		}
	}
	return 0
}

func closeGame(g *game.Game) {
	if err := g.Close(); err != nil {
		slog.Error("failed to close outputs", "error", err)
	}
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
