// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	World     WorldConfig     `yaml:"world"`
	Physics   PhysicsConfig   `yaml:"physics"`
	Colony    ColonyConfig    `yaml:"colony"`
	Ant       AntConfig       `yaml:"ant"`
	Pheromone PheromoneConfig `yaml:"pheromone"`
	Cadence   CadenceConfig   `yaml:"cadence"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// WorldConfig holds simulation world dimensions.
// The world is centered on the origin with y pointing up.
type WorldConfig struct {
	Width  float64 `yaml:"width"`  // 0 = use screen width
	Height float64 `yaml:"height"` // 0 = use screen height
}

// PhysicsConfig holds the fixed simulation timestep.
type PhysicsConfig struct {
	DT float64 `yaml:"dt"`
}

// Point is a world-space coordinate in config files.
type Point struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// ColonyConfig holds landmark placement and population size.
type ColonyConfig struct {
	NumAnts          int     `yaml:"num_ants"`
	Home             Point   `yaml:"home"`
	Food             Point   `yaml:"food"`
	HomeRadius       float64 `yaml:"home_radius"`        // SeekingHome -> SeekingFood inside this
	FoodPickupRadius float64 `yaml:"food_pickup_radius"` // SeekingFood -> SeekingHome inside this
	AutoPullRadius   float64 `yaml:"auto_pull_radius"`   // steer straight at the goal landmark inside this
}

// AntConfig holds per-agent motion and deposit parameters.
type AntConfig struct {
	Speed           float64 `yaml:"speed"`            // world units per tick
	DepositStrength float64 `yaml:"deposit_strength"` // pheromone laid per deposit
	SteerFactor     float64 `yaml:"steer_factor"`     // damping on the seek force
	SteerJitterMin  float64 `yaml:"steer_jitter_min"` // random scale on the seek force
	SteerJitterMax  float64 `yaml:"steer_jitter_max"`
	WanderStrength  float64 `yaml:"wander_strength"` // exploration nudge magnitude
	Border          float64 `yaml:"border"`          // wall margin
	ZIndex          float64 `yaml:"z_index"`
}

// PheromoneConfig holds the signal field parameters.
type PheromoneConfig struct {
	SignalCellSize    float64  `yaml:"signal_cell_size"`   // world units per signal cell
	CacheCellSize     float64  `yaml:"cache_cell_size"`    // world units per steer-cache cell
	MaxStrength       float64  `yaml:"max_strength"`       // per-cell cap
	ReinforceFraction float64  `yaml:"reinforce_fraction"` // share of a deposit added to an existing cell
	DecayRate         float64  `yaml:"decay_rate"`         // subtracted per decay pass
	ScanRadius        float64  `yaml:"scan_radius"`        // world units
	ToFoodColor       [3]uint8 `yaml:"to_food_color"`
	ToHomeColor       [3]uint8 `yaml:"to_home_color"`
}

// CadenceConfig holds the interval, in simulated seconds, of every
// periodic pass. Each pass runs on its own timer.
type CadenceConfig struct {
	Decay           float64 `yaml:"decay"`
	Prune           float64 `yaml:"prune"`
	Reindex         float64 `yaml:"reindex"`
	CacheInvalidate float64 `yaml:"cache_invalidate"`
	WallCheck       float64 `yaml:"wall_check"`
	Deposit         float64 `yaml:"deposit"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"`
	BookmarkHistorySize int     `yaml:"bookmark_history_size"`
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	WorldW, WorldH     float64 // effective world size
	HalfW, HalfH       float64
	HomeRadiusSq       float64
	FoodPickupRadiusSq float64
	AutoPullRadiusSq   float64
	TicksPerSecond     float64
}

// Default returns a fresh copy of the embedded defaults.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used. The result is validated.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.ComputeDerived()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// ComputeDerived calculates values derived from loaded config.
// Call again after mutating a Config in place.
func (c *Config) ComputeDerived() {
	w := c.World.Width
	if w == 0 {
		w = float64(c.Screen.Width)
	}
	h := c.World.Height
	if h == 0 {
		h = float64(c.Screen.Height)
	}
	c.Derived.WorldW = w
	c.Derived.WorldH = h
	c.Derived.HalfW = w / 2
	c.Derived.HalfH = h / 2

	c.Derived.HomeRadiusSq = c.Colony.HomeRadius * c.Colony.HomeRadius
	c.Derived.FoodPickupRadiusSq = c.Colony.FoodPickupRadius * c.Colony.FoodPickupRadius
	c.Derived.AutoPullRadiusSq = c.Colony.AutoPullRadius * c.Colony.AutoPullRadius

	if c.Physics.DT > 0 {
		c.Derived.TicksPerSecond = 1 / c.Physics.DT
	}
}

// Validate reports every setting that would silently break the simulation.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.Derived.WorldW > 0 && c.Derived.WorldH > 0,
		"world size must be positive, got %gx%g", c.Derived.WorldW, c.Derived.WorldH)
	check(c.Physics.DT > 0, "physics.dt must be positive, got %g", c.Physics.DT)

	check(c.Colony.NumAnts >= 0, "colony.num_ants must not be negative, got %d", c.Colony.NumAnts)
	check(c.Colony.HomeRadius >= 0, "colony.home_radius must not be negative, got %g", c.Colony.HomeRadius)
	check(c.Colony.FoodPickupRadius >= 0, "colony.food_pickup_radius must not be negative, got %g", c.Colony.FoodPickupRadius)
	check(c.Colony.AutoPullRadius >= 0, "colony.auto_pull_radius must not be negative, got %g", c.Colony.AutoPullRadius)

	check(c.Ant.Speed > 0, "ant.speed must be positive, got %g", c.Ant.Speed)
	check(c.Ant.DepositStrength >= 0, "ant.deposit_strength must not be negative, got %g", c.Ant.DepositStrength)
	check(c.Ant.SteerJitterMin <= c.Ant.SteerJitterMax,
		"ant.steer_jitter_min (%g) exceeds steer_jitter_max (%g)", c.Ant.SteerJitterMin, c.Ant.SteerJitterMax)
	check(c.Ant.WanderStrength >= 0, "ant.wander_strength must not be negative, got %g", c.Ant.WanderStrength)
	check(c.Ant.Border >= 0, "ant.border must not be negative, got %g", c.Ant.Border)
	check(2*c.Ant.Border < c.Derived.WorldW && 2*c.Ant.Border < c.Derived.WorldH,
		"ant.border %g leaves no interior in a %gx%g world", c.Ant.Border, c.Derived.WorldW, c.Derived.WorldH)

	p := c.Pheromone
	check(p.SignalCellSize > 0, "pheromone.signal_cell_size must be positive, got %g", p.SignalCellSize)
	check(p.CacheCellSize > 0, "pheromone.cache_cell_size must be positive, got %g", p.CacheCellSize)
	check(p.CacheCellSize >= p.SignalCellSize,
		"pheromone.cache_cell_size (%g) must not be finer than signal_cell_size (%g)", p.CacheCellSize, p.SignalCellSize)
	check(p.MaxStrength > 0, "pheromone.max_strength must be positive, got %g", p.MaxStrength)
	check(p.ReinforceFraction >= 0 && p.ReinforceFraction <= 1,
		"pheromone.reinforce_fraction must be in [0,1], got %g", p.ReinforceFraction)
	check(p.DecayRate >= 0, "pheromone.decay_rate must not be negative, got %g", p.DecayRate)
	check(p.ScanRadius >= 0, "pheromone.scan_radius must not be negative, got %g", p.ScanRadius)

	cd := c.Cadence
	for _, iv := range []struct {
		name string
		v    float64
	}{
		{"decay", cd.Decay},
		{"prune", cd.Prune},
		{"reindex", cd.Reindex},
		{"cache_invalidate", cd.CacheInvalidate},
		{"wall_check", cd.WallCheck},
		{"deposit", cd.Deposit},
	} {
		check(iv.v > 0, "cadence.%s must be positive, got %g", iv.name, iv.v)
	}

	return errors.Join(errs...)
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// MarshalYAMLString returns the configuration as a YAML document.
func (c *Config) MarshalYAMLString() (string, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("marshaling config: %w", err)
	}
	return string(data), nil
}
