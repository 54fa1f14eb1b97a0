// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	World     WorldConfig     `yaml:"world"`
	Pheromone PheromoneConfig `yaml:"pheromone"`
	Spatial   SpatialConfig   `yaml:"spatial"`
	Spawn     SpawnConfig     `yaml:"spawn"`
	Colony    ColonyConfig    `yaml:"colony"`
	Movement  MovementConfig  `yaml:"movement"`
	Food      FoodConfig      `yaml:"food"`
	Combat    CombatConfig    `yaml:"combat"`
	Dig       DigConfig       `yaml:"dig"`
	Hazard    HazardConfig    `yaml:"hazard"`
	Lifecycle LifecycleConfig `yaml:"lifecycle"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// WorldConfig holds terrain dimensions and generation parameters.
type WorldConfig struct {
	Width        int     `yaml:"width"`  // tiles
	Height       int     `yaml:"height"` // tiles
	SurfaceLevel float64 `yaml:"surface_level"` // fraction of height where the surface sits
	SurfaceNoise float64 `yaml:"surface_noise"` // surface height variation amplitude in tiles
	NoiseScale   float64 `yaml:"noise_scale"`   // horizontal noise frequency
	CaveScale    float64 `yaml:"cave_scale"`    // cave noise frequency
	CaveLevel    float64 `yaml:"cave_level"`    // noise threshold above which soil becomes cave air
	RockDepth    float64 `yaml:"rock_depth"`    // fraction of height below which soil becomes rock
}

// PheromoneConfig holds the signal field parameters.
// Decay rates differ per channel by intended signal lifetime:
// danger fades fastest, home slowest.
type PheromoneConfig struct {
	MaxConcentration   float64 `yaml:"max_concentration"`
	DecayFood          float64 `yaml:"decay_food"`
	DecayHome          float64 `yaml:"decay_home"`
	DecayDanger        float64 `yaml:"decay_danger"`
	SnapEpsilon        float64 `yaml:"snap_epsilon"`        // values below this snap to zero after decay
	DiffusionRate      float64 `yaml:"diffusion_rate"`      // fraction spread to neighbors per tick
	GradientThreshold  float64 `yaml:"gradient_threshold"`  // neighbors below this are invisible to gradient sampling
	DepositFood        float64 `yaml:"deposit_food"`        // base amount laid by carriers
	DepositHome        float64 `yaml:"deposit_home"`        // base amount laid near the nest
	DepositDanger      float64 `yaml:"deposit_danger"`      // base amount laid by combat
	HomeDepositRadius  float64 `yaml:"home_deposit_radius"` // Manhattan radius for proximity-scaled home deposits
	DigDepositRadius   float64 `yaml:"dig_deposit_radius"`
	DigDepositFraction float64 `yaml:"dig_deposit_fraction"` // diggers lay this fraction of the home base amount
}

// SpatialConfig holds spatial index parameters.
type SpatialConfig struct {
	CellSize int `yaml:"cell_size"` // bucket size in tiles; 8 fits a 3x3 adjacency query
}

// SpawnConfig holds world population setup.
type SpawnConfig struct {
	NumColonies       int `yaml:"num_colonies"`
	InitialWorkers    int `yaml:"initial_workers"`
	MinColonyDistance int `yaml:"min_colony_distance"` // Manhattan tiles between nests
	NumFoodSources    int `yaml:"num_food_sources"`
}

// ColonyConfig holds per-colony starting state.
type ColonyConfig struct {
	InitialFood int `yaml:"initial_food"`
}

// MovementConfig holds movement AI chances, all out of 255. Byte thresholds
// keep the per-ant rolls cheap.
type MovementConfig struct {
	QueenMoveChance int `yaml:"queen_move_chance"`
	IdleMoveChance  int `yaml:"idle_move_chance"`
}

// FoodConfig holds foraging parameters.
type FoodConfig struct {
	InitialAmount   int     `yaml:"initial_amount"`
	RegrowInterval  int     `yaml:"regrow_interval"` // ticks between regrow passes
	RegrowRate      int     `yaml:"regrow_rate"`
	DepositDistance int     `yaml:"deposit_distance"` // Manhattan tiles from nest that count as home
	FoodPerTrip     int     `yaml:"food_per_trip"`
	TrailThreshold  float64 `yaml:"trail_threshold"` // min local food signal before following a trail
}

// CombatConfig holds combat resolution parameters.
type CombatConfig struct {
	Interval            int     `yaml:"interval"` // resolve combat every N ticks
	BaseDamage          int     `yaml:"base_damage"`
	DamageRandomRange   int     `yaml:"damage_random_range"`
	SoldierStrength     int     `yaml:"soldier_strength"`
	WorkerStrength      int     `yaml:"worker_strength"`
	DefaultHealth       int     `yaml:"default_health"`
	FightThreshold      float64 `yaml:"fight_threshold"`      // danger level that sends soldiers in
	StopFightThreshold  float64 `yaml:"stop_fight_threshold"` // danger level below which soldiers stand down
	FleeThreshold       float64 `yaml:"flee_threshold"`       // danger level that makes workers run
	StopFleeThreshold   float64 `yaml:"stop_flee_threshold"`
}

// DigConfig holds excavation parameters.
type DigConfig struct {
	DigChance         int `yaml:"dig_chance"`          // out of 255 per tick while digging
	ReinforceChance   int `yaml:"reinforce_chance"`    // out of 255 per adjacent wall
	StartDigChance    int `yaml:"start_dig_chance"`    // out of 255 for a grounded wanderer
	ReturnChanceDeep  int `yaml:"return_chance_deep"`  // out of 255 while tunneling underground
	ReturnChanceShallow int `yaml:"return_chance_shallow"`
	DistractionChance int `yaml:"distraction_chance"` // out of 255 that a returner digs again
}

// HazardConfig holds cave-in parameters.
type HazardConfig struct {
	CaveInInterval      int `yaml:"cave_in_interval"` // check every N ticks
	DenseStabilityBonus int `yaml:"dense_stability_bonus"`
}

// LifecycleConfig holds reproduction and aging parameters, all in ticks.
type LifecycleConfig struct {
	EggHatchTime        int `yaml:"egg_hatch_time"`
	LarvaMatureTime     int `yaml:"larva_mature_time"`
	QueenLayInterval    int `yaml:"queen_lay_interval"`
	FoodPerEgg          int `yaml:"food_per_egg"`
	WorkerLifespan      int `yaml:"worker_lifespan"`
	SoldierLifespan     int `yaml:"soldier_lifespan"`
	QueenLifespan       int `yaml:"queen_lifespan"`
	FoodConsumeInterval int `yaml:"food_consume_interval"`
	LarvaFoodCost       int `yaml:"larva_food_cost"`
	AntFoodCost         int `yaml:"ant_food_cost"`
	WorkerRatio         int `yaml:"worker_ratio"` // out of 255; remainder mature into soldiers
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	WindowTicks         int `yaml:"window_ticks"` // stats window length
	PerfCollectorWindow int `yaml:"perf_collector_window"`
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if
// path is empty. Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects configurations the simulation cannot run with. Invalid
// parameters abort startup; nothing is checked again mid-simulation.
func (c *Config) Validate() error {
	if c.World.Width <= 0 || c.World.Height <= 0 {
		return fmt.Errorf("config: world dimensions must be positive, got %dx%d", c.World.Width, c.World.Height)
	}
	if c.Spawn.NumColonies <= 0 {
		return fmt.Errorf("config: num_colonies must be positive, got %d", c.Spawn.NumColonies)
	}
	if c.Spatial.CellSize <= 0 {
		return fmt.Errorf("config: spatial cell_size must be positive, got %d", c.Spatial.CellSize)
	}
	if c.Pheromone.MaxConcentration <= 0 {
		return fmt.Errorf("config: max_concentration must be positive, got %g", c.Pheromone.MaxConcentration)
	}
	for name, rate := range map[string]float64{
		"decay_food":   c.Pheromone.DecayFood,
		"decay_home":   c.Pheromone.DecayHome,
		"decay_danger": c.Pheromone.DecayDanger,
	} {
		if rate < 0 || rate >= 1 {
			return fmt.Errorf("config: %s must be in [0,1), got %g", name, rate)
		}
	}
	if c.Pheromone.DiffusionRate < 0 || c.Pheromone.DiffusionRate >= 1 {
		return fmt.Errorf("config: diffusion_rate must be in [0,1), got %g", c.Pheromone.DiffusionRate)
	}
	if c.Pheromone.SnapEpsilon < 0 {
		return fmt.Errorf("config: snap_epsilon must be non-negative, got %g", c.Pheromone.SnapEpsilon)
	}
	if c.Pheromone.GradientThreshold < 0 {
		return fmt.Errorf("config: gradient_threshold must be non-negative, got %g", c.Pheromone.GradientThreshold)
	}
	return nil
}

// WriteYAML writes the current configuration to a file, for experiment
// output snapshots.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
