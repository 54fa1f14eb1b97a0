// Package game wires the simulation together: the ECS world, the terrain,
// the pheromone field, the spatial index, and the per-tick system order.
package game

import (
	"fmt"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/anthill/components"
	"github.com/pthm-cable/anthill/config"
	"github.com/pthm-cable/anthill/systems"
	"github.com/pthm-cable/anthill/telemetry"
)

// Options configures a simulation run.
type Options struct {
	Seed     int64
	Output   *telemetry.OutputManager // nil disables CSV output
	LogStats bool                     // emit window stats via slog
}

// Game holds the complete simulation state. It is the tick orchestrator: it
// owns the field and the spatial index and hands them to exactly one phase
// at a time, so no locking is needed in the single-threaded tick.
type Game struct {
	world *ecs.World
	rng   *rand.Rand
	cfg   *config.Config

	// Ant entity access
	antMapper *ecs.Map4[
		components.Position,
		components.Ant,
		components.ColonyMember,
		components.Age,
	]
	antFilter *ecs.Filter4[
		components.Position,
		components.Ant,
		components.ColonyMember,
		components.Age,
	]

	// Food source access
	foodMapper *ecs.Map2[components.Position, components.FoodSource]
	foodFilter *ecs.Filter2[components.Position, components.FoodSource]

	// Individual component mappers for lookups and lazy additions
	posMap     *ecs.Map1[components.Position]
	antMap     *ecs.Map1[components.Ant]
	memberMap  *ecs.Map1[components.ColonyMember]
	fighterMap *ecs.Map1[components.Fighter]
	carryMap   *ecs.Map1[components.Carrying]
	deadMap    *ecs.Map1[components.Dead]
	deadFilter *ecs.Filter1[components.Dead]

	// Environment
	terrain    *systems.Terrain
	pheromones *systems.PheromoneField
	spatial    *systems.SpatialGrid
	colonies   []ColonyState

	// Telemetry
	collector *telemetry.Collector
	perf      *telemetry.PerfCollector
	output    *telemetry.OutputManager
	logStats  bool

	// Scratch buffers reused across ticks
	queryScratch []systems.AgentRef
	fieldScratch []float64

	tick uint64
}

// NewGame builds a world from the loaded configuration: terrain generation,
// field and index allocation, colony placement, and the initial population.
func NewGame(opts Options) (*Game, error) {
	cfg := config.Cfg()
	world := ecs.NewWorld()
	rng := rand.New(rand.NewSource(opts.Seed))

	terrain, err := systems.GenerateTerrain(cfg.World.Width, cfg.World.Height, opts.Seed, systems.TerrainParams{
		SurfaceLevel: cfg.World.SurfaceLevel,
		SurfaceNoise: cfg.World.SurfaceNoise,
		NoiseScale:   cfg.World.NoiseScale,
		CaveScale:    cfg.World.CaveScale,
		CaveLevel:    cfg.World.CaveLevel,
		RockDepth:    cfg.World.RockDepth,
	})
	if err != nil {
		return nil, fmt.Errorf("generating terrain: %w", err)
	}

	pheromones, err := systems.NewPheromoneField(
		terrain.Width, terrain.Height, cfg.Spawn.NumColonies, &cfg.Pheromone, rng)
	if err != nil {
		return nil, fmt.Errorf("creating pheromone field: %w", err)
	}

	spatial, err := systems.NewSpatialGrid(terrain.Width, terrain.Height, cfg.Spatial.CellSize)
	if err != nil {
		return nil, fmt.Errorf("creating spatial grid: %w", err)
	}

	g := &Game{
		world: world,
		rng:   rng,
		cfg:   cfg,
		antMapper: ecs.NewMap4[
			components.Position,
			components.Ant,
			components.ColonyMember,
			components.Age,
		](world),
		antFilter: ecs.NewFilter4[
			components.Position,
			components.Ant,
			components.ColonyMember,
			components.Age,
		](world),
		foodMapper: ecs.NewMap2[components.Position, components.FoodSource](world),
		foodFilter: ecs.NewFilter2[components.Position, components.FoodSource](world),
		posMap:     ecs.NewMap1[components.Position](world),
		antMap:     ecs.NewMap1[components.Ant](world),
		memberMap:  ecs.NewMap1[components.ColonyMember](world),
		fighterMap: ecs.NewMap1[components.Fighter](world),
		carryMap:   ecs.NewMap1[components.Carrying](world),
		deadMap:    ecs.NewMap1[components.Dead](world),
		deadFilter: ecs.NewFilter1[components.Dead](world),
		terrain:    terrain,
		pheromones: pheromones,
		spatial:    spatial,
		collector:  telemetry.NewCollector(cfg.Telemetry.WindowTicks),
		perf:       telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		output:     opts.Output,
		logStats:   opts.LogStats,
	}

	g.spawnColonies()
	g.spawnFoodSources()

	return g, nil
}

// Tick returns the current tick number.
func (g *Game) Tick() uint64 {
	return g.tick
}

// Colonies returns the colony registry.
func (g *Game) Colonies() []ColonyState {
	return g.colonies
}

// Terrain returns the terrain grid.
func (g *Game) Terrain() *systems.Terrain {
	return g.terrain
}

// Pheromones returns the pheromone field.
func (g *Game) Pheromones() *systems.PheromoneField {
	return g.pheromones
}
