// Package telemetry aggregates simulation statistics over tick windows and
// writes them to structured CSV output for experiment runs.
package telemetry

import "github.com/pthm-cable/anthill/components"

// Collector accumulates events within tick windows and produces WindowStats.
type Collector struct {
	windowTicks     uint64
	windowStartTick uint64

	// Event counters for the current window
	eggsLaid      int
	hatched       int
	matured       int
	deaths        int
	queenDeaths   int
	kills         int
	foodDelivered int
	tilesDug      int
	caveIns       int
	trailDeposits int
}

// NewCollector creates a stats collector with the given window length in
// ticks.
func NewCollector(windowTicks int) *Collector {
	if windowTicks < 1 {
		windowTicks = 1
	}
	return &Collector{windowTicks: uint64(windowTicks)}
}

// RecordEggLaid records a queen laying an egg.
func (c *Collector) RecordEggLaid() {
	c.eggsLaid++
}

// RecordHatch records an egg hatching into a larva.
func (c *Collector) RecordHatch() {
	c.hatched++
}

// RecordMature records a larva maturing into an adult.
func (c *Collector) RecordMature() {
	c.matured++
}

// RecordDeath records a removal, by role.
func (c *Collector) RecordDeath(role components.Role) {
	c.deaths++
	if role == components.RoleQueen {
		c.queenDeaths++
	}
}

// RecordKill records a combat kill.
func (c *Collector) RecordKill() {
	c.kills++
}

// RecordFoodDelivered records food units delivered to a nest.
func (c *Collector) RecordFoodDelivered(amount int) {
	c.foodDelivered += amount
}

// RecordDig records an excavated tile.
func (c *Collector) RecordDig() {
	c.tilesDug++
}

// RecordCaveIn records a collapsed tile.
func (c *Collector) RecordCaveIn() {
	c.caveIns++
}

// RecordDeposit records a pheromone trail deposit.
func (c *Collector) RecordDeposit() {
	c.trailDeposits++
}

// EndTick closes the current window if it is full, calling snapshot for the
// end-of-window world state and returning the aggregated stats. Returns
// ok=false while the window is still open.
func (c *Collector) EndTick(tick uint64, snapshot func() Snapshot) (WindowStats, bool) {
	if tick-c.windowStartTick < c.windowTicks {
		return WindowStats{}, false
	}

	snap := snapshot()
	stats := WindowStats{
		WindowEndTick: tick,
		Population:    snap.Population,
		Queens:        snap.Queens,
		Workers:       snap.Workers,
		Soldiers:      snap.Soldiers,
		Eggs:          snap.Eggs,
		Larvae:        snap.Larvae,
		FoodStored:    snap.FoodStored,
		EggsLaid:      c.eggsLaid,
		Hatched:       c.hatched,
		Matured:       c.matured,
		Deaths:        c.deaths,
		QueenDeaths:   c.queenDeaths,
		Kills:         c.kills,
		FoodDelivered: c.foodDelivered,
		TilesDug:      c.tilesDug,
		CaveIns:       c.caveIns,
		TrailDeposits: c.trailDeposits,

		FoodTrailCells:  snap.FoodTrail.ActiveCells,
		FoodTrailMean:   snap.FoodTrail.Mean,
		FoodTrailStdDev: snap.FoodTrail.StdDev,
		FoodTrailMax:    snap.FoodTrail.Max,
		FoodTrailP90:    snap.FoodTrail.P90,
	}

	c.windowStartTick = tick
	c.eggsLaid = 0
	c.hatched = 0
	c.matured = 0
	c.deaths = 0
	c.queenDeaths = 0
	c.kills = 0
	c.foodDelivered = 0
	c.tilesDug = 0
	c.caveIns = 0
	c.trailDeposits = 0

	return stats, true
}
