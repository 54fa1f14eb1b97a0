package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// FieldSummary describes the distribution of non-zero concentrations in a
// pheromone channel at a point in time.
type FieldSummary struct {
	ActiveCells int
	Mean        float64
	StdDev      float64
	Max         float64
	P90         float64
}

// SummarizeField computes distribution statistics over the given non-zero
// concentration values. The slice is sorted in place.
func SummarizeField(values []float64) FieldSummary {
	if len(values) == 0 {
		return FieldSummary{}
	}
	sort.Float64s(values)
	return FieldSummary{
		ActiveCells: len(values),
		Mean:        stat.Mean(values, nil),
		StdDev:      stat.StdDev(values, nil),
		Max:         values[len(values)-1],
		P90:         stat.Quantile(0.90, stat.Empirical, values, nil),
	}
}

// Snapshot is the end-of-window world state sampled by the game.
type Snapshot struct {
	Population int
	Queens     int
	Workers    int
	Soldiers   int
	Eggs       int
	Larvae     int
	FoodStored int
	FoodTrail  FieldSummary
}

// WindowStats is one closed stats window, flat for CSV export.
type WindowStats struct {
	WindowEndTick uint64 `csv:"window_end_tick"`

	Population int `csv:"population"`
	Queens     int `csv:"queens"`
	Workers    int `csv:"workers"`
	Soldiers   int `csv:"soldiers"`
	Eggs       int `csv:"eggs"`
	Larvae     int `csv:"larvae"`
	FoodStored int `csv:"food_stored"`

	EggsLaid      int `csv:"eggs_laid"`
	Hatched       int `csv:"hatched"`
	Matured       int `csv:"matured"`
	Deaths        int `csv:"deaths"`
	QueenDeaths   int `csv:"queen_deaths"`
	Kills         int `csv:"kills"`
	FoodDelivered int `csv:"food_delivered"`
	TilesDug      int `csv:"tiles_dug"`
	CaveIns       int `csv:"cave_ins"`
	TrailDeposits int `csv:"trail_deposits"`

	FoodTrailCells  int     `csv:"food_trail_cells"`
	FoodTrailMean   float64 `csv:"food_trail_mean"`
	FoodTrailStdDev float64 `csv:"food_trail_stddev"`
	FoodTrailMax    float64 `csv:"food_trail_max"`
	FoodTrailP90    float64 `csv:"food_trail_p90"`
}

// Log writes the window to the structured log.
func (s WindowStats) Log() {
	slog.Info("stats",
		"tick", s.WindowEndTick,
		"population", s.Population,
		"queens", s.Queens,
		"workers", s.Workers,
		"soldiers", s.Soldiers,
		"eggs", s.Eggs,
		"larvae", s.Larvae,
		"food_stored", s.FoodStored,
		"eggs_laid", s.EggsLaid,
		"hatched", s.Hatched,
		"matured", s.Matured,
		"deaths", s.Deaths,
		"kills", s.Kills,
		"food_delivered", s.FoodDelivered,
		"tiles_dug", s.TilesDug,
		"cave_ins", s.CaveIns,
		"trail_cells", s.FoodTrailCells,
		"trail_mean", s.FoodTrailMean,
	)
}
