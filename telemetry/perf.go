package telemetry

import (
	"log/slog"
	"time"
)

// Phase names for the simulation step.
const (
	PhaseSpatialGrid = "spatial_grid"
	PhaseAI          = "ai"
	PhaseMovement    = "movement"
	PhaseActions     = "actions"
	PhasePheromones  = "pheromones"
	PhaseLifecycle   = "lifecycle"
	PhaseCleanup     = "cleanup"
	PhaseTelemetry   = "telemetry"
)

// perfSample holds timing data for a single tick.
type perfSample struct {
	tickDuration time.Duration
	phases       map[string]time.Duration
}

// PerfCollector tracks tick timings over a rolling window.
type PerfCollector struct {
	windowSize  int
	samples     []perfSample
	writeIndex  int
	sampleCount int
	sinceReport int

	currentPhases map[string]time.Duration
	tickStart     time.Time
	phaseStart    time.Time
	lastPhase     string
}

// NewPerfCollector creates a performance collector averaging over windowSize
// ticks.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{
		windowSize:    windowSize,
		samples:       make([]perfSample, windowSize),
		currentPhases: make(map[string]time.Duration),
	}
}

// StartTick begins timing a new simulation tick.
func (p *PerfCollector) StartTick() {
	p.tickStart = time.Now()
	p.currentPhases = make(map[string]time.Duration)
	p.lastPhase = ""
}

// StartPhase begins timing a phase, closing the previous one.
func (p *PerfCollector) StartPhase(phase string) {
	now := time.Now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}
	p.phaseStart = now
	p.lastPhase = phase
}

// EndTick finishes timing the current tick and records the sample.
func (p *PerfCollector) EndTick() {
	now := time.Now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}

	p.samples[p.writeIndex] = perfSample{
		tickDuration: now.Sub(p.tickStart),
		phases:       p.currentPhases,
	}
	p.writeIndex = (p.writeIndex + 1) % p.windowSize
	if p.sampleCount < p.windowSize {
		p.sampleCount++
	}
	p.sinceReport++
}

// PerfStats is an aggregated timing window, flat for CSV export.
type PerfStats struct {
	WindowEndTick uint64  `csv:"window_end_tick"`
	AvgTickUS     int64   `csv:"avg_tick_us"`
	MinTickUS     int64   `csv:"min_tick_us"`
	MaxTickUS     int64   `csv:"max_tick_us"`
	TicksPerSec   float64 `csv:"ticks_per_sec"`

	SpatialGridPct float64 `csv:"spatial_grid_pct"`
	AIPct          float64 `csv:"ai_pct"`
	MovementPct    float64 `csv:"movement_pct"`
	ActionsPct     float64 `csv:"actions_pct"`
	PheromonesPct  float64 `csv:"pheromones_pct"`
	LifecyclePct   float64 `csv:"lifecycle_pct"`
	CleanupPct     float64 `csv:"cleanup_pct"`
	TelemetryPct   float64 `csv:"telemetry_pct"`
}

// Summary aggregates the rolling window once per windowSize ticks. Returns
// ok=false between reports.
func (p *PerfCollector) Summary(tick uint64) (PerfStats, bool) {
	if p.sinceReport < p.windowSize || p.sampleCount == 0 {
		return PerfStats{}, false
	}
	p.sinceReport = 0

	var totalTick, minTick, maxTick time.Duration
	phaseSum := make(map[string]time.Duration)

	for i := 0; i < p.sampleCount; i++ {
		s := p.samples[i]
		totalTick += s.tickDuration
		if i == 0 || s.tickDuration < minTick {
			minTick = s.tickDuration
		}
		if s.tickDuration > maxTick {
			maxTick = s.tickDuration
		}
		for phase, dur := range s.phases {
			phaseSum[phase] += dur
		}
	}

	avgTick := totalTick / time.Duration(p.sampleCount)
	pct := func(phase string) float64 {
		if totalTick <= 0 {
			return 0
		}
		return float64(phaseSum[phase]) / float64(totalTick) * 100
	}

	var ticksPerSec float64
	if avgTick > 0 {
		ticksPerSec = float64(time.Second) / float64(avgTick)
	}

	return PerfStats{
		WindowEndTick:  tick,
		AvgTickUS:      avgTick.Microseconds(),
		MinTickUS:      minTick.Microseconds(),
		MaxTickUS:      maxTick.Microseconds(),
		TicksPerSec:    ticksPerSec,
		SpatialGridPct: pct(PhaseSpatialGrid),
		AIPct:          pct(PhaseAI),
		MovementPct:    pct(PhaseMovement),
		ActionsPct:     pct(PhaseActions),
		PheromonesPct:  pct(PhasePheromones),
		LifecyclePct:   pct(PhaseLifecycle),
		CleanupPct:     pct(PhaseCleanup),
		TelemetryPct:   pct(PhaseTelemetry),
	}, true
}

// Log writes the timing window to the structured log.
func (s PerfStats) Log() {
	slog.Info("perf",
		"tick", s.WindowEndTick,
		"avg_tick_us", s.AvgTickUS,
		"min_tick_us", s.MinTickUS,
		"max_tick_us", s.MaxTickUS,
		"ticks_per_sec", int(s.TicksPerSec),
	)
}
