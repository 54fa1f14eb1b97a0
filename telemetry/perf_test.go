package telemetry

import "testing"

func runTick(p *PerfCollector) {
	p.StartTick()
	p.StartPhase(PhaseSpatialGrid)
	p.StartPhase(PhaseAI)
	p.StartPhase(PhasePheromones)
	p.EndTick()
}

func TestPerfCollectorSummaryCadence(t *testing.T) {
	p := NewPerfCollector(5)

	for tick := uint64(1); tick < 5; tick++ {
		runTick(p)
		if _, ok := p.Summary(tick); ok {
			t.Fatalf("summary emitted early at tick %d", tick)
		}
	}

	runTick(p)
	stats, ok := p.Summary(5)
	if !ok {
		t.Fatal("expected summary after a full window")
	}
	if stats.WindowEndTick != 5 {
		t.Errorf("expected window end tick 5, got %d", stats.WindowEndTick)
	}
	if stats.AvgTickUS < 0 || stats.MaxTickUS < stats.MinTickUS {
		t.Errorf("inconsistent tick durations: %+v", stats)
	}

	// Next report only after another full window
	if _, ok := p.Summary(6); ok {
		t.Error("expected no summary immediately after a report")
	}
}

func TestPerfCollectorPhasePercentages(t *testing.T) {
	p := NewPerfCollector(3)
	for i := 0; i < 3; i++ {
		runTick(p)
	}

	stats, ok := p.Summary(3)
	if !ok {
		t.Fatal("expected summary")
	}

	total := stats.SpatialGridPct + stats.AIPct + stats.MovementPct +
		stats.ActionsPct + stats.PheromonesPct + stats.LifecyclePct +
		stats.CleanupPct + stats.TelemetryPct
	if total > 100.5 {
		t.Errorf("phase percentages exceed 100%%: %f", total)
	}

	// Phases never started must report zero
	if stats.MovementPct != 0 || stats.CleanupPct != 0 {
		t.Errorf("expected unused phases at zero, got %+v", stats)
	}
}
