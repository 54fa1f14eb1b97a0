package telemetry

import (
	"math"
	"testing"

	"github.com/pthm-cable/anthill/components"
)

func TestSummarizeFieldEmpty(t *testing.T) {
	s := SummarizeField(nil)
	if s.ActiveCells != 0 || s.Mean != 0 || s.Max != 0 {
		t.Errorf("expected zero summary for empty input, got %+v", s)
	}
}

func TestSummarizeField(t *testing.T) {
	values := []float64{0.5, 0.1, 0.3, 0.2, 0.4}
	s := SummarizeField(values)

	if s.ActiveCells != 5 {
		t.Errorf("expected 5 active cells, got %d", s.ActiveCells)
	}
	if math.Abs(s.Mean-0.3) > 1e-9 {
		t.Errorf("expected mean 0.3, got %f", s.Mean)
	}
	if s.Max != 0.5 {
		t.Errorf("expected max 0.5, got %f", s.Max)
	}
	if s.P90 < s.Mean || s.P90 > s.Max {
		t.Errorf("expected P90 between mean and max, got %f", s.P90)
	}
	if s.StdDev <= 0 {
		t.Errorf("expected positive stddev, got %f", s.StdDev)
	}
}

func TestCollectorWindowCloses(t *testing.T) {
	c := NewCollector(10)
	snapshot := func() Snapshot {
		return Snapshot{Population: 42, Workers: 30, FoodStored: 100}
	}

	c.RecordEggLaid()
	c.RecordDig()
	c.RecordDig()
	c.RecordFoodDelivered(15)

	// Window stays open until tick 10
	for tick := uint64(1); tick < 10; tick++ {
		if _, done := c.EndTick(tick, snapshot); done {
			t.Fatalf("window closed early at tick %d", tick)
		}
	}

	stats, done := c.EndTick(10, snapshot)
	if !done {
		t.Fatal("expected window to close at tick 10")
	}
	if stats.WindowEndTick != 10 {
		t.Errorf("expected window end tick 10, got %d", stats.WindowEndTick)
	}
	if stats.EggsLaid != 1 || stats.TilesDug != 2 || stats.FoodDelivered != 15 {
		t.Errorf("unexpected counters: %+v", stats)
	}
	if stats.Population != 42 || stats.Workers != 30 || stats.FoodStored != 100 {
		t.Errorf("snapshot not carried into stats: %+v", stats)
	}
}

func TestCollectorResetsBetweenWindows(t *testing.T) {
	c := NewCollector(5)
	snapshot := func() Snapshot { return Snapshot{} }

	c.RecordKill()
	if _, done := c.EndTick(5, snapshot); !done {
		t.Fatal("expected first window to close")
	}

	// Counters from the first window must not leak into the second
	stats, done := c.EndTick(10, snapshot)
	if !done {
		t.Fatal("expected second window to close")
	}
	if stats.Kills != 0 {
		t.Errorf("expected kills reset between windows, got %d", stats.Kills)
	}
}

func TestCollectorQueenDeaths(t *testing.T) {
	c := NewCollector(1)
	snapshot := func() Snapshot { return Snapshot{} }

	c.RecordDeath(components.RoleQueen)
	c.RecordDeath(components.RoleWorker)

	stats, done := c.EndTick(1, snapshot)
	if !done {
		t.Fatal("expected window to close")
	}
	if stats.Deaths != 2 {
		t.Errorf("expected 2 deaths, got %d", stats.Deaths)
	}
	if stats.QueenDeaths != 1 {
		t.Errorf("expected 1 queen death, got %d", stats.QueenDeaths)
	}
}
