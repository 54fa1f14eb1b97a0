package systems

import (
	"math"
	"math/rand"
	"testing"

	"github.com/pthm-cable/anthill/config"
)

func testPheromoneConfig() *config.PheromoneConfig {
	return &config.PheromoneConfig{
		MaxConcentration:  1.0,
		DecayFood:         0.02,
		DecayHome:         0.005,
		DecayDanger:       0.05,
		SnapEpsilon:       0.001,
		DiffusionRate:     0.05,
		GradientThreshold: 0.01,
	}
}

func newTestField(t *testing.T, w, h, colonies int) *PheromoneField {
	t.Helper()
	f, err := NewPheromoneField(w, h, colonies, testPheromoneConfig(), rand.New(rand.NewSource(42)))
	if err != nil {
		t.Fatalf("creating field: %v", err)
	}
	return f
}

func TestPheromoneFieldCreation(t *testing.T) {
	f := newTestField(t, 20, 10, 3)

	w, h := f.Size()
	if w != 20 || h != 10 {
		t.Errorf("expected size 20x10, got %dx%d", w, h)
	}

	// Fresh field is empty everywhere
	for y := 0; y < 10; y++ {
		for x := 0; x < 20; x++ {
			if v := f.ConcentrationAt(x, y, 0, ChannelFood); v != 0 {
				t.Fatalf("expected empty cell at (%d,%d), got %f", x, y, v)
			}
		}
	}
}

func TestPheromoneFieldRejectsInvalidConfig(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	if _, err := NewPheromoneField(0, 10, 1, testPheromoneConfig(), rng); err == nil {
		t.Error("expected error for zero width")
	}
	if _, err := NewPheromoneField(10, 10, 0, testPheromoneConfig(), rng); err == nil {
		t.Error("expected error for zero colonies")
	}

	cfg := testPheromoneConfig()
	cfg.DecayFood = 1.0
	if _, err := NewPheromoneField(10, 10, 1, cfg, rng); err == nil {
		t.Error("expected error for decay rate of 1")
	}

	cfg = testPheromoneConfig()
	cfg.MaxConcentration = 0
	if _, err := NewPheromoneField(10, 10, 1, cfg, rng); err == nil {
		t.Error("expected error for zero max concentration")
	}
}

func TestDepositAndRead(t *testing.T) {
	f := newTestField(t, 20, 10, 2)

	f.Deposit(5, 5, 0, ChannelFood, 0.5)
	if v := f.ConcentrationAt(5, 5, 0, ChannelFood); v <= 0 {
		t.Errorf("expected positive concentration after deposit, got %f", v)
	}

	// Other channels and other colonies stay untouched
	if v := f.ConcentrationAt(5, 5, 0, ChannelHome); v != 0 {
		t.Errorf("expected home channel untouched, got %f", v)
	}
	if v := f.ConcentrationAt(5, 5, 1, ChannelFood); v != 0 {
		t.Errorf("expected colony 1 untouched, got %f", v)
	}
}

func TestDepositAdaptiveScaling(t *testing.T) {
	f := newTestField(t, 10, 10, 1)

	// First deposit into an empty cell lands at full base strength
	f.Deposit(3, 3, 0, ChannelFood, 0.5)
	first := f.ConcentrationAt(3, 3, 0, ChannelFood)
	if math.Abs(float64(first)-0.5) > 1e-6 {
		t.Errorf("expected first deposit at full strength 0.5, got %f", first)
	}

	// Second deposit into a half-full cell is scaled to half
	f.Deposit(3, 3, 0, ChannelFood, 0.5)
	second := f.ConcentrationAt(3, 3, 0, ChannelFood)
	if math.Abs(float64(second)-0.75) > 1e-6 {
		t.Errorf("expected 0.75 after scaled second deposit, got %f", second)
	}

	// Repeated deposits never exceed the cap
	for i := 0; i < 1000; i++ {
		f.Deposit(3, 3, 0, ChannelFood, 0.5)
	}
	if v := f.ConcentrationAt(3, 3, 0, ChannelFood); v > 1.0 {
		t.Errorf("expected concentration capped at 1.0, got %f", v)
	}
}

func TestDepositOutOfBoundsIgnored(t *testing.T) {
	f := newTestField(t, 10, 10, 1)

	// Must not panic and must not corrupt anything
	f.Deposit(-1, 5, 0, ChannelFood, 0.5)
	f.Deposit(5, -1, 0, ChannelFood, 0.5)
	f.Deposit(10, 5, 0, ChannelFood, 0.5)
	f.Deposit(5, 10, 0, ChannelFood, 0.5)

	if v := f.ConcentrationAt(-1, 5, 0, ChannelFood); v != 0 {
		t.Errorf("expected zero for out-of-bounds read, got %f", v)
	}
}

func TestDecayMultiplicative(t *testing.T) {
	f := newTestField(t, 10, 10, 1)
	f.Deposit(5, 5, 0, ChannelHome, 0.5)

	// 30 ticks of home decay at 0.005: 0.5 * 0.995^30 ~= 0.4304
	for i := 0; i < 30; i++ {
		f.Decay()
	}
	got := float64(f.ConcentrationAt(5, 5, 0, ChannelHome))
	want := 0.5 * math.Pow(0.995, 30)
	if math.Abs(got-want) > 1e-4 {
		t.Errorf("expected %.4f after 30 decay ticks, got %.4f", want, got)
	}
}

func TestDecayPerChannelRates(t *testing.T) {
	f := newTestField(t, 10, 10, 1)
	f.Deposit(5, 5, 0, ChannelFood, 0.5)
	f.Deposit(5, 5, 0, ChannelHome, 0.5)
	f.Deposit(5, 5, 0, ChannelDanger, 0.5)

	for i := 0; i < 20; i++ {
		f.Decay()
	}

	food := f.ConcentrationAt(5, 5, 0, ChannelFood)
	home := f.ConcentrationAt(5, 5, 0, ChannelHome)
	danger := f.ConcentrationAt(5, 5, 0, ChannelDanger)

	// Danger fades fastest, home slowest
	if !(danger < food && food < home) {
		t.Errorf("expected danger < food < home after decay, got %f, %f, %f", danger, food, home)
	}
}

func TestDecaySnapsToZero(t *testing.T) {
	f := newTestField(t, 10, 10, 1)
	f.Deposit(5, 5, 0, ChannelDanger, 0.01)

	// 0.01 * 0.95^n drops below 0.001 within ~45 ticks and must then be
	// exactly zero, not a denormal tail
	for i := 0; i < 200; i++ {
		f.Decay()
	}
	if v := f.ConcentrationAt(5, 5, 0, ChannelDanger); v != 0 {
		t.Errorf("expected exact zero after snap, got %g", v)
	}
}

func TestReinforcementEquilibrium(t *testing.T) {
	// A continuously reinforced cell converges to base/(base+decay)
	// instead of saturating at the cap. Channels carry different decay
	// rates, giving several (base, decay) pairs.
	cases := []struct {
		name    string
		channel Channel
		base    float32
		decay   float64
	}{
		{"food", ChannelFood, 0.05, 0.02},
		{"home", ChannelHome, 0.03, 0.005},
		{"danger", ChannelDanger, 0.10, 0.05},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newTestField(t, 10, 10, 1)
			for i := 0; i < 500; i++ {
				f.Decay()
				f.Deposit(5, 5, 0, tc.channel, tc.base)
			}
			got := float64(f.ConcentrationAt(5, 5, 0, tc.channel))
			want := float64(tc.base) / (float64(tc.base) + tc.decay)
			if math.Abs(got-want) > 0.03 {
				t.Errorf("expected equilibrium near %.3f, got %.3f", want, got)
			}
			if got >= 1.0 {
				t.Errorf("expected equilibrium below the cap, got %.3f", got)
			}
		})
	}
}

func TestSingleDepositDecaysAway(t *testing.T) {
	f := newTestField(t, 10, 10, 1)
	f.Deposit(5, 5, 0, ChannelDanger, 0.5)

	// One 0.5 deposit after 30 danger-decay ticks: 0.5 * 0.95^30 ~= 0.107
	for i := 0; i < 30; i++ {
		f.Decay()
	}
	got := float64(f.ConcentrationAt(5, 5, 0, ChannelDanger))
	want := 0.5 * math.Pow(0.95, 30)
	if math.Abs(got-want) > 1e-3 {
		t.Errorf("expected %.4f after 30 ticks, got %.4f", want, got)
	}
}

func TestIndexArithmetic(t *testing.T) {
	f := newTestField(t, 20, 10, 3)

	// Flat layout: ((y*W+x)*maxColonies+colony)*NumChannels+channel
	cases := []struct {
		x, y   int
		colony uint8
		ch     Channel
		want   int
	}{
		{0, 0, 0, ChannelFood, 0},
		{0, 0, 0, ChannelDanger, 2},
		{0, 0, 1, ChannelFood, 3},
		{1, 0, 0, ChannelFood, 9},
		{0, 1, 0, ChannelFood, 20 * 3 * 3},
		{19, 9, 2, ChannelDanger, ((9*20+19)*3+2)*3 + 2},
	}
	for _, tc := range cases {
		got, ok := f.index(tc.x, tc.y, tc.colony, tc.ch)
		if !ok {
			t.Fatalf("index(%d,%d,%d,%v) unexpectedly out of bounds", tc.x, tc.y, tc.colony, tc.ch)
		}
		if got != tc.want {
			t.Errorf("index(%d,%d,%d,%v) = %d, want %d", tc.x, tc.y, tc.colony, tc.ch, got, tc.want)
		}
	}

	// Last valid index stays inside the backing array
	last, ok := f.index(19, 9, 2, ChannelDanger)
	if !ok || last != 20*10*3*3-1 {
		t.Errorf("expected last index %d, got %d", 20*10*3*3-1, last)
	}

	for _, bad := range [][2]int{{-1, 0}, {0, -1}, {20, 0}, {0, 10}} {
		if _, ok := f.index(bad[0], bad[1], 0, ChannelFood); ok {
			t.Errorf("expected out-of-bounds for (%d,%d)", bad[0], bad[1])
		}
	}

	// Colony ids beyond the configured count clamp to the last owner slot
	clamped, ok := f.index(0, 0, 7, ChannelFood)
	if !ok || clamped != 2*3 {
		t.Errorf("expected colony clamp to last slot, got %d", clamped)
	}
}

func TestDiffuseSpreadsToNeighbors(t *testing.T) {
	f := newTestField(t, 10, 10, 1)
	f.Deposit(5, 5, 0, ChannelFood, 0.8)

	f.Diffuse()

	center := f.ConcentrationAt(5, 5, 0, ChannelFood)
	if math.Abs(float64(center)-0.8*0.95) > 1e-4 {
		t.Errorf("expected center to retain 95%%, got %f", center)
	}

	// Cardinal neighbors get a larger share than diagonals
	cardinal := f.ConcentrationAt(5, 4, 0, ChannelFood)
	diagonal := f.ConcentrationAt(4, 4, 0, ChannelFood)
	if cardinal <= 0 || diagonal <= 0 {
		t.Fatalf("expected spread to neighbors, got cardinal=%f diagonal=%f", cardinal, diagonal)
	}
	if cardinal <= diagonal {
		t.Errorf("expected cardinal share > diagonal share, got %f vs %f", cardinal, diagonal)
	}

	ratio := float64(cardinal / diagonal)
	if math.Abs(ratio-1/0.707) > 0.01 {
		t.Errorf("expected cardinal/diagonal ratio ~%.3f, got %.3f", 1/0.707, ratio)
	}
}

func TestDiffuseConservesInteriorSignal(t *testing.T) {
	f := newTestField(t, 20, 20, 1)
	f.Deposit(10, 10, 0, ChannelFood, 0.8)

	total := func() float64 {
		var sum float64
		for y := 0; y < 20; y++ {
			for x := 0; x < 20; x++ {
				sum += float64(f.ConcentrationAt(x, y, 0, ChannelFood))
			}
		}
		return sum
	}

	before := total()
	f.Diffuse()
	after := total()

	// A single interior deposit far from the edge loses nothing
	if math.Abs(before-after) > 1e-4 {
		t.Errorf("expected interior diffusion to conserve signal, before=%.5f after=%.5f", before, after)
	}
}

func TestDiffuseEdgeLoss(t *testing.T) {
	f := newTestField(t, 10, 10, 1)
	f.Deposit(0, 0, 0, ChannelFood, 0.8)

	total := func() float64 {
		var sum float64
		for y := 0; y < 10; y++ {
			for x := 0; x < 10; x++ {
				sum += float64(f.ConcentrationAt(x, y, 0, ChannelFood))
			}
		}
		return sum
	}

	before := total()
	f.Diffuse()
	after := total()

	// A corner cell has 5 of 8 neighbors off-grid; their shares are lost
	if after >= before {
		t.Errorf("expected corner diffusion to bleed signal off the map, before=%.5f after=%.5f", before, after)
	}
}

func TestDiffuseSkipsNearZeroCells(t *testing.T) {
	f := newTestField(t, 10, 10, 1)
	f.Deposit(5, 5, 0, ChannelFood, 0.0005) // below snap epsilon

	f.Diffuse()

	if v := f.ConcentrationAt(5, 4, 0, ChannelFood); v != 0 {
		t.Errorf("expected no spread from sub-epsilon cell, got %g", v)
	}
}

func TestGradientDirectionFollowsSignal(t *testing.T) {
	f := newTestField(t, 10, 10, 1)

	// One strong neighbor; the draw has a single candidate
	f.Deposit(6, 5, 0, ChannelFood, 0.9)

	dx, dy, ok := f.GradientDirection(5, 5, 0, ChannelFood)
	if !ok {
		t.Fatal("expected a direction toward the signal")
	}
	if dx != 1 || dy != 0 {
		t.Errorf("expected direction (1,0), got (%d,%d)", dx, dy)
	}
}

func TestGradientDirectionEmptyField(t *testing.T) {
	f := newTestField(t, 10, 10, 1)

	if _, _, ok := f.GradientDirection(5, 5, 0, ChannelFood); ok {
		t.Error("expected no direction on an empty field")
	}
}

func TestGradientDirectionIgnoresSubThreshold(t *testing.T) {
	f := newTestField(t, 10, 10, 1)
	f.Deposit(6, 5, 0, ChannelFood, 0.005) // below the 0.01 threshold

	if _, _, ok := f.GradientDirection(5, 5, 0, ChannelFood); ok {
		t.Error("expected sub-threshold neighbors to be invisible")
	}
}

func TestGradientDirectionPrefersStrongerTrails(t *testing.T) {
	f := newTestField(t, 10, 10, 1)
	f.Deposit(6, 5, 0, ChannelFood, 0.9)
	f.Deposit(4, 5, 0, ChannelFood, 0.1)

	// Weight is concentration squared, so the strong side should win the
	// large majority of draws but not all of them
	strong, weak := 0, 0
	for i := 0; i < 1000; i++ {
		dx, _, ok := f.GradientDirection(5, 5, 0, ChannelFood)
		if !ok {
			t.Fatal("expected a direction")
		}
		if dx == 1 {
			strong++
		} else {
			weak++
		}
	}
	if strong < 900 {
		t.Errorf("expected strong trail to dominate, got %d/1000", strong)
	}
	if weak == 0 {
		t.Error("expected weak trail to still be drawn occasionally")
	}
}

func TestClimbDirectionDeterministic(t *testing.T) {
	f := newTestField(t, 10, 10, 1)
	f.Deposit(6, 6, 0, ChannelDanger, 0.9)
	f.Deposit(4, 5, 0, ChannelDanger, 0.3)

	for i := 0; i < 10; i++ {
		dx, dy, ok := f.ClimbDirection(5, 5, 0, ChannelDanger)
		if !ok {
			t.Fatal("expected a climb direction")
		}
		if dx != 1 || dy != 1 {
			t.Errorf("expected deterministic (1,1), got (%d,%d)", dx, dy)
		}
	}
}

func TestClimbDirectionStaysOnPeak(t *testing.T) {
	f := newTestField(t, 10, 10, 1)
	f.Deposit(5, 5, 0, ChannelDanger, 0.9)

	if _, _, ok := f.ClimbDirection(5, 5, 0, ChannelDanger); ok {
		t.Error("expected no direction when standing on the peak")
	}
}

func TestColonyIsolation(t *testing.T) {
	f := newTestField(t, 10, 10, 3)

	f.Deposit(5, 5, 0, ChannelFood, 0.9)
	f.Decay()
	f.Diffuse()

	for colony := uint8(1); colony < 3; colony++ {
		for y := 0; y < 10; y++ {
			for x := 0; x < 10; x++ {
				if v := f.ConcentrationAt(x, y, colony, ChannelFood); v != 0 {
					t.Fatalf("colony %d saw colony 0's signal at (%d,%d): %f", colony, x, y, v)
				}
			}
		}
	}
}

func TestChannelValues(t *testing.T) {
	f := newTestField(t, 10, 10, 2)
	f.Deposit(1, 1, 0, ChannelFood, 0.5)
	f.Deposit(2, 2, 1, ChannelFood, 0.3)
	f.Deposit(3, 3, 0, ChannelHome, 0.4)

	vals := f.ChannelValues(nil, ChannelFood)
	if len(vals) != 2 {
		t.Fatalf("expected 2 food values across colonies, got %d", len(vals))
	}

	// Reuse a scratch slice
	vals = f.ChannelValues(vals[:0], ChannelHome)
	if len(vals) != 1 {
		t.Fatalf("expected 1 home value, got %d", len(vals))
	}
}
