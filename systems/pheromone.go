// Package systems provides the simulation core: the pheromone field, the
// spatial index, and the terrain grid.
package systems

import (
	"fmt"
	"math/rand"

	"github.com/pthm-cable/anthill/config"
)

// Channel is one independently tracked signal type within the field.
type Channel uint8

const (
	ChannelFood Channel = iota // found food, follow me
	ChannelHome                // path back to the nest
	ChannelDanger              // enemy or hazard here

	NumChannels = 3
)

// String returns the channel name for logging and telemetry.
func (c Channel) String() string {
	switch c {
	case ChannelFood:
		return "food"
	case ChannelHome:
		return "home"
	case ChannelDanger:
		return "danger"
	}
	return "unknown"
}

// neighborOffsets lists the 8 surrounding tiles, cardinals first.
var neighborOffsets = [8][2]int{
	{0, -1}, {0, 1}, {-1, 0}, {1, 0},
	{-1, -1}, {1, -1}, {-1, 1}, {1, 1},
}

// Diffusion weights: cardinal neighbors receive a full share, diagonals a
// 1/sqrt(2) share. Outflow is normalized by the total so an interior cell
// conserves signal.
const (
	cardinalWeight = 1.0
	diagonalWeight = 0.707
	totalWeight    = 4*cardinalWeight + 4*diagonalWeight
)

// PheromoneField is the colonies' shared environmental memory: a dense,
// per-colony, per-channel concentration grid with decay, diffusion, adaptive
// deposit and gradient sampling. Each colony owns an independent copy of
// every channel; signals never mix across colonies.
type PheromoneField struct {
	width       int
	height      int
	maxColonies int

	// Flat concentration arrays, indexed by
	// ((y*width+x)*maxColonies+colony)*NumChannels+channel.
	// buffer is the diffusion shadow array; the two are swapped by
	// reference after each diffusion pass, never reallocated.
	data   []float32
	buffer []float32

	maxConc     float32
	decay       [NumChannels]float32
	snapEpsilon float32
	diffusion   float32
	threshold   float32

	rng *rand.Rand
}

// NewPheromoneField allocates a zeroed field sized by the terrain dimensions
// and colony count. Invalid parameters are a startup error; nothing is
// validated again once the simulation runs.
func NewPheromoneField(width, height, maxColonies int, cfg *config.PheromoneConfig, rng *rand.Rand) (*PheromoneField, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("pheromone field: dimensions must be positive, got %dx%d", width, height)
	}
	if maxColonies <= 0 {
		return nil, fmt.Errorf("pheromone field: colony count must be positive, got %d", maxColonies)
	}
	if cfg.MaxConcentration <= 0 {
		return nil, fmt.Errorf("pheromone field: max concentration must be positive, got %g", cfg.MaxConcentration)
	}
	for ch, rate := range []float64{cfg.DecayFood, cfg.DecayHome, cfg.DecayDanger} {
		if rate < 0 || rate >= 1 {
			return nil, fmt.Errorf("pheromone field: %v decay rate must be in [0,1), got %g", Channel(ch), rate)
		}
	}
	if cfg.DiffusionRate < 0 || cfg.DiffusionRate >= 1 {
		return nil, fmt.Errorf("pheromone field: diffusion rate must be in [0,1), got %g", cfg.DiffusionRate)
	}

	size := width * height * maxColonies * NumChannels
	f := &PheromoneField{
		width:       width,
		height:      height,
		maxColonies: maxColonies,
		data:        make([]float32, size),
		buffer:      make([]float32, size),
		maxConc:     float32(cfg.MaxConcentration),
		snapEpsilon: float32(cfg.SnapEpsilon),
		diffusion:   float32(cfg.DiffusionRate),
		threshold:   float32(cfg.GradientThreshold),
		rng:         rng,
	}
	f.decay[ChannelFood] = float32(cfg.DecayFood)
	f.decay[ChannelHome] = float32(cfg.DecayHome)
	f.decay[ChannelDanger] = float32(cfg.DecayDanger)
	return f, nil
}

// Size returns the grid dimensions in tiles.
func (f *PheromoneField) Size() (int, int) {
	return f.width, f.height
}

// index returns the flat offset for a tile/colony/channel triple, or false
// when the tile is out of bounds. Ants routinely probe off-grid neighbors at
// the world edge, so out-of-bounds is an expected non-error.
func (f *PheromoneField) index(x, y int, colony uint8, ch Channel) (int, bool) {
	if x < 0 || y < 0 || x >= f.width || y >= f.height {
		return 0, false
	}
	c := int(colony)
	if c >= f.maxColonies {
		c = f.maxColonies - 1
	}
	return ((y*f.width+x)*f.maxColonies+c)*NumChannels + int(ch), true
}

// ConcentrationAt returns the signal level at a tile, or 0 out of bounds.
func (f *PheromoneField) ConcentrationAt(x, y int, colony uint8, ch Channel) float32 {
	i, ok := f.index(x, y, colony, ch)
	if !ok {
		return 0
	}
	return f.data[i]
}

// Deposit adds signal at a tile with adaptive strength: the effective amount
// shrinks as the cell fills, so a continuously reinforced cell converges to
// base/(base+decay) instead of saturating at the cap. That keeps gradients
// between heavily and lightly trafficked cells usable. Out-of-bounds deposits
// are silently dropped.
func (f *PheromoneField) Deposit(x, y int, colony uint8, ch Channel, base float32) {
	i, ok := f.index(x, y, colony, ch)
	if !ok {
		return
	}
	current := f.data[i]
	effective := base * (1 - current/f.maxConc)
	next := current + effective
	if next > f.maxConc {
		next = f.maxConc
	}
	if next < 0 {
		next = 0
	}
	f.data[i] = next
}

// Decay applies the per-channel multiplicative decay to every cell and snaps
// near-zero values to exactly zero, bounding the tail so later passes can
// skip empty cells. Must run before Diffuse each tick.
func (f *PheromoneField) Decay() {
	for i := 0; i < len(f.data); i += NumChannels {
		for ch := 0; ch < NumChannels; ch++ {
			v := f.data[i+ch]
			if v == 0 {
				continue
			}
			v *= 1 - f.decay[ch]
			if v < f.snapEpsilon {
				v = 0
			}
			f.data[i+ch] = v
		}
	}
}

// Diffuse spreads each non-empty cell's signal to its up-to-8 neighbors
// through the shadow buffer: the cell retains 1-diffusionRate of its value
// and the rest is split by adjacency weight. Neighbors outside the grid
// receive no share and their weight is not redistributed, so edge cells bleed
// a small fraction of signal off the map. Buffers are swapped by reference.
func (f *PheromoneField) Diffuse() {
	for i := range f.buffer {
		f.buffer[i] = 0
	}

	for y := 0; y < f.height; y++ {
		for x := 0; x < f.width; x++ {
			base := ((y*f.width + x) * f.maxColonies) * NumChannels
			for c := 0; c < f.maxColonies*NumChannels; c++ {
				i := base + c
				val := f.data[i]
				if val < f.snapEpsilon {
					continue
				}

				spread := val * f.diffusion
				f.buffer[i] += val - spread

				for n, off := range neighborOffsets {
					nx, ny := x+off[0], y+off[1]
					if nx < 0 || ny < 0 || nx >= f.width || ny >= f.height {
						continue
					}
					weight := float32(cardinalWeight)
					if n >= 4 {
						weight = diagonalWeight
					}
					ni := ((ny*f.width+nx)*f.maxColonies)*NumChannels + c
					f.buffer[ni] += spread * weight / totalWeight
				}
			}
		}
	}

	f.data, f.buffer = f.buffer, f.data
}

// ChannelValues appends every non-zero concentration for a channel, across
// all colonies, to dst and returns it. Used for telemetry summaries.
func (f *PheromoneField) ChannelValues(dst []float64, ch Channel) []float64 {
	for i := int(ch); i < len(f.data); i += NumChannels {
		if v := f.data[i]; v > 0 {
			dst = append(dst, float64(v))
		}
	}
	return dst
}

// GradientDirection samples the 8 neighbors and picks a direction by
// weighted-random draw with weight concentration^2, ignoring neighbors below
// the detection threshold. Squaring sharpens the pull of strong trails while
// leaving weak ones a nonzero chance, so a column of ants does not collapse
// onto one identical path. Returns ok=false when no neighbor qualifies; the
// caller falls back to undirected movement.
func (f *PheromoneField) GradientDirection(x, y int, colony uint8, ch Channel) (dx, dy int, ok bool) {
	var dirs [8][2]int
	var weights [8]float32
	n := 0

	var total float32
	for _, off := range neighborOffsets {
		s := f.ConcentrationAt(x+off[0], y+off[1], colony, ch)
		if s > f.threshold {
			dirs[n] = off
			weights[n] = s * s
			total += s * s
			n++
		}
	}
	if n == 0 {
		return 0, 0, false
	}

	roll := f.rng.Float32() * total
	for i := 0; i < n; i++ {
		roll -= weights[i]
		if roll <= 0 {
			return dirs[i][0], dirs[i][1], true
		}
	}
	// Floating-point underflow in the cumulative draw; take the last candidate.
	return dirs[n-1][0], dirs[n-1][1], true
}

// ClimbDirection returns the neighbor direction with the strongest signal,
// or ok=false if no neighbor beats the current tile. Deterministic max-pick,
// used by soldiers homing in on danger.
func (f *PheromoneField) ClimbDirection(x, y int, colony uint8, ch Channel) (dx, dy int, ok bool) {
	best := f.ConcentrationAt(x, y, colony, ch)
	for _, off := range neighborOffsets {
		s := f.ConcentrationAt(x+off[0], y+off[1], colony, ch)
		if s > best {
			best = s
			dx, dy = off[0], off[1]
			ok = true
		}
	}
	return dx, dy, ok
}
