package systems

import (
	"fmt"

	"github.com/mlange-42/ark/ecs"
)

// AgentRef is a spatial grid entry: an entity snapshot taken at insert time.
// Query results carry the position and colony so hot paths avoid component
// lookups for the common adjacency checks.
type AgentRef struct {
	Entity ecs.Entity
	X, Y   int
	Colony uint8
}

// SpatialGrid partitions ant positions into fixed-size buckets for
// O(1)-amortized neighborhood queries. It is rebuilt from scratch once per
// tick (clear + insert all); entries never persist across ticks.
type SpatialGrid struct {
	cells    [][]AgentRef
	cols     int
	rows     int
	cellSize int
}

// NewSpatialGrid creates a grid covering a world of the given tile
// dimensions. cellSize determines bucket granularity; 8 keeps an interaction
// radius inside a 3x3 bucket neighborhood.
func NewSpatialGrid(worldWidth, worldHeight, cellSize int) (*SpatialGrid, error) {
	if worldWidth <= 0 || worldHeight <= 0 {
		return nil, fmt.Errorf("spatial grid: world dimensions must be positive, got %dx%d", worldWidth, worldHeight)
	}
	if cellSize <= 0 {
		return nil, fmt.Errorf("spatial grid: cell size must be positive, got %d", cellSize)
	}

	cols := worldWidth/cellSize + 1
	rows := worldHeight/cellSize + 1

	cells := make([][]AgentRef, cols*rows)
	for i := range cells {
		cells[i] = make([]AgentRef, 0, 8)
	}

	return &SpatialGrid{
		cells:    cells,
		cols:     cols,
		rows:     rows,
		cellSize: cellSize,
	}, nil
}

// Clear empties every bucket without releasing backing storage. Called at
// the start of each tick before reinsertion.
func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

// Insert appends an entity to the bucket containing (x, y). Out-of-bounds
// positions are dropped.
func (g *SpatialGrid) Insert(e ecs.Entity, x, y int, colony uint8) {
	cx := x / g.cellSize
	cy := y / g.cellSize
	if x < 0 || y < 0 || cx >= g.cols || cy >= g.rows {
		return
	}
	idx := cy*g.cols + cx
	g.cells[idx] = append(g.cells[idx], AgentRef{Entity: e, X: x, Y: y, Colony: colony})
}

// QueryNearby returns every entry in the 3x3 bucket neighborhood around
// (x, y) as an owned slice, so callers may mutate agent state while
// iterating. Buckets outside the grid are skipped, not wrapped. Consumers
// that process symmetric pairs must deduplicate with a canonical ordering of
// the two entities, since a pair is discovered from both sides.
func (g *SpatialGrid) QueryNearby(x, y int) []AgentRef {
	return g.QueryNearbyInto(nil, x, y)
}

// QueryNearbyInto is QueryNearby appending into dst. Reuse dst across calls
// to avoid allocations.
func (g *SpatialGrid) QueryNearbyInto(dst []AgentRef, x, y int) []AgentRef {
	// Floor division: probes just off the world edge land in cell -1 and
	// still see the edge buckets through the 3x3 neighborhood.
	cx := cellFloor(x, g.cellSize)
	cy := cellFloor(y, g.cellSize)

	for dy := -1; dy <= 1; dy++ {
		ny := cy + dy
		if ny < 0 || ny >= g.rows {
			continue
		}
		for dx := -1; dx <= 1; dx++ {
			nx := cx + dx
			if nx < 0 || nx >= g.cols {
				continue
			}
			dst = append(dst, g.cells[ny*g.cols+nx]...)
		}
	}
	return dst
}

// cellFloor divides rounding toward negative infinity.
func cellFloor(v, size int) int {
	if v < 0 {
		return -((-v-1)/size + 1)
	}
	return v / size
}
