package systems

import (
	"fmt"

	"github.com/ojrac/opensimplex-go"
)

// Tile is one terrain cell type.
type Tile uint8

const (
	TileAir Tile = iota
	TileSurface
	TileSoil
	TileDenseSoil // reinforced by digging ants, more stable
	TileRock
	TileTunnel // excavated passage, never collapses
)

// TerrainParams configures procedural generation.
type TerrainParams struct {
	SurfaceLevel float64 // fraction of height where the surface sits
	SurfaceNoise float64 // surface height variation amplitude in tiles
	NoiseScale   float64 // horizontal noise frequency
	CaveScale    float64 // cave noise frequency
	CaveLevel    float64 // noise threshold above which soil is carved out
	RockDepth    float64 // fraction of height below which soil becomes rock
}

// Terrain is the shared tile grid. The pheromone field has no terrain
// awareness; callers consult IsPassable before moving or depositing.
type Terrain struct {
	Width  int
	Height int
	tiles  []Tile
}

// GenerateTerrain builds a terrain from layered opensimplex noise: a
// height-curve surface over soil, rock below RockDepth, and caves carved
// where the cave noise exceeds its threshold.
func GenerateTerrain(width, height int, seed int64, p TerrainParams) (*Terrain, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("terrain: dimensions must be positive, got %dx%d", width, height)
	}

	t := &Terrain{
		Width:  width,
		Height: height,
		tiles:  make([]Tile, width*height),
	}

	surfaceNoise := opensimplex.NewNormalized(seed)
	caveNoise := opensimplex.NewNormalized(seed + 1)

	baseSurface := p.SurfaceLevel * float64(height)
	rockY := int(p.RockDepth * float64(height))

	for x := 0; x < width; x++ {
		offset := (surfaceNoise.Eval2(float64(x)*p.NoiseScale, 0) - 0.5) * 2 * p.SurfaceNoise
		surfaceY := int(baseSurface + offset)
		if surfaceY < 1 {
			surfaceY = 1
		}
		if surfaceY >= height-1 {
			surfaceY = height - 2
		}

		for y := 0; y < height; y++ {
			switch {
			case y < surfaceY:
				t.tiles[y*width+x] = TileAir
			case y == surfaceY:
				t.tiles[y*width+x] = TileSurface
			case y >= rockY:
				t.tiles[y*width+x] = TileRock
			default:
				// Soil band; carve caves a few tiles below the surface
				if y > surfaceY+3 && caveNoise.Eval2(float64(x)*p.CaveScale, float64(y)*p.CaveScale) > p.CaveLevel {
					t.tiles[y*width+x] = TileAir
				} else {
					t.tiles[y*width+x] = TileSoil
				}
			}
		}
	}

	return t, nil
}

// Get returns the tile at (x, y), or TileRock for out-of-bounds coordinates
// so edge probes read as impassable.
func (t *Terrain) Get(x, y int) Tile {
	if x < 0 || y < 0 || x >= t.Width || y >= t.Height {
		return TileRock
	}
	return t.tiles[y*t.Width+x]
}

// Set overwrites the tile at (x, y). Out-of-bounds writes are dropped.
func (t *Terrain) Set(x, y int, tile Tile) {
	if x < 0 || y < 0 || x >= t.Width || y >= t.Height {
		return
	}
	t.tiles[y*t.Width+x] = tile
}

// IsPassable reports whether an ant can occupy (x, y).
func (t *Terrain) IsPassable(x, y int) bool {
	switch t.Get(x, y) {
	case TileAir, TileSurface, TileTunnel:
		return true
	}
	return false
}

// IsDiggable reports whether ants can excavate (x, y).
func (t *Terrain) IsDiggable(x, y int) bool {
	switch t.Get(x, y) {
	case TileSoil, TileDenseSoil:
		return true
	}
	return false
}

// SurfaceY returns the y coordinate of the surface tile in column x, or -1
// when the column has none (fully carved or out of bounds).
func (t *Terrain) SurfaceY(x int) int {
	if x < 0 || x >= t.Width {
		return -1
	}
	for y := 0; y < t.Height; y++ {
		if t.tiles[y*t.Width+x] == TileSurface {
			return y
		}
	}
	return -1
}
