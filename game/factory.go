package game

import (
	"log/slog"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/anthill/components"
)

// spawnColonies places each colony on a surface tile away from the others
// and populates it with a queen and the initial workers.
func (g *Game) spawnColonies() {
	cfg := g.cfg
	g.colonies = make([]ColonyState, 0, cfg.Spawn.NumColonies)

	var taken [][2]int
	for id := 0; id < cfg.Spawn.NumColonies; id++ {
		x, y, ok := g.findColonySite(taken, cfg.Spawn.MinColonyDistance)
		if !ok {
			slog.Warn("no spawn site found for colony", "colony", id)
			continue
		}
		taken = append(taken, [2]int{x, y})

		colonyID := uint8(id)
		g.colonies = append(g.colonies, NewColonyState(colonyID, x, y, cfg.Colony.InitialFood))

		g.spawnAnt(x, y, colonyID, components.RoleQueen)

		spawned := 0
		for dy := 0; dy < 3 && spawned < cfg.Spawn.InitialWorkers; dy++ {
			for dx := -2; dx <= 2 && spawned < cfg.Spawn.InitialWorkers; dx++ {
				wx, wy := x+dx, y+dy
				if g.terrain.IsPassable(wx, wy) {
					g.spawnAnt(wx, wy, colonyID, components.RoleWorker)
					spawned++
				}
			}
		}

		slog.Info("colony founded", "colony", id, "x", x, "y", y, "workers", spawned)
	}
}

// findColonySite picks a random surface position at least minDistance
// (Manhattan) from existing colonies.
func (g *Game) findColonySite(taken [][2]int, minDistance int) (int, int, bool) {
	if g.terrain.Width <= 20 {
		return 0, 0, false
	}
	for attempt := 0; attempt < 100; attempt++ {
		x := 10 + g.rng.Intn(g.terrain.Width-20)
		y := g.terrain.SurfaceY(x)
		if y < 0 {
			continue
		}

		tooClose := false
		for _, t := range taken {
			if abs(x-t[0])+abs(y-t[1]) < minDistance {
				tooClose = true
				break
			}
		}
		if !tooClose {
			return x, y, true
		}
	}

	// Fallback: any surface tile, ignoring spacing
	for x := 10; x < g.terrain.Width-10; x += 20 {
		if y := g.terrain.SurfaceY(x); y >= 0 {
			return x, y, true
		}
	}
	return 0, 0, false
}

// spawnAnt creates a single ant entity with role-appropriate state and
// lifespan.
func (g *Game) spawnAnt(x, y int, colonyID uint8, role components.Role) ecs.Entity {
	lc := g.cfg.Lifecycle

	state := components.StateWandering
	var lifespan int
	switch role {
	case components.RoleQueen:
		state = components.StateIdle
		lifespan = lc.QueenLifespan
	case components.RoleWorker:
		lifespan = lc.WorkerLifespan
	case components.RoleSoldier:
		lifespan = lc.SoldierLifespan
	case components.RoleEgg:
		state = components.StateIdle
		lifespan = lc.EggHatchTime
	case components.RoleLarva:
		state = components.StateIdle
		lifespan = lc.LarvaMatureTime
	}

	pos := components.Position{X: x, Y: y}
	ant := components.Ant{Role: role, State: state}
	member := components.ColonyMember{ColonyID: colonyID}
	age := components.Age{Ticks: 0, MaxTicks: uint32(lifespan)}

	return g.antMapper.NewEntity(&pos, &ant, &member, &age)
}

// spawnFoodSources scatters food piles on the surface.
func (g *Game) spawnFoodSources() {
	cfg := g.cfg
	spawned := 0
	for attempt := 0; attempt < cfg.Spawn.NumFoodSources*10 && spawned < cfg.Spawn.NumFoodSources; attempt++ {
		x := g.rng.Intn(g.terrain.Width)
		y := g.terrain.SurfaceY(x)
		if y <= 0 {
			continue
		}

		pos := components.Position{X: x, Y: y}
		food := components.FoodSource{
			Amount:     uint16(cfg.Food.InitialAmount),
			RegrowRate: uint16(cfg.Food.RegrowRate),
		}
		g.foodMapper.NewEntity(&pos, &food)
		spawned++
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
