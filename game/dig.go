package game

import (
	"github.com/pthm-cable/anthill/components"
	"github.com/pthm-cable/anthill/systems"
)

// updateDigAI decides when workers start, continue, or abandon excavation.
func (g *Game) updateDigAI() {
	var changes []stateChange

	query := g.antFilter.Query()
	for query.Next() {
		entity := query.Entity()
		pos, ant, _, _ := query.Get()
		if ant.Role != components.RoleWorker {
			continue
		}

		next := g.decideWorkerDigState(pos, ant)
		if next != ant.State {
			changes = append(changes, stateChange{entity, next})
		}
	}

	g.applyStateChanges(changes)
}

// decideWorkerDigState is the worker dig/wander/return state machine.
func (g *Game) decideWorkerDigState(pos *components.Position, ant *components.Ant) components.State {
	cfg := g.cfg.Dig

	canDig := g.terrain.IsDiggable(pos.X, pos.Y+1) ||
		g.terrain.IsDiggable(pos.X-1, pos.Y) ||
		g.terrain.IsDiggable(pos.X+1, pos.Y) ||
		g.terrain.IsDiggable(pos.X-1, pos.Y+1) ||
		g.terrain.IsDiggable(pos.X+1, pos.Y+1)

	onGround := !g.terrain.IsPassable(pos.X, pos.Y+1) ||
		g.terrain.Get(pos.X, pos.Y) == systems.TileSurface
	underground := g.terrain.Get(pos.X, pos.Y) == systems.TileTunnel
	onSurface := g.terrain.Get(pos.X, pos.Y) == systems.TileSurface

	switch ant.State {
	case components.StateWandering:
		if canDig && onGround && g.rng.Intn(256) < cfg.StartDigChance {
			return components.StateDigging
		}
		return components.StateWandering

	case components.StateDigging:
		if !canDig {
			return components.StateReturning
		}
		// The deeper the tunnel, the likelier the trip back up
		returnChance := cfg.ReturnChanceShallow
		if underground {
			returnChance = cfg.ReturnChanceDeep
		}
		if g.rng.Intn(256) < returnChance {
			return components.StateReturning
		}
		return components.StateDigging

	case components.StateReturning:
		if onSurface {
			return components.StateWandering
		}
		if canDig && onGround && g.rng.Intn(256) < cfg.DistractionChance {
			return components.StateDigging
		}
		return components.StateReturning

	case components.StateIdle:
		if g.rng.Intn(256) < 5 {
			return components.StateWandering
		}
		return components.StateIdle
	}

	return ant.State
}

// updateDigging excavates one tile per digging worker that passes the speed
// roll, and reinforces surrounding walls.
func (g *Game) updateDigging() {
	cfg := g.cfg.Dig
	var digs [][2]int

	query := g.antFilter.Query()
	for query.Next() {
		pos, ant, _, _ := query.Get()
		if ant.Role != components.RoleWorker || ant.State != components.StateDigging {
			continue
		}
		if g.rng.Intn(256) >= cfg.DigChance {
			continue
		}

		// Prefer downward targets
		targets := [5][2]int{
			{pos.X, pos.Y + 1},
			{pos.X - 1, pos.Y + 1},
			{pos.X + 1, pos.Y + 1},
			{pos.X - 1, pos.Y},
			{pos.X + 1, pos.Y},
		}
		for _, t := range targets {
			if g.terrain.IsDiggable(t[0], t[1]) {
				digs = append(digs, t)
				break
			}
		}
	}

	for _, d := range digs {
		g.terrain.Set(d[0], d[1], systems.TileTunnel)
		g.reinforceAdjacent(d[0], d[1])
		g.collector.RecordDig()
	}
}

// reinforceAdjacent hardens some soil walls around a fresh tunnel so they
// resist cave-ins.
func (g *Game) reinforceAdjacent(x, y int) {
	neighbors := [5][2]int{
		{x - 1, y}, {x + 1, y}, {x, y - 1}, {x - 1, y - 1}, {x + 1, y - 1},
	}
	for _, n := range neighbors {
		if g.terrain.Get(n[0], n[1]) == systems.TileSoil && g.rng.Intn(256) < g.cfg.Dig.ReinforceChance {
			g.terrain.Set(n[0], n[1], systems.TileDenseSoil)
		}
	}
}

// updateCaveIns collapses unsupported soil. Dirt falls through air until it
// lands, crushing any ants at the landing tile. Tunnels are ant-reinforced
// and never collapse, and they shield adjacent soil.
func (g *Game) updateCaveIns() {
	var collapses [][2]int

	for y := 0; y < g.terrain.Height; y++ {
		for x := 0; x < g.terrain.Width; x++ {
			tile := g.terrain.Get(x, y)
			if tile != systems.TileSoil && tile != systems.TileDenseSoil {
				continue
			}
			if g.tunnelSupported(x, y) {
				continue
			}

			below := g.terrain.Get(x, y+1)
			if below != systems.TileAir && below != systems.TileTunnel {
				continue
			}

			open := g.countOpenNeighbors(x, y)
			if tile == systems.TileDenseSoil {
				open -= g.cfg.Hazard.DenseStabilityBonus
			}

			var chance int
			switch {
			case open <= 2:
				chance = 0
			case open == 3:
				chance = 1
			case open == 4:
				chance = 3
			case open == 5:
				chance = 10
			default:
				chance = 25
			}

			if chance > 0 && g.rng.Intn(256) < chance {
				collapses = append(collapses, [2]int{x, y})
			}
		}
	}

	for _, c := range collapses {
		x, y := c[0], c[1]
		landY := y + 1
		for landY < g.terrain.Height && g.terrain.Get(x, landY) == systems.TileAir {
			landY++
		}
		landY--

		if landY > y {
			dirt := g.terrain.Get(x, y)
			g.terrain.Set(x, y, systems.TileAir)
			g.terrain.Set(x, landY, dirt)
			g.killAntsAt(x, landY)
			g.collector.RecordCaveIn()
		}
	}
}

// countOpenNeighbors counts air or tunnel tiles around (x, y).
func (g *Game) countOpenNeighbors(x, y int) int {
	count := 0
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			tile := g.terrain.Get(x+dx, y+dy)
			if tile == systems.TileAir || tile == systems.TileTunnel {
				count++
			}
		}
	}
	return count
}

// tunnelSupported reports whether a cardinal neighbor is a reinforced
// tunnel.
func (g *Game) tunnelSupported(x, y int) bool {
	for _, n := range [4][2]int{{x - 1, y}, {x + 1, y}, {x, y - 1}, {x, y + 1}} {
		if g.terrain.Get(n[0], n[1]) == systems.TileTunnel {
			return true
		}
	}
	return false
}

// killAntsAt marks every ant on a tile as dead (crushed by falling dirt).
func (g *Game) killAntsAt(x, y int) {
	query := g.antFilter.Query()
	var crushed []stateChange
	for query.Next() {
		entity := query.Entity()
		pos, _, _, _ := query.Get()
		if pos.X == x && pos.Y == y {
			crushed = append(crushed, stateChange{entity: entity})
		}
	}
	for _, c := range crushed {
		if g.deadMap.Get(c.entity) == nil {
			g.deadMap.Add(c.entity, &components.Dead{})
		}
	}
}
