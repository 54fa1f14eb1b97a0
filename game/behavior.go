package game

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/anthill/components"
	"github.com/pthm-cable/anthill/systems"
)

// stateChange is a deferred behavior-state transition, applied after
// iteration to avoid mutating components mid-query.
type stateChange struct {
	entity ecs.Entity
	state  components.State
}

func (g *Game) applyStateChanges(changes []stateChange) {
	for _, ch := range changes {
		if ant := g.antMap.Get(ch.entity); ant != nil {
			ant.State = ch.state
		}
	}
}

// updateSoldierAI sends soldiers toward danger signal and stands them down
// when it fades.
func (g *Game) updateSoldierAI() {
	cfg := g.cfg.Combat
	var changes []stateChange

	query := g.antFilter.Query()
	for query.Next() {
		entity := query.Entity()
		pos, ant, member, _ := query.Get()
		if ant.Role != components.RoleSoldier {
			continue
		}

		danger := g.pheromones.ConcentrationAt(pos.X, pos.Y, member.ColonyID, systems.ChannelDanger)
		if danger > float32(cfg.FightThreshold) && ant.State != components.StateFighting {
			changes = append(changes, stateChange{entity, components.StateFighting})
		} else if danger < float32(cfg.StopFightThreshold) && ant.State == components.StateFighting {
			changes = append(changes, stateChange{entity, components.StateWandering})
		}
	}

	g.applyStateChanges(changes)
}

// updateFleeAI makes workers run from danger signal. Any colony's danger
// counts: combat nearby is a threat regardless of who laid the marker.
func (g *Game) updateFleeAI() {
	cfg := g.cfg.Combat
	var changes []stateChange

	query := g.antFilter.Query()
	for query.Next() {
		entity := query.Entity()
		pos, ant, _, _ := query.Get()
		if ant.Role != components.RoleWorker {
			continue
		}

		danger := g.maxDangerAt(pos.X, pos.Y)
		if danger > float32(cfg.FleeThreshold) &&
			ant.State != components.StateFleeing && ant.State != components.StateCarrying {
			changes = append(changes, stateChange{entity, components.StateFleeing})
		} else if danger < float32(cfg.StopFleeThreshold) && ant.State == components.StateFleeing {
			changes = append(changes, stateChange{entity, components.StateWandering})
		}
	}

	g.applyStateChanges(changes)
}

// maxDangerAt returns the strongest danger signal at a tile across all
// colonies.
func (g *Game) maxDangerAt(x, y int) float32 {
	var max float32
	for _, colony := range g.colonies {
		if d := g.pheromones.ConcentrationAt(x, y, colony.ID, systems.ChannelDanger); d > max {
			max = d
		}
	}
	return max
}

// sumDangerAt returns the total danger signal at a tile across all colonies.
func (g *Game) sumDangerAt(x, y int) float32 {
	var sum float32
	for _, colony := range g.colonies {
		sum += g.pheromones.ConcentrationAt(x, y, colony.ID, systems.ChannelDanger)
	}
	return sum
}

// pendingMove is a deferred position update.
type pendingMove struct {
	entity ecs.Entity
	x, y   int
}

// updateMovement decides one step per ant based on its state and applies all
// moves after iteration. Every candidate step is terrain-checked; the
// pheromone field itself never consults passability.
func (g *Game) updateMovement() {
	var moves []pendingMove

	query := g.antFilter.Query()
	for query.Next() {
		entity := query.Entity()
		pos, ant, member, _ := query.Get()

		// Eggs and larvae don't move
		if ant.Role == components.RoleEgg || ant.Role == components.RoleLarva {
			continue
		}

		// Queens stay put almost always
		if ant.Role == components.RoleQueen && g.rng.Intn(256) > g.cfg.Movement.QueenMoveChance {
			continue
		}

		var dx, dy int
		switch ant.State {
		case components.StateWandering:
			dx, dy = g.wanderStep(pos, member)
		case components.StateFollowing:
			dx, dy = g.wanderStep(pos, member)
		case components.StateDigging:
			dx, dy = g.digStep(pos)
		case components.StateReturning:
			dx, dy = g.climbStep(pos)
		case components.StateCarrying:
			dx, dy = g.carryStep(pos, member)
		case components.StateFighting:
			dx, dy = g.fightStep(pos, member)
		case components.StateFleeing:
			dx, dy = g.fleeStep(pos)
		case components.StateIdle:
			if g.rng.Intn(256) < g.cfg.Movement.IdleMoveChance {
				dx, dy = g.randomStep()
			}
		}

		if dx == 0 && dy == 0 {
			continue
		}
		nx, ny := pos.X+dx, pos.Y+dy
		if g.terrain.IsPassable(nx, ny) {
			moves = append(moves, pendingMove{entity, nx, ny})
		}
	}

	for _, m := range moves {
		if pos := g.posMap.Get(m.entity); pos != nil {
			pos.X, pos.Y = m.x, m.y
		}
	}
}

// randomStep picks an undirected step with a slight downward bias that
// feeds the excavation behavior.
func (g *Game) randomStep() (int, int) {
	steps := [8][2]int{
		{0, -1}, {0, 1}, {0, 1}, {-1, 0}, {1, 0}, {-1, 1}, {1, 1}, {0, 0},
	}
	s := steps[g.rng.Intn(len(steps))]
	return s[0], s[1]
}

// wanderStep follows the food trail when the local signal is strong enough,
// otherwise falls back to a random step.
func (g *Game) wanderStep(pos *components.Position, member *components.ColonyMember) (int, int) {
	here := g.pheromones.ConcentrationAt(pos.X, pos.Y, member.ColonyID, systems.ChannelFood)
	if here > float32(g.cfg.Food.TrailThreshold) {
		if dx, dy, ok := g.pheromones.GradientDirection(pos.X, pos.Y, member.ColonyID, systems.ChannelFood); ok {
			if g.terrain.IsPassable(pos.X+dx, pos.Y+dy) {
				return dx, dy
			}
		}
	}
	return g.randomStep()
}

// digStep moves into freshly excavated space, preferring downward.
func (g *Game) digStep(pos *components.Position) (int, int) {
	dirs := [5][2]int{{0, 1}, {-1, 1}, {1, 1}, {-1, 0}, {1, 0}}
	for _, d := range dirs {
		tile := g.terrain.Get(pos.X+d[0], pos.Y+d[1])
		if tile == systems.TileAir || tile == systems.TileTunnel {
			return d[0], d[1]
		}
	}
	// Blocked; stay and keep digging next tick
	return 0, 0
}

// climbStep heads back toward the surface, preferring upward.
func (g *Game) climbStep(pos *components.Position) (int, int) {
	dirs := [5][2]int{{0, -1}, {-1, -1}, {1, -1}, {-1, 0}, {1, 0}}
	for _, d := range dirs {
		if g.terrain.IsPassable(pos.X+d[0], pos.Y+d[1]) {
			return d[0], d[1]
		}
	}
	for _, d := range [2][2]int{{-1, 0}, {1, 0}} {
		if g.terrain.IsPassable(pos.X+d[0], pos.Y+d[1]) && g.rng.Intn(2) == 0 {
			return d[0], d[1]
		}
	}
	return 0, 0
}

// carryStep heads home: direct path when passable, then axis-aligned
// detours, then the home trail.
func (g *Game) carryStep(pos *components.Position, member *components.ColonyMember) (int, int) {
	colony := g.colony(member.ColonyID)
	if colony == nil {
		return g.randomStep()
	}

	dx := sign(colony.HomeX - pos.X)
	dy := sign(colony.HomeY - pos.Y)

	if dx != 0 || dy != 0 {
		if g.terrain.IsPassable(pos.X+dx, pos.Y+dy) {
			return dx, dy
		}
		if dx != 0 && g.terrain.IsPassable(pos.X+dx, pos.Y) {
			return dx, 0
		}
		if dy != 0 && g.terrain.IsPassable(pos.X, pos.Y+dy) {
			return 0, dy
		}
	}

	if gx, gy, ok := g.pheromones.GradientDirection(pos.X, pos.Y, member.ColonyID, systems.ChannelHome); ok {
		if g.terrain.IsPassable(pos.X+gx, pos.Y+gy) {
			return gx, gy
		}
	}
	return g.randomStep()
}

// fightStep climbs the danger gradient toward the fight.
func (g *Game) fightStep(pos *components.Position, member *components.ColonyMember) (int, int) {
	if dx, dy, ok := g.pheromones.ClimbDirection(pos.X, pos.Y, member.ColonyID, systems.ChannelDanger); ok {
		return dx, dy
	}
	return g.randomStep()
}

// fleeStep picks the neighbor with the least total danger, if any neighbor
// improves on the current tile.
func (g *Game) fleeStep(pos *components.Position) (int, int) {
	current := g.sumDangerAt(pos.X, pos.Y)

	var bestDX, bestDY int
	best := current
	found := false
	for _, off := range [8][2]int{
		{0, -1}, {0, 1}, {-1, 0}, {1, 0}, {-1, -1}, {1, -1}, {-1, 1}, {1, 1},
	} {
		danger := g.sumDangerAt(pos.X+off[0], pos.Y+off[1])
		if danger < best {
			best = danger
			bestDX, bestDY = off[0], off[1]
			found = true
		}
	}
	if !found {
		return g.randomStep()
	}
	return bestDX, bestDY
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
