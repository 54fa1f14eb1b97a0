package game

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/anthill/components"
)

// updateLifecycle advances the colony life cycle: queens lay eggs, eggs
// hatch, larvae mature, adults age out, and the colony eats.
func (g *Game) updateLifecycle() {
	lc := g.cfg.Lifecycle

	if lc.QueenLayInterval > 0 && g.tick%uint64(lc.QueenLayInterval) == 0 {
		g.layEggs()
	}

	g.ageAndTransition()

	if lc.FoodConsumeInterval > 0 && g.tick%uint64(lc.FoodConsumeInterval) == 0 {
		g.consumeFood()
	}
}

// layEggs spawns an egg next to each queen whose colony can pay the cost.
func (g *Game) layEggs() {
	lc := g.cfg.Lifecycle

	var clutch []struct {
		x, y   int
		colony uint8
	}

	query := g.antFilter.Query()
	for query.Next() {
		pos, ant, member, _ := query.Get()
		if ant.Role != components.RoleQueen {
			continue
		}
		colony := g.colony(member.ColonyID)
		if colony == nil || colony.FoodStored < lc.FoodPerEgg {
			continue
		}
		colony.FoodStored -= lc.FoodPerEgg
		clutch = append(clutch, struct {
			x, y   int
			colony uint8
		}{pos.X, pos.Y, member.ColonyID})
	}

	offsets := [6][2]int{{0, 1}, {1, 0}, {-1, 0}, {0, -1}, {1, 1}, {-1, 1}}
	for _, egg := range clutch {
		off := offsets[g.rng.Intn(len(offsets))]
		g.spawnAnt(egg.x+off[0], egg.y+off[1], egg.colony, components.RoleEgg)
		g.collector.RecordEggLaid()
	}
}

// ageAndTransition ticks every Age counter and applies the stage change it
// triggers: eggs hatch, larvae mature, adults die of old age.
func (g *Game) ageAndTransition() {
	type transition struct {
		entity ecs.Entity
		role   components.Role
	}
	var expired []transition

	query := g.antFilter.Query()
	for query.Next() {
		entity := query.Entity()
		_, ant, _, age := query.Get()

		age.Ticks++
		if age.Ticks < age.MaxTicks {
			continue
		}
		expired = append(expired, transition{entity, ant.Role})
	}

	for _, t := range expired {
		switch t.role {
		case components.RoleEgg:
			g.hatch(t.entity)
		case components.RoleLarva:
			g.mature(t.entity)
		default:
			// Old age
			g.markDead(t.entity)
		}
	}
}

// hatch turns an egg into a larva.
func (g *Game) hatch(entity ecs.Entity) {
	ant := g.antMap.Get(entity)
	age := g.ageOf(entity)
	if ant == nil || age == nil {
		return
	}
	ant.Role = components.RoleLarva
	age.Ticks = 0
	age.MaxTicks = uint32(g.cfg.Lifecycle.LarvaMatureTime)
	g.collector.RecordHatch()
}

// mature turns a larva into a worker or, less often, a soldier.
func (g *Game) mature(entity ecs.Entity) {
	lc := g.cfg.Lifecycle
	ant := g.antMap.Get(entity)
	age := g.ageOf(entity)
	if ant == nil || age == nil {
		return
	}

	role := components.RoleSoldier
	lifespan := lc.SoldierLifespan
	if g.rng.Intn(256) < lc.WorkerRatio {
		role = components.RoleWorker
		lifespan = lc.WorkerLifespan
	}

	ant.Role = role
	ant.State = components.StateWandering
	age.Ticks = 0
	age.MaxTicks = uint32(lifespan)
	g.collector.RecordMature()
}

// ageOf returns an entity's Age component, or nil.
func (g *Game) ageOf(entity ecs.Entity) *components.Age {
	_, _, _, age := g.antMapper.Get(entity)
	return age
}

// consumeFood drains colony stores proportionally to population. Larvae eat
// more than adults; eggs eat nothing. A colony that cannot pay simply runs
// dry; starvation pressure comes from the queen being unable to lay.
func (g *Game) consumeFood() {
	lc := g.cfg.Lifecycle
	needed := make([]int, len(g.colonies))

	query := g.antFilter.Query()
	for query.Next() {
		_, ant, member, _ := query.Get()
		idx := int(member.ColonyID)
		if idx >= len(needed) {
			continue
		}
		switch ant.Role {
		case components.RoleLarva:
			needed[idx] += lc.LarvaFoodCost
		case components.RoleQueen, components.RoleWorker, components.RoleSoldier:
			needed[idx] += lc.AntFoodCost
		}
	}

	for i := range g.colonies {
		g.colonies[i].FoodStored -= needed[i]
		if g.colonies[i].FoodStored < 0 {
			g.colonies[i].FoodStored = 0
		}
	}
}
