package game

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/anthill/components"
	"github.com/pthm-cable/anthill/systems"
)

// pairKey orders two entities canonically so a symmetric pair found from
// both sides of a spatial query is processed once.
type pairKey struct {
	a, b uint32
}

func makePairKey(a, b ecs.Entity) pairKey {
	ai, bi := uint32(a.ID()), uint32(b.ID())
	if ai > bi {
		ai, bi = bi, ai
	}
	return pairKey{ai, bi}
}

// updateCombat resolves fights between adjacent ants of different colonies,
// every combat interval. Adjacency comes from the spatial grid: each
// combatant checks its 3x3 bucket neighborhood instead of scanning every
// ant. Both sides of a pair take damage and both lay danger signal at the
// fight site.
func (g *Game) updateCombat() {
	cfg := g.cfg.Combat
	if cfg.Interval <= 0 || g.tick%uint64(cfg.Interval) != 0 {
		return
	}

	type combatant struct {
		entity   ecs.Entity
		x, y     int
		colony   uint8
		role     components.Role
		strength uint8
	}
	var combatants []combatant
	strengthOf := make(map[uint32]combatant)

	query := g.antFilter.Query()
	for query.Next() {
		entity := query.Entity()
		pos, ant, member, _ := query.Get()
		if ant.Role != components.RoleWorker && ant.Role != components.RoleSoldier {
			continue
		}

		strength := uint8(cfg.WorkerStrength)
		if ant.Role == components.RoleSoldier {
			strength = uint8(cfg.SoldierStrength)
		}
		c := combatant{entity, pos.X, pos.Y, member.ColonyID, ant.Role, strength}
		combatants = append(combatants, c)
		strengthOf[uint32(entity.ID())] = c
	}

	type hit struct {
		entity ecs.Entity
		damage uint8
	}
	var hits []hit
	var dangerSites []struct {
		x, y   int
		colony uint8
	}
	processed := make(map[pairKey]struct{})

	for _, a := range combatants {
		g.queryScratch = g.spatial.QueryNearbyInto(g.queryScratch[:0], a.x, a.y)
		for _, b := range g.queryScratch {
			if b.Colony == a.colony {
				continue
			}
			key := makePairKey(a.entity, b.Entity)
			if _, done := processed[key]; done {
				continue
			}

			// Adjacent including diagonals
			if max(abs(a.x-b.X), abs(a.y-b.Y)) > 1 {
				continue
			}

			other, ok := strengthOf[uint32(b.Entity.ID())]
			if !ok {
				continue
			}

			hits = append(hits,
				hit{b.Entity, g.rollDamage(a.role, a.strength)},
				hit{a.entity, g.rollDamage(other.role, other.strength)},
			)
			dangerSites = append(dangerSites,
				struct {
					x, y   int
					colony uint8
				}{a.x, a.y, a.colony},
				struct {
					x, y   int
					colony uint8
				}{b.X, b.Y, b.Colony},
			)
			processed[key] = struct{}{}
		}
	}

	for _, h := range hits {
		g.applyDamage(h.entity, h.damage)
	}
	for _, site := range dangerSites {
		g.pheromones.Deposit(site.x, site.y, site.colony, systems.ChannelDanger,
			float32(g.cfg.Pheromone.DepositDanger))
	}
}

// rollDamage computes damage from role, strength, and a random roll.
func (g *Game) rollDamage(role components.Role, strength uint8) uint8 {
	cfg := g.cfg.Combat

	base := cfg.BaseDamage
	if role == components.RoleSoldier {
		base = cfg.BaseDamage * 2
	}

	roll := g.rng.Intn(cfg.DamageRandomRange)
	dmg := base + roll + int(strength)/10 - 5
	if dmg < 0 {
		dmg = 0
	}
	if dmg > 255 {
		dmg = 255
	}
	return uint8(dmg)
}

// applyDamage subtracts health, attaching a Fighter component on first blood
// and marking the ant dead at zero.
func (g *Game) applyDamage(entity ecs.Entity, damage uint8) {
	fighter := g.fighterMap.Get(entity)
	if fighter == nil {
		health := uint8(g.cfg.Combat.DefaultHealth)
		if damage >= health {
			g.markDead(entity)
			g.collector.RecordKill()
			return
		}
		g.fighterMap.Add(entity, &components.Fighter{
			Strength: uint8(g.cfg.Combat.WorkerStrength),
			Health:   health - damage,
		})
		return
	}

	if damage >= fighter.Health {
		fighter.Health = 0
		g.markDead(entity)
		g.collector.RecordKill()
		return
	}
	fighter.Health -= damage
}

// markDead flags an entity for the cleanup phase.
func (g *Game) markDead(entity ecs.Entity) {
	if g.deadMap.Get(entity) == nil {
		g.deadMap.Add(entity, &components.Dead{})
	}
}
