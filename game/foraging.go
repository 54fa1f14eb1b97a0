package game

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/anthill/components"
)

// updateForaging handles food pickup at sources and delivery at the nest.
func (g *Game) updateForaging() {
	cfg := g.cfg.Food

	// Snapshot food source positions; the set is small
	type foodSite struct {
		entity ecs.Entity
		x, y   int
	}
	var sites []foodSite

	foodQuery := g.foodFilter.Query()
	for foodQuery.Next() {
		entity := foodQuery.Entity()
		pos, food := foodQuery.Get()
		if food.Amount > 0 {
			sites = append(sites, foodSite{entity, pos.X, pos.Y})
		}
	}

	var pickups []struct{ ant, food ecs.Entity }
	var deliveries []ecs.Entity

	query := g.antFilter.Query()
	for query.Next() {
		entity := query.Entity()
		pos, ant, member, _ := query.Get()
		if ant.Role != components.RoleWorker {
			continue
		}

		switch ant.State {
		case components.StateWandering, components.StateFollowing:
			for _, site := range sites {
				if pos.X == site.x && pos.Y == site.y {
					pickups = append(pickups, struct{ ant, food ecs.Entity }{entity, site.entity})
					break
				}
			}

		case components.StateCarrying:
			colony := g.colony(member.ColonyID)
			if colony == nil {
				continue
			}
			dist := abs(pos.X-colony.HomeX) + abs(pos.Y-colony.HomeY)
			if dist <= cfg.DepositDistance {
				deliveries = append(deliveries, entity)
			}
		}
	}

	for _, p := range pickups {
		_, src := g.foodMapper.Get(p.food)
		if src == nil || src.Amount == 0 {
			continue
		}
		src.Amount--

		if ant := g.antMap.Get(p.ant); ant != nil {
			ant.State = components.StateCarrying
		}
		if g.carryMap.Get(p.ant) == nil {
			g.carryMap.Add(p.ant, &components.Carrying{Food: uint16(cfg.FoodPerTrip)})
		}
	}

	for _, entity := range deliveries {
		member := g.memberMap.Get(entity)
		carrying := g.carryMap.Get(entity)
		if member == nil {
			continue
		}

		amount := cfg.FoodPerTrip
		if carrying != nil {
			amount = int(carrying.Food)
		}
		if colony := g.colony(member.ColonyID); colony != nil {
			colony.FoodStored += amount
			g.collector.RecordFoodDelivered(amount)
		}

		if ant := g.antMap.Get(entity); ant != nil {
			ant.State = components.StateWandering
		}
		if carrying != nil {
			g.carryMap.Remove(entity)
		}
	}
}

// updateFoodRegrowth slowly replenishes depleted food sources.
func (g *Game) updateFoodRegrowth() {
	cfg := g.cfg.Food
	if cfg.RegrowInterval <= 0 || g.tick%uint64(cfg.RegrowInterval) != 0 {
		return
	}

	query := g.foodFilter.Query()
	for query.Next() {
		_, food := query.Get()
		if int(food.Amount) < cfg.InitialAmount {
			food.Amount += food.RegrowRate
		}
	}
}
