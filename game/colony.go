package game

import (
	"github.com/pthm-cable/anthill/components"
)

// ColonyState holds the non-ECS state of one colony. The colony id is the
// owner index into the pheromone field; the home position is the reference
// point callers use to scale home-trail deposits by proximity.
type ColonyState struct {
	ID         uint8
	HomeX      int
	HomeY      int
	FoodStored int
	QueenAlive bool
}

// NewColonyState creates a colony anchored at the given nest position.
func NewColonyState(id uint8, homeX, homeY, initialFood int) ColonyState {
	return ColonyState{
		ID:         id,
		HomeX:      homeX,
		HomeY:      homeY,
		FoodStored: initialFood,
		QueenAlive: true,
	}
}

// PopulationCount is a per-role census of one colony.
type PopulationCount struct {
	Queens   int
	Workers  int
	Soldiers int
	Eggs     int
	Larvae   int
}

// Total returns the colony's full population.
func (p PopulationCount) Total() int {
	return p.Queens + p.Workers + p.Soldiers + p.Eggs + p.Larvae
}

// populationSummary counts living members of a colony by role.
func (g *Game) populationSummary(colonyID uint8) PopulationCount {
	var count PopulationCount

	query := g.antFilter.Query()
	for query.Next() {
		_, ant, member, _ := query.Get()
		if member.ColonyID != colonyID {
			continue
		}
		switch ant.Role {
		case components.RoleQueen:
			count.Queens++
		case components.RoleWorker:
			count.Workers++
		case components.RoleSoldier:
			count.Soldiers++
		case components.RoleEgg:
			count.Eggs++
		case components.RoleLarva:
			count.Larvae++
		}
	}

	return count
}
