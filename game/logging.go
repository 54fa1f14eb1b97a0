package game

import (
	"log/slog"

	"github.com/pthm-cable/anthill/components"
	"github.com/pthm-cable/anthill/systems"
	"github.com/pthm-cable/anthill/telemetry"
)

// windowSnapshot samples the world state for a closing stats window: a
// population census by role, total stored food, and a distribution summary of
// the food trail channel.
func (g *Game) windowSnapshot() telemetry.Snapshot {
	var snap telemetry.Snapshot

	query := g.antFilter.Query()
	for query.Next() {
		_, ant, _, _ := query.Get()
		snap.Population++
		switch ant.Role {
		case components.RoleQueen:
			snap.Queens++
		case components.RoleWorker:
			snap.Workers++
		case components.RoleSoldier:
			snap.Soldiers++
		case components.RoleEgg:
			snap.Eggs++
		case components.RoleLarva:
			snap.Larvae++
		}
	}

	for i := range g.colonies {
		snap.FoodStored += g.colonies[i].FoodStored
	}

	g.fieldScratch = g.pheromones.ChannelValues(g.fieldScratch[:0], systems.ChannelFood)
	snap.FoodTrail = telemetry.SummarizeField(g.fieldScratch)

	return snap
}

// LogWorldState writes a per-colony summary to the structured log. Called at
// startup and shutdown.
func (g *Game) LogWorldState() {
	for i := range g.colonies {
		colony := &g.colonies[i]
		pop := g.populationSummary(colony.ID)
		slog.Info("colony",
			"id", colony.ID,
			"home_x", colony.HomeX,
			"home_y", colony.HomeY,
			"queen_alive", colony.QueenAlive,
			"food_stored", colony.FoodStored,
			"population", pop.Total(),
			"workers", pop.Workers,
			"soldiers", pop.Soldiers,
			"eggs", pop.Eggs,
			"larvae", pop.Larvae,
		)
	}
}
