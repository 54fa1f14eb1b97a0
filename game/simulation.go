package game

import (
	"log/slog"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/anthill/components"
	"github.com/pthm-cable/anthill/systems"
	"github.com/pthm-cable/anthill/telemetry"
)

// Step advances the simulation by one tick. Phase order is load-bearing:
// the spatial grid is rebuilt first and read-only afterwards, and the
// pheromone passes run decay -> diffuse -> deposit. Depositing before decay
// would double-discount a tick's contribution; diffusing before decay would
// double-spread stale peaks.
func (g *Game) Step() {
	g.tick++
	g.perf.StartTick()

	g.perf.StartPhase(telemetry.PhaseSpatialGrid)
	g.rebuildSpatialGrid()

	g.perf.StartPhase(telemetry.PhaseAI)
	g.updateDigAI()
	g.updateSoldierAI()
	g.updateFleeAI()

	g.perf.StartPhase(telemetry.PhaseMovement)
	g.updateMovement()

	g.perf.StartPhase(telemetry.PhaseActions)
	g.updateDigging()
	g.updateForaging()
	g.updateCombat()
	if g.cfg.Hazard.CaveInInterval > 0 && g.tick%uint64(g.cfg.Hazard.CaveInInterval) == 0 {
		g.updateCaveIns()
	}

	g.perf.StartPhase(telemetry.PhasePheromones)
	g.pheromones.Decay()
	g.pheromones.Diffuse()
	g.updatePheromoneDeposits()

	g.perf.StartPhase(telemetry.PhaseLifecycle)
	g.updateLifecycle()
	g.updateFoodRegrowth()

	g.perf.StartPhase(telemetry.PhaseCleanup)
	g.removeDead()

	g.perf.StartPhase(telemetry.PhaseTelemetry)
	g.flushTelemetry()

	g.perf.EndTick()
}

// rebuildSpatialGrid clears and repopulates the index with every living ant.
// The grid's contents are valid only for this tick.
func (g *Game) rebuildSpatialGrid() {
	g.spatial.Clear()

	query := g.antFilter.Query()
	for query.Next() {
		entity := query.Entity()
		pos, _, member, _ := query.Get()
		g.spatial.Insert(entity, pos.X, pos.Y, member.ColonyID)
	}
}

// updatePheromoneDeposits lays trail signal from ant positions. Runs after
// decay and diffusion so a tick's fresh deposits are not discounted or
// spread in the same tick.
func (g *Game) updatePheromoneDeposits() {
	ph := g.cfg.Pheromone

	query := g.antFilter.Query()
	for query.Next() {
		pos, ant, member, _ := query.Get()

		switch ant.State {
		case components.StateCarrying:
			// Carriers advertise the path they found food on.
			g.pheromones.Deposit(pos.X, pos.Y, member.ColonyID, systems.ChannelFood, float32(ph.DepositFood))
			g.collector.RecordDeposit()

		case components.StateWandering, components.StateReturning:
			// Home trail near the nest only, scaled by proximity.
			colony := g.colony(member.ColonyID)
			if colony == nil {
				continue
			}
			dist := float64(abs(pos.X-colony.HomeX) + abs(pos.Y-colony.HomeY))
			proximity := 1 - dist/ph.HomeDepositRadius
			if proximity > 0 {
				g.pheromones.Deposit(pos.X, pos.Y, member.ColonyID, systems.ChannelHome,
					float32(ph.DepositHome*proximity))
				g.collector.RecordDeposit()
			}

		case components.StateDigging:
			// Diggers leave a faint home trace so they can find their way up.
			colony := g.colony(member.ColonyID)
			if colony == nil {
				continue
			}
			dist := float64(abs(pos.X-colony.HomeX) + abs(pos.Y-colony.HomeY))
			proximity := 1 - dist/ph.DigDepositRadius
			if proximity > 0 {
				g.pheromones.Deposit(pos.X, pos.Y, member.ColonyID, systems.ChannelHome,
					float32(ph.DepositHome*ph.DigDepositFraction*proximity))
				g.collector.RecordDeposit()
			}
		}
	}
}

// colony returns the colony with the given id, or nil.
func (g *Game) colony(id uint8) *ColonyState {
	for i := range g.colonies {
		if g.colonies[i].ID == id {
			return &g.colonies[i]
		}
	}
	return nil
}

// removeDead despawns every entity marked Dead this tick.
func (g *Game) removeDead() {
	type deadInfo struct {
		entity ecs.Entity
		role   components.Role
		colony uint8
	}
	var toRemove []deadInfo

	query := g.deadFilter.Query()
	for query.Next() {
		entity := query.Entity()
		info := deadInfo{entity: entity, role: components.RoleWorker}
		if ant := g.antMap.Get(entity); ant != nil {
			info.role = ant.Role
		}
		if member := g.memberMap.Get(entity); member != nil {
			info.colony = member.ColonyID
		}
		toRemove = append(toRemove, info)
	}

	for _, dead := range toRemove {
		if dead.role == components.RoleQueen {
			if colony := g.colony(dead.colony); colony != nil {
				colony.QueenAlive = false
			}
		}
		g.collector.RecordDeath(dead.role)
		g.world.RemoveEntity(dead.entity)
	}
}

// flushTelemetry emits window stats when the current window closes.
func (g *Game) flushTelemetry() {
	stats, done := g.collector.EndTick(g.tick, g.windowSnapshot)
	if !done {
		return
	}
	if g.logStats {
		stats.Log()
	}
	if g.output != nil {
		if err := g.output.WriteTelemetry(stats); err != nil {
			slog.Error("writing telemetry", "error", err)
		}
	}
	if perf, ok := g.perf.Summary(g.tick); ok {
		if g.logStats {
			perf.Log()
		}
		if g.output != nil {
			if err := g.output.WritePerf(perf); err != nil {
				slog.Error("writing perf", "error", err)
			}
		}
	}
}
