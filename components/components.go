// Package components defines ECS components for the simulation.
package components

// Position represents an entity's tile position on the terrain grid.
type Position struct {
	X, Y int
}

// Role identifies an ant's caste and life stage.
type Role uint8

const (
	RoleQueen Role = iota
	RoleWorker
	RoleSoldier
	RoleEgg
	RoleLarva
)

// String returns the role name for logging and telemetry.
func (r Role) String() string {
	switch r {
	case RoleQueen:
		return "queen"
	case RoleWorker:
		return "worker"
	case RoleSoldier:
		return "soldier"
	case RoleEgg:
		return "egg"
	case RoleLarva:
		return "larva"
	}
	return "unknown"
}

// State is an ant's current behavior state. Transitions are owned by the
// AI systems; movement only reads the state.
type State uint8

const (
	StateIdle State = iota
	StateWandering
	StateDigging
	StateReturning
	StateCarrying
	StateFollowing
	StateFighting
	StateFleeing
)

// String returns the state name for logging and telemetry.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateWandering:
		return "wandering"
	case StateDigging:
		return "digging"
	case StateReturning:
		return "returning"
	case StateCarrying:
		return "carrying"
	case StateFollowing:
		return "following"
	case StateFighting:
		return "fighting"
	case StateFleeing:
		return "fleeing"
	}
	return "unknown"
}

// Ant holds an ant's caste and behavior state.
type Ant struct {
	Role  Role
	State State
}

// ColonyMember ties an entity to its colony. The colony id doubles as the
// owner index into the pheromone field.
type ColonyMember struct {
	ColonyID uint8
}

// Fighter holds combat stats. Added lazily the first time an ant takes
// damage if it was not spawned with one.
type Fighter struct {
	Strength uint8
	Health   uint8
}

// Age counts an entity's lifetime in ticks. MaxTicks is stage-dependent:
// hatch time for eggs, maturation time for larvae, lifespan for adults.
type Age struct {
	Ticks    uint32
	MaxTicks uint32
}

// Dead marks an entity for removal during the cleanup phase.
type Dead struct{}

// FoodSource is a depletable, slowly regrowing food pile on the surface.
type FoodSource struct {
	Amount     uint16
	RegrowRate uint16
}

// Carrying marks an ant hauling food back to the nest.
type Carrying struct {
	Food uint16
}
