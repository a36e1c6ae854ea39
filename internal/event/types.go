package event

const (
	EventCrouchChanged  = "crouch.changed"
	EventStandBlocked   = "stand.blocked"
	EventLanded         = "landed"
	EventImpulseApplied = "impulse.applied"
	EventRespawned      = "respawned"
)

type CrouchChangedEvent struct {
	Crouched   bool
	HalfHeight float64
}

// StandBlockedEvent is raised on each tick a stand-up request is refused
// because something is overhead.
type StandBlockedEvent struct {
	Clearance float64
}

type LandedEvent struct {
	ImpactSpeed float64
}

type ImpulseAppliedEvent struct {
	Impulse float64
}

type RespawnedEvent struct {
	X, Y, Z float64
}
