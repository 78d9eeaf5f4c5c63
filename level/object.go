package level

import "github.com/mlange-42/ark/ecs"

// Coord is an (x, y) coarse-tile coordinate.
type Coord struct {
	X, Y int
}

// ObjectRef is a non-owning reference to a GameObject. The zero value of
// ecs.Entity is not attested in the retrieval pack as meaning "no entity",
// so presence is tracked explicitly with Valid rather than relying on a
// guessed zero-value convention.
type ObjectRef struct {
	Entity ecs.Entity
	Valid  bool
}

// FrameState latches per-tick inputs consumed by the object's update hook.
type FrameState struct {
	Explode         bool
	Ignite          bool
	OwnTemperature  float64
	SurrTemperature float64
	Acting          ActDirection
}

// ActDirection is a pending player/object action for the next tick.
type ActDirection int

const (
	ActNone ActDirection = iota
	ActMoveUp
	ActMoveDown
	ActMoveLeft
	ActMoveRight
)

// MovementKind tags which variant an active Movement is.
type MovementKind int

const (
	MovementNone MovementKind = iota
	MovementStraight
	MovementRoll
)

// Movement is the tagged variant {Straight, Roll}. A zero-value Movement
// (Kind == MovementNone) means the object is not currently moving.
type Movement struct {
	Kind MovementKind

	From Coord
	Via  Coord // only used by Roll
	To   Coord

	StartX, StartY float64
	T              float64 // progress in [0, 2), per the Straight semantics

	// RollReleasedVia tracks whether the midpoint release of via's
	// reservation has already happened, so it fires exactly once.
	RollReleasedVia bool
}

// ObjectState is the single ECS component holding everything a game object
// needs. Bundled into one component (rather than split across
// several) because the domain model treats it as one record; ark's generic
// Map works just as well over one struct as over several.
type ObjectState struct {
	Info *ObjectInfo
	Kind ObjectKind

	Cell Coord
	X, Y float64
	Phi  float64
	Phy  Coord

	Movement Movement
	Ticks    uint64
	Frame    FrameState

	// Kind-specific fields. Zero-valued and unused for kinds that don't
	// need them; keeping them on the shared struct avoids a second
	// component map for a handful of scalars.
	IsPlayer         bool
	ExplosionTicks   int
	FlamethrowerFuel int
	FanIntensity     float64
	Dead             bool
}

func (o *ObjectState) moving() bool { return o.Movement.Kind != MovementNone }

// Moving reports whether the object is currently mid-Straight or mid-Roll
// movement, for callers outside the package inspecting movement invariants.
func (o *ObjectState) Moving() bool { return o.moving() }
