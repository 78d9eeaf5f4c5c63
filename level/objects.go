package level

import "github.com/mlange-42/ark/ecs"

// Objects is the object pool: an ark/ecs world with a single component map
// over ObjectState. References are indices into a slab/arena rather than
// raw pointers — GameObject references elsewhere (LevelCell.here/reserved_by)
// are ObjectRef values wrapping ecs.Entity.
type Objects struct {
	world  *ecs.World
	mapper *ecs.Map[ObjectState]
}

func newObjects() *Objects {
	world := ecs.NewWorld()
	return &Objects{
		world:  world,
		mapper: ecs.NewMap[ObjectState](world),
	}
}

// Spawn creates a new object and returns a reference to it.
func (o *Objects) Spawn(state ObjectState) ObjectRef {
	e := o.mapper.NewEntity(&state)
	return ObjectRef{Entity: e, Valid: true}
}

// Get returns the mutable state for ref, or nil if ref is not valid or no
// longer alive.
func (o *Objects) Get(ref ObjectRef) *ObjectState {
	if !ref.Valid || !o.mapper.Has(ref.Entity) {
		return nil
	}
	return o.mapper.Get(ref.Entity)
}

// Remove destroys the object ref points to.
func (o *Objects) Remove(ref ObjectRef) {
	if !ref.Valid || !o.mapper.Has(ref.Entity) {
		return
	}
	o.mapper.Remove(ref.Entity)
}
