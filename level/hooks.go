package level

// The object lifecycle hooks, dispatched by ObjectKind rather than virtual
// methods. Every hook is a free function taking the
// level, the object's reference, and its mutable state; hooks that don't
// apply to a kind are simply absent from the switch and fall through to a
// no-op default.

func (lvl *Level) callAfterMovement(ref ObjectRef, obj *ObjectState) {
	switch obj.Kind {
	case KindRock, KindDirtObject, KindBomb:
		// Landing from a fall or roll; nothing extra beyond the movement
		// bookkeeping already done in advanceMovement.
	}
}

// callIdle runs the kind's idle hook once per tick for objects with no
// movement and no gravity pull, returning true if the object consumed its
// turn (acted).
func (lvl *Level) callIdle(ref ObjectRef, obj *ObjectState) bool {
	switch obj.Kind {
	case KindPlayer:
		return lvl.playerIdle(ref, obj)
	case KindExplosion:
		return lvl.explosionIdle(ref, obj)
	case KindHorizFan:
		lvl.applyFanFlow(obj, 1, 0)
		return true
	case KindVertFan:
		lvl.applyFanFlow(obj, 0, 1)
		return true
	case KindFlamethrower:
		return lvl.flamethrowerIdle(ref, obj)
	default:
		return false
	}
}

// callHeadache runs on obj each tick a gravity-affected object rests on top
// of it and the pair cannot roll; it does not distinguish a fresh landing
// from an object that was already resting there.
func (lvl *Level) callHeadache(ref ObjectRef, obj *ObjectState, from ObjectRef) {
	switch obj.Kind {
	case KindBomb:
		lvl.triggerBombExplosion(ref, obj)
	}
}

// callImpact runs on a gravity-affected obj each tick it rests on top of
// something it cannot roll off, whether or not it has just fallen; reports
// whether the impact destroys obj.
func (lvl *Level) callImpact(ref ObjectRef, obj *ObjectState, on ObjectRef) bool {
	switch obj.Kind {
	case KindBomb:
		lvl.triggerBombExplosion(ref, obj)
		return true
	}
	return false
}

func (lvl *Level) playerIdle(ref ObjectRef, obj *ObjectState) bool {
	dir := obj.Frame.Acting
	obj.Frame.Acting = ActNone
	if dir == ActNone {
		return false
	}
	to := obj.Cell
	switch dir {
	case ActMoveUp:
		to.Y--
	case ActMoveDown:
		to.Y++
	case ActMoveLeft:
		to.X--
	case ActMoveRight:
		to.X++
	}
	if !lvl.inBounds(to) {
		return false
	}
	target := lvl.cellAt(to)
	if target.Here.Valid || target.ReservedBy.Valid {
		return false
	}
	lvl.startStraight(ref, obj, to)
	return true
}

// flamethrowerIdle ticks down the weapon's fuel counter while it is
// igniting; once spent it stops applying heat but is not itself destroyed
// (a Flamethrower is a placed fixture, not a consumable).
func (lvl *Level) flamethrowerIdle(ref ObjectRef, obj *ObjectState) bool {
	if !obj.Frame.Ignite || obj.FlamethrowerFuel <= 0 {
		return false
	}
	obj.FlamethrowerFuel--
	mapCoords := obj.Info.Stamp.MapCoords()
	lvl.automaton.ApplyTemperatureStamp(obj.Phy.X, obj.Phy.Y, mapCoords, obj.Frame.OwnTemperature)
	return true
}

func (lvl *Level) explosionIdle(ref ObjectRef, obj *ObjectState) bool {
	obj.ExplosionTicks--
	if obj.ExplosionTicks <= 0 {
		lvl.destroyObject(ref, obj)
	}
	return true
}

// triggerBombExplosion destroys the bomb and replaces its tile with an
// Explosion. AddLargeExplosion's own placement at the bomb's cell evicts
// the bomb via PlaceObject's eviction path, so this must not also call
// destroyObject itself — doing so a second time would tear up the
// just-placed Explosion's stamp instead.
func (lvl *Level) triggerBombExplosion(ref ObjectRef, obj *ObjectState) {
	if obj.Frame.Explode {
		return
	}
	obj.Frame.Explode = true
	cell := obj.Cell
	lvl.AddLargeExplosion(cell.X, cell.Y, 1, 1)
}

func (lvl *Level) applyFanFlow(obj *ObjectState, dx, dy float64) {
	intensity := obj.FanIntensity
	if intensity == 0 {
		intensity = 3.0
	}
	phy := obj.Phy
	mapCoords := obj.Info.Stamp.MapCoords()
	lvl.automaton.ApplyFlowStamp(phy.X, phy.Y, mapCoords, dx, dy, intensity*0.2)
}

func (lvl *Level) destroyObject(ref ObjectRef, obj *ObjectState) {
	if obj.Dead {
		return
	}
	obj.Dead = true
	cell := lvl.cellAt(obj.Cell)
	if cell.Here == ref {
		cell.Here = ObjectRef{}
	}
	if obj.IsPlayer && lvl.player == ref {
		lvl.player = ObjectRef{}
		if lvl.OnPlayerDeath != nil {
			lvl.OnPlayerDeath()
		}
	}
	if obj.Info.Stamp.NonEmpty() {
		lvl.automaton.ClearCells(obj.Phy.X, obj.Phy.Y, obj.Info.Stamp.MapCoords())
	}
	lvl.objects.Remove(ref)
}
