package level

import "github.com/horazont/maniaclab/mlerr"

// startStraight begins a Straight movement of obj from its current cell
// into the neighbor at "to". Preconditions: from.here == obj, from is not
// reserved, to is empty and not reserved.
func (lvl *Level) startStraight(ref ObjectRef, obj *ObjectState, to Coord) {
	from := obj.Cell
	fromCell := lvl.cellAt(from)
	toCell := lvl.cellAt(to)

	if fromCell.Here != ref || fromCell.ReservedBy.Valid {
		mlerr.Fail("level.startStraight", "from cell preconditions violated at %v", from)
	}
	if toCell.Here.Valid || toCell.ReservedBy.Valid {
		mlerr.Fail("level.startStraight", "to cell preconditions violated at %v", to)
	}
	if from.X == to.X && from.Y == to.Y {
		mlerr.Fail("level.startStraight", "move-by-zero at %v", from)
	}
	if from.X != to.X && from.Y != to.Y {
		mlerr.Fail("level.startStraight", "diagonal straight move from %v to %v", from, to)
	}

	fromCell.Here = ObjectRef{}
	fromCell.ReservedBy = ref
	toCell.Here = ref

	obj.Movement = Movement{
		Kind:   MovementStraight,
		From:   from,
		To:     to,
		StartX: obj.X,
		StartY: obj.Y,
	}
}

// startRoll begins a two-leg Roll movement: from -> via -> to, reserving
// both intermediate tiles. MovementRoll::update is a stub in the original
// source; this fills it in with linear interpolation at the same per-leg
// duration as Straight, releasing via's reservation at the movement's
// midpoint.
func (lvl *Level) startRoll(ref ObjectRef, obj *ObjectState, via, to Coord) {
	from := obj.Cell
	fromCell := lvl.cellAt(from)
	viaCell := lvl.cellAt(via)
	toCell := lvl.cellAt(to)

	if fromCell.Here != ref || fromCell.ReservedBy.Valid {
		mlerr.Fail("level.startRoll", "from cell preconditions violated at %v", from)
	}
	if viaCell.Here.Valid || viaCell.ReservedBy.Valid {
		mlerr.Fail("level.startRoll", "via cell preconditions violated at %v", via)
	}
	if toCell.Here.Valid || toCell.ReservedBy.Valid {
		mlerr.Fail("level.startRoll", "to cell preconditions violated at %v", to)
	}

	fromCell.Here = ObjectRef{}
	fromCell.ReservedBy = ref
	viaCell.ReservedBy = ref
	toCell.ReservedBy = ref
	toCell.Here = ref

	obj.Movement = Movement{
		Kind:   MovementRoll,
		From:   from,
		Via:    via,
		To:     to,
		StartX: obj.X,
		StartY: obj.Y,
	}
}

// movementTPerTick is how far Movement.T advances in a single Level.Step:
// T spans [0, 2) over the fixed per-leg duration time_slice/2, so a tick of
// length time_slice covers a full 2.0 units of T, completing a Straight
// move (and a two-leg Roll) within one tick. This is what the rock-falls-
// to-floor scenario's 40-tick bound for a ~39-tile drop requires.
const movementTPerTick = 2.0

// advanceMovement progresses obj's active movement by dtSlices (T units,
// see movementTPerTick); it returns true when the movement has completed
// this tick.
func (lvl *Level) advanceMovement(ref ObjectRef, obj *ObjectState, dtSlices float64) bool {
	m := &obj.Movement
	switch m.Kind {
	case MovementStraight:
		m.T += dtSlices
		if m.T < 2.0 {
			frac := m.T / 2.0
			obj.X = m.StartX + float64(m.To.X-m.From.X)*frac
			obj.Y = m.StartY + float64(m.To.Y-m.From.Y)*frac
			return false
		}
		obj.X = float64(m.To.X)
		obj.Y = float64(m.To.Y)
		obj.Cell = m.To
		lvl.cellAt(m.From).ReservedBy = ObjectRef{}
		lvl.callAfterMovement(ref, obj)
		obj.Movement = Movement{}
		return true

	case MovementRoll:
		m.T += dtSlices
		if m.T >= 1.0 && !m.RollReleasedVia {
			lvl.cellAt(m.Via).ReservedBy = ObjectRef{}
			m.RollReleasedVia = true
		}
		if m.T < 2.0 {
			var legStart, legEnd Coord
			var legFrac float64
			if m.T < 1.0 {
				legStart, legEnd = m.From, m.Via
				legFrac = m.T
			} else {
				legStart, legEnd = m.Via, m.To
				legFrac = m.T - 1.0
			}
			obj.X = float64(legStart.X) + float64(legEnd.X-legStart.X)*legFrac
			obj.Y = float64(legStart.Y) + float64(legEnd.Y-legStart.Y)*legFrac
			return false
		}
		obj.X = float64(m.To.X)
		obj.Y = float64(m.To.Y)
		obj.Cell = m.To
		lvl.cellAt(m.From).ReservedBy = ObjectRef{}
		lvl.cellAt(m.To).ReservedBy = ObjectRef{}
		lvl.callAfterMovement(ref, obj)
		obj.Movement = Movement{}
		return true

	default:
		return true
	}
}
