// Package level implements the coarse tile grid, object lifecycle, and
// tick loop: it drives the automaton once per tick, resolves
// gravity/rolling fall and movement, and keeps each object's fine-grid
// stamp in step with its tile position.
package level

import (
	"log/slog"
	"math"

	"github.com/horazont/maniaclab/automaton"
	"github.com/horazont/maniaclab/mlerr"
)

// flamethrowerFuelCapacity is how many idle ticks a placed Flamethrower
// can spend igniting before running dry.
const flamethrowerFuelCapacity = 200

// LevelCell is one coarse tile.
type LevelCell struct {
	Here       ObjectRef
	ReservedBy ObjectRef
}

// Config bundles the level-scoped constants needed from the global
// configuration, passed in explicitly so this package never imports the
// config singleton directly, avoiding a hidden dependency on process-wide
// state.
type Config struct {
	Width, Height      int
	SubdivisionCount   int
	TimeSlice          float64
	ExplosionLifetime  int
	FireTempRise       float64
	InitialPressure    float64
	InitialTemperature float64
}

// Level owns the fine automaton and the coarse object grid.
type Level struct {
	cfg       Config
	automaton *automaton.Automaton
	cells     []LevelCell
	objects   *Objects

	time   float64
	player ObjectRef

	// OnPlayerDeath is invoked when the player's GameObject is destroyed.
	OnPlayerDeath func()

	logger *slog.Logger
}

// NewLevel constructs an empty level of cfg.Width x cfg.Height tiles, backed
// by a fresh automaton of cfg.Width*cfg.SubdivisionCount x
// cfg.Height*cfg.SubdivisionCount cells.
func NewLevel(cfg Config, physCfg automaton.Config, maxWorkers int, logger *slog.Logger) *Level {
	if logger == nil {
		logger = slog.Default()
	}
	finew := cfg.Width * cfg.SubdivisionCount
	fineh := cfg.Height * cfg.SubdivisionCount
	auto := automaton.New(finew, fineh, physCfg, maxWorkers, logger)
	if cfg.InitialPressure != 0 || cfg.InitialTemperature != 0 {
		auto.Fill(cfg.InitialPressure, cfg.InitialTemperature)
	}
	return &Level{
		cfg:       cfg,
		automaton: auto,
		cells:     make([]LevelCell, cfg.Width*cfg.Height),
		objects:   newObjects(),
		logger:    logger,
	}
}

// Automaton exposes the fine physics grid for renderers.
func (lvl *Level) Automaton() *automaton.Automaton { return lvl.automaton }

// Time reports the level's accumulated simulation time in seconds.
func (lvl *Level) Time() float64 { return lvl.time }

// TimeSlice reports the level's fixed per-tick duration in seconds.
func (lvl *Level) TimeSlice() float64 { return lvl.cfg.TimeSlice }

func (lvl *Level) inBounds(c Coord) bool {
	return c.X >= 0 && c.Y >= 0 && c.X < lvl.cfg.Width && c.Y < lvl.cfg.Height
}

func (lvl *Level) index(c Coord) int { return c.Y*lvl.cfg.Width + c.X }

func (lvl *Level) cellAt(c Coord) *LevelCell {
	if !lvl.inBounds(c) {
		mlerr.Fail("level.cellAt", "coordinate %v out of bounds", c)
	}
	return &lvl.cells[lvl.index(c)]
}

// GetCell returns a read-only copy of the coarse cell at (x, y).
func (lvl *Level) GetCell(x, y int) LevelCell {
	return *lvl.cellAt(Coord{X: x, Y: y})
}

// phys converts a continuous tile coordinate to a fine-grid coordinate:
// phys(x,y) = (round(x*S), round(y*S)).
func (lvl *Level) phys(x, y float64) Coord {
	s := float64(lvl.cfg.SubdivisionCount)
	return Coord{X: int(math.Round(x * s)), Y: int(math.Round(y * s))}
}

func (lvl *Level) cellInfoFor(obj *ObjectState) []automaton.CellInfo {
	mc := obj.Info.Stamp.MapCoords()
	out := make([]automaton.CellInfo, len(mc))
	for i, off := range mc {
		out[i] = automaton.CellInfo{
			Offset: off,
			Cell:   automaton.Cell{},
			Meta:   automaton.CellMetadata{Blocked: obj.Info.IsBlocking, Obj: obj.Info},
		}
	}
	return out
}

// Update runs one tick: settle the automaton, resolve every occupied
// coarse cell row-major, advance simulation time, then let the automaton
// compute the next frame concurrently. It is Step followed immediately by
// Resume, for callers (tests, the scenario harness) that drive a level on
// their own without an external operation queue to run in between.
func (lvl *Level) Update() {
	lvl.automaton.WaitFor()
	lvl.Step()
	lvl.automaton.Resume()
}

// Step resolves every occupied coarse cell row-major and advances
// simulation time, without resuming the automaton. The caller is
// responsible for having already settled the automaton (WaitFor) before
// calling Step, and for calling Resume once it is done mutating the level
// afterward — this is the hook the server uses to run its queued
// operations between Step and Resume, per spec.md's "step, then run ops,
// then resume" ordering.
func (lvl *Level) Step() {
	for y := 0; y < lvl.cfg.Height; y++ {
		for x := 0; x < lvl.cfg.Width; x++ {
			c := Coord{X: x, Y: y}
			cell := lvl.cellAt(c)
			if !cell.Here.Valid {
				continue
			}
			ref := cell.Here
			obj := lvl.objects.Get(ref)
			if obj == nil {
				cell.Here = ObjectRef{}
				continue
			}
			lvl.updateObject(ref, obj)
		}
	}

	lvl.time += lvl.cfg.TimeSlice
}

func (lvl *Level) updateObject(ref ObjectRef, obj *ObjectState) {
	obj.Ticks++

	if obj.moving() {
		phyBefore := obj.Phy
		lvl.advanceMovement(ref, obj, movementTPerTick)
		newPhy := lvl.phys(obj.X, obj.Y)
		if newPhy != phyBefore && obj.Info.Stamp.NonEmpty() {
			lvl.automaton.MoveStamp(phyBefore.X, phyBefore.Y, newPhy.X, newPhy.Y,
				obj.Info.Stamp.MapCoords(), lvl.cellInfoFor(obj), nil)
			obj.Phy = newPhy
		}
		return
	}

	if obj.Info.IsGravityAffected {
		lvl.attemptGravity(ref, obj)
		return
	}

	lvl.callIdle(ref, obj)
}

// attemptGravity applies the gravity rule: fall straight down if the cell
// below is free, else roll off a rollable neighbor if a fall channel is
// open on either side (left preferred).
func (lvl *Level) attemptGravity(ref ObjectRef, obj *ObjectState) {
	below := Coord{X: obj.Cell.X, Y: obj.Cell.Y + 1}
	if !lvl.inBounds(below) {
		return
	}
	belowCell := lvl.cellAt(below)
	if !belowCell.Here.Valid && !belowCell.ReservedBy.Valid {
		lvl.startStraight(ref, obj, below)
		return
	}
	belowRef := belowCell.Here
	belowObj := lvl.objects.Get(belowRef)
	if belowObj == nil {
		return
	}
	if !obj.Info.IsRollable || !belowObj.Info.IsRollable {
		lvl.callImpact(ref, obj, belowRef)
		lvl.callHeadache(belowRef, belowObj, ref)
		return
	}

	if lvl.rollChannelOpen(obj.Cell, -1) {
		via := Coord{X: obj.Cell.X - 1, Y: obj.Cell.Y}
		to := Coord{X: obj.Cell.X - 1, Y: obj.Cell.Y + 1}
		lvl.startRoll(ref, obj, via, to)
		return
	}
	if lvl.rollChannelOpen(obj.Cell, 1) {
		via := Coord{X: obj.Cell.X + 1, Y: obj.Cell.Y}
		to := Coord{X: obj.Cell.X + 1, Y: obj.Cell.Y + 1}
		lvl.startRoll(ref, obj, via, to)
	}
}

// rollChannelOpen checks the two cells a roll to the given side would pass
// through: the side neighbor and the cell below it. Both must be empty and
// unreserved. Consults the live coarse-tile state (cellAt) rather than a
// raw backing array indexed independently of bounds, correcting a
// left-side bug present in the original source.
func (lvl *Level) rollChannelOpen(from Coord, dx int) bool {
	side := Coord{X: from.X + dx, Y: from.Y}
	below := Coord{X: from.X + dx, Y: from.Y + 1}
	if !lvl.inBounds(side) || !lvl.inBounds(below) {
		return false
	}
	sideCell := lvl.cellAt(side)
	belowCell := lvl.cellAt(below)
	if sideCell.Here.Valid || sideCell.ReservedBy.Valid {
		return false
	}
	if belowCell.Here.Valid || belowCell.ReservedBy.Valid {
		return false
	}
	return true
}

// PlaceObject puts obj at (x, y), evicting any existing occupant (firing
// OnPlayerDeath if the evicted occupant is the player), and stamps it onto
// the automaton with per-cell flow vectors radiating outward from the
// stamp's center.
func (lvl *Level) PlaceObject(kind ObjectKind, x, y int, initialTemperature float64) ObjectRef {
	info := BuiltinObjectInfo(kind)
	cell := Coord{X: x, Y: y}
	target := lvl.cellAt(cell)
	if target.Here.Valid {
		if evicted := lvl.objects.Get(target.Here); evicted != nil {
			lvl.destroyObject(target.Here, evicted)
		}
	}

	phy := lvl.phys(float64(x), float64(y))
	state := ObjectState{
		Info: info,
		Kind: kind,
		Cell: cell,
		X:    float64(x),
		Y:    float64(y),
		Phy:  phy,
	}
	if kind == KindPlayer {
		state.IsPlayer = true
	}
	if kind == KindExplosion {
		state.ExplosionTicks = lvl.cfg.ExplosionLifetime
	}
	if kind == KindHorizFan || kind == KindVertFan {
		state.FanIntensity = 3.0
	}
	if kind == KindFlamethrower {
		state.FlamethrowerFuel = flamethrowerFuelCapacity
	}

	ref := lvl.objects.Spawn(state)
	target.Here = ref

	obj := lvl.objects.Get(ref)
	if info.Stamp.NonEmpty() {
		lvl.automaton.PlaceStamp(phy.X, phy.Y, lvl.radialCellInfo(obj, initialTemperature), nil)
	}
	return ref
}

// radialCellInfo builds the CellInfo batch for initial placement, with a
// flow vector at each sub-cell pointing outward from the stamp's center.
func (lvl *Level) radialCellInfo(obj *ObjectState, initialTemperature float64) []automaton.CellInfo {
	mc := obj.Info.Stamp.MapCoords()
	side := float64(obj.Info.Stamp.Side())
	center := (side - 1) / 2
	tc := obj.Info.TempCoeff
	out := make([]automaton.CellInfo, len(mc))
	for i, off := range mc {
		dx := float64(off.X) - center
		dy := float64(off.Y) - center
		norm := math.Hypot(dx, dy)
		var fx, fy float64
		if norm > 0 {
			fx, fy = dx/norm, dy/norm
		}
		out[i] = automaton.CellInfo{
			Offset: off,
			Cell: automaton.Cell{
				Heat: initialTemperature * tc,
				Flow: [2]float64{fx, fy},
			},
			Meta: automaton.CellMetadata{Blocked: obj.Info.IsBlocking, Obj: obj.Info},
		}
	}
	return out
}

// PlacePlayer is PlaceObject(KindPlayer, ...) plus the player-reference
// bookkeeping.
func (lvl *Level) PlacePlayer(x, y int, initialTemperature float64) ObjectRef {
	ref := lvl.PlaceObject(KindPlayer, x, y, initialTemperature)
	lvl.player = ref
	return ref
}

// Player returns the current player reference, which is invalid if no
// player has been placed or the player has died.
func (lvl *Level) Player() ObjectRef { return lvl.player }

// SetPlayerAction latches a pending move action for the player's next idle
// tick.
func (lvl *Level) SetPlayerAction(dir ActDirection) {
	if obj := lvl.objects.Get(lvl.player); obj != nil {
		obj.Frame.Acting = dir
	}
}

// AddLargeExplosion spawns a w*h block of Explosion tiles anchored at
// (x, y), each self-destructing after cfg.ExplosionLifetime ticks and
// seeded at a temperature raised by cfg.FireTempRise above ambient,
// grounded on the original source's ExplosionObject.cpp.
func (lvl *Level) AddLargeExplosion(x, y, w, h int) {
	for yy := y; yy < y+h; yy++ {
		for xx := x; xx < x+w; xx++ {
			if !lvl.inBounds(Coord{X: xx, Y: yy}) {
				continue
			}
			lvl.PlaceObject(KindExplosion, xx, yy, lvl.cfg.InitialTemperature+lvl.cfg.FireTempRise)
		}
	}
}

// ObjectAt returns the object occupying (x, y), or nil if the tile is
// empty.
func (lvl *Level) ObjectAt(x, y int) *ObjectState {
	return lvl.objects.Get(lvl.cellAt(Coord{X: x, Y: y}).Here)
}

// ObjectByRef returns the object ref points to, or nil if ref is no longer
// valid, for callers (tooling, telemetry) that hold a reference across
// ticks rather than re-resolving a tile coordinate each time.
func (lvl *Level) ObjectByRef(ref ObjectRef) *ObjectState {
	return lvl.objects.Get(ref)
}

// Phys converts a continuous tile coordinate to a fine-grid coordinate,
// exposed for callers outside the package that need to read automaton
// state at an object's footprint.
func (lvl *Level) Phys(x, y float64) Coord {
	return lvl.phys(x, y)
}

// RemoveAt destroys whatever object occupies (x, y), a no-op if the tile is
// empty. Exposed for callers that need to undo a placement, such as
// persist's load-rollback on a DomainMiss.
func (lvl *Level) RemoveAt(x, y int) {
	ref := lvl.cellAt(Coord{X: x, Y: y}).Here
	if obj := lvl.objects.Get(ref); obj != nil {
		lvl.destroyObject(ref, obj)
	}
}
