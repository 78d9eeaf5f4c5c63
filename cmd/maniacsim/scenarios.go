// Package main is the scenario/test harness runner for ManiacLab: it
// replays six numbered simulation scenarios outside of `go test`, so the
// longer-running ones (the 1000-tick uniform-grid check, the 500-tick
// pressure-spike decay) can be driven manually or from CI without
// inflating `go test`'s own wall time.
package main

import (
	"fmt"
	"math"

	"github.com/horazont/maniaclab/automaton"
	"github.com/horazont/maniaclab/level"
	"github.com/horazont/maniaclab/telemetry"
)

// scenarioResult is one scenario's verdict plus a human-readable detail
// line, printed by main and optionally mirrored to telemetry.Logger.
type scenarioResult struct {
	name   string
	passed bool
	detail string
}

type scenario struct {
	name string
	run  func(out *telemetry.OutputManager) scenarioResult
}

var scenarios = []scenario{
	{"uniform-grid-stays-uniform", scenarioUniformGrid},
	{"pressure-spike-decay", scenarioPressureSpikeDecay},
	{"rock-falls-to-floor", scenarioRockFallsToFloor},
	{"bomb-explodes-under-rock", scenarioBombExplodesUnderRock},
	{"horiz-fan-produces-flow", scenarioHorizFanFlow},
	{"two-workers-match-single-worker", scenarioWorkerParity},
}

func fail(name, detail string) scenarioResult {
	return scenarioResult{name: name, passed: false, detail: detail}
}

func pass(name, detail string) scenarioResult {
	return scenarioResult{name: name, passed: true, detail: detail}
}

// scenarioUniformGrid is scenario 1: a 10x10 grid at uniform pressure and
// temperature, no obstacles, should stay uniform to within 1e-9 over 1000
// ticks.
func scenarioUniformGrid(out *telemetry.OutputManager) scenarioResult {
	const name = "uniform-grid-stays-uniform"
	cfg := standardPhysConfig()
	a := automaton.New(10, 10, cfg, 1, nil)
	a.Fill(1.0, 1.0)

	for tick := 0; tick < 1000; tick++ {
		a.Resume()
		a.WaitFor()
		if err := writeAutomatonSnapshot(out, a, int64(tick)); err != nil {
			return fail(name, fmt.Sprintf("writing telemetry: %v", err))
		}

		var minP, maxP, minH, maxH = math.Inf(1), math.Inf(-1), math.Inf(1), math.Inf(-1)
		for y := 0; y < a.Height(); y++ {
			for x := 0; x < a.Width(); x++ {
				c, _ := a.At(x, y)
				minP, maxP = math.Min(minP, c.Pressure), math.Max(maxP, c.Pressure)
				minH, maxH = math.Min(minH, c.Heat), math.Max(maxH, c.Heat)
			}
		}
		if maxP-minP > 1e-9 || maxH-minH > 1e-9 {
			return fail(name, fmt.Sprintf("tick %d: pressure spread %g, heat spread %g exceed 1e-9",
				tick, maxP-minP, maxH-minH))
		}
	}
	return pass(name, "pressure and heat stayed uniform across 1000 ticks")
}

// scenarioPressureSpikeDecay is scenario 2: a pressure spike at (0,0)
// against a uniform background should monotonically decay toward 1.1 within
// 500 ticks, with total pressure conserved to within clamp error.
func scenarioPressureSpikeDecay(out *telemetry.OutputManager) scenarioResult {
	const name = "pressure-spike-decay"
	cfg := standardPhysConfig()
	cfg.FlowFriction = 0.1
	cfg.FlowDamping = 0.5
	a := automaton.New(10, 10, cfg, 1, nil)
	a.Fill(1.0, 1.0)
	a.SeedCell(0, 0, 2.0, 2.0, 0)

	initialPressure, _, _ := a.TotalMass()
	prev := 2.0
	for tick := 0; tick < 500; tick++ {
		a.Resume()
		a.WaitFor()
		if err := writeAutomatonSnapshot(out, a, int64(tick)); err != nil {
			return fail(name, fmt.Sprintf("writing telemetry: %v", err))
		}

		c, _ := a.At(0, 0)
		if c.Pressure > prev+1e-9 {
			return fail(name, fmt.Sprintf("tick %d: cell(0,0).pressure rose from %g to %g", tick, prev, c.Pressure))
		}
		prev = c.Pressure
		if math.Abs(prev-1.1) < 1e-3 {
			totalPressure, _, _ := a.TotalMass()
			drift := math.Abs(totalPressure - initialPressure)
			if drift > 1e-9 {
				return fail(name, fmt.Sprintf("converged to %g at tick %d, but total pressure drifted by %g", prev, tick, drift))
			}
			return pass(name, fmt.Sprintf("converged to %g at tick %d, total pressure drift %g", prev, tick, drift))
		}
	}
	return fail(name, fmt.Sprintf("did not converge to 1.1 within 500 ticks, ended at %g", prev))
}

// scenarioRockFallsToFloor is scenario 3: a Rock dropped on a 50x50 level
// should settle on the floor within 40 ticks, with here/reserved_by
// invariants holding throughout the fall.
func scenarioRockFallsToFloor(out *telemetry.OutputManager) scenarioResult {
	const name = "rock-falls-to-floor"
	lvl := level.NewLevel(standardLevelConfig(50, 50), standardPhysConfig(), 2, nil)
	ref := lvl.PlaceObject(level.KindRock, 25, 10, 1.0)

	for tick := 0; tick < 40; tick++ {
		lvl.Update()
		obj := lvl.ObjectByRef(ref)
		if obj == nil {
			return fail(name, fmt.Sprintf("tick %d: rock disappeared", tick))
		}
		if invariantErr := checkMovementInvariants(lvl, obj, ref); invariantErr != "" {
			return fail(name, fmt.Sprintf("tick %d: %s", tick, invariantErr))
		}
		if err := writeLevelSnapshot(out, lvl, int64(tick)); err != nil {
			return fail(name, fmt.Sprintf("writing telemetry: %v", err))
		}
	}

	obj := lvl.ObjectByRef(ref)
	if obj.Cell.Y != 49 {
		return fail(name, fmt.Sprintf("expected rock to settle at y=49, got y=%d", obj.Cell.Y))
	}
	return pass(name, fmt.Sprintf("settled at (%d,%d), phy=(%d,%d)", obj.Cell.X, obj.Cell.Y, obj.Phy.X, obj.Phy.Y))
}

// scenarioBombExplodesUnderRock is scenario 4: a Bomb placed directly under
// a Rock should explode, producing an Explosion tile at the bomb's former
// cell. The scenario stops at the first tick that tile appears; it does not
// count how many times AddLargeExplosion runs.
func scenarioBombExplodesUnderRock(out *telemetry.OutputManager) scenarioResult {
	const name = "bomb-explodes-under-rock"
	lvl := level.NewLevel(standardLevelConfig(50, 50), standardPhysConfig(), 2, nil)
	rockRef := lvl.PlaceObject(level.KindRock, 25, 10, 1.0)
	lvl.PlaceObject(level.KindBomb, 25, 11, 1.0)

	explosions := 0
	for tick := 0; tick < 40; tick++ {
		lvl.Update()
		if lvl.ObjectByRef(rockRef) == nil {
			return fail(name, fmt.Sprintf("tick %d: rock disappeared unexpectedly", tick))
		}
		if occ := lvl.ObjectAt(25, 11); occ != nil && occ.Kind == level.KindExplosion {
			explosions++
			if err := writeLevelSnapshot(out, lvl, int64(tick)); err != nil {
				return fail(name, fmt.Sprintf("writing telemetry: %v", err))
			}
			break
		}
		if err := writeLevelSnapshot(out, lvl, int64(tick)); err != nil {
			return fail(name, fmt.Sprintf("writing telemetry: %v", err))
		}
	}
	if explosions == 0 {
		return fail(name, "bomb never exploded within 40 ticks")
	}
	return pass(name, "bomb exploded, producing an Explosion tile at (25,11)")
}

// scenarioHorizFanFlow is scenario 5: a HorizFan at (10,10) with intensity
// 3.0 should produce flow[0] ~= 0.6 (intensity * 0.2) at its center cell
// after one tick.
func scenarioHorizFanFlow(out *telemetry.OutputManager) scenarioResult {
	const name = "horiz-fan-produces-flow"
	lvl := level.NewLevel(standardLevelConfig(20, 20), standardPhysConfig(), 2, nil)
	lvl.PlaceObject(level.KindHorizFan, 10, 10, 1.0)

	lvl.Update()
	if err := writeLevelSnapshot(out, lvl, 0); err != nil {
		return fail(name, fmt.Sprintf("writing telemetry: %v", err))
	}

	phy := lvl.Phys(10, 10)
	c, _ := lvl.Automaton().At(phy.X, phy.Y)
	if math.Abs(c.Flow[0]-0.6) > 1e-9 {
		return fail(name, fmt.Sprintf("expected flow[0] ~= 0.6, got %g", c.Flow[0]))
	}
	return pass(name, fmt.Sprintf("flow[0] = %g at the fan's center cell", c.Flow[0]))
}

// scenarioWorkerParity is scenario 6: a pressure spike on a slice boundary
// row should diffuse identically whether the engine runs with one worker
// or two, to within 1e-12 over 100 ticks.
func scenarioWorkerParity(out *telemetry.OutputManager) scenarioResult {
	const name = "two-workers-match-single-worker"
	cfg := standardPhysConfig()

	single := automaton.New(10, 4, cfg, 1, nil)
	single.Fill(1.0, 1.0)
	single.SeedCell(5, 2, 2.0, 2.0, 0)

	dual := automaton.New(10, 4, cfg, 2, nil)
	dual.Fill(1.0, 1.0)
	dual.SeedCell(5, 2, 2.0, 2.0, 0)

	var worstDiff float64
	for tick := 0; tick < 100; tick++ {
		single.Resume()
		dual.Resume()
		single.WaitFor()
		dual.WaitFor()

		for y := 0; y < single.Height(); y++ {
			for x := 0; x < single.Width(); x++ {
				a, _ := single.At(x, y)
				b, _ := dual.At(x, y)
				diff := math.Abs(a.Pressure - b.Pressure)
				if diff > worstDiff {
					worstDiff = diff
				}
			}
		}
		if err := writeAutomatonSnapshot(out, dual, int64(tick)); err != nil {
			return fail(name, fmt.Sprintf("writing telemetry: %v", err))
		}
	}
	if worstDiff > 1e-12 {
		return fail(name, fmt.Sprintf("worst pressure divergence %g exceeds 1e-12", worstDiff))
	}
	return pass(name, fmt.Sprintf("worst pressure divergence %g over 100 ticks", worstDiff))
}

func writeAutomatonSnapshot(out *telemetry.OutputManager, a *automaton.Automaton, tick int64) error {
	if out == nil {
		return nil
	}
	return out.WriteSnapshot(telemetry.TakeSnapshot(a, tick, float64(tick)/60.0))
}

func writeLevelSnapshot(out *telemetry.OutputManager, lvl *level.Level, tick int64) error {
	if out == nil {
		return nil
	}
	return out.WriteSnapshot(telemetry.TakeSnapshot(lvl.Automaton(), tick, lvl.Time()))
}
