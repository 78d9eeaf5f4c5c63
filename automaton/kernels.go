package automaton

import "math"

// sanitize replaces NaN, Inf, and magnitudes beyond 1e10 with zero. Flow
// values can run away under sustained feedback (a blocked cell flickering
// between occupied and free, a stamp placed on top of an already-extreme
// value); activation is the one place every cell passes through once per
// frame, so it is where the grid heals itself. ok reports whether v passed
// through unchanged.
func sanitize(v float64) (_ float64, ok bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v) > 1e10 {
		return 0, false
	}
	return v, true
}

// activateCell copies the four scalar fields from backbuffer to cells for
// idx, sanitizing the flow components in both buffers and counting any
// correction toward the automaton's clamp-loss telemetry.
func (a *Automaton) activateCell(idx int) {
	b := &a.backbuffer[idx]
	c := &a.cells[idx]
	var ok0, ok1 bool
	b.Flow[0], ok0 = sanitize(b.Flow[0])
	b.Flow[1], ok1 = sanitize(b.Flow[1])
	if !ok0 {
		a.clampLosses.Add(1)
	}
	if !ok1 {
		a.clampLosses.Add(1)
	}
	c.Pressure = b.Pressure
	c.Heat = b.Heat
	c.Fog = b.Fog
	c.Flow[0] = b.Flow[0]
	c.Flow[1] = b.Flow[1]
}

// tempCoefficient is the heat capacity of the cell at idx: the object's own
// coefficient if blocked, otherwise proportional to air pressure.
func (a *Automaton) tempCoefficient(idx int) float64 {
	m := &a.metadata[idx]
	if m.Blocked {
		if m.Obj != nil {
			return m.Obj.TempCoefficient()
		}
		return 0
	}
	return a.cells[idx].Pressure * a.cfg.AirTempCoeffPerPressure
}

// updateCell runs the per-cell update for (x, y): optionally activating it,
// then applying the left and up edges (the only two edges owned by this
// cell in the canonical half-edge iteration).
func (a *Automaton) updateCell(x, y int, activate bool) {
	idx := y*a.width + x
	if activate {
		a.activateCell(idx)
	}
	if x > 0 {
		a.applyEdge(idx-1, idx, 0)
	}
	if y > 0 {
		a.applyEdge(idx-a.width, idx, 1)
	}
}

// applyEdge applies the flow, fog-flow, and temperature-flow kernels for the
// edge between aIdx (the upper-left neighbor) and bIdx (the cell being
// updated), along axis (0 = X, 1 = Y).
func (a *Automaton) applyEdge(aIdx, bIdx, axis int) {
	aBlocked := a.metadata[aIdx].Blocked
	bBlocked := a.metadata[bIdx].Blocked
	if !aBlocked && !bBlocked {
		a.flowKernel(aIdx, bIdx, axis)
		a.fogFlowKernel(aIdx, bIdx)
	}
	a.temperatureFlowKernel(aIdx, bIdx, axis)
}

// flowKernel moves air pressure (and entrained heat/fog) across the edge
// between A and B, along axis. old_flow is read from the backbuffer so the
// damping term reflects the previous frame even if A has already been
// revisited this frame as the downstream side of an earlier edge.
func (a *Automaton) flowKernel(aIdx, bIdx, axis int) {
	av := &a.cells[aIdx]
	bv := &a.cells[bIdx]

	dp := av.Pressure - bv.Pressure
	var dtemp float64
	if axis == 1 {
		dtemp = av.Heat - bv.Heat
	}
	tempFlow := math.Max(dtemp, 0) * a.cfg.ConvectionFriction
	pressFlow := dp * a.cfg.FlowFriction

	oldFlow := a.backbuffer[aIdx].Flow[axis]
	flowNew := oldFlow*a.cfg.FlowDamping + (tempFlow+pressFlow)*(1-a.cfg.FlowDamping)

	lo := -bv.Pressure / 4
	hi := av.Pressure / 4
	applicable := clamp(flowNew, lo, hi)

	av.Flow[axis] = applicable
	av.Pressure -= applicable
	bv.Pressure += applicable

	if applicable == 0 {
		return
	}

	var energy, fog float64
	if applicable > 0 {
		if av.Pressure > 0 {
			energy = av.Heat / av.Pressure * applicable
			fog = av.Fog / av.Pressure * applicable
		}
	} else {
		if bv.Pressure > 0 {
			energy = bv.Heat / bv.Pressure * applicable
			fog = bv.Fog / bv.Pressure * applicable
		}
	}
	av.Heat -= energy
	bv.Heat += energy
	av.Fog -= fog
	bv.Fog += fog
}

// fogFlowKernel is plain diffusion of the fog scalar across the edge,
// unaffected by pressure or temperature.
func (a *Automaton) fogFlowKernel(aIdx, bIdx int) {
	av := &a.cells[aIdx]
	bv := &a.cells[bIdx]
	flow := (av.Fog - bv.Fog) * a.cfg.FogFlowFriction
	applicable := clamp(flow, -bv.Fog/4, av.Fog/4)
	av.Fog -= applicable
	bv.Fog += applicable
}

// temperatureFlowKernel conducts heat across the edge even through blocked
// (solid) cells, using each side's heat capacity (tempCoefficient) to
// convert heat energy to temperature. An overshoot past equality is
// corrected by collapsing both sides to their shared equilibrium
// temperature rather than letting them oscillate.
func (a *Automaton) temperatureFlowKernel(aIdx, bIdx, axis int) {
	tcA := a.tempCoefficient(aIdx)
	tcB := a.tempCoefficient(bIdx)
	if tcA < 1e-17 || tcB < 1e-17 {
		return
	}

	av := &a.cells[aIdx]
	bv := &a.cells[bIdx]

	tempA := av.Heat / tcA
	tempB := bv.Heat / tcB
	gradient := tempB - tempA

	var raw float64
	if gradient > 0 {
		raw = tcB * gradient
	} else {
		raw = tcA * gradient
	}
	applied := clamp(raw*a.cfg.HeatFlowFriction, -av.Heat/4, bv.Heat/4)

	av.Heat += applied
	bv.Heat -= applied

	newTempA := av.Heat / tcA
	newTempB := bv.Heat / tcB
	if gradient != 0 && sign(gradient) != sign(newTempB-newTempA) {
		eq := (av.Heat + bv.Heat) / (tcA + tcB)
		av.Heat = eq * tcA
		bv.Heat = eq * tcB
	}
}

func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
