package automaton

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/horazont/maniaclab/mlerr"
	"github.com/horazont/maniaclab/stamp"
)

var neighborOffsets = [4]stamp.Offset{{X: 0, Y: -1}, {X: 0, Y: 1}, {X: -1, Y: 0}, {X: 1, Y: 0}}

func (a *Automaton) inBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < a.width && y < a.height
}

func (a *Automaton) set(idx int, c Cell, m CellMetadata) {
	a.cells[idx] = c
	a.backbuffer[idx] = c
	a.metadata[idx] = m
}

// PlaceStamp stamps cellsInfo onto the grid at (atX, atY). Cells already
// occupying the target coordinates have their pressure, heat, and fog
// summed and redistributed into the border cells surrounding the new
// footprint, weighted toward velocity's direction when given.
func (a *Automaton) PlaceStamp(atX, atY int, cellsInfo []CellInfo, velocity *Vec2) {
	a.assertSettled("automaton.PlaceStamp")
	a.placeStamp(atX, atY, cellsInfo, velocity, 0, 0, 0)
}

// MoveStamp relocates a stamped object: the footprint at (oldX, oldY),
// described by mapCoords, is vacated and its mass carried forward into the
// redistribution performed when cellsInfo is placed at (newX, newY).
func (a *Automaton) MoveStamp(oldX, oldY, newX, newY int, mapCoords []stamp.Offset, cellsInfo []CellInfo, velocity *Vec2) {
	a.assertSettled("automaton.MoveStamp")

	var extraP, extraH, extraF float64
	for _, off := range mapCoords {
		x, y := oldX+off.X, oldY+off.Y
		if !a.inBounds(x, y) {
			continue
		}
		idx := y*a.width + x
		old := a.cells[idx]
		extraP += old.Pressure
		extraH += old.Heat
		extraF += old.Fog
		a.set(idx, Cell{}, CellMetadata{})
	}
	a.placeStamp(newX, newY, cellsInfo, velocity, extraP, extraH, extraF)
}

// ClearCells zeroes the cells under mapCoords at (x, y) and clears their
// blocked state. Mass is discarded, matching an object simply vanishing.
func (a *Automaton) ClearCells(x, y int, mapCoords []stamp.Offset) {
	a.assertSettled("automaton.ClearCells")
	for _, off := range mapCoords {
		xx, yy := x+off.X, y+off.Y
		if !a.inBounds(xx, yy) {
			continue
		}
		a.set(yy*a.width+xx, Cell{}, CellMetadata{})
	}
}

// ApplyTemperatureStamp sets the heat energy of the cells under mapCoords so
// that their temperature (heat / tempCoefficient) equals temperature.
func (a *Automaton) ApplyTemperatureStamp(x, y int, mapCoords []stamp.Offset, temperature float64) {
	a.assertSettled("automaton.ApplyTemperatureStamp")
	for _, off := range mapCoords {
		xx, yy := x+off.X, y+off.Y
		if !a.inBounds(xx, yy) {
			continue
		}
		idx := yy*a.width + xx
		tc := a.tempCoefficient(idx)
		a.cells[idx].Heat = temperature * tc
		a.backbuffer[idx].Heat = a.cells[idx].Heat
	}
}

// ApplyFlowStamp overwrites the flow vector of the cells under mapCoords,
// used by directional objects like fans to inject a steady flow field.
func (a *Automaton) ApplyFlowStamp(x, y int, mapCoords []stamp.Offset, flowX, flowY, coeff float64) {
	a.assertSettled("automaton.ApplyFlowStamp")
	for _, off := range mapCoords {
		xx, yy := x+off.X, y+off.Y
		if !a.inBounds(xx, yy) {
			continue
		}
		idx := yy*a.width + xx
		a.cells[idx].Flow[0] = flowX * coeff
		a.cells[idx].Flow[1] = flowY * coeff
		a.backbuffer[idx].Flow = a.cells[idx].Flow
	}
}

func (a *Automaton) placeStamp(atX, atY int, cellsInfo []CellInfo, velocity *Vec2, extraP, extraH, extraF float64) {
	inStamp := make(map[[2]int]bool, len(cellsInfo))
	for _, ci := range cellsInfo {
		inStamp[[2]int{atX + ci.Offset.X, atY + ci.Offset.Y}] = true
	}

	totalPressure, totalHeat, totalFog := extraP, extraH, extraF
	placed := make([][2]int, 0, len(cellsInfo))
	for _, ci := range cellsInfo {
		x, y := atX+ci.Offset.X, atY+ci.Offset.Y
		if !a.inBounds(x, y) {
			continue
		}
		idx := y*a.width + x
		old := a.cells[idx]
		totalPressure += old.Pressure
		totalHeat += old.Heat
		totalFog += old.Fog
		a.set(idx, ci.Cell, ci.Meta)
		placed = append(placed, [2]int{x, y})
	}

	var velUnit Vec2
	useVel := false
	if velocity != nil {
		norm := math.Hypot(velocity.X, velocity.Y)
		if norm > 0 {
			velUnit = Vec2{X: velocity.X / norm, Y: velocity.Y / norm}
			useVel = true
		}
	}

	weights := make(map[[2]int]float64)
	var order [][2]int
	for _, pc := range placed {
		for _, d := range neighborOffsets {
			n := [2]int{pc[0] + d.X, pc[1] + d.Y}
			if !a.inBounds(n[0], n[1]) || inStamp[n] {
				continue
			}
			if a.metadata[n[1]*a.width+n[0]].Blocked {
				continue
			}
			w := 1.0
			if useVel {
				dot := float64(d.X)*velUnit.X + float64(d.Y)*velUnit.Y
				w = math.Max(dot, 0)
			}
			if existing, ok := weights[n]; !ok {
				weights[n] = w
				order = append(order, n)
			} else if w > existing {
				weights[n] = w
			}
		}
	}

	if len(order) == 0 {
		if totalPressure != 0 || totalHeat != 0 || totalFog != 0 {
			lost := totalPressure + totalHeat + totalFog
			a.addDiscardedMass(lost)
			err := &mlerr.ResourceExhausted{Op: "automaton.placeStamp", Amount: lost}
			a.logger.Warn(err.Error(),
				"pressure", totalPressure, "heat", totalHeat, "fog", totalFog)
		}
		return
	}

	weightVec := make([]float64, len(order))
	for i, n := range order {
		weightVec[i] = weights[n]
	}
	weightSum := floats.Sum(weightVec)
	if weightSum == 0 {
		for i := range weightVec {
			weightVec[i] = 1
		}
		weightSum = float64(len(weightVec))
	}
	floats.Scale(1/weightSum, weightVec)

	for i, n := range order {
		idx := n[1]*a.width + n[0]
		frac := weightVec[i]
		a.cells[idx].Pressure += totalPressure * frac
		a.cells[idx].Heat += totalHeat * frac
		a.cells[idx].Fog += totalFog * frac
		a.backbuffer[idx] = a.cells[idx]
	}
}
