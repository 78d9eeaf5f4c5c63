package automaton

import (
	"math"
	"testing"

	"github.com/horazont/maniaclab/stamp"
)

func testConfig() Config {
	return Config{
		FlowFriction:            0.25,
		FlowDamping:             0.5,
		ConvectionFriction:      0.1,
		HeatFlowFriction:        0.2,
		FogFlowFriction:         0.15,
		AirTempCoeffPerPressure: 1.0,
	}
}

func uniformGrid(t *testing.T, w, h, workers int, pressure, heat, fog float64) *Automaton {
	t.Helper()
	a := New(w, h, testConfig(), workers, nil)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			idx := y*w + x
			a.cells[idx] = Cell{Pressure: pressure, Heat: heat, Fog: fog}
			a.backbuffer[idx] = a.cells[idx]
		}
	}
	return a
}

func TestNewClampsWorkersToHeight(t *testing.T) {
	a := New(10, 2, testConfig(), 64, nil)
	if a.NumWorkers() > 2 {
		t.Fatalf("expected at most 2 workers for a 2-row grid, got %d", a.NumWorkers())
	}
}

func TestWaitForOnSettledEngineReturnsImmediately(t *testing.T) {
	a := uniformGrid(t, 4, 4, 2, 1, 1, 0)
	// Never resumed: must not block.
	a.WaitFor()
}

func TestUniformGridStaysUniform(t *testing.T) {
	a := uniformGrid(t, 8, 8, 4, 1.0, 1.0, 0.0)
	for tick := 0; tick < 5; tick++ {
		a.Resume()
		a.WaitFor()
	}
	p, h := a.cells[0].Pressure, a.cells[0].Heat
	for y := 0; y < a.height; y++ {
		for x := 0; x < a.width; x++ {
			c, _ := a.At(x, y)
			if math.Abs(c.Pressure-p) > 1e-9 || math.Abs(c.Heat-h) > 1e-9 {
				t.Fatalf("uniform grid diverged at (%d,%d): pressure=%v heat=%v", x, y, c.Pressure, c.Heat)
			}
		}
	}
}

func TestMassConservedAcrossFrames(t *testing.T) {
	a := New(6, 6, testConfig(), 3, nil)
	for y := 0; y < a.height; y++ {
		for x := 0; x < a.width; x++ {
			idx := y*a.width + x
			v := float64((x+1)*(y+1)) / 4
			a.cells[idx] = Cell{Pressure: v, Heat: v, Fog: v}
			a.backbuffer[idx] = a.cells[idx]
		}
	}
	wantP, wantH, wantF := a.TotalMass()

	for tick := 0; tick < 10; tick++ {
		a.Resume()
		a.WaitFor()
	}

	gotP, gotH, gotF := a.TotalMass()
	if math.Abs(gotP-wantP) > 1e-6 {
		t.Errorf("pressure not conserved: got %v want %v", gotP, wantP)
	}
	if math.Abs(gotH-wantH) > 1e-6 {
		t.Errorf("heat not conserved: got %v want %v", gotH, wantH)
	}
	if math.Abs(gotF-wantF) > 1e-6 {
		t.Errorf("fog not conserved: got %v want %v", gotF, wantF)
	}
}

func TestOneWorkerMatchesMultiWorker(t *testing.T) {
	build := func(workers int) *Automaton {
		a := New(10, 10, testConfig(), workers, nil)
		for y := 0; y < a.height; y++ {
			for x := 0; x < a.width; x++ {
				idx := y*a.width + x
				v := 0.0
				if x == 5 && y == 5 {
					v = 10
				}
				a.cells[idx] = Cell{Pressure: 1 + v, Heat: 1, Fog: 0}
				a.backbuffer[idx] = a.cells[idx]
			}
		}
		return a
	}

	one := build(1)
	multi := build(4)
	for tick := 0; tick < 8; tick++ {
		one.Resume()
		one.WaitFor()
		multi.Resume()
		multi.WaitFor()
	}

	for y := 0; y < one.height; y++ {
		for x := 0; x < one.width; x++ {
			cOne, _ := one.At(x, y)
			cMulti, _ := multi.At(x, y)
			if math.Abs(cOne.Pressure-cMulti.Pressure) > 1e-9 {
				t.Fatalf("pressure mismatch at (%d,%d): one-worker=%v multi-worker=%v", x, y, cOne.Pressure, cMulti.Pressure)
			}
		}
	}
}

func TestSanitizeReplacesInvalidValues(t *testing.T) {
	cases := []float64{math.NaN(), math.Inf(1), math.Inf(-1), 1e20, -1e20}
	for _, v := range cases {
		if got, ok := sanitize(v); got != 0 || ok {
			t.Errorf("sanitize(%v) = (%v, %v), want (0, false)", v, got, ok)
		}
	}
	if got, ok := sanitize(42.0); got != 42.0 || !ok {
		t.Errorf("sanitize(42) = (%v, %v), want (42, true)", got, ok)
	}
}

func TestPlaceStampRedistributesDisplacedMass(t *testing.T) {
	a := New(5, 5, testConfig(), 1, nil)
	for y := 0; y < a.height; y++ {
		for x := 0; x < a.width; x++ {
			idx := y*a.width + x
			a.cells[idx] = Cell{Pressure: 2, Heat: 2, Fog: 1}
			a.backbuffer[idx] = a.cells[idx]
		}
	}
	beforeP, beforeH, beforeF := a.TotalMass()

	s := stamp.NewSquare(1)
	info := []CellInfo{{Offset: s.MapCoords()[0], Cell: Cell{}, Meta: CellMetadata{Blocked: true}}}
	a.PlaceStamp(2, 2, info, nil)

	afterP, afterH, afterF := a.TotalMass()
	if math.Abs(afterP-beforeP) > 1e-9 {
		t.Errorf("pressure not conserved by stamp placement: before=%v after=%v", beforeP, afterP)
	}
	if math.Abs(afterH-beforeH) > 1e-9 {
		t.Errorf("heat not conserved by stamp placement: before=%v after=%v", beforeH, afterH)
	}
	if math.Abs(afterF-beforeF) > 1e-9 {
		t.Errorf("fog not conserved by stamp placement: before=%v after=%v", beforeF, afterF)
	}
	c, m := a.At(2, 2)
	if !m.Blocked {
		t.Fatal("expected stamped cell to be blocked")
	}
	if c.Pressure != 0 {
		t.Fatalf("expected stamped cell to start at zero pressure, got %v", c.Pressure)
	}
}

func TestClearCellsDiscardsMass(t *testing.T) {
	a := New(3, 3, testConfig(), 1, nil)
	idx := 1*a.width + 1
	a.cells[idx] = Cell{Pressure: 5, Heat: 5, Fog: 5}
	a.backbuffer[idx] = a.cells[idx]

	a.ClearCells(1, 1, []stamp.Offset{{X: 0, Y: 0}})

	c, m := a.At(1, 1)
	if c.Pressure != 0 || c.Heat != 0 || c.Fog != 0 {
		t.Fatalf("expected cleared cell to be zeroed, got %+v", c)
	}
	if m.Blocked {
		t.Fatal("expected cleared cell to be unblocked")
	}
}

func TestFillSeedsUnblockedCellsOnly(t *testing.T) {
	a := New(4, 4, testConfig(), 1, nil)
	a.metadata[1*a.width+1].Blocked = true

	a.Fill(2.0, 3.0)

	wantHeat := 3.0 * 2.0 * testConfig().AirTempCoeffPerPressure
	for y := 0; y < a.height; y++ {
		for x := 0; x < a.width; x++ {
			c, m := a.At(x, y)
			if m.Blocked {
				if c.Pressure != 0 || c.Heat != 0 {
					t.Fatalf("expected blocked cell (%d,%d) to stay untouched, got %+v", x, y, c)
				}
				continue
			}
			if c.Pressure != 2.0 || math.Abs(c.Heat-wantHeat) > 1e-12 || c.Flow != [2]float64{} {
				t.Fatalf("cell (%d,%d) = %+v, want pressure=2 heat=%v flow=0", x, y, c, wantHeat)
			}
		}
	}
}

func TestSeedCellOverwritesOnlyTargetCell(t *testing.T) {
	a := New(3, 3, testConfig(), 1, nil)
	a.Fill(1.0, 1.0)

	a.SeedCell(1, 1, 5.0, 6.0, 0.5)

	c, _ := a.At(1, 1)
	if c.Pressure != 5.0 || c.Heat != 6.0 || c.Fog != 0.5 {
		t.Fatalf("seeded cell = %+v, want pressure=5 heat=6 fog=0.5", c)
	}
	neighbor, _ := a.At(0, 0)
	if neighbor.Pressure != 1.0 {
		t.Fatalf("expected SeedCell to leave neighbors untouched, got pressure=%v", neighbor.Pressure)
	}
}

func TestSeedCellIgnoresOutOfBoundsAndBlocked(t *testing.T) {
	a := New(2, 2, testConfig(), 1, nil)
	a.metadata[0].Blocked = true

	a.SeedCell(-1, 0, 9, 9, 9)
	a.SeedCell(0, 0, 9, 9, 9)

	c, _ := a.At(0, 0)
	if c.Pressure != 0 {
		t.Fatalf("expected blocked cell to remain untouched, got %+v", c)
	}
}

func TestFillWhileRunningPanics(t *testing.T) {
	a := uniformGrid(t, 4, 4, 1, 1, 1, 0)
	a.Resume()
	defer func() {
		a.WaitFor()
		if recover() == nil {
			t.Fatal("expected panic when filling while running")
		}
	}()
	a.Fill(1, 1)
}

func TestResumeWhileRunningPanics(t *testing.T) {
	a := uniformGrid(t, 4, 4, 1, 1, 1, 0)
	a.Resume()
	defer func() {
		a.WaitFor()
		if recover() == nil {
			t.Fatal("expected panic when resuming an already-running automaton")
		}
	}()
	a.Resume()
}

func TestStampMutationWhileRunningPanics(t *testing.T) {
	a := uniformGrid(t, 4, 4, 1, 1, 1, 0)
	a.Resume()
	defer func() {
		a.WaitFor()
		if recover() == nil {
			t.Fatal("expected panic when clearing cells while running")
		}
	}()
	a.ClearCells(0, 0, []stamp.Offset{{X: 0, Y: 0}})
}
