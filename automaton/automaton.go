// Package automaton implements the fine-grained cellular automaton that
// diffuses air pressure, heat, and fog across the physics grid. It mirrors
// the row-sliced worker pool pattern the rest of this module uses for
// per-tick parallel work, generalized here to a continuously running
// settled/resumed engine instead of a one-shot pass.
package automaton

import (
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/horazont/maniaclab/mlerr"
)

type engineState int

const (
	stateSettled engineState = iota
	stateRunning
)

// Automaton owns the double-buffered fine grid and the worker pool that
// advances it one frame at a time.
type Automaton struct {
	width, height int
	cfg           Config
	logger        *slog.Logger

	cells      []Cell
	backbuffer []Cell
	metadata   []CellMetadata

	numWorkers int
	sliceStart []int // first row owned by worker i
	sliceEnd   []int // last row (inclusive) owned by worker i

	resume   []chan struct{}
	forward  []chan struct{} // forward[i]: worker i -> worker i+1
	shared   []*sync.Mutex   // shared[i]: boundary between worker i and i+1
	finished chan struct{}

	state engineState

	// clampLosses counts sanitize() corrections, for telemetry. Incremented
	// concurrently from worker goroutines, hence atomic.
	clampLosses atomic.Int64
	// discardedMass accumulates mass lost to ResourceExhausted in stamp
	// placement/removal. Only ever mutated while the engine is settled
	// (stamp ops assert this), so a plain field is safe.
	discardedMass float64
}

// New builds an Automaton for a width x height grid. maxWorkers caps the
// worker pool; the effective count is min(maxWorkers, runtime.NumCPU(),
// height) so that every worker owns at least one row.
func New(width, height int, cfg Config, maxWorkers int, logger *slog.Logger) *Automaton {
	if width <= 0 || height <= 0 {
		mlerr.Fail("automaton.New", "width and height must be positive, got %dx%d", width, height)
	}
	if logger == nil {
		logger = slog.Default()
	}

	n := runtime.NumCPU()
	if maxWorkers > 0 && maxWorkers < n {
		n = maxWorkers
	}
	if n > height {
		n = height
	}
	if n < 1 {
		n = 1
	}

	a := &Automaton{
		width:      width,
		height:     height,
		cfg:        cfg,
		logger:     logger,
		cells:      make([]Cell, width*height),
		backbuffer: make([]Cell, width*height),
		metadata:   make([]CellMetadata, width*height),
		numWorkers: n,
		state:      stateSettled,
	}

	a.partitionRows()
	a.startWorkers()
	return a
}

func (a *Automaton) partitionRows() {
	a.sliceStart = make([]int, a.numWorkers)
	a.sliceEnd = make([]int, a.numWorkers)
	base := a.height / a.numWorkers
	rem := a.height % a.numWorkers
	row := 0
	for i := 0; i < a.numWorkers; i++ {
		size := base
		if i < rem {
			size++
		}
		a.sliceStart[i] = row
		a.sliceEnd[i] = row + size - 1
		row += size
	}
}

func (a *Automaton) startWorkers() {
	a.resume = make([]chan struct{}, a.numWorkers)
	for i := range a.resume {
		a.resume[i] = make(chan struct{}, 1)
	}
	a.forward = make([]chan struct{}, a.numWorkers)
	for i := range a.forward {
		a.forward[i] = make(chan struct{}, 1)
	}
	a.shared = make([]*sync.Mutex, a.numWorkers)
	for i := range a.shared {
		a.shared[i] = &sync.Mutex{}
	}
	a.finished = make(chan struct{}, a.numWorkers)

	for i := 0; i < a.numWorkers; i++ {
		go a.workerLoop(i)
	}
}

func (a *Automaton) workerLoop(i int) {
	for {
		<-a.resume[i]
		a.runFrame(i)
		a.finished <- struct{}{}
	}
}

// runFrame executes one worker's slice of the hand-off algorithm: activate
// and forward the bottom row first, wait for the row above to be ready,
// then process everything else.
func (a *Automaton) runFrame(i int) {
	y0, y1 := a.sliceStart[i], a.sliceEnd[i]
	last := i == a.numWorkers-1
	first := i == 0

	for x := 0; x < a.width; x++ {
		a.activateCell(y1*a.width + x)
	}
	if !last {
		a.forward[i] <- struct{}{}
	}

	if !first {
		<-a.forward[i-1]
		a.shared[i-1].Lock()
		for x := 0; x < a.width; x++ {
			a.updateCell(x, y0, true)
		}
		a.shared[i-1].Unlock()
	} else {
		for x := 0; x < a.width; x++ {
			a.updateCell(x, y0, true)
		}
	}

	for y := y0 + 1; y < y1; y++ {
		for x := 0; x < a.width; x++ {
			a.updateCell(x, y, true)
		}
	}

	if y1 > y0 {
		if !last {
			a.shared[i].Lock()
			for x := 0; x < a.width; x++ {
				a.updateCell(x, y1, false)
			}
			a.shared[i].Unlock()
		} else {
			for x := 0; x < a.width; x++ {
				a.updateCell(x, y1, false)
			}
		}
	}
}

// Resume starts one frame. It does not block; call WaitFor to block until
// the frame has settled.
func (a *Automaton) Resume() {
	if a.state == stateRunning {
		mlerr.Fail("automaton.Resume", "engine is already running")
	}
	a.state = stateRunning
	for i := 0; i < a.numWorkers; i++ {
		a.resume[i] <- struct{}{}
	}
}

// WaitFor blocks until the current frame has settled. If the engine is
// already settled (Resume has not been called since the last WaitFor), it
// returns immediately.
func (a *Automaton) WaitFor() {
	if a.state == stateSettled {
		return
	}
	for i := 0; i < a.numWorkers; i++ {
		<-a.finished
	}
	// cells now holds this frame's settled values; fold them into
	// backbuffer so the next frame's activation and old-flow reads start
	// from them.
	copy(a.backbuffer, a.cells)
	a.state = stateSettled
}

// Running reports whether a frame is currently in flight.
func (a *Automaton) Running() bool { return a.state == stateRunning }

func (a *Automaton) assertSettled(op string) {
	if a.state == stateRunning {
		mlerr.Fail(op, "cannot mutate the grid while the automaton is running")
	}
}

// Width and Height report the grid dimensions.
func (a *Automaton) Width() int  { return a.width }
func (a *Automaton) Height() int { return a.height }

// NumWorkers reports the effective worker pool size chosen at construction.
func (a *Automaton) NumWorkers() int { return a.numWorkers }

// At returns a copy of the settled cell and metadata at (x, y).
func (a *Automaton) At(x, y int) (Cell, CellMetadata) {
	idx := y*a.width + x
	return a.cells[idx], a.metadata[idx]
}

// Fill seeds every unblocked cell with the given ambient pressure and
// temperature (converted to heat energy via the air heat-capacity
// coefficient, the same conversion tempCoefficient uses for unblocked
// cells), leaving flow at zero. This backs the "initial_pressure"/
// "initial_temperature" configuration options: a fresh grid otherwise
// starts at all-zero scalars, which is not the same thing as a settled
// atmosphere at rest. Blocked cells (already occupied by a placed stamp)
// are left untouched. Not callable while the engine is running.
func (a *Automaton) Fill(pressure, temperature float64) {
	a.assertSettled("automaton.Fill")
	heat := temperature * pressure * a.cfg.AirTempCoeffPerPressure
	for idx := range a.cells {
		if a.metadata[idx].Blocked {
			continue
		}
		c := Cell{Pressure: pressure, Heat: heat}
		a.cells[idx] = c
		a.backbuffer[idx] = c
	}
}

// SeedCell directly overwrites one unblocked cell's scalars, bypassing the
// mass-conservation redistribution PlaceStamp performs. It exists for
// constructing test/scenario initial conditions (a pressure spike against a
// uniform background, a pocket of fog) where the desired state is the
// starting point rather than the result of displacing something. A no-op if
// the cell is blocked or out of bounds. Not callable while the engine is
// running.
func (a *Automaton) SeedCell(x, y int, pressure, heat, fog float64) {
	a.assertSettled("automaton.SeedCell")
	if !a.inBounds(x, y) {
		return
	}
	idx := y*a.width + x
	if a.metadata[idx].Blocked {
		return
	}
	c := Cell{Pressure: pressure, Heat: heat, Fog: fog}
	a.cells[idx] = c
	a.backbuffer[idx] = c
}

// TotalMass sums pressure, heat, and fog across the whole grid, for
// conservation checks in tests and telemetry.
func (a *Automaton) TotalMass() (pressure, heat, fog float64) {
	for _, c := range a.cells {
		pressure += c.Pressure
		heat += c.Heat
		fog += c.Fog
	}
	return
}

// ClampLosses reports how many sanitize() corrections have happened since
// construction, for telemetry.
func (a *Automaton) ClampLosses() int64 { return a.clampLosses.Load() }

// DiscardedMass reports the cumulative mass lost to ResourceExhausted
// during stamp placement/removal since construction, for telemetry.
func (a *Automaton) DiscardedMass() float64 { return a.discardedMass }

// addDiscardedMass records a ResourceExhausted loss. Callers must hold the
// settled-engine invariant stamp ops already assert.
func (a *Automaton) addDiscardedMass(amount float64) {
	a.discardedMass += amount
}
