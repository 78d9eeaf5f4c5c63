// Package telemetry exports per-tick simulation totals to CSV, in a
// two-tier style: a gocsv-backed tabular writer for analysis, plus a
// console Logger for human-readable run summaries.
package telemetry

import (
	"github.com/horazont/maniaclab/automaton"
)

// Snapshot is one tick's worth of aggregate automaton state: the
// energy-conservation columns a calibration or scenario run needs to tell
// numeric drift apart from legitimate settling.
type Snapshot struct {
	Tick    int64   `csv:"tick"`
	SimTime float64 `csv:"sim_time"`

	TotalPressure float64 `csv:"total_pressure"`
	TotalHeat     float64 `csv:"total_heat"`
	TotalFog      float64 `csv:"total_fog"`

	// ClampLosses counts sanitize() corrections since the automaton was
	// constructed (a running total, not a per-tick count): NaN/Inf/out of
	// range values coerced back to zero, surfaced so a calibration run can
	// tell numeric instability apart from a legitimately-settling system.
	ClampLosses int64 `csv:"clamp_losses"`

	// DiscardedMass accumulates *mlerr.ResourceExhausted amounts: mass lost
	// to stamp placement/removal when no border cell could absorb it.
	DiscardedMass float64 `csv:"discarded_mass"`
}

// TakeSnapshot reads a's current totals into a Snapshot at the given tick
// and simulation time.
func TakeSnapshot(a *automaton.Automaton, tick int64, simTime float64) Snapshot {
	pressure, heat, fog := a.TotalMass()
	return Snapshot{
		Tick:          tick,
		SimTime:       simTime,
		TotalPressure: pressure,
		TotalHeat:     heat,
		TotalFog:      fog,
		ClampLosses:   a.ClampLosses(),
		DiscardedMass: a.DiscardedMass(),
	}
}
