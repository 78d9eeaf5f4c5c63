package main

import (
	"math"
	"sync"

	"github.com/horazont/maniaclab/automaton"
)

// workerTrial is one worker-count variant scenario 2 is replayed under, so a
// parameter set that happens to exploit a particular grid partitioning
// (rather than the physics itself) scores worse — the multi-worker/
// single-worker parity scenario 6 calls for is folded directly into the
// fitness instead of being a separate pass/fail test.
var workerTrials = []int{1, 2, 4}

// These constants mirror scenario 2: a 10x10 grid, pressure 2.0 at (0,0)
// and 1.0 elsewhere, decaying toward 1.1. The tick count comes from the
// evaluator's maxTicks (the -ticks flag, 500 by default).
const (
	scenarioWidth  = 10
	scenarioHeight = 10
	scenarioSpike  = 2.0
	scenarioBase   = 1.0
	scenarioTarget = 1.1
)

// FitnessEvaluator runs headless scenario-2 replays and scores a candidate
// friction/damping triple.
type FitnessEvaluator struct {
	params   *ParamVector
	maxTicks int

	mu          sync.Mutex
	bestFitness float64
	bestCurve   []float64
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxTicks:    maxTicks,
		bestFitness: math.Inf(1),
	}
}

// BestCurve returns the cell(0,0) pressure time series from the
// lowest-fitness evaluation seen so far, written out as
// best_decay_curve.csv.
func (fe *FitnessEvaluator) BestCurve() []float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.bestCurve
}

// Evaluate computes fitness for a raw (denormalized) parameter vector; lower
// is better. Each entry in workerTrials replays the same scenario
// independently and concurrently.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	clamped := fe.params.Clamp(x)
	physCfg := automaton.Config{
		FlowFriction:            clamped[0],
		FlowDamping:             clamped[1],
		ConvectionFriction:      clamped[2],
		HeatFlowFriction:        0.2,
		FogFlowFriction:         0.15,
		AirTempCoeffPerPressure: 1.0,
	}

	results := make([]trialResult, len(workerTrials))
	var wg sync.WaitGroup
	for i, workers := range workerTrials {
		wg.Add(1)
		go func(idx, workers int) {
			defer wg.Done()
			results[idx] = fe.runTrial(physCfg, workers)
		}(i, workers)
	}
	wg.Wait()

	var total float64
	var bestCurve []float64
	bestErr := math.Inf(1)
	for _, r := range results {
		total += r.fitness
		if r.finalError < bestErr {
			bestErr = r.finalError
			bestCurve = r.curve
		}
	}
	avg := total / float64(len(results))

	fe.mu.Lock()
	if avg < fe.bestFitness {
		fe.bestFitness = avg
		fe.bestCurve = bestCurve
	}
	fe.mu.Unlock()

	return avg
}

type trialResult struct {
	fitness    float64
	finalError float64
	curve      []float64
}

// runTrial replays scenario 2 once under the given worker count and scores
// how well the (0,0) pressure trace matches a monotonic decay to
// scenarioTarget.
func (fe *FitnessEvaluator) runTrial(physCfg automaton.Config, workers int) trialResult {
	a := automaton.New(scenarioWidth, scenarioHeight, physCfg, workers, nil)
	seedScenario2(a)

	curve := make([]float64, 0, fe.maxTicks+1)
	c, _ := a.At(0, 0)
	curve = append(curve, c.Pressure)

	var monotonicPenalty float64
	prev := c.Pressure
	for tick := 0; tick < fe.maxTicks; tick++ {
		a.Resume()
		a.WaitFor()
		c, _ := a.At(0, 0)
		if c.Pressure > prev+1e-9 {
			monotonicPenalty += c.Pressure - prev
		}
		prev = c.Pressure
		curve = append(curve, c.Pressure)
	}

	finalErr := math.Abs(prev - scenarioTarget)
	clampPenalty := float64(a.ClampLosses()) * 1e-3
	fitness := finalErr*finalErr + monotonicPenalty*10 + clampPenalty
	return trialResult{fitness: fitness, finalError: finalErr, curve: curve}
}

// seedScenario2 fills a with scenario 2's initial condition: a pressure
// spike at (0,0) against a uniform background, no obstacles.
func seedScenario2(a *automaton.Automaton) {
	a.Fill(scenarioBase, 1.0)
	a.SeedCell(0, 0, scenarioSpike, scenarioSpike, 0)
}
