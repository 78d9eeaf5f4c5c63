// Package main provides CMA-ES calibration of the automaton's diffusion
// friction constants against scenario 2's decay target.
package main

import "github.com/horazont/maniaclab/config"

// ParamSpec defines a single optimizable parameter: its bounds and the
// config field it feeds.
type ParamSpec struct {
	Name    string
	Min     float64
	Max     float64
	Default float64
}

// ParamVector holds the diffusion constants scenario 2 asks to calibrate:
// flow_friction (how fast pressure differences turn into flow),
// flow_damping (how much of the previous flow carries over), and
// convection_friction (how much a heat gradient adds to vertical flow).
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector returns the standard calibration target, seeded from the
// embedded config defaults so a run with no CLI overrides starts exactly
// where the shipped config already sits.
func NewParamVector(base *config.Config) *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			{Name: "flow_friction", Min: 0.01, Max: 0.9, Default: base.Physics.FlowFriction},
			{Name: "flow_damping", Min: 0.0, Max: 0.95, Default: base.Physics.FlowDamping},
			{Name: "convection_friction", Min: 0.0, Max: 0.5, Default: base.Physics.ConvectionFriction},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int { return len(pv.Specs) }

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1].
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures every value stays within its spec's bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		val := v[i]
		if val < spec.Min {
			val = spec.Min
		}
		if val > spec.Max {
			val = spec.Max
		}
		clamped[i] = val
	}
	return clamped
}

// ApplyToConfig writes clamped values into cfg.Physics's friction fields.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	clamped := pv.Clamp(values)
	cfg.Physics.FlowFriction = clamped[0]
	cfg.Physics.FlowDamping = clamped[1]
	cfg.Physics.ConvectionFriction = clamped[2]
}
