package main

import (
	"fmt"

	"github.com/horazont/maniaclab/automaton"
	"github.com/horazont/maniaclab/config"
	"github.com/horazont/maniaclab/level"
)

// standardPhysConfig derives an automaton.Config from the loaded
// configuration (config.Cfg()).
func standardPhysConfig() automaton.Config {
	p := config.Cfg().Physics
	return automaton.Config{
		FlowFriction:            p.FlowFriction,
		FlowDamping:             p.FlowDamping,
		ConvectionFriction:      p.ConvectionFriction,
		HeatFlowFriction:        p.HeatFlowFriction,
		FogFlowFriction:         p.FogFlowFriction,
		AirTempCoeffPerPressure: p.AirTempCoeffPerPressure,
	}
}

// standardLevelConfig builds a level.Config for a w x h scenario level using
// the loaded configuration's subdivision/timing/explosion parameters.
func standardLevelConfig(w, h int) level.Config {
	cfg := config.Cfg()
	return level.Config{
		Width:             w,
		Height:            h,
		SubdivisionCount:  cfg.Automaton.SubdivisionCount,
		TimeSlice:         cfg.Level.TimeSlice,
		ExplosionLifetime: cfg.Explosion.BlockLifetime,
		FireTempRise:      cfg.Explosion.FireParticleTempRise,
	}
}

// checkMovementInvariants verifies the mid-movement invariant: if obj is
// mid-Straight movement reserving cell "from", then from.here is empty and
// to.here is obj. Returns a non-empty description on violation.
func checkMovementInvariants(lvl *level.Level, obj *level.ObjectState, ref level.ObjectRef) string {
	if !obj.Moving() {
		return ""
	}
	m := obj.Movement
	from := lvl.GetCell(m.From.X, m.From.Y)
	to := lvl.GetCell(m.To.X, m.To.Y)
	if from.Here.Valid {
		return "from.here should be empty mid-move"
	}
	if from.ReservedBy != ref {
		return "from.reserved_by should be the moving object"
	}
	if to.Here != ref {
		return "to.here should be the moving object"
	}
	return ""
}

func formatPass(r scenarioResult) string {
	if r.passed {
		return fmt.Sprintf("PASS  %-35s %s", r.name, r.detail)
	}
	return fmt.Sprintf("FAIL  %-35s %s", r.name, r.detail)
}
