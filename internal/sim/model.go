package sim

import "math"

// LoopState is one snapshot of the primary coolant loop.
type LoopState struct {
	Tick           int
	PowerMW        float64
	HotLegC        float64
	ColdLegC       float64
	PressurizerMPa float64
	FlowKgS        float64
}

// Channel identifies one monitored plant parameter.
type Channel string

const (
	ChanHotLeg      Channel = "hot-leg-temp"
	ChanColdLeg     Channel = "cold-leg-temp"
	ChanPressurizer Channel = "pressurizer-pressure"
	ChanFlow        Channel = "loop-flow"
	ChanPower       Channel = "thermal-power"
)

// Channels lists every monitored channel in display order.
func Channels() []Channel {
	return []Channel{ChanPower, ChanHotLeg, ChanColdLeg, ChanPressurizer, ChanFlow}
}

// Value extracts the channel's reading from a snapshot.
func (s LoopState) Value(c Channel) float64 {
	switch c {
	case ChanHotLeg:
		return s.HotLegC
	case ChanColdLeg:
		return s.ColdLegC
	case ChanPressurizer:
		return s.PressurizerMPa
	case ChanFlow:
		return s.FlowKgS
	case ChanPower:
		return s.PowerMW
	}
	return 0
}

// Ratings describes nominal plant operating points used by the physics
// step and the alarm thresholds.
type Ratings struct {
	RatedPowerMW float64
	RatedFlowKgS float64
}

// Nominal steady-state constants for a PWR primary loop. Temperatures in
// Celsius, pressure in MPa.
const (
	nominalColdLegC     = 292.0
	nominalPressureMPa  = 15.5
	specificHeatJPerKgK = 5300.0
	pressureTempCoeff   = 0.011
	lagPerStep          = 0.08
)

// initialState returns the loop at its warm steady state for the given
// power level.
func initialState(powerMW float64, r Ratings) LoopState {
	s := LoopState{
		PowerMW:        powerMW,
		ColdLegC:       nominalColdLegC,
		FlowKgS:        r.RatedFlowKgS,
		PressurizerMPa: nominalPressureMPa,
	}
	s.HotLegC = s.ColdLegC + deltaT(s.PowerMW, s.FlowKgS)
	return s
}

// deltaT is the steady hot-to-cold leg temperature rise for a given
// power and flow.
func deltaT(powerMW, flowKgS float64) float64 {
	if flowKgS <= 0 {
		return 0
	}
	return powerMW * 1e6 / (flowKgS * specificHeatJPerKgK)
}

// step advances the loop one tick toward the steady state implied by
// the current power and flow. First-order lags keep the gauges moving
// smoothly instead of jumping between setpoints.
func step(s LoopState, r Ratings) LoopState {
	next := s
	next.Tick = s.Tick + 1

	targetHot := s.ColdLegC + deltaT(s.PowerMW, s.FlowKgS)
	next.HotLegC = s.HotLegC + (targetHot-s.HotLegC)*lagPerStep

	// cold leg tracks the heat sink; drifts back toward nominal
	next.ColdLegC = s.ColdLegC + (nominalColdLegC-s.ColdLegC)*lagPerStep

	// pressurizer pressure follows average coolant temperature
	avgT := (next.HotLegC + next.ColdLegC) / 2
	nominalAvg := nominalColdLegC + deltaT(r.RatedPowerMW, r.RatedFlowKgS)/2
	targetP := nominalPressureMPa + (avgT-nominalAvg)*pressureTempCoeff
	next.PressurizerMPa = s.PressurizerMPa + (targetP-s.PressurizerMPa)*lagPerStep

	next.FlowKgS = s.FlowKgS + (r.RatedFlowKgS-s.FlowKgS)*lagPerStep
	return next
}

// clampFraction maps a reading to 0..1 of its display range.
func clampFraction(v, lo, hi float64) float64 {
	if hi <= lo {
		return 0
	}
	f := (v - lo) / (hi - lo)
	return math.Min(1, math.Max(0, f))
}
