package models

import "fmt"

// CoverageState is the coverage button position.
// 0 is off, 1..7 index into RingRadiiKm, 8 runs the tour simulation.
type CoverageState int

const (
	CoverageNone       CoverageState = 0
	CoverageSimulation CoverageState = 8

	// CoverageDefault is applied once station data has loaded (fixed 40 km ring).
	CoverageDefault CoverageState = 7

	coverageStates = 9
)

// RingRadiiKm is the ring radius sequence, shared by fixed rings and the ring cycle.
var RingRadiiKm = [...]float64{5, 10, 15, 20, 25, 30, 40}

func (s CoverageState) Next() CoverageState {
	return (s + 1) % coverageStates
}

func (s CoverageState) Valid() bool {
	return s >= 0 && s < coverageStates
}

// RadiusKm reports the fixed ring radius for states 1..7.
func (s CoverageState) RadiusKm() (float64, bool) {
	if s < 1 || s > CoverageState(len(RingRadiiKm)) {
		return 0, false
	}
	return RingRadiiKm[s-1], true
}

func (s CoverageState) Label() string {
	switch {
	case s == CoverageNone:
		return "Coverage: off"
	case s == CoverageSimulation:
		return "Coverage: simulation"
	default:
		if r, ok := s.RadiusKm(); ok {
			return fmt.Sprintf("Coverage: %g km", r)
		}
		return "Coverage: unknown"
	}
}

// Class is the CSS class the browser applies to the coverage button.
func (s CoverageState) Class() string {
	switch {
	case s == CoverageNone:
		return "coverage-off"
	case s == CoverageSimulation:
		return "coverage-sim"
	default:
		return "coverage-on"
	}
}

func (s CoverageState) String() string {
	switch s {
	case CoverageNone:
		return "NONE"
	case CoverageSimulation:
		return "SIMULATION"
	default:
		if r, ok := s.RadiusKm(); ok {
			return fmt.Sprintf("RING_%gKM", r)
		}
		return fmt.Sprintf("INVALID(%d)", int(s))
	}
}
