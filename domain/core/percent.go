package core

import "math"

// Percent is a share on the fixed 0-100 scale used everywhere in this engine.
// The 0-1 probability scale exists only transiently inside the two-sample
// proportion test; it is never stored. Keeping the scale in the type system
// prevents the double-scaling bugs that plague ad hoc float conventions.
type Percent float64

// PercentOf converts a 0-1 proportion to the 0-100 scale.
func PercentOf(proportion float64) Percent {
	return Percent(proportion * 100)
}

// Proportion converts back to the 0-1 scale for test statistics.
func (p Percent) Proportion() float64 {
	return float64(p) / 100
}

// Float returns the raw 0-100 value.
func (p Percent) Float() float64 {
	return float64(p)
}

// Defined reports whether the share carries a value.
func (p Percent) Defined() bool {
	return !math.IsNaN(float64(p))
}

// UndefinedPercent is the sentinel for a share that could not be computed.
func UndefinedPercent() Percent {
	return Percent(math.NaN())
}
