package controller

import (
	"fmt"
	"strings"
)

// Mode selects how the phase moves from its value at a kick to the new
// target over the predicted interval.
type Mode int

const (
	// Immediate jumps to the target on the first sample after the kick.
	Immediate Mode = iota
	// LinearDrift interpolates linearly over the whole interval.
	LinearDrift
	// Exponential eases in: slow at first, accelerating towards the target.
	Exponential
	// LastMoment holds until the transition threshold, then moves linearly.
	LastMoment
)

var modeNames = [...]string{
	Immediate:   "immediate",
	LinearDrift: "linear",
	Exponential: "exponential",
	LastMoment:  "last-moment",
}

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return fmt.Sprintf("Mode(%d)", int(m))
	}
	return modeNames[m]
}

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m >= Immediate && m <= LastMoment
}

// ParseMode parses a mode name as printed by String. Matching is case
// insensitive and accepts a few common aliases.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "immediate", "instant":
		return Immediate, nil
	case "linear", "lineardrift", "linear-drift":
		return LinearDrift, nil
	case "exponential", "exp":
		return Exponential, nil
	case "last-moment", "lastmoment", "last":
		return LastMoment, nil
	}
	return 0, fmt.Errorf("%w: unknown adaptation mode %q", ErrInvalidConfig, s)
}

// State is the controller's position in its kick cycle.
type State int

const (
	// Idle: no kick yet, or the kicks stopped; the phase is frozen.
	Idle State = iota
	// Armed: a kick arrived but no transition is possible this cycle.
	Armed
	// Transitioning: moving towards the target.
	Transitioning
	// Aligned: the target was reached.
	Aligned
)

var stateNames = [...]string{
	Idle:          "idle",
	Armed:         "armed",
	Transitioning: "transitioning",
	Aligned:       "aligned",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}
