package analytics

import (
	"math"
	"time"
)

// FatigueState is the per-muscle-group recovery estimate at a point in time.
type FatigueState struct {
	Muscle            string        `json:"muscle"`
	Group             RecoveryGroup `json:"recovery_group"`
	HoursSinceTrained float64       `json:"hours_since_trained"`
	Fatigue           float64       `json:"fatigue"`
	RecoveryPct       int           `json:"recovery_pct"`
	HoursToRecovered  int           `json:"hours_to_recovered"`
	Color             string        `json:"color"`
	Label             string        `json:"label"`
}

// CalcFatigue estimates recovery for one muscle group using exponential decay
// since it was last trained. baseLoad seeds the initial fatigue (clamped to
// 100). A nil lastTrained means no training history, which is 100% recovered
// by definition. The caller supplies now so the computation stays
// deterministic under test.
func CalcFatigue(muscle string, lastTrained *time.Time, baseLoad float64, now time.Time, cfg Config) FatigueState {
	group := ClassifyMuscle(muscle)

	st := FatigueState{Muscle: muscle, Group: group}

	if lastTrained == nil {
		st.RecoveryPct = 100
		st.Color, st.Label = recoveryBucket(100)
		return st
	}

	k := decayFor(group, cfg)
	hours := now.Sub(*lastTrained).Hours()
	if hours < 0 {
		hours = 0
	}
	initial := math.Min(100, baseLoad)
	current := initial * math.Exp(-k*hours)

	recovery := int(math.Round(100 - current))
	if recovery < 0 {
		recovery = 0
	}
	if recovery > 100 {
		recovery = 100
	}

	st.HoursSinceTrained = hours
	st.Fatigue = current
	st.RecoveryPct = recovery
	st.HoursToRecovered = hoursToThreshold(initial, k, hours)
	st.Color, st.Label = recoveryBucket(recovery)
	return st
}

// hoursToThreshold solves e^(−k·t) = 5/initial for the remaining hours until
// fatigue drops below 5 (95% recovery). Zero when already below threshold.
func hoursToThreshold(initial, k, elapsed float64) int {
	if initial <= 5 || k <= 0 {
		return 0
	}
	remaining := math.Ceil(math.Log(initial/5)/k - elapsed)
	if remaining < 0 {
		return 0
	}
	return int(remaining)
}

// recoveryBucket maps a recovery percentage to its display color and label.
// Boundaries are inclusive-low: value < threshold.
func recoveryBucket(recovery int) (color, label string) {
	switch {
	case recovery < 33:
		return "red", "fatigued"
	case recovery < 67:
		return "orange", "recovering"
	case recovery < 100:
		return "yellow", "almost ready"
	default:
		return "green", "recovered"
	}
}
