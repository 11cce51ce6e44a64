// Package periodization tracks mesocycle/microcycle progress for a training
// program. The decision logic is pure; all state lives behind the Repository
// port so the service can be tested against an in-memory fake.
package periodization

import "github.com/meltforce/liftsignal/internal/models"

// SetSummary is the slice of a set log that the fatigue score needs.
type SetSummary struct {
	WeightKg float64
	Reps     int
	RIR      *float64
}

// SessionFatigueScore computes the per-session fatigue score:
// total_volume × (1 + (3 − avg_RIR) × 0.1). Sets worked closer to failure
// weigh heavier. When no set recorded an RIR the average defaults to 3,
// leaving the volume unscaled.
func SessionFatigueScore(sets []SetSummary) float64 {
	var volume, rirSum float64
	var rirCount int

	for _, s := range sets {
		volume += s.WeightKg * float64(s.Reps)
		if s.RIR != nil {
			rirSum += *s.RIR
			rirCount++
		}
	}

	avgRIR := 3.0
	if rirCount > 0 {
		avgRIR = rirSum / float64(rirCount)
	}

	return volume * (1 + (3-avgRIR)*0.1)
}

// FatigueIndex is the mean fatigue score of a microcycle's completed
// sessions, zero when there are none.
func FatigueIndex(scores []float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	var sum float64
	for _, s := range scores {
		sum += s
	}
	return sum / float64(len(scores))
}

// PerformanceTrend is the percent change between the current and previous
// microcycle's mean estimated 1RM, zero when there is no previous aggregate.
func PerformanceTrend(current, previous float64) float64 {
	if previous == 0 {
		return 0
	}
	return (current - previous) / previous * 100
}

// SimpleEst1RM is the coarse weight×(1+reps/30) projection used for
// microcycle-level aggregates, where per-set RIR precision is not needed.
func SimpleEst1RM(weightKg float64, reps int) float64 {
	return weightKg * (1 + float64(reps)/30)
}

// Recommend evaluates the block-level recommendation for a finalized
// microcycle. Rules apply in order: high fatigue with flat-or-falling
// performance calls for a deload, a clear performance drop calls for a block
// change, anything else continues as planned.
func Recommend(fatigueIndex, performanceTrend float64) string {
	switch {
	case fatigueIndex > 85 && performanceTrend <= 0:
		return models.RecommendDeload
	case performanceTrend < -5:
		return models.RecommendBlockChange
	default:
		return models.RecommendOptimal
	}
}
