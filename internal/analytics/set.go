package analytics

import (
	"math"
	"time"
)

// SetMetrics holds the computed metrics for a single working set.
type SetMetrics struct {
	RTF             float64 `json:"rtf"`
	Est1RM          float64 `json:"est_1rm"`
	EffectiveVolume float64 `json:"effective_volume"`
}

// CalcSet converts one logged set into its estimated 1RM and effective
// volume. A nil RIR falls back to cfg.DefaultRIR. Callers are responsible
// for filtering out warmup sets.
func CalcSet(weightKg float64, reps int, rir *float64, cfg Config) SetMetrics {
	r := cfg.DefaultRIR
	if rir != nil {
		r = *rir
	}
	rtf := float64(reps) + r

	est := est1RM(weightKg, rtf, cfg.Formula)

	// Volume discounted by proximity to failure: a set stopped far from
	// failure contributes proportionally less.
	vol := est * float64(reps) / math.Max(1, rtf)

	return SetMetrics{RTF: rtf, Est1RM: est, EffectiveVolume: vol}
}

// est1RM projects a one-rep max from a submaximal set.
func est1RM(weightKg, rtf float64, formula Formula) float64 {
	switch formula {
	case FormulaBrzycki:
		// Brzycki inverts above 36 reps-to-failure; cap at raw weight there.
		if rtf >= 37 {
			return weightKg
		}
		return weightKg * 36 / (37 - rtf)
	default:
		return weightKg * (1 + rtf/30)
	}
}

// SessionSet is one logged set as stored, before any metric computation.
type SessionSet struct {
	WeightKg float64
	Reps     int
	RIR      *float64
	IsWarmup bool
}

// SessionMetrics aggregates all non-warmup sets for one exercise on one
// session date.
type SessionMetrics struct {
	Exercise        string       `json:"exercise"`
	Date            time.Time    `json:"date"`
	Sets            []SetMetrics `json:"sets"`
	Est1RM          float64      `json:"est_1rm"`
	EffectiveVolume float64      `json:"effective_volume"`
	BestWeightKg    float64      `json:"best_weight_kg"`
	BestReps        int          `json:"best_reps"`
	TotalReps       int          `json:"total_reps"`
}

// AggregateSession combines the sets of one exercise session into a single
// performance record. Warmup sets are excluded. The session 1RM is the max
// over sets (the single best effort), volume is the sum. Zero qualifying
// sets yields all-zero aggregates, not an error.
func AggregateSession(exercise string, date time.Time, sets []SessionSet, cfg Config) SessionMetrics {
	m := SessionMetrics{Exercise: exercise, Date: date}

	for _, s := range sets {
		if s.IsWarmup {
			continue
		}
		sm := CalcSet(s.WeightKg, s.Reps, s.RIR, cfg)
		m.Sets = append(m.Sets, sm)

		if sm.Est1RM > m.Est1RM {
			m.Est1RM = sm.Est1RM
		}
		m.EffectiveVolume += sm.EffectiveVolume
		if s.WeightKg > m.BestWeightKg {
			m.BestWeightKg = s.WeightKg
		}
		if s.Reps > m.BestReps {
			m.BestReps = s.Reps
		}
		m.TotalReps += s.Reps
	}

	return m
}
