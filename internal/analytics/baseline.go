package analytics

// Baseline is the rolling best-performance reference for one exercise as of
// one session.
type Baseline struct {
	Value       float64 `json:"baseline"`
	PctChange   float64 `json:"pct_change"`
	AdjustedPct float64 `json:"adjusted_pct"`
}

// CalcBaseline computes the rolling baseline for an exercise: the max
// estimated 1RM over the last `window` history values (oldest→newest order),
// and the relative change of the current session against it. With no history
// the baseline equals the current value and the change is zero. Sensitivity
// scales the reported change for alert tuning.
func CalcBaseline(current float64, history []float64, window int, sensitivity float64) Baseline {
	if window <= 0 {
		window = DefaultConfig().BaselineWindow
	}

	if len(history) == 0 {
		return Baseline{Value: current}
	}

	start := len(history) - window
	if start < 0 {
		start = 0
	}
	base := history[start]
	for _, v := range history[start+1:] {
		if v > base {
			base = v
		}
	}

	var pct float64
	if base != 0 {
		pct = (current - base) / base
	}

	return Baseline{
		Value:       base,
		PctChange:   pct,
		AdjustedPct: pct * sensitivity,
	}
}
