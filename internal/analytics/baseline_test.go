package analytics

import (
	"math"
	"testing"
)

// TestCalcBaseline verifies the rolling-window max, percent change, and
// sensitivity scaling.
func TestCalcBaseline(t *testing.T) {
	tests := []struct {
		name        string
		current     float64
		history     []float64
		window      int
		sensitivity float64
		wantBase    float64
		wantPct     float64
	}{
		{
			name:    "baseline from short history",
			current: 120, history: []float64{100, 106.67, 105, 108},
			window: 8, sensitivity: 1.0,
			wantBase: 108, wantPct: (120 - 108) / 108.0,
		},
		{
			name:    "empty history baselines to current",
			current: 100, history: nil,
			window: 8, sensitivity: 1.0,
			wantBase: 100, wantPct: 0,
		},
		{
			name:    "window excludes old peak",
			current: 100, history: []float64{150, 90, 95, 92},
			window: 3, sensitivity: 1.0,
			wantBase: 95, wantPct: (100 - 95) / 95.0,
		},
		{
			name:    "zero baseline yields zero pct",
			current: 50, history: []float64{0, 0},
			window: 8, sensitivity: 1.0,
			wantBase: 0, wantPct: 0,
		},
		{
			name:    "regression below baseline",
			current: 95, history: []float64{100},
			window: 8, sensitivity: 1.0,
			wantBase: 100, wantPct: -0.05,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalcBaseline(tt.current, tt.history, tt.window, tt.sensitivity)
			if math.Abs(got.Value-tt.wantBase) > 0.001 {
				t.Errorf("baseline = %.4f, want %.4f", got.Value, tt.wantBase)
			}
			if math.Abs(got.PctChange-tt.wantPct) > 0.0001 {
				t.Errorf("pct_change = %.4f, want %.4f", got.PctChange, tt.wantPct)
			}
		})
	}
}

// TestCalcBaselineSensitivity verifies that sensitivity scales only the
// adjusted percentage, not the raw one.
func TestCalcBaselineSensitivity(t *testing.T) {
	got := CalcBaseline(110, []float64{100}, 8, 2.0)
	if math.Abs(got.PctChange-0.10) > 0.0001 {
		t.Errorf("pct_change = %.4f, want 0.10", got.PctChange)
	}
	if math.Abs(got.AdjustedPct-0.20) > 0.0001 {
		t.Errorf("adjusted_pct = %.4f, want 0.20", got.AdjustedPct)
	}
}

// TestCalcBaselineDeterministic verifies bit-identical output for identical
// inputs.
func TestCalcBaselineDeterministic(t *testing.T) {
	history := []float64{100, 102.5, 101, 104}
	a := CalcBaseline(106, history, 8, 1.5)
	b := CalcBaseline(106, history, 8, 1.5)
	if a != b {
		t.Errorf("CalcBaseline not deterministic: %+v vs %+v", a, b)
	}
}
