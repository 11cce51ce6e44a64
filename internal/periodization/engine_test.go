package periodization

import (
	"math"
	"testing"

	"github.com/meltforce/liftsignal/internal/models"
)

func fptr(v float64) *float64 { return &v }

// TestSessionFatigueScore verifies the volume × RIR-proximity formula and
// the avg-RIR default of 3 for untracked sessions.
func TestSessionFatigueScore(t *testing.T) {
	tests := []struct {
		name string
		sets []SetSummary
		want float64
	}{
		{
			name: "all sets at RIR 2",
			sets: []SetSummary{
				{WeightKg: 100, Reps: 10, RIR: fptr(2)},
				{WeightKg: 100, Reps: 10, RIR: fptr(2)},
			},
			want: 2000 * 1.1,
		},
		{
			name: "no RIR recorded defaults avg to 3",
			sets: []SetSummary{
				{WeightKg: 80, Reps: 10},
				{WeightKg: 80, Reps: 10},
			},
			want: 1600, // multiplier 1 + (3−3)×0.1 = 1.0
		},
		{
			name: "to failure weighs heaviest",
			sets: []SetSummary{{WeightKg: 100, Reps: 10, RIR: fptr(0)}},
			want: 1000 * 1.3,
		},
		{
			name: "mixed tracked and untracked averages the tracked only",
			sets: []SetSummary{
				{WeightKg: 100, Reps: 10, RIR: fptr(1)},
				{WeightKg: 100, Reps: 10},
			},
			want: 2000 * 1.2,
		},
		{
			name: "empty session",
			sets: nil,
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SessionFatigueScore(tt.sets)
			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("SessionFatigueScore = %.4f, want %.4f", got, tt.want)
			}
		})
	}
}

// TestFatigueIndex verifies the mean with the empty-input zero case.
func TestFatigueIndex(t *testing.T) {
	if got := FatigueIndex(nil); got != 0 {
		t.Errorf("FatigueIndex(nil) = %.2f, want 0", got)
	}
	if got := FatigueIndex([]float64{80, 90, 100}); math.Abs(got-90) > 0.001 {
		t.Errorf("FatigueIndex = %.2f, want 90", got)
	}
}

// TestPerformanceTrend verifies the percent change with the zero-previous
// guard.
func TestPerformanceTrend(t *testing.T) {
	tests := []struct {
		current, previous, want float64
	}{
		{110, 100, 10},
		{95, 100, -5},
		{100, 100, 0},
		{100, 0, 0}, // no previous aggregate
	}
	for _, tt := range tests {
		if got := PerformanceTrend(tt.current, tt.previous); math.Abs(got-tt.want) > 0.001 {
			t.Errorf("PerformanceTrend(%.0f, %.0f) = %.2f, want %.2f",
				tt.current, tt.previous, got, tt.want)
		}
	}
}

// TestSimpleEst1RM verifies the coarse projection used for microcycle
// aggregates.
func TestSimpleEst1RM(t *testing.T) {
	if got := SimpleEst1RM(80, 10); math.Abs(got-80*(1+10.0/30)) > 0.001 {
		t.Errorf("SimpleEst1RM(80, 10) = %.4f, want %.4f", got, 80*(1+10.0/30))
	}
	if got := SimpleEst1RM(100, 0); got != 100 {
		t.Errorf("SimpleEst1RM(100, 0) = %.2f, want 100", got)
	}
}

// TestRecommend verifies the recommendation rules and their evaluation order:
// deload wins over block_change when both would match.
func TestRecommend(t *testing.T) {
	tests := []struct {
		name    string
		fatigue float64
		trend   float64
		want    string
	}{
		{"high fatigue flat performance", 90, 0, models.RecommendDeload},
		{"high fatigue falling performance", 90, -10, models.RecommendDeload},
		{"moderate fatigue falling performance", 50, -10, models.RecommendBlockChange},
		{"high fatigue but improving", 90, 5, models.RecommendOptimal},
		{"all nominal", 50, 3, models.RecommendOptimal},
		{"boundary fatigue not above 85", 85, -1, models.RecommendOptimal},
		{"boundary trend exactly -5", 50, -5, models.RecommendOptimal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Recommend(tt.fatigue, tt.trend); got != tt.want {
				t.Errorf("Recommend(%.0f, %.0f) = %q, want %q", tt.fatigue, tt.trend, got, tt.want)
			}
		})
	}
}
