package analytics

import (
	"testing"
	"time"

	"github.com/meltforce/liftsignal/internal/models"
)

// TestGroupSessions verifies that set-log rows split into one aggregate per
// session date, with warmups excluded from the metrics.
func TestGroupSessions(t *testing.T) {
	day1 := time.Date(2026, 2, 17, 17, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 2, 19, 17, 0, 0, 0, time.UTC)
	rir := func(v float64) *float64 { return &v }

	rows := []models.SetLogRow{
		{ExerciseName: "Bench Press", SessionDate: day1, WeightKg: 60, Reps: 10, IsWarmup: true},
		{ExerciseName: "Bench Press", SessionDate: day1, WeightKg: 100, Reps: 5, RIR: rir(1)},
		{ExerciseName: "Bench Press", SessionDate: day1, WeightKg: 100, Reps: 5, RIR: rir(0)},
		{ExerciseName: "Bench Press", SessionDate: day2, WeightKg: 102.5, Reps: 5, RIR: rir(1)},
	}

	sessions := GroupSessions(rows, DefaultConfig())
	if len(sessions) != 2 {
		t.Fatalf("sessions = %d, want 2", len(sessions))
	}
	if got := len(sessions[0].Sets); got != 2 {
		t.Errorf("day1 working sets = %d, want 2 (warmup excluded)", got)
	}
	if !sessions[0].Date.Equal(day1) || !sessions[1].Date.Equal(day2) {
		t.Error("sessions not in date order")
	}
	if sessions[1].Est1RM <= sessions[0].Est1RM {
		t.Errorf("day2 est1RM %.2f should exceed day1 %.2f", sessions[1].Est1RM, sessions[0].Est1RM)
	}
}

// TestGroupSessionsEmpty verifies no rows yields no sessions.
func TestGroupSessionsEmpty(t *testing.T) {
	if got := GroupSessions(nil, DefaultConfig()); len(got) != 0 {
		t.Errorf("sessions = %d, want 0", len(got))
	}
}

// TestEst1RMHistory verifies order-preserving projection.
func TestEst1RMHistory(t *testing.T) {
	sessions := []SessionMetrics{{Est1RM: 100}, {Est1RM: 105}, {Est1RM: 102}}
	got := Est1RMHistory(sessions)
	want := []float64{100, 105, 102}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("history[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}
