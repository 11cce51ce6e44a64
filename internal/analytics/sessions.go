package analytics

import (
	"time"

	"github.com/meltforce/liftsignal/internal/models"
)

// GroupSessions folds set-log rows (ordered by session date) into one
// aggregate per session date.
func GroupSessions(rows []models.SetLogRow, cfg Config) []SessionMetrics {
	var sessions []SessionMetrics
	var sets []SessionSet
	var date time.Time
	var exercise string

	flush := func() {
		if len(sets) > 0 {
			sessions = append(sessions, AggregateSession(exercise, date, sets, cfg))
			sets = nil
		}
	}

	for _, row := range rows {
		if !row.SessionDate.Equal(date) {
			flush()
			date = row.SessionDate
			exercise = row.ExerciseName
		}
		sets = append(sets, SessionSet{
			WeightKg: row.WeightKg,
			Reps:     row.Reps,
			RIR:      row.RIR,
			IsWarmup: row.IsWarmup,
		})
	}
	flush()
	return sessions
}

// Est1RMHistory projects session aggregates onto their estimated 1RM values,
// preserving order, for baseline and alert computations.
func Est1RMHistory(sessions []SessionMetrics) []float64 {
	history := make([]float64, len(sessions))
	for i, sess := range sessions {
		history[i] = sess.Est1RM
	}
	return history
}
