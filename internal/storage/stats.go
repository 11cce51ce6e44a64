package storage

import (
	"context"
	"fmt"
	"time"
)

// DataStats holds aggregate statistics about all stored data.
type DataStats struct {
	TotalSets        int64               `json:"total_sets"`
	TotalSessions    int64               `json:"total_sessions"`
	TotalExercises   int64               `json:"total_exercises"`
	TotalMesocycles  int64               `json:"total_mesocycles"`
	EarliestData     *time.Time          `json:"earliest_data"`
	LatestData       *time.Time          `json:"latest_data"`
	SetsByExercise   []ExerciseSetsStat  `json:"sets_by_exercise"`
}

// ExerciseSetsStat holds summary stats for a single exercise.
type ExerciseSetsStat struct {
	Name      string  `json:"name"`
	Sets      int64   `json:"sets"`
	TonnageKg float64 `json:"tonnage_kg"`
}

// GetDataStats returns aggregate statistics for a user's stored data.
func (db *DB) GetDataStats(ctx context.Context, userID int) (*DataStats, error) {
	stats := &DataStats{}

	err := db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM set_logs WHERE user_id = $1`, userID,
	).Scan(&stats.TotalSets)
	if err != nil {
		return nil, fmt.Errorf("counting sets: %w", err)
	}

	err = db.Pool.QueryRow(ctx,
		`SELECT COUNT(DISTINCT session_date) FROM set_logs WHERE user_id = $1`, userID,
	).Scan(&stats.TotalSessions)
	if err != nil {
		return nil, fmt.Errorf("counting sessions: %w", err)
	}

	err = db.Pool.QueryRow(ctx,
		`SELECT COUNT(DISTINCT exercise_name) FROM set_logs WHERE user_id = $1`, userID,
	).Scan(&stats.TotalExercises)
	if err != nil {
		return nil, fmt.Errorf("counting exercises: %w", err)
	}

	err = db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM mesocycles m
		 JOIN programs p ON p.id = m.program_id
		 WHERE p.user_id = $1`, userID,
	).Scan(&stats.TotalMesocycles)
	if err != nil {
		return nil, fmt.Errorf("counting mesocycles: %w", err)
	}

	err = db.Pool.QueryRow(ctx,
		`SELECT MIN(session_date), MAX(session_date) FROM set_logs WHERE user_id = $1`,
		userID,
	).Scan(&stats.EarliestData, &stats.LatestData)
	if err != nil {
		return nil, fmt.Errorf("querying date range: %w", err)
	}

	rows, err := db.Pool.Query(ctx,
		`SELECT exercise_name, COUNT(*), COALESCE(SUM(weight_kg * reps), 0)
		 FROM set_logs
		 WHERE user_id = $1 AND NOT is_warmup
		 GROUP BY exercise_name
		 ORDER BY COUNT(*) DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying sets by exercise: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s ExerciseSetsStat
		if err := rows.Scan(&s.Name, &s.Sets, &s.TonnageKg); err != nil {
			return nil, fmt.Errorf("scanning exercise stat: %w", err)
		}
		stats.SetsByExercise = append(stats.SetsByExercise, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}
