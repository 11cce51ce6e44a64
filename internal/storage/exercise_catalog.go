package storage

import (
	"context"
	"fmt"
	"time"
)

// CatalogEntry maps an exercise to the muscle group it primarily trains.
type CatalogEntry struct {
	ExerciseName string `json:"exercise_name"`
	MuscleGroup  string `json:"muscle_group"`
	Enabled      bool   `json:"enabled"`
}

// GetExerciseCatalog returns the full exercise→muscle-group catalog.
func (db *DB) GetExerciseCatalog(ctx context.Context) ([]CatalogEntry, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT exercise_name, muscle_group, enabled FROM exercise_catalog
		 ORDER BY muscle_group, exercise_name`)
	if err != nil {
		return nil, fmt.Errorf("querying exercise catalog: %w", err)
	}
	defer rows.Close()

	var result []CatalogEntry
	for rows.Next() {
		var e CatalogEntry
		if err := rows.Scan(&e.ExerciseName, &e.MuscleGroup, &e.Enabled); err != nil {
			return nil, fmt.Errorf("scanning catalog entry: %w", err)
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

// UpsertCatalogEntry creates or updates one catalog mapping.
func (db *DB) UpsertCatalogEntry(ctx context.Context, entry CatalogEntry) error {
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO exercise_catalog (exercise_name, muscle_group, enabled)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (exercise_name) DO UPDATE
			SET muscle_group = $2, enabled = $3`,
		entry.ExerciseName, entry.MuscleGroup, entry.Enabled)
	if err != nil {
		return fmt.Errorf("upserting catalog entry: %w", err)
	}
	return nil
}

// MuscleTraining is the most recent training event for one muscle group.
type MuscleTraining struct {
	MuscleGroup string    `json:"muscle_group"`
	LastTrained time.Time `json:"last_trained"`
	LastVolume  float64   `json:"last_volume_kg"`
}

// MuscleTrainingStatus returns, per muscle group, the most recent session
// date and that session's total volume. Muscle groups with no logged
// training are absent from the result; callers treat them as fully
// recovered.
func (db *DB) MuscleTrainingStatus(ctx context.Context, userID int) ([]MuscleTraining, error) {
	rows, err := db.Pool.Query(ctx,
		`WITH grouped AS (
			SELECT c.muscle_group, s.session_date, SUM(s.weight_kg * s.reps) AS volume
			FROM set_logs s
			JOIN exercise_catalog c ON lower(c.exercise_name) = lower(s.exercise_name)
			WHERE s.user_id = $1 AND NOT s.is_warmup AND c.enabled
			GROUP BY c.muscle_group, s.session_date
		)
		SELECT DISTINCT ON (muscle_group) muscle_group, session_date, volume
		FROM grouped
		ORDER BY muscle_group, session_date DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("querying muscle training status: %w", err)
	}
	defer rows.Close()

	var result []MuscleTraining
	for rows.Next() {
		var m MuscleTraining
		if err := rows.Scan(&m.MuscleGroup, &m.LastTrained, &m.LastVolume); err != nil {
			return nil, fmt.Errorf("scanning muscle training: %w", err)
		}
		result = append(result, m)
	}
	return result, rows.Err()
}
