package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/meltforce/liftsignal/internal/models"
)

// InsertSetLogs batch-inserts logged sets. Returns count inserted.
func (db *DB) InsertSetLogs(ctx context.Context, rows []models.SetLogRow) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	query := `INSERT INTO set_logs (user_id, session_name, session_date, session_duration,
		exercise_number, exercise_name, equipment, target_reps, is_warmup, set_number,
		weight_kg, is_bodyweight_plus, reps, rir) VALUES `
	args := make([]any, 0, len(rows)*14)
	valueStrings := make([]string, 0, len(rows))

	for i, r := range rows {
		base := i * 14
		valueStrings = append(valueStrings, fmt.Sprintf(
			"($%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7,
			base+8, base+9, base+10, base+11, base+12, base+13, base+14,
		))
		args = append(args, r.UserID, r.SessionName, r.SessionDate, r.SessionDuration,
			r.ExerciseNumber, r.ExerciseName, r.Equipment, r.TargetReps,
			r.IsWarmup, r.SetNumber, r.WeightKg, r.IsBodyweightPlus, r.Reps, r.RIR)
	}

	query += strings.Join(valueStrings, ",") + " ON CONFLICT DO NOTHING"

	tag, err := db.Pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("inserting set logs: %w", err)
	}
	return tag.RowsAffected(), nil
}

// DeleteSetLogs removes all sets for one session date so re-imports always
// reflect the latest export.
func (db *DB) DeleteSetLogs(ctx context.Context, sessionDate time.Time, userID int) error {
	_, err := db.Pool.Exec(ctx,
		`DELETE FROM set_logs WHERE session_date = $1 AND user_id = $2`,
		sessionDate, userID)
	if err != nil {
		return fmt.Errorf("deleting set logs: %w", err)
	}
	return nil
}

// QuerySetLogs retrieves logged sets in a date range, optionally filtered by
// exercise name (partial match).
func (db *DB) QuerySetLogs(ctx context.Context, start, end time.Time, userID int, exerciseFilter string) ([]models.SetLogRow, error) {
	query := `SELECT user_id, session_name, session_date, session_duration,
		 exercise_number, exercise_name, equipment, target_reps,
		 is_warmup, set_number, weight_kg, is_bodyweight_plus, reps, rir
		 FROM set_logs
		 WHERE session_date >= $1 AND session_date < $2 AND user_id = $3`
	args := []any{start, end, userID}

	if exerciseFilter != "" {
		query += ` AND exercise_name ILIKE '%' || $4 || '%'`
		args = append(args, exerciseFilter)
	}
	query += ` ORDER BY session_date DESC, exercise_number ASC, is_warmup DESC, set_number ASC`

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying set logs: %w", err)
	}
	defer rows.Close()

	return scanSetLogRows(rows)
}

// ExerciseSessionHistory returns all sets for one exercise across its most
// recent sessions, oldest session first, so callers can aggregate them into
// per-session performance records. The exercise name must match exactly
// (case-insensitive); a partial match would fold distinct exercises sharing
// a substring into one history. limit bounds the number of distinct sessions
// returned (0 means no bound).
func (db *DB) ExerciseSessionHistory(ctx context.Context, userID int, exercise string, limit int) ([]models.SetLogRow, error) {
	query := `SELECT user_id, session_name, session_date, session_duration,
		 exercise_number, exercise_name, equipment, target_reps,
		 is_warmup, set_number, weight_kg, is_bodyweight_plus, reps, rir
		 FROM set_logs
		 WHERE user_id = $1 AND LOWER(exercise_name) = LOWER($2)`
	args := []any{userID, exercise}

	if limit > 0 {
		query += ` AND session_date IN (
			SELECT DISTINCT session_date FROM set_logs
			WHERE user_id = $1 AND LOWER(exercise_name) = LOWER($2)
			ORDER BY session_date DESC LIMIT $3
		)`
		args = append(args, limit)
	}
	query += ` ORDER BY session_date ASC, set_number ASC`

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying exercise history: %w", err)
	}
	defer rows.Close()

	return scanSetLogRows(rows)
}

// MeanSimple1RM averages the coarse weight×(1+reps/30) projection over a
// user's non-warmup sets in [start, end). Used for microcycle-level
// performance aggregates.
func (db *DB) MeanSimple1RM(ctx context.Context, userID int, start, end time.Time) (float64, error) {
	var avg float64
	err := db.Pool.QueryRow(ctx,
		`SELECT COALESCE(AVG(weight_kg * (1 + reps / 30.0)), 0)
		 FROM set_logs
		 WHERE user_id = $1 AND session_date >= $2 AND session_date < $3 AND NOT is_warmup`,
		userID, start, end).Scan(&avg)
	if err != nil {
		return 0, fmt.Errorf("averaging estimated 1RM: %w", err)
	}
	return avg, nil
}

func scanSetLogRows(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]models.SetLogRow, error) {
	var result []models.SetLogRow
	for rows.Next() {
		var r models.SetLogRow
		if err := rows.Scan(&r.UserID, &r.SessionName, &r.SessionDate, &r.SessionDuration,
			&r.ExerciseNumber, &r.ExerciseName, &r.Equipment, &r.TargetReps,
			&r.IsWarmup, &r.SetNumber, &r.WeightKg, &r.IsBodyweightPlus, &r.Reps, &r.RIR); err != nil {
			return nil, fmt.Errorf("scanning set log: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}
