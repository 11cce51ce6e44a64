package storage

import (
	"context"
	"fmt"
	"time"
)

// VolumePeriod holds aggregated training volume for one time period.
type VolumePeriod struct {
	Period            string  `json:"period"`
	WorkingSets       int     `json:"working_sets"`
	TotalReps         int     `json:"total_reps"`
	TonnageKg         float64 `json:"tonnage_kg"`
	Sessions          int     `json:"sessions"`
	AvgSetsPerSession float64 `json:"avg_sets_per_session"`
}

// GetVolumeSummary returns set/rep/tonnage totals per period.
func (db *DB) GetVolumeSummary(ctx context.Context, start, end time.Time, bucket string, userID int) ([]VolumePeriod, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT date_trunc($1, session_date)::date AS period,
		        COUNT(*) FILTER (WHERE NOT is_warmup)::int AS working_sets,
		        COALESCE(SUM(reps) FILTER (WHERE NOT is_warmup), 0)::int AS total_reps,
		        COALESCE(SUM(weight_kg * reps) FILTER (WHERE NOT is_warmup), 0) AS tonnage,
		        COUNT(DISTINCT session_date)::int AS sessions
		 FROM set_logs
		 WHERE session_date >= $2 AND session_date < $3 AND user_id = $4
		 GROUP BY period
		 ORDER BY period DESC`,
		truncInterval(bucket), start, end, userID)
	if err != nil {
		return nil, fmt.Errorf("querying volume summary: %w", err)
	}
	defer rows.Close()

	var result []VolumePeriod
	for rows.Next() {
		var periodTime time.Time
		var v VolumePeriod
		if err := rows.Scan(&periodTime, &v.WorkingSets, &v.TotalReps, &v.TonnageKg, &v.Sessions); err != nil {
			return nil, fmt.Errorf("scanning volume summary: %w", err)
		}
		if v.Sessions > 0 {
			v.AvgSetsPerSession = float64(v.WorkingSets) / float64(v.Sessions)
		}
		v.Period = periodTime.Format("2006-01-02")
		result = append(result, v)
	}
	return result, rows.Err()
}

// truncInterval converts bucket strings like "1 month" to the interval name
// that date_trunc expects (e.g. "month", "week").
func truncInterval(bucket string) string {
	switch bucket {
	case "1 week":
		return "week"
	case "1 month":
		return "month"
	default:
		return "month"
	}
}
