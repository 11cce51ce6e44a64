package mcp

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/meltforce/liftsignal/internal/analytics"
)

// defaultTimeRange returns start/end defaulting to the last 90 days.
func defaultTimeRange(startStr, endStr string) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error

	if endStr != "" {
		end, err = parseFlexTime(endStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		end = time.Now()
	}

	if startStr != "" {
		start, err = parseFlexTime(startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		start = end.AddDate(0, 0, -90)
	}

	return start, end, nil
}

func parseFlexTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse("2006-01-02", s)
	if err == nil {
		return t, nil
	}
	return time.Time{}, err
}

// --- Tool definitions ---

var toolGetSetLogs = mcp.NewTool("get_set_logs",
	mcp.WithDescription("Query logged strength training sets. Returns raw set data including weight, reps, and RIR (reps in reserve), with session context."),
	mcp.WithString("start", mcp.Description("Start date (ISO 8601 or YYYY-MM-DD). Defaults to 90 days ago.")),
	mcp.WithString("end", mcp.Description("End date (ISO 8601 or YYYY-MM-DD). Defaults to now.")),
	mcp.WithString("exercise", mcp.Description("Filter by exercise name (partial match, e.g. 'bench press')")),
)

var toolGetExerciseMetrics = mcp.NewTool("get_exercise_metrics",
	mcp.WithDescription("Per-session performance metrics for one exercise: estimated 1RM, effective volume, best set, total reps. Warmup sets are excluded."),
	mcp.WithString("exercise", mcp.Required(), mcp.Description("Exercise name (partial match)")),
	mcp.WithNumber("limit", mcp.Description("Number of most recent sessions to include. Defaults to all.")),
)

var toolGetBaseline = mcp.NewTool("get_baseline",
	mcp.WithDescription("Rolling performance baseline for an exercise: mean and standard deviation of estimated 1RM over recent sessions, plus whether the latest session deviates significantly."),
	mcp.WithString("exercise", mcp.Required(), mcp.Description("Exercise name (partial match)")),
)

var toolGetAlerts = mcp.NewTool("get_alerts",
	mcp.WithDescription("Performance alerts for an exercise: improvement, stagnation, regression, and overtraining-risk signals derived from the estimated 1RM trend and systemic fatigue."),
	mcp.WithString("exercise", mcp.Required(), mcp.Description("Exercise name (partial match)")),
)

var toolGetFatigue = mcp.NewTool("get_fatigue",
	mcp.WithDescription("Current recovery state per muscle group: fatigue and recovery percentages, hours until recovered, and a readiness label. Based on each group's most recent session and an exponential decay model."),
)

var toolGetTrainingIntensity = mcp.NewTool("get_training_intensity",
	mcp.WithDescription("RIR distribution, failure rate, per-exercise stats, and optional exercise progression. Returns intensity analysis for the selected range."),
	mcp.WithString("start", mcp.Description("Start date. Defaults to 90 days ago.")),
	mcp.WithString("end", mcp.Description("End date. Defaults to now.")),
	mcp.WithString("exercise", mcp.Description("Filter by exercise name (partial match). When set, includes session-by-session progression.")),
)

var toolGetVolumeSummary = mcp.NewTool("get_volume_summary",
	mcp.WithDescription("Aggregated training volume per period: working sets, total reps, tonnage, and sessions."),
	mcp.WithString("start", mcp.Description("Start date. Defaults to 90 days ago.")),
	mcp.WithString("end", mcp.Description("End date. Defaults to now.")),
	mcp.WithString("bucket", mcp.Description("Aggregation period. Defaults to '1 week'."), mcp.Enum("1 week", "1 month")),
)

var toolGetPeriodizationStatus = mcp.NewTool("get_periodization_status",
	mcp.WithDescription("Periodization state for a training program: active mesocycle and microcycle, completed sessions in the current microcycle, and the last cycle analysis. Without program_id, lists the user's programs."),
	mcp.WithString("program_id", mcp.Description("Program UUID. Omit to list available programs.")),
)

var toolGetDataStats = mcp.NewTool("get_data_stats",
	mcp.WithDescription("Aggregate statistics over all stored training data: totals, date range, and per-exercise set and tonnage counts."),
)

// --- Tool handlers ---

func (h *handlers) getSetLogs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := defaultTimeRange(req.GetString("start", ""), req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	uid := UserIDFromContext(ctx)
	exerciseFilter := req.GetString("exercise", "")

	sets, err := h.ds.QuerySetLogs(ctx, start, end, uid, exerciseFilter)
	if err != nil {
		h.log.Error("mcp get_set_logs", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(sets)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

// exerciseSessions loads an exercise's set history and folds it into
// per-session performance records, oldest first.
func (h *handlers) exerciseSessions(ctx context.Context, uid int, exercise string, limit int) ([]analytics.SessionMetrics, error) {
	rows, err := h.ds.ExerciseSessionHistory(ctx, uid, exercise, limit)
	if err != nil {
		return nil, err
	}
	return analytics.GroupSessions(rows, h.cfg), nil
}

func (h *handlers) getExerciseMetrics(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exercise, err := req.RequireString("exercise")
	if err != nil {
		return mcp.NewToolResultError("exercise parameter is required"), nil
	}

	limit := req.GetInt("limit", 0)
	uid := UserIDFromContext(ctx)

	sessions, err := h.exerciseSessions(ctx, uid, exercise, limit)
	if err != nil {
		h.log.Error("mcp get_exercise_metrics", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(sessions)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getBaseline(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exercise, err := req.RequireString("exercise")
	if err != nil {
		return mcp.NewToolResultError("exercise parameter is required"), nil
	}

	uid := UserIDFromContext(ctx)
	sessions, err := h.exerciseSessions(ctx, uid, exercise, 0)
	if err != nil {
		h.log.Error("mcp get_baseline", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if len(sessions) == 0 {
		return mcp.NewToolResultError("no sessions for exercise: " + exercise), nil
	}

	history := analytics.Est1RMHistory(sessions)
	current := history[len(history)-1]
	baseline := analytics.CalcBaseline(current, history[:len(history)-1], h.cfg.BaselineWindow, h.cfg.Sensitivity)

	result, err := mcp.NewToolResultJSON(map[string]any{
		"exercise": exercise,
		"current":  current,
		"sessions": len(sessions),
		"baseline": baseline,
	})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getAlerts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exercise, err := req.RequireString("exercise")
	if err != nil {
		return mcp.NewToolResultError("exercise parameter is required"), nil
	}

	uid := UserIDFromContext(ctx)
	sessions, err := h.exerciseSessions(ctx, uid, exercise, 0)
	if err != nil {
		h.log.Error("mcp get_alerts sessions", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	states, err := h.fatigueStates(ctx, uid)
	if err != nil {
		h.log.Error("mcp get_alerts fatigue", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	var systemic float64
	for _, st := range states {
		if st.Fatigue > systemic {
			systemic = st.Fatigue
		}
	}

	alerts := analytics.DetectAlerts(exercise, analytics.Est1RMHistory(sessions), systemic, h.cfg)

	result, err := mcp.NewToolResultJSON(map[string]any{
		"exercise":         exercise,
		"sessions":         len(sessions),
		"systemic_fatigue": systemic,
		"alerts":           alerts,
	})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

// fatigueStates computes the current recovery estimate per muscle group from
// its last training event. Session tonnage seeds the initial fatigue, scaled
// so a 5000kg session fully fatigues the group.
func (h *handlers) fatigueStates(ctx context.Context, uid int) ([]analytics.FatigueState, error) {
	training, err := h.ds.MuscleTrainingStatus(ctx, uid)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	states := make([]analytics.FatigueState, 0, len(training))
	for _, m := range training {
		load := math.Min(100, m.LastVolume/50)
		last := m.LastTrained
		states = append(states, analytics.CalcFatigue(m.MuscleGroup, &last, load, now, h.cfg))
	}
	return states, nil
}

func (h *handlers) getFatigue(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := UserIDFromContext(ctx)

	states, err := h.fatigueStates(ctx, uid)
	if err != nil {
		h.log.Error("mcp get_fatigue", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(states)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getTrainingIntensity(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := defaultTimeRange(req.GetString("start", ""), req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	uid := UserIDFromContext(ctx)
	exerciseFilter := req.GetString("exercise", "")

	intensity, err := h.ds.GetTrainingIntensity(ctx, start, end, uid, exerciseFilter)
	if err != nil {
		h.log.Error("mcp get_training_intensity", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(intensity)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getVolumeSummary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := defaultTimeRange(req.GetString("start", ""), req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	bucket := req.GetString("bucket", "1 week")
	uid := UserIDFromContext(ctx)

	summary, err := h.ds.GetVolumeSummary(ctx, start, end, bucket, uid)
	if err != nil {
		h.log.Error("mcp get_volume_summary", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(summary)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getPeriodizationStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := UserIDFromContext(ctx)

	idStr := req.GetString("program_id", "")
	if idStr == "" {
		programs, err := h.ds.ProgramsByUser(ctx, uid)
		if err != nil {
			h.log.Error("mcp get_periodization_status programs", "error", err)
			return mcp.NewToolResultError("query failed: " + err.Error()), nil
		}
		result, err := mcp.NewToolResultJSON(map[string]any{"programs": programs})
		if err != nil {
			return mcp.NewToolResultError("serialization failed"), nil
		}
		return result, nil
	}

	programID, err := uuid.Parse(idStr)
	if err != nil {
		return mcp.NewToolResultError("invalid program_id: " + err.Error()), nil
	}

	status, err := h.ds.PeriodizationStatus(ctx, programID)
	if err != nil {
		h.log.Error("mcp get_periodization_status", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(status)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getDataStats(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := UserIDFromContext(ctx)

	stats, err := h.ds.GetDataStats(ctx, uid)
	if err != nil {
		h.log.Error("mcp get_data_stats", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(stats)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
