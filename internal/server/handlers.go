package server

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/meltforce/liftsignal/internal/analytics"
	"github.com/meltforce/liftsignal/internal/storage"
)

func (s *Server) handleSetsIngest(w http.ResponseWriter, r *http.Request) {
	uid := userIDFromContext(r)

	start := time.Now()
	result, err := s.alpha.Ingest(r.Context(), r.Body, uid)
	durationMs := int(time.Since(start).Milliseconds())

	s.logImport(uid, "alpha", result, err, durationMs)

	if err != nil {
		s.log.Error("set ingest error", "error", err)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleQuerySets(w http.ResponseWriter, r *http.Request) {
	uid := userIDFromContext(r)

	start, end, err := parseTimeRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	rows, err := s.db.QuerySetLogs(r.Context(), start, end, uid, r.URL.Query().Get("exercise"))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleExerciseMetrics(w http.ResponseWriter, r *http.Request) {
	uid := userIDFromContext(r)
	name := chi.URLParam(r, "name")

	sessions, err := s.exerciseSessions(r, uid, name)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (s *Server) handleExerciseBaseline(w http.ResponseWriter, r *http.Request) {
	uid := userIDFromContext(r)
	name := chi.URLParam(r, "name")

	sessions, err := s.exerciseSessions(r, uid, name)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if len(sessions) == 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no sessions for exercise"})
		return
	}

	history := analytics.Est1RMHistory(sessions)
	current := history[len(history)-1]
	baseline := analytics.CalcBaseline(current, history[:len(history)-1], s.cfg.BaselineWindow, s.cfg.Sensitivity)

	writeJSON(w, http.StatusOK, map[string]any{
		"exercise": name,
		"current":  current,
		"sessions": len(sessions),
		"baseline": baseline,
	})
}

func (s *Server) handleExerciseAlerts(w http.ResponseWriter, r *http.Request) {
	uid := userIDFromContext(r)
	name := chi.URLParam(r, "name")

	sessions, err := s.exerciseSessions(r, uid, name)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	systemic, err := s.systemicFatigue(r, uid)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	alerts := analytics.DetectAlerts(name, analytics.Est1RMHistory(sessions), systemic, s.cfg)
	writeJSON(w, http.StatusOK, map[string]any{
		"exercise":         name,
		"sessions":         len(sessions),
		"systemic_fatigue": systemic,
		"alerts":           alerts,
	})
}

func (s *Server) handleFatigue(w http.ResponseWriter, r *http.Request) {
	uid := userIDFromContext(r)

	states, err := s.fatigueStates(r, uid)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, states)
}

// handleMuscleStatus returns the raw per-muscle last-training events, the
// inputs the fatigue model runs on. Remote clients use this to compute
// recovery locally.
func (s *Server) handleMuscleStatus(w http.ResponseWriter, r *http.Request) {
	uid := userIDFromContext(r)

	training, err := s.db.MuscleTrainingStatus(r.Context(), uid)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if training == nil {
		training = []storage.MuscleTraining{}
	}
	writeJSON(w, http.StatusOK, training)
}

func (s *Server) handleIntensity(w http.ResponseWriter, r *http.Request) {
	uid := userIDFromContext(r)

	start, end, err := parseTimeRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	result, err := s.db.GetTrainingIntensity(r.Context(), start, end, uid, r.URL.Query().Get("exercise"))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleVolume(w http.ResponseWriter, r *http.Request) {
	uid := userIDFromContext(r)

	start, end, err := parseTimeRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	bucket := "1 week"
	if r.URL.Query().Get("agg") == "monthly" {
		bucket = "1 month"
	}

	periods, err := s.db.GetVolumeSummary(r.Context(), start, end, bucket, uid)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, periods)
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	entries, err := s.db.GetExerciseCatalog(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleUpsertCatalog(w http.ResponseWriter, r *http.Request) {
	var entry storage.CatalogEntry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if entry.ExerciseName == "" || entry.MuscleGroup == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "exercise_name and muscle_group are required"})
		return
	}

	if err := s.db.UpsertCatalogEntry(r.Context(), entry); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// exerciseSessions loads an exercise's set history and folds it into
// per-session performance records, oldest first.
func (s *Server) exerciseSessions(r *http.Request, uid int, exercise string) ([]analytics.SessionMetrics, error) {
	limit := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	rows, err := s.db.ExerciseSessionHistory(r.Context(), uid, exercise, limit)
	if err != nil {
		return nil, err
	}
	return analytics.GroupSessions(rows, s.cfg), nil
}

// fatigueStates computes the current recovery estimate per muscle group from
// its last training event. Session tonnage seeds the initial fatigue, scaled
// so a 5000kg session fully fatigues the group.
func (s *Server) fatigueStates(r *http.Request, uid int) ([]analytics.FatigueState, error) {
	training, err := s.db.MuscleTrainingStatus(r.Context(), uid)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	states := make([]analytics.FatigueState, 0, len(training))
	for _, m := range training {
		load := math.Min(100, m.LastVolume/50)
		last := m.LastTrained
		states = append(states, analytics.CalcFatigue(m.MuscleGroup, &last, load, now, s.cfg))
	}
	return states, nil
}

// systemicFatigue is the worst current muscle-group fatigue, the whole-body
// scalar the overtraining alert compares against the ceiling.
func (s *Server) systemicFatigue(r *http.Request, uid int) (float64, error) {
	states, err := s.fatigueStates(r, uid)
	if err != nil {
		return 0, err
	}

	var worst float64
	for _, st := range states {
		if st.Fatigue > worst {
			worst = st.Fatigue
		}
	}
	return worst, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func parseTimeRange(r *http.Request) (start, end time.Time, err error) {
	startStr := r.URL.Query().Get("start")
	endStr := r.URL.Query().Get("end")

	if startStr == "" {
		// Default: last 90 days
		end = time.Now()
		start = end.AddDate(0, 0, -90)
		return
	}

	start, err = time.Parse(time.RFC3339, startStr)
	if err != nil {
		start, err = time.Parse("2006-01-02", startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	}

	if endStr == "" {
		end = time.Now()
	} else {
		end, err = time.Parse(time.RFC3339, endStr)
		if err != nil {
			end, err = time.Parse("2006-01-02", endStr)
			if err != nil {
				return time.Time{}, time.Time{}, err
			}
			// End of day for date-only
			end = end.Add(24 * time.Hour)
		}
	}
	return
}
