package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/meltforce/liftsignal/internal/periodization"
)

type createProgramRequest struct {
	Name            string `json:"name"`
	SlotCount       int    `json:"slot_count"`
	MicrocycleWeeks int    `json:"microcycle_weeks"`
}

func (s *Server) handleCreateProgram(w http.ResponseWriter, r *http.Request) {
	uid := userIDFromContext(r)

	var req createProgramRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if req.Name == "" || req.SlotCount <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name and a positive slot_count are required"})
		return
	}
	if req.MicrocycleWeeks <= 0 {
		req.MicrocycleWeeks = 1
	}

	program, err := s.db.CreateProgram(r.Context(), uid, req.Name, req.SlotCount, req.MicrocycleWeeks)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, program)
}

func (s *Server) handleListPrograms(w http.ResponseWriter, r *http.Request) {
	uid := userIDFromContext(r)

	programs, err := s.db.ProgramsByUser(r.Context(), uid)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, programs)
}

type periodizationInitRequest struct {
	ProgramID        uuid.UUID `json:"program_id"`
	TotalMicrocycles int       `json:"total_microcycles"`
	Weeks            int       `json:"weeks"`
}

func (s *Server) handlePeriodizationInit(w http.ResponseWriter, r *http.Request) {
	var req periodizationInitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	meso, micro, err := s.cycles.Init(r.Context(), req.ProgramID, req.TotalMicrocycles, req.Weeks)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, periodization.ErrAlreadyInitialized) {
			status = http.StatusConflict
		}
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"mesocycle":  meso,
		"microcycle": micro,
	})
}

type recordSessionRequest struct {
	ProgramID   uuid.UUID `json:"program_id"`
	SlotNumber  int       `json:"slot_number"`
	SessionDate time.Time `json:"session_date"`
	Sets        []struct {
		WeightKg float64  `json:"weight_kg"`
		Reps     int      `json:"reps"`
		RIR      *float64 `json:"rir"`
	} `json:"sets"`
}

func (s *Server) handlePeriodizationSession(w http.ResponseWriter, r *http.Request) {
	var req recordSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if req.SlotNumber <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "slot_number must be positive"})
		return
	}
	if req.SessionDate.IsZero() {
		req.SessionDate = time.Now()
	}

	sets := make([]periodization.SetSummary, len(req.Sets))
	for i, set := range req.Sets {
		sets[i] = periodization.SetSummary{WeightKg: set.WeightKg, Reps: set.Reps, RIR: set.RIR}
	}

	result, err := s.cycles.RecordSession(r.Context(), req.ProgramID, req.SlotNumber, req.SessionDate, sets)
	if err != nil {
		if errors.Is(err, periodization.ErrNoActiveCycle) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handlePeriodizationStatus(w http.ResponseWriter, r *http.Request) {
	programID, err := uuid.Parse(r.URL.Query().Get("program_id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "valid program_id is required"})
		return
	}

	status, err := s.cycles.Status(r.Context(), programID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, status)
}
