package models

import (
	"time"

	"github.com/google/uuid"
)

// Cycle status values.
const (
	CycleActive    = "active"
	CycleCompleted = "completed"
)

// Microcycle recommendation values.
const (
	RecommendOptimal     = "optimal"
	RecommendDeload      = "deload"
	RecommendBlockChange = "block_change"
)

// ProgramRow is a row for the programs table. SlotCount is the number of
// defined session slots per microcycle; a microcycle is finalized when that
// many distinct completed sessions have been recorded.
type ProgramRow struct {
	ID              uuid.UUID `json:"id"`
	UserID          int       `json:"user_id"`
	Name            string    `json:"name"`
	SlotCount       int       `json:"slot_count"`
	MicrocycleWeeks int       `json:"microcycle_weeks"`
	CreatedAt       time.Time `json:"created_at"`
}

// MesocycleRow is a row for the mesocycles table.
type MesocycleRow struct {
	ID               uuid.UUID  `json:"id"`
	ProgramID        uuid.UUID  `json:"program_id"`
	Number           int        `json:"number"`
	TotalMicrocycles int        `json:"total_microcycles"`
	Status           string     `json:"status"`
	StartedAt        time.Time  `json:"started_at"`
	EndedAt          *time.Time `json:"ended_at"`
}

// MicrocycleRow is a row for the microcycles table. FatigueIndex,
// PerformanceTrend, and Recommendation are filled in at finalization.
type MicrocycleRow struct {
	ID               uuid.UUID  `json:"id"`
	MesocycleID      uuid.UUID  `json:"mesocycle_id"`
	Number           int        `json:"number"`
	Weeks            int        `json:"weeks"`
	Status           string     `json:"status"`
	FatigueIndex     *float64   `json:"fatigue_index"`
	PerformanceTrend *float64   `json:"performance_trend"`
	Recommendation   *string    `json:"recommendation"`
	StartedAt        time.Time  `json:"started_at"`
	EndedAt          *time.Time `json:"ended_at"`
}

// CompletedSessionRow is a row for the completed_sessions table. FatigueScore
// is computed from the session's set logs when the session is recorded.
type CompletedSessionRow struct {
	ID           uuid.UUID `json:"id"`
	ProgramID    uuid.UUID `json:"program_id"`
	MicrocycleID uuid.UUID `json:"microcycle_id"`
	SlotNumber   int       `json:"slot_number"`
	SessionDate  time.Time `json:"session_date"`
	FatigueScore float64   `json:"fatigue_score"`
	CompletedAt  time.Time `json:"completed_at"`
}
