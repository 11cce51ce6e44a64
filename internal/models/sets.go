package models

import "time"

// ParsedSession represents one parsed workout session from a CSV export.
type ParsedSession struct {
	Name      string
	Date      time.Time
	Duration  string
	Exercises []ParsedExercise
}

// ParsedExercise represents a single exercise within a session.
type ParsedExercise struct {
	Number     int
	Name       string
	Equipment  string
	TargetReps int
	Sets       []ParsedSet
}

// ParsedSet represents a single set (working or warmup).
type ParsedSet struct {
	Number           int
	WeightKg         float64
	IsBodyweightPlus bool
	Reps             int
	RIR              *float64
	IsWarmup         bool
}

// SetLogRow is a row for the set_logs table.
type SetLogRow struct {
	UserID           int       `json:"user_id"`
	SessionName      string    `json:"session_name"`
	SessionDate      time.Time `json:"session_date"`
	SessionDuration  string    `json:"session_duration"`
	ExerciseNumber   int       `json:"exercise_number"`
	ExerciseName     string    `json:"exercise_name"`
	Equipment        string    `json:"equipment"`
	TargetReps       int       `json:"target_reps"`
	IsWarmup         bool      `json:"is_warmup"`
	SetNumber        int       `json:"set_number"`
	WeightKg         float64   `json:"weight_kg"`
	IsBodyweightPlus bool      `json:"is_bodyweight_plus"`
	Reps             int       `json:"reps"`
	RIR              *float64  `json:"rir"`
}
