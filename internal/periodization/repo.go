package periodization

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/liftsignal/internal/models"
)

// Repository is the narrow storage port the periodization service drives.
// *storage.DB implements it against Postgres; tests use an in-memory fake.
type Repository interface {
	// Program returns the program row, or an error when it does not exist.
	Program(ctx context.Context, programID uuid.UUID) (*models.ProgramRow, error)

	// ActiveCycle returns the program's active mesocycle and microcycle,
	// or (nil, nil, nil) when periodization has not been initialized.
	ActiveCycle(ctx context.Context, programID uuid.UUID) (*models.MesocycleRow, *models.MicrocycleRow, error)

	// InitCycle atomically creates mesocycle #1 and microcycle #1. Either
	// both rows exist afterwards or neither does.
	InitCycle(ctx context.Context, programID uuid.UUID, totalMicrocycles, weeks int, now time.Time) (*models.MesocycleRow, *models.MicrocycleRow, error)

	// InsertCompletedSession records one completed session in a microcycle.
	InsertCompletedSession(ctx context.Context, row models.CompletedSessionRow) error

	// CountCompletedSessions counts distinct completed session slots in a
	// microcycle.
	CountCompletedSessions(ctx context.Context, microcycleID uuid.UUID) (int, error)

	// SessionFatigueScores returns the fatigue scores of a microcycle's
	// completed sessions.
	SessionFatigueScores(ctx context.Context, microcycleID uuid.UUID) ([]float64, error)

	// MeanSimple1RM averages weight×(1+reps/30) over a user's non-warmup
	// set logs in [start, end). Zero when there are no logs.
	MeanSimple1RM(ctx context.Context, userID int, start, end time.Time) (float64, error)

	// PreviousMicrocycle returns the microcycle finalized immediately before
	// the given one within the same program, or nil when there is none.
	PreviousMicrocycle(ctx context.Context, programID uuid.UUID, before *models.MicrocycleRow) (*models.MicrocycleRow, error)

	// FinalizeMicrocycle marks a microcycle completed and stores its
	// analysis, guarded on status still being active. Returns false when
	// another writer finalized it first.
	FinalizeMicrocycle(ctx context.Context, microcycleID uuid.UUID, fatigueIndex, trend float64, recommendation string, now time.Time) (bool, error)

	// CreateNextMicrocycle creates the next active microcycle in the same
	// mesocycle.
	CreateNextMicrocycle(ctx context.Context, mesocycleID uuid.UUID, number, weeks int, now time.Time) (*models.MicrocycleRow, error)

	// AdvanceMesocycle marks the mesocycle completed and atomically creates
	// the next mesocycle with a fresh microcycle #1.
	AdvanceMesocycle(ctx context.Context, meso *models.MesocycleRow, weeks int, now time.Time) (*models.MesocycleRow, *models.MicrocycleRow, error)
}
