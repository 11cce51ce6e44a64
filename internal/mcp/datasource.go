package mcp

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/meltforce/liftsignal/internal/models"
	"github.com/meltforce/liftsignal/internal/periodization"
	"github.com/meltforce/liftsignal/internal/storage"
)

// DataSource abstracts the data layer for MCP tools. Both *storage.DB (local)
// and HTTPClient (remote via REST API) satisfy this interface.
type DataSource interface {
	QuerySetLogs(ctx context.Context, start, end time.Time, userID int, exerciseFilter string) ([]models.SetLogRow, error)
	ExerciseSessionHistory(ctx context.Context, userID int, exercise string, limit int) ([]models.SetLogRow, error)
	GetTrainingIntensity(ctx context.Context, start, end time.Time, userID int, exerciseFilter string) (*storage.TrainingIntensityResult, error)
	GetVolumeSummary(ctx context.Context, start, end time.Time, bucket string, userID int) ([]storage.VolumePeriod, error)
	MuscleTrainingStatus(ctx context.Context, userID int) ([]storage.MuscleTraining, error)
	GetDataStats(ctx context.Context, userID int) (*storage.DataStats, error)
	GetExerciseCatalog(ctx context.Context) ([]storage.CatalogEntry, error)
	ProgramsByUser(ctx context.Context, userID int) ([]models.ProgramRow, error)
	PeriodizationStatus(ctx context.Context, programID uuid.UUID) (*periodization.Status, error)
}

// Compile-time check: *storage.DB satisfies DataSource.
var _ DataSource = (*storage.DB)(nil)
