package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/meltforce/liftsignal/internal/models"
	"github.com/meltforce/liftsignal/internal/periodization"
)

// *DB is the Postgres implementation of the periodization storage port.
var _ periodization.Repository = (*DB)(nil)

// CreateProgram creates a training program and returns the stored row.
func (db *DB) CreateProgram(ctx context.Context, userID int, name string, slotCount, microcycleWeeks int) (*models.ProgramRow, error) {
	row := models.ProgramRow{
		ID:              uuid.New(),
		UserID:          userID,
		Name:            name,
		SlotCount:       slotCount,
		MicrocycleWeeks: microcycleWeeks,
	}
	err := db.Pool.QueryRow(ctx,
		`INSERT INTO programs (id, user_id, name, slot_count, microcycle_weeks)
		 VALUES ($1,$2,$3,$4,$5)
		 RETURNING created_at`,
		row.ID, row.UserID, row.Name, row.SlotCount, row.MicrocycleWeeks,
	).Scan(&row.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("creating program: %w", err)
	}
	return &row, nil
}

// Program returns a program by ID.
func (db *DB) Program(ctx context.Context, programID uuid.UUID) (*models.ProgramRow, error) {
	var p models.ProgramRow
	err := db.Pool.QueryRow(ctx,
		`SELECT id, user_id, name, slot_count, microcycle_weeks, created_at
		 FROM programs WHERE id = $1`, programID,
	).Scan(&p.ID, &p.UserID, &p.Name, &p.SlotCount, &p.MicrocycleWeeks, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("program %s not found", programID)
		}
		return nil, fmt.Errorf("querying program: %w", err)
	}
	return &p, nil
}

// ProgramsByUser returns all programs owned by a user, newest first.
func (db *DB) ProgramsByUser(ctx context.Context, userID int) ([]models.ProgramRow, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, user_id, name, slot_count, microcycle_weeks, created_at
		 FROM programs WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying programs: %w", err)
	}
	defer rows.Close()

	var result []models.ProgramRow
	for rows.Next() {
		var p models.ProgramRow
		if err := rows.Scan(&p.ID, &p.UserID, &p.Name, &p.SlotCount, &p.MicrocycleWeeks, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning program: %w", err)
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

// ActiveCycle returns the program's active mesocycle and microcycle, or
// (nil, nil, nil) when no cycle has been initialized.
func (db *DB) ActiveCycle(ctx context.Context, programID uuid.UUID) (*models.MesocycleRow, *models.MicrocycleRow, error) {
	var meso models.MesocycleRow
	err := db.Pool.QueryRow(ctx,
		`SELECT id, program_id, number, total_microcycles, status, started_at, ended_at
		 FROM mesocycles
		 WHERE program_id = $1 AND status = $2
		 ORDER BY number DESC LIMIT 1`,
		programID, models.CycleActive,
	).Scan(&meso.ID, &meso.ProgramID, &meso.Number, &meso.TotalMicrocycles, &meso.Status, &meso.StartedAt, &meso.EndedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("querying active mesocycle: %w", err)
	}

	var micro models.MicrocycleRow
	err = db.Pool.QueryRow(ctx,
		`SELECT id, mesocycle_id, number, weeks, status, fatigue_index,
		 performance_trend, recommendation, started_at, ended_at
		 FROM microcycles
		 WHERE mesocycle_id = $1 AND status = $2
		 ORDER BY number DESC LIMIT 1`,
		meso.ID, models.CycleActive,
	).Scan(&micro.ID, &micro.MesocycleID, &micro.Number, &micro.Weeks, &micro.Status,
		&micro.FatigueIndex, &micro.PerformanceTrend, &micro.Recommendation,
		&micro.StartedAt, &micro.EndedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &meso, nil, nil
		}
		return nil, nil, fmt.Errorf("querying active microcycle: %w", err)
	}
	return &meso, &micro, nil
}

// InitCycle creates mesocycle #1 with microcycle #1 in one transaction.
func (db *DB) InitCycle(ctx context.Context, programID uuid.UUID, totalMicrocycles, weeks int, now time.Time) (*models.MesocycleRow, *models.MicrocycleRow, error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	meso, micro, err := insertMesocycle(ctx, tx, programID, 1, totalMicrocycles, weeks, now)
	if err != nil {
		return nil, nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("committing cycle init: %w", err)
	}
	return meso, micro, nil
}

// insertMesocycle inserts an active mesocycle plus its first microcycle
// inside an existing transaction.
func insertMesocycle(ctx context.Context, tx pgx.Tx, programID uuid.UUID, number, totalMicrocycles, weeks int, now time.Time) (*models.MesocycleRow, *models.MicrocycleRow, error) {
	meso := models.MesocycleRow{
		ID:               uuid.New(),
		ProgramID:        programID,
		Number:           number,
		TotalMicrocycles: totalMicrocycles,
		Status:           models.CycleActive,
		StartedAt:        now,
	}
	_, err := tx.Exec(ctx,
		`INSERT INTO mesocycles (id, program_id, number, total_microcycles, status, started_at)
		 VALUES ($1,$2,$3,$4,$5,$6)`,
		meso.ID, meso.ProgramID, meso.Number, meso.TotalMicrocycles, meso.Status, meso.StartedAt)
	if err != nil {
		return nil, nil, fmt.Errorf("inserting mesocycle: %w", err)
	}

	micro := models.MicrocycleRow{
		ID:          uuid.New(),
		MesocycleID: meso.ID,
		Number:      1,
		Weeks:       weeks,
		Status:      models.CycleActive,
		StartedAt:   now,
	}
	_, err = tx.Exec(ctx,
		`INSERT INTO microcycles (id, mesocycle_id, number, weeks, status, started_at)
		 VALUES ($1,$2,$3,$4,$5,$6)`,
		micro.ID, micro.MesocycleID, micro.Number, micro.Weeks, micro.Status, micro.StartedAt)
	if err != nil {
		return nil, nil, fmt.Errorf("inserting microcycle: %w", err)
	}
	return &meso, &micro, nil
}

// InsertCompletedSession records a completed session. Re-recording the same
// slot in the same microcycle is a no-op.
func (db *DB) InsertCompletedSession(ctx context.Context, row models.CompletedSessionRow) error {
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO completed_sessions (id, program_id, microcycle_id, slot_number,
		 session_date, fatigue_score, completed_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)
		 ON CONFLICT (microcycle_id, slot_number) DO NOTHING`,
		row.ID, row.ProgramID, row.MicrocycleID, row.SlotNumber,
		row.SessionDate, row.FatigueScore, row.CompletedAt)
	if err != nil {
		return fmt.Errorf("inserting completed session: %w", err)
	}
	return nil
}

// CountCompletedSessions counts distinct completed slots in a microcycle.
func (db *DB) CountCompletedSessions(ctx context.Context, microcycleID uuid.UUID) (int, error) {
	var count int
	err := db.Pool.QueryRow(ctx,
		`SELECT COUNT(DISTINCT slot_number) FROM completed_sessions WHERE microcycle_id = $1`,
		microcycleID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting completed sessions: %w", err)
	}
	return count, nil
}

// SessionFatigueScores returns fatigue scores for a microcycle's sessions.
func (db *DB) SessionFatigueScores(ctx context.Context, microcycleID uuid.UUID) ([]float64, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT fatigue_score FROM completed_sessions
		 WHERE microcycle_id = $1 ORDER BY slot_number`,
		microcycleID)
	if err != nil {
		return nil, fmt.Errorf("querying fatigue scores: %w", err)
	}
	defer rows.Close()

	var scores []float64
	for rows.Next() {
		var s float64
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scanning fatigue score: %w", err)
		}
		scores = append(scores, s)
	}
	return scores, rows.Err()
}

// PreviousMicrocycle returns the microcycle finalized immediately before the
// given one within the same program, or nil when there is none.
func (db *DB) PreviousMicrocycle(ctx context.Context, programID uuid.UUID, before *models.MicrocycleRow) (*models.MicrocycleRow, error) {
	var micro models.MicrocycleRow
	err := db.Pool.QueryRow(ctx,
		`SELECT mc.id, mc.mesocycle_id, mc.number, mc.weeks, mc.status,
		 mc.fatigue_index, mc.performance_trend, mc.recommendation,
		 mc.started_at, mc.ended_at
		 FROM microcycles mc
		 JOIN mesocycles ms ON ms.id = mc.mesocycle_id
		 WHERE ms.program_id = $1 AND mc.status = $2 AND mc.started_at < $3
		 ORDER BY mc.started_at DESC LIMIT 1`,
		programID, models.CycleCompleted, before.StartedAt,
	).Scan(&micro.ID, &micro.MesocycleID, &micro.Number, &micro.Weeks, &micro.Status,
		&micro.FatigueIndex, &micro.PerformanceTrend, &micro.Recommendation,
		&micro.StartedAt, &micro.EndedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying previous microcycle: %w", err)
	}
	return &micro, nil
}

// FinalizeMicrocycle marks a microcycle completed and stores its analysis.
// The guard on status makes concurrent finalization attempts race-safe: only
// one writer observes an affected row.
func (db *DB) FinalizeMicrocycle(ctx context.Context, microcycleID uuid.UUID, fatigueIndex, trend float64, recommendation string, now time.Time) (bool, error) {
	tag, err := db.Pool.Exec(ctx,
		`UPDATE microcycles
		 SET status = $1, fatigue_index = $2, performance_trend = $3,
		     recommendation = $4, ended_at = $5
		 WHERE id = $6 AND status = $7`,
		models.CycleCompleted, fatigueIndex, trend, recommendation, now,
		microcycleID, models.CycleActive)
	if err != nil {
		return false, fmt.Errorf("finalizing microcycle: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// CreateNextMicrocycle creates the next active microcycle in a mesocycle.
func (db *DB) CreateNextMicrocycle(ctx context.Context, mesocycleID uuid.UUID, number, weeks int, now time.Time) (*models.MicrocycleRow, error) {
	micro := models.MicrocycleRow{
		ID:          uuid.New(),
		MesocycleID: mesocycleID,
		Number:      number,
		Weeks:       weeks,
		Status:      models.CycleActive,
		StartedAt:   now,
	}
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO microcycles (id, mesocycle_id, number, weeks, status, started_at)
		 VALUES ($1,$2,$3,$4,$5,$6)`,
		micro.ID, micro.MesocycleID, micro.Number, micro.Weeks, micro.Status, micro.StartedAt)
	if err != nil {
		return nil, fmt.Errorf("inserting microcycle: %w", err)
	}
	return &micro, nil
}

// AdvanceMesocycle completes a mesocycle and creates the next one with a
// fresh microcycle #1, all in one transaction.
func (db *DB) AdvanceMesocycle(ctx context.Context, meso *models.MesocycleRow, weeks int, now time.Time) (*models.MesocycleRow, *models.MicrocycleRow, error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`UPDATE mesocycles SET status = $1, ended_at = $2 WHERE id = $3`,
		models.CycleCompleted, now, meso.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("completing mesocycle: %w", err)
	}

	next, micro, err := insertMesocycle(ctx, tx, meso.ProgramID, meso.Number+1, meso.TotalMicrocycles, weeks, now)
	if err != nil {
		return nil, nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("committing mesocycle advance: %w", err)
	}
	return next, micro, nil
}

// PeriodizationStatus reports a program's active cycle and session progress
// without going through the cycle engine.
func (db *DB) PeriodizationStatus(ctx context.Context, programID uuid.UUID) (*periodization.Status, error) {
	program, err := db.Program(ctx, programID)
	if err != nil {
		return nil, err
	}
	meso, micro, err := db.ActiveCycle(ctx, programID)
	if err != nil {
		return nil, err
	}
	st := &periodization.Status{Mesocycle: meso, Microcycle: micro, SlotCount: program.SlotCount}
	if micro != nil {
		st.Completed, err = db.CountCompletedSessions(ctx, micro.ID)
		if err != nil {
			return nil, err
		}
	}
	return st, nil
}
