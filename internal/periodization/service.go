package periodization

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/liftsignal/internal/models"
)

var (
	// ErrNoActiveCycle is returned when a session is recorded for a program
	// that has no initialized periodization.
	ErrNoActiveCycle = errors.New("no active microcycle for program")

	// ErrAlreadyInitialized is returned when Init is called for a program
	// that already has an active cycle.
	ErrAlreadyInitialized = errors.New("periodization already initialized")
)

// Service drives the periodization state machine over a Repository.
type Service struct {
	repo Repository
	log  *slog.Logger
	now  func() time.Time
}

// NewService creates a periodization service. nowFn may be nil, in which
// case time.Now is used; tests inject a fixed clock.
func NewService(repo Repository, log *slog.Logger, nowFn func() time.Time) *Service {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &Service{repo: repo, log: log, now: nowFn}
}

// Init creates mesocycle #1 and microcycle #1 for a program. The two inserts
// are atomic: a failure leaves no partial state behind.
func (s *Service) Init(ctx context.Context, programID uuid.UUID, totalMicrocycles, weeks int) (*models.MesocycleRow, *models.MicrocycleRow, error) {
	if totalMicrocycles <= 0 {
		return nil, nil, fmt.Errorf("total microcycles must be positive, got %d", totalMicrocycles)
	}
	if weeks <= 0 {
		return nil, nil, fmt.Errorf("microcycle weeks must be positive, got %d", weeks)
	}

	if _, err := s.repo.Program(ctx, programID); err != nil {
		return nil, nil, fmt.Errorf("loading program: %w", err)
	}

	meso, micro, err := s.repo.ActiveCycle(ctx, programID)
	if err != nil {
		return nil, nil, fmt.Errorf("checking active cycle: %w", err)
	}
	if meso != nil || micro != nil {
		return nil, nil, ErrAlreadyInitialized
	}

	meso, micro, err = s.repo.InitCycle(ctx, programID, totalMicrocycles, weeks, s.now())
	if err != nil {
		return nil, nil, fmt.Errorf("initializing cycle: %w", err)
	}

	s.log.Info("periodization initialized",
		"program", programID, "total_microcycles", totalMicrocycles, "weeks", weeks)
	return meso, micro, nil
}

// SessionResult reports what recording a completed session did.
type SessionResult struct {
	FatigueScore float64 `json:"fatigue_score"`
	Completed    int     `json:"completed_sessions"`
	SlotCount    int     `json:"slot_count"`

	// Set when the session completed the microcycle and triggered
	// finalization.
	Finalized        bool                  `json:"finalized"`
	FatigueIndex     float64               `json:"fatigue_index,omitempty"`
	PerformanceTrend float64               `json:"performance_trend,omitempty"`
	Recommendation   string                `json:"recommendation,omitempty"`
	NextMicrocycle   *models.MicrocycleRow `json:"next_microcycle,omitempty"`
	NextMesocycle    *models.MesocycleRow  `json:"next_mesocycle,omitempty"`
}

// RecordSession records one completed session in the program's active
// microcycle, computes its fatigue score from the session's set logs, and
// synchronously finalizes-and-advances the microcycle when the last defined
// session slot has been completed.
func (s *Service) RecordSession(ctx context.Context, programID uuid.UUID, slotNumber int, sessionDate time.Time, sets []SetSummary) (*SessionResult, error) {
	program, err := s.repo.Program(ctx, programID)
	if err != nil {
		return nil, fmt.Errorf("loading program: %w", err)
	}

	meso, micro, err := s.repo.ActiveCycle(ctx, programID)
	if err != nil {
		return nil, fmt.Errorf("loading active cycle: %w", err)
	}
	if micro == nil {
		return nil, ErrNoActiveCycle
	}

	score := SessionFatigueScore(sets)
	row := models.CompletedSessionRow{
		ID:           uuid.New(),
		ProgramID:    programID,
		MicrocycleID: micro.ID,
		SlotNumber:   slotNumber,
		SessionDate:  sessionDate,
		FatigueScore: score,
		CompletedAt:  s.now(),
	}
	if err := s.repo.InsertCompletedSession(ctx, row); err != nil {
		return nil, fmt.Errorf("recording session: %w", err)
	}

	count, err := s.repo.CountCompletedSessions(ctx, micro.ID)
	if err != nil {
		return nil, fmt.Errorf("counting sessions: %w", err)
	}

	result := &SessionResult{
		FatigueScore: score,
		Completed:    count,
		SlotCount:    program.SlotCount,
	}

	if program.SlotCount <= 0 || count < program.SlotCount {
		return result, nil
	}

	if err := s.finalizeAndAdvance(ctx, program, meso, micro, result); err != nil {
		return nil, err
	}
	return result, nil
}

// finalizeAndAdvance computes the microcycle analysis, closes it, and creates
// the next microcycle (or mesocycle). The FinalizeMicrocycle status guard
// makes concurrent last-session completions advance the cycle exactly once.
func (s *Service) finalizeAndAdvance(ctx context.Context, program *models.ProgramRow, meso *models.MesocycleRow, micro *models.MicrocycleRow, result *SessionResult) error {
	now := s.now()

	scores, err := s.repo.SessionFatigueScores(ctx, micro.ID)
	if err != nil {
		return fmt.Errorf("loading fatigue scores: %w", err)
	}
	fatigueIndex := FatigueIndex(scores)

	currentAgg, err := s.repo.MeanSimple1RM(ctx, program.UserID, micro.StartedAt, now)
	if err != nil {
		return fmt.Errorf("aggregating current microcycle: %w", err)
	}

	var trend float64
	prev, err := s.repo.PreviousMicrocycle(ctx, program.ID, micro)
	if err != nil {
		return fmt.Errorf("loading previous microcycle: %w", err)
	}
	if prev != nil && prev.EndedAt != nil {
		prevAgg, err := s.repo.MeanSimple1RM(ctx, program.UserID, prev.StartedAt, *prev.EndedAt)
		if err != nil {
			return fmt.Errorf("aggregating previous microcycle: %w", err)
		}
		trend = PerformanceTrend(currentAgg, prevAgg)
	}

	recommendation := Recommend(fatigueIndex, trend)

	won, err := s.repo.FinalizeMicrocycle(ctx, micro.ID, fatigueIndex, trend, recommendation, now)
	if err != nil {
		return fmt.Errorf("finalizing microcycle: %w", err)
	}
	if !won {
		// Another completion already finalized this microcycle; do not
		// advance a second time.
		s.log.Warn("microcycle already finalized", "microcycle", micro.ID)
		return nil
	}

	result.Finalized = true
	result.FatigueIndex = fatigueIndex
	result.PerformanceTrend = trend
	result.Recommendation = recommendation

	if micro.Number < meso.TotalMicrocycles {
		next, err := s.repo.CreateNextMicrocycle(ctx, meso.ID, micro.Number+1, micro.Weeks, now)
		if err != nil {
			return fmt.Errorf("creating next microcycle: %w", err)
		}
		result.NextMicrocycle = next
		s.log.Info("microcycle advanced",
			"program", program.ID, "mesocycle", meso.Number, "microcycle", next.Number,
			"recommendation", recommendation)
		return nil
	}

	nextMeso, nextMicro, err := s.repo.AdvanceMesocycle(ctx, meso, micro.Weeks, now)
	if err != nil {
		return fmt.Errorf("advancing mesocycle: %w", err)
	}
	result.NextMesocycle = nextMeso
	result.NextMicrocycle = nextMicro
	s.log.Info("mesocycle completed",
		"program", program.ID, "mesocycle", meso.Number, "next_mesocycle", nextMeso.Number,
		"recommendation", recommendation)
	return nil
}

// Status is the current periodization state of a program.
type Status struct {
	Mesocycle  *models.MesocycleRow  `json:"mesocycle"`
	Microcycle *models.MicrocycleRow `json:"microcycle"`
	Completed  int                   `json:"completed_sessions"`
	SlotCount  int                   `json:"slot_count"`
}

// Status reports the program's active cycle and session progress. A program
// with no initialized periodization yields a Status with nil cycles.
func (s *Service) Status(ctx context.Context, programID uuid.UUID) (*Status, error) {
	program, err := s.repo.Program(ctx, programID)
	if err != nil {
		return nil, fmt.Errorf("loading program: %w", err)
	}

	meso, micro, err := s.repo.ActiveCycle(ctx, programID)
	if err != nil {
		return nil, fmt.Errorf("loading active cycle: %w", err)
	}

	st := &Status{Mesocycle: meso, Microcycle: micro, SlotCount: program.SlotCount}
	if micro != nil {
		st.Completed, err = s.repo.CountCompletedSessions(ctx, micro.ID)
		if err != nil {
			return nil, fmt.Errorf("counting sessions: %w", err)
		}
	}
	return st, nil
}
