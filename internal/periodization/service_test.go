package periodization

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/liftsignal/internal/models"
)

// fakeRepo is an in-memory Repository for service tests.
type fakeRepo struct {
	program  models.ProgramRow
	mesos    []*models.MesocycleRow
	micros   []*models.MicrocycleRow
	sessions []models.CompletedSessionRow

	// meanFn lets a test control the microcycle e1RM aggregates.
	meanFn func(start, end time.Time) float64

	// forceFinalizeLost simulates a concurrent writer having finalized the
	// microcycle first.
	forceFinalizeLost bool
}

func (f *fakeRepo) Program(_ context.Context, id uuid.UUID) (*models.ProgramRow, error) {
	if id != f.program.ID {
		return nil, fmt.Errorf("program %s not found", id)
	}
	p := f.program
	return &p, nil
}

func (f *fakeRepo) ActiveCycle(_ context.Context, programID uuid.UUID) (*models.MesocycleRow, *models.MicrocycleRow, error) {
	var meso *models.MesocycleRow
	for _, m := range f.mesos {
		if m.ProgramID == programID && m.Status == models.CycleActive {
			meso = m
		}
	}
	if meso == nil {
		return nil, nil, nil
	}
	for _, mc := range f.micros {
		if mc.MesocycleID == meso.ID && mc.Status == models.CycleActive {
			return meso, mc, nil
		}
	}
	return meso, nil, nil
}

func (f *fakeRepo) InitCycle(_ context.Context, programID uuid.UUID, total, weeks int, now time.Time) (*models.MesocycleRow, *models.MicrocycleRow, error) {
	meso := &models.MesocycleRow{
		ID: uuid.New(), ProgramID: programID, Number: 1,
		TotalMicrocycles: total, Status: models.CycleActive, StartedAt: now,
	}
	micro := &models.MicrocycleRow{
		ID: uuid.New(), MesocycleID: meso.ID, Number: 1,
		Weeks: weeks, Status: models.CycleActive, StartedAt: now,
	}
	f.mesos = append(f.mesos, meso)
	f.micros = append(f.micros, micro)
	return meso, micro, nil
}

func (f *fakeRepo) InsertCompletedSession(_ context.Context, row models.CompletedSessionRow) error {
	f.sessions = append(f.sessions, row)
	return nil
}

func (f *fakeRepo) CountCompletedSessions(_ context.Context, microID uuid.UUID) (int, error) {
	slots := map[int]bool{}
	for _, s := range f.sessions {
		if s.MicrocycleID == microID {
			slots[s.SlotNumber] = true
		}
	}
	return len(slots), nil
}

func (f *fakeRepo) SessionFatigueScores(_ context.Context, microID uuid.UUID) ([]float64, error) {
	var scores []float64
	for _, s := range f.sessions {
		if s.MicrocycleID == microID {
			scores = append(scores, s.FatigueScore)
		}
	}
	return scores, nil
}

func (f *fakeRepo) MeanSimple1RM(_ context.Context, _ int, start, end time.Time) (float64, error) {
	if f.meanFn == nil {
		return 0, nil
	}
	return f.meanFn(start, end), nil
}

func (f *fakeRepo) PreviousMicrocycle(_ context.Context, _ uuid.UUID, before *models.MicrocycleRow) (*models.MicrocycleRow, error) {
	var prev *models.MicrocycleRow
	for _, mc := range f.micros {
		if mc.ID == before.ID || mc.Status != models.CycleCompleted || mc.EndedAt == nil {
			continue
		}
		if prev == nil || mc.EndedAt.After(*prev.EndedAt) {
			prev = mc
		}
	}
	return prev, nil
}

func (f *fakeRepo) FinalizeMicrocycle(_ context.Context, microID uuid.UUID, fi, trend float64, rec string, now time.Time) (bool, error) {
	if f.forceFinalizeLost {
		return false, nil
	}
	for _, mc := range f.micros {
		if mc.ID == microID {
			if mc.Status != models.CycleActive {
				return false, nil
			}
			mc.Status = models.CycleCompleted
			mc.FatigueIndex = &fi
			mc.PerformanceTrend = &trend
			mc.Recommendation = &rec
			mc.EndedAt = &now
			return true, nil
		}
	}
	return false, fmt.Errorf("microcycle %s not found", microID)
}

func (f *fakeRepo) CreateNextMicrocycle(_ context.Context, mesoID uuid.UUID, number, weeks int, now time.Time) (*models.MicrocycleRow, error) {
	micro := &models.MicrocycleRow{
		ID: uuid.New(), MesocycleID: mesoID, Number: number,
		Weeks: weeks, Status: models.CycleActive, StartedAt: now,
	}
	f.micros = append(f.micros, micro)
	return micro, nil
}

func (f *fakeRepo) AdvanceMesocycle(_ context.Context, meso *models.MesocycleRow, weeks int, now time.Time) (*models.MesocycleRow, *models.MicrocycleRow, error) {
	for _, m := range f.mesos {
		if m.ID == meso.ID {
			m.Status = models.CycleCompleted
			m.EndedAt = &now
		}
	}
	next := &models.MesocycleRow{
		ID: uuid.New(), ProgramID: meso.ProgramID, Number: meso.Number + 1,
		TotalMicrocycles: meso.TotalMicrocycles, Status: models.CycleActive, StartedAt: now,
	}
	micro := &models.MicrocycleRow{
		ID: uuid.New(), MesocycleID: next.ID, Number: 1,
		Weeks: weeks, Status: models.CycleActive, StartedAt: now,
	}
	f.mesos = append(f.mesos, next)
	f.micros = append(f.micros, micro)
	return next, micro, nil
}

func newTestService(t *testing.T) (*Service, *fakeRepo) {
	t.Helper()
	repo := &fakeRepo{
		program: models.ProgramRow{
			ID: uuid.New(), UserID: 1, Name: "Push Pull Legs",
			SlotCount: 3, MicrocycleWeeks: 1,
		},
	}
	clock := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
	svc := NewService(repo, slog.Default(), func() time.Time { return clock })
	return svc, repo
}

func workingSets() []SetSummary {
	return []SetSummary{
		{WeightKg: 100, Reps: 8, RIR: fptr(2)},
		{WeightKg: 100, Reps: 8, RIR: fptr(1)},
	}
}

// TestInitCreatesCycle verifies that initialization creates mesocycle #1 with
// an active microcycle #1.
func TestInitCreatesCycle(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	meso, micro, err := svc.Init(ctx, repo.program.ID, 4, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if meso.Number != 1 || meso.TotalMicrocycles != 4 || meso.Status != models.CycleActive {
		t.Errorf("mesocycle = %+v, want active #1 with 4 microcycles", meso)
	}
	if micro.Number != 1 || micro.Status != models.CycleActive {
		t.Errorf("microcycle = %+v, want active #1", micro)
	}
}

// TestInitTwiceFails verifies that a second initialization is rejected while
// a cycle is active.
func TestInitTwiceFails(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	if _, _, err := svc.Init(ctx, repo.program.ID, 4, 1); err != nil {
		t.Fatalf("first init: %v", err)
	}
	if _, _, err := svc.Init(ctx, repo.program.ID, 4, 1); !errors.Is(err, ErrAlreadyInitialized) {
		t.Errorf("second init error = %v, want ErrAlreadyInitialized", err)
	}
}

// TestInitValidation verifies that non-positive cycle parameters are rejected.
func TestInitValidation(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	if _, _, err := svc.Init(ctx, repo.program.ID, 0, 1); err == nil {
		t.Error("expected error for zero microcycles")
	}
	if _, _, err := svc.Init(ctx, repo.program.ID, 4, 0); err == nil {
		t.Error("expected error for zero weeks")
	}
}

// TestRecordSessionWithoutCycle verifies ErrNoActiveCycle for uninitialized
// programs.
func TestRecordSessionWithoutCycle(t *testing.T) {
	svc, repo := newTestService(t)

	_, err := svc.RecordSession(context.Background(), repo.program.ID, 1, time.Now(), workingSets())
	if !errors.Is(err, ErrNoActiveCycle) {
		t.Errorf("error = %v, want ErrNoActiveCycle", err)
	}
}

// TestRecordSessionBelowQuota verifies that recording fewer sessions than the
// slot count does not finalize the microcycle.
func TestRecordSessionBelowQuota(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	if _, _, err := svc.Init(ctx, repo.program.ID, 4, 1); err != nil {
		t.Fatal(err)
	}

	for slot := 1; slot <= 2; slot++ {
		res, err := svc.RecordSession(ctx, repo.program.ID, slot, time.Now(), workingSets())
		if err != nil {
			t.Fatalf("slot %d: %v", slot, err)
		}
		if res.Finalized {
			t.Errorf("slot %d: finalized early (%d/%d sessions)", slot, res.Completed, res.SlotCount)
		}
	}
}

// TestRecordSessionCompletesMicrocycle verifies that completing the last slot
// finalizes the microcycle and creates exactly one successor.
func TestRecordSessionCompletesMicrocycle(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	if _, _, err := svc.Init(ctx, repo.program.ID, 4, 1); err != nil {
		t.Fatal(err)
	}

	var res *SessionResult
	var err error
	for slot := 1; slot <= 3; slot++ {
		res, err = svc.RecordSession(ctx, repo.program.ID, slot, time.Now(), workingSets())
		if err != nil {
			t.Fatalf("slot %d: %v", slot, err)
		}
	}

	if !res.Finalized {
		t.Fatal("last session did not finalize the microcycle")
	}
	if res.NextMicrocycle == nil || res.NextMicrocycle.Number != 2 {
		t.Errorf("next microcycle = %+v, want #2", res.NextMicrocycle)
	}
	if res.NextMesocycle != nil {
		t.Errorf("unexpected new mesocycle: %+v", res.NextMesocycle)
	}

	// Exactly one active microcycle remains.
	active := 0
	for _, mc := range repo.micros {
		if mc.Status == models.CycleActive {
			active++
		}
	}
	if active != 1 {
		t.Errorf("active microcycles = %d, want 1", active)
	}
}

// TestLastMicrocycleAdvancesMesocycle verifies that exhausting the
// mesocycle's microcycle quota completes it and starts mesocycle #2 with a
// fresh microcycle #1.
func TestLastMicrocycleAdvancesMesocycle(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	// One microcycle per mesocycle, one slot per microcycle.
	repo.program.SlotCount = 1
	if _, _, err := svc.Init(ctx, repo.program.ID, 1, 1); err != nil {
		t.Fatal(err)
	}

	res, err := svc.RecordSession(ctx, repo.program.ID, 1, time.Now(), workingSets())
	if err != nil {
		t.Fatal(err)
	}
	if !res.Finalized {
		t.Fatal("microcycle not finalized")
	}
	if res.NextMesocycle == nil || res.NextMesocycle.Number != 2 {
		t.Errorf("next mesocycle = %+v, want #2", res.NextMesocycle)
	}
	if res.NextMicrocycle == nil || res.NextMicrocycle.Number != 1 {
		t.Errorf("next microcycle = %+v, want fresh #1", res.NextMicrocycle)
	}
}

// TestFinalizeRaceGuard verifies that losing the finalize status check does
// not advance the cycle a second time.
func TestFinalizeRaceGuard(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	repo.program.SlotCount = 1
	if _, _, err := svc.Init(ctx, repo.program.ID, 4, 1); err != nil {
		t.Fatal(err)
	}

	repo.forceFinalizeLost = true
	res, err := svc.RecordSession(ctx, repo.program.ID, 1, time.Now(), workingSets())
	if err != nil {
		t.Fatal(err)
	}
	if res.Finalized {
		t.Error("reported finalized after losing the status check")
	}
	if len(repo.micros) != 1 {
		t.Errorf("microcycles = %d, want 1 (no advancement)", len(repo.micros))
	}
}

// TestFinalizationAnalysis verifies the fatigue index, performance trend, and
// recommendation reach the finalized microcycle.
func TestFinalizationAnalysis(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	repo.program.SlotCount = 1
	if _, _, err := svc.Init(ctx, repo.program.ID, 4, 1); err != nil {
		t.Fatal(err)
	}

	// Low volume close to failure: score = 100 × 1.3 = 130 > 85, and with no
	// previous microcycle the trend is 0 — the deload rule applies.
	sets := []SetSummary{{WeightKg: 10, Reps: 10, RIR: fptr(0)}}
	res, err := svc.RecordSession(ctx, repo.program.ID, 1, time.Now(), sets)
	if err != nil {
		t.Fatal(err)
	}

	if !res.Finalized {
		t.Fatal("not finalized")
	}
	if res.FatigueIndex != 130 {
		t.Errorf("fatigue index = %.2f, want 130", res.FatigueIndex)
	}
	if res.PerformanceTrend != 0 {
		t.Errorf("trend = %.2f, want 0 (no previous microcycle)", res.PerformanceTrend)
	}
	if res.Recommendation != models.RecommendDeload {
		t.Errorf("recommendation = %q, want deload", res.Recommendation)
	}

	// The stored row carries the same analysis.
	for _, mc := range repo.micros {
		if mc.Status == models.CycleCompleted {
			if mc.FatigueIndex == nil || *mc.FatigueIndex != 130 {
				t.Errorf("stored fatigue index = %v, want 130", mc.FatigueIndex)
			}
			if mc.Recommendation == nil || *mc.Recommendation != models.RecommendDeload {
				t.Errorf("stored recommendation = %v, want deload", mc.Recommendation)
			}
		}
	}
}

// TestPerformanceTrendUsesPreviousMicrocycle verifies that the second
// microcycle's finalization compares aggregates against the first.
func TestPerformanceTrendUsesPreviousMicrocycle(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	repo.program.SlotCount = 1
	if _, _, err := svc.Init(ctx, repo.program.ID, 4, 1); err != nil {
		t.Fatal(err)
	}

	// First microcycle aggregate 100, second 110 → +10% trend.
	calls := 0
	repo.meanFn = func(start, end time.Time) float64 {
		calls++
		if calls == 1 {
			return 100 // first finalization, current microcycle
		}
		if calls == 2 {
			return 110 // second finalization, current microcycle
		}
		return 100 // second finalization, previous microcycle
	}

	if _, err := svc.RecordSession(ctx, repo.program.ID, 1, time.Now(), workingSets()); err != nil {
		t.Fatal(err)
	}
	res, err := svc.RecordSession(ctx, repo.program.ID, 1, time.Now(), workingSets())
	if err != nil {
		t.Fatal(err)
	}

	if !res.Finalized {
		t.Fatal("second microcycle not finalized")
	}
	if res.PerformanceTrend != 10 {
		t.Errorf("trend = %.2f, want 10", res.PerformanceTrend)
	}
}

// TestStatus verifies progress reporting before and after initialization.
func TestStatus(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	st, err := svc.Status(ctx, repo.program.ID)
	if err != nil {
		t.Fatal(err)
	}
	if st.Mesocycle != nil || st.Microcycle != nil {
		t.Errorf("uninitialized status = %+v, want nil cycles", st)
	}

	if _, _, err := svc.Init(ctx, repo.program.ID, 4, 1); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.RecordSession(ctx, repo.program.ID, 1, time.Now(), workingSets()); err != nil {
		t.Fatal(err)
	}

	st, err = svc.Status(ctx, repo.program.ID)
	if err != nil {
		t.Fatal(err)
	}
	if st.Microcycle == nil || st.Microcycle.Number != 1 {
		t.Fatalf("microcycle = %+v, want #1", st.Microcycle)
	}
	if st.Completed != 1 || st.SlotCount != 3 {
		t.Errorf("progress = %d/%d, want 1/3", st.Completed, st.SlotCount)
	}
}
