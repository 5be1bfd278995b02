package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"algotimer/internal/modules/session/domain"
	"algotimer/internal/modules/session/service"
	apperrors "algotimer/internal/platform/errors"
	"algotimer/internal/platform/eventloop"
	"algotimer/internal/platform/logging"
)

var defaultBudgets = domain.Budgets{Read: 300, Think: 90, Code: 600, Search: 600}

type fixedIDs struct{}

func (fixedIDs) New() string { return "session-1" }

type fakeRecorder struct {
	appended []domain.Session
	retries  int
	outcomes []service.AppendResult
}

func (r *fakeRecorder) next() service.AppendResult {
	if len(r.outcomes) == 0 {
		return service.AppendResult{}
	}
	out := r.outcomes[0]
	r.outcomes = r.outcomes[1:]
	return out
}

func (r *fakeRecorder) Append(_ context.Context, session domain.Session) service.AppendResult {
	r.appended = append(r.appended, session)
	return r.next()
}

func (r *fakeRecorder) Retry(_ context.Context, _ domain.Session, _ service.AppendResult) service.AppendResult {
	r.retries++
	return r.next()
}

func newMachine(t *testing.T, budgets domain.Budgets) (*service.Machine, *eventloop.Manual, *fakeRecorder) {
	t.Helper()
	loop := eventloop.NewManual(epoch)
	recorder := &fakeRecorder{}
	log := logging.Component(logging.Discard(), "session")
	return service.NewMachine(loop, loop, fixedIDs{}, recorder, budgets, log), loop, recorder
}

func stopAfter(t *testing.T, m *service.Machine, loop *eventloop.Manual, d time.Duration) {
	t.Helper()
	loop.Advance(d)
	if err := m.StopStage(context.Background()); err != nil {
		t.Fatalf("stop stage: %v", err)
	}
}

func submit(t *testing.T, m *service.Machine, text string, source domain.Source) {
	t.Helper()
	if err := m.SubmitInput(context.Background(), text, source); err != nil {
		t.Fatalf("submit input: %v", err)
	}
}

func TestMachineTwoSumScenario(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m, loop, recorder := newMachine(t, defaultBudgets)

	if err := m.StartSession(ctx, "Two Sum"); err != nil {
		t.Fatalf("start: %v", err)
	}
	snap := m.Snapshot()
	if snap.Phase != domain.PhaseRunning || snap.Stage.ID != domain.StageReading || snap.Remaining != 300 {
		t.Fatalf("unexpected snapshot after start: %+v", snap)
	}

	loop.Advance(300 * time.Second)
	snap = m.Snapshot()
	if snap.Phase != domain.PhaseRunning || snap.Stage.ID != domain.StageThinking || snap.Remaining != 90 {
		t.Fatalf("reading should expire straight into thinking: %+v", snap)
	}

	stopAfter(t, m, loop, 40*time.Second)
	if m.Snapshot().Phase != domain.PhaseAwaitingInput {
		t.Fatalf("thinking should wait for input")
	}
	submit(t, m, "binary search", domain.SourceSelf)

	stopAfter(t, m, loop, 120*time.Second)
	submit(t, m, "def twoSum...", domain.SourceOther)

	stopAfter(t, m, loop, 60*time.Second)
	submit(t, m, "saw hashmap trick", domain.SourceOther)

	snap = m.Snapshot()
	if snap.Phase != domain.PhaseFinished || snap.PersistErr != nil {
		t.Fatalf("expected clean finish, got %+v", snap)
	}
	if len(recorder.appended) != 1 {
		t.Fatalf("expected exactly one append, got %d", len(recorder.appended))
	}
	session := recorder.appended[0]
	if session.ID != "session-1" || session.Problem != "Two Sum" || !session.StartedAt.Equal(epoch) {
		t.Fatalf("unexpected session header: %+v", session)
	}
	if err := session.Validate(); err != nil || !session.Complete() {
		t.Fatalf("session should be complete and valid: %v", err)
	}
	if session.TotalSeconds() != 520 {
		t.Fatalf("expected 520s total, got %d", session.TotalSeconds())
	}
	want := []int{300, 40, 120, 60}
	for i, r := range session.Results {
		if r.Seconds != want[i] {
			t.Fatalf("stage %s: expected %ds, got %d", r.Stage, want[i], r.Seconds)
		}
	}
	if session.Results[0].Text != nil {
		t.Fatalf("reading captures no text")
	}
	if session.SourceOf(domain.StageThinking) != domain.SourceSelf || session.SourceOf(domain.StageCoding) != domain.SourceOther {
		t.Fatalf("unexpected sources: %+v", session.Results)
	}
	if session.Results[3].Source != domain.SourceSelf || session.Results[3].TextOrEmpty() != "saw hashmap trick" {
		t.Fatalf("reviewing keeps notes and ignores the toggle: %+v", session.Results[3])
	}

	loop.Advance(time.Hour)
	if len(recorder.appended) != 1 || m.Snapshot().Phase != domain.PhaseFinished {
		t.Fatalf("nothing may fire after finishing")
	}
}

func TestMachineRejectsBlankTitle(t *testing.T) {
	t.Parallel()
	m, loop, _ := newMachine(t, defaultBudgets)
	for _, title := range []string{"", "   "} {
		if err := m.StartSession(context.Background(), title); !errors.Is(err, apperrors.ErrValidation) {
			t.Fatalf("title %q: expected validation error, got %v", title, err)
		}
	}
	if m.Snapshot().Phase != domain.PhaseIdle || loop.Pending() != 0 {
		t.Fatalf("machine must stay idle with no clock running")
	}
}

func TestMachineRejectsOutOfPhaseCalls(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m, loop, _ := newMachine(t, defaultBudgets)

	if err := m.SubmitInput(ctx, "x", domain.SourceSelf); !errors.Is(err, apperrors.ErrInvalidTransition) {
		t.Fatalf("submit while idle: %v", err)
	}
	if err := m.StopStage(ctx); !errors.Is(err, apperrors.ErrInvalidTransition) {
		t.Fatalf("stop while idle: %v", err)
	}
	if err := m.Restart(ctx); !errors.Is(err, apperrors.ErrInvalidTransition) {
		t.Fatalf("restart while idle: %v", err)
	}
	if err := m.RetryPersist(ctx); !errors.Is(err, apperrors.ErrInvalidTransition) {
		t.Fatalf("retry while idle: %v", err)
	}

	if err := m.StartSession(ctx, "Two Sum"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := m.StartSession(ctx, "Other"); !errors.Is(err, apperrors.ErrInvalidTransition) {
		t.Fatalf("start while running: %v", err)
	}
	loop.Advance(10 * time.Second)
	before := m.Snapshot()
	if err := m.SubmitInput(ctx, "x", domain.SourceSelf); !errors.Is(err, apperrors.ErrInvalidTransition) {
		t.Fatalf("submit while running: %v", err)
	}
	after := m.Snapshot()
	if after.Phase != before.Phase || after.Stage.ID != before.Stage.ID || len(after.Session.Results) != len(before.Session.Results) || after.Remaining != before.Remaining {
		t.Fatalf("rejected submit changed state: %+v -> %+v", before, after)
	}
}

func TestMachineInvalidSourceKeepsAwaitingInput(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m, loop, _ := newMachine(t, defaultBudgets)
	if err := m.StartSession(ctx, "Two Sum"); err != nil {
		t.Fatalf("start: %v", err)
	}
	stopAfter(t, m, loop, 5*time.Second)
	stopAfter(t, m, loop, 5*time.Second)
	if err := m.SubmitInput(ctx, "idea", domain.Source("team")); !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	snap := m.Snapshot()
	if snap.Phase != domain.PhaseAwaitingInput || snap.Stage.ID != domain.StageThinking || len(snap.Session.Results) != 1 {
		t.Fatalf("invalid source must not change state: %+v", snap)
	}
	submit(t, m, "", domain.SourceSelf)
	snap = m.Snapshot()
	if snap.Stage.ID != domain.StageCoding || len(snap.Session.Results) != 2 {
		t.Fatalf("empty text should be accepted: %+v", snap)
	}
	if r := snap.Session.Results[1]; r.Text == nil || *r.Text != "" {
		t.Fatalf("empty text should be stored as empty, got %+v", r)
	}
}

func TestMachineExpiredInputStageStillWaitsForText(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m, loop, _ := newMachine(t, defaultBudgets)
	if err := m.StartSession(ctx, "Two Sum"); err != nil {
		t.Fatalf("start: %v", err)
	}
	loop.Advance(300 * time.Second)
	loop.Advance(2 * time.Minute)
	snap := m.Snapshot()
	if snap.Phase != domain.PhaseAwaitingInput || snap.Stage.ID != domain.StageThinking {
		t.Fatalf("expected thinking awaiting input, got %+v", snap)
	}
	if got := snap.Session.Results; len(got) != 1 {
		t.Fatalf("pending result is not committed before submit: %+v", got)
	}
	submit(t, m, "idea", domain.SourceOther)
	if r, _ := m.Snapshot().Session.Result(domain.StageThinking); r.Seconds != 90 {
		t.Fatalf("expiry records the budget, got %d", r.Seconds)
	}
}

func TestMachineStopAtZeroRecordsZero(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m, _, _ := newMachine(t, defaultBudgets)
	if err := m.StartSession(ctx, "Two Sum"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := m.StopStage(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}
	r, ok := m.Snapshot().Session.Result(domain.StageReading)
	if !ok || r.Seconds != 0 {
		t.Fatalf("expected zero-second reading, got %+v", r)
	}
}

func TestMachineStaleClockCannotReachNextStage(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m, loop, _ := newMachine(t, domain.Budgets{Read: 5, Think: 5, Code: 5, Search: 5})
	if err := m.StartSession(ctx, "Two Sum"); err != nil {
		t.Fatalf("start: %v", err)
	}
	stopAfter(t, m, loop, 2500*time.Millisecond)
	// Thinking's clock started at 2.5s; reading's queued tick is still due at 3s.
	loop.Advance(2 * time.Second)
	snap := m.Snapshot()
	if snap.Stage.ID != domain.StageThinking || snap.Remaining != 3 {
		t.Fatalf("expected thinking with 3s left, got %+v", snap)
	}
	loop.Advance(3 * time.Second)
	snap = m.Snapshot()
	if snap.Phase != domain.PhaseAwaitingInput || len(snap.Session.Results) != 1 {
		t.Fatalf("thinking should expire exactly once: %+v", snap)
	}
}

func TestMachinePersistFailureKeepsSessionForRetry(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m, loop, recorder := newMachine(t, domain.Budgets{Read: 1, Think: 1, Code: 1, Search: 1})
	corrupt := fmt.Errorf("append session log: %w", apperrors.ErrLogCorruption)
	recorder.outcomes = []service.AppendResult{
		{LogErr: corrupt},
		{LogErr: corrupt},
		{},
	}
	if err := m.StartSession(ctx, "Two Sum"); err != nil {
		t.Fatalf("start: %v", err)
	}
	loop.Advance(time.Second)
	for i := 0; i < 3; i++ {
		loop.Advance(time.Second)
		submit(t, m, "text", domain.SourceSelf)
	}
	snap := m.Snapshot()
	if snap.Phase != domain.PhaseFinished || !errors.Is(snap.PersistErr, apperrors.ErrLogCorruption) {
		t.Fatalf("expected finished with corruption error, got %+v", snap)
	}
	if !snap.Session.Complete() || snap.Session.TotalSeconds() != 4 {
		t.Fatalf("finished session must stay in memory: %+v", snap.Session)
	}

	if err := m.RetryPersist(ctx); !errors.Is(err, apperrors.ErrLogCorruption) {
		t.Fatalf("first retry should still fail, got %v", err)
	}
	if err := m.RetryPersist(ctx); err != nil {
		t.Fatalf("second retry: %v", err)
	}
	if recorder.retries != 2 || m.Snapshot().PersistErr != nil {
		t.Fatalf("expected two retries and no error, got %d %v", recorder.retries, m.Snapshot().PersistErr)
	}
	if err := m.RetryPersist(ctx); !errors.Is(err, apperrors.ErrInvalidTransition) {
		t.Fatalf("retry after success should be rejected, got %v", err)
	}

	if err := m.Restart(ctx); err != nil {
		t.Fatalf("restart: %v", err)
	}
	snap = m.Snapshot()
	if snap.Phase != domain.PhaseIdle || snap.Session.Problem != "" || len(snap.Session.Results) != 0 || snap.PersistErr != nil {
		t.Fatalf("restart must clear the session: %+v", snap)
	}
	if err := m.StartSession(ctx, "Three Sum"); err != nil {
		t.Fatalf("second session: %v", err)
	}
	if snap := m.Snapshot(); snap.Stage.ID != domain.StageReading || snap.Remaining != 1 {
		t.Fatalf("second session starts fresh with the same budgets: %+v", snap)
	}
}

func TestMachineSessionInvariantsHoldForAnyStopTimes(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("durations are the stop time capped at the budget", prop.ForAll(
		func(offsets []int) bool {
			ctx := context.Background()
			m, loop, recorder := newMachine(t, defaultBudgets)
			if err := m.StartSession(ctx, "Prop"); err != nil {
				return false
			}
			expected := 0
			for i, offset := range offsets {
				stage := domain.StageID(i).Stage()
				budget := defaultBudgets.For(stage.ID)
				if offset >= budget {
					loop.Advance(time.Duration(budget) * time.Second)
					expected += budget
				} else {
					loop.Advance(time.Duration(offset) * time.Second)
					if err := m.StopStage(ctx); err != nil {
						return false
					}
					expected += offset
				}
				if stage.RequiresInput {
					if err := m.SubmitInput(ctx, "t", domain.SourceOther); err != nil {
						return false
					}
				}
			}
			if len(recorder.appended) != 1 {
				return false
			}
			s := recorder.appended[0]
			return s.Complete() && s.Validate() == nil && s.TotalSeconds() == expected
		},
		gen.SliceOfN(4, gen.IntRange(0, 700)),
	))

	properties.TestingRun(t)
}
