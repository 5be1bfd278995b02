package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"algotimer/internal/modules/session/domain"
	sessionout "algotimer/internal/modules/session/port/out"
	"algotimer/internal/platform/clock"
	apperrors "algotimer/internal/platform/errors"
	"algotimer/internal/platform/id"
)

// Recorder persists finished sessions.
type Recorder interface {
	Append(ctx context.Context, session domain.Session) AppendResult
	Retry(ctx context.Context, session domain.Session, previous AppendResult) AppendResult
}

// Snapshot is a read-only view of the machine for rendering.
type Snapshot struct {
	Phase      domain.Phase
	StageIndex int
	Stage      domain.Stage
	Budget     int
	Remaining  int
	Session    domain.Session
	PersistErr error
}

// Machine walks one session at a time through the stage sequence:
// Idle, then Running and AwaitingInput for each stage, then Finished.
// It is not safe for concurrent use; every call, including clock
// callbacks, must come from the same event loop.
type Machine struct {
	clock     clock.Clock
	scheduler sessionout.Scheduler
	ids       id.Generator
	recorder  Recorder
	budgets   domain.Budgets
	log       *logrus.Entry

	phase     domain.Phase
	index     int
	active    *StageClock
	remaining int
	session   domain.Session
	pending   domain.StageResult
	persist   AppendResult
}

func NewMachine(clk clock.Clock, scheduler sessionout.Scheduler, ids id.Generator, recorder Recorder, budgets domain.Budgets, log *logrus.Entry) *Machine {
	return &Machine{
		clock:     clk,
		scheduler: scheduler,
		ids:       ids,
		recorder:  recorder,
		budgets:   budgets,
		log:       log,
	}
}

func (m *Machine) StartSession(ctx context.Context, problem string) error {
	if m.phase != domain.PhaseIdle {
		return m.invalid("start session")
	}
	problem = strings.TrimSpace(problem)
	if problem == "" {
		return fmt.Errorf("%w: problem title is required", apperrors.ErrValidation)
	}
	m.session = domain.Session{ID: m.ids.New(), Problem: problem, StartedAt: m.clock.Now()}
	m.index = 0
	m.log.WithFields(logrus.Fields{"session": m.session.ID, "problem": problem}).Info("Problem")
	return m.runStage(ctx)
}

// StopStage ends the running stage early. It is the same transition as the
// clock expiring, with the elapsed wall-clock time recorded instead of the
// budget.
func (m *Machine) StopStage(ctx context.Context) error {
	if m.phase != domain.PhaseRunning {
		return m.invalid("stop stage")
	}
	return m.endStage(ctx)
}

// SubmitInput completes the stage waiting for text. Empty text is kept as
// is. The source is recorded as self for stages without a source toggle.
func (m *Machine) SubmitInput(ctx context.Context, text string, source domain.Source) error {
	if m.phase != domain.PhaseAwaitingInput {
		return m.invalid("submit input")
	}
	if source != domain.SourceSelf && source != domain.SourceOther {
		return fmt.Errorf("%w: unknown text source %q", apperrors.ErrValidation, source)
	}
	if !m.pending.Stage.Stage().HasSource {
		source = domain.SourceSelf
	}
	m.pending.Text = &text
	m.pending.Source = source
	return m.commit(ctx)
}

// RetryPersist writes the finished session again to the sinks that failed.
func (m *Machine) RetryPersist(ctx context.Context) error {
	if m.phase != domain.PhaseFinished || !m.persist.Failed() {
		return m.invalid("retry persist")
	}
	m.persist = m.recorder.Retry(ctx, m.session, m.persist)
	if err := m.persist.Err(); err != nil {
		m.log.WithError(err).WithField("session", m.session.ID).Warn("session still not persisted")
		return err
	}
	m.log.WithField("session", m.session.ID).Info("session persisted on retry")
	return nil
}

// Restart returns to Idle, dropping all per-session state.
func (m *Machine) Restart(context.Context) error {
	if m.phase != domain.PhaseFinished {
		return m.invalid("restart")
	}
	if m.persist.Failed() {
		m.log.WithField("session", m.session.ID).Warn("discarding session that was not fully persisted")
	}
	m.phase = domain.PhaseIdle
	m.index = 0
	m.active = nil
	m.remaining = 0
	m.session = domain.Session{}
	m.pending = domain.StageResult{}
	m.persist = AppendResult{}
	return nil
}

func (m *Machine) Snapshot() Snapshot {
	snap := Snapshot{
		Phase:      m.phase,
		StageIndex: m.index,
		Remaining:  m.remaining,
		Session:    m.session,
		PersistErr: m.persist.Err(),
	}
	snap.Session.Results = append([]domain.StageResult(nil), m.session.Results...)
	if m.phase == domain.PhaseRunning || m.phase == domain.PhaseAwaitingInput {
		snap.Stage = domain.StageID(m.index).Stage()
		snap.Budget = m.budgets.For(snap.Stage.ID)
	}
	return snap
}

func (m *Machine) runStage(ctx context.Context) error {
	stage := domain.StageID(m.index)
	budget := m.budgets.For(stage)
	// The previous clock is already stopped; dropping the handle means its
	// callbacks can no longer reach the machine.
	c := NewStageClock(m.clock, m.scheduler)
	m.active = c
	m.phase = domain.PhaseRunning
	m.remaining = budget
	return c.Start(stage, budget,
		func(remaining int) {
			if m.active == c {
				m.remaining = remaining
			}
		},
		func() {
			if m.active != c {
				return
			}
			if err := m.endStage(ctx); err != nil {
				m.log.WithError(err).WithField("stage", stage.String()).Error("advance after expiry")
			}
		},
	)
}

func (m *Machine) endStage(ctx context.Context) error {
	c := m.active
	m.active = nil
	seconds := c.Stop()
	stage := domain.StageID(m.index).Stage()
	m.remaining = 0
	m.pending = domain.StageResult{Stage: stage.ID, Seconds: seconds, Source: domain.SourceSelf}
	m.log.WithFields(logrus.Fields{
		"session": m.session.ID,
		"stage":   stage.Label,
		"seconds": seconds,
		"expired": c.Expired(),
	}).Infof("%s Duration", stage.Label)
	if !stage.RequiresInput {
		return m.commit(ctx)
	}
	m.phase = domain.PhaseAwaitingInput
	return nil
}

func (m *Machine) commit(ctx context.Context) error {
	m.session.Results = append(m.session.Results, m.pending)
	m.pending = domain.StageResult{}
	m.index++
	if m.index < domain.StageCount() {
		return m.runStage(ctx)
	}
	m.finish(ctx)
	return nil
}

func (m *Machine) finish(ctx context.Context) {
	m.phase = domain.PhaseFinished
	m.session.EndedAt = m.clock.Now()
	entry := m.log.WithFields(logrus.Fields{
		"session": m.session.ID,
		"problem": m.session.Problem,
		"seconds": m.session.TotalSeconds(),
	})
	entry.Info("Session Finished")
	m.persist = m.recorder.Append(ctx, m.session)
	if err := m.persist.Err(); err != nil {
		entry.WithError(err).Error("persist session")
	}
}

func (m *Machine) invalid(op string) error {
	return fmt.Errorf("%w: cannot %s while %s", apperrors.ErrInvalidTransition, op, m.phase)
}
