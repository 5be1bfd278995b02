package usecase

import (
	"context"

	"algotimer/internal/modules/session/domain"
	"algotimer/internal/modules/session/dto"
	sessionin "algotimer/internal/modules/session/port/in"
	"algotimer/internal/modules/session/service"
)

type Interactor struct {
	machine *service.Machine
}

func NewInteractor(machine *service.Machine) sessionin.Usecase {
	return &Interactor{machine: machine}
}

func (i *Interactor) Start(ctx context.Context, input dto.StartInput) (dto.SnapshotOutput, error) {
	err := i.machine.StartSession(ctx, input.Problem)
	return i.Snapshot(), err
}

func (i *Interactor) StopStage(ctx context.Context) (dto.SnapshotOutput, error) {
	err := i.machine.StopStage(ctx)
	return i.Snapshot(), err
}

func (i *Interactor) SubmitInput(ctx context.Context, input dto.SubmitInput) (dto.SnapshotOutput, error) {
	source, err := domain.ParseSource(input.Source)
	if err != nil {
		return i.Snapshot(), err
	}
	err = i.machine.SubmitInput(ctx, input.Text, source)
	return i.Snapshot(), err
}

func (i *Interactor) RetryPersist(ctx context.Context) (dto.SnapshotOutput, error) {
	err := i.machine.RetryPersist(ctx)
	return i.Snapshot(), err
}

func (i *Interactor) Restart(ctx context.Context) (dto.SnapshotOutput, error) {
	err := i.machine.Restart(ctx)
	return i.Snapshot(), err
}

func (i *Interactor) Snapshot() dto.SnapshotOutput {
	return toSnapshotOutput(i.machine.Snapshot())
}

func toSnapshotOutput(snap service.Snapshot) dto.SnapshotOutput {
	out := dto.SnapshotOutput{
		Phase:      snap.Phase.String(),
		StageIndex: snap.StageIndex,
		StageCount: domain.StageCount(),
		Budget:     snap.Budget,
		Remaining:  snap.Remaining,
		Problem:    snap.Session.Problem,
		Results:    toResultOutputs(snap.Session.Results),
		PersistErr: snap.PersistErr,
	}
	if snap.Phase == domain.PhaseRunning || snap.Phase == domain.PhaseAwaitingInput {
		out.Stage = snap.Stage.Label
		out.Icon = snap.Stage.Icon
		out.Prompt = snap.Stage.Prompt
		if snap.Stage.HasSource {
			out.SourcePrompt = snap.Stage.SourcePrompt
		}
	}
	if snap.Phase == domain.PhaseFinished {
		session := toSessionOutput(snap.Session)
		out.Session = &session
	}
	return out
}

func toSessionOutput(s domain.Session) dto.SessionOutput {
	return dto.SessionOutput{
		ID:           s.ID,
		Problem:      s.Problem,
		StartedAt:    s.StartedAt,
		Results:      toResultOutputs(s.Results),
		TotalSeconds: s.TotalSeconds(),
	}
}

func toResultOutputs(results []domain.StageResult) []dto.StageResultOutput {
	out := make([]dto.StageResultOutput, 0, len(results))
	for _, r := range results {
		stage := r.Stage.Stage()
		item := dto.StageResultOutput{
			Stage:   stage.Label,
			Icon:    stage.Icon,
			Seconds: r.Seconds,
			Text:    r.Text,
		}
		if stage.HasSource {
			item.Source = string(r.Source)
		}
		out = append(out, item)
	}
	return out
}
