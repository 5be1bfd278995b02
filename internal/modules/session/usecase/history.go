package usecase

import (
	"context"
	"io"

	"algotimer/internal/modules/session/domain"
	"algotimer/internal/modules/session/dto"
	sessionin "algotimer/internal/modules/session/port/in"
	"algotimer/internal/modules/session/service"
)

type HistoryInteractor struct {
	svc *service.HistoryService
}

func NewHistoryInteractor(svc *service.HistoryService) sessionin.HistoryUsecase {
	return &HistoryInteractor{svc: svc}
}

func (i *HistoryInteractor) List(ctx context.Context) ([]dto.SessionOutput, error) {
	sessions, err := i.svc.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SessionOutput, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, toSessionOutput(s))
	}
	return out, nil
}

func (i *HistoryInteractor) Stats(ctx context.Context) (dto.StatsOutput, error) {
	stats, err := i.svc.Stats(ctx)
	if err != nil {
		return dto.StatsOutput{}, err
	}
	out := dto.StatsOutput{
		Sessions:     stats.Sessions,
		TotalSeconds: stats.TotalSeconds,
		SelfThoughts: stats.SelfThoughts,
		SelfAnswers:  stats.SelfAnswers,
	}
	for _, stage := range domain.Stages() {
		avg, ok := stats.AverageSeconds[stage.ID]
		if !ok {
			continue
		}
		out.Averages = append(out.Averages, dto.StageAverageOutput{Stage: stage.Label, Seconds: avg})
	}
	return out, nil
}

func (i *HistoryInteractor) Reindex(ctx context.Context) (dto.ReindexOutput, error) {
	n, err := i.svc.Reindex(ctx)
	if err != nil {
		return dto.ReindexOutput{}, err
	}
	return dto.ReindexOutput{Indexed: n}, nil
}

func (i *HistoryInteractor) Transcript(ctx context.Context, w io.Writer, follow bool) error {
	return i.svc.Transcript(ctx, w, follow)
}
