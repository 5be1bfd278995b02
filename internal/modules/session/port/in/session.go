package in

import (
	"context"
	"io"

	"algotimer/internal/modules/session/dto"
)

// Usecase drives one practice session at a time. Calls are made from the
// event loop goroutine only.
type Usecase interface {
	Start(ctx context.Context, input dto.StartInput) (dto.SnapshotOutput, error)
	StopStage(ctx context.Context) (dto.SnapshotOutput, error)
	SubmitInput(ctx context.Context, input dto.SubmitInput) (dto.SnapshotOutput, error)
	RetryPersist(ctx context.Context) (dto.SnapshotOutput, error)
	Restart(ctx context.Context) (dto.SnapshotOutput, error)
	Snapshot() dto.SnapshotOutput
}

type HistoryUsecase interface {
	List(ctx context.Context) ([]dto.SessionOutput, error)
	Stats(ctx context.Context) (dto.StatsOutput, error)
	Reindex(ctx context.Context) (dto.ReindexOutput, error)
	Transcript(ctx context.Context, w io.Writer, follow bool) error
}
