package in

import (
	"context"

	sessiondto "algotimer/internal/modules/session/dto"
	sessionin "algotimer/internal/modules/session/port/in"
)

// TUIHandler is the session surface the interactive view drives.
type TUIHandler struct {
	usecase sessionin.Usecase
}

func NewTUIHandler(usecase sessionin.Usecase) TUIHandler {
	return TUIHandler{usecase: usecase}
}

func (h TUIHandler) Start(ctx context.Context, problem string) (sessiondto.SnapshotOutput, error) {
	return h.usecase.Start(ctx, sessiondto.StartInput{Problem: problem})
}

func (h TUIHandler) Stop(ctx context.Context) (sessiondto.SnapshotOutput, error) {
	return h.usecase.StopStage(ctx)
}

func (h TUIHandler) Submit(ctx context.Context, text, source string) (sessiondto.SnapshotOutput, error) {
	return h.usecase.SubmitInput(ctx, sessiondto.SubmitInput{Text: text, Source: source})
}

func (h TUIHandler) Retry(ctx context.Context) (sessiondto.SnapshotOutput, error) {
	return h.usecase.RetryPersist(ctx)
}

func (h TUIHandler) Restart(ctx context.Context) (sessiondto.SnapshotOutput, error) {
	return h.usecase.Restart(ctx)
}

func (h TUIHandler) Snapshot() sessiondto.SnapshotOutput {
	return h.usecase.Snapshot()
}
