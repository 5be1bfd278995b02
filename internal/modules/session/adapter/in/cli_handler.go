package in

import (
	"context"
	"io"

	sessiondto "algotimer/internal/modules/session/dto"
	sessionin "algotimer/internal/modules/session/port/in"
)

type HistoryCLIHandler struct {
	usecase sessionin.HistoryUsecase
}

func NewHistoryCLIHandler(usecase sessionin.HistoryUsecase) HistoryCLIHandler {
	return HistoryCLIHandler{usecase: usecase}
}

func (h HistoryCLIHandler) List(ctx context.Context) ([]sessiondto.SessionOutput, error) {
	return h.usecase.List(ctx)
}

func (h HistoryCLIHandler) Stats(ctx context.Context) (sessiondto.StatsOutput, error) {
	return h.usecase.Stats(ctx)
}

func (h HistoryCLIHandler) Reindex(ctx context.Context) (sessiondto.ReindexOutput, error) {
	return h.usecase.Reindex(ctx)
}

func (h HistoryCLIHandler) Transcript(ctx context.Context, w io.Writer, follow bool) error {
	return h.usecase.Transcript(ctx, w, follow)
}
