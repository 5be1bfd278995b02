package in

import (
	"context"

	"algotimer/internal/modules/config/dto"
	configin "algotimer/internal/modules/config/port/in"
)

type CLIHandler struct {
	usecase configin.Usecase
}

func NewCLIHandler(usecase configin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Load(ctx context.Context) (dto.ConfigOutput, error) {
	return h.usecase.Load(ctx)
}

func (h CLIHandler) Show(ctx context.Context) (dto.ConfigOutput, error) {
	return h.usecase.Show(ctx)
}

func (h CLIHandler) Init(ctx context.Context, force bool) (dto.ConfigOutput, error) {
	return h.usecase.Init(ctx, dto.InitInput{Force: force})
}
