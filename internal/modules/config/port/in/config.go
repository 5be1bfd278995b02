package in

import (
	"context"

	"algotimer/internal/modules/config/dto"
)

type Usecase interface {
	Load(ctx context.Context) (dto.ConfigOutput, error)
	Show(ctx context.Context) (dto.ConfigOutput, error)
	Init(ctx context.Context, input dto.InitInput) (dto.ConfigOutput, error)
}
