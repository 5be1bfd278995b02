package usecase

import (
	"context"

	"algotimer/internal/modules/config/domain"
	"algotimer/internal/modules/config/dto"
	configin "algotimer/internal/modules/config/port/in"
	"algotimer/internal/modules/config/service"
)

type Interactor struct {
	svc *service.ConfigService
}

func NewInteractor(svc *service.ConfigService) configin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Load(ctx context.Context) (dto.ConfigOutput, error) {
	cfg, created, err := i.svc.Load(ctx)
	if err != nil {
		return dto.ConfigOutput{}, err
	}
	out := toOutput(cfg)
	out.Created = created
	return out, nil
}

func (i *Interactor) Show(ctx context.Context) (dto.ConfigOutput, error) {
	cfg, err := i.svc.Show(ctx)
	if err != nil {
		return dto.ConfigOutput{}, err
	}
	return toOutput(cfg), nil
}

func (i *Interactor) Init(ctx context.Context, input dto.InitInput) (dto.ConfigOutput, error) {
	cfg, err := i.svc.Init(ctx, input.Force)
	if err != nil {
		return dto.ConfigOutput{}, err
	}
	out := toOutput(cfg)
	out.Created = true
	return out, nil
}

func toOutput(cfg domain.Config) dto.ConfigOutput {
	return dto.ConfigOutput{
		Name:       cfg.Name,
		ReadTime:   cfg.ReadTime,
		ThinkTime:  cfg.ThinkTime,
		CodeTime:   cfg.CodeTime,
		SearchTime: cfg.SearchTime,
	}
}
