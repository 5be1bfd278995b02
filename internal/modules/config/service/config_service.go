package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"algotimer/internal/modules/config/domain"
	configout "algotimer/internal/modules/config/port/out"
	apperrors "algotimer/internal/platform/errors"
)

const maxPromptAttempts = 5

type ConfigService struct {
	store    configout.Store
	prompter configout.Prompter
	log      *logrus.Entry
}

func NewConfigService(store configout.Store, prompter configout.Prompter, log *logrus.Entry) *ConfigService {
	return &ConfigService{store: store, prompter: prompter, log: log}
}

// Load returns the persisted config, creating it interactively on first run.
// The bool reports whether the record was created by this call. A malformed
// record is returned as ErrConfig and left untouched.
func (s *ConfigService) Load(ctx context.Context) (domain.Config, bool, error) {
	cfg, err := s.store.Load(ctx)
	if err == nil {
		return cfg, false, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return domain.Config{}, false, err
	}
	s.log.Info("no config found, starting setup")
	cfg, err = s.solicit(ctx, domain.Defaults())
	if err != nil {
		return domain.Config{}, false, err
	}
	if err := s.store.Save(ctx, cfg); err != nil {
		return domain.Config{}, false, err
	}
	s.log.WithField("name", cfg.Name).Info("config created")
	return cfg, true, nil
}

func (s *ConfigService) Show(ctx context.Context) (domain.Config, error) {
	return s.store.Load(ctx)
}

// Init runs setup explicitly. An existing record, valid or not, is only
// replaced when force is set.
func (s *ConfigService) Init(ctx context.Context, force bool) (domain.Config, error) {
	seed := domain.Defaults()
	existing, err := s.store.Load(ctx)
	switch {
	case err == nil && !force:
		return domain.Config{}, fmt.Errorf("config already exists; rerun with --force to replace it")
	case err == nil:
		seed = existing
	case errors.Is(err, apperrors.ErrNotFound):
	case errors.Is(err, apperrors.ErrConfig) && force:
		s.log.WithError(err).Warn("replacing malformed config")
	default:
		return domain.Config{}, err
	}
	cfg, err := s.solicit(ctx, seed)
	if err != nil {
		return domain.Config{}, err
	}
	if err := s.store.Save(ctx, cfg); err != nil {
		return domain.Config{}, err
	}
	s.log.WithField("name", cfg.Name).Info("config written")
	return cfg, nil
}

func (s *ConfigService) solicit(ctx context.Context, seed domain.Config) (domain.Config, error) {
	if s.prompter == nil {
		return domain.Config{}, fmt.Errorf("%w: config missing and no interactive prompt available", apperrors.ErrConfig)
	}
	var problem error
	for attempt := 0; attempt < maxPromptAttempts; attempt++ {
		cfg, err := s.prompter.Prompt(ctx, seed, problem)
		if err != nil {
			return domain.Config{}, fmt.Errorf("prompt config: %w", err)
		}
		if problem = cfg.Validate(); problem == nil {
			return cfg, nil
		}
		s.log.WithError(problem).Warn("config rejected, prompting again")
		seed = cfg
	}
	return domain.Config{}, problem
}
