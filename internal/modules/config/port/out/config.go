package out

import (
	"context"

	"algotimer/internal/modules/config/domain"
)

// Store persists the singleton config record. Load returns
// apperrors.ErrNotFound when no record exists and apperrors.ErrConfig when
// the record is malformed.
type Store interface {
	Load(ctx context.Context) (domain.Config, error)
	Save(ctx context.Context, cfg domain.Config) error
}

// Prompter asks the user for a config. seed prefills the form; problem is the
// validation error from the previous attempt, if any.
type Prompter interface {
	Prompt(ctx context.Context, seed domain.Config, problem error) (domain.Config, error)
}
