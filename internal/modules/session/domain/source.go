package domain

import (
	"fmt"

	apperrors "algotimer/internal/platform/errors"
)

// Source says whose idea or code the captured text describes.
type Source string

const (
	SourceSelf  Source = "self"
	SourceOther Source = "other"
)

// ParseSource accepts "self", "other", or empty (self).
func ParseSource(raw string) (Source, error) {
	switch Source(raw) {
	case "", SourceSelf:
		return SourceSelf, nil
	case SourceOther:
		return SourceOther, nil
	}
	return "", fmt.Errorf("%w: unknown text source %q", apperrors.ErrValidation, raw)
}

func (s Source) Toggle() Source {
	if s == SourceOther {
		return SourceSelf
	}
	return SourceOther
}
