package out

import (
	"context"
	"io"
	"time"

	"algotimer/internal/modules/session/domain"
)

// Scheduler runs fire once after delay on the caller's event loop.
type Scheduler interface {
	Schedule(delay time.Duration, fire func())
}

// SessionLog is the structured collection of finished sessions.
type SessionLog interface {
	Append(ctx context.Context, session domain.Session) error
	List(ctx context.Context) ([]domain.Session, error)
}

// Transcript is the append-only human-readable log.
type Transcript interface {
	Append(ctx context.Context, session domain.Session) error
	Stream(ctx context.Context, w io.Writer, follow bool) error
}

// SessionIndex is a rebuildable query projection over the session log.
type SessionIndex interface {
	Reset(ctx context.Context) error
	Upsert(ctx context.Context, session domain.Session) error
	Stats(ctx context.Context) (domain.Stats, error)
}

type NoteStore interface {
	Save(ctx context.Context, session domain.Session) (string, error)
}
