package tx

import "context"

// Manager serializes a read-modify-write critical section.
type Manager interface {
	Within(ctx context.Context, fn func(context.Context) error) error
}

type NoopManager struct{}

func (NoopManager) Within(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

// FileLockManager holds an exclusive advisory lock on path for the duration
// of fn, so two processes sharing a data directory never interleave their
// session log rewrites.
type FileLockManager struct {
	path string
}

func NewFileLockManager(path string) *FileLockManager {
	return &FileLockManager{path: path}
}

func (m *FileLockManager) Within(ctx context.Context, fn func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	unlock, err := lockFile(m.path)
	if err != nil {
		return err
	}
	defer unlock()
	return fn(ctx)
}
