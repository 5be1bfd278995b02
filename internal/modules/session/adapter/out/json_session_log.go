package out

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"algotimer/internal/modules/session/domain"
	sessionout "algotimer/internal/modules/session/port/out"
	apperrors "algotimer/internal/platform/errors"
	"algotimer/internal/platform/tx"
)

// JSONSessionLog keeps every finished session in a single JSON array. Each
// append reads the whole file, adds one record and rewrites it atomically
// while holding the transaction lock.
type JSONSessionLog struct {
	path string
	tx   tx.Manager
}

func NewJSONSessionLog(path string, txm tx.Manager) sessionout.SessionLog {
	if txm == nil {
		txm = tx.NoopManager{}
	}
	return &JSONSessionLog{path: path, tx: txm}
}

func (l *JSONSessionLog) Append(ctx context.Context, session domain.Session) error {
	return l.tx.Within(ctx, func(context.Context) error {
		records, err := l.readRaw()
		if err != nil {
			return err
		}
		if _, err := decodeAll(records); err != nil {
			return err
		}
		encoded, err := json.Marshal(toRecord(session))
		if err != nil {
			return fmt.Errorf("encode session: %w", err)
		}
		return l.write(append(records, encoded))
	})
}

func (l *JSONSessionLog) List(_ context.Context) ([]domain.Session, error) {
	records, err := l.readRaw()
	if err != nil {
		return nil, err
	}
	return decodeAll(records)
}

// decodeAll parses and validates every record. Append refuses to rewrite a
// log that List could not read back.
func decodeAll(records []json.RawMessage) ([]domain.Session, error) {
	sessions := make([]domain.Session, 0, len(records))
	for i, raw := range records {
		var rec sessionRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", apperrors.ErrLogCorruption, i, err)
		}
		session, err := rec.toSession(i)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, nil
}

// readRaw returns the array elements undecoded so a rewrite leaves existing
// records as they were. A missing or blank file is an empty log.
func (l *JSONSessionLog) readRaw() ([]json.RawMessage, error) {
	data, err := os.ReadFile(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session log: %w", err)
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if trimmed[0] != '[' {
		return nil, fmt.Errorf("%w: %s is not a JSON array", apperrors.ErrLogCorruption, l.path)
	}
	var records []json.RawMessage
	if err := json.Unmarshal(trimmed, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrLogCorruption, err)
	}
	return records, nil
}

func (l *JSONSessionLog) write(records []json.RawMessage) error {
	if records == nil {
		records = []json.RawMessage{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("encode session log: %w", err)
	}

	dir := filepath.Dir(l.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create session log dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".session_log-*.json")
	if err != nil {
		return fmt.Errorf("create temp session log: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("write session log: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync session log: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close session log: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod session log: %w", err)
	}
	if err := os.Rename(tmp.Name(), l.path); err != nil {
		return fmt.Errorf("replace session log: %w", err)
	}
	return nil
}
