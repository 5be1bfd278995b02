package out

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"algotimer/internal/modules/config/domain"
	configout "algotimer/internal/modules/config/port/out"
	apperrors "algotimer/internal/platform/errors"
)

// configRecord mirrors config.json. Pointers let Load tell a missing field
// from a zero value.
type configRecord struct {
	Name       *string `json:"name"`
	ReadTime   *int    `json:"read_time"`
	ThinkTime  *int    `json:"think_time"`
	CodeTime   *int    `json:"code_time"`
	SearchTime *int    `json:"search_time"`
}

type FileConfigStore struct {
	path string
}

func NewFileConfigStore(path string) configout.Store {
	return &FileConfigStore{path: path}
}

func (s *FileConfigStore) Load(_ context.Context) (domain.Config, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.Config{}, fmt.Errorf("config %s: %w", s.path, apperrors.ErrNotFound)
		}
		return domain.Config{}, fmt.Errorf("read config: %w", err)
	}
	var rec configRecord
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&rec); err != nil {
		return domain.Config{}, fmt.Errorf("%w: decode %s: %v", apperrors.ErrConfig, s.path, err)
	}
	missing := ""
	switch {
	case rec.Name == nil:
		missing = "name"
	case rec.ReadTime == nil:
		missing = "read_time"
	case rec.ThinkTime == nil:
		missing = "think_time"
	case rec.CodeTime == nil:
		missing = "code_time"
	case rec.SearchTime == nil:
		missing = "search_time"
	}
	if missing != "" {
		return domain.Config{}, fmt.Errorf("%w: %s is missing field %q", apperrors.ErrConfig, s.path, missing)
	}
	cfg := domain.Config{
		Name:       *rec.Name,
		ReadTime:   *rec.ReadTime,
		ThinkTime:  *rec.ThinkTime,
		CodeTime:   *rec.CodeTime,
		SearchTime: *rec.SearchTime,
	}
	if err := cfg.Validate(); err != nil {
		return domain.Config{}, fmt.Errorf("%w: %s: %v", apperrors.ErrConfig, s.path, err)
	}
	return cfg, nil
}

func (s *FileConfigStore) Save(_ context.Context, cfg domain.Config) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	payload, err := json.MarshalIndent(configRecord{
		Name:       &cfg.Name,
		ReadTime:   &cfg.ReadTime,
		ThinkTime:  &cfg.ThinkTime,
		CodeTime:   &cfg.CodeTime,
		SearchTime: &cfg.SearchTime,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(s.path, append(payload, '\n'), 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
