package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
)

const stateDir = ".algotimer"

// Settings are the process-level knobs, read from the environment and then
// overridden by command-line flags.
type Settings struct {
	Dir       string `env:"ALGOTIMER_DIR" envDefault:"."`
	NotesDir  string `env:"ALGOTIMER_NOTES_DIR"`
	LogLevel  string `env:"ALGOTIMER_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"ALGOTIMER_LOG_FORMAT" envDefault:"text"`
}

// Config holds resolved file locations for one data directory.
type Config struct {
	DataDir        string
	ConfigPath     string
	LogPath        string
	TranscriptPath string
	LockPath       string
	DBPath         string
	LogDir         string
	NotesDir       string
	LogLevel       string
	LogFormat      string
}

// ParseEnv loads settings from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func New(s Settings) (Config, error) {
	if strings.TrimSpace(s.Dir) == "" {
		return Config{}, fmt.Errorf("data directory is required")
	}
	switch s.LogFormat {
	case "", "text", "json":
	default:
		return Config{}, fmt.Errorf("unsupported log format %q", s.LogFormat)
	}
	return Config{
		DataDir:        s.Dir,
		ConfigPath:     filepath.Join(s.Dir, "config.json"),
		LogPath:        filepath.Join(s.Dir, "session_log.json"),
		TranscriptPath: filepath.Join(s.Dir, "session_log.md"),
		LockPath:       filepath.Join(s.Dir, stateDir, "session_log.lock"),
		DBPath:         filepath.Join(s.Dir, stateDir, "index.db"),
		LogDir:         filepath.Join(s.Dir, stateDir, "logs"),
		NotesDir:       s.NotesDir,
		LogLevel:       s.LogLevel,
		LogFormat:      s.LogFormat,
	}, nil
}
