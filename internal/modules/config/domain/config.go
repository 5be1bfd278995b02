package domain

import (
	"fmt"

	apperrors "algotimer/internal/platform/errors"
)

// Config is the owner's profile and per-stage time budgets, in seconds.
type Config struct {
	Name       string
	ReadTime   int
	ThinkTime  int
	CodeTime   int
	SearchTime int
}

// Field describes one wizard entry.
type Field struct {
	Key   string
	Label string
	Help  string
}

var fields = []Field{
	{Key: "name", Label: "Your Name", Help: "Used to personalize logs."},
	{Key: "read_time", Label: "Max Reading Time (sec)", Help: "Maximum time allowed for reading the problem before moving on."},
	{Key: "think_time", Label: "Thinking Time (sec)", Help: "How long you want to think about the solution before coding."},
	{Key: "code_time", Label: "Coding Time (sec)", Help: "Time limit to implement your solution."},
	{Key: "search_time", Label: "Review Others' Time (sec)", Help: "Time for reviewing community solutions or learning from others."},
}

func Defaults() Config {
	return Config{ReadTime: 300, ThinkTime: 90, CodeTime: 600, SearchTime: 600}
}

// Fields lists wizard entries in prompt order.
func Fields() []Field {
	out := make([]Field, len(fields))
	copy(out, fields)
	return out
}

// Durations returns the budgets keyed by field name.
func (c Config) Durations() map[string]int {
	return map[string]int{
		"read_time":   c.ReadTime,
		"think_time":  c.ThinkTime,
		"code_time":   c.CodeTime,
		"search_time": c.SearchTime,
	}
}

func (c Config) Validate() error {
	for _, f := range fields[1:] {
		if v := c.Durations()[f.Key]; v <= 0 {
			return fmt.Errorf("%w: %s must be a positive number of seconds, got %d", apperrors.ErrValidation, f.Key, v)
		}
	}
	return nil
}
