package domain

import (
	"fmt"
	"strings"
	"time"

	apperrors "algotimer/internal/platform/errors"
)

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseRunning
	PhaseAwaitingInput
	PhaseFinished
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseRunning:
		return "running"
	case PhaseAwaitingInput:
		return "awaiting-input"
	case PhaseFinished:
		return "finished"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// StageResult is the measured outcome of one completed stage.
type StageResult struct {
	Stage   StageID
	Seconds int
	// Text is nil for stages that capture nothing.
	Text   *string
	Source Source
}

func (r StageResult) TextOrEmpty() string {
	if r.Text == nil {
		return ""
	}
	return *r.Text
}

// Session is one run through the stages for a single problem. Results hold
// one entry per completed stage in stage order.
type Session struct {
	ID        string
	Problem   string
	StartedAt time.Time
	EndedAt   time.Time
	Results   []StageResult
}

func (s Session) TotalSeconds() int {
	total := 0
	for _, r := range s.Results {
		total += r.Seconds
	}
	return total
}

func (s Session) Result(id StageID) (StageResult, bool) {
	for _, r := range s.Results {
		if r.Stage == id {
			return r, true
		}
	}
	return StageResult{}, false
}

// SourceOf returns the text source recorded for id, self when absent.
func (s Session) SourceOf(id StageID) Source {
	if r, ok := s.Result(id); ok && r.Source != "" {
		return r.Source
	}
	return SourceSelf
}

func (s Session) Complete() bool {
	return len(s.Results) == StageCount()
}

func (s Session) Validate() error {
	if strings.TrimSpace(s.Problem) == "" {
		return fmt.Errorf("%w: problem title is required", apperrors.ErrValidation)
	}
	if len(s.Results) > StageCount() {
		return fmt.Errorf("%w: %d results for %d stages", apperrors.ErrValidation, len(s.Results), StageCount())
	}
	for i, r := range s.Results {
		if r.Stage != StageID(i) {
			return fmt.Errorf("%w: result %d is %s, expected %s", apperrors.ErrValidation, i, r.Stage, StageID(i))
		}
		if r.Seconds < 0 {
			return fmt.Errorf("%w: %s has negative duration", apperrors.ErrValidation, r.Stage)
		}
		if r.Source != SourceSelf && r.Source != SourceOther {
			return fmt.Errorf("%w: %s has unknown source %q", apperrors.ErrValidation, r.Stage, r.Source)
		}
	}
	return nil
}

// Stats summarizes the session history.
type Stats struct {
	Sessions       int
	TotalSeconds   int
	AverageSeconds map[StageID]float64
	SelfThoughts   int
	SelfAnswers    int
}

// Summarize computes Stats over sessions. Averages only count sessions that
// reached the stage.
func Summarize(sessions []Session) Stats {
	stats := Stats{Sessions: len(sessions), AverageSeconds: map[StageID]float64{}}
	counts := map[StageID]int{}
	for _, s := range sessions {
		stats.TotalSeconds += s.TotalSeconds()
		for _, r := range s.Results {
			stats.AverageSeconds[r.Stage] += float64(r.Seconds)
			counts[r.Stage]++
		}
		if r, ok := s.Result(StageThinking); ok && r.Source == SourceSelf {
			stats.SelfThoughts++
		}
		if r, ok := s.Result(StageCoding); ok && r.Source == SourceSelf {
			stats.SelfAnswers++
		}
	}
	for stage, n := range counts {
		stats.AverageSeconds[stage] /= float64(n)
	}
	return stats
}
