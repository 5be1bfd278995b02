package domain

import (
	"fmt"
	"strings"
)

type StageID int

const (
	StageReading StageID = iota
	StageThinking
	StageCoding
	StageReviewing
)

// Stage is one fixed phase of a practice session. The sequence is fixed at
// compile time; RequiresInput and HasSource drive the state machine instead
// of comparisons on names.
type Stage struct {
	ID        StageID
	Label     string
	Icon      string
	BudgetKey string
	// TextKey names the log field the captured text is stored under.
	TextKey       string
	Prompt        string
	SourcePrompt  string
	RequiresInput bool
	HasSource     bool
}

var stages = [...]Stage{
	{
		ID:        StageReading,
		Label:     "Reading",
		Icon:      "📖",
		BudgetKey: "read_time",
	},
	{
		ID:            StageThinking,
		Label:         "Thinking",
		Icon:          "🧠",
		BudgetKey:     "think_time",
		TextKey:       "thought",
		Prompt:        "Write your idea below (or summarize someone else's):",
		SourcePrompt:  "This is someone else's idea",
		RequiresInput: true,
		HasSource:     true,
	},
	{
		ID:            StageCoding,
		Label:         "Coding",
		Icon:          "💻",
		BudgetKey:     "code_time",
		TextKey:       "answer",
		Prompt:        "Write your solution below (or summarize someone else's code):",
		SourcePrompt:  "This is someone else's code",
		RequiresInput: true,
		HasSource:     true,
	},
	{
		ID:            StageReviewing,
		Label:         "Reviewing",
		Icon:          "🔍",
		BudgetKey:     "search_time",
		TextKey:       "notes",
		Prompt:        "Take some notes while reviewing other solutions:",
		RequiresInput: true,
	},
}

// Stages returns the fixed stage sequence in order.
func Stages() []Stage {
	out := make([]Stage, len(stages))
	copy(out, stages[:])
	return out
}

func StageCount() int {
	return len(stages)
}

func (id StageID) Valid() bool {
	return id >= 0 && int(id) < len(stages)
}

func (id StageID) Stage() Stage {
	if !id.Valid() {
		return Stage{ID: id, Label: fmt.Sprintf("Stage(%d)", int(id))}
	}
	return stages[id]
}

func (id StageID) String() string {
	return id.Stage().Label
}

// StageByLabel resolves a log label. Labels written by older versions carry
// an icon prefix and a longer title ("📖 Reviewing Others' Solutions"), so a
// label matches when it contains the stage name.
func StageByLabel(label string) (Stage, bool) {
	for _, s := range stages {
		if label == s.Label {
			return s, true
		}
	}
	for _, s := range stages {
		if strings.Contains(label, s.Label) {
			return s, true
		}
	}
	return Stage{}, false
}

// Budgets are the per-stage time limits in seconds.
type Budgets struct {
	Read   int
	Think  int
	Code   int
	Search int
}

func (b Budgets) For(id StageID) int {
	switch id {
	case StageReading:
		return b.Read
	case StageThinking:
		return b.Think
	case StageCoding:
		return b.Code
	case StageReviewing:
		return b.Search
	}
	return 0
}
