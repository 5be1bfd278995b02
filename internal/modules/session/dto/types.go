package dto

import "time"

type StartInput struct {
	Problem string
}

type SubmitInput struct {
	Text   string
	Source string
}

type StageResultOutput struct {
	Stage   string
	Icon    string
	Seconds int
	Text    *string
	Source  string
}

type SessionOutput struct {
	ID           string
	Problem      string
	StartedAt    time.Time
	Results      []StageResultOutput
	TotalSeconds int
}

// SnapshotOutput is what the input surface renders.
type SnapshotOutput struct {
	Phase      string
	StageIndex int
	StageCount int
	Stage      string
	Icon       string
	Prompt     string
	// SourcePrompt is empty for stages without a self/other toggle.
	SourcePrompt string
	Budget       int
	Remaining    int
	Problem      string
	Results      []StageResultOutput
	Session      *SessionOutput
	PersistErr   error
}

func (s SnapshotOutput) Idle() bool {
	return s.Phase == "idle"
}

func (s SnapshotOutput) Running() bool {
	return s.Phase == "running"
}

func (s SnapshotOutput) AwaitingInput() bool {
	return s.Phase == "awaiting-input"
}

func (s SnapshotOutput) Finished() bool {
	return s.Phase == "finished"
}

type StageAverageOutput struct {
	Stage   string
	Seconds float64
}

type StatsOutput struct {
	Sessions     int
	TotalSeconds int
	Averages     []StageAverageOutput
	SelfThoughts int
	SelfAnswers  int
}

type ReindexOutput struct {
	Indexed int
}
