package out

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"algotimer/internal/modules/session/domain"
	apperrors "algotimer/internal/platform/errors"
)

const timestampLayout = "2006-01-02 15:04:05"

// sessionRecord is one element of session_log.json.
type sessionRecord struct {
	ID            string      `json:"id,omitempty"`
	Problem       string      `json:"problem"`
	Timestamp     string      `json:"timestamp"`
	Durations     durationMap `json:"durations"`
	TotalTime     int         `json:"total_time"`
	Thought       *string     `json:"thought"`
	Answer        *string     `json:"answer"`
	Notes         *string     `json:"notes"`
	ThoughtSource string      `json:"thought_source"`
	AnswerSource  string      `json:"answer_source"`
}

type durationEntry struct {
	Label   string
	Seconds int
}

// durationMap is a JSON object whose key order is kept, so stages are
// written and read back in the order they ran.
type durationMap []durationEntry

func (m durationMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Label)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		fmt.Fprintf(&buf, "%d", e.Seconds)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (m *durationMap) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("durations must be an object")
	}
	var out durationMap
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		label, ok := tok.(string)
		if !ok {
			return fmt.Errorf("durations key must be a string")
		}
		var seconds int
		if err := dec.Decode(&seconds); err != nil {
			return fmt.Errorf("duration for %q: %w", label, err)
		}
		out = append(out, durationEntry{Label: label, Seconds: seconds})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*m = out
	return nil
}

func toRecord(s domain.Session) sessionRecord {
	rec := sessionRecord{
		ID:            s.ID,
		Problem:       s.Problem,
		Timestamp:     s.StartedAt.Format(timestampLayout),
		TotalTime:     s.TotalSeconds(),
		ThoughtSource: string(s.SourceOf(domain.StageThinking)),
		AnswerSource:  string(s.SourceOf(domain.StageCoding)),
	}
	for _, r := range s.Results {
		stage := r.Stage.Stage()
		rec.Durations = append(rec.Durations, durationEntry{Label: stage.Label, Seconds: r.Seconds})
		if field := rec.textField(stage.TextKey); field != nil {
			*field = r.Text
		}
	}
	return rec
}

func (r *sessionRecord) textField(key string) **string {
	switch key {
	case "thought":
		return &r.Thought
	case "answer":
		return &r.Answer
	case "notes":
		return &r.Notes
	}
	return nil
}

// toSession converts the n-th record (zero based) back into a session.
// Anything that does not describe a valid session is log corruption.
func (r sessionRecord) toSession(n int) (domain.Session, error) {
	corrupt := func(format string, args ...any) error {
		return fmt.Errorf("%w: record %d: %s", apperrors.ErrLogCorruption, n, fmt.Sprintf(format, args...))
	}
	startedAt, err := time.ParseInLocation(timestampLayout, r.Timestamp, time.Local)
	if err != nil {
		return domain.Session{}, corrupt("timestamp %q", r.Timestamp)
	}
	thoughtSource, err := domain.ParseSource(r.ThoughtSource)
	if err != nil {
		return domain.Session{}, corrupt("thought_source %q", r.ThoughtSource)
	}
	answerSource, err := domain.ParseSource(r.AnswerSource)
	if err != nil {
		return domain.Session{}, corrupt("answer_source %q", r.AnswerSource)
	}

	session := domain.Session{ID: r.ID, Problem: r.Problem, StartedAt: startedAt}
	if strings.TrimSpace(session.ID) == "" {
		session.ID = fmt.Sprintf("legacy-%d", n+1)
	}
	for _, d := range r.Durations {
		stage, ok := domain.StageByLabel(d.Label)
		if !ok {
			return domain.Session{}, corrupt("unknown stage %q", d.Label)
		}
		result := domain.StageResult{Stage: stage.ID, Seconds: d.Seconds, Source: domain.SourceSelf}
		if field := r.textField(stage.TextKey); field != nil {
			result.Text = *field
		}
		switch stage.ID {
		case domain.StageThinking:
			result.Source = thoughtSource
		case domain.StageCoding:
			result.Source = answerSource
		}
		session.Results = append(session.Results, result)
	}
	if err := session.Validate(); err != nil {
		return domain.Session{}, corrupt("%v", err)
	}
	return session, nil
}
