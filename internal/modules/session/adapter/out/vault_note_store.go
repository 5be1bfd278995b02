package out

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"algotimer/internal/modules/session/domain"
	sessionout "algotimer/internal/modules/session/port/out"
	"algotimer/internal/platform/markdown"
	"algotimer/internal/platform/slug"
)

const noteSchemaVersion = 1

type noteStage struct {
	Stage   string `yaml:"stage"`
	Seconds int    `yaml:"seconds"`
}

type noteMeta struct {
	SchemaVersion int         `yaml:"schema_version"`
	ID            string      `yaml:"id"`
	Problem       string      `yaml:"problem"`
	StartedAt     string      `yaml:"started_at"`
	EndedAt       string      `yaml:"ended_at,omitempty"`
	TotalSeconds  int         `yaml:"total_seconds"`
	Stages        []noteStage `yaml:"stages"`
	ThoughtSource string      `yaml:"thought_source"`
	AnswerSource  string      `yaml:"answer_source"`
	Tags          []string    `yaml:"tags"`
}

// VaultNoteStore exports each session as a Markdown note with YAML
// frontmatter, laid out by date under sessions/.
type VaultNoteStore struct {
	vaultPath string
}

func NewVaultNoteStore(vaultPath string) sessionout.NoteStore {
	return &VaultNoteStore{vaultPath: vaultPath}
}

func (s *VaultNoteStore) Save(_ context.Context, session domain.Session) (string, error) {
	date := session.StartedAt
	dir := filepath.Join(s.vaultPath, "sessions", date.Format("2006"), date.Format("01"), date.Format("02"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create session dir: %w", err)
	}
	name := fmt.Sprintf("%s-%s.md", date.Format("150405"), slug.Make(session.Problem))
	path := filepath.Join(dir, name)

	meta := noteMeta{
		SchemaVersion: noteSchemaVersion,
		ID:            session.ID,
		Problem:       session.Problem,
		StartedAt:     session.StartedAt.Format(time.RFC3339),
		TotalSeconds:  session.TotalSeconds(),
		ThoughtSource: string(session.SourceOf(domain.StageThinking)),
		AnswerSource:  string(session.SourceOf(domain.StageCoding)),
		Tags:          []string{"algotimer"},
	}
	if !session.EndedAt.IsZero() {
		meta.EndedAt = session.EndedAt.Format(time.RFC3339)
	}
	for _, r := range session.Results {
		meta.Stages = append(meta.Stages, noteStage{Stage: r.Stage.String(), Seconds: r.Seconds})
	}
	rendered, err := markdown.RenderFrontmatter(meta, noteBody(session))
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(rendered), 0o644); err != nil {
		return "", fmt.Errorf("write session note: %w", err)
	}
	return path, nil
}

func noteBody(session domain.Session) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", session.Problem)
	b.WriteString("| Stage | Seconds |\n|---|---|\n")
	for _, r := range session.Results {
		fmt.Fprintf(&b, "| %s %s | %d |\n", r.Stage.Stage().Icon, r.Stage, r.Seconds)
	}
	fmt.Fprintf(&b, "| Total | %d |\n", session.TotalSeconds())
	for _, r := range session.Results {
		stage := r.Stage.Stage()
		if !stage.RequiresInput {
			continue
		}
		heading := stage.Label
		if stage.HasSource {
			heading = fmt.Sprintf("%s (%s)", stage.Label, r.Source)
		}
		fmt.Fprintf(&b, "\n## %s\n\n%s\n", heading, r.TextOrEmpty())
	}
	return b.String()
}
