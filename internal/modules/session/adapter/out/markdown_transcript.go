package out

import (
	"context"
	"errors"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"path/filepath"
	"strings"

	"github.com/hpcloud/tail"

	"algotimer/internal/modules/session/domain"
	sessionout "algotimer/internal/modules/session/port/out"
)

// MarkdownTranscript appends one human-readable block per session. The file
// is only ever appended to and is never parsed back.
type MarkdownTranscript struct {
	path string
}

func NewMarkdownTranscript(path string) sessionout.Transcript {
	return &MarkdownTranscript{path: path}
}

func (t *MarkdownTranscript) Append(_ context.Context, session domain.Session) error {
	if err := os.MkdirAll(filepath.Dir(t.path), 0o755); err != nil {
		return fmt.Errorf("create transcript dir: %w", err)
	}
	file, err := os.OpenFile(t.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open transcript: %w", err)
	}
	if _, err := file.WriteString(FormatBlock(session)); err != nil {
		file.Close()
		return fmt.Errorf("write transcript: %w", err)
	}
	return file.Close()
}

// Stream copies the transcript to w. With follow it keeps waiting for new
// blocks until ctx is done.
func (t *MarkdownTranscript) Stream(ctx context.Context, w io.Writer, follow bool) error {
	if !follow {
		if _, err := os.Stat(t.path); errors.Is(err, os.ErrNotExist) {
			return nil
		}
	}
	tl, err := tail.TailFile(t.path, tail.Config{
		Follow:    follow,
		ReOpen:    follow,
		MustExist: !follow,
		Location:  &tail.SeekInfo{Offset: 0, Whence: io.SeekStart},
		Logger:    stdlog.New(io.Discard, "", 0),
	})
	if err != nil {
		return fmt.Errorf("open transcript: %w", err)
	}
	defer tl.Cleanup()
	for {
		select {
		case <-ctx.Done():
			return tl.Stop()
		case line, ok := <-tl.Lines:
			if !ok {
				return tl.Wait()
			}
			if line.Err != nil {
				_ = tl.Stop()
				return fmt.Errorf("read transcript: %w", line.Err)
			}
			if _, err := fmt.Fprintln(w, line.Text); err != nil {
				_ = tl.Stop()
				return err
			}
		}
	}
}

// FormatBlock renders the transcript block for a session.
func FormatBlock(s domain.Session) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n", s.StartedAt.Format(timestampLayout))
	fmt.Fprintf(&b, "**Problem**: %s\n\n", s.Problem)
	for _, r := range s.Results {
		fmt.Fprintf(&b, "- %s: %d sec\n", r.Stage, r.Seconds)
	}
	fmt.Fprintf(&b, "- Total Time: %d sec\n", s.TotalSeconds())

	thought, _ := s.Result(domain.StageThinking)
	answer, _ := s.Result(domain.StageCoding)
	notes, _ := s.Result(domain.StageReviewing)
	fmt.Fprintf(&b, "\n**Idea (%s)**:\n\n%s\n", s.SourceOf(domain.StageThinking), thought.TextOrEmpty())
	fmt.Fprintf(&b, "\n**Answer (%s)**:\n\n%s\n", s.SourceOf(domain.StageCoding), answer.TextOrEmpty())
	if text := notes.TextOrEmpty(); strings.TrimSpace(text) != "" {
		fmt.Fprintf(&b, "\n**Notes:**\n\n%s\n", text)
	}
	b.WriteString("\n---\n")
	return b.String()
}
