package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"algotimer/internal/modules/session/domain"
	sessionout "algotimer/internal/modules/session/port/out"
)

// AppendResult records the outcome of each mandatory sink separately so a
// retry only repeats what failed.
type AppendResult struct {
	LogErr        error
	TranscriptErr error
}

func (r AppendResult) Failed() bool {
	return r.LogErr != nil || r.TranscriptErr != nil
}

func (r AppendResult) Err() error {
	return errors.Join(r.LogErr, r.TranscriptErr)
}

// LogWriter appends finished sessions to the structured log and the
// transcript. The index and note sinks are optional and best effort.
type LogWriter struct {
	sessions   sessionout.SessionLog
	transcript sessionout.Transcript
	index      sessionout.SessionIndex
	notes      sessionout.NoteStore
	log        *logrus.Entry
}

func NewLogWriter(sessions sessionout.SessionLog, transcript sessionout.Transcript, index sessionout.SessionIndex, notes sessionout.NoteStore, log *logrus.Entry) *LogWriter {
	return &LogWriter{sessions: sessions, transcript: transcript, index: index, notes: notes, log: log}
}

// Append writes session to the structured log, then to the transcript. The
// transcript append is attempted even when the structured log fails.
func (w *LogWriter) Append(ctx context.Context, session domain.Session) AppendResult {
	return w.write(ctx, session, true, true)
}

func (w *LogWriter) Retry(ctx context.Context, session domain.Session, previous AppendResult) AppendResult {
	if !previous.Failed() {
		return previous
	}
	return w.write(ctx, session, previous.LogErr != nil, previous.TranscriptErr != nil)
}

func (w *LogWriter) write(ctx context.Context, session domain.Session, toLog, toTranscript bool) AppendResult {
	var result AppendResult
	if toLog {
		if err := w.sessions.Append(ctx, session); err != nil {
			result.LogErr = fmt.Errorf("append session log: %w", err)
		} else {
			w.project(ctx, session)
		}
	}
	if toTranscript {
		if err := w.transcript.Append(ctx, session); err != nil {
			result.TranscriptErr = fmt.Errorf("append transcript: %w", err)
		}
	}
	return result
}

func (w *LogWriter) project(ctx context.Context, session domain.Session) {
	entry := w.log.WithField("session", session.ID)
	if w.index != nil {
		if err := w.index.Upsert(ctx, session); err != nil {
			entry.WithError(err).Warn("index session; run history reindex to repair")
		}
	}
	if w.notes != nil {
		path, err := w.notes.Save(ctx, session)
		if err != nil {
			entry.WithError(err).Warn("export session note")
			return
		}
		entry.WithField("path", path).Debug("session note written")
	}
}
