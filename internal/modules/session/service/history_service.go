package service

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"algotimer/internal/modules/session/domain"
	sessionout "algotimer/internal/modules/session/port/out"
)

// HistoryService answers questions about past sessions. The structured log
// is the source of truth; the index is a projection that Reindex rebuilds.
type HistoryService struct {
	sessions   sessionout.SessionLog
	transcript sessionout.Transcript
	index      sessionout.SessionIndex
	log        *logrus.Entry
}

func NewHistoryService(sessions sessionout.SessionLog, transcript sessionout.Transcript, index sessionout.SessionIndex, log *logrus.Entry) *HistoryService {
	return &HistoryService{sessions: sessions, transcript: transcript, index: index, log: log}
}

func (s *HistoryService) List(ctx context.Context) ([]domain.Session, error) {
	return s.sessions.List(ctx)
}

// Stats reads the index, or summarizes the log directly when no index is
// configured.
func (s *HistoryService) Stats(ctx context.Context) (domain.Stats, error) {
	if s.index == nil {
		sessions, err := s.sessions.List(ctx)
		if err != nil {
			return domain.Stats{}, err
		}
		return domain.Summarize(sessions), nil
	}
	return s.index.Stats(ctx)
}

func (s *HistoryService) Reindex(ctx context.Context) (int, error) {
	if s.index == nil {
		return 0, fmt.Errorf("session index is not configured")
	}
	sessions, err := s.sessions.List(ctx)
	if err != nil {
		return 0, err
	}
	if err := s.index.Reset(ctx); err != nil {
		return 0, err
	}
	for _, session := range sessions {
		if err := s.index.Upsert(ctx, session); err != nil {
			return 0, fmt.Errorf("index session %s: %w", session.ID, err)
		}
	}
	s.log.WithField("sessions", len(sessions)).Info("session index rebuilt")
	return len(sessions), nil
}

func (s *HistoryService) Transcript(ctx context.Context, w io.Writer, follow bool) error {
	return s.transcript.Stream(ctx, w, follow)
}
