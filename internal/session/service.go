package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/user-management/internal/core/events"
)

type Service struct {
	repo      RepositoryAPI
	tokenTTL  time.Duration
	publisher events.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(repo RepositoryAPI, tokenTTL time.Duration, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		tokenTTL:  tokenTTL,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// RecordLogin appends an open entry for the account stamped at loggedInAt,
// normally the token's issue instant. A zero time means now.
func (s *Service) RecordLogin(ctx context.Context, email, token string, loggedInAt time.Time) (*Entry, error) {
	if loggedInAt.IsZero() {
		loggedInAt = s.now()
	}
	entry := &Entry{
		AccountEmail: email,
		LoggedInAt:   loggedInAt,
		Token:        token,
	}

	row := ToDataModel(entry)
	if err := s.repo.Create(ctx, row); err != nil {
		s.logger.Error("failed to record login", "error", err, "email", email)
		return nil, fmt.Errorf("record login: %w", err)
	}
	entry.ID = row.ID

	s.publish(ctx, events.NewSessionEvent(events.EventTypeSessionOpened, email, entry.ID))
	return entry, nil
}

// RecordLogout closes the most recent entry for the email. A missing or
// already closed entry is not an error.
func (s *Service) RecordLogout(ctx context.Context, email string) (*Entry, error) {
	row, err := s.repo.LatestByEmail(ctx, email)
	if err != nil {
		s.logger.Error("failed to load latest session", "error", err, "email", email)
		return nil, fmt.Errorf("load latest session: %w", err)
	}
	if row == nil {
		s.logger.Debug("logout without session entry", "email", email)
		return nil, nil
	}

	entry := FromDataModel(row)
	if !entry.IsOpen() {
		return entry, nil
	}

	at := s.now()
	closed, err := s.repo.CloseIfOpen(ctx, entry.ID, at)
	if err != nil {
		s.logger.Error("failed to record logout", "error", err, "email", email, "entry_id", entry.ID)
		return nil, fmt.Errorf("record logout: %w", err)
	}
	if closed {
		entry.LoggedOutAt = &at
		s.publish(ctx, events.NewSessionEvent(events.EventTypeSessionClosed, email, entry.ID))
	}

	return entry, nil
}

// ReconcileExpired closes every open entry whose token has lapsed, stamping
// the logout at login + token lifetime.
func (s *Service) ReconcileExpired(ctx context.Context) (int, error) {
	n, err := s.repo.CloseExpired(ctx, s.tokenTTL, s.now())
	if err != nil {
		return 0, fmt.Errorf("reconcile expired sessions: %w", err)
	}

	if n > 0 {
		s.logger.Info("closed expired sessions", "count", n)
		s.publish(ctx, events.NewSessionsReconciledEvent(n))
	}
	return int(n), nil
}

// History lists the ledger entries of one account, newest first.
func (s *Service) History(ctx context.Context, email string) ([]*Entry, error) {
	rows, err := s.repo.ListByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	out := make([]*Entry, 0, len(rows))
	for _, r := range rows {
		out = append(out, FromDataModel(r))
	}
	return out, nil
}

func (s *Service) publish(ctx context.Context, ev events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.logger.Warn("failed to publish session event", "event_type", ev.EventType(), "error", err)
	}
}
