package memory

import (
	"context"
	"strings"
	"time"

	"studiodesk/internal/session"
	"studiodesk/pkg/errors"
	"studiodesk/pkg/logger"
)

// DefaultRecentLimit is the number of messages recalled when the caller passes no limit
const DefaultRecentLimit = 5

// Service provides the session memory contract on top of a Repository
type Service struct {
	repo        Repository
	retention   Retention
	recentLimit int
	now         func() time.Time
	tracker     errors.Tracker
	onFailure   func()
	log         *logger.Logger
}

// ServiceConfig configures the memory service
type ServiceConfig struct {
	Retention   Retention
	RecentLimit int
	Now         func() time.Time
	Tracker     errors.Tracker
	// OnAppendFailure is called once per failed append, e.g. to bump a metric
	OnAppendFailure func()
}

// NewService creates a new memory service
func NewService(repo Repository, cfg ServiceConfig) *Service {
	if cfg.RecentLimit <= 0 {
		cfg.RecentLimit = DefaultRecentLimit
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.OnAppendFailure == nil {
		cfg.OnAppendFailure = func() {}
	}

	return &Service{
		repo:        repo,
		retention:   cfg.Retention,
		recentLimit: cfg.RecentLimit,
		now:         cfg.Now,
		tracker:     cfg.Tracker,
		onFailure:   cfg.OnAppendFailure,
		log:         logger.Get().With("component", "memory_service"),
	}
}

// Append records message for the session. It never fails the caller:
// a storage error is logged, counted and reported, and the message is dropped.
func (s *Service) Append(ctx context.Context, sessionID, message string) {
	sessionID = session.Normalize(sessionID)

	entry := Entry{
		SessionID: sessionID,
		Message:   message,
		Timestamp: s.now().UTC(),
	}

	if err := s.repo.Append(ctx, entry); err != nil {
		s.onFailure()
		s.log.Warnf("Failed to append memory for session %s: %v", sessionID, err)
		if s.tracker != nil {
			_ = s.tracker.CaptureError(ctx, errors.Wrap(err, "memory append"), map[string]string{
				"component":  "memory_service",
				"session_id": sessionID,
			})
		}
		return
	}

	if s.retention.MaxPerSession > 0 {
		removed, err := s.repo.Prune(ctx, sessionID, s.retention.MaxPerSession)
		if err != nil {
			s.log.Warnf("Failed to prune memory for session %s: %v", sessionID, err)
		} else if removed > 0 {
			s.log.Debugf("Pruned %d memory entries for session %s", removed, sessionID)
		}
	}
}

// Recent returns up to limit most recent messages of the session in chronological order.
// limit <= 0 uses the configured default. Unknown sessions yield an empty slice.
func (s *Service) Recent(ctx context.Context, sessionID string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = s.recentLimit
	}

	entries, err := s.repo.Recent(ctx, session.Normalize(sessionID), limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read session memory")
	}

	messages := make([]string, 0, len(entries))
	for _, e := range entries {
		messages = append(messages, e.Message)
	}
	return messages, nil
}

// Context joins the recent messages with newlines for prompt building
func (s *Service) Context(ctx context.Context, sessionID string) (string, error) {
	messages, err := s.Recent(ctx, sessionID, 0)
	if err != nil {
		return "", err
	}
	return strings.Join(messages, "\n"), nil
}

// Sweep applies the max-age rule across all sessions. Returns the number of removed entries.
func (s *Service) Sweep(ctx context.Context) (int64, error) {
	if s.retention.MaxAge <= 0 {
		return 0, nil
	}

	cutoff := s.now().UTC().Add(-s.retention.MaxAge)
	removed, err := s.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, errors.Wrap(err, "failed to sweep session memory")
	}
	if removed > 0 {
		s.log.Infof("Swept %d memory entries older than %s", removed, cutoff.Format(time.RFC3339))
	}
	return removed, nil
}
