// Package stats keeps cumulative pairing counters fed by the engine's lifecycle events.
package stats

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/nfrund/pairchat/internal/pairing"
	"github.com/nfrund/pairchat/internal/pubsub"
)

// ProblemStats are the counters of a single problem.
type ProblemStats struct {
	ProblemID    string    `json:"problem_id"`
	Connections  int       `json:"connections"`
	Pairings     int       `json:"pairings"`
	Disconnects  int       `json:"disconnects"`
	PeakActive   int       `json:"peak_active"`
	LastActivity time.Time `json:"last_activity"`
}

// Totals are counters summed over every problem.
type Totals struct {
	Connections int `json:"connections"`
	Pairings    int `json:"pairings"`
	Disconnects int `json:"disconnects"`
}

// Snapshot is a point-in-time copy of the service's counters.
type Snapshot struct {
	Totals   Totals         `json:"totals"`
	Problems []ProblemStats `json:"problems"`
}

type Service struct {
	mu       sync.RWMutex
	problems map[string]*ProblemStats
	totals   Totals

	subscriber pubsub.Subscriber
	logger     *slog.Logger
	now        func() time.Time
}

// Option is a function that configures a Service.
type Option func(*Service)

// WithClock overrides the time source used for LastActivity.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a stats service that will read events from subscriber once
// Start is called.
func NewService(subscriber pubsub.Subscriber, opts ...Option) *Service {
	svc := &Service{
		problems:   make(map[string]*ProblemStats),
		subscriber: subscriber,
		logger:     slog.Default().With("service", "stats"),
		now:        func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Start subscribes to the pairing lifecycle events. Subscriptions end when ctx is
// canceled or the subscriber is closed.
func (s *Service) Start(ctx context.Context) error {
	if err := pubsub.Subscribe(ctx, s.subscriber, pairing.EventSessionConnected, s.handleConnected); err != nil {
		return fmt.Errorf("subscribe %s: %w", pairing.EventSessionConnected.Name(), err)
	}
	if err := pubsub.Subscribe(ctx, s.subscriber, pairing.EventSessionsPaired, s.handlePaired); err != nil {
		return fmt.Errorf("subscribe %s: %w", pairing.EventSessionsPaired.Name(), err)
	}
	if err := pubsub.Subscribe(ctx, s.subscriber, pairing.EventSessionDisconnected, s.handleDisconnected); err != nil {
		return fmt.Errorf("subscribe %s: %w", pairing.EventSessionDisconnected.Name(), err)
	}

	s.logger.Info("Stats service subscribed to pairing events")
	return nil
}

func (s *Service) handleConnected(_ context.Context, ev pairing.SessionConnected) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.problem(ev.ProblemID)
	p.Connections++
	p.PeakActive = max(p.PeakActive, ev.Active)
	s.totals.Connections++
	return nil
}

func (s *Service) handlePaired(_ context.Context, ev pairing.SessionsPaired) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.problem(ev.ProblemID).Pairings++
	s.totals.Pairings++
	return nil
}

func (s *Service) handleDisconnected(_ context.Context, ev pairing.SessionDisconnected) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.problem(ev.ProblemID).Disconnects++
	s.totals.Disconnects++
	return nil
}

// problem returns the counters for id, creating them on first use and stamping the
// activity time. Callers hold s.mu.
func (s *Service) problem(id string) *ProblemStats {
	p, ok := s.problems[id]
	if !ok {
		p = &ProblemStats{ProblemID: id}
		s.problems[id] = p
	}
	p.LastActivity = s.now()
	return p
}

// Snapshot returns a copy of every counter, problems sorted by id.
func (s *Service) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := slices.Sorted(maps.Keys(s.problems))

	problems := make([]ProblemStats, 0, len(ids))
	for _, id := range ids {
		problems = append(problems, *s.problems[id])
	}
	return Snapshot{Totals: s.totals, Problems: problems}
}

// Problem returns the counters of one problem.
func (s *Service) Problem(id string) (ProblemStats, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.problems[id]
	if !ok {
		return ProblemStats{}, false
	}
	return *p, true
}
