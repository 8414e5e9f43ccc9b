package pairing

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/nfrund/pairchat/internal/pubsub"
)

// Engine owns the registry and runs the connect, disconnect and relay transitions.
type Engine struct {
	mu        sync.RWMutex
	registry  *Registry
	publisher pubsub.Publisher
	logger    *slog.Logger
}

// Option is a function that configures an Engine.
type Option func(*Engine)

// WithPublisher makes the engine publish lifecycle events to p.
func WithPublisher(p pubsub.Publisher) Option {
	return func(e *Engine) {
		e.publisher = p
	}
}

// WithLogger overrides the engine's logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// NewEngine creates an engine with an empty registry.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		registry: NewRegistry(),
		logger:   slog.Default().With("component", "pairing"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewSession creates a session for problemID that talks through conn. It is not
// registered until Connect is called.
func (e *Engine) NewSession(problemID string, conn Conn) *Session {
	return &Session{
		ID:        uuid.NewString(),
		ProblemID: problemID,
		conn:      conn,
		engine:    e,
		state:     StateConnecting,
	}
}

// Connect registers s under its problem and either pairs it with the leftover waiting
// session or leaves it waiting.
func (e *Engine) Connect(ctx context.Context, s *Session) error {
	e.mu.Lock()

	switch s.state {
	case StateDisconnected:
		e.mu.Unlock()
		return ErrSessionClosed
	case StateWaiting, StatePaired:
		e.mu.Unlock()
		return ErrAlreadyConnected
	}

	problemID := s.ProblemID
	active := e.registry.IncrementActive(problemID)
	e.registry.EnsureTopic(problemID)

	// Existing members hear about the newcomer before matching is decided.
	e.broadcastCount(problemID)

	partner := e.findLeftover(problemID)
	if partner != nil {
		s.role = RoleResponder
		e.link(s, partner)
		e.registry.AppendSession(problemID, s)

		matched := encode(systemNotice(NoticeMatched))
		e.sendBestEffort(partner, matched)
		e.sendBestEffort(s, matched)
	} else {
		s.role = RoleInitiator
		s.state = StateWaiting
		e.registry.AppendSession(problemID, s)
		e.sendBestEffort(s, encode(systemNotice(NoticeSearching)))
	}

	// The newcomer was not in the sequence during the broadcast above.
	e.sendBestEffort(s, encode(CountUpdate{Type: CountUpdateType, Count: active}))

	connected := SessionConnected{
		SessionID: s.ID,
		ProblemID: problemID,
		Role:      s.role,
		Paired:    partner != nil,
		Active:    active,
	}
	e.mu.Unlock()

	e.logger.Info("Session connected",
		"session_id", s.ID,
		"problem_id", problemID,
		"role", connected.Role,
		"paired", connected.Paired,
		"active", active)

	// Events go out after the lock is released.
	e.publish(func() error {
		return pubsub.Publish(ctx, e.publisher, EventSessionConnected, s.ID, connected)
	})
	if partner != nil {
		e.publish(func() error {
			return pubsub.Publish(ctx, e.publisher, EventSessionsPaired, s.ID, SessionsPaired{
				ProblemID:   problemID,
				InitiatorID: partner.ID,
				ResponderID: s.ID,
			})
		})
	}

	return nil
}

// Disconnect removes s from every registry collection, notifies and unlinks its
// partner, and re-broadcasts the count. It runs once; later calls are no-ops.
func (e *Engine) Disconnect(ctx context.Context, s *Session) {
	e.mu.Lock()

	switch s.state {
	case StateDisconnected:
		e.mu.Unlock()
		return
	case StateConnecting:
		// Never registered: nothing to undo, but the session is still spent.
		s.state = StateDisconnected
		e.mu.Unlock()
		return
	}

	problemID := s.ProblemID
	// An emptied sequence is deleted by RemoveSession itself.
	e.registry.RemoveSession(problemID, s)

	var partnerID string
	if partner := s.partner; partner != nil {
		partnerID = partner.ID
		e.sendBestEffort(partner, encode(systemNotice(NoticePartnerLeft)))
		e.unlink(s)
	}

	active := e.registry.DecrementActive(problemID)
	s.state = StateDisconnected
	e.broadcastCount(problemID)

	e.mu.Unlock()

	e.logger.Info("Session disconnected",
		"session_id", s.ID,
		"problem_id", problemID,
		"partner_id", partnerID,
		"active", active)

	e.publish(func() error {
		return pubsub.Publish(ctx, e.publisher, EventSessionDisconnected, s.ID, SessionDisconnected{
			SessionID: s.ID,
			ProblemID: problemID,
			PartnerID: partnerID,
			Active:    active,
		})
	})
}

// Relay parses a raw client frame and sends it, attributed to the sender's role, to
// the partner (if any) and back to the sender. Only ErrMalformedInput and
// ErrSessionClosed are returned; delivery failures are swallowed.
func (e *Engine) Relay(ctx context.Context, s *Session, raw []byte) error {
	text, err := ParseFrame(raw)
	if err != nil {
		return err
	}

	e.mu.RLock()
	state, role, partner := s.state, s.role, s.partner
	e.mu.RUnlock()

	if state == StateConnecting || state == StateDisconnected {
		return ErrSessionClosed
	}

	payload := encode(ChatMessage{Message: text, Username: string(role)})

	// The partner may be tearing down concurrently; a failed forward is expected.
	if partner != nil {
		if err := partner.send(payload); err != nil {
			e.logger.Debug("Dropped relayed message",
				"session_id", s.ID,
				"partner_id", partner.ID,
				"error", fmt.Errorf("%w: %v", ErrPartnerUnreachable, err))
		}
	}

	if err := s.send(payload); err != nil {
		e.logger.Debug("Dropped echo to sender", "session_id", s.ID, "error", err)
	}

	return nil
}

// findLeftover scans the sequence in strides of two for the window holding a single
// entry. The entry is returned only if it is still unpaired: after interleaved
// disconnects an already-paired session can occupy that slot. Callers hold e.mu.
func (e *Engine) findLeftover(problemID string) *Session {
	queue := e.registry.queue(problemID)
	for i := 0; i < len(queue); i += 2 {
		window := queue[i:min(i+2, len(queue))]
		if len(window) != 1 {
			continue
		}
		candidate := window[0]
		if candidate.partner != nil || candidate.state != StateWaiting {
			e.logger.Debug("Leftover slot holds a paired session, not matching",
				"problem_id", problemID,
				"session_id", candidate.ID)
			return nil
		}
		return candidate
	}
	return nil
}

// link makes a and b mutual partners. Callers hold e.mu.
func (e *Engine) link(a, b *Session) {
	a.partner = b
	b.partner = a
	a.state = StatePaired
	b.state = StatePaired
}

// unlink clears s's partner link on both sides. The survivor goes back to waiting and
// can be matched again by the leftover scan. Callers hold e.mu.
func (e *Engine) unlink(s *Session) {
	partner := s.partner
	s.partner = nil
	if partner == nil || partner.partner != s {
		return
	}
	partner.partner = nil
	if partner.state == StatePaired {
		partner.state = StateWaiting
	}
}

func (e *Engine) sendBestEffort(s *Session, payload []byte) {
	if err := s.send(payload); err != nil {
		e.logger.Debug("Send failed", "session_id", s.ID, "error", err)
	}
}

func (e *Engine) publish(fn func() error) {
	if e.publisher == nil {
		return
	}
	if err := fn(); err != nil {
		e.logger.Warn("Failed to publish pairing event", "error", err)
	}
}

// Reset drops all registry state. Sessions created before the reset are orphaned.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.registry.Reset()
}

// ActiveCounts returns the active-session count of every problem with connections.
func (e *Engine) ActiveCounts() map[string]int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.registry.ActiveCounts()
}

// TopicSnapshot is a consistent read of one problem's registry entries.
type TopicSnapshot struct {
	ProblemID  string   `json:"problem_id"`
	Active     int      `json:"active"`
	HasCount   bool     `json:"-"`
	HasQueue   bool     `json:"-"`
	SessionIDs []string `json:"session_ids"`
}

// Snapshot returns the registry view of problemID.
func (e *Engine) Snapshot(problemID string) TopicSnapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()

	queue := e.registry.queue(problemID)
	ids := make([]string, 0, len(queue))
	for _, s := range queue {
		ids = append(ids, s.ID)
	}
	return TopicSnapshot{
		ProblemID:  problemID,
		Active:     e.registry.ActiveCount(problemID),
		HasCount:   e.registry.HasCount(problemID),
		HasQueue:   e.registry.HasQueue(problemID),
		SessionIDs: ids,
	}
}
