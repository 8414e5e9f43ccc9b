package pairing

// State is a session's position in its lifecycle.
type State int

const (
	StateConnecting State = iota
	StateWaiting
	StatePaired
	StateDisconnected
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateWaiting:
		return "waiting"
	case StatePaired:
		return "paired"
	case StateDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// Session is the server-side state of one client connection within a problem.
//
// role, state and partner are written by the engine while it holds its lock, and the
// accessors below read them under the same lock. Partner links change only in link and
// unlink.
type Session struct {
	ID        string
	ProblemID string

	conn   Conn
	engine *Engine

	role    Role
	state   State
	partner *Session
}

// Role returns the label assigned when the session connected.
func (s *Session) Role() Role {
	s.engine.mu.RLock()
	defer s.engine.mu.RUnlock()
	return s.role
}

// State returns the session's current lifecycle state.
func (s *Session) State() State {
	s.engine.mu.RLock()
	defer s.engine.mu.RUnlock()
	return s.state
}

// Partner returns the matched partner, or nil.
func (s *Session) Partner() *Session {
	s.engine.mu.RLock()
	defer s.engine.mu.RUnlock()
	return s.partner
}

// send delivers a payload to this session's connection.
func (s *Session) send(payload []byte) error {
	return s.conn.Send(payload)
}
