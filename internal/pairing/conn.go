package pairing

// Conn is the outbound half of a client connection as seen by the engine.
//
// Send must not block on network I/O: the engine calls it while holding its lock.
// Implementations queue the payload and report failure when the connection is gone or
// its queue is full.
type Conn interface {
	Send(payload []byte) error
	Close() error
}
