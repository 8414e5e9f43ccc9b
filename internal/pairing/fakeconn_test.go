package pairing

import (
	"encoding/json"
	"errors"
	"sync"
)

var errFakeSend = errors.New("fake send failure")

// fakeConn records every payload sent to it.
type fakeConn struct {
	mu       sync.Mutex
	payloads [][]byte
	failSend bool
	closed   bool
}

func (c *fakeConn) Send(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failSend || c.closed {
		return errFakeSend
	}
	c.payloads = append(c.payloads, payload)
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) setFailing(fail bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failSend = fail
}

// chats returns the chat and notice messages in the order received.
func (c *fakeConn) chats() []ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []ChatMessage
	for _, p := range c.payloads {
		var probe map[string]any
		if err := json.Unmarshal(p, &probe); err != nil {
			continue
		}
		if _, ok := probe["type"]; ok {
			continue
		}
		var m ChatMessage
		if err := json.Unmarshal(p, &m); err == nil {
			out = append(out, m)
		}
	}
	return out
}

// counts returns the online-user counts in the order received.
func (c *fakeConn) counts() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []int
	for _, p := range c.payloads {
		var u CountUpdate
		if err := json.Unmarshal(p, &u); err != nil || u.Type != CountUpdateType {
			continue
		}
		out = append(out, u.Count)
	}
	return out
}

func (c *fakeConn) lastCount() int {
	counts := c.counts()
	if len(counts) == 0 {
		return -1
	}
	return counts[len(counts)-1]
}

func (c *fakeConn) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.payloads = nil
}
