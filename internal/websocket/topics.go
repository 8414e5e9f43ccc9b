package websocket

import (
	"errors"

	"github.com/nfrund/pairchat/internal/topicmgr"
)

// Framework topics published by the chat endpoint about the transport itself. The
// pairing outcome of a connection is published separately by the pairing engine.
var (
	// TopicClientReady is published once a client has been upgraded and handed to the engine.
	TopicClientReady = topicmgr.DefineFramework(topicmgr.TopicConfig{
		Name:        "ws.client.ready",
		Description: "Published when a WebSocket client has connected and joined a problem",
		Pattern:     "ws.client.ready",
		Example:     `{"session_id":"3f1c...","problem_id":"two-sum","remote_addr":"10.0.0.7:51234","user_agent":"Mozilla/5.0"}`,
		Metadata: map[string]interface{}{
			"event_type":     "lifecycle",
			"payload_fields": []string{"session_id", "problem_id", "remote_addr", "user_agent"},
		},
	})

	// TopicClientDisconnected is published after a client's read loop has ended.
	TopicClientDisconnected = topicmgr.DefineFramework(topicmgr.TopicConfig{
		Name:        "ws.client.disconnected",
		Description: "Published when a WebSocket client disconnects",
		Pattern:     "ws.client.disconnected",
		Example:     `{"session_id":"3f1c...","problem_id":"two-sum","reason":"client_closed","close_code":1000}`,
		Metadata: map[string]interface{}{
			"event_type":     "lifecycle",
			"payload_fields": []string{"session_id", "problem_id", "reason", "close_code"},
		},
	})
)

// ClientReady is the payload of TopicClientReady.
type ClientReady struct {
	SessionID  string `json:"session_id"`
	ProblemID  string `json:"problem_id"`
	RemoteAddr string `json:"remote_addr"`
	UserAgent  string `json:"user_agent,omitempty"`
}

// ClientDisconnected is the payload of TopicClientDisconnected.
type ClientDisconnected struct {
	SessionID string `json:"session_id"`
	ProblemID string `json:"problem_id"`
	Reason    string `json:"reason"`
	CloseCode int    `json:"close_code"`
}

// Disconnect reasons.
const (
	ReasonClientClosed   = "client_closed"
	ReasonReadError      = "read_error"
	ReasonServerShutdown = "server_shutdown"
)

// RegisterTopics registers the WebSocket framework topics with the default topic manager.
func RegisterTopics() error {
	return RegisterTopicsWithManager(topicmgr.Default())
}

// RegisterTopicsWithManager registers the WebSocket framework topics with manager.
// Topics that are already registered are skipped, so repeated calls succeed.
func RegisterTopicsWithManager(manager *topicmgr.Manager) error {
	for _, topic := range []topicmgr.Topic{TopicClientReady, TopicClientDisconnected} {
		if err := manager.Register(topic); err != nil {
			var topicErr *topicmgr.TopicError
			if errors.As(err, &topicErr) && topicErr.Type == topicmgr.ErrorDuplicateRegistration {
				continue
			}
			return err
		}
	}
	return nil
}
