package pairing

import "github.com/nfrund/pairchat/internal/pubsub"

// SessionConnected is published after a session has been placed.
type SessionConnected struct {
	SessionID string `json:"session_id"`
	ProblemID string `json:"problem_id"`
	Role      Role   `json:"role"`
	Paired    bool   `json:"paired"`
	Active    int    `json:"active"`
}

// SessionsPaired is published when a newcomer is linked to a waiting session.
type SessionsPaired struct {
	ProblemID   string `json:"problem_id"`
	InitiatorID string `json:"initiator_id"`
	ResponderID string `json:"responder_id"`
}

// SessionDisconnected is published after a session's state has been torn down.
type SessionDisconnected struct {
	SessionID string `json:"session_id"`
	ProblemID string `json:"problem_id"`
	PartnerID string `json:"partner_id,omitempty"`
	Active    int    `json:"active"`
}

var (
	EventSessionConnected = pubsub.NewEvent[SessionConnected](
		"pairing.session.connected",
		"A session joined a problem and is waiting or paired",
	)
	EventSessionsPaired = pubsub.NewEvent[SessionsPaired](
		"pairing.session.paired",
		"Two sessions of the same problem were linked as partners",
	)
	EventSessionDisconnected = pubsub.NewEvent[SessionDisconnected](
		"pairing.session.disconnected",
		"A session left its problem and its partner link was cleared",
	)
)
