package pairing

import "encoding/json"

// Role is the label a session's chat lines are attributed with.
type Role string

const (
	// RoleInitiator is assigned to a session that found nobody to pair with.
	RoleInitiator Role = "User 1"
	// RoleResponder is assigned to a session that was matched on arrival.
	RoleResponder Role = "User 2"
)

// SystemUsername attributes server-generated notices.
const SystemUsername = "System"

// CountUpdateType is the type tag of the online-user count message.
const CountUpdateType = "online_users"

// System notices.
const (
	NoticeSearching   = "Matching buddy..."
	NoticeMatched     = "Partner matched! You can start chatting now."
	NoticePartnerLeft = "Your partner has disconnected."
)

// ChatMessage is a chat line or a system notice.
type ChatMessage struct {
	Message  string `json:"message"`
	Username string `json:"username"`
}

// CountUpdate carries the number of connected sessions for a problem.
type CountUpdate struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

func systemNotice(text string) ChatMessage {
	return ChatMessage{Message: text, Username: SystemUsername}
}

func encode(v any) []byte {
	// Both payload types are plain string/int structs and cannot fail to marshal.
	b, _ := json.Marshal(v)
	return b
}
