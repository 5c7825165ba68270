package models

// MessageKind classifies a room message.
type MessageKind string

const (
	KindText   MessageKind = "text"
	KindEmoji  MessageKind = "emoji"
	KindSystem MessageKind = "system"
)

// Message represents a message posted to a room. Immutable once created.
type Message struct {
	ID        string      `json:"id"`        // ULID
	Username  string      `json:"username"`  // Author display name at send time
	Avatar    string      `json:"avatar"`    // Author avatar at send time
	Body      string      `json:"message"`
	Kind      MessageKind `json:"type"`
	Timestamp string      `json:"timestamp"` // ISO-8601 UTC
	Room      string      `json:"room"`
}
