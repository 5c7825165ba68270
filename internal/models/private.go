package models

// PrivateMessage represents a direct message between two connections.
// Sender and target identity are captured at send time; the record is
// append-only and never rewritten.
type PrivateMessage struct {
	ID             string `json:"id"`
	SenderID       string `json:"senderId"`
	SenderUsername string `json:"senderUsername"`
	SenderAvatar   string `json:"senderAvatar"`
	TargetID       string `json:"targetId"`
	TargetUsername string `json:"targetUsername"`
	Body           string `json:"message"`
	Timestamp      string `json:"timestamp"` // ISO-8601 UTC
}
