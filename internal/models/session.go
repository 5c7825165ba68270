package models

// Session is the live state bound to one open connection. It doubles as the
// wire representation used in users_update and room_info payloads, so the
// field names mirror what browser clients expect.
type Session struct {
	ID       string `json:"id"`       // Connection ID (UUIDv7)
	Username string `json:"username"`
	Room     string `json:"room"`     // Name of the room the session is currently in
	Avatar   string `json:"avatar"`   // Derived avatar URL
}
