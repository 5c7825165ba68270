// Package chat implements the messaging coordinator: the session registry,
// the room directory with bounded history, the private conversation store,
// and the typing relay. All state is process-local and owned exclusively by
// the Coordinator; collaborators reach it only through the operations defined
// here.
package chat

import (
	"net/url"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/relaychat/relay/internal/models"
)

// Outbound event names delivered through the Transport.
const (
	EventRoomInfo       = "room_info"
	EventUsersUpdate    = "users_update"
	EventRoomsList      = "rooms_list"
	EventNewMessage     = "new_message"
	EventUserJoined     = "user_joined"
	EventUserLeft       = "user_left"
	EventNewPrivate     = "new_private_message"
	EventPrivateHistory = "private_messages_history"
	EventUserTyping     = "user_typing"
	EventUserStopTyping = "user_stop_typing"
)

const (
	// historyCap bounds how many messages a room retains.
	historyCap = 100
	// replayCount is how many retained messages a joining connection
	// receives. Independent of historyCap.
	replayCount = 50
)

// timeLayout renders ISO-8601 UTC timestamps with millisecond precision,
// the format browser clients feed straight into Date().
const timeLayout = "2006-01-02T15:04:05.000Z"

// Transport delivers an outbound event to a single connection. The
// coordinator resolves room membership to concrete connection IDs itself and
// never addresses a group. Send must not block; delivery is best-effort and
// failures are the transport's problem.
type Transport interface {
	Send(connID, event string, payload any)
}

// Config carries the coordinator's startup parameters.
type Config struct {
	DefaultRooms  []string // Rooms seeded at startup
	AvatarBaseURL string   // Avatar URLs are derived as base?seed=username
}

// Coordinator owns the three state tables. Every exported operation takes the
// mutex for its full duration, so each inbound event's mutations and outbound
// sends complete before the next event is handled.
type Coordinator struct {
	log       zerolog.Logger
	transport Transport

	mu        sync.Mutex
	sessions  map[string]*models.Session
	rooms     map[string]*room
	roomOrder []string
	private   map[pairKey][]models.PrivateMessage

	// Injectable for tests.
	newID     func() string
	now       func() time.Time
	avatarFor func(username string) string
}

// New creates a Coordinator and seeds the default room set.
func New(cfg Config, transport Transport, logger zerolog.Logger) *Coordinator {
	c := &Coordinator{
		log:       logger,
		transport: transport,
		sessions:  make(map[string]*models.Session),
		rooms:     make(map[string]*room),
		private:   make(map[pairKey][]models.PrivateMessage),
		newID:     func() string { return ulid.Make().String() },
		now:       time.Now,
	}
	base := cfg.AvatarBaseURL
	c.avatarFor = func(username string) string {
		return base + "?seed=" + url.QueryEscape(username)
	}
	for _, name := range cfg.DefaultRooms {
		c.ensureRoom(name)
	}
	return c
}

// room is a named group of sessions with a bounded recent-message history.
// Rooms are created lazily and never destroyed, even when empty.
type room struct {
	name    string
	members []string // connection IDs in join order
	history []models.Message
}

func (r *room) add(connID string) {
	for _, id := range r.members {
		if id == connID {
			return
		}
	}
	r.members = append(r.members, connID)
}

func (r *room) remove(connID string) {
	for i, id := range r.members {
		if id == connID {
			r.members = append(r.members[:i], r.members[i+1:]...)
			return
		}
	}
}

// tail returns a copy of the last n history entries.
func (r *room) tail(n int) []models.Message {
	start := len(r.history) - n
	if start < 0 {
		start = 0
	}
	out := make([]models.Message, len(r.history)-start)
	copy(out, r.history[start:])
	return out
}

func (c *Coordinator) ensureRoom(name string) *room {
	if r, ok := c.rooms[name]; ok {
		return r
	}
	r := &room{name: name}
	c.rooms[name] = r
	c.roomOrder = append(c.roomOrder, name)
	return r
}

func (c *Coordinator) timestamp() string {
	return c.now().UTC().Format(timeLayout)
}

// resolveMembers maps a room's membership to live session records, skipping
// any connection ID without a registered session.
func (c *Coordinator) resolveMembers(r *room) []*models.Session {
	users := make([]*models.Session, 0, len(r.members))
	for _, id := range r.members {
		if sess, ok := c.sessions[id]; ok {
			users = append(users, sess)
		}
	}
	return users
}

func (c *Coordinator) send(connID, event string, payload any) {
	c.transport.Send(connID, event, payload)
}

func (c *Coordinator) broadcast(r *room, event string, payload any) {
	for _, id := range r.members {
		c.transport.Send(id, event, payload)
	}
}

func (c *Coordinator) broadcastExcept(r *room, exceptID, event string, payload any) {
	for _, id := range r.members {
		if id == exceptID {
			continue
		}
		c.transport.Send(id, event, payload)
	}
}

func (c *Coordinator) roomNamesLocked() []string {
	names := make([]string, len(c.roomOrder))
	copy(names, c.roomOrder)
	return names
}

// RoomNames returns all known room names in creation order.
func (c *Coordinator) RoomNames() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.roomNamesLocked()
}

// RoomSummary describes one room for the HTTP surface.
type RoomSummary struct {
	Name     string `json:"name"`
	Members  int    `json:"members"`
	Messages int    `json:"messages"`
}

// Rooms returns a summary of every room in creation order.
func (c *Coordinator) Rooms() []RoomSummary {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]RoomSummary, 0, len(c.roomOrder))
	for _, name := range c.roomOrder {
		r := c.rooms[name]
		out = append(out, RoomSummary{
			Name:     r.name,
			Members:  len(r.members),
			Messages: len(r.history),
		})
	}
	return out
}

// Stats aggregates coordinator state for the stats endpoint.
type Stats struct {
	Sessions             int `json:"sessions"`
	Rooms                int `json:"rooms"`
	RoomMessages         int `json:"room_messages"`
	PrivateConversations int `json:"private_conversations"`
	PrivateMessages      int `json:"private_messages"`
}

// Snapshot returns current aggregate counts.
func (c *Coordinator) Snapshot() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := Stats{
		Sessions: len(c.sessions),
		Rooms:    len(c.rooms),
	}
	for _, r := range c.rooms {
		s.RoomMessages += len(r.history)
	}
	s.PrivateConversations = len(c.private)
	for _, msgs := range c.private {
		s.PrivateMessages += len(msgs)
	}
	return s
}
