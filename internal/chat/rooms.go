package chat

import (
	"github.com/relaychat/relay/internal/metrics"
	"github.com/relaychat/relay/internal/models"
)

// RoomInfo is the snapshot delivered to a connection entering a room.
type RoomInfo struct {
	Room     string            `json:"room"`
	Users    []*models.Session `json:"users"`
	Messages []models.Message  `json:"messages"`
}

// PresenceNotice announces a user joining or leaving a room.
type PresenceNotice struct {
	Username  string `json:"username"`
	Timestamp string `json:"timestamp"`
}

// Join registers a session for connID and puts it into roomName, creating the
// room if it does not exist. Joining again under the same connection ID
// overwrites the previous session record.
//
// The joiner receives the room snapshot (last 50 messages) and the list of
// known rooms; the room's other members are notified with user_joined; the
// whole room, joiner included, receives the refreshed member list.
func (c *Coordinator) Join(connID, username, roomName string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sess := &models.Session{
		ID:       connID,
		Username: username,
		Room:     roomName,
		Avatar:   c.avatarFor(username),
	}
	c.sessions[connID] = sess

	r := c.ensureRoomCounted(roomName)
	r.add(connID)

	c.send(connID, EventRoomInfo, RoomInfo{
		Room:     r.name,
		Users:    c.resolveMembers(r),
		Messages: r.tail(replayCount),
	})
	c.broadcastExcept(r, connID, EventUserJoined, PresenceNotice{
		Username:  username,
		Timestamp: c.timestamp(),
	})
	c.broadcast(r, EventUsersUpdate, c.resolveMembers(r))
	c.send(connID, EventRoomsList, c.roomNamesLocked())

	c.log.Info().
		Str("conn_id", connID).
		Str("username", username).
		Str("room", roomName).
		Msg("user joined")
}

// SwitchRoom moves an existing session from its current room to newRoom.
// The old room (if any) gets a refreshed member list; the new room gets the
// join sequence minus the user_joined notice and the rooms list.
func (c *Coordinator) SwitchRoom(connID, newRoom string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sess, ok := c.sessions[connID]
	if !ok {
		return
	}

	if old, ok := c.rooms[sess.Room]; ok {
		old.remove(connID)
		c.broadcast(old, EventUsersUpdate, c.resolveMembers(old))
	}

	sess.Room = newRoom
	r := c.ensureRoomCounted(newRoom)
	r.add(connID)

	c.send(connID, EventRoomInfo, RoomInfo{
		Room:     r.name,
		Users:    c.resolveMembers(r),
		Messages: r.tail(replayCount),
	})
	c.broadcast(r, EventUsersUpdate, c.resolveMembers(r))

	c.log.Info().
		Str("conn_id", connID).
		Str("username", sess.Username).
		Str("room", newRoom).
		Msg("user switched room")
}

// Disconnect removes connID's session and its room membership, notifying the
// remaining members. Safe to call for unknown or already-removed connections.
func (c *Coordinator) Disconnect(connID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sess, ok := c.sessions[connID]
	if !ok {
		return
	}

	if r, ok := c.rooms[sess.Room]; ok {
		r.remove(connID)
		c.broadcast(r, EventUserLeft, PresenceNotice{
			Username:  sess.Username,
			Timestamp: c.timestamp(),
		})
		c.broadcast(r, EventUsersUpdate, c.resolveMembers(r))
	}

	delete(c.sessions, connID)

	c.log.Info().
		Str("conn_id", connID).
		Str("username", sess.Username).
		Msg("user disconnected")
}

// ensureRoomCounted wraps ensureRoom with the rooms-created metric, which
// must not fire for the rooms seeded at startup.
func (c *Coordinator) ensureRoomCounted(name string) *room {
	if _, ok := c.rooms[name]; !ok {
		metrics.RoomsCreated.Inc()
	}
	return c.ensureRoom(name)
}
