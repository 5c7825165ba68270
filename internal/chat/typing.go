package chat

import "github.com/relaychat/relay/internal/metrics"

// TypingNotice carries the display name of a user starting or stopping
// typing.
type TypingNotice struct {
	Username string `json:"username"`
}

// StartTyping forwards a typing indicator to the room's other members.
func (c *Coordinator) StartTyping(connID, roomName string) {
	c.relayTyping(connID, roomName, EventUserTyping, "start")
}

// StopTyping forwards a stopped-typing indicator to the room's other members.
func (c *Coordinator) StopTyping(connID, roomName string) {
	c.relayTyping(connID, roomName, EventUserStopTyping, "stop")
}

// relayTyping is a stateless forward: the coordinator keeps no record of who
// is typing, so there is nothing to clean up when a typing user disconnects
// or switches rooms.
func (c *Coordinator) relayTyping(connID, roomName, event, state string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sess, ok := c.sessions[connID]
	if !ok {
		return
	}
	r, ok := c.rooms[roomName]
	if !ok {
		return
	}

	c.broadcastExcept(r, connID, event, TypingNotice{Username: sess.Username})
	metrics.TypingEvents.WithLabelValues(state).Inc()
}
