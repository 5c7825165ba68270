package chat

import (
	"github.com/relaychat/relay/internal/metrics"
	"github.com/relaychat/relay/internal/models"
)

// Publish posts a message to a room on behalf of connID and fans it out to
// every member, the sender included. Silently ignored when connID has no
// session.
//
// Unknown rooms are not created here, unlike Join: the message is fanned out
// to the (empty) subscriber set but never stored.
func (c *Coordinator) Publish(connID, roomName, body string, kind models.MessageKind) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sess, ok := c.sessions[connID]
	if !ok {
		return
	}
	if kind == "" {
		kind = models.KindText
	}

	msg := models.Message{
		ID:        c.newID(),
		Username:  sess.Username,
		Avatar:    sess.Avatar,
		Body:      body,
		Kind:      kind,
		Timestamp: c.timestamp(),
		Room:      roomName,
	}

	if r, ok := c.rooms[roomName]; ok {
		r.history = append(r.history, msg)
		if len(r.history) > historyCap {
			r.history = r.history[len(r.history)-historyCap:]
		}
		c.broadcast(r, EventNewMessage, msg)
	}

	metrics.MessagesPublished.WithLabelValues(string(kind)).Inc()
}
