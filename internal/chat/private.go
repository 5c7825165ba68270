package chat

import (
	"github.com/relaychat/relay/internal/metrics"
	"github.com/relaychat/relay/internal/models"
)

// pairKey identifies a two-party conversation independent of who initiated
// it. Invariant: a <= b.
type pairKey struct {
	a, b string
}

func canonicalPair(x, y string) pairKey {
	if x > y {
		x, y = y, x
	}
	return pairKey{a: x, b: y}
}

// PrivateHistory is the reply to a get_private_messages request.
type PrivateHistory struct {
	TargetUserID string                  `json:"targetUserId"`
	Messages     []models.PrivateMessage `json:"messages"`
}

// SendPrivate appends a direct message to the sender/target conversation and
// delivers it to both connections. Silently ignored unless both ends have a
// registered session. The conversation list is unbounded.
func (c *Coordinator) SendPrivate(senderID, targetID, body string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sender, ok := c.sessions[senderID]
	if !ok {
		return
	}
	target, ok := c.sessions[targetID]
	if !ok {
		return
	}

	pm := models.PrivateMessage{
		ID:             c.newID(),
		SenderID:       senderID,
		SenderUsername: sender.Username,
		SenderAvatar:   sender.Avatar,
		TargetID:       targetID,
		TargetUsername: target.Username,
		Body:           body,
		Timestamp:      c.timestamp(),
	}

	key := canonicalPair(senderID, targetID)
	c.private[key] = append(c.private[key], pm)

	c.send(senderID, EventNewPrivate, pm)
	c.send(targetID, EventNewPrivate, pm)

	metrics.PrivateMessagesSent.Inc()
}

// GetPrivateMessages delivers the full stored conversation between the
// requester and targetID to the requester only. An empty list is delivered
// when the two have never exchanged messages.
func (c *Coordinator) GetPrivateMessages(requesterID, targetID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stored := c.private[canonicalPair(requesterID, targetID)]
	msgs := make([]models.PrivateMessage, len(stored))
	copy(msgs, stored)

	c.send(requesterID, EventPrivateHistory, PrivateHistory{
		TargetUserID: targetID,
		Messages:     msgs,
	})
}
