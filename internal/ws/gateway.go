// Package ws bridges WebSocket connections to the chat coordinator. Each
// connection gets a UUIDv7 connection ID, a buffered send queue, and a pair
// of read/write pumps. Inbound frames are JSON envelopes dispatched to
// coordinator operations; the Gateway is also the coordinator's Transport.
package ws

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/relaychat/relay/internal/chat"
	"github.com/relaychat/relay/internal/metrics"
	"github.com/relaychat/relay/internal/models"
)

// Inbound event names accepted from clients.
const (
	eventJoin        = "join"
	eventSendMessage = "send_message"
	eventSendPrivate = "send_private_message"
	eventTypingStart = "typing_start"
	eventTypingStop  = "typing_stop"
	eventSwitchRoom  = "switch_room"
	eventGetPrivate  = "get_private_messages"
)

// envelope is the wire frame in both directions:
// {"event": "...", "data": {...}}.
type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type outEnvelope struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

type joinPayload struct {
	Username string `json:"username"`
	Room     string `json:"room"`
}

type sendMessagePayload struct {
	Room    string             `json:"room"`
	Message string             `json:"message"`
	Type    models.MessageKind `json:"type"`
}

type privateMessagePayload struct {
	TargetUserID string `json:"targetUserId"`
	Message      string `json:"message"`
}

type roomPayload struct {
	Room string `json:"room"`
}

type switchRoomPayload struct {
	NewRoom string `json:"newRoom"`
}

type targetPayload struct {
	TargetUserID string `json:"targetUserId"`
}

// Gateway upgrades HTTP requests to WebSocket connections and relays events
// between clients and the coordinator.
type Gateway struct {
	log      zerolog.Logger
	coord    *chat.Coordinator
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[string]*client
}

// NewGateway creates a Gateway. Attach must be called before serving.
func NewGateway(logger zerolog.Logger) *Gateway {
	return &Gateway{
		log: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Browser clients connect from anywhere.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		clients: make(map[string]*client),
	}
}

// Attach wires the coordinator the gateway forwards inbound events to.
func (g *Gateway) Attach(coord *chat.Coordinator) {
	g.coord = coord
}

// ServeHTTP upgrades the request and starts the connection's pumps.
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.log.Warn().Err(err).Str("remote_addr", r.RemoteAddr).Msg("websocket upgrade failed")
		return
	}

	c := &client{
		id:   uuid.Must(uuid.NewV7()).String(),
		gw:   g,
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}

	g.mu.Lock()
	g.clients[c.id] = c
	g.mu.Unlock()

	metrics.ConnectionsOpened.Inc()
	metrics.ConnectionsActive.Inc()
	g.log.Info().Str("conn_id", c.id).Str("remote_addr", r.RemoteAddr).Msg("connection opened")

	go c.writePump()
	go c.readPump()
}

// Send implements chat.Transport. The read lock is held for the whole push so
// drop cannot close the channel mid-send; a full queue means the consumer is
// too slow to keep, and the connection is dropped instead of blocking the
// coordinator.
func (g *Gateway) Send(connID, event string, payload any) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	c, ok := g.clients[connID]
	if !ok {
		return
	}

	data, err := json.Marshal(outEnvelope{Event: event, Data: payload})
	if err != nil {
		g.log.Error().Err(err).Str("event", event).Msg("failed to marshal outbound event")
		return
	}

	select {
	case c.send <- data:
	default:
		metrics.EventsDropped.WithLabelValues("slow_client").Inc()
		g.log.Warn().Str("conn_id", connID).Msg("send queue full, dropping connection")
		go g.drop(c)
	}
}

// drop tears a connection down exactly once: deregisters it, wakes both
// pumps, and tells the coordinator the connection is gone.
func (g *Gateway) drop(c *client) {
	c.once.Do(func() {
		g.mu.Lock()
		delete(g.clients, c.id)
		g.mu.Unlock()

		close(c.send)
		_ = c.conn.Close()

		g.coord.Disconnect(c.id)

		metrics.ConnectionsClosed.Inc()
		metrics.ConnectionsActive.Dec()
		g.log.Info().Str("conn_id", c.id).Msg("connection closed")
	})
}

// Close disconnects every client. Used during graceful shutdown.
func (g *Gateway) Close() {
	g.mu.RLock()
	clients := make([]*client, 0, len(g.clients))
	for _, c := range g.clients {
		clients = append(clients, c)
	}
	g.mu.RUnlock()

	for _, c := range clients {
		g.drop(c)
	}
}

// dispatch decodes one inbound frame and invokes the matching coordinator
// operation. A panic while handling one event must not take down the read
// loop or corrupt state for other connections.
func (g *Gateway) dispatch(connID string, raw []byte) {
	defer func() {
		if r := recover(); r != nil {
			g.log.Error().Interface("panic", r).Str("conn_id", connID).Msg("recovered from event handler panic")
		}
	}()

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		metrics.EventsDropped.WithLabelValues("bad_payload").Inc()
		g.log.Warn().Err(err).Str("conn_id", connID).Msg("malformed frame")
		return
	}

	switch env.Event {
	case eventJoin:
		var p joinPayload
		if g.decode(connID, env.Data, &p) {
			g.coord.Join(connID, p.Username, p.Room)
		}
	case eventSendMessage:
		var p sendMessagePayload
		if g.decode(connID, env.Data, &p) {
			g.coord.Publish(connID, p.Room, p.Message, p.Type)
		}
	case eventSendPrivate:
		var p privateMessagePayload
		if g.decode(connID, env.Data, &p) {
			g.coord.SendPrivate(connID, p.TargetUserID, p.Message)
		}
	case eventTypingStart:
		var p roomPayload
		if g.decode(connID, env.Data, &p) {
			g.coord.StartTyping(connID, p.Room)
		}
	case eventTypingStop:
		var p roomPayload
		if g.decode(connID, env.Data, &p) {
			g.coord.StopTyping(connID, p.Room)
		}
	case eventSwitchRoom:
		var p switchRoomPayload
		if g.decode(connID, env.Data, &p) {
			g.coord.SwitchRoom(connID, p.NewRoom)
		}
	case eventGetPrivate:
		var p targetPayload
		if g.decode(connID, env.Data, &p) {
			g.coord.GetPrivateMessages(connID, p.TargetUserID)
		}
	default:
		metrics.EventsDropped.WithLabelValues("unknown_event").Inc()
		g.log.Warn().Str("conn_id", connID).Str("event", env.Event).Msg("unknown event")
	}
}

func (g *Gateway) decode(connID string, data json.RawMessage, v any) bool {
	if err := json.Unmarshal(data, v); err != nil {
		metrics.EventsDropped.WithLabelValues("bad_payload").Inc()
		g.log.Warn().Err(err).Str("conn_id", connID).Msg("bad event payload")
		return false
	}
	return true
}
