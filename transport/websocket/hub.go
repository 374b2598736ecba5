package websocket

import (
	"context"
	"errors"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/wricardo/gameon-room/game/service"
	"github.com/wricardo/gameon-room/game/session"
	"github.com/wricardo/gameon-room/protocol"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 64 * 1024

	// Frames queued per client before sends start failing.
	sendBufferSize = 256

	// Inbound messages queued before Submit blocks.
	inboundBufferSize = 256

	// Longest close reason a control frame can carry.
	maxCloseReason = 123
)

var (
	ErrHubStopped     = errors.New("hub stopped")
	ErrSendBufferFull = errors.New("send buffer full")
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The mediator connects from wherever it is deployed
		return true
	},
}

// Mirror receives a copy of every outbound frame
type Mirror interface {
	Mirror(frame string) error
}

// Option configures a Hub
type Option func(*Hub)

// WithMirror copies every published frame to m
func WithMirror(m Mirror) Option {
	return func(h *Hub) {
		h.mirror = m
	}
}

// Hub connects websocket clients to the room. Inbound messages from every
// client go through a single queue and are handled one at a time, so replies
// leave in the order their requests arrived.
type Hub struct {
	service  service.RoomService
	registry *session.Registry
	mirror   Mirror
	log      logrus.FieldLogger

	// Inbound messages from clients and other sources
	inbound chan protocol.Message

	// Closed when Run returns
	done chan struct{}
}

// NewHub creates a new WebSocket hub
func NewHub(svc service.RoomService, registry *session.Registry, log logrus.FieldLogger, opts ...Option) *Hub {
	if log == nil {
		log = logrus.StandardLogger()
	}
	h := &Hub{
		service:  svc,
		registry: registry,
		log:      log,
		inbound:  make(chan protocol.Message, inboundBufferSize),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run handles inbound messages until ctx is cancelled, then closes every
// connected client
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case msg := <-h.inbound:
			h.handle(ctx, msg)
		}
	}
}

// Submit queues msg for handling. It fails once the hub has stopped.
func (h *Hub) Submit(msg protocol.Message) error {
	select {
	case <-h.done:
		return ErrHubStopped
	default:
	}

	select {
	case h.inbound <- msg:
		return nil
	case <-h.done:
		return ErrHubStopped
	}
}

// Publish sends msg to every connected session and to the mirror, if any.
// It returns the number of sessions that accepted the frame.
func (h *Hub) Publish(msg protocol.Message) int {
	frame := msg.Encode()
	delivered := h.registry.Broadcast(frame)

	if h.mirror != nil {
		if err := h.mirror.Mirror(frame); err != nil {
			h.log.WithError(err).Warn("Failed to mirror frame")
		}
	}
	return delivered
}

// ServeWS handles WebSocket requests from the mediator
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	select {
	case <-h.done:
		http.Error(w, "room is shutting down", http.StatusServiceUnavailable)
		return
	default:
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	client := newClient(h, conn)

	// The ack is queued before the client can see any broadcast
	client.send <- protocol.Ack.Encode()
	h.registry.Add(client)

	client.log.WithFields(logrus.Fields{
		"remote":   r.RemoteAddr,
		"sessions": h.registry.Count(),
	}).Debug("A new connection has been made to the room")

	// Start client goroutines
	go client.writePump()
	go client.readPump()
}

// handle dispatches one inbound message and publishes the replies
func (h *Hub) handle(ctx context.Context, msg protocol.Message) {
	replies, err := h.service.Handle(ctx, msg)
	if err != nil {
		h.log.WithError(err).WithField("frame", msg.Encode()).Warn("Dropping message")
		return
	}

	for _, reply := range replies {
		h.Publish(reply)
	}
}

// closeAll closes every client still registered
func (h *Hub) closeAll() {
	for _, s := range h.registry.List() {
		if c, ok := s.(*Client); ok {
			c.closeWith(websocket.CloseGoingAway, "Room shutting down")
		}
	}
}

// trimReason shortens reason to fit in a close frame without splitting a
// UTF-8 sequence
func trimReason(reason string) string {
	if len(reason) <= maxCloseReason {
		return reason
	}
	cut := maxCloseReason
	for cut > 0 && !utf8.RuneStart(reason[cut]) {
		cut--
	}
	return reason[:cut]
}
