package websocket

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/wricardo/gameon-room/game/session"
	"github.com/wricardo/gameon-room/logging"
	"github.com/wricardo/gameon-room/protocol"
)

// Client is one websocket connection from the mediator. It implements
// session.Session.
type Client struct {
	id   string
	hub  *Hub
	conn *websocket.Conn
	log  logrus.FieldLogger

	// Outbound frames. Never closed; done signals shutdown instead.
	send chan string

	done      chan struct{}
	closed    atomic.Bool
	closeOnce sync.Once
}

func newClient(hub *Hub, conn *websocket.Conn) *Client {
	c := &Client{
		id:   uuid.NewString(),
		hub:  hub,
		conn: conn,
		send: make(chan string, sendBufferSize),
		done: make(chan struct{}),
	}
	c.log = logging.For(hub.log, c).WithField("session", c.id)
	return c
}

// ID returns the connection's unique id
func (c *Client) ID() string {
	return c.id
}

// IsOpen reports whether the connection is still usable
func (c *Client) IsOpen() bool {
	return !c.closed.Load()
}

// Send queues frame for delivery without blocking
func (c *Client) Send(frame string) error {
	if c.closed.Load() {
		return session.ErrSessionClosed
	}

	select {
	case c.send <- frame:
		return nil
	case <-c.done:
		return session.ErrSessionClosed
	default:
		return ErrSendBufferFull
	}
}

// closeWith removes the client from the registry and closes the connection.
// A close frame with code and reason is sent first unless code is zero.
func (c *Client) closeWith(code int, reason string) {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		close(c.done)
		c.hub.registry.Remove(c)

		if code != 0 {
			msg := websocket.FormatCloseMessage(code, trimReason(reason))
			if err := c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait)); err != nil {
				c.log.WithError(err).Debug("Failed to send close frame")
			}
		}
		c.conn.Close()

		c.log.WithFields(logrus.Fields{
			"code":     code,
			"reason":   reason,
			"sessions": c.hub.registry.Count(),
		}).Debug("A connection to the room has been closed")
	})
}

// readPump pumps frames from the WebSocket connection to the hub
func (c *Client) readPump() {
	defer c.closeWith(0, "")

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.log.WithError(err).Info("A problem occurred on connection")
			}
			return
		}

		msg, err := protocol.Decode(string(data))
		if err != nil {
			c.log.WithError(err).Info("Closing connection after undecodable frame")
			c.closeWith(websocket.CloseInternalServerErr, err.Error())
			return
		}

		if err := c.hub.Submit(msg); err != nil {
			c.closeWith(websocket.CloseGoingAway, "Room shutting down")
			return
		}
	}
}

// writePump pumps frames from the hub to the WebSocket connection, one
// text message per frame
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case frame := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
				c.closeWith(0, "")
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.closeWith(0, "")
				return
			}

		case <-c.done:
			return
		}
	}
}
