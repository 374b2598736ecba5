// Command mediator plays the Game On! mediator against a room. It connects to
// the room's websocket, enters as a player, sends each line given on the
// command line as chat or a command, and prints every frame the room sends
// back.
//
//	mediator --url ws://localhost:9080/room hello "/go north"
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/gameon-room/protocol"
)

// Largest number of received frames held until Collect reads them
const frameBufferSize = 64

// Client is one mediator connection to a room
type Client struct {
	conn   *websocket.Conn
	frames chan string
	done   chan struct{} // closed by Close
	exited chan struct{} // closed when readLoop returns

	closeOnce sync.Once
	closeErr  error

	mu  sync.Mutex
	err error
}

// Dial connects to the room and waits for its ack
func Dial(ctx context.Context, url string) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial room: %w", err)
	}

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("read ack: %w", err)
	}
	ack, err := protocol.Decode(string(data))
	if err != nil || ack.Target() != protocol.TargetAck {
		conn.Close()
		return nil, fmt.Errorf("expected ack, got %q", data)
	}
	conn.SetReadDeadline(time.Time{})

	c := &Client{
		conn:   conn,
		frames: make(chan string, frameBufferSize),
		done:   make(chan struct{}),
		exited: make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

// readLoop queues frames for Collect until the connection fails or Close is
// called. A full queue blocks it, but never past Close.
func (c *Client) readLoop() {
	defer close(c.exited)
	defer close(c.frames)
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if !c.closing() && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.mu.Lock()
				c.err = err
				c.mu.Unlock()
			}
			return
		}

		select {
		case c.frames <- string(data):
		case <-c.done:
			return
		}
	}
}

func (c *Client) closing() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// Err returns why the room closed the connection, if it did so abnormally
func (c *Client) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Send writes one frame to the room
func (c *Client) Send(msg protocol.Message) error {
	return c.conn.WriteMessage(websocket.TextMessage, []byte(msg.Encode()))
}

// Collect returns the frames received until none has arrived for quiet
func (c *Client) Collect(quiet time.Duration) []string {
	var frames []string
	timer := time.NewTimer(quiet)
	defer timer.Stop()

	for {
		select {
		case frame, ok := <-c.frames:
			if !ok {
				return frames
			}
			frames = append(frames, frame)
			if !timer.Stop() {
				<-timer.C
			}
			timer.Reset(quiet)
		case <-timer.C:
			return frames
		}
	}
}

// Close says goodbye at the websocket level and waits for the read loop to
// stop. It is safe to call more than once.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		c.closeErr = c.conn.Close()
		<-c.exited
	})
	return c.closeErr
}

// Player identifies who the mediator is playing as
type Player struct {
	RoomID   string
	UserID   string
	Username string
}

// session enters the room as p, sends lines, and leaves unless stay is set.
// Every frame sent and received is written to out.
func session(ctx context.Context, url string, p Player, lines []string, stay bool, quiet time.Duration, out io.Writer) error {
	client, err := Dial(ctx, url)
	if err != nil {
		return err
	}
	defer client.Close()

	exchange := func(msg protocol.Message) error {
		fmt.Fprintf(out, "> %s\n", msg.Encode())
		if err := client.Send(msg); err != nil {
			return fmt.Errorf("send: %w", err)
		}
		for _, frame := range client.Collect(quiet) {
			fmt.Fprintf(out, "< %s\n", frame)
		}
		return client.Err()
	}

	if err := exchange(protocol.RoomHello(p.RoomID, p.UserID, p.Username, 2)); err != nil {
		return err
	}
	for _, line := range lines {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := exchange(protocol.RoomMessage(p.RoomID, p.UserID, p.Username, line)); err != nil {
			return err
		}
	}
	if stay {
		return exchange(protocol.RoomPart(p.RoomID, p.UserID, p.Username))
	}
	return exchange(protocol.RoomGoodbye(p.RoomID, p.UserID, p.Username))
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:      "mediator",
		Usage:     "Drive a Game On! room as the mediator would",
		ArgsUsage: "[line ...]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Value: "ws://localhost:9080/room", Usage: "Room websocket URL"},
			&cli.StringFlag{Name: "room-id", Value: "basicRoom", Usage: "Room id put in each frame"},
			&cli.StringFlag{Name: "user-id", Value: "mediator-1", Usage: "Player id"},
			&cli.StringFlag{Name: "username", Value: "Mediator", Usage: "Player name"},
			&cli.BoolFlag{Name: "stay", Usage: "Drop the connection (roomPart) instead of leaving (roomGoodbye)"},
			&cli.DurationFlag{Name: "quiet", Value: 300 * time.Millisecond, Usage: "How long to wait for more replies"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			logrus.WithField("url", cmd.String("url")).Info("Connecting to room")
			player := Player{
				RoomID:   cmd.String("room-id"),
				UserID:   cmd.String("user-id"),
				Username: cmd.String("username"),
			}
			return session(ctx, cmd.String("url"), player, cmd.Args().Slice(), cmd.Bool("stay"), cmd.Duration("quiet"), os.Stdout)
		},
	}
}

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil && !errors.Is(err, context.Canceled) {
		logrus.Fatal(err)
	}
}
