package natsbus

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
	"github.com/wricardo/gameon-room/protocol"
)

// DefaultSubject is the subject prefix used when none is configured
const DefaultSubject = "gameon.room"

var ErrInvalidSubject = errors.New("invalid subject")

// Submitter accepts decoded inbound messages
type Submitter interface {
	Submit(msg protocol.Message) error
}

// Bridge connects a room to a NATS server. Outbound frames are published on
// <subject>.out and frames published on <subject>.in are fed to the room.
type Bridge struct {
	conn    *nats.Conn
	subject string
	log     logrus.FieldLogger
}

// Connect dials the NATS server at url
func Connect(url, subject string, log logrus.FieldLogger, opts ...nats.Option) (*Bridge, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	subject = strings.TrimSpace(subject)
	if subject == "" {
		subject = DefaultSubject
	}
	if strings.ContainsAny(subject, " \t*>") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSubject, subject)
	}

	opts = append([]nats.Option{nats.Name("gameon-room")}, opts...)
	conn, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("connecting to nats at %s: %w", url, err)
	}

	log.WithFields(logrus.Fields{"url": conn.ConnectedUrl(), "subject": subject}).Info("NATS bridge connected")
	return &Bridge{conn: conn, subject: subject, log: log}, nil
}

// OutSubject is the subject outbound frames are published on
func (b *Bridge) OutSubject() string {
	return b.subject + ".out"
}

// InSubject is the subject inbound frames are read from
func (b *Bridge) InSubject() string {
	return b.subject + ".in"
}

// Mirror publishes frame on the outbound subject
func (b *Bridge) Mirror(frame string) error {
	return b.conn.Publish(b.OutSubject(), []byte(frame))
}

// Subscribe calls handler with every frame published on the inbound subject.
// The subscription is active on the server when Subscribe returns.
func (b *Bridge) Subscribe(handler func(frame string)) (func(), error) {
	sub, err := b.conn.Subscribe(b.InSubject(), func(msg *nats.Msg) {
		handler(string(msg.Data))
	})
	if err != nil {
		return nil, fmt.Errorf("subscribing to %s: %w", b.InSubject(), err)
	}
	if err := b.conn.Flush(); err != nil {
		sub.Unsubscribe()
		return nil, fmt.Errorf("flushing subscription to %s: %w", b.InSubject(), err)
	}
	return func() { sub.Unsubscribe() }, nil
}

// Forward decodes inbound frames and submits them to s. Frames that cannot
// be decoded are logged and dropped.
func (b *Bridge) Forward(s Submitter) (func(), error) {
	return b.Subscribe(func(frame string) {
		msg, err := protocol.Decode(frame)
		if err != nil {
			b.log.WithError(err).Warn("Dropping undecodable frame from NATS")
			return
		}
		if err := s.Submit(msg); err != nil {
			b.log.WithError(err).WithField("target", msg.Target()).Warn("Failed to submit frame from NATS")
		}
	})
}

// Close drains subscriptions and closes the connection
func (b *Bridge) Close() {
	if err := b.conn.Drain(); err != nil {
		b.log.WithError(err).Debug("Failed to drain NATS connection")
		b.conn.Close()
	}
}
