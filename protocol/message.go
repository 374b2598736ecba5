package protocol

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Target is the routing discriminator that prefixes every frame
type Target string

const (
	// TargetAck is the protocol acknowledgement sent when a connection opens
	TargetAck Target = "ack"
	// TargetPlayer addresses one player, or all players with targetId "*"
	TargetPlayer Target = "player"
	// TargetPlayerLocation tells a player they may leave through an exit
	TargetPlayerLocation Target = "playerLocation"
	// TargetRoom carries chat and commands sent to the room
	TargetRoom Target = "room"
	// TargetRoomHello announces a player entering the room
	TargetRoomHello Target = "roomHello"
	// TargetRoomJoin announces a player reconnecting to the room
	TargetRoomJoin Target = "roomJoin"
	// TargetRoomPart announces a player disconnecting without leaving
	TargetRoomPart Target = "roomPart"
	// TargetRoomGoodbye announces a player leaving the room
	TargetRoomGoodbye Target = "roomGoodbye"
)

// Body field names shared by inbound and outbound payloads
const (
	FieldUserID   = "userId"
	FieldUsername = "username"
	FieldContent  = "content"
	FieldVersion  = "version"
)

var targets = map[string]Target{
	string(TargetAck):            TargetAck,
	string(TargetPlayer):         TargetPlayer,
	string(TargetPlayerLocation): TargetPlayerLocation,
	string(TargetRoom):           TargetRoom,
	string(TargetRoomHello):      TargetRoomHello,
	string(TargetRoomJoin):       TargetRoomJoin,
	string(TargetRoomPart):       TargetRoomPart,
	string(TargetRoomGoodbye):    TargetRoomGoodbye,
}

// ParseTarget looks up a target literal. Matching is exact and case-sensitive.
func ParseTarget(s string) (Target, bool) {
	t, ok := targets[s]
	return t, ok
}

// Message is one protocol frame. The payload is kept verbatim and is only
// parsed when a body accessor is called.
type Message struct {
	target   Target
	targetID string
	payload  string
}

// NewMessage builds a message from its three parts
func NewMessage(target Target, targetID, payload string) Message {
	return Message{target: target, targetID: targetID, payload: payload}
}

// Target returns the routing target
func (m Message) Target() Target { return m.target }

// TargetID returns the room id, user id or "*"; empty when absent
func (m Message) TargetID() string { return m.targetID }

// Payload returns the raw JSON payload
func (m Message) Payload() string { return m.payload }

// Decode parses a raw frame.
//
// Only commas that occur before the first '{' split the routing prefix, so
// commas inside the JSON payload are left alone. The first token is the
// target, the second (if any) the target id, and everything after the last
// consumed comma is the payload.
func Decode(raw string) (Message, error) {
	brace := strings.IndexByte(raw, '{')

	var tokens []string
	start := 0
	comma := strings.IndexByte(raw, ',')
	for comma > 0 && comma < brace {
		tokens = append(tokens, strings.TrimSpace(raw[start:comma]))
		start = comma + 1
		next := strings.IndexByte(raw[start:], ',')
		if next < 0 {
			break
		}
		comma = start + next
	}

	if len(tokens) == 0 {
		return Message{}, &DecodeError{Frame: raw, Reason: "badly formatted payload, unable to find target and targetId"}
	}

	target, ok := ParseTarget(tokens[0])
	if !ok {
		return Message{}, &DecodeError{Frame: raw, Reason: fmt.Sprintf("unknown target %q", tokens[0])}
	}

	m := Message{
		target:  target,
		payload: strings.TrimSpace(raw[start:]),
	}
	if len(tokens) > 1 {
		m.targetID = tokens[1]
	}
	return m, nil
}

// Encode renders the message as a wire frame
func (m Message) Encode() string {
	var b strings.Builder
	b.Grow(len(m.target) + len(m.targetID) + len(m.payload) + 2)
	b.WriteString(string(m.target))
	b.WriteByte(',')
	if m.targetID != "" {
		b.WriteString(m.targetID)
		b.WriteByte(',')
	}
	b.WriteString(m.payload)
	return b.String()
}

// String implements fmt.Stringer
func (m Message) String() string {
	return m.Encode()
}

// Body is a parsed JSON payload
type Body map[string]any

// Body parses the payload as a JSON object
func (m Message) Body() (Body, error) {
	var body Body
	if err := json.Unmarshal([]byte(m.payload), &body); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}
	if body == nil {
		return nil, fmt.Errorf("%w: payload is not an object", ErrMalformedBody)
	}
	return body, nil
}

// String returns a string field, failing when it is absent or not a string
func (b Body) String(key string) (string, error) {
	v, ok := b[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrMissingField, key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s is %T, not a string", ErrMissingField, key, v)
	}
	return s, nil
}
