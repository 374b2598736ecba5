package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/sirupsen/logrus"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// AllPlayers is the target id and content key addressing every player
const AllPlayers = "*"

// DefaultExitContent is shown when an exit message carries no text
const DefaultExitContent = "Fare thee well"

// Ack is sent to a connection as soon as it opens. It supports protocol
// versions 1 and 2.
var Ack = NewMessage(TargetAck, "", `{"version":[1,2]}`)

// Location is the room information sent in location messages
type Location interface {
	Name() string
	FullName() string
	Description() string
	Commands() map[string]string
	Inventory() []string
}

// Bookmarks is a monotonically increasing message id shared by every
// event-class message of a room.
type Bookmarks struct {
	prefix string
	n      atomic.Uint64
}

// NewBookmarks creates a counter starting at zero
func NewBookmarks(prefix string) *Bookmarks {
	return &Bookmarks{prefix: prefix}
}

// Next advances the counter and renders the new value
func (b *Bookmarks) Next() string {
	return b.prefix + strconv.FormatUint(b.n.Add(1), 10)
}

// Current returns the last value handed out
func (b *Bookmarks) Current() uint64 {
	return b.n.Load()
}

// Factory builds player-bound messages
type Factory struct {
	bookmarks *Bookmarks
	log       logrus.FieldLogger
}

// NewFactory creates a factory with a fresh bookmark counter
func NewFactory(bookmarkPrefix string, log logrus.FieldLogger) *Factory {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Factory{
		bookmarks: NewBookmarks(bookmarkPrefix),
		log:       log,
	}
}

// Bookmarks exposes the factory's counter
func (f *Factory) Bookmarks() *Bookmarks {
	return f.bookmarks
}

type eventPayload struct {
	Type     string       `json:"type"`
	Content  eventContent `json:"content"`
	Bookmark string       `json:"bookmark"`
}

// eventContent maps player ids to text and encodes in insertion order, so
// the general "*" entry always comes first
type eventContent struct {
	entries *orderedmap.OrderedMap[string, string]
}

func newEventContent() eventContent {
	return eventContent{entries: orderedmap.New[string, string]()}
}

// set adds key, or replaces its text in place when already present
func (c eventContent) set(key, text string) {
	c.entries.Set(key, text)
}

func (c eventContent) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for pair := c.entries.Oldest(); pair != nil; pair = pair.Next() {
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		buf.WriteString(marshal(pair.Key))
		buf.WriteByte(':')
		buf.WriteString(marshal(pair.Value))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

type chatPayload struct {
	Type     string `json:"type"`
	Username string `json:"username"`
	Content  string `json:"content"`
	Bookmark string `json:"bookmark"`
}

type locationPayload struct {
	Type        string            `json:"type"`
	Name        string            `json:"name"`
	FullName    string            `json:"fullName"`
	Description string            `json:"description"`
	Commands    map[string]string `json:"commands,omitempty"`
	Inventory   []string          `json:"roomInventory,omitempty"`
}

type exitPayload struct {
	Type    string `json:"type"`
	ExitID  string `json:"exitId"`
	Content string `json:"content"`
}

// SpecificEvent builds an event shown to a single player
//
//	player,<userId>,{"type":"event","content":{"<userId>":"text"},"bookmark":"room-N"}
func (f *Factory) SpecificEvent(userID, text string) Message {
	content := newEventContent()
	content.set(userID, text)

	payload := eventPayload{
		Type:     "event",
		Content:  content,
		Bookmark: f.bookmarks.Next(),
	}
	return NewMessage(TargetPlayer, userID, marshal(payload))
}

// BroadcastEvent builds an event for every player. The general text is
// followed by optional (userId, text) pairs overriding it for those players.
// Entries are encoded in the order given, after the general text. A repeated
// user id keeps its first position with the last text. An uneven pair list is a programming error: it is logged and only the
// general text is sent.
//
//	player,*,{"type":"event","content":{"*":"text","<userId>":"text"},"bookmark":"room-N"}
func (f *Factory) BroadcastEvent(allText string, pairs ...string) Message {
	content := newEventContent()
	content.set(AllPlayers, allText)
	if len(pairs)%2 == 0 {
		for i := 0; i < len(pairs); i += 2 {
			content.set(pairs[i], pairs[i+1])
		}
	} else {
		f.log.WithField("pairs", pairs).
			Warn("Programmer error: use one element as user id, and the next as the message")
	}

	payload := eventPayload{
		Type:     "event",
		Content:  content,
		Bookmark: f.bookmarks.Next(),
	}
	return NewMessage(TargetPlayer, AllPlayers, marshal(payload))
}

// ChatMessage echoes a chat line to every player
//
//	player,*,{"type":"chat","username":"name","content":"text","bookmark":"room-N"}
func (f *Factory) ChatMessage(username, text string) Message {
	payload := chatPayload{
		Type:     "chat",
		Username: username,
		Content:  text,
		Bookmark: f.bookmarks.Next(),
	}
	return NewMessage(TargetPlayer, AllPlayers, marshal(payload))
}

// LocationMessage describes the room to a player. Commands and inventory are
// left out when empty.
func (f *Factory) LocationMessage(userID string, loc Location) Message {
	payload := locationPayload{
		Type:        "location",
		Name:        loc.Name(),
		FullName:    loc.FullName(),
		Description: loc.Description(),
	}
	if commands := loc.Commands(); len(commands) > 0 {
		payload.Commands = commands
	}
	if inventory := loc.Inventory(); len(inventory) > 0 {
		payload.Inventory = inventory
	}
	return NewMessage(TargetPlayer, userID, marshal(payload))
}

// ExitMessage lets a player leave through exitID. An empty content falls back
// to DefaultExitContent. exitID is required.
//
//	playerLocation,<userId>,{"type":"exit","exitId":"n","content":"text"}
func (f *Factory) ExitMessage(userID, exitID, content string) (Message, error) {
	if exitID == "" {
		return Message{}, fmt.Errorf("%w: exitId is required", ErrInvalidArgument)
	}
	if content == "" {
		content = DefaultExitContent
	}

	payload := exitPayload{
		Type:    "exit",
		ExitID:  exitID,
		Content: content,
	}
	return NewMessage(TargetPlayerLocation, userID, marshal(payload)), nil
}

// marshal renders a payload without HTML escaping. Payloads are built from
// strings, maps and slices only, so encoding cannot fail.
func marshal(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		panic(fmt.Sprintf("protocol: encoding %T: %v", v, err))
	}
	return strings.TrimSuffix(buf.String(), "\n")
}
