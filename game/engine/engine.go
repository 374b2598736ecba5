package engine

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/wricardo/gameon-room/protocol"
)

// Engine interprets inbound protocol messages
type Engine interface {
	// Dispatch returns the replies for msg, in the order they must be sent
	Dispatch(msg protocol.Message) ([]protocol.Message, error)

	// Room returns the room being played
	Room() *RoomDescription
}

// Dispatcher implements Engine. It keeps no state between calls apart from
// the room description and the factory's bookmark counter.
type Dispatcher struct {
	room     *RoomDescription
	events   *protocol.Factory
	commands *CommandProcessor
	log      logrus.FieldLogger
}

// NewDispatcher creates a dispatcher for room. The /ping command is added to
// the room's command table.
func NewDispatcher(room *RoomDescription, events *protocol.Factory, log logrus.FieldLogger) *Dispatcher {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if !room.HasCommand(PingCommand) {
		room.AddCommand(PingCommand, PingCommandHelp)
	}

	return &Dispatcher{
		room:     room,
		events:   events,
		commands: NewCommandProcessor(room, events),
		log:      log,
	}
}

// Room returns the room description
func (d *Dispatcher) Room() *RoomDescription {
	return d.room
}

// Dispatch routes msg on its target. Targets the room does not consume,
// including ack, are discarded. A missing body field is returned as an error.
func (d *Dispatcher) Dispatch(msg protocol.Message) ([]protocol.Message, error) {
	switch msg.Target() {
	case protocol.TargetRoomHello:
		// roomHello,<roomId>,{"username":"username","userId":"<userId>","version":1|2}
		body, err := msg.Body()
		if err != nil {
			return nil, err
		}
		userID, username, err := presence(body)
		if err != nil {
			return nil, err
		}
		d.log.WithFields(logrus.Fields{"userId": userID, "username": username}).Debug("Player entered the room")
		return []protocol.Message{
			d.events.LocationMessage(userID, d.room),
			d.events.BroadcastEvent(fmt.Sprintf(HelloAll, username), userID, HelloUser),
		}, nil

	case protocol.TargetRoomJoin:
		// roomJoin,<roomId>,{"username":"username","userId":"<userId>","version":2}
		body, err := msg.Body()
		if err != nil {
			return nil, err
		}
		userID, err := body.String(protocol.FieldUserID)
		if err != nil {
			return nil, err
		}
		d.log.WithField("userId", userID).Debug("Player rejoined the room")
		return []protocol.Message{d.events.LocationMessage(userID, d.room)}, nil

	case protocol.TargetRoomGoodbye:
		// roomGoodbye,<roomId>,{"username":"username","userId":"<userId>"}
		body, err := msg.Body()
		if err != nil {
			return nil, err
		}
		userID, username, err := presence(body)
		if err != nil {
			return nil, err
		}
		d.log.WithFields(logrus.Fields{"userId": userID, "username": username}).Debug("Player left the room")
		return []protocol.Message{
			d.events.BroadcastEvent(fmt.Sprintf(GoodbyeAll, username), userID, GoodbyeUser),
		}, nil

	case protocol.TargetRoomPart:
		// roomPart,<roomId>,{"username":"username","userId":"<userId>"}
		// The player is still in the room, their session just dropped.
		body, err := msg.Body()
		if err != nil {
			return nil, err
		}
		userID, username, err := presence(body)
		if err != nil {
			return nil, err
		}
		d.log.WithFields(logrus.Fields{"userId": userID, "username": username}).Debug("Player disconnected")
		return nil, nil

	case protocol.TargetRoom:
		// room,<roomId>,{"username":"username","userId":"<userId>","content":"<message>"}
		body, err := msg.Body()
		if err != nil {
			return nil, err
		}
		userID, username, err := presence(body)
		if err != nil {
			return nil, err
		}
		content, err := body.String(protocol.FieldContent)
		if err != nil {
			return nil, err
		}

		if strings.HasPrefix(content, "/") {
			reply, err := d.commands.Process(userID, username, content)
			if err != nil {
				return nil, err
			}
			return []protocol.Message{reply}, nil
		}
		return []protocol.Message{d.events.ChatMessage(username, content)}, nil

	default:
		return nil, nil
	}
}

// presence reads the userId and username every player message carries
func presence(body protocol.Body) (string, string, error) {
	userID, err := body.String(protocol.FieldUserID)
	if err != nil {
		return "", "", err
	}
	username, err := body.String(protocol.FieldUsername)
	if err != nil {
		return "", "", err
	}
	return userID, username, nil
}
