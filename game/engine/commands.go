package engine

import (
	"fmt"
	"strings"

	"github.com/wricardo/gameon-room/protocol"
)

// CommandProcessor turns a slash command typed by a player into exactly one
// reply message
type CommandProcessor struct {
	room   *RoomDescription
	events *protocol.Factory
}

// NewCommandProcessor creates a processor for room
func NewCommandProcessor(room *RoomDescription, events *protocol.Factory) *CommandProcessor {
	return &CommandProcessor{room: room, events: events}
}

// Process handles content, which starts with '/'. Unknown commands and
// directions produce an informational reply to the sender, never an error.
func (p *CommandProcessor) Process(userID, username, content string) (protocol.Message, error) {
	// Work mostly off of lower case.
	lower := strings.TrimSpace(strings.ToLower(content))

	firstWord, remainder, hasRemainder := strings.Cut(lower, " ")

	switch firstWord {
	case "/go":
		exitID, ok := ExitID(remainder)
		if !ok {
			if !hasRemainder {
				return p.events.SpecificEvent(userID, UnspecifiedDirection), nil
			}
			return p.events.SpecificEvent(userID, fmt.Sprintf(UnknownDirection, remainder)), nil
		}
		return p.events.ExitMessage(userID, exitID, fmt.Sprintf(GoForth, PrettyDirection(exitID)))

	case "/look", "/examine":
		if !hasRemainder || strings.Contains(remainder, "room") {
			return p.events.LocationMessage(userID, p.room), nil
		}
		return p.events.SpecificEvent(userID, LookUnknown), nil

	case PingCommand:
		if !hasRemainder {
			return p.events.BroadcastEvent(fmt.Sprintf(PingAll, username), userID, PingUser), nil
		}
		return p.events.BroadcastEvent(
			fmt.Sprintf(PingAll, username)+": "+remainder,
			userID, PingUser+" "+remainder), nil

	default:
		return p.events.SpecificEvent(userID, fmt.Sprintf(UnknownCommand, content)), nil
	}
}
