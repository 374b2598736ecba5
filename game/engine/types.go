package engine

// Replies shown to players
const (
	LookUnknown          = "It doesn't look interesting"
	UnknownCommand       = "This room is a basic model. It doesn't understand `%s`"
	UnspecifiedDirection = "You didn't say which way you wanted to go."
	UnknownDirection     = "There isn't a door in that direction (%s)"
	GoForth              = "You head %s"
	HelloAll             = "%s is here"
	HelloUser            = "Welcome!"
	GoodbyeAll           = "%s has gone"
	GoodbyeUser          = "Bye!"
	PingAll              = "Ping! Pong sent to %s"
	PingUser             = "Ping! Pong!"
)

// Built-in command the room advertises in its location message
const (
	PingCommand     = "/ping"
	PingCommandHelp = "Does this work?"
)

// Validation constants
const (
	MaxNameLength        = 64
	MaxDescriptionLength = 4096
)

// RoomConfig is the JSON form of a room description
type RoomConfig struct {
	Name        string            `json:"name"`
	FullName    string            `json:"full_name"`
	Description string            `json:"description"`
	Commands    map[string]string `json:"commands,omitempty"`
	Inventory   []string          `json:"inventory,omitempty"`
	Exits       map[string]string `json:"exits,omitempty"`
}
