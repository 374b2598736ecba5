package engine

// exitNames maps exit ids to the direction shown to players. Up and down are
// valid exits for a room description but /go only handles the compass.
var exitNames = map[string]string{
	"n": "North",
	"s": "South",
	"e": "East",
	"w": "West",
	"u": "Up",
	"d": "Down",
}

// ExitID turns a lower case direction (/go n or /go north) into an exit id.
// The compass directions are always valid; the map service decides where
// they lead.
func ExitID(direction string) (string, bool) {
	switch direction {
	case "north", "south", "east", "west":
		return direction[:1], true
	case "n", "s", "e", "w":
		return direction, true
	default:
		return "", false
	}
}

// PrettyDirection returns the display name for an exit id
func PrettyDirection(exitID string) string {
	if name, ok := exitNames[exitID]; ok {
		return name
	}
	return exitID
}
