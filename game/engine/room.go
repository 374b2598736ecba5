package engine

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// RoomDescription is the static description of the room. It is filled in
// while the room is set up and only read afterwards.
type RoomDescription struct {
	name        string
	fullName    string
	description string
	commands    map[string]string
	inventory   []string
	exits       map[string]string
}

// NewRoomDescription builds a room description from a validated configuration
func NewRoomDescription(config *RoomConfig) (*RoomDescription, error) {
	if err := ValidateRoomConfig(config); err != nil {
		return nil, err
	}

	fullName := config.FullName
	if fullName == "" {
		fullName = config.Name
	}

	room := &RoomDescription{
		name:        config.Name,
		fullName:    fullName,
		description: config.Description,
		commands:    make(map[string]string, len(config.Commands)),
		inventory:   slices.Clone(config.Inventory),
		exits:       make(map[string]string, len(config.Exits)),
	}
	for command, help := range config.Commands {
		room.commands[strings.ToLower(command)] = help
	}
	maps.Copy(room.exits, config.Exits)

	return room, nil
}

// AddCommand registers a custom command shown in the location message
func (r *RoomDescription) AddCommand(command, help string) {
	r.commands[strings.ToLower(command)] = help
}

// Name returns the short room name
func (r *RoomDescription) Name() string { return r.name }

// FullName returns the descriptive room name
func (r *RoomDescription) FullName() string { return r.fullName }

// Description returns the long room description
func (r *RoomDescription) Description() string { return r.description }

// Commands returns a copy of the custom command table
func (r *RoomDescription) Commands() map[string]string { return maps.Clone(r.commands) }

// Inventory returns a copy of the room inventory
func (r *RoomDescription) Inventory() []string { return slices.Clone(r.inventory) }

// Exits returns a copy of the exit descriptions
func (r *RoomDescription) Exits() map[string]string { return maps.Clone(r.exits) }

// HasCommand reports whether the room advertises command
func (r *RoomDescription) HasCommand(command string) bool {
	_, ok := r.commands[strings.ToLower(command)]
	return ok
}

func (r *RoomDescription) String() string {
	return fmt.Sprintf("room[name=%s, fullName=%s, commands=%d, inventory=%d, exits=%d]",
		r.name, r.fullName, len(r.commands), len(r.inventory), len(r.exits))
}
