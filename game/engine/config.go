package engine

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ValidateRoomConfig checks a room configuration before it is turned into a
// room description
func ValidateRoomConfig(config *RoomConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is nil")
	}

	// Validate required fields
	if strings.TrimSpace(config.Name) == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if len(config.Name) > MaxNameLength {
		return fmt.Errorf("config validation: name must be at most %d characters, got %d", MaxNameLength, len(config.Name))
	}
	if strings.ContainsAny(config.Name, ",{") {
		return fmt.Errorf("config validation: name %q must not contain ',' or '{'", config.Name)
	}
	if len(config.Description) > MaxDescriptionLength {
		return fmt.Errorf("config validation: description must be at most %d characters, got %d",
			MaxDescriptionLength, len(config.Description))
	}

	// Validate commands
	for command, help := range config.Commands {
		if !strings.HasPrefix(command, "/") || len(command) < 2 {
			return fmt.Errorf("config validation: command %q must start with '/'", command)
		}
		if strings.ContainsAny(command, " \t") {
			return fmt.Errorf("config validation: command %q must be a single word", command)
		}
		if help == "" {
			return fmt.Errorf("config validation: command %q needs a description", command)
		}
	}

	// Validate inventory
	for i, item := range config.Inventory {
		if strings.TrimSpace(item) == "" {
			return fmt.Errorf("config validation: inventory item %d is empty", i+1)
		}
	}

	// Validate exits
	for exit := range config.Exits {
		if _, ok := exitNames[exit]; !ok {
			return fmt.Errorf("config validation: unknown exit %q", exit)
		}
	}

	return nil
}

// ErrMalformedConfig is returned for room configurations that are not valid
// JSON, or that carry unknown fields when parsed strictly
var ErrMalformedConfig = errors.New("failed to parse config")

// ParseRoomConfig decodes and validates a room configuration. In strict
// mode, fields that are not part of RoomConfig are rejected.
func ParseRoomConfig(data []byte, strict bool) (*RoomConfig, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	if strict {
		decoder.DisallowUnknownFields()
	}

	var config RoomConfig
	if err := decoder.Decode(&config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedConfig, err)
	}
	if _, err := decoder.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: unexpected data after the room object", ErrMalformedConfig)
	}

	if err := ValidateRoomConfig(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

// LoadRoomConfig reads and validates a room configuration file. Read
// failures are returned unwrapped.
func LoadRoomConfig(filename string) (*RoomConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	config, err := ParseRoomConfig(data, false)
	if err != nil {
		return nil, fmt.Errorf("config '%s': %w", filename, err)
	}
	return config, nil
}

// DefaultRoomConfig is the room used when no configuration file is available
func DefaultRoomConfig() *RoomConfig {
	return &RoomConfig{
		Name:        "basicRoom",
		FullName:    "A Basic Room",
		Description: "An empty room with plain walls. Doors lead off in every direction.",
		Exits: map[string]string{
			"n": "A plain wooden door",
			"s": "A plain wooden door",
			"e": "A plain wooden door",
			"w": "A plain wooden door",
		},
	}
}
