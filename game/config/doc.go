// Package config provides room configuration management.
//
// The config package handles:
//   - Loading room descriptions from JSON files
//   - Configuration validation
//   - Default room selection with a built-in fallback
//   - Configuration discovery and listing
//
// Configuration Format:
//
// Room configurations are stored as JSON files in the configs directory:
//
//	{
//	  "name": "basicRoom",
//	  "full_name": "A Basic Room",
//	  "description": "An empty room with plain walls.",
//	  "commands": {"/wave": "Wave at everyone"},
//	  "inventory": ["chair"],
//	  "exits": {"n": "A plain wooden door"}
//	}
//
// Exit keys are n, s, e, w, u or d. Command keys start with '/'.
//
// Usage:
//
//	manager, err := config.NewManager("configs", "room")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Load specific configuration
//	roomConfig, err := manager.LoadConfig("cellar")
//
//	// Get default configuration
//	defaultConfig := manager.GetDefault()
//
//	// List available configurations
//	configs, err := manager.ListConfigs()
package config
