package service

// RoomInfo describes the room served by this node
type RoomInfo struct {
	Name        string            `json:"name"`
	FullName    string            `json:"full_name"`
	Description string            `json:"description"`
	Commands    map[string]string `json:"commands"`
	Inventory   []string          `json:"inventory"`
	Exits       map[string]string `json:"exits"`
}

// SessionInfo provides information about a connected session
type SessionInfo struct {
	ID   string `json:"id"`
	Open bool   `json:"open"`
}

// ConfigInfo provides information about a room configuration file
type ConfigInfo struct {
	Filename    string `json:"filename"`
	ConfigID    string `json:"config_id"` // The identifier to pass as --room
	Name        string `json:"name"`
	FullName    string `json:"full_name"`
	Description string `json:"description"`
	Commands    int    `json:"commands"`
	Exits       int    `json:"exits"`
}
