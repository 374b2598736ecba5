package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/wricardo/gameon-room/game/engine"
	"github.com/wricardo/gameon-room/game/service"
)

var (
	ErrConfigNotFound = errors.New("configuration not found")
	ErrInvalidConfig  = errors.New("invalid configuration")
)

// DefaultRoom is the configuration name used when none is given
const DefaultRoom = "room"

// Manager handles room configuration loading and caching
type Manager struct {
	configDir     string
	defaultName   string
	defaultConfig *engine.RoomConfig
	configs       map[string]*engine.RoomConfig
	mu            sync.RWMutex
}

// NewManager creates a new configuration manager. The default room is
// loaded from <configDir>/<defaultName>.json, falling back to the built-in
// room when that file is missing.
func NewManager(configDir, defaultName string) (*Manager, error) {
	// Ensure config directory exists
	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("config directory does not exist: %s", configDir)
	}
	if defaultName == "" {
		defaultName = DefaultRoom
	}

	m := &Manager{
		configDir:   configDir,
		defaultName: configName(defaultName),
		configs:     make(map[string]*engine.RoomConfig),
	}

	if err := m.loadDefaultConfig(); err != nil {
		return nil, fmt.Errorf("failed to load default config: %w", err)
	}

	return m, nil
}

// LoadConfig loads a configuration by name, with or without the .json
// extension
func (m *Manager) LoadConfig(name string) (*engine.RoomConfig, error) {
	name = configName(name)

	m.mu.RLock()
	// Check cache first
	if config, exists := m.configs[name]; exists {
		m.mu.RUnlock()
		return config, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadLocked(name)
}

// loadLocked reads name from disk into the cache. m.mu must be held.
func (m *Manager) loadLocked(name string) (*engine.RoomConfig, error) {
	// Double-check after acquiring write lock
	if config, exists := m.configs[name]; exists {
		return config, nil
	}

	config, err := engine.LoadRoomConfig(filepath.Join(m.configDir, name+".json"))
	if err != nil {
		var pathErr *fs.PathError
		switch {
		case errors.Is(err, fs.ErrNotExist):
			return nil, ErrConfigNotFound
		case errors.As(err, &pathErr):
			return nil, fmt.Errorf("failed to read config file: %w", err)
		default:
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	}

	m.configs[name] = config
	return config, nil
}

// ListConfigs returns information about all valid configurations in the
// config directory, sorted by file name
func (m *Manager) ListConfigs() ([]*service.ConfigInfo, error) {
	entries, err := os.ReadDir(m.configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}

	var configs []*service.ConfigInfo

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		name := configName(entry.Name())

		config, err := m.LoadConfig(name)
		if err != nil {
			// Skip invalid configs
			continue
		}

		configs = append(configs, &service.ConfigInfo{
			Filename:    entry.Name(),
			ConfigID:    name,
			Name:        config.Name,
			FullName:    config.FullName,
			Description: config.Description,
			Commands:    len(config.Commands),
			Exits:       len(config.Exits),
		})
	}

	sort.Slice(configs, func(i, j int) bool { return configs[i].Filename < configs[j].Filename })
	return configs, nil
}

// GetDefault returns the default configuration
func (m *Manager) GetDefault() *engine.RoomConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultConfig
}

// RefreshCache drops all cached configurations and reloads the default, so
// edits made on disk show up in the next listing
func (m *Manager) RefreshCache() error {
	m.mu.Lock()
	m.configs = make(map[string]*engine.RoomConfig)
	m.mu.Unlock()

	return m.loadDefaultConfig()
}

// loadDefaultConfig loads the default configuration, falling back to the
// built-in room when the file does not exist. An invalid file is an error.
func (m *Manager) loadDefaultConfig() error {
	config, err := m.LoadConfig(m.defaultName)
	if errors.Is(err, ErrConfigNotFound) {
		config = engine.DefaultRoomConfig()
	} else if err != nil {
		return err
	}

	m.mu.Lock()
	m.defaultConfig = config
	m.mu.Unlock()
	return nil
}

// configName strips the .json extension from name
func configName(name string) string {
	return strings.TrimSuffix(filepath.Base(name), ".json")
}
