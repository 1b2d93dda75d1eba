package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/rs/zerolog/log"

	"github.com/wricardo/tile-merge-game/game/engine"
	"github.com/wricardo/tile-merge-game/game/service"
)

var (
	ErrConfigNotFound = errors.New("configuration not found")
	ErrInvalidConfig  = errors.New("invalid configuration")
)

// Supported file extensions, in lookup order
const (
	extJSON = ".json"
	extHCL  = ".hcl"
)

// DefaultConfigName is the configuration used when none is requested
const DefaultConfigName = "classic"

// hclGameConfig mirrors engine.GameConfig for HCL files. Pointer fields stay
// nil when the attribute is omitted so engine defaults apply.
type hclGameConfig struct {
	Name                 string   `hcl:"name,optional"`
	Description          string   `hcl:"description,optional"`
	GridSize             *int     `hcl:"grid_size,optional"`
	WinThreshold         *int     `hcl:"win_threshold,optional"`
	SpawnFourProbability *float64 `hcl:"spawn_four_probability,optional"`
	ContinueAfterWin     *bool    `hcl:"continue_after_win,optional"`
	Seed                 *int64   `hcl:"seed,optional"`
}

// Manager handles game configuration loading and caching
type Manager struct {
	configDir     string
	defaultConfig *engine.GameConfig
	configs       map[string]*engine.GameConfig
	mu            sync.RWMutex
}

// NewManager creates a new configuration manager
func NewManager(configDir string) (*Manager, error) {
	// Ensure config directory exists
	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("config directory does not exist: %s", configDir)
	}

	m := &Manager{
		configDir: configDir,
		configs:   make(map[string]*engine.GameConfig),
	}

	m.loadDefaultConfig()
	return m, nil
}

// LoadConfig loads a configuration by name. The name may carry a .json or
// .hcl extension; without one, JSON is tried before HCL.
func (m *Manager) LoadConfig(name string) (*engine.GameConfig, error) {
	id := configID(name)

	m.mu.RLock()
	if config, exists := m.configs[id]; exists {
		m.mu.RUnlock()
		return config, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if config, exists := m.configs[id]; exists {
		return config, nil
	}

	config, err := m.readConfig(name)
	if err != nil {
		return nil, err
	}

	m.configs[id] = config
	return config, nil
}

// readConfig locates and decodes a config file. Callers hold m.mu.
func (m *Manager) readConfig(name string) (*engine.GameConfig, error) {
	if strings.ContainsAny(name, `/\`) {
		return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, name)
	}

	candidates := []string{name}
	if ext := filepath.Ext(name); ext != extJSON && ext != extHCL {
		candidates = []string{name + extJSON, name + extHCL}
	}

	for _, filename := range candidates {
		path := filepath.Join(m.configDir, filename)
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		var config *engine.GameConfig
		if filepath.Ext(filename) == extHCL {
			config, err = ParseHCL(data, filename)
		} else {
			config, err = engine.ParseGameConfigJSON(data)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, filename, err)
		}
		if config.Name == "" {
			config.Name = configID(filename)
		}
		return config, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, name)
}

// ParseHCL decodes an HCL config document on top of the engine defaults
// and validates it.
func ParseHCL(src []byte, filename string) (*engine.GameConfig, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %s", filename, diags.Error())
	}

	var raw hclGameConfig
	diags = gohcl.DecodeBody(file.Body, nil, &raw)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %s", filename, diags.Error())
	}

	config := engine.DefaultGameConfig()
	config.Name = raw.Name
	config.Description = raw.Description
	if raw.GridSize != nil {
		config.GridSize = *raw.GridSize
	}
	if raw.WinThreshold != nil {
		config.WinThreshold = *raw.WinThreshold
	}
	if raw.SpawnFourProbability != nil {
		config.SpawnFourProbability = *raw.SpawnFourProbability
	}
	if raw.ContinueAfterWin != nil {
		config.ContinueAfterWin = *raw.ContinueAfterWin
	}
	config.Seed = raw.Seed
	config.ApplyDefaults()

	if err := engine.ValidateGameConfig(config); err != nil {
		return nil, err
	}
	return config, nil
}

// ListConfigs returns information about all available configurations,
// sorted by config ID. Files that fail to load are skipped.
func (m *Manager) ListConfigs() ([]*service.ConfigInfo, error) {
	entries, err := os.ReadDir(m.configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}

	var configs []*service.ConfigInfo
	seen := make(map[string]bool)

	for _, entry := range entries {
		ext := filepath.Ext(entry.Name())
		if entry.IsDir() || (ext != extJSON && ext != extHCL) {
			continue
		}

		id := configID(entry.Name())
		if seen[id] {
			continue
		}

		config, err := m.LoadConfig(id)
		if err != nil {
			log.Warn().Err(err).Str("file", entry.Name()).Msg("skipping config")
			continue
		}
		seen[id] = true

		configs = append(configs, &service.ConfigInfo{
			Filename:             entry.Name(),
			ConfigID:             id,
			Name:                 config.Name,
			Description:          config.Description,
			GridSize:             config.GridSize,
			WinThreshold:         config.WinThreshold,
			SpawnFourProbability: config.SpawnFourProbability,
			ContinueAfterWin:     config.ContinueAfterWin,
		})
	}

	sort.Slice(configs, func(i, j int) bool {
		return configs[i].ConfigID < configs[j].ConfigID
	})

	return configs, nil
}

// GetDefault returns the default configuration
func (m *Manager) GetDefault() *engine.GameConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultConfig
}

// SetDefault sets the default configuration by name
func (m *Manager) SetDefault(name string) error {
	config, err := m.LoadConfig(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultConfig = config
	return nil
}

// RefreshCache drops every cached configuration and reloads the default
func (m *Manager) RefreshCache() {
	m.mu.Lock()
	m.configs = make(map[string]*engine.GameConfig)
	m.mu.Unlock()

	m.loadDefaultConfig()
}

// loadDefaultConfig picks classic, else the first loadable file, else the
// built-in engine default.
func (m *Manager) loadDefaultConfig() {
	config, err := m.LoadConfig(DefaultConfigName)
	if err != nil {
		configs, listErr := m.ListConfigs()
		if listErr == nil && len(configs) > 0 {
			config, err = m.LoadConfig(configs[0].ConfigID)
		}
	}
	if err != nil || config == nil {
		log.Debug().Str("dir", m.configDir).Msg("no usable config file, using built-in classic")
		config = engine.DefaultGameConfig()
	}

	m.mu.Lock()
	m.defaultConfig = config
	m.mu.Unlock()
}

// SaveConfig validates a configuration and writes it as <name>.json
func (m *Manager) SaveConfig(name string, config *engine.GameConfig) error {
	if err := engine.ValidateGameConfig(config); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	id := configID(name)
	if id == "" || strings.ContainsAny(id, `/\`) {
		return fmt.Errorf("%w: bad config name %q", ErrInvalidConfig, name)
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	configPath := filepath.Join(m.configDir, id+extJSON)
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	m.mu.Lock()
	m.configs[id] = config
	m.mu.Unlock()

	return nil
}

// configID strips a known extension from a file or config name
func configID(name string) string {
	switch filepath.Ext(name) {
	case extJSON, extHCL:
		return strings.TrimSuffix(name, filepath.Ext(name))
	}
	return name
}
