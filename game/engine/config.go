package engine

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
)

// GameConfig represents the rules of a game, loaded from JSON or HCL files
type GameConfig struct {
	Name                 string  `json:"name"`
	Description          string  `json:"description"`
	GridSize             int     `json:"grid_size"`
	WinThreshold         int     `json:"win_threshold"`
	SpawnFourProbability float64 `json:"spawn_four_probability"`
	ContinueAfterWin     bool    `json:"continue_after_win,omitempty"`

	// Seed makes the spawn sequence reproducible. Nil means a
	// non-deterministic source.
	Seed *int64 `json:"seed,omitempty"`
}

// DefaultGameConfig returns the classic 4x4 game to 2048.
func DefaultGameConfig() *GameConfig {
	return &GameConfig{
		Name:                 "classic",
		Description:          "Classic 4x4 board, reach the 2048 tile",
		GridSize:             DefaultGridSize,
		WinThreshold:         DefaultWinThreshold,
		SpawnFourProbability: DefaultSpawnFourProbability,
	}
}

// ApplyDefaults fills a zero grid size and win threshold with the documented
// defaults. A zero spawn probability is meaningful (only 2s spawn) and kept.
func (c *GameConfig) ApplyDefaults() {
	if c.GridSize == 0 {
		c.GridSize = DefaultGridSize
	}
	if c.WinThreshold == 0 {
		c.WinThreshold = DefaultWinThreshold
	}
}

// WithSeed returns a copy of the config using the given seed.
func (c *GameConfig) WithSeed(seed int64) *GameConfig {
	cp := *c
	cp.Seed = &seed
	return &cp
}

// ValidateGameConfig validates a game configuration for correctness and playability
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}

	if config.GridSize < MinGridSize || config.GridSize > MaxGridSize {
		return fmt.Errorf("%w: grid_size must be between %d and %d, got %d",
			ErrInvalidConfig, MinGridSize, MaxGridSize, config.GridSize)
	}

	if !IsPowerOfTwo(config.WinThreshold) {
		return fmt.Errorf("%w: win_threshold must be a power of two, got %d", ErrInvalidConfig, config.WinThreshold)
	}
	// Spawned tiles are 2 or 4, so anything lower could be won without a move
	if config.WinThreshold < MinWinThreshold {
		return fmt.Errorf("%w: win_threshold must be at least %d, got %d",
			ErrInvalidConfig, MinWinThreshold, config.WinThreshold)
	}

	// Written as a positive range so NaN is rejected
	if p := config.SpawnFourProbability; !(p >= 0 && p <= 1) {
		return fmt.Errorf("%w: spawn_four_probability must be within [0,1], got %g",
			ErrInvalidConfig, config.SpawnFourProbability)
	}

	return nil
}

// LoadGameConfig loads a game configuration from a JSON file
func LoadGameConfig(filename string) (*GameConfig, error) {
	configPath := filename
	if configDir := os.Getenv("CONFIG_DIR"); configDir != "" {
		if strings.HasPrefix(filename, "configs/") {
			configPath = filepath.Join(configDir, strings.TrimPrefix(filename, "configs/"))
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	return ParseGameConfigJSON(data)
}

// ParseGameConfigJSON decodes a JSON config on top of the classic defaults, so
// omitted fields keep their default values.
func ParseGameConfigJSON(data []byte) (*GameConfig, error) {
	config := DefaultGameConfig()
	config.Name = ""
	config.Description = ""
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	config.ApplyDefaults()

	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

// newRandomSource returns a seeded PCG source when the config carries a seed,
// otherwise one seeded from the runtime's entropy.
func newRandomSource(config *GameConfig) *rand.Rand {
	if config.Seed != nil {
		seed := uint64(*config.Seed)
		return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}
