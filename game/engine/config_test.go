package engine

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestValidateGameConfig(t *testing.T) {
	tests := []struct {
		name    string
		config  *GameConfig
		wantErr bool
	}{
		{"nil", nil, true},
		{"default", DefaultGameConfig(), false},
		{"smallest grid", &GameConfig{GridSize: 2, WinThreshold: 8}, false},
		{"largest grid", &GameConfig{GridSize: 8, WinThreshold: 65536}, false},
		{"zero grid", &GameConfig{GridSize: 0, WinThreshold: 2048}, true},
		{"threshold 2048 odd", &GameConfig{GridSize: 4, WinThreshold: 2047}, true},
		{"threshold 4", &GameConfig{GridSize: 4, WinThreshold: 4}, true},
		{"certain fours", &GameConfig{GridSize: 4, WinThreshold: 2048, SpawnFourProbability: 1}, false},
		{"negative probability", &GameConfig{GridSize: 4, WinThreshold: 2048, SpawnFourProbability: -0.1}, true},
		{"NaN probability", &GameConfig{GridSize: 4, WinThreshold: 2048, SpawnFourProbability: math.NaN()}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateGameConfig(tt.config)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateGameConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestParseGameConfigJSON(t *testing.T) {
	config, err := ParseGameConfigJSON([]byte(`{"name":"tiny","grid_size":3,"win_threshold":256}`))
	if err != nil {
		t.Fatalf("ParseGameConfigJSON: %v", err)
	}
	if config.Name != "tiny" || config.GridSize != 3 || config.WinThreshold != 256 {
		t.Errorf("unexpected config: %+v", config)
	}
	if config.SpawnFourProbability != DefaultSpawnFourProbability {
		t.Errorf("omitted spawn probability = %g, want default %g", config.SpawnFourProbability, DefaultSpawnFourProbability)
	}

	config, err = ParseGameConfigJSON([]byte(`{"name":"twos","spawn_four_probability":0,"seed":11}`))
	if err != nil {
		t.Fatalf("ParseGameConfigJSON: %v", err)
	}
	if config.SpawnFourProbability != 0 {
		t.Errorf("explicit zero probability replaced by %g", config.SpawnFourProbability)
	}
	if config.GridSize != DefaultGridSize || config.WinThreshold != DefaultWinThreshold {
		t.Errorf("defaults not applied: %+v", config)
	}
	if config.Seed == nil || *config.Seed != 11 {
		t.Errorf("seed not decoded: %v", config.Seed)
	}

	if _, err := ParseGameConfigJSON([]byte(`{"grid_size":12}`)); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for grid_size 12, got %v", err)
	}
	if _, err := ParseGameConfigJSON([]byte(`{not json`)); err == nil {
		t.Error("expected error for malformed JSON")
	}
}

func TestLoadGameConfig_ConfigDir(t *testing.T) {
	dir := t.TempDir()
	data := []byte(`{"name":"custom","grid_size":5,"win_threshold":4096}`)
	if err := os.WriteFile(filepath.Join(dir, "custom.json"), data, 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("CONFIG_DIR", dir)
	config, err := LoadGameConfig("configs/custom.json")
	if err != nil {
		t.Fatalf("LoadGameConfig: %v", err)
	}
	if config.GridSize != 5 {
		t.Errorf("GridSize = %d, want 5", config.GridSize)
	}

	if _, err := LoadGameConfig("configs/missing.json"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestWithSeed(t *testing.T) {
	base := DefaultGameConfig()
	seeded := base.WithSeed(5)
	if base.Seed != nil {
		t.Error("WithSeed modified the receiver")
	}
	if seeded.Seed == nil || *seeded.Seed != 5 {
		t.Errorf("seed = %v, want 5", seeded.Seed)
	}
}
