package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/wricardo/tile-merge-game/game/engine"
)

func createValidConfig() *engine.GameConfig {
	return &engine.GameConfig{
		Name:                 "Test Config",
		Description:          "Test configuration",
		GridSize:             4,
		WinThreshold:         512,
		SpawnFourProbability: 0.1,
	}
}

func writeConfigFile(t *testing.T, dir, name string, config *engine.GameConfig) {
	t.Helper()
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		t.Fatalf("Failed to marshal config: %v", err)
	}

	filename := name
	if filepath.Ext(filename) == "" {
		filename = name + ".json"
	}

	if err := os.WriteFile(filepath.Join(dir, filename), data, 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
}

func writeRawFile(t *testing.T, dir, filename, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, filename), []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", filename, err)
	}
}

func (m *Manager) count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.configs)
}

func TestNewManager(t *testing.T) {
	t.Run("valid directory", func(t *testing.T) {
		dir := t.TempDir()
		classic := createValidConfig()
		classic.Name = "Classic"
		writeConfigFile(t, dir, "classic", classic)

		manager, err := NewManager(dir)
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}
		if got := manager.GetDefault().Name; got != "Classic" {
			t.Errorf("Expected default 'Classic', got '%s'", got)
		}
	})

	t.Run("non-existent directory", func(t *testing.T) {
		_, err := NewManager("/non/existent/path")
		if err == nil {
			t.Error("Expected error for non-existent directory")
		}
	})

	t.Run("empty directory falls back to built-in", func(t *testing.T) {
		manager, err := NewManager(t.TempDir())
		if err != nil {
			t.Fatalf("NewManager should succeed without config files, got error: %v", err)
		}

		def := manager.GetDefault()
		if def == nil {
			t.Fatal("Expected default config to be available")
		}
		if def.GridSize != engine.DefaultGridSize || def.WinThreshold != engine.DefaultWinThreshold {
			t.Errorf("Expected built-in classic rules, got %+v", def)
		}
	})

	t.Run("first config when classic is missing", func(t *testing.T) {
		dir := t.TempDir()
		alpha := createValidConfig()
		alpha.Name = "Alpha"
		writeConfigFile(t, dir, "alpha", alpha)
		zeta := createValidConfig()
		zeta.Name = "Zeta"
		writeConfigFile(t, dir, "zeta", zeta)

		manager, err := NewManager(dir)
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}
		if got := manager.GetDefault().Name; got != "Alpha" {
			t.Errorf("Expected default 'Alpha', got '%s'", got)
		}
	})
}

func TestManager_LoadConfig(t *testing.T) {
	dir := t.TempDir()

	sprint := createValidConfig()
	sprint.Name = "Sprint"
	sprint.WinThreshold = 256
	writeConfigFile(t, dir, "sprint", sprint)

	writeRawFile(t, dir, "mini.hcl", `
name         = "Mini"
description  = "Three by three"
grid_size    = 3
win_threshold = 128
`)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	t.Run("load existing config", func(t *testing.T) {
		config, err := manager.LoadConfig("sprint")
		if err != nil {
			t.Fatalf("Failed to load config: %v", err)
		}
		if config.Name != "Sprint" {
			t.Errorf("Expected config name 'Sprint', got '%s'", config.Name)
		}
		if config.WinThreshold != 256 {
			t.Errorf("Expected win threshold 256, got %d", config.WinThreshold)
		}
	})

	t.Run("load with .json extension", func(t *testing.T) {
		config, err := manager.LoadConfig("sprint.json")
		if err != nil {
			t.Fatalf("Failed to load config with extension: %v", err)
		}
		if config.Name != "Sprint" {
			t.Errorf("Expected config name 'Sprint', got '%s'", config.Name)
		}
	})

	t.Run("load hcl config", func(t *testing.T) {
		config, err := manager.LoadConfig("mini")
		if err != nil {
			t.Fatalf("Failed to load HCL config: %v", err)
		}
		if config.GridSize != 3 || config.WinThreshold != 128 {
			t.Errorf("Unexpected HCL config: %+v", config)
		}
		if config.SpawnFourProbability != engine.DefaultSpawnFourProbability {
			t.Errorf("Expected default spawn probability, got %g", config.SpawnFourProbability)
		}
	})

	t.Run("load from cache", func(t *testing.T) {
		config1, _ := manager.LoadConfig("sprint")
		config2, err := manager.LoadConfig("sprint")
		if err != nil {
			t.Fatalf("Failed to load config from cache: %v", err)
		}
		if config1 != config2 {
			t.Error("Expected config to be loaded from cache")
		}
	})

	t.Run("load non-existent config", func(t *testing.T) {
		_, err := manager.LoadConfig("non-existent")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("Expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("path traversal is not found", func(t *testing.T) {
		_, err := manager.LoadConfig("../sprint")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("Expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("load invalid config", func(t *testing.T) {
		writeRawFile(t, dir, "invalid.json", `{"name": "Invalid", "grid_size": 20}`)

		_, err := manager.LoadConfig("invalid")
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("Expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("load malformed JSON", func(t *testing.T) {
		writeRawFile(t, dir, "malformed.json", `{"name": "Malformed", invalid json}`)

		_, err := manager.LoadConfig("malformed")
		if err == nil {
			t.Error("Expected error for malformed JSON")
		}
	})

	t.Run("load malformed HCL", func(t *testing.T) {
		writeRawFile(t, dir, "broken.hcl", `grid_size = = 4`)

		_, err := manager.LoadConfig("broken")
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("Expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("unknown HCL attribute", func(t *testing.T) {
		writeRawFile(t, dir, "typo.hcl", `grid_sise = 4`)

		_, err := manager.LoadConfig("typo")
		if err == nil {
			t.Error("Expected error for unknown HCL attribute")
		}
	})
}

func TestParseHCL(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		check   func(t *testing.T, c *engine.GameConfig)
		wantErr bool
	}{
		{
			name: "all attributes",
			src: `
name = "Endless"
grid_size = 5
win_threshold = 4096
spawn_four_probability = 0.25
continue_after_win = true
seed = 99
`,
			check: func(t *testing.T, c *engine.GameConfig) {
				if c.GridSize != 5 || c.WinThreshold != 4096 || c.SpawnFourProbability != 0.25 {
					t.Errorf("unexpected values: %+v", c)
				}
				if !c.ContinueAfterWin {
					t.Error("continue_after_win not decoded")
				}
				if c.Seed == nil || *c.Seed != 99 {
					t.Errorf("seed = %v, want 99", c.Seed)
				}
			},
		},
		{
			name: "empty document uses defaults",
			src:  ``,
			check: func(t *testing.T, c *engine.GameConfig) {
				if c.GridSize != engine.DefaultGridSize || c.WinThreshold != engine.DefaultWinThreshold {
					t.Errorf("defaults not applied: %+v", c)
				}
				if c.Seed != nil {
					t.Error("seed should stay unset")
				}
			},
		},
		{
			name: "explicit zero probability",
			src:  `spawn_four_probability = 0`,
			check: func(t *testing.T, c *engine.GameConfig) {
				if c.SpawnFourProbability != 0 {
					t.Errorf("probability = %g, want 0", c.SpawnFourProbability)
				}
			},
		},
		{name: "invalid threshold", src: `win_threshold = 1000`, wantErr: true},
		{name: "wrong type", src: `grid_size = "four"`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := ParseHCL([]byte(tt.src), "test.hcl")
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseHCL() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.check != nil {
				tt.check(t, config)
			}
		})
	}
}

func TestManager_ListConfigs(t *testing.T) {
	dir := t.TempDir()

	configs := []struct {
		filename string
		name     string
	}{
		{"classic", "Classic"},
		{"sprint", "Sprint"},
		{"big", "Big"},
	}

	for _, cfg := range configs {
		config := createValidConfig()
		config.Name = cfg.name
		writeConfigFile(t, dir, cfg.filename, config)
	}
	writeRawFile(t, dir, "mini.hcl", `name = "Mini"
grid_size = 3`)

	// Ignored: not a config extension, and an invalid file
	writeRawFile(t, dir, "readme.txt", "readme")
	writeRawFile(t, dir, "bad.json", `{"grid_size": 1}`)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	configList, err := manager.ListConfigs()
	if err != nil {
		t.Fatalf("Failed to list configs: %v", err)
	}
	if len(configList) != 4 {
		t.Fatalf("Expected 4 configs, got %d", len(configList))
	}

	wantIDs := []string{"big", "classic", "mini", "sprint"}
	for i, info := range configList {
		if info.ConfigID != wantIDs[i] {
			t.Errorf("configList[%d].ConfigID = %s, want %s", i, info.ConfigID, wantIDs[i])
		}
	}

	if configList[2].GridSize != 3 || configList[2].Filename != "mini.hcl" {
		t.Errorf("Unexpected HCL entry: %+v", configList[2])
	}
}

func TestManager_SaveConfig(t *testing.T) {
	dir := t.TempDir()
	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	config := createValidConfig()
	config.Name = "Saved"
	if err := manager.SaveConfig("saved", config); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "saved.json")); err != nil {
		t.Errorf("Expected saved.json on disk: %v", err)
	}

	manager.RefreshCache()
	loaded, err := manager.LoadConfig("saved")
	if err != nil {
		t.Fatalf("LoadConfig after save: %v", err)
	}
	if loaded.Name != "Saved" || loaded.WinThreshold != 512 {
		t.Errorf("Unexpected reloaded config: %+v", loaded)
	}

	bad := createValidConfig()
	bad.WinThreshold = 100
	if err := manager.SaveConfig("bad", bad); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
	if err := manager.SaveConfig("../escape", createValidConfig()); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig for bad name, got %v", err)
	}
}

func TestManager_SetDefault(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "classic", createValidConfig())
	other := createValidConfig()
	other.Name = "Other"
	writeConfigFile(t, dir, "other", other)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	if err := manager.SetDefault("other"); err != nil {
		t.Fatalf("SetDefault: %v", err)
	}
	if manager.GetDefault().Name != "Other" {
		t.Errorf("Expected default 'Other', got '%s'", manager.GetDefault().Name)
	}
	if err := manager.SetDefault("missing"); !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("Expected ErrConfigNotFound, got %v", err)
	}
}

func TestManager_ConcurrentAccess(t *testing.T) {
	dir := t.TempDir()

	for i := 1; i <= 5; i++ {
		config := createValidConfig()
		config.Name = "Config" + string(rune('0'+i))
		writeConfigFile(t, dir, "config"+string(rune('0'+i)), config)
	}

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 50)

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			configName := "config" + string(rune('0'+((id%5)+1)))
			if _, err := manager.LoadConfig(configName); err != nil {
				errs <- err
			}
		}(i)
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Unexpected error during concurrent access: %v", err)
	}

	if manager.count() < 5 {
		t.Errorf("Expected at least 5 configs in cache, got %d", manager.count())
	}
}
