// Package config provides configuration management for the tile merge game.
//
// The config package handles:
//   - Loading game configurations from JSON and HCL files
//   - Caching loaded configurations by ID
//   - Default configuration management
//   - Configuration discovery and listing
//
// Configuration Format:
//
// Configurations live in a directory (configs by default) as <id>.json or
// <id>.hcl. Both formats carry the same attributes:
//
//	name                   = "Sprint"
//	description            = "Reach 512 on the classic board"
//	grid_size              = 4
//	win_threshold          = 512
//	spawn_four_probability = 0.1
//	continue_after_win     = false
//	seed                   = 42
//
// Omitted numeric attributes take the engine defaults. When both files exist
// for the same ID, the JSON file wins.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameConfig, err := manager.LoadConfig("sprint")
//	defaultConfig := manager.GetDefault()
//	configs, err := manager.ListConfigs()
//
// The default configuration is classic when present, otherwise the first
// loadable file, otherwise the built-in classic rules.
package config
