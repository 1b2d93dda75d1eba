package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/urfave/cli/v3"
	"github.com/wricardo/tile-merge-game/game/config"
	"github.com/wricardo/tile-merge-game/game/engine"
)

// ValidationResult captures the outcome of validating a single file.
// Warnings never make a file invalid.
type ValidationResult struct {
	File     string
	Valid    bool
	Errors   []string
	Warnings []string
}

// validateConfig loads and validates a single JSON or HCL configuration file.
// Beyond the engine's own checks it makes sure the win tile can actually be
// built on the board.
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:  filepath.Base(filePath),
		Valid: true,
	}
	fail := func(format string, args ...interface{}) ValidationResult {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf(format, args...))
		return result
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return fail("Failed to read file: %v", err)
	}

	var cfg *engine.GameConfig
	switch filepath.Ext(filePath) {
	case ".hcl":
		cfg, err = config.ParseHCL(data, result.File)
	case ".json":
		cfg, err = engine.ParseGameConfigJSON(data)
	default:
		return fail("Unsupported file type %q", filepath.Ext(filePath))
	}
	if err != nil {
		return fail("%v", err)
	}

	if limit := maxReachableTile(cfg.GridSize); cfg.WinThreshold > limit {
		return fail("Win threshold %d is unreachable on a %dx%d grid (largest possible tile is %d)",
			cfg.WinThreshold, cfg.GridSize, cfg.GridSize, limit)
	}

	if cfg.Name == "" {
		result.Warnings = append(result.Warnings, "No name set; the file name is used")
	}
	if cfg.Seed != nil {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Seed %d is fixed: every session on this config gets the same spawns", *cfg.Seed))
	}
	if cfg.SpawnFourProbability == 0 {
		result.Warnings = append(result.Warnings, "spawn_four_probability is 0; only 2s will spawn")
	}
	return result
}

// maxReachableTile is the largest tile a size x size board can hold: a full
// descending chain whose last cell receives a spawned 4.
func maxReachableTile(size int) int {
	cells := size * size
	if cells+1 >= 62 {
		return int(^uint(0) >> 1)
	}
	return 1 << (cells + 1)
}

// validateConfigDir validates every config file in dir, sorted by name. A
// JSON file shadows an HCL file with the same ID; the HCL one gets a warning.
func validateConfigDir(dir string) ([]ValidationResult, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}

	var files []string
	hasJSON := make(map[string]bool)
	for _, entry := range entries {
		ext := filepath.Ext(entry.Name())
		if entry.IsDir() || (ext != ".json" && ext != ".hcl") {
			continue
		}
		files = append(files, entry.Name())
		if ext == ".json" {
			hasJSON[strings.TrimSuffix(entry.Name(), ext)] = true
		}
	}
	sort.Strings(files)

	results := make([]ValidationResult, 0, len(files))
	for _, name := range files {
		result := validateConfig(filepath.Join(dir, name))
		if id, ok := strings.CutSuffix(name, ".hcl"); ok && hasJSON[id] {
			result.Warnings = append(result.Warnings, fmt.Sprintf("Shadowed by %s.json", id))
		}
		results = append(results, result)
	}
	return results, nil
}

// printValidation writes a report and returns the number of invalid files
func printValidation(w io.Writer, results []ValidationResult) int {
	invalid := 0
	for _, result := range results {
		fmt.Fprintf(w, "\n%s %s\n", strings.Repeat("=", 20), result.File)
		if result.Valid {
			fmt.Fprintln(w, "✅ VALID")
		} else {
			invalid++
			fmt.Fprintln(w, "❌ INVALID")
			for _, msg := range result.Errors {
				fmt.Fprintf(w, "  - %s\n", msg)
			}
		}
		for _, msg := range result.Warnings {
			fmt.Fprintf(w, "  ! %s\n", msg)
		}
	}

	fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 40))
	fmt.Fprintf(w, "Validated %d files: %d valid, %d invalid\n", len(results), len(results)-invalid, invalid)
	return invalid
}

func validateCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "Check game configuration files",
		ArgsUsage: "[file ...]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			var results []ValidationResult
			if cmd.Args().Len() > 0 {
				for _, path := range cmd.Args().Slice() {
					results = append(results, validateConfig(path))
				}
			} else {
				var err error
				results, err = validateConfigDir(cmd.String("config-dir"))
				if err != nil {
					return err
				}
			}

			if invalid := printValidation(os.Stdout, results); invalid > 0 {
				return cli.Exit(fmt.Sprintf("%d invalid configuration file(s)", invalid), 1)
			}
			return nil
		},
	}
}
