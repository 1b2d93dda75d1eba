// Command analyze simulates games for every configuration in the configs
// directory and prints, per strategy, the win rate, score spread and the
// distribution of the largest tile reached. It flags configurations that no
// strategy could win.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/tile-merge-game/game/config"
	"github.com/wricardo/tile-merge-game/game/engine"
	"github.com/wricardo/tile-merge-game/game/solver"
)

// StrategyStats aggregates the games one strategy played on one configuration
type StrategyStats struct {
	Strategy    string
	Games       int
	Wins        int
	AvgScore    float64
	MedianScore int
	BestScore   int
	AvgMoves    float64
	TileCounts  map[int]int // largest tile reached -> games
}

// WinRate returns the fraction of games that reached the win threshold
func (s StrategyStats) WinRate() float64 {
	if s.Games == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.Games)
}

// ConfigAnalysis holds the results for one configuration
type ConfigAnalysis struct {
	ConfigID string
	Config   *engine.GameConfig
	Results  []StrategyStats
}

type analyzeOptions struct {
	strategies []string
	games      int
	seed       int64
	maxMoves   int
}

func main() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cmd := &cli.Command{
		Name:  "analyze",
		Usage: "Simulate strategies against every game configuration",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config-dir", Value: "configs", Usage: "Directory containing game configurations", Sources: cli.EnvVars("CONFIG_DIR")},
			&cli.StringSliceFlag{Name: "strategy", Value: []string{solver.GreedyName, solver.RandomName}, Usage: "Strategies to simulate"},
			&cli.IntFlag{Name: "games", Value: 20, Usage: "Games per strategy and configuration"},
			&cli.IntFlag{Name: "seed", Value: 1, Usage: "Base seed; game i uses seed+i"},
			&cli.IntFlag{Name: "max-moves", Value: 5000, Usage: "Move cap per game (0 = no limit)"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return run(ctx, os.Stdout, cmd.String("config-dir"), analyzeOptions{
				strategies: cmd.StringSlice("strategy"),
				games:      int(cmd.Int("games")),
				seed:       int64(cmd.Int("seed")),
				maxMoves:   int(cmd.Int("max-moves")),
			})
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal().Err(err).Msg("analysis failed")
	}
}

// run analyzes every loadable configuration in configDir
func run(ctx context.Context, out io.Writer, configDir string, opts analyzeOptions) error {
	manager, err := config.NewManager(configDir)
	if err != nil {
		return err
	}
	infos, err := manager.ListConfigs()
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		return fmt.Errorf("no configurations found in %s", configDir)
	}

	for _, info := range infos {
		if err := ctx.Err(); err != nil {
			return err
		}
		cfg, err := manager.LoadConfig(info.ConfigID)
		if err != nil {
			fmt.Fprintf(out, "\n=== %s ===\nError loading config: %v\n", info.ConfigID, err)
			continue
		}

		analysis, err := analyzeConfig(info.ConfigID, cfg, opts)
		if err != nil {
			return err
		}
		printAnalysis(out, analysis)
	}
	return nil
}

// analyzeConfig plays opts.games seeded games per strategy. Seeds are shared
// across strategies, so every strategy faces the same spawn stream.
func analyzeConfig(id string, cfg *engine.GameConfig, opts analyzeOptions) (ConfigAnalysis, error) {
	analysis := ConfigAnalysis{ConfigID: id, Config: cfg}

	for _, name := range opts.strategies {
		strategy, err := solver.New(name, uint64(opts.seed))
		if err != nil {
			return analysis, err
		}

		stats := StrategyStats{Strategy: strategy.Name(), TileCounts: make(map[int]int)}
		scores := make([]int, 0, opts.games)
		totalMoves := 0

		for i := 0; i < opts.games; i++ {
			rules, err := engine.NewRules(cfg.WithSeed(opts.seed + int64(i)))
			if err != nil {
				return analysis, err
			}
			result := solver.Play(rules, strategy, opts.maxMoves)

			stats.Games++
			if result.MaxTile >= cfg.WinThreshold {
				stats.Wins++
			}
			stats.TileCounts[result.MaxTile]++
			stats.BestScore = max(stats.BestScore, result.Score)
			scores = append(scores, result.Score)
			totalMoves += result.Moves
		}

		if stats.Games > 0 {
			sort.Ints(scores)
			total := 0
			for _, s := range scores {
				total += s
			}
			stats.AvgScore = float64(total) / float64(stats.Games)
			stats.MedianScore = scores[len(scores)/2]
			stats.AvgMoves = float64(totalMoves) / float64(stats.Games)
		}

		log.Debug().Str("config", id).Str("strategy", stats.Strategy).Int("wins", stats.Wins).Msg("analyzed")
		analysis.Results = append(analysis.Results, stats)
	}

	return analysis, nil
}

func printAnalysis(out io.Writer, a ConfigAnalysis) {
	fmt.Fprintf(out, "\n=== Analyzing %s ===\n", a.ConfigID)
	fmt.Fprintf(out, "Name: %s\n", a.Config.Name)
	fmt.Fprintf(out, "Grid Size: %d x %d\n", a.Config.GridSize, a.Config.GridSize)
	fmt.Fprintf(out, "Win Threshold: %d\n", a.Config.WinThreshold)
	fmt.Fprintf(out, "Spawn Four Probability: %g\n", a.Config.SpawnFourProbability)

	anyWin := false
	for _, s := range a.Results {
		fmt.Fprintf(out, "  %-10s win %5.1f%%  avg %8.1f  median %6d  best %6d  moves %7.1f  tiles %s\n",
			s.Strategy, 100*s.WinRate(), s.AvgScore, s.MedianScore, s.BestScore, s.AvgMoves, formatTiles(s.TileCounts))
		if s.Wins > 0 {
			anyWin = true
		}
	}

	if anyWin {
		fmt.Fprintln(out, "✅ At least one strategy reaches the win threshold")
	} else {
		fmt.Fprintf(out, "⚠️  WARNING: no strategy reached %d in any game\n", a.Config.WinThreshold)
	}
}

// formatTiles renders the tile distribution largest first, e.g. "512x3 256x7"
func formatTiles(counts map[int]int) string {
	tiles := make([]int, 0, len(counts))
	for tile := range counts {
		tiles = append(tiles, tile)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(tiles)))

	parts := make([]string, len(tiles))
	for i, tile := range tiles {
		parts[i] = fmt.Sprintf("%dx%d", tile, counts[tile])
	}
	return strings.Join(parts, " ")
}
