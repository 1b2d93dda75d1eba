package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/tile-merge-game/game/engine"
	"github.com/wricardo/tile-merge-game/game/solver"
)

const playHelp = "Moves: w/a/s/d or up/down/left/right. h for a hint, n for a new game, q to quit."

func playCommand() *cli.Command {
	return &cli.Command{
		Name:  "play",
		Usage: "Play a game in the terminal",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "Configuration ID (default: classic)"},
			&cli.IntFlag{Name: "seed", Usage: "Seed for a reproducible spawn sequence"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd.String("config-dir"), cmd.String("config"))
			if err != nil {
				return err
			}
			if cmd.IsSet("seed") {
				cfg = cfg.WithSeed(int64(cmd.Int("seed")))
			}
			return runPlay(os.Stdin, os.Stdout, cfg, solver.NewExpectimax(solver.DefaultDepth))
		},
	}
}

// runPlay reads one command per line from in until the game ends, the input
// runs out or the player quits.
func runPlay(in io.Reader, out io.Writer, cfg *engine.GameConfig, hints solver.Strategy) error {
	game, err := engine.NewEngine(cfg)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, playHelp)
	printState(out, game.GetState())

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		input := strings.ToLower(strings.TrimSpace(scanner.Text()))
		switch input {
		case "":
			continue
		case "q", "quit", "exit":
			fmt.Fprintf(out, "Final score: %d\n", game.GetScore())
			return nil
		case "n", "new":
			printState(out, game.Reset())
			continue
		case "h", "hint":
			if dir, ok := hints.Choose(game.GetState()); ok {
				fmt.Fprintf(out, "Hint: %s\n", dir)
			} else {
				fmt.Fprintln(out, "Hint: no move changes the board")
			}
			continue
		case "?", "help":
			fmt.Fprintln(out, playHelp)
			continue
		}

		dir, err := engine.ParseDirection(input)
		if err != nil {
			fmt.Fprintf(out, "Unknown command %q. %s\n", input, playHelp)
			continue
		}

		outcome := game.Move(dir)
		if !outcome.Moved {
			fmt.Fprintf(out, "Nothing moves %s.\n", dir)
			continue
		}
		log.Debug().Str("dir", string(dir)).Int("delta", outcome.ScoreDelta).Msg("move")

		printState(out, outcome.State)
		if outcome.PreviousStatus != engine.Won && outcome.State.Status == engine.Won {
			fmt.Fprintf(out, "You reached %d!\n", outcome.State.WinThreshold)
		}
		if game.IsGameOver() {
			fmt.Fprintf(out, "Game over (%s). Final score: %d\n", outcome.State.Status, outcome.State.Score)
			return nil
		}
	}
	return scanner.Err()
}

func printState(out io.Writer, state engine.GameState) {
	fmt.Fprintf(out, "\nScore: %d  Moves: %d  Status: %s\n%s\n", state.Score, state.Moves, state.Status, state.Grid.String())
}

func autoplayCommand() *cli.Command {
	return &cli.Command{
		Name:  "autoplay",
		Usage: "Let a strategy play a batch of games",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "strategy",
				Value: solver.DefaultStrategy,
				Usage: "Built-in strategy: " + strings.Join(solver.Names(), ", "),
			},
			&cli.StringFlag{Name: "script", Usage: "Lua script defining choose(state); overrides --strategy"},
			&cli.StringFlag{Name: "config", Usage: "Configuration ID (default: classic)"},
			&cli.IntFlag{Name: "games", Value: 10, Usage: "Number of games"},
			&cli.IntFlag{Name: "seed", Usage: "Base seed; game i uses seed+i"},
			&cli.IntFlag{Name: "max-moves", Usage: "Stop each game after this many moves (0 = no limit)"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd.String("config-dir"), cmd.String("config"))
			if err != nil {
				return err
			}

			var seed *int64
			if cmd.IsSet("seed") {
				s := int64(cmd.Int("seed"))
				seed = &s
			}

			var strategy solver.Strategy
			if script := cmd.String("script"); script != "" {
				lua, err := solver.LoadLuaStrategy(script)
				if err != nil {
					return err
				}
				defer lua.Close()
				strategy = lua
			} else {
				var strategySeed uint64
				if seed != nil {
					strategySeed = uint64(*seed)
				}
				strategy, err = solver.New(cmd.String("strategy"), strategySeed)
				if err != nil {
					return err
				}
			}

			_, err = runAutoplay(ctx, os.Stdout, cfg, strategy, autoplayOptions{
				games:    int(cmd.Int("games")),
				seed:     seed,
				maxMoves: int(cmd.Int("max-moves")),
			})
			return err
		},
	}
}

type autoplayOptions struct {
	games    int
	seed     *int64
	maxMoves int
}

// autoplaySummary aggregates a batch of games
type autoplaySummary struct {
	Games     int
	Wins      int
	BestScore int
	BestTile  int
	AvgScore  float64
}

// runAutoplay plays opts.games games with strategy and prints one line per
// game plus a summary. A game counts as a win once the threshold tile exists.
func runAutoplay(ctx context.Context, out io.Writer, cfg *engine.GameConfig, strategy solver.Strategy, opts autoplayOptions) (autoplaySummary, error) {
	var summary autoplaySummary
	total := 0

	for i := 0; i < opts.games; i++ {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		gameConfig := cfg
		if opts.seed != nil {
			gameConfig = cfg.WithSeed(*opts.seed + int64(i))
		}
		rules, err := engine.NewRules(gameConfig)
		if err != nil {
			return summary, err
		}

		result := solver.Play(rules, strategy, opts.maxMoves)
		won := result.MaxTile >= cfg.WinThreshold

		summary.Games++
		total += result.Score
		if won {
			summary.Wins++
		}
		summary.BestScore = max(summary.BestScore, result.Score)
		summary.BestTile = max(summary.BestTile, result.MaxTile)

		fmt.Fprintf(out, "game %3d: score %6d  max tile %5d  moves %5d  %s\n",
			i+1, result.Score, result.MaxTile, result.Moves, result.Status)
	}

	if summary.Games > 0 {
		summary.AvgScore = float64(total) / float64(summary.Games)
	}
	fmt.Fprintf(out, "\n%s on %s: %d/%d wins, avg score %.1f, best score %d, best tile %d\n",
		strategy.Name(), cfg.Name, summary.Wins, summary.Games, summary.AvgScore, summary.BestScore, summary.BestTile)
	return summary, nil
}
