// Command bruteforcer plays a session on a running game server until a game
// is won or the attempts run out. Moves come from a local solver strategy, a
// Lua script, or the server's own hint endpoint.
package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/tile-merge-game/game/engine"
	"github.com/wricardo/tile-merge-game/game/solver"
)

// Chooser picks the next direction for a state. ok=false means no move is
// worth making.
type Chooser func(ctx context.Context, state engine.GameState) (dir engine.Direction, ok bool, err error)

// strategyChooser adapts a local solver strategy
func strategyChooser(s solver.Strategy) Chooser {
	return func(ctx context.Context, state engine.GameState) (engine.Direction, bool, error) {
		dir, ok := s.Choose(state)
		return dir, ok, nil
	}
}

// hintChooser asks the server for each move
func hintChooser(c *Client, strategy string) Chooser {
	return func(ctx context.Context, state engine.GameState) (engine.Direction, bool, error) {
		hint, err := c.Hint(ctx, strategy)
		if err != nil {
			return "", false, err
		}
		return hint.Direction, hint.Available, nil
	}
}

type runOptions struct {
	maxMoves    int
	maxAttempts int
	delay       time.Duration
	verbose     bool
}

// AttemptResult summarises one attempt
type AttemptResult struct {
	Attempt int
	Moves   int
	Score   int
	MaxTile int
	Won     bool
}

func reachedGoal(state *engine.GameState) bool {
	return state.Status == engine.Won || state.Grid.MaxTile() >= state.WinThreshold
}

// runAttempts resets the session before every attempt and plays it with
// choose. It stops at the first win.
func runAttempts(ctx context.Context, c *Client, choose Chooser, opts runOptions) ([]AttemptResult, error) {
	var results []AttemptResult

	for attempt := 1; attempt <= opts.maxAttempts; attempt++ {
		state, err := c.Reset(ctx)
		if err != nil {
			return results, err
		}
		log.Info().Msgf("=== 🎮 Attempt %d/%d ===", attempt, opts.maxAttempts)

		moves := 0
		for !state.IsGameOver() && !reachedGoal(state) && (opts.maxMoves <= 0 || moves < opts.maxMoves) {
			if opts.verbose && moves%50 == 0 {
				log.Debug().Int("moves", moves).Int("score", state.Score).Int("max_tile", state.Grid.MaxTile()).Msg("progress")
			}

			dir, ok, err := choose(ctx, *state)
			if err != nil {
				return results, err
			}
			if !ok {
				log.Warn().Msg("⚠️  No valid moves available")
				break
			}

			result, err := c.Move(ctx, dir)
			if err != nil {
				return results, err
			}
			state = result.GameState
			if !result.Success {
				log.Warn().Str("dir", string(dir)).Msg("strategy picked a move that changes nothing")
				break
			}
			moves++

			if opts.delay > 0 {
				select {
				case <-ctx.Done():
					return results, ctx.Err()
				case <-time.After(opts.delay):
				}
			}
		}

		result := AttemptResult{
			Attempt: attempt,
			Moves:   moves,
			Score:   state.Score,
			MaxTile: state.Grid.MaxTile(),
			Won:     reachedGoal(state),
		}
		results = append(results, result)
		log.Info().Int("attempt", attempt).Int("moves", moves).Int("score", result.Score).
			Int("max_tile", result.MaxTile).Str("status", string(state.Status)).Msg("attempt finished")

		if result.Won {
			return results, nil
		}
	}
	return results, nil
}

// openSession resumes savedID when it is still alive, otherwise creates a new
// session.
func openSession(ctx context.Context, c *Client, savedID, configID string, seed *int64) error {
	if savedID != "" {
		log.Info().Str("session", savedID).Msg("🔄 Resuming session")
		_, err := c.Resume(ctx, savedID)
		if err == nil {
			return nil
		}
		var apiErr *APIError
		if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusNotFound {
			return err
		}
		log.Warn().Err(err).Msg("⚠️  Failed to resume session (may be expired), creating a new one")
	}

	info, err := c.CreateSession(ctx, configID, seed)
	if err != nil {
		return err
	}
	log.Info().Str("session", info.ID).Str("config", info.ConfigName).
		Int("grid", info.GameConfig.GridSize).Int("goal", info.GameConfig.WinThreshold).Msg("✨ Session created")
	return nil
}

func main() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cmd := &cli.Command{
		Name:  "bruteforcer",
		Usage: "Replay a game session until a strategy wins",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Value: "http://localhost:8080", Usage: "Game server URL"},
			&cli.StringFlag{Name: "config", Usage: "Game configuration ID (default: server default)"},
			&cli.IntFlag{Name: "seed", Usage: "Seed for the new session's spawns"},
			&cli.StringFlag{Name: "continue", Usage: "Resume playing an existing session by ID"},
			&cli.StringFlag{Name: "session-file", Value: ".session", Usage: "File remembering the session between runs"},
			&cli.StringFlag{Name: "strategy", Value: solver.GreedyName, Usage: "Local strategy"},
			&cli.StringFlag{Name: "script", Usage: "Lua strategy script; overrides --strategy"},
			&cli.BoolFlag{Name: "server-hint", Usage: "Ask the server's hint endpoint for every move"},
			&cli.IntFlag{Name: "max-moves", Value: 3000, Usage: "Maximum moves per attempt"},
			&cli.IntFlag{Name: "max-attempts", Value: 100, Usage: "Maximum attempts before giving up"},
			&cli.IntFlag{Name: "delay", Usage: "Delay between moves in milliseconds (0 = no delay)"},
			&cli.BoolFlag{Name: "v", Usage: "Verbose output"},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal().Err(err).Msg("bruteforcer failed")
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("v") {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	serverURL := cmd.String("url")
	log.Info().Str("url", serverURL).Msg("connecting to game server")
	client := NewClient(serverURL)

	sessionFile := cmd.String("session-file")
	savedID := cmd.String("continue")
	if savedID == "" {
		if data, err := os.ReadFile(sessionFile); err == nil {
			savedID = string(bytes.TrimSpace(data))
		}
	}

	var seed *int64
	if cmd.IsSet("seed") {
		s := int64(cmd.Int("seed"))
		seed = &s
	}
	if err := openSession(ctx, client, savedID, cmd.String("config"), seed); err != nil {
		return err
	}
	if err := os.WriteFile(sessionFile, []byte(client.SessionID()), 0644); err != nil {
		log.Warn().Err(err).Msg("failed to save session ID")
	}

	var choose Chooser
	switch {
	case cmd.Bool("server-hint"):
		choose = hintChooser(client, cmd.String("strategy"))
	case cmd.String("script") != "":
		lua, err := solver.LoadLuaStrategy(cmd.String("script"))
		if err != nil {
			return err
		}
		defer lua.Close()
		choose = strategyChooser(lua)
	default:
		strategy, err := solver.New(cmd.String("strategy"), uint64(time.Now().UnixNano()))
		if err != nil {
			return err
		}
		choose = strategyChooser(strategy)
	}

	results, err := runAttempts(ctx, client, choose, runOptions{
		maxMoves:    int(cmd.Int("max-moves")),
		maxAttempts: int(cmd.Int("max-attempts")),
		delay:       time.Duration(cmd.Int("delay")) * time.Millisecond,
		verbose:     cmd.Bool("v"),
	})
	if err != nil {
		return err
	}

	if n := len(results); n > 0 && results[n-1].Won {
		last := results[n-1]
		log.Info().Msgf("🎉 VICTORY! Game won in attempt %d with %d moves!", last.Attempt, last.Moves)
		log.Info().Str("session", client.SessionID()).Msg("done")
		return nil
	}

	log.Info().Str("session", client.SessionID()).Msg("done")
	return cli.Exit(fmt.Sprintf("❌ Failed to win after %d attempts", len(results)), 1)
}
