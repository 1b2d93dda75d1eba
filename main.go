// Command tile-merge-game runs the Tile Merge Game server and its tools.
//
// Subcommands:
//  1. "serve" (default) runs the HTTP server exposing the REST API, WebSocket, and an /mcp HTTP endpoint
//  2. "mcp" runs an MCP stdio server and spins up an internal HTTP API if none is available
//  3. "play" plays a game in the terminal
//  4. "autoplay" lets a strategy play a batch of games
//  5. "validate" checks game configuration files
//
// Flags control host/port, config directory, debug logging, and optional
// ngrok tunneling for easy external access during development.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/tile-merge-game/game/config"
	"github.com/wricardo/tile-merge-game/game/engine"
	"github.com/wricardo/tile-merge-game/game/service"
	"github.com/wricardo/tile-merge-game/game/session"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Tile Merge Game Server"
)

// Session retention for the server janitor
const (
	sessionSweepInterval = time.Hour
	sessionMaxIdle       = 24 * time.Hour
)

func main() {
	setupLogging(false)

	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Msg("error loading .env file")
		}
	} else {
		log.Debug().Msg("loaded environment variables from .env file")
	}

	if err := newApp().Run(context.Background(), os.Args); err != nil {
		log.Fatal().Err(err).Msg("command failed")
	}
}

// newApp builds the root command. Running it without a subcommand serves HTTP.
func newApp() *cli.Command {
	serve := serveCommand()
	return &cli.Command{
		Name:    "tile-merge-game",
		Usage:   AppName,
		Version: Version,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "debug",
				Usage:   "Enable debug logging",
				Sources: cli.EnvVars("DEBUG"),
			},
			&cli.StringFlag{
				Name:    "config-dir",
				Value:   "configs",
				Usage:   "Directory containing game configurations",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
			&cli.StringFlag{Name: "host", Value: "localhost", Usage: "HTTP server host", Sources: cli.EnvVars("HOST")},
			&cli.IntFlag{Name: "port", Value: 8080, Usage: "HTTP server port", Sources: cli.EnvVars("PORT")},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			setupLogging(cmd.Bool("debug"))
			return ctx, nil
		},
		Commands: []*cli.Command{
			serve,
			mcpCommand(),
			playCommand(),
			autoplayCommand(),
			validateCommand(),
		},
		// Without a subcommand, serve on the root's host and port.
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runServe(ctx, serveOptionsFrom(cmd))
		},
	}
}

// setupLogging installs a console logger on stderr. Stdout stays free for
// the MCP stdio transport.
func setupLogging(debug bool) {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		With().Timestamp()
	if debug {
		logger = logger.Caller()
	}
	log.Logger = logger.Logger()
}

// initializeServices wires the session and config managers into the game
// service.
func initializeServices(configDir string) (service.GameService, *session.Manager, error) {
	configManager, err := config.NewManager(configDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	sessionManager := session.NewManager()
	return service.NewGameService(sessionManager, configManager), sessionManager, nil
}

// loadConfig reads a named configuration, or the manager's default when name
// is empty.
func loadConfig(configDir, name string) (*engine.GameConfig, error) {
	configManager, err := config.NewManager(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}
	if name == "" {
		return configManager.GetDefault(), nil
	}
	return configManager.LoadConfig(name)
}
