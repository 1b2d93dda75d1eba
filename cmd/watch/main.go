// Command watch follows one or more sessions over the server's WebSocket
// feed and prints every move and board update as it happens.
//
//	watch --url http://localhost:8080 ab12 cd34
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/tile-merge-game/game/engine"
	hub "github.com/wricardo/tile-merge-game/transport/websocket"
)

// wsMessage mirrors the hub's wire format, keeping the event payload raw
type wsMessage struct {
	SessionID string            `json:"session_id"`
	GameState *engine.GameState `json:"game_state,omitempty"`
	Event     string            `json:"event,omitempty"`
	Data      json.RawMessage   `json:"data,omitempty"`
}

// wsURL turns the server's HTTP base URL into the session's feed URL
func wsURL(baseURL, sessionID string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "http", "":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/ws"
	q := u.Query()
	q.Set("session", sessionID)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// follow reads messages from conn until ctx is done or the connection drops
func follow(ctx context.Context, conn *websocket.Conn, handle func(wsMessage)) error {
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		var msg wsMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Warn().Err(err).Msg("websocket JSON parse error")
			continue
		}
		handle(msg)
	}
}

// render prints one message for a human
func render(out io.Writer, msg wsMessage) {
	switch msg.Event {
	case hub.EventMove:
		var move hub.MoveEvent
		if err := json.Unmarshal(msg.Data, &move); err != nil {
			fmt.Fprintf(out, "[%s] unreadable move event: %v\n", msg.SessionID, err)
			return
		}
		fmt.Fprintf(out, "[%s] %s\n", msg.SessionID, describeMove(move))
	case hub.EventStateUpdate, "":
		if msg.GameState == nil {
			return
		}
		s := msg.GameState
		fmt.Fprintf(out, "[%s] score %d  moves %d  %s\n%s\n", msg.SessionID, s.Score, s.Moves, s.Status, s.Grid.String())
	default:
		fmt.Fprintf(out, "[%s] %s %s\n", msg.SessionID, msg.Event, string(msg.Data))
	}
}

func describeMove(move hub.MoveEvent) string {
	if !move.Moved {
		return fmt.Sprintf("%s: nothing moved", move.Direction)
	}

	slid, merged := 0, 0
	for _, t := range move.Transitions {
		if t.From != t.To {
			slid++
		}
		if t.Merged {
			merged++
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s: +%d, %d slid, %d merges", move.Direction, move.ScoreDelta, slid, merged/2)
	if move.Spawned != nil {
		fmt.Fprintf(&b, ", spawned %d at (%d,%d)", move.Spawned.Value, move.Spawned.Position.Row, move.Spawned.Position.Col)
	}
	return b.String()
}

// lockedWriter serialises output from several sessions
type lockedWriter struct {
	mu  sync.Mutex
	out io.Writer
}

func (w *lockedWriter) render(msg wsMessage) {
	w.mu.Lock()
	defer w.mu.Unlock()
	render(w.out, msg)
}

func run(ctx context.Context, baseURL string, sessionIDs []string, out io.Writer) error {
	if len(sessionIDs) == 0 {
		return errors.New("at least one session ID is required")
	}

	writer := &lockedWriter{out: out}
	var wg sync.WaitGroup
	errs := make(chan error, len(sessionIDs))

	for _, id := range sessionIDs {
		target, err := wsURL(baseURL, id)
		if err != nil {
			return err
		}
		conn, _, err := websocket.DefaultDialer.DialContext(ctx, target, nil)
		if err != nil {
			return fmt.Errorf("connect session %s: %w", id, err)
		}
		log.Info().Str("session", id).Msg("websocket connected")

		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			if err := follow(ctx, conn, writer.render); err != nil {
				errs <- fmt.Errorf("session %s: %w", id, err)
			}
		}(id)
	}

	wg.Wait()
	close(errs)
	var all []error
	for err := range errs {
		all = append(all, err)
	}
	return errors.Join(all...)
}

func main() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cmd := &cli.Command{
		Name:      "watch",
		Usage:     "Follow game sessions live",
		ArgsUsage: "SESSION_ID [SESSION_ID...]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Value: "http://localhost:8080", Usage: "Game server URL"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, cmd.String("url"), cmd.Args().Slice(), os.Stdout)
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal().Err(err).Msg("watch failed")
	}
}
