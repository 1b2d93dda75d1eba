package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/wricardo/tile-merge-game/api"
	"github.com/wricardo/tile-merge-game/game/config"
	"github.com/wricardo/tile-merge-game/game/engine"
	"github.com/wricardo/tile-merge-game/game/service"
	"github.com/wricardo/tile-merge-game/game/session"
	"github.com/wricardo/tile-merge-game/game/solver"
)

// newGameServer serves the real API with two configs: an easy "quick" game
// and an unwinnable 2x2 "stuck" game.
func newGameServer(t *testing.T) *httptest.Server {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"quick.json": `{"name": "Quick", "grid_size": 3, "win_threshold": 16}`,
		"stuck.json": `{"name": "Stuck", "grid_size": 2, "win_threshold": 2048}`,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}

	configs, err := config.NewManager(dir)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	gameService := service.NewGameService(session.NewManager(), configs)
	ts := httptest.NewServer(api.NewServer(gameService, nil))
	t.Cleanup(ts.Close)
	return ts
}

func TestOpenSession(t *testing.T) {
	ts := newGameServer(t)
	ctx := context.Background()

	client := NewClient(ts.URL)
	seed := int64(4)
	if err := openSession(ctx, client, "", "quick", &seed); err != nil {
		t.Fatalf("openSession failed: %v", err)
	}
	created := client.SessionID()
	if created == "" {
		t.Fatal("Expected a session ID")
	}

	// Resume the live session
	other := NewClient(ts.URL)
	if err := openSession(ctx, other, created, "quick", nil); err != nil {
		t.Fatalf("openSession resume failed: %v", err)
	}
	if other.SessionID() != created {
		t.Errorf("Expected to resume %s, got %s", created, other.SessionID())
	}

	// An expired session falls back to a new one
	fresh := NewClient(ts.URL)
	if err := openSession(ctx, fresh, "gone", "quick", nil); err != nil {
		t.Fatalf("openSession fallback failed: %v", err)
	}
	if fresh.SessionID() == "gone" || fresh.SessionID() == "" {
		t.Errorf("Expected a new session, got %q", fresh.SessionID())
	}
}

func TestOpenSession_UnknownConfig(t *testing.T) {
	ts := newGameServer(t)

	err := openSession(context.Background(), NewClient(ts.URL), "", "missing", nil)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", apiErr.StatusCode)
	}
}

func TestRunAttempts_Wins(t *testing.T) {
	ts := newGameServer(t)
	ctx := context.Background()

	client := NewClient(ts.URL)
	if _, err := client.CreateSession(ctx, "quick", nil); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	results, err := runAttempts(ctx, client, strategyChooser(solver.Greedy{}), runOptions{
		maxMoves:    500,
		maxAttempts: 10,
	})
	if err != nil {
		t.Fatalf("runAttempts failed: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("Expected at least one attempt")
	}
	last := results[len(results)-1]
	if !last.Won || last.MaxTile < 16 {
		t.Errorf("Expected greedy to reach 16 on a 3x3 board, got %+v", last)
	}
}

func TestRunAttempts_GivesUp(t *testing.T) {
	ts := newGameServer(t)
	ctx := context.Background()

	client := NewClient(ts.URL)
	if _, err := client.CreateSession(ctx, "stuck", nil); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	results, err := runAttempts(ctx, client, hintChooser(client, solver.GreedyName), runOptions{
		maxMoves:    200,
		maxAttempts: 2,
	})
	if err != nil {
		t.Fatalf("runAttempts failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Expected 2 attempts, got %d", len(results))
	}
	for _, r := range results {
		if r.Won || r.MaxTile > 32 {
			t.Errorf("Impossible result on a 2x2 board: %+v", r)
		}
	}
}

func TestRunAttempts_Cancelled(t *testing.T) {
	ts := newGameServer(t)
	client := NewClient(ts.URL)
	if _, err := client.CreateSession(context.Background(), "quick", nil); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := runAttempts(ctx, client, strategyChooser(solver.Greedy{}), runOptions{maxAttempts: 1}); err == nil {
		t.Error("Expected error for cancelled context")
	}
}

func TestClientMoveAndHint(t *testing.T) {
	ts := newGameServer(t)
	ctx := context.Background()

	client := NewClient(ts.URL)
	seed := int64(11)
	info, err := client.CreateSession(ctx, "quick", &seed)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	hint, err := client.Hint(ctx, solver.GreedyName)
	if err != nil {
		t.Fatalf("Hint failed: %v", err)
	}
	if !hint.Available || hint.Strategy != solver.GreedyName {
		t.Fatalf("Unexpected hint: %+v", hint)
	}

	result, err := client.Move(ctx, hint.Direction)
	if err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	if !result.Success || result.GameState.Moves != 1 {
		t.Errorf("Expected the hinted move to change the board, got %+v", result)
	}
	if result.GameState.Grid.Equal(info.GameState.Grid) {
		t.Error("Expected grid to change")
	}

	if _, err := client.Move(ctx, engine.Direction("sideways")); err == nil {
		t.Error("Expected error for invalid direction")
	}
}

func TestAPIError(t *testing.T) {
	err := &APIError{StatusCode: 404, Message: "session not found"}
	if err.Error() != "API error 404: session not found" {
		t.Errorf("Unexpected message: %s", err.Error())
	}
}
