// Package engine provides the core rules of the tile merge game.
//
// The engine package implements the game mechanics including:
//   - Sliding and merging tiles along rows and columns
//   - Scoring merged tiles
//   - Spawning a new tile after every effective move
//   - Detecting won and lost games
//   - Configuration validation and loading
//
// Core Types:
//
// Rules applies a GameConfig: it creates new games and maps a GameState plus
// a Direction to the next GameState. GameState is a value; the engine never
// modifies a state it was given. GameEngine wraps Rules with the current
// state and move history of a single game, implementing the Engine interface
// used by sessions.
//
// Usage:
//
//	rules, err := engine.NewRules(engine.DefaultGameConfig())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	state := rules.NewGame()
//	state, moved := rules.ApplyMove(state, engine.Left)
//
// Game Rules:
//
// Each move slides every tile toward one edge. Two equal tiles that meet merge
// into one tile of double value and the merged value is added to the score.
// A tile created by a merge does not merge again during the same move, so a
// row of 2 2 2 2 moved left becomes 4 4. A move that changes nothing is
// rejected and spawns nothing. After an effective move one tile spawns in a
// random empty cell: a 2, or a 4 with the configured probability. The game is
// won when a tile reaches the win threshold and lost when the grid is full
// and no two equal tiles touch.
//
// Randomness is injected through RandomSource. A GameConfig with a Seed
// produces the same games for the same sequence of moves.
package engine
