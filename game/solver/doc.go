// Package solver chooses moves for the tile merge game.
//
// Strategies implement a single Choose method over an engine.GameState and
// never return a direction that leaves the board unchanged. Built-ins:
//   - greedy: best immediate evaluation
//   - expectimax: depth-limited search averaging over tile spawns
//   - random: uniform among effective moves, seeded
//
// LuaStrategy runs a user script through gopher-lua and falls back to greedy
// when the script misbehaves. Play drives a strategy through a whole game and
// is used by the autoplay command and the analyze tool.
package solver
