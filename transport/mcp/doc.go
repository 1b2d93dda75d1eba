// Package mcp exposes the tile merge game to AI agents over the Model
// Context Protocol (mark3labs/mcp-go).
//
// Client is a thin proxy: every tool call becomes a request against the
// REST API and the JSON answer is rendered as text an agent can read, with
// the grid drawn as aligned columns and "." for empty cells.
//
// MCP Tools:
//   - create_session, list_sessions, get_session
//   - game_state, move, bulk_move, reset_game, move_history
//   - hint: ask a solver strategy for the next direction
//   - list_configs, describe_cell, game_instructions
//
// The same server is served over stdio (the mcp subcommand) and over
// HTTP POST /mcp by the serve subcommand.
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	if err := server.ServeStdio(client.GetMCPServer()); err != nil {
//		log.Fatal().Err(err).Msg("mcp stdio")
//	}
package mcp
