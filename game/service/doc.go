// Package service provides the business logic layer for the tile merge game.
//
// The service package implements:
//   - Multi-session game management
//   - Configuration access
//   - Move processing, bulk moves and move events
//   - Move history paging
//   - Move hints from the solver strategies
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages game configuration loading and validation.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the game engine. Transports hand over raw direction strings; the service
// parses them, applies them to the session's engine and reports what changed
// (score delta, merges, spawned tile, tile transitions) together with an
// enriched state snapshot carrying the max tile and the possible moves.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr)
//
//	info, err := gameService.CreateSession(ctx, "sprint", nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := gameService.Move(ctx, info.ID, "left", false)
//
// Bulk Moves:
//
// BulkMove validates every direction first, then applies them in order. It
// stops at the first move that does not change the board (no_effect), when
// the game is won or lost, and after MaxBulkMoves moves (truncated).
package service
