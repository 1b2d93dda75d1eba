// Package session provides in-memory session management for the tile merge game.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Unique session ID generation
//   - Idle session expiry through a background janitor
//
// Core Types:
//
// Manager is the session manager that handles all session operations. Each
// service.Session owns its own engine.GameEngine, so moves in one session
// never touch another.
//
// Session Identifiers:
//
// Sessions use 4-character hex IDs generated from crypto/rand. Lookups are
// case-insensitive; a caller supplied ID keeps its original spelling.
//
// Usage:
//
//	manager := session.NewManager()
//	manager.StartJanitor(ctx, time.Minute, 24*time.Hour)
//
//	sess, err := manager.Create("", engine.DefaultGameConfig())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	sess, err = manager.Get(sess.ID)
//
// Sessions are not persisted; restarting the process discards them.
package session
