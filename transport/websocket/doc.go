// Package websocket pushes game updates to browser renderers.
//
// The package uses a hub-and-spoke model where a central Hub manages all
// WebSocket connections. Each connection gets a read pump and a write pump;
// registration, removal and broadcast all go through the hub's Run loop.
//
// Message Protocol:
//
// Messages are JSON objects {session_id, event, game_state?, data?}:
//   - "state_update" carries the full GameState after every change
//   - "move" carries a MoveEvent: the direction, the per-tile transitions
//     for animation and the spawned tile
//
// Clients attach to one session with /ws?session=<id> and only receive that
// session's messages. Incoming frames are read and discarded.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run()
//
//	router.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("session"))
//	})
//
//	hub.BroadcastMove(sessionID, websocket.NewMoveEvent(outcome))
//	hub.BroadcastToSession(sessionID, &outcome.State)
package websocket
