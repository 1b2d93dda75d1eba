// Package api exposes the tile merge game over REST.
//
// Routes (gorilla/mux):
//
//	POST   /api/sessions                  create {config_id?, seed?}
//	GET    /api/sessions                  list ?sort=created|accessed&order=asc|desc&limit=N
//	GET    /api/sessions/{id}             session info with state and config
//	DELETE /api/sessions/{id}             drop a session
//	GET    /api/sessions/{id}/state       current state with max tile and possible moves
//	POST   /api/sessions/{id}/move        {direction, reset?}
//	POST   /api/sessions/{id}/bulk-move   {moves: [...], reset?}
//	POST   /api/sessions/{id}/reset       start a new game in the session
//	GET    /api/sessions/{id}/history     ?page=&limit=&order=
//	GET    /api/sessions/{id}/hint        ?strategy=greedy|expectimax|random
//	GET    /api/configs                   available configurations
//	POST   /api/configs                   save a configuration as JSON
//	GET    /api/configs/{name}            one configuration
//	GET    /health                        liveness
//	GET    /ws?session=<id>               WebSocket updates for one session
//
// Errors are JSON objects {"error": "..."}. Unknown sessions and configs map
// to 404; bad directions, configs and strategy names to 400; anything else
// to 500.
//
// Every response carries an X-Request-ID header, echoed from the request
// when present. Moves are logged as single structured lines (op=MOVE or
// op=BULK) and, when a hub is attached, pushed to WebSocket watchers as a
// "move" event followed by a "state_update".
package api
