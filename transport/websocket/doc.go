// Package websocket pushes live game updates to watching clients.
//
// A central Hub tracks connections per game id. Each client connection gets
// a read goroutine (keepalive and close handling) and a write goroutine
// (outgoing frames and pings). Clients never send commands over the socket;
// moves go through the REST API, which calls Broadcast after every change.
//
// Clients subscribe with the game id as a query parameter:
//
//	ws://host/ws?game=<id>
//
// Every frame is one JSON Message:
//
//	{"game_id":"...","event":"game_update","data":{...}}
//
// Usage:
//
//	hub := websocket.NewHub(logger)
//	go hub.Run(ctx)
//	hub.Broadcast(gameID, websocket.EventGameUpdate, info)
package websocket
