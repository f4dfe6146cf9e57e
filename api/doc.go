// Package api provides the HTTP REST API for the checkers server.
//
// Endpoints:
//
// Games:
//   - POST   /api/games                  - Create a game ({"player_id","setup_id"})
//   - GET    /api/games                  - List games (?status=&sort=&order=&limit=)
//   - GET    /api/games/{id}             - Get a game
//   - DELETE /api/games/{id}             - Delete a game
//   - POST   /api/games/{id}/join        - Take the black seat ({"player_id"})
//
// Play:
//   - POST   /api/games/{id}/moves       - Submit a move
//   - PUT    /api/games/{id}             - Submit a move (older clients)
//   - GET    /api/games/{id}/moves       - Move history (?page=&limit=&order=)
//   - GET    /api/games/{id}/legal-moves - Moves available to the side to move
//
// Players and setups:
//   - GET    /api/stats/{playerId}       - Win/loss counters
//   - GET    /api/setups                 - Available starting positions
//   - GET    /api/setups/{name}          - One starting position
//
// Other:
//   - GET    /health                     - Liveness
//   - GET    /ws?game={id}               - Live updates (see transport/websocket)
//
// A move body names the origin and destination squares. Both snake_case and
// camelCase field names are accepted:
//
//	{"from_row":5,"from_col":0,"to_row":4,"to_col":1,"player_id":"alice"}
//	{"fromRow":5,"fromCol":0,"toRow":4,"toCol":1,"playerId":"alice"}
//
// player_id may also be sent in the X-Player-Id header. An explicit
// "player":"red"|"black" selects the side; otherwise the seat held by
// player_id is used, falling back to the side to move.
//
// Errors:
//
// Every error is a JSON object with a message and a stable code. Rule
// violations also carry the engine reason:
//
//	{"error":"illegal move: backward_move","code":"illegal_move","reason":"backward_move"}
//
//	400 malformed_request, out_of_bounds, invalid_setup
//	403 wrong_player
//	404 game_not_found, setup_not_found
//	409 not_your_turn, game_finished, seat_taken, version_conflict
//	422 illegal_move
//
// Every response carries permissive CORS headers and OPTIONS preflight
// requests are answered directly.
package api
