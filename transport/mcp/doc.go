// Package mcp exposes the checkers REST API as Model Context Protocol tools.
//
// The Client is a thin proxy: every tool call is translated into an HTTP
// request against the API server and the JSON response is rendered as text
// an agent can read, including an ASCII board:
//
//	  01234567
//	0 .b.b.b.b
//	...
//	7 r.r.r.r.
//
// Tools:
//   - create_game, join_game, get_game, list_games
//   - move, legal_moves, move_history
//   - player_stats, list_setups, game_rules
//
// API errors are returned as tool errors (IsError) carrying the server's
// message and code, never as Go errors, so the agent sees why a move was
// rejected.
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080", version)
//	server.ServeStdio(client.GetMCPServer())
package mcp
