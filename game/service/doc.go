// Package service provides the business logic layer for the checkers server.
//
// The service package implements:
//   - Game creation from named setups and seating of the second player
//   - Move request validation and submission to the rules engine
//   - Move history tracking with pagination
//   - Player statistics when a game finishes
//
// Core Interfaces:
//
// GameService is the main service interface used by every transport.
// GameStore persists game records with optimistic versioning.
// SetupManager loads starting positions.
//
// Architecture:
//
// The service sits between the transports (HTTP, WebSocket, MCP) and the
// engine. Each move runs inside GameStore.Update, so the read, the engine
// call and the write happen as one step per game. A rejected move returns
// the engine's *MoveError and nothing is written.
//
// Usage:
//
//	games := store.NewManager(logger)
//	setups, _ := config.NewManager("setups")
//	svc := service.NewGameService(games, setups, stats.NewMemoryStore(), logger)
//
//	info, err := svc.CreateGame(ctx, service.CreateGameRequest{PlayerID: "alice"})
//	result, err := svc.SubmitMove(ctx, info.ID, service.NewMoveRequest(5, 0, 4, 1))
package service
