// Package engine provides the checkers rules.
//
// The engine package implements:
//   - Board model and the canonical starting position
//   - Move validation for steps and jumps, men and kings
//   - Move application with capture removal and promotion
//   - Multi-jump chains and turn passing
//   - Win detection
//
// Every operation is a pure function over explicit values. The engine holds
// no state and performs no I/O, so it needs no locking; callers persist the
// returned GameState as-is.
//
// Usage:
//
//	state := engine.NewGame()
//	out, err := engine.SubmitMove(state, engine.Move{
//		From: engine.Position{Row: 5, Col: 0},
//		To:   engine.Position{Row: 4, Col: 1},
//	}, engine.Red)
//	if err != nil {
//		var moveErr *engine.MoveError
//		if errors.As(err, &moveErr) && errors.Is(err, engine.ErrIllegalMove) {
//			log.Printf("rejected: %s", moveErr.Reason)
//		}
//	}
//	state = out.State
//
// Rules:
//
// Men move one square diagonally forward (Red toward row 0, Black toward
// row 7) and capture by jumping an adjacent opponent piece. Kings move and
// capture in all four diagonal directions. A man reaching the far row is
// crowned. After a capture the same piece must keep jumping while it can,
// except that being crowned ends the turn. A side with no pieces or no legal
// move loses. There are no draws.
//
// Encoding:
//
// GameState marshals to JSON with the board as an 8x8 array of rows. Each
// cell is null for an empty square or {"color":"red"|"black","king":bool}
// for a piece:
//
//	{"board":[[null,{"color":"black","king":false},...],...],
//	 "current_player":"red","status":"in_progress","move_count":0}
//
// DecodeLegacyBoard reads the older string-code format ("r", "R", "b", "B",
// "") used by setup files that carry a "board" grid.
package engine
