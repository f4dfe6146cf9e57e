// Package store keeps checkers games in memory and in durable storage.
//
// Manager caches Game records in front of a Persistence backend. Two
// backends are provided:
//   - FilePersistence: one indented JSON document per game in a directory
//   - MongoPersistence: one document per game in a MongoDB collection
//
// Versioning:
//
// Every Game carries a Version that increases by one on each write. Save
// takes the version the caller read; if storage holds a different version
// the write is refused with ErrVersionConflict. Within one process Manager
// also serializes updates per game id, so conflicts only arise when several
// processes share a backend.
//
// Usage:
//
//	p, err := store.NewFilePersistence("games")
//	manager := store.NewManagerWithPersistence(p, logger)
//
//	game, err := manager.Create(ctx, &store.Game{State: engine.NewGame()})
//	game, err = manager.Update(ctx, game.ID, func(g *store.Game) error {
//		out, err := engine.SubmitMove(g.State, move, engine.Red)
//		if err != nil {
//			return err
//		}
//		g.State = out.State
//		return nil
//	})
//
// Cleanup:
//
// CleanupExpired evicts games that were not accessed recently from memory.
// Persisted games stay on disk and are reloaded on demand.
package store
