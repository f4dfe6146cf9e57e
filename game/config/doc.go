// Package config manages named starting positions for checkers games.
//
// A setup is a JSON file in the setups directory:
//
//	{
//	  "name": "Classic",
//	  "description": "Standard 8x8 checkers",
//	  "first_player": "red",
//	  "layout": [
//	    ".b.b.b.b",
//	    "b.b.b.b.",
//	    ".b.b.b.b",
//	    "........",
//	    "........",
//	    "r.r.r.r.",
//	    ".r.r.r.r",
//	    "r.r.r.r."
//	  ]
//	}
//
// Layout rows use '.' for an empty square, 'r'/'b' for men and 'R'/'B' for
// kings. Pieces must stand on dark squares ((row+col) odd), each side needs
// between one and twelve pieces, and the side to move must have a legal move.
//
// Instead of "layout" a setup may carry "board", an 8x8 array of cell codes
// ("r", "R", "b", "B" or "" for empty) as stored by the earlier service.
//
// The setup id is the file name without its extension. "classic" is the
// default and is served from memory when no classic.json exists.
//
// Usage:
//
//	manager, err := config.NewManager("setups")
//	setup, err := manager.LoadSetup("kings_endgame")
//	state, err := setup.NewGame()
package config
