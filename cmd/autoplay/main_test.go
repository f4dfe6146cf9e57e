package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wricardo/checkers-game/api"
	"github.com/wricardo/checkers-game/game/config"
	"github.com/wricardo/checkers-game/game/engine"
	"github.com/wricardo/checkers-game/game/service"
	"github.com/wricardo/checkers-game/game/stats"
	"github.com/wricardo/checkers-game/game/store"
)

func newTestAPI(t *testing.T) *httptest.Server {
	t.Helper()
	setups, err := config.NewManager(t.TempDir())
	require.NoError(t, err)

	svc := service.NewGameService(store.NewManager(zap.NewNop()), setups, stats.NewMemoryStore(), zap.NewNop())
	ts := httptest.NewServer(api.NewServer(svc, nil, zap.NewNop()))
	t.Cleanup(ts.Close)
	return ts
}

func TestScore_PrefersCapture(t *testing.T) {
	state := engine.NewGameFromBoard(engine.MustParseBoard(
		"........",
		"........",
		".....b..",
		"........",
		"........",
		"..b.....",
		".r......",
		"........",
	), engine.Red)

	jump := engine.Move{From: engine.Position{Row: 6, Col: 1}, To: engine.Position{Row: 4, Col: 3}}
	step := engine.Move{From: engine.Position{Row: 6, Col: 1}, To: engine.Position{Row: 5, Col: 0}}

	assert.Greater(t, Score(state, jump), Score(state, step))

	m, ok := NewGreedyStrategy(1).NextMove(state)
	require.True(t, ok)
	assert.Equal(t, jump, m)
}

func TestScore_WinningMove(t *testing.T) {
	state := engine.NewGameFromBoard(engine.MustParseBoard(
		"........",
		"........",
		"........",
		"........",
		"........",
		"..b.....",
		".r......",
		"........",
	), engine.Red)

	jump := engine.Move{From: engine.Position{Row: 6, Col: 1}, To: engine.Position{Row: 4, Col: 3}}
	assert.Equal(t, scoreWin, Score(state, jump))
}

func TestScore_AvoidsExposure(t *testing.T) {
	// Stepping to (4,3) hands black the jump from (3,2) to (5,4)
	state := engine.NewGameFromBoard(engine.MustParseBoard(
		"........",
		"........",
		"........",
		"..b.....",
		"........",
		"r.r.....",
		"........",
		"........",
	), engine.Red)

	exposed := engine.Move{From: engine.Position{Row: 5, Col: 2}, To: engine.Position{Row: 4, Col: 3}}
	safe := engine.Move{From: engine.Position{Row: 5, Col: 2}, To: engine.Position{Row: 4, Col: 1}}

	assert.Less(t, Score(state, exposed), Score(state, safe))
}

func TestScore_IllegalMove(t *testing.T) {
	state := engine.NewGame()
	backward := engine.Move{From: engine.Position{Row: 5, Col: 0}, To: engine.Position{Row: 6, Col: 1}}
	assert.Equal(t, -scoreWin, Score(state, backward))
}

func TestNextMove_NoMoves(t *testing.T) {
	state := engine.NewGame()
	state.Status = engine.StatusFinished

	_, ok := NewGreedyStrategy(1).NextMove(state)
	assert.False(t, ok)
}

func TestClient_APIError(t *testing.T) {
	ts := newTestAPI(t)
	client := NewClient(ts.URL + "/")

	_, err := client.GetGame(context.Background(), "missing")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "game_not_found", apiErr.Code)
}

func TestClient_IllegalMoveReason(t *testing.T) {
	ts := newTestAPI(t)
	client := NewClient(ts.URL)
	ctx := context.Background()

	game, err := client.CreateGame(ctx, RedBot, "")
	require.NoError(t, err)

	backward := engine.Move{From: engine.Position{Row: 5, Col: 0}, To: engine.Position{Row: 6, Col: 1}}
	_, err = client.Move(ctx, game.ID, RedBot, backward)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)
	assert.Equal(t, "illegal_move", apiErr.Code)
	assert.NotEmpty(t, apiErr.Reason)
}

func TestPlayer_PlayGame(t *testing.T) {
	ts := newTestAPI(t)
	ctx := context.Background()

	player := &Player{
		Client:   NewClient(ts.URL),
		Strategy: NewGreedyStrategy(42),
		MaxMoves: 400,
	}

	summary, playErr := player.PlayGame(ctx, "")
	if playErr != nil {
		require.ErrorIs(t, playErr, ErrMoveLimit)
	}
	assert.NotEmpty(t, summary.GameID)
	assert.Positive(t, summary.Moves)

	game, err := player.Client.GetGame(ctx, summary.GameID)
	require.NoError(t, err)
	assert.Equal(t, RedBot, game.Players.Red)
	assert.Equal(t, BlackBot, game.Players.Black)
	assert.Equal(t, summary.Moves, game.MoveCount)

	if playErr == nil {
		require.True(t, game.State.Finished())
		assert.Equal(t, game.State.Winner, summary.Winner)

		winner, loser := RedBot, BlackBot
		if summary.Winner == engine.Black {
			winner, loser = BlackBot, RedBot
		}
		ws, err := player.Client.Stats(ctx, winner)
		require.NoError(t, err)
		assert.Equal(t, int64(1), ws.Wins)

		ls, err := player.Client.Stats(ctx, loser)
		require.NoError(t, err)
		assert.Equal(t, int64(1), ls.Losses)
	}
}

func TestPlayer_MoveLimit(t *testing.T) {
	ts := newTestAPI(t)

	player := &Player{
		Client:   NewClient(ts.URL),
		Strategy: NewGreedyStrategy(7),
		MaxMoves: 3,
	}

	summary, err := player.PlayGame(context.Background(), "")
	require.ErrorIs(t, err, ErrMoveLimit)
	assert.Equal(t, 3, summary.Moves)
}
