package main

import (
	"math/rand"

	"github.com/samber/lo"

	"github.com/wricardo/checkers-game/game/engine"
)

// Move weights for the greedy strategy
const (
	scoreWin      = 1000
	scoreCapture  = 10
	scorePromote  = 8
	scoreContinue = 5
	scoreExposed  = -6
	scoreAdvance  = 1
)

// GreedyStrategy picks the best scoring move one ply deep.
// Ties are broken randomly so repeated games differ.
type GreedyStrategy struct {
	rng *rand.Rand
}

func NewGreedyStrategy(seed int64) *GreedyStrategy {
	return &GreedyStrategy{rng: rand.New(rand.NewSource(seed))}
}

// NextMove returns false when the side to move has nothing to play
func (s *GreedyStrategy) NextMove(state engine.GameState) (engine.Move, bool) {
	moves := engine.LegalMovesFor(state)
	if len(moves) == 0 {
		return engine.Move{}, false
	}

	scores := lo.Map(moves, func(m engine.Move, _ int) int {
		return Score(state, m)
	})
	best := lo.Max(scores)
	candidates := lo.Filter(moves, func(_ engine.Move, i int) bool {
		return scores[i] == best
	})
	return candidates[s.rng.Intn(len(candidates))], true
}

// Score rates m for the side to move in state. Illegal moves score lowest.
func Score(state engine.GameState, m engine.Move) int {
	mover := state.CurrentPlayer
	outcome, err := engine.SubmitMove(state, m, mover)
	if err != nil {
		return -scoreWin
	}

	next := outcome.State
	if next.Finished() && next.Winner == mover {
		return scoreWin
	}

	score := 0
	if outcome.Captured != nil {
		score += scoreCapture
	}
	if outcome.Promoted {
		score += scorePromote
	}
	if outcome.MustContinue {
		return score + scoreContinue
	}

	// A piece left where the opponent can jump it is likely lost
	replies := engine.LegalMovesFor(next)
	if lo.ContainsBy(replies, func(r engine.Move) bool { return r.IsJump() && r.Midpoint() == m.To }) {
		score += scoreExposed
	}

	if p := next.Board[m.To.Row][m.To.Col]; p != nil && !p.King && !outcome.Promoted {
		score += scoreAdvance
	}
	return score
}
