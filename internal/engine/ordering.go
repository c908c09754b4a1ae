package engine

import (
	"cmp"
	"slices"

	"github.com/hailam/latrones/internal/board"
)

// RootMove is a root candidate with the score of the last pass that reached it.
type RootMove struct {
	Move  board.Move
	Score int
}

func newRootMoves(moves *board.MoveList) []RootMove {
	out := make([]RootMove, moves.Len())
	for i, m := range moves.Slice() {
		out[i] = RootMove{Move: m, Score: -Infinity}
	}
	return out
}

// SortRootMoves orders candidates best first. Ties keep their previous order,
// so the generator order decides among equal scores in the first pass.
func SortRootMoves(moves []RootMove) {
	slices.SortStableFunc(moves, func(a, b RootMove) int {
		return cmp.Compare(b.Score, a.Score)
	})
}
