package engine

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/hailam/latrones/internal/board"
)

// ErrNoMovesAvailable is returned when the side to move has no legal move.
// Callers are expected to have treated that side as lost already.
var ErrNoMovesAvailable = errors.New("no legal moves available")

// SearchInfo describes one completed iterative-deepening pass.
type SearchInfo struct {
	Pass  int        // 1-based pass number
	Depth int        // plies searched below the root move, capture extensions aside
	Move  board.Move // best move after the pass
	Score int
	Nodes uint64
	Time  time.Duration
}

// Result is the outcome of a search.
type Result struct {
	Move      board.Move
	Score     int
	Depth     int    // depth of the last completed pass, 0 if none completed
	Nodes     uint64 // minimax nodes visited
	Completed bool   // every pass ran to the end
	FromBook  bool
	Time      time.Duration
}

// Searcher runs the iterative-deepening alpha-beta search of one request.
// It is not safe for concurrent use; the shared table is.
type Searcher struct {
	cfg   SearchConfig
	tt    *TranspositionTable
	nodes atomic.Uint64

	OnInfo func(SearchInfo)
}

// NewSearcher creates a searcher. tt may be nil.
func NewSearcher(cfg SearchConfig, tt *TranspositionTable) *Searcher {
	return &Searcher{cfg: cfg, tt: tt}
}

// Nodes returns the number of minimax nodes visited so far.
func (s *Searcher) Nodes() uint64 {
	return s.nodes.Load()
}

// Search picks a move for side.
//
// Passes run from a shallow first pass, where candidates are mostly scored
// statically, to a final pass at the full configured depth. Each pass scores
// every root candidate in the current order as minimax plus the mobility
// correction, then re-sorts the candidates best first. The time budget and ctx
// are checked before each candidate; once either runs out the best move of the
// last completed pass is returned, or the first generated move if none
// completed.
func (s *Searcher) Search(ctx context.Context, pos board.Position, side board.Color, tm *TimeManager) (Result, error) {
	tm.Init()
	s.nodes.Store(0)

	moves := pos.GenerateLegalMoves(side)
	if moves.Len() == 0 {
		return Result{Move: board.NoMove}, ErrNoMovesAvailable
	}

	roots := newRootMoves(moves)
	res := Result{Move: roots[0].Move, Score: -Infinity}

	pass := 0
	for start := s.cfg.MaxDepth; start >= 1; start-- {
		for i := range roots {
			if tm.ShouldStop(ctx) {
				res.Nodes = s.Nodes()
				res.Time = tm.Elapsed()
				return res, nil
			}

			next, captured := pos.Apply(roots[i].Move.From, roots[i].Move.To)
			score := s.minimax(next, side.Other(), side, start, -Infinity, Infinity, captured.Any())
			roots[i].Score = score + MobilityScore(next, side, s.cfg)
		}

		SortRootMoves(roots)
		pass++
		res.Move = roots[0].Move
		res.Score = roots[0].Score
		res.Depth = s.cfg.MaxDepth - start + 1

		if s.OnInfo != nil {
			s.OnInfo(SearchInfo{
				Pass:  pass,
				Depth: res.Depth,
				Move:  res.Move,
				Score: res.Score,
				Nodes: s.Nodes(),
				Time:  tm.Elapsed(),
			})
		}
	}

	res.Completed = true
	res.Nodes = s.Nodes()
	res.Time = tm.Elapsed()
	return res, nil
}

// minimax scores pos from maximizer's point of view. depth counts plies from
// the root, the root move included. captureActive is true when the move that
// produced pos captured something, which lets the search run past MaxDepth up
// to MaxCaptureDepth until the position turns quiet.
func (s *Searcher) minimax(pos board.Position, toMove, maximizer board.Color, depth, alpha, beta int, captureActive bool) int {
	s.nodes.Add(1)

	if winner, err := pos.Winner(); err != nil || winner != board.NoColor {
		return Material(pos, maximizer, s.cfg)
	}
	if !captureActive && depth >= s.cfg.MaxDepth {
		return Material(pos, maximizer, s.cfg)
	}
	if depth >= s.cfg.MaxCaptureDepth {
		return Material(pos, maximizer, s.cfg)
	}
	if captureActive && !s.noisy(pos, toMove) {
		return Material(pos, maximizer, s.cfg)
	}

	moves := pos.GenerateLegalMoves(toMove)

	if toMove == maximizer {
		best := -Infinity
		for _, m := range moves.Slice() {
			next, captured := pos.Apply(m.From, m.To)
			score := s.minimax(next, toMove.Other(), maximizer, depth+1, alpha, beta, captured.Any())
			best = max(best, score)
			alpha = max(alpha, score)
			if beta <= alpha {
				break
			}
		}
		return best
	}

	best := Infinity
	for _, m := range moves.Slice() {
		next, captured := pos.Apply(m.From, m.To)
		score := s.minimax(next, toMove.Other(), maximizer, depth+1, alpha, beta, captured.Any())
		best = min(best, score)
		beta = min(beta, score)
		if beta <= alpha {
			break
		}
	}
	return best
}

// noisy returns true if side has a legal move that captures something.
func (s *Searcher) noisy(pos board.Position, side board.Color) bool {
	var key uint64
	if s.tt != nil {
		key = pos.Hash(side)
		if noisy, ok := s.tt.Probe(key); ok {
			return noisy
		}
	}

	noisy := false
	for _, m := range pos.GenerateLegalMoves(side).Slice() {
		if _, captured := pos.Apply(m.From, m.To); captured.Any() {
			noisy = true
			break
		}
	}

	if s.tt != nil {
		s.tt.Store(key, noisy)
	}
	return noisy
}
