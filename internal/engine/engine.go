// Package engine implements the latrones bot: iterative-deepening alpha-beta
// search with capture extensions over board positions.
package engine

import (
	"context"
	"log"
	"sync"

	"github.com/hailam/latrones/internal/board"
)

// Book stores finished search results between requests.
type Book interface {
	Lookup(key uint64) (board.Move, bool)
	Store(key uint64, m board.Move) error
}

// Engine is the latrones bot. It is safe for concurrent use: every search
// gets its own Searcher, and the shared table is internally locked.
type Engine struct {
	mu    sync.RWMutex
	cfg   SearchConfig
	tt    *TranspositionTable
	book  Book
	debug bool

	// Callbacks
	OnInfo func(SearchInfo)
}

// NewEngine creates an engine with the given search settings and a table of
// ttSizeMB megabytes.
func NewEngine(cfg SearchConfig, ttSizeMB int) *Engine {
	return &Engine{
		cfg: cfg,
		tt:  NewTranspositionTable(ttSizeMB),
	}
}

// SetConfig replaces the search settings.
func (e *Engine) SetConfig(cfg SearchConfig) {
	e.mu.Lock()
	e.cfg = cfg
	e.mu.Unlock()
}

// Config returns the current search settings.
func (e *Engine) Config() SearchConfig {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cfg
}

// SetDifficulty switches to one of the presets.
func (e *Engine) SetDifficulty(d Difficulty) {
	if cfg, ok := DifficultySettings[d]; ok {
		e.SetConfig(cfg)
	}
}

// SetBook attaches a book. A nil book disables it.
func (e *Engine) SetBook(b Book) {
	e.mu.Lock()
	e.book = b
	e.mu.Unlock()
}

// SetDebug enables per-pass logging.
func (e *Engine) SetDebug(debug bool) {
	e.mu.Lock()
	e.debug = debug
	e.mu.Unlock()
}

// ChooseMove finds the move for side.
func (e *Engine) ChooseMove(ctx context.Context, pos board.Position, side board.Color) (board.Move, error) {
	res, err := e.Search(ctx, pos, side, e.OnInfo)
	if err != nil {
		return board.NoMove, err
	}
	return res.Move, nil
}

// Search runs a full search for side, reporting every completed pass to onInfo.
func (e *Engine) Search(ctx context.Context, pos board.Position, side board.Color, onInfo func(SearchInfo)) (Result, error) {
	e.mu.RLock()
	cfg, book, debug := e.cfg, e.book, e.debug
	e.mu.RUnlock()

	key := pos.Hash(side) ^ cfg.fingerprint()
	if book != nil {
		if m, ok := book.Lookup(key); ok && pos.IsLegal(m.From, m.To, side) {
			if debug {
				log.Printf("[engine] book move %s for %s", m, side)
			}
			return Result{Move: m, Completed: true, FromBook: true}, nil
		}
	}

	s := NewSearcher(cfg, e.tt)
	s.OnInfo = func(info SearchInfo) {
		if debug {
			log.Printf("[engine] pass %d depth %d move %s score %d nodes %d time %s",
				info.Pass, info.Depth, info.Move, info.Score, info.Nodes, info.Time)
		}
		if onInfo != nil {
			onInfo(info)
		}
	}

	res, err := s.Search(ctx, pos, side, NewTimeManager(cfg.Timeout))
	if err != nil {
		return res, err
	}

	if debug {
		log.Printf("[engine] %s plays %s after %d nodes in %s (completed=%v, table hit rate %.2f, %d/1000 full of %d)",
			side, res.Move, res.Nodes, res.Time, res.Completed, e.tt.HitRate(), e.tt.HashFull(), e.tt.Size())
	}

	if book != nil && res.Completed {
		if err := book.Store(key, res.Move); err != nil {
			log.Printf("[engine] book store failed: %v", err)
		}
	}
	return res, nil
}

// Clear empties the table.
func (e *Engine) Clear() {
	e.tt.Clear()
}

// Perft counts the leaf nodes of the legal move tree (for debugging move
// generation). Decided positions count as leaves.
func Perft(pos board.Position, side board.Color, depth int) uint64 {
	if depth == 0 {
		return 1
	}
	if winner, err := pos.Winner(); err != nil || winner != board.NoColor {
		return 1
	}

	moves := pos.GenerateLegalMoves(side)
	if depth == 1 {
		return uint64(moves.Len())
	}

	var nodes uint64
	for _, m := range moves.Slice() {
		next, _ := pos.Apply(m.From, m.To)
		nodes += Perft(next, side.Other(), depth-1)
	}
	return nodes
}
