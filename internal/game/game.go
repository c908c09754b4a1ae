// Package game exposes the four operations a presentation layer needs, over
// explicit state and in column/row coordinates: start a game, list the
// destinations of a piece, commit a move and ask the bot for one.
package game

import (
	"context"
	"errors"
	"fmt"

	"github.com/hailam/latrones/internal/board"
	"github.com/hailam/latrones/internal/engine"
)

// ErrGameOver is returned when the bot is asked to move in a decided position.
var ErrGameOver = errors.New("game is already decided")

// NewGame creates the starting position for a width x height board. Light
// always moves first.
func NewGame(width, height int, userColor board.Color) (board.Position, error) {
	if userColor >= board.NoColor {
		return board.Position{}, fmt.Errorf("invalid user color %s", userColor)
	}
	g, err := board.GeometryFor(width, height)
	if err != nil {
		return board.Position{}, err
	}
	return board.NewGame(g, userColor == board.Light)
}

func square(g *board.Geometry, p board.Point) (board.Square, error) {
	sq, ok := g.SquareOf(p)
	if !ok {
		return board.NoSquare, fmt.Errorf("%w: %s on %dx%d", board.ErrOutOfBounds, p, g.Width(), g.Height())
	}
	return sq, nil
}

// LegalDestinations returns where the piece on from may move. An empty square
// or an enemy piece yields no destinations.
func LegalDestinations(pos board.Position, from board.Point, side board.Color) ([]board.Point, error) {
	g := pos.Geometry()
	sq, err := square(g, from)
	if err != nil {
		return nil, err
	}

	dests := pos.LegalDestinations(sq, side)
	out := make([]board.Point, len(dests))
	for i, d := range dests {
		out[i] = g.Point(d)
	}
	return out, nil
}

// CommitMove validates and plays a move. The winner is NoColor while the game
// goes on.
func CommitMove(pos board.Position, from, to board.Point, side board.Color) (board.Position, board.Color, error) {
	g := pos.Geometry()
	src, err := square(g, from)
	if err != nil {
		return pos, board.NoColor, err
	}
	dst, err := square(g, to)
	if err != nil {
		return pos, board.NoColor, err
	}
	return pos.Commit(src, dst, side)
}

// BotMove asks the engine for side's move. It fails with ErrGameOver when the
// position is already decided.
func BotMove(ctx context.Context, eng *engine.Engine, pos board.Position, side board.Color) (from, to board.Point, err error) {
	winner, err := pos.Winner()
	if err != nil {
		return board.Point{}, board.Point{}, err
	}
	if winner != board.NoColor {
		return board.Point{}, board.Point{}, fmt.Errorf("%w: %s won", ErrGameOver, winner)
	}

	m, err := eng.ChooseMove(ctx, pos, side)
	if err != nil {
		return board.Point{}, board.Point{}, err
	}
	g := pos.Geometry()
	return g.Point(m.From), g.Point(m.To), nil
}

// WinnerName returns "light" or "dark", or "" while the game goes on.
func WinnerName(c board.Color) string {
	if c >= board.NoColor {
		return ""
	}
	return c.String()
}
