package game

import (
	"fmt"

	"github.com/hailam/latrones/internal/board"
)

// PieceInfo is one occupied cell of the sparse board exchanged with clients.
type PieceInfo struct {
	X     int    `json:"x"`
	Y     int    `json:"y"`
	Color string `json:"color"`
	King  bool   `json:"king"`
}

// State is the wire form of a board: dimensions and the occupied cells, row 0
// at the top as stored.
type State struct {
	Width  int         `json:"width"`
	Height int         `json:"height"`
	Pieces []PieceInfo `json:"pieces"`
}

// StateOf converts a position to its wire form. Pieces are listed in square order.
func StateOf(pos board.Position) State {
	g := pos.Geometry()
	s := State{Width: g.Width(), Height: g.Height(), Pieces: []PieceInfo{}}
	pos.Occupied().ForEach(func(sq board.Square) {
		pc := pos.PieceAt(sq)
		s.Pieces = append(s.Pieces, PieceInfo{
			X:     g.Col(sq),
			Y:     g.Row(sq),
			Color: pc.Color.String(),
			King:  pc.King,
		})
	})
	return s
}

// Position converts the wire form back into a position. Pieces off the board
// fail with ErrOutOfBounds and two pieces on one cell with ErrOverlappingPieces.
func (s State) Position() (board.Position, error) {
	if _, err := board.GeometryFor(s.Width, s.Height); err != nil {
		return board.Position{}, err
	}
	grid := board.NewGrid(s.Width, s.Height)
	for i, p := range s.Pieces {
		if p.X < 0 || p.Y < 0 || p.X >= s.Width || p.Y >= s.Height {
			return board.Position{}, fmt.Errorf("%w: piece %d at (%d,%d)", board.ErrOutOfBounds, i, p.X, p.Y)
		}
		c, ok := board.ParseColor(p.Color)
		if !ok {
			return board.Position{}, fmt.Errorf("piece %d: unknown color %q", i, p.Color)
		}
		if !grid[p.Y][p.X].IsNone() {
			return board.Position{}, fmt.Errorf("%w: (%d,%d)", board.ErrOverlappingPieces, p.X, p.Y)
		}
		grid[p.Y][p.X] = board.Piece{Color: c, King: p.King}
	}
	return board.FromGrid(grid)
}

// Rows returns the board as text rows, flipped so that row 0 is at the bottom
// when flip is set.
func Rows(pos board.Position, flip bool) []string {
	grid := pos.Grid()
	if flip {
		grid = board.FlipVertical(grid)
	}
	rows := make([]string, len(grid))
	for i, row := range grid {
		b := make([]byte, 0, 2*len(row))
		for j, pc := range row {
			if j > 0 {
				b = append(b, ' ')
			}
			b = append(b, pc.String()...)
		}
		rows[i] = string(b)
	}
	return rows
}
