package board

import "fmt"

// Grid is the sparse, row-major board exchanged with callers: Grid[row][col],
// row 0 first as stored. Empty cells hold NoPiece.
type Grid [][]Piece

// NewGrid returns an empty width x height grid.
func NewGrid(width, height int) Grid {
	grid := make(Grid, height)
	for row := range grid {
		grid[row] = make([]Piece, width)
		for col := range grid[row] {
			grid[row][col] = NoPiece
		}
	}
	return grid
}

// FromGrid converts a grid into a position on the matching geometry.
func FromGrid(grid Grid) (Position, error) {
	height := len(grid)
	width := 0
	if height > 0 {
		width = len(grid[0])
	}

	g, err := GeometryFor(width, height)
	if err != nil {
		return Position{}, err
	}

	p := NewPosition(g)
	for row, cells := range grid {
		if len(cells) != width {
			return Position{}, fmt.Errorf("%w: row %d has %d cells, want %d", ErrInvalidDimensions, row, len(cells), width)
		}
		for col, pc := range cells {
			if pc.IsNone() {
				continue
			}
			bb := SquareBB(g.SquareAt(col, row))
			if pc.King {
				p.Kings[pc.Color] = p.Kings[pc.Color].Or(bb)
			} else {
				p.Men[pc.Color] = p.Men[pc.Color].Or(bb)
			}
		}
	}
	return p, nil
}

// Grid converts the position back into a sparse grid.
func (p Position) Grid() Grid {
	grid := NewGrid(p.geo.Width(), p.geo.Height())
	p.Occupied().ForEach(func(sq Square) {
		grid[p.geo.Row(sq)][p.geo.Col(sq)] = p.PieceAt(sq)
	})
	return grid
}

// FlipVertical returns the grid with its rows reversed, for display from the
// user's side of the board.
func FlipVertical(grid Grid) Grid {
	out := make(Grid, len(grid))
	for i, row := range grid {
		out[len(grid)-1-i] = append([]Piece(nil), row...)
	}
	return out
}
