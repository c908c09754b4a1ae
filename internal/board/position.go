package board

import (
	"errors"
	"fmt"
	"strings"
)

// Errors returned by the board package.
var (
	ErrOutOfBounds         = errors.New("square out of board bounds")
	ErrNoPieceAtSource     = errors.New("no piece at source square")
	ErrDestinationOccupied = errors.New("destination square is occupied")
	ErrIllegalMove         = errors.New("illegal move")
	ErrOverlappingPieces   = errors.New("overlapping pieces on the board")
	ErrInconsistentOutcome = errors.New("both sides won at the same time")
)

// Position is the board state: men and kings for each color, four disjoint
// bitboards. Positions are values; every operation returns a new Position and
// never modifies its receiver, so speculative search can share them freely.
type Position struct {
	geo   *Geometry
	Men   [2]Bitboard // indexed by Color
	Kings [2]Bitboard // indexed by Color
}

// NewPosition returns an empty position on the given geometry.
func NewPosition(g *Geometry) Position {
	return Position{geo: g}
}

// Geometry returns the geometry the position lives on.
func (p Position) Geometry() *Geometry {
	return p.geo
}

// Occupied returns every occupied square.
func (p Position) Occupied() Bitboard {
	return p.Men[Light].Or(p.Kings[Light]).Or(p.Men[Dark]).Or(p.Kings[Dark])
}

// Pieces returns all squares owned by c.
func (p Position) Pieces(c Color) Bitboard {
	return p.Men[c].Or(p.Kings[c])
}

// PieceAt returns the piece at sq, or NoPiece if empty.
func (p Position) PieceAt(sq Square) Piece {
	bb := SquareBB(sq)
	switch {
	case p.Kings[Light].Intersects(bb):
		return Piece{Color: Light, King: true}
	case p.Men[Light].Intersects(bb):
		return Piece{Color: Light}
	case p.Kings[Dark].Intersects(bb):
		return Piece{Color: Dark, King: true}
	case p.Men[Dark].Intersects(bb):
		return Piece{Color: Dark}
	}
	return NoPiece
}

// IsEmpty returns true if no piece stands on sq.
func (p Position) IsEmpty(sq Square) bool {
	return !p.Occupied().IsSet(sq)
}

// Put returns a copy of the position with pc placed on sq, replacing whatever
// stood there. Placing NoPiece clears the square.
func (p Position) Put(sq Square, pc Piece) Position {
	bb := SquareBB(sq)
	for c := Light; c <= Dark; c++ {
		p.Men[c] = p.Men[c].AndNot(bb)
		p.Kings[c] = p.Kings[c].AndNot(bb)
	}
	if pc.IsNone() {
		return p
	}
	if pc.King {
		p.Kings[pc.Color] = p.Kings[pc.Color].Or(bb)
	} else {
		p.Men[pc.Color] = p.Men[pc.Color].Or(bb)
	}
	return p
}

// Validate checks that the four bitboards are pairwise disjoint and on board.
func (p Position) Validate() error {
	sets := [4]Bitboard{p.Men[Light], p.Kings[Light], p.Men[Dark], p.Kings[Dark]}
	for i := 0; i < len(sets); i++ {
		for j := i + 1; j < len(sets); j++ {
			if overlap := sets[i].And(sets[j]); overlap.Any() {
				return fmt.Errorf("%w: square %s", ErrOverlappingPieces, overlap.LSB())
			}
		}
	}
	if p.geo != nil && !p.geo.OnBoard(p.Occupied()) {
		return fmt.Errorf("%w: piece outside %dx%d board", ErrOutOfBounds, p.geo.Width(), p.geo.Height())
	}
	return nil
}

// Loses returns true if c has no men or no kings left. Either condition alone loses.
func (p Position) Loses(c Color) bool {
	return p.Men[c].IsEmpty() || p.Kings[c].IsEmpty()
}

// Winner returns the winning color, or NoColor while the game goes on.
// A position where both sides have lost is an invariant violation.
func (p Position) Winner() (Color, error) {
	lightLoses := p.Loses(Light)
	darkLoses := p.Loses(Dark)

	switch {
	case lightLoses && darkLoses:
		return NoColor, ErrInconsistentOutcome
	case darkLoses:
		return Light, nil
	case lightLoses:
		return Dark, nil
	}
	return NoColor, nil
}

// String returns a visual representation of the position, row 0 first.
func (p Position) String() string {
	if p.geo == nil {
		return "<no geometry>\n"
	}
	var sb strings.Builder
	for row := 0; row < p.geo.Height(); row++ {
		for col := 0; col < p.geo.Width(); col++ {
			if col > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(p.PieceAt(p.geo.SquareAt(col, row)).String())
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// ParsePosition builds a position from rows of board characters (l, L, d, D, '.'),
// whitespace between cells ignored. All rows must have the same width.
func ParsePosition(rows ...string) (Position, error) {
	cells := make([][]Piece, 0, len(rows))
	for _, r := range rows {
		r = strings.ReplaceAll(r, " ", "")
		row := make([]Piece, 0, len(r))
		for i := 0; i < len(r); i++ {
			if r[i] != '.' && PieceFromChar(r[i]).IsNone() {
				return Position{}, fmt.Errorf("invalid board character %q", r[i])
			}
			row = append(row, PieceFromChar(r[i]))
		}
		cells = append(cells, row)
	}
	return FromGrid(cells)
}
