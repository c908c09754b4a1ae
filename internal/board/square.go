// Package board implements the latrones board: a compact four-bitboard position,
// board geometry, move generation, capture resolution and move application.
package board

import "fmt"

// Square is a board index, row*width + col, with row 0 the top row as stored.
type Square uint8

const (
	// MaxSquares is the largest board area a Bitboard can represent.
	MaxSquares = 128

	// NoSquare marks an absent square (off board, empty bitboard).
	NoSquare Square = 255
)

// IsValid returns true if the square fits in a Bitboard.
// Whether it lies on a particular board is decided by Geometry.Contains.
func (sq Square) IsValid() bool {
	return sq < MaxSquares
}

// String returns the numeric index, or "-" for NoSquare.
func (sq Square) String() string {
	if sq == NoSquare {
		return "-"
	}
	return fmt.Sprintf("%d", uint8(sq))
}

// Point is a column/row coordinate as exchanged with callers outside the core.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// String returns the point as "(x,y)".
func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}
