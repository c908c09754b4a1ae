package board

import (
	"math/bits"
	"strings"
)

// Bitboard is a 128-bit set where bit i corresponds to square i (row*width + col).
// Boards of up to MaxSquares squares fit in the two words; bits beyond the
// geometry's extent are always zero for positions built through this package.
type Bitboard struct {
	Lo, Hi uint64
}

// Empty is the bitboard with no bits set.
var Empty = Bitboard{}

// SquareBB returns a bitboard with only the given square set.
func SquareBB(sq Square) Bitboard {
	if sq < 64 {
		return Bitboard{Lo: 1 << sq}
	}
	if sq < MaxSquares {
		return Bitboard{Hi: 1 << (sq - 64)}
	}
	return Empty
}

// And returns the intersection of b and o.
func (b Bitboard) And(o Bitboard) Bitboard {
	return Bitboard{b.Lo & o.Lo, b.Hi & o.Hi}
}

// Or returns the union of b and o.
func (b Bitboard) Or(o Bitboard) Bitboard {
	return Bitboard{b.Lo | o.Lo, b.Hi | o.Hi}
}

// Xor returns the symmetric difference of b and o.
func (b Bitboard) Xor(o Bitboard) Bitboard {
	return Bitboard{b.Lo ^ o.Lo, b.Hi ^ o.Hi}
}

// AndNot returns b with every bit of o cleared.
func (b Bitboard) AndNot(o Bitboard) Bitboard {
	return Bitboard{b.Lo &^ o.Lo, b.Hi &^ o.Hi}
}

// Shl shifts every bit toward higher square indices.
func (b Bitboard) Shl(n uint) Bitboard {
	if n >= 64 {
		return Bitboard{Hi: b.Lo << (n - 64)}
	}
	return Bitboard{Lo: b.Lo << n, Hi: b.Hi<<n | b.Lo>>(64-n)}
}

// Shr shifts every bit toward lower square indices.
func (b Bitboard) Shr(n uint) Bitboard {
	if n >= 64 {
		return Bitboard{Lo: b.Hi >> (n - 64)}
	}
	return Bitboard{Lo: b.Lo>>n | b.Hi<<(64-n), Hi: b.Hi >> n}
}

// IsEmpty returns true if no bits are set.
func (b Bitboard) IsEmpty() bool {
	return b.Lo == 0 && b.Hi == 0
}

// Any returns true if at least one bit is set.
func (b Bitboard) Any() bool {
	return b.Lo != 0 || b.Hi != 0
}

// Intersects returns true if b and o share a bit.
func (b Bitboard) Intersects(o Bitboard) bool {
	return b.Lo&o.Lo != 0 || b.Hi&o.Hi != 0
}

// Set sets a bit at the given square.
func (b Bitboard) Set(sq Square) Bitboard {
	return b.Or(SquareBB(sq))
}

// Clear clears a bit at the given square.
func (b Bitboard) Clear(sq Square) Bitboard {
	return b.AndNot(SquareBB(sq))
}

// IsSet returns true if the bit at the given square is set.
func (b Bitboard) IsSet(sq Square) bool {
	return b.Intersects(SquareBB(sq))
}

// PopCount returns the number of set bits.
func (b Bitboard) PopCount() int {
	return bits.OnesCount64(b.Lo) + bits.OnesCount64(b.Hi)
}

// LSB returns the lowest set square, or NoSquare for an empty bitboard.
func (b Bitboard) LSB() Square {
	if b.Lo != 0 {
		return Square(bits.TrailingZeros64(b.Lo))
	}
	if b.Hi != 0 {
		return Square(64 + bits.TrailingZeros64(b.Hi))
	}
	return NoSquare
}

// PopLSB removes and returns the lowest set square.
func (b *Bitboard) PopLSB() Square {
	sq := b.LSB()
	if b.Lo != 0 {
		b.Lo &= b.Lo - 1
	} else if b.Hi != 0 {
		b.Hi &= b.Hi - 1
	}
	return sq
}

// ForEach calls f for each set square in ascending order.
func (b Bitboard) ForEach(f func(Square)) {
	for b.Any() {
		f(b.PopLSB())
	}
}

// Squares returns the set squares in ascending order.
func (b Bitboard) Squares() []Square {
	squares := make([]Square, 0, b.PopCount())
	for b.Any() {
		squares = append(squares, b.PopLSB())
	}
	return squares
}

// Format renders the bitboard as a grid for the given geometry, row 0 first.
func (b Bitboard) Format(g *Geometry) string {
	var sb strings.Builder
	for row := 0; row < g.Height(); row++ {
		for col := 0; col < g.Width(); col++ {
			if col > 0 {
				sb.WriteByte(' ')
			}
			if b.IsSet(g.SquareAt(col, row)) {
				sb.WriteByte('1')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
