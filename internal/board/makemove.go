package board

import "fmt"

// Apply relocates the piece on from to to, resolves captures and removes the
// captured pieces. It performs no legality checks and is shared by the
// validated Commit path and by speculative search.
func (p Position) Apply(from, to Square) (Position, Bitboard) {
	fromBB, toBB := SquareBB(from), SquareBB(to)

	switch {
	case p.Kings[Light].Intersects(fromBB):
		p.Kings[Light] = relocate(p.Kings[Light], fromBB, toBB)
	case p.Men[Light].Intersects(fromBB):
		p.Men[Light] = relocate(p.Men[Light], fromBB, toBB)
	case p.Kings[Dark].Intersects(fromBB):
		p.Kings[Dark] = relocate(p.Kings[Dark], fromBB, toBB)
	case p.Men[Dark].Intersects(fromBB):
		p.Men[Dark] = relocate(p.Men[Dark], fromBB, toBB)
	}

	captured := p.CapturesAfterMove(to)
	if captured.Any() {
		for c := Light; c <= Dark; c++ {
			p.Men[c] = p.Men[c].AndNot(captured)
			p.Kings[c] = p.Kings[c].AndNot(captured)
		}
	}
	return p, captured
}

func relocate(b, from, to Bitboard) Bitboard {
	return b.Xor(from).Or(to)
}

// Commit is the validated move entry point. It checks bounds and occupancy,
// applies the move, confirms legality against the position before the move
// and reports the winner, NoColor while the game goes on. On error the
// receiver is returned unchanged.
func (p Position) Commit(from, to Square, side Color) (Position, Color, error) {
	if !p.geo.Contains(from) || !p.geo.Contains(to) {
		return p, NoColor, fmt.Errorf("%w: %s -> %s on %dx%d", ErrOutOfBounds, from, to, p.geo.Width(), p.geo.Height())
	}

	occupied := p.Occupied()
	if !occupied.IsSet(from) {
		return p, NoColor, fmt.Errorf("%w: %s", ErrNoPieceAtSource, p.geo.Point(from))
	}
	if occupied.IsSet(to) {
		return p, NoColor, fmt.Errorf("%w: %s", ErrDestinationOccupied, p.geo.Point(to))
	}

	next, captured := p.Apply(from, to)
	if !p.isLegal(from, to, side, &captured) {
		return p, NoColor, fmt.Errorf("%w: %s %s -> %s", ErrIllegalMove, side, p.geo.Point(from), p.geo.Point(to))
	}

	winner, err := next.Winner()
	if err != nil {
		return p, NoColor, err
	}
	return next, winner, nil
}
