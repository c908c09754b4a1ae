package board

// GenerateLegalMoves generates every legal move for side.
// Pieces are visited in ascending square order; no other ordering is implied.
func (p Position) GenerateLegalMoves(side Color) *MoveList {
	ml := NewMoveList()
	pieces := p.Pieces(side)
	for pieces.Any() {
		p.generatePieceMoves(ml, pieces.PopLSB(), side)
	}
	return ml
}

// LegalMovesFrom generates the legal moves of the single piece on from.
func (p Position) LegalMovesFrom(from Square, side Color) *MoveList {
	ml := NewMoveList()
	if p.geo.Contains(from) && p.Pieces(side).IsSet(from) {
		p.generatePieceMoves(ml, from, side)
	}
	return ml
}

// LegalDestinations returns the destination squares of the piece on from.
func (p Position) LegalDestinations(from Square, side Color) []Square {
	moves := p.LegalMovesFrom(from, side)
	out := make([]Square, 0, moves.Len())
	for _, m := range moves.Slice() {
		out = append(out, m.To)
	}
	return out
}

// generatePieceMoves walks the four rays from from.
//
// A man slides over empty squares and stops at the first occupied one.
// A king slides the same way, but if its very first step is occupied it may
// hop: it keeps scanning across the unbroken run of occupied squares and may
// land on the first empty square after it. It never crosses a second run.
// Every candidate is confirmed by the rule engine.
func (p Position) generatePieceMoves(ml *MoveList, from Square, side Color) {
	occupied := p.Occupied()
	king := p.Kings[side].IsSet(from)

	for _, d := range Directions {
		firstOccupied := false
		for sq, first := p.geo.Step(from, d), true; sq != NoSquare; sq, first = p.geo.Step(sq, d), false {
			busy := occupied.IsSet(sq)
			if first {
				firstOccupied = busy
			}

			if busy {
				if king && firstOccupied {
					continue
				}
				break
			}
			if p.isLegal(from, sq, side, nil) {
				ml.Add(NewMove(from, sq))
			}
			if firstOccupied {
				break
			}
		}
	}
}
