package board

// IsLegal reports whether side may move the piece on from to to.
func (p Position) IsLegal(from, to Square, side Color) bool {
	return p.isLegal(from, to, side, nil)
}

// isLegal checks, in order: ownership, move geometry, occupancy, then the path.
// A clear path is a slide, legal unless it gets one of the mover's kings next
// to the destination captured. A path filled end to end is a hop, open to kings
// only and legal only when it captures an enemy piece without losing a king of
// the mover. Any other path is blocked.
//
// captured, when non-nil, is the capture mask of this move already computed by
// the caller and saves simulating the move again.
func (p Position) isLegal(from, to Square, side Color, captured *Bitboard) bool {
	g := p.geo
	if side >= NoColor || !g.Contains(from) || !p.Pieces(side).IsSet(from) {
		return false
	}
	if from == to || !g.Contains(to) || !g.Aligned(from, to) {
		return false
	}

	occupied := p.Occupied()
	if !occupied.IsSet(from) || occupied.IsSet(to) {
		return false
	}

	between := g.Between(from, to)
	obstructions := occupied.And(between).PopCount()
	kingMoves := p.Kings[side].IsSet(from)

	// the mover's kings where they stand once the move is made
	myKings := p.Kings[side]
	if kingMoves {
		myKings = relocate(myKings, SquareBB(from), SquareBB(to))
	}

	switch {
	case obstructions == 0:
		if myKings.Intersects(g.Neighbors(to)) {
			if p.capturesOf(from, to, captured).Intersects(myKings) {
				return false
			}
		}
		return true

	case obstructions == between.PopCount() && kingMoves:
		c := p.capturesOf(from, to, captured)
		return c.Intersects(p.Pieces(side.Other())) && !c.Intersects(myKings)
	}
	return false
}

func (p Position) capturesOf(from, to Square, captured *Bitboard) Bitboard {
	if captured != nil {
		return *captured
	}
	_, c := p.Apply(from, to)
	return c
}

// CapturesAfterMove returns every square captured by the piece that just
// arrived on to. p is the position after relocation and before any removal.
//
// Four mechanisms are unioned, in order:
//   - line trap: a run of enemy men closed off by one of the mover's pieces;
//   - king siege: an enemy king with all orthogonal neighbors occupied;
//   - group capture: an enemy group touching to with no empty neighbor;
//   - self check: a king of the mover left besieged once the above are removed.
func (p Position) CapturesAfterMove(to Square) Bitboard {
	g := p.geo
	mover := p.PieceAt(to).Color
	if mover >= NoColor {
		return Empty
	}
	enemy := mover.Other()
	occupied := p.Occupied()
	enemies := p.Pieces(enemy)

	captured := p.trappedAlongLine(to, mover)
	captured = captured.Or(g.besieged(p.Kings[enemy], occupied))

	var groups Bitboard
	for _, d := range Directions {
		nb := g.Step(to, d)
		if nb == NoSquare || !enemies.IsSet(nb) || groups.IsSet(nb) {
			continue
		}
		groups = groups.Or(g.trappedGroup(enemies, occupied, nb))
	}
	captured = captured.Or(groups)

	captured = captured.Or(g.besieged(p.Kings[mover], occupied.AndNot(captured)))
	return captured
}

// trappedAlongLine walks outward from to in each direction over occupied
// squares, collecting enemy men. Reaching one of the mover's pieces captures
// the collected run; reaching an empty square or the edge captures nothing.
// Enemy kings do not break the run but are never taken this way. A direction
// is skipped when to sits between two enemy pieces on that line.
func (p Position) trappedAlongLine(to Square, mover Color) Bitboard {
	g := p.geo
	enemy := mover.Other()
	occupied := p.Occupied()
	enemyMen := p.Men[enemy]
	enemies := p.Pieces(enemy)
	mine := p.Pieces(mover)

	var trapped Bitboard
	for _, d := range Directions {
		fwd := g.Step(to, d)
		if fwd == NoSquare {
			continue
		}
		back := g.Step(to, d.Opposite())
		if enemies.IsSet(fwd) && back != NoSquare && enemies.IsSet(back) {
			continue
		}

		var run Bitboard
		for sq := fwd; sq != NoSquare; sq = g.Step(sq, d) {
			if !occupied.IsSet(sq) {
				break
			}
			if enemyMen.IsSet(sq) {
				run = run.Set(sq)
			} else if mine.IsSet(sq) {
				trapped = trapped.Or(run)
				break
			}
		}
	}
	return trapped
}

// Encircled returns true if every on-board orthogonal neighbor of sq is occupied.
// The board edge counts as occupied.
func (g *Geometry) Encircled(sq Square, occupied Bitboard) bool {
	return g.neighbors[sq].AndNot(occupied).IsEmpty()
}

// besieged returns the kings that are encircled.
func (g *Geometry) besieged(kings, occupied Bitboard) Bitboard {
	var out Bitboard
	for kings.Any() {
		sq := kings.PopLSB()
		if g.Encircled(sq, occupied) {
			out = out.Set(sq)
		}
	}
	return out
}

// trappedGroup flood-fills the group of enemies connected to start. The whole
// group is returned if none of its members has an empty neighbor; otherwise
// the group can breathe and Empty is returned.
func (g *Geometry) trappedGroup(enemies, occupied Bitboard, start Square) Bitboard {
	var group Bitboard
	frontier := SquareBB(start)

	for frontier.Any() {
		sq := frontier.PopLSB()
		if group.IsSet(sq) {
			continue
		}
		group = group.Set(sq)

		if g.neighbors[sq].AndNot(occupied).Any() {
			return Empty
		}
		frontier = frontier.Or(g.neighbors[sq].And(enemies).AndNot(group))
	}
	return group
}
