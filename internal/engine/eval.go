package engine

import (
	"github.com/hailam/latrones/internal/board"
)

// Infinity bounds every score. A side left without moves scores -Infinity
// for the maximizer and +Infinity for the minimizer.
const Infinity = 1 << 30

// Material returns the piece value of maximizer minus that of its opponent.
func Material(pos board.Position, maximizer board.Color, cfg SearchConfig) int {
	return sideMaterial(pos, maximizer, cfg) - sideMaterial(pos, maximizer.Other(), cfg)
}

func sideMaterial(pos board.Position, c board.Color, cfg SearchConfig) int {
	return pos.Kings[c].PopCount()*cfg.PointsKing + pos.Men[c].PopCount()*cfg.PointsMan
}

// Mobility estimates how many squares the pieces of c can reach: from each
// piece, the empty squares passed sliding outward in each direction until
// blocked or off board. Hops are ignored.
func Mobility(pos board.Position, c board.Color) int {
	g := pos.Geometry()
	occupied := pos.Occupied()

	n := 0
	pieces := pos.Pieces(c)
	for pieces.Any() {
		from := pieces.PopLSB()
		for _, d := range board.Directions {
			for sq := g.Step(from, d); sq != board.NoSquare && !occupied.IsSet(sq); sq = g.Step(sq, d) {
				n++
			}
		}
	}
	return n
}

// MobilityScore is the root correction: the mobility difference between
// maximizer and its opponent, weighted.
func MobilityScore(pos board.Position, maximizer board.Color, cfg SearchConfig) int {
	return (Mobility(pos, maximizer) - Mobility(pos, maximizer.Other())) * cfg.PointsMobility
}

// Evaluate returns the score of a root candidate without searching: material
// plus the mobility correction.
func Evaluate(pos board.Position, maximizer board.Color, cfg SearchConfig) int {
	return Material(pos, maximizer, cfg) + MobilityScore(pos, maximizer, cfg)
}
