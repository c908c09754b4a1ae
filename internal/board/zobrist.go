package board

// Zobrist hash keys for position hashing.
// Uses PRNG with fixed seed for reproducibility.
var (
	zobristPiece      [2][2][MaxSquares]uint64 // [Color][man=0,king=1][Square]
	zobristSideToMove uint64                   // XOR when dark to move
	zobristWidth      [MaxSquares + 1]uint64
	zobristHeight     [MaxSquares + 1]uint64
)

func init() {
	initZobrist()
}

// Simple PRNG for reproducible Zobrist keys
type prng struct {
	state uint64
}

func newPRNG(seed uint64) *prng {
	return &prng{state: seed}
}

// xorshift64* algorithm
func (p *prng) next() uint64 {
	p.state ^= p.state >> 12
	p.state ^= p.state << 25
	p.state ^= p.state >> 27
	return p.state * 0x2545F4914F6CDD1D
}

func initZobrist() {
	rng := newPRNG(0x98F107A2BEEF1234)

	for c := Light; c <= Dark; c++ {
		for kind := 0; kind < 2; kind++ {
			for sq := 0; sq < MaxSquares; sq++ {
				zobristPiece[c][kind][sq] = rng.next()
			}
		}
	}
	for i := range zobristWidth {
		zobristWidth[i] = rng.next()
		zobristHeight[i] = rng.next()
	}
	zobristSideToMove = rng.next()
}

// Hash returns the Zobrist key of the position with side to move. Board
// dimensions are part of the key, so equal square sets on different boards differ.
func (p Position) Hash(side Color) uint64 {
	h := zobristWidth[p.geo.Width()] ^ zobristHeight[p.geo.Height()]
	for c := Light; c <= Dark; c++ {
		p.Men[c].ForEach(func(sq Square) { h ^= zobristPiece[c][0][sq] })
		p.Kings[c].ForEach(func(sq Square) { h ^= zobristPiece[c][1][sq] })
	}
	if side == Dark {
		h ^= zobristSideToMove
	}
	return h
}
