package board

import (
	"errors"
	"fmt"
	"sync"
)

// Direction is one of the four orthogonal directions.
type Direction uint8

const (
	Right Direction = iota
	Left
	Down
	Up
)

// Directions lists all four directions in scan order.
var Directions = [4]Direction{Right, Left, Down, Up}

// Opposite returns the reverse direction.
func (d Direction) Opposite() Direction {
	return d ^ 1
}

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case Right:
		return "right"
	case Left:
		return "left"
	case Down:
		return "down"
	case Up:
		return "up"
	default:
		return "?"
	}
}

// Board size limits.
const (
	MinWidth  = 2
	MinHeight = 4
)

// ErrInvalidDimensions is returned for boards that cannot be represented.
var ErrInvalidDimensions = errors.New("invalid board dimensions")

// Geometry holds everything derived from the board dimensions: the extent mask,
// the four edge masks that stop shifts from wrapping, and per-square lookup
// tables. A Geometry is immutable after construction and safe to share.
type Geometry struct {
	width, height int
	size          int

	mask  Bitboard
	edges [4]Bitboard // indexed by the direction that would cross the edge

	step      [4][]Square   // neighbor in each direction, NoSquare off board
	rays      [4][]Bitboard // squares strictly beyond sq in each direction
	neighbors []Bitboard    // orthogonal neighbors of sq
}

// NewGeometry builds the geometry for a width x height board.
func NewGeometry(width, height int) (*Geometry, error) {
	if width < MinWidth || height < MinHeight || width > MaxSquares || height > MaxSquares || width*height > MaxSquares {
		return nil, fmt.Errorf("%w: %dx%d (need width>=%d, height>=%d, area<=%d)",
			ErrInvalidDimensions, width, height, MinWidth, MinHeight, MaxSquares)
	}

	g := &Geometry{width: width, height: height, size: width * height}

	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			sq := g.SquareAt(col, row)
			bb := SquareBB(sq)
			g.mask = g.mask.Or(bb)
			if col == width-1 {
				g.edges[Right] = g.edges[Right].Or(bb)
			}
			if col == 0 {
				g.edges[Left] = g.edges[Left].Or(bb)
			}
			if row == height-1 {
				g.edges[Down] = g.edges[Down].Or(bb)
			}
			if row == 0 {
				g.edges[Up] = g.edges[Up].Or(bb)
			}
		}
	}

	for _, d := range Directions {
		g.step[d] = make([]Square, g.size)
		g.rays[d] = make([]Bitboard, g.size)
	}
	g.neighbors = make([]Bitboard, g.size)

	for i := 0; i < g.size; i++ {
		sq := Square(i)
		for _, d := range Directions {
			next := g.Shift(d, SquareBB(sq))
			if next.IsEmpty() {
				g.step[d][i] = NoSquare
			} else {
				g.step[d][i] = next.LSB()
				g.neighbors[i] = g.neighbors[i].Or(next)
			}

			var ray Bitboard
			for cur := next; cur.Any(); cur = g.Shift(d, cur) {
				ray = ray.Or(cur)
			}
			g.rays[d][i] = ray
		}
	}

	return g, nil
}

var (
	geometryMu    sync.RWMutex
	geometryCache = make(map[[2]int]*Geometry)
)

// GeometryFor returns the shared geometry for the given dimensions, building it
// on first use. Geometries are immutable, so sharing them between games of
// different sizes is safe.
func GeometryFor(width, height int) (*Geometry, error) {
	key := [2]int{width, height}

	geometryMu.RLock()
	g, ok := geometryCache[key]
	geometryMu.RUnlock()
	if ok {
		return g, nil
	}

	g, err := NewGeometry(width, height)
	if err != nil {
		return nil, err
	}

	geometryMu.Lock()
	if cached, ok := geometryCache[key]; ok {
		g = cached
	} else {
		geometryCache[key] = g
	}
	geometryMu.Unlock()
	return g, nil
}

// Width returns the number of columns.
func (g *Geometry) Width() int { return g.width }

// Height returns the number of rows.
func (g *Geometry) Height() int { return g.height }

// Size returns the number of squares.
func (g *Geometry) Size() int { return g.size }

// Mask returns the bitboard of all valid squares.
func (g *Geometry) Mask() Bitboard { return g.mask }

// Edge returns the squares from which a shift in d would leave the board.
func (g *Geometry) Edge(d Direction) Bitboard { return g.edges[d] }

// SquareAt flattens a column/row pair into a square index.
func (g *Geometry) SquareAt(col, row int) Square {
	return Square(row*g.width + col)
}

// Col returns the column of sq.
func (g *Geometry) Col(sq Square) int { return int(sq) % g.width }

// Row returns the row of sq.
func (g *Geometry) Row(sq Square) int { return int(sq) / g.width }

// Point converts a square to its column/row coordinate.
func (g *Geometry) Point(sq Square) Point {
	return Point{X: g.Col(sq), Y: g.Row(sq)}
}

// SquareOf converts a coordinate to a square, reporting false when it is off board.
func (g *Geometry) SquareOf(p Point) (Square, bool) {
	if p.X < 0 || p.Y < 0 || p.X >= g.width || p.Y >= g.height {
		return NoSquare, false
	}
	return g.SquareAt(p.X, p.Y), true
}

// Contains returns true if sq lies on the board.
func (g *Geometry) Contains(sq Square) bool {
	return int(sq) < g.size
}

// OnBoard returns true if every bit of b lies on the board.
func (g *Geometry) OnBoard(b Bitboard) bool {
	return b.AndNot(g.mask).IsEmpty()
}

// Shift moves every bit of b one square in direction d. It is all or nothing:
// if any bit of b sits on the edge that d would cross, the result is Empty.
// Callers isolate a single square to get per-square behavior.
func (g *Geometry) Shift(d Direction, b Bitboard) Bitboard {
	if b.Intersects(g.edges[d]) {
		return Empty
	}
	switch d {
	case Right:
		return b.Shl(1).And(g.mask)
	case Left:
		return b.Shr(1).And(g.mask)
	case Down:
		return b.Shl(uint(g.width)).And(g.mask)
	case Up:
		return b.Shr(uint(g.width)).And(g.mask)
	}
	return Empty
}

// ShiftReverse shifts b in the direction opposite to d.
func (g *Geometry) ShiftReverse(d Direction, b Bitboard) Bitboard {
	return g.Shift(d.Opposite(), b)
}

// Step returns the neighbor of sq in direction d, or NoSquare at the edge.
func (g *Geometry) Step(sq Square, d Direction) Square {
	return g.step[d][sq]
}

// Ray returns the squares strictly beyond sq in direction d up to the edge.
func (g *Geometry) Ray(sq Square, d Direction) Bitboard {
	return g.rays[d][sq]
}

// Neighbors returns the orthogonal neighbors of sq.
func (g *Geometry) Neighbors(sq Square) Bitboard {
	return g.neighbors[sq]
}

// Aligned returns true if a and b share a row or a column.
func (g *Geometry) Aligned(a, b Square) bool {
	return g.Row(a) == g.Row(b) || g.Col(a) == g.Col(b)
}

// DirectionOf returns the direction from a toward b when they are aligned.
func (g *Geometry) DirectionOf(a, b Square) (Direction, bool) {
	switch {
	case a == b:
		return 0, false
	case g.Row(a) == g.Row(b) && b > a:
		return Right, true
	case g.Row(a) == g.Row(b):
		return Left, true
	case g.Col(a) == g.Col(b) && b > a:
		return Down, true
	case g.Col(a) == g.Col(b):
		return Up, true
	}
	return 0, false
}

// Between returns the squares strictly between a and b on their shared line.
// It is Empty when the squares are not aligned or are adjacent.
func (g *Geometry) Between(a, b Square) Bitboard {
	d, ok := g.DirectionOf(a, b)
	if !ok {
		return Empty
	}
	return g.rays[d][a].And(g.rays[d.Opposite()][b])
}

// Distance returns the Manhattan distance between a and b.
func (g *Geometry) Distance(a, b Square) int {
	return abs(g.Col(a)-g.Col(b)) + abs(g.Row(a)-g.Row(b))
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
