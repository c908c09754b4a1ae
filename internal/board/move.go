package board

import "fmt"

// Move relocates the piece on From to the empty square To.
type Move struct {
	From Square
	To   Square
}

// NoMove represents an invalid or null move.
var NoMove = Move{From: NoSquare, To: NoSquare}

// NewMove creates a move.
func NewMove(from, to Square) Move {
	return Move{From: from, To: to}
}

// IsNone returns true for NoMove.
func (m Move) IsNone() bool {
	return m == NoMove
}

// String returns "from-to" in square indices.
func (m Move) String() string {
	if m.IsNone() {
		return "0000"
	}
	return fmt.Sprintf("%s-%s", m.From, m.To)
}

// MoveList is a growable list of moves.
type MoveList struct {
	moves []Move
}

// NewMoveList creates an empty move list.
func NewMoveList() *MoveList {
	return &MoveList{moves: make([]Move, 0, 64)}
}

// Add adds a move to the list.
func (ml *MoveList) Add(m Move) {
	ml.moves = append(ml.moves, m)
}

// Len returns the number of moves in the list.
func (ml *MoveList) Len() int {
	return len(ml.moves)
}

// Slice returns the moves as a slice.
func (ml *MoveList) Slice() []Move {
	return ml.moves
}
