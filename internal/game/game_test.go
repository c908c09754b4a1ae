package game

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/hailam/latrones/internal/board"
	"github.com/hailam/latrones/internal/engine"
)

func TestNewGame(t *testing.T) {
	pos, err := NewGame(6, 6, board.Dark)
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	// the user plays dark from the bottom row
	if pc := pos.PieceAt(pos.Geometry().SquareAt(3, 4)); pc != (board.Piece{Color: board.Dark, King: true}) {
		t.Errorf("user king = %s, want D", pc)
	}

	if _, err := NewGame(1, 6, board.Light); !errors.Is(err, board.ErrInvalidDimensions) {
		t.Errorf("NewGame(1, 6) error = %v, want ErrInvalidDimensions", err)
	}
	if _, err := NewGame(5, 5, board.NoColor); err == nil {
		t.Error("NewGame accepted NoColor")
	}
}

func TestLegalDestinations(t *testing.T) {
	pos, err := NewGame(5, 5, board.Light)
	if err != nil {
		t.Fatal(err)
	}

	dests, err := LegalDestinations(pos, board.Point{X: 0, Y: 4}, board.Light)
	if err != nil {
		t.Fatal(err)
	}
	want := map[board.Point]bool{{X: 0, Y: 3}: true, {X: 0, Y: 2}: true, {X: 0, Y: 1}: true}
	if len(dests) != len(want) {
		t.Fatalf("LegalDestinations = %v, want %d points", dests, len(want))
	}
	for _, d := range dests {
		if !want[d] {
			t.Errorf("unexpected destination %s", d)
		}
	}

	if _, err := LegalDestinations(pos, board.Point{X: 5, Y: 0}, board.Light); !errors.Is(err, board.ErrOutOfBounds) {
		t.Errorf("off-board source error = %v, want ErrOutOfBounds", err)
	}
}

func TestCommitMove(t *testing.T) {
	pos, err := NewGame(5, 5, board.Light)
	if err != nil {
		t.Fatal(err)
	}

	next, winner, err := CommitMove(pos, board.Point{X: 0, Y: 4}, board.Point{X: 0, Y: 2}, board.Light)
	if err != nil {
		t.Fatalf("CommitMove: %v", err)
	}
	if winner != board.NoColor || WinnerName(winner) != "" {
		t.Errorf("winner = %q after an opening move", WinnerName(winner))
	}
	if next.PieceAt(10) != (board.Piece{Color: board.Light}) {
		t.Errorf("moved piece missing:\n%s", next)
	}

	tests := []struct {
		name     string
		from, to board.Point
		want     error
	}{
		{"off board", board.Point{X: 0, Y: 4}, board.Point{X: 0, Y: -1}, board.ErrOutOfBounds},
		{"empty source", board.Point{X: 0, Y: 2}, board.Point{X: 0, Y: 3}, board.ErrNoPieceAtSource},
		{"occupied", board.Point{X: 0, Y: 4}, board.Point{X: 1, Y: 4}, board.ErrDestinationOccupied},
		{"diagonal", board.Point{X: 0, Y: 4}, board.Point{X: 1, Y: 3}, board.ErrIllegalMove},
		{"opponent piece", board.Point{X: 0, Y: 0}, board.Point{X: 0, Y: 1}, board.ErrIllegalMove},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := CommitMove(pos, tt.from, tt.to, board.Light); !errors.Is(err, tt.want) {
				t.Errorf("CommitMove error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestBotMove(t *testing.T) {
	pos, err := NewGame(5, 5, board.Light)
	if err != nil {
		t.Fatal(err)
	}
	eng := engine.NewEngine(engine.DifficultySettings[engine.Easy], 1)

	from, to, err := BotMove(context.Background(), eng, pos, board.Dark)
	if err != nil {
		t.Fatalf("BotMove: %v", err)
	}
	if _, _, err := CommitMove(pos, from, to, board.Dark); err != nil {
		t.Errorf("bot move %s->%s does not commit: %v", from, to, err)
	}

	decided, err := board.ParsePosition(
		"d . . . .",
		". . . . .",
		". . . . .",
		". . . . .",
		"l L . . .",
	)
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := BotMove(context.Background(), eng, decided, board.Dark); !errors.Is(err, ErrGameOver) {
		t.Errorf("BotMove on a decided game error = %v, want ErrGameOver", err)
	}
}

func TestStateRoundTrip(t *testing.T) {
	pos, err := NewGame(7, 5, board.Dark)
	if err != nil {
		t.Fatal(err)
	}

	s := StateOf(pos)
	if s.Width != 7 || s.Height != 5 || len(s.Pieces) != 16 {
		t.Fatalf("StateOf = %dx%d with %d pieces", s.Width, s.Height, len(s.Pieces))
	}

	back, err := s.Position()
	if err != nil {
		t.Fatal(err)
	}
	if back != pos {
		t.Errorf("round trip mismatch:\n%s\nwant\n%s", back, pos)
	}
}

func TestStateErrors(t *testing.T) {
	tests := []struct {
		name string
		s    State
		want error
	}{
		{"off board", State{Width: 5, Height: 5, Pieces: []PieceInfo{{X: 5, Y: 0, Color: "light"}}}, board.ErrOutOfBounds},
		{"overlap", State{Width: 5, Height: 5, Pieces: []PieceInfo{
			{X: 1, Y: 1, Color: "light"},
			{X: 1, Y: 1, Color: "dark", King: true},
		}}, board.ErrOverlappingPieces},
		{"bad size", State{Width: 5, Height: 2}, board.ErrInvalidDimensions},
		{"negative height", State{Width: 5, Height: -1}, board.ErrInvalidDimensions},
		{"negative width with piece", State{Width: -3, Height: 5, Pieces: []PieceInfo{{X: 0, Y: 0, Color: "light"}}}, board.ErrInvalidDimensions},
		{"oversized", State{Width: 1 << 30, Height: 1}, board.ErrInvalidDimensions},
		{"area overflow", State{Width: math.MaxInt, Height: math.MaxInt}, board.ErrInvalidDimensions},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.s.Position(); !errors.Is(err, tt.want) {
				t.Errorf("Position() error = %v, want %v", err, tt.want)
			}
		})
	}

	bad := State{Width: 5, Height: 5, Pieces: []PieceInfo{{X: 0, Y: 0, Color: "green"}}}
	if _, err := bad.Position(); err == nil {
		t.Error("Position() accepted an unknown color")
	}
}

func TestRows(t *testing.T) {
	pos, err := NewGame(4, 4, board.Light)
	if err != nil {
		t.Fatal(err)
	}

	rows := Rows(pos, false)
	if rows[0] != "d d d d" || rows[3] != "l l l l" {
		t.Errorf("Rows = %q", rows)
	}
	flipped := Rows(pos, true)
	if flipped[0] != rows[3] || flipped[3] != rows[0] {
		t.Errorf("flipped rows = %q", flipped)
	}
}
