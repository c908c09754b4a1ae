package board

import (
	"errors"
	"math"
	"testing"
)

func TestNewGeometryDimensions(t *testing.T) {
	tests := []struct {
		w, h int
		ok   bool
	}{
		{5, 5, true},
		{2, 4, true},
		{8, 8, true},
		{16, 8, true},
		{1, 5, false},
		{5, 3, false},
		{12, 11, false},
		{0, 0, false},
		{5, -1, false},
		{math.MaxInt, math.MaxInt, false},
	}

	for _, tt := range tests {
		g, err := NewGeometry(tt.w, tt.h)
		if tt.ok {
			if err != nil {
				t.Errorf("NewGeometry(%d, %d) error: %v", tt.w, tt.h, err)
				continue
			}
			if g.Size() != tt.w*tt.h {
				t.Errorf("NewGeometry(%d, %d).Size() = %d, want %d", tt.w, tt.h, g.Size(), tt.w*tt.h)
			}
			if g.Mask().PopCount() != tt.w*tt.h {
				t.Errorf("NewGeometry(%d, %d) mask has %d squares", tt.w, tt.h, g.Mask().PopCount())
			}
			continue
		}
		if !errors.Is(err, ErrInvalidDimensions) {
			t.Errorf("NewGeometry(%d, %d) error = %v, want ErrInvalidDimensions", tt.w, tt.h, err)
		}
	}
}

func TestShift(t *testing.T) {
	g, err := NewGeometry(5, 5)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		d    Direction
		in   Bitboard
		want Bitboard
	}{
		{"right", Right, SquareBB(3), SquareBB(4)},
		{"right off edge", Right, SquareBB(4), Empty},
		{"left", Left, SquareBB(11), SquareBB(10)},
		{"left off edge", Left, SquareBB(10), Empty},
		{"down", Down, SquareBB(7), SquareBB(12)},
		{"down off edge", Down, SquareBB(22), Empty},
		{"up", Up, SquareBB(12), SquareBB(7)},
		{"up off edge", Up, SquareBB(2), Empty},
		{"all or nothing", Right, SquareBB(3).Set(4), Empty},
		{"several squares", Down, SquareBB(0).Set(6), SquareBB(5).Set(11)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.Shift(tt.d, tt.in); got != tt.want {
				t.Errorf("Shift(%s) =\n%s\nwant\n%s", tt.d, got.Format(g), tt.want.Format(g))
			}
		})
	}

	for _, d := range Directions {
		b := SquareBB(12)
		if got := g.ShiftReverse(d, g.Shift(d, b)); got != b {
			t.Errorf("ShiftReverse(%s, Shift(%s, 12)) = %v", d, d, got.Squares())
		}
	}
}

func TestShiftAcrossWords(t *testing.T) {
	g, err := NewGeometry(16, 8)
	if err != nil {
		t.Fatal(err)
	}

	if got := g.Shift(Down, SquareBB(60)); got != SquareBB(76) {
		t.Errorf("Shift(down, 60) = %v, want [76]", got.Squares())
	}
	if got := g.Shift(Up, SquareBB(76)); got != SquareBB(60) {
		t.Errorf("Shift(up, 76) = %v, want [60]", got.Squares())
	}
	if got := g.Shift(Right, SquareBB(63)); got != SquareBB(64) {
		t.Errorf("Shift(right, 63) = %v, want [64]", got.Squares())
	}
	if got := g.Shift(Down, SquareBB(127)); !got.IsEmpty() {
		t.Errorf("Shift(down, 127) = %v, want empty", got.Squares())
	}
}

func TestBetween(t *testing.T) {
	g, err := NewGeometry(5, 5)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		a, b Square
		want []Square
	}{
		{7, 17, []Square{12}},
		{17, 7, []Square{12}},
		{10, 14, []Square{11, 12, 13}},
		{2, 22, []Square{7, 12, 17}},
		{11, 12, []Square{}},
		{0, 6, []Square{}},
	}

	for _, tt := range tests {
		got := g.Between(tt.a, tt.b).Squares()
		if len(got) != len(tt.want) {
			t.Errorf("Between(%d, %d) = %v, want %v", tt.a, tt.b, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("Between(%d, %d) = %v, want %v", tt.a, tt.b, got, tt.want)
				break
			}
		}
	}
}

func TestNeighbors(t *testing.T) {
	g, err := NewGeometry(5, 5)
	if err != nil {
		t.Fatal(err)
	}

	if got := g.Neighbors(12).PopCount(); got != 4 {
		t.Errorf("center has %d neighbors, want 4", got)
	}
	if got := g.Neighbors(0).PopCount(); got != 2 {
		t.Errorf("corner has %d neighbors, want 2", got)
	}
	if got := g.Neighbors(2).PopCount(); got != 3 {
		t.Errorf("edge square has %d neighbors, want 3", got)
	}
	// no wrap from the right edge to the next row
	if g.Neighbors(4).IsSet(5) {
		t.Error("square 4 should not neighbor square 5")
	}
}

func TestGeometryForShared(t *testing.T) {
	a, err := GeometryFor(6, 7)
	if err != nil {
		t.Fatal(err)
	}
	b, err := GeometryFor(6, 7)
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Error("GeometryFor returned distinct geometries for equal dimensions")
	}
}
