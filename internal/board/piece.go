package board

// Color represents the side owning a piece.
type Color uint8

const (
	Light Color = iota
	Dark
	NoColor Color = 2
)

// Other returns the opposite color.
func (c Color) Other() Color {
	return c ^ 1
}

// String returns the color name as used on the wire ("light" / "dark").
func (c Color) String() string {
	switch c {
	case Light:
		return "light"
	case Dark:
		return "dark"
	default:
		return "none"
	}
}

// ParseColor parses "light" or "dark".
func ParseColor(s string) (Color, bool) {
	switch s {
	case "light", "Light", "LightPiece", "white":
		return Light, true
	case "dark", "Dark", "DarkPiece", "black":
		return Dark, true
	default:
		return NoColor, false
	}
}

// Piece is a tagged value: the owning color and whether it is a king.
type Piece struct {
	Color Color `json:"color"`
	King  bool  `json:"king"`
}

// NoPiece marks an empty cell.
var NoPiece = Piece{Color: NoColor}

// IsNone returns true for an empty cell.
func (p Piece) IsNone() bool {
	return p.Color >= NoColor
}

// String returns the board character: l/L for light man/king, d/D for dark, '.' for empty.
func (p Piece) String() string {
	switch {
	case p.IsNone():
		return "."
	case p.Color == Light && p.King:
		return "L"
	case p.Color == Light:
		return "l"
	case p.King:
		return "D"
	default:
		return "d"
	}
}

// PieceFromChar converts a board character back to a Piece.
func PieceFromChar(c byte) Piece {
	switch c {
	case 'l':
		return Piece{Color: Light}
	case 'L':
		return Piece{Color: Light, King: true}
	case 'd':
		return Piece{Color: Dark}
	case 'D':
		return Piece{Color: Dark, King: true}
	default:
		return NoPiece
	}
}
