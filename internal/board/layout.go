package board

// NewGame creates the starting position. Each side gets a full row of men on
// its home edge and one king centered on the adjacent row. The opponent of the
// user starts on row 0 with its king left-rounded to column (width-1)/2; the
// user starts on the last row with its king right-rounded to column width/2.
func NewGame(g *Geometry, userIsLight bool) (Position, error) {
	user, opponent := Light, Dark
	if !userIsLight {
		user, opponent = Dark, Light
	}

	p := NewPosition(g)
	w, h := g.Width(), g.Height()

	for col := 0; col < w; col++ {
		p.Men[opponent] = p.Men[opponent].Set(g.SquareAt(col, 0))
		p.Men[user] = p.Men[user].Set(g.SquareAt(col, h-1))
	}
	p.Kings[opponent] = p.Kings[opponent].Set(g.SquareAt((w-1)/2, 1))
	p.Kings[user] = p.Kings[user].Set(g.SquareAt(w/2, h-2))

	if err := p.Validate(); err != nil {
		return Position{}, err
	}
	return p, nil
}
