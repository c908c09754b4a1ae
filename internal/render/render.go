// Package render draws board diagrams: SVG directly, PNG by rasterizing the SVG.
package render

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"

	svg "github.com/ajstarks/svgo"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/draw"

	"github.com/hailam/latrones/internal/board"
)

// Options controls a diagram.
type Options struct {
	CellSize  int            // pixels per square (0 = DefaultCellSize)
	Flip      bool           // draw row 0 at the bottom
	Highlight []board.Square // e.g. legal destinations
	LastMove  board.Move     // NoMove for none
}

// DefaultCellSize is used when Options.CellSize is zero.
const DefaultCellSize = 48

// renderScale is the supersampling factor of PNG output.
const renderScale = 3

// Colors
const (
	lightSquare  = "#f0d9b5"
	darkSquare   = "#b58863"
	highlightSq  = "#9fc164"
	lastMoveSq   = "#cdd26a"
	lightPiece   = "#f5f0e6"
	darkPiece    = "#2b2b2b"
	pieceOutline = "#111111"
	kingRing     = "#d4a017"
)

func (o Options) cellSize() (int, error) {
	switch {
	case o.CellSize == 0:
		return DefaultCellSize, nil
	case o.CellSize < 8 || o.CellSize > 256:
		return 0, fmt.Errorf("cell size %d out of range [8, 256]", o.CellSize)
	}
	return o.CellSize, nil
}

// SVG writes the diagram of pos as an SVG document.
func SVG(w io.Writer, pos board.Position, opts Options) error {
	var buf bytes.Buffer
	if err := drawSVG(&buf, pos, opts); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func drawSVG(w io.Writer, pos board.Position, opts Options) error {
	cell, err := opts.cellSize()
	if err != nil {
		return err
	}
	g := pos.Geometry()
	width, height := g.Width()*cell, g.Height()*cell

	marked := make(map[board.Square]string)
	if !opts.LastMove.IsNone() {
		marked[opts.LastMove.From] = lastMoveSq
		marked[opts.LastMove.To] = lastMoveSq
	}
	for _, sq := range opts.Highlight {
		marked[sq] = highlightSq
	}

	canvas := svg.New(w)
	canvas.Startview(width, height, 0, 0, width, height)

	for i := 0; i < g.Size(); i++ {
		sq := board.Square(i)
		x, y := origin(g, sq, cell, opts.Flip)

		fill := lightSquare
		if (g.Col(sq)+g.Row(sq))%2 == 1 {
			fill = darkSquare
		}
		if c, ok := marked[sq]; ok {
			fill = c
		}
		canvas.Rect(x, y, cell, cell, "fill:"+fill)
	}

	pos.Occupied().ForEach(func(sq board.Square) {
		pc := pos.PieceAt(sq)
		x, y := origin(g, sq, cell, opts.Flip)
		cx, cy := x+cell/2, y+cell/2

		fill := lightPiece
		if pc.Color == board.Dark {
			fill = darkPiece
		}
		canvas.Circle(cx, cy, cell*38/100,
			fmt.Sprintf("fill:%s;stroke:%s;stroke-width:%d", fill, pieceOutline, max(1, cell/24)))
		if pc.King {
			canvas.Circle(cx, cy, cell*22/100,
				fmt.Sprintf("fill:none;stroke:%s;stroke-width:%d", kingRing, max(2, cell/12)))
		}
	})

	canvas.End()
	return nil
}

// origin returns the top-left pixel of sq.
func origin(g *board.Geometry, sq board.Square, cell int, flip bool) (int, int) {
	row := g.Row(sq)
	if flip {
		row = g.Height() - 1 - row
	}
	return g.Col(sq) * cell, row * cell
}

// Image rasterizes the diagram. The SVG is drawn at renderScale times the
// target size and scaled down for smooth edges.
func Image(pos board.Position, opts Options) (*image.RGBA, error) {
	cell, err := opts.cellSize()
	if err != nil {
		return nil, err
	}
	g := pos.Geometry()
	width, height := g.Width()*cell, g.Height()*cell

	var buf bytes.Buffer
	if err := drawSVG(&buf, pos, opts); err != nil {
		return nil, err
	}

	icon, err := oksvg.ReadIconStream(&buf)
	if err != nil {
		return nil, fmt.Errorf("parse diagram: %w", err)
	}

	rw, rh := width*renderScale, height*renderScale
	icon.SetTarget(0, 0, float64(rw), float64(rh))

	hi := image.NewRGBA(image.Rect(0, 0, rw, rh))
	scanner := rasterx.NewScannerGV(rw, rh, hi, hi.Bounds())
	raster := rasterx.NewDasher(rw, rh, scanner)
	icon.Draw(raster, 1.0)

	out := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(out, out.Bounds(), hi, hi.Bounds(), draw.Src, nil)
	return out, nil
}

// PNG writes the diagram of pos as a PNG image.
func PNG(w io.Writer, pos board.Position, opts Options) error {
	img, err := Image(pos, opts)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}
