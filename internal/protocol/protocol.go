// Package protocol implements a line-oriented text protocol for playing and
// scripting the engine from a terminal.
//
// Coordinates are column/row pairs with row 0 at the top. Commands:
//
//	new [width height [light|dark]]   start a game; the user colour defaults to light
//	position <turn> <row>/<row>/...   set up a board, e.g. "position dark d.L../...../..."
//	d                                 print the board and the side to move
//	moves [x y]                       list legal moves, or the destinations of one piece
//	move x1 y1 x2 y2                  play a move for the side to move
//	go [depth N] [capture N] [movetime MS]
//	                                  search; prints info lines then "bestmove x1 y1 x2 y2"
//	setoption name <name> value <value>
//	perft [depth]
//	quit
package protocol

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"runtime/pprof"
	"strconv"
	"strings"
	"time"

	"github.com/hailam/latrones/internal/board"
	"github.com/hailam/latrones/internal/engine"
	"github.com/hailam/latrones/internal/game"
)

// Protocol holds the state of one text session.
type Protocol struct {
	engine   *engine.Engine
	position board.Position
	turn     board.Color
	winner   board.Color

	in  io.Reader
	out io.Writer

	// CPU profiling
	profileFile *os.File
}

// New creates a protocol handler reading commands from in and writing
// responses to out. It starts with an 8x8 game, light to move.
func New(eng *engine.Engine, in io.Reader, out io.Writer) *Protocol {
	p := &Protocol{engine: eng, in: in, out: out}
	if err := p.newGame(8, 8, board.Light); err != nil {
		panic(err)
	}
	return p
}

// Run processes commands until quit or end of input.
func (p *Protocol) Run() error {
	scanner := bufio.NewScanner(p.in)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Fields(line)
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "new":
			p.handleNew(args)
		case "position":
			p.handlePosition(args)
		case "d":
			p.handleDisplay()
		case "moves":
			p.handleMoves(args)
		case "move":
			p.handleMove(args)
		case "go":
			p.handleGo(args)
		case "setoption":
			p.handleSetOption(args)
		case "perft":
			p.handlePerft(args)
		case "isready":
			p.println("readyok")
		case "quit":
			p.stopProfile()
			return nil
		default:
			p.errorf("unknown command %q", cmd)
		}
	}
	p.stopProfile()
	return scanner.Err()
}

func (p *Protocol) println(a ...any) {
	fmt.Fprintln(p.out, a...)
}

func (p *Protocol) errorf(format string, a ...any) {
	fmt.Fprintf(p.out, "info string error: "+format+"\n", a...)
}

// Reset starts a new width x height game with light to move.
func (p *Protocol) Reset(width, height int, user board.Color) error {
	return p.newGame(width, height, user)
}

func (p *Protocol) newGame(width, height int, user board.Color) error {
	pos, err := game.NewGame(width, height, user)
	if err != nil {
		return err
	}
	p.position = pos
	p.turn = board.Light
	p.winner = board.NoColor
	p.engine.Clear()
	return nil
}

// handleNew parses "new [width height [light|dark]]".
func (p *Protocol) handleNew(args []string) {
	width, height, user := 8, 8, board.Light
	if len(args) >= 2 {
		var err1, err2 error
		width, err1 = strconv.Atoi(args[0])
		height, err2 = strconv.Atoi(args[1])
		if err1 != nil || err2 != nil {
			p.errorf("invalid dimensions %q %q", args[0], args[1])
			return
		}
	}
	if len(args) >= 3 {
		c, ok := board.ParseColor(args[2])
		if !ok {
			p.errorf("invalid colour %q", args[2])
			return
		}
		user = c
	}
	if err := p.newGame(width, height, user); err != nil {
		p.errorf("%v", err)
		return
	}
	p.println("ok")
}

// handlePosition parses "position <turn> <row>/<row>/...".
func (p *Protocol) handlePosition(args []string) {
	if len(args) != 2 {
		p.errorf("usage: position <light|dark> <row>/<row>/...")
		return
	}
	turn, ok := board.ParseColor(args[0])
	if !ok {
		p.errorf("invalid colour %q", args[0])
		return
	}
	pos, err := board.ParsePosition(strings.Split(args[1], "/")...)
	if err != nil {
		p.errorf("%v", err)
		return
	}
	winner, err := pos.Winner()
	if err != nil {
		p.errorf("%v", err)
		return
	}
	p.position, p.turn, p.winner = pos, turn, winner
	p.println("ok")
}

func (p *Protocol) handleDisplay() {
	fmt.Fprint(p.out, p.position.String())
	if p.winner != board.NoColor {
		fmt.Fprintf(p.out, "winner: %s\n", p.winner)
		return
	}
	fmt.Fprintf(p.out, "turn: %s\n", p.turn)
}

// parseInts converts every argument to an integer.
func parseInts(args []string) ([]int, error) {
	out := make([]int, len(args))
	for i, a := range args {
		n, err := strconv.Atoi(a)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", a)
		}
		out[i] = n
	}
	return out, nil
}

// handleMoves prints every legal move of the side to move, or with "x y" the
// destinations of that piece.
func (p *Protocol) handleMoves(args []string) {
	if p.winner != board.NoColor {
		p.println("none")
		return
	}

	if len(args) == 2 {
		xy, err := parseInts(args)
		if err != nil {
			p.errorf("%v", err)
			return
		}
		dests, err := game.LegalDestinations(p.position, board.Point{X: xy[0], Y: xy[1]}, p.turn)
		if err != nil {
			p.errorf("%v", err)
			return
		}
		parts := make([]string, len(dests))
		for i, d := range dests {
			parts[i] = fmt.Sprintf("%d %d", d.X, d.Y)
		}
		p.println(formatList(parts))
		return
	}

	g := p.position.Geometry()
	moves := p.position.GenerateLegalMoves(p.turn)
	parts := make([]string, 0, moves.Len())
	for _, m := range moves.Slice() {
		parts = append(parts, formatMove(g, m))
	}
	p.println(formatList(parts))
}

func formatList(parts []string) string {
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ", ")
}

func formatMove(g *board.Geometry, m board.Move) string {
	from, to := g.Point(m.From), g.Point(m.To)
	return fmt.Sprintf("%d %d %d %d", from.X, from.Y, to.X, to.Y)
}

// handleMove parses "move x1 y1 x2 y2" and plays it for the side to move.
func (p *Protocol) handleMove(args []string) {
	if p.winner != board.NoColor {
		p.errorf("game over, %s won", p.winner)
		return
	}
	if len(args) != 4 {
		p.errorf("usage: move x1 y1 x2 y2")
		return
	}
	xy, err := parseInts(args)
	if err != nil {
		p.errorf("%v", err)
		return
	}

	next, winner, err := game.CommitMove(p.position,
		board.Point{X: xy[0], Y: xy[1]}, board.Point{X: xy[2], Y: xy[3]}, p.turn)
	if err != nil {
		p.errorf("%v", err)
		return
	}
	p.position, p.turn, p.winner = next, p.turn.Other(), winner
	if winner != board.NoColor {
		fmt.Fprintf(p.out, "winner %s\n", winner)
		return
	}
	p.println("ok")
}

// GoOptions holds parsed "go" command options. Zero values keep the engine
// settings.
type GoOptions struct {
	Depth        int
	CaptureDepth int
	MoveTime     time.Duration
}

func parseGoOptions(args []string) GoOptions {
	opts := GoOptions{}

	for i := 0; i < len(args); i++ {
		if i+1 >= len(args) {
			break
		}
		switch args[i] {
		case "depth":
			opts.Depth, _ = strconv.Atoi(args[i+1])
			i++
		case "capture":
			opts.CaptureDepth, _ = strconv.Atoi(args[i+1])
			i++
		case "movetime":
			ms, _ := strconv.Atoi(args[i+1])
			opts.MoveTime = time.Duration(ms) * time.Millisecond
			i++
		}
	}

	return opts
}

// searchConfig applies the go options on top of the engine settings.
func (o GoOptions) searchConfig(cfg engine.SearchConfig) engine.SearchConfig {
	if o.Depth > 0 {
		cfg.MaxDepth = o.Depth
		if cfg.MaxCaptureDepth < cfg.MaxDepth {
			cfg.MaxCaptureDepth = cfg.MaxDepth
		}
	}
	if o.CaptureDepth > 0 {
		cfg.MaxCaptureDepth = max(o.CaptureDepth, cfg.MaxDepth)
	}
	if o.MoveTime > 0 {
		cfg.Timeout = o.MoveTime
	}
	return cfg
}

// handleGo searches the current position and prints the best move. The
// search runs to completion before the next command is read.
func (p *Protocol) handleGo(args []string) {
	if p.winner != board.NoColor {
		p.println("bestmove none")
		return
	}

	opts := parseGoOptions(args)
	base := p.engine.Config()
	cfg := opts.searchConfig(base)
	if cfg != base {
		p.engine.SetConfig(cfg)
		defer p.engine.SetConfig(base)
	}

	g := p.position.Geometry()
	res, err := p.engine.Search(context.Background(), p.position, p.turn, func(info engine.SearchInfo) {
		p.sendInfo(g, info)
	})
	if err != nil {
		p.errorf("%v", err)
		p.println("bestmove none")
		return
	}
	if res.FromBook {
		p.println("info string book move")
	}
	fmt.Fprintf(p.out, "bestmove %s\n", formatMove(g, res.Move))
}

// sendInfo prints one completed pass.
func (p *Protocol) sendInfo(g *board.Geometry, info engine.SearchInfo) {
	var parts []string

	parts = append(parts, fmt.Sprintf("depth %d", info.Depth))
	parts = append(parts, fmt.Sprintf("score %d", info.Score))
	parts = append(parts, fmt.Sprintf("nodes %d", info.Nodes))
	parts = append(parts, fmt.Sprintf("time %d", info.Time.Milliseconds()))

	// NPS
	if info.Time > 0 {
		nps := uint64(float64(info.Nodes) / info.Time.Seconds())
		parts = append(parts, fmt.Sprintf("nps %d", nps))
	}
	parts = append(parts, "move "+formatMove(g, info.Move))

	fmt.Fprintf(p.out, "info %s\n", strings.Join(parts, " "))
}

// handleSetOption processes "setoption name <name> value <value>".
func (p *Protocol) handleSetOption(args []string) {
	var name, value string
	readingName := false
	readingValue := false

	for _, arg := range args {
		switch arg {
		case "name":
			readingName = true
			readingValue = false
		case "value":
			readingName = false
			readingValue = true
		default:
			if readingName {
				if name != "" {
					name += " "
				}
				name += arg
			} else if readingValue {
				if value != "" {
					value += " "
				}
				value += arg
			}
		}
	}

	cfg := p.engine.Config()
	switch strings.ToLower(name) {
	case "difficulty":
		d, err := engine.ParseDifficulty(value)
		if err != nil {
			p.errorf("%v", err)
			return
		}
		p.engine.SetDifficulty(d)
		return
	case "maxdepth":
		n, err := strconv.Atoi(value)
		if err != nil {
			p.errorf("invalid depth %q", value)
			return
		}
		cfg.MaxDepth = n
	case "maxcapturedepth":
		n, err := strconv.Atoi(value)
		if err != nil {
			p.errorf("invalid depth %q", value)
			return
		}
		cfg.MaxCaptureDepth = n
	case "timeout":
		ms, err := strconv.Atoi(value)
		if err != nil {
			p.errorf("invalid timeout %q", value)
			return
		}
		cfg.Timeout = time.Duration(ms) * time.Millisecond
	case "debug":
		enabled := strings.ToLower(value) == "true"
		p.engine.SetDebug(enabled)
		return
	case "cpuprofile":
		p.startProfile(value)
		return
	default:
		p.errorf("unknown option %q", name)
		return
	}

	if err := cfg.Validate(); err != nil {
		p.errorf("%v", err)
		return
	}
	p.engine.SetConfig(cfg)
}

// startProfile stops any running CPU profile and, unless path is empty or
// "stop", starts a new one.
func (p *Protocol) startProfile(path string) {
	p.stopProfile()
	if path == "" || path == "stop" {
		return
	}
	f, err := os.Create(path)
	if err != nil {
		p.errorf("failed to create profile: %v", err)
		return
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		f.Close()
		p.errorf("failed to start profile: %v", err)
		return
	}
	p.profileFile = f
	fmt.Fprintf(p.out, "info string CPU profiling to %s\n", path)
}

func (p *Protocol) stopProfile() {
	if p.profileFile == nil {
		return
	}
	pprof.StopCPUProfile()
	p.profileFile.Close()
	p.profileFile = nil
	p.println("info string CPU profile saved")
}

// handlePerft runs a perft count from the current position.
func (p *Protocol) handlePerft(args []string) {
	depth := 3
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 0 {
			p.errorf("invalid depth %q", args[0])
			return
		}
		depth = n
	}

	start := time.Now()
	nodes := engine.Perft(p.position, p.turn, depth)
	elapsed := time.Since(start)

	fmt.Fprintf(p.out, "Nodes: %d\n", nodes)
	fmt.Fprintf(p.out, "Time: %v\n", elapsed)
	if elapsed > 0 {
		nps := float64(nodes) / elapsed.Seconds()
		fmt.Fprintf(p.out, "NPS: %.0f\n", nps)
	}
}
