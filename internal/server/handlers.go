package server

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"github.com/hailam/latrones/internal/board"
	"github.com/hailam/latrones/internal/config"
	"github.com/hailam/latrones/internal/engine"
	"github.com/hailam/latrones/internal/game"
	"github.com/hailam/latrones/internal/render"
	"github.com/hailam/latrones/internal/storage"
)

// gameRequest is the board and side to move shared by most requests.
type gameRequest struct {
	Board game.State `json:"board"`
	Turn  string     `json:"turn"`
}

// parse validates the board and the turn.
func (g gameRequest) parse() (board.Position, board.Color, error) {
	pos, err := g.Board.Position()
	if err != nil {
		return board.Position{}, board.NoColor, fmt.Errorf("%w: %w", errBadRequest, err)
	}
	turn, ok := board.ParseColor(g.Turn)
	if !ok {
		return board.Position{}, board.NoColor, fmt.Errorf("%w: invalid turn %q", errBadRequest, g.Turn)
	}
	return pos, turn, nil
}

// parseLive is parse for positions that must still be in play.
func (g gameRequest) parseLive() (board.Position, board.Color, error) {
	pos, turn, err := g.parse()
	if err != nil {
		return pos, turn, err
	}
	winner, err := pos.Winner()
	if err != nil {
		return pos, turn, err
	}
	if winner != board.NoColor {
		return pos, turn, fmt.Errorf("%w: %s won", game.ErrGameOver, winner)
	}
	return pos, turn, nil
}

// gameResponse is the board after a move.
type gameResponse struct {
	Board  game.State `json:"board"`
	Turn   string     `json:"turn"`
	Winner string     `json:"winner"`
}

func newGameResponse(pos board.Position, turn, winner board.Color) gameResponse {
	return gameResponse{
		Board:  game.StateOf(pos),
		Turn:   turn.String(),
		Winner: game.WinnerName(winner),
	}
}

// ---- API: new game ----

func (s *Server) handleNew(w http.ResponseWriter, r *http.Request) {
	cfg := s.config.Get()
	req := struct {
		Width     int    `json:"width"`
		Height    int    `json:"height"`
		UserColor string `json:"user_color"`
	}{
		Width:     cfg.DefaultBoardSizeX,
		Height:    cfg.DefaultBoardSizeY,
		UserColor: cfg.DefaultUserColor().String(),
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, ok := board.ParseColor(req.UserColor)
	if !ok {
		writeError(w, fmt.Errorf("%w: invalid user color %q", errBadRequest, req.UserColor))
		return
	}
	pos, err := game.NewGame(req.Width, req.Height, user)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newGameResponse(pos, board.Light, board.NoColor))
}

// ---- API: legal destinations ----

func (s *Server) handleMoves(w http.ResponseWriter, r *http.Request) {
	var req struct {
		gameRequest
		X int `json:"x"`
		Y int `json:"y"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	pos, turn, err := req.parse()
	if err != nil {
		writeError(w, err)
		return
	}

	dests, err := game.LegalDestinations(pos, board.Point{X: req.X, Y: req.Y}, turn)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([][2]int, len(dests))
	for i, d := range dests {
		out[i] = [2]int{d.X, d.Y}
	}
	writeJSON(w, http.StatusOK, out)
}

// ---- API: commit a move ----

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	var req struct {
		gameRequest
		From board.Point `json:"from"`
		To   board.Point `json:"to"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	pos, turn, err := req.parseLive()
	if err != nil {
		writeError(w, err)
		return
	}

	next, winner, err := game.CommitMove(pos, req.From, req.To, turn)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newGameResponse(next, turn.Other(), winner))
}

// ---- API: bot move ----

type botResponse struct {
	From board.Point `json:"from"`
	To   board.Point `json:"to"`
	gameResponse
}

// botMove searches for turn and plays the result.
func (s *Server) botMove(r *http.Request, req gameRequest, onInfo func(engine.SearchInfo)) (botResponse, error) {
	pos, turn, err := req.parseLive()
	if err != nil {
		return botResponse{}, err
	}

	res, err := s.engine.Search(r.Context(), pos, turn, onInfo)
	if err != nil {
		return botResponse{}, err
	}
	next, winner, err := pos.Commit(res.Move.From, res.Move.To, turn)
	if err != nil {
		return botResponse{}, fmt.Errorf("bot move %s: %w", res.Move, err)
	}

	g := pos.Geometry()
	return botResponse{
		From:         g.Point(res.Move.From),
		To:           g.Point(res.Move.To),
		gameResponse: newGameResponse(next, turn.Other(), winner),
	}, nil
}

func (s *Server) handleBot(w http.ResponseWriter, r *http.Request) {
	var req gameRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	resp, err := s.botMove(r, req, nil)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// ---- API: render ----

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Board     game.State    `json:"board"`
		Format    string        `json:"format"`
		Flip      bool          `json:"flip"`
		CellSize  int           `json:"cell_size"`
		Highlight []board.Point `json:"highlight"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	pos, err := req.Board.Position()
	if err != nil {
		writeError(w, fmt.Errorf("%w: %w", errBadRequest, err))
		return
	}

	g := pos.Geometry()
	opts := render.Options{CellSize: req.CellSize, Flip: req.Flip, LastMove: board.NoMove}
	for _, p := range req.Highlight {
		sq, ok := g.SquareOf(p)
		if !ok {
			writeError(w, fmt.Errorf("%w: highlight %s", board.ErrOutOfBounds, p))
			return
		}
		opts.Highlight = append(opts.Highlight, sq)
	}

	var buf bytes.Buffer
	var contentType string
	switch req.Format {
	case "", "svg":
		contentType = "image/svg+xml"
		err = render.SVG(&buf, pos, opts)
	case "png":
		contentType = "image/png"
		err = render.PNG(&buf, pos, opts)
	default:
		err = fmt.Errorf("unknown format %q", req.Format)
	}
	if err != nil {
		writeError(w, errors.Join(errBadRequest, err))
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// ---- API: preferences ----

func (s *Server) defaultPreferences() storage.Preferences {
	cfg := s.config.Get()
	return storage.Preferences{
		BoardWidth:      cfg.DefaultBoardSizeX,
		BoardHeight:     cfg.DefaultBoardSizeY,
		UserColor:       cfg.DefaultUserColor().String(),
		PlayAgainstBot:  cfg.DefaultPlayAgainstBot,
		GameTimeSeconds: cfg.DefaultGameTimeSeconds,
		Difficulty:      engine.Medium.String(),
	}
}

func (s *Server) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	if s.prefs == nil {
		writeJSON(w, http.StatusOK, s.defaultPreferences())
		return
	}
	prefs, err := s.prefs.LoadPreferences(s.defaultPreferences())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

func (s *Server) handleSavePreferences(w http.ResponseWriter, r *http.Request) {
	if s.prefs == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "storage disabled"})
		return
	}
	prefs := s.defaultPreferences()
	if err := decodeJSON(r, &prefs); err != nil {
		writeError(w, err)
		return
	}
	if err := prefs.Validate(); err != nil {
		writeError(w, errors.Join(errBadRequest, err))
		return
	}
	if err := s.prefs.SavePreferences(prefs); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

// ---- API: config ----

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.config.Get())
}

// handleSaveConfig replaces the live configuration. Fields left out of the
// request keep their current value.
func (s *Server) handleSaveConfig(w http.ResponseWriter, r *http.Request) {
	cfg := s.config.Get()
	if err := decodeJSON(r, &cfg); err != nil {
		writeError(w, err)
		return
	}
	if err := s.config.Update(cfg); err != nil {
		writeError(w, errors.Join(errBadRequest, err))
		return
	}
	s.Apply(cfg)
	writeJSON(w, http.StatusOK, cfg)
}

// Apply pushes the search and debug settings of cfg to the engine.
func (s *Server) Apply(cfg config.Config) {
	s.engine.SetConfig(cfg.SearchConfig())
	s.engine.SetDebug(cfg.DebugMode)
}
