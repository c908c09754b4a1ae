package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"

	"github.com/hailam/latrones/internal/board"
	"github.com/hailam/latrones/internal/config"
	"github.com/hailam/latrones/internal/engine"
	"github.com/hailam/latrones/internal/game"
	"github.com/hailam/latrones/internal/storage"
)

// kingTrap has light to move; only (4,2)->(3,2) captures the dark king.
var kingTrap = []string{
	"d . . . .",
	". . l . .",
	". l D . l",
	". . l . .",
	". . . . L",
}

func newTestServer(t *testing.T, prefs PreferenceStore) (*Server, *httptest.Server) {
	t.Helper()
	cfg := config.Default()
	cfg.MaxDepth, cfg.MaxDepthCapture = 2, 3
	eng := engine.NewEngine(cfg.SearchConfig(), 1)
	srv := New(eng, config.NewStore(cfg), prefs)
	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)
	return srv, ts
}

func post(t *testing.T, ts *httptest.Server, path string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.Post(ts.URL+path, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode body: %v", err)
	}
}

func stateOf(t *testing.T, rows ...string) game.State {
	t.Helper()
	pos, err := board.ParsePosition(rows...)
	if err != nil {
		t.Fatal(err)
	}
	return game.StateOf(pos)
}

func TestPing(t *testing.T) {
	_, ts := newTestServer(t, nil)
	resp, err := http.Get(ts.URL + "/api/ping")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if csp := resp.Header.Get("Content-Security-Policy"); csp != apiCSP {
		t.Errorf("CSP = %q", csp)
	}
}

func TestNewGame(t *testing.T) {
	_, ts := newTestServer(t, nil)

	resp := post(t, ts, "/api/new", map[string]any{"width": 5, "height": 5, "user_color": "dark"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var got gameResponse
	decode(t, resp, &got)
	if got.Board.Width != 5 || got.Board.Height != 5 || len(got.Board.Pieces) != 12 {
		t.Errorf("board = %+v", got.Board)
	}
	if got.Turn != "light" || got.Winner != "" {
		t.Errorf("turn %q winner %q, want light and none", got.Turn, got.Winner)
	}

	// defaults come from the configuration
	resp = post(t, ts, "/api/new", map[string]any{})
	decode(t, resp, &got)
	if got.Board.Width != 8 || got.Board.Height != 8 {
		t.Errorf("default board is %dx%d, want 8x8", got.Board.Width, got.Board.Height)
	}

	for _, body := range []map[string]any{
		{"width": 1, "height": 5},
		{"width": 5, "height": 5, "user_color": "green"},
	} {
		if resp := post(t, ts, "/api/new", body); resp.StatusCode != http.StatusBadRequest {
			t.Errorf("new %v: status %d, want 400", body, resp.StatusCode)
		}
	}
}

func startState(t *testing.T) game.State {
	t.Helper()
	pos, err := game.NewGame(5, 5, board.Light)
	if err != nil {
		t.Fatal(err)
	}
	return game.StateOf(pos)
}

func TestMoves(t *testing.T) {
	_, ts := newTestServer(t, nil)

	resp := post(t, ts, "/api/moves", map[string]any{"board": startState(t), "turn": "light", "x": 0, "y": 4})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var dests [][2]int
	decode(t, resp, &dests)
	if len(dests) != 3 {
		t.Errorf("destinations = %v, want 3", dests)
	}

	resp = post(t, ts, "/api/moves", map[string]any{"board": startState(t), "turn": "light", "x": 7, "y": 0})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("off-board source: status %d, want 400", resp.StatusCode)
	}
	resp = post(t, ts, "/api/moves", map[string]any{"board": startState(t), "turn": "blue"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad turn: status %d, want 400", resp.StatusCode)
	}
}

func TestMove(t *testing.T) {
	_, ts := newTestServer(t, nil)
	start := startState(t)

	resp := post(t, ts, "/api/move", map[string]any{
		"board": start, "turn": "light",
		"from": board.Point{X: 0, Y: 4}, "to": board.Point{X: 0, Y: 2},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var got gameResponse
	decode(t, resp, &got)
	if got.Turn != "dark" {
		t.Errorf("turn after light moved = %q", got.Turn)
	}

	tests := []struct {
		name     string
		board    game.State
		turn     string
		from, to board.Point
		want     int
	}{
		{"diagonal", start, "light", board.Point{X: 0, Y: 4}, board.Point{X: 1, Y: 3}, http.StatusBadRequest},
		{"out of turn", start, "dark", board.Point{X: 0, Y: 4}, board.Point{X: 0, Y: 3}, http.StatusBadRequest},
		{"occupied", start, "light", board.Point{X: 0, Y: 4}, board.Point{X: 1, Y: 4}, http.StatusBadRequest},
		{"decided", stateOf(t, "d . . .", ". . . .", ". . . .", "l L . ."), "light",
			board.Point{X: 0, Y: 3}, board.Point{X: 0, Y: 2}, http.StatusConflict},
		{"overlap", game.State{Width: 5, Height: 5, Pieces: []game.PieceInfo{
			{X: 0, Y: 0, Color: "light"}, {X: 0, Y: 0, Color: "dark"},
		}}, "light", board.Point{}, board.Point{X: 0, Y: 1}, http.StatusBadRequest},
		{"negative height", game.State{Width: 5, Height: -1}, "light", board.Point{}, board.Point{X: 0, Y: 1}, http.StatusBadRequest},
		{"oversized", game.State{Width: 1 << 30, Height: 1}, "light", board.Point{}, board.Point{X: 0, Y: 1}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, ts, "/api/move", map[string]any{"board": tt.board, "turn": tt.turn, "from": tt.from, "to": tt.to})
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}

func TestBot(t *testing.T) {
	_, ts := newTestServer(t, nil)

	resp := post(t, ts, "/api/bot", map[string]any{"board": stateOf(t, kingTrap...), "turn": "light"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var got botResponse
	decode(t, resp, &got)
	if got.From != (board.Point{X: 4, Y: 2}) || got.To != (board.Point{X: 3, Y: 2}) {
		t.Errorf("bot played %s->%s, want (4,2)->(3,2)", got.From, got.To)
	}
	if got.Winner != "light" {
		t.Errorf("winner = %q, want light", got.Winner)
	}

	resp = post(t, ts, "/api/bot", map[string]any{"board": stateOf(t, "d . . .", ". . . .", ". . . .", "l L . ."), "turn": "dark"})
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("bot on a decided board: status %d, want 409", resp.StatusCode)
	}
}

func TestRender(t *testing.T) {
	_, ts := newTestServer(t, nil)

	tests := []struct {
		format, contentType string
		status              int
	}{
		{"svg", "image/svg+xml", http.StatusOK},
		{"png", "image/png", http.StatusOK},
		{"gif", "application/json; charset=utf-8", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			resp := post(t, ts, "/api/render", map[string]any{
				"board": startState(t), "format": tt.format, "cell_size": 16,
				"highlight": []board.Point{{X: 0, Y: 3}},
			})
			if resp.StatusCode != tt.status {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			if ct := resp.Header.Get("Content-Type"); ct != tt.contentType {
				t.Errorf("Content-Type = %q, want %q", ct, tt.contentType)
			}
		})
	}
}

func TestPreferences(t *testing.T) {
	store, err := storage.Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	_, ts := newTestServer(t, store)

	resp, err := http.Get(ts.URL + "/api/preferences")
	if err != nil {
		t.Fatal(err)
	}
	var prefs storage.Preferences
	decode(t, resp, &prefs)
	resp.Body.Close()
	if prefs.BoardWidth != 8 || prefs.UserColor != "light" || prefs.Difficulty != "medium" {
		t.Errorf("default preferences = %+v", prefs)
	}

	resp = post(t, ts, "/api/preferences", map[string]any{"board_width": 6, "board_height": 7, "difficulty": "hard"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("save status = %d", resp.StatusCode)
	}

	resp, err = http.Get(ts.URL + "/api/preferences")
	if err != nil {
		t.Fatal(err)
	}
	decode(t, resp, &prefs)
	resp.Body.Close()
	if prefs.BoardWidth != 6 || prefs.BoardHeight != 7 || prefs.Difficulty != "hard" || prefs.UserColor != "light" {
		t.Errorf("saved preferences = %+v", prefs)
	}

	resp = post(t, ts, "/api/preferences", map[string]any{"board_width": 1})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("invalid preferences: status %d, want 400", resp.StatusCode)
	}
}

func TestPreferencesWithoutStorage(t *testing.T) {
	_, ts := newTestServer(t, nil)
	resp := post(t, ts, "/api/preferences", map[string]any{"board_width": 6})
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", resp.StatusCode)
	}
}

func TestConfig(t *testing.T) {
	srv, ts := newTestServer(t, nil)

	resp := post(t, ts, "/api/config", map[string]any{"minimax_max_depth": 4, "minimax_max_depth_capture": 6, "debug_mode": true})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if got := srv.engine.Config(); got.MaxDepth != 4 || got.MaxCaptureDepth != 6 {
		t.Errorf("engine config = %+v, want D=4 Dc=6", got)
	}
	if got := srv.config.Get(); got.DefaultBoardSizeX != 8 {
		t.Errorf("untouched field changed: %+v", got)
	}

	resp = post(t, ts, "/api/config", map[string]any{"minimax_max_depth": 0})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("invalid config: status %d, want 400", resp.StatusCode)
	}
	if got := srv.engine.Config(); got.MaxDepth != 4 {
		t.Errorf("engine config changed by a rejected update: %+v", got)
	}
}

func TestBodyTooLarge(t *testing.T) {
	_, ts := newTestServer(t, nil)
	body := `{"width":5,"height":5,"user_color":"` + strings.Repeat("x", int(maxJSONBodyBytes)) + `"}`
	resp, err := http.Post(ts.URL+"/api/new", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", resp.StatusCode)
	}
}

func TestAnalysisSocket(t *testing.T) {
	_, ts := newTestServer(t, nil)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/analysis"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	req := wsMessage{Type: "bot", Payload: mustMarshal(map[string]any{"board": stateOf(t, kingTrap...), "turn": "light"})}
	if err := conn.WriteJSON(req); err != nil {
		t.Fatal(err)
	}

	var passes []passPayload
	for {
		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read: %v", err)
		}
		if msg.Type == "pass" {
			var p passPayload
			if err := json.Unmarshal(msg.Payload, &p); err != nil {
				t.Fatal(err)
			}
			passes = append(passes, p)
			continue
		}
		if msg.Type != "move" {
			t.Fatalf("unexpected %s frame: %s", msg.Type, msg.Payload)
		}
		var got botResponse
		if err := json.Unmarshal(msg.Payload, &got); err != nil {
			t.Fatal(err)
		}
		if got.To != (board.Point{X: 3, Y: 2}) {
			t.Errorf("bot moved to %s, want (3,2)", got.To)
		}
		break
	}

	// D=2: two passes, shallow first
	if len(passes) != 2 || passes[0].Depth != 1 || passes[1].Depth != 2 {
		t.Errorf("passes = %+v, want depths 1 and 2", passes)
	}

	if err := conn.WriteJSON(wsMessage{Type: "nope"}); err != nil {
		t.Fatal(err)
	}
	var msg wsMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatal(err)
	}
	if msg.Type != "error" {
		t.Errorf("unknown request answered with %q, want error", msg.Type)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("wrap: %w", board.ErrIllegalMove), http.StatusBadRequest},
		{board.ErrOutOfBounds, http.StatusBadRequest},
		{errors.Join(errBadRequest, errors.New("eof")), http.StatusBadRequest},
		{game.ErrGameOver, http.StatusConflict},
		{engine.ErrNoMovesAvailable, http.StatusConflict},
		{board.ErrInconsistentOutcome, http.StatusInternalServerError},
		{context.Canceled, http.StatusServiceUnavailable},
		{errors.New("disk on fire"), http.StatusInternalServerError},
		{&http.MaxBytesError{Limit: 1}, http.StatusRequestEntityTooLarge},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
