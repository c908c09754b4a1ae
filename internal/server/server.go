// Package server exposes the game over HTTP. The API is stateless: every
// request carries the full board and the side to move.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/hailam/latrones/internal/board"
	"github.com/hailam/latrones/internal/config"
	"github.com/hailam/latrones/internal/engine"
	"github.com/hailam/latrones/internal/game"
	"github.com/hailam/latrones/internal/storage"
)

const (
	maxJSONBodyBytes int64 = 1 << 20
	apiCSP                 = "default-src 'none'; frame-ancestors 'none'; base-uri 'none'"
)

// errBadRequest marks errors caused by a malformed request.
var errBadRequest = errors.New("bad request")

// PreferenceStore persists user preferences.
type PreferenceStore interface {
	LoadPreferences(defaults storage.Preferences) (storage.Preferences, error)
	SavePreferences(prefs storage.Preferences) error
}

// Server wires the HTTP layer to the engine.
type Server struct {
	engine *engine.Engine
	config *config.Store
	prefs  PreferenceStore // nil disables /api/preferences

	srvMu sync.Mutex
	srv   *http.Server
}

// New creates a server. prefs may be nil.
func New(eng *engine.Engine, cfg *config.Store, prefs PreferenceStore) *Server {
	return &Server{engine: eng, config: cfg, prefs: prefs}
}

// Routes returns the HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Use(limitJSON)

		r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
		})
		r.Post("/new", s.handleNew)
		r.Post("/moves", s.handleMoves)
		r.Post("/move", s.handleMove)
		r.Post("/bot", s.handleBot)
		r.Post("/render", s.handleRender)
		r.Get("/preferences", s.handleGetPreferences)
		r.Post("/preferences", s.handleSavePreferences)
		r.Get("/config", s.handleGetConfig)
		r.Post("/config", s.handleSaveConfig)
	})

	r.Get("/ws/analysis", s.serveAnalysisWS)
	return r
}

// Listen serves on addr until Close is called.
func (s *Server) Listen(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 16,
	}

	s.srvMu.Lock()
	s.srv = srv
	s.srvMu.Unlock()
	defer func() {
		s.srvMu.Lock()
		s.srv = nil
		s.srvMu.Unlock()
	}()

	log.Printf("[server] listening on %s", addr)
	err := srv.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close attempts a graceful shutdown.
func (s *Server) Close(ctx context.Context) error {
	s.srvMu.Lock()
	srv := s.srv
	s.srvMu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// ---- JSON helpers ----

func limitJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy", apiCSP)
		if r.Body != nil && r.Body != http.NoBody {
			r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(data)
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Printf("[server] %v", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func mustMarshal(v any) json.RawMessage {
	data, _ := json.Marshal(v)
	return data
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.Join(errBadRequest, err)
	}
	return nil
}

// statusFor maps an error to an HTTP status. Rule violations are the
// client's fault; a broken invariant is ours.
func statusFor(err error) int {
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxErr):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, board.ErrInconsistentOutcome):
		return http.StatusInternalServerError
	case errors.Is(err, game.ErrGameOver),
		errors.Is(err, engine.ErrNoMovesAvailable):
		return http.StatusConflict
	case errors.Is(err, errBadRequest),
		errors.Is(err, board.ErrInvalidDimensions),
		errors.Is(err, board.ErrOutOfBounds),
		errors.Is(err, board.ErrNoPieceAtSource),
		errors.Is(err, board.ErrDestinationOccupied),
		errors.Is(err, board.ErrIllegalMove),
		errors.Is(err, board.ErrOverlappingPieces):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
