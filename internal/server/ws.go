package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/hailam/latrones/internal/engine"
)

const wsWriteTimeout = 10 * time.Second

// wsMessage is the envelope of every websocket frame.
type wsMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// passPayload reports one completed search pass.
type passPayload struct {
	Pass   int    `json:"pass"`
	Depth  int    `json:"depth"`
	Score  int    `json:"score"`
	Nodes  uint64 `json:"nodes"`
	TimeMs int64  `json:"time_ms"`
	From   [2]int `json:"from"`
	To     [2]int `json:"to"`
}

// serveAnalysisWS answers "bot" requests, streaming a "pass" frame for every
// completed pass and then the "move" frame. Requests on one connection are
// served in order.
func (s *Server) serveAnalysisWS(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxJSONBodyBytes)

	send := func(msg wsMessage) error {
		data, err := json.Marshal(msg)
		if err != nil {
			return err
		}
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		return conn.WriteMessage(websocket.TextMessage, data)
	}
	sendError := func(err error) error {
		return send(wsMessage{Type: "error", Payload: mustMarshal(map[string]any{
			"error":  err.Error(),
			"status": statusFor(err),
		})})
	}

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("[server] analysis socket: %v", err)
			}
			return
		}

		var msg wsMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			if sendError(errors.Join(errBadRequest, err)) != nil {
				return
			}
			continue
		}

		switch msg.Type {
		case "ping":
			err = send(wsMessage{Type: "pong"})
		case "bot":
			err = s.streamBotMove(r, msg.Payload, send, sendError)
		default:
			err = sendError(errors.Join(errBadRequest, errors.New("unknown message type "+msg.Type)))
		}
		if err != nil {
			return
		}
	}
}

// streamBotMove runs one search. The returned error is a write failure; search
// failures are reported to the client.
func (s *Server) streamBotMove(r *http.Request, payload json.RawMessage, send func(wsMessage) error, sendError func(error) error) error {
	var req gameRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return sendError(errors.Join(errBadRequest, err))
	}

	var writeErr error
	pos, _, err := req.parse()
	if err != nil {
		return sendError(err)
	}
	g := pos.Geometry()

	resp, err := s.botMove(r, req, func(info engine.SearchInfo) {
		if writeErr != nil {
			return
		}
		from, to := g.Point(info.Move.From), g.Point(info.Move.To)
		writeErr = send(wsMessage{Type: "pass", Payload: mustMarshal(passPayload{
			Pass:   info.Pass,
			Depth:  info.Depth,
			Score:  info.Score,
			Nodes:  info.Nodes,
			TimeMs: info.Time.Milliseconds(),
			From:   [2]int{from.X, from.Y},
			To:     [2]int{to.X, to.Y},
		})})
	})
	if writeErr != nil {
		return writeErr
	}
	if err != nil {
		return sendError(err)
	}
	return send(wsMessage{Type: "move", Payload: mustMarshal(resp)})
}
