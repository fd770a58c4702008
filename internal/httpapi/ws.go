package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/mlenarti/itinera/internal/engine"
	"github.com/mlenarti/itinera/internal/session"
)

type wsInbound struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id,omitempty"`
	Text      string `json:"text,omitempty"`
}

type wsOutbound struct {
	Type      string        `json:"type"`
	SessionID string        `json:"session_id,omitempty"`
	Reply     *engine.Reply `json:"reply,omitempty"`
	Error     string        `json:"error,omitempty"`
}

// handleChatWS runs a chat connection: one session per socket, one turn at
// a time. The socket's session is created lazily when the client does not
// bring one.
func (s *Server) handleChatWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	sessionID := strings.TrimSpace(r.URL.Query().Get("session_id"))
	if sessionID == "" {
		sess := s.sessions.Create("")
		sessionID = sess.ID
		if s.metrics != nil {
			s.metrics.SessionEvents.WithLabelValues("created").Inc()
			s.metrics.ActiveSessions.Set(float64(s.sessions.ActiveCount()))
		}
		if err := conn.WriteJSON(wsOutbound{Type: "session", SessionID: sessionID}); err != nil {
			return
		}
	}

	for {
		var in wsInbound
		if err := conn.ReadJSON(&in); err != nil {
			return
		}
		if in.Type != "message" || strings.TrimSpace(in.Text) == "" {
			_ = conn.WriteJSON(wsOutbound{Type: "error", SessionID: sessionID, Error: "expected {type: message, text}"})
			continue
		}

		reply, err := s.orchestrator.HandleTurn(r.Context(), sessionID, in.Text)
		if err != nil {
			msg := "turn failed"
			if errors.Is(err, session.ErrNotFound) {
				msg = "session not found"
			}
			_ = conn.WriteJSON(wsOutbound{Type: "error", SessionID: sessionID, Error: msg})
			continue
		}
		if err := conn.WriteJSON(wsOutbound{Type: "reply", SessionID: sessionID, Reply: &reply}); err != nil {
			return
		}
	}
}
