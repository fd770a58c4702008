package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/mlenarti/itinera/internal/engine"
	"github.com/mlenarti/itinera/internal/observability"
	"github.com/mlenarti/itinera/internal/session"
)

// Orchestrator is the turn pipeline as the API sees it.
type Orchestrator interface {
	HandleTurn(ctx context.Context, sessionID, text string) (engine.Reply, error)
}

// ReadyCheck probes downstream readiness (e.g. the completion endpoint).
type ReadyCheck func(ctx context.Context) error

type Config struct {
	AllowAnyOrigin  bool
	InactivityTTLMS int64
}

type Server struct {
	cfg          Config
	sessions     *session.Manager
	orchestrator Orchestrator
	metrics      *observability.Metrics
	readyCheck   ReadyCheck
	upgrader     websocket.Upgrader
}

func New(cfg Config, sessions *session.Manager, orchestrator Orchestrator, metrics *observability.Metrics, readyCheck ReadyCheck) *Server {
	return &Server{
		cfg:          cfg,
		sessions:     sessions,
		orchestrator: orchestrator,
		metrics:      metrics,
		readyCheck:   readyCheck,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				// Only allow browser websocket connections from the same
				// origin unless explicitly opened up.
				if cfg.AllowAnyOrigin {
					return true
				}
				origin := strings.TrimSpace(r.Header.Get("Origin"))
				if origin == "" {
					// Non-browser clients often omit Origin. Allow them.
					return true
				}
				u, err := url.Parse(origin)
				if err != nil {
					return false
				}
				if u.Scheme != "http" && u.Scheme != "https" {
					return false
				}
				return strings.EqualFold(u.Host, r.Host)
			},
		},
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		observability.MetricsHandler().ServeHTTP(w, r)
	})

	r.Post("/v1/sessions", s.handleCreateSession)
	r.Post("/v1/sessions/{id}/end", s.handleEndSession)
	r.Get("/v1/sessions/{id}/history", s.handleHistory)
	r.Post("/v1/sessions/{id}/messages", s.handleMessage)
	r.Get("/v1/chat/ws", s.handleChatWS)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":          "ok",
		"active_sessions": s.sessions.ActiveCount(),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	generation := "ok"
	status := http.StatusOK
	if s.readyCheck != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		if err := s.readyCheck(ctx); err != nil {
			generation = "degraded: " + err.Error()
			status = http.StatusServiceUnavailable
		}
	}
	respondJSON(w, status, map[string]any{
		"status":     "ready",
		"generation": generation,
	})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req session.CreateRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if strings.TrimSpace(req.UserID) == "" {
		req.UserID = "anonymous"
	}

	sess := s.sessions.Create(req.UserID)
	if s.metrics != nil {
		s.metrics.SessionEvents.WithLabelValues("created").Inc()
		s.metrics.ActiveSessions.Set(float64(s.sessions.ActiveCount()))
	}
	respondJSON(w, http.StatusCreated, session.CreateResponse{
		SessionID:       sess.ID,
		UserID:          sess.UserID,
		Status:          sess.Status,
		StartedAt:       sess.StartedAt,
		LastActivityAt:  sess.LastActivityAt,
		InactivityTTLMS: s.cfg.InactivityTTLMS,
	})
}

func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sess, err := s.sessions.End(id)
	if err != nil {
		respondError(w, http.StatusNotFound, "not_found", "session not found")
		return
	}
	if s.metrics != nil {
		s.metrics.SessionEvents.WithLabelValues("ended").Inc()
		s.metrics.ActiveSessions.Set(float64(s.sessions.ActiveCount()))
	}
	respondJSON(w, http.StatusOK, sess)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	hist, err := s.sessions.History(id)
	if err != nil {
		respondError(w, http.StatusNotFound, "not_found", "session not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"session_id": id,
		"turns":      hist,
	})
}

type messageRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req messageRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "text is required")
		return
	}

	reply, err := s.orchestrator.HandleTurn(r.Context(), id, req.Text)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "session not found")
			return
		}
		if errors.Is(err, context.Canceled) {
			respondError(w, http.StatusRequestTimeout, "cancelled", "turn cancelled")
			return
		}
		respondError(w, http.StatusInternalServerError, "turn_failed", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, reply)
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

var errEmptyBody = errors.New("empty body")

func decodeJSON(r *http.Request, out any) error {
	if r.Body == nil {
		return errEmptyBody
	}
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(out); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "eof") {
			return errEmptyBody
		}
		return err
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}
