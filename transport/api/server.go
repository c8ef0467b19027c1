// Package api exposes the operator surface over HTTP: pending approvals,
// decisions and the session context. The app websocket is mounted at /app.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/viant/qgate/internal/logger"
	"github.com/viant/qgate/policy"
	"github.com/viant/qgate/service/approval"
	"github.com/viant/qgate/service/session"
	"github.com/viant/qgate/tracing"
)

// DecisionRequest is the body of POST /approvals/{id}.
type DecisionRequest struct {
	Approved  bool                   `json:"approved"`
	Reason    string                 `json:"reason,omitempty"`
	Auxiliary map[string]interface{} `json:"auxiliary,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Server routes admin requests.
type Server struct {
	approvals approval.Service
	session   *session.Service
	app       http.Handler
	logger    *slog.Logger
	router    chi.Router
}

// Option customises the server.
type Option func(s *Server)

// WithApp mounts the app channel handler at /app.
func WithApp(app http.Handler) Option {
	return func(s *Server) {
		s.app = app
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// New creates an admin server.
func New(approvals approval.Service, sessions *session.Service, options ...Option) *Server {
	ret := &Server{approvals: approvals, session: sessions}
	for _, option := range options {
		option(ret)
	}
	if ret.logger == nil {
		ret.logger = logger.Discard()
	}
	ret.logger = ret.logger.With("component", "api")
	ret.router = ret.routes()
	return ret
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	if s.app != nil {
		r.Handle("/app", s.app)
	}
	r.Group(func(r chi.Router) {
		r.Use(s.trace)
		r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})
		r.Get("/session", s.getSession)
		r.Put("/session/policy", s.putPolicy)
		r.Get("/approvals", s.listApprovals)
		r.Post("/approvals/{id}", s.decide)
	})
	return r
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Snapshot())
}

func (s *Server) putPolicy(w http.ResponseWriter, r *http.Request) {
	config := &policy.Config{}
	if err := json.NewDecoder(r.Body).Decode(config); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	switch config.Mode {
	case "", policy.ModeAsk, policy.ModeAuto, policy.ModeDeny:
	default:
		writeError(w, http.StatusBadRequest, "invalid mode: "+config.Mode)
		return
	}
	snapshot := s.session.SetPolicy(policy.FromConfig(config))
	s.logger.Info("policy updated", "mode", config.Mode, "version", snapshot.Version)
	writeJSON(w, http.StatusOK, snapshot)
}

func (s *Server) listApprovals(w http.ResponseWriter, r *http.Request) {
	pending, err := s.approvals.ListPending(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if pending == nil {
		pending = []*approval.Request{}
	}
	writeJSON(w, http.StatusOK, pending)
}

func (s *Server) decide(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	body := &DecisionRequest{}
	if err := json.NewDecoder(r.Body).Decode(body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body: {\"approved\":true|false}")
		return
	}
	decision, err := s.approvals.Decide(r.Context(), id, body.Approved, body.Reason, approval.WithAuxiliary(body.Auxiliary))
	switch {
	case errors.Is(err, approval.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
		return
	case errors.Is(err, approval.ErrAlreadyDecided):
		writeError(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.logger.Info("request decided", "id", id, "approved", decision.Approved)
	writeJSON(w, http.StatusOK, decision)
}

// trace wraps each admin call in a server span.
func (s *Server) trace(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracing.StartSpan(r.Context(), r.Method+" "+r.URL.Path, tracing.KindServer)
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		defer func() {
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			span.SetStatusFromHTTPCode(status)
			span.End()
		}()
		next.ServeHTTP(ww, r.WithContext(ctx))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
