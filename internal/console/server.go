package console

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aleister1102/scanconsole/internal/config"
	"github.com/aleister1102/scanconsole/internal/lifecycle"
	"github.com/aleister1102/scanconsole/internal/reporter"
	"github.com/aleister1102/scanconsole/internal/scanapi"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

//go:embed static/*
var staticFS embed.FS

const maxRequestBody = 64 * 1024

// HealthChecker reports on the remote scanning service.
type HealthChecker interface {
	Health(ctx context.Context) (*scanapi.HealthStatus, error)
}

// Dependencies are the session objects the console drives.
type Dependencies struct {
	Controller *lifecycle.Controller
	Input      *lifecycle.InputStage
	Renderer   *reporter.HTMLRenderer
	Health     HealthChecker
}

// Server is the HTTP + WebSocket surface of one console session.
type Server struct {
	cfg         config.ConsoleConfig
	deps        Dependencies
	router      chi.Router
	upgrader    websocket.Upgrader
	hub         *hub
	logger      zerolog.Logger
	unsubscribe func()
}

// NewServer wires routes and subscribes to the controller.
func NewServer(cfg config.ConsoleConfig, deps Dependencies, logger zerolog.Logger) (*Server, error) {
	if deps.Controller == nil || deps.Input == nil || deps.Renderer == nil {
		return nil, errors.New("console: controller, input stage and renderer are required")
	}

	serverLogger := logger.With().Str("component", "ConsoleServer").Logger()
	s := &Server{
		cfg:    cfg,
		deps:   deps,
		router: chi.NewRouter(),
		hub:    newHub(serverLogger),
		logger: serverLogger,
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     s.checkOrigin,
	}

	s.routes()
	s.unsubscribe = deps.Controller.Subscribe(func(snap lifecycle.Snapshot) {
		s.hub.broadcast(wsMessage{Type: "state", State: s.stateFor(snap)})
	})
	return s, nil
}

func (s *Server) routes() {
	r := s.router

	r.Get("/", s.handleIndex)
	r.Get("/static/*", s.handleStatic)

	r.Route("/api", func(r chi.Router) {
		r.Get("/state", s.handleGetState)
		r.Post("/input", s.handleUpdateInput)
		r.Post("/scan", s.handleSubmitScan)
		r.Get("/result", s.handleGetResult)
		r.Get("/health", s.handleHealth)
	})

	r.Get("/ws", s.handleWS)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.logger.Debug().Str("method", r.Method).Str("path", r.URL.Path).Msg("http_request")
	s.router.ServeHTTP(w, r)
}

// HTTPServer creates an *http.Server ready to ListenAndServe.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      0, // WebSocket connections are long-lived
	}
}

// Close drops WebSocket clients and stops listening to the controller.
func (s *Server) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
	s.hub.closeAll()
}

// State assembles the current console view.
func (s *Server) State() ConsoleState {
	return s.stateFor(s.deps.Controller.Snapshot())
}

func (s *Server) stateFor(snap lifecycle.Snapshot) ConsoleState {
	state := ConsoleState{
		Input:     s.deps.Input.View(),
		Lifecycle: snap,
	}
	if snap.State.IsTerminal() {
		fragment, err := s.deps.Renderer.RenderState(snap.State)
		if err != nil {
			s.logger.Error().Err(err).Msg("Failed to render result fragment")
		}
		state.ResultHTML = fragment
	}
	return state
}

// --- JSON helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// decodeBody accepts an empty body as "no fields".
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// --- HTTP handlers ---

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	page, err := staticFS.ReadFile("static/index.html")
	if err != nil {
		writeError(w, http.StatusInternalServerError, "console page missing")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}

func (s *Server) handleStatic(w http.ResponseWriter, r *http.Request) {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		writeError(w, http.StatusInternalServerError, "static assets missing")
		return
	}
	http.StripPrefix("/static/", http.FileServer(http.FS(sub))).ServeHTTP(w, r)
}

func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.State())
}

func (s *Server) handleUpdateInput(w http.ResponseWriter, r *http.Request) {
	var body InputRequest
	if err := decodeBody(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	s.applyInput(body)
	writeJSON(w, http.StatusOK, s.deps.Input.View())
}

func (s *Server) applyInput(body InputRequest) {
	if body.URL != nil {
		s.deps.Input.SetURL(*body.URL)
	}
	if body.Prompt != nil {
		s.deps.Input.SetPrompt(*body.Prompt)
	}
}

func (s *Server) handleSubmitScan(w http.ResponseWriter, r *http.Request) {
	var body InputRequest
	if err := decodeBody(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	s.applyInput(body)

	err := s.deps.Controller.Submit(r.Context(), s.deps.Input.Input())
	switch {
	case err == nil:
		writeJSON(w, http.StatusAccepted, s.State())
	case errors.Is(err, lifecycle.ErrScanInProgress):
		writeJSON(w, http.StatusConflict, s.State())
	case errors.Is(err, lifecycle.ErrEmptyURL), errors.Is(err, lifecycle.ErrMalformedURL):
		writeJSON(w, http.StatusBadRequest, s.State())
	case errors.Is(err, lifecycle.ErrControllerClosed):
		writeError(w, http.StatusServiceUnavailable, "console is shutting down")
	default:
		s.logger.Error().Err(err).Msg("Unexpected submit error")
		writeError(w, http.StatusInternalServerError, "submit failed")
	}
}

func (s *Server) handleGetResult(w http.ResponseWriter, r *http.Request) {
	fragment, err := s.deps.Renderer.RenderState(s.deps.Controller.State())
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to render result fragment")
		writeError(w, http.StatusInternalServerError, "render failed")
		return
	}
	if fragment == "" {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(fragment))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.deps.Health == nil {
		writeError(w, http.StatusNotImplemented, "health check not configured")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	status, err := s.deps.Health.Health(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Scanning service health check failed")
		writeError(w, http.StatusServiceUnavailable, "scanning service unavailable")
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Upgrading to websocket failed")
		return
	}

	c := s.hub.register(conn)
	c.enqueue(wsMessage{Type: "state", State: s.State()})
	go c.writePump()
	c.readPump()
}

// checkOrigin allows same-origin pages, non-browser clients and configured origins.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if strings.EqualFold(u.Host, r.Host) {
		return true
	}
	for _, allowed := range s.cfg.AllowedOrigins {
		if strings.EqualFold(strings.TrimRight(allowed, "/"), origin) {
			return true
		}
	}
	s.logger.Warn().Str("origin", origin).Msg("Rejected websocket origin")
	return false
}
