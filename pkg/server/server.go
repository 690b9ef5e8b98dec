package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/fractals/pkg/nav"
	"github.com/vango-dev/fractals/pkg/routes"
)

// NavPath is the navigation socket path, relative to the base.
const NavPath = "/_nav"

// Server serves the history fallback shell and navigation sessions.
type Server struct {
	config   *Config
	mount    string
	router   chi.Router
	upgrader websocket.Upgrader
	sessions *SessionManager

	httpServer *http.Server
	logger     *slog.Logger
}

// New creates a Server. The route table is validated here so a broken
// table fails at startup rather than on the first session.
func New(config *Config) (*Server, error) {
	config = config.withDefaults()
	if err := routes.Validate(*config.Table); err != nil {
		return nil, err
	}

	logger := slog.Default().With("component", "server")
	s := &Server{
		config:   config,
		mount:    mountPath(config.Base),
		sessions: NewSessionManager(config.MaxSessions, config.Metrics, logger),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		logger: logger,
	}
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.config.Middleware...)

	r.Get("/healthz", s.handleHealth)
	if s.config.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.config.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Get(s.mount+NavPath, s.HandleNav)
	r.Get(s.mount+clientPath, s.serveClient)
	r.Head(s.mount+clientPath, s.serveClient)

	// History fallback: every path under the base gets the shell.
	if s.mount != "" {
		r.Get(s.mount, s.serveShell)
		r.Head(s.mount, s.serveShell)
	}
	r.Get(s.mount+"/*", s.serveShell)
	r.Head(s.mount+"/*", s.serveShell)

	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Sessions returns the session manager.
func (s *Server) Sessions() *SessionManager {
	return s.sessions
}

// Logger returns the server logger.
func (s *Server) Logger() *slog.Logger {
	return s.logger
}

// SetLogger sets the server logger.
func (s *Server) SetLogger(logger *slog.Logger) {
	s.logger = logger
	s.sessions.logger = logger
}

// HandleNav upgrades the request to a navigation session. The session's
// history starts at the ?location= URL, or at the root.
func (s *Server) HandleNav(w http.ResponseWriter, r *http.Request) {
	id := uuid.NewString()
	logger := s.logger.With("session", id)

	opts := append([]nav.Option{nav.WithLogger(logger.With("component", "nav"))}, s.config.EngineOptions...)
	engine, err := routes.CreateRouter(routes.RouterConfig{
		Mode:       s.config.Mode,
		Base:       s.config.Base,
		InitialURL: r.URL.Query().Get("location"),
		Table:      s.config.Table,
		Options:    opts,
	})
	if err != nil {
		logger.Error("engine creation failed", "error", err)
		http.Error(w, "navigation unavailable", http.StatusInternalServerError)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		engine.Close()
		logger.Debug("upgrade failed", "error", err)
		return
	}

	session := newSession(id, conn, engine, s.config, logger)
	if err := s.sessions.Add(session); err != nil {
		logger.Warn("session rejected", "error", err)
		session.send(errorFrame(id, "connect", err))
		session.Close()
		return
	}
	logger.Debug("session opened", "location", engine.History().Location(), "remote", r.RemoteAddr)

	go func() {
		defer s.sessions.Remove(id)
		session.run()
	}()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":   "ok",
		"sessions": s.sessions.Stats(),
	})
}

// Run listens on the configured address until SIGINT or SIGTERM, then
// shuts down gracefully.
func (s *Server) Run() error {
	ln, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return err
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-shutdown:
		s.logger.Info("shutting down...")
		return s.Shutdown(context.Background())
	}
}

// Serve accepts connections on ln. It returns nil after Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	s.httpServer = &http.Server{
		Handler:           s,
		ReadHeaderTimeout: s.config.ReadHeaderTimeout,
	}
	s.logger.Info("server starting",
		"address", ln.Addr().String(),
		"base", s.mount,
		"mode", string(s.config.Mode))

	if err := s.httpServer.Serve(ln); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown closes every session, then stops the HTTP server, within the
// configured shutdown timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	if err := s.sessions.Shutdown(ctx); err != nil {
		s.logger.Warn("sessions did not close in time", "error", err)
	}

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return err
		}
	}

	s.logger.Info("server shutdown complete")
	return nil
}
