package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/oszuidwest/zwfm-countdown/internal/config"
	"github.com/oszuidwest/zwfm-countdown/internal/countdown"
	"github.com/oszuidwest/zwfm-countdown/internal/fragment"
	"github.com/oszuidwest/zwfm-countdown/internal/notify"
	"github.com/oszuidwest/zwfm-countdown/internal/page"
	"github.com/oszuidwest/zwfm-countdown/internal/server"
	"github.com/oszuidwest/zwfm-countdown/internal/types"
	"github.com/oszuidwest/zwfm-countdown/internal/util"
)

// Server is an HTTP server that provides the countdown page and live updates.
type Server struct {
	config    *config.Config
	target    time.Time
	web       fs.FS
	assembler *page.Assembler
	board     *countdown.Board
	master    *countdown.Timer
	sessions  *server.Registry
	commands  *server.CommandHandler
	notifier  *notify.ExpiryNotifier
	version   *VersionChecker

	ctx    context.Context
	cancel context.CancelFunc
}

// NewServer returns a Server counting down to target. Fragments are read
// through loader and the page template and assets come from web.
func NewServer(cfg *config.Config, target time.Time, web fs.FS, loader fragment.Loader) (*Server, error) {
	assembler, err := page.New(loader, web, page.Options{
		HeaderPath: cfg.HeaderMarkdown(),
		Target:     target,
		Version:    normalizeVersion(Version),
	})
	if err != nil {
		return nil, err
	}

	board := countdown.NewBoard()
	master, err := countdown.New(target, board.Targets())
	if err != nil {
		return nil, err
	}

	notifier := notify.NewExpiryNotifier(cfg)
	ctx, cancel := context.WithCancel(context.Background())

	return &Server{
		config:    cfg,
		target:    target,
		web:       web,
		assembler: assembler,
		board:     board,
		master:    master,
		sessions:  server.NewRegistry(),
		commands:  server.NewCommandHandler(notifier.TestTriggers()),
		notifier:  notifier,
		version:   NewVersionChecker(),
		ctx:       ctx,
		cancel:    cancel,
	}, nil
}

// handleIndex assembles the page from its fragments on every request.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	p, err := s.assembler.Assemble(r.Context())
	if err != nil {
		slog.Error("page assembled without live countdown", "error", err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.assembler.Render(w, p); err != nil {
		slog.Error("failed to write index.html", "error", err)
	}
}

// handleWebSocket streams a live countdown to the client.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := server.UpgradeConnection(w, r)
	if err != nil {
		slog.Error("WebSocket upgrade failed", "error", err)
		return
	}
	defer util.SafeCloseFunc(conn, "WebSocket connection")()

	sess, err := server.NewSession(conn, s.target, s.commands)
	if err != nil {
		slog.Error("failed to create countdown session", "error", err)
		return
	}

	s.sessions.Add(sess)
	defer s.sessions.Remove(sess)

	sess.Run(s.ctx)
}

// countdownResponse is the payload of the countdown endpoint.
type countdownResponse struct {
	State       countdown.State   `json:"state"`
	Target      string            `json:"target"`
	RemainingMS int64             `json:"remaining_ms"`
	Display     countdown.Display `json:"display"`
}

// handleCountdown returns the server-side countdown display.
func (s *Server) handleCountdown(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, countdownResponse{
		State:       s.master.State(),
		Target:      s.target.Format(time.RFC3339),
		RemainingMS: max(s.master.Remaining().Total.Milliseconds(), 0),
		Display:     s.board.Snapshot(),
	})
}

// handleStatus returns the countdown, session and version status.
func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, types.Status{
		State:       s.master.State(),
		Target:      s.target.Format(time.RFC3339),
		RemainingMS: max(s.master.Remaining().Total.Milliseconds(), 0),
		Display:     s.board.Snapshot(),
		Sessions:    s.sessions.Count(),
		Version:     s.version.Info(),
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write JSON response", "error", err)
	}
}

// SetupRoutes returns an [http.Handler] configured with all application routes.
func (s *Server) SetupRoutes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/", s.handleIndex)
	r.Get("/index.html", s.handleIndex)
	r.Get("/ws", s.handleWebSocket)
	r.Get("/api/countdown", s.handleCountdown)
	r.Get("/api/status", s.handleStatus)
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(s.web)))

	return r
}

// Start starts the server-side countdown, expiry notifications, the version
// checker and the HTTP listener. Returns an *http.Server that can be used for
// graceful shutdown.
func (s *Server) Start() *http.Server {
	s.master.Start()
	go s.notifier.Watch(s.ctx, s.master.Expired(), s.target)
	go s.version.Run(s.ctx)

	addr := fmt.Sprintf(":%d", s.config.WebPort())
	slog.Info("starting web server", "addr", addr, "target", s.target.Format(time.RFC3339))

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.SetupRoutes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	return srv
}

// Close stops every countdown and ends the live sessions.
func (s *Server) Close() {
	s.master.Stop()
	s.sessions.StopAll()
	s.cancel()
	s.notifier.Wait()
}
