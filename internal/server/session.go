// Package server provides the WebSocket sessions that stream a live
// countdown to connected browsers.
package server

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oszuidwest/zwfm-countdown/internal/countdown"
	"github.com/oszuidwest/zwfm-countdown/internal/types"
)

const (
	writeTimeout  = 5 * time.Second
	resultsBuffer = 8
)

// Conn is the subset of a WebSocket connection used by a Session.
type Conn interface {
	ReadJSON(v any) error
	WriteJSON(v any) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Session streams one countdown to one WebSocket client. The session owns a
// Timer whose display targets are the outgoing frame.
type Session struct {
	ID string

	conn     Conn
	commands *CommandHandler
	timer    *countdown.Timer
	board    *countdown.Board

	frames  chan types.Frame // latest frame only
	results chan any
}

// NewSession returns a session counting down to target over conn.
func NewSession(conn Conn, target time.Time, commands *CommandHandler, opts ...countdown.Option) (*Session, error) {
	s := &Session{
		ID:       uuid.NewString(),
		conn:     conn,
		commands: commands,
		board:    countdown.NewBoard(),
		frames:   make(chan types.Frame, 1),
		results:  make(chan any, resultsBuffer),
	}

	opts = append(opts, countdown.WithRefreshHook(func(r countdown.Remaining) {
		state := countdown.StateRunning
		if r.Expired() {
			state = countdown.StateStopped
		}
		s.pushFrame(state, r)
	}))

	timer, err := countdown.New(target, s.board.Targets(), opts...)
	if err != nil {
		return nil, err
	}
	s.timer = timer
	return s, nil
}

// Timer returns the session's countdown timer.
func (s *Session) Timer() *countdown.Timer {
	return s.timer
}

// Run starts the countdown and serves the connection until the client
// disconnects or ctx is done. The timer is stopped before Run returns.
func (s *Session) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer s.timer.Stop()

	go s.readLoop(cancel)

	slog.Info("countdown session started", "session", s.ID)
	s.timer.Start()
	s.writeLoop(ctx)
	slog.Info("countdown session ended", "session", s.ID)
}

// readLoop decodes client commands until the connection fails.
func (s *Session) readLoop(cancel context.CancelFunc) {
	defer cancel()
	for {
		var cmd WSCommand
		if err := s.conn.ReadJSON(&cmd); err != nil {
			return
		}
		s.commands.Handle(cmd, s)
	}
}

// writeLoop is the only writer on the connection.
func (s *Session) writeLoop(ctx context.Context) {
	for {
		var msg any
		select {
		case <-ctx.Done():
			return
		case frame := <-s.frames:
			msg = frame
		case result := <-s.results:
			msg = result
		}

		if err := s.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
			return
		}
		if err := s.conn.WriteJSON(msg); err != nil {
			slog.Debug("countdown session write failed", "session", s.ID, "error", err)
			return
		}
	}
}

// StartCountdown resumes the countdown.
func (s *Session) StartCountdown() {
	s.timer.Start()
}

// StopCountdown halts the countdown and tells the client.
func (s *Session) StopCountdown() {
	s.timer.Stop()
	s.pushFrame(countdown.StateStopped, s.timer.Remaining())
}

// SendResult queues a reply to the client. Replies are dropped when the
// client is not reading.
func (s *Session) SendResult(result any) {
	select {
	case s.results <- result:
	default:
		slog.Warn("dropping reply to slow client", "session", s.ID)
	}
}

// pushFrame replaces any unsent frame with the current display.
func (s *Session) pushFrame(state countdown.State, r countdown.Remaining) {
	frame := types.Frame{
		Type:        types.MessageCountdown,
		State:       state,
		Target:      s.timer.Target().Format(time.RFC3339),
		RemainingMS: max(r.Total.Milliseconds(), 0),
		Display:     s.board.Snapshot(),
	}
	for {
		select {
		case s.frames <- frame:
			return
		default:
		}
		select {
		case <-s.frames:
		default:
		}
	}
}

// Registry tracks the active sessions. It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Add registers a session.
func (r *Registry) Add(s *Session) {
	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()
}

// Remove unregisters a session.
func (r *Registry) Remove(s *Session) {
	r.mu.Lock()
	delete(r.sessions, s.ID)
	r.mu.Unlock()
}

// Count returns the number of active sessions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// StopAll stops the countdown of every active session.
func (r *Registry) StopAll() {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.sessions {
		s.timer.Stop()
	}
}
