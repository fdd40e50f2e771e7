package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/oszuidwest/zwfm-countdown/internal/types"
)

// Client command types.
const (
	CommandStart = "start"
	CommandStop  = "stop"

	testCommandPrefix = "test_"
)

// testTimeout bounds one notification test.
const testTimeout = 30 * time.Second

// WSCommand is a command received from a WebSocket client.
type WSCommand struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// TestTrigger sends one test notification.
type TestTrigger = func(ctx context.Context) error

// commandTarget is the session a command acts on.
type commandTarget interface {
	StartCountdown()
	StopCountdown()
	SendResult(result any)
}

// CommandHandler dispatches client commands to a session.
type CommandHandler struct {
	tests map[string]TestTrigger
}

// NewCommandHandler returns a handler that runs tests from the given
// triggers, keyed by channel name ("webhook", "email", "log").
func NewCommandHandler(tests map[string]TestTrigger) *CommandHandler {
	return &CommandHandler{tests: tests}
}

// Handle performs cmd on target. Test commands run in the background and
// answer with a test_result message.
func (h *CommandHandler) Handle(cmd WSCommand, target commandTarget) {
	switch {
	case cmd.Type == CommandStart:
		target.StartCountdown()
	case cmd.Type == CommandStop:
		target.StopCountdown()
	case strings.HasPrefix(cmd.Type, testCommandPrefix):
		h.runTest(strings.TrimPrefix(cmd.Type, testCommandPrefix), target)
	default:
		slog.Warn("unknown WebSocket command type", "type", cmd.Type)
	}
}

func (h *CommandHandler) runTest(channel string, target commandTarget) {
	trigger, ok := h.tests[channel]
	if !ok {
		slog.Warn("unknown notification test", "channel", channel)
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
		defer cancel()

		result := types.WSTestResult{Type: types.MessageTestResult, TestType: channel, Success: true}
		if err := trigger(ctx); err != nil {
			slog.Error("notification test failed", "channel", channel, "error", err)
			result.Success = false
			result.Error = err.Error()
		} else {
			slog.Info("notification test succeeded", "channel", channel)
		}
		target.SendResult(result)
	}()
}
