// Package types provides shared type definitions used across the countdown server.
package types

import "github.com/oszuidwest/zwfm-countdown/internal/countdown"

// WebSocket message types sent to the browser.
const (
	MessageCountdown  = "countdown"
	MessageTestResult = "test_result"
)

// Frame is one countdown update pushed to a browser.
type Frame struct {
	Type        string          `json:"type"`
	State       countdown.State `json:"state"`
	Target      string          `json:"target"`
	RemainingMS int64           `json:"remaining_ms"`
	countdown.Display
}

// WSTestResult reports the outcome of a notification test command.
type WSTestResult struct {
	Type     string `json:"type"`
	TestType string `json:"test_type"`
	Success  bool   `json:"success"`
	Error    string `json:"error,omitzero"`
}

// ExpiryLogEntry is one line of the expiry log file.
type ExpiryLogEntry struct {
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Target    string `json:"target,omitzero"`
}

// VersionInfo describes the running build and the latest published release.
type VersionInfo struct {
	Current     string `json:"current"`
	Latest      string `json:"latest,omitzero"`
	UpdateAvail bool   `json:"update_available"`
	Commit      string `json:"commit,omitzero"`
	BuildTime   string `json:"build_time,omitzero"`
}

// Status is the payload of the status endpoint.
type Status struct {
	State       countdown.State   `json:"state"`
	Target      string            `json:"target"`
	RemainingMS int64             `json:"remaining_ms"`
	Display     countdown.Display `json:"display"`
	Sessions    int               `json:"sessions"`
	Version     VersionInfo       `json:"version"`
}
