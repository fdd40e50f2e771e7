// Package util provides shared helpers used across the countdown server.
package util

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
)

// WrapError wraps an error with a descriptive operation context.
func WrapError(operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("failed to %s: %w", operation, err)
}

// SafeClose closes closer and logs a failure. A nil closer or a connection
// that is already closed is not an error.
func SafeClose(closer io.Closer, name string) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		slog.Warn("failed to close resource", "resource", name, "error", err)
	}
}

// SafeCloseFunc returns SafeClose as a closure for defer.
func SafeCloseFunc(closer io.Closer, name string) func() {
	return func() {
		SafeClose(closer, name)
	}
}
