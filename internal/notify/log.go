package notify

import (
	"encoding/json"
	"errors"
	"os"
	"time"

	"github.com/oszuidwest/zwfm-countdown/internal/types"
	"github.com/oszuidwest/zwfm-countdown/internal/util"
)

// AppendLog writes ev as one JSON line to logPath. An empty path is skipped.
func AppendLog(logPath string, ev Event) error {
	if !util.IsConfigured(logPath) {
		return nil
	}

	line, err := json.Marshal(types.ExpiryLogEntry{
		ID:        ev.ID,
		Timestamp: ev.timestamp(),
		Event:     ev.Kind,
		Target:    ev.target(),
	})
	if err != nil {
		return util.WrapError("marshal log entry", err)
	}

	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return util.WrapError("open log file", err)
	}
	defer util.SafeCloseFunc(f, "log file")()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return util.WrapError("write log entry", err)
	}
	return nil
}

// WriteTestLog appends a test entry. Unlike AppendLog it fails without a path.
func WriteTestLog(logPath string) error {
	if logPath == "" {
		return errors.New("log file path not configured")
	}
	return AppendLog(logPath, NewEvent(EventTest, time.Time{}))
}
