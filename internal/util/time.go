package util

import "time"

// LocalLayout is the wall-clock layout used for target instants without an offset.
const LocalLayout = "2006-01-02T15:04:05"

// HumanTime formats t for messages read by people.
func HumanTime(t time.Time) string {
	return t.Format("Mon 2 Jan 2006 15:04:05 MST")
}

// ParseInstant parses an RFC 3339 timestamp, or a local wall-clock value in
// LocalLayout when no offset is given.
func ParseInstant(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(LocalLayout, value, time.Local)
	if err != nil {
		return time.Time{}, WrapError("parse instant", err)
	}
	return t, nil
}
