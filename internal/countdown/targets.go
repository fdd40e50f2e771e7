package countdown

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
)

// ErrMissingTarget is returned by New when a display target is nil.
var ErrMissingTarget = errors.New("display target missing")

// Target is an output slot that receives the formatted text of one unit.
type Target interface {
	SetText(text string)
}

// TargetFunc adapts a function to the Target interface.
type TargetFunc func(text string)

// SetText calls f(text).
func (f TargetFunc) SetText(text string) { f(text) }

// Targets groups the four display slots written by a Timer.
type Targets struct {
	Days    Target
	Hours   Target
	Minutes Target
	Seconds Target
}

// validate returns an error naming the first missing target.
func (t Targets) validate() error {
	for _, slot := range []struct {
		name   string
		target Target
	}{
		{"days", t.Days},
		{"hours", t.Hours},
		{"minutes", t.Minutes},
		{"seconds", t.Seconds},
	} {
		if isNilTarget(slot.target) {
			return fmt.Errorf("%w: %s", ErrMissingTarget, slot.name)
		}
	}
	return nil
}

// isNilTarget reports whether t is nil, including a nil TargetFunc or a
// typed nil pointer wrapped in the interface.
func isNilTarget(t Target) bool {
	if t == nil {
		return true
	}
	v := reflect.ValueOf(t)
	switch v.Kind() {
	case reflect.Pointer, reflect.Func, reflect.Map, reflect.Chan, reflect.Interface, reflect.Slice:
		return v.IsNil()
	}
	return false
}

// write sets all four targets in unit order.
func (t Targets) write(days, hours, minutes, seconds string) {
	t.Days.SetText(days)
	t.Hours.SetText(hours)
	t.Minutes.SetText(minutes)
	t.Seconds.SetText(seconds)
}

// Display is a point-in-time copy of the four rendered units.
type Display struct {
	Days    string `json:"days"`
	Hours   string `json:"hours"`
	Minutes string `json:"minutes"`
	Seconds string `json:"seconds"`
}

// Board is an in-memory set of display targets. It is safe for concurrent use.
type Board struct {
	mu      sync.RWMutex
	current Display
}

// NewBoard returns a board showing all zeros.
func NewBoard() *Board {
	return &Board{current: Display{"00", "00", "00", "00"}}
}

// Targets returns display targets that write into the board.
func (b *Board) Targets() Targets {
	return Targets{
		Days:    b.slot(func(d *Display, s string) { d.Days = s }),
		Hours:   b.slot(func(d *Display, s string) { d.Hours = s }),
		Minutes: b.slot(func(d *Display, s string) { d.Minutes = s }),
		Seconds: b.slot(func(d *Display, s string) { d.Seconds = s }),
	}
}

func (b *Board) slot(set func(*Display, string)) TargetFunc {
	return func(text string) {
		b.mu.Lock()
		set(&b.current, text)
		b.mu.Unlock()
	}
}

// Snapshot returns the current display.
func (b *Board) Snapshot() Display {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.current
}
