// Package clock converts between "HH:MM" strings and minute offsets within
// one operating day.
package clock

import (
	"fmt"
	"strconv"
	"strings"

	"routeopt/internal/model"
)

const MinutesPerDay = 24 * 60

// ToMinutes parses "HH:MM" (or "H:MM") into minutes since midnight.
// Hours past 23 are accepted so that late plans keep ordering.
func ToMinutes(s string) (int, error) {
	h, m, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, fmt.Errorf("invalid time %q: want HH:MM", s)
	}
	hh, err := strconv.Atoi(h)
	if err != nil || hh < 0 || len(h) == 0 || len(h) > 2 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	mm, err := strconv.Atoi(m)
	if err != nil || mm < 0 || mm > 59 || len(m) != 2 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	return hh*60 + mm, nil
}

// MustMinutes is ToMinutes for inputs already validated; malformed values map to 0.
func MustMinutes(s string) int {
	v, err := ToMinutes(s)
	if err != nil {
		return 0
	}
	return v
}

// FromMinutes formats minutes since midnight as "HH:MM". Values beyond one
// day are not wrapped; negative values clamp to "00:00".
func FromMinutes(total int) string {
	if total < 0 {
		total = 0
	}
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// Window is a closed interval of minutes.
type Window struct {
	Start, End int
}

// Contains reports whether t lies within the window, bounds inclusive.
func (w Window) Contains(t int) bool { return t >= w.Start && t <= w.End }

// ParseWindow converts a model time window to minutes.
func ParseWindow(tw model.TimeWindow) (Window, error) {
	s, err := ToMinutes(tw.Start)
	if err != nil {
		return Window{}, err
	}
	e, err := ToMinutes(tw.End)
	if err != nil {
		return Window{}, err
	}
	return Window{Start: s, End: e}, nil
}

// IsWithinWindow reports whether the "HH:MM" time t falls inside tw.
func IsWithinWindow(t string, tw model.TimeWindow) bool {
	m, err := ToMinutes(t)
	if err != nil {
		return false
	}
	w, err := ParseWindow(tw)
	if err != nil {
		return false
	}
	return w.Contains(m)
}
