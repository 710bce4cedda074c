package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidClock = errors.New("invalid clock")

var clockRe = regexp.MustCompile(`^(\d{2}):(\d{2})$`)

// Clock is a wall-clock hour and minute, e.g. the daily fire time.
type Clock struct {
	Hour   int
	Minute int
}

// DefaultFireAt is 08:00 local to each chat.
var DefaultFireAt = Clock{Hour: 8}

// ParseClock parses "HH:MM" (00:00..23:59).
func ParseClock(s string) (Clock, error) {
	parts := clockRe.FindStringSubmatch(strings.TrimSpace(s))
	if parts == nil {
		return Clock{}, fmt.Errorf("%w: expected HH:MM, got %q", ErrInvalidClock, s)
	}
	h, _ := strconv.Atoi(parts[1])
	if h > 23 {
		return Clock{}, fmt.Errorf("%w: hour in %q", ErrInvalidClock, s)
	}
	m, _ := strconv.Atoi(parts[2])
	if m > 59 {
		return Clock{}, fmt.Errorf("%w: minute in %q", ErrInvalidClock, s)
	}
	return Clock{Hour: h, Minute: m}, nil
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// Matches reports whether t falls inside the one-minute fire window.
func (c Clock) Matches(t time.Time) bool {
	return t.Hour() == c.Hour && t.Minute() == c.Minute
}

// DueForNotification decides whether the chat should get its daily message at
// now. It returns the chat-local date so the caller can record it after a
// successful send. A chat is due only once per local calendar day.
func DueForNotification(cfg ChatConfig, now time.Time, at Clock) (today string, due bool) {
	if !cfg.Notify || cfg.TargetDate == nil {
		return "", false
	}
	loc, err := OffsetLocation(cfg.TZOffset)
	if err != nil {
		return "", false
	}
	local := now.In(loc)
	if !at.Matches(local) {
		return "", false
	}
	today = local.Format(DateLayout)
	// Canonical dates order lexically; a marker ahead of today (after a /tz
	// move to an earlier offset) also counts as already sent.
	if cfg.LastNotifiedISO != nil && *cfg.LastNotifiedISO >= today {
		return today, false
	}
	return today, true
}

// ClampLastNotified pulls a last_notified_iso that lies after the chat's
// local today back to today. It reports whether cfg changed.
func ClampLastNotified(cfg *ChatConfig, now time.Time) bool {
	if cfg.LastNotifiedISO == nil {
		return false
	}
	today, err := Today(cfg.TZOffset, now)
	if err != nil || *cfg.LastNotifiedISO <= today {
		return false
	}
	cfg.LastNotifiedISO = StrPtr(today)
	return true
}
