package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	// DateLayout is the canonical stored form of target and notification dates.
	DateLayout = "2006-01-02"
	// DisplayLayout is the day-first form accepted from users and echoed back.
	DisplayLayout = "02.01.2006"

	DefaultTZOffset = "+04:00"
)

var (
	ErrInvalidDate   = errors.New("invalid date")
	ErrInvalidOffset = errors.New("invalid tz offset")
)

var (
	isoDateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	dmyDateRe = regexp.MustCompile(`^\d{2}\.\d{2}\.\d{4}$`)
	offsetRe  = regexp.MustCompile(`^([+-])(\d{2}):(\d{2})$`)
)

// ParseDate accepts YYYY-MM-DD or DD.MM.YYYY (tried in that order) and returns
// the calendar date at UTC midnight.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if isoDateRe.MatchString(s) {
		if t, err := time.Parse(DateLayout, s); err == nil {
			return t, nil
		}
	}
	if dmyDateRe.MatchString(s) {
		if t, err := time.Parse(DisplayLayout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// NormalizeTZOffset validates a fixed UTC offset of the form ±HH:MM.
// Hours are limited to 00..23 and minutes to 00..59.
func NormalizeTZOffset(s string) (string, error) {
	m := offsetRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidOffset, s)
	}
	h, _ := strconv.Atoi(m[2])
	mm, _ := strconv.Atoi(m[3])
	if h > 23 || mm > 59 {
		return "", fmt.Errorf("%w: %q out of range", ErrInvalidOffset, s)
	}
	return m[1] + m[2] + ":" + m[3], nil
}

// OffsetLocation turns a ±HH:MM offset into a fixed zone. No DST rules apply.
func OffsetLocation(offset string) (*time.Location, error) {
	norm, err := NormalizeTZOffset(offset)
	if err != nil {
		return nil, err
	}
	h, _ := strconv.Atoi(norm[1:3])
	m, _ := strconv.Atoi(norm[4:6])
	secs := h*3600 + m*60
	if norm[0] == '-' {
		secs = -secs
	}
	return time.FixedZone("UTC"+norm, secs), nil
}

// civilDay drops the clock and zone, keeping the calendar date at UTC midnight.
func civilDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysRemaining returns target minus today, in whole days, where today is the
// calendar date of now in the given offset. Past targets yield negative values.
func DaysRemaining(target time.Time, offset string, now time.Time) (int, error) {
	loc, err := OffsetLocation(offset)
	if err != nil {
		return 0, err
	}
	today := civilDay(now.In(loc))
	// Both are UTC midnights, so the difference is an exact multiple of a day.
	diff := civilDay(target).Unix() - today.Unix()
	return int(diff / 86400), nil
}

// Today returns the calendar date of now in the given offset, in DateLayout.
func Today(offset string, now time.Time) (string, error) {
	loc, err := OffsetLocation(offset)
	if err != nil {
		return "", err
	}
	return now.In(loc).Format(DateLayout), nil
}
