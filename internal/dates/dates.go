// Package dates turns "24 Dec" style row dates into calendar dates by
// tracking the statement's running month and year.
package dates

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrUnknownMonth is returned for a month abbreviation outside the table.
	ErrUnknownMonth = errors.New("unknown month")
	// ErrInvalidDate is returned when a day does not exist in its month.
	ErrInvalidDate = errors.New("invalid date")
	// ErrHeaderNotFound is returned when the first page has no statement period.
	ErrHeaderNotFound = errors.New("statement header not found")
)

var monthNames = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

var headerPattern = regexp.MustCompile(`Statement Period\s+:\s+\d{2}\s+([a-zA-Z]{3})[a-zA-Z]*\s+(\d{4})`)

// MonthIndex resolves a three-letter abbreviation such as "Jan".
func MonthIndex(abbrev string) (time.Month, error) {
	for i, name := range monthNames {
		if name == abbrev {
			return time.Month(i + 1), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMonth, abbrev)
}

// Sequencer carries the current month and year from row to row.
type Sequencer struct {
	month time.Month
	year  int
}

// NewSequencer starts at the statement's first month.
func NewSequencer(month time.Month, year int) *Sequencer {
	return &Sequencer{month: month, year: year}
}

// Current returns the month and year of the last resolved row.
func (s *Sequencer) Current() (time.Month, int) {
	return s.month, s.year
}

// Resolve turns a row's day and month abbreviation into a date. A month
// earlier than the current one means the statement crossed into a new year.
// The state is left untouched when an error is returned.
func (s *Sequencer) Resolve(day, abbrev string) (time.Time, error) {
	month, err := MonthIndex(abbrev)
	if err != nil {
		return time.Time{}, err
	}
	year := s.year
	if month < s.month {
		year++
	}

	d, err := strconv.Atoi(day)
	if err != nil || d < 1 || d > daysIn(month, year) {
		return time.Time{}, fmt.Errorf("%w: %s %s %d", ErrInvalidDate, day, abbrev, year)
	}

	s.month, s.year = month, year
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC), nil
}

func daysIn(month time.Month, year int) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ParseHeader finds the statement start month and year on the first page,
// e.g. "Statement Period : 01 January 2024 to 31 January 2024".
func ParseHeader(page string) (time.Month, int, error) {
	m := headerPattern.FindStringSubmatch(page)
	if m == nil {
		return 0, 0, ErrHeaderNotFound
	}
	month, err := MonthIndex(titleCase(m[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("statement header: %w", err)
	}
	year, err := strconv.Atoi(m[2])
	if err != nil {
		return 0, 0, fmt.Errorf("statement header year %q: %w", m[2], err)
	}
	return month, year, nil
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
