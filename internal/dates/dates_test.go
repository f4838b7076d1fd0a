package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestMonthIndex(t *testing.T) {
	m, err := MonthIndex("Jan")
	require.NoError(t, err)
	assert.Equal(t, time.January, m)

	m, err = MonthIndex("Dec")
	require.NoError(t, err)
	assert.Equal(t, time.December, m)

	for _, bad := range []string{"jan", "JAN", "Sept", "Foo", ""} {
		_, err := MonthIndex(bad)
		assert.ErrorIs(t, err, ErrUnknownMonth, "MonthIndex(%q)", bad)
	}
}

func TestSequencer_YearRollover(t *testing.T) {
	s := NewSequencer(time.December, 2023)

	got, err := s.Resolve("30", "Dec")
	require.NoError(t, err)
	assert.Equal(t, date(2023, time.December, 30), got)

	got, err = s.Resolve("02", "Jan")
	require.NoError(t, err)
	assert.Equal(t, date(2024, time.January, 2), got)

	month, year := s.Current()
	assert.Equal(t, time.January, month)
	assert.Equal(t, 2024, year)
}

func TestSequencer_SameAndLaterMonths(t *testing.T) {
	s := NewSequencer(time.March, 2024)
	for _, tt := range []struct {
		day, month string
		want       time.Time
	}{
		{"01", "Mar", date(2024, time.March, 1)},
		{"31", "Mar", date(2024, time.March, 31)},
		{"15", "May", date(2024, time.May, 15)},
		{"16", "May", date(2024, time.May, 16)},
		{"01", "Feb", date(2025, time.February, 1)},
	} {
		got, err := s.Resolve(tt.day, tt.month)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestSequencer_InvalidDate(t *testing.T) {
	s := NewSequencer(time.January, 2023)
	for _, day := range []string{"00", "29", "32", "xx"} {
		_, err := s.Resolve(day, "Feb")
		assert.ErrorIs(t, err, ErrInvalidDate, "Resolve(%q, Feb)", day)
	}

	// Failed rows do not move the sequencer.
	month, year := s.Current()
	assert.Equal(t, time.January, month)
	assert.Equal(t, 2023, year)
}

func TestSequencer_LeapDay(t *testing.T) {
	s := NewSequencer(time.December, 2023)
	got, err := s.Resolve("29", "Feb")
	require.NoError(t, err)
	assert.Equal(t, date(2024, time.February, 29), got)
}

func TestSequencer_UnknownMonth(t *testing.T) {
	s := NewSequencer(time.June, 2024)
	_, err := s.Resolve("01", "Jux")
	assert.ErrorIs(t, err, ErrUnknownMonth)
}

func TestParseHeader(t *testing.T) {
	tests := []struct {
		page  string
		month time.Month
		year  int
	}{
		{"FNB\nStatement Period : 01 January 2024 to 31 January 2024\n", time.January, 2024},
		{"Statement Period  :  15 DECEMBER 2023 to 14 January 2024", time.December, 2023},
		{"Statement Period : 01 sep 2022 - 30 Sep 2022", time.September, 2022},
	}
	for _, tt := range tests {
		month, year, err := ParseHeader(tt.page)
		require.NoError(t, err, tt.page)
		assert.Equal(t, tt.month, month)
		assert.Equal(t, tt.year, year)
	}
}

func TestParseHeader_Missing(t *testing.T) {
	_, _, err := ParseHeader("Opening Balance 0.00\n24 Jan Salary 5,000.00Cr 5,000.00Cr")
	assert.ErrorIs(t, err, ErrHeaderNotFound)
}

func TestParseHeader_BadMonth(t *testing.T) {
	_, _, err := ParseHeader("Statement Period : 01 Foo 2024")
	assert.ErrorIs(t, err, ErrUnknownMonth)
}
