package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-01-03")
	require.NoError(t, err)
	assert.Equal(t, Date{Year: 2024, Month: time.January, Day: 3}, d)
	assert.Equal(t, "2024-01-03", d.String())

	_, err = ParseDate("03.01.2024")
	assert.Error(t, err)
	_, err = ParseDate("2024-02-30")
	assert.Error(t, err)
}

func TestDateOrdering(t *testing.T) {
	a, _ := ParseDate("2024-01-03")
	b, _ := ParseDate("2024-01-04")

	assert.True(t, a.Before(b))
	assert.False(t, b.Before(a))
	assert.True(t, b.After(a))
	assert.Equal(t, b, a.Next())
	assert.True(t, Date{}.IsZero())
	assert.False(t, a.IsZero())
}

func TestDateRangesIntersect(t *testing.T) {
	d := func(s string) Date {
		v, err := ParseDate(s)
		require.NoError(t, err)
		return v
	}

	tests := []struct {
		name                       string
		aStart, aEnd, bStart, bEnd string
		want                       bool
	}{
		{"disjoint", "2024-01-01", "2024-01-05", "2024-01-06", "2024-01-10", false},
		{"touching at endpoint", "2024-01-01", "2024-01-05", "2024-01-05", "2024-01-10", true},
		{"contained", "2024-01-01", "2024-01-31", "2024-01-10", "2024-01-12", true},
		{"single day both", "2024-01-03", "2024-01-03", "2024-01-03", "2024-01-03", true},
		{"adjacent days", "2024-01-01", "2024-01-03", "2024-01-04", "2024-01-06", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DateRangesIntersect(d(tt.aStart), d(tt.aEnd), d(tt.bStart), d(tt.bEnd))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseClock(t *testing.T) {
	c, err := ParseClock("14:30")
	require.NoError(t, err)
	assert.Equal(t, Clock(14*60+30), c)
	assert.Equal(t, "14:30", c.String())

	_, err = ParseClock("25:00")
	assert.Error(t, err)
	_, err = ParseClock("9am")
	assert.Error(t, err)
}

func TestClockAddWrapsAtMidnight(t *testing.T) {
	c, _ := ParseClock("23:30")
	assert.Equal(t, "01:00", c.Add(90).String())

	c, _ = ParseClock("10:00")
	assert.Equal(t, "12:05", c.Add(125).String())
}

func TestClockRangesIntersect(t *testing.T) {
	c := func(s string) Clock {
		v, err := ParseClock(s)
		require.NoError(t, err)
		return v
	}

	tests := []struct {
		name                       string
		aStart, aEnd, bStart, bEnd string
		want                       bool
	}{
		{"disjoint", "10:00", "12:00", "13:00", "15:00", false},
		{"back to back", "10:00", "12:00", "12:00", "14:00", false},
		{"one minute overlap", "10:00", "12:01", "12:00", "14:00", true},
		{"contained", "10:00", "18:00", "12:00", "13:00", true},
		{"identical", "10:00", "12:00", "10:00", "12:00", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClockRangesIntersect(c(tt.aStart), c(tt.aEnd), c(tt.bStart), c(tt.bEnd))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClockOfDropsSeconds(t *testing.T) {
	ts := time.Date(2024, 1, 3, 9, 45, 59, 0, time.UTC)
	assert.Equal(t, Clock(9*60+45), ClockOf(ts))
}
