package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func screening(t *testing.T, hall uint64, start, finish, dateStart, dateEnd string) Screening {
	t.Helper()
	st, err := ParseClock(start)
	require.NoError(t, err)
	fi, err := ParseClock(finish)
	require.NoError(t, err)
	ds, err := ParseDate(dateStart)
	require.NoError(t, err)
	de, err := ParseDate(dateEnd)
	require.NoError(t, err)
	return Screening{
		HallID: hall, StartTime: st, FinishTime: fi,
		DateStart: ds, DateEnd: de, Status: ScreeningActive,
	}
}

func TestScreeningRunsOn(t *testing.T) {
	s := screening(t, 1, "10:00", "12:00", "2024-01-02", "2024-01-05")

	on := func(d string) bool {
		day, err := ParseDate(d)
		require.NoError(t, err)
		return s.RunsOn(day)
	}
	assert.False(t, on("2024-01-01"))
	assert.True(t, on("2024-01-02"))
	assert.True(t, on("2024-01-04"))
	assert.True(t, on("2024-01-05"))
	assert.False(t, on("2024-01-06"))
}

func TestScreeningOverlaps(t *testing.T) {
	base := screening(t, 1, "10:00", "12:00", "2024-01-02", "2024-01-05")

	tests := []struct {
		name  string
		other Screening
		want  bool
	}{
		{"same slot", screening(t, 1, "10:00", "12:00", "2024-01-02", "2024-01-05"), true},
		{"different hall", screening(t, 2, "10:00", "12:00", "2024-01-02", "2024-01-05"), false},
		{"back to back", screening(t, 1, "12:00", "14:00", "2024-01-02", "2024-01-05"), false},
		{"overlapping times", screening(t, 1, "11:30", "13:00", "2024-01-02", "2024-01-05"), true},
		{"disjoint dates", screening(t, 1, "10:00", "12:00", "2024-01-06", "2024-01-09"), false},
		{"single shared date", screening(t, 1, "11:00", "13:00", "2024-01-05", "2024-01-08"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, base.Overlaps(&tt.other))
			assert.Equal(t, tt.want, tt.other.Overlaps(&base), "overlap is symmetric")
		})
	}
}

func TestScreeningFilterMatches(t *testing.T) {
	s := screening(t, 1, "10:00", "12:00", "2024-01-02", "2024-01-05")
	s.FilmID = 9

	day, _ := ParseDate("2024-01-03")
	off, _ := ParseDate("2024-01-09")

	assert.True(t, ScreeningFilter{}.Matches(&s))
	assert.True(t, ScreeningFilter{HallID: 1, FilmID: 9, Date: &day}.Matches(&s))
	assert.False(t, ScreeningFilter{HallID: 2}.Matches(&s))
	assert.False(t, ScreeningFilter{FilmID: 8}.Matches(&s))
	assert.False(t, ScreeningFilter{Date: &off}.Matches(&s))
}
