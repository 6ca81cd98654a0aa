package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mycinema/screening-engine/internal/model"
	"github.com/mycinema/screening-engine/internal/storage"
)

// Fixed wall clock for every test: 2024-01-01 09:00 UTC.
var testNow = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	mem := storage.NewMemory()
	return New(mem, mem, mem, mem)
}

func date(t *testing.T, s string) model.Date {
	t.Helper()
	d, err := model.ParseDate(s)
	require.NoError(t, err)
	return d
}

func clock(t *testing.T, s string) model.Clock {
	t.Helper()
	c, err := model.ParseClock(s)
	require.NoError(t, err)
	return c
}

func mustHall(t *testing.T, e *Engine, name string, seats uint32) *model.Hall {
	t.Helper()
	h, err := e.CreateHall(context.Background(), name, seats)
	require.NoError(t, err)
	return h
}

func mustFilm(t *testing.T, e *Engine, title string) *model.Film {
	t.Helper()
	f, err := e.CreateFilm(context.Background(), FilmInput{
		Title:       title,
		Description: "test fixture",
		ReleaseDate: date(t, "2023-12-01"),
		DurationMin: 120,
	})
	require.NoError(t, err)
	return f
}

func mustScreening(t *testing.T, e *Engine, hallID, filmID uint64, start, finish, dateStart, dateEnd string) *model.Screening {
	t.Helper()
	fin := clock(t, finish)
	s, err := e.CreateScreening(context.Background(), testNow, ScreeningInput{
		HallID:     hallID,
		FilmID:     filmID,
		StartTime:  clock(t, start),
		FinishTime: &fin,
		DateStart:  date(t, dateStart),
		DateEnd:    date(t, dateEnd),
		PriceCents: 1500,
	})
	require.NoError(t, err)
	return s
}
