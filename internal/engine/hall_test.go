package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateHall(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	h, err := e.CreateHall(ctx, "Hall A", 50)
	require.NoError(t, err)
	assert.NotZero(t, h.ID)
	assert.Equal(t, "Hall A", h.Name)
	assert.Equal(t, uint32(50), h.TotalSeats)

	got, err := e.GetHall(ctx, h.ID)
	require.NoError(t, err)
	assert.Equal(t, h.ID, got.ID)
}

func TestCreateHallValidation(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	var verr *ValidationError

	_, err := e.CreateHall(ctx, "   ", 50)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "name", verr.Field)

	_, err = e.CreateHall(ctx, "Hall A", 0)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "total_seats", verr.Field)

	_, err = e.CreateHall(ctx, "Hall A", 50)
	require.NoError(t, err)
	_, err = e.CreateHall(ctx, "Hall A", 80)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "name", verr.Field)
}

func TestGetHallNotFound(t *testing.T) {
	e := newTestEngine(t)

	var nf *NotFoundError
	_, err := e.GetHall(context.Background(), 42)
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "hall", nf.Entity)
}

func TestUpdateHall(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	h := mustHall(t, e, "Hall A", 50)

	name := "Hall A Renovated"
	seats := uint32(75)
	got, err := e.UpdateHall(ctx, h.ID, HallUpdate{Name: &name, TotalSeats: &seats})
	require.NoError(t, err)
	assert.Equal(t, name, got.Name)
	assert.Equal(t, seats, got.TotalSeats)
}

func TestUpdateHallLockedBySales(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	h := mustHall(t, e, "Hall A", 50)
	f := mustFilm(t, e, "Heat")
	s := mustScreening(t, e, h.ID, f.ID, "10:00", "12:00", "2024-01-02", "2024-01-05")

	_, err := e.PurchaseTickets(ctx, testNow, 7, s.ID, date(t, "2024-01-03"), 2)
	require.NoError(t, err)

	seats := uint32(100)
	var imm *ImmutableError
	_, err = e.UpdateHall(ctx, h.ID, HallUpdate{TotalSeats: &seats})
	require.ErrorAs(t, err, &imm)
	assert.Equal(t, "hall", imm.Entity)
	assert.Equal(t, h.ID, imm.ID)
}

func TestDeleteHall(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	h := mustHall(t, e, "Hall A", 50)
	require.NoError(t, e.DeleteHall(ctx, h.ID))

	var nf *NotFoundError
	_, err := e.GetHall(ctx, h.ID)
	require.ErrorAs(t, err, &nf)
}

func TestDeleteHallWithScreenings(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	h := mustHall(t, e, "Hall A", 50)
	f := mustFilm(t, e, "Heat")
	mustScreening(t, e, h.ID, f.ID, "10:00", "12:00", "2024-01-02", "2024-01-05")

	var conflict *ConflictError
	err := e.DeleteHall(ctx, h.ID)
	require.ErrorAs(t, err, &conflict)

	// Still there after the rejected delete.
	_, err = e.GetHall(ctx, h.ID)
	require.NoError(t, err)
}
