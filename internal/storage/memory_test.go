package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mycinema/screening-engine/internal/model"
)

func TestMemoryHallSentinels(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	h := &model.Hall{Name: "Hall A", TotalSeats: 50}
	require.NoError(t, m.CreateHall(ctx, h))
	assert.NotZero(t, h.ID)
	assert.False(t, h.CreatedAt.IsZero())

	dup := &model.Hall{Name: "Hall A", TotalSeats: 10}
	assert.ErrorIs(t, m.CreateHall(ctx, dup), ErrDuplicate)

	_, err := m.GetHall(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, m.DeleteHall(ctx, 999), ErrNotFound)
	require.NoError(t, m.DeleteHall(ctx, h.ID))
}

func TestMemoryReturnsCopies(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	h := &model.Hall{Name: "Hall A", TotalSeats: 50}
	require.NoError(t, m.CreateHall(ctx, h))

	got, err := m.GetHall(ctx, h.ID)
	require.NoError(t, err)
	got.Name = "mutated"

	again, err := m.GetHall(ctx, h.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hall A", again.Name, "callers must not reach the stored record")
}

func TestMemoryScreeningFilter(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	d1, _ := model.ParseDate("2024-01-02")
	d2, _ := model.ParseDate("2024-01-05")
	s1 := &model.Screening{HallID: 1, FilmID: 1, StartTime: 600, FinishTime: 720, DateStart: d1, DateEnd: d2, Status: model.ScreeningActive}
	s2 := &model.Screening{HallID: 2, FilmID: 1, StartTime: 540, FinishTime: 660, DateStart: d1, DateEnd: d1, Status: model.ScreeningActive}
	require.NoError(t, m.CreateScreening(ctx, s1))
	require.NoError(t, m.CreateScreening(ctx, s2))

	list, err := m.ListScreenings(ctx, model.ScreeningFilter{HallID: 1})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, s1.ID, list[0].ID)

	day, _ := model.ParseDate("2024-01-04")
	list, err = m.ListScreenings(ctx, model.ScreeningFilter{Date: &day})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, s1.ID, list[0].ID)

	// Ordered by start time.
	list, err = m.ListScreenings(ctx, model.ScreeningFilter{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, s2.ID, list[0].ID)
}

func TestMemoryLedger(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	d, _ := model.ParseDate("2024-01-03")
	other, _ := model.ParseDate("2024-01-04")
	require.NoError(t, m.AppendPurchase(ctx, &model.TicketPurchase{Ref: "a", UserID: 7, ScreeningID: 1, Date: d, Quantity: 2}))
	require.NoError(t, m.AppendPurchase(ctx, &model.TicketPurchase{Ref: "b", UserID: 7, ScreeningID: 1, Date: other, Quantity: 1}))
	require.NoError(t, m.AppendPurchase(ctx, &model.TicketPurchase{Ref: "c", UserID: 8, ScreeningID: 2, Date: d, Quantity: 5}))

	sold, err := m.SoldQuantity(ctx, 1, d)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), sold)

	has, err := m.ScreeningHasSales(ctx, 1)
	require.NoError(t, err)
	assert.True(t, has)
	has, err = m.ScreeningHasSales(ctx, 3)
	require.NoError(t, err)
	assert.False(t, has)

	mine, err := m.ListPurchasesByUser(ctx, 7)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "b", mine[0].Ref, "newest first")

	p, err := m.GetPurchaseByRef(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, uint64(7), p.UserID)
	assert.Equal(t, other, p.Date)
	_, err = m.GetPurchaseByRef(ctx, "zzz")
	assert.ErrorIs(t, err, ErrNotFound)
}
