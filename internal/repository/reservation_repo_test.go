package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	_ "modernc.org/sqlite"

	"github.com/niranjan-aware/resonance-system/internal/domain"
)

var testDBCounter int

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	testDBCounter++
	dsn := fmt.Sprintf("file:repo_test_%d?mode=memory&cache=shared", testDBCounter)
	db, err := gorm.Open(
		gormsqlite.New(gormsqlite.Config{DriverName: "sqlite", DSN: dsn}),
		&gorm.Config{},
	)
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))
	return db
}

func seedStudioAndCustomer(t *testing.T, db *gorm.DB) (*domain.Studio, *domain.Customer) {
	t.Helper()
	ctx := context.Background()

	studios := NewStudioRepository(db)
	studio := &domain.Studio{
		Name:       "Studio A - Resonance Sinhgad Road",
		Size:       domain.StudioSmall,
		HourlyRate: 600,
		OpenTime:   "08:00",
		CloseTime:  "22:00",
		IsActive:   true,
	}
	require.NoError(t, studios.Create(ctx, studio))

	customers := NewCustomerRepository(db)
	customer, err := customers.FindOrCreateByPhone(ctx, "9876543210", "Asha")
	require.NoError(t, err)

	return studio, customer
}

func newReservation(studioID, customerID int64, date, start, end string) *domain.Reservation {
	day, _ := time.Parse(dateLayout, date)
	return &domain.Reservation{
		ReferenceCode: fmt.Sprintf("RES-%s-%s", day.Format("20060102"), start[:2]+end[:2]),
		StudioID:      studioID,
		CustomerID:    customerID,
		Date:          day,
		StartTime:     start,
		EndTime:       end,
		SessionKind:   domain.SessionBand,
		Pricing:       domain.Pricing{BaseAmount: 1200, TaxAmount: 216, TotalAmount: 1416},
		Status:        domain.ReservationConfirmed,
		Sync:          domain.CalendarSync{Status: domain.SyncPending},
	}
}

func TestReservationRepository_CreateRejectsOverlap(t *testing.T) {
	db := openTestDB(t)
	studio, customer := seedStudioAndCustomer(t, db)
	repo := NewReservationRepository(db)
	ctx := context.Background()

	first := newReservation(studio.ID, customer.ID, "2026-03-14", "10:00", "12:00")
	require.NoError(t, repo.Create(ctx, first))
	assert.NotZero(t, first.ID)

	t.Run("overlapping slot conflicts", func(t *testing.T) {
		dup := newReservation(studio.ID, customer.ID, "2026-03-14", "11:00", "13:00")
		assert.ErrorIs(t, repo.Create(ctx, dup), ErrConflict)
	})

	t.Run("adjacent slot is fine", func(t *testing.T) {
		adjacent := newReservation(studio.ID, customer.ID, "2026-03-14", "12:00", "14:00")
		assert.NoError(t, repo.Create(ctx, adjacent))
	})

	t.Run("same slot other day is fine", func(t *testing.T) {
		nextDay := newReservation(studio.ID, customer.ID, "2026-03-15", "10:00", "12:00")
		assert.NoError(t, repo.Create(ctx, nextDay))
	})

	t.Run("cancelled rows do not block", func(t *testing.T) {
		blocked := newReservation(studio.ID, customer.ID, "2026-03-16", "10:00", "12:00")
		require.NoError(t, repo.Create(ctx, blocked))
		require.NoError(t, repo.CancelWithPenalty(ctx, blocked.ID, domain.ReservationCancelled, "test", 0, time.Now()))

		retry := newReservation(studio.ID, customer.ID, "2026-03-16", "10:00", "12:00")
		retry.ReferenceCode = "RES-20260316-9999"
		assert.NoError(t, repo.Create(ctx, retry))
	})
}

func TestReservationRepository_MarkReminderSentClaimsOnce(t *testing.T) {
	db := openTestDB(t)
	studio, customer := seedStudioAndCustomer(t, db)
	repo := NewReservationRepository(db)
	ctx := context.Background()

	res := newReservation(studio.ID, customer.ID, "2026-03-14", "10:00", "12:00")
	require.NoError(t, repo.Create(ctx, res))

	claimed, err := repo.MarkReminderSent(ctx, res.ID, domain.Stage12h)
	require.NoError(t, err)
	assert.True(t, claimed)

	again, err := repo.MarkReminderSent(ctx, res.ID, domain.Stage12h)
	require.NoError(t, err)
	assert.False(t, again)

	// Other stages are still claimable.
	claimed, err = repo.MarkReminderSent(ctx, res.ID, domain.Stage6h)
	require.NoError(t, err)
	assert.True(t, claimed)

	got, err := repo.GetByID(ctx, res.ID)
	require.NoError(t, err)
	assert.True(t, got.Notifications.Reminder12hSent)
	assert.True(t, got.Notifications.Reminder6hSent)
	assert.False(t, got.Notifications.Reminder3hSent)
}

func TestReservationRepository_UpdateScheduleResetsFlags(t *testing.T) {
	db := openTestDB(t)
	studio, customer := seedStudioAndCustomer(t, db)
	repo := NewReservationRepository(db)
	ctx := context.Background()

	res := newReservation(studio.ID, customer.ID, "2026-03-14", "10:00", "12:00")
	require.NoError(t, repo.Create(ctx, res))
	_, err := repo.MarkReminderSent(ctx, res.ID, domain.Stage12h)
	require.NoError(t, err)

	day, _ := time.Parse(dateLayout, "2026-03-15")
	require.NoError(t, repo.UpdateSchedule(ctx, res.ID, day, "14:00", "16:00"))

	got, err := repo.GetByID(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, "14:00", got.StartTime)
	assert.Equal(t, "2026-03-15", got.Date.Format(dateLayout))
	assert.False(t, got.Notifications.Reminder12hSent)
	assert.False(t, got.Notifications.Reminder6hSent)
	assert.False(t, got.Notifications.Reminder3hSent)
}

func TestReservationRepository_FindReminderCandidates(t *testing.T) {
	db := openTestDB(t)
	studio, customer := seedStudioAndCustomer(t, db)
	repo := NewReservationRepository(db)
	ctx := context.Background()

	confirmed := newReservation(studio.ID, customer.ID, "2026-03-14", "10:00", "12:00")
	require.NoError(t, repo.Create(ctx, confirmed))

	cancelled := newReservation(studio.ID, customer.ID, "2026-03-14", "14:00", "16:00")
	require.NoError(t, repo.Create(ctx, cancelled))
	require.NoError(t, repo.CancelWithPenalty(ctx, cancelled.ID, domain.ReservationCancelled, "test", 0, time.Now()))

	from, _ := time.Parse(dateLayout, "2026-03-14")
	to, _ := time.Parse(dateLayout, "2026-03-14")

	got, err := repo.FindReminderCandidates(ctx, domain.Stage12h, from, to)
	require.NoError(t, err)
	if assert.Len(t, got, 1) {
		assert.Equal(t, confirmed.ID, got[0].ID)
		// Relations come preloaded for the dispatcher.
		assert.NotNil(t, got[0].Customer)
		assert.NotNil(t, got[0].Studio)
	}

	_, err = repo.MarkReminderSent(ctx, confirmed.ID, domain.Stage12h)
	require.NoError(t, err)

	got, err = repo.FindReminderCandidates(ctx, domain.Stage12h, from, to)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCustomerRepository_FindOrCreateByPhone(t *testing.T) {
	db := openTestDB(t)
	repo := NewCustomerRepository(db)
	ctx := context.Background()

	t.Run("creates guest when no name given", func(t *testing.T) {
		c, err := repo.FindOrCreateByPhone(ctx, "9000000001", "")
		require.NoError(t, err)
		assert.Equal(t, domain.GuestName, c.Name)
	})

	t.Run("upgrades guest name on later booking", func(t *testing.T) {
		c, err := repo.FindOrCreateByPhone(ctx, "9000000001", "Ravi")
		require.NoError(t, err)
		assert.Equal(t, "Ravi", c.Name)
	})

	t.Run("keeps a real name", func(t *testing.T) {
		c, err := repo.FindOrCreateByPhone(ctx, "9000000001", "Someone Else")
		require.NoError(t, err)
		assert.Equal(t, "Ravi", c.Name)
	})

	t.Run("same phone resolves to same identity", func(t *testing.T) {
		a, err := repo.FindOrCreateByPhone(ctx, "9000000002", "Mira")
		require.NoError(t, err)
		b, err := repo.FindOrCreateByPhone(ctx, "9000000002", "")
		require.NoError(t, err)
		assert.Equal(t, a.ID, b.ID)
		assert.Equal(t, "Mira", b.Name)
	})
}
