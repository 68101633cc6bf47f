package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/niranjan-aware/resonance-system/internal/domain"
)

const dateLayout = "2006-01-02"

type ReservationRepository struct {
	db *gorm.DB
}

func NewReservationRepository(db *gorm.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

// Dates are stored as "YYYY-MM-DD" strings and times as zero-padded "HH:MM"
// strings, so range comparisons work identically on PostgreSQL and SQLite.
type reservationModel struct {
	ID            int64     `gorm:"column:id;primaryKey"`
	ReferenceCode string    `gorm:"column:reference_code;uniqueIndex"`
	StudioID      int64     `gorm:"column:studio_id;index:idx_reservations_studio_date"`
	CustomerID    int64     `gorm:"column:customer_id;index"`
	Date          string    `gorm:"column:date;index:idx_reservations_studio_date"`
	StartTime     string    `gorm:"column:start_time"`
	EndTime       string    `gorm:"column:end_time"`
	SessionKind   string    `gorm:"column:session_kind"`
	Participants  int       `gorm:"column:participants"`
	Musicians     int       `gorm:"column:musicians"`
	SpecialReqs   string    `gorm:"column:special_requirements;type:text"`
	BaseAmount    int64     `gorm:"column:base_amount"`
	TaxAmount     int64     `gorm:"column:tax_amount"`
	TotalAmount   int64     `gorm:"column:total_amount"`
	Status        string    `gorm:"column:status;index"`
	ConfirmSent   bool      `gorm:"column:confirmation_sent"`
	Rem12hSent    bool      `gorm:"column:reminder_12h_sent"`
	Rem6hSent     bool      `gorm:"column:reminder_6h_sent"`
	Rem3hSent     bool      `gorm:"column:reminder_3h_sent"`
	CancelReason  string    `gorm:"column:cancel_reason;type:text"`
	CancelledAt   *time.Time `gorm:"column:cancelled_at"`
	PenaltyAmount int64     `gorm:"column:penalty_amount"`
	CalendarEvent string    `gorm:"column:calendar_event_id"`
	SyncStatus    string    `gorm:"column:sync_status"`
	LastSyncedAt  *time.Time `gorm:"column:last_synced_at"`
	CreatedAt     time.Time `gorm:"column:created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at"`

	Customer *customerModel `gorm:"foreignKey:CustomerID"`
	Studio   *studioModel   `gorm:"foreignKey:StudioID"`
}

func (reservationModel) TableName() string { return "reservations" }

func toDomainReservation(m reservationModel) *domain.Reservation {
	date, _ := time.Parse(dateLayout, m.Date)
	r := &domain.Reservation{
		ID:            m.ID,
		ReferenceCode: m.ReferenceCode,
		StudioID:      m.StudioID,
		CustomerID:    m.CustomerID,
		Date:          date,
		StartTime:     m.StartTime,
		EndTime:       m.EndTime,
		SessionKind:   domain.SessionKind(m.SessionKind),
		Details: domain.SessionDetails{
			Participants:        m.Participants,
			Musicians:           m.Musicians,
			SpecialRequirements: m.SpecialReqs,
		},
		Pricing: domain.Pricing{
			BaseAmount:  m.BaseAmount,
			TaxAmount:   m.TaxAmount,
			TotalAmount: m.TotalAmount,
		},
		Status: domain.ReservationStatus(m.Status),
		Notifications: domain.NotificationFlags{
			ConfirmationSent: m.ConfirmSent,
			Reminder12hSent:  m.Rem12hSent,
			Reminder6hSent:   m.Rem6hSent,
			Reminder3hSent:   m.Rem3hSent,
		},
		Cancellation: domain.Cancellation{
			Reason:        m.CancelReason,
			CancelledAt:   m.CancelledAt,
			PenaltyAmount: m.PenaltyAmount,
		},
		Sync: domain.CalendarSync{
			EventID:      m.CalendarEvent,
			Status:       domain.SyncStatus(m.SyncStatus),
			LastSyncedAt: m.LastSyncedAt,
		},
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
	if m.Customer != nil {
		r.Customer = toDomainCustomer(*m.Customer)
	}
	if m.Studio != nil {
		r.Studio = toDomainStudio(*m.Studio)
	}
	return r
}

func toReservationModel(r *domain.Reservation) reservationModel {
	return reservationModel{
		ID:            r.ID,
		ReferenceCode: r.ReferenceCode,
		StudioID:      r.StudioID,
		CustomerID:    r.CustomerID,
		Date:          r.Date.Format(dateLayout),
		StartTime:     r.StartTime,
		EndTime:       r.EndTime,
		SessionKind:   string(r.SessionKind),
		Participants:  r.Details.Participants,
		Musicians:     r.Details.Musicians,
		SpecialReqs:   r.Details.SpecialRequirements,
		BaseAmount:    r.Pricing.BaseAmount,
		TaxAmount:     r.Pricing.TaxAmount,
		TotalAmount:   r.Pricing.TotalAmount,
		Status:        string(r.Status),
		ConfirmSent:   r.Notifications.ConfirmationSent,
		Rem12hSent:    r.Notifications.Reminder12hSent,
		Rem6hSent:     r.Notifications.Reminder6hSent,
		Rem3hSent:     r.Notifications.Reminder3hSent,
		CancelReason:  r.Cancellation.Reason,
		CancelledAt:   r.Cancellation.CancelledAt,
		PenaltyAmount: r.Cancellation.PenaltyAmount,
		CalendarEvent: r.Sync.EventID,
		SyncStatus:    string(r.Sync.Status),
		LastSyncedAt:  r.Sync.LastSyncedAt,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

func reminderColumn(stage domain.ReminderStage) string {
	switch stage {
	case domain.Stage12h:
		return "reminder_12h_sent"
	case domain.Stage6h:
		return "reminder_6h_sent"
	default:
		return "reminder_3h_sent"
	}
}

// Create inserts the reservation after re-checking for overlap inside the
// same transaction. A unique-index violation from a concurrent writer is
// also mapped to ErrConflict, so callers see one error either way.
func (r *ReservationRepository) Create(ctx context.Context, res *domain.Reservation) error {
	m := toReservationModel(res)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cnt int64
		err := tx.Model(&reservationModel{}).
			Where("studio_id = ? AND date = ?", m.StudioID, m.Date).
			Where("status <> ?", string(domain.ReservationCancelled)).
			Where("start_time < ? AND end_time > ?", m.EndTime, m.StartTime).
			Count(&cnt).Error
		if err != nil {
			return err
		}
		if cnt > 0 {
			return ErrConflict
		}
		return tx.Create(&m).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return err
	}
	res.ID = m.ID
	res.CreatedAt = m.CreatedAt
	res.UpdatedAt = m.UpdatedAt
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

func (r *ReservationRepository) GetByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	var m reservationModel
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Studio").
		First(&m, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return toDomainReservation(m), nil
}

// FindConflicting returns non-cancelled reservations on the same studio and
// day whose half-open time range overlaps [start,end). excludeID lets a
// reschedule skip its own row.
func (r *ReservationRepository) FindConflicting(ctx context.Context, studioID int64, date time.Time, start, end string, excludeID int64) ([]domain.Reservation, error) {
	q := r.db.WithContext(ctx).Model(&reservationModel{}).
		Where("studio_id = ? AND date = ?", studioID, date.Format(dateLayout)).
		Where("status <> ?", string(domain.ReservationCancelled)).
		Where("start_time < ? AND end_time > ?", end, start)
	if excludeID > 0 {
		q = q.Where("id <> ?", excludeID)
	}

	var rows []reservationModel
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("find conflicting: %w", err)
	}
	out := make([]domain.Reservation, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainReservation(m))
	}
	return out, nil
}

// FindByStatusAndWindow returns reservations with the given status whose
// date falls inside [from,to] inclusive.
func (r *ReservationRepository) FindByStatusAndWindow(ctx context.Context, status domain.ReservationStatus, from, to time.Time) ([]domain.Reservation, error) {
	var rows []reservationModel
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Studio").
		Where("status = ?", string(status)).
		Where("date BETWEEN ? AND ?", from.Format(dateLayout), to.Format(dateLayout)).
		Order("date, start_time").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]domain.Reservation, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainReservation(m))
	}
	return out, nil
}

// FindReminderCandidates narrows FindByStatusAndWindow to confirmed rows
// whose stage flag is still unset. The caller refines by exact time-to-start.
func (r *ReservationRepository) FindReminderCandidates(ctx context.Context, stage domain.ReminderStage, from, to time.Time) ([]domain.Reservation, error) {
	all, err := r.FindByStatusAndWindow(ctx, domain.ReservationConfirmed, from, to)
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, res := range all {
		if !res.Notifications.ReminderSent(stage) {
			out = append(out, res)
		}
	}
	return out, nil
}

func (r *ReservationRepository) FindByPhone(ctx context.Context, phone string) ([]domain.Reservation, error) {
	var rows []reservationModel
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Studio").
		Joins("JOIN customers ON customers.id = reservations.customer_id").
		Where("customers.phone = ?", phone).
		Order("date DESC, start_time").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]domain.Reservation, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainReservation(m))
	}
	return out, nil
}

// FindInRange powers the public timetable: all non-cancelled reservations
// between two dates, optionally narrowed to one studio.
func (r *ReservationRepository) FindInRange(ctx context.Context, from, to time.Time, studioID int64) ([]domain.Reservation, error) {
	q := r.db.WithContext(ctx).
		Preload("Studio").
		Where("status <> ?", string(domain.ReservationCancelled)).
		Where("date BETWEEN ? AND ?", from.Format(dateLayout), to.Format(dateLayout))
	if studioID > 0 {
		q = q.Where("studio_id = ?", studioID)
	}

	var rows []reservationModel
	if err := q.Order("date, start_time").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Reservation, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainReservation(m))
	}
	return out, nil
}

// MarkReminderSent flips one stage flag. The conditional WHERE makes the
// flag write exactly-once: the first scanner to land the update wins and
// every later attempt reports claimed=false.
func (r *ReservationRepository) MarkReminderSent(ctx context.Context, id int64, stage domain.ReminderStage) (bool, error) {
	col := reminderColumn(stage)
	tx := r.db.WithContext(ctx).
		Model(&reservationModel{}).
		Where("id = ? AND "+col+" = ?", id, false).
		Updates(map[string]any{
			col:          true,
			"updated_at": time.Now().UTC(),
		})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

func (r *ReservationRepository) SetConfirmationSent(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).
		Model(&reservationModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"confirmation_sent": true,
			"updated_at":        time.Now().UTC(),
		}).Error
}

func (r *ReservationRepository) UpdateStatus(ctx context.Context, id int64, status domain.ReservationStatus) error {
	tx := r.db.WithContext(ctx).
		Model(&reservationModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     string(status),
			"updated_at": time.Now().UTC(),
		})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CancelWithPenalty records the cancellation outcome in one update. Used for
// both user cancellation and the administrative no-show marking, which reuses
// the cancellation fields for reporting uniformity.
func (r *ReservationRepository) CancelWithPenalty(ctx context.Context, id int64, status domain.ReservationStatus, reason string, penalty int64, at time.Time) error {
	tx := r.db.WithContext(ctx).
		Model(&reservationModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":         string(status),
			"cancel_reason":  reason,
			"cancelled_at":   at,
			"penalty_amount": penalty,
			"updated_at":     time.Now().UTC(),
		})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateSchedule moves a confirmed reservation to a new slot. Reminder flags
// are reset so the new session time gets its own reminder cycle.
func (r *ReservationRepository) UpdateSchedule(ctx context.Context, id int64, date time.Time, start, end string) error {
	tx := r.db.WithContext(ctx).
		Model(&reservationModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"date":              date.Format(dateLayout),
			"start_time":        start,
			"end_time":          end,
			"reminder_12h_sent": false,
			"reminder_6h_sent":  false,
			"reminder_3h_sent":  false,
			"updated_at":        time.Now().UTC(),
		})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ReservationRepository) UpdateSyncState(ctx context.Context, id int64, eventID string, status domain.SyncStatus) error {
	now := time.Now().UTC()
	values := map[string]any{
		"sync_status": string(status),
		"updated_at":  now,
	}
	if status == domain.SyncSynced {
		values["last_synced_at"] = now
	}
	if eventID != "" {
		values["calendar_event_id"] = eventID
	}
	return r.db.WithContext(ctx).
		Model(&reservationModel{}).
		Where("id = ?", id).
		Updates(values).Error
}

// FindEndedBefore lists reservations older than the cutoff date, for the
// retention sweep to detach calendar events before deletion.
func (r *ReservationRepository) FindEndedBefore(ctx context.Context, cutoff time.Time) ([]domain.Reservation, error) {
	var rows []reservationModel
	err := r.db.WithContext(ctx).
		Where("date < ?", cutoff.Format(dateLayout)).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]domain.Reservation, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainReservation(m))
	}
	return out, nil
}

func (r *ReservationRepository) DeleteEndedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tx := r.db.WithContext(ctx).
		Where("date < ?", cutoff.Format(dateLayout)).
		Delete(&reservationModel{})
	return tx.RowsAffected, tx.Error
}
