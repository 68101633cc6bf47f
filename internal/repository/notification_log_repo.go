package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/niranjan-aware/resonance-system/internal/domain"
)

type NotificationLogRepository struct {
	db *gorm.DB
}

func NewNotificationLogRepository(db *gorm.DB) *NotificationLogRepository {
	return &NotificationLogRepository{db: db}
}

type notificationModel struct {
	ID            int64      `gorm:"column:id;primaryKey"`
	ReservationID int64      `gorm:"column:reservation_id;index"`
	CustomerID    int64      `gorm:"column:customer_id;index"`
	Event         string     `gorm:"column:event"`
	Channel       string     `gorm:"column:channel"`
	Recipient     string     `gorm:"column:recipient"`
	TemplateName  string     `gorm:"column:template_name"`
	Status        string     `gorm:"column:status;index"`
	MessageID     string     `gorm:"column:message_id;index"`
	ErrorCode     string     `gorm:"column:error_code"`
	ErrorMessage  string     `gorm:"column:error_message;type:text"`
	SentAt        *time.Time `gorm:"column:sent_at"`
	DeliveredAt   *time.Time `gorm:"column:delivered_at"`
	ReadAt        *time.Time `gorm:"column:read_at"`
	CreatedAt     time.Time  `gorm:"column:created_at"`
}

func (notificationModel) TableName() string { return "notification_log" }

// Append writes one delivery-attempt record. Best effort by contract: the
// dispatcher logs and moves on if this fails.
func (r *NotificationLogRepository) Append(ctx context.Context, rec *domain.NotificationRecord) error {
	m := notificationModel{
		ReservationID: rec.ReservationID,
		CustomerID:    rec.CustomerID,
		Event:         string(rec.Event),
		Channel:       string(rec.Channel),
		Recipient:     rec.Recipient,
		TemplateName:  rec.TemplateName,
		Status:        string(rec.Status),
		MessageID:     rec.MessageID,
		ErrorCode:     rec.ErrorCode,
		ErrorMessage:  rec.ErrorMessage,
		SentAt:        rec.SentAt,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	rec.ID = m.ID
	rec.CreatedAt = m.CreatedAt
	return nil
}

// UpdateStatusByMessageID applies a provider delivery-status callback
// (delivered/read) to the matching attempt record.
func (r *NotificationLogRepository) UpdateStatusByMessageID(ctx context.Context, messageID string, status domain.DeliveryStatus) error {
	now := time.Now().UTC()
	values := map[string]any{"status": string(status)}
	switch status {
	case domain.DeliveryDelivered:
		values["delivered_at"] = now
	case domain.DeliveryRead:
		values["read_at"] = now
	}
	tx := r.db.WithContext(ctx).
		Model(&notificationModel{}).
		Where("message_id = ?", messageID).
		Updates(values)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *NotificationLogRepository) ListByReservation(ctx context.Context, reservationID int64) ([]domain.NotificationRecord, error) {
	var rows []notificationModel
	err := r.db.WithContext(ctx).
		Where("reservation_id = ?", reservationID).
		Order("created_at").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]domain.NotificationRecord, 0, len(rows))
	for _, m := range rows {
		out = append(out, domain.NotificationRecord{
			ID:            m.ID,
			ReservationID: m.ReservationID,
			CustomerID:    m.CustomerID,
			Event:         domain.NotificationEvent(m.Event),
			Channel:       domain.NotificationChannel(m.Channel),
			Recipient:     m.Recipient,
			TemplateName:  m.TemplateName,
			Status:        domain.DeliveryStatus(m.Status),
			MessageID:     m.MessageID,
			ErrorCode:     m.ErrorCode,
			ErrorMessage:  m.ErrorMessage,
			SentAt:        m.SentAt,
			DeliveredAt:   m.DeliveredAt,
			ReadAt:        m.ReadAt,
			CreatedAt:     m.CreatedAt,
		})
	}
	return out, nil
}
