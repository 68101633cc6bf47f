package domain

import "time"

type NotificationEvent string

const (
	NotifConfirmation NotificationEvent = "confirmation"
	NotifReminder12h  NotificationEvent = "reminder-12h"
	NotifReminder6h   NotificationEvent = "reminder-6h"
	NotifReminder3h   NotificationEvent = "reminder-3h"
	NotifCancellation NotificationEvent = "cancellation"
	NotifReschedule   NotificationEvent = "reschedule"
)

func ReminderEvent(stage ReminderStage) NotificationEvent {
	switch stage {
	case Stage12h:
		return NotifReminder12h
	case Stage6h:
		return NotifReminder6h
	default:
		return NotifReminder3h
	}
}

type NotificationChannel string

const (
	ChannelWhatsApp NotificationChannel = "whatsapp"
	ChannelCalendar NotificationChannel = "calendar"
	ChannelSheet    NotificationChannel = "sheet"
)

type DeliveryStatus string

const (
	DeliveryPending   DeliveryStatus = "pending"
	DeliverySent      DeliveryStatus = "sent"
	DeliveryDelivered DeliveryStatus = "delivered"
	DeliveryRead      DeliveryStatus = "read"
	DeliveryFailed    DeliveryStatus = "failed"
)

// NotificationRecord is one delivery attempt on the chat channel. Appended
// for every attempt, success or failure; consumed later by delivery-status
// reconciliation.
type NotificationRecord struct {
	ID            int64               `json:"id"`
	ReservationID int64               `json:"reservation_id"`
	CustomerID    int64               `json:"customer_id"`
	Event         NotificationEvent   `json:"event"`
	Channel       NotificationChannel `json:"channel"`
	Recipient     string              `json:"recipient"`
	TemplateName  string              `json:"template_name"`
	Status        DeliveryStatus      `json:"status"`
	MessageID     string              `json:"message_id,omitempty"`
	ErrorCode     string              `json:"error_code,omitempty"`
	ErrorMessage  string              `json:"error_message,omitempty"`
	SentAt        *time.Time          `json:"sent_at,omitempty"`
	DeliveredAt   *time.Time          `json:"delivered_at,omitempty"`
	ReadAt        *time.Time          `json:"read_at,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
}
