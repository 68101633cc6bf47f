package notification

import (
	"context"

	"github.com/niranjan-aware/resonance-system/internal/domain"
	"github.com/niranjan-aware/resonance-system/internal/integrations/whatsapp"
)

// ChatSender delivers one template message. Implemented by the WhatsApp
// Graph API client; mocked in tests.
type ChatSender interface {
	SendTemplate(ctx context.Context, to, templateName string, bodyParams []string) whatsapp.Result
}

// CalendarSync mirrors reservations into per-studio calendars.
type CalendarSync interface {
	CreateEvent(ctx context.Context, res *domain.Reservation) (eventID string, err error)
	UpdateEvent(ctx context.Context, res *domain.Reservation) error
	DeleteEvent(ctx context.Context, studioID int64, eventID string) error
}

// SheetLog keeps the master spreadsheet row per reservation current.
type SheetLog interface {
	AppendRow(ctx context.Context, res *domain.Reservation) error
	UpdateRow(ctx context.Context, res *domain.Reservation) error
}

// AttemptLog records chat delivery attempts.
type AttemptLog interface {
	Append(ctx context.Context, rec *domain.NotificationRecord) error
}

// ReservationStore is the slice of the reservation repository the dispatcher
// writes back to after a channel succeeds.
type ReservationStore interface {
	SetConfirmationSent(ctx context.Context, id int64) error
	UpdateSyncState(ctx context.Context, id int64, eventID string, status domain.SyncStatus) error
}
