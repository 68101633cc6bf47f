package googlesync

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/niranjan-aware/resonance-system/internal/config"
	"github.com/niranjan-aware/resonance-system/internal/domain"
	"github.com/niranjan-aware/resonance-system/internal/pkg/logger"
)

// CalendarService mirrors reservations into per-studio Google calendars.
// Studios without a calendar mapping are silently skipped.
type CalendarService struct {
	svc      *calendar.Service
	byStudio map[int64]string
	loc      *time.Location
}

// NewCalendarService returns nil when no service-account credentials are
// configured; callers treat a nil service as "calendar sync disabled".
func NewCalendarService(ctx context.Context, cfg config.GoogleConfig, loc *time.Location) (*CalendarService, error) {
	if len(cfg.CredentialsJSON) == 0 {
		return nil, nil
	}
	svc, err := calendar.NewService(ctx,
		option.WithCredentialsJSON(cfg.CredentialsJSON),
		option.WithScopes(calendar.CalendarScope),
	)
	if err != nil {
		return nil, fmt.Errorf("googlesync: calendar service: %w", err)
	}
	return &CalendarService{svc: svc, byStudio: cfg.CalendarByStudio, loc: loc}, nil
}

// CreateEvent inserts a calendar event for the reservation and returns the
// event id for later updates.
func (s *CalendarService) CreateEvent(ctx context.Context, res *domain.Reservation) (string, error) {
	calID, ok := s.byStudio[res.StudioID]
	if !ok {
		logger.InfoLogger.WithField("studio_id", res.StudioID).Info("no calendar mapped for studio, skipping")
		return "", nil
	}

	ev := s.buildEvent(res)
	ev.ColorId = colorBySessionKind(res.SessionKind)
	created, err := s.svc.Events.Insert(calID, ev).SendUpdates("all").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("googlesync: insert event: %w", err)
	}
	return created.Id, nil
}

// UpdateEvent rewrites the event after a reschedule or status change.
func (s *CalendarService) UpdateEvent(ctx context.Context, res *domain.Reservation) error {
	calID, ok := s.byStudio[res.StudioID]
	if !ok || res.Sync.EventID == "" {
		return nil
	}

	ev := s.buildEvent(res)
	ev.Summary = fmt.Sprintf("%s [%s]", ev.Summary, res.Status)
	ev.ColorId = colorByStatus(res.Status)
	_, err := s.svc.Events.Update(calID, res.Sync.EventID, ev).SendUpdates("all").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("googlesync: update event: %w", err)
	}
	return nil
}

func (s *CalendarService) DeleteEvent(ctx context.Context, studioID int64, eventID string) error {
	calID, ok := s.byStudio[studioID]
	if !ok || eventID == "" {
		return nil
	}
	err := s.svc.Events.Delete(calID, eventID).SendUpdates("all").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("googlesync: delete event: %w", err)
	}
	return nil
}

func (s *CalendarService) buildEvent(res *domain.Reservation) *calendar.Event {
	summary := string(res.SessionKind)
	if res.Customer != nil {
		summary = fmt.Sprintf("%s - %s", res.SessionKind, res.Customer.Name)
	}
	return &calendar.Event{
		Summary:     summary,
		Description: eventDescription(res),
		Start: &calendar.EventDateTime{
			DateTime: res.StartsAt(s.loc).Format(time.RFC3339),
			TimeZone: s.loc.String(),
		},
		End: &calendar.EventDateTime{
			DateTime: res.EndsAt(s.loc).Format(time.RFC3339),
			TimeZone: s.loc.String(),
		},
		ExtendedProperties: &calendar.EventExtendedProperties{
			Private: map[string]string{
				"referenceCode": res.ReferenceCode,
				"studioId":      strconv.FormatInt(res.StudioID, 10),
			},
		},
		Reminders: &calendar.EventReminders{
			UseDefault: false,
			Overrides: []*calendar.EventReminder{
				{Method: "email", Minutes: 24 * 60},
				{Method: "popup", Minutes: 60},
			},
			ForceSendFields: []string{"UseDefault"},
		},
	}
}

func eventDescription(res *domain.Reservation) string {
	name, email, phone := "N/A", "N/A", "N/A"
	if res.Customer != nil {
		name = res.Customer.Name
		if res.Customer.Email != "" {
			email = res.Customer.Email
		}
		phone = res.Customer.Phone
	}
	studio := "N/A"
	if res.Studio != nil {
		studio = res.Studio.Name
	}
	return fmt.Sprintf(
		"Reference: %s\nCustomer: %s\nEmail: %s\nPhone: %s\nStudio: %s\nSession: %s\nSlot: %s - %s\nBase: %d\nTax: %d\nTotal: %d\nStatus: %s",
		res.ReferenceCode, name, email, phone, studio, res.SessionKind,
		res.StartTime, res.EndTime,
		res.Pricing.BaseAmount, res.Pricing.TaxAmount, res.Pricing.TotalAmount,
		res.Status,
	)
}

func colorBySessionKind(kind domain.SessionKind) string {
	switch kind {
	case domain.SessionKaraoke:
		return "9"
	case domain.SessionLiveMusicians:
		return "10"
	case domain.SessionAudioRecording:
		return "11"
	case domain.SessionVideoRecording:
		return "5"
	case domain.SessionFBLive:
		return "4"
	case domain.SessionBand:
		return "6"
	case domain.SessionShow:
		return "7"
	default:
		return "1"
	}
}

func colorByStatus(status domain.ReservationStatus) string {
	switch status {
	case domain.ReservationConfirmed:
		return "10"
	case domain.ReservationCancelled:
		return "11"
	case domain.ReservationCompleted:
		return "9"
	case domain.ReservationNoShow:
		return "8"
	default:
		return "1"
	}
}
