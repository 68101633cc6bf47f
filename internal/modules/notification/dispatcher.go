package notification

import (
	"context"
	"sync"
	"time"

	"github.com/niranjan-aware/resonance-system/internal/config"
	"github.com/niranjan-aware/resonance-system/internal/domain"
	"github.com/niranjan-aware/resonance-system/internal/pkg/logger"
	"github.com/niranjan-aware/resonance-system/internal/pkg/metrics"
)

type EventKind string

const (
	EventCreated     EventKind = "created"
	EventCancelled   EventKind = "cancelled"
	EventRescheduled EventKind = "rescheduled"
	EventReminder    EventKind = "reminder"
)

// Event is one lifecycle change to fan out. Reservation must carry its
// Customer and Studio relations.
type Event struct {
	Kind        EventKind
	Stage       domain.ReminderStage
	Reservation *domain.Reservation

	// Previous slot, set for reschedules only.
	PrevDate  time.Time
	PrevStart string
}

func (e Event) notificationEvent() domain.NotificationEvent {
	switch e.Kind {
	case EventCreated:
		return domain.NotifConfirmation
	case EventCancelled:
		return domain.NotifCancellation
	case EventRescheduled:
		return domain.NotifReschedule
	default:
		return domain.ReminderEvent(e.Stage)
	}
}

type Outcome struct {
	Attempted bool
	Success   bool
	Error     string
}

// Report says what happened per channel. Dispatch never fails as a whole:
// the reservation is already persisted and each channel is best effort.
type Report struct {
	Chat     Outcome
	Calendar Outcome
	Sheet    Outcome
}

type Dispatcher struct {
	chat      ChatSender
	calendar  CalendarSync
	sheet     SheetLog
	attempts  AttemptLog
	store     ReservationStore
	templates config.TemplateSet
	timeout   time.Duration
}

// NewDispatcher accepts nil for any channel; a nil channel is reported as
// not attempted.
func NewDispatcher(
	chat ChatSender,
	cal CalendarSync,
	sheet SheetLog,
	attempts AttemptLog,
	store ReservationStore,
	templates config.TemplateSet,
	timeout time.Duration,
) *Dispatcher {
	return &Dispatcher{
		chat:      chat,
		calendar:  cal,
		sheet:     sheet,
		attempts:  attempts,
		store:     store,
		templates: templates,
		timeout:   timeout,
	}
}

// Dispatch fans the event out to every applicable channel concurrently and
// waits for all of them. A failed channel never blocks or fails the others.
func (d *Dispatcher) Dispatch(ctx context.Context, ev Event) Report {
	var (
		report Report
		wg     sync.WaitGroup
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		report.Chat = d.runChannel(ctx, ev, string(domain.ChannelWhatsApp), d.sendChat)
	}()
	go func() {
		defer wg.Done()
		report.Calendar = d.runChannel(ctx, ev, string(domain.ChannelCalendar), d.syncCalendar)
	}()
	go func() {
		defer wg.Done()
		report.Sheet = d.runChannel(ctx, ev, string(domain.ChannelSheet), d.syncSheet)
	}()
	wg.Wait()

	return report
}

// runChannel applies the per-channel timeout, converts the result to an
// Outcome and records the attempt metric.
func (d *Dispatcher) runChannel(ctx context.Context, ev Event, channel string, fn func(context.Context, Event) (bool, error)) Outcome {
	cctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	attempted, err := fn(cctx, ev)
	if !attempted {
		return Outcome{}
	}

	out := Outcome{Attempted: true, Success: err == nil}
	status := "success"
	if err != nil {
		out.Error = err.Error()
		status = "failure"
		logger.ErrorLogger.WithFields(map[string]any{
			"event":     string(ev.notificationEvent()),
			"channel":   channel,
			"reference": ev.Reservation.ReferenceCode,
		}).Errorf("channel delivery failed: %v", err)
	}
	metrics.NotificationAttempts.WithLabelValues(string(ev.notificationEvent()), channel, status).Inc()
	return out
}

func (d *Dispatcher) sendChat(ctx context.Context, ev Event) (bool, error) {
	res := ev.Reservation
	if d.chat == nil || res.Customer == nil || res.Customer.Phone == "" {
		return false, nil
	}

	var (
		tplName string
		params  []string
	)
	switch ev.Kind {
	case EventCreated:
		tplName, params = confirmationMessage(d.templates, res)
	case EventCancelled:
		tplName, params = cancellationMessage(d.templates, res)
	case EventRescheduled:
		tplName, params = rescheduleMessage(d.templates, res, ev.PrevDate, ev.PrevStart)
	default:
		tplName, params = reminderMessage(d.templates, ev.Stage, res)
	}

	result := d.chat.SendTemplate(ctx, res.Customer.Phone, tplName, params)
	d.recordAttempt(ctx, ev, tplName, result.Success, result.MessageID, result.ErrorCode, result.ErrorMessage)

	if !result.Success {
		return true, chatError(result.ErrorCode, result.ErrorMessage)
	}
	if ev.Kind == EventCreated && d.store != nil {
		if err := d.store.SetConfirmationSent(ctx, res.ID); err != nil {
			logger.ErrorLogger.WithField("reservation_id", res.ID).Errorf("flagging confirmation: %v", err)
		}
	}
	return true, nil
}

func (d *Dispatcher) syncCalendar(ctx context.Context, ev Event) (bool, error) {
	res := ev.Reservation
	if d.calendar == nil || ev.Kind == EventReminder {
		return false, nil
	}

	switch ev.Kind {
	case EventCreated:
		eventID, err := d.calendar.CreateEvent(ctx, res)
		if err != nil {
			d.setSyncState(ctx, res.ID, "", domain.SyncFailed)
			return true, err
		}
		if eventID == "" {
			// No calendar mapped for this studio.
			return false, nil
		}
		res.Sync.EventID = eventID
		d.setSyncState(ctx, res.ID, eventID, domain.SyncSynced)
		return true, nil

	case EventRescheduled:
		if err := d.calendar.UpdateEvent(ctx, res); err != nil {
			d.setSyncState(ctx, res.ID, res.Sync.EventID, domain.SyncFailed)
			return true, err
		}
		d.setSyncState(ctx, res.ID, res.Sync.EventID, domain.SyncSynced)
		return true, nil

	default: // cancelled
		if res.Sync.EventID == "" {
			return false, nil
		}
		return true, d.calendar.DeleteEvent(ctx, res.StudioID, res.Sync.EventID)
	}
}

func (d *Dispatcher) syncSheet(ctx context.Context, ev Event) (bool, error) {
	if d.sheet == nil || ev.Kind == EventReminder {
		return false, nil
	}
	if ev.Kind == EventCreated {
		return true, d.sheet.AppendRow(ctx, ev.Reservation)
	}
	return true, d.sheet.UpdateRow(ctx, ev.Reservation)
}

func (d *Dispatcher) setSyncState(ctx context.Context, id int64, eventID string, status domain.SyncStatus) {
	if d.store == nil {
		return
	}
	if err := d.store.UpdateSyncState(ctx, id, eventID, status); err != nil {
		logger.ErrorLogger.WithField("reservation_id", id).Errorf("updating sync state: %v", err)
	}
}

func (d *Dispatcher) recordAttempt(ctx context.Context, ev Event, tplName string, ok bool, messageID, errCode, errMsg string) {
	if d.attempts == nil {
		return
	}
	res := ev.Reservation
	rec := domain.NotificationRecord{
		ReservationID: res.ID,
		CustomerID:    res.CustomerID,
		Event:         ev.notificationEvent(),
		Channel:       domain.ChannelWhatsApp,
		Recipient:     res.Customer.Phone,
		TemplateName:  tplName,
		Status:        domain.DeliveryFailed,
		MessageID:     messageID,
		ErrorCode:     errCode,
		ErrorMessage:  errMsg,
	}
	if ok {
		now := time.Now().UTC()
		rec.Status = domain.DeliverySent
		rec.SentAt = &now
	}
	if err := d.attempts.Append(ctx, &rec); err != nil {
		logger.ErrorLogger.WithField("reservation_id", res.ID).Errorf("appending notification record: %v", err)
	}
}

type sendError struct {
	code, message string
}

func (e *sendError) Error() string {
	if e.message != "" {
		return e.code + ": " + e.message
	}
	return e.code
}

func chatError(code, message string) error {
	if code == "" {
		code = "SEND_ERROR"
	}
	return &sendError{code: code, message: message}
}
