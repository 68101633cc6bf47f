package domain

import "time"

type ReservationStatus string

const (
	ReservationConfirmed ReservationStatus = "confirmed"
	ReservationCancelled ReservationStatus = "cancelled"
	ReservationCompleted ReservationStatus = "completed"
	ReservationNoShow    ReservationStatus = "no-show"
)

type SessionKind string

const (
	SessionKaraoke        SessionKind = "karaoke"
	SessionLiveMusicians  SessionKind = "live-musicians"
	SessionBand           SessionKind = "band"
	SessionAudioRecording SessionKind = "audio-recording"
	SessionVideoRecording SessionKind = "video-recording"
	SessionFBLive         SessionKind = "fb-live"
	SessionShow           SessionKind = "show"
)

func (k SessionKind) Valid() bool {
	switch k {
	case SessionKaraoke, SessionLiveMusicians, SessionBand,
		SessionAudioRecording, SessionVideoRecording, SessionFBLive, SessionShow:
		return true
	}
	return false
}

type SyncStatus string

const (
	SyncPending SyncStatus = "pending"
	SyncSynced  SyncStatus = "synced"
	SyncFailed  SyncStatus = "failed"
)

// ReminderStage is one of the pre-session reminder windows.
type ReminderStage string

const (
	Stage12h ReminderStage = "12h"
	Stage6h  ReminderStage = "6h"
	Stage3h  ReminderStage = "3h"
)

var ReminderStages = []ReminderStage{Stage12h, Stage6h, Stage3h}

// Offset is how long before session start the stage fires.
func (s ReminderStage) Offset() time.Duration {
	switch s {
	case Stage12h:
		return 12 * time.Hour
	case Stage6h:
		return 6 * time.Hour
	default:
		return 3 * time.Hour
	}
}

type SessionDetails struct {
	Participants        int    `json:"participants,omitempty"`
	Musicians           int    `json:"musicians,omitempty"`
	SpecialRequirements string `json:"special_requirements,omitempty"`
}

// Pricing is the snapshot computed at creation. Amounts are whole currency
// units; Total is always Base + Tax.
type Pricing struct {
	BaseAmount  int64 `json:"base_amount"`
	TaxAmount   int64 `json:"tax_amount"`
	TotalAmount int64 `json:"total_amount"`
}

type NotificationFlags struct {
	ConfirmationSent bool `json:"confirmation_sent"`
	Reminder12hSent  bool `json:"reminder_12h_sent"`
	Reminder6hSent   bool `json:"reminder_6h_sent"`
	Reminder3hSent   bool `json:"reminder_3h_sent"`
}

func (f NotificationFlags) ReminderSent(stage ReminderStage) bool {
	switch stage {
	case Stage12h:
		return f.Reminder12hSent
	case Stage6h:
		return f.Reminder6hSent
	default:
		return f.Reminder3hSent
	}
}

type Cancellation struct {
	Reason        string     `json:"reason,omitempty"`
	CancelledAt   *time.Time `json:"cancelled_at,omitempty"`
	PenaltyAmount int64      `json:"penalty_amount"`
}

type CalendarSync struct {
	EventID      string     `json:"calendar_event_id,omitempty"`
	Status       SyncStatus `json:"sync_status"`
	LastSyncedAt *time.Time `json:"last_synced_at,omitempty"`
}

// Reservation is a booked studio session. Date is the calendar day at
// midnight in the business timezone; StartTime/EndTime are zero-padded
// "HH:MM" strings forming a half-open hour-aligned interval.
type Reservation struct {
	ID            int64             `json:"id"`
	ReferenceCode string            `json:"reference_code"`
	StudioID      int64             `json:"studio_id"`
	CustomerID    int64             `json:"customer_id"`
	Date          time.Time         `json:"date"`
	StartTime     string            `json:"start_time"`
	EndTime       string            `json:"end_time"`
	SessionKind   SessionKind       `json:"session_kind"`
	Details       SessionDetails    `json:"session_details"`
	Pricing       Pricing           `json:"pricing"`
	Status        ReservationStatus `json:"status"`
	Notifications NotificationFlags `json:"notifications"`
	Cancellation  Cancellation      `json:"cancellation,omitempty"`
	Sync          CalendarSync      `json:"google_sync"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`

	Customer *Customer `json:"customer,omitempty"`
	Studio   *Studio   `json:"studio,omitempty"`
}

// StartsAt combines Date and StartTime in the given business timezone.
func (r *Reservation) StartsAt(loc *time.Location) time.Time {
	return combine(r.Date, r.StartTime, loc)
}

func (r *Reservation) EndsAt(loc *time.Location) time.Time {
	return combine(r.Date, r.EndTime, loc)
}

func combine(day time.Time, hhmm string, loc *time.Location) time.Time {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return time.Time{}
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, loc)
}

// SlotsOverlap reports whether two half-open "HH:MM" intervals intersect.
// Zero-padded times compare correctly as strings.
func SlotsOverlap(aStart, aEnd, bStart, bEnd string) bool {
	return aStart < bEnd && bStart < aEnd
}
