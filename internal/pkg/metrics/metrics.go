package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// NotificationAttempts counts every channel call made by the dispatcher.
	NotificationAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "resonance",
		Name:      "notification_attempts_total",
		Help:      "Dispatcher channel calls by event, channel and outcome.",
	}, []string{"event", "channel", "status"})

	// ReminderCandidates counts reservations matched by a scan stage.
	ReminderCandidates = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "resonance",
		Name:      "reminder_candidates_total",
		Help:      "Reservations entering a reminder window per stage.",
	}, []string{"stage"})

	// RemindersSent counts successfully delivered and flagged reminders.
	RemindersSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "resonance",
		Name:      "reminders_sent_total",
		Help:      "Reminders delivered and flagged per stage.",
	}, []string{"stage"})

	// ReservationsCreated counts confirmed reservations.
	ReservationsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "resonance",
		Name:      "reservations_created_total",
		Help:      "Reservations successfully created.",
	})

	// SlotConflicts counts booking attempts rejected on overlap.
	SlotConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "resonance",
		Name:      "slot_conflicts_total",
		Help:      "Booking attempts rejected because the slot was taken.",
	})
)
