package reminder

import (
	"context"
	"sync"
	"time"

	"github.com/niranjan-aware/resonance-system/internal/domain"
	"github.com/niranjan-aware/resonance-system/internal/modules/notification"
	"github.com/niranjan-aware/resonance-system/internal/pkg/logger"
	"github.com/niranjan-aware/resonance-system/internal/pkg/metrics"
)

// ReservationSource is the slice of the reservation repository the scanner
// reads and claims from.
type ReservationSource interface {
	FindReminderCandidates(ctx context.Context, stage domain.ReminderStage, from, to time.Time) ([]domain.Reservation, error)
	MarkReminderSent(ctx context.Context, id int64, stage domain.ReminderStage) (claimed bool, err error)
}

type Dispatcher interface {
	Dispatch(ctx context.Context, ev notification.Event) notification.Report
}

// Scanner finds confirmed reservations entering a reminder window and sends
// the stage's WhatsApp reminder once per stage per reservation.
type Scanner struct {
	reservations ReservationSource
	dispatcher   Dispatcher
	loc          *time.Location
	tolerance    time.Duration

	now func() time.Time
}

func NewScanner(reservations ReservationSource, dispatcher Dispatcher, loc *time.Location, tolerance time.Duration) *Scanner {
	return &Scanner{
		reservations: reservations,
		dispatcher:   dispatcher,
		loc:          loc,
		tolerance:    tolerance,
		now:          time.Now,
	}
}

// Run scans all three stages concurrently. A failing stage never blocks the
// others; errors are logged and the next tick retries.
func (s *Scanner) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for _, stage := range domain.ReminderStages {
		wg.Add(1)
		go func(stage domain.ReminderStage) {
			defer wg.Done()
			s.runStage(ctx, stage)
		}(stage)
	}
	wg.Wait()
}

// runStage processes one stage: candidates are pre-filtered by date in SQL,
// refined by exact time-to-start here, then claimed before sending. The
// conditional claim means two overlapping scans never double-send.
func (s *Scanner) runStage(ctx context.Context, stage domain.ReminderStage) {
	now := s.now()
	winStart := now.Add(stage.Offset() - s.tolerance)
	winEnd := now.Add(stage.Offset() + s.tolerance)

	candidates, err := s.reservations.FindReminderCandidates(ctx, stage, winStart.In(s.loc), winEnd.In(s.loc))
	if err != nil {
		logger.ErrorLogger.WithField("stage", string(stage)).Errorf("reminder scan failed: %v", err)
		return
	}

	for i := range candidates {
		res := &candidates[i]
		startsAt := res.StartsAt(s.loc)
		if startsAt.Before(winStart) || startsAt.After(winEnd) {
			continue
		}
		metrics.ReminderCandidates.WithLabelValues(string(stage)).Inc()

		claimed, err := s.reservations.MarkReminderSent(ctx, res.ID, stage)
		if err != nil {
			logger.ErrorLogger.WithFields(map[string]any{
				"stage":     string(stage),
				"reference": res.ReferenceCode,
			}).Errorf("claiming reminder: %v", err)
			continue
		}
		if !claimed {
			continue
		}

		report := s.dispatcher.Dispatch(ctx, notification.Event{
			Kind:        notification.EventReminder,
			Stage:       stage,
			Reservation: res,
		})
		if report.Chat.Attempted && !report.Chat.Success {
			// Flag stays set; the customer gets the next stage instead of a
			// duplicate of this one.
			logger.ErrorLogger.WithFields(map[string]any{
				"stage":     string(stage),
				"reference": res.ReferenceCode,
			}).Error("reminder send failed after claim")
			continue
		}
		metrics.RemindersSent.WithLabelValues(string(stage)).Inc()

		logger.InfoLogger.WithFields(map[string]any{
			"stage":     string(stage),
			"reference": res.ReferenceCode,
			"starts_at": startsAt.Format(time.RFC3339),
		}).Info("reminder sent")
	}
}
