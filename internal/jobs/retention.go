package jobs

import (
	"context"
	"time"

	"github.com/niranjan-aware/resonance-system/internal/domain"
	"github.com/niranjan-aware/resonance-system/internal/modules/notification"
	"github.com/niranjan-aware/resonance-system/internal/pkg/logger"
)

// RetentionSource is the slice of the reservation repository the sweep uses.
type RetentionSource interface {
	FindEndedBefore(ctx context.Context, cutoff time.Time) ([]domain.Reservation, error)
	DeleteEndedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// RetentionSweeper deletes reservations older than the retention window,
// detaching their calendar events first so the calendars don't accumulate
// orphaned history.
type RetentionSweeper struct {
	reservations RetentionSource
	calendar     notification.CalendarSync
	days         int

	now func() time.Time
}

func NewRetentionSweeper(reservations RetentionSource, calendar notification.CalendarSync, days int) *RetentionSweeper {
	return &RetentionSweeper{
		reservations: reservations,
		calendar:     calendar,
		days:         days,
		now:          time.Now,
	}
}

// Sweep runs one pass. Calendar cleanup is best effort: a failed delete is
// logged and the row is removed anyway.
func (s *RetentionSweeper) Sweep(ctx context.Context) {
	cutoff := s.now().AddDate(0, 0, -s.days)

	old, err := s.reservations.FindEndedBefore(ctx, cutoff)
	if err != nil {
		logger.ErrorLogger.Errorf("retention scan failed: %v", err)
		return
	}

	if s.calendar != nil {
		for i := range old {
			res := &old[i]
			if res.Sync.EventID == "" {
				continue
			}
			if err := s.calendar.DeleteEvent(ctx, res.StudioID, res.Sync.EventID); err != nil {
				logger.ErrorLogger.WithField("reference", res.ReferenceCode).
					Errorf("detaching calendar event: %v", err)
			}
		}
	}

	deleted, err := s.reservations.DeleteEndedBefore(ctx, cutoff)
	if err != nil {
		logger.ErrorLogger.Errorf("retention delete failed: %v", err)
		return
	}
	if deleted > 0 {
		logger.InfoLogger.WithFields(map[string]any{
			"deleted": deleted,
			"cutoff":  cutoff.Format("2006-01-02"),
		}).Info("retention sweep completed")
	}
}
