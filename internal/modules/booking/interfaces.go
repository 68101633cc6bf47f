package booking

import (
	"context"
	"time"

	"github.com/niranjan-aware/resonance-system/internal/domain"
	"github.com/niranjan-aware/resonance-system/internal/modules/notification"
)

// ReservationRepository defines the persistence operations the service needs.
type ReservationRepository interface {
	Create(ctx context.Context, res *domain.Reservation) error
	GetByID(ctx context.Context, id int64) (*domain.Reservation, error)
	FindConflicting(ctx context.Context, studioID int64, date time.Time, start, end string, excludeID int64) ([]domain.Reservation, error)
	FindByPhone(ctx context.Context, phone string) ([]domain.Reservation, error)
	FindInRange(ctx context.Context, from, to time.Time, studioID int64) ([]domain.Reservation, error)
	UpdateStatus(ctx context.Context, id int64, status domain.ReservationStatus) error
	CancelWithPenalty(ctx context.Context, id int64, status domain.ReservationStatus, reason string, penalty int64, at time.Time) error
	UpdateSchedule(ctx context.Context, id int64, date time.Time, start, end string) error
}

type StudioRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Studio, error)
	ListActive(ctx context.Context) ([]domain.Studio, error)
}

type CustomerRepository interface {
	GetByPhone(ctx context.Context, phone string) (*domain.Customer, error)
	FindOrCreateByPhone(ctx context.Context, phone, name string) (*domain.Customer, error)
}

// Dispatcher fans lifecycle events out to the notification channels.
type Dispatcher interface {
	Dispatch(ctx context.Context, ev notification.Event) notification.Report
}
