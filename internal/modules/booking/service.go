package booking

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/niranjan-aware/resonance-system/internal/domain"
	"github.com/niranjan-aware/resonance-system/internal/modules/notification"
	"github.com/niranjan-aware/resonance-system/internal/pkg/logger"
	"github.com/niranjan-aware/resonance-system/internal/pkg/metrics"
	"github.com/niranjan-aware/resonance-system/internal/repository"
)

const dateLayout = "2006-01-02"

var (
	phoneRe = regexp.MustCompile(`^[0-9]{10}$`)
	// Slots are hour-aligned; minutes other than :00 are rejected.
	slotTimeRe = regexp.MustCompile(`^([01][0-9]|2[0-3]):00$`)
)

type Service struct {
	reservations ReservationRepository
	studios      StudioRepository
	customers    CustomerRepository
	dispatcher   Dispatcher

	loc     *time.Location
	taxRate float64
	rules   PenaltyRules
	locks   slotLocks

	now func() time.Time
}

func NewService(
	reservations ReservationRepository,
	studios StudioRepository,
	customers CustomerRepository,
	dispatcher Dispatcher,
	loc *time.Location,
	taxRate float64,
	rules PenaltyRules,
) *Service {
	return &Service{
		reservations: reservations,
		studios:      studios,
		customers:    customers,
		dispatcher:   dispatcher,
		loc:          loc,
		taxRate:      taxRate,
		rules:        rules,
		now:          time.Now,
	}
}

// Create books a slot. The per-(studio,day) lock makes the availability
// check and the insert atomic within this process; the repository re-checks
// inside its transaction for everyone else.
func (s *Service) Create(ctx context.Context, req CreateReservationRequest) (*domain.Reservation, error) {
	if !phoneRe.MatchString(req.Phone) {
		return nil, ErrValidation
	}
	day, err := s.parseDate(req.Date)
	if err != nil {
		return nil, ErrValidation
	}
	if err := validateSlot(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}
	if !req.SessionKind.Valid() {
		return nil, ErrValidation
	}

	studio, err := s.studios.GetByID(ctx, req.StudioID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrStudioNotFound
		}
		return nil, err
	}
	if !studio.IsActive {
		return nil, ErrStudioNotFound
	}
	if !studio.WithinOperatingHours(req.StartTime, req.EndTime) {
		return nil, ErrValidation
	}

	res := &domain.Reservation{
		StudioID:    req.StudioID,
		Date:        day,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		SessionKind: req.SessionKind,
		Details:     req.Details,
		Status:      domain.ReservationConfirmed,
		Sync:        domain.CalendarSync{Status: domain.SyncPending},
	}
	if !res.StartsAt(s.loc).After(s.now()) {
		return nil, ErrValidation
	}

	customer, err := s.customers.FindOrCreateByPhone(ctx, req.Phone, req.Name)
	if err != nil {
		return nil, err
	}
	res.CustomerID = customer.ID
	res.Pricing = Quote(studio.HourlyRate, req.StartTime, req.EndTime, s.taxRate)

	mu := s.locks.lock(req.StudioID, day)
	defer mu.Unlock()

	conflicts, err := s.reservations.FindConflicting(ctx, req.StudioID, day, req.StartTime, req.EndTime, 0)
	if err != nil {
		return nil, err
	}
	if len(conflicts) > 0 {
		metrics.SlotConflicts.Inc()
		return nil, ErrSlotConflict
	}

	if err := s.insertWithFreshCode(ctx, res, day); err != nil {
		return nil, err
	}
	metrics.ReservationsCreated.Inc()

	res.Customer = customer
	res.Studio = studio

	logger.InfoLogger.WithFields(map[string]any{
		"reference": res.ReferenceCode,
		"studio_id": res.StudioID,
		"date":      req.Date,
		"slot":      req.StartTime + "-" + req.EndTime,
		"total":     res.Pricing.TotalAmount,
	}).Info("reservation created")

	report := s.dispatcher.Dispatch(ctx, notification.Event{
		Kind:        notification.EventCreated,
		Reservation: res,
	})
	res.Notifications.ConfirmationSent = report.Chat.Success

	return res, nil
}

// insertWithFreshCode retries on a reference-code collision. The repository
// maps both an occupied slot and a duplicate code to ErrConflict, so the
// slot is re-checked to tell them apart.
func (s *Service) insertWithFreshCode(ctx context.Context, res *domain.Reservation, day time.Time) error {
	for attempt := 0; attempt < 3; attempt++ {
		res.ReferenceCode = NewReferenceCode(day)
		err := s.reservations.Create(ctx, res)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repository.ErrConflict) {
			return err
		}
		conflicts, cerr := s.reservations.FindConflicting(ctx, res.StudioID, day, res.StartTime, res.EndTime, 0)
		if cerr != nil {
			return cerr
		}
		if len(conflicts) > 0 {
			metrics.SlotConflicts.Inc()
			return ErrSlotConflict
		}
	}
	return repository.ErrConflict
}

// IsSlotAvailable reports whether the half-open slot is free.
func (s *Service) IsSlotAvailable(ctx context.Context, studioID int64, date, start, end string) (bool, error) {
	day, err := s.parseDate(date)
	if err != nil {
		return false, ErrValidation
	}
	if err := validateSlot(start, end); err != nil {
		return false, err
	}
	conflicts, err := s.reservations.FindConflicting(ctx, studioID, day, start, end, 0)
	if err != nil {
		return false, err
	}
	return len(conflicts) == 0, nil
}

// ListByPhone returns the customer's reservations, newest first. An unknown
// phone is an empty list, not an error.
func (s *Service) ListByPhone(ctx context.Context, phone, filter string) ([]domain.Reservation, string, error) {
	if !phoneRe.MatchString(phone) {
		return nil, "", ErrValidation
	}
	customer, err := s.customers.GetByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return []domain.Reservation{}, "", nil
		}
		return nil, "", err
	}

	all, err := s.reservations.FindByPhone(ctx, phone)
	if err != nil {
		return nil, "", err
	}

	today := s.startOfToday()
	out := make([]domain.Reservation, 0, len(all))
	for _, r := range all {
		switch filter {
		case "upcoming":
			if r.Date.Before(today) || r.Status == domain.ReservationCancelled {
				continue
			}
		case "past":
			if !r.Date.Before(today) {
				continue
			}
		}
		out = append(out, r)
	}
	return out, customer.Name, nil
}

// Cancel cancels the reservation after verifying the caller's phone, tiering
// the penalty by how close to the session start the cancellation lands.
func (s *Service) Cancel(ctx context.Context, id int64, phone, reason string) (*domain.Reservation, error) {
	res, err := s.getOwned(ctx, id, phone)
	if err != nil {
		return nil, err
	}
	switch res.Status {
	case domain.ReservationCancelled:
		return nil, ErrAlreadyCancelled
	case domain.ReservationCompleted, domain.ReservationNoShow:
		return nil, ErrInvalidTransition
	}

	now := s.now()
	hoursUntil := res.StartsAt(s.loc).Sub(now).Hours()
	penalty := s.rules.PenaltyFor(hoursUntil)
	if reason == "" {
		reason = "User cancelled"
	}

	if err := s.reservations.CancelWithPenalty(ctx, id, domain.ReservationCancelled, reason, penalty, now); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	res.Status = domain.ReservationCancelled
	res.Cancellation = domain.Cancellation{
		Reason:        reason,
		CancelledAt:   &now,
		PenaltyAmount: penalty,
	}

	logger.InfoLogger.WithFields(map[string]any{
		"reference": res.ReferenceCode,
		"penalty":   penalty,
	}).Info("reservation cancelled")

	s.dispatcher.Dispatch(ctx, notification.Event{
		Kind:        notification.EventCancelled,
		Reservation: res,
	})
	return res, nil
}

// Reschedule moves a confirmed reservation to a new slot of the same
// duration. The pricing snapshot is immutable, which is why the duration
// must not change. All reminder flags reset so the new slot gets its own
// reminders.
func (s *Service) Reschedule(ctx context.Context, id int64, req RescheduleRequest) (*domain.Reservation, error) {
	res, err := s.getOwned(ctx, id, req.Phone)
	if err != nil {
		return nil, err
	}
	switch res.Status {
	case domain.ReservationCancelled:
		return nil, ErrAlreadyCancelled
	case domain.ReservationCompleted, domain.ReservationNoShow:
		return nil, ErrInvalidTransition
	}

	day, err := s.parseDate(req.Date)
	if err != nil {
		return nil, ErrValidation
	}
	if err := validateSlot(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}
	if durationHours(req.StartTime, req.EndTime) != durationHours(res.StartTime, res.EndTime) {
		return nil, ErrValidation
	}
	if res.Studio != nil && !res.Studio.WithinOperatingHours(req.StartTime, req.EndTime) {
		return nil, ErrValidation
	}

	prevDate, prevStart := res.Date, res.StartTime
	res.Date = day
	res.StartTime = req.StartTime
	res.EndTime = req.EndTime
	if !res.StartsAt(s.loc).After(s.now()) {
		return nil, ErrValidation
	}

	mu := s.locks.lock(res.StudioID, day)
	defer mu.Unlock()

	conflicts, err := s.reservations.FindConflicting(ctx, res.StudioID, day, req.StartTime, req.EndTime, id)
	if err != nil {
		return nil, err
	}
	if len(conflicts) > 0 {
		metrics.SlotConflicts.Inc()
		return nil, ErrSlotConflict
	}

	if err := s.reservations.UpdateSchedule(ctx, id, day, req.StartTime, req.EndTime); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	res.Notifications.Reminder12hSent = false
	res.Notifications.Reminder6hSent = false
	res.Notifications.Reminder3hSent = false

	logger.InfoLogger.WithFields(map[string]any{
		"reference": res.ReferenceCode,
		"from":      prevDate.Format(dateLayout) + " " + prevStart,
		"to":        req.Date + " " + req.StartTime,
	}).Info("reservation rescheduled")

	s.dispatcher.Dispatch(ctx, notification.Event{
		Kind:        notification.EventRescheduled,
		Reservation: res,
		PrevDate:    prevDate,
		PrevStart:   prevStart,
	})
	return res, nil
}

// Complete marks a confirmed session as held. Admin only.
func (s *Service) Complete(ctx context.Context, id int64) (*domain.Reservation, error) {
	res, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if res.Status != domain.ReservationConfirmed {
		return nil, ErrInvalidTransition
	}
	if err := s.reservations.UpdateStatus(ctx, id, domain.ReservationCompleted); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	res.Status = domain.ReservationCompleted
	return res, nil
}

// MarkNoShow flags a confirmed reservation whose customer never arrived and
// applies the fixed no-show penalty. Admin only.
func (s *Service) MarkNoShow(ctx context.Context, id int64) (*domain.Reservation, error) {
	res, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if res.Status != domain.ReservationConfirmed {
		return nil, ErrInvalidTransition
	}

	now := s.now()
	penalty := s.rules.NoShowAmount
	if err := s.reservations.CancelWithPenalty(ctx, id, domain.ReservationNoShow, "No show", penalty, now); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	res.Status = domain.ReservationNoShow
	res.Cancellation = domain.Cancellation{
		Reason:        "No show",
		CancelledAt:   &now,
		PenaltyAmount: penalty,
	}
	return res, nil
}

// Timetable returns the occupied slots for the date range, plus the active
// studios and the bookable hourly grid.
func (s *Service) Timetable(ctx context.Context, startDate, endDate string, studioID int64) (*Timetable, error) {
	from, err := s.parseDate(startDate)
	if err != nil {
		return nil, ErrValidation
	}
	to, err := s.parseDate(endDate)
	if err != nil || to.Before(from) {
		return nil, ErrValidation
	}

	reservations, err := s.reservations.FindInRange(ctx, from, to, studioID)
	if err != nil {
		return nil, err
	}
	studios, err := s.studios.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	tt := &Timetable{
		StartDate: startDate,
		EndDate:   endDate,
		TimeSlots: hourlyGrid(8, 22),
		Studios:   make([]TimetableStudio, 0, len(studios)),
		Entries:   make([]TimetableEntry, 0, len(reservations)),
	}
	names := make(map[int64]string, len(studios))
	for _, st := range studios {
		names[st.ID] = st.Name
		tt.Studios = append(tt.Studios, TimetableStudio{ID: st.ID, Name: st.Name, Size: st.Size})
	}
	for _, r := range reservations {
		if r.Status == domain.ReservationCancelled {
			continue
		}
		tt.Entries = append(tt.Entries, TimetableEntry{
			ID:         r.ID,
			StudioID:   r.StudioID,
			StudioName: names[r.StudioID],
			Date:       r.Date.Format(dateLayout),
			StartTime:  r.StartTime,
			EndTime:    r.EndTime,
			Status:     string(r.Status),
		})
	}
	return tt, nil
}

func (s *Service) get(ctx context.Context, id int64) (*domain.Reservation, error) {
	res, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return res, nil
}

func (s *Service) getOwned(ctx context.Context, id int64, phone string) (*domain.Reservation, error) {
	if !phoneRe.MatchString(phone) {
		return nil, ErrValidation
	}
	res, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if res.Customer == nil || res.Customer.Phone != phone {
		return nil, ErrPhoneMismatch
	}
	return res, nil
}

func (s *Service) parseDate(raw string) (time.Time, error) {
	return time.ParseInLocation(dateLayout, raw, s.loc)
}

func (s *Service) startOfToday() time.Time {
	now := s.now().In(s.loc)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
}

// validateSlot enforces hour-aligned "HH:MM" times forming a non-empty
// half-open interval.
func validateSlot(start, end string) error {
	if !slotTimeRe.MatchString(start) || !slotTimeRe.MatchString(end) {
		return ErrValidation
	}
	if start >= end {
		return ErrValidation
	}
	return nil
}

func hourlyGrid(fromHour, toHour int) []string {
	out := make([]string, 0, toHour-fromHour)
	for h := fromHour; h < toHour; h++ {
		out = append(out, fmt.Sprintf("%02d:00", h))
	}
	return out
}
