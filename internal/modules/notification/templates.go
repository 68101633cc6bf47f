package notification

import (
	"fmt"
	"time"

	"github.com/niranjan-aware/resonance-system/internal/config"
	"github.com/niranjan-aware/resonance-system/internal/domain"
)

// Template bodies take positional text parameters; the builders here must
// produce them in the order the approved templates expect.

const (
	displayDateLayout = "02/01/2006"
	displayTimeLayout = "3:04 PM"
)

func displayDate(day time.Time) string {
	return day.Format(displayDateLayout)
}

func displayTime(hhmm string) string {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return hhmm
	}
	return t.Format(displayTimeLayout)
}

func rupees(amount int64) string {
	return fmt.Sprintf("₹%d", amount)
}

func studioName(res *domain.Reservation) string {
	if res.Studio != nil {
		return res.Studio.Name
	}
	return fmt.Sprintf("Studio %d", res.StudioID)
}

func customerName(res *domain.Reservation) string {
	if res.Customer != nil {
		return res.Customer.Name
	}
	return domain.GuestName
}

func confirmationMessage(tpl config.TemplateSet, res *domain.Reservation) (string, []string) {
	return tpl.Confirmation, []string{
		customerName(res),
		res.ReferenceCode,
		studioName(res),
		displayDate(res.Date),
		displayTime(res.StartTime),
		displayTime(res.EndTime),
		rupees(res.Pricing.TotalAmount),
	}
}

func reminderMessage(tpl config.TemplateSet, stage domain.ReminderStage, res *domain.Reservation) (string, []string) {
	var name string
	switch stage {
	case domain.Stage12h:
		name = tpl.Reminder12h
	case domain.Stage6h:
		name = tpl.Reminder6h
	default:
		name = tpl.Reminder3h
	}
	return name, []string{
		customerName(res),
		studioName(res),
		displayDate(res.Date),
		displayTime(res.StartTime),
	}
}

func cancellationMessage(tpl config.TemplateSet, res *domain.Reservation) (string, []string) {
	params := []string{
		customerName(res),
		res.ReferenceCode,
		studioName(res),
		displayDate(res.Date),
		displayTime(res.StartTime),
	}
	if res.Cancellation.PenaltyAmount > 0 {
		params = append(params, rupees(res.Cancellation.PenaltyAmount))
	}
	return tpl.Cancellation, params
}

func rescheduleMessage(tpl config.TemplateSet, res *domain.Reservation, prevDate time.Time, prevStart string) (string, []string) {
	return tpl.Reschedule, []string{
		customerName(res),
		res.ReferenceCode,
		displayDate(prevDate),
		displayTime(prevStart),
		displayDate(res.Date),
		displayTime(res.StartTime),
	}
}
