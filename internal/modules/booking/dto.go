package booking

import (
	"github.com/niranjan-aware/resonance-system/internal/domain"
)

type CreateReservationRequest struct {
	StudioID    int64                 `json:"studio_id" binding:"required"`
	Date        string                `json:"date" binding:"required"`
	StartTime   string                `json:"start_time" binding:"required"`
	EndTime     string                `json:"end_time" binding:"required"`
	SessionKind domain.SessionKind    `json:"session_kind" binding:"required"`
	Details     domain.SessionDetails `json:"session_details"`
	Phone       string                `json:"phone" binding:"required"`
	Name        string                `json:"name"`
}

type ByPhoneRequest struct {
	Phone  string `json:"phone" binding:"required"`
	Filter string `json:"filter"` // "upcoming", "past" or "" for all
}

type AvailabilityRequest struct {
	StudioID  int64  `json:"studio_id" binding:"required"`
	Date      string `json:"date" binding:"required"`
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
}

type CancelRequest struct {
	Phone  string `json:"phone" binding:"required"`
	Reason string `json:"reason"`
}

type RescheduleRequest struct {
	Phone     string `json:"phone" binding:"required"`
	Date      string `json:"date" binding:"required"`
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
}

type TimetableStudio struct {
	ID   int64             `json:"id"`
	Name string            `json:"name"`
	Size domain.StudioSize `json:"size"`
}

type TimetableEntry struct {
	ID         int64  `json:"id"`
	StudioID   int64  `json:"studio_id"`
	StudioName string `json:"studio_name"`
	Date       string `json:"date"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	Status     string `json:"status"`
}

type Timetable struct {
	StartDate string            `json:"start_date"`
	EndDate   string            `json:"end_date"`
	Studios   []TimetableStudio `json:"studios"`
	TimeSlots []string          `json:"time_slots"`
	Entries   []TimetableEntry  `json:"bookings"`
}
