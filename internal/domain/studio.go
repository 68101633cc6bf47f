package domain

import "time"

type StudioSize string

const (
	StudioSmall  StudioSize = "small"
	StudioMedium StudioSize = "medium"
	StudioLarge  StudioSize = "large"
)

// Studio is read-only from the booking core's perspective.
type Studio struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Size        StudioSize `json:"size"`
	Capacity    int        `json:"capacity"`
	Description string     `json:"description,omitempty"`
	HourlyRate  int64      `json:"hourly_rate"`
	OpenTime    string     `json:"open_time"`
	CloseTime   string     `json:"close_time"`
	IsActive    bool       `json:"is_active"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// WithinOperatingHours reports whether the half-open [start,end) slot fits
// inside the studio's daily window.
func (s *Studio) WithinOperatingHours(start, end string) bool {
	return start >= s.OpenTime && end <= s.CloseTime
}
