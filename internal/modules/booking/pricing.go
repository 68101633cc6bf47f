package booking

import (
	"math"
	"strconv"
	"strings"

	"github.com/niranjan-aware/resonance-system/internal/domain"
)

// Quote computes the pricing snapshot for a slot: base = rate x whole hours,
// tax rounded half-up, total = base + tax always.
func Quote(hourlyRate int64, start, end string, taxRate float64) domain.Pricing {
	hours := int64(durationHours(start, end))
	base := hourlyRate * hours
	tax := int64(math.Floor(float64(base)*taxRate + 0.5))
	return domain.Pricing{
		BaseAmount:  base,
		TaxAmount:   tax,
		TotalAmount: base + tax,
	}
}

// durationHours assumes hour-aligned "HH:MM" times; validation happens
// before pricing.
func durationHours(start, end string) int {
	return slotHour(end) - slotHour(start)
}

func slotHour(hhmm string) int {
	h, _, ok := strings.Cut(hhmm, ":")
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(h)
	if err != nil {
		return 0
	}
	return n
}
