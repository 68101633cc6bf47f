package booking

// PenaltyRules are the cancellation penalty tiers, loaded from config.
type PenaltyRules struct {
	// LateCutoffHours is the free-cancellation boundary before session start.
	LateCutoffHours float64
	// LateAmount applies when cancelling inside the cutoff but before start.
	LateAmount int64
	// NoShowAmount applies when cancelling after start, and to admin no-show
	// marks.
	NoShowAmount int64
}

// PenaltyFor returns the penalty owed for cancelling hoursUntilStart hours
// before the session. Exactly at the cutoff is still free; exactly at start
// is late.
func (r PenaltyRules) PenaltyFor(hoursUntilStart float64) int64 {
	switch {
	case hoursUntilStart >= r.LateCutoffHours:
		return 0
	case hoursUntilStart >= 0:
		return r.LateAmount
	default:
		return r.NoShowAmount
	}
}
