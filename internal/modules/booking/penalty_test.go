package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPenaltyFor(t *testing.T) {
	rules := PenaltyRules{LateCutoffHours: 24, LateAmount: 100, NoShowAmount: 300}

	cases := []struct {
		name  string
		hours float64
		want  int64
	}{
		{"well before cutoff", 72, 0},
		{"just outside cutoff", 24.01, 0},
		{"exactly at cutoff is free", 24, 0},
		{"inside cutoff", 23.99, 100},
		{"ten hours out", 10, 100},
		{"exactly at start is late", 0, 100},
		{"after start", -1, 300},
		{"long after start", -48, 300},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, rules.PenaltyFor(tc.hours))
		})
	}
}
