package booking

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewReferenceCode(t *testing.T) {
	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	re := regexp.MustCompile(`^RES-20260314-[0-9]{4}$`)

	for i := 0; i < 50; i++ {
		code := NewReferenceCode(day)
		assert.Regexp(t, re, code)
	}
}
