package booking

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NewReferenceCode builds a customer-facing code like RES-20260115-4821.
// The numeric suffix comes from a fresh UUID rather than a per-day counter,
// so concurrent creates never race over sequence state. Uniqueness is
// enforced by the database index; a collision just fails the insert.
func NewReferenceCode(day time.Time) string {
	u := uuid.New()
	n := binary.BigEndian.Uint16(u[0:2]) % 10000
	return fmt.Sprintf("RES-%s-%04d", day.Format("20060102"), n)
}
