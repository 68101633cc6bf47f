package booking

import (
	"fmt"
	"hash/fnv"
	"sync"
	"time"
)

const lockStripes = 64

// slotLocks serializes booking attempts per (studio, day) so availability
// check and insert act as one step within this process. The database-level
// re-check inside the insert transaction covers multi-instance deployments.
type slotLocks struct {
	stripes [lockStripes]sync.Mutex
}

func (l *slotLocks) lock(studioID int64, day time.Time) *sync.Mutex {
	h := fnv.New32a()
	fmt.Fprintf(h, "%d|%s", studioID, day.Format("2006-01-02"))
	mu := &l.stripes[h.Sum32()%lockStripes]
	mu.Lock()
	return mu
}
