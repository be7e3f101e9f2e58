package session

import (
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// newIDSource returns a ULID generator whose IDs increase strictly even
// within one millisecond.
func newIDSource(seed time.Time) func(time.Time) string {
	var mu sync.Mutex
	entropy := ulid.Monotonic(rand.New(rand.NewSource(seed.UnixNano())), 0)
	return func(t time.Time) string {
		mu.Lock()
		defer mu.Unlock()
		return ulid.MustNew(ulid.Timestamp(t), entropy).String()
	}
}
