package signal

import (
	"sync"
	"time"

	"github.com/Parth0603/backendServer/internal/domain"
)

// MessageRateLimiter caps inbound events per connection over a sliding
// window. Shared by all read pumps, hence the lock.
type MessageRateLimiter struct {
	mu       sync.Mutex
	history  map[domain.ConnID][]time.Time
	limit    int
	interval time.Duration
}

func NewMessageRateLimiter(limit int, interval time.Duration) *MessageRateLimiter {
	return &MessageRateLimiter{
		history:  make(map[domain.ConnID][]time.Time),
		limit:    limit,
		interval: interval,
	}
}

func (rl *MessageRateLimiter) Allow(id domain.ConnID) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	windowStart := now.Add(-rl.interval)

	// 1. Take the connection's history
	attempts := rl.history[id]

	// 2. Drop attempts outside the window
	fresh := make([]time.Time, 0, len(attempts))
	for _, t := range attempts {
		if t.After(windowStart) {
			fresh = append(fresh, t)
		}
	}

	// 3. At or over the limit: block
	if len(fresh) >= rl.limit {
		rl.history[id] = fresh
		return false
	}

	// 4. Otherwise record this attempt
	fresh = append(fresh, now)
	rl.history[id] = fresh

	return true
}

// Forget drops a connection's window when it goes away.
func (rl *MessageRateLimiter) Forget(id domain.ConnID) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.history, id)
}
