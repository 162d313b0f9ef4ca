package app

import (
	"sync"
	"time"

	"github.com/nvoss/codeshare/internal/core"
)

// JoinLimiter caps how often one connection may issue join attempts
// inside a sliding window. Over-limit joins are dropped silently like
// any other malformed event.
type JoinLimiter struct {
	mu       sync.Mutex
	history  map[core.ConnID][]time.Time
	limit    int
	interval time.Duration
}

func NewJoinLimiter(limit int, interval time.Duration) *JoinLimiter {
	return &JoinLimiter{
		history:  make(map[core.ConnID][]time.Time),
		limit:    limit,
		interval: interval,
	}
}

func (l *JoinLimiter) Allow(id core.ConnID) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	windowStart := now.Add(-l.interval)

	attempts := l.history[id]
	fresh := make([]time.Time, 0, len(attempts))
	for _, t := range attempts {
		if t.After(windowStart) {
			fresh = append(fresh, t)
		}
	}

	if len(fresh) >= l.limit {
		l.history[id] = fresh
		return false
	}

	fresh = append(fresh, now)
	l.history[id] = fresh
	return true
}

// Forget drops the window for a disconnected connection.
func (l *JoinLimiter) Forget(id core.ConnID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.history, id)
}
