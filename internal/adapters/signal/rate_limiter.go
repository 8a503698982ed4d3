package signal

import (
	"sync"
	"time"

	"github.com/dkeye/estimate/internal/core"
	"golang.org/x/time/rate"
)

// RateLimiter gives every connection its own budget of limit events per interval.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[core.SessionID]*rate.Limiter
	limit    int
	interval time.Duration
}

func NewRateLimiter(limit int, interval time.Duration) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[core.SessionID]*rate.Limiter),
		limit:    limit,
		interval: interval,
	}
}

// Allow reports whether sid may send one more event now. A non-positive
// limit disables limiting.
func (rl *RateLimiter) Allow(sid core.SessionID) bool {
	if rl.limit <= 0 || rl.interval <= 0 {
		return true
	}
	rl.mu.Lock()
	l, ok := rl.limiters[sid]
	if !ok {
		l = rate.NewLimiter(rate.Every(rl.interval/time.Duration(rl.limit)), rl.limit)
		rl.limiters[sid] = l
	}
	rl.mu.Unlock()
	return l.Allow()
}

func (rl *RateLimiter) Forget(sid core.SessionID) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.limiters, sid)
}

func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.limiters)
}
