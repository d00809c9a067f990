package service

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	guardCleanupInterval = 5 * time.Minute
	guardIdleTTL         = 30 * time.Minute
)

type guardEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// CommentGuard throttles comment submissions per user with a token bucket.
type CommentGuard struct {
	perMinute int
	now       func() time.Time

	mu          sync.Mutex
	limiters    map[uint]*guardEntry
	lastCleanup time.Time
}

// NewCommentGuard allows perMinute submissions per user. Zero or less disables throttling.
func NewCommentGuard(perMinute int) *CommentGuard {
	return &CommentGuard{
		perMinute: perMinute,
		now:       time.Now,
		limiters:  make(map[uint]*guardEntry),
	}
}

// Allow consumes one submission for the user. When the bucket is empty it
// reports how long the caller should wait.
func (g *CommentGuard) Allow(userID uint) (bool, time.Duration) {
	if g == nil || g.perMinute <= 0 {
		return true, 0
	}

	now := g.now()
	limiter := g.limiterFor(userID, now)

	reservation := limiter.ReserveN(now, 1)
	if !reservation.OK() {
		return false, time.Minute
	}
	if delay := reservation.DelayFrom(now); delay > 0 {
		reservation.CancelAt(now)
		return false, delay
	}
	return true, 0
}

func (g *CommentGuard) limiterFor(userID uint, now time.Time) *rate.Limiter {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.maybeCleanupLocked(now)

	if entry, ok := g.limiters[userID]; ok {
		entry.lastSeen = now
		return entry.limiter
	}

	limiter := rate.NewLimiter(rate.Every(time.Minute/time.Duration(g.perMinute)), g.perMinute)
	g.limiters[userID] = &guardEntry{limiter: limiter, lastSeen: now}
	return limiter
}

func (g *CommentGuard) maybeCleanupLocked(now time.Time) {
	if now.Sub(g.lastCleanup) < guardCleanupInterval {
		return
	}

	cutoff := now.Add(-guardIdleTTL)
	for userID, entry := range g.limiters {
		if entry.lastSeen.Before(cutoff) {
			delete(g.limiters, userID)
		}
	}
	g.lastCleanup = now
}
