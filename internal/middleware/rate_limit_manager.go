package middleware

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const visitorIdleTimeout = 3 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimitManager keeps one token bucket per client address and evicts idle ones.
type RateLimitManager struct {
	limit rate.Limit
	burst int

	mu       sync.Mutex
	visitors map[string]*visitor

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRateLimitManager allows requestsPerWindow requests every windowSeconds,
// with bursts up to burst (never below requestsPerWindow). The cleanup loop
// stops when ctx is done or Shutdown is called.
func NewRateLimitManager(ctx context.Context, requestsPerWindow, windowSeconds, burst int) *RateLimitManager {
	if windowSeconds <= 0 {
		windowSeconds = 60
	}
	limit := rate.Inf
	if requestsPerWindow > 0 {
		limit = rate.Limit(float64(requestsPerWindow) / float64(windowSeconds))
	}
	if burst < requestsPerWindow {
		burst = requestsPerWindow
	}

	managerCtx, cancel := context.WithCancel(ctx)
	m := &RateLimitManager{
		limit:    limit,
		burst:    burst,
		visitors: make(map[string]*visitor),
		cancel:   cancel,
	}

	m.wg.Add(1)
	go m.cleanupLoop(managerCtx)

	return m
}

// Allow consumes a token for ip.
func (m *RateLimitManager) Allow(ip string) bool {
	if m.limit == rate.Inf {
		return true
	}

	m.mu.Lock()
	v, ok := m.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(m.limit, m.burst)}
		m.visitors[ip] = v
	}
	v.lastSeen = time.Now()
	m.mu.Unlock()

	return v.limiter.Allow()
}

func (m *RateLimitManager) cleanupLoop(ctx context.Context) {
	defer m.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.cleanup(time.Now())
		}
	}
}

func (m *RateLimitManager) cleanup(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for ip, v := range m.visitors {
		if now.Sub(v.lastSeen) > visitorIdleTimeout {
			delete(m.visitors, ip)
		}
	}
}

// Shutdown stops the cleanup goroutine and waits for it to finish.
func (m *RateLimitManager) Shutdown() error {
	m.cancel()
	m.wg.Wait()
	return nil
}
