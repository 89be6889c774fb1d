package security

import (
	"sync"
	"time"

	"github.com/orgdesk/orgdesk-server/internal/model"
)

// LoginLimiter tracks failed login attempts per source IP and blocks
// further attempts once a threshold is reached inside a sliding window.
// State is in-memory and process-local; it is a transient protection
// layer, not an audit record, and is lost on restart.
type LoginLimiter struct {
	mu        sync.Mutex
	attempts  map[string]attempt
	threshold int
	window    time.Duration
	clock     model.Clock
}

type attempt struct {
	count int
	last  time.Time
}

// NewLoginLimiter creates a limiter blocking after threshold failures
// within window.
func NewLoginLimiter(threshold int, window time.Duration, clock model.Clock) *LoginLimiter {
	return &LoginLimiter{
		attempts:  make(map[string]attempt),
		threshold: threshold,
		window:    window,
		clock:     clock,
	}
}

// Allowed reports whether the IP may attempt a login. When blocked, the
// second return value is the duration until the window reopens, suitable
// for a Retry-After header. Stale entries expire lazily at read time;
// there is no background sweep.
func (l *LoginLimiter) Allowed(sourceIP string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	a, ok := l.attempts[sourceIP]
	if !ok {
		return true, 0
	}

	now := l.clock.Now()
	if now.Sub(a.last) >= l.window {
		delete(l.attempts, sourceIP)
		return true, 0
	}
	if a.count < l.threshold {
		return true, 0
	}
	return false, l.window - now.Sub(a.last)
}

// RecordFailure bumps the counter for the IP. A failure after the window
// elapsed starts a fresh count.
func (l *LoginLimiter) RecordFailure(sourceIP string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	a, ok := l.attempts[sourceIP]
	if !ok || now.Sub(a.last) >= l.window {
		l.attempts[sourceIP] = attempt{count: 1, last: now}
		return
	}
	a.count++
	a.last = now
	l.attempts[sourceIP] = a
}

// Clear resets the counter for the IP, called on successful login.
func (l *LoginLimiter) Clear(sourceIP string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.attempts, sourceIP)
}
