// Package ratelimit paces outbound write actions: a token bucket enforces
// the configured ceiling, and a penalty level widens waits after the remote
// service signals throttling.
package ratelimit

import (
	"math/rand"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// jitterFrac is the fraction of the penalty added as random jitter so
// restarted processes do not resume in lockstep.
const jitterFrac = 0.2

// Limiter admits actions under a ceiling of K actions per interval and
// applies exponential penalty backoff after throttle signals.
type Limiter struct {
	mu sync.Mutex

	bucket *rate.Limiter

	penaltyBase time.Duration
	penaltyCap  time.Duration
	level       int
	penalty     time.Duration // current nominal penalty, monotone until a success
}

// New creates a Limiter allowing at most ceiling actions per interval.
// Invalid inputs are clamped to 1 action per 10 seconds.
func New(ceiling int, interval, penaltyBase, penaltyCap time.Duration) *Limiter {
	if ceiling < 1 {
		ceiling = 1
	}
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if penaltyBase <= 0 {
		penaltyBase = 2 * time.Second
	}
	if penaltyCap < penaltyBase {
		penaltyCap = penaltyBase
	}
	return &Limiter{
		bucket:      rate.NewLimiter(rate.Limit(float64(ceiling)/interval.Seconds()), 1),
		penaltyBase: penaltyBase,
		penaltyCap:  penaltyCap,
	}
}

// Admit reserves the next action slot and returns how long the caller must
// wait before performing it. Zero means proceed immediately; the result is
// never negative. The reservation is consumed, so callers must follow
// through with the action after waiting.
func (l *Limiter) Admit() time.Duration {
	r := l.bucket.Reserve()
	wait := r.Delay()

	l.mu.Lock()
	penalty := l.penalty
	l.mu.Unlock()

	if penalty > 0 {
		penalty += time.Duration(jitterFrac * rand.Float64() * float64(penalty))
		if penalty > wait {
			wait = penalty
		}
	}
	if wait < 0 {
		wait = 0
	}
	return wait
}

// Penalize widens the penalty applied to subsequent admissions after a
// detected soft-block. Each call doubles the nominal penalty per severity
// step, capped; without an intervening success the penalty never shrinks.
func (l *Limiter) Penalize(severity int) {
	if severity < 1 {
		severity = 1
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	l.level += severity
	shift := l.level - 1
	if shift > 30 {
		shift = 30
	}
	p := l.penaltyBase << shift
	if p > l.penaltyCap || p <= 0 {
		p = l.penaltyCap
	}
	if p > l.penalty {
		l.penalty = p
	}
}

// Observe records an action outcome. A successful action clears the penalty
// level; failures leave it in place for the next admission.
func (l *Limiter) Observe(success bool) {
	if !success {
		return
	}
	l.mu.Lock()
	l.level = 0
	l.penalty = 0
	l.mu.Unlock()
}
