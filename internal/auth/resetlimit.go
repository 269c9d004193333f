package auth

import (
	"fmt"
	"sync"
	"time"

	apperrors "github.com/ahmad5farah/AmaKart/pkg/errors"
)

// Password reset request limits.
const (
	DefaultMaxResetRequests = 3
	DefaultResetWindow      = 15 * time.Minute
)

type resetState struct {
	count int
	last  time.Time
}

// ResetLimiter caps password reset requests per visitor. The count starts
// over once a full window has passed since the last accepted request.
type ResetLimiter struct {
	mu       sync.Mutex
	visitors map[string]*resetState
	max      int
	window   time.Duration
	now      func() time.Time
}

// NewResetLimiter creates a limiter. Non-positive arguments use the
// defaults.
func NewResetLimiter(max int, window time.Duration) *ResetLimiter {
	if max <= 0 {
		max = DefaultMaxResetRequests
	}
	if window <= 0 {
		window = DefaultResetWindow
	}
	return &ResetLimiter{
		visitors: make(map[string]*resetState),
		max:      max,
		window:   window,
		now:      time.Now,
	}
}

// Allow records a request for key, or fails with a rate_limited AuthError
// when the limit is reached.
func (r *ResetLimiter) Allow(key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	st, ok := r.visitors[key]
	if !ok {
		st = &resetState{}
		r.visitors[key] = st
	}
	if now.Sub(st.last) > r.window {
		st.count = 0
	}
	if st.count >= r.max {
		return apperrors.AuthError(apperrors.ReasonRateLimited,
			fmt.Sprintf("Too many reset attempts. Please wait %d minutes before trying again.",
				minutesUntil(now, st.last.Add(r.window))))
	}
	st.count++
	st.last = now
	return nil
}

// Prune forgets visitors whose window has passed.
func (r *ResetLimiter) Prune() {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	for key, st := range r.visitors {
		if now.Sub(st.last) > r.window {
			delete(r.visitors, key)
		}
	}
}
