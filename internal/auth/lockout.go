package auth

import (
	"fmt"
	"math"
	"sync"
	"time"

	apperrors "github.com/ahmad5farah/AmaKart/pkg/errors"
)

// Sign-in lockout defaults.
const (
	DefaultMaxSignInAttempts = 5
	DefaultLockoutDuration   = 15 * time.Minute
)

type lockState struct {
	failures    int
	lockedUntil time.Time
}

// Lockout locks an account after consecutive failed sign-ins. It is safe for
// concurrent use.
type Lockout struct {
	mu          sync.Mutex
	accounts    map[string]*lockState
	maxAttempts int
	duration    time.Duration
	now         func() time.Time
}

// NewLockout creates a lockout tracker. Non-positive arguments use the
// defaults.
func NewLockout(maxAttempts int, duration time.Duration) *Lockout {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxSignInAttempts
	}
	if duration <= 0 {
		duration = DefaultLockoutDuration
	}
	return &Lockout{
		accounts:    make(map[string]*lockState),
		maxAttempts: maxAttempts,
		duration:    duration,
		now:         time.Now,
	}
}

// Check fails with a locked AuthError while key is locked.
func (l *Lockout) Check(key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	st, ok := l.accounts[key]
	if !ok || st.lockedUntil.IsZero() {
		return nil
	}
	now := l.now()
	if !now.Before(st.lockedUntil) {
		delete(l.accounts, key)
		return nil
	}
	return apperrors.AuthError(apperrors.ReasonLocked,
		fmt.Sprintf("Too many failed attempts. Try again in %d minutes.", minutesUntil(now, st.lockedUntil)))
}

// Fail records a failed attempt. The attempt that reaches the limit locks
// the account and returns the locked error; earlier ones return nil.
func (l *Lockout) Fail(key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	st, ok := l.accounts[key]
	if !ok {
		st = &lockState{}
		l.accounts[key] = st
	}
	st.failures++
	if st.failures < l.maxAttempts {
		return nil
	}
	st.failures = 0
	st.lockedUntil = l.now().Add(l.duration)
	return apperrors.AuthError(apperrors.ReasonLocked,
		fmt.Sprintf("Account temporarily locked due to too many failed attempts. Try again in %d minutes.",
			int(l.duration.Minutes())))
}

// Reset clears the failures and any lock for key.
func (l *Lockout) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.accounts, key)
}

func minutesUntil(now, until time.Time) int {
	return int(math.Ceil(until.Sub(now).Minutes()))
}
