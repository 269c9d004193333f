package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/ahmad5farah/AmaKart/pkg/errors"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *clock { return &clock{t: time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC)} }

func TestLockout_LocksOnFifthFailure(t *testing.T) {
	l := NewLockout(0, 0)
	for i := 0; i < 4; i++ {
		require.NoError(t, l.Fail("ada@example.com"))
		require.NoError(t, l.Check("ada@example.com"))
	}

	err := l.Fail("ada@example.com")
	assert.Equal(t, apperrors.ReasonLocked, apperrors.AuthReason(err))
	assert.Equal(t, apperrors.ReasonLocked, apperrors.AuthReason(l.Check("ada@example.com")))
	assert.NoError(t, l.Check("bob@example.com"))
}

func TestLockout_UnlocksAfterWindow(t *testing.T) {
	c := newClock()
	l := NewLockout(5, 15*time.Minute)
	l.now = c.now

	for i := 0; i < 5; i++ {
		_ = l.Fail("k")
	}

	c.advance(14*time.Minute + 30*time.Second)
	err := l.Check("k")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Try again in 1 minutes")

	c.advance(30 * time.Second)
	assert.NoError(t, l.Check("k"))
}

func TestLockout_ResetClearsFailures(t *testing.T) {
	l := NewLockout(5, time.Minute)
	for i := 0; i < 4; i++ {
		_ = l.Fail("k")
	}
	l.Reset("k")
	for i := 0; i < 4; i++ {
		assert.NoError(t, l.Fail("k"))
	}
}

func TestResetLimiter_ThreePerWindow(t *testing.T) {
	c := newClock()
	r := NewResetLimiter(0, 0)
	r.now = c.now

	for i := 0; i < 3; i++ {
		require.NoError(t, r.Allow("visitor"))
		c.advance(time.Minute)
	}

	err := r.Allow("visitor")
	assert.Equal(t, apperrors.ReasonRateLimited, apperrors.AuthReason(err))
	assert.Contains(t, err.Error(), "wait 14 minutes")

	assert.NoError(t, r.Allow("other-visitor"))
}

func TestResetLimiter_WindowCountsFromLastAcceptedRequest(t *testing.T) {
	c := newClock()
	r := NewResetLimiter(3, 15*time.Minute)
	r.now = c.now

	for i := 0; i < 3; i++ {
		require.NoError(t, r.Allow("v"))
	}
	c.advance(15 * time.Minute)
	assert.Error(t, r.Allow("v"))

	c.advance(time.Second)
	assert.NoError(t, r.Allow("v"))
}

func TestResetLimiter_Prune(t *testing.T) {
	c := newClock()
	r := NewResetLimiter(3, time.Minute)
	r.now = c.now

	require.NoError(t, r.Allow("v"))
	c.advance(2 * time.Minute)
	r.Prune()
	assert.Empty(t, r.visitors)
}
