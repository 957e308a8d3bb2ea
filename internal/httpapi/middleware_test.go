package httpapi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/vitrine/internal/testutil"
)

func TestIPRateLimiter_PerClient(t *testing.T) {
	clock := testutil.NewFakeClock(testNow)
	l := NewIPRateLimiter(1, 1, time.Minute)
	l.now = clock.Now

	assert.True(t, l.Allow("10.0.0.1"))
	assert.False(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.2"), "buckets are per client")

	clock.Advance(time.Second)
	assert.True(t, l.Allow("10.0.0.1"), "bucket refills")
}

func TestIPRateLimiter_Sweep(t *testing.T) {
	clock := testutil.NewFakeClock(testNow)
	l := NewIPRateLimiter(5, 5, time.Minute)
	l.now = clock.Now

	l.Allow("10.0.0.1")
	clock.Advance(45 * time.Second)
	l.Allow("10.0.0.2")
	clock.Advance(30 * time.Second)

	assert.Equal(t, 1, l.Sweep())
	assert.Equal(t, 1, l.Len())
}
