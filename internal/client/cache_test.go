package client

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/vitrine/internal/testutil"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func TestCache_LiveEntryExpires(t *testing.T) {
	clock := testutil.NewFakeClock(testNow)
	c := NewCache(5*time.Minute, 3, clock.Now)
	k := Key{Method: "GET", URL: "http://x/api/products"}

	c.Put(k, "page", false)
	v, fb, ok := c.Get(k)
	require.True(t, ok)
	assert.Equal(t, "page", v)
	assert.False(t, fb)

	clock.Advance(5 * time.Minute)
	_, _, ok = c.Get(k)
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len(), "expired entry removed on read")
}

func TestCache_FallbackLivesLonger(t *testing.T) {
	clock := testutil.NewFakeClock(testNow)
	c := NewCache(5*time.Minute, 3, clock.Now)
	live := Key{Method: "GET", URL: "http://x/api/categories"}
	fallback := Key{Method: "GET", URL: "http://x/api/products"}

	c.Put(live, 1, false)
	c.Put(fallback, 2, true)

	clock.Advance(10 * time.Minute)
	_, _, ok := c.Get(live)
	assert.False(t, ok)
	_, fb, ok := c.Get(fallback)
	assert.True(t, ok)
	assert.True(t, fb)

	clock.Advance(5 * time.Minute)
	_, _, ok = c.Get(fallback)
	assert.False(t, ok)
}

func TestCache_Sweep(t *testing.T) {
	clock := testutil.NewFakeClock(testNow)
	c := NewCache(time.Minute, 3, clock.Now)

	c.Put(Key{URL: "a"}, 1, false)
	c.Put(Key{URL: "b"}, 2, true)
	clock.Advance(30 * time.Second)
	c.Put(Key{URL: "c"}, 3, false)
	clock.Advance(45 * time.Second)

	assert.Equal(t, 1, c.Sweep())
	assert.Equal(t, 2, c.Len())

	clock.Advance(3 * time.Minute)
	assert.Equal(t, 2, c.Sweep())
	assert.Equal(t, 0, c.Len())
}

func TestCache_DropFallback(t *testing.T) {
	c := NewCache(time.Minute, 3, nil)
	c.Put(Key{URL: "a"}, 1, false)
	c.Put(Key{URL: "b"}, 2, true)
	c.Put(Key{URL: "c"}, 3, true)

	assert.Equal(t, 2, c.DropFallback())
	_, _, ok := c.Get(Key{URL: "a"})
	assert.True(t, ok)
	assert.Equal(t, 1, c.Len())

	c.Clear()
	assert.Equal(t, 0, c.Len())
}

func TestKey_DistinguishesBody(t *testing.T) {
	a := Key{Method: "GET", URL: "http://x/api/products?page=2"}
	b := Key{Method: "POST", URL: "http://x/api/products?page=2", Body: `{"q":1}`}
	assert.NotEqual(t, a.String(), b.String())
	assert.Equal(t, "GET http://x/api/products?page=2", a.String())
}
