package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWindowAllowsUpToLimit(t *testing.T) {
	w := NewWindow(3, time.Minute)
	now := time.Now()

	assert.True(t, w.Allow(now))
	assert.True(t, w.Allow(now))
	assert.True(t, w.Allow(now))
	assert.False(t, w.Allow(now), "fourth call within the window should be rejected")
}

func TestWindowRollsOverAfterPeriod(t *testing.T) {
	w := NewWindow(1, time.Second)
	now := time.Now()

	assert.True(t, w.Allow(now))
	assert.False(t, w.Allow(now.Add(500*time.Millisecond)))
	assert.True(t, w.Allow(now.Add(2*time.Second)), "window should have rolled over")
}

func TestWindowReset(t *testing.T) {
	w := NewWindow(1, time.Minute)
	now := time.Now()

	assert.True(t, w.Allow(now))
	assert.False(t, w.Allow(now))

	w.Reset()
	assert.True(t, w.Allow(now), "reset should clear the count immediately")
}

func TestRegistryPerKeyIsolation(t *testing.T) {
	r := NewRegistry(1, time.Minute)
	now := time.Now()

	assert.True(t, r.Allow("1.2.3.4", now))
	assert.False(t, r.Allow("1.2.3.4", now))
	assert.True(t, r.Allow("5.6.7.8", now), "a different key must have its own bucket")
}

func TestRegistryReset(t *testing.T) {
	r := NewRegistry(1, time.Minute)
	now := time.Now()

	assert.True(t, r.Allow("ip", now))
	assert.False(t, r.Allow("ip", now))
	r.Reset("ip")
	assert.True(t, r.Allow("ip", now))
}
