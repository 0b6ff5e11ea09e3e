package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCooldownCache_ActiveWithinWindow(t *testing.T) {
	c := newCooldownCache(2 * time.Minute)
	c.mark("0xabc-1")

	assert.True(t, c.active("0xabc-1"))
	assert.False(t, c.active("0xabc-2"))
}

func TestCooldownCache_ExpiresAfterWindow(t *testing.T) {
	now := time.Now()
	c := newCooldownCache(2 * time.Minute)
	c.now = func() time.Time { return now }
	c.mark("0xabc-1")

	c.now = func() time.Time { return now.Add(2 * time.Minute) }
	assert.False(t, c.active("0xabc-1"), "entry must stop suppressing at the window boundary")
}

func TestCooldownCache_LazyEviction(t *testing.T) {
	now := time.Now()
	c := newCooldownCache(time.Minute)
	c.now = func() time.Time { return now }
	c.mark("a")
	c.mark("b")
	assert.Equal(t, 2, c.size())

	c.now = func() time.Time { return now.Add(time.Hour) }
	c.active("a")
	assert.Equal(t, 1, c.size(), "expired entry must be evicted on lookup")
	c.active("b")
	assert.Equal(t, 0, c.size())
}

func TestCooldownCache_RemarkRestartsWindow(t *testing.T) {
	now := time.Now()
	c := newCooldownCache(time.Minute)
	c.now = func() time.Time { return now }
	c.mark("a")

	c.now = func() time.Time { return now.Add(50 * time.Second) }
	c.mark("a")

	c.now = func() time.Time { return now.Add(100 * time.Second) }
	assert.True(t, c.active("a"), "re-marking must restart the window")
}
