package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSetGet(t *testing.T) {
	c := New(true)
	defer c.Close()

	etag := c.Set("snapshot:f1", []byte(`{"a":1}`), time.Minute, "driver-standings")
	data, got, ok := c.Get("snapshot:f1")
	assert.True(t, ok)
	assert.Equal(t, etag, got)
	assert.Equal(t, `{"a":1}`, string(data))
}

func TestExpiredEntryMisses(t *testing.T) {
	c := New(true)
	defer c.Close()

	c.Set("k", []byte("x"), -time.Second)
	_, _, ok := c.Get("k")
	assert.False(t, ok)
}

func TestInvalidateByTag(t *testing.T) {
	c := New(true)
	defer c.Close()

	c.Set("snapshot:f1", []byte("1"), time.Minute, "driver-standings", "recent-race")
	c.Set("dataset:squad", []byte("2"), time.Minute, "squad")

	assert.Equal(t, 1, c.Invalidate("recent-race"))

	_, _, ok := c.Get("snapshot:f1")
	assert.False(t, ok)
	_, _, ok = c.Get("dataset:squad")
	assert.True(t, ok)
}

func TestDisabledCacheIsNoop(t *testing.T) {
	c := New(false)
	etag := c.Set("k", []byte("x"), time.Minute)
	assert.Equal(t, ComputeETag([]byte("x")), etag)

	_, _, ok := c.Get("k")
	assert.False(t, ok)
	assert.Zero(t, c.Invalidate("k"))
}

func TestCheckETagMatch(t *testing.T) {
	assert.False(t, CheckETagMatch("", `W/"abc"`))
	assert.True(t, CheckETagMatch("*", `W/"abc"`))
	assert.True(t, CheckETagMatch(`W/"abc"`, `W/"abc"`))
	assert.False(t, CheckETagMatch(`W/"abd"`, `W/"abc"`))
}
