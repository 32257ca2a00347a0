package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestNew_EmptyAddrDisablesCache(t *testing.T) {
	assert.Nil(t, New("", "", 0, zap.NewNop()))
}

func TestDisabledClient_BehavesAsMiss(t *testing.T) {
	var c *Client
	ctx := context.Background()

	assert.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	got, err := c.Get(ctx, "k")
	assert.NoError(t, err)
	assert.Nil(t, got)

	assert.True(t, c.SetNX(ctx, "k", []byte("v"), time.Minute))
	assert.NoError(t, c.SetJSON(ctx, "j", map[string]int{"a": 1}, time.Minute))

	var dst map[string]int
	assert.False(t, c.GetJSON(ctx, "j", &dst))
	assert.NoError(t, c.Delete(ctx, "k"))
	assert.NoError(t, c.Ping(ctx))
	assert.NoError(t, c.Close())
}

func TestUnreachableRedis_FailsSafe(t *testing.T) {
	c := New("127.0.0.1:1", "", 0, zap.NewNop())
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	defer c.Close()

	assert.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	got, err := c.Get(ctx, "k")
	assert.NoError(t, err)
	assert.Nil(t, got)
	assert.True(t, c.SetNX(ctx, "k", []byte("v"), time.Minute))
}
