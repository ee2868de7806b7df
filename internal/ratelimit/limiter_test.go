package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvery_AllowsBurstThenPaces(t *testing.T) {
	l := Every("maxroll.gg", 50*time.Millisecond, 2)
	ctx := context.Background()

	start := time.Now()
	require.NoError(t, l.Wait(ctx))
	require.NoError(t, l.Wait(ctx))
	assert.Less(t, time.Since(start), 40*time.Millisecond, "burst must not block")

	require.NoError(t, l.Wait(ctx))
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestEvery_ZeroIntervalIsUnlimited(t *testing.T) {
	l := Every("test", 0, 0)
	ctx := context.Background()
	start := time.Now()
	for i := 0; i < 50; i++ {
		require.NoError(t, l.Wait(ctx))
	}
	assert.Less(t, time.Since(start), time.Second)
}

func TestWait_CancelledContext(t *testing.T) {
	l := Every("maxroll.gg", time.Hour, 1)
	require.NoError(t, l.Wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := l.Wait(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit wait for maxroll.gg")
	assert.Equal(t, "maxroll.gg", l.Name())
}
