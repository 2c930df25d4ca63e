package mpd

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolStats_ChannelPool(t *testing.T) {
	var created atomic.Int32
	pool, err := NewChannelPool(mockConstructor(&created), 5)
	require.NoError(t, err)
	defer pool.Close()

	ctx := context.Background()

	// Initial stats should be zero
	assert.Equal(t, PoolStats{}, pool.Stats())

	res, err := pool.Acquire(ctx)
	require.NoError(t, err)

	stats := pool.Stats()
	assert.Equal(t, int32(1), stats.TotalConns)
	assert.Equal(t, int32(1), stats.ActiveConns)
	assert.Equal(t, int32(0), stats.IdleConns)
	assert.Equal(t, uint64(1), stats.AcquireCount)
	assert.Equal(t, uint64(1), stats.CreatedConns)

	res.Release()

	stats = pool.Stats()
	assert.Equal(t, int32(1), stats.TotalConns)
	assert.Equal(t, int32(0), stats.ActiveConns)
	assert.Equal(t, int32(1), stats.IdleConns)

	// Acquire again (should reuse existing connection)
	res, err = pool.Acquire(ctx)
	require.NoError(t, err)

	stats = pool.Stats()
	assert.Equal(t, uint64(2), stats.AcquireCount)
	assert.Equal(t, uint64(1), stats.CreatedConns, "reused")

	res.Destroy()

	stats = pool.Stats()
	assert.Equal(t, int32(0), stats.TotalConns)
	assert.Equal(t, int32(0), stats.ActiveConns)
	assert.Equal(t, uint64(1), stats.DestroyedConns)
}

func TestPoolStats_AcquireWait(t *testing.T) {
	var created atomic.Int32
	pool, err := NewChannelPool(mockConstructor(&created), 1)
	require.NoError(t, err)
	defer pool.Close()

	res, err := pool.Acquire(context.Background())
	require.NoError(t, err)

	go func() {
		time.Sleep(5 * time.Millisecond)
		res.Release()
	}()

	res, err = pool.Acquire(context.Background())
	require.NoError(t, err)
	defer res.Release()

	stats := pool.Stats()
	assert.Equal(t, uint64(1), stats.AcquireWaitCount)
	assert.Greater(t, stats.AcquireWaitTimeNs, uint64(0))
}

func TestPoolStats_AverageWaitTime(t *testing.T) {
	stats := &PoolStats{
		AcquireWaitCount:  3,
		AcquireWaitTimeNs: uint64((90 * time.Millisecond).Nanoseconds()),
	}

	avg := time.Duration(stats.AcquireWaitTimeNs / stats.AcquireWaitCount)
	assert.Equal(t, 30*time.Millisecond, avg)
}

func TestClientStatsCollector(t *testing.T) {
	var c clientStatsCollector

	c.recordCommand()
	c.recordCommand()
	c.recordSongs(3)
	c.recordSongs(0)
	c.recordOutputs(2)
	c.recordServerError()
	c.recordError()

	assert.Equal(t, ClientStats{
		Commands:       2,
		SongsDecoded:   3,
		OutputsDecoded: 2,
		ServerErrors:   1,
		Errors:         1,
	}, c.snapshot())
}
