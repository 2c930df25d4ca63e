package mpd

import (
	"sync/atomic"
	"time"
)

// PoolStats contains statistics about a connection pool.
//
// For Prometheus integration, expose these as:
//   - Gauges: TotalConns, IdleConns, ActiveConns
//   - Counters: AcquireCount, AcquireWaitCount, CreatedConns, DestroyedConns, AcquireErrors
//   - Histogram: AcquireWaitDuration (use AcquireWaitCount and AcquireWaitTimeNs to calculate)
type PoolStats struct {
	AcquireCount      uint64 // Total acquire attempts
	AcquireWaitCount  uint64 // Acquires that had to wait
	CreatedConns      uint64 // Total connections created
	DestroyedConns    uint64 // Total connections destroyed
	AcquireErrors     uint64 // Failed acquire attempts
	AcquireWaitTimeNs uint64 // Total nanoseconds spent waiting

	TotalConns  int32 // Total connections in pool (active + idle)
	IdleConns   int32 // Idle connections available
	ActiveConns int32 // Connections currently in use
}

// ClientStats contains statistics about client operations.
type ClientStats struct {
	Commands       uint64 // Executed command round trips
	SongsDecoded   uint64 // Songs returned to callers
	OutputsDecoded uint64 // Outputs returned to callers
	ServerErrors   uint64 // ACK responses
	Errors         uint64 // Other failures (I/O, parse, pool, circuit breaker)
}

// poolStatsCollector is embedded by value in pools; the zero value is ready.
type poolStatsCollector struct {
	acquireCount      atomic.Uint64
	acquireWaitCount  atomic.Uint64
	createdConns      atomic.Uint64
	destroyedConns    atomic.Uint64
	acquireErrors     atomic.Uint64
	acquireWaitTimeNs atomic.Uint64

	totalConns  atomic.Int32
	idleConns   atomic.Int32
	activeConns atomic.Int32
}

func (c *poolStatsCollector) recordAcquire() {
	c.acquireCount.Add(1)
}

func (c *poolStatsCollector) recordAcquireWait(duration time.Duration) {
	c.acquireWaitCount.Add(1)
	c.acquireWaitTimeNs.Add(uint64(duration.Nanoseconds()))
}

func (c *poolStatsCollector) recordCreate() {
	c.createdConns.Add(1)
	c.totalConns.Add(1)
}

// recordDestroy accounts for a destroyed connection that was either
// checked out (active) or sitting idle.
func (c *poolStatsCollector) recordDestroy(active bool) {
	c.destroyedConns.Add(1)
	c.totalConns.Add(-1)
	if active {
		c.activeConns.Add(-1)
	} else {
		c.idleConns.Add(-1)
	}
}

func (c *poolStatsCollector) recordAcquireError() {
	c.acquireErrors.Add(1)
}

func (c *poolStatsCollector) recordAcquireFromIdle() {
	c.idleConns.Add(-1)
	c.activeConns.Add(1)
}

func (c *poolStatsCollector) recordActivate() {
	c.activeConns.Add(1)
}

func (c *poolStatsCollector) recordRelease() {
	c.idleConns.Add(1)
	c.activeConns.Add(-1)
}

func (c *poolStatsCollector) snapshot() PoolStats {
	return PoolStats{
		TotalConns:        c.totalConns.Load(),
		IdleConns:         c.idleConns.Load(),
		ActiveConns:       c.activeConns.Load(),
		AcquireCount:      c.acquireCount.Load(),
		AcquireWaitCount:  c.acquireWaitCount.Load(),
		CreatedConns:      c.createdConns.Load(),
		DestroyedConns:    c.destroyedConns.Load(),
		AcquireErrors:     c.acquireErrors.Load(),
		AcquireWaitTimeNs: c.acquireWaitTimeNs.Load(),
	}
}

type clientStatsCollector struct {
	commands       atomic.Uint64
	songsDecoded   atomic.Uint64
	outputsDecoded atomic.Uint64
	serverErrors   atomic.Uint64
	errors         atomic.Uint64
}

func (c *clientStatsCollector) recordCommand() {
	c.commands.Add(1)
}

func (c *clientStatsCollector) recordSongs(n int) {
	c.songsDecoded.Add(uint64(n))
}

func (c *clientStatsCollector) recordOutputs(n int) {
	c.outputsDecoded.Add(uint64(n))
}

func (c *clientStatsCollector) recordServerError() {
	c.serverErrors.Add(1)
}

func (c *clientStatsCollector) recordError() {
	c.errors.Add(1)
}

func (c *clientStatsCollector) snapshot() ClientStats {
	return ClientStats{
		Commands:       c.commands.Load(),
		SongsDecoded:   c.songsDecoded.Load(),
		OutputsDecoded: c.outputsDecoded.Load(),
		ServerErrors:   c.serverErrors.Load(),
		Errors:         c.errors.Load(),
	}
}
