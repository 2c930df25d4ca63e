package mpd

import (
	"context"
	"errors"
	"time"
)

var ErrPoolClosed = errors.New("mpd: pool closed")

// Resource is a connection checked out of a Pool.
type Resource interface {
	Value() *Connection

	// Release returns the connection to the pool after use. A connection
	// that cannot serve another command (unrecoverable sticky error,
	// unfinished response, closed) is destroyed instead; a recoverable
	// error is cleared.
	Release()

	// ReleaseUnused is Release without updating the last use time.
	ReleaseUnused()

	// Destroy closes the connection and removes it from the pool.
	Destroy()

	CreationTime() time.Time
	IdleDuration() time.Duration
}

// Pool manages the connections to one daemon.
type Pool interface {
	Acquire(ctx context.Context) (Resource, error)

	// AcquireAllIdle checks out every idle connection, for health checks.
	AcquireAllIdle() []Resource

	Close()
	Stats() PoolStats
}

// PoolFactory builds a Pool from a connection constructor.
type PoolFactory func(constructor func(ctx context.Context) (*Connection, error), maxSize int32) (Pool, error)
