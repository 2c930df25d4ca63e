package mpd

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/jackc/puddle/v2"
)

var _ PoolFactory = NewPuddlePool

// NewPuddlePool creates a pool backed by github.com/jackc/puddle/v2.
// puddle closes destroyed connections on its own goroutine.
func NewPuddlePool(constructor func(ctx context.Context) (*Connection, error), maxSize int32) (Pool, error) {
	p := &puddlePool{}

	pool, err := puddle.NewPool(&puddle.Config[*Connection]{
		Constructor: func(ctx context.Context) (*Connection, error) {
			conn, err := constructor(ctx)
			if err == nil {
				p.created.Add(1)
			}
			return conn, err
		},
		Destructor: func(conn *Connection) {
			p.destroyed.Add(1)
			_ = conn.Close()
		},
		MaxSize: maxSize,
	})
	if err != nil {
		return nil, err
	}

	p.pool = pool
	return p, nil
}

type puddlePool struct {
	pool      *puddle.Pool[*Connection]
	created   atomic.Uint64
	destroyed atomic.Uint64
}

// puddleResource applies the connection reuse rule on top of puddle's
// resource handling.
type puddleResource struct {
	res *puddle.Resource[*Connection]
}

func (r puddleResource) Value() *Connection {
	return r.res.Value()
}

func (r puddleResource) Release() {
	if !r.res.Value().reusable() {
		r.res.Destroy()
		return
	}
	r.res.Release()
}

func (r puddleResource) ReleaseUnused() {
	if !r.res.Value().reusable() {
		r.res.Destroy()
		return
	}
	r.res.ReleaseUnused()
}

func (r puddleResource) Destroy()                    { r.res.Destroy() }
func (r puddleResource) CreationTime() time.Time     { return r.res.CreationTime() }
func (r puddleResource) IdleDuration() time.Duration { return r.res.IdleDuration() }

func (p *puddlePool) Acquire(ctx context.Context) (Resource, error) {
	res, err := p.pool.Acquire(ctx)
	if err != nil {
		if errors.Is(err, puddle.ErrClosedPool) {
			return nil, ErrPoolClosed
		}
		return nil, err
	}
	return puddleResource{res: res}, nil
}

func (p *puddlePool) AcquireAllIdle() []Resource {
	idle := p.pool.AcquireAllIdle()
	all := make([]Resource, len(idle))
	for i, res := range idle {
		all[i] = puddleResource{res: res}
	}
	return all
}

// Close waits for checked out connections to be handed back.
func (p *puddlePool) Close() {
	p.pool.Close()
}

// Stats reports puddle's gauges and counters. Failed acquires are the
// canceled ones only: puddle does not count constructor failures.
func (p *puddlePool) Stats() PoolStats {
	s := p.pool.Stat()

	return PoolStats{
		TotalConns:        s.TotalResources(),
		IdleConns:         s.IdleResources(),
		ActiveConns:       s.AcquiredResources(),
		AcquireCount:      uint64(s.AcquireCount()),
		AcquireWaitCount:  uint64(s.EmptyAcquireCount()),
		CreatedConns:      p.created.Load(),
		DestroyedConns:    p.destroyed.Load(),
		AcquireErrors:     uint64(s.CanceledAcquireCount()),
		AcquireWaitTimeNs: uint64(s.EmptyAcquireWaitTime().Nanoseconds()),
	}
}
