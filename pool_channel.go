package mpd

import (
	"context"
	"sync"
	"time"

	"github.com/pior/mpd/internal/coarsetime"
)

var _ PoolFactory = NewChannelPool

// NewChannelPool creates a channel based connection pool.
// This is the default pool implementation.
//
// Capacity is a semaphore of maxSize slots: a connection holds its slot
// from creation until it is closed, so a caller waiting on a full pool
// wakes up either for an idle connection or for a slot freed by Destroy.
func NewChannelPool(constructor func(ctx context.Context) (*Connection, error), maxSize int32) (Pool, error) {
	return &channelPool{
		constructor: constructor,
		slots:       make(chan struct{}, maxSize),
		idle:        make(chan *channelResource, maxSize),
		done:        make(chan struct{}),
	}, nil
}

type channelPool struct {
	constructor func(ctx context.Context) (*Connection, error)

	slots chan struct{}
	idle  chan *channelResource
	done  chan struct{}

	// mu orders hand backs against Close, so no connection is parked in
	// idle after Close drained it.
	mu     sync.Mutex
	closed bool

	stats poolStatsCollector
}

// channelResource is a connection checked out of a channelPool.
type channelResource struct {
	conn     *Connection
	pool     *channelPool
	created  time.Time
	lastUsed time.Time
}

func (r *channelResource) Value() *Connection {
	return r.conn
}

// Release hands the connection back, or closes it when it cannot serve
// another command.
func (r *channelResource) Release() {
	r.lastUsed = coarsetime.Now()
	r.pool.handBack(r)
}

// ReleaseUnused is Release without touching the idle clock (health checks).
func (r *channelResource) ReleaseUnused() {
	r.pool.handBack(r)
}

func (r *channelResource) Destroy() {
	r.pool.discard(r, true)
}

func (r *channelResource) CreationTime() time.Time {
	return r.created
}

func (r *channelResource) IdleDuration() time.Duration {
	return coarsetime.Since(r.lastUsed)
}

func (p *channelPool) Acquire(ctx context.Context) (Resource, error) {
	p.stats.recordAcquire()

	select {
	case <-p.done:
		p.stats.recordAcquireError()
		return nil, ErrPoolClosed
	default:
	}

	// An idle connection beats dialing a new one
	select {
	case res := <-p.idle:
		return p.checkout(res)
	default:
	}

	select {
	case res := <-p.idle:
		return p.checkout(res)
	case p.slots <- struct{}{}:
		return p.create(ctx)
	default:
	}

	waitStart := time.Now()
	select {
	case <-p.done:
		p.stats.recordAcquireError()
		return nil, ErrPoolClosed
	case res := <-p.idle:
		p.stats.recordAcquireWait(time.Since(waitStart))
		return p.checkout(res)
	case p.slots <- struct{}{}:
		p.stats.recordAcquireWait(time.Since(waitStart))
		return p.create(ctx)
	case <-ctx.Done():
		p.stats.recordAcquireError()
		return nil, ctx.Err()
	}
}

func (p *channelPool) checkout(res *channelResource) (Resource, error) {
	p.stats.recordAcquireFromIdle()
	return res, nil
}

// create dials a connection into a slot the caller already holds.
func (p *channelPool) create(ctx context.Context) (Resource, error) {
	conn, err := p.constructor(ctx)
	if err != nil {
		<-p.slots
		p.stats.recordAcquireError()
		return nil, err
	}

	p.stats.recordCreate()
	p.stats.recordActivate()

	now := coarsetime.Now()
	return &channelResource{conn: conn, pool: p, created: now, lastUsed: now}, nil
}

func (p *channelPool) handBack(res *channelResource) {
	if !res.conn.reusable() {
		p.discard(res, true)
		return
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		p.discard(res, true)
		return
	}
	// never blocks: idle holds at most one entry per slot
	p.idle <- res
	p.stats.recordRelease()
	p.mu.Unlock()
}

// discard closes the connection and frees its slot for a waiting Acquire.
func (p *channelPool) discard(res *channelResource, active bool) {
	_ = res.conn.Close()
	<-p.slots
	p.stats.recordDestroy(active)
}

func (p *channelPool) AcquireAllIdle() []Resource {
	var all []Resource
	for {
		select {
		case res := <-p.idle:
			p.stats.recordAcquireFromIdle()
			all = append(all, res)
		default:
			return all
		}
	}
}

// Close closes the idle connections. Connections checked out at that time
// are closed when handed back.
func (p *channelPool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.closed = true
	close(p.done)

	for {
		select {
		case res := <-p.idle:
			p.discard(res, false)
		default:
			return
		}
	}
}

func (p *channelPool) Stats() PoolStats {
	return p.stats.snapshot()
}
