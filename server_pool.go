package mpd

import (
	"context"
	"log/slog"

	"github.com/pior/mpd/protocol"
	"github.com/sony/gobreaker/v2"
)

// NewServerPool creates the connection pool and circuit breaker for one daemon.
func NewServerPool(addr string, config Config) (*ServerPool, error) {
	config = config.withDefaults()

	constructor := config.constructor
	if constructor == nil {
		constructor = func(ctx context.Context) (*Connection, error) {
			netConn, err := config.Dialer.DialContext(ctx, networkFor(addr), addr)
			if err != nil {
				return nil, err
			}
			if deadline, ok := ctx.Deadline(); ok {
				_ = netConn.SetDeadline(deadline)
			}
			return newConnection(netConn, config.Logger)
		}
	}

	pool, err := config.Pool(constructor, config.MaxSize)
	if err != nil {
		return nil, err
	}

	sp := &ServerPool{
		addr:   addr,
		pool:   pool,
		logger: config.Logger,
	}
	if config.NewCircuitBreaker != nil {
		sp.circuitBreaker = config.NewCircuitBreaker(addr)
	}
	return sp, nil
}

// ServerPool wraps a pool and a circuit breaker with the daemon address.
type ServerPool struct {
	addr           string
	pool           Pool
	circuitBreaker *gobreaker.CircuitBreaker[struct{}]
	logger         *slog.Logger
}

var _ Executor = (*ServerPool)(nil)

func (sp *ServerPool) Address() string {
	return sp.addr
}

// ServerPoolStats contains stats for a single server pool
type ServerPoolStats struct {
	Addr                 string
	PoolStats            PoolStats
	CircuitBreakerState  gobreaker.State
	CircuitBreakerCounts gobreaker.Counts
}

func (sp *ServerPool) Stats() ServerPoolStats {
	stats := ServerPoolStats{
		Addr:      sp.addr,
		PoolStats: sp.pool.Stats(),
	}
	if sp.circuitBreaker != nil {
		stats.CircuitBreakerState = sp.circuitBreaker.State()
		stats.CircuitBreakerCounts = sp.circuitBreaker.Counts()
	}
	return stats
}

// Execute runs fn on a pooled connection, through the circuit breaker when
// one is configured.
func (sp *ServerPool) Execute(ctx context.Context, fn func(conn *Connection) error) error {
	if sp.circuitBreaker == nil {
		return sp.execDirect(ctx, fn)
	}

	_, err := sp.circuitBreaker.Execute(func() (struct{}, error) {
		return struct{}{}, sp.execDirect(ctx, fn)
	})
	return err
}

// execDirect acquires a connection, runs fn and hands the connection back.
// A connection left with an unrecoverable error, or in the middle of a
// response, is closed by the pool instead of being reused.
func (sp *ServerPool) execDirect(ctx context.Context, fn func(conn *Connection) error) error {
	resource, err := sp.pool.Acquire(ctx)
	if err != nil {
		return err
	}

	conn := resource.Value()

	if err := ctx.Err(); err != nil {
		resource.Release()
		return err
	}

	if err := conn.applyDeadline(ctx); err != nil {
		resource.Destroy()
		return err
	}

	fnErr := fn(conn)

	if protocol.ShouldCloseConnection(conn.Err()) || !conn.idle() {
		sp.logger.Debug("dropping connection", "addr", sp.addr, "error", fnErr)
	}

	// the pool closes connections that are not reusable
	resource.Release()
	return fnErr
}

// Close closes all connections of the pool.
func (sp *ServerPool) Close() {
	sp.pool.Close()
}
