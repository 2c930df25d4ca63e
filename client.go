package mpd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/pior/mpd/protocol"
	"github.com/sony/gobreaker/v2"
)

// DefaultAddr is the daemon's default TCP address.
const DefaultAddr = "localhost:6600"

// Config holds configuration for the client connection pool.
type Config struct {
	// MaxSize is the maximum number of connections in the pool.
	// Zero means 4.
	MaxSize int32

	// MaxConnLifetime is the maximum duration a connection can be reused.
	// Zero means no limit.
	MaxConnLifetime time.Duration

	// MaxConnIdleTime is the maximum duration a connection can be idle before being closed.
	// Zero means no limit. The daemon closes idle clients itself after its
	// connection_timeout (60s by default), so keep this below it.
	MaxConnIdleTime time.Duration

	// HealthCheckInterval is how often to check idle connections for health.
	// Zero disables health checks.
	HealthCheckInterval time.Duration

	// Dialer is the net.Dialer used to create new connections.
	// If nil, the default net.Dialer is used.
	Dialer *net.Dialer

	// Pool is the connection pool factory function.
	// If nil, uses NewChannelPool. NewPuddlePool is the alternative.
	Pool PoolFactory

	// NewCircuitBreaker creates the circuit breaker for the daemon address.
	// If nil, no circuit breaker is used. See NewCircuitBreakerConfig.
	NewCircuitBreaker func(addr string) *gobreaker.CircuitBreaker[struct{}]

	// Logger receives debug events about connections.
	// If nil, logs are discarded.
	Logger *slog.Logger

	// for testing purposes only
	constructor func(ctx context.Context) (*Connection, error)
}

func (c Config) withDefaults() Config {
	if c.MaxSize <= 0 {
		c.MaxSize = 4
	}
	if c.Dialer == nil {
		c.Dialer = &net.Dialer{}
	}
	if c.Pool == nil {
		c.Pool = NewChannelPool
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.DiscardHandler)
	}
	return c
}

// networkFor picks "unix" for socket paths and "tcp" otherwise.
func networkFor(addr string) string {
	if strings.HasPrefix(addr, "/") || strings.HasPrefix(addr, "@") {
		return "unix"
	}
	return "tcp"
}

// Client is a pooled client for one daemon. It is safe for concurrent use.
type Client struct {
	*Commands

	serverPool *ServerPool
	config     Config
	logger     *slog.Logger

	stopHealthCheck chan struct{}
	closeOnce       sync.Once

	stats clientStatsCollector
}

var (
	_ Querier  = (*Client)(nil)
	_ Executor = (*Client)(nil)
)

// NewClient creates a client for the daemon at addr: "host:port", or the
// path of a unix socket.
func NewClient(addr string, config Config) (*Client, error) {
	if addr == "" {
		return nil, fmt.Errorf("mpd: no address provided")
	}

	config = config.withDefaults()

	serverPool, err := NewServerPool(addr, config)
	if err != nil {
		return nil, err
	}

	client := &Client{
		serverPool:      serverPool,
		config:          config,
		logger:          config.Logger,
		stopHealthCheck: make(chan struct{}),
	}
	client.Commands = NewCommands(client)

	if config.HealthCheckInterval > 0 {
		go client.healthCheckLoop()
	}

	return client, nil
}

// Close stops the health checks and closes every pooled connection.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.stopHealthCheck)
		c.serverPool.Close()
	})
}

// Execute runs fn on a pooled connection and records the outcome.
func (c *Client) Execute(ctx context.Context, fn func(conn *Connection) error) error {
	c.stats.recordCommand()

	err := c.serverPool.Execute(ctx, fn)
	if err != nil {
		var serverErr *protocol.ServerError
		if errors.As(err, &serverErr) {
			c.stats.recordServerError()
		} else {
			c.stats.recordError()
		}
		c.logger.Debug("command failed", "addr", c.serverPool.Address(), "error", err)
	}
	return err
}

// Outputs lists the configured audio outputs.
func (c *Client) Outputs(ctx context.Context) ([]*Output, error) {
	outputs, err := c.Commands.Outputs(ctx)
	c.stats.recordOutputs(len(outputs))
	return outputs, err
}

// PlaylistInfo lists the songs of the queue. Release each song when done.
func (c *Client) PlaylistInfo(ctx context.Context) ([]*Song, error) {
	songs, err := c.Commands.PlaylistInfo(ctx)
	c.stats.recordSongs(len(songs))
	return songs, err
}

// CurrentSong returns the song being played, nil when stopped.
// Release the song when done.
func (c *Client) CurrentSong(ctx context.Context) (*Song, error) {
	song, err := c.Commands.CurrentSong(ctx)
	if song != nil {
		c.stats.recordSongs(1)
	}
	return song, err
}

// Stats returns a snapshot of client statistics.
func (c *Client) Stats() ClientStats {
	return c.stats.snapshot()
}

// PoolStats returns the stats of the connection pool and circuit breaker.
func (c *Client) PoolStats() ServerPoolStats {
	return c.serverPool.Stats()
}

// healthCheckLoop periodically checks idle connections for health and lifecycle limits.
func (c *Client) healthCheckLoop() {
	ticker := time.NewTicker(c.config.HealthCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopHealthCheck:
			return
		case <-ticker.C:
			c.checkPoolConnections()
		}
	}
}

// checkPoolConnections destroys idle connections that are stale or do not answer a ping.
func (c *Client) checkPoolConnections() {
	now := time.Now()

	for _, res := range c.serverPool.pool.AcquireAllIdle() {
		if c.config.MaxConnLifetime > 0 && now.Sub(res.CreationTime()) > c.config.MaxConnLifetime {
			res.Destroy()
			continue
		}

		if c.config.MaxConnIdleTime > 0 && res.IdleDuration() > c.config.MaxConnIdleTime {
			res.Destroy()
			continue
		}

		if err := c.healthCheck(res.Value()); err != nil {
			c.logger.Debug("health check failed", "addr", c.serverPool.Address(), "error", err)
			res.Destroy()
			continue
		}

		res.ReleaseUnused()
	}
}

// healthCheck pings the daemon on conn with a short deadline.
func (c *Client) healthCheck(conn *Connection) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := conn.applyDeadline(ctx); err != nil {
		return err
	}

	if err := simpleCommand(conn, "ping"); err != nil {
		return err
	}

	if !conn.idle() {
		return errors.New("mpd: response not finished after ping")
	}
	return nil
}
