package mpd

import (
	"bufio"
	"context"
	"errors"
	"log/slog"
	"net"
	"sync/atomic"
	"time"

	"github.com/pior/mpd/protocol"
)

var (
	ErrConnectionClosed = errors.New("mpd: connection closed")
	ErrResponsePending  = errors.New("mpd: previous response not finished")
)

// Connection is a single connection to the daemon.
//
// It turns the response of the last command into a stream of pairs and
// keeps a sticky error: the first failure seen while sending or receiving
// is recorded and every later receive returns nothing until the error is
// cleared. Recoverable errors (ACK responses) are cleared by the next
// SendCommand; others leave the connection unusable.
//
// Connection is not safe for concurrent use.
type Connection struct {
	conn    net.Conn
	Reader  *bufio.Reader
	Writer  *bufio.Writer
	version protocol.Version
	logger  *slog.Logger

	err       error
	receiving bool

	// set from the pool's goroutines as well
	closed atomic.Bool

	// single pair lookahead
	pending    protocol.Pair
	hasPending bool
}

// NewConnection wraps netConn and reads the daemon's greeting.
func NewConnection(netConn net.Conn) (*Connection, error) {
	return newConnection(netConn, nil)
}

func newConnection(netConn net.Conn, logger *slog.Logger) (*Connection, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	c := &Connection{
		conn:   netConn,
		Reader: bufio.NewReader(netConn),
		Writer: bufio.NewWriter(netConn),
		logger: logger,
	}

	version, err := protocol.ReadGreeting(c.Reader)
	if err != nil {
		_ = netConn.Close()
		return nil, err
	}
	c.version = version

	c.logger.Debug("connected", "addr", netConn.RemoteAddr().String(), "version", version.String())
	return c, nil
}

// Version returns the protocol version announced by the daemon.
func (c *Connection) Version() protocol.Version {
	return c.version
}

// Err returns the sticky error, nil if none is recorded.
func (c *Connection) Err() error {
	return c.err
}

// setError records err unless an error is already recorded.
func (c *Connection) setError(err error) {
	if c.err != nil {
		return
	}
	c.err = err
	c.receiving = false
	c.hasPending = false

	c.logger.Debug("connection error", "error", err, "close", protocol.ShouldCloseConnection(err))
}

// ClearError clears a recoverable sticky error. It returns false, leaving
// the error in place, when the connection cannot be used anymore.
func (c *Connection) ClearError() bool {
	if c.err == nil {
		return true
	}
	if protocol.ShouldCloseConnection(c.err) {
		return false
	}
	c.err = nil
	return true
}

// SendCommand writes one command and starts receiving its response.
func (c *Connection) SendCommand(name string, args ...string) error {
	if c.closed.Load() {
		return ErrConnectionClosed
	}

	if !c.ClearError() {
		return c.err
	}

	if c.receiving || c.hasPending {
		return ErrResponsePending
	}

	if err := protocol.WriteCommand(c.Writer, name, args...); err != nil {
		var connErr *protocol.ConnectionError
		if errors.As(err, &connErr) {
			c.setError(err)
		}
		return err
	}

	if err := c.Writer.Flush(); err != nil {
		c.setError(&protocol.ConnectionError{Op: "write", Err: err})
		return c.err
	}

	c.receiving = true
	return nil
}

// RecvPair returns the next pair of the current response.
// ok is false when the response has ended or the sticky error is set.
func (c *Connection) RecvPair() (pair protocol.Pair, ok bool) {
	if c.err != nil {
		return protocol.Pair{}, false
	}

	if c.hasPending {
		c.hasPending = false
		return c.pending, true
	}

	if !c.receiving {
		return protocol.Pair{}, false
	}

	line, err := protocol.ReadLine(c.Reader)
	if err != nil {
		c.setError(err)
		return protocol.Pair{}, false
	}

	switch line.Kind {
	case protocol.LinePair:
		return line.Pair, true
	case protocol.LineOK:
		c.receiving = false
	case protocol.LineAck:
		c.setError(line.Ack)
	default:
		c.setError(&protocol.ParseError{Message: "unexpected " + protocol.ResponseListOK})
	}

	return protocol.Pair{}, false
}

// RecvPairNamed returns the next pair only if its name is name.
// Any other pair is left in place for the next receive.
func (c *Connection) RecvPairNamed(name string) (protocol.Pair, bool) {
	pair, ok := c.RecvPair()
	if !ok {
		return protocol.Pair{}, false
	}

	if pair.Name != name {
		c.EnqueuePair(pair)
		return protocol.Pair{}, false
	}

	return pair, true
}

// EnqueuePair pushes pair back so the next receive returns it first.
// Only one pair can be pushed back; pushing a second one panics.
func (c *Connection) EnqueuePair(pair protocol.Pair) {
	if c.hasPending {
		panic("mpd: a pair is already pending")
	}
	c.pending = pair
	c.hasPending = true
}

// ResponseFinish discards the rest of the current response and returns
// the sticky error, if any.
func (c *Connection) ResponseFinish() error {
	for {
		if _, ok := c.RecvPair(); !ok {
			return c.err
		}
	}
}

// RecvSong decodes the next song of the current response.
// It returns nil, nil when no more songs follow.
func (c *Connection) RecvSong() (*Song, error) {
	song, _, err := recvEntity(c, songCodec)
	return song, err
}

// RecvOutput decodes the next output of the current response.
// It returns nil, nil when no more outputs follow.
func (c *Connection) RecvOutput() (*Output, error) {
	output, _, err := recvEntity(c, outputCodec)
	return output, err
}

// idle reports whether no response is in progress, so a new command can
// be sent right away.
func (c *Connection) idle() bool {
	return !c.receiving && !c.hasPending
}

// reusable reports whether the connection can go back to a pool: it is
// open, its sticky error (if any) could be cleared, and no response is
// left half read.
func (c *Connection) reusable() bool {
	return !c.closed.Load() && c.ClearError() && c.idle()
}

// applyDeadline sets the I/O deadline from ctx, clearing it when ctx has none.
func (c *Connection) applyDeadline(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if deadline, ok := ctx.Deadline(); ok {
		return c.conn.SetDeadline(deadline)
	}
	return c.conn.SetDeadline(time.Time{})
}

// IsClosed returns whether the connection is closed
func (c *Connection) IsClosed() bool {
	return c.closed.Load()
}

// Close closes the connection. It is safe to call more than once, from
// any goroutine.
func (c *Connection) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	return c.conn.Close()
}
