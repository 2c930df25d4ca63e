package mpd

import (
	"context"

	"github.com/pior/mpd/protocol"
)

type Querier interface {
	Ping(ctx context.Context) error
	Outputs(ctx context.Context) ([]*Output, error)
	EnableOutput(ctx context.Context, id int) error
	DisableOutput(ctx context.Context, id int) error
	PlaylistInfo(ctx context.Context) ([]*Song, error)
	CurrentSong(ctx context.Context) (*Song, error)
}

// Executor runs fn with exclusive use of a connection.
// The connection's sticky error after fn returns decides whether the
// connection can be reused.
type Executor interface {
	Execute(ctx context.Context, fn func(conn *Connection) error) error
}

// Commands provides daemon command operations.
// This struct can be used independently with a custom Executor,
// or embedded in Client for pooling and circuit breaking.
type Commands struct {
	executor Executor
}

var _ Querier = (*Commands)(nil)

// NewCommands creates a new Commands instance with the given executor.
func NewCommands(executor Executor) *Commands {
	return &Commands{
		executor: executor,
	}
}

// Ping checks that the daemon answers.
func (c *Commands) Ping(ctx context.Context) error {
	return c.executor.Execute(ctx, func(conn *Connection) error {
		return simpleCommand(conn, "ping")
	})
}

// Outputs lists the configured audio outputs.
func (c *Commands) Outputs(ctx context.Context) ([]*Output, error) {
	var outputs []*Output
	err := c.executor.Execute(ctx, func(conn *Connection) error {
		if err := conn.SendCommand("outputs"); err != nil {
			return err
		}
		var err error
		outputs, err = recvList(conn, outputCodec)
		return err
	})
	return outputs, err
}

// EnableOutput turns on the output with the given id.
func (c *Commands) EnableOutput(ctx context.Context, id int) error {
	return c.executor.Execute(ctx, func(conn *Connection) error {
		return simpleCommand(conn, "enableoutput", protocol.IntArg(id))
	})
}

// DisableOutput turns off the output with the given id.
func (c *Commands) DisableOutput(ctx context.Context, id int) error {
	return c.executor.Execute(ctx, func(conn *Connection) error {
		return simpleCommand(conn, "disableoutput", protocol.IntArg(id))
	})
}

// PlaylistInfo lists the songs of the queue, in queue order.
// The caller owns the songs and must Release each of them.
func (c *Commands) PlaylistInfo(ctx context.Context) ([]*Song, error) {
	var songs []*Song
	err := c.executor.Execute(ctx, func(conn *Connection) error {
		if err := conn.SendCommand("playlistinfo"); err != nil {
			return err
		}
		var err error
		songs, err = recvList(conn, songCodec)
		return err
	})
	return songs, err
}

// CurrentSong returns the song being played, nil if the player is stopped.
// The caller owns the song and must Release it.
func (c *Commands) CurrentSong(ctx context.Context) (*Song, error) {
	var song *Song
	err := c.executor.Execute(ctx, func(conn *Connection) error {
		if err := conn.SendCommand("currentsong"); err != nil {
			return err
		}

		s, _, err := recvEntity(conn, songCodec)
		if err != nil {
			return err
		}

		if err := conn.ResponseFinish(); err != nil {
			if s != nil {
				s.Release()
			}
			return err
		}

		song = s
		return nil
	})
	return song, err
}

// simpleCommand sends a command whose response carries no pairs of interest.
func simpleCommand(conn *Connection, name string, args ...string) error {
	if err := conn.SendCommand(name, args...); err != nil {
		return err
	}
	return conn.ResponseFinish()
}

// recvList decodes every record of the current response and finishes it.
// On failure the records decoded so far are freed.
func recvList[T any](conn *Connection, codec entityCodec[T]) ([]T, error) {
	var items []T

	for {
		item, ok, err := recvEntity(conn, codec)
		if err != nil {
			freeAll(items, codec)
			return nil, err
		}
		if !ok {
			break
		}
		items = append(items, item)
	}

	if err := conn.ResponseFinish(); err != nil {
		freeAll(items, codec)
		return nil, err
	}

	return items, nil
}

func freeAll[T any](items []T, codec entityCodec[T]) {
	for _, item := range items {
		codec.free(item)
	}
}
