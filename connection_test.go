package mpd

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/pior/mpd/internal/testutils"
	"github.com/pior/mpd/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestConnection returns a connection whose daemon greets and then
// answers with response, whatever is sent.
func newTestConnection(t *testing.T, response ...string) (*Connection, *testutils.ConnectionMock) {
	t.Helper()

	mock := testutils.NewConnectionMock(append([]string{testutils.Greeting}, response...)...)
	conn, err := NewConnection(mock)
	require.NoError(t, err)

	return conn, mock
}

// =============================================================================
// Greeting
// =============================================================================

func TestNewConnection_Greeting(t *testing.T) {
	conn, _ := newTestConnection(t)

	assert.Equal(t, protocol.Version{Major: 0, Minor: 23, Patch: 5}, conn.Version())
	assert.NoError(t, conn.Err())
	assert.False(t, conn.IsClosed())
	assert.True(t, conn.idle())
}

func TestNewConnection_BadGreeting(t *testing.T) {
	mock := testutils.NewConnectionMock("HELLO\n")

	conn, err := NewConnection(mock)
	assert.Nil(t, conn)

	var parseErr *protocol.ParseError
	assert.ErrorAs(t, err, &parseErr)
	assert.True(t, mock.IsClosed())
}

func TestNewConnection_NoGreeting(t *testing.T) {
	mock := testutils.NewConnectionMock()

	_, err := NewConnection(mock)

	var connErr *protocol.ConnectionError
	assert.ErrorAs(t, err, &connErr)
	assert.ErrorIs(t, err, io.EOF)
}

// =============================================================================
// Sending
// =============================================================================

func TestConnection_SendCommand(t *testing.T) {
	conn, mock := newTestConnection(t, "OK\n")

	require.NoError(t, conn.SendCommand("enableoutput", "1"))
	assert.Equal(t, "enableoutput 1\n", mock.Written())
	assert.False(t, conn.idle())

	assert.NoError(t, conn.ResponseFinish())
	assert.True(t, conn.idle())
}

func TestConnection_SendCommand_ResponsePending(t *testing.T) {
	conn, _ := newTestConnection(t, "volume: 50\nOK\n")

	require.NoError(t, conn.SendCommand("status"))
	assert.ErrorIs(t, conn.SendCommand("status"), ErrResponsePending)

	// A pending pair also counts as an unfinished response
	pair, ok := conn.RecvPair()
	require.True(t, ok)
	conn.EnqueuePair(pair)
	assert.ErrorIs(t, conn.SendCommand("status"), ErrResponsePending)

	require.NoError(t, conn.ResponseFinish())
	assert.True(t, conn.idle())
}

func TestConnection_SendCommand_Closed(t *testing.T) {
	conn, mock := newTestConnection(t)

	require.NoError(t, conn.Close())
	assert.True(t, mock.IsClosed())
	assert.ErrorIs(t, conn.SendCommand("ping"), ErrConnectionClosed)

	// Closing twice is a no-op
	assert.NoError(t, conn.Close())
}

func TestConnection_SendCommand_WriteError(t *testing.T) {
	conn, mock := newTestConnection(t)
	mock.WriteErr = errors.New("broken pipe")

	err := conn.SendCommand("ping")

	var connErr *protocol.ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, "write", connErr.Op)
	assert.Equal(t, err, conn.Err())
	assert.False(t, conn.ClearError())
}

func TestConnection_SendCommand_InvalidArgument(t *testing.T) {
	conn, mock := newTestConnection(t)

	err := conn.SendCommand("find", "artist\nBach")
	assert.Error(t, err)
	assert.NoError(t, conn.Err(), "a rejected argument is not a connection failure")
	assert.Empty(t, mock.Written())
	assert.True(t, conn.idle())
}

// =============================================================================
// Receiving pairs
// =============================================================================

func TestConnection_RecvPair(t *testing.T) {
	conn, _ := newTestConnection(t, "volume: 50\nstate: play\nOK\n")
	require.NoError(t, conn.SendCommand("status"))

	pair, ok := conn.RecvPair()
	require.True(t, ok)
	assert.Equal(t, protocol.Pair{Name: "volume", Value: "50"}, pair)

	pair, ok = conn.RecvPair()
	require.True(t, ok)
	assert.Equal(t, protocol.Pair{Name: "state", Value: "play"}, pair)

	_, ok = conn.RecvPair()
	assert.False(t, ok)
	assert.NoError(t, conn.Err())

	// The response has ended: nothing more is read
	_, ok = conn.RecvPair()
	assert.False(t, ok)
}

func TestConnection_RecvPair_NothingSent(t *testing.T) {
	conn, _ := newTestConnection(t, "volume: 50\nOK\n")

	_, ok := conn.RecvPair()
	assert.False(t, ok)
	assert.NoError(t, conn.Err())
}

func TestConnection_RecvPairNamed(t *testing.T) {
	conn, _ := newTestConnection(t, "volume: 50\nfile: a.flac\nOK\n")
	require.NoError(t, conn.SendCommand("status"))

	_, ok := conn.RecvPairNamed("file")
	assert.False(t, ok, "non matching pair is not consumed")

	pair, ok := conn.RecvPair()
	require.True(t, ok)
	assert.Equal(t, "volume", pair.Name)

	pair, ok = conn.RecvPairNamed("file")
	require.True(t, ok)
	assert.Equal(t, "a.flac", pair.Value)

	_, ok = conn.RecvPairNamed("file")
	assert.False(t, ok)
	assert.True(t, conn.idle())
}

func TestConnection_EnqueuePair(t *testing.T) {
	conn, _ := newTestConnection(t, "OK\n")
	require.NoError(t, conn.SendCommand("status"))

	conn.EnqueuePair(protocol.Pair{Name: "volume", Value: "50"})

	assert.Panics(t, func() {
		conn.EnqueuePair(protocol.Pair{Name: "state", Value: "stop"})
	})

	pair, ok := conn.RecvPair()
	require.True(t, ok)
	assert.Equal(t, protocol.Pair{Name: "volume", Value: "50"}, pair)

	_, ok = conn.RecvPair()
	assert.False(t, ok)
}

// =============================================================================
// Sticky error
// =============================================================================

func TestConnection_Ack(t *testing.T) {
	conn, _ := newTestConnection(t,
		"ACK [50@0] {enableoutput} No such audio output\n",
		"OK\n",
	)

	require.NoError(t, conn.SendCommand("enableoutput", "7"))

	err := conn.ResponseFinish()
	require.Error(t, err)

	var serverErr *protocol.ServerError
	require.ErrorAs(t, err, &serverErr)
	assert.Equal(t, protocol.AckNoExist, serverErr.Code)
	assert.Equal(t, "enableoutput", serverErr.Command)
	assert.Equal(t, "No such audio output", serverErr.Message)
	assert.True(t, protocol.IsAck(err, protocol.AckNoExist))

	// Sticky until cleared
	_, ok := conn.RecvPair()
	assert.False(t, ok)
	assert.Equal(t, err, conn.Err())

	// Recoverable: the next command clears it
	require.NoError(t, conn.SendCommand("ping"))
	assert.NoError(t, conn.ResponseFinish())
	assert.NoError(t, conn.Err())
}

func TestConnection_FirstErrorWins(t *testing.T) {
	conn, _ := newTestConnection(t, "ACK [5@0] {foo} unknown command \"foo\"\n")
	require.NoError(t, conn.SendCommand("foo"))

	first := conn.ResponseFinish()
	require.Error(t, first)

	conn.setError(&protocol.ParseError{Message: "later"})
	assert.Equal(t, first, conn.Err())
}

func TestConnection_ClearError(t *testing.T) {
	conn, _ := newTestConnection(t)

	assert.True(t, conn.ClearError(), "nothing to clear")

	conn.setError(&protocol.ServerError{Code: protocol.AckArg})
	assert.True(t, conn.ClearError())
	assert.NoError(t, conn.Err())

	conn.setError(&protocol.ParseError{Message: "bad"})
	assert.False(t, conn.ClearError())
	assert.Error(t, conn.Err())
}

func TestConnection_MalformedLine(t *testing.T) {
	conn, _ := newTestConnection(t, "volume: 50\nthis is not a pair\nOK\n")
	require.NoError(t, conn.SendCommand("status"))

	err := conn.ResponseFinish()

	var parseErr *protocol.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.True(t, protocol.ShouldCloseConnection(err))

	// Unrecoverable: sending is refused with the sticky error
	assert.Equal(t, err, conn.SendCommand("ping"))
}

func TestConnection_UnexpectedListOK(t *testing.T) {
	conn, _ := newTestConnection(t, "list_OK\nOK\n")
	require.NoError(t, conn.SendCommand("status"))

	var parseErr *protocol.ParseError
	assert.ErrorAs(t, conn.ResponseFinish(), &parseErr)
}

func TestConnection_ReadError(t *testing.T) {
	conn, mock := newTestConnection(t, "volume: 50\n")
	mock.ReadErr = errors.New("connection reset by peer")
	require.NoError(t, conn.SendCommand("status"))

	err := conn.ResponseFinish()

	var connErr *protocol.ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, "read", connErr.Op)
	assert.False(t, conn.ClearError())
}

func TestConnection_ErrorDropsPendingPair(t *testing.T) {
	conn, _ := newTestConnection(t, "OK\n")
	require.NoError(t, conn.SendCommand("status"))

	conn.EnqueuePair(protocol.Pair{Name: "volume", Value: "50"})
	conn.setError(&protocol.ServerError{Code: protocol.AckSystem})

	_, ok := conn.RecvPair()
	assert.False(t, ok)
	assert.True(t, conn.idle())
}

// =============================================================================
// Deadlines
// =============================================================================

func TestConnection_ApplyDeadline(t *testing.T) {
	conn, _ := newTestConnection(t)

	assert.NoError(t, conn.applyDeadline(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, conn.applyDeadline(ctx), context.Canceled)
}

// =============================================================================
// Lifecycle
// =============================================================================

func TestConnection_CloseConcurrent(t *testing.T) {
	conn, mock := newTestConnection(t)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			assert.NoError(t, conn.Close())
		}()
		go func() {
			defer wg.Done()
			_ = conn.IsClosed()
		}()
	}
	wg.Wait()

	assert.True(t, conn.IsClosed())
	assert.True(t, mock.IsClosed())
}

func TestConnection_Reusable(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(t *testing.T, conn *Connection)
		reusable bool
	}{
		{"fresh", func(t *testing.T, conn *Connection) {}, true},
		{"server error", func(t *testing.T, conn *Connection) {
			conn.setError(&protocol.ServerError{Code: protocol.AckNoExist, Message: "No such song"})
		}, true},
		{"parse error", func(t *testing.T, conn *Connection) {
			conn.setError(&protocol.ParseError{Message: "malformed line"})
		}, false},
		{"connection error", func(t *testing.T, conn *Connection) {
			conn.setError(&protocol.ConnectionError{Op: "read", Err: io.EOF})
		}, false},
		{"response in progress", func(t *testing.T, conn *Connection) {
			require.NoError(t, conn.SendCommand("ping"))
		}, false},
		{"pending pair", func(t *testing.T, conn *Connection) {
			conn.EnqueuePair(protocol.Pair{Name: "file", Value: "a.flac"})
		}, false},
		{"closed", func(t *testing.T, conn *Connection) {
			require.NoError(t, conn.Close())
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn, _ := newTestConnection(t)
			tt.setup(t, conn)
			assert.Equal(t, tt.reusable, conn.reusable())
			if tt.reusable {
				assert.NoError(t, conn.Err(), "recoverable errors are cleared")
			}
		})
	}
}
